package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/parse"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/internal/config"
)

// outcomeFallback is reported instead of "failed": the caller still gets a
// value, just not one decoded from the text.
const outcomeFallback = "fallback"

type RepairRequest struct {
	Text string `json:"text"`
}

type RepairResponse struct {
	Repaired string `json:"repaired"`
	Changed  bool   `json:"changed"`
}

type ParseRequest struct {
	Text     string          `json:"text"`
	Fallback json.RawMessage `json:"fallback,omitempty"`
	// Lenient also fixes quotes, comments, trailing commas and code fences,
	// and reports an error instead of returning the fallback.
	Lenient bool `json:"lenient,omitempty"`
}

type ParseResponse struct {
	Value   any    `json:"value"`
	Outcome string `json:"outcome"`
}

type GenerateRequest struct {
	Prompt   string          `json:"prompt" binding:"required"`
	Fallback json.RawMessage `json:"fallback,omitempty"`
}

type GenerateResponse struct {
	Value        any    `json:"value"`
	Truncated    bool   `json:"truncated"`
	FinishReason string `json:"finish_reason,omitempty"`
	Model        string `json:"model,omitempty"`
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RepairHandler returns RepairTruncated(text).
func (s *Server) RepairHandler(c *gin.Context) {
	var req RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repaired := parse.RepairTruncated(req.Text)
	c.JSON(http.StatusOK, RepairResponse{Repaired: repaired, Changed: repaired != req.Text})
}

// ParseHandler decodes text into a JSON value, falling back to the supplied
// default. Any text yields 200; only an unreadable body is a 400.
func (s *Server) ParseHandler(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fallback, err := decodeFallback(req.Fallback)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "fallback: " + err.Error()})
		return
	}

	if req.Lenient {
		value, err := parse.ParseStringAs[any](req.Text)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"value": fallback, "outcome": outcomeFallback, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, ParseResponse{Value: value, Outcome: "lenient"})
		return
	}

	var outcome parse.Outcome
	value := parse.ParseWithFallbackContext(c.Request.Context(), req.Text, fallback,
		parse.WithOutcome(&outcome), parse.WithLabel("api.parse"))

	c.JSON(http.StatusOK, ParseResponse{Value: value, Outcome: outcomeName(outcome)})
}

// GenerateHandler asks the model for a JSON document and decodes it.
func (s *Server) GenerateHandler(c *gin.Context) {
	if s.generator == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": config.ErrNotConfigured.Error()})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fallback, err := decodeFallback(req.Fallback)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "fallback: " + err.Error()})
		return
	}

	value, response, err := client.GenerateStructured(c.Request.Context(), s.generator, req.Prompt, fallback,
		parse.WithLabel("api.generate"))
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Value:        value,
		Truncated:    response.Truncated(),
		FinishReason: response.FinishReason,
		Model:        response.Model,
	})
}

func decodeFallback(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var fallback any
	if err := json.Unmarshal(raw, &fallback); err != nil {
		return nil, err
	}
	return fallback, nil
}

func outcomeName(outcome parse.Outcome) string {
	if outcome == parse.OutcomeFailed {
		return outcomeFallback
	}
	return outcome.String()
}
