// Package server exposes truncated-output repair and structured generation
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/internal/config"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// Server holds the handlers' dependencies. The generator is optional: when it
// is nil, /v1/generate answers 503 and everything else still works.
type Server struct {
	cfg       *config.Config
	observer  observability.Provider
	generator *client.Client
}

// New creates a Server. observer and generator may be nil.
func New(cfg *config.Config, observer observability.Provider, generator *client.Client) *Server {
	return &Server{cfg: cfg, observer: observer, generator: generator}
}

// Handler builds the gin engine with CORS, request IDs, access logging and
// panic recovery. It fails when the allowed origins are not usable.
func (s *Server) Handler() (http.Handler, error) {
	corsMiddleware, err := s.corsMiddleware()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		requestIDMiddleware(),
		accessLogMiddleware(s.observer),
		gin.Recovery(),
		corsMiddleware,
	)

	r.GET("/healthz", s.HealthHandler)
	r.POST("/v1/repair", s.RepairHandler)
	r.POST("/v1/parse", s.ParseHandler)
	r.POST("/v1/generate", s.GenerateHandler)

	return r, nil
}

// corsMiddleware checks the origins up front, since cors.New panics on the
// ones it cannot parse.
func (s *Server) corsMiddleware() (gin.HandlerFunc, error) {
	origins := s.allowedOrigins()
	if err := config.CheckOrigins(origins); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "Authorization", "X-Requested-With", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}
	return cors.New(corsConfig), nil
}

func (s *Server) allowedOrigins() []string {
	if s.cfg == nil || len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := ":8080"
	if s.cfg != nil && s.cfg.HTTPAddr != "" {
		addr = s.cfg.HTTPAddr
	}

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	observer := s.observer
	if observer == nil {
		observer = observability.Discard
	}

	errCh := make(chan error, 1)
	go func() {
		observer.Info(ctx, "HTTP server listening", observability.String("http.addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		observer.Info(ctx, "HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
