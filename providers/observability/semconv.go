package observability

// Semantic conventions for observability attributes and metric names.

// --- Recovery Attributes ---

const (
	// AttrRecoveryOutcome is the terminal state of a recovery attempt
	// ("strict", "repaired" or "failed").
	AttrRecoveryOutcome = "recovery.outcome"

	// AttrRecoveryLabel names the caller-side payload being decoded (e.g. "exam_paper").
	AttrRecoveryLabel = "recovery.label"

	// AttrRecoveryTargetType is the Go type the text was decoded into.
	AttrRecoveryTargetType = "recovery.target_type"

	// AttrRecoveryInputLength is the byte length of the raw model output.
	AttrRecoveryInputLength = "recovery.input_length"

	// AttrRecoveryRepairedLength is the byte length after the repair pass.
	AttrRecoveryRepairedLength = "recovery.repaired_length"

	// AttrRecoveryInputPreview is a truncated copy of the raw model output.
	AttrRecoveryInputPreview = "recovery.input_preview"
)

// --- Recovery Metrics ---

const (
	// MetricRecoveryRepairs counts payloads that decoded only after repair.
	MetricRecoveryRepairs = "recovery.repairs"

	// MetricRecoveryFailures counts payloads that fell back to the default value.
	MetricRecoveryFailures = "recovery.failures"

	// MetricRecoveryAppended records how many bytes the repair pass appended.
	MetricRecoveryAppended = "recovery.appended_bytes"
)

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMStreaming marks streamed requests
	AttrLLMStreaming = "llm.streaming"

	// AttrLLMCredentialIndex is the position of the API key used in the rotation.
	// The key itself is never logged.
	AttrLLMCredentialIndex = "llm.credential_index" // #nosec G101 -- index, not a credential

	// AttrLLMAttempt is the 1-based attempt number inside retry or rotation.
	AttrLLMAttempt = "llm.attempt"

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- LLM tokens, not credentials
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRoute is the matched server route
	AttrHTTPRoute = "http.route"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"

	// AttrHTTPDuration is the round-trip time of a request
	AttrHTTPDuration = "http.duration"

	// AttrRequestID is the request identifier echoed in X-Request-ID
	AttrRequestID = "request.id"
)

// --- General ---

const (
	// AttrError carries an error message
	AttrError = "error"

	// AttrDuration is a generic elapsed time
	AttrDuration = "duration"

	// AttrServiceName identifies the process writing the entry
	AttrServiceName = "service.name"
)
