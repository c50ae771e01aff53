package constants

const (
	// Local, pre-network failures
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"

	// Session lifecycle
	ErrCodeAuthRequired = "AUTH_REQUIRED"
	ErrCodeAuthFailed   = "AUTH_FAILED"
	ErrCodeForbidden    = "FORBIDDEN"

	// Backend responses
	ErrCodeStaleState     = "STALE_STATE"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeInvalidSchema  = "INVALID_RESPONSE_SCHEMA"

	// Transport
	ErrCodeNetwork = "NETWORK_ERROR"
	ErrCodeTimeout = "TIMEOUT"
)
