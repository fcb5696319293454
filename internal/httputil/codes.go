package httputil

// Machine-readable error codes, stable across message wording changes.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeEmailRequired      = "email_required"
	CodeCodeRequired       = "code_required"
	CodeContentRequired    = "content_required"
	CodeInvalidAction      = "invalid_action"
	CodeRateLimited        = "rate_limited"
	CodeDeliveryFailed     = "delivery_failed"
	CodeNoValidCode        = "no_valid_code"
	CodeTooManyAttempts    = "too_many_attempts"
	CodeInvalidCode        = "invalid_code"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)
