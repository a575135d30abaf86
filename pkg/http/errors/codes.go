package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Attempt errors
	ErrCodeAttemptCreationFailed = "attempt_creation_failed"
	ErrCodeAttemptNotFound       = "attempt_not_found"
	ErrCodeAttemptMismatch       = "attempt_mismatch"
	ErrCodeInvalidAttemptID      = "invalid_attempt_id"
	ErrCodeInvalidQuestionBatch  = "invalid_question_batch"
	ErrCodeAnswerFailed          = "answer_failed"
	ErrCodeResultsFailed         = "results_failed"
	ErrCodeResetFailed           = "reset_failed"

	// WebSocket errors
	ErrCodeConnectionError = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
