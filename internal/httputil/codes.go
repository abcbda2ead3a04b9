package httputil

// Machine-readable error codes returned alongside error messages so clients
// can branch without parsing human-readable text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodeInvalidOTP         = "invalid_otp"
	CodeRateLimited        = "rate_limited"
	CodeCooldownActive     = "cooldown_active"
	CodeTooManyRequests    = "too_many_requests"
	CodeDeliveryFailed     = "delivery_failed"

	CodeMissingAuth       = "missing_auth"
	CodeInvalidSession    = "invalid_session"
	CodeForbidden         = "forbidden"
	CodeNotVerified       = "not_verified"

	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeDuplicateVouch   = "duplicate_vouch"
	CodeSelfVouch        = "self_vouch"
	CodeInvalidDecision  = "invalid_decision"
	CodeAlreadyLiked     = "already_liked"
	CodePostLimitReached = "post_limit_reached"

	CodeInternalError = "internal_error"
)
