package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these rather
// than on messages.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
	ErrCodeUnavailable      = "service_unavailable"

	// Lead endpoints
	ErrCodeListFailed   = "list_failed"
	ErrCodeFetchFailed  = "fetch_failed"
	ErrCodeUpdateFailed = "update_failed"
	ErrCodeCreateFailed = "create_failed"
	ErrCodeInvalidScore = "invalid_score"

	// Auth endpoints
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeEmailTaken         = "email_taken"
)
