package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeNotFound           = "NOT_FOUND"

	// auth
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"

	// profile
	CodeNoProfile       = "NO_PROFILE"
	CodeProfileNotFound = "PROFILE_NOT_FOUND"
	CodeInvalidEntryID  = "INVALID_ENTRY_ID"
)
