package apierrors

import "net/http"

// Error codes returned in the "code" field. Each code is also the message id
// of its translation.
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNoToken            = "NO_TOKEN"
	CodeExpiredToken       = "EXPIRED_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"

	CodeValidation         = "VALIDATION_ERROR"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorizedAccess = "UNAUTHORIZED_ACCESS"
	CodePositionConflict   = "POSITION_CONFLICT"
)

var statusByCode = map[string]int{
	CodeMissingFields:      http.StatusBadRequest,
	CodePasswordTooShort:   http.StatusBadRequest,
	CodeInvalidEmail:       http.StatusBadRequest,
	CodeUserAlreadyExists:  http.StatusConflict,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeUserNotFound:       http.StatusNotFound,
	CodeNoToken:            http.StatusUnauthorized,
	CodeExpiredToken:       http.StatusUnauthorized,
	CodeInvalidToken:       http.StatusUnauthorized,
	CodeValidation:         http.StatusBadRequest,
	CodeRouteNotFound:      http.StatusNotFound,
	CodeInternal:           http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeNotFound:           http.StatusNotFound,
	CodeUnauthorizedAccess: http.StatusForbidden,
	CodePositionConflict:   http.StatusConflict,
}

// Status returns the HTTP status for code, 500 for unknown codes.
func Status(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
