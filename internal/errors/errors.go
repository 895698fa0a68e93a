package apierrors

import "fmt"

// Broker failure reasons. Each one is also the translation key of the message
// shown to the user.
const (
	ErrInvalidUser     = "reminders.user"
	ErrInvalidToken    = "reminders.token"
	ErrInvalidPassword = "reminders.password"
	ErrThrottled       = "reminders.throttled"
)

// APIError is an unanticipated failure that ends on the generic error page.
type APIError struct {
	Code   int
	Status string
}

func NewAPIError(code int, status string) *APIError {
	return &APIError{Code: code, Status: status}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Status)
}

var (
	ErrInternal      = NewAPIError(500, "INTERNAL_SERVER_ERROR")
	ErrForbidden     = NewAPIError(403, "FORBIDDEN")
	ErrCSRFMismatch  = NewAPIError(419, "CSRF_TOKEN_MISMATCH")
	ErrTooManyTries  = NewAPIError(429, "TOO_MANY_REQUESTS")
	ErrPageNotFound  = NewAPIError(404, "NOT_FOUND")
	ErrBadFormFields = NewAPIError(400, "BAD_REQUEST")
)
