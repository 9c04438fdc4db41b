package viber

import (
	"fmt"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
)

// Error is a failure reported by the Viber gateway, either as an error body or
// as an unsuccessful HTTP status. In the latter case Name holds the status text,
// Message is empty, Code is 0 and the error also matches common.ErrHTTPStatus.
type Error struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Status  int    `json:"status"`

	cause error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("viber error: %s (status %d)", e.Name, e.Status)
	}
	return "viber error: " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool { return target == common.ErrDomain }

// fromHTTPStatus builds the error reported for a non-2xx response.
func fromHTTPStatus(statusCode int, statusText string) *Error {
	return &Error{
		Name:   statusText,
		Status: statusCode,
		cause:  &common.HTTPStatusError{StatusCode: statusCode, StatusText: statusText},
	}
}
