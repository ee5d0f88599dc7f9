package upstream

import "fmt"

// Error reports a non-success HTTP response from an external catalog or
// completion service. It is surfaced to the request layer unchanged; callers
// never retry.
type Error struct {
	Service    string
	StatusCode int
	Status     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.Service, e.StatusCode, e.Status)
}

// NewError captures the upstream service name and the response status line.
func NewError(service string, statusCode int, status string) *Error {
	return &Error{Service: service, StatusCode: statusCode, Status: status}
}
