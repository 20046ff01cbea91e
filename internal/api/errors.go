package api

import "fmt"

// StatusError reports a response outside the 2xx range. Body carries the
// server's error text when one was returned; it is surfaced verbatim in
// user-facing failure messages.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ParseError reports a malformed or incomplete payload from the server. The
// whole operation fails; there are no partial results.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
