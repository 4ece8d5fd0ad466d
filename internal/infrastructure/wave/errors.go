package wave

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingToken means no bearer token was configured for the upstream API.
	ErrMissingToken = errors.New("wave: missing API token")

	// ErrMissingData means the upstream returned a 2xx response with no errors
	// but also no data payload.
	ErrMissingData = errors.New("wave: response missing data")
)

// TransportError is a network failure or a non-2xx HTTP response from the
// upstream endpoint. Status is zero when the request never completed.
type TransportError struct {
	Status     int
	StatusText string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wave: request failed: %v", e.Err)
	}
	return fmt.Sprintf("wave: upstream returned %d %s: %s", e.Status, e.StatusText, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GraphQLError is a 2xx response whose errors list was non-empty. Every
// upstream message is preserved; nothing is truncated to the first entry.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "wave: graphql error: " + strings.Join(e.Messages, "; ")
}

// IsDeadlineExceeded reports whether the upstream call timed out.
func IsDeadlineExceeded(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
