package application

import (
	"errors"
	"fmt"
	"strings"
)

// UpstreamError means Wave executed the operation but reported business-level
// failure: didSucceed false or a non-empty inputErrors list. Every upstream
// message is carried verbatim so handlers can embed the full list in the
// response body.
type UpstreamError struct {
	Op       string
	Messages []string
}

func (e *UpstreamError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("%s: upstream rejected the operation", e.Op)
	}
	return fmt.Sprintf("%s: upstream rejected the operation: %s", e.Op, strings.Join(e.Messages, "; "))
}

// ErrInvoiceNotFound means no invoice matched the caller-supplied number.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrBusinessNotFound means Wave did not return the requested business,
// usually a sign the configured business ID is wrong.
var ErrBusinessNotFound = errors.New("business not found on upstream platform")
