package services

import (
	stderrors "errors"
	"fmt"

	"github.com/apexlaps/pitwall/internal/errors"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

// classifyUpstream wraps an error from the iRacing client into the
// application taxonomy: rejected credentials become UpstreamAuth, everything
// else (transport failure, non-success status) becomes UpstreamData.
func classifyUpstream(err error, operation string) error {
	var authErr *iracing.AuthError
	if stderrors.As(err, &authErr) {
		return errors.UpstreamAuth(fmt.Sprintf("%s: authentication rejected", operation), err)
	}
	return errors.UpstreamData(fmt.Sprintf("%s failed", operation), err)
}

// UpstreamStatus extracts the upstream HTTP status from an error chain, or 0
// when the error carries none. Handlers use it for status passthrough.
func UpstreamStatus(err error) int {
	var statusErr *iracing.StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
