package github

import (
	"fmt"
	"net/http"

	apperrors "github.com/contribhub/contrib-insights/internal/errors"
)

func newTransportError(err error) error {
	return apperrors.NewUpstreamError("github request failed", err)
}

func newDecodeError(err error) error {
	return apperrors.NewUpstreamError("failed to decode github response", err)
}

// mapStatus converts a non-2xx status into the caller-visible error kind.
// 404 and 401 are terminal; everything else unclassified is upstream. Callers
// handle 409 (empty repository) and 403/429 (rate limit) before calling this.
func mapStatus(status int, context string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError(context, nil)
	case status == http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError(context, nil)
	default:
		return apperrors.NewUpstreamError(fmt.Sprintf("%s: unexpected status %d", context, status), nil)
	}
}

func isRateLimited(status int) bool {
	return status == http.StatusForbidden || status == http.StatusTooManyRequests
}
