package httpretry

import (
	"context"
	"errors"
	"net"
	"net/http"

	"coursecaptions/internal/services"
)

// Wrap tags a client failure with the services marker matching its cause so
// the ledger can record why a lecture failed.
func Wrap(stage, operation string, err error) error {
	if err == nil {
		return nil
	}
	return services.Wrap(Marker(err), stage, operation, "", err)
}

// Marker picks the services sentinel for err.
func Marker(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized,
			statusErr.StatusCode == http.StatusForbidden:
			return services.ErrConfiguration
		case statusErr.StatusCode == http.StatusNotFound:
			return services.ErrNotFound
		case statusErr.Retriable():
			return services.ErrTransient
		default:
			return services.ErrExternalTool
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return services.ErrTransient
	}
	return services.ErrExternalTool
}
