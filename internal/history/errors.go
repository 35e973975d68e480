package history

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned by a Fetcher once the per-session
// request quota is spent. It is the session's normal stop signal, not
// a failure to report to the user.
var ErrQuotaExceeded = errors.New("history: request quota exceeded")

// UpstreamError wraps a failure talking to the remote service, whether
// transport-level (bad status, network) or an error payload inside a
// successful response. It aborts the current session.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("history: upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
