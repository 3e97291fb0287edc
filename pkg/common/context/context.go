// Package context provides context helpers shared by signalflow packages.
package context

import (
	"context"
	"time"
)

// WithOptionalTimeout returns a context bounded by timeout. A non-positive
// timeout returns parent unchanged with a no-op cancel function.
func WithOptionalTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

// IsCanceled returns true if the context has been canceled or timed out
func IsCanceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// IsTimedOut returns true if the context was canceled due to a timeout
func IsTimedOut(ctx context.Context) bool {
	return ctx.Err() == context.DeadlineExceeded
}
