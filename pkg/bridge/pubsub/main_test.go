package pubsub

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// Every mounted subscription runs a receive goroutine that must exit on unmount.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
