// Package signal turns SIGINT and SIGTERM into context cancellation and lets
// critical sections, such as schema migrations and report writes, finish before
// the cancellation is delivered.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	// mu guards blockCount and pendingCancel.
	mu sync.Mutex
	// blockCount is the nesting depth of BlockSignals calls.
	blockCount int
	// pendingCancels are cancellations that arrived while blocked.
	pendingCancels []context.CancelFunc
)

// WithSignalCancel returns a context that is cancelled when SIGINT or SIGTERM is
// received. The returned cancel function releases the signal handler.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			deliver(cancel)
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// deliver cancels now, or after the outermost critical section ends.
func deliver(cancel context.CancelFunc) {
	mu.Lock()
	if blockCount > 0 {
		pendingCancels = append(pendingCancels, cancel)
		mu.Unlock()
		return
	}
	mu.Unlock()
	cancel()
}

// BlockSignals defers signal cancellation until the matching UnblockSignals.
// Calls nest.
func BlockSignals() {
	mu.Lock()
	defer mu.Unlock()
	blockCount++
}

// UnblockSignals ends a critical section. Cancellations that arrived while
// blocked run when the outermost section ends.
func UnblockSignals() {
	mu.Lock()
	if blockCount > 0 {
		blockCount--
	}
	var pending []context.CancelFunc
	if blockCount == 0 {
		pending, pendingCancels = pendingCancels, nil
	}
	mu.Unlock()

	for _, cancel := range pending {
		cancel()
	}
}

// Critical runs fn with signal cancellation deferred.
func Critical(fn func() error) error {
	BlockSignals()
	defer UnblockSignals()
	return fn()
}
