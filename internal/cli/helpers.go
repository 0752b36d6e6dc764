package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/taskflow/internal/logging"
)

// SignalContext is a context cancelled by SIGINT or SIGTERM that remembers which
// signal arrived, so commands can report how they were stopped.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	received atomic.Value // os.Signal
}

// NewSignalContext starts listening for interrupts until the returned context is done.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			sc.received.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sig, _ := sc.received.Load().(os.Signal)
	return sig
}

// NewLogger returns the CLI logger: debug level with --debug, warnings only otherwise.
// Logs go to stderr so stdout stays machine-readable.
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelWarn)
}
