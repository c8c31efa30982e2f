// Package progress renders progress bars for long-running backup and
// restore operations and wires Ctrl-C into context cancellation.
package progress

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
)

// Options configures output verbosity.
type Options struct {
	Quiet   bool
	Verbose bool
}

// Manager owns the progress bar for the current operation and the
// signal handling that cancels it.
type Manager struct {
	options    Options
	bar        *progressbar.ProgressBar
	cancelFunc context.CancelFunc
	cancelled  bool
	cancelMux  sync.Mutex
	signalChan chan os.Signal
}

// NewManager creates a progress manager.
func NewManager(options Options) *Manager {
	return &Manager{
		options:    options,
		signalChan: make(chan os.Signal, 1),
	}
}

// SetupCancellation returns a context cancelled on SIGINT or SIGTERM.
func (pm *Manager) SetupCancellation(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	pm.cancelFunc = cancel

	signal.Notify(pm.signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-pm.signalChan:
			pm.cancelMux.Lock()
			pm.cancelled = true
			pm.cancelMux.Unlock()
			fmt.Fprintln(os.Stderr, "\nOperation cancelled")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

// IsCancelled reports whether the user interrupted the operation.
func (pm *Manager) IsCancelled() bool {
	pm.cancelMux.Lock()
	defer pm.cancelMux.Unlock()
	return pm.cancelled
}

// Cleanup removes the signal handler and releases the context.
func (pm *Manager) Cleanup() {
	signal.Stop(pm.signalChan)
	if pm.cancelFunc != nil {
		pm.cancelFunc()
	}
}

// StartBytes begins a byte-count progress bar for an operation that
// processes totalBytes of file data.
func (pm *Manager) StartBytes(totalBytes int64, description string) {
	if pm.options.Quiet {
		return
	}

	pm.bar = progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}

// Add advances the progress bar by n bytes.
func (pm *Manager) Add(n int64) {
	if pm.options.Quiet || pm.bar == nil {
		return
	}
	pm.bar.Add64(n)
}

// Finish completes the progress bar.
func (pm *Manager) Finish() {
	if pm.options.Quiet || pm.bar == nil {
		return
	}
	pm.bar.Finish()
}

// PrintVerbose prints per-file detail when verbose mode is on.
func (pm *Manager) PrintVerbose(format string, args ...interface{}) {
	if !pm.options.Verbose {
		return
	}
	if pm.bar != nil {
		pm.bar.Clear()
	}
	fmt.Printf(format, args...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		fmt.Println()
	}
}

// PrintInfo prints status lines unless quiet mode is on.
func (pm *Manager) PrintInfo(format string, args ...interface{}) {
	if pm.options.Quiet {
		return
	}
	if pm.bar != nil {
		pm.bar.Clear()
	}
	fmt.Printf(format, args...)
}

// Warnf reports a non-fatal problem, for example a file skipped during
// backup. Warnings print even in quiet mode.
func (pm *Manager) Warnf(format string, args ...interface{}) {
	if pm.bar != nil {
		pm.bar.Clear()
	}
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
