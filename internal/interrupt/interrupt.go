// Package interrupt provides a process-wide cooperative cancellation flag.
//
// An external Ctrl-C sets the flag; long-running operations poll it at safe
// points and abort early without raising an error. The interactive loop is
// responsible for resetting the flag before each command so a stale interrupt
// cannot abort an unrelated later command.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Signal is a lock-free boolean flag shared between the signal-delivery
// goroutine and ordinary application code. The zero value is ready to use.
type Signal struct {
	flag atomic.Bool
}

// New creates an independent Signal. Tests use this to inject their own flag
// without touching process-wide state.
func New() *Signal {
	return &Signal{}
}

// Set marks the signal as triggered. Safe to call from the signal-handling
// goroutine: it only flips the flag, never allocates or locks.
func (s *Signal) Set() {
	s.flag.Store(true)
}

// Triggered reports whether an interrupt has been requested since the last
// Reset.
func (s *Signal) Triggered() bool {
	return s.flag.Load()
}

// Reset clears the flag. Called by the owner of the interactive loop at the
// start of each command.
func (s *Signal) Reset() {
	s.flag.Store(false)
}

var (
	sharedOnce sync.Once
	shared     *Signal
)

// Shared returns the process-wide Signal, installing the SIGINT handler on
// first access. Every subsequent call returns the same instance.
func Shared() *Signal {
	sharedOnce.Do(func() {
		shared = New()

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		go func() {
			for range ch {
				shared.Set()
			}
		}()
	})
	return shared
}
