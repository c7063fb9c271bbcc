// Package healthcheck verifies that a port-forward tunnel accepts TCP
// connections on its local port. kubectl reports the forward as started
// before the tunnel is actually usable, so the probe retries with backoff.
package healthcheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/nvm/kshell/internal/retry"
)

// Status is the outcome of probing one local port.
type Status string

const (
	StatusReady       Status = "ready"
	StatusUnreachable Status = "unreachable"
)

// Result reports one probe: the port, its status, how many connection
// attempts were made, and the last dial error when unreachable.
type Result struct {
	Port     int
	Status   Status
	Attempts int
	Err      error
}

func (r Result) String() string {
	if r.Status == StatusReady {
		return fmt.Sprintf("port %d %s (%d attempt(s))", r.Port, r.Status, r.Attempts)
	}
	return fmt.Sprintf("port %d %s after %d attempt(s): %v", r.Port, r.Status, r.Attempts, r.Err)
}

// DialFunc opens a TCP connection; net.Dialer's DialContext in production.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Prober dials 127.0.0.1:<port> up to maxAttempts times with exponential
// backoff between attempts.
type Prober struct {
	timeout     time.Duration
	maxAttempts int
	dial        DialFunc
}

// NewProber creates a Prober with the given per-attempt dial timeout.
func NewProber(timeout time.Duration, maxAttempts int) *Prober {
	var d net.Dialer
	return &Prober{
		timeout:     timeout,
		maxAttempts: maxAttempts,
		dial:        d.DialContext,
	}
}

// SetDialFunc overrides the dialer. Tests use this to fail deterministically.
func (p *Prober) SetDialFunc(dial DialFunc) {
	p.dial = dial
}

// Probe checks whether the port accepts connections. It returns early on
// context cancellation, reporting the attempts made so far.
func (p *Prober) Probe(ctx context.Context, port int) Result {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	backoff := retry.NewBackoff(100*time.Millisecond, 2*time.Second)

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
		conn, err := p.dial(dialCtx, "tcp", addr)
		cancel()

		if err == nil {
			conn.Close()
			return Result{Port: port, Status: StatusReady, Attempts: attempt}
		}
		lastErr = err

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return Result{Port: port, Status: StatusUnreachable, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(backoff.Next()):
		}
	}

	return Result{Port: port, Status: StatusUnreachable, Attempts: p.maxAttempts, Err: lastErr}
}
