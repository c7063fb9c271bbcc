package healthcheck

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProber_ReadyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	p := NewProber(time.Second, 3)

	res := p.Probe(context.Background(), port)

	assert.Equal(t, StatusReady, res.Status)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, port, res.Port)
	assert.NoError(t, res.Err)
}

func TestProber_UnreachableAfterAllAttempts(t *testing.T) {
	p := NewProber(time.Second, 3)
	dialErr := errors.New("connection refused")
	var attempts int
	p.SetDialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		attempts++
		return nil, dialErr
	})

	res := p.Probe(context.Background(), 12345)

	assert.Equal(t, StatusUnreachable, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, res.Err, dialErr)
}

func TestProber_RecoversMidSequence(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	port := ln.Addr().(*net.TCPAddr).Port

	p := NewProber(time.Second, 5)
	var d net.Dialer
	var attempts int
	p.SetDialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("tunnel not up yet")
		}
		return d.DialContext(ctx, network, addr)
	})

	res := p.Probe(context.Background(), port)

	assert.Equal(t, StatusReady, res.Status)
	assert.Equal(t, 3, res.Attempts)
}

func TestProber_ContextCancellation(t *testing.T) {
	p := NewProber(time.Second, 10)
	p.SetDialFunc(func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("refused")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Probe(ctx, 12345)

	assert.Equal(t, StatusUnreachable, res.Status)
	assert.Less(t, res.Attempts, 10)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestResult_String(t *testing.T) {
	ready := Result{Port: 8080, Status: StatusReady, Attempts: 2}
	assert.Contains(t, ready.String(), strconv.Itoa(8080))
	assert.Contains(t, ready.String(), "ready")

	down := Result{Port: 8080, Status: StatusUnreachable, Attempts: 3, Err: errors.New("refused")}
	assert.Contains(t, down.String(), "unreachable")
	assert.Contains(t, down.String(), "refused")
}
