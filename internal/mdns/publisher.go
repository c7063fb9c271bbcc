// Package mdns publishes hostnames for active port-forwards. When enabled, a
// forward to pod "postgres-0" on local port 5432 becomes reachable from the
// LAN as postgres-0.local:5432.
package mdns

import (
	"fmt"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/nvm/kshell/internal/logger"
)

const (
	// shutdownTimeout is the maximum time to wait for mDNS server shutdown
	shutdownTimeout = 2 * time.Second

	// mdnsDomain is the standard mDNS domain (RFC 6762); always ".local"
	mdnsDomain = "local"
)

// startupSettleTime lets zeroconf's internal goroutines (recv4, recv6) fully
// initialize before any shutdown can occur. Works around a race in
// grandcat/zeroconf where shutdown() nils connections while recv goroutines
// are still starting. See: https://github.com/grandcat/zeroconf/issues/95
const startupSettleTime = 50 * time.Millisecond

// shutdownSettleTime lets zeroconf's goroutines exit cleanly after Shutdown;
// same underlying race as startupSettleTime.
const shutdownSettleTime = 100 * time.Millisecond

// Publisher manages mDNS hostname registrations for port-forward tasks.
// If disabled, every call is a no-op.
type Publisher struct {
	mu        sync.RWMutex
	servers   map[string]*zeroconf.Server // task id -> server
	hostnames map[string]string           // task id -> hostname (for logging)
	enabled   bool
}

// NewPublisher creates an mDNS Publisher.
func NewPublisher(enabled bool) *Publisher {
	p := &Publisher{
		servers:   make(map[string]*zeroconf.Server),
		hostnames: make(map[string]string),
		enabled:   enabled,
	}

	if enabled {
		logger.Info("mDNS publisher initialized", map[string]any{
			"domain": mdnsDomain,
		})
	}

	return p
}

// Register publishes <hostname>.local resolving to 127.0.0.1 for a task.
// A task id that is already registered, an empty hostname, or a disabled
// publisher are all no-ops.
func (p *Publisher) Register(id, hostname string, localPort int) error {
	if !p.enabled || hostname == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.servers[id]; exists {
		return nil
	}

	server, err := zeroconf.RegisterProxy(
		hostname,              // instance name shown in service discovery
		"_kshell._tcp",        // service type
		"local.",              // domain
		localPort,             // port
		hostname,              // hostname (becomes <hostname>.local)
		[]string{"127.0.0.1"}, // resolve to the forward's local side
		[]string{fmt.Sprintf("task=%s", id)}, // TXT records
		nil,                                  // all interfaces
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS for %s: %w", hostname, err)
	}

	p.servers[id] = server
	p.hostnames[id] = hostname

	time.Sleep(startupSettleTime)

	logger.Info("mDNS hostname registered", map[string]any{
		"task":     id,
		"hostname": Hostname(hostname),
		"port":     localPort,
	})

	return nil
}

// Unregister removes the mDNS hostname for a task.
func (p *Publisher) Unregister(id string) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	server, exists := p.servers[id]
	if !exists {
		return
	}

	hostname := p.hostnames[id]
	shutdownWithTimeout(server, id)
	delete(p.servers, id)
	delete(p.hostnames, id)

	logger.Info("mDNS hostname unregistered", map[string]any{
		"task":     id,
		"hostname": Hostname(hostname),
	})
}

// Stop shuts down all registrations.
func (p *Publisher) Stop() {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var wg sync.WaitGroup
	for id, server := range p.servers {
		wg.Add(1)
		go func(id string, srv *zeroconf.Server) {
			defer wg.Done()
			shutdownWithTimeout(srv, id)
		}(id, server)
	}
	wg.Wait()

	p.servers = make(map[string]*zeroconf.Server)
	p.hostnames = make(map[string]string)
}

// Enabled reports whether mDNS publishing is active.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// RegisteredCount returns the number of currently published hostnames.
func (p *Publisher) RegisteredCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.servers)
}

// Hostname returns the full mDNS hostname for a name: "web-0" -> "web-0.local".
func Hostname(name string) string {
	return name + "." + mdnsDomain
}

// shutdownWithTimeout shuts a zeroconf server down, giving up after
// shutdownTimeout so a wedged responder cannot hang quit.
func shutdownWithTimeout(server *zeroconf.Server, id string) {
	done := make(chan struct{})

	go func() {
		server.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		time.Sleep(shutdownSettleTime)
	case <-time.After(shutdownTimeout):
		logger.Warn("mDNS shutdown timed out, continuing anyway", map[string]any{
			"task":    id,
			"timeout": shutdownTimeout.String(),
		})
	}
}
