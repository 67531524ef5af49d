package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"mynaming/helpers"
	"mynaming/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrServerManagerClosed is returned by NextServer after Close.
var ErrServerManagerClosed = errors.New("server manager is closed")

// ErrNoServerAvailable is returned by NextServer when the server list is empty.
var ErrNoServerAvailable = errors.New("no naming server available")

const serverListFetchTimeout = 5 * time.Second

// ServerManager implements interfaces.ServerSelector. It keeps the naming server address list: a background
// refresh loop calls ServerListSource.GetServers and replaces the list; a failed or empty fetch keeps the
// last known list. NextServer returns addresses in round-robin order and is used by the transport on (re)dial.
// Fields: source, refreshInterval, logger; under mu: servers, rr (round-robin index), closed.
type ServerManager struct {
	source          interfaces.ServerListSource
	refreshInterval time.Duration
	logger          log.Logger

	mu      sync.RWMutex
	servers []string
	rr      int
	closed  bool

	stop chan struct{}
	done chan struct{}
}

// NewServerManager runs the first refresh and, when refreshInterval is positive, starts a goroutine refreshing the list every refreshInterval. Panics on nil source or logger.
//
// Parameters: source - address list source (adapters.StaticServerList or adapters.ServerListHTTP); refreshInterval - refresh interval (0 disables the loop); logger - fetch errors are logged.
//
// Returns: *ServerManager.
//
// Called from cmd/main before the gRPC transport is built.
func NewServerManager(source interfaces.ServerListSource, refreshInterval time.Duration, logger log.Logger) *ServerManager {
	m := &ServerManager{
		source:          helpers.NilPanic(source, "service.server_manager.go: server list source is required"),
		refreshInterval: refreshInterval,
		logger:          log.With(helpers.NilPanic(logger, "service.server_manager.go: logger is required"), "component", "server_manager"),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	m.refresh()
	if refreshInterval > 0 {
		go m.refreshLoop()
	} else {
		close(m.done)
	}
	return m
}

// refreshLoop runs refresh every refreshInterval until Close.
//
// Called only from NewServerManager in a separate goroutine.
func (m *ServerManager) refreshLoop() {
	defer close(m.done)
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.refresh()
		}
	}
}

// refresh fetches the current list; on error or empty result logs and keeps the old list. On success replaces the list and resets rr if needed.
//
// Called from refreshLoop on timer and once from NewServerManager at startup.
func (m *ServerManager) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), serverListFetchTimeout)
	defer cancel()
	servers, err := m.source.GetServers(ctx)
	if err != nil {
		level.Error(m.logger).Log("msg", "failed to fetch server list", "err", err)
		return
	}
	if len(servers) == 0 {
		level.Warn(m.logger).Log("msg", "server list source returned no servers, keeping last known list")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Equal(m.servers, servers) {
		level.Info(m.logger).Log("msg", "server list changed", "servers", len(servers))
	}
	m.servers = slices.Clone(servers)
	if m.rr >= len(m.servers) {
		m.rr = 0
	}
}

// NextServer returns the next address in round-robin order.
//
// Returns: (address, nil); ("", ErrServerManagerClosed) after Close; ("", ErrNoServerAvailable) when the list is empty.
//
// Called from adapters.GRPCTransport on Start and when switching server after a prolonged failure.
func (m *ServerManager) NextServer() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrServerManagerClosed
	}
	if len(m.servers) == 0 {
		return "", ErrNoServerAvailable
	}
	addr := m.servers[m.rr]
	m.rr = (m.rr + 1) % len(m.servers)
	return addr, nil
}

// Servers returns a copy of the current list.
func (m *ServerManager) Servers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.servers)
}

// Close stops the refresh loop. Idempotent.
//
// Called from cmd/main on shutdown.
func (m *ServerManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	close(m.stop)
	<-m.done
	return nil
}
