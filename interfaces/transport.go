package interfaces

import (
	"context"
	"time"

	"mynaming/domain"
)

// Transport is the persistent RPC channel to the naming server cluster. It owns connection
// establishment, keep-alive, reconnection and server selection; the naming proxy only sends
// requests through it and listens to its lifecycle events.
//
// Implemented by adapters.GRPCTransport. Used by service.Requester (Send, InjectSecurityInfo)
// and service.NamingProxy (Start, Shutdown, IsRunning, RegisterServerPushHandler, RegisterConnectionListener).
//
//go:generate moq -stub -out mock/transport.go -pkg mock . Transport
type Transport interface {
	// Start connects the channel; lifecycle events are delivered to listeners registered before or after Start.
	// Returns: nil once the channel is being established (it may not be ready yet); error when already shut down or when no server is available.
	Start(ctx context.Context) error

	// Shutdown closes the channel and stops event delivery; idempotent.
	Shutdown() error

	// IsRunning reports whether the channel is started, not shut down and currently ready.
	IsRunning() bool

	// Send sends req and waits up to timeout for the decoded response.
	// Returns: (response, nil) for any decoded server reply, including non-200 envelopes; (nil, error) on network, timeout or decode failure.
	Send(ctx context.Context, req domain.Request, timeout time.Duration) (domain.Response, error)

	// InjectSecurityInfo adds transport-level security headers (e.g. an access token) to headers in place.
	InjectSecurityInfo(ctx context.Context, headers map[string]string) error

	// RegisterServerPushHandler routes server-pushed requests of requestType to handler; a later call for the same type replaces the handler.
	RegisterServerPushHandler(requestType string, handler ServerPushHandler)

	// RegisterConnectionListener subscribes listener to lifecycle events.
	// Returns: a func that removes the listener; calling it more than once is a no-op.
	RegisterConnectionListener(listener ConnectionListener) (unregister func())
}

// ConnectionListener receives connection lifecycle events from a Transport. Implementations must not block for long:
// the transport calls listeners from its connection watcher goroutine.
//
// Implemented by service.RecoveryDriver.
//
//go:generate moq -stub -out mock/connection_listener.go -pkg mock . ConnectionListener
type ConnectionListener interface {
	OnConnectionEvent(event domain.ConnectionEvent)
}

// ServerPushHandler handles one request pushed by the server over the transport's bidirectional stream.
//
// Implemented by service.NotifySubscriberHandler.
//
//go:generate moq -stub -out mock/server_push_handler.go -pkg mock . ServerPushHandler
type ServerPushHandler interface {
	// HandlePush decodes body (JSON of the pushed request) and returns the acknowledgement sent back to the server.
	// Returns: (response, nil) on success; (nil, error) when the body cannot be decoded or processed (the transport replies with an ErrorResponse).
	HandlePush(ctx context.Context, body []byte) (domain.Response, error)
}
