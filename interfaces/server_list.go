package interfaces

import "context"

// ServerListSource provides the addresses ("host:port") of the naming server cluster.
//
// Implemented by adapters.StaticServerList and adapters.ServerListHTTP. Called from service.ServerManager
// on startup and on every refresh tick.
//
//go:generate moq -stub -out mock/server_list.go -pkg mock . ServerListSource
type ServerListSource interface {
	// GetServers returns the current server addresses.
	// Returns: (addresses, nil) on success (an empty list is valid); (nil, error) on request or parse failure.
	GetServers(ctx context.Context) ([]string, error)
}

// ServerSelector picks the naming server to dial. Implemented by service.ServerManager; used by adapters.GRPCTransport.
//
//go:generate moq -stub -out mock/server_selector.go -pkg mock . ServerSelector
type ServerSelector interface {
	// NextServer returns the next address in round-robin order.
	// Returns: (address, nil) or ("", error) when the server list is empty or the selector is closed.
	NextServer() (string, error)
}
