package domain

// ConnectionEvent is a connection lifecycle transition reported by the transport.
type ConnectionEvent int

const (
	// ConnectionConnected is emitted the first time the channel becomes ready.
	ConnectionConnected ConnectionEvent = iota + 1
	// ConnectionDisconnected is emitted when a ready channel is lost.
	ConnectionDisconnected
	// ConnectionReconnected is emitted when the channel is ready again after a disconnect.
	ConnectionReconnected
)

func (e ConnectionEvent) String() string {
	switch e {
	case ConnectionConnected:
		return "connected"
	case ConnectionDisconnected:
		return "disconnected"
	case ConnectionReconnected:
		return "reconnected"
	default:
		return "unknown"
	}
}
