package interfaces

import "time"

// TimeProvider supplies the current time for request signing and login-token expiry.
// Injected so tests can use a fixed clock instead of time.Now().
//
// Used by service.Requester to build the signing timestamp (Now().UnixMilli()) and by
// adapters.SecurityHTTP to decide when the access token must be refreshed.
// Constructed in cmd/main as service.NewTimeProvider(time.Now).
//
//go:generate moq -stub -out mock/time_provider.go -pkg mock . TimeProvider
type TimeProvider interface {
	// Now returns current time (wall clock in prod; a fixed time in tests so signatures are deterministic).
	// Parameters: none.
	// Returns: time.Time.
	// Called from service.Requester.Send and adapters.securityHTTP.InjectSecurityInfo.
	Now() time.Time
}
