package interfaces

import "context"

// SecurityInfoInjector adds transport-level security headers (login access token) to an outbound request.
//
// Implemented by adapters.SecurityHTTP, adapters.StaticHeaders and helpers.InjectorChain. Called from adapters.GRPCTransport.InjectSecurityInfo.
//
//go:generate moq -stub -out mock/security_injector.go -pkg mock . SecurityInfoInjector
type SecurityInfoInjector interface {
	// InjectSecurityInfo writes security headers into headers in place.
	// Returns: nil on success or when no security is configured; error when a required token could not be obtained.
	InjectSecurityInfo(ctx context.Context, headers map[string]string) error
}
