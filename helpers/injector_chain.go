package helpers

import (
	"context"
	"strconv"

	"mynaming/interfaces"
)

// InjectorChain is a slice of SecurityInfoInjectors run in sequence on the same header map. Used to
// compose the login token injector (adapters.SecurityHTTP) with static headers from config.
// Implements interfaces.SecurityInfoInjector.
type InjectorChain []interfaces.SecurityInfoInjector

// NewInjectorChain creates a chain from the given injectors. Panics on nil element (fail-fast at startup). An empty chain injects nothing.
//
// Parameters: injectors - ordered list; a later injector overwrites keys set by an earlier one.
//
// Returns: InjectorChain implementing interfaces.SecurityInfoInjector.
//
// Called from cmd/main when building the gRPC transport.
func NewInjectorChain(injectors ...interfaces.SecurityInfoInjector) InjectorChain {
	for i, inj := range injectors {
		if inj == nil {
			panic("helpers.injector_chain.go: injector at index " + strconv.Itoa(i) + " is required")
		}
	}
	chain := make(InjectorChain, 0, len(injectors))
	return append(chain, injectors...)
}

// InjectSecurityInfo runs all injectors in order and stops at the first error.
//
// Parameters: ctx - request context (login calls honour cancellation); headers - request headers, mutated in place.
//
// Returns: nil or the first injector error.
//
// Called from adapters.GRPCTransport.InjectSecurityInfo before each request is signed.
func (c InjectorChain) InjectSecurityInfo(ctx context.Context, headers map[string]string) error {
	for _, inj := range c {
		if err := inj.InjectSecurityInfo(ctx, headers); err != nil {
			return err
		}
	}
	return nil
}
