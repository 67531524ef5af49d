package service

import (
	"time"

	"mynaming/helpers"
	"mynaming/interfaces"
)

// clock adapts a plain func to interfaces.TimeProvider.
type clock func() time.Time

// NewTimeProvider wraps now as the TimeProvider used for request signing and login token expiry.
// cmd/main passes a UTC wall clock; tests pass a fixed time. Panics on nil now.
func NewTimeProvider(now func() time.Time) interfaces.TimeProvider {
	return clock(helpers.NilPanic(now, "service.time_provider.go: now is required"))
}

func (c clock) Now() time.Time { return c() }
