package helpers

import (
	"time"
)

// TestNow returns a fixed time (2026-02-11 12:00:00 UTC) for deterministic tests (signing timestamps, token expiry).
//
// Parameters: none.
//
// Returns: time.Time in UTC.
//
// Called from tests (e.g. service/requester_test, adapters/security_test) when a fixed "current" time is needed.
func TestNow() time.Time {
	return time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
}
