package service

import (
	"testing"
	"time"

	"mynaming/helpers"

	"github.com/stretchr/testify/assert"
)

func TestNewTimeProvider_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "service.time_provider.go: now is required", func() {
		NewTimeProvider(nil)
	})
}

func TestTimeProvider_Now(t *testing.T) {
	t.Run("returns_injected_time", func(t *testing.T) {
		tp := NewTimeProvider(helpers.TestNow)
		assert.Equal(t, helpers.TestNow(), tp.Now())
		assert.Equal(t, int64(1770811200000), tp.Now().UnixMilli())
	})

	t.Run("calls_now_each_time", func(t *testing.T) {
		calls := 0
		tp := NewTimeProvider(func() time.Time {
			calls++
			return helpers.TestNow().Add(time.Duration(calls) * time.Millisecond)
		})
		first, second := tp.Now(), tp.Now()
		assert.Equal(t, 2, calls)
		assert.Equal(t, time.Millisecond, second.Sub(first))
	})
}
