package helpers

import (
	"context"
	"errors"
	"testing"

	"mynaming/interfaces"
	"mynaming/interfaces/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHeader(key, val string) *mock.SecurityInfoInjectorMock {
	return &mock.SecurityInfoInjectorMock{
		InjectSecurityInfoFunc: func(ctx context.Context, headers map[string]string) error {
			headers[key] = val
			return nil
		},
	}
}

func TestNewInjectorChain_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "helpers.injector_chain.go: injector at index 1 is required", func() {
		NewInjectorChain(setHeader("a", "1"), nil)
	})
}

func TestInjectorChain_InjectSecurityInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_chain_is_noop", func(t *testing.T) {
		headers := map[string]string{"a": "1"}
		require.NoError(t, NewInjectorChain().InjectSecurityInfo(ctx, headers))
		assert.Equal(t, map[string]string{"a": "1"}, headers)
	})

	t.Run("empty_chain_is_not_nil", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NilPanic[interfaces.SecurityInfoInjector](NewInjectorChain(), "security injector is required")
		})
	})

	t.Run("runs_in_order", func(t *testing.T) {
		headers := map[string]string{}
		chain := NewInjectorChain(setHeader("a", "1"), setHeader("b", "2"), setHeader("a", "3"))
		require.NoError(t, chain.InjectSecurityInfo(ctx, headers))
		assert.Equal(t, map[string]string{"a": "3", "b": "2"}, headers)
	})

	t.Run("error_stops_chain", func(t *testing.T) {
		wantErr := errors.New("login failed")
		last := setHeader("b", "2")
		chain := NewInjectorChain(
			&mock.SecurityInfoInjectorMock{InjectSecurityInfoFunc: func(ctx context.Context, headers map[string]string) error { return wantErr }},
			last,
		)
		err := chain.InjectSecurityInfo(ctx, map[string]string{})
		assert.ErrorIs(t, err, wantErr)
		assert.Empty(t, last.InjectSecurityInfoCalls())
	})
}
