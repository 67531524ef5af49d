package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamingError_Kinds(t *testing.T) {
	app := NewApplicationError(500, "overflow")
	assert.True(t, IsApplicationError(app))
	assert.False(t, IsRemoteError(app))
	assert.Equal(t, 500, ErrorCode(app))
	assert.Equal(t, "application error 500: overflow", app.Error())

	proto := NewProtocolError(msgInvalidResponse)
	assert.True(t, IsProtocolError(proto))
	assert.Equal(t, CodeServerError, proto.Code)

	remote := NewRemoteError(CodeServerError, "request failed", context.DeadlineExceeded)
	assert.True(t, IsRemoteError(remote))
	assert.ErrorIs(t, remote, context.DeadlineExceeded)
	assert.Contains(t, remote.Error(), "deadline exceeded")
}

func TestNewRemoteError_KeepsNamingError(t *testing.T) {
	app := NewApplicationError(403, "forbidden")
	wrapped := NewRemoteError(CodeServerError, "request failed", fmt.Errorf("call: %w", app))
	assert.Same(t, app, wrapped)
	assert.True(t, IsApplicationError(wrapped))
}

func TestToNamingError(t *testing.T) {
	assert.Nil(t, ToNamingError(errors.New("plain")))
	assert.Nil(t, ToNamingError(nil))
	assert.Equal(t, 0, ErrorCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", NewRemoteError(CodeClientDisconnect, "closed", ErrClientClosed))
	ne := ToNamingError(wrapped)
	require.NotNil(t, ne)
	assert.Equal(t, CodeClientDisconnect, ne.Code)
	assert.ErrorIs(t, wrapped, ErrClientClosed)
}
