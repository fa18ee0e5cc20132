package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cause := errors.New("boom")
	err := Wrap(InternalError, "something failed", cause)
	require.ErrorIs(err, cause)
	require.Contains(err.Error(), "boom")
	require.Contains(err.Error(), "something failed")
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	ge := New(FileNotFound, "no such file")
	wrapped := fmt.Errorf("context: %w", ge)

	got, ok := As(wrapped)
	require.True(ok)
	require.Equal(FileNotFound, got.Code)
}

func TestAsRejectsPlainError(t *testing.T) {
	t.Parallel()
	_, ok := As(errors.New("plain"))
	require.False(t, ok)
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Equal(400, HTTPStatus(FileNotFound))
	require.Equal(400, HTTPStatus(UnsupportedFileType))
	require.Equal(400, HTTPStatus(IdentifierNotFound))
	require.Equal(500, HTTPStatus(LspClientNotFound))
	require.Equal(500, HTTPStatus(InternalError))
	require.Equal(500, HTTPStatus(RecursionLimitExceeded))
	require.Equal(501, HTTPStatus(NotImplemented))
}
