package rpc

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStdioCloseReturnsWriteErrorFirst(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	writeErr := errors.New("write close failed")
	readErr := errors.New("read close failed")
	s := stdio{
		ReadCloser:  failingReadCloser{err: readErr},
		WriteCloser: failingWriteCloser{err: writeErr},
	}
	require.ErrorIs(s.Close(), writeErr)
}

func TestStdioCloseReturnsReadErrorWhenWriteSucceeds(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	readErr := errors.New("read close failed")
	s := stdio{
		ReadCloser:  failingReadCloser{err: readErr},
		WriteCloser: failingWriteCloser{err: nil},
	}
	require.ErrorIs(s.Close(), readErr)
}

type failingReadCloser struct{ err error }

func (failingReadCloser) Read(p []byte) (int, error) { return 0, io.EOF }
func (f failingReadCloser) Close() error             { return f.err }

type failingWriteCloser struct{ err error }

func (failingWriteCloser) Write(p []byte) (int, error) { return 0, io.EOF }
func (f failingWriteCloser) Close() error              { return f.err }
