// Package rpc spawns and supervises language-server child processes and
// wires each one's stdio into a jsonrpc2 connection.
package rpc

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
)

// stdio adapts a child process's stdin/stdout pipes into the single
// io.ReadWriteCloser jsonrpc2.NewBufferedStream wants.
type stdio struct {
	io.ReadCloser
	io.WriteCloser
}

func (s stdio) Close() error {
	werr := s.WriteCloser.Close()
	rerr := s.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Process is one running language-server child process with its jsonrpc2
// connection already established over Content-Length-framed stdio.
type Process struct {
	Lang    string
	Conn    *jsonrpc2.Conn
	cmd     *exec.Cmd
	stderr  *os.File
	closeMu sync.Mutex
	closed  bool
}

// Start launches command/args as a child process, sends its stderr to a
// per-language log file under logDir (discarded when logDir is empty), and
// returns a Process whose Conn is
// ready for initialize. handler services server-to-client requests and
// notifications (window/logMessage, $/progress, publishDiagnostics, and the
// experimental server-status notification).
func Start(ctx context.Context, lang, logDir, command string, args []string, handler jsonrpc2.Handler, opts ...jsonrpc2.ConnOpt) (*Process, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("rpc: %s: stdin pipe: %w", lang, err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("rpc: %s: stdout pipe: %w", lang, err)
	}

	var stderrFile *os.File
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("rpc: %s: log dir: %w", lang, err)
		}
		stderrFile, err = os.Create(filepath.Join(logDir, lang+".stderr.log"))
		if err != nil {
			return nil, fmt.Errorf("rpc: %s: stderr log: %w", lang, err)
		}
		cmd.Stderr = stderrFile
	}

	if err := cmd.Start(); err != nil {
		if stderrFile != nil {
			stderrFile.Close()
		}
		return nil, fmt.Errorf("rpc: %s: start %s: %w", lang, command, err)
	}

	stream := stdio{ReadCloser: stdoutPipe, WriteCloser: stdinPipe}
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}), handler, opts...)

	p := &Process{Lang: lang, Conn: conn, cmd: cmd, stderr: stderrFile}

	go func() {
		<-conn.DisconnectNotify()
		log.Printf("rpc: %s: connection closed", lang)
	}()

	return p, nil
}

// Close shuts the jsonrpc2 connection and waits for the child process to
// exit, killing it if it does not exit promptly on its own.
func (p *Process) Close() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	connErr := p.Conn.Close()

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-time.After(2 * time.Second):
		if err := p.cmd.Process.Kill(); err != nil {
			log.Printf("rpc: %s: kill: %v", p.Lang, err)
		}
		waitErr = <-done
	}

	if p.stderr != nil {
		p.stderr.Close()
	}
	if connErr != nil && connErr != io.EOF {
		return connErr
	}
	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); ok {
			return nil
		}
		return waitErr
	}
	return nil
}
