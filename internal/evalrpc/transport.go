// Copyright 2024 The Nixd-sub001 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package evalrpc implements the controller<->worker transport of spec
// §4.7: Content-Length-framed JSON-RPC 2.0 over a spawned child
// process's piped stdio. It reuses go.lsp.dev/jsonrpc2, the same framing
// library the controller's LSP connection uses, since spec §4.7 is
// explicit that the two wire formats are identical ("Framing: ...
// identical to LSP"); a worker transport is simply a second jsonrpc2.Conn
// whose peer is a subprocess instead of the editor.
package evalrpc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.lsp.dev/jsonrpc2"
)

// pipe adapts a child process's separate stdin/stdout pipes into the
// single io.ReadWriteCloser jsonrpc2.NewStream expects.
type pipe struct {
	io.ReadCloser
	w io.WriteCloser
}

func (p *pipe) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipe) Close() error {
	werr := p.w.Close()
	rerr := p.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Transport is a typed value with a single owner for one worker's
// subprocess and its RPC connection, per spec §9's "model subprocess
// management as a typed transport value with a single owner" redesign
// note. Only the owner goroutine (the one that called Dial) writes
// outbound frames; jsonrpc2.Conn serialises that internally with its own
// mutex around frame emission, matching spec §5.
type Transport struct {
	cmd  *exec.Cmd
	conn jsonrpc2.Conn

	mu     sync.Mutex
	closed bool
}

// Dial spawns argv[0] with argv[1:], pipes its stdin/stdout into a new
// jsonrpc2.Conn, redirects its stderr to stderrPath (or discards it if
// stderrPath is empty, per spec §6's "defaulting to /dev/null"), and
// starts serving incoming requests/notifications on handler.
func Dial(ctx context.Context, argv []string, stderrPath string, handler jsonrpc2.Handler) (*Transport, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("evalrpc: empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)

	stderr, err := openStderr(stderrPath)
	if err != nil {
		return nil, fmt.Errorf("evalrpc: open stderr: %w", err)
	}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("evalrpc: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("evalrpc: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("evalrpc: start %s: %w", argv[0], err)
	}

	stream := jsonrpc2.NewStream(&pipe{ReadCloser: stdout, w: stdin})
	conn := jsonrpc2.NewConn(stream)
	if handler != nil {
		conn.Go(ctx, handler)
	}

	return &Transport{cmd: cmd, conn: conn}, nil
}

func openStderr(path string) (*os.File, error) {
	if path == "" {
		path = os.DevNull
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
}

// Conn exposes the underlying jsonrpc2 connection for Call/Notify.
func (t *Transport) Conn() jsonrpc2.Conn { return t.conn }

// Pid returns the worker process's pid, used in log attributes per
// SPEC_FULL's ambient-stack logging section.
func (t *Transport) Pid() int {
	if t.cmd.Process == nil {
		return -1
	}
	return t.cmd.Process.Pid
}

// Done returns a channel closed when the underlying connection dies,
// either because the worker exited or because the transport was closed.
// The controller selects on this to detect a dead worker per spec §4.7
// ("A worker crash is observed by the controller via transport close").
func (t *Transport) Done() <-chan struct{} { return t.conn.Done() }

// Err returns the error, if any, that caused Done to close.
func (t *Transport) Err() error { return t.conn.Err() }

// Close closes the RPC connection and waits for the child process to
// exit. jsonrpc2.Conn.Close fails every outstanding Call with an error,
// satisfying spec §4.7's "drains all pending continuations" requirement
// without evalrpc needing its own pending-table bookkeeping.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	cerr := t.conn.Close()
	_ = t.cmd.Wait()
	return cerr
}
