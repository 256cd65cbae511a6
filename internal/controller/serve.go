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

package controller

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.lsp.dev/jsonrpc2"

	"github.com/nix-community/nixd-sub001/internal/config"
	"github.com/nix-community/nixd-sub001/internal/workpool"
)

// stdio adapts os.Stdin/os.Stdout into the single io.ReadWriteCloser
// jsonrpc2.NewStream expects, the controller's side of the same framing
// evalrpc.Transport uses for its worker pipes.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

// Options configures Serve.
type Options struct {
	Log               *slog.Logger
	PoolSize          int64
	Spawner           WorkerSpawner
	SeedConfig        *config.Config
	AttrsetWorkerArgv []string
	NixpkgsStderr     string
	OptionStderr      string
}

// Serve runs one LSP session to completion over stdin/stdout, per spec
// §6's default transport. It returns when the connection closes, either
// because the client sent exit or because the pipe itself broke.
func Serve(ctx context.Context, opts Options) error {
	pool := workpool.New(opts.PoolSize)
	c := New(opts.Log, pool, opts.Spawner, opts.SeedConfig)
	c.SetWorkerConfig(opts.AttrsetWorkerArgv, opts.NixpkgsStderr, opts.OptionStderr)

	stream := jsonrpc2.NewStream(stdio{Reader: os.Stdin, Writer: os.Stdout})
	conn := jsonrpc2.NewConn(stream)
	conn.Go(ctx, c.Handler(conn))

	c.SeedConfig(ctx, opts.SeedConfig)

	<-conn.Done()
	return conn.Err()
}
