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

// Command nixd-attrset-worker is the evaluator worker the controller
// spawns over evalrpc.Dial, one per nixpkgs expression and one per
// configured option set: it evaluates a single expression on request
// and answers attrpathInfo/attrpathComplete/optionInfo/optionComplete
// queries against the resulting tree. Both roles share this binary and
// this process because attrset.Worker's evaluator methods cover both
// attribute-set and option-tree queries against the same stored root.
// The controller redirects this process's stderr to its own log file
// before exec, so nothing here touches a log path itself.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"go.lsp.dev/jsonrpc2"

	"github.com/nix-community/nixd-sub001/internal/attrset"
	"github.com/nix-community/nixd-sub001/internal/evalrpc"
)

// role only selects the "component" attribute attached to this
// process's log lines; attrset.Worker answers both attribute-set and
// option queries regardless of its value.
var role = flag.String("role", "attrset", "component label for log lines: attrset or option")

// stdio adapts os.Stdin/os.Stdout into the single io.ReadWriteCloser
// jsonrpc2.NewStream expects, mirroring controller.stdio on the other
// end of the same pipe.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

func main() {
	flag.Parse()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", *role+"-worker", "pid", os.Getpid())

	worker := attrset.NewWorker()
	stream := jsonrpc2.NewStream(stdio{Reader: os.Stdin, Writer: os.Stdout})
	conn := jsonrpc2.NewConn(stream)

	ctx := context.Background()
	conn.Go(ctx, evalrpc.Dispatch(worker, log))

	if err := evalrpc.NotifyReady(ctx, conn, os.Getpid()); err != nil {
		log.Error("nixd-attrset-worker: notify ready", "error", err)
	}

	<-conn.Done()
	if err := conn.Err(); err != nil {
		log.Error("nixd-attrset-worker: connection closed", "error", err)
		os.Exit(1)
	}
}
