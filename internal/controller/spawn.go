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

	"github.com/nix-community/nixd-sub001/internal/config"
	"github.com/nix-community/nixd-sub001/internal/evalrpc"
)

// ProcessSpawner is the default WorkerSpawner: it forks a real
// subprocess over evalrpc.Dial. Tests substitute an in-process fake
// instead.
type ProcessSpawner struct{}

func (ProcessSpawner) Spawn(ctx context.Context, argv []string, stderrPath string) (*evalrpc.Client, error) {
	t, err := evalrpc.Dial(ctx, argv, stderrPath, nil)
	if err != nil {
		return nil, err
	}
	return evalrpc.NewClient(t), nil
}

// withRole appends the worker's -role flag so its log lines self-report
// which kind of query it serves, even though the same binary and the
// same evalrpc.Evaluator methods answer both.
func withRole(argv []string, role string) []string {
	out := make([]string, len(argv), len(argv)+1)
	copy(out, argv)
	return append(out, "-role="+role)
}

// reconcileWorkers starts, restarts or stops the nixpkgs worker and each
// configured option worker so that the live set matches cfg, per spec
// §4.7's "one evaluator worker per nixpkgs and per configured option
// set". A worker is only restarted when the expression that feeds it
// actually changed, since evaluation can be expensive.
func (c *Controller) reconcileWorkers(ctx context.Context, cfg *config.Config) {
	if c.spawner == nil || len(c.attrsetWorkerArgv) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg.Nixpkgs.Expr != "" && cfg.Nixpkgs.Expr != c.nixpkgsExpr {
		if c.nixpkgs != nil {
			_ = c.nixpkgs.Close()
		}
		client, err := c.spawner.Spawn(ctx, withRole(c.attrsetWorkerArgv, "attrset"), c.nixpkgsStderr)
		if err != nil {
			c.log.Error("controller: spawn nixpkgs worker", "error", err)
			c.nixpkgs = nil
			c.nixpkgsExpr = ""
		} else {
			c.log.Info("controller: spawned nixpkgs worker", "instance", client.InstanceID(), "pid", client.Pid())
			if _, err := client.EvalExpr(ctx, cfg.Nixpkgs.Expr); err != nil {
				c.log.Error("controller: evaluate nixpkgs expression", "instance", client.InstanceID(), "error", err)
			}
			c.nixpkgs = client
			c.nixpkgsExpr = cfg.Nixpkgs.Expr
		}
	}

	wanted := map[string]bool{}
	for name, set := range cfg.Options {
		wanted[name] = true
		if c.optionExprs[name] == set.Expr {
			continue
		}
		if old, ok := c.options[name]; ok {
			_ = old.Close()
		}
		client, err := c.spawner.Spawn(ctx, withRole(c.attrsetWorkerArgv, "option"), c.optionStderr)
		if err != nil {
			c.log.Error("controller: spawn option worker", "option", name, "error", err)
			delete(c.options, name)
			delete(c.optionExprs, name)
			continue
		}
		c.log.Info("controller: spawned option worker", "option", name, "instance", client.InstanceID(), "pid", client.Pid())
		if _, err := client.EvalExpr(ctx, set.Expr); err != nil {
			c.log.Error("controller: evaluate option expression", "option", name, "instance", client.InstanceID(), "error", err)
		}
		c.options[name] = client
		c.optionExprs[name] = set.Expr
	}
	for name, client := range c.options {
		if !wanted[name] {
			_ = client.Close()
			delete(c.options, name)
			delete(c.optionExprs, name)
		}
	}
}
