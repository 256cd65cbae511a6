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

package evalrpc

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.lsp.dev/jsonrpc2"
)

// Dispatch builds the jsonrpc2.Handler a worker process runs its message
// loop with: it decodes each request's params, calls the matching
// Evaluator method, and replies. Per spec §4.7/§7, any error the
// Evaluator returns becomes an RPC error reply — it never unwinds the
// worker's loop, so one bad expression never kills the process.
func Dispatch(eval Evaluator, log *slog.Logger) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case MethodEvalExpr:
			return call(ctx, reply, req, log, func(p EvalExprParams) (any, error) {
				return eval.EvalExpr(ctx, p)
			})
		case MethodAttrpathInfo:
			return call(ctx, reply, req, log, func(p AttrpathInfoParams) (any, error) {
				return eval.AttrpathInfo(ctx, p)
			})
		case MethodAttrpathComplete:
			return call(ctx, reply, req, log, func(p AttrpathCompleteParams) (any, error) {
				return eval.AttrpathComplete(ctx, p)
			})
		case MethodOptionInfo:
			return call(ctx, reply, req, log, func(p OptionInfoParams) (any, error) {
				return eval.OptionInfo(ctx, p)
			})
		case MethodOptionComplete:
			return call(ctx, reply, req, log, func(p OptionCompleteParams) (any, error) {
				return eval.OptionComplete(ctx, p)
			})
		default:
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, "unknown method: "+req.Method()))
		}
	}
}

// call decodes req's params as P, invokes fn, and replies with the
// result or a wrapped error. Decode failures are logged at debug per
// spec §7 ("RPC errors ... surfaced only if a user-visible request
// demanded the data; otherwise logged at debug") since a malformed
// request from the controller itself is a programming error, not
// something the end user needs to see.
func call[P any](ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, log *slog.Logger, fn func(P) (any, error)) error {
	var params P
	if len(req.Params()) > 0 {
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			if log != nil {
				log.Debug("evalrpc: bad params", "method", req.Method(), "error", err)
			}
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.ParseError, err.Error()))
		}
	}
	result, err := fn(params)
	if err != nil {
		if log != nil {
			log.Debug("evalrpc: handler error", "method", req.Method(), "error", err)
		}
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error()))
	}
	return reply(ctx, result, nil)
}

// NotifyReady sends the "ready" notification a worker emits at startup,
// per spec §6.
func NotifyReady(ctx context.Context, conn jsonrpc2.Conn, pid int) error {
	return conn.Notify(ctx, MethodReady, ReadyParams{Pid: pid})
}
