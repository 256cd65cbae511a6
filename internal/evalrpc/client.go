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

	"github.com/google/uuid"
)

// Client is the controller-side typed wrapper over a Transport's
// jsonrpc2.Conn, one per worker. Every method is a thin Call that
// marshals params and unmarshals the result through jsonrpc2, which
// itself performs the ID correlation spec §4.7 describes.
type Client struct {
	t          *Transport
	instanceID string
}

// NewClient wraps an already-dialled Transport. instanceID identifies
// this particular worker process across respawns, distinct from its pid
// (which the OS can and does reuse): log lines and restart bookkeeping
// key off instanceID rather than pid so a stale log entry from a dead
// worker is never confused with a freshly spawned one that happened to
// land on the same pid.
func NewClient(t *Transport) *Client {
	return &Client{t: t, instanceID: uuid.NewString()}
}

// InstanceID returns the client's unique per-spawn identifier.
func (c *Client) InstanceID() string { return c.instanceID }

func (c *Client) EvalExpr(ctx context.Context, expr string) (EvalExprResponse, error) {
	var resp EvalExprResponse
	_, err := c.t.Conn().Call(ctx, MethodEvalExpr, EvalExprParams{Expr: expr}, &resp)
	return resp, err
}

func (c *Client) AttrpathInfo(ctx context.Context, path []string) (AttrpathInfoResponse, error) {
	var resp AttrpathInfoResponse
	_, err := c.t.Conn().Call(ctx, MethodAttrpathInfo, AttrpathInfoParams{Path: path}, &resp)
	return resp, err
}

func (c *Client) AttrpathComplete(ctx context.Context, p AttrpathCompleteParams) (AttrpathCompleteResponse, error) {
	if p.MaxItems <= 0 {
		p.MaxItems = 30
	}
	var resp AttrpathCompleteResponse
	_, err := c.t.Conn().Call(ctx, MethodAttrpathComplete, p, &resp)
	return resp, err
}

func (c *Client) OptionInfo(ctx context.Context, path []string) (OptionDescription, error) {
	var resp OptionDescription
	_, err := c.t.Conn().Call(ctx, MethodOptionInfo, OptionInfoParams{Path: path}, &resp)
	return resp, err
}

func (c *Client) OptionComplete(ctx context.Context, p OptionCompleteParams) (OptionCompleteResponse, error) {
	var resp OptionCompleteResponse
	_, err := c.t.Conn().Call(ctx, MethodOptionComplete, p, &resp)
	return resp, err
}

// Pid proxies Transport.Pid for log attribution.
func (c *Client) Pid() int { return c.t.Pid() }

// Done proxies Transport.Done so the controller's worker-pool can select
// on every live worker's death in one place.
func (c *Client) Done() <-chan struct{} { return c.t.Done() }

// Close proxies Transport.Close.
func (c *Client) Close() error { return c.t.Close() }
