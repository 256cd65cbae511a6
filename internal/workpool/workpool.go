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

// Package workpool implements the "eviction-free work pool" of spec
// §4.9/§5: a bounded pool of goroutines that runs LSP request handlers
// concurrently with the single inbound I/O reader, using a weighted
// semaphore so that submission never evicts or drops a queued handler —
// it blocks the submitter instead, which here is always the I/O reader's
// dispatch loop. golang.org/x/sync/semaphore is already a transitive
// dependency of the retrieval pack (kpumuk-thrift-weaver pulls it in for
// tree-sitter's concurrency helpers); this package promotes it to a
// direct one.
package workpool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool runs submitted functions on a bounded number of goroutines.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// New returns a Pool that runs at most size handlers concurrently.
func New(size int64) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(size)}
}

// Go blocks until a slot is free (or ctx is done), then runs fn on a new
// goroutine. A ctx error (e.g. cancellation while queued) causes Go to
// run fn immediately inline on the caller's goroutine, without a slot
// (fn is not passed the error), so a handler always gets a
// chance to reply with a cancellation error rather than being silently
// dropped, per spec §5's best-effort $/cancelRequest policy.
func (p *Pool) Go(ctx context.Context, fn func()) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		fn()
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		fn()
	}()
}

// Wait blocks until every submitted fn has returned. The controller
// calls this during shutdown, after closing inbound ports on workers,
// per spec §5's exit sequence.
func (p *Pool) Wait() { p.wg.Wait() }
