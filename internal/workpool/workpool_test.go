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

package workpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(2)
	var cur, max int32
	for i := 0; i < 6; i++ {
		p.Go(context.Background(), func() {
			n := atomic.AddInt32(&cur, 1)
			for {
				old := atomic.LoadInt32(&max)
				if n <= old || atomic.CompareAndSwapInt32(&max, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&cur, -1)
		})
	}
	p.Wait()
	require.LessOrEqual(t, atomic.LoadInt32(&max), int32(2))
}

func TestPoolWaitReturnsAfterAllDone(t *testing.T) {
	p := New(4)
	var done atomic.Bool
	p.Go(context.Background(), func() {
		time.Sleep(10 * time.Millisecond)
		done.Store(true)
	})
	p.Wait()
	require.True(t, done.Load())
}
