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

package syntax

// Visitor is called before (pre) and after (post) a node's children are
// visited. Either callback may be nil. Returning false from pre skips the
// node's children (post is still called for symmetry). This replaces the
// callback-subclassing pattern spec §9 flags for redesign: instrumentation
// is a plain function parameter, not a Node subtype.
type Visitor struct {
	Pre  func(n Node) bool
	Post func(n Node)
}

// Walk performs a depth-first traversal of n in document order.
func Walk(n Node, v Visitor) {
	if n == nil {
		return
	}
	descend := true
	if v.Pre != nil {
		descend = v.Pre(n)
	}
	if descend {
		for _, c := range n.Children() {
			Walk(c, v)
		}
	}
	if v.Post != nil {
		v.Post(n)
	}
}
