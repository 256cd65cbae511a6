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
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// pathOf turns a client-supplied document URI into the filesystem path
// the rest of the controller keys its stores by.
func pathOf(u protocol.DocumentURI) string {
	return uri.URI(u).Filename()
}

// uriOf is pathOf's inverse, used when building protocol.Location values
// that point back into a document (definition results, diagnostics).
func uriOf(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}
