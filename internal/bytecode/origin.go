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

package bytecode

import "fmt"

// Origin records what produced the source text a byte-code stream was
// compiled from: nothing, standard input, an in-memory string, or a
// file path. Path is only meaningful when Kind is OriginPath.
//
// The source this is grounded on (nixbc::serialize(std::ostream&, const
// Origin&)) writes the OK_Path payload and then falls through to an
// unconditional assert regardless of which case fired, so a release
// build of that function aborts on every origin it serialises. Every
// origin kind below returns as soon as it has written its payload;
// encodeOrigin only reaches its own error path for a value outside the
// four known kinds.
type Origin struct {
	Kind OriginKind
	Path string
}

func encodeOrigin(o Origin) ([]byte, error) {
	enc := encOriginKind(o.Kind)
	switch o.Kind {
	case OriginNone, OriginStdin, OriginString:
		return enc, nil
	case OriginPath:
		return append(enc, encString(o.Path)...), nil
	default:
		return nil, fmt.Errorf("bytecode: unhandled origin kind %d", o.Kind)
	}
}

func decodeOrigin(data []byte) (Origin, int, error) {
	kind, n, err := decOriginKind(data)
	if err != nil {
		return Origin{}, 0, err
	}
	data = data[n:]
	switch kind {
	case OriginNone, OriginStdin, OriginString:
		return Origin{Kind: kind}, n, nil
	case OriginPath:
		path, m, err := decString(data)
		if err != nil {
			return Origin{}, 0, fmt.Errorf("bytecode: decoding origin path: %w", err)
		}
		return Origin{Kind: kind, Path: path}, n + m, nil
	default:
		return Origin{}, 0, fmt.Errorf("bytecode: unhandled origin kind %d", kind)
	}
}
