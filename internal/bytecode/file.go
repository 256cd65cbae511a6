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

import (
	"encoding/binary"
	"fmt"
)

// Encode writes the magic+version header, origin and node records for
// root, returning the complete byte-code stream.
func Encode(origin Origin, root Node) ([]byte, error) {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], Version)

	originBytes, err := encodeOrigin(origin)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encoding origin: %w", err)
	}
	nodeBytes, err := encodeNode(root)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encoding root node: %w", err)
	}

	out := make([]byte, 0, len(header)+len(originBytes)+len(nodeBytes))
	out = append(out, header...)
	out = append(out, originBytes...)
	out = append(out, nodeBytes...)
	return out, nil
}

// Decode parses a stream Encode produced, returning the origin and root
// node. It rejects a stream with the wrong magic or an unsupported
// version outright rather than guessing at a different layout.
func Decode(data []byte) (Origin, Node, error) {
	if len(data) < 8 {
		return Origin{}, nil, fmt.Errorf("bytecode: stream too short for header")
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != Magic {
		return Origin{}, nil, fmt.Errorf("bytecode: bad magic %#x, want %#x", magic, Magic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return Origin{}, nil, fmt.Errorf("bytecode: unsupported version %d, want %d", version, Version)
	}
	data = data[8:]

	origin, n, err := decodeOrigin(data)
	if err != nil {
		return Origin{}, nil, fmt.Errorf("bytecode: decoding origin: %w", err)
	}
	data = data[n:]

	root, _, err := decodeNode(data)
	if err != nil {
		return Origin{}, nil, fmt.Errorf("bytecode: decoding root node: %w", err)
	}
	return origin, root, nil
}
