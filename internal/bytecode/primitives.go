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

// Package bytecode implements the length-prefixed binary encoding spec
// §6/§9 calls the "byte-code format", the wire shape exchanged between
// the host and an embedded Nix AST writer: a magic+version header,
// followed by an origin record and a tree of length-prefixed node
// records tagged by a Kind enum.
//
// The encoding primitives below follow the same shape as
// encBinaryInt/encBinaryString/decBinaryInt/decBinaryString in
// tunascript's binary.go: every variable-length value is prefixed by
// its own encoded length, and decoders return the value alongside the
// number of bytes consumed so callers can advance their cursor without
// a shared io.Reader.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

func encBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func decBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("bytecode: unexpected end of data decoding bool")
	}
	switch data[0] {
	case 0:
		return false, 1, nil
	case 1:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("bytecode: invalid bool tag %d", data[0])
	}
}

func encKind(k Kind) []byte {
	enc := make([]byte, 4)
	binary.LittleEndian.PutUint32(enc, uint32(k))
	return enc
}

func decKind(data []byte) (Kind, int, error) {
	if len(data) < 4 {
		return 0, 0, fmt.Errorf("bytecode: unexpected end of data decoding kind")
	}
	return Kind(binary.LittleEndian.Uint32(data)), 4, nil
}

func encOriginKind(k OriginKind) []byte {
	return []byte{byte(k)}
}

func decOriginKind(data []byte) (OriginKind, int, error) {
	if len(data) < 1 {
		return 0, 0, fmt.Errorf("bytecode: unexpected end of data decoding origin kind")
	}
	return OriginKind(data[0]), 1, nil
}

func encInt64(v int64) []byte {
	enc := make([]byte, 8)
	binary.LittleEndian.PutUint64(enc, uint64(v))
	return enc
}

func decInt64(data []byte) (int64, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("bytecode: unexpected end of data decoding int64")
	}
	return int64(binary.LittleEndian.Uint64(data)), 8, nil
}

func encFloat64(v float64) []byte {
	return encInt64(int64(math.Float64bits(v)))
}

func decFloat64(data []byte) (float64, int, error) {
	bits, n, err := decInt64(data)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(uint64(bits)), n, nil
}

func encString(s string) []byte {
	enc := make([]byte, 0, 8+len(s))
	enc = append(enc, encInt64(int64(len(s)))...)
	enc = append(enc, s...)
	return enc
}

func decString(data []byte) (string, int, error) {
	size, n, err := decInt64(data)
	if err != nil {
		return "", 0, fmt.Errorf("bytecode: decoding string length: %w", err)
	}
	data = data[n:]
	if size < 0 || int64(len(data)) < size {
		return "", 0, fmt.Errorf("bytecode: unexpected end of data decoding string")
	}
	return string(data[:size]), n + int(size), nil
}

func encStrings(ss []string) []byte {
	enc := encInt64(int64(len(ss)))
	for _, s := range ss {
		enc = append(enc, encString(s)...)
	}
	return enc
}

func decStrings(data []byte) ([]string, int, error) {
	count, n, err := decInt64(data)
	if err != nil {
		return nil, 0, fmt.Errorf("bytecode: decoding string slice length: %w", err)
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("bytecode: negative string slice length")
	}
	total := n
	data = data[n:]
	if count == 0 {
		return nil, total, nil
	}
	out := make([]string, 0, count)
	for i := int64(0); i < count; i++ {
		s, m, err := decString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding string slice element %d: %w", i, err)
		}
		out = append(out, s)
		data = data[m:]
		total += m
	}
	return out, total, nil
}
