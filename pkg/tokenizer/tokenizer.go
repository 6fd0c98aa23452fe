// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package tokenizer interns schematized property paths into small integer
// tokens. A Layout owns exactly one Tokenizer; every column's full path is
// registered with it at compile time, and sparse fields always reference
// their path by token on the wire (a path not yet interned is added when a
// field is first written under it); there is no raw UTF-8 path form.
package tokenizer

import "github.com/microsoft/hybridrow/pkg/varint"

// Tokenizer interns strings to monotonically assigned integer tokens and
// caches each token's pre-encoded LEB128 form.
type Tokenizer struct {
	strings []string
	encoded [][]byte
	byPath  map[string]uint32
}

// New constructs a Tokenizer with token 0 pre-assigned to the empty path, per
// spec.
func New() *Tokenizer {
	t := &Tokenizer{
		byPath: make(map[string]uint32),
	}
	t.add("")

	return t
}

// Count returns the number of interned tokens.
func (t *Tokenizer) Count() uint32 {
	return uint32(len(t.strings))
}

// Add interns path, returning its token. If path is already interned, the
// existing token is returned without allocating a new one.
func (t *Tokenizer) Add(path string) uint32 {
	if tok, ok := t.byPath[path]; ok {
		return tok
	}

	return t.add(path)
}

func (t *Tokenizer) add(path string) uint32 {
	tok := uint32(len(t.strings))
	t.strings = append(t.strings, path)
	t.encoded = append(t.encoded, encodeToken(tok))
	t.byPath[path] = tok

	return tok
}

// TryFindToken looks up the token assigned to path.
func (t *Tokenizer) TryFindToken(path string) (uint32, bool) {
	tok, ok := t.byPath[path]
	return tok, ok
}

// TryFindString looks up the path a token was assigned to.
func (t *Tokenizer) TryFindString(token uint32) (string, bool) {
	if token >= uint32(len(t.strings)) {
		return "", false
	}

	return t.strings[token], true
}

// Encoded returns the pre-computed LEB128 encoding of a token's varint form
// (at most varint.MaxBytes long). Panics if token is not a valid, previously
// interned token: this is a programmer-error invariant violation, not a
// recoverable condition.
func (t *Tokenizer) Encoded(token uint32) []byte {
	if token >= uint32(len(t.encoded)) {
		panic("tokenizer: unknown token")
	}

	return t.encoded[token]
}

func encodeToken(tok uint32) []byte {
	buf := make([]byte, varint.MaxBytes)
	n := varint.WriteUnsigned(buf, 0, uint64(tok))

	return buf[:n]
}
