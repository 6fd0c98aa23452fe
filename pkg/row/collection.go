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
package row

import (
	"bytes"
	"encoding/binary"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
)

// WriteTypedSetScope opens a homogeneous, sized, duplicate-free Set scope.
func (b *Buffer) WriteTypedSetScope(
	cursor *Cursor, path string, elementArg layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTypedSetScope, layout.NewTypeArgumentList(elementArg), options)
}

// WriteTypedMapScope opens a sized, duplicate-free Map scope whose entries
// are written as an alternating key, value sequence (spec's simplification
// over carrying an explicit pair-scope per entry).
func (b *Buffer) WriteTypedMapScope(
	cursor *Cursor, path string, keyArg, valueArg layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTypedMapScope, layout.NewTypeArgumentList(keyArg, valueArg), options)
}

// elementImplied returns the type a unique scope's i'th stored element is
// implied to have (TypedSet: always its single element type; TypedMap:
// alternating key/value type by parity of i).
func elementImplied(scope *Cursor, i uint) (layout.Code, layout.TypeArgumentList) {
	if scope.ScopeType.Canonical() == layout.CodeTypedMapScope {
		a := scope.ScopeTypeArgs.At(int(i) % 2)
		return a.Type.Code(), a.Args
	}

	a := scope.ScopeTypeArgs.At(0)
	return a.Type.Code(), a.Args
}

// compareFieldValue orders two encoded element values by spec's
// binary-collation rule: first by Code, then by their raw encoded bytes.
func compareFieldValue(aCode layout.Code, aBytes []byte, bCode layout.Code, bBytes []byte) int {
	if aCode != bCode {
		if aCode < bCode {
			return -1
		}

		return 1
	}

	return bytes.Compare(aBytes, bBytes)
}

// setCount writes n into scope's 4-byte Sized element count prefix and
// updates its cached Count.
func (b *Buffer) setCount(scope *Cursor, n uint) {
	binary.LittleEndian.PutUint32(b.buf[scope.countOffset:], uint32(n))
	scope.Count = n
}

// InsertUniqueElement inserts value into a TypedSet scope (or, for a
// TypedMap scope, the next element of an alternating key/value pair) at its
// sorted position, maintaining the Unique-scope invariant that elements are
// kept in ascending binary-collation order with no duplicates. Returns
// result.Exists if an identical element (by binary collation) is already
// present, unless scope.DeferUniqueIndex is set, in which case the element
// is appended unconditionally and the caller is responsible for a later
// RebuildUniqueIndex call.
func (b *Buffer) InsertUniqueElement(scope *Cursor, value Value) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	info := scope.ScopeType.Info()
	if !info.Unique {
		panic("row: InsertUniqueElement requires a Unique scope")
	}

	newBytes := make([]byte, sparseValueSize(value.Code, value.Data))
	writeScalar(newBytes, 0, value.Code, value.Data)

	pos := scope.contentStart
	insertAt := pos

	if !scope.DeferUniqueIndex {
		for i := uint(0); i < scope.Count; i++ {
			implied, impliedArgs := elementImplied(scope, i)
			meta := readSparseMetadata(b.buf, pos, info, implied, impliedArgs)
			valOffset := pos + int(meta.n)
			valSize := variableOrFixedSize(b, valOffset, meta.code)

			cmp := compareFieldValue(value.Code, newBytes, meta.code, b.buf[valOffset:valOffset+int(valSize)])
			if cmp == 0 {
				return result.ErrExists
			}

			total := int(meta.n) + int(valSize)
			if cmp < 0 {
				insertAt = pos
				break
			}

			pos += total
			insertAt = pos
		}
	} else {
		for i := uint(0); i < scope.Count; i++ {
			implied, impliedArgs := elementImplied(scope, i)
			meta := readSparseMetadata(b.buf, pos, info, implied, impliedArgs)
			valSize := variableOrFixedSize(b, pos+int(meta.n), meta.code)
			pos += int(meta.n) + int(valSize)
		}

		insertAt = pos
	}

	metaSize := sparseMetadataSize(info, value.Code, value.Args, 0)
	newTotal := metaSize + sparseValueSize(value.Code, value.Data)

	offset := b.ensureSparse(insertAt, 0, newTotal)
	n := writeSparseMetadata(b.buf, offset, info, value.Code, value.Args, 0)
	writeScalar(b.buf, offset+int(n), value.Code, value.Data)

	b.setCount(scope, scope.Count+1)

	scope.MetaOffset = scope.contentStart
	scope.ValueOffset = scope.contentStart
	scope.Index = 0
	scope.Exists = false

	return nil
}

// RebuildUniqueIndex re-sorts a scope's elements via an insertion sort
// (spec's chosen algorithm -- elements are expected to already be nearly
// sorted after a run of DeferUniqueIndex inserts). For a TypedMap, each
// (key, value) pair sorts and moves as one unit, ordered by its key alone,
// so key/value adjacency survives the rebuild. Per spec, finding any two
// elements (or, for a TypedMap, any two keys) that compare equal fails the
// whole rebuild with result.Exists and leaves the row completely
// unmodified -- the caller must delete the duplicate itself and retry.
// Only once the full scan confirms every element is distinct does this
// write anything back, which is also why the scan works from copied bytes
// rather than mutating in place as it goes.
func (b *Buffer) RebuildUniqueIndex(scope *Cursor) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	info := scope.ScopeType.Info()
	if !info.Unique {
		panic("row: RebuildUniqueIndex requires a Unique scope")
	}

	isMap := scope.ScopeType.Canonical() == layout.CodeTypedMapScope

	// entry is one unit of reordering: a single element for a TypedSet, or
	// a whole (key, value) pair for a TypedMap, compared by key alone so a
	// pair never splits across the sort.
	type entry struct {
		keyCode  layout.Code
		keyBytes []byte
		data     []byte // raw metadata+value bytes for the whole entry, as originally encoded.
	}

	entries := make([]entry, 0, scope.Count)
	pos := scope.contentStart

	readElement := func(i uint) (meta sparseMeta, raw []byte) {
		implied, impliedArgs := elementImplied(scope, i)
		m := readSparseMetadata(b.buf, pos, info, implied, impliedArgs)
		valSize := variableOrFixedSize(b, pos+int(m.n), m.code)
		total := int(m.n) + int(valSize)

		r := make([]byte, total)
		copy(r, b.buf[pos:pos+total])
		pos += total

		return m, r
	}

	if isMap {
		for i := uint(0); i+1 < scope.Count; i += 2 {
			keyMeta, keyRaw := readElement(i)
			_, valRaw := readElement(i + 1)

			entries = append(entries, entry{
				keyCode:  keyMeta.code,
				keyBytes: keyRaw[keyMeta.n:],
				data:     append(append([]byte(nil), keyRaw...), valRaw...),
			})
		}
	} else {
		for i := uint(0); i < scope.Count; i++ {
			meta, raw := readElement(i)
			entries = append(entries, entry{keyCode: meta.code, keyBytes: raw[meta.n:], data: raw})
		}
	}

	// Insertion sort: classic O(n^2) but simple and correct, matching the
	// near-sorted case DeferUniqueIndex produces. Operates purely on
	// `entries` (copied bytes) so a duplicate found partway through can
	// still abort with the row untouched.
	sorted := make([]entry, 0, len(entries))

	for _, e := range entries {
		i := 0

		for ; i < len(sorted); i++ {
			cmp := compareFieldValue(e.keyCode, e.keyBytes, sorted[i].keyCode, sorted[i].keyBytes)
			if cmp == 0 {
				return result.ErrExists
			}

			if cmp < 0 {
				break
			}
		}

		sorted = append(sorted, entry{})
		copy(sorted[i+1:], sorted[i:])
		sorted[i] = e
	}

	totalNew := 0
	for _, e := range sorted {
		totalNew += len(e.data)
	}

	oldEnd := pos
	b.ensureSparse(scope.contentStart, uint(oldEnd-scope.contentStart), uint(totalNew))

	cur := scope.contentStart
	for _, e := range sorted {
		copy(b.buf[cur:cur+len(e.data)], e.data)
		cur += len(e.data)
	}

	newCount := uint(len(sorted))
	if isMap {
		newCount *= 2
	}

	b.setCount(scope, newCount)
	scope.MetaOffset = scope.contentStart
	scope.ValueOffset = scope.contentStart
	scope.Index = 0
	scope.Exists = false

	return nil
}
