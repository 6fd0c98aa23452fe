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
	"fmt"

	"github.com/microsoft/hybridrow/internal/bit"
	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
	"github.com/microsoft/hybridrow/pkg/varint"
)

// ============================================================================
// Variable-column bookkeeping shared by the root scope and nested UDT scopes
// (spec §4.7.1-4.7.2).
// ============================================================================

// variableColumns returns l's variable-storage columns ordered by their
// 0-based variable index (Column.Offset), suitable for indexing directly by
// that index.
func variableColumns(l *layout.Layout) []*layout.Column {
	cols := make([]*layout.Column, l.NumVariable)

	for i := range l.Columns {
		c := &l.Columns[i]
		if c.Storage == layout.StorageVariable {
			cols[c.Offset] = c
		}
	}

	return cols
}

// variableEncodedSize returns the number of bytes a present variable column's
// encoding occupies at offset: length-prefix+payload for Utf8/Binary, or just
// the LEB128 width for VarInt/VarUInt (which are self-delimiting and carry no
// separate length prefix).
func variableEncodedSize(buf []byte, offset int, code layout.Code) uint {
	switch code {
	case layout.CodeUtf8, layout.CodeBinary:
		n, m := varint.ReadUnsigned(buf, offset)
		return m + uint(n)
	case layout.CodeVarInt, layout.CodeVarUInt:
		_, m := varint.ReadUnsigned(buf, offset)
		return m
	default:
		panic(fmt.Sprintf("row: %v is not a variable-storage type", code))
	}
}

// variableColumnOffset returns the absolute byte offset of the uptoIndex'th
// variable column (0-based) within scope scopeStart, by walking every
// present variable column before it and summing its encoded width.
// uptoIndex == l.NumVariable yields the offset of the first byte past the
// variable region (i.e. the start of the sparse region).
func variableColumnOffset(buf *Buffer, l *layout.Layout, scopeStart int, uptoIndex int) int {
	offset := scopeStart + int(l.MinRequiredSize)

	cols := variableColumns(l)
	for i := 0; i < uptoIndex; i++ {
		c := cols[i]
		if !bit.ReadBit(buf.buf, scopeStart, c.NullBit) {
			continue
		}

		offset += int(variableEncodedSize(buf.buf, offset, c.Code()))
	}

	return offset
}

// ============================================================================
// Fixed columns (spec §4.7.1).
// ============================================================================

// ReadFixedBool reads a fixed Boolean column's value bit. Returns
// result.NotFound if the column is nullable and its presence bit is clear.
func (b *Buffer) ReadFixedBool(scope *Cursor, col *layout.Column) (bool, error) {
	if !bit.ReadBit(b.buf, scope.Start(), col.NullBit) {
		return false, result.ErrNotFound
	}

	return bit.ReadBit(b.buf, scope.Start(), col.BoolBit), nil
}

// WriteFixedBool writes a fixed Boolean column's value bit and sets its
// presence bit. Requires scope to be a writable UDT scope.
func (b *Buffer) WriteFixedBool(scope *Cursor, col *layout.Column, value bool) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	if value {
		bit.SetBit(b.buf, scope.Start(), col.BoolBit)
	} else {
		bit.UnsetBit(b.buf, scope.Start(), col.BoolBit)
	}

	bit.SetBit(b.buf, scope.Start(), col.NullBit)

	return nil
}

// ReadFixedBytes reads a fixed-size, non-Boolean column's raw value bytes.
// Returns result.NotFound if the column is nullable and absent. The returned
// slice aliases the Buffer's backing array.
func (b *Buffer) ReadFixedBytes(scope *Cursor, col *layout.Column) ([]byte, error) {
	if !bit.ReadBit(b.buf, scope.Start(), col.NullBit) {
		return nil, result.ErrNotFound
	}

	off := scope.Start() + int(col.Offset)

	return b.buf[off : off+int(col.Size)], nil
}

// WriteFixedBytes writes value into a fixed-size column's preallocated byte
// range (value must be exactly col.Size bytes -- a length mismatch is a
// programmer error, since the caller is expected to have validated it
// against the schema) and sets its presence bit. Requires scope to be a
// writable UDT scope.
func (b *Buffer) WriteFixedBytes(scope *Cursor, col *layout.Column, value []byte) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	if uint(len(value)) != col.Size {
		panic(fmt.Sprintf("row: fixed column %q expects %d bytes, got %d", col.FullPath, col.Size, len(value)))
	}

	off := scope.Start() + int(col.Offset)
	copy(b.buf[off:off+int(col.Size)], value)
	bit.SetBit(b.buf, scope.Start(), col.NullBit)

	return nil
}

// DeleteFixed clears a nullable fixed column's presence bit. A no-op on a
// non-nullable column (which, per invariant, always reads as present) and on
// an already-absent nullable column.
func (b *Buffer) DeleteFixed(scope *Cursor, col *layout.Column) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	bit.UnsetBit(b.buf, scope.Start(), col.NullBit)

	return nil
}

// ============================================================================
// Variable columns (spec §4.7.2).
// ============================================================================

// ReadVariable reads a variable column's decoded payload bytes (for
// Utf8/Binary) or raw LEB128 bytes (for VarInt/VarUInt, which the caller
// decodes via varint.ReadSigned/ReadUnsigned). Returns result.NotFound if
// absent.
func (b *Buffer) ReadVariable(scope *Cursor, col *layout.Column) ([]byte, error) {
	start := scope.Start()
	if !bit.ReadBit(b.buf, start, col.NullBit) {
		return nil, result.ErrNotFound
	}

	offset := variableColumnOffset(b, scope.Layout, start, int(col.Offset))

	switch col.Code() {
	case layout.CodeUtf8, layout.CodeBinary:
		n, m := varint.ReadUnsigned(b.buf, offset)
		return b.buf[offset+int(m) : offset+int(m)+int(n)], nil
	default: // VarInt, VarUInt: the raw LEB128 bytes themselves.
		size := variableEncodedSize(b.buf, offset, col.Code())
		return b.buf[offset : offset+int(size)], nil
	}
}

// WriteVariable writes encoded (the already-LEB128-encoded payload for
// VarInt/VarUInt, or the raw Utf8/Binary payload bytes) into a variable
// column, growing or shrinking the row as needed, and sets its presence bit.
// Returns result.TooBig if col declares a maximum length and encoded exceeds
// it. Requires scope to be a writable UDT scope.
func (b *Buffer) WriteVariable(scope *Cursor, col *layout.Column, encoded []byte) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	if col.Size != 0 && uint(len(encoded)) > col.Size {
		return result.ErrTooBig
	}

	start := scope.Start()

	var newTotal uint

	switch col.Code() {
	case layout.CodeUtf8, layout.CodeBinary:
		newTotal = varint.CountUnsigned(uint64(len(encoded))) + uint(len(encoded))
	default:
		newTotal = uint(len(encoded))
	}

	offset, oldTotal := b.ensureVariable(scope, col, newTotal)

	switch col.Code() {
	case layout.CodeUtf8, layout.CodeBinary:
		n := varint.WriteUnsigned(b.buf, offset, uint64(len(encoded)))
		copy(b.buf[offset+int(n):offset+int(n)+len(encoded)], encoded)
	default:
		copy(b.buf[offset:offset+len(encoded)], encoded)
	}

	_ = oldTotal
	bit.SetBit(b.buf, start, col.NullBit)

	return nil
}

// DeleteVariable removes a variable column's bytes (shrinking the row) and
// clears its presence bit. A no-op if already absent.
func (b *Buffer) DeleteVariable(scope *Cursor, col *layout.Column) error {
	if !scope.writable() {
		return result.ErrInsufficientPermissions
	}

	start := scope.Start()
	if !bit.ReadBit(b.buf, start, col.NullBit) {
		return nil
	}

	b.ensureVariable(scope, col, 0)
	bit.UnsetBit(b.buf, start, col.NullBit)

	return nil
}

// ensureVariable is the grow/shift primitive underlying every variable-column
// write: it computes the column's current offset and encoded size, shifts
// the remainder of the row by the delta between newSize and the current
// size, and returns the (possibly unchanged) offset the caller should write
// newSize bytes at, along with the prior encoded size (0 if the column was
// absent).
func (b *Buffer) ensureVariable(scope *Cursor, col *layout.Column, newSize uint) (offset int, oldSize uint) {
	start := scope.Start()
	offset = variableColumnOffset(b, scope.Layout, start, int(col.Offset))

	if bit.ReadBit(b.buf, start, col.NullBit) {
		oldSize = variableEncodedSize(b.buf, offset, col.Code())
	}

	delta := int(newSize) - int(oldSize)
	if delta != 0 {
		b.shift(offset+int(oldSize), delta)
	}

	return offset, oldSize
}
