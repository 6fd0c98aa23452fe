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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
	"github.com/microsoft/hybridrow/pkg/varint"
)

// Value is the decoded payload of one sparse field: the scalar itself for
// primitives (bool, intN/uintN, float32/64, string for Utf8, []byte for
// Binary and the fixed-width blob types, int64/uint64 for VarInt/VarUInt),
// or nil when the field is a scope (its contents are reached by opening a
// child Cursor, not by reading a Value).
type Value struct {
	Code layout.Code
	Args layout.TypeArgumentList
	Data any
}

// ============================================================================
// Scalar value sizing / encode / decode.
// ============================================================================

func scalarSize(code layout.Code, data any) uint {
	switch code {
	case layout.CodeNull, layout.CodeBoolean, layout.CodeBooleanFalse:
		return 0
	case layout.CodeInt8, layout.CodeUInt8:
		return 1
	case layout.CodeInt16, layout.CodeUInt16:
		return 2
	case layout.CodeInt32, layout.CodeUInt32, layout.CodeFloat32:
		return 4
	case layout.CodeInt64, layout.CodeUInt64, layout.CodeFloat64, layout.CodeUnixDateTime:
		return 8
	case layout.CodeFloat128, layout.CodeDecimal, layout.CodeDateTime, layout.CodeGuid:
		return 16
	case layout.CodeMongoObjectId:
		return 12
	case layout.CodeVarInt:
		return varint.CountSigned(data.(int64))
	case layout.CodeVarUInt:
		return varint.CountUnsigned(data.(uint64))
	case layout.CodeUtf8:
		s := data.(string)
		return varint.CountUnsigned(uint64(len(s))) + uint(len(s))
	case layout.CodeBinary:
		bs := data.([]byte)
		return varint.CountUnsigned(uint64(len(bs))) + uint(len(bs))
	default:
		panic(fmt.Sprintf("row: %v has no scalar encoding", code))
	}
}

func writeScalar(buf []byte, offset int, code layout.Code, data any) uint {
	switch code {
	case layout.CodeNull, layout.CodeBoolean, layout.CodeBooleanFalse:
		return 0 // the value is carried entirely by the type code itself.
	case layout.CodeInt8:
		buf[offset] = byte(data.(int8))
		return 1
	case layout.CodeUInt8:
		buf[offset] = data.(uint8)
		return 1
	case layout.CodeInt16:
		binary.LittleEndian.PutUint16(buf[offset:], uint16(data.(int16)))
		return 2
	case layout.CodeUInt16:
		binary.LittleEndian.PutUint16(buf[offset:], data.(uint16))
		return 2
	case layout.CodeInt32:
		binary.LittleEndian.PutUint32(buf[offset:], uint32(data.(int32)))
		return 4
	case layout.CodeUInt32:
		binary.LittleEndian.PutUint32(buf[offset:], data.(uint32))
		return 4
	case layout.CodeFloat32:
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(data.(float32)))
		return 4
	case layout.CodeInt64:
		binary.LittleEndian.PutUint64(buf[offset:], uint64(data.(int64)))
		return 8
	case layout.CodeUInt64:
		binary.LittleEndian.PutUint64(buf[offset:], data.(uint64))
		return 8
	case layout.CodeFloat64:
		binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(data.(float64)))
		return 8
	case layout.CodeUnixDateTime:
		binary.LittleEndian.PutUint64(buf[offset:], uint64(data.(int64)))
		return 8
	case layout.CodeFloat128, layout.CodeDecimal, layout.CodeDateTime, layout.CodeGuid:
		bs := data.([]byte)
		copy(buf[offset:offset+16], bs)
		return 16
	case layout.CodeMongoObjectId:
		bs := data.([]byte)
		copy(buf[offset:offset+12], bs)
		return 12
	case layout.CodeVarInt:
		return varint.WriteSigned(buf, offset, data.(int64))
	case layout.CodeVarUInt:
		return varint.WriteUnsigned(buf, offset, data.(uint64))
	case layout.CodeUtf8:
		s := data.(string)
		n := varint.WriteUnsigned(buf, offset, uint64(len(s)))
		copy(buf[offset+int(n):], s)
		return n + uint(len(s))
	case layout.CodeBinary:
		bs := data.([]byte)
		n := varint.WriteUnsigned(buf, offset, uint64(len(bs)))
		copy(buf[offset+int(n):], bs)
		return n + uint(len(bs))
	default:
		panic(fmt.Sprintf("row: %v has no scalar encoding", code))
	}
}

func readScalar(buf []byte, offset int, code layout.Code) (any, uint) {
	switch code {
	case layout.CodeNull:
		return nil, 0
	case layout.CodeBoolean:
		return true, 0
	case layout.CodeBooleanFalse:
		return false, 0
	case layout.CodeInt8:
		return int8(buf[offset]), 1
	case layout.CodeUInt8:
		return buf[offset], 1
	case layout.CodeInt16:
		return int16(binary.LittleEndian.Uint16(buf[offset:])), 2
	case layout.CodeUInt16:
		return binary.LittleEndian.Uint16(buf[offset:]), 2
	case layout.CodeInt32:
		return int32(binary.LittleEndian.Uint32(buf[offset:])), 4
	case layout.CodeUInt32:
		return binary.LittleEndian.Uint32(buf[offset:]), 4
	case layout.CodeFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:])), 4
	case layout.CodeInt64:
		return int64(binary.LittleEndian.Uint64(buf[offset:])), 8
	case layout.CodeUInt64:
		return binary.LittleEndian.Uint64(buf[offset:]), 8
	case layout.CodeFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:])), 8
	case layout.CodeUnixDateTime:
		return int64(binary.LittleEndian.Uint64(buf[offset:])), 8
	case layout.CodeFloat128, layout.CodeDecimal, layout.CodeDateTime, layout.CodeGuid:
		out := make([]byte, 16)
		copy(out, buf[offset:offset+16])
		return out, 16
	case layout.CodeMongoObjectId:
		out := make([]byte, 12)
		copy(out, buf[offset:offset+12])
		return out, 12
	case layout.CodeVarInt:
		v, n := varint.ReadSigned(buf, offset)
		return v, n
	case layout.CodeVarUInt:
		v, n := varint.ReadUnsigned(buf, offset)
		return v, n
	case layout.CodeUtf8:
		length, n := varint.ReadUnsigned(buf, offset)
		return string(buf[offset+int(n) : offset+int(n)+int(length)]), n + uint(length)
	case layout.CodeBinary:
		length, n := varint.ReadUnsigned(buf, offset)
		out := make([]byte, length)
		copy(out, buf[offset+int(n):offset+int(n)+int(length)])
		return out, n + uint(length)
	default:
		panic(fmt.Sprintf("row: %v has no scalar encoding", code))
	}
}

// ============================================================================
// Sparse field metadata (spec §4.6): [path token]? [type code + type args]? value.
// Path is omitted inside an Indexed scope (elements are addressed
// positionally); the type portion is omitted when the enclosing scope's type
// arguments already imply it, unless code.AlwaysNeedsTypeCode.
// ============================================================================

func needsExplicitTypeCode(scopeInfo layout.ScopeInfo, code layout.Code) bool {
	return !scopeInfo.ImplicitTypeCode || code.AlwaysNeedsTypeCode()
}

// sparseMetadataSize returns the number of metadata bytes (path token plus
// type code/args, excluding the value) that would precede a field of the
// given shape within parentInfo.
func sparseMetadataSize(parentInfo layout.ScopeInfo, code layout.Code, args layout.TypeArgumentList, pathToken uint32) uint {
	var n uint
	if !parentInfo.Indexed {
		n += varint.CountUnsigned(uint64(pathToken))
	}

	if needsExplicitTypeCode(parentInfo, code) {
		n += layout.FromCode(code).CountTypeArgument(args)
	}

	return n
}

func writeSparseMetadata(
	buf []byte, offset int, parentInfo layout.ScopeInfo, code layout.Code, args layout.TypeArgumentList, pathToken uint32,
) uint {
	n := uint(0)

	if !parentInfo.Indexed {
		n += varint.WriteUnsigned(buf, offset+int(n), uint64(pathToken))
	}

	if needsExplicitTypeCode(parentInfo, code) {
		n += layout.FromCode(code).WriteTypeArgument(buf, offset+int(n), args)
	}

	return n
}

// sparseMeta is the decoded result of reading one field's metadata.
type sparseMeta struct {
	code    layout.Code
	args    layout.TypeArgumentList
	token   uint32
	hasPath bool
	n       uint // bytes consumed.
}

// readSparseMetadata reads one field's metadata at offset. impliedCode/
// impliedArgs is what the type would be were it elided (the enclosing
// scope's single type argument, e.g. for a TypedArray<int32>); it is only
// consulted when parentInfo.ImplicitTypeCode is true.
func readSparseMetadata(
	buf []byte, offset int, parentInfo layout.ScopeInfo, impliedCode layout.Code, impliedArgs layout.TypeArgumentList,
) sparseMeta {
	var m sparseMeta

	n := uint(0)

	if !parentInfo.Indexed {
		tok, tn := varint.ReadUnsigned(buf, offset)
		m.token = uint32(tok)
		m.hasPath = true
		n += tn
	}

	if needsExplicitTypeCode(parentInfo, impliedCode) || !parentInfo.ImplicitTypeCode {
		arg, an := layout.ReadTypeArgument(buf, offset+int(n))
		m.code = arg.Type.Code()
		m.args = arg.Args
		n += an
	} else {
		m.code = impliedCode
		m.args = impliedArgs
	}

	m.n = n

	return m
}

// sparseValueSize returns the total byte size (value only, no metadata) of
// val.Data encoded as val.Code, or -- for a scope code -- 0 (scopes have no
// inline scalar payload; their bytes are whatever their own children occupy,
// which the caller accounts for separately).
func sparseValueSize(code layout.Code, data any) uint {
	if code.IsScope() {
		return 0
	}

	return scalarSize(code, data)
}

// ============================================================================
// ensure_sparse: the single grow/shift primitive underlying every sparse
// mutation (spec §4.6).
// ============================================================================

// ensureSparse grows or shrinks the row so that the field (or scope-opening
// metadata) currently occupying [metaOffset, metaOffset+oldTotal) instead
// occupies newTotal bytes, returning metaOffset (the offset the caller
// should now write into).
func (b *Buffer) ensureSparse(metaOffset int, oldTotal uint, newTotal uint) int {
	delta := int(newTotal) - int(oldTotal)
	if delta != 0 {
		b.shift(metaOffset+int(oldTotal), delta)
	}

	return metaOffset
}

// ============================================================================
// Sparse iteration (spec §4.7.6): sparse_iterator_move_next.
// ============================================================================

// sparseIteratorMoveNext advances c from its current field to the next field
// in its scope. Per Cursor's documented field contract, c.MetaOffset always
// names the metadata start of whatever field is "current" -- so a field
// found by this call is not skipped over until the NEXT call, which first
// catches up c.MetaOffset past it (scope-valued fields are instead caught up
// explicitly by Skip, since only the caller knows how to drain them).
// Returns false (leaving c.Exists false and c.MetaOffset positioned at the
// terminator/end) once the scope is exhausted.
func sparseIteratorMoveNext(buf *Buffer, c *Cursor) bool {
	if c.Exists && !c.cellType.IsScope() {
		c.MetaOffset = c.ValueOffset + int(variableOrFixedSize(buf, c.ValueOffset, c.cellType))
	}

	info := c.ScopeType.Info()

	if c.MetaOffset >= buf.length {
		c.Exists = false
		return false
	}

	if info.Sized || info.FixedArity {
		var arity uint
		if info.FixedArity {
			arity = fixedArity(c.ScopeTypeArgs, c.ScopeType)
		} else {
			arity = c.Count
		}

		if c.Index >= arity {
			c.Exists = false
			return false
		}
	} else if info.HasTerminator {
		if layout.Code(buf.buf[c.MetaOffset]) == layout.CodeEndScope {
			c.Exists = false
			return false
		}
	}

	impliedCode, impliedArgs := impliedElementType(c, info)

	meta := readSparseMetadata(buf.buf, c.MetaOffset, info, impliedCode, impliedArgs)

	c.cellType = meta.code
	c.cellTypeArgs = meta.args
	c.hasToken = meta.hasPath

	if meta.hasPath {
		c.writeToken = meta.token
		if path, ok := c.Layout.Tokenizer.TryFindString(meta.token); ok {
			c.writePath = path
		} else {
			c.writePath = ""
		}
	}

	c.ValueOffset = c.MetaOffset + int(meta.n)
	c.Exists = true
	c.Index++

	return true
}

// impliedElementType returns the element type a scope with
// info.ImplicitTypeCode implies for its children, derived from c's own type
// arguments (e.g. a TypedArray<int32> implies Int32 for every element).
func impliedElementType(c *Cursor, info layout.ScopeInfo) (layout.Code, layout.TypeArgumentList) {
	if !info.ImplicitTypeCode || c.ScopeTypeArgs.Count() == 0 {
		return layout.CodeInvalid, layout.Empty
	}

	switch c.ScopeType {
	case layout.CodeTypedArrayScope, layout.CodeTypedSetScope:
		a := c.ScopeTypeArgs.At(0)
		return a.Type.Code(), a.Args
	case layout.CodeTypedMapScope:
		// Entries are written as an alternating key, value, key, value, ...
		// sequence: even positions are TypedMap<K,_>'s key type, odd
		// positions its value type.
		a := c.ScopeTypeArgs.At(int(c.Index) % 2)
		return a.Type.Code(), a.Args
	default:
		// Tuple/TypedTuple/Tagged/Tagged2/Nullable never elide (see the
		// comment on their ScopeInfo in pkg/layout/code.go).
		return layout.CodeInvalid, layout.Empty
	}
}

// fixedArity returns the number of elements a FixedArity scope code
// statically carries.
func fixedArity(args layout.TypeArgumentList, code layout.Code) uint {
	switch code.Canonical() {
	case layout.CodeTaggedScope:
		return 1
	case layout.CodeTagged2Scope:
		return 2
	case layout.CodeNullableScope:
		return 1
	case layout.CodeTupleScope, layout.CodeTypedTupleScope:
		return uint(args.Count())
	default:
		return 0
	}
}

// ============================================================================
// Generic sparse read/write/delete (spec §4.7.3-4.7.5).
// ============================================================================

// ReadSparse reads the field currently under cursor (cursor.Exists must be
// true, as set by Find or MoveNext).
func (b *Buffer) ReadSparse(cursor *Cursor) (Value, error) {
	if !cursor.Exists {
		return Value{}, result.ErrNotFound
	}

	if cursor.cellType.IsScope() {
		return Value{Code: cursor.cellType, Args: cursor.cellTypeArgs}, nil
	}

	data, _ := readScalar(b.buf, cursor.ValueOffset, cursor.cellType)

	return Value{Code: cursor.cellType, Args: cursor.cellTypeArgs, Data: data}, nil
}

// WriteSparse writes (inserts, upserts, or updates, per options) a primitive
// scalar field at path within cursor's scope. For an Indexed scope, path is
// ignored; the write targets the field currently under cursor (positioned
// via MoveTo).
func (b *Buffer) WriteSparse(cursor *Cursor, path string, value Value, options UpdateOptions) error {
	if !cursor.writable() {
		return result.ErrInsufficientPermissions
	}

	info := cursor.ScopeType.Info()

	found, pathToken := locateSparse(b, cursor, path, info)

	switch options {
	case Insert, InsertAt:
		if found {
			return result.ErrExists
		}
	case Update:
		if !found {
			return result.ErrNotFound
		}
	case Delete:
		panic("row: WriteSparse called with Delete; use DeleteSparse")
	}

	var oldTotal uint
	if found {
		oldMeta := readSparseMetadata(b.buf, cursor.MetaOffset, info, cursor.cellType, cursor.cellTypeArgs)
		if oldMeta.code.IsScope() {
			panic("row: WriteSparse cannot overwrite a scope field; delete then re-open it")
		}

		oldTotal = oldMeta.n + variableOrFixedSize(b, cursor.MetaOffset+int(oldMeta.n), oldMeta.code)
	}

	newTotal := sparseMetadataSize(info, value.Code, value.Args, pathToken) + sparseValueSize(value.Code, value.Data)

	offset := b.ensureSparse(cursor.MetaOffset, oldTotal, newTotal)

	n := writeSparseMetadata(b.buf, offset, info, value.Code, value.Args, pathToken)
	writeScalar(b.buf, offset+int(n), value.Code, value.Data)

	cursor.MetaOffset = offset
	cursor.ValueOffset = offset + int(n)
	cursor.cellType = value.Code
	cursor.cellTypeArgs = value.Args
	cursor.Exists = true

	if !found && info.Indexed {
		// A fresh element just took this cursor's current Index slot; advance
		// it exactly as MoveNext would have had this element already existed
		// and been found by iteration, so a subsequent MoveNext correctly
		// resumes past it rather than re-reading it.
		if info.Sized {
			cursor.Count = cursor.Index + 1
			binary.LittleEndian.PutUint32(b.buf[cursor.countOffset:], uint32(cursor.Count))
		}

		cursor.Index++
	}

	return nil
}

// DeleteSparse removes the field at path (or, for an Indexed scope, the
// field currently under cursor). A no-op if absent.
func (b *Buffer) DeleteSparse(cursor *Cursor, path string) error {
	if !cursor.writable() {
		return result.ErrInsufficientPermissions
	}

	info := cursor.ScopeType.Info()

	found, _ := locateSparse(b, cursor, path, info)
	if !found {
		return nil
	}

	meta := readSparseMetadata(b.buf, cursor.MetaOffset, info, cursor.cellType, cursor.cellTypeArgs)

	var valueSize uint
	if meta.code.IsScope() {
		child := openChildAt(b, cursor, cursor.MetaOffset+int(meta.n), meta.code, meta.args)
		for sparseIteratorMoveNext(b, child) {
		}

		end := child.MetaOffset
		if meta.code.Info().HasTerminator {
			end++
		}

		valueSize = uint(end - (cursor.MetaOffset + int(meta.n)))
	} else {
		valueSize = variableOrFixedSize(b, cursor.MetaOffset+int(meta.n), meta.code)
	}

	total := meta.n + valueSize
	b.ensureSparse(cursor.MetaOffset, total, 0)

	cursor.Exists = false

	if info.Indexed {
		// The following elements now start at cursor.MetaOffset; step Index
		// (and a sized scope's stored count) back so the next MoveNext reads
		// the first of them under the removed element's index.
		if info.Sized && cursor.Count > 0 {
			cursor.Count--
			binary.LittleEndian.PutUint32(b.buf[cursor.countOffset:], uint32(cursor.Count))
		}

		if cursor.Index > 0 {
			cursor.Index--
		}
	}

	return nil
}

// variableOrFixedSize returns the byte width of a scalar value of code
// already written at offset.
func variableOrFixedSize(buf *Buffer, offset int, code layout.Code) uint {
	switch code {
	case layout.CodeUtf8, layout.CodeBinary, layout.CodeVarInt, layout.CodeVarUInt:
		return variableEncodedSize(buf.buf, offset, code)
	default:
		return scalarSize(code, nil)
	}
}

// locateSparse positions cursor.MetaOffset/ValueOffset on the field at path
// (non-Indexed scopes) or leaves it where MoveTo placed it (Indexed scopes),
// returning whether a field was found there and (for non-Indexed scopes)
// its interned path token.
func locateSparse(b *Buffer, cursor *Cursor, path string, info layout.ScopeInfo) (found bool, pathToken uint32) {
	if info.Indexed {
		return cursor.Exists, 0
	}

	pathToken = cursor.Layout.Tokenizer.Add(path)

	saved := *cursor
	found = cursor.Find(b, path)

	if !found {
		*cursor = saved
	}

	return found, pathToken
}

// openChildAt constructs the Cursor a caller would use to iterate a scope
// whose opening metadata sits at valueOffset.
func openChildAt(b *Buffer, parent *Cursor, valueOffset int, code layout.Code, args layout.TypeArgumentList) *Cursor {
	info := code.Info()

	child := &Cursor{
		Layout:        parent.Layout,
		ScopeType:     code.Canonical(),
		ScopeTypeArgs: args,
		Immutable:     parent.Immutable || code.IsImmutable(),
	}

	offset := valueOffset

	if info.Sized {
		child.countOffset = offset
		child.Count = uint(binary.LittleEndian.Uint32(b.buf[offset:]))
		offset += 4
	}

	if code.Canonical() == layout.CodeSchema {
		schemaID := layout.SchemaId(int32(binary.LittleEndian.Uint32(b.buf[offset:])))
		offset += 4

		nested := b.resolver.Resolve(schemaID)
		child.Layout = nested
		child.start = offset
		offset = variableColumnOffset(b, nested, child.start, int(nested.NumVariable))
	}

	child.contentStart = offset
	child.MetaOffset = offset
	child.ValueOffset = offset

	return child
}
