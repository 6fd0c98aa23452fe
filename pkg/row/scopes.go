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

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
)

// WriteObjectScope opens (creating if absent) an untyped, path-addressed
// Object scope at path.
func (b *Buffer) WriteObjectScope(cursor *Cursor, path string, options UpdateOptions) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeObjectScope, layout.Empty, options)
}

// WriteArrayScope opens an untyped, positionally-addressed Array scope.
func (b *Buffer) WriteArrayScope(cursor *Cursor, path string, options UpdateOptions) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeArrayScope, layout.Empty, options)
}

// WriteTypedArrayScope opens a homogeneous, sized Array scope whose elements
// all share elementArg's type (so individual elements may elide their type
// code).
func (b *Buffer) WriteTypedArrayScope(
	cursor *Cursor, path string, elementArg layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTypedArrayScope, layout.NewTypeArgumentList(elementArg), options)
}

// WriteTupleScope opens a fixed-arity, untyped-element Tuple scope; its
// arity is len(elementArgs), and every slot is seeded with a Null field,
// whatever its declared type, until written.
func (b *Buffer) WriteTupleScope(
	cursor *Cursor, path string, elementArgs []layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTupleScope, layout.NewTypeArgumentList(elementArgs...), options)
}

// WriteTypedTupleScope opens a fixed-arity, per-position-typed Tuple scope.
func (b *Buffer) WriteTypedTupleScope(
	cursor *Cursor, path string, elementArgs []layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTypedTupleScope, layout.NewTypeArgumentList(elementArgs...), options)
}

// WriteTaggedScope opens a 2-slot scope: a fixed UInt8 tag followed by one
// itemArg-typed value.
func (b *Buffer) WriteTaggedScope(
	cursor *Cursor, path string, itemArg layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTaggedScope, layout.NewTypeArgumentList(itemArg), options)
}

// WriteTagged2Scope opens a 3-slot scope: a fixed UInt8 tag followed by two
// independently-typed values.
func (b *Buffer) WriteTagged2Scope(
	cursor *Cursor, path string, arg1, arg2 layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeTagged2Scope, layout.NewTypeArgumentList(arg1, arg2), options)
}

// WriteNullableScope opens a 1-slot scope representing an optional itemArg
// value: reading it back as a Null field means "no value present".
func (b *Buffer) WriteNullableScope(
	cursor *Cursor, path string, itemArg layout.TypeArgument, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(cursor, path, layout.CodeNullableScope, layout.NewTypeArgumentList(itemArg), options)
}

// WriteSchemaScope opens a nested UDT scope: the child cursor addresses the
// named schema's own fixed/variable/sparse columns exactly as the row's
// top-level cursor addresses the root schema's.
func (b *Buffer) WriteSchemaScope(
	cursor *Cursor, path string, schemaID layout.SchemaId, options UpdateOptions,
) (*Cursor, error) {
	return b.openScope(
		cursor, path, layout.CodeSchema, layout.NewSchemaArgumentList(schemaID), options,
	)
}

// openScope is the shared implementation behind every WriteXxxScope method:
// it locates (or creates) a scope-valued sparse field at path and returns a
// Cursor over its contents.
func (b *Buffer) openScope(
	cursor *Cursor, path string, code layout.Code, args layout.TypeArgumentList, options UpdateOptions,
) (*Cursor, error) {
	if !cursor.writable() {
		return nil, result.ErrInsufficientPermissions
	}

	parentInfo := cursor.ScopeType.Info()

	found, pathToken := locateSparse(b, cursor, path, parentInfo)

	switch options {
	case Insert, InsertAt:
		if found {
			return nil, result.ErrExists
		}
	case Update:
		if !found {
			return nil, result.ErrNotFound
		}
	case Delete:
		panic("row: openScope called with Delete; use DeleteSparse")
	}

	if found {
		meta := readSparseMetadata(b.buf, cursor.MetaOffset, parentInfo, cursor.cellType, cursor.cellTypeArgs)
		if meta.code.Canonical() != code.Canonical() {
			return nil, result.ErrTypeMismatch
		}

		return openChildAt(b, cursor, cursor.MetaOffset+int(meta.n), meta.code, meta.args), nil
	}

	return b.createScope(cursor, parentInfo, code, args, pathToken)
}

// createScope writes the metadata and empty body of a brand-new scope field
// and returns a Cursor positioned at its (empty) content.
func (b *Buffer) createScope(
	cursor *Cursor, parentInfo layout.ScopeInfo, code layout.Code, args layout.TypeArgumentList, pathToken uint32,
) (*Cursor, error) {
	info := code.Info()

	var nested *layout.Layout
	if code.Canonical() == layout.CodeSchema {
		nested = b.resolver.Resolve(args.SchemaId())
	}

	bodySize := uint(0)
	if info.Sized {
		bodySize += 4
	}

	if code.Canonical() == layout.CodeSchema {
		bodySize += 4 + nested.MinRequiredSize
	}

	if info.FixedArity {
		bodySize += defaultArityBodySize(args, code)
	}

	if info.HasTerminator {
		bodySize++
	}

	metaSize := sparseMetadataSize(parentInfo, code, args, pathToken)
	total := metaSize + bodySize

	offset := b.ensureSparse(cursor.MetaOffset, 0, total)
	n := writeSparseMetadata(b.buf, offset, parentInfo, code, args, pathToken)
	bodyOffset := offset + int(n)
	cur := bodyOffset

	countOffset := cur

	if info.Sized {
		binary.LittleEndian.PutUint32(b.buf[cur:], 0)
		cur += 4
	}

	child := &Cursor{
		ScopeType:     code.Canonical(),
		ScopeTypeArgs: args,
		Immutable:     cursor.Immutable || code.IsImmutable(),
		Layout:        cursor.Layout,
		countOffset:   countOffset,
	}

	if code.Canonical() == layout.CodeSchema {
		binary.LittleEndian.PutUint32(b.buf[cur:], uint32(args.SchemaId()))
		cur += 4
		child.Layout = nested
		child.start = cur
		cur += int(nested.MinRequiredSize)
		child.contentStart = variableColumnOffset(b, nested, child.start, int(nested.NumVariable))
	}

	if info.FixedArity {
		cur += int(writeDefaultArity(b.buf, cur, args, code))
	}

	if info.HasTerminator {
		b.buf[cur] = byte(layout.CodeEndScope)
		cur++
	}

	if code.Canonical() != layout.CodeSchema {
		child.contentStart = bodyOffset
		if info.Sized {
			child.contentStart = bodyOffset + 4
		}
	}

	child.MetaOffset = child.contentStart
	child.ValueOffset = child.contentStart

	cursor.MetaOffset = offset
	cursor.ValueOffset = bodyOffset
	cursor.cellType = code
	cursor.cellTypeArgs = args
	cursor.Exists = true

	return child, nil
}

// defaultArityBodySize returns the number of bytes writeDefaultArity would
// emit: one Null placeholder per fixed slot, plus the raw tag byte for
// Tagged/Tagged2.
func defaultArityBodySize(args layout.TypeArgumentList, code layout.Code) uint {
	switch code.Canonical() {
	case layout.CodeTaggedScope:
		return 1 + defaultValueSize(args.At(0))
	case layout.CodeTagged2Scope:
		return 1 + defaultValueSize(args.At(0)) + defaultValueSize(args.At(1))
	case layout.CodeNullableScope:
		return defaultValueSize(args.At(0))
	default: // Tuple, TypedTuple.
		var n uint
		for i := 0; i < args.Count(); i++ {
			n += defaultValueSize(args.At(i))
		}

		return n
	}
}

// writeDefaultArity seeds every fixed slot of a newly-created Tuple,
// TypedTuple, Tagged, Tagged2, or Nullable scope with a Null placeholder
// (after a zero tag byte for Tagged/Tagged2), returning the number of bytes
// written.
func writeDefaultArity(buf []byte, offset int, args layout.TypeArgumentList, code layout.Code) uint {
	n := uint(0)

	switch code.Canonical() {
	case layout.CodeTaggedScope:
		buf[offset] = 0
		n++
		n += writeDefaultValue(buf, offset+int(n), args.At(0))
	case layout.CodeTagged2Scope:
		buf[offset] = 0
		n++
		n += writeDefaultValue(buf, offset+int(n), args.At(0))
		n += writeDefaultValue(buf, offset+int(n), args.At(1))
	case layout.CodeNullableScope:
		n += writeDefaultValue(buf, offset+int(n), args.At(0))
	default: // Tuple, TypedTuple.
		for i := 0; i < args.Count(); i++ {
			n += writeDefaultValue(buf, offset+int(n), args.At(i))
		}
	}

	return n
}

// defaultValueSize and writeDefaultValue represent an as-yet-unwritten fixed
// slot as a bare sparse Null field, whatever the slot's declared type: arg is
// not consulted, and no type-specific default value is written.
func defaultValueSize(arg layout.TypeArgument) uint {
	return 1 // a bare CodeNull byte; Null always needs an explicit type code.
}

func writeDefaultValue(buf []byte, offset int, arg layout.TypeArgument) uint {
	buf[offset] = byte(layout.CodeNull)
	return 1
}
