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
package layout

import "github.com/microsoft/hybridrow/pkg/varint"

// TypeArgument pairs a Type with its own argument list, e.g. the "int32" in
// TypedArray<int32> or the (utf8,int32) pair in TypedMap<utf8,int32>.
type TypeArgument struct {
	Type *Type
	Args TypeArgumentList
}

// Equal compares two TypeArguments by content: same underlying Type pointer
// (Types are interned by FromCode, so pointer equality is content equality)
// and content-equal argument lists.
func (a TypeArgument) Equal(b TypeArgument) bool {
	return a.Type == b.Type && a.Args.Equal(b.Args)
}

// TypeArgumentList is a small, immutable, shared list of TypeArguments.
// Alternatively, for a UDT it carries a single SchemaId instead of a nested
// argument list. Copying a TypeArgumentList is O(1): the underlying slice is
// never mutated after construction.
type TypeArgumentList struct {
	items    []TypeArgument
	schemaID SchemaId
	isSchema bool
}

// Empty is the TypeArgumentList carried by primitives and unparameterized
// scopes.
var Empty = TypeArgumentList{}

// NewTypeArgumentList constructs a nested-argument TypeArgumentList.
func NewTypeArgumentList(items ...TypeArgument) TypeArgumentList {
	return TypeArgumentList{items: items}
}

// NewSchemaArgumentList constructs the TypeArgumentList variant used by a UDT
// type argument: a single SchemaId rather than nested TypeArguments.
func NewSchemaArgumentList(id SchemaId) TypeArgumentList {
	return TypeArgumentList{schemaID: id, isSchema: true}
}

// IsSchema reports whether this list carries a SchemaId rather than nested
// TypeArguments.
func (l TypeArgumentList) IsSchema() bool {
	return l.isSchema
}

// SchemaId returns the carried SchemaId. Only meaningful when IsSchema is
// true.
func (l TypeArgumentList) SchemaId() SchemaId {
	return l.schemaID
}

// Count returns the number of nested TypeArguments. Only meaningful when
// IsSchema is false.
func (l TypeArgumentList) Count() int {
	return len(l.items)
}

// At returns the i'th nested TypeArgument.
func (l TypeArgumentList) At(i int) TypeArgument {
	return l.items[i]
}

// Equal compares two TypeArgumentLists by content.
func (l TypeArgumentList) Equal(o TypeArgumentList) bool {
	if l.isSchema != o.isSchema {
		return false
	}

	if l.isSchema {
		return l.schemaID == o.schemaID
	}

	if len(l.items) != len(o.items) {
		return false
	}

	for i := range l.items {
		if !l.items[i].Equal(o.items[i]) {
			return false
		}
	}

	return true
}

// ============================================================================
// Type-argument counting / writing / reading (spec §4.7.7).
// ============================================================================

// CountTypeArgument returns the number of bytes WriteTypeArgument would emit
// for this type together with the given argument list: sizeof(Code) plus,
// for parameterized types, the recursively counted nested arguments (or the
// encoded SchemaId for a UDT).
func (t *Type) CountTypeArgument(args TypeArgumentList) uint {
	n := uint(1) // the Code byte itself.

	switch {
	case t.NeedsSchemaId():
		n += varint.CountSigned(int64(args.SchemaId()))
	case t.HasVariableArity():
		n += varint.CountUnsigned(uint64(args.Count()))

		for i := 0; i < args.Count(); i++ {
			a := args.At(i)
			n += a.Type.CountTypeArgument(a.Args)
		}
	case t.NumTypeArgs() > 0:
		for i := 0; i < args.Count(); i++ {
			a := args.At(i)
			n += a.Type.CountTypeArgument(a.Args)
		}
	}

	return n
}

// WriteTypeArgument writes this type's Code byte, followed by its argument
// list, into buf at offset off, returning the number of bytes written.
// Tagged/Tagged2's implicit leading UInt8 "tag" type is not written (per
// spec §4.7.7), and args carries no entry for it either: the list holds only
// the item type(s), and NumTypeArgs does not count the tag.
func (t *Type) WriteTypeArgument(buf []byte, off int, args TypeArgumentList) uint {
	buf[off] = byte(t.code)
	n := uint(1)

	switch {
	case t.NeedsSchemaId():
		n += varint.WriteSigned(buf, off+int(n), int64(args.SchemaId()))
	case t.HasVariableArity():
		n += varint.WriteUnsigned(buf, off+int(n), uint64(args.Count()))

		for i := 0; i < args.Count(); i++ {
			a := args.At(i)
			n += a.Type.WriteTypeArgument(buf, off+int(n), a.Args)
		}
	case t.NumTypeArgs() > 0:
		for i := 0; i < args.Count(); i++ {
			a := args.At(i)
			n += a.Type.WriteTypeArgument(buf, off+int(n), a.Args)
		}
	}

	return n
}

// ReadTypeArgument reads a Code byte and its argument list from buf at offset
// off, returning the TypeArgument and the number of bytes consumed.
func ReadTypeArgument(buf []byte, off int) (TypeArgument, uint) {
	code := Code(buf[off])
	t := FromCode(code)
	n := uint(1)

	switch {
	case t.NeedsSchemaId():
		id, m := varint.ReadSigned(buf, off+int(n))
		n += m

		return TypeArgument{Type: t, Args: NewSchemaArgumentList(SchemaId(id))}, n
	case t.HasVariableArity():
		arity, m := varint.ReadUnsigned(buf, off+int(n))
		n += m

		items := make([]TypeArgument, arity)
		for i := range items {
			a, m := ReadTypeArgument(buf, off+int(n))
			items[i] = a
			n += m
		}

		return TypeArgument{Type: t, Args: NewTypeArgumentList(items...)}, n
	case t.NumTypeArgs() > 0:
		items := make([]TypeArgument, t.NumTypeArgs())
		for i := range items {
			a, m := ReadTypeArgument(buf, off+int(n))
			items[i] = a
			n += m
		}

		return TypeArgument{Type: t, Args: NewTypeArgumentList(items...)}, n
	default:
		return TypeArgument{Type: t, Args: Empty}, n
	}
}
