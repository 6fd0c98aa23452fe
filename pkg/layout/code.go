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

// Package layout implements the hybrid row schema compiler: the closed type
// system (Code, Type, TypeArgument, TypeArgumentList), the compiled,
// immutable Layout/LayoutColumn model, the LayoutBuilder that turns a Schema
// tree into a Layout, and the LayoutResolver cache.
package layout

import "fmt"

// Code is the one-byte tagged union of physical wire types: primitive
// scalars, scope kinds, and the two sentinels EndScope and BooleanFalse.
// Scope codes pair with an "Immutable" variant that differs only in the low
// bit; Canonical clears it.
type Code byte

// Primitive codes.
const (
	CodeInvalid Code = iota
	CodeNull
	CodeBoolean
	CodeBooleanFalse
	CodeInt8
	CodeInt16
	CodeInt32
	CodeInt64
	CodeUInt8
	CodeUInt16
	CodeUInt32
	CodeUInt64
	CodeVarInt
	CodeVarUInt
	CodeFloat32
	CodeFloat64
	CodeFloat128
	CodeDecimal
	CodeDateTime
	CodeUnixDateTime
	CodeGuid
	CodeMongoObjectId
	CodeUtf8
	CodeBinary
)

// Scope codes. Each even value is the canonical (mutable) form; canonical|1
// is the Immutable variant of the same scope.
const (
	CodeObjectScope Code = 40 + 2*iota
	CodeArrayScope
	CodeTypedArrayScope
	CodeTypedSetScope
	CodeTypedMapScope
	CodeTupleScope
	CodeTypedTupleScope
	CodeTaggedScope
	CodeTagged2Scope
	CodeNullableScope
	CodeSchema
)

// CodeEndScope is the sentinel byte terminating an untyped (Object, Array,
// Tuple) scope body.
const CodeEndScope Code = 0xFF

// IsScope reports whether this code (in canonical form) denotes a scope.
func (c Code) IsScope() bool {
	return c.Canonical() >= CodeObjectScope && c.Canonical() <= CodeSchema
}

// Canonical clears the immutable bit from a scope code; used for type
// equality and schema checks. Non-scope codes are returned unchanged.
func (c Code) Canonical() Code {
	if c >= CodeObjectScope && c <= CodeSchema+1 {
		return c &^ 1
	}

	return c
}

// AsImmutable sets the immutable bit on a scope code. Panics if c is not a
// scope code: calling this on a non-scope code is a programmer error.
func (c Code) AsImmutable() Code {
	if !c.IsScope() {
		panic(fmt.Sprintf("layout: %v is not a scope code", c))
	}

	return c.Canonical() | 1
}

// IsImmutable reports whether the immutable bit is set.
func (c Code) IsImmutable() bool {
	return c.IsScope() && c&1 == 1
}

// AlwaysNeedsTypeCode reports whether a sparse element of this type must
// always carry an explicit type-code byte, even inside a scope whose type
// arguments would otherwise imply it. Boolean (and its BooleanFalse sibling)
// must always be written explicitly because the type code itself carries the
// value; Null must always be written explicitly because it is also the
// Tuple-scope placeholder sentinel.
func (c Code) AlwaysNeedsTypeCode() bool {
	switch c {
	case CodeBoolean, CodeBooleanFalse, CodeNull:
		return true
	default:
		return false
	}
}

// AllowVariable reports whether this type may be stored as a variable-width
// schematized column (as opposed to fixed or sparse-only).
func (c Code) AllowVariable() bool {
	switch c {
	case CodeUtf8, CodeBinary, CodeVarInt, CodeVarUInt:
		return true
	default:
		return false
	}
}

// IsFixedSize reports whether this primitive has a fixed, statically known
// byte width on the wire (i.e. is neither variable-width nor a scope).
func (c Code) IsFixedSize() bool {
	if c.IsScope() || c.AllowVariable() {
		return false
	}

	switch c {
	case CodeNull, CodeInvalid:
		return false
	default:
		return true
	}
}

// Size returns the fixed byte width of a fixed-size primitive. Panics for
// variable-width types, scopes, or Null/Invalid, which have no static size.
func (c Code) Size() uint {
	switch c {
	case CodeBoolean, CodeBooleanFalse:
		return 0 // packed entirely into the bitmask; no byte payload.
	case CodeInt8, CodeUInt8:
		return 1
	case CodeInt16, CodeUInt16:
		return 2
	case CodeInt32, CodeUInt32, CodeFloat32:
		return 4
	case CodeInt64, CodeUInt64, CodeFloat64, CodeUnixDateTime:
		return 8
	case CodeFloat128, CodeDecimal, CodeDateTime, CodeGuid:
		return 16
	case CodeMongoObjectId:
		return 12
	default:
		panic(fmt.Sprintf("layout: %v has no static size", c))
	}
}

// ScopeInfo describes the structural shape of a scope code: how its elements
// are addressed and framed on the wire.
type ScopeInfo struct {
	// Indexed scopes address elements positionally rather than by path.
	Indexed bool
	// Sized scopes carry an explicit 4-byte element count immediately before
	// their body.
	Sized bool
	// FixedArity scopes have an arity fixed by their type arguments (tuples,
	// tagged unions, nullable) rather than a variable element count.
	FixedArity bool
	// Unique scopes keep their elements sorted and duplicate-free (sets,
	// maps).
	Unique bool
	// HasTerminator scopes end their body with a CodeEndScope byte.
	HasTerminator bool
	// ImplicitTypeCode scopes imply their element type(s) from their own type
	// arguments, so a conforming element may omit its type-code byte (unless
	// Code.AlwaysNeedsTypeCode is true for that element).
	ImplicitTypeCode bool
}

// Info returns the structural shape of a scope code. Panics if c is not a
// scope code.
func (c Code) Info() ScopeInfo {
	switch c.Canonical() {
	case CodeObjectScope:
		return ScopeInfo{HasTerminator: true}
	case CodeArrayScope:
		return ScopeInfo{Indexed: true, HasTerminator: true}
	case CodeTypedArrayScope:
		return ScopeInfo{Indexed: true, Sized: true, ImplicitTypeCode: true}
	case CodeTypedSetScope:
		return ScopeInfo{Indexed: true, Sized: true, Unique: true, ImplicitTypeCode: true}
	case CodeTypedMapScope:
		return ScopeInfo{Indexed: true, Sized: true, Unique: true, ImplicitTypeCode: true}
	case CodeTupleScope:
		return ScopeInfo{Indexed: true, FixedArity: true, HasTerminator: true}
	case CodeTypedTupleScope:
		// Per-position element types could in principle be elided (each is
		// statically known from this scope's type arguments), but eliding
		// them would make a freshly-created, not-yet-written slot
		// indistinguishable on the wire from one holding a real value of the
		// implied type versus the Null placeholder every slot starts as.
		// Elements here are always self-describing; only the homogeneous,
		// fully-populated-on-write TypedArray/TypedSet/TypedMap elide.
		return ScopeInfo{Indexed: true, FixedArity: true}
	case CodeTaggedScope:
		return ScopeInfo{Indexed: true, FixedArity: true}
	case CodeTagged2Scope:
		return ScopeInfo{Indexed: true, FixedArity: true}
	case CodeNullableScope:
		return ScopeInfo{Indexed: true, FixedArity: true}
	case CodeSchema:
		return ScopeInfo{HasTerminator: true}
	default:
		panic(fmt.Sprintf("layout: %v is not a scope code", c))
	}
}

//nolint:cyclop // a flat dispatch table is clearer here than any alternative.
func (c Code) String() string {
	switch c {
	case CodeInvalid:
		return "Invalid"
	case CodeNull:
		return "Null"
	case CodeBoolean:
		return "Boolean"
	case CodeBooleanFalse:
		return "BooleanFalse"
	case CodeInt8:
		return "Int8"
	case CodeInt16:
		return "Int16"
	case CodeInt32:
		return "Int32"
	case CodeInt64:
		return "Int64"
	case CodeUInt8:
		return "UInt8"
	case CodeUInt16:
		return "UInt16"
	case CodeUInt32:
		return "UInt32"
	case CodeUInt64:
		return "UInt64"
	case CodeVarInt:
		return "VarInt"
	case CodeVarUInt:
		return "VarUInt"
	case CodeFloat32:
		return "Float32"
	case CodeFloat64:
		return "Float64"
	case CodeFloat128:
		return "Float128"
	case CodeDecimal:
		return "Decimal"
	case CodeDateTime:
		return "DateTime"
	case CodeUnixDateTime:
		return "UnixDateTime"
	case CodeGuid:
		return "Guid"
	case CodeMongoObjectId:
		return "MongoObjectId"
	case CodeUtf8:
		return "Utf8"
	case CodeBinary:
		return "Binary"
	case CodeEndScope:
		return "EndScope"
	default:
		if c.IsScope() {
			name := map[Code]string{
				CodeObjectScope:     "Object",
				CodeArrayScope:      "Array",
				CodeTypedArrayScope: "TypedArray",
				CodeTypedSetScope:   "TypedSet",
				CodeTypedMapScope:   "TypedMap",
				CodeTupleScope:      "Tuple",
				CodeTypedTupleScope: "TypedTuple",
				CodeTaggedScope:     "Tagged",
				CodeTagged2Scope:    "Tagged2",
				CodeNullableScope:   "Nullable",
				CodeSchema:          "Schema",
			}[c.Canonical()]

			if c.IsImmutable() {
				return name + "(Immutable)"
			}

			return name
		}

		return fmt.Sprintf("Code(%d)", byte(c))
	}
}
