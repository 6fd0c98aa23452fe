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

// SchemaId identifies a compiled Layout globally within a Resolver. 0 is
// invalid; negative values are permitted.
type SchemaId int32

// IsValid reports whether this is a non-zero schema id.
func (id SchemaId) IsValid() bool {
	return id != 0
}

// Type is the closed, tagged representation of a physical wire type: a Code
// plus the per-code behavior needed to count/write/read its type-argument
// list. Rather than one generated singleton class per code (the source
// pattern), every Code's Type is produced once by FromCode and cached in a
// table keyed by Code, so dispatch is a slice index rather than RTTI.
type Type struct {
	code Code
}

// Code returns the underlying wire code for this type (in canonical form).
func (t *Type) Code() Code {
	return t.code
}

var typeTable [256]*Type

func init() {
	for c := 0; c < 256; c++ {
		typeTable[c] = &Type{code: Code(c)} //nolint:gosec // c is always in [0,256)
	}
}

// FromCode returns the singleton Type for a given Code. Every byte value has
// an entry (even ones never emitted on the wire), so this never fails.
func FromCode(c Code) *Type {
	return typeTable[c.Canonical()]
}

// NeedsSchemaId reports whether this type's argument list carries a SchemaId
// rather than a list of nested TypeArguments (true only for the UDT/Schema
// scope).
func (t *Type) NeedsSchemaId() bool {
	return t.code.Canonical() == CodeSchema
}

// NumTypeArgs returns the number of nested TypeArguments this type expects in
// its TypeArgumentList, for types that are parameterized by nested types
// rather than by a SchemaId. Primitives and unparameterized scopes (Object,
// Array) expect zero.
func (t *Type) NumTypeArgs() int {
	switch t.code.Canonical() {
	case CodeTypedArrayScope, CodeTypedSetScope, CodeNullableScope:
		return 1
	case CodeTypedMapScope:
		return 2
	case CodeTaggedScope:
		return 1 // implicit leading UInt8 tag is not counted as a stored arg
	case CodeTagged2Scope:
		return 2
	default:
		return 0 // Tuple/TypedTuple carry a variable, LEB128-prefixed arity.
	}
}

// HasVariableArity reports whether the number of nested TypeArguments is
// itself encoded (as a LEB128 arity prefix) rather than fixed by the code.
func (t *Type) HasVariableArity() bool {
	c := t.code.Canonical()
	return c == CodeTupleScope || c == CodeTypedTupleScope
}
