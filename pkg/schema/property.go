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

// Package schema implements the authoring-time Schema/Property model (spec
// component C10): the tree a Namespace's schemas are declared with, and the
// Compile walk that drives pkg/layout.Builder from it to produce the
// pkg/layout.Layout a row is actually written against.
package schema

import "github.com/microsoft/hybridrow/pkg/layout"

// Storage is the author's declared placement for a top-level property:
// whether Compile reaches for Builder.AddFixedColumn, AddVariableColumn, or
// AddSparseColumn for it. Properties nested inside a scope (Object, Array,
// ...) are always sparse, per spec §4.5 -- Storage is only meaningful on a
// Schema's own top-level Properties.
type Storage int

const (
	// StorageSparse declares an always-optional, self-describing field.
	// Valid at any nesting depth.
	StorageSparse Storage = iota
	// StorageFixed declares a column in the fixed region. Top-level only.
	StorageFixed
	// StorageVariable declares a column in the variable region. Top-level
	// only.
	StorageVariable
)

// PropertyType is the closed set of shapes a Property can take. It mirrors
// layout.Code's scope/primitive split one level up, before compilation fixes
// byte offsets and presence bits.
type PropertyType int

const (
	// PropertyPrimitive is a scalar value of some layout.Code.
	PropertyPrimitive PropertyType = iota
	// PropertyObject is a named-field scope (compiles to CodeObjectScope).
	PropertyObject
	// PropertyArray is an untyped, heterogeneous sequence (CodeArrayScope).
	PropertyArray
	// PropertyTypedArray is a homogeneous sequence (CodeTypedArrayScope).
	PropertyTypedArray
	// PropertyTypedSet is a homogeneous, sorted, duplicate-free sequence
	// (CodeTypedSetScope).
	PropertyTypedSet
	// PropertyTypedMap is a sorted, duplicate-free sequence of alternating
	// key/value elements (CodeTypedMapScope).
	PropertyTypedMap
	// PropertyTuple is a fixed-arity, heterogeneous sequence
	// (CodeTupleScope).
	PropertyTuple
	// PropertyTypedTuple is a fixed-arity sequence with a per-position
	// declared type (CodeTypedTupleScope).
	PropertyTypedTuple
	// PropertyTagged is a one-of-one tagged union (CodeTaggedScope).
	PropertyTagged
	// PropertyTagged2 is a one-of-two tagged union (CodeTagged2Scope).
	PropertyTagged2
	// PropertyNullable wraps a single type as present-or-absent
	// (CodeNullableScope).
	PropertyNullable
	// PropertyUDT references another Schema by name, resolved against the
	// enclosing Namespace at Compile time.
	PropertyUDT
)

// Property is one authored field: either a scalar, a nested scope, or a
// reference to another schema. Which fields are meaningful depends on Type:
//
//   - PropertyPrimitive: Code (and Length, for a fixed-length Utf8/Binary
//     fixed column).
//   - PropertyObject: Properties (its nested fields, always sparse).
//   - PropertyArray: Properties is unused; elements are untyped.
//   - PropertyTypedArray, PropertyTypedSet, PropertyNullable: Items[0] is the
//     element type.
//   - PropertyTypedMap: Items[0] is the key type, Items[1] the value type.
//   - PropertyTuple: Properties lists its (possibly heterogeneous,
//     arity-fixed) slots; their own Storage is ignored (always sparse).
//   - PropertyTypedTuple, PropertyTagged, PropertyTagged2: Items lists the
//     per-position declared types (arity fixed by len(Items) for
//     TypedTuple/Tagged2, always 1 for Tagged plus its implicit tag byte).
//   - PropertyUDT: UdtName, resolved against the Namespace at Compile time.
type Property struct {
	Name     string
	Type     PropertyType
	Storage  Storage
	Nullable bool
	Code     layout.Code
	Length   uint

	Items      []Property
	Properties []Property

	UdtName string
}

// Primitive declares a top-level scalar property with the given storage
// placement.
func Primitive(name string, code layout.Code, storage Storage, nullable bool) Property {
	return Property{Name: name, Type: PropertyPrimitive, Storage: storage, Nullable: nullable, Code: code}
}

// FixedLength declares a fixed-length Utf8/Binary fixed-storage property.
func FixedLength(name string, code layout.Code, length uint) Property {
	return Property{Name: name, Type: PropertyPrimitive, Storage: StorageFixed, Code: code, Length: length}
}

// Object declares a nested, named-field scope containing fields.
func Object(name string, fields ...Property) Property {
	return Property{Name: name, Type: PropertyObject, Storage: StorageSparse, Properties: fields}
}

// Array declares an untyped, heterogeneous sparse sequence.
func Array(name string) Property {
	return Property{Name: name, Type: PropertyArray, Storage: StorageSparse}
}

// TypedArray declares a homogeneous sequence of elem-typed elements.
func TypedArray(name string, elem Property) Property {
	return Property{Name: name, Type: PropertyTypedArray, Storage: StorageSparse, Items: []Property{elem}}
}

// TypedSet declares a sorted, duplicate-free sequence of elem-typed
// elements.
func TypedSet(name string, elem Property) Property {
	return Property{Name: name, Type: PropertyTypedSet, Storage: StorageSparse, Items: []Property{elem}}
}

// TypedMap declares a sorted, duplicate-free alternating key/value sequence.
func TypedMap(name string, key, value Property) Property {
	return Property{Name: name, Type: PropertyTypedMap, Storage: StorageSparse, Items: []Property{key, value}}
}

// Tuple declares a fixed-arity, heterogeneous sequence of slots.
func Tuple(name string, slots ...Property) Property {
	return Property{Name: name, Type: PropertyTuple, Storage: StorageSparse, Properties: slots}
}

// TypedTuple declares a fixed-arity sequence with a declared type per
// position.
func TypedTuple(name string, slots ...Property) Property {
	return Property{Name: name, Type: PropertyTypedTuple, Storage: StorageSparse, Items: slots}
}

// Tagged declares a one-of-one tagged union over a single declared type.
func Tagged(name string, value Property) Property {
	return Property{Name: name, Type: PropertyTagged, Storage: StorageSparse, Items: []Property{value}}
}

// Tagged2 declares a one-of-two tagged union over two declared types.
func Tagged2(name string, a, b Property) Property {
	return Property{Name: name, Type: PropertyTagged2, Storage: StorageSparse, Items: []Property{a, b}}
}

// Nullable declares a present-or-absent wrapper around a single declared
// type.
func Nullable(name string, value Property) Property {
	return Property{Name: name, Type: PropertyNullable, Storage: StorageSparse, Items: []Property{value}}
}

// UDT declares a reference to another schema in the same Namespace, named
// udtName.
func UDT(name string, udtName string) Property {
	return Property{Name: name, Type: PropertyUDT, Storage: StorageSparse, UdtName: udtName}
}
