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

import "github.com/microsoft/hybridrow/internal/bit"

// StorageKind classifies how a column's value is located within a row.
type StorageKind int

const (
	// StorageFixed columns live at a precomputed byte offset in the fixed
	// region.
	StorageFixed StorageKind = iota
	// StorageVariable columns live after the fixed region, addressed by a
	// 0-based index among the layout's variable columns, present or not.
	StorageVariable
	// StorageSparse columns have no preallocated storage; they are
	// self-describing fields in the sparse region.
	StorageSparse
)

func (k StorageKind) String() string {
	switch k {
	case StorageFixed:
		return "Fixed"
	case StorageVariable:
		return "Variable"
	case StorageSparse:
		return "Sparse"
	default:
		return "Unknown"
	}
}

// noParent marks a Column with no parent: a top-level, schema-rooted column.
const noParent = -1

// Column is an immutable, compiled description of one schematized property.
// Columns form an arena inside their owning Layout: Parent is an index into
// Layout.Columns rather than a raw pointer, so the arena (and therefore every
// Column within it) lives exactly as long as its Layout.
type Column struct {
	// Path is this column's own (unqualified) property name/path segment.
	Path string
	// FullPath is Path qualified by its ancestry, computed once at Build
	// time: "parent.Path" under an Object/Schema parent, "parent[]Path"
	// under an indexed-scope parent, or just Path at the root.
	FullPath string
	// TypeArg carries this column's physical type and its nested type
	// arguments (for parameterized scopes) or SchemaId (for a UDT).
	TypeArg TypeArgument
	// Storage classifies where this column's value lives.
	Storage StorageKind
	// Parent is the arena index of the enclosing scope column, or noParent
	// for a top-level column.
	Parent int
	// Index is this column's 0-based position within its storage class:
	// global fixed-column index, global variable-column index, or -- for a
	// nested object/UDT's children -- irrelevant (sparse columns carry no
	// index).
	Index uint
	// Offset is, for StorageFixed, the byte offset from the scope's start;
	// for StorageVariable, the 0-based index among the layout's variable
	// columns (present or not), up to which the length prefixes of the
	// present ones are walked; unused for StorageSparse.
	Offset uint
	// NullBit is the presence-bit index for nullable fixed/variable columns,
	// or bit.Invalid for non-nullable ones (which always read as present).
	NullBit bit.Index
	// BoolBit is the value-bit index for Boolean-typed fixed columns, or
	// bit.Invalid otherwise.
	BoolBit bit.Index
	// Size is the fixed byte width of a StorageFixed column's value (0 for
	// Boolean, whose value lives entirely in BoolBit).
	Size uint
}

// Code is a convenience accessor for this column's canonical wire code.
func (c *Column) Code() Code {
	return c.TypeArg.Type.Code()
}

// Nullable reports whether this column carries a presence bit.
func (c *Column) Nullable() bool {
	return !c.NullBit.IsInvalid()
}
