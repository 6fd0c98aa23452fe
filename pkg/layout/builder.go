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

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/microsoft/hybridrow/internal/bit"
	"github.com/microsoft/hybridrow/pkg/result"
	"github.com/microsoft/hybridrow/pkg/tokenizer"
)

// Builder is the bit-allocator and offset-planner that turns a flat sequence
// of column declarations into a compiled Layout. Fixed and variable columns
// may only be added while no scope is pushed (nested Object-scope children
// are, per spec §4.5, always sparse fields); Build finalizes bit/byte offsets
// and produces an immutable Layout.
//
// Builder has no dependency on the Schema/Namespace model: the walk that
// drives it from a schema.Schema's Property tree lives in package schema,
// keeping the bit-allocator itself schema-agnostic (spec component C5).
type Builder struct {
	name     string
	schemaID SchemaId

	fixedSize    uint
	numVariable  uint
	allocatedBit *bitset.BitSet // transient allocation table, not wire-resident.
	nextBit      uint

	columns     []Column
	topLevel    []int
	parentStack []int

	tok *tokenizer.Tokenizer
}

// NewBuilder constructs a Builder for a schema with the given name and id.
func NewBuilder(name string, schemaID SchemaId) *Builder {
	return &Builder{
		name:         name,
		schemaID:     schemaID,
		allocatedBit: bitset.New(64),
		tok:          tokenizer.New(),
	}
}

func (b *Builder) currentParent() int {
	if len(b.parentStack) == 0 {
		return noParent
	}

	return b.parentStack[len(b.parentStack)-1]
}

func (b *Builder) parentColumn() *Column {
	p := b.currentParent()
	if p == noParent {
		return nil
	}

	return &b.columns[p]
}

func (b *Builder) allocBit() bit.Index {
	idx := b.nextBit
	if b.allocatedBit.Test(idx) {
		panic("layout: bit index already allocated")
	}

	b.allocatedBit.Set(idx)
	b.nextBit++

	return bit.Index(idx)
}

func (b *Builder) fullPath(path string) string {
	return FullPath(b.parentColumn(), path)
}

func (b *Builder) register(c Column) int {
	idx := len(b.columns)
	b.columns = append(b.columns, c)
	b.tok.Add(c.FullPath)

	if c.Parent == noParent {
		b.topLevel = append(b.topLevel, idx)
	}

	return idx
}

// AddFixedColumn declares a fixed-storage column. VarInt/VarUInt may never be
// fixed (their encoded width is value-dependent); Null must be nullable
// (there is no non-null representation of Null); Utf8/Binary require a
// caller-supplied length and are stored zero-padded to exactly that many
// bytes. Must be called with no scope pushed.
func (b *Builder) AddFixedColumn(path string, code Code, nullable bool, length uint) error {
	if b.currentParent() != noParent {
		return fmt.Errorf("%w: fixed column %q declared inside a nested scope", result.ErrTypeConstraint, path)
	}

	if code == CodeVarInt || code == CodeVarUInt {
		return fmt.Errorf("%w: %v cannot be a fixed column", result.ErrTypeConstraint, code)
	}

	if code == CodeNull && !nullable {
		return fmt.Errorf("%w: Null column %q must be nullable", result.ErrTypeConstraint, path)
	}

	col := Column{
		Path:     path,
		FullPath: b.fullPath(path),
		TypeArg:  TypeArgument{Type: FromCode(code), Args: Empty},
		Storage:  StorageFixed,
		Parent:   noParent,
		NullBit:  bit.Invalid,
		BoolBit:  bit.Invalid,
	}

	if nullable {
		col.NullBit = b.allocBit()
	}

	switch {
	case code == CodeBoolean:
		col.BoolBit = b.allocBit()
		col.Size = 0
	case code.IsFixedSize():
		col.Size = code.Size()
	default: // Utf8, Binary with a fixed declared length.
		if length == 0 {
			return fmt.Errorf("%w: fixed %v column %q requires a non-zero length", result.ErrTypeConstraint, code, path)
		}

		col.Size = length
	}

	col.Offset = b.fixedSize
	b.fixedSize += col.Size

	b.register(col)

	return nil
}

// AddVariableColumn declares a variable-storage column (Utf8, Binary, VarInt,
// or VarUInt). length, if non-zero, is the maximum permitted encoded length;
// writes exceeding it fail with result.ErrTooBig. Must be called with no scope
// pushed.
func (b *Builder) AddVariableColumn(path string, code Code, length uint) error {
	if b.currentParent() != noParent {
		return fmt.Errorf("%w: variable column %q declared inside a nested scope", result.ErrTypeConstraint, path)
	}

	if !code.AllowVariable() {
		return fmt.Errorf("%w: %v cannot be a variable column", result.ErrTypeConstraint, code)
	}

	col := Column{
		Path:     path,
		FullPath: b.fullPath(path),
		TypeArg:  TypeArgument{Type: FromCode(code), Args: Empty},
		Storage:  StorageVariable,
		Parent:   noParent,
		NullBit:  b.allocBit(),
		BoolBit:  bit.Invalid,
		Offset:   b.numVariable,
		Size:     length,
	}
	b.numVariable++

	b.register(col)

	return nil
}

// AddSparseColumn declares a sparse column: a typed scope (Array, TypedArray,
// TypedSet, TypedMap, Tuple, TypedTuple, Tagged, Tagged2, Nullable, or a UDT
// reference) or any primitive stored outside the schematized region. No bit
// or byte is allocated. May be called whether or not a scope is pushed.
func (b *Builder) AddSparseColumn(path string, arg TypeArgument) int {
	col := Column{
		Path:     path,
		FullPath: b.fullPath(path),
		TypeArg:  arg,
		Storage:  StorageSparse,
		Parent:   b.currentParent(),
		NullBit:  bit.Invalid,
		BoolBit:  bit.Invalid,
	}

	return b.register(col)
}

// PushObjectScope declares a nested Object scope column and enters it:
// subsequent AddSparseColumn (and PushObjectScope) calls are parented to it,
// until the matching PopObjectScope.
func (b *Builder) PushObjectScope(path string) int {
	idx := b.AddSparseColumn(path, TypeArgument{Type: FromCode(CodeObjectScope), Args: Empty})
	b.parentStack = append(b.parentStack, idx)

	return idx
}

// PopObjectScope exits the most recently pushed Object scope. Calling it
// without a matching PushObjectScope is a programmer error.
func (b *Builder) PopObjectScope() {
	if len(b.parentStack) == 0 {
		panic("layout: PopObjectScope without matching PushObjectScope")
	}

	b.parentStack = b.parentStack[:len(b.parentStack)-1]
}

// Build finalizes bit/byte allocation and produces the immutable Layout.
// Fixed column offsets are shifted up by the final bitmask size; variable
// columns' global Index is offset by the fixed-column count, so that
// (fixed..., variable...) forms one globally-ordered column sequence exactly
// as spec §4.5 describes.
func (b *Builder) Build() (*Layout, error) {
	if len(b.parentStack) != 0 {
		return nil, fmt.Errorf("%w: %d scope(s) still open at Build", result.ErrTypeConstraint, len(b.parentStack))
	}

	if b.allocatedBit.Count() != b.nextBit {
		panic("layout: allocated-bit count diverged from nextBit")
	}

	numBitmaskBytes := bit.CountBytes(b.nextBit)

	var numFixed uint

	for i := range b.columns {
		c := &b.columns[i]
		if c.Storage == StorageFixed {
			c.Offset += numBitmaskBytes
			c.Index = numFixed
			numFixed++
		}
	}

	for i := range b.columns {
		c := &b.columns[i]
		if c.Storage == StorageVariable {
			c.Index = numFixed + c.Offset
		}
	}

	l := &Layout{
		Name:            b.name,
		SchemaId:        b.schemaID,
		NumBitmaskBytes: numBitmaskBytes,
		NumFixed:        numFixed,
		NumVariable:     b.numVariable,
		MinRequiredSize: numBitmaskBytes + b.fixedSize,
		Columns:         b.columns,
		TopLevel:        b.topLevel,
		Tokenizer:       b.tok,
		pathIndex:       make(map[string]int, len(b.columns)),
	}

	for i := range l.Columns {
		l.pathIndex[l.Columns[i].FullPath] = i
	}

	return l, nil
}
