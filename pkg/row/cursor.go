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
)

// Cursor is a value-typed navigation/edit handle into one scope of a Buffer:
// either the row's top-level schema scope, or a nested scope previously
// opened by one of the WriteXxxScope methods. Cursors have independent
// lifetime from one another (copying one is just a struct copy), but every
// Cursor derived from a given Buffer is invalidated by a mutation performed
// through a sibling Cursor, since mutation shifts byte offsets within the
// shared backing array (spec §5).
type Cursor struct {
	// Layout is the Layout governing this scope: the row's root Layout for
	// the top-level cursor, or -- for a UDT (nested schema) scope -- the
	// nested schema's own Layout, resolved independently of the parent.
	Layout *layout.Layout

	// ScopeType is the canonical code of the scope this cursor iterates the
	// elements of: CodeSchema for the top-level cursor, or whatever scope
	// code was used to open this cursor's scope.
	ScopeType layout.Code
	// ScopeTypeArgs is the type-argument list the enclosing scope column was
	// declared with (e.g. the element type of a TypedArray).
	ScopeTypeArgs layout.TypeArgumentList
	// Immutable marks a scope opened as one of the "Immutable" scope variants
	// (spec §4.7.3): writes through this cursor, or any cursor nested under
	// it, are rejected with result.InsufficientPermissions.
	Immutable bool
	// DeferUniqueIndex, when true, allows writes into a Unique (TypedSet,
	// TypedMap) scope to bypass the sorted-unique-index invariant
	// temporarily; the caller is responsible for a later RebuildUniqueIndex.
	DeferUniqueIndex bool

	// start is the byte offset of this scope's bitmask+fixed region. Only
	// meaningful for a UDT (top-level or nested-schema) scope, which alone
	// has fixed/variable columns; Start reports it for use by the fixed-
	// and variable-column accessors in scalar.go.
	start int

	// contentStart is the byte offset where this scope's sparse element
	// sequence begins: right after the bitmask+fixed+variable regions for a
	// UDT scope, or right after the scope-opening metadata for any other
	// scope. Find rewinds iteration to this offset.
	contentStart int

	// MetaOffset is the byte offset of the current field's metadata (type
	// code / type args / path), or of the position where the next field's
	// metadata would begin if Exists is false.
	MetaOffset int
	// ValueOffset is the byte offset of the current field's value payload.
	ValueOffset int
	// EndOffset is set by Skip once a child scope has been fully drained: the
	// offset immediately following that child scope's encoded bytes.
	EndOffset int

	// Index is this cursor's 0-based position within an Indexed scope.
	Index uint
	// Count is the cached element count of a Sized scope, read once at
	// scope-open time.
	Count uint
	// countOffset is the byte offset of a Sized scope's 4-byte element count
	// prefix, updated in lockstep with Count by every unique-collection
	// insert/remove.
	countOffset int

	// Exists reports whether the field at MetaOffset/ValueOffset is real
	// (true) or whether iteration has reached the end of this scope (false).
	Exists bool

	cellType     layout.Code
	cellTypeArgs layout.TypeArgumentList
	writePath    string
	writeToken   uint32
	hasToken     bool
}

// writable reports whether mutation is currently permitted through this
// cursor: neither it, nor (implicitly, via Immutable propagating downward
// when a scope is opened) any enclosing scope, was opened as Immutable, and
// -- for a Unique scope -- the caller has either accepted the unique-index
// cost of every write or explicitly deferred it.
func (c *Cursor) writable() bool {
	return !c.Immutable
}

// Start returns the byte offset of this (UDT) scope's bitmask+fixed region.
func (c *Cursor) Start() int {
	return c.start
}

// RootCursor constructs the cursor for buf's top-level schema scope,
// positioned before its first sparse field. Call MoveNext or Find to
// navigate into it.
func RootCursor(buf *Buffer) *Cursor {
	l := buf.layout

	sparseStart := variableColumnOffset(buf, l, HeaderSize, int(l.NumVariable))

	return &Cursor{
		Layout:       l,
		ScopeType:    layout.CodeSchema,
		start:        HeaderSize,
		contentStart: sparseStart,
		MetaOffset:   sparseStart,
		ValueOffset:  sparseStart,
	}
}

// Clone returns an independent copy of c. Since Cursor is a plain value type
// with no pointer-shared mutable state, this is just a struct copy, exposed
// as a named method to match the vocabulary of the source protocol.
func (c *Cursor) Clone() *Cursor {
	clone := *c
	return &clone
}

// AsReadOnly returns a copy of c with Immutable forced true, suitable for
// handing to a reader that must not be able to mutate the row even though
// the underlying scope is writable.
func (c *Cursor) AsReadOnly() *Cursor {
	clone := *c
	clone.Immutable = true

	return &clone
}

// Find searches this cursor's scope, from its beginning, for a sparse field
// at the given path, positioning the cursor on it if found. Find panics if
// this cursor's scope is Indexed: indexed scopes (arrays, sets, maps,
// tuples, ...) are addressed positionally via MoveTo, not by path -- calling
// Find on one is a programmer error, not a recoverable condition.
func (c *Cursor) Find(buf *Buffer, path string) bool {
	if c.ScopeType.Info().Indexed {
		panic("row: Find called on an indexed scope")
	}

	token, hasToken := c.Layout.Tokenizer.TryFindToken(path)

	c.MetaOffset = c.contentStart
	c.ValueOffset = c.contentStart
	c.Index = 0
	c.Exists = false

	for {
		if !sparseIteratorMoveNext(buf, c) {
			return false
		}

		if hasToken && c.hasToken && c.writeToken == token {
			return true
		}

		if c.writePath == path {
			return true
		}
	}
}

// MoveNext advances past the current field (first skipping child, if
// non-nil and positioned exactly at this cursor's current value offset) to
// the next field in this scope, returning false once the scope is
// exhausted.
func (c *Cursor) MoveNext(buf *Buffer, child *Cursor) bool {
	if child != nil {
		c.Skip(buf, child)
	}

	return sparseIteratorMoveNext(buf, c)
}

// MoveTo advances an Indexed-scope cursor forward until the element at the
// given 0-based index has been read into it (so Exists/ReadSparse reflect
// that element, not merely the position preceding it), returning false if
// the scope is exhausted before reaching it. Requires index >= the cursor's
// current Index (Indexed scopes can only be scanned forward); a fresh
// cursor's Index is 0, so MoveTo(buf, 0) still performs the one MoveNext
// needed to read its first element.
func (c *Cursor) MoveTo(buf *Buffer, index uint) bool {
	if index < c.Index {
		panic("row: MoveTo requires index >= cursor.Index")
	}

	for c.Index <= index {
		if !c.MoveNext(buf, nil) {
			return false
		}
	}

	return true
}

// Skip fully drains child (a cursor into the scope this cursor's current
// field opened), then positions c immediately after that scope's encoded
// bytes, ready for the next sibling field. Requires child.contentStart ==
// c.ValueOffset: child must be the scope this cursor is currently
// positioned on.
func (c *Cursor) Skip(buf *Buffer, child *Cursor) {
	if child.contentStart != c.ValueOffset {
		panic("row: Skip requires child to be the scope at the cursor's current value offset")
	}

	for sparseIteratorMoveNext(buf, child) {
	}

	info := child.ScopeType.Info()
	if info.HasTerminator {
		c.EndOffset = child.MetaOffset + 1 // account for the EndScope byte.
	} else {
		c.EndOffset = child.MetaOffset
	}

	c.MetaOffset = c.EndOffset
	c.ValueOffset = c.EndOffset
}

// readHeaderSchemaID reads the schema id a row's header was stamped with.
func readHeaderSchemaID(buf *Buffer) layout.SchemaId {
	return layout.SchemaId(int32(binary.LittleEndian.Uint32(buf.buf[1:5])))
}
