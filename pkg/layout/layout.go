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

import "github.com/microsoft/hybridrow/pkg/tokenizer"

// Layout is the immutable, compiled description of a Schema: every one of its
// properties reduced to a Column with a concrete storage class, offset,
// presence bit and (for Boolean) value bit. Layouts are produced once by
// Builder.Build and are safe to share across goroutines thereafter (nothing
// about a Layout is ever mutated post-construction).
type Layout struct {
	// Name is the schema name this Layout was compiled from.
	Name string
	// SchemaId is the schema id this Layout was compiled from.
	SchemaId SchemaId
	// NumBitmaskBytes is the size, in bytes, of the presence+boolean bitmask
	// region immediately following the row header.
	NumBitmaskBytes uint
	// NumFixed is the number of fixed-storage columns (top-level and
	// nested).
	NumFixed uint
	// NumVariable is the number of variable-storage columns (top-level and
	// nested).
	NumVariable uint
	// MinRequiredSize is the minimum number of bytes -- after the row header
	// -- required to hold the bitmask plus the fixed region. Variable
	// columns contribute nothing when absent (their null bit is simply
	// clear), so they are not counted here. This is the quantity Invariant 1
	// guarantees is always present.
	MinRequiredSize uint
	// Columns is the column arena: every column, top-level or nested, in the
	// order Builder produced them. A Column's Parent field indexes back into
	// this same slice.
	Columns []Column
	// TopLevel lists the arena indices of this Layout's top-level (schema
	// root) columns, in declared order.
	TopLevel []int
	// Tokenizer interns every column's FullPath (and is shared read-only by
	// every sparse path encode/decode against rows of this Layout).
	Tokenizer *tokenizer.Tokenizer

	pathIndex map[string]int
}

// TopLevelColumns returns this Layout's top-level columns, in declared
// order.
func (l *Layout) TopLevelColumns() []*Column {
	cols := make([]*Column, len(l.TopLevel))
	for i, idx := range l.TopLevel {
		cols[i] = &l.Columns[idx]
	}

	return cols
}

// TryFind looks up a top-level-or-nested column by its full path.
func (l *Layout) TryFind(path string) (*Column, bool) {
	idx, ok := l.pathIndex[path]
	if !ok {
		return nil, false
	}

	return &l.Columns[idx], true
}

// Parent returns the parent Column of c, or nil if c is top-level.
func (l *Layout) Parent(c *Column) *Column {
	if c.Parent == noParent {
		return nil
	}

	return &l.Columns[c.Parent]
}

// FullPath computes the qualified path of a child named path directly under
// parent, following spec §4.4: Object/Schema parents join with ".",
// indexed-scope parents join with "[]", any other parent contributes no
// separator (the child is addressed positionally, not by path).
func FullPath(parent *Column, path string) string {
	if parent == nil {
		return path
	}

	switch parent.Code().Canonical() {
	case CodeObjectScope, CodeSchema:
		return parent.FullPath + "." + path
	case CodeArrayScope, CodeTypedArrayScope, CodeTypedSetScope, CodeTypedMapScope:
		return parent.FullPath + "[]" + path
	default:
		return path
	}
}
