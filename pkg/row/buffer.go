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

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
)

// HeaderSize is the fixed length, in bytes, of every row's header: one
// version byte followed by a little-endian int32 schema id.
const HeaderSize = 5

// VersionV1 is the only version byte this implementation accepts.
const VersionV1 byte = 0x81

// Resizer grows (or shrinks) the backing array of a Buffer. Resize must
// return a slice of at least capacity bytes; implementations that copy
// existing content must copy min(len(old), capacity) bytes starting at
// offset 0.
type Resizer interface {
	Resize(capacity int, old []byte) []byte
}

// DefaultResizer grows geometrically (doubling) via make+copy, the simplest
// correct strategy and the one used unless a Buffer is constructed with a
// different Resizer.
type DefaultResizer struct{}

// Resize implements Resizer.
func (DefaultResizer) Resize(capacity int, old []byte) []byte {
	newCap := capacity
	if len(old) > 0 {
		doubled := len(old) * 2
		if doubled > newCap {
			newCap = doubled
		}
	}

	buf := make([]byte, newCap)
	copy(buf, old)

	return buf
}

// Buffer is the mutable byte container and sparse-protocol encode/decode
// engine for one row. A Buffer owns its backing array exclusively; every
// Cursor derived from it borrows into that same array and is invalidated by
// any subsequent mutation performed through a different Cursor (spec §5).
type Buffer struct {
	buf      []byte
	length   int
	layout   *layout.Layout
	resolver layout.Resolver
	resizer  Resizer
}

// NewBuffer constructs an empty Buffer using resizer (DefaultResizer if nil).
func NewBuffer(resizer Resizer) *Buffer {
	if resizer == nil {
		resizer = DefaultResizer{}
	}

	return &Buffer{resizer: resizer}
}

// Length returns the current logical length of the row, in bytes.
func (b *Buffer) Length() int {
	return b.length
}

// Bytes returns the row's current logical content. The returned slice aliases
// the Buffer's backing array and is only valid until the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.length]
}

// Layout returns the root Layout this Buffer was initialized with.
func (b *Buffer) Layout() *layout.Layout {
	return b.layout
}

// Resolver returns the LayoutResolver this Buffer resolves nested UDT scopes
// through.
func (b *Buffer) Resolver() layout.Resolver {
	return b.resolver
}

// ensureCapacity grows the backing array, if necessary, to hold at least n
// bytes, preserving existing content.
func (b *Buffer) ensureCapacity(n int) {
	if len(b.buf) >= n {
		return
	}

	b.buf = b.resizer.Resize(n, b.buf)
}

// InitLayout initializes an empty row for writing: it reserves the header
// plus the bitmask and fixed region, zero-initializes that prefix, and
// stamps the version byte and schema id.
func (b *Buffer) InitLayout(version byte, l *layout.Layout, resolver layout.Resolver) {
	b.layout = l
	b.resolver = resolver

	total := HeaderSize + int(l.MinRequiredSize)
	b.ensureCapacity(total)

	for i := 0; i < total; i++ {
		b.buf[i] = 0
	}

	b.buf[0] = version
	binary.LittleEndian.PutUint32(b.buf[1:5], uint32(l.SchemaId))
	b.length = total
}

// ReadFrom loads a row from an encoded byte slice: data is copied into the
// Buffer's own backing array, the header is validated against version, and
// the encoded schema id is resolved (via resolver, which panics on an
// unknown id -- an invariant violation, not a recoverable condition) to
// obtain this row's Layout.
func (b *Buffer) ReadFrom(data []byte, version byte, resolver layout.Resolver) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: row shorter than header", result.ErrInvalidRow)
	}

	if data[0] != version {
		return fmt.Errorf("%w: row version %#x, expected %#x", result.ErrInvalidRow, data[0], version)
	}

	schemaID := int32(binary.LittleEndian.Uint32(data[1:5]))

	l := resolver.Resolve(layout.SchemaId(schemaID))
	if int(l.MinRequiredSize)+HeaderSize > len(data) {
		return fmt.Errorf("%w: row too short for resolved layout %q", result.ErrInvalidRow, l.Name)
	}

	b.ensureCapacity(len(data))
	copy(b.buf, data)
	b.length = len(data)
	b.layout = l
	b.resolver = resolver

	return nil
}

// shift adjusts the logical content of the row by delta bytes starting at
// from: positive delta grows the row (making room for a longer field),
// negative delta shrinks it (removing bytes). The region [from, length) is
// moved to [from+delta, length+delta).
func (b *Buffer) shift(from int, delta int) {
	if delta == 0 {
		return
	}

	newLength := b.length + delta
	if delta > 0 {
		b.ensureCapacity(newLength)
	}

	copy(b.buf[from+delta:newLength], b.buf[from:b.length])

	switch {
	case delta < 0:
		for i := newLength; i < b.length; i++ {
			b.buf[i] = 0
		}
	case delta > 0:
		for i := from; i < from+delta; i++ {
			b.buf[i] = 0
		}
	}

	b.length = newLength
}
