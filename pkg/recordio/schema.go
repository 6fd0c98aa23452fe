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

// Package recordio implements the segment/record framing layer over a
// stream of HybridRows (spec component C9): a push-based parser that
// recognizes a Segment row's header, then dispatches each following row to
// either a nested Segment or a CRC-checked Record.
package recordio

import (
	"encoding/binary"
	"sync"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/row"
)

// Reserved, negative schema ids for the two bootstrap row shapes this
// package frames streams with -- negative so they can never collide with a
// user-assigned (non-negative) schema id, the same reservation convention
// pkg/schema/systemschema uses for its own bootstrap schemas.
const (
	SegmentSchemaID layout.SchemaId = -1
	RecordSchemaID  layout.SchemaId = -2
)

var (
	bootstrapOnce   sync.Once
	segmentLayout   *layout.Layout
	recordLayout    *layout.Layout
	bootstrapLookup bootstrapResolver
)

// bootstrapResolver implements layout.Resolver over exactly the two
// compiled layouts this package needs to decode its own framing rows.
type bootstrapResolver struct {
	segment *layout.Layout
	record  *layout.Layout
}

func (r bootstrapResolver) Resolve(id layout.SchemaId) *layout.Layout {
	switch id {
	case SegmentSchemaID:
		return r.segment
	case RecordSchemaID:
		return r.record
	default:
		panic("recordio: unknown bootstrap schema id")
	}
}

// initBootstrapLayouts compiles the Segment and Record row shapes once.
// Segment carries the total encoded length of its own header region (so a
// parser knows how many more bytes to read before re-decoding it in full)
// and an optional free-form comment. Record carries the length of its
// payload (a nested row governed by whatever schema the enclosing segment
// declared) and a CRC-32 over that payload.
func initBootstrapLayouts() {
	sb := layout.NewBuilder("Segment", SegmentSchemaID)
	must(sb.AddFixedColumn("length", layout.CodeInt32, false, 0))
	must(sb.AddVariableColumn("comment", layout.CodeUtf8, 0))

	seg, err := sb.Build()
	must(err)

	rb := layout.NewBuilder("Record", RecordSchemaID)
	must(rb.AddFixedColumn("length", layout.CodeInt32, false, 0))
	must(rb.AddFixedColumn("crc32", layout.CodeUInt32, false, 0))

	rec, err := rb.Build()
	must(err)

	segmentLayout = seg
	recordLayout = rec
	bootstrapLookup = bootstrapResolver{segment: seg, record: rec}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func ensureBootstrap() {
	bootstrapOnce.Do(initBootstrapLayouts)
}

// EncodeSegment renders a Segment row. comment's presence is carried
// entirely by the variable column's own null bit; pass "" for no comment.
// length is filled in last, once the row's final encoded size is known.
func EncodeSegment(comment string) []byte {
	ensureBootstrap()

	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, segmentLayout, bootstrapLookup)

	lengthCol, _ := segmentLayout.TryFind("length")
	commentCol, _ := segmentLayout.TryFind("comment")

	scope := row.RootCursor(buf)

	if comment != "" {
		mustWrite(buf.WriteVariable(scope, commentCol, []byte(comment)))
	}

	lengthBytes := make([]byte, 4)
	putInt32(lengthBytes, int32(buf.Length()))
	mustWrite(buf.WriteFixedBytes(scope, lengthCol, lengthBytes))

	return append([]byte(nil), buf.Bytes()...)
}

// EncodeRecord renders a Record row for a payload of the given length,
// carrying crc as its CRC-32.
func EncodeRecord(payloadLength int, crc uint32) []byte {
	ensureBootstrap()

	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, recordLayout, bootstrapLookup)

	lengthCol, _ := recordLayout.TryFind("length")
	crcCol, _ := recordLayout.TryFind("crc32")

	scope := row.RootCursor(buf)

	lengthBytes := make([]byte, 4)
	putInt32(lengthBytes, int32(payloadLength))
	mustWrite(buf.WriteFixedBytes(scope, lengthCol, lengthBytes))

	crcBytes := make([]byte, 4)
	putUint32(crcBytes, crc)
	mustWrite(buf.WriteFixedBytes(scope, crcCol, crcBytes))

	return append([]byte(nil), buf.Bytes()...)
}

func mustWrite(err error) {
	if err != nil {
		panic(err)
	}
}

func putInt32(buf []byte, v int32) {
	binary.LittleEndian.PutUint32(buf, uint32(v))
}

func putUint32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}
