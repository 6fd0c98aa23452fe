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
package recordio

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/microsoft/hybridrow/pkg/result"
	"github.com/microsoft/hybridrow/pkg/row"
)

// State is one state of the RecordIO push parser.
type State int

const (
	StateStart State = iota
	StateError
	StateNeedSegmentLength
	StateNeedSegment
	StateNeedHeader
	StateNeedRecord
	StateNeedRow
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateError:
		return "Error"
	case StateNeedSegmentLength:
		return "NeedSegmentLength"
	case StateNeedSegment:
		return "NeedSegment"
	case StateNeedHeader:
		return "NeedHeader"
	case StateNeedRecord:
		return "NeedRecord"
	case StateNeedRow:
		return "NeedRow"
	default:
		return "Unknown"
	}
}

// ProductionType classifies what, if anything, a call to Process yielded.
type ProductionType int

const (
	ProductionNone ProductionType = iota
	ProductionSegment
	ProductionRecord
)

// headerPeekSize is the minimal slice Process needs to decide whether an
// upcoming row is Segment- or Record-shaped: just the fixed header, version
// byte plus schema id.
const headerPeekSize = row.HeaderSize

// Parser is a push-based state machine that recognizes a stream of
// HybridRows framed as segments and CRC-checked records (spec component
// C9). It does not own or buffer any input itself: the caller retains the
// byte stream and re-presents it, a chunk at a time, to Process; Process
// reports how many of those bytes it consumed and how many more the caller
// must accumulate before calling again.
//
// A zero-value Parser is not ready to use; construct one with NewParser.
type Parser struct {
	state State

	segment struct {
		length  int
		comment string
	}

	record struct {
		length int
		crc    uint32
	}
}

// NewParser returns a Parser positioned at the start of a fresh stream,
// expecting the opening Segment row.
func NewParser() *Parser {
	return &Parser{state: StateNeedSegmentLength}
}

// State reports the parser's current state, chiefly for diagnostics.
func (p *Parser) State() State {
	return p.state
}

// Process advances the parser using data, the unconsumed bytes currently
// available from the stream (Process never retains a reference to data
// past the call). It returns:
//
//   - res: result.Success if some forward progress was made (whether or
//     not a production was yielded this call), result.InsufficientBuffer if
//     data does not yet hold enough bytes to make progress, or
//     result.InvalidRow if the stream is corrupt (the parser then latches
//     into StateError and every subsequent call returns InvalidRow).
//   - prod: what kind of row, if any, was yielded this call.
//   - payload: prod's encoded bytes (the full Segment row for
//     ProductionSegment, or just the record payload for ProductionRecord).
//     Aliases data; the caller must copy it out before the backing array is
//     reused.
//   - bytesNeededNext: the minimum additional bytes the caller should
//     accumulate before calling Process again, when res is
//     result.InsufficientBuffer.
//   - bytesConsumed: how many leading bytes of data this call consumed; the
//     caller must advance its stream position by this much.
func (p *Parser) Process(data []byte) (
	res result.Result, prod ProductionType, payload []byte, bytesNeededNext int, bytesConsumed int,
) {
	switch p.state {
	case StateError:
		return result.InvalidRow, ProductionNone, nil, 0, 0

	case StateStart, StateNeedSegmentLength:
		return p.processNeedSegmentLength(data)

	case StateNeedSegment:
		return p.processNeedSegment(data)

	case StateNeedHeader:
		return p.processNeedHeader(data)

	case StateNeedRecord:
		return p.processNeedRecord(data)

	case StateNeedRow:
		return p.processNeedRow(data)

	default:
		panic("recordio: unknown parser state")
	}
}

// fail transitions the parser into StateError and reports InvalidRow.
func (p *Parser) fail() (result.Result, ProductionType, []byte, int, int) {
	p.state = StateError
	return result.InvalidRow, ProductionNone, nil, 0, 0
}

// needMore reports that Process made no progress this call because data is
// short of total bytes.
func needMore(total int, have int) (result.Result, ProductionType, []byte, int, int) {
	return result.InsufficientBuffer, ProductionNone, nil, total - have, 0
}

// processNeedSegmentLength decodes the minimal (no comment) form of a
// Segment row, just far enough to learn its length field -- the total
// encoded length of the full segment header, comment included.
func (p *Parser) processNeedSegmentLength(data []byte) (result.Result, ProductionType, []byte, int, int) {
	ensureBootstrap()

	minSize := row.HeaderSize + int(segmentLayout.MinRequiredSize)
	if len(data) < minSize {
		return needMore(minSize, len(data))
	}

	buf := row.NewBuffer(nil)
	if err := buf.ReadFrom(data[:minSize], row.VersionV1, bootstrapLookup); err != nil {
		return p.fail()
	}

	lengthCol, _ := segmentLayout.TryFind("length")

	scope := row.RootCursor(buf)

	lengthBytes, err := buf.ReadFixedBytes(scope, lengthCol)
	if err != nil {
		return p.fail()
	}

	p.segment.length = int(int32(binary.LittleEndian.Uint32(lengthBytes)))
	if p.segment.length < minSize {
		return p.fail()
	}

	p.state = StateNeedSegment

	return p.processNeedSegment(data)
}

// processNeedSegment requires the full segment.length bytes, re-decodes the
// segment in full (picking up its optional comment), and yields it as a
// Segment production.
func (p *Parser) processNeedSegment(data []byte) (result.Result, ProductionType, []byte, int, int) {
	if len(data) < p.segment.length {
		return needMore(p.segment.length, len(data))
	}

	buf := row.NewBuffer(nil)
	if err := buf.ReadFrom(data[:p.segment.length], row.VersionV1, bootstrapLookup); err != nil {
		return p.fail()
	}

	commentCol, _ := segmentLayout.TryFind("comment")

	scope := row.RootCursor(buf)

	if comment, err := buf.ReadVariable(scope, commentCol); err == nil {
		p.segment.comment = string(comment)
	} else {
		p.segment.comment = ""
	}

	consumed := p.segment.length
	p.state = StateNeedHeader

	return result.Success, ProductionSegment, data[:consumed], 0, consumed
}

// processNeedHeader peeks a following row's header to learn its shape
// without committing to decoding it as either a Segment or a Record.
func (p *Parser) processNeedHeader(data []byte) (result.Result, ProductionType, []byte, int, int) {
	if len(data) < headerPeekSize {
		return needMore(headerPeekSize, len(data))
	}

	if data[0] != row.VersionV1 {
		return p.fail()
	}

	schemaID := int32(binary.LittleEndian.Uint32(data[1:5]))

	switch {
	case int32(SegmentSchemaID) == schemaID:
		// A nested segment: its length is not yet known, so route back
		// through the same discovery step used for the stream's opening
		// segment rather than a distinct NeedSegment entry point.
		p.state = StateNeedSegmentLength
		return p.processNeedSegmentLength(data)
	case int32(RecordSchemaID) == schemaID:
		p.state = StateNeedRecord
		return p.processNeedRecord(data)
	default:
		return p.fail()
	}
}

// processNeedRecord decodes a fixed-size Record row (length + crc32, no
// variable columns) and transitions to waiting for its payload.
func (p *Parser) processNeedRecord(data []byte) (result.Result, ProductionType, []byte, int, int) {
	ensureBootstrap()

	size := row.HeaderSize + int(recordLayout.MinRequiredSize)
	if len(data) < size {
		return needMore(size, len(data))
	}

	buf := row.NewBuffer(nil)
	if err := buf.ReadFrom(data[:size], row.VersionV1, bootstrapLookup); err != nil {
		return p.fail()
	}

	lengthCol, _ := recordLayout.TryFind("length")
	crcCol, _ := recordLayout.TryFind("crc32")

	scope := row.RootCursor(buf)

	lengthBytes, err := buf.ReadFixedBytes(scope, lengthCol)
	if err != nil {
		return p.fail()
	}

	crcBytes, err := buf.ReadFixedBytes(scope, crcCol)
	if err != nil {
		return p.fail()
	}

	p.record.length = int(int32(binary.LittleEndian.Uint32(lengthBytes)))
	p.record.crc = binary.LittleEndian.Uint32(crcBytes)

	if p.record.length < 0 {
		return p.fail()
	}

	p.state = StateNeedRow

	return result.Success, ProductionNone, nil, 0, size
}

// processNeedRow waits for the record's payload bytes, validates its
// CRC-32, and -- if it checks out -- yields it as a Record production.
func (p *Parser) processNeedRow(data []byte) (result.Result, ProductionType, []byte, int, int) {
	if len(data) < p.record.length {
		return needMore(p.record.length, len(data))
	}

	payload := data[:p.record.length]

	if crc32.ChecksumIEEE(payload) != p.record.crc {
		return p.fail()
	}

	p.state = StateNeedHeader

	return result.Success, ProductionRecord, payload, 0, p.record.length
}
