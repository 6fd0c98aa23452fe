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
package recordio_test

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/hybridrow/pkg/recordio"
	"github.com/microsoft/hybridrow/pkg/result"
)

// frameStream builds a well-formed single-segment, single-record stream:
// a Segment row, a Record row, then payload.
func frameStream(t *testing.T, comment string, payload []byte) []byte {
	t.Helper()

	seg := recordio.EncodeSegment(comment)
	rec := recordio.EncodeRecord(len(payload), crc32.ChecksumIEEE(payload))

	stream := make([]byte, 0, len(seg)+len(rec)+len(payload))
	stream = append(stream, seg...)
	stream = append(stream, rec...)
	stream = append(stream, payload...)

	return stream
}

func TestParserSegmentRecordPayload(t *testing.T) {
	payload := []byte("a 17-byte payload")[:17]
	stream := frameStream(t, "", payload)

	p := recordio.NewParser()

	res, prod, bytes, _, consumed := p.Process(stream)
	require.Equal(t, result.Success, res)
	assert.Equal(t, recordio.ProductionSegment, prod)
	assert.NotEmpty(t, bytes)
	stream = stream[consumed:]

	res, prod, _, _, consumed = p.Process(stream)
	require.Equal(t, result.Success, res)
	assert.Equal(t, recordio.ProductionNone, prod)
	stream = stream[consumed:]

	res, prod, bytes, _, consumed = p.Process(stream)
	require.Equal(t, result.Success, res)
	assert.Equal(t, recordio.ProductionRecord, prod)
	assert.Equal(t, payload, bytes)
	stream = stream[consumed:]

	assert.Empty(t, stream)
}

func TestParserSegmentCarriesComment(t *testing.T) {
	payload := []byte("x")
	stream := frameStream(t, "a comment", payload)

	p := recordio.NewParser()

	res, prod, segBytes, _, consumed := p.Process(stream)
	require.Equal(t, result.Success, res)
	require.Equal(t, recordio.ProductionSegment, prod)
	assert.True(t, len(segBytes) > 0)
	assert.Equal(t, len(segBytes), consumed)
}

func TestParserReportsBytesNeededOnPartialBuffer(t *testing.T) {
	payload := []byte("hello")
	stream := frameStream(t, "", payload)

	p := recordio.NewParser()

	res, prod, _, needed, consumed := p.Process(stream[:2])
	assert.Equal(t, result.InsufficientBuffer, res)
	assert.Equal(t, recordio.ProductionNone, prod)
	assert.Equal(t, 0, consumed)
	assert.Greater(t, needed, 0)

	// Feeding the full stream now succeeds from scratch.
	res, prod, _, _, _ = p.Process(stream)
	assert.Equal(t, result.Success, res)
	assert.Equal(t, recordio.ProductionSegment, prod)
}

func TestParserCRCMismatchFailsAndLatches(t *testing.T) {
	payload := []byte("the quick brown fox")
	stream := frameStream(t, "", payload)

	// Flip one bit inside the payload region, after segment+record headers.
	flipAt := len(stream) - 1
	stream[flipAt] ^= 0x01

	p := recordio.NewParser()

	res, _, _, _, consumed := p.Process(stream)
	require.Equal(t, result.Success, res)
	stream2 := stream[consumed:]

	res, _, _, _, consumed = p.Process(stream2)
	require.Equal(t, result.Success, res)
	stream2 = stream2[consumed:]

	res, prod, _, _, _ := p.Process(stream2)
	assert.Equal(t, result.InvalidRow, res)
	assert.Equal(t, recordio.ProductionNone, prod)
	assert.Equal(t, recordio.StateError, p.State())

	// The parser stays failed even if asked again.
	res, _, _, _, _ = p.Process(stream2)
	assert.Equal(t, result.InvalidRow, res)
}

func TestParserRejectsBadVersionByte(t *testing.T) {
	payload := []byte("z")
	stream := frameStream(t, "", payload)

	p := recordio.NewParser()

	_, _, _, _, consumed := p.Process(stream)
	stream = stream[consumed:]

	// Corrupt the version byte of the following Record row's header.
	stream[0] = 0x00

	res, _, _, _, _ := p.Process(stream)
	assert.Equal(t, result.InvalidRow, res)
	assert.Equal(t, recordio.StateError, p.State())
}

func TestParserNestedSegment(t *testing.T) {
	inner := frameStream(t, "inner", []byte("payload-a"))
	outerSeg := recordio.EncodeSegment("outer")

	stream := append(append([]byte(nil), outerSeg...), inner...)

	p := recordio.NewParser()

	res, prod, _, _, consumed := p.Process(stream)
	require.Equal(t, result.Success, res)
	require.Equal(t, recordio.ProductionSegment, prod)
	stream = stream[consumed:]

	res, prod, _, _, consumed = p.Process(stream)
	require.Equal(t, result.Success, res)
	require.Equal(t, recordio.ProductionSegment, prod)
	stream = stream[consumed:]
}
