package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/hybridrow/pkg/varint"
)

func TestEmptyPathIsTokenZero(t *testing.T) {
	tok := New()

	id, ok := tok.TryFindToken("")
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
	assert.Equal(t, uint32(1), tok.Count())
}

func TestAddIsIdempotent(t *testing.T) {
	tok := New()

	a := tok.Add("foo")
	b := tok.Add("foo")
	assert.Equal(t, a, b)
	assert.Equal(t, uint32(2), tok.Count())
}

func TestRoundTripLookup(t *testing.T) {
	tok := New()
	id := tok.Add("a.b.c")

	s, ok := tok.TryFindString(id)
	require.True(t, ok)
	assert.Equal(t, "a.b.c", s)

	_, ok = tok.TryFindString(9999)
	assert.False(t, ok)
}

func TestEncodedMatchesVarint(t *testing.T) {
	tok := New()
	id := tok.Add("p")

	enc := tok.Encoded(id)
	assert.NotEmpty(t, enc)

	want := make([]byte, varint.MaxBytes)
	n := varint.WriteUnsigned(want, 0, uint64(id))
	assert.Equal(t, want[:n], enc)
}
