package varint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsignedRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1 << 40, ^uint64(0)}

	for _, v := range values {
		buf := make([]byte, MaxBytes)
		n := WriteUnsigned(buf, 0, v)
		require.Equal(t, CountUnsigned(v), n)

		got, m := ReadUnsigned(buf, 0)
		require.Equal(t, n, m)
		assert.Equal(t, v, got)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40)}

	for _, v := range values {
		buf := make([]byte, MaxBytes)
		n := WriteSigned(buf, 0, v)
		require.Equal(t, CountSigned(v), n)

		got, m := ReadSigned(buf, 0)
		require.Equal(t, n, m)
		assert.Equal(t, v, got)
	}
}

func TestZigZagSmallMagnitude(t *testing.T) {
	assert.Equal(t, uint64(0), ZigZag(0))
	assert.Equal(t, uint64(3), ZigZag(-1))
	assert.Equal(t, uint64(2), ZigZag(1))
	assert.Equal(t, uint64(5), ZigZag(-2))
}
