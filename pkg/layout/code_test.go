package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImmutableBitToggle(t *testing.T) {
	mutable := CodeTypedArrayScope
	immutable := mutable.AsImmutable()

	assert.True(t, immutable.IsImmutable())
	assert.False(t, mutable.IsImmutable())
	assert.Equal(t, mutable, immutable.Canonical())
}

func TestAlwaysNeedsTypeCode(t *testing.T) {
	assert.True(t, CodeBoolean.AlwaysNeedsTypeCode())
	assert.True(t, CodeBooleanFalse.AlwaysNeedsTypeCode())
	assert.True(t, CodeNull.AlwaysNeedsTypeCode())
	assert.False(t, CodeInt32.AlwaysNeedsTypeCode())
}

func TestScopeInfoIndexedAndSized(t *testing.T) {
	info := CodeTypedSetScope.Info()
	assert.True(t, info.Indexed)
	assert.True(t, info.Sized)
	assert.True(t, info.Unique)
	assert.True(t, info.ImplicitTypeCode)

	objInfo := CodeObjectScope.Info()
	assert.False(t, objInfo.Indexed)
	assert.True(t, objInfo.HasTerminator)
}

func TestFixedSizeTable(t *testing.T) {
	assert.Equal(t, uint(4), CodeInt32.Size())
	assert.Equal(t, uint(16), CodeGuid.Size())
	assert.Equal(t, uint(12), CodeMongoObjectId.Size())
}
