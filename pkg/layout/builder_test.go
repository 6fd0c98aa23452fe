package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSimpleFixedSchema(t *testing.T) {
	b := NewBuilder("table", SchemaId(-1))
	require.NoError(t, b.AddFixedColumn("a", CodeInt32, true, 0))

	l, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, uint(1), l.NumBitmaskBytes)
	assert.Equal(t, uint(1), l.NumFixed)
	assert.Equal(t, uint(0), l.NumVariable)

	col, ok := l.TryFind("a")
	require.True(t, ok)
	assert.Equal(t, StorageFixed, col.Storage)
	assert.Equal(t, uint(1), col.Offset) // shifted up by 1 bitmask byte.
	assert.False(t, col.NullBit.IsInvalid())
}

func TestBuildBooleanAllocatesTwoBits(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	require.NoError(t, b.AddFixedColumn("flag", CodeBoolean, true, 0))

	l, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, uint(1), l.NumBitmaskBytes) // 2 bits -> 1 byte.

	col, _ := l.TryFind("flag")
	assert.False(t, col.NullBit.IsInvalid())
	assert.False(t, col.BoolBit.IsInvalid())
	assert.NotEqual(t, col.NullBit, col.BoolBit)
}

func TestAddFixedColumnRejectsVarInt(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	err := b.AddFixedColumn("a", CodeVarInt, true, 0)
	assert.Error(t, err)
}

func TestAddVariableColumnRejectsNonVariableType(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	err := b.AddVariableColumn("a", CodeInt32, 0)
	assert.Error(t, err)
}

func TestVariableColumnIndexGlobalOrdering(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	require.NoError(t, b.AddFixedColumn("a", CodeInt32, false, 0))
	require.NoError(t, b.AddFixedColumn("b", CodeInt32, false, 0))
	require.NoError(t, b.AddVariableColumn("c", CodeUtf8, 100))

	l, err := b.Build()
	require.NoError(t, err)

	colC, _ := l.TryFind("c")
	assert.Equal(t, uint(2), colC.Index) // after the two fixed columns.
	assert.Equal(t, uint(0), colC.Offset) // first (and only) variable column.
}

func TestObjectScopeChildrenAreSparse(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	b.PushObjectScope("obj")
	b.AddSparseColumn("x", TypeArgument{Type: FromCode(CodeInt32), Args: Empty})
	b.PopObjectScope()

	l, err := b.Build()
	require.NoError(t, err)

	col, ok := l.TryFind("obj.x")
	require.True(t, ok)
	assert.Equal(t, StorageSparse, col.Storage)

	parent := l.Parent(col)
	require.NotNil(t, parent)
	assert.Equal(t, "obj", parent.FullPath)
}

func TestBuildFailsWithUnclosedScope(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	b.PushObjectScope("obj")

	_, err := b.Build()
	assert.Error(t, err)
}

func TestFixedColumnInsideScopeRejected(t *testing.T) {
	b := NewBuilder("table", SchemaId(1))
	b.PushObjectScope("obj")

	err := b.AddFixedColumn("x", CodeInt32, true, 0)
	assert.Error(t, err)
}
