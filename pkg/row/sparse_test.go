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
package row_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
	"github.com/microsoft/hybridrow/pkg/row"
)

func emptyLayout(t *testing.T, id layout.SchemaId) *layout.Layout {
	t.Helper()

	l, err := layout.NewBuilder("sparse", id).Build()
	require.NoError(t, err)

	return l
}

func int32Arg() layout.TypeArgument {
	return layout.TypeArgument{Type: layout.FromCode(layout.CodeInt32), Args: layout.Empty}
}

func utf8Arg() layout.TypeArgument {
	return layout.TypeArgument{Type: layout.FromCode(layout.CodeUtf8), Args: layout.Empty}
}

func TestObjectScopeDynamicPathRoundTrip(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	require.NoError(t, buf.WriteSparse(root, "answer", row.Value{Code: layout.CodeInt32, Data: int32(42)}, row.Insert))

	found := root.Find(buf, "answer")
	require.True(t, found)

	v, err := buf.ReadSparse(root)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.Data)

	require.NoError(t, buf.DeleteSparse(root, "answer"))
	assert.False(t, root.Find(buf, "answer"))
}

func TestWriteSparseInsertDuplicateFails(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)
	require.NoError(t, buf.WriteSparse(root, "x", row.Value{Code: layout.CodeInt32, Data: int32(1)}, row.Insert))

	err := buf.WriteSparse(root, "x", row.Value{Code: layout.CodeInt32, Data: int32(2)}, row.Insert)
	assert.ErrorIs(t, err, result.ErrExists)
}

func TestNestedObjectScope(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	inner, err := buf.WriteObjectScope(root, "nested", row.Insert)
	require.NoError(t, err)

	require.NoError(t, buf.WriteSparse(inner, "leaf", row.Value{Code: layout.CodeUtf8, Data: "hi"}, row.Insert))

	require.True(t, inner.Find(buf, "leaf"))
	v, err := buf.ReadSparse(inner)
	require.NoError(t, err)
	assert.Equal(t, "hi", v.Data)
}

func TestArrayScopeAppendAndIterate(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	arr, err := buf.WriteArrayScope(root, "items", row.Insert)
	require.NoError(t, err)

	require.NoError(t, buf.WriteSparse(arr, "", row.Value{Code: layout.CodeInt32, Data: int32(1)}, row.InsertAt))
	for arr.MoveNext(buf, nil) {
	}
	require.NoError(t, buf.WriteSparse(arr, "", row.Value{Code: layout.CodeInt32, Data: int32(2)}, row.InsertAt))

	child, err := buf.WriteArrayScope(root, "items", row.Update)
	require.NoError(t, err)

	var got []int32
	for child.MoveNext(buf, nil) {
		v, rerr := buf.ReadSparse(child)
		require.NoError(t, rerr)
		got = append(got, v.Data.(int32))
	}

	assert.Equal(t, []int32{1, 2}, got)
}

func TestTypedArrayElidesTypeCode(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	arr, err := buf.WriteTypedArrayScope(root, "nums", int32Arg(), row.Insert)
	require.NoError(t, err)

	for _, n := range []int32{10, 20, 30} {
		require.NoError(t, buf.WriteSparse(arr, "", row.Value{Code: layout.CodeInt32, Data: n}, row.InsertAt))

		for arr.MoveNext(buf, nil) {
		}
	}

	child, err := buf.WriteTypedArrayScope(root, "nums", int32Arg(), row.Update)
	require.NoError(t, err)

	var got []int32
	for child.MoveNext(buf, nil) {
		v, rerr := buf.ReadSparse(child)
		require.NoError(t, rerr)
		got = append(got, v.Data.(int32))
	}

	assert.Equal(t, []int32{10, 20, 30}, got)
}

func TestTupleScopeDefaultsThenOverwrite(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	tup, err := buf.WriteTupleScope(root, "pair", []layout.TypeArgument{int32Arg(), utf8Arg()}, row.Insert)
	require.NoError(t, err)

	require.True(t, tup.MoveTo(buf, 0))
	v, err := buf.ReadSparse(tup)
	require.NoError(t, err)
	assert.Equal(t, layout.CodeNull, v.Code)

	require.NoError(t, buf.WriteSparse(tup, "", row.Value{Code: layout.CodeInt32, Data: int32(7)}, row.Update))

	v, err = buf.ReadSparse(tup)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.Data)
}

func TestNullableScopeAbsentVsPresent(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	n, err := buf.WriteNullableScope(root, "opt", utf8Arg(), row.Insert)
	require.NoError(t, err)

	require.True(t, n.MoveTo(buf, 0))
	v, err := buf.ReadSparse(n)
	require.NoError(t, err)
	assert.Equal(t, layout.CodeNull, v.Code)

	require.NoError(t, buf.WriteSparse(n, "", row.Value{Code: layout.CodeUtf8, Data: "present"}, row.Update))

	v, err = buf.ReadSparse(n)
	require.NoError(t, err)
	assert.Equal(t, "present", v.Data)
}

func TestTypedSetRejectsDuplicatesAndStaysSorted(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	set, err := buf.WriteTypedSetScope(root, "tags", int32Arg(), row.Insert)
	require.NoError(t, err)

	require.NoError(t, buf.InsertUniqueElement(set, row.Value{Code: layout.CodeInt32, Data: int32(30)}))
	require.NoError(t, buf.InsertUniqueElement(set, row.Value{Code: layout.CodeInt32, Data: int32(10)}))
	require.NoError(t, buf.InsertUniqueElement(set, row.Value{Code: layout.CodeInt32, Data: int32(20)}))

	err = buf.InsertUniqueElement(set, row.Value{Code: layout.CodeInt32, Data: int32(10)})
	assert.ErrorIs(t, err, result.ErrExists)

	child, err := buf.WriteTypedSetScope(root, "tags", int32Arg(), row.Update)
	require.NoError(t, err)

	var got []int32
	for child.MoveNext(buf, nil) {
		v, rerr := buf.ReadSparse(child)
		require.NoError(t, rerr)
		got = append(got, v.Data.(int32))
	}

	assert.Equal(t, []int32{10, 20, 30}, got)
}

func TestTypedMapAlternatingKeyValue(t *testing.T) {
	l := emptyLayout(t, 1)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	root := row.RootCursor(buf)

	m, err := buf.WriteTypedMapScope(root, "attrs", utf8Arg(), int32Arg(), row.Insert)
	require.NoError(t, err)

	m.DeferUniqueIndex = true

	require.NoError(t, buf.InsertUniqueElement(m, row.Value{Code: layout.CodeUtf8, Data: "b"}))
	require.NoError(t, buf.InsertUniqueElement(m, row.Value{Code: layout.CodeInt32, Data: int32(2)}))
	require.NoError(t, buf.InsertUniqueElement(m, row.Value{Code: layout.CodeUtf8, Data: "a"}))
	require.NoError(t, buf.InsertUniqueElement(m, row.Value{Code: layout.CodeInt32, Data: int32(1)}))

	require.NoError(t, buf.RebuildUniqueIndex(m))

	child, err := buf.WriteTypedMapScope(root, "attrs", utf8Arg(), int32Arg(), row.Update)
	require.NoError(t, err)

	var keys []string
	var vals []int32

	for child.MoveNext(buf, nil) {
		v, rerr := buf.ReadSparse(child)
		require.NoError(t, rerr)

		if v.Code == layout.CodeUtf8 {
			keys = append(keys, v.Data.(string))
		} else {
			vals = append(vals, v.Data.(int32))
		}
	}

	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, []int32{1, 2}, vals)
}

func TestNestedSchemaScope(t *testing.T) {
	inner := emptyLayout(t, 2)

	ib := layout.NewBuilder("inner", layout.SchemaId(2))
	require.NoError(t, ib.AddFixedColumn("count", layout.CodeInt32, false, 0))
	inner, err := ib.Build()
	require.NoError(t, err)

	outer := emptyLayout(t, 1)
	resolver := staticResolver{1: outer, 2: inner}

	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, outer, resolver)

	root := row.RootCursor(buf)

	child, err := buf.WriteSchemaScope(root, "child", layout.SchemaId(2), row.Insert)
	require.NoError(t, err)

	countCol, ok := inner.TryFind("count")
	require.True(t, ok)

	require.NoError(t, buf.WriteFixedBytes(child, countCol, []byte{5, 0, 0, 0}))

	got, err := buf.ReadFixedBytes(child, countCol)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 0, 0}, got)
}
