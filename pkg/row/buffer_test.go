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
	"github.com/microsoft/hybridrow/pkg/row"
)

// staticResolver is a fixed-table layout.Resolver for tests, standing in for
// schema.NamespaceResolver.
type staticResolver map[layout.SchemaId]*layout.Layout

func (r staticResolver) Resolve(id layout.SchemaId) *layout.Layout {
	l, ok := r[id]
	if !ok {
		panic("test: unknown schema id")
	}

	return l
}

func buildSimpleLayout(t *testing.T) *layout.Layout {
	t.Helper()

	b := layout.NewBuilder("simple", layout.SchemaId(1))
	require.NoError(t, b.AddFixedColumn("id", layout.CodeInt32, false, 0))
	require.NoError(t, b.AddFixedColumn("active", layout.CodeBoolean, true, 0))
	require.NoError(t, b.AddVariableColumn("name", layout.CodeUtf8, 0))

	l, err := b.Build()
	require.NoError(t, err)

	return l
}

func TestInitLayoutReservesHeaderAndFixedRegion(t *testing.T) {
	l := buildSimpleLayout(t)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	assert.Equal(t, row.HeaderSize+int(l.MinRequiredSize), buf.Length())
	assert.Equal(t, row.VersionV1, buf.Bytes()[0])
}

func TestFixedColumnRoundTrip(t *testing.T) {
	l := buildSimpleLayout(t)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	idCol, ok := l.TryFind("id")
	require.True(t, ok)

	scope := row.RootCursor(buf)
	require.NoError(t, buf.WriteFixedBytes(scope, idCol, []byte{0x2a, 0, 0, 0}))

	got, err := buf.ReadFixedBytes(scope, idCol)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a, 0, 0, 0}, got)
}

func TestNullableFixedColumnAbsentByDefault(t *testing.T) {
	l := buildSimpleLayout(t)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	activeCol, _ := l.TryFind("active")
	scope := row.RootCursor(buf)

	_, err := buf.ReadFixedBool(scope, activeCol)
	assert.ErrorIs(t, err, result_ErrNotFound(t))

	require.NoError(t, buf.WriteFixedBool(scope, activeCol, true))

	v, err := buf.ReadFixedBool(scope, activeCol)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestVariableColumnGrowsAndShrinksRow(t *testing.T) {
	l := buildSimpleLayout(t)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	nameCol, _ := l.TryFind("name")
	scope := row.RootCursor(buf)

	base := buf.Length()

	require.NoError(t, buf.WriteVariable(scope, nameCol, []byte("alice")))
	assert.Greater(t, buf.Length(), base)

	got, err := buf.ReadVariable(scope, nameCol)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), got)

	require.NoError(t, buf.WriteVariable(scope, nameCol, []byte("bob")))

	got, err = buf.ReadVariable(scope, nameCol)
	require.NoError(t, err)
	assert.Equal(t, []byte("bob"), got)

	require.NoError(t, buf.DeleteVariable(scope, nameCol))

	assert.Equal(t, base, buf.Length())
}

func TestReadFromRoundTrip(t *testing.T) {
	l := buildSimpleLayout(t)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	nameCol, _ := l.TryFind("name")
	scope := row.RootCursor(buf)
	require.NoError(t, buf.WriteVariable(scope, nameCol, []byte("carol")))

	encoded := append([]byte(nil), buf.Bytes()...)

	other := row.NewBuffer(nil)
	require.NoError(t, other.ReadFrom(encoded, row.VersionV1, staticResolver{1: l}))

	otherScope := row.RootCursor(other)
	got, err := other.ReadVariable(otherScope, nameCol)
	require.NoError(t, err)
	assert.Equal(t, []byte("carol"), got)
}

// result_ErrNotFound avoids importing pkg/result solely for one sentinel in
// this test file.
func result_ErrNotFound(t *testing.T) error { //nolint:revive,stylecheck // test-local helper name.
	t.Helper()

	l := buildSimpleLayout(t)
	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, l, staticResolver{1: l})

	col, _ := l.TryFind("active")
	scope := row.RootCursor(buf)

	_, err := buf.ReadFixedBool(scope, col)

	return err
}
