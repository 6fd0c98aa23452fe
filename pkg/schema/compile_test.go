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
package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/schema"
)

func TestCompileFixedAndVariableTopLevel(t *testing.T) {
	ns := &schema.Namespace{
		Name: "ns",
		Schemas: []*schema.Schema{
			{
				Name:     "Point",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.Primitive("x", layout.CodeInt32, schema.StorageFixed, false),
					schema.Primitive("y", layout.CodeInt32, schema.StorageFixed, true),
					schema.Primitive("label", layout.CodeUtf8, schema.StorageVariable, false),
				},
			},
		},
	}

	layouts, err := schema.Compile(ns)
	require.NoError(t, err)

	l := layouts[1]
	require.NotNil(t, l)

	x, ok := l.TryFind("x")
	require.True(t, ok)
	assert.Equal(t, layout.StorageFixed, x.Storage)

	label, ok := l.TryFind("label")
	require.True(t, ok)
	assert.Equal(t, layout.StorageVariable, label.Storage)
}

func TestCompileRejectsNestedFixedStorage(t *testing.T) {
	ns := &schema.Namespace{
		Schemas: []*schema.Schema{
			{
				Name:     "Bad",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.Object("inner", schema.Property{
						Name:    "n",
						Type:    schema.PropertyPrimitive,
						Storage: schema.StorageFixed,
						Code:    layout.CodeInt32,
					}),
				},
			},
		},
	}

	_, err := schema.Compile(ns)
	assert.Error(t, err)
}

func TestCompileObjectScopeNesting(t *testing.T) {
	ns := &schema.Namespace{
		Schemas: []*schema.Schema{
			{
				Name:     "Nested",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.Object("addr",
						schema.Primitive("city", layout.CodeUtf8, schema.StorageSparse, false),
						schema.Primitive("zip", layout.CodeUtf8, schema.StorageSparse, false),
					),
				},
			},
		},
	}

	layouts, err := schema.Compile(ns)
	require.NoError(t, err)

	l := layouts[1]
	_, ok := l.TryFind("addr")
	require.True(t, ok)

	city, ok := l.TryFind("addr.city")
	require.True(t, ok)
	assert.Equal(t, layout.StorageSparse, city.Storage)
}

func TestCompileTypedArrayElement(t *testing.T) {
	ns := &schema.Namespace{
		Schemas: []*schema.Schema{
			{
				Name:     "Widget",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.TypedArray("tags", schema.Primitive("", layout.CodeUtf8, schema.StorageSparse, false)),
				},
			},
		},
	}

	layouts, err := schema.Compile(ns)
	require.NoError(t, err)

	l := layouts[1]
	col, ok := l.TryFind("tags")
	require.True(t, ok)
	assert.Equal(t, layout.CodeTypedArrayScope, col.Code())
	require.Equal(t, 1, col.TypeArg.Args.Count())
	assert.Equal(t, layout.CodeUtf8, col.TypeArg.Args.At(0).Type.Code())
}

func TestCompileUDTReferenceResolvesSiblingSchema(t *testing.T) {
	ns := &schema.Namespace{
		Name: "ns",
		Schemas: []*schema.Schema{
			{
				Name:     "Line",
				SchemaId: 2,
				Properties: []schema.Property{
					schema.UDT("start", "Point"),
				},
			},
			{
				Name:     "Point",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.Primitive("x", layout.CodeInt32, schema.StorageFixed, false),
				},
			},
		},
	}

	layouts, err := schema.Compile(ns)
	require.NoError(t, err)

	l := layouts[2]
	col, ok := l.TryFind("start")
	require.True(t, ok)
	assert.True(t, col.TypeArg.Args.IsSchema())
	assert.Equal(t, layout.SchemaId(1), col.TypeArg.Args.SchemaId())
}

func TestCompileUnknownUDTReferenceErrors(t *testing.T) {
	ns := &schema.Namespace{
		Schemas: []*schema.Schema{
			{
				Name:     "Line",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.UDT("start", "DoesNotExist"),
				},
			},
		},
	}

	_, err := schema.Compile(ns)
	assert.Error(t, err)
}
