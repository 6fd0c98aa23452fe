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
package systemschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/schema"
	"github.com/microsoft/hybridrow/pkg/schema/systemschema"
)

func TestEncodeDecodeRoundTripsFlatSchema(t *testing.T) {
	ns := &schema.Namespace{
		Name: "geo",
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

	data, err := systemschema.Encode(ns)
	require.NoError(t, err)

	got, err := systemschema.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, ns, got)
}

func TestEncodeDecodeRoundTripsNestedAndUDTProperties(t *testing.T) {
	ns := &schema.Namespace{
		Name: "ns",
		Schemas: []*schema.Schema{
			{
				Name:     "Line",
				SchemaId: 2,
				Properties: []schema.Property{
					schema.Object("addr",
						schema.Primitive("city", layout.CodeUtf8, schema.StorageSparse, false),
						schema.Primitive("zip", layout.CodeUtf8, schema.StorageSparse, false),
					),
					schema.TypedArray("tags", schema.Primitive("", layout.CodeUtf8, schema.StorageSparse, false)),
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

	data, err := systemschema.Encode(ns)
	require.NoError(t, err)

	got, err := systemschema.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, ns, got)
}

func TestEncodeDecodeRoundTripsEmptyNamespace(t *testing.T) {
	ns := &schema.Namespace{Name: "empty"}

	data, err := systemschema.Encode(ns)
	require.NoError(t, err)

	got, err := systemschema.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, ns, got)
}

func TestDecodedNamespaceCompiles(t *testing.T) {
	ns := &schema.Namespace{
		Name: "ns",
		Schemas: []*schema.Schema{
			{
				Name:     "Point",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.Primitive("x", layout.CodeInt32, schema.StorageFixed, false),
				},
			},
		},
	}

	data, err := systemschema.Encode(ns)
	require.NoError(t, err)

	got, err := systemschema.Decode(data)
	require.NoError(t, err)

	_, err = schema.Compile(got)
	require.NoError(t, err)
}
