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
package json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/schema"
	schemajson "github.com/microsoft/hybridrow/pkg/schema/json"
)

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	ns := &schema.Namespace{
		Name: "geo",
		Schemas: []*schema.Schema{
			{
				Name:     "Point",
				SchemaId: 1,
				Properties: []schema.Property{
					schema.Primitive("x", layout.CodeInt32, schema.StorageFixed, false),
					schema.Primitive("y", layout.CodeInt32, schema.StorageFixed, true),
					schema.Object("addr",
						schema.Primitive("city", layout.CodeUtf8, schema.StorageSparse, false),
					),
					schema.TypedArray("tags", schema.Primitive("", layout.CodeUtf8, schema.StorageSparse, false)),
					schema.UDT("origin", "Point"),
				},
			},
		},
	}

	data, err := schemajson.Marshal(ns)
	require.NoError(t, err)

	got, err := schemajson.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, ns, got)
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	_, err := schemajson.Unmarshal([]byte(`{
		"name": "n",
		"schemas": [{"name": "S", "id": 1, "properties": [{"name": "p", "type": "bogus"}]}]
	}`))
	assert.Error(t, err)
}

func TestUnmarshalRejectsUnknownCode(t *testing.T) {
	_, err := schemajson.Unmarshal([]byte(`{
		"name": "n",
		"schemas": [{"name": "S", "id": 1,
			"properties": [{"name": "p", "type": "primitive", "storage": "fixed", "code": "bogus"}]}]
	}`))
	assert.Error(t, err)
}

func TestUnmarshalDefaultsStorageToSparse(t *testing.T) {
	got, err := schemajson.Unmarshal([]byte(`{
		"name": "n",
		"schemas": [{"name": "S", "id": 1,
			"properties": [{"name": "p", "type": "array"}]}]
	}`))
	require.NoError(t, err)

	require.Len(t, got.Schemas[0].Properties, 1)
	assert.Equal(t, schema.StorageSparse, got.Schemas[0].Properties[0].Storage)
}
