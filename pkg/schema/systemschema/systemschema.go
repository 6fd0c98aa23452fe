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

// Package systemschema is the bootstrap Namespace a Namespace describes
// itself with: three schemas (Property, Schema, Namespace) declared with
// pkg/schema's own DSL and compiled with pkg/schema's own Compile, so that
// an authored Namespace can be serialized to and read back from a
// HybridRow exactly like any other UDT-shaped value. Property is
// self-referential (its own "children" field is a typed array of Property)
// to represent an authored property tree at arbitrary nesting depth.
package systemschema

import (
	"sync"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/schema"
)

// Reserved, negative schema ids for the three bootstrap row shapes this
// package persists Namespaces with -- negative, and disjoint from
// pkg/recordio's own -1/-2 reservation, so neither bootstrap namespace can
// ever collide with a user-assigned (non-negative) schema id or with each
// other.
const (
	PropertySchemaID  layout.SchemaId = -10
	SchemaSchemaID    layout.SchemaId = -11
	NamespaceSchemaID layout.SchemaId = -12
)

var (
	bootstrapOnce sync.Once
	resolver      *schema.NamespaceResolver

	propertyLayout  *layout.Layout
	schemaLayout    *layout.Layout
	namespaceLayout *layout.Layout
)

// Resolver returns the layout.Resolver over the three bootstrap schemas,
// compiling them on first use. Another package's NamespaceResolver can
// chain to this one as a parent so its own rows may reference these
// bootstrap schemas (systemschema.Encode/Decode do this internally).
func Resolver() *schema.NamespaceResolver {
	ensureBootstrap()

	return resolver
}

// udtArg is the TypeArgument every "children"/"properties"/"schemas" typed
// array in this bootstrap namespace shares: a UDT reference to one of the
// three bootstrap schemas.
func udtArg(id layout.SchemaId) layout.TypeArgument {
	return layout.TypeArgument{Type: layout.FromCode(layout.CodeSchema), Args: layout.NewSchemaArgumentList(id)}
}

func bootstrapNamespace() *schema.Namespace {
	property := &schema.Schema{
		Name:     "Property",
		SchemaId: PropertySchemaID,
		Properties: []schema.Property{
			schema.Primitive("name", layout.CodeUtf8, schema.StorageVariable, false),
			schema.Primitive("type", layout.CodeUInt8, schema.StorageFixed, false),
			schema.Primitive("storage", layout.CodeUInt8, schema.StorageFixed, false),
			schema.Primitive("nullable", layout.CodeBoolean, schema.StorageFixed, false),
			schema.Primitive("code", layout.CodeUInt8, schema.StorageFixed, false),
			schema.Primitive("length", layout.CodeUInt32, schema.StorageFixed, false),
			schema.Primitive("udtName", layout.CodeUtf8, schema.StorageVariable, false),
			schema.TypedArray("children", schema.UDT("item", "Property")),
		},
	}

	sch := &schema.Schema{
		Name:     "Schema",
		SchemaId: SchemaSchemaID,
		Properties: []schema.Property{
			schema.Primitive("name", layout.CodeUtf8, schema.StorageVariable, false),
			schema.Primitive("schemaId", layout.CodeInt32, schema.StorageFixed, false),
			schema.TypedArray("properties", schema.UDT("item", "Property")),
		},
	}

	ns := &schema.Schema{
		Name:     "Namespace",
		SchemaId: NamespaceSchemaID,
		Properties: []schema.Property{
			schema.Primitive("name", layout.CodeUtf8, schema.StorageVariable, false),
			schema.TypedArray("schemas", schema.UDT("item", "Schema")),
		},
	}

	return &schema.Namespace{Name: "systemschema", Schemas: []*schema.Schema{property, sch, ns}}
}

func ensureBootstrap() {
	bootstrapOnce.Do(func() {
		r, err := schema.NewNamespaceResolver(bootstrapNamespace(), nil)
		if err != nil {
			panic(err)
		}

		resolver = r
		propertyLayout = r.Resolve(PropertySchemaID)
		schemaLayout = r.Resolve(SchemaSchemaID)
		namespaceLayout = r.Resolve(NamespaceSchemaID)
	})
}
