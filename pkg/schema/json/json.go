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

// Package json is the authoring-format companion to pkg/schema: it
// marshals a schema.Namespace to the human-editable JSON document a schema
// author actually writes (or reads back for tooling) and unmarshals that
// document back into a schema.Namespace ready for schema.Compile. The wire
// HybridRow encoding a Namespace uses at runtime is pkg/schema/systemschema,
// not this package -- this one exists purely for the authoring/tooling
// round trip (e.g. cmd/hybridrow's schema subcommands).
package json

import (
	"encoding/json"
	"fmt"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/schema"
)

// Marshal renders ns as an indented JSON document.
func Marshal(ns *schema.Namespace) ([]byte, error) {
	return json.MarshalIndent(toJSONNamespace(ns), "", "  ")
}

// Unmarshal parses data as a Namespace document.
func Unmarshal(data []byte) (*schema.Namespace, error) {
	var doc jsonNamespace
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema/json: %w", err)
	}

	return doc.toNamespace()
}

type jsonNamespace struct {
	Name    string       `json:"name"`
	Schemas []jsonSchema `json:"schemas,omitempty"`
}

type jsonSchema struct {
	Name       string         `json:"name"`
	SchemaId   int32          `json:"id"`
	Properties []jsonProperty `json:"properties,omitempty"`
}

// jsonProperty is the authoring shape of a schema.Property: which of
// Items/Properties/Code/Length/UdtName is meaningful depends on Type, the
// same way it does on schema.Property itself, so an author only fills in
// the fields their chosen Type actually uses.
type jsonProperty struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Storage  string         `json:"storage,omitempty"`
	Nullable bool           `json:"nullable,omitempty"`
	Code     string         `json:"code,omitempty"`
	Length   uint           `json:"length,omitempty"`
	UdtName  string         `json:"udtName,omitempty"`

	Items      []jsonProperty `json:"items,omitempty"`
	Properties []jsonProperty `json:"properties,omitempty"`
}

func toJSONNamespace(ns *schema.Namespace) jsonNamespace {
	doc := jsonNamespace{Name: ns.Name}

	for _, s := range ns.Schemas {
		doc.Schemas = append(doc.Schemas, toJSONSchema(s))
	}

	return doc
}

func toJSONSchema(s *schema.Schema) jsonSchema {
	js := jsonSchema{Name: s.Name, SchemaId: int32(s.SchemaId)}

	for _, p := range s.Properties {
		js.Properties = append(js.Properties, toJSONProperty(p))
	}

	return js
}

func toJSONProperty(p schema.Property) jsonProperty {
	jp := jsonProperty{
		Name:     p.Name,
		Type:     propertyTypeNames[p.Type],
		Storage:  storageNames[p.Storage],
		Nullable: p.Nullable,
		Length:   p.Length,
		UdtName:  p.UdtName,
	}

	if p.Type == schema.PropertyPrimitive {
		jp.Code = p.Code.String()
	}

	for _, item := range p.Items {
		jp.Items = append(jp.Items, toJSONProperty(item))
	}

	for _, child := range p.Properties {
		jp.Properties = append(jp.Properties, toJSONProperty(child))
	}

	return jp
}

func (doc jsonNamespace) toNamespace() (*schema.Namespace, error) {
	ns := &schema.Namespace{Name: doc.Name}

	for _, js := range doc.Schemas {
		s, err := js.toSchema()
		if err != nil {
			return nil, err
		}

		ns.Schemas = append(ns.Schemas, s)
	}

	return ns, nil
}

func (js jsonSchema) toSchema() (*schema.Schema, error) {
	s := &schema.Schema{Name: js.Name, SchemaId: layout.SchemaId(js.SchemaId)}

	for _, jp := range js.Properties {
		p, err := jp.toProperty()
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", js.Name, err)
		}

		s.Properties = append(s.Properties, p)
	}

	return s, nil
}

func (jp jsonProperty) toProperty() (schema.Property, error) {
	t, ok := propertyTypesByName[jp.Type]
	if !ok {
		return schema.Property{}, fmt.Errorf("property %q: unknown type %q", jp.Name, jp.Type)
	}

	storage := schema.StorageSparse

	if jp.Storage != "" {
		s, ok := storagesByName[jp.Storage]
		if !ok {
			return schema.Property{}, fmt.Errorf("property %q: unknown storage %q", jp.Name, jp.Storage)
		}

		storage = s
	}

	p := schema.Property{
		Name:     jp.Name,
		Type:     t,
		Storage:  storage,
		Nullable: jp.Nullable,
		Length:   jp.Length,
		UdtName:  jp.UdtName,
	}

	if t == schema.PropertyPrimitive {
		code, err := parseCode(jp.Code)
		if err != nil {
			return schema.Property{}, fmt.Errorf("property %q: %w", jp.Name, err)
		}

		p.Code = code
	}

	for _, item := range jp.Items {
		child, err := item.toProperty()
		if err != nil {
			return schema.Property{}, err
		}

		p.Items = append(p.Items, child)
	}

	for _, child := range jp.Properties {
		c, err := child.toProperty()
		if err != nil {
			return schema.Property{}, err
		}

		p.Properties = append(p.Properties, c)
	}

	return p, nil
}

var propertyTypeNames = map[schema.PropertyType]string{
	schema.PropertyPrimitive:  "primitive",
	schema.PropertyObject:     "object",
	schema.PropertyArray:      "array",
	schema.PropertyTypedArray: "typedArray",
	schema.PropertyTypedSet:   "typedSet",
	schema.PropertyTypedMap:   "typedMap",
	schema.PropertyTuple:      "tuple",
	schema.PropertyTypedTuple: "typedTuple",
	schema.PropertyTagged:     "tagged",
	schema.PropertyTagged2:    "tagged2",
	schema.PropertyNullable:   "nullable",
	schema.PropertyUDT:        "udt",
}

var propertyTypesByName = invertPropertyTypeNames()

func invertPropertyTypeNames() map[string]schema.PropertyType {
	m := make(map[string]schema.PropertyType, len(propertyTypeNames))
	for t, name := range propertyTypeNames {
		m[name] = t
	}

	return m
}

var storageNames = map[schema.Storage]string{
	schema.StorageSparse:   "sparse",
	schema.StorageFixed:    "fixed",
	schema.StorageVariable: "variable",
}

var storagesByName = invertStorageNames()

func invertStorageNames() map[string]schema.Storage {
	m := make(map[string]schema.Storage, len(storageNames))
	for s, name := range storageNames {
		m[name] = s
	}

	return m
}

// primitiveCodes lists every layout.Code valid on a PropertyPrimitive, keyed
// by the same name layout.Code.String() already renders it as.
var primitiveCodes = []layout.Code{
	layout.CodeNull, layout.CodeBoolean,
	layout.CodeInt8, layout.CodeInt16, layout.CodeInt32, layout.CodeInt64,
	layout.CodeUInt8, layout.CodeUInt16, layout.CodeUInt32, layout.CodeUInt64,
	layout.CodeVarInt, layout.CodeVarUInt,
	layout.CodeFloat32, layout.CodeFloat64, layout.CodeFloat128, layout.CodeDecimal,
	layout.CodeDateTime, layout.CodeUnixDateTime, layout.CodeGuid, layout.CodeMongoObjectId,
	layout.CodeUtf8, layout.CodeBinary,
}

var codesByName = func() map[string]layout.Code {
	m := make(map[string]layout.Code, len(primitiveCodes))
	for _, c := range primitiveCodes {
		m[c.String()] = c
	}

	return m
}()

func parseCode(name string) (layout.Code, error) {
	c, ok := codesByName[name]
	if !ok {
		return layout.CodeInvalid, fmt.Errorf("unknown primitive code %q", name)
	}

	return c, nil
}
