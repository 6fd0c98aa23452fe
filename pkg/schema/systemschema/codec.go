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
package systemschema

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/result"
	"github.com/microsoft/hybridrow/pkg/row"
	"github.com/microsoft/hybridrow/pkg/schema"
)

// Encode renders ns as a HybridRow against the Namespace bootstrap schema,
// recursively writing every Schema and the Property tree beneath it.
func Encode(ns *schema.Namespace) ([]byte, error) {
	ensureBootstrap()

	buf := row.NewBuffer(nil)
	buf.InitLayout(row.VersionV1, namespaceLayout, resolver)

	root := row.RootCursor(buf)

	nameCol, _ := namespaceLayout.TryFind("name")
	if err := buf.WriteVariable(root, nameCol, []byte(ns.Name)); err != nil {
		return nil, fmt.Errorf("systemschema: writing namespace name: %w", err)
	}

	schemas, err := buf.WriteTypedArrayScope(root, "schemas", udtArg(SchemaSchemaID), row.Insert)
	if err != nil {
		return nil, fmt.Errorf("systemschema: opening schemas array: %w", err)
	}

	for _, s := range ns.Schemas {
		if err := writeSchema(buf, schemas, s); err != nil {
			return nil, err
		}

		for schemas.MoveNext(buf, nil) { //nolint:revive // drain to the append position
		}
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

func writeSchema(buf *row.Buffer, arr *row.Cursor, s *schema.Schema) error {
	child, err := buf.WriteSchemaScope(arr, "", SchemaSchemaID, row.InsertAt)
	if err != nil {
		return fmt.Errorf("systemschema: appending schema %q: %w", s.Name, err)
	}

	nameCol, _ := schemaLayout.TryFind("name")
	if err := buf.WriteVariable(child, nameCol, []byte(s.Name)); err != nil {
		return fmt.Errorf("systemschema: writing schema %q name: %w", s.Name, err)
	}

	idCol, _ := schemaLayout.TryFind("schemaId")

	idBytes := make([]byte, 4)
	putInt32(idBytes, int32(s.SchemaId))

	if err := buf.WriteFixedBytes(child, idCol, idBytes); err != nil {
		return fmt.Errorf("systemschema: writing schema %q id: %w", s.Name, err)
	}

	props, err := buf.WriteTypedArrayScope(child, "properties", udtArg(PropertySchemaID), row.Insert)
	if err != nil {
		return fmt.Errorf("systemschema: opening schema %q properties: %w", s.Name, err)
	}

	for _, p := range s.Properties {
		if err := writeProperty(buf, props, p); err != nil {
			return err
		}

		for props.MoveNext(buf, nil) { //nolint:revive // drain to the append position
		}
	}

	return nil
}

func writeProperty(buf *row.Buffer, arr *row.Cursor, p schema.Property) error {
	child, err := buf.WriteSchemaScope(arr, "", PropertySchemaID, row.InsertAt)
	if err != nil {
		return fmt.Errorf("systemschema: appending property %q: %w", p.Name, err)
	}

	nameCol, _ := propertyLayout.TryFind("name")
	if err := buf.WriteVariable(child, nameCol, []byte(p.Name)); err != nil {
		return fmt.Errorf("systemschema: writing property %q name: %w", p.Name, err)
	}

	typeCol, _ := propertyLayout.TryFind("type")
	if err := buf.WriteFixedBytes(child, typeCol, []byte{byte(p.Type)}); err != nil {
		return err
	}

	storageCol, _ := propertyLayout.TryFind("storage")
	if err := buf.WriteFixedBytes(child, storageCol, []byte{byte(p.Storage)}); err != nil {
		return err
	}

	nullableCol, _ := propertyLayout.TryFind("nullable")
	if err := buf.WriteFixedBool(child, nullableCol, p.Nullable); err != nil {
		return err
	}

	codeCol, _ := propertyLayout.TryFind("code")
	if err := buf.WriteFixedBytes(child, codeCol, []byte{byte(p.Code)}); err != nil {
		return err
	}

	lengthCol, _ := propertyLayout.TryFind("length")

	lengthBytes := make([]byte, 4)
	putUint32(lengthBytes, uint32(p.Length))

	if err := buf.WriteFixedBytes(child, lengthCol, lengthBytes); err != nil {
		return err
	}

	if p.Type == schema.PropertyUDT {
		udtNameCol, _ := propertyLayout.TryFind("udtName")
		if err := buf.WriteVariable(child, udtNameCol, []byte(p.UdtName)); err != nil {
			return fmt.Errorf("systemschema: writing property %q udtName: %w", p.Name, err)
		}
	}

	children := childrenOf(p)
	if len(children) == 0 {
		return nil
	}

	childArr, err := buf.WriteTypedArrayScope(child, "children", udtArg(PropertySchemaID), row.Insert)
	if err != nil {
		return fmt.Errorf("systemschema: opening property %q children: %w", p.Name, err)
	}

	for _, c := range children {
		if err := writeProperty(buf, childArr, c); err != nil {
			return err
		}

		for childArr.MoveNext(buf, nil) { //nolint:revive // drain to the append position
		}
	}

	return nil
}

// childrenOf returns whichever of a Property's two nested-field slices is
// meaningful for its Type (see the Property doc comment), so the bootstrap
// "children" array can carry both without needing to know which.
func childrenOf(p schema.Property) []schema.Property {
	switch p.Type {
	case schema.PropertyObject, schema.PropertyTuple:
		return p.Properties
	case schema.PropertyTypedArray, schema.PropertyTypedSet, schema.PropertyTypedMap,
		schema.PropertyTypedTuple, schema.PropertyTagged, schema.PropertyTagged2, schema.PropertyNullable:
		return p.Items
	default:
		return nil
	}
}

// Decode parses data as a Namespace row, reversing Encode.
func Decode(data []byte) (*schema.Namespace, error) {
	ensureBootstrap()

	buf := row.NewBuffer(nil)
	if err := buf.ReadFrom(data, row.VersionV1, resolver); err != nil {
		return nil, fmt.Errorf("systemschema: reading namespace row: %w", err)
	}

	root := row.RootCursor(buf)

	nameCol, _ := namespaceLayout.TryFind("name")

	nameBytes, err := buf.ReadVariable(root, nameCol)
	if err != nil {
		return nil, fmt.Errorf("systemschema: reading namespace name: %w", err)
	}

	ns := &schema.Namespace{Name: string(nameBytes)}

	schemas, err := buf.WriteTypedArrayScope(root, "schemas", udtArg(SchemaSchemaID), row.Update)
	if err != nil {
		if errors.Is(err, result.ErrNotFound) {
			return ns, nil
		}

		return nil, fmt.Errorf("systemschema: opening schemas array: %w", err)
	}

	for schemas.MoveNext(buf, nil) {
		child, err := buf.WriteSchemaScope(schemas, "", SchemaSchemaID, row.Update)
		if err != nil {
			return nil, fmt.Errorf("systemschema: entering schema element: %w", err)
		}

		s, err := readSchema(buf, child)
		if err != nil {
			return nil, err
		}

		ns.Schemas = append(ns.Schemas, s)
	}

	return ns, nil
}

func readSchema(buf *row.Buffer, child *row.Cursor) (*schema.Schema, error) {
	nameCol, _ := schemaLayout.TryFind("name")

	nameBytes, err := buf.ReadVariable(child, nameCol)
	if err != nil {
		return nil, fmt.Errorf("systemschema: reading schema name: %w", err)
	}

	idCol, _ := schemaLayout.TryFind("schemaId")

	idBytes, err := buf.ReadFixedBytes(child, idCol)
	if err != nil {
		return nil, fmt.Errorf("systemschema: reading schema %q id: %w", nameBytes, err)
	}

	s := &schema.Schema{Name: string(nameBytes), SchemaId: layout.SchemaId(int32(binary.LittleEndian.Uint32(idBytes)))}

	props, err := buf.WriteTypedArrayScope(child, "properties", udtArg(PropertySchemaID), row.Update)
	if err != nil {
		if errors.Is(err, result.ErrNotFound) {
			return s, nil
		}

		return nil, fmt.Errorf("systemschema: opening schema %q properties: %w", s.Name, err)
	}

	for props.MoveNext(buf, nil) {
		pc, err := buf.WriteSchemaScope(props, "", PropertySchemaID, row.Update)
		if err != nil {
			return nil, fmt.Errorf("systemschema: entering property element: %w", err)
		}

		p, err := readProperty(buf, pc)
		if err != nil {
			return nil, err
		}

		s.Properties = append(s.Properties, p)
	}

	return s, nil
}

func readProperty(buf *row.Buffer, child *row.Cursor) (schema.Property, error) {
	nameCol, _ := propertyLayout.TryFind("name")

	nameBytes, err := buf.ReadVariable(child, nameCol)
	if err != nil {
		return schema.Property{}, fmt.Errorf("systemschema: reading property name: %w", err)
	}

	typeCol, _ := propertyLayout.TryFind("type")

	typeBytes, err := buf.ReadFixedBytes(child, typeCol)
	if err != nil {
		return schema.Property{}, err
	}

	storageCol, _ := propertyLayout.TryFind("storage")

	storageBytes, err := buf.ReadFixedBytes(child, storageCol)
	if err != nil {
		return schema.Property{}, err
	}

	nullableCol, _ := propertyLayout.TryFind("nullable")

	nullable, err := buf.ReadFixedBool(child, nullableCol)
	if err != nil {
		return schema.Property{}, err
	}

	codeCol, _ := propertyLayout.TryFind("code")

	codeBytes, err := buf.ReadFixedBytes(child, codeCol)
	if err != nil {
		return schema.Property{}, err
	}

	lengthCol, _ := propertyLayout.TryFind("length")

	lengthBytes, err := buf.ReadFixedBytes(child, lengthCol)
	if err != nil {
		return schema.Property{}, err
	}

	p := schema.Property{
		Name:     string(nameBytes),
		Type:     schema.PropertyType(typeBytes[0]),
		Storage:  schema.Storage(storageBytes[0]),
		Nullable: nullable,
		Code:     layout.Code(codeBytes[0]),
		Length:   uint(binary.LittleEndian.Uint32(lengthBytes)),
	}

	if p.Type == schema.PropertyUDT {
		udtNameCol, _ := propertyLayout.TryFind("udtName")

		udtNameBytes, err := buf.ReadVariable(child, udtNameCol)
		if err != nil {
			return schema.Property{}, fmt.Errorf("systemschema: reading property %q udtName: %w", p.Name, err)
		}

		p.UdtName = string(udtNameBytes)
	}

	childArr, err := buf.WriteTypedArrayScope(child, "children", udtArg(PropertySchemaID), row.Update)
	if err != nil {
		if errors.Is(err, result.ErrNotFound) {
			return p, nil
		}

		return schema.Property{}, fmt.Errorf("systemschema: opening property %q children: %w", p.Name, err)
	}

	var children []schema.Property

	for childArr.MoveNext(buf, nil) {
		cc, err := buf.WriteSchemaScope(childArr, "", PropertySchemaID, row.Update)
		if err != nil {
			return schema.Property{}, fmt.Errorf("systemschema: entering child property element: %w", err)
		}

		c, err := readProperty(buf, cc)
		if err != nil {
			return schema.Property{}, err
		}

		children = append(children, c)
	}

	switch p.Type {
	case schema.PropertyObject, schema.PropertyTuple:
		p.Properties = children
	case schema.PropertyTypedArray, schema.PropertyTypedSet, schema.PropertyTypedMap,
		schema.PropertyTypedTuple, schema.PropertyTagged, schema.PropertyTagged2, schema.PropertyNullable:
		p.Items = children
	}

	return p, nil
}

func putInt32(buf []byte, v int32) {
	binary.LittleEndian.PutUint32(buf, uint32(v))
}

func putUint32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}
