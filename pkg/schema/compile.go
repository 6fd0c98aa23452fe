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
package schema

import (
	"fmt"

	"github.com/microsoft/hybridrow/pkg/layout"
)

// Compile drives a layout.Builder from every Schema in ns, returning the
// compiled Layout for each schema id. A Namespace compiles as a unit so that
// PropertyUDT references can resolve against sibling schemas regardless of
// declaration order.
func Compile(ns *Namespace) (map[layout.SchemaId]*layout.Layout, error) {
	layouts := make(map[layout.SchemaId]*layout.Layout, len(ns.Schemas))

	for _, s := range ns.Schemas {
		b := layout.NewBuilder(s.Name, s.SchemaId)

		for _, p := range s.Properties {
			if err := addTopLevelProperty(b, ns, p); err != nil {
				return nil, fmt.Errorf("schema %q: %w", s.Name, err)
			}
		}

		l, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", s.Name, err)
		}

		layouts[s.SchemaId] = l
	}

	return layouts, nil
}

// addTopLevelProperty compiles one of a Schema's own top-level properties,
// honoring its declared Storage placement. Nested properties (reached via
// addSparseProperty) are always sparse, per spec §4.5.
func addTopLevelProperty(b *layout.Builder, ns *Namespace, p Property) error {
	switch p.Storage {
	case StorageFixed:
		if p.Type != PropertyPrimitive {
			return fmt.Errorf("property %q: fixed storage requires a primitive type", p.Name)
		}

		return b.AddFixedColumn(p.Name, p.Code, p.Nullable, p.Length)

	case StorageVariable:
		if p.Type != PropertyPrimitive {
			return fmt.Errorf("property %q: variable storage requires a primitive type", p.Name)
		}

		return b.AddVariableColumn(p.Name, p.Code, p.Length)

	default:
		return addSparseProperty(b, ns, p)
	}
}

// addSparseProperty compiles p as a sparse column, recursing into Object's
// nested fields (which open and close a scope on b) and resolving whatever
// TypeArgument a typed scope or UDT reference needs.
func addSparseProperty(b *layout.Builder, ns *Namespace, p Property) error {
	if p.Storage != StorageSparse {
		return fmt.Errorf("property %q: fixed/variable storage is only valid on a schema's top-level properties", p.Name)
	}

	if p.Type == PropertyObject {
		b.PushObjectScope(p.Name)

		for _, child := range p.Properties {
			if err := addSparseProperty(b, ns, child); err != nil {
				return err
			}
		}

		b.PopObjectScope()

		return nil
	}

	arg, err := typeArgumentFor(ns, p)
	if err != nil {
		return fmt.Errorf("property %q: %w", p.Name, err)
	}

	b.AddSparseColumn(p.Name, arg)

	return nil
}

// typeArgumentFor computes the layout.TypeArgument a Property compiles to:
// its own Code for a primitive, or its scope Code paired with its nested
// elements' own TypeArguments for a parameterized scope, or the referenced
// schema's id for a UDT.
func typeArgumentFor(ns *Namespace, p Property) (layout.TypeArgument, error) {
	switch p.Type {
	case PropertyPrimitive:
		return layout.TypeArgument{Type: layout.FromCode(p.Code), Args: layout.Empty}, nil

	case PropertyObject:
		return layout.TypeArgument{Type: layout.FromCode(layout.CodeObjectScope), Args: layout.Empty}, nil

	case PropertyArray:
		return layout.TypeArgument{Type: layout.FromCode(layout.CodeArrayScope), Args: layout.Empty}, nil

	case PropertyTypedArray:
		return scopeArgument(ns, layout.CodeTypedArrayScope, p.Items)

	case PropertyTypedSet:
		return scopeArgument(ns, layout.CodeTypedSetScope, p.Items)

	case PropertyTypedMap:
		return scopeArgument(ns, layout.CodeTypedMapScope, p.Items)

	case PropertyTuple:
		return scopeArgument(ns, layout.CodeTupleScope, p.Properties)

	case PropertyTypedTuple:
		return scopeArgument(ns, layout.CodeTypedTupleScope, p.Items)

	case PropertyTagged:
		return scopeArgument(ns, layout.CodeTaggedScope, p.Items)

	case PropertyTagged2:
		return scopeArgument(ns, layout.CodeTagged2Scope, p.Items)

	case PropertyNullable:
		return scopeArgument(ns, layout.CodeNullableScope, p.Items)

	case PropertyUDT:
		target := ns.Find(p.UdtName)
		if target == nil {
			return layout.TypeArgument{}, fmt.Errorf("udt reference %q not found in namespace %q", p.UdtName, ns.Name)
		}

		return layout.TypeArgument{
			Type: layout.FromCode(layout.CodeSchema),
			Args: layout.NewSchemaArgumentList(target.SchemaId),
		}, nil

	default:
		return layout.TypeArgument{}, fmt.Errorf("unknown property type %v", p.Type)
	}
}

// scopeArgument resolves each of elems to its own TypeArgument and packages
// them, alongside code, as the parent scope's TypeArgument.
func scopeArgument(ns *Namespace, code layout.Code, elems []Property) (layout.TypeArgument, error) {
	args := make([]layout.TypeArgument, len(elems))

	for i, e := range elems {
		a, err := typeArgumentFor(ns, e)
		if err != nil {
			return layout.TypeArgument{}, err
		}

		args[i] = a
	}

	return layout.TypeArgument{Type: layout.FromCode(code), Args: layout.NewTypeArgumentList(args...)}, nil
}
