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

import "github.com/microsoft/hybridrow/pkg/layout"

// Schema is one authored row shape: a name, its assigned schema id, and its
// top-level properties. Fixed/Variable-storage properties must be top-level
// (Compile rejects one nested inside an Object; for a typed scope's Items or
// a Tuple's slots, Storage is ignored); Sparse properties may appear
// anywhere.
type Schema struct {
	Name       string
	SchemaId   layout.SchemaId
	Properties []Property
}

// Namespace is a named, ordered collection of Schemas that may reference one
// another by name via PropertyUDT. A Namespace compiles as a unit: every
// member Schema's UDT references must resolve, by name, to another member of
// the same Namespace; Compile does not consult any Resolver.
type Namespace struct {
	Name    string
	Schemas []*Schema
}

// Find returns the Schema in ns with the given name, or nil if none exists.
func (ns *Namespace) Find(name string) *Schema {
	for _, s := range ns.Schemas {
		if s.Name == name {
			return s
		}
	}

	return nil
}

// FindByID returns the Schema in ns with the given schema id, or nil.
func (ns *Namespace) FindByID(id layout.SchemaId) *Schema {
	for _, s := range ns.Schemas {
		if s.SchemaId == id {
			return s
		}
	}

	return nil
}
