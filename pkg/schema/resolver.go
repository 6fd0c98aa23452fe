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
	"sync"

	"github.com/microsoft/hybridrow/pkg/layout"
)

// NamespaceResolver is the layout.Resolver implementation backing a
// Namespace: it compiles every member Schema once and serves Resolve calls
// from a read-mostly cache protected by a RWMutex, since Resolve is expected
// to be called far more often (once per row decoded) than a Namespace is
// rebuilt.
//
// An optional parent Resolver lets one Namespace's rows reference UDTs
// declared in another, already-compiled Namespace (e.g. the bootstrap
// systemschema namespace) without needing to merge the two into one.
type NamespaceResolver struct {
	parent layout.Resolver

	mu      sync.RWMutex
	layouts map[layout.SchemaId]*layout.Layout
}

// NewNamespaceResolver compiles every schema in ns and returns a Resolver
// serving them, chaining to parent (which may be nil) for any schema id ns
// does not itself declare.
func NewNamespaceResolver(ns *Namespace, parent layout.Resolver) (*NamespaceResolver, error) {
	compiled, err := Compile(ns)
	if err != nil {
		return nil, err
	}

	return &NamespaceResolver{parent: parent, layouts: compiled}, nil
}

// Resolve implements layout.Resolver. Per that interface's contract, an
// unknown schema id (in this Resolver and, if present, its whole parent
// chain) is a programmer error and panics rather than returning an error.
func (r *NamespaceResolver) Resolve(id layout.SchemaId) *layout.Layout {
	r.mu.RLock()
	l, ok := r.layouts[id]
	r.mu.RUnlock()

	if ok {
		return l
	}

	if r.parent != nil {
		return r.parent.Resolve(id)
	}

	panic("schema: unknown schema id")
}

// Recompile replaces this resolver's compiled layouts with a fresh
// compilation of ns, taking the write lock for the duration of the swap.
// Any Cursor/Buffer still referencing the previous Layout generation remains
// valid (Layouts are immutable and never mutated in place); Recompile only
// affects schema ids resolved after it returns.
func (r *NamespaceResolver) Recompile(ns *Namespace) error {
	compiled, err := Compile(ns)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.layouts = compiled
	r.mu.Unlock()

	return nil
}
