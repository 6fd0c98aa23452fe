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
package layout

// Resolver maps a SchemaId to its compiled Layout. Resolve is idempotent and
// the returned Layout is valid for the Resolver's lifetime. Invalid/unknown
// schema ids are a fatal, programmer-error condition (spec §7): resolving one
// is a contract failure, not a recoverable result, so implementations panic
// rather than return an error.
//
// The only implementation in this module is schema.NamespaceResolver; Row
// and Cursor depend solely on this interface, never on the Namespace model,
// so that pkg/row has no dependency on pkg/schema.
type Resolver interface {
	Resolve(id SchemaId) *Layout
}
