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

// Package row implements the RowBuffer (mutable byte container and the full
// sparse encode/decode protocol) and the RowCursor (navigation/edit state).
package row

// UpdateOptions governs the semantics of a sparse write: whether it must
// create a new field, may overwrite an existing one, or removes one.
type UpdateOptions int

const (
	// Upsert inserts if absent, overwrites if present.
	Upsert UpdateOptions = iota
	// Insert requires the field to be absent; fails with result.Exists
	// otherwise.
	Insert
	// InsertAt is handled exactly like Insert: it requires no field at the
	// target (for indexed scopes, the cursor's current position) and fails
	// with result.Exists otherwise; no declared position is checked.
	InsertAt
	// Update requires the field to already exist; fails with
	// result.NotFound otherwise.
	Update
	// Delete removes the field. A Delete of an absent field is a no-op.
	Delete
)
