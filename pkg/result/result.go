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

// Package result defines the shared recoverable-error vocabulary used across
// the layout, row, and recordio packages. Invariant violations (programmer
// errors: a bad schema id, a nesting arity mismatch) remain plain panics and
// never appear here; only data-dependent, caller-recoverable conditions are
// modeled as a Result.
package result

import "fmt"

// Result is a recoverable outcome code, returned (wrapped in an *Error) by
// every fallible operation across the core.
type Result int

// The fixed vocabulary of recoverable outcomes.
const (
	Success Result = iota
	Failure
	NotFound
	Exists
	TooBig
	TypeMismatch
	InsufficientPermissions
	TypeConstraint
	InvalidRow
	InsufficientBuffer
	Canceled
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case NotFound:
		return "NotFound"
	case Exists:
		return "Exists"
	case TooBig:
		return "TooBig"
	case TypeMismatch:
		return "TypeMismatch"
	case InsufficientPermissions:
		return "InsufficientPermissions"
	case TypeConstraint:
		return "TypeConstraint"
	case InvalidRow:
		return "InvalidRow"
	case InsufficientBuffer:
		return "InsufficientBuffer"
	case Canceled:
		return "Canceled"
	default:
		panic(fmt.Sprintf("result: unknown Result(%d)", int(r)))
	}
}

// Error wraps a Result code with a human-readable message, so callers that
// only care about the control-flow outcome can switch on Code() while
// %v/Error() still prints something useful in logs.
type Error struct {
	Code Result
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is allows errors.Is(err, result.ErrNotFound)-style matching against the
// sentinel Err* values below: any *Error with the same Code matches.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New constructs an *Error with the given code and message.
func New(code Result, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel, message-less errors for use with errors.Is, one per Result that
// can actually be returned to a caller (Success/Failure are not errors).
var (
	ErrNotFound                = &Error{Code: NotFound}
	ErrExists                  = &Error{Code: Exists}
	ErrTooBig                  = &Error{Code: TooBig}
	ErrTypeMismatch            = &Error{Code: TypeMismatch}
	ErrInsufficientPermissions = &Error{Code: InsufficientPermissions}
	ErrTypeConstraint          = &Error{Code: TypeConstraint}
	ErrInvalidRow              = &Error{Code: InvalidRow}
	ErrInsufficientBuffer      = &Error{Code: InsufficientBuffer}
	ErrCanceled                = &Error{Code: Canceled}
)
