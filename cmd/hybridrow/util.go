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
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/microsoft/hybridrow/pkg/schema"
	schemajson "github.com/microsoft/hybridrow/pkg/schema/json"
)

// GetFlag gets an expected bool flag, or exits if it was never registered.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt32 gets an expected int32 flag, or exits if it was never registered.
func GetInt32(cmd *cobra.Command, flag string) int32 {
	r, err := cmd.Flags().GetInt32(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readNamespace loads and parses a schema namespace authoring document.
func readNamespace(path string) (*schema.Namespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	ns, err := schemajson.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}

	return ns, nil
}
