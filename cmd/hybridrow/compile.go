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
	"reflect"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/hybridrow/pkg/schema"
	"github.com/microsoft/hybridrow/pkg/schema/systemschema"
)

var compileCmd = &cobra.Command{
	Use:   "compile namespace.json",
	Short: "Validate a namespace authoring document",
	Long: "Compile a namespace's schemas to Layouts, then round-trip the Namespace itself through " +
		"the bootstrap systemschema codec to confirm it is representable as a HybridRow.",
	Args: cobra.ExactArgs(1),
	Run:  runCompile,
}

func runCompile(cmd *cobra.Command, args []string) {
	configureLogging(cmd)

	ns, err := readNamespace(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	layouts, err := schema.Compile(ns)
	if err != nil {
		fmt.Printf("compile failed: %v\n", err)
		os.Exit(1)
	}

	log.WithField("schemas", len(layouts)).Debug("namespace compiled")

	encoded, err := systemschema.Encode(ns)
	if err != nil {
		fmt.Printf("namespace is not representable as a row: %v\n", err)
		os.Exit(1)
	}

	decoded, err := systemschema.Decode(encoded)
	if err != nil {
		fmt.Printf("namespace row failed to decode: %v\n", err)
		os.Exit(1)
	}

	if !reflect.DeepEqual(ns, decoded) {
		fmt.Println("namespace round trip through systemschema did not preserve the document")
		os.Exit(1)
	}

	fmt.Printf("%q: %d schema(s) compiled, %d byte namespace row\n", ns.Name, len(layouts), len(encoded))
}
