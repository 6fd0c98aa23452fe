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
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/microsoft/hybridrow/pkg/layout"
	"github.com/microsoft/hybridrow/pkg/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect namespace.json [schema-name]",
	Short: "Print the compiled Layout for one schema in a namespace",
	Long: "Compile a namespace authoring document and print the column layout of one of its schemas, " +
		"selected either by name or, with --schema-id, by id.",
	Args: cobra.RangeArgs(1, 2),
	Run:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) {
	configureLogging(cmd)

	ns, err := readNamespace(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	s := selectSchema(cmd, ns, args)
	if s == nil {
		fmt.Println("no schema selected: pass a schema-name or --schema-id")
		os.Exit(1)
	}

	log.WithFields(log.Fields{"namespace": ns.Name, "schema": s.Name, "id": s.SchemaId}).Debug("resolving schema")

	layouts, err := schema.Compile(ns)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	l := layouts[s.SchemaId]

	width := terminalWidth()
	printLayout(l, width)
}

// selectSchema resolves the schema-name positional argument when present,
// falling back to the --schema-id flag (useful for a namespace document
// where two schemas share no convenient name to type, or for scripting).
func selectSchema(cmd *cobra.Command, ns *schema.Namespace, args []string) *schema.Schema {
	if len(args) == 2 {
		return ns.Find(args[1])
	}

	if !cmd.Flags().Changed("schema-id") {
		return nil
	}

	return ns.FindByID(layout.SchemaId(GetInt32(cmd, "schema-id")))
}

// terminalWidth reports the detected width of stdout, falling back to 80
// columns when stdout isn't a terminal (e.g. piped into a file or another
// command).
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}

	return w
}

func printLayout(l *layout.Layout, width int) {
	fmt.Printf("%s (schema id %d): %d bitmask byte(s), %d fixed, %d variable\n",
		l.Name, l.SchemaId, l.NumBitmaskBytes, l.NumFixed, l.NumVariable)
	fmt.Println(strings.Repeat("-", width))

	for _, c := range l.TopLevelColumns() {
		line := fmt.Sprintf("%-28s %-10s %-9s offset=%d", c.FullPath, c.Code(), c.Storage, c.Offset)
		if c.Nullable() {
			line += " nullable"
		}

		if width > 0 && len(line) > width {
			line = line[:width]
		}

		fmt.Println(line)
	}
}
