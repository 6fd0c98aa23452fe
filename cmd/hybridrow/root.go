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

// Command hybridrow is a thin, non-core CLI over this module's packages:
// it exists only to exercise pkg/schema, pkg/schema/json, pkg/layout and
// pkg/recordio from the outside, the way pkg/cmd/corset exercises
// pkg/schema/pkg/trace in the compiler this tool was modeled on. Nothing
// under pkg/row's wire format depends on this package.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building with a release tag; empty otherwise.
var Version string

var rootCmd = &cobra.Command{
	Use:   "hybridrow",
	Short: "Inspect, compile and dump HybridRow schemas and streams.",
	Long:  "A toolbox for authoring HybridRow schemas and poking at the rows/streams they describe.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("hybridrow ")

			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()

			return
		}

		_ = cmd.Usage()
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Int32("schema-id", 0, "schema id to select within a namespace, when more than one applies")

	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(compileCmd)
}

// configureLogging raises the log level to Debug when --verbose is set; it
// stays at logrus's default (Info) otherwise.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
