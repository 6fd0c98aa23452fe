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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/hybridrow/pkg/recordio"
	"github.com/microsoft/hybridrow/pkg/result"
)

var catCmd = &cobra.Command{
	Use:   "cat file",
	Short: "Dump the segment/record stream framing a RecordIO file",
	Long:  "Run a file's bytes through the RecordIO parser and print each segment and record it yields.",
	Args:  cobra.ExactArgs(1),
	Run:   runCat,
}

func runCat(cmd *cobra.Command, args []string) {
	configureLogging(cmd)

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	p := recordio.NewParser()
	record := 0

	for len(data) > 0 {
		res, prod, payload, needed, consumed := p.Process(data)

		switch res {
		case result.Success:
			switch prod {
			case recordio.ProductionSegment:
				log.WithField("bytes", len(payload)).Debug("segment row")
				fmt.Printf("segment: %d byte header\n", len(payload))
			case recordio.ProductionRecord:
				record++

				log.WithFields(log.Fields{"record": record, "bytes": len(payload)}).Debug("record payload")
				fmt.Printf("record %d: %d byte payload\n", record, len(payload))
			case recordio.ProductionNone:
			}

			data = data[consumed:]

		case result.InsufficientBuffer:
			fmt.Printf("truncated stream: needed %d more byte(s), state=%s\n", needed, p.State())
			os.Exit(1)

		case result.InvalidRow:
			fmt.Println("corrupt stream: parser rejected a row")
			os.Exit(1)

		default:
			fmt.Printf("unexpected parser result %v\n", res)
			os.Exit(1)
		}

		if consumed == 0 && res == result.Success {
			// No forward progress and no error: avoid spinning forever on a
			// malformed zero-length production.
			break
		}
	}

	fmt.Printf("%d record(s)\n", record)
}
