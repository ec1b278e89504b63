/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const programName = "goldcert"

// set with -ldflags at build time
var version = "dev"

var configFile string

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the certificate client JSON/RPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rc := newInstance(configFile).run(); rc != RC_OK {
				return fmt.Errorf("%s exited with rc=%d", programName, rc)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the YAML config file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version)
		},
	}
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Gold bar certificate ledger client",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
