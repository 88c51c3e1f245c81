// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unyt-org/speck"
)

func newGenerateCmd(state *cliState) *cobra.Command {
	var defaultsPath, outPath string

	cmd := &cobra.Command{
		Use:   "generate <schema>",
		Short: "Synthesize a payload from defaults and the schema's zero values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := state.loadDefinition(args[0])
			if err != nil {
				return err
			}

			var defaults speck.Defaults
			if defaultsPath != "" {
				raw, err := os.ReadFile(defaultsPath)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(raw, &defaults); err != nil {
					return fmt.Errorf("%s: %w", defaultsPath, err)
				}
			}

			data, err := state.interp.GenerateBytes(def, defaults)
			if err != nil {
				return err
			}
			if outPath != "" {
				return os.WriteFile(outPath, data, 0o644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&defaultsPath, "defaults", "d", "", "YAML/JSON defaults tree keyed by field path")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write raw bytes to a file instead of printing hex")
	return cmd
}
