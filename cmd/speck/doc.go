// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unyt-org/speck"
)

func newDocCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "doc <schema>",
		Short: "Render a schema as markdown tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := state.loadDefinition(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), speck.DocTable(def))
			return nil
		},
	}
}

func newValidateCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema>",
		Short: "Check that a schema document loads cleanly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := state.loadDefinition(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d sections)\n", def.Name, len(def.Sections))
			return nil
		},
	}
}
