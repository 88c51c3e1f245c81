// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unyt-org/speck"
)

func newDecodeCmd(state *cliState) *cobra.Command {
	var hexPayload string

	cmd := &cobra.Command{
		Use:   "decode <schema> [payload-file]",
		Short: "Parse a binary payload and print the packed JSON projection",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := state.loadDefinition(args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch {
			case hexPayload != "":
				data, err = hex.DecodeString(strings.ReplaceAll(hexPayload, " ", ""))
				if err != nil {
					return fmt.Errorf("invalid hex payload: %w", err)
				}
			case len(args) == 2:
				data, err = os.ReadFile(args[1])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("payload required: pass a file or --hex")
			}

			parsed, err := state.interp.Parse(def, data)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(speck.Pack(parsed), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&hexPayload, "hex", "", "payload as a hex string instead of a file")
	return cmd
}
