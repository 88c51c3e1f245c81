// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unyt-org/speck"
	"github.com/unyt-org/speck/internal/logging"
)

// cliState carries the pieces every subcommand needs: loaded config, a
// configured logger and the interpreter built from both.
type cliState struct {
	cfg    Config
	log    zerolog.Logger
	interp *speck.Interpreter
}

func newRootCmd() *cobra.Command {
	state := &cliState{}
	var logLevel string

	cmd := &cobra.Command{
		Use:           "speck",
		Short:         "Interpret declarative binary structure definitions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			state.cfg = cfg
			state.log = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			state.interp = speck.New(speck.WithLogger(state.log))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace|debug|info|warn|error")

	cmd.AddCommand(
		newDecodeCmd(state),
		newGenerateCmd(state),
		newDocCmd(state),
		newValidateCmd(state),
	)
	return cmd
}

func (s *cliState) loadDefinition(path string) (*speck.StructureDefinition, error) {
	resolved := s.cfg.resolveSchemaPath(path)
	s.log.Debug().Str("path", resolved).Msg("loading definition")
	return speck.LoadDefinitionFile(resolved)
}
