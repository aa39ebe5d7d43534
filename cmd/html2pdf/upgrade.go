package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vermaysha/html2pdf/internal/selfupdate"
)

func newUpgradeCmd(env *Environment, common *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "self-upgrade",
		Short: "Replace this binary with the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(env.Stdout, common.quiet, common.verbose)

			u := selfupdate.New(Version, logger)
			installed, err := u.Update(cmd.Context())
			if errors.Is(err, selfupdate.ErrUpToDate) {
				logger.Info().Str("version", Version).Msg("html2pdf is already up to date")
				return nil
			}
			if err != nil {
				return err
			}
			logger.Info().Str("from", Version).Str("to", installed).Msg("html2pdf upgraded")
			return nil
		},
	}
}
