package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/internal/output"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show provision store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			stats, err := s.Stats(cmd.Context())
			if err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Stats(stats)
			return nil
		},
	}
}
