package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/internal/index"
	"github.com/sadiqawos/toronto2.0/internal/output"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

func newDoctorCmd() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check record and index consistency",
		Long: `Doctor verifies that every stored provision has an index entry, that
every index entry points at a stored provision, and that no ingestion
record claims a chapter without provisions. With --repair, missing
entries are rebuilt, orphaned entries are removed, and stale ingestion
records are cleared so the chapter becomes eligible again.`,
		Args: cobra.NoArgs,
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

			terms, err := openTermIndex(cfg)
			if err != nil {
				return err
			}
			if terms != nil {
				defer func() { _ = terms.Close() }()
			}

			out := output.New(cmd.OutOrStdout())
			if detected := store.DetectIndexBackend(cfg.DataDir); string(detected) != cfg.Search.Backend {
				out.Warning("data directory holds a %s index but config selects %s", detected, cfg.Search.Backend)
			}
			checker := index.NewChecker(s, terms)

			result, err := checker.Check(cmd.Context())
			if err != nil {
				return err
			}
			out.Printf("checked %d provisions (store: %s)\n", result.Checked, s.Path())
			if result.Clean() {
				out.Success("store and index are consistent")
				return nil
			}

			for _, inc := range result.Inconsistencies {
				out.Warning("%s", inc)
			}
			if !repair {
				return fmt.Errorf("found %d inconsistencies (run with --repair to fix)", len(result.Inconsistencies))
			}

			fixed, err := checker.Repair(cmd.Context(), result)
			if err != nil {
				return err
			}
			out.Success("repaired %d inconsistencies", fixed)

			after, err := checker.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !after.Clean() {
				return fmt.Errorf("%d inconsistencies remain after repair", len(after.Inconsistencies))
			}
			out.Success("store and index are consistent")
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "repair detected inconsistencies")
	return cmd
}
