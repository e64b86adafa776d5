package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/configs"
	"github.com/sadiqawos/toronto2.0/internal/ingest"
	"github.com/sadiqawos/toronto2.0/internal/output"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the document catalog",
		Long: `The catalog lists the sources and chapters ingestion knows about.
'catalog init' writes the built-in Toronto catalog to the data
directory; edit it there to add or drop chapters before ingesting.`,
	}

	cmd.AddCommand(newCatalogInitCmd())
	cmd.AddCommand(newCatalogListCmd())
	return cmd
}

func newCatalogInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in catalog to the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			if _, err := os.Stat(cfg.CatalogPath); err == nil && !force {
				return fmt.Errorf("catalog already exists at %s (use --force to overwrite)", cfg.CatalogPath)
			}
			if err := os.MkdirAll(filepath.Dir(cfg.CatalogPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfg.CatalogPath, configs.DefaultCatalog, 0o644); err != nil {
				return err
			}
			out.Success("wrote catalog to %s", cfg.CatalogPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing catalog")
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogued sources and chapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			catalog, err := ingest.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			for _, name := range catalog.SourceNames() {
				src := catalog.Sources[name]
				priority := make(map[string]bool, len(src.PriorityChapters))
				for _, n := range src.PriorityChapters {
					priority[n] = true
				}

				out.Header(fmt.Sprintf("%s (%s)", src.Title, name))
				for _, ch := range src.Chapters {
					marker := " "
					if priority[ch.Number] {
						marker = "*"
					}
					out.Printf("  %s %-8s %s\n", marker, ch.Number, ch.Title)
				}
				if len(src.PriorityChapters) > 0 {
					out.Printf("  * ingested by default\n")
				}
				out.Newline()
			}
			return nil
		},
	}
}
