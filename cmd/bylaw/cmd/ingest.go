package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/internal/fetch"
	"github.com/sadiqawos/toronto2.0/internal/ingest"
	"github.com/sadiqawos/toronto2.0/internal/output"
	"github.com/sadiqawos/toronto2.0/internal/segment"
)

func newIngestCmd() *cobra.Command {
	var source string
	var allChapters bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, segment, and index catalogued chapters",
		Long: `Ingest walks the document catalog, fetches each chapter that has
not been ingested yet, segments it into provisions, and indexes them.

Already-ingested chapters are skipped, so re-running after a failure
picks up only what is missing.

Examples:
  bylaw ingest
  bylaw ingest --source municipal_code
  bylaw ingest --source municipal_code --all-chapters`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, source, allChapters)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Ingest a single source (default: all)")
	cmd.Flags().BoolVar(&allChapters, "all-chapters", false, "Widen past the priority chapter subset")

	return cmd
}

func runIngest(cmd *cobra.Command, source string, allChapters bool) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := ingest.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no catalog at %s (run 'bylaw catalog init' to create one)", cfg.CatalogPath)
		}
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

	cache, err := fetch.NewCache(cfg.CacheDir())
	if err != nil {
		return err
	}
	fetcher := fetch.NewHTTPFetcher(
		fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second),
		fetch.WithRateLimit(cfg.Fetch.MaxRPS),
		fetch.WithCache(cache),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
	)
	defer func() { _ = fetcher.Close() }()

	coordinator := ingest.NewCoordinator(ingest.CoordinatorConfig{
		Store:     s,
		Terms:     terms,
		Fetcher:   fetcher,
		Catalog:   catalog,
		Segmenter: segment.New(),
		Delay:     cfg.Delay(),
		LockDir:   cfg.DataDir,
	})

	result, err := coordinator.Run(cmd.Context(), source, allChapters)
	if err != nil {
		return err
	}

	out.RunResult(result)
	return nil
}
