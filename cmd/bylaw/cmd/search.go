package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/internal/output"
	"github.com/sadiqawos/toronto2.0/internal/search"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	source string
	format string // "text", "json"
	expand bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed provisions",
		Long: `Search runs a ranked keyword query over every indexed provision.
Terms are stemmed and OR-combined, so any strong term hit surfaces a
candidate. With --expand, informal phrasing is first widened with the
matching legal vocabulary.

Examples:
  bylaw search "noise after 11pm"
  bylaw search "parking permit" --source municipal_code --limit 5
  bylaw search "the streetcar didn't come" --expand
  bylaw search "fence height" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "Restrict to one source")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVarP(&opts.expand, "expand", "e", false, "Widen informal phrasing with legal vocabulary first")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	out := output.New(cmd.OutOrStdout())

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

	limit := opts.limit
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}
	searchOpts := store.SearchOptions{
		Limit:  limit,
		Source: store.Source(opts.source),
	}

	engine := search.NewEngine(s, terms)
	var results []*store.Provision
	if opts.expand {
		results, err = engine.SearchExpanded(cmd.Context(), query, searchOpts)
	} else {
		results, err = engine.Search(cmd.Context(), query, searchOpts)
	}
	if err != nil {
		return err
	}

	if opts.format == "json" {
		return out.ProvisionsJSON(results)
	}
	out.Provisions(results)
	return nil
}
