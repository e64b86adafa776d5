package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/internal/search"
)

func newExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <text>",
		Short: "Map informal phrasing to legal search terms",
		Long: `Expand prints the legal vocabulary a piece of informal text maps
to, without running a search. Useful for seeing why --expand found (or
missed) a provision.

Prints nothing and exits zero when no trigger phrase matches.

Example:
  bylaw expand "the streetcar didn't come"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expansion := search.NewExpander().Expand(strings.Join(args, " "))
			if expansion == "" {
				return nil
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), expansion)
			return err
		},
	}
}
