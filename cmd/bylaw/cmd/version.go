package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var (
		jsonOut bool
		short   bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case short:
				fmt.Fprintln(cmd.OutOrStdout(), version.Short())
			case jsonOut:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(version.GetInfo()); err != nil {
					return err
				}
			default:
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
