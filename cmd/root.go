// Package cmd defines the CLI commands for the chronik-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chronik-crawler",
		Short: "Crawls the München Chronik and stores incident records",
		Long: `chronik-crawler walks the paginated chronicle at muenchen-chronik.de,
extracts one normalized incident record per report, cross-references the
chronicle's map feed for coordinates, and upserts everything into Postgres.
Upserts are keyed on stable identifiers, so re-runs never duplicate data.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
