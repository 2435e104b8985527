package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "tabula",
	Short: "Tabula - save query results as versioned spreadsheets",
	Long: `Tabula turns query results into downloadable artifacts.

A query result (a list of records, a schema and rows object, or field/value
rows) is normalized into a table and rendered as:
  - XLSX workbooks with a styled header row
  - CSV text
  - JSON arrays of records

Every save creates a new version in the artifact store (SQLite, MySQL,
Redis, or memory). "tabula serve" exposes the same operations as MCP tools.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code matching the error.
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var failed *cli.FailedError
		if !errors.As(err, &failed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "tabula.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output-format", "o", "text", "output format (text, json, csv)")
}

// configExplicit reports whether --config was given. The default path may
// be missing, in which case defaults and environment overrides apply.
func configExplicit() bool {
	return rootCmd.PersistentFlags().Changed("config")
}
