package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/tabular/reader"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect and maintain saved artifacts",
	Long: `Inspect and maintain the artifact store.

Subcommands:
  list      List saved artifacts with their latest version
  versions  List every version of one artifact
  show      Preview or download one version
  prune     Apply the retention policy now`,
}

var artifactsShowFlags struct {
	version string
	output  string
}

var artifactsPruneFlags struct {
	maxVersions   int
	retentionDays int
}

var artifactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved artifacts",
	Args:  cobra.NoArgs,
	RunE:  runArtifactsList,
}

var artifactsVersionsCmd = &cobra.Command{
	Use:   "versions NAME",
	Short: "List every version of an artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactsVersions,
}

var artifactsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Preview or download an artifact version",
	Long: `Preview an artifact version, or write its bytes to a file.

Examples:
  # Preview the latest version
  tabula artifacts show report.xlsx

  # Download version 2
  tabula artifacts show report.xlsx --version 2 --output report-v2.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runArtifactsShow,
}

var artifactsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old artifact versions now",
	Long: `Apply the retention policy once. The latest version of every artifact
is always kept. Flags override the retention section of the config.`,
	Args: cobra.NoArgs,
	RunE: runArtifactsPrune,
}

func init() {
	rootCmd.AddCommand(artifactsCmd)
	artifactsCmd.AddCommand(artifactsListCmd, artifactsVersionsCmd, artifactsShowCmd, artifactsPruneCmd)

	artifactsShowCmd.Flags().StringVar(&artifactsShowFlags.version, "version", "", "version to show (default: latest)")
	artifactsShowCmd.Flags().StringVar(&artifactsShowFlags.output, "output", "", "write the artifact bytes to this file")

	artifactsPruneCmd.Flags().IntVar(&artifactsPruneFlags.maxVersions, "max-versions", -1, "versions kept per artifact (0 = unlimited)")
	artifactsPruneCmd.Flags().IntVar(&artifactsPruneFlags.retentionDays, "retention-days", -1, "drop older versions after this many days (0 = forever)")
}

func runArtifactsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	result := a.exporter.ListArtifacts(cmd.Context())
	if !result.Success {
		if err := printResult(cmd, result, "✗ "+result.Error); err != nil {
			return err
		}
		return failed(result.ErrorKind, result.Error)
	}

	table := &cli.Table{Header: []string{"NAME", "VERSION", "SIZE", "MIME", "CREATED"}}
	for _, f := range result.Files {
		table.Append(f.Name, string(f.Version), strconv.FormatInt(f.Size, 10), f.MimeType, f.CreatedAt.Format(time.RFC3339))
	}
	return printTable(cmd, result, table)
}

func runArtifactsVersions(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	versions, err := a.store.Versions(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("artifacts versions", err)
	}

	table := &cli.Table{Header: []string{"VERSION", "SIZE", "MIME", "CREATED"}}
	for _, d := range versions {
		table.Append(string(d.Version), strconv.FormatInt(d.Size, 10), d.MimeType, d.CreatedAt.Format(time.RFC3339))
	}
	return printTable(cmd, versions, table)
}

func runArtifactsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	art, err := a.store.Load(cmd.Context(), args[0], artifact.Version(artifactsShowFlags.version))
	if err != nil {
		return cli.NewCommandError("artifacts show", err)
	}

	if artifactsShowFlags.output != "" {
		if err := os.WriteFile(artifactsShowFlags.output, art.Data, 0o644); err != nil {
			return cli.NewCommandError("artifacts show", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s version %s to %s (%d bytes)\n",
			art.Name, art.Version, artifactsShowFlags.output, art.Size)
		return nil
	}

	doc, err := reader.Preview(art.Name, art.Data)
	if err != nil {
		return cli.NewCommandError("artifacts show", err)
	}
	return printDocument(cmd, doc)
}

func runArtifactsPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	cfg := retentionConfig(&a.cfg.Retention)
	if artifactsPruneFlags.maxVersions >= 0 {
		cfg.MaxVersions = artifactsPruneFlags.maxVersions
	}
	if artifactsPruneFlags.retentionDays >= 0 {
		cfg.RetentionDays = artifactsPruneFlags.retentionDays
	}

	pruner, err := a.pruner(cfg)
	if err != nil {
		return cli.NewCommandError("artifacts prune", err)
	}
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("artifacts prune", err)
	}

	summary := struct {
		Deleted int64 `json:"deleted"`
	}{Deleted: deleted}
	return printResult(cmd, summary, fmt.Sprintf("✓ Removed %d old versions", deleted))
}
