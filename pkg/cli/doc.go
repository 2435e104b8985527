/*
Package cli provides command-line helpers for the tabula command.

Output Formatting:

Commands print results as aligned text, JSON, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Tabular listings use Table, which every formatter understands:

	table := &cli.Table{Header: []string{"NAME", "VERSION"}}
	table.Append("report.xlsx", "3")

Errors and Exit Codes:

ConfigError and CommandError wrap failures with their origin; ExitCode maps
an error to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
