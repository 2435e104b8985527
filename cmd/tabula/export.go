package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/export"
	"mercator-hq/tabula/pkg/tabular"
)

var exportFlags struct {
	input     string
	filename  string
	format    string
	sheetName string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save a query result as a versioned artifact",
	Long: `Save a query result as an XLSX, CSV, or JSON artifact.

The input is JSON: a list of records, an object with "schema" and "rows",
a list of field/value rows, or an object wrapping one of these under
"result". Each export of the same filename creates a new version.

Examples:
  # Export a file as a spreadsheet
  tabula export --input result.json --filename report

  # Export stdin as CSV
  bq query --format=json 'SELECT ...' | tabula export --input - --filename daily --format csv

  # Print the result as JSON
  tabula export -i result.json -f report --format json -o json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.input, "input", "i", "-", "query result JSON file, or - for stdin")
	exportCmd.Flags().StringVarP(&exportFlags.filename, "filename", "f", "", "artifact filename (required)")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "", "output format: xlsx, csv, json (default from config)")
	exportCmd.Flags().StringVar(&exportFlags.sheetName, "sheet", "", "worksheet name for xlsx output")
	_ = exportCmd.MarkFlagRequired("filename")
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, exportFlags.input)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	req := export.Request{
		Data:      data,
		Filename:  exportFlags.filename,
		SheetName: exportFlags.sheetName,
	}
	if exportFlags.format != "" {
		format, err := tabular.ParseFormat(exportFlags.format)
		if err != nil {
			format = tabular.Format(exportFlags.format)
		}
		req.Format = format
	}

	result := a.exporter.Export(cmd.Context(), req)

	text := result.Message
	if !result.Success {
		text = "✗ " + result.Error
	}
	if err := printResult(cmd, result, text); err != nil {
		return err
	}
	if !result.Success {
		return failed(result.ErrorKind, result.Error)
	}
	return nil
}
