package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/tabular/reader"
)

var readCmd = &cobra.Command{
	Use:   "read FILE|URI",
	Short: "Preview a local file or a saved artifact",
	Long: `Preview a spreadsheet, text, or binary file.

Spreadsheets (.xlsx, .xls) print every sheet, text files (.txt, .csv) print
their content, and other files report their size. Artifact URIs have the
form artifact://NAME or artifact://NAME@VERSION.

Examples:
  # Preview a local workbook
  tabula read ./report.xlsx

  # Preview version 2 of a saved artifact as JSON
  tabula read artifact://report.xlsx@2 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	fetcher := &artifact.MultiFetcher{Store: artifact.NewStoreFetcher(a.store)}
	doc, err := reader.Load(cmd.Context(), fetcher, args[0])
	if err != nil {
		return cli.NewCommandError("read", err)
	}
	return printDocument(cmd, doc)
}

// printDocument writes a preview. Text output prints each sheet as an
// aligned table; csv output prints the first sheet.
func printDocument(cmd *cobra.Command, doc *reader.Document) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return cli.NewCommandError(cmd.Name(), err)
	}
	w := cmd.OutOrStdout()

	switch {
	case format == cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(w, doc)

	case format == cli.FormatCSV:
		if doc.Type != reader.KindExcel || len(doc.Sheets.Sheets) == 0 {
			return cli.NewCommandError(cmd.Name(), fmt.Errorf("csv output needs a spreadsheet, got %s", doc.Type))
		}
		return cli.NewFormatter(format).FormatTo(w, sheetTable(doc.Sheets.Sheets[0].Rows))
	}

	switch doc.Type {
	case reader.KindExcel:
		text := cli.NewFormatter(cli.FormatText)
		for i, sheet := range doc.Sheets.Sheets {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== %s ==\n", sheet.Name)
			if len(sheet.Rows) == 0 {
				fmt.Fprintln(w, "(empty)")
				continue
			}
			if err := text.FormatTo(w, sheetTable(sheet.Rows)); err != nil {
				return err
			}
		}
	case reader.KindText:
		fmt.Fprintln(w, doc.Content)
		if doc.Truncated {
			fmt.Fprintf(w, "... (truncated, %d bytes total)\n", doc.SizeBytes)
		}
	default:
		fmt.Fprintf(w, "%s: binary file, %d bytes\n", doc.Filename, doc.SizeBytes)
	}
	return nil
}

// sheetTable uses the first row as the header.
func sheetTable(rows [][]string) *cli.Table {
	if len(rows) == 0 {
		return &cli.Table{}
	}
	return &cli.Table{Header: rows[0], Rows: rows[1:]}
}
