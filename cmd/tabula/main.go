// Tabula saves query results as versioned spreadsheet, CSV, and JSON
// artifacts and serves the same operations as MCP tools.
//
// Usage:
//
//	# Serve the export tools over stdio
//	tabula serve
//
//	# Export a query result from a file
//	tabula export --input result.json --filename report --format xlsx
//
//	# List saved artifacts
//	tabula artifacts list
//
//	# Preview an artifact or a local file
//	tabula read artifact://report.xlsx
//
//	# Show version information
//	tabula version
package main

func main() {
	Execute()
}
