// Package mcpserver exposes the exporter as Model Context Protocol tools.
//
// Three tools are registered:
//
//   - export_query_result: canonicalize, render, and save a query result
//   - list_saved_files: list the latest version of every saved artifact
//   - read_artifact: preview a saved artifact ("artifact://name[@version]")
//
// Every tool answers with a JSON text block. Failed operations set IsError
// and carry "success": false with an error kind, so clients never see a
// protocol-level error for a domain failure.
package mcpserver
