// Package tabular defines the uniform row/column model shared by the
// canonicalizer, the renderers, and the export orchestrator.
//
// # Data Model
//
// Query results arrive in several incompatible shapes (flat records,
// schema+rows pairs, BigQuery-style field/value wrappers). They are all
// reduced to the same three types:
//
//   - Value: a tagged union of null, string, number, bool, and list
//   - Record: an ordered mapping from column name to Value
//   - Dataset: an ordered sequence of records whose Schema is the column
//     order of the first record
//
// The Schema of a Dataset is authoritative. Renderers never reorder columns
// once the first record has established them; columns that only appear in
// later records are dropped at render time.
//
// # Ordered JSON
//
// Go maps do not keep insertion order, but the column order of a query
// result does matter. DecodeJSON parses JSON text into plain Go values where
// every object is an *Object that remembers the order of its keys:
//
//	node, err := tabular.DecodeJSON([]byte(`[{"b":1,"a":2}]`))
//	// node is []any{*Object{keys: ["b", "a"]}}
//
// # Errors
//
// The package also holds the error taxonomy for the tabular pipeline:
//
//   - MalformedInputError: text failed to parse as JSON
//   - UnsupportedShapeError: the payload shape is not recognized
//   - EmptyDatasetError: zero records after classification
//   - RenderError: a dataset could not be rendered
//   - ReadBackError: spreadsheet bytes could not be read
//
// Storage failures live in package artifact.
package tabular
