// Package canonical turns query-result payloads of several shapes into a
// tabular.Dataset.
//
// # Shapes
//
// Classify maps a decoded JSON node onto a closed set of shapes:
//
//   - ShapeSchemaRows: {"schema": {"fields": [{"name": ...}]}, "rows": [...]}
//   - ShapeBareContainer: {"rows": [...]}, {"result": ...}, or a plain object
//     that is treated as a single record
//   - ShapeFieldArrayRecords: [{"f": [{"v": ...}, ...]}, ...] or [[...], ...]
//   - ShapeColumnarRecords: [{"col": value, ...}, ...]
//   - ShapeEmpty: null, [], {}
//   - ShapeUnsupported: anything else
//
// Canonicalize drives the classification and returns either a Dataset or one
// of tabular.MalformedInputError, tabular.UnsupportedShapeError, or
// tabular.EmptyDatasetError.
//
// # Value Extraction
//
// BigQuery boxes cell values as {"v": value}. Extract unwraps such wrappers
// recursively, keeps lists as lists, and stringifies any other object as
// compact JSON (structure is lost on purpose). Unwrapping stops at MaxDepth
// levels and reports an UnsupportedShapeError instead of recursing further.
//
// # Schema Policy
//
// The Schema of the resulting Dataset is the column order of the first
// record. Columnar records keep their own key sets; keys that only appear in
// later records are carried in those records but dropped by the renderers.
package canonical
