package canonical

import "mercator-hq/tabula/pkg/tabular"

// Shape is the recognized encoding of a payload.
type Shape int

const (
	// ShapeUnsupported is any payload that matches no other shape.
	ShapeUnsupported Shape = iota
	// ShapeEmpty is null, an empty sequence, or an empty object.
	ShapeEmpty
	// ShapeSchemaRows is an object carrying a "schema" key; its records
	// live under "rows".
	ShapeSchemaRows
	// ShapeBareContainer is an object wrapping its data in "rows" or
	// "result", or a plain object standing for a single record.
	ShapeBareContainer
	// ShapeFieldArrayRecords is a sequence of positional rows, either
	// {"f": [...]} objects or bare lists.
	ShapeFieldArrayRecords
	// ShapeColumnarRecords is a sequence of plain objects keyed by column.
	ShapeColumnarRecords
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeSchemaRows:
		return "schema_rows"
	case ShapeBareContainer:
		return "bare_container"
	case ShapeFieldArrayRecords:
		return "field_array_records"
	case ShapeColumnarRecords:
		return "columnar_records"
	default:
		return "unsupported"
	}
}

// Classify returns the shape of a node produced by tabular.DecodeJSON.
// It never fails; unknown input is ShapeUnsupported.
func Classify(node any) Shape {
	switch n := node.(type) {
	case nil:
		return ShapeEmpty

	case *tabular.Object:
		switch {
		case n.Len() == 0:
			return ShapeEmpty
		case n.Has("schema"):
			return ShapeSchemaRows
		default:
			return ShapeBareContainer
		}

	case []any:
		if len(n) == 0 {
			return ShapeEmpty
		}
		switch first := n[0].(type) {
		case *tabular.Object:
			if first.Has("f") {
				return ShapeFieldArrayRecords
			}
			if first.Has("v") {
				return ShapeUnsupported
			}
			return ShapeColumnarRecords
		case []any:
			return ShapeFieldArrayRecords
		default:
			return ShapeUnsupported
		}

	default:
		return ShapeUnsupported
	}
}
