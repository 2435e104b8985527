package canonical

import (
	"encoding/json"
	"fmt"

	"mercator-hq/tabula/pkg/tabular"
)

// Canonicalize converts a payload into a Dataset.
//
// Text inputs (string, []byte, json.RawMessage) are parsed as JSON and a
// parse failure is a MalformedInputError. Any other Go value is normalized
// through json.Marshal first; map keys therefore come out sorted, while
// *tabular.Object and *tabular.Dataset keep their order.
func Canonicalize(raw any) (*tabular.Dataset, error) {
	node, err := toNode(raw)
	if err != nil {
		return nil, err
	}

	ds, err := canonicalize(node, "$", 0)
	if err != nil {
		return nil, err
	}
	if len(ds.Schema()) == 0 {
		return nil, tabular.NewEmptyDatasetError("no columns")
	}
	return ds, nil
}

func toNode(raw any) (any, error) {
	var data []byte
	switch r := raw.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(r)
	case []byte:
		data = r
	case json.RawMessage:
		data = r
	default:
		encoded, err := json.Marshal(r)
		if err != nil {
			return nil, tabular.NewMalformedInputError(err)
		}
		data = encoded
	}

	node, err := tabular.DecodeJSON(data)
	if err != nil {
		return nil, tabular.NewMalformedInputError(err)
	}
	return node, nil
}

func canonicalize(node any, path string, depth int) (*tabular.Dataset, error) {
	if depth > MaxDepth {
		return nil, tabular.NewUnsupportedShapeError(path,
			fmt.Sprintf("container nesting exceeds %d levels", MaxDepth))
	}

	shape := Classify(node)
	switch shape {
	case ShapeEmpty:
		return nil, tabular.NewEmptyDatasetError(describe(node))

	case ShapeSchemaRows:
		obj := node.(*tabular.Object)
		rowsNode, _ := obj.Get("rows")
		var rows []any
		switch r := rowsNode.(type) {
		case nil:
		case []any:
			rows = r
		default:
			return nil, tabular.NewUnsupportedShapeError(path+".rows",
				fmt.Sprintf("rows must be a sequence, got %s", describe(r)))
		}
		if len(rows) == 0 {
			return nil, tabular.NewEmptyDatasetError(shape.String())
		}
		schema, _ := obj.Get("schema")
		return fromRows(shape, rows, headerNames(schema), path+".rows", depth)

	case ShapeBareContainer:
		obj := node.(*tabular.Object)
		if rows, ok := obj.Get("rows"); ok {
			return canonicalize(rows, path+".rows", depth+1)
		}
		if result, ok := obj.Get("result"); ok {
			return canonicalize(result, path+".result", depth+1)
		}
		rowShape := ShapeColumnarRecords
		if obj.Has("f") {
			rowShape = ShapeFieldArrayRecords
		}
		return fromRows(rowShape, []any{obj}, nil, path, depth)

	case ShapeFieldArrayRecords, ShapeColumnarRecords:
		return fromRows(shape, node.([]any), nil, path, depth)

	default:
		return nil, tabular.NewUnsupportedShapeError(path, unsupportedReason(node))
	}
}

// headerNames reads schema.fields[].name. Entries without a usable name are
// left empty and get a positional name later.
func headerNames(schema any) []string {
	obj, ok := schema.(*tabular.Object)
	if !ok {
		return nil
	}
	fieldsNode, _ := obj.Get("fields")
	fields, ok := fieldsNode.([]any)
	if !ok {
		return nil
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		field, ok := f.(*tabular.Object)
		if !ok {
			continue
		}
		if name, ok := field.Get("name"); ok {
			if s, ok := name.(string); ok {
				names[i] = s
			}
		}
	}
	return names
}

// fromRows builds one record per row. The sequence shape decides how every
// row is read; in columnar records "f" is an ordinary column. Only schema
// rows are dispatched per row.
func fromRows(shape Shape, rows []any, headers []string, path string, depth int) (*tabular.Dataset, error) {
	if len(rows) == 0 {
		return nil, tabular.NewEmptyDatasetError("sequence")
	}

	ds := tabular.NewDataset()
	for i, row := range rows {
		rowPath := fmt.Sprintf("%s[%d]", path, i)
		var (
			rec *tabular.Record
			err error
		)
		switch shape {
		case ShapeColumnarRecords:
			rec, err = columnarRow(row, rowPath, depth+1)
		case ShapeFieldArrayRecords:
			rec, err = fieldArrayRow(row, headers, rowPath, depth+1)
		default:
			rec, err = recordFromRow(row, headers, rowPath, depth+1)
		}
		if err != nil {
			return nil, err
		}
		ds.Append(rec)
	}
	return ds, nil
}

// recordFromRow reads a schema row, which may be a field-array object, a
// keyed object, or a bare list.
func recordFromRow(row any, headers []string, path string, depth int) (*tabular.Record, error) {
	switch r := row.(type) {
	case *tabular.Object:
		if r.Has("f") {
			return fieldArrayRow(r, headers, path, depth)
		}
		return columnarRow(r, path, depth)
	case []any:
		return positional(r, headers, path, depth)
	default:
		return nil, rowError(row, path)
	}
}

func columnarRow(row any, path string, depth int) (*tabular.Record, error) {
	obj, ok := row.(*tabular.Object)
	if !ok {
		return nil, tabular.NewUnsupportedShapeError(path,
			fmt.Sprintf("record must be an object, got %s", describe(row)))
	}

	rec := tabular.NewRecord(obj.Len())
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		val, err := extract(v, path+"."+key, depth)
		if err != nil {
			return nil, err
		}
		rec.Set(key, val)
	}
	return rec, nil
}

// fieldArrayRow reads a positional row. An object without "f" is an empty
// record.
func fieldArrayRow(row any, headers []string, path string, depth int) (*tabular.Record, error) {
	switch r := row.(type) {
	case *tabular.Object:
		f, _ := r.Get("f")
		switch fields := f.(type) {
		case []any:
			return positional(fields, headers, path+".f", depth)
		case nil:
			return positional(nil, headers, path+".f", depth)
		default:
			return nil, tabular.NewUnsupportedShapeError(path+".f",
				fmt.Sprintf("field array must be a sequence, got %s", describe(f)))
		}
	case []any:
		return positional(r, headers, path, depth)
	default:
		return nil, rowError(row, path)
	}
}

func rowError(row any, path string) error {
	return tabular.NewUnsupportedShapeError(path,
		fmt.Sprintf("row must be an object or a sequence, got %s", describe(row)))
}

func positional(fields []any, headers []string, path string, depth int) (*tabular.Record, error) {
	rec := tabular.NewRecord(len(fields))
	for i, field := range fields {
		val, err := extract(field, fmt.Sprintf("%s[%d]", path, i), depth)
		if err != nil {
			return nil, err
		}
		rec.Set(columnName(headers, i), val)
	}
	return rec, nil
}

func columnName(headers []string, i int) string {
	if i < len(headers) && headers[i] != "" {
		return headers[i]
	}
	return fmt.Sprintf("column_%d", i)
}

func unsupportedReason(node any) string {
	if seq, ok := node.([]any); ok && len(seq) > 0 {
		if obj, ok := seq[0].(*tabular.Object); ok && obj.Has("v") {
			return "sequence of bare value wrappers"
		}
		return fmt.Sprintf("sequence of %s", describe(seq[0]))
	}
	return fmt.Sprintf("top-level %s", describe(node))
}

func describe(node any) string {
	switch node.(type) {
	case nil:
		return "null"
	case *tabular.Object:
		return "object"
	case []any:
		return "sequence"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", node)
	}
}
