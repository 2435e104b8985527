package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"

	"mercator-hq/tabula/pkg/tabular"
)

// MaxDepth is the maximum number of nested wrappers, lists, and containers
// followed before a payload is rejected.
const MaxDepth = 32

// Extract resolves a decoded JSON node into a cell value. It only fails when
// the nesting exceeds MaxDepth.
func Extract(x any) (tabular.Value, error) {
	return extract(x, "$", 0)
}

func extract(x any, path string, depth int) (tabular.Value, error) {
	if depth > MaxDepth {
		return tabular.NullValue(), tabular.NewUnsupportedShapeError(path,
			fmt.Sprintf("value nesting exceeds %d levels", MaxDepth))
	}

	switch v := x.(type) {
	case nil:
		return tabular.NullValue(), nil
	case string:
		return tabular.StringValue(v), nil
	case json.Number:
		return tabular.NumberValue(v), nil
	case bool:
		return tabular.BoolValue(v), nil

	case *tabular.Object:
		if inner, ok := v.Get("v"); ok {
			return extract(inner, path+".v", depth+1)
		}
		return tabular.StringValue(stringify(v)), nil

	case []any:
		items := make([]tabular.Value, len(v))
		for i, item := range v {
			val, err := extract(item, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return tabular.NullValue(), err
			}
			items[i] = val
		}
		return tabular.ListValue(items), nil

	default:
		// Plain Go values (float64, map[string]any, ...) are normalized
		// through a JSON round trip.
		data, err := json.Marshal(v)
		if err != nil {
			return tabular.StringValue(fmt.Sprint(v)), nil
		}
		node, err := tabular.DecodeJSON(data)
		if err != nil {
			return tabular.StringValue(string(data)), nil
		}
		return extract(node, path, depth+1)
	}
}

// stringify encodes an object as compact JSON without HTML escaping.
func stringify(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
