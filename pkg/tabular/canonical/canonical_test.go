package canonical

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mercator-hq/tabula/pkg/tabular"
)

// rowsOf flattens a dataset into display strings per record, in record order.
func rowsOf(ds *tabular.Dataset) [][]string {
	var out [][]string
	for _, rec := range ds.Records() {
		var row []string
		for _, col := range rec.Columns() {
			v, _ := rec.Get(col)
			row = append(row, col+"="+v.Text())
		}
		out = append(out, row)
	}
	return out
}

// TestCanonicalize tests the recognized payload shapes.
func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		wantSchema []string
		wantRows   [][]string
	}{
		{
			name:       "columnar records",
			input:      `[{"a":1,"b":2}]`,
			wantSchema: []string{"a", "b"},
			wantRows:   [][]string{{"a=1", "b=2"}},
		},
		{
			name:       "field array records",
			input:      `[{"f":[{"v":"x"},{"v":5}]}]`,
			wantSchema: []string{"column_0", "column_1"},
			wantRows:   [][]string{{"column_0=x", "column_1=5"}},
		},
		{
			name:       "schema with rows",
			input:      `{"schema":{"fields":[{"name":"id"}]},"rows":[{"f":[{"v":"10"}]}]}`,
			wantSchema: []string{"id"},
			wantRows:   [][]string{{"id=10"}},
		},
		{
			name:       "schema with missing names and extra cells",
			input:      `{"schema":{"fields":[{"name":"id"},{"type":"STRING"}]},"rows":[{"f":[{"v":1},{"v":"a"},{"v":true}]}]}`,
			wantSchema: []string{"id", "column_1", "column_2"},
			wantRows:   [][]string{{"id=1", "column_1=a", "column_2=true"}},
		},
		{
			name:       "schema without fields synthesizes headers",
			input:      `{"schema":{},"rows":[[1,2]]}`,
			wantSchema: []string{"column_0", "column_1"},
			wantRows:   [][]string{{"column_0=1", "column_1=2"}},
		},
		{
			name:       "bare rows container",
			input:      `{"rows":[{"name":"ann","age":30}]}`,
			wantSchema: []string{"name", "age"},
			wantRows:   [][]string{{"name=ann", "age=30"}},
		},
		{
			name:       "result container",
			input:      `{"result":[{"ok":true}]}`,
			wantSchema: []string{"ok"},
			wantRows:   [][]string{{"ok=true"}},
		},
		{
			name:       "rows takes priority over result",
			input:      `{"result":[{"x":1}],"rows":[{"y":2}]}`,
			wantSchema: []string{"y"},
			wantRows:   [][]string{{"y=2"}},
		},
		{
			name:       "plain object is a single record",
			input:      `{"k":"v","n":null}`,
			wantSchema: []string{"k", "n"},
			wantRows:   [][]string{{"k=v", "n="}},
		},
		{
			name:       "bare list rows",
			input:      `[["a",1],["b",2,3]]`,
			wantSchema: []string{"column_0", "column_1"},
			wantRows:   [][]string{{"column_0=a", "column_1=1"}, {"column_0=b", "column_1=2", "column_2=3"}},
		},
		{
			name:       "later records keep their own keys",
			input:      `[{"a":1},{"b":2}]`,
			wantSchema: []string{"a"},
			wantRows:   [][]string{{"a=1"}, {"b=2"}},
		},
		{
			name:       "f column past the first record is an ordinary column",
			input:      `[{"a":1},{"a":2,"f":"x"}]`,
			wantSchema: []string{"a"},
			wantRows:   [][]string{{"a=1"}, {"a=2", "f=x"}},
		},
		{
			name:       "list-valued f column stays keyed",
			input:      `[{"a":1},{"f":[7,8]}]`,
			wantSchema: []string{"a"},
			wantRows:   [][]string{{"a=1"}, {"f=[7,8]"}},
		},
		{
			name:       "field array row without f is empty",
			input:      `[{"f":[1]},{"a":2}]`,
			wantSchema: []string{"column_0"},
			wantRows:   [][]string{{"column_0=1"}, nil},
		},
		{
			name:       "plain object with f is a field array record",
			input:      `{"f":[{"v":"x"}]}`,
			wantSchema: []string{"column_0"},
			wantRows:   [][]string{{"column_0=x"}},
		},
		{
			name:       "wrapper with siblings is unwrapped",
			input:      `[{"cell":{"v":{"v":7},"type":"INT"}}]`,
			wantSchema: []string{"cell"},
			wantRows:   [][]string{{"cell=7"}},
		},
		{
			name:       "nested object is stringified in order",
			input:      `[{"o":{"z":1,"a":[true,null]}}]`,
			wantSchema: []string{"o"},
			wantRows:   [][]string{{`o={"z":1,"a":[true,null]}`}},
		},
		{
			name:       "list of wrappers",
			input:      `[{"f":[{"v":[{"v":"x"},{"v":"y"}]}]}]`,
			wantSchema: []string{"column_0"},
			wantRows:   [][]string{{`column_0=["x","y"]`}},
		},
		{
			name:       "byte input",
			input:      []byte(`[{"id":1}]`),
			wantSchema: []string{"id"},
			wantRows:   [][]string{{"id=1"}},
		},
		{
			name:       "go value input sorts map keys",
			input:      []map[string]any{{"b": 2, "a": "x"}},
			wantSchema: []string{"a", "b"},
			wantRows:   [][]string{{"a=x", "b=2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Canonicalize(tt.input)
			if err != nil {
				t.Fatalf("Canonicalize() failed: %v", err)
			}
			if diff := cmp.Diff(tt.wantSchema, ds.Schema()); diff != "" {
				t.Errorf("schema mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRows, rowsOf(ds)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCanonicalize_KeepsValueKinds tests that numbers and booleans keep their kind.
func TestCanonicalize_KeepsValueKinds(t *testing.T) {
	ds, err := Canonicalize(`[{"f":[{"v":"x"},{"v":5},{"v":false},{"v":null}]}]`)
	if err != nil {
		t.Fatalf("Canonicalize() failed: %v", err)
	}

	rec := ds.Records()[0]
	want := []tabular.Kind{tabular.KindString, tabular.KindNumber, tabular.KindBool, tabular.KindNull}
	for i, col := range rec.Columns() {
		v, _ := rec.Get(col)
		if v.Kind() != want[i] {
			t.Errorf("column %s kind = %s, want %s", col, v.Kind(), want[i])
		}
	}
}

// TestCanonicalize_Errors tests the error taxonomy.
func TestCanonicalize_Errors(t *testing.T) {
	deep := strings.Repeat(`{"v":`, MaxDepth+2) + `1` + strings.Repeat(`}`, MaxDepth+2)

	tests := []struct {
		name  string
		input any
		check func(error) bool
	}{
		{name: "invalid json string", input: "not valid json", check: isMalformed},
		{name: "invalid json bytes", input: []byte(`{"rows":`), check: isMalformed},
		{name: "unmarshalable value", input: make(chan int), check: isMalformed},
		{name: "empty sequence", input: `[]`, check: isEmpty},
		{name: "empty object", input: `{}`, check: isEmpty},
		{name: "null", input: `null`, check: isEmpty},
		{name: "nil", input: nil, check: isEmpty},
		{name: "empty rows", input: `{"rows":[]}`, check: isEmpty},
		{name: "schema with empty rows", input: `{"schema":{"fields":[]},"rows":[]}`, check: isEmpty},
		{name: "schema without rows", input: `{"schema":{"fields":[{"name":"a"}]}}`, check: isEmpty},
		{name: "record without columns", input: `[{}]`, check: isEmpty},
		{name: "top-level scalar", input: `42`, check: isUnsupported},
		{name: "top-level string", input: `"hello"`, check: isUnsupported},
		{name: "sequence of scalars", input: `[1,2,3]`, check: isUnsupported},
		{name: "sequence of bare wrappers", input: `[{"v":1}]`, check: isUnsupported},
		{name: "scalar row after valid row", input: `[{"a":1},7]`, check: isUnsupported},
		{name: "rows not a sequence", input: `{"schema":{},"rows":"x"}`, check: isUnsupported},
		{name: "field array not a sequence", input: `[{"f":"x"}]`, check: isUnsupported},
		{name: "later field array not a sequence", input: `[{"f":[1]},{"f":"x"}]`, check: isUnsupported},
		{name: "list row in columnar records", input: `[{"a":1},[1,2]]`, check: isUnsupported},
		{name: "scalar row in field array records", input: `[{"f":[1]},3]`, check: isUnsupported},
		{name: "wrapper too deep", input: `[{"a":` + deep + `}]`, check: isUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
		})
	}
}

// TestCanonicalize_RowErrorNamesIndex tests that a rejected row reports its position.
func TestCanonicalize_RowErrorNamesIndex(t *testing.T) {
	_, err := Canonicalize(`{"rows":[{"a":1},{"a":2},"bad"]}`)

	var shapeErr *tabular.UnsupportedShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected UnsupportedShapeError, got %v", err)
	}
	if shapeErr.Path != "$.rows[2]" {
		t.Errorf("Path = %q, want $.rows[2]", shapeErr.Path)
	}
}

// TestCanonicalize_Idempotent tests that a dataset canonicalizes to itself.
func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		`[{"a":1,"b":"x","c":[1,{"v":2}],"d":null}]`,
		`{"schema":{"fields":[{"name":"id"},{"name":"ok"}]},"rows":[{"f":[{"v":"1"},{"v":true}]},{"f":[{"v":"2"},{"v":false}]}]}`,
		`[["a",1.50],["b",2]]`,
		`[{"a":1},{"a":2,"f":"x"}]`,
		`[{"a":1},{"f":[7,8]}]`,
		`[{"f":[1]},{"a":2}]`,
	}

	for _, input := range inputs {
		first, err := Canonicalize(input)
		if err != nil {
			t.Fatalf("Canonicalize(%s) failed: %v", input, err)
		}
		second, err := Canonicalize(first)
		if err != nil {
			t.Fatalf("Canonicalize(dataset) failed: %v", err)
		}

		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		if string(a) != string(b) {
			t.Errorf("not idempotent:\n first: %s\nsecond: %s", a, b)
		}
	}
}

// TestExtract tests wrapper unwrapping and stringification.
func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		kind  tabular.Kind
	}{
		{name: "scalar", input: `"x"`, want: "x", kind: tabular.KindString},
		{name: "wrapped number", input: `{"v":5}`, want: "5", kind: tabular.KindNumber},
		{name: "double wrapped", input: `{"v":{"v":true}}`, want: "true", kind: tabular.KindBool},
		{name: "wrapped null", input: `{"v":null}`, want: "", kind: tabular.KindNull},
		{name: "list", input: `[{"v":1},"a"]`, want: `[1,"a"]`, kind: tabular.KindList},
		{name: "object", input: `{"b":"<x>","a":1}`, want: `{"b":"<x>","a":1}`, kind: tabular.KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := tabular.DecodeJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeJSON() failed: %v", err)
			}
			got, err := Extract(node)
			if err != nil {
				t.Fatalf("Extract() failed: %v", err)
			}
			if got.Text() != tt.want || got.Kind() != tt.kind {
				t.Errorf("Extract() = %q (%s), want %q (%s)", got.Text(), got.Kind(), tt.want, tt.kind)
			}
		})
	}
}

// TestExtract_GoValues tests values that did not come from the JSON decoder.
func TestExtract_GoValues(t *testing.T) {
	got, err := Extract(map[string]any{"v": 2.5})
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if got.Kind() != tabular.KindNumber || got.Text() != "2.5" {
		t.Errorf("Extract() = %q (%s)", got.Text(), got.Kind())
	}
}

// TestExtract_DepthLimit tests that deep wrapper chains are rejected.
func TestExtract_DepthLimit(t *testing.T) {
	var node any = json.Number("1")
	for i := 0; i < MaxDepth; i++ {
		obj := tabular.NewObject()
		obj.Set("v", node)
		node = obj
	}
	if _, err := Extract(node); err != nil {
		t.Fatalf("Extract() at the limit failed: %v", err)
	}

	obj := tabular.NewObject()
	obj.Set("v", node)
	if _, err := Extract(obj); !isUnsupported(err) {
		t.Errorf("expected UnsupportedShapeError past the limit, got %v", err)
	}
}

// TestClassify tests every shape.
func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Shape
	}{
		{input: `null`, want: ShapeEmpty},
		{input: `[]`, want: ShapeEmpty},
		{input: `{}`, want: ShapeEmpty},
		{input: `{"schema":{},"rows":[]}`, want: ShapeSchemaRows},
		{input: `{"rows":[1]}`, want: ShapeBareContainer},
		{input: `{"result":{}}`, want: ShapeBareContainer},
		{input: `{"a":1}`, want: ShapeBareContainer},
		{input: `[{"f":[]}]`, want: ShapeFieldArrayRecords},
		{input: `[[1]]`, want: ShapeFieldArrayRecords},
		{input: `[{"a":1}]`, want: ShapeColumnarRecords},
		{input: `[{"v":1}]`, want: ShapeUnsupported},
		{input: `[1]`, want: ShapeUnsupported},
		{input: `"s"`, want: ShapeUnsupported},
		{input: `true`, want: ShapeUnsupported},
	}

	for _, tt := range tests {
		node, err := tabular.DecodeJSON([]byte(tt.input))
		if err != nil {
			t.Fatalf("DecodeJSON(%s) failed: %v", tt.input, err)
		}
		if got := Classify(node); got != tt.want {
			t.Errorf("Classify(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func isMalformed(err error) bool {
	var e *tabular.MalformedInputError
	return errors.As(err, &e)
}

func isEmpty(err error) bool {
	var e *tabular.EmptyDatasetError
	return errors.As(err, &e)
}

func isUnsupported(err error) bool {
	var e *tabular.UnsupportedShapeError
	return errors.As(err, &e)
}
