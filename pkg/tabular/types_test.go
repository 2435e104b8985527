package tabular

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestValue_Text tests the display form of every kind.
func TestValue_Text(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "null", value: NullValue(), want: ""},
		{name: "string", value: StringValue("héllo"), want: "héllo"},
		{name: "integer", value: NumberValue("5"), want: "5"},
		{name: "decimal", value: NumberValue("1.50"), want: "1.50"},
		{name: "true", value: BoolValue(true), want: "true"},
		{name: "false", value: BoolValue(false), want: "false"},
		{
			name:  "list",
			value: ListValue([]Value{StringValue("a&b"), NumberValue("1"), NullValue()}),
			want:  `["a&b",1,null]`,
		},
		{name: "empty list", value: ListValue(nil), want: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestValue_Equal tests value equality across kinds.
func TestValue_Equal(t *testing.T) {
	a := ListValue([]Value{StringValue("x"), NumberValue("2")})
	b := ListValue([]Value{StringValue("x"), NumberValue("2")})
	c := ListValue([]Value{StringValue("x"), StringValue("2")})

	if !a.Equal(b) {
		t.Error("expected equal lists")
	}
	if a.Equal(c) {
		t.Error("expected number and string elements to differ")
	}
	if NullValue().Equal(StringValue("")) {
		t.Error("expected null and empty string to differ")
	}
	if !(Value{}).IsNull() {
		t.Error("expected zero Value to be null")
	}
}

// TestValue_Float tests numeric conversion.
func TestValue_Float(t *testing.T) {
	if f, ok := NumberValue("2.5").Float(); !ok || f != 2.5 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
	if _, ok := StringValue("2.5").Float(); ok {
		t.Error("expected string value not to convert")
	}
}

// TestRecord_SetKeepsFirstPosition tests column ordering on overwrite.
func TestRecord_SetKeepsFirstPosition(t *testing.T) {
	r := NewRecord(3)
	r.Set("b", NumberValue("1"))
	r.Set("a", NumberValue("2"))
	r.Set("b", NumberValue("3"))

	cols := r.Columns()
	if len(cols) != 2 || cols[0] != "b" || cols[1] != "a" {
		t.Errorf("Columns() = %v, want [b a]", cols)
	}
	if v, _ := r.Get("b"); v.Text() != "3" {
		t.Errorf("expected overwritten value 3, got %s", v.Text())
	}
}

// TestDataset_SchemaAndJSON tests schema derivation and JSON encoding.
func TestDataset_SchemaAndJSON(t *testing.T) {
	first := NewRecord(2)
	first.Set("id", NumberValue("1"))
	first.Set("tags", ListValue([]Value{StringValue("x")}))
	second := NewRecord(1)
	second.Set("extra", BoolValue(true))

	ds := NewDataset(first, second)
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}

	schema := ds.Schema()
	if len(schema) != 2 || schema[0] != "id" || schema[1] != "tags" {
		t.Errorf("Schema() = %v, want [id tags]", schema)
	}

	data, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	want := `[{"id":1,"tags":["x"]},{"extra":true}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	if NewDataset().Schema() != nil {
		t.Error("expected nil schema for empty dataset")
	}
}

// TestParseFormat tests format parsing and metadata.
func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		ext     string
		wantErr bool
	}{
		{input: "xlsx", want: FormatXLSX, ext: ".xlsx"},
		{input: "Excel", want: FormatXLSX, ext: ".xlsx"},
		{input: " CSV ", want: FormatCSV, ext: ".csv"},
		{input: "json", want: FormatJSON, ext: ".json"},
		{input: "parquet", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want || got.Extension() != tt.ext || !got.Valid() {
			t.Errorf("ParseFormat(%q) = %s (%s)", tt.input, got, got.Extension())
		}
	}

	if FormatXLSX.MimeType() != MimeXLSX || FormatCSV.MimeType() != "text/csv" {
		t.Error("unexpected MIME types")
	}
}

// TestErrors_Unwrap tests that typed errors expose their cause.
func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	var malformed *MalformedInputError
	if !errors.As(NewMalformedInputError(cause), &malformed) || !errors.Is(malformed, cause) {
		t.Error("MalformedInputError does not unwrap")
	}
	if !errors.Is(NewRenderError(FormatCSV, cause), cause) {
		t.Error("RenderError does not unwrap")
	}
	if !errors.Is(NewReadBackError(cause), cause) {
		t.Error("ReadBackError does not unwrap")
	}

	if got := NewUnsupportedShapeError("$.rows[1]", "scalar row").Error(); got != "unsupported shape [path=$.rows[1]]: scalar row" {
		t.Errorf("unexpected message %q", got)
	}
	if got := NewEmptyDatasetError("").Error(); got != "empty dataset" {
		t.Errorf("unexpected message %q", got)
	}
}
