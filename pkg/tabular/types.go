package tabular

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// KindNull is the absence of a value.
	KindNull Kind = iota
	// KindString is a text value.
	KindString
	// KindNumber is a numeric value kept as its source literal.
	KindNumber
	// KindBool is a boolean value.
	KindBool
	// KindList is an ordered list of values. Lists are never flattened into
	// columns.
	KindList
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a single cell value after wrapper extraction.
// The zero Value is null.
type Value struct {
	kind Kind
	text string // string contents or number literal
	b    bool
	list []Value
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{kind: KindString, text: s}
}

// NumberValue returns a number value. The literal is kept verbatim so that
// integers render without a trailing ".0".
func NumberValue(n json.Number) Value {
	return Value{kind: KindNumber, text: n.String()}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ListValue returns a list value.
func ListValue(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. It is false for non-bool values.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// List returns the list payload, or nil for non-list values.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Number returns the numeric literal, or "" for non-number values.
func (v Value) Number() json.Number {
	if v.kind != KindNumber {
		return ""
	}
	return json.Number(v.text)
}

// Float returns the value as a float64 when it is a number that parses.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text returns the display form used by the renderers: "" for null, the
// string itself, the number literal, "true"/"false", or compact JSON for lists.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		data, err := marshalCompact(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// Interface returns v as a plain Go value (nil, string, json.Number, bool,
// or []any).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return json.Number(v.text)
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString, KindNumber:
		return v.text == o.text
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return marshalCompact(v.text)
	case KindNumber:
		return []byte(v.text), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// Record is an ordered mapping from column name to Value. A column keeps the
// position of its first insertion.
type Record struct {
	columns []string
	values  map[string]Value
}

// NewRecord creates an empty record sized for n columns.
func NewRecord(n int) *Record {
	return &Record{
		columns: make([]string, 0, n),
		values:  make(map[string]Value, n),
	}
}

// Set assigns a value to a column.
func (r *Record) Set(column string, v Value) {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = v
}

// Get returns the value of a column and whether the column is present.
func (r *Record) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the record's column names in order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.columns) }

// Equal reports whether two records have the same columns, in the same
// order, with equal values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if len(r.columns) != len(o.columns) {
		return false
	}
	for i, col := range r.columns {
		if o.columns[i] != col || !r.values[col].Equal(o.values[col]) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler, keeping column order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalCompact(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[col].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is an ordered sequence of records.
type Dataset struct {
	records []*Record
}

// NewDataset creates a dataset from records.
func NewDataset(records ...*Record) *Dataset {
	return &Dataset{records: records}
}

// Append adds a record to the end of the dataset.
func (d *Dataset) Append(r *Record) {
	d.records = append(d.records, r)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns the records in order.
func (d *Dataset) Records() []*Record { return d.records }

// Schema returns the column names of the first record, or nil for an empty
// dataset.
func (d *Dataset) Schema() []string {
	if len(d.records) == 0 {
		return nil
	}
	return d.records[0].Columns()
}

// MarshalJSON encodes the dataset as a plain array of records.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range d.records {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := r.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalCompact encodes v as JSON without HTML escaping or a trailing newline.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
