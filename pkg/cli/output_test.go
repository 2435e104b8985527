package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func sampleTable() *Table {
	table := &Table{Header: []string{"NAME", "VERSION", "SIZE"}}
	table.Append("report.xlsx", "3", "5120")
	table.Append("a,b.csv", "0", "7")
	return table
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"junit", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q", output)
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	expected := "NAME         VERSION  SIZE\n" +
		"report.xlsx  3        5120\n" +
		"a,b.csv      0        7\n"
	if buf.String() != expected {
		t.Errorf("FormatTo() =\n%s\nwant\n%s", buf.String(), expected)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		indent bool
	}{
		{name: "simple string", data: "test"},
		{name: "map with indent", data: map[string]string{"key": "value"}, indent: true},
		{name: "struct", data: struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}{"x", 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if !json.Valid(output) {
				t.Errorf("Format() produced invalid JSON: %s", output)
			}
		})
	}
}

func TestJSONFormatter_Table(t *testing.T) {
	output, err := (&JSONFormatter{}).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var rows []map[string]string
	if err := json.Unmarshal(output, &rows); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(rows) != 2 || rows[0]["name"] != "report.xlsx" || rows[1]["size"] != "7" {
		t.Errorf("rows = %v", rows)
	}
}

func TestCSVFormatter(t *testing.T) {
	output, err := (&CSVFormatter{}).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	expected := "NAME,VERSION,SIZE\nreport.xlsx,3,5120\n\"a,b.csv\",0,7\n"
	if string(output) != expected {
		t.Errorf("Format() = %q, want %q", output, expected)
	}

	if _, err := (&CSVFormatter{}).Format("not a table"); err == nil {
		t.Error("expected error for non-table data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		switch NewFormatter(tt.format).(type) {
		case *TextFormatter:
			if tt.want != "*cli.TextFormatter" {
				t.Errorf("NewFormatter(%s) = TextFormatter", tt.format)
			}
		case *JSONFormatter:
			if tt.want != "*cli.JSONFormatter" {
				t.Errorf("NewFormatter(%s) = JSONFormatter", tt.format)
			}
		case *CSVFormatter:
			if tt.want != "*cli.CSVFormatter" {
				t.Errorf("NewFormatter(%s) = CSVFormatter", tt.format)
			}
		}
	}
}
