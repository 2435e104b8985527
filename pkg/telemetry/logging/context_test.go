package logging

import (
	"context"
	"testing"
)

// TestContextHelpers tests storing and retrieving export fields.
func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if GetExportID(ctx) != "" || GetArtifact(ctx) != "" || GetFormat(ctx) != "" {
		t.Fatal("empty context returned values")
	}
	if attrs := contextAttrs(ctx); len(attrs) != 0 {
		t.Errorf("contextAttrs(empty) = %v", attrs)
	}

	ctx = WithExportID(ctx, "exp-9")
	ctx = WithArtifact(ctx, "sales.csv")
	ctx = WithFormat(ctx, "csv")

	if got := GetExportID(ctx); got != "exp-9" {
		t.Errorf("GetExportID() = %q", got)
	}
	if got := GetArtifact(ctx); got != "sales.csv" {
		t.Errorf("GetArtifact() = %q", got)
	}
	if got := GetFormat(ctx); got != "csv" {
		t.Errorf("GetFormat() = %q", got)
	}

	attrs := contextAttrs(ctx)
	if len(attrs) != 3 || attrs[0].Key != "export_id" || attrs[1].Key != "artifact" || attrs[2].Key != "format" {
		t.Errorf("contextAttrs() = %v", attrs)
	}
}
