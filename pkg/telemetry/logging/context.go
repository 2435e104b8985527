package logging

import (
	"context"
	"log/slog"
)

// Context keys for export log fields.
type contextKey string

const (
	// ExportIDKey is the context key for export IDs.
	ExportIDKey contextKey = "export_id"

	// ArtifactKey is the context key for artifact names.
	ArtifactKey contextKey = "artifact"

	// FormatKey is the context key for output formats.
	FormatKey contextKey = "format"
)

// WithExportID adds an export ID to the context.
func WithExportID(ctx context.Context, exportID string) context.Context {
	return context.WithValue(ctx, ExportIDKey, exportID)
}

// GetExportID retrieves the export ID from the context.
func GetExportID(ctx context.Context) string {
	if exportID, ok := ctx.Value(ExportIDKey).(string); ok {
		return exportID
	}
	return ""
}

// WithArtifact adds an artifact name to the context.
func WithArtifact(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ArtifactKey, name)
}

// GetArtifact retrieves the artifact name from the context.
func GetArtifact(ctx context.Context) string {
	if name, ok := ctx.Value(ArtifactKey).(string); ok {
		return name
	}
	return ""
}

// WithFormat adds an output format to the context.
func WithFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, FormatKey, format)
}

// GetFormat retrieves the output format from the context.
func GetFormat(ctx context.Context) string {
	if format, ok := ctx.Value(FormatKey).(string); ok {
		return format
	}
	return ""
}

// contextAttrs extracts the export fields present in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if exportID := GetExportID(ctx); exportID != "" {
		attrs = append(attrs, slog.String(string(ExportIDKey), exportID))
	}
	if name := GetArtifact(ctx); name != "" {
		attrs = append(attrs, slog.String(string(ArtifactKey), name))
	}
	if format := GetFormat(ctx); format != "" {
		attrs = append(attrs, slog.String(string(FormatKey), format))
	}
	return attrs
}

// contextHandler adds context fields to every record logged through a
// *Context method.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
