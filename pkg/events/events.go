package events

import (
	"context"
	"time"
)

// TypeArtifactSaved is the event type published after a successful export.
const TypeArtifactSaved = "artifact.saved"

// ArtifactSaved describes a newly saved artifact version.
type ArtifactSaved struct {
	Type       string    `json:"type"`
	ExportID   string    `json:"export_id"`
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	Format     string    `json:"format"`
	MimeType   string    `json:"mime"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	SizeBytes  int       `json:"size_bytes"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event ArtifactSaved) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, ArtifactSaved) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
