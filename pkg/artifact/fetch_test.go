package artifact_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/artifact/storage"
)

// TestParseURI tests artifact URI parsing.
func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		name    string
		version artifact.Version
		wantErr bool
	}{
		{uri: "artifact://report.xlsx", name: "report.xlsx"},
		{uri: "artifact://report.xlsx@3", name: "report.xlsx", version: "3"},
		{uri: "artifact://", wantErr: true},
		{uri: "gs://bucket/file", wantErr: true},
	}

	for _, tt := range tests {
		name, version, err := artifact.ParseURI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseURI(%q) expected error", tt.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseURI(%q) failed: %v", tt.uri, err)
			continue
		}
		if name != tt.name || version != tt.version {
			t.Errorf("ParseURI(%q) = %q, %q", tt.uri, name, version)
		}
		if got := artifact.URI(name, version); got != tt.uri {
			t.Errorf("URI() = %q, want %q", got, tt.uri)
		}
	}
}

// TestMultiFetcher tests routing between files and the store.
func TestMultiFetcher(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if _, err := store.Save(ctx, "a.csv", []byte("v0"), "text/csv"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := store.Save(ctx, "a.csv", []byte("v1"), "text/csv"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "local.txt")
	if err := os.WriteFile(path, []byte("local"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	fetcher := &artifact.MultiFetcher{Store: artifact.NewStoreFetcher(store)}

	tests := []struct {
		uri  string
		want string
	}{
		{uri: "artifact://a.csv", want: "v1"},
		{uri: "artifact://a.csv@0", want: "v0"},
		{uri: path, want: "local"},
		{uri: "file://" + path, want: "local"},
	}
	for _, tt := range tests {
		data, err := fetcher.Fetch(ctx, tt.uri)
		if err != nil {
			t.Errorf("Fetch(%q) failed: %v", tt.uri, err)
			continue
		}
		if string(data) != tt.want {
			t.Errorf("Fetch(%q) = %q, want %q", tt.uri, data, tt.want)
		}
	}

	if _, err := fetcher.Fetch(ctx, "artifact://missing.csv"); !errors.Is(err, artifact.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := (&artifact.MultiFetcher{}).Fetch(ctx, "artifact://a.csv"); err == nil {
		t.Error("expected error without a store")
	}
}

// TestErrors tests error messages and unwrapping.
func TestErrors(t *testing.T) {
	cause := context.DeadlineExceeded

	timeout := artifact.NewTimeoutError("save", 2*time.Second, cause)
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Error("TimeoutError does not unwrap")
	}
	if got := timeout.Error(); got != "store timeout [operation=save, timeout=2s]: context deadline exceeded" {
		t.Errorf("unexpected message %q", got)
	}

	storeErr := artifact.NewStoreError("sqlite", "list", errors.New("disk full"))
	if got := storeErr.Error(); got != "store failure [backend=sqlite, operation=list]: disk full" {
		t.Errorf("unexpected message %q", got)
	}
}
