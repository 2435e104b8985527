package artifact

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Scheme is the URI scheme addressing artifacts in a Store.
const Scheme = "artifact://"

// Fetcher retrieves raw bytes for a URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FileFetcher reads local files. "file://" prefixes are accepted.
type FileFetcher struct{}

// Fetch implements Fetcher.
func (FileFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// StoreFetcher reads "artifact://name[@version]" URIs from a Store.
type StoreFetcher struct {
	Store Store
}

// NewStoreFetcher creates a new StoreFetcher.
func NewStoreFetcher(store Store) *StoreFetcher {
	return &StoreFetcher{
		Store: store,
	}
}

// Fetch implements Fetcher.
func (f *StoreFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	name, version, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	a, err := f.Store.Load(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return a.Data, nil
}

// ParseURI splits "artifact://name[@version]" into its parts.
func ParseURI(uri string) (string, Version, error) {
	rest, ok := strings.CutPrefix(uri, Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an artifact URI: %q", uri)
	}
	name, version, _ := strings.Cut(rest, "@")
	if name == "" {
		return "", "", fmt.Errorf("artifact URI %q has no name", uri)
	}
	return name, Version(version), nil
}

// URI formats an artifact URI. An empty version addresses the latest.
func URI(name string, version Version) string {
	if version == "" {
		return Scheme + name
	}
	return Scheme + name + "@" + string(version)
}

// MultiFetcher routes artifact URIs to a StoreFetcher and everything else to
// a FileFetcher.
type MultiFetcher struct {
	Store *StoreFetcher
	Files FileFetcher
}

// Fetch implements Fetcher.
func (m *MultiFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, Scheme) {
		if m.Store == nil {
			return nil, fmt.Errorf("no artifact store configured for %q", uri)
		}
		return m.Store.Fetch(ctx, uri)
	}
	return m.Files.Fetch(ctx, uri)
}
