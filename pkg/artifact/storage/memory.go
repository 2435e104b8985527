package storage

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"mercator-hq/tabula/pkg/artifact"
)

// MemoryStore implements artifact.Store in process memory.
// Versions are decimal integers starting at 0.
type MemoryStore struct {
	mu       sync.RWMutex
	versions map[string][]*memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	version   int64
	mimeType  string
	data      []byte
	createdAt time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		versions: make(map[string][]*memoryEntry),
		now:      time.Now,
	}
}

// Save implements artifact.Store.
func (s *MemoryStore) Save(ctx context.Context, name string, data []byte, mimeType string) (artifact.Version, error) {
	if err := ctx.Err(); err != nil {
		return "", artifact.NewStoreError(BackendMemory, "save", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.versions[name]
	var next int64
	if n := len(entries); n > 0 {
		next = entries[n-1].version + 1
	}

	// Copy to avoid mutation by the caller
	payload := make([]byte, len(data))
	copy(payload, data)

	s.versions[name] = append(entries, &memoryEntry{
		version:   next,
		mimeType:  mimeType,
		data:      payload,
		createdAt: s.now(),
	})
	return formatVersion(next), nil
}

// List implements artifact.Store.
func (s *MemoryStore) List(ctx context.Context) ([]artifact.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, artifact.NewStoreError(BackendMemory, "list", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]artifact.Descriptor, 0, len(s.versions))
	for name, entries := range s.versions {
		if len(entries) == 0 {
			continue
		}
		out = append(out, entries[len(entries)-1].descriptor(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Load implements artifact.Store.
func (s *MemoryStore) Load(ctx context.Context, name string, version artifact.Version) (*artifact.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, artifact.NewStoreError(BackendMemory, "load", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.versions[name]
	if len(entries) == 0 {
		return nil, artifact.ErrNotFound
	}

	entry := entries[len(entries)-1]
	if version != "" {
		v, err := parseVersion(version)
		if err != nil {
			return nil, artifact.ErrNotFound
		}
		entry = nil
		for _, e := range entries {
			if e.version == v {
				entry = e
				break
			}
		}
		if entry == nil {
			return nil, artifact.ErrNotFound
		}
	}

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return &artifact.Artifact{Descriptor: entry.descriptor(name), Data: data}, nil
}

// Versions implements artifact.Store.
func (s *MemoryStore) Versions(ctx context.Context, name string) ([]artifact.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, artifact.NewStoreError(BackendMemory, "versions", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.versions[name]
	out := make([]artifact.Descriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.descriptor(name))
	}
	return out, nil
}

// PruneVersions implements artifact.Pruner.
func (s *MemoryStore) PruneVersions(ctx context.Context, keep int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, artifact.NewStoreError(BackendMemory, "prune_versions", err)
	}
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for name, entries := range s.versions {
		if extra := len(entries) - keep; extra > 0 {
			s.versions[name] = append([]*memoryEntry(nil), entries[extra:]...)
			deleted += int64(extra)
		}
	}
	return deleted, nil
}

// PruneBefore implements artifact.Pruner.
func (s *MemoryStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, artifact.NewStoreError(BackendMemory, "prune_before", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for name, entries := range s.versions {
		latest := len(entries) - 1
		kept := make([]*memoryEntry, 0, len(entries))
		for i, e := range entries {
			if i != latest && e.createdAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		s.versions[name] = kept
	}
	return deleted, nil
}

// Ping implements artifact.Pinger.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements artifact.Store.
func (s *MemoryStore) Close() error {
	return nil
}

func (e *memoryEntry) descriptor(name string) artifact.Descriptor {
	return artifact.Descriptor{
		Name:      name,
		Version:   formatVersion(e.version),
		Size:      int64(len(e.data)),
		MimeType:  e.mimeType,
		CreatedAt: e.createdAt,
	}
}

func formatVersion(v int64) artifact.Version {
	return artifact.Version(strconv.FormatInt(v, 10))
}

func parseVersion(v artifact.Version) (int64, error) {
	return strconv.ParseInt(string(v), 10, 64)
}
