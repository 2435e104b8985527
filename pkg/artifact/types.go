package artifact

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no artifact matches a name or version.
var ErrNotFound = errors.New("artifact not found")

// Version identifies one saved revision of an artifact. Its encoding belongs
// to the store; callers compare and display it but never parse it.
type Version string

// String returns the version text.
func (v Version) String() string { return string(v) }

// Descriptor describes a saved artifact version.
type Descriptor struct {
	// Name is the artifact filename.
	Name string `json:"name"`

	// Version is the store-assigned version.
	Version Version `json:"version"`

	// Size is the payload length in bytes.
	Size int64 `json:"size"`

	// MimeType is the payload media type.
	MimeType string `json:"mime"`

	// CreatedAt is when the version was saved.
	CreatedAt time.Time `json:"created_at"`
}

// Artifact is a saved version with its payload.
type Artifact struct {
	Descriptor
	Data []byte `json:"-"`
}

// Store is a versioned, append-only blob store keyed by filename.
// Implementations must be safe for concurrent use; concurrent saves of the
// same name each receive a distinct, increasing version.
type Store interface {
	// Save appends a new version of name and returns its version.
	Save(ctx context.Context, name string, data []byte, mimeType string) (Version, error)

	// List returns the latest version of every artifact, ordered by name.
	List(ctx context.Context) ([]Descriptor, error)

	// Load returns one version of an artifact. An empty version selects the
	// latest. Returns ErrNotFound when nothing matches.
	Load(ctx context.Context, name string, version Version) (*Artifact, error)

	// Versions returns every version of name, oldest first.
	Versions(ctx context.Context, name string) ([]Descriptor, error)

	// Close releases the store's resources.
	Close() error
}

// Pruner is implemented by stores that support retention.
type Pruner interface {
	// PruneVersions deletes all but the newest keep versions of every name
	// and returns the number of deleted versions.
	PruneVersions(ctx context.Context, keep int) (int64, error)

	// PruneBefore deletes versions saved before cutoff, always keeping the
	// latest version of each name. It returns the number of deleted versions.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
