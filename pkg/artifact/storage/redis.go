package storage

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mercator-hq/tabula/pkg/artifact"
)

// RedisConfig contains configuration for the Redis store.
type RedisConfig struct {
	// Address is the Redis host:port.
	Address string

	// Password is the optional AUTH password.
	Password string

	// DB selects the Redis database.
	DB int

	// KeyPrefix namespaces every key.
	// Default: "tabula:"
	KeyPrefix string
}

// RedisStore implements artifact.Store and artifact.Pruner on Redis.
//
// Keys:
//
//	{prefix}names              sorted set of artifact names
//	{prefix}seq:{name}         INCR counter assigning versions
//	{prefix}versions:{name}    sorted set of versions, scored by version
//	{prefix}blob:{name}:{ver}  hash with mime, size, data, created_at
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewRedisStore connects to Redis.
func NewRedisStore(ctx context.Context, config *RedisConfig) (*RedisStore, error) {
	if config == nil || config.Address == "" {
		return nil, newOpenError(BackendRedis, errors.New("redis address cannot be empty"))
	}
	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "tabula:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, newOpenError(BackendRedis, err)
	}

	logger := slog.Default().With("component", "artifact.storage.redis")
	logger.Info("Redis store initialized", "address", config.Address, "db", config.DB, "prefix", prefix)

	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *RedisStore) namesKey() string               { return s.prefix + "names" }
func (s *RedisStore) seqKey(name string) string      { return s.prefix + "seq:" + name }
func (s *RedisStore) versionsKey(name string) string { return s.prefix + "versions:" + name }
func (s *RedisStore) blobKey(name string, v int64) string {
	return s.prefix + "blob:" + name + ":" + strconv.FormatInt(v, 10)
}

// Save implements artifact.Store. INCR linearizes concurrent saves of the
// same name.
func (s *RedisStore) Save(ctx context.Context, name string, data []byte, mimeType string) (artifact.Version, error) {
	n, err := s.client.Incr(ctx, s.seqKey(name)).Result()
	if err != nil {
		return "", artifact.NewStoreError(BackendRedis, "save", err)
	}
	version := n - 1

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.blobKey(name, version),
			"mime", mimeType,
			"size", len(data),
			"data", data,
			"created_at", s.now().UnixNano(),
		)
		pipe.ZAdd(ctx, s.versionsKey(name), redis.Z{Score: float64(version), Member: strconv.FormatInt(version, 10)})
		pipe.ZAdd(ctx, s.namesKey(), redis.Z{Score: 0, Member: name})
		return nil
	})
	if err != nil {
		return "", artifact.NewStoreError(BackendRedis, "save", err)
	}

	s.logger.Debug("artifact saved", "artifact", name, "version", version, "size", len(data))
	return formatVersion(version), nil
}

// List implements artifact.Store. Names share score 0, so ZRANGE returns
// them in lexicographic order.
func (s *RedisStore) List(ctx context.Context) ([]artifact.Descriptor, error) {
	names, err := s.client.ZRange(ctx, s.namesKey(), 0, -1).Result()
	if err != nil {
		return nil, artifact.NewStoreError(BackendRedis, "list", err)
	}

	out := make([]artifact.Descriptor, 0, len(names))
	for _, name := range names {
		latest, err := s.latest(ctx, name)
		if errors.Is(err, artifact.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, artifact.NewStoreError(BackendRedis, "list", err)
		}
		a, err := s.load(ctx, name, latest, false)
		if errors.Is(err, artifact.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, artifact.NewStoreError(BackendRedis, "list", err)
		}
		out = append(out, a.Descriptor)
	}
	return out, nil
}

// Load implements artifact.Store.
func (s *RedisStore) Load(ctx context.Context, name string, version artifact.Version) (*artifact.Artifact, error) {
	var v int64
	if version == "" {
		latest, err := s.latest(ctx, name)
		if err != nil {
			return nil, s.wrap("load", err)
		}
		v = latest
	} else {
		parsed, err := parseVersion(version)
		if err != nil {
			return nil, artifact.ErrNotFound
		}
		v = parsed
	}

	a, err := s.load(ctx, name, v, true)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	return a, nil
}

// Versions implements artifact.Store.
func (s *RedisStore) Versions(ctx context.Context, name string) ([]artifact.Descriptor, error) {
	members, err := s.client.ZRange(ctx, s.versionsKey(name), 0, -1).Result()
	if err != nil {
		return nil, artifact.NewStoreError(BackendRedis, "versions", err)
	}

	out := make([]artifact.Descriptor, 0, len(members))
	for _, m := range members {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		a, err := s.load(ctx, name, v, false)
		if errors.Is(err, artifact.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, artifact.NewStoreError(BackendRedis, "versions", err)
		}
		out = append(out, a.Descriptor)
	}
	return out, nil
}

// PruneVersions implements artifact.Pruner.
func (s *RedisStore) PruneVersions(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	names, err := s.client.ZRange(ctx, s.namesKey(), 0, -1).Result()
	if err != nil {
		return 0, artifact.NewStoreError(BackendRedis, "prune_versions", err)
	}

	var deleted int64
	for _, name := range names {
		stale, err := s.client.ZRange(ctx, s.versionsKey(name), 0, int64(-keep-1)).Result()
		if err != nil {
			return deleted, artifact.NewStoreError(BackendRedis, "prune_versions", err)
		}
		n, err := s.remove(ctx, name, stale)
		deleted += n
		if err != nil {
			return deleted, artifact.NewStoreError(BackendRedis, "prune_versions", err)
		}
	}
	return deleted, nil
}

// PruneBefore implements artifact.Pruner.
func (s *RedisStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	names, err := s.client.ZRange(ctx, s.namesKey(), 0, -1).Result()
	if err != nil {
		return 0, artifact.NewStoreError(BackendRedis, "prune_before", err)
	}

	var deleted int64
	for _, name := range names {
		// Every version except the latest is a candidate.
		candidates, err := s.client.ZRange(ctx, s.versionsKey(name), 0, -2).Result()
		if err != nil {
			return deleted, artifact.NewStoreError(BackendRedis, "prune_before", err)
		}

		var stale []string
		for _, m := range candidates {
			v, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			raw, err := s.client.HGet(ctx, s.blobKey(name, v), "created_at").Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return deleted, artifact.NewStoreError(BackendRedis, "prune_before", err)
			}
			if time.Unix(0, raw).Before(cutoff) {
				stale = append(stale, m)
			}
		}

		n, err := s.remove(ctx, name, stale)
		deleted += n
		if err != nil {
			return deleted, artifact.NewStoreError(BackendRedis, "prune_before", err)
		}
	}
	return deleted, nil
}

// Ping implements artifact.Pinger.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return s.wrap("ping", err)
	}
	return nil
}

// Close implements artifact.Store.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return artifact.NewStoreError(BackendRedis, "close", err)
	}
	return nil
}

func (s *RedisStore) latest(ctx context.Context, name string) (int64, error) {
	members, err := s.client.ZRevRange(ctx, s.versionsKey(name), 0, 0).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, artifact.ErrNotFound
	}
	return strconv.ParseInt(members[0], 10, 64)
}

func (s *RedisStore) load(ctx context.Context, name string, v int64, withData bool) (*artifact.Artifact, error) {
	fields, err := s.client.HGetAll(ctx, s.blobKey(name, v)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, artifact.ErrNotFound
	}

	size, _ := strconv.ParseInt(fields["size"], 10, 64)
	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	a := &artifact.Artifact{
		Descriptor: artifact.Descriptor{
			Name:      name,
			Version:   formatVersion(v),
			Size:      size,
			MimeType:  fields["mime"],
			CreatedAt: time.Unix(0, createdAt),
		},
	}
	if withData {
		a.Data = []byte(fields["data"])
	}
	return a, nil
}

func (s *RedisStore) remove(ctx context.Context, name string, members []string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(members))
	zmembers := make([]any, 0, len(members))
	for _, m := range members {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, s.blobKey(name, v))
		zmembers = append(zmembers, m)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.versionsKey(name), zmembers...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

func (s *RedisStore) wrap(op string, err error) error {
	if errors.Is(err, artifact.ErrNotFound) {
		return artifact.ErrNotFound
	}
	return artifact.NewStoreError(BackendRedis, op, err)
}
