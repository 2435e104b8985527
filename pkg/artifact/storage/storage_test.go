package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/tabula/pkg/artifact"
)

// testStore is a store under test plus a hook to control its clock.
type testStore struct {
	store  artifact.Store
	setNow func(func() time.Time)
}

// runStoreSuite runs the shared behavior tests against one backend.
func runStoreSuite(t *testing.T, open func(t *testing.T) testStore) {
	t.Run("Ping", func(t *testing.T) {
		ts := open(t)
		pinger, ok := ts.store.(artifact.Pinger)
		if !ok {
			t.Fatalf("%T does not implement artifact.Pinger", ts.store)
		}
		if err := pinger.Ping(context.Background()); err != nil {
			t.Errorf("Ping() failed: %v", err)
		}
	})

	t.Run("SaveAssignsIncreasingVersions", func(t *testing.T) {
		ts := open(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			v, err := ts.store.Save(ctx, "report.xlsx", []byte{byte(i)}, "application/x")
			if err != nil {
				t.Fatalf("Save() failed: %v", err)
			}
			if want := artifact.Version(fmt.Sprint(i)); v != want {
				t.Errorf("Save() #%d = %s, want %s", i, v, want)
			}
		}

		other, err := ts.store.Save(ctx, "other.csv", []byte("a"), "text/csv")
		if err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		if other != "0" {
			t.Errorf("first version of a new name = %s, want 0", other)
		}
	})

	t.Run("ListReturnsLatestByName", func(t *testing.T) {
		ts := open(t)
		ctx := context.Background()

		mustSave(t, ts.store, "b.csv", "one", "text/csv")
		mustSave(t, ts.store, "a.xlsx", "x", "application/x")
		mustSave(t, ts.store, "b.csv", "two!", "text/csv")

		list, err := ts.store.List(ctx)
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List() returned %d entries, want 2", len(list))
		}
		if list[0].Name != "a.xlsx" || list[1].Name != "b.csv" {
			t.Errorf("List() order = %s, %s", list[0].Name, list[1].Name)
		}
		if list[1].Version != "1" || list[1].Size != 4 || list[1].MimeType != "text/csv" {
			t.Errorf("List() latest = %+v", list[1])
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		ts := open(t)
		list, err := ts.store.List(context.Background())
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("List() = %v, want empty", list)
		}
	})

	t.Run("LoadVersions", func(t *testing.T) {
		ts := open(t)
		ctx := context.Background()

		mustSave(t, ts.store, "r.csv", "first", "text/csv")
		mustSave(t, ts.store, "r.csv", "second", "text/csv")

		latest, err := ts.store.Load(ctx, "r.csv", "")
		if err != nil {
			t.Fatalf("Load(latest) failed: %v", err)
		}
		if string(latest.Data) != "second" || latest.Version != "1" {
			t.Errorf("Load(latest) = %q@%s", latest.Data, latest.Version)
		}

		first, err := ts.store.Load(ctx, "r.csv", "0")
		if err != nil {
			t.Fatalf("Load(0) failed: %v", err)
		}
		if string(first.Data) != "first" {
			t.Errorf("Load(0) = %q", first.Data)
		}

		for _, tc := range []struct{ name, version string }{
			{"missing.csv", ""},
			{"r.csv", "7"},
			{"r.csv", "not-a-version"},
		} {
			if _, err := ts.store.Load(ctx, tc.name, artifact.Version(tc.version)); !errors.Is(err, artifact.ErrNotFound) {
				t.Errorf("Load(%s@%s) error = %v, want ErrNotFound", tc.name, tc.version, err)
			}
		}

		history, err := ts.store.Versions(ctx, "r.csv")
		if err != nil {
			t.Fatalf("Versions() failed: %v", err)
		}
		if len(history) != 2 || history[0].Version != "0" || history[1].Version != "1" {
			t.Errorf("Versions() = %+v", history)
		}
	})

	t.Run("ConcurrentSavesGetDistinctVersions", func(t *testing.T) {
		ts := open(t)
		ctx := context.Background()

		const writers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = make(map[artifact.Version]bool)
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := ts.store.Save(ctx, "shared.csv", []byte("x"), "text/csv")
				if err != nil {
					t.Errorf("Save() failed: %v", err)
					return
				}
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(seen) != writers {
			t.Errorf("got %d distinct versions, want %d", len(seen), writers)
		}
	})

	t.Run("PruneVersions", func(t *testing.T) {
		ts := open(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			mustSave(t, ts.store, "a.csv", fmt.Sprint(i), "text/csv")
		}
		mustSave(t, ts.store, "b.csv", "only", "text/csv")

		deleted, err := ts.store.(artifact.Pruner).PruneVersions(ctx, 2)
		if err != nil {
			t.Fatalf("PruneVersions() failed: %v", err)
		}
		if deleted != 3 {
			t.Errorf("PruneVersions() deleted %d, want 3", deleted)
		}

		history, _ := ts.store.Versions(ctx, "a.csv")
		if len(history) != 2 || history[0].Version != "3" {
			t.Errorf("Versions() after prune = %+v", history)
		}
		if v := mustSave(t, ts.store, "a.csv", "next", "text/csv"); v != "5" {
			t.Errorf("version after prune = %s, want 5", v)
		}
	})

	t.Run("PruneBeforeKeepsLatest", func(t *testing.T) {
		ts := open(t)
		ctx := context.Background()

		old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		ts.setNow(func() time.Time { return old })
		mustSave(t, ts.store, "a.csv", "old-0", "text/csv")
		mustSave(t, ts.store, "a.csv", "old-1", "text/csv")
		mustSave(t, ts.store, "solo.csv", "old", "text/csv")

		ts.setNow(func() time.Time { return old.Add(48 * time.Hour) })
		mustSave(t, ts.store, "a.csv", "new", "text/csv")

		deleted, err := ts.store.(artifact.Pruner).PruneBefore(ctx, old.Add(time.Hour))
		if err != nil {
			t.Fatalf("PruneBefore() failed: %v", err)
		}
		if deleted != 2 {
			t.Errorf("PruneBefore() deleted %d, want 2", deleted)
		}

		list, _ := ts.store.List(ctx)
		if len(list) != 2 {
			t.Errorf("List() after prune = %+v", list)
		}
	})
}

func mustSave(t *testing.T, store artifact.Store, name, data, mime string) artifact.Version {
	t.Helper()
	v, err := store.Save(context.Background(), name, []byte(data), mime)
	if err != nil {
		t.Fatalf("Save(%s) failed: %v", name, err)
	}
	return v
}

// TestMemoryStore tests the in-memory backend.
func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) testStore {
		s := NewMemoryStore()
		return testStore{store: s, setNow: func(now func() time.Time) { s.now = now }}
	})
}

// TestMemoryStore_CopiesPayload tests that callers cannot mutate stored bytes.
func TestMemoryStore_CopiesPayload(t *testing.T) {
	s := NewMemoryStore()
	data := []byte("abc")
	if _, err := s.Save(context.Background(), "a", data, "text/plain"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	data[0] = 'X'

	a, err := s.Load(context.Background(), "a", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(a.Data) != "abc" {
		t.Errorf("stored payload mutated: %q", a.Data)
	}
}

// TestMemoryStore_CanceledContext tests that a canceled context is a StoreError.
func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Save(ctx, "a", nil, "text/plain")
	var storeErr *artifact.StoreError
	if !errors.As(err, &storeErr) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected StoreError wrapping context.Canceled, got %v", err)
	}
}

func openSQLite(t *testing.T, driver string) testStore {
	t.Helper()
	s, err := NewSQLiteStore(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "artifacts.db"),
		Driver:       driver,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return testStore{store: s, setNow: func(now func() time.Time) { s.now = now }}
}

// TestSQLiteStore tests the SQLite backend on the cgo driver.
func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) testStore { return openSQLite(t, DriverCGO) })
}

// TestSQLiteStore_PureGo tests the SQLite backend on the pure-Go driver.
func TestSQLiteStore_PureGo(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) testStore { return openSQLite(t, DriverPureGo) })
}

// TestSQLiteStore_Reopen tests that data and schema survive a reopen.
func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "artifacts.db")
	config := DefaultSQLiteConfig()
	config.Path = path

	s, err := NewSQLiteStore(config)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	mustSave(t, s, "keep.csv", "data", "text/csv")
	s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	s, err = NewSQLiteStore(config)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	if v := mustSave(t, s, "keep.csv", "more", "text/csv"); v != "1" {
		t.Errorf("version after reopen = %s, want 1", v)
	}
}

// TestSQLiteDSN tests per-driver pragma encoding.
func TestSQLiteDSN(t *testing.T) {
	config := &SQLiteConfig{Path: "a.db", WALMode: true, BusyTimeout: 2 * time.Second}

	cgo, err := sqliteDSN(DriverCGO, config)
	if err != nil {
		t.Fatalf("sqliteDSN() failed: %v", err)
	}
	if cgo != "file:a.db?_busy_timeout=2000&_journal_mode=WAL" {
		t.Errorf("cgo DSN = %q", cgo)
	}

	pure, err := sqliteDSN(DriverPureGo, config)
	if err != nil {
		t.Fatalf("sqliteDSN() failed: %v", err)
	}
	if pure != "file:a.db?_pragma=busy_timeout%282000%29&_pragma=journal_mode%28WAL%29" {
		t.Errorf("pure-Go DSN = %q", pure)
	}

	if _, err := sqliteDSN("bogus", config); err == nil {
		t.Error("expected error for unknown driver")
	}
}

// TestMySQLStore tests the MySQL backend when TABULA_TEST_MYSQL_DSN is set.
func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("TABULA_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TABULA_TEST_MYSQL_DSN not set")
	}

	runStoreSuite(t, func(t *testing.T) testStore {
		config := DefaultMySQLConfig()
		config.DSN = dsn
		s, err := NewMySQLStore(context.Background(), config)
		if err != nil {
			t.Fatalf("NewMySQLStore() failed: %v", err)
		}
		if _, err := s.DB().Exec("DELETE FROM artifacts"); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return testStore{store: s, setNow: func(now func() time.Time) { s.now = now }}
	})
}

// TestMySQLStore_EmptyDSN tests configuration validation.
func TestMySQLStore_EmptyDSN(t *testing.T) {
	_, err := NewMySQLStore(context.Background(), &MySQLConfig{})
	var storeErr *artifact.StoreError
	if !errors.As(err, &storeErr) || storeErr.Operation != "open" {
		t.Errorf("expected open StoreError, got %v", err)
	}
}

// TestRedisStore tests the Redis backend when TABULA_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TABULA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TABULA_TEST_REDIS_ADDR not set")
	}

	n := 0
	runStoreSuite(t, func(t *testing.T) testStore {
		n++
		s, err := NewRedisStore(context.Background(), &RedisConfig{
			Address:   addr,
			KeyPrefix: fmt.Sprintf("tabula-test:%d:%d:", time.Now().UnixNano(), n),
		})
		if err != nil {
			t.Fatalf("NewRedisStore() failed: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return testStore{store: s, setNow: func(now func() time.Time) { s.now = now }}
	})
}

// TestOpen tests backend selection.
func TestOpen(t *testing.T) {
	store, err := Open(context.Background(), Config{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", store)
	}

	if _, err := Open(context.Background(), Config{Backend: "cassandra"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
