package retention

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/tabula/pkg/artifact/storage"
	"mercator-hq/tabula/pkg/config"
	"mercator-hq/tabula/pkg/telemetry/metrics"
)

// fakePruner records calls and returns fixed results.
type fakePruner struct {
	cutoff    time.Time
	keep      int
	ageCalls  int
	keepCalls int
	err       error
}

func (f *fakePruner) PruneVersions(ctx context.Context, keep int) (int64, error) {
	f.keepCalls++
	f.keep = keep
	return 2, f.err
}

func (f *fakePruner) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.ageCalls++
	f.cutoff = cutoff
	return 3, f.err
}

// TestPruner_Prune tests which phases run for a configuration.
func TestPruner_Prune(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		config      *Config
		wantDeleted int64
		wantAge     int
		wantKeep    int
	}{
		{name: "both phases", config: &Config{RetentionDays: 7, MaxVersions: 4}, wantDeleted: 5, wantAge: 1, wantKeep: 1},
		{name: "age only", config: &Config{RetentionDays: 7}, wantDeleted: 3, wantAge: 1},
		{name: "count only", config: &Config{MaxVersions: 4}, wantDeleted: 2, wantKeep: 1},
		{name: "disabled", config: &Config{}, wantDeleted: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePruner{}
			p := NewPruner(fake, tt.config)
			p.now = func() time.Time { return now }

			deleted, err := p.Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() = %d, want %d", deleted, tt.wantDeleted)
			}
			if fake.ageCalls != tt.wantAge || fake.keepCalls != tt.wantKeep {
				t.Errorf("calls age=%d keep=%d, want %d %d", fake.ageCalls, fake.keepCalls, tt.wantAge, tt.wantKeep)
			}
			if tt.wantAge > 0 && !fake.cutoff.Equal(now.AddDate(0, 0, -7)) {
				t.Errorf("cutoff = %v", fake.cutoff)
			}
			if tt.wantKeep > 0 && fake.keep != 4 {
				t.Errorf("keep = %d, want 4", fake.keep)
			}
		})
	}
}

// TestPruner_PruneError tests that store failures are returned.
func TestPruner_PruneError(t *testing.T) {
	fake := &fakePruner{err: errors.New("store down")}
	p := NewPruner(fake, &Config{RetentionDays: 1, MaxVersions: 1})

	if _, err := p.Prune(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if fake.keepCalls != 0 {
		t.Error("count phase ran after age phase failed")
	}
}

// TestPruner_MemoryStore tests pruning against a real store.
func TestPruner_MemoryStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for i := 0; i < 4; i++ {
		if _, err := store.Save(ctx, "r.csv", []byte("x"), "text/csv"); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	p := NewPruner(store, &Config{MaxVersions: 1})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() = %d, want 3", deleted)
	}

	versions, _ := store.Versions(ctx, "r.csv")
	if len(versions) != 1 || versions[0].Version != "3" {
		t.Errorf("Versions() = %+v", versions)
	}
}

// TestPruner_Metrics tests that prune runs are recorded.
func TestPruner_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	p := NewPruner(&fakePruner{}, &Config{RetentionDays: 30, MaxVersions: 5})
	p.SetMetrics(metrics.NewCollector(&config.MetricsConfig{Enabled: true}, registry))

	if _, err := p.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	expected := `
# HELP tabula_store_operations_total Total number of artifact store operations
# TYPE tabula_store_operations_total counter
tabula_store_operations_total{operation="prune",status="success"} 1
# HELP tabula_store_pruned_versions_total Total number of artifact versions removed by retention
# TYPE tabula_store_pruned_versions_total counter
tabula_store_pruned_versions_total 5
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"tabula_store_operations_total", "tabula_store_pruned_versions_total")
	if err != nil {
		t.Error(err)
	}
}

// TestScheduler_Start tests schedule validation and lifecycle.
func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "valid daily schedule", schedule: "0 3 * * *", wantRunning: true},
		{name: "valid hourly schedule", schedule: "0 * * * *", wantRunning: true},
		{name: "empty schedule", schedule: ""},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPruner(&fakePruner{}, &Config{PruneSchedule: tt.schedule, RetentionDays: 90})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := p.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if p.scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", p.scheduler.IsRunning(), tt.wantRunning)
			}

			next := p.NextPruning()
			if tt.wantRunning {
				if next == nil || !next.After(time.Now()) {
					t.Errorf("NextPruning() = %v, want a future time", next)
				}
			} else if next != nil {
				t.Errorf("NextPruning() = %v, want nil", next)
			}

			p.Stop()
			if p.scheduler.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

// TestScheduler_StopsOnCancel tests that context cancellation stops the scheduler.
func TestScheduler_StopsOnCancel(t *testing.T) {
	p := NewPruner(&fakePruner{}, &Config{PruneSchedule: "* * * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for p.scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.scheduler.IsRunning() {
		t.Error("scheduler still running after cancel")
	}
}
