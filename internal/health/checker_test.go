package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lifexp-app/lifexp/internal/infra/sqlite"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	c := NewChecker(&fakePinger{}, t.TempDir(), 0, nil)
	if len(c.checks) != 2 {
		t.Errorf("checks = %d, want 2", len(c.checks))
	}
	if c.interval <= 0 {
		t.Errorf("interval should default, got %v", c.interval)
	}

	c = NewChecker(&fakePinger{}, "", 0, nil)
	if len(c.checks) != 1 {
		t.Errorf("checks without data dir = %d, want 1", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	dir := t.TempDir()
	store, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	c := NewChecker(store, dir, 0, nil)
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("Statuses() = %d, want 2", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(&fakePinger{err: errors.New("down")}, "", 0, nil)

	// Before any run there are no statuses, so IsHealthy is vacuously true.
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_StoreDown(t *testing.T) {
	c := NewChecker(&fakePinger{err: errors.New("connection refused")}, "", 0, nil)
	c.RunOnce(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false when the store is down")
	}
	s := c.Statuses()[0]
	if s.Name != "store" || s.Healthy || s.Error != "connection refused" {
		t.Errorf("unexpected status: %+v", s)
	}
}

func TestChecker_DataDirRecovers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	c := NewChecker(&fakePinger{}, dir, 0, nil)

	c.RunOnce(context.Background())
	if c.IsHealthy() {
		t.Error("missing data dir should be reported")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("recovery should have created %s: %v", dir, err)
	}

	c.RunOnce(context.Background())
	if !c.IsHealthy() {
		t.Errorf("expected healthy after recovery: %+v", c.Statuses())
	}
}

func TestChecker_DataDirIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	os.WriteFile(f, []byte("x"), 0o644)

	if err := checkDataDir(f); err == nil {
		t.Error("expected error for a regular file")
	}
}

func TestChecker_Statuses_ReturnsCopy(t *testing.T) {
	c := NewChecker(&fakePinger{}, "", 0, nil)
	c.RunOnce(context.Background())

	s1 := c.Statuses()
	s1[0].Name = "modified"
	if c.Statuses()[0].Name == "modified" {
		t.Error("Statuses() should return a copy")
	}
}
