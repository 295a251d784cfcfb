package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Cache.Size != 100 {
		t.Fatalf("cache.size=%d want=100", cfg.Cache.Size)
	}
	if cfg.Sync.Pace != 200*time.Millisecond {
		t.Fatalf("sync.pace=%s want=200ms", cfg.Sync.Pace)
	}
	if cfg.Sync.CutoffHour != 21 {
		t.Fatalf("sync.cutoff_hour=%d want=21", cfg.Sync.CutoffHour)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("db.driver=%q want=sqlite", cfg.DB.Driver)
	}
	if cfg.History.MaxEntries != 500 || !cfg.History.RecordGenerated {
		t.Fatalf("history=%+v", cfg.History)
	}
	if cfg.Favorites.Path != "data/favorites.json" {
		t.Fatalf("favorites.path=%q", cfg.Favorites.Path)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("cache:\n  size: 7\nsync:\n  draw_day: friday\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Cache.Size != 7 {
		t.Fatalf("cache.size=%d want=7", cfg.Cache.Size)
	}
	if cfg.Sync.Weekday() != time.Friday {
		t.Fatalf("weekday=%s want=Friday", cfg.Sync.Weekday())
	}
}

func TestSyncConfig_LocationFallback(t *testing.T) {
	loc := SyncConfig{Timezone: "Not/AZone"}.Location()
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != 9*60*60 {
		t.Fatalf("offset=%d want=%d", offset, 9*60*60)
	}
}
