package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"worklog/internal/config"
	"worklog/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"memory", "memory", false},
		{"sqlite", "sqlite", false},
		{"sheets is gone", "sheets", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(&config.Config{DataBackend: tt.backend, SQLiteDBPath: "x.db"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Type.String() != tt.backend {
				t.Fatalf("type = %s", cfg.Type)
			}
		})
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, true},
		{"unknown", Config{Type: "postgres"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if res.Repository != nil {
		t.Fatal("memory backend must not have a repository")
	}
	if got := len(res.Service.Jobs()); got != len(core.DefaultJobs()) {
		t.Fatalf("jobs = %d, want default %d", got, len(core.DefaultJobs()))
	}
	if err := res.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
}

func TestCreateMemoryBackend_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{"jobs":[{"id":"j","name":"Seeded","hourlyRate":10,"currency":"EUR","schedule":[1]}],"entries":[]}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	jobs := res.Service.Jobs()
	if len(jobs) != 1 || jobs[0].Name != "Seeded" {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestCreateSQLiteBackend_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "worklog.db")}

	first, err := NewFactory(nil).CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if got := len(first.Service.Jobs()); got != len(core.DefaultJobs()) {
		t.Fatalf("empty database should be seeded, got %d jobs", got)
	}
	entry, err := first.Service.AddEntry(ctx, core.WorkEntry{
		JobID: "job-1",
		Date:  "2024-03-11",
		Kind:  core.TimeRange{Start: "22:00", End: "02:00"},
	})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := first.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := first.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	second, err := NewFactory(nil).CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Cleanup()

	got, ok := second.Service.EntryByID(entry.ID)
	if !ok {
		t.Fatalf("entry %s not reloaded", entry.ID)
	}
	if core.HoursFor(got) != 4 {
		t.Fatalf("reloaded hours = %v, want 4", core.HoursFor(got))
	}
	if n := len(second.Service.Jobs()); n != len(core.DefaultJobs()) {
		t.Fatalf("defaults seeded twice: %d jobs", n)
	}
}
