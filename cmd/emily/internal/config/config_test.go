package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != dir || cfg.Corpus != "" {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.DatabaseDir(); got != filepath.Join(dir, "db") {
		t.Errorf("DatabaseDir = %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestSetAndSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := LoadFrom(dir)
	sets := [][2]string{
		{"corpus", "s3://chorales/bach"},
		{"compose.max_attempts", "20000"},
		{"compose.cadence_wait", "3000"},
		{"s3.path_style", "true"},
		{"preview.bpm", "72.5"},
		{"database", "/var/lib/emily"},
	}
	for _, kv := range sets {
		if err := cfg.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%s) = %v", kv[0], err)
		}
	}
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Corpus != "s3://chorales/bach" || got.DatabaseDir() != "/var/lib/emily" {
		t.Errorf("paths = %q, %q", got.Corpus, got.DatabaseDir())
	}
	if got.Compose.MaxAttempts != 20000 || got.Compose.CadenceWait != 3000 || got.Compose.MinSteps != 0 {
		t.Errorf("compose = %+v", got.Compose)
	}
	if !got.S3.PathStyle || got.Preview.BPM != 72.5 {
		t.Errorf("s3 = %+v, preview = %+v", got.S3, got.Preview)
	}

	data, _ := os.ReadFile(got.Path())
	if !strings.Contains(string(data), "max_attempts: 20000") {
		t.Errorf("file = %s", data)
	}
}

func TestSetRejects(t *testing.T) {
	cfg, _ := LoadFrom(t.TempDir())
	if err := cfg.Set("compose.tempo", "1"); err == nil {
		t.Error("unknown key accepted")
	}
	if err := cfg.Set("compose.max_attempts", "many"); err == nil {
		t.Error("non-numeric attempts accepted")
	}
	if cfg.Compose.MaxAttempts != 0 {
		t.Errorf("failed Set changed config: %+v", cfg.Compose)
	}
}

func TestLoadFromBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("compose: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(dir); err == nil {
		t.Error("malformed config accepted")
	}
}
