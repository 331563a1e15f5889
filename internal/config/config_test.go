package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Database.Path != "blocklift.db" {
		t.Errorf("db path = %q, want blocklift.db", cfg.Database.Path)
	}
	if cfg.Session.LifetimeDays != 30 {
		t.Errorf("lifetime = %d, want 30", cfg.Session.LifetimeDays)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklift.yaml")
	yaml := `
server:
  addr: ":9090"
database:
  path: /var/lib/blocklift/data.db
session:
  lifetime_days: 7
  secure_cookies: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Database.Path != "/var/lib/blocklift/data.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Session.LifetimeDays != 7 || !cfg.Session.SecureCookies {
		t.Errorf("session = %+v", cfg.Session)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BLOCKLIFT_ADDR", ":7070")
	t.Setenv("BLOCKLIFT_DB_PATH", "override.db")
	t.Setenv("BLOCKLIFT_SECURE_COOKIES", "1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.Database.Path != "override.db" {
		t.Errorf("db path = %q, want override.db", cfg.Database.Path)
	}
	if !cfg.Session.SecureCookies {
		t.Error("secure cookies override not applied")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
