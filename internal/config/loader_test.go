package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	if cfg.Addr != Default().Addr || cfg.RoomCapacity != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.ICEServers) != 1 || cfg.ICEServers[0].URLs[0] != "stun:stun.l.google.com:19302" {
		t.Fatalf("unexpected ice servers: %+v", cfg.ICEServers)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
addr: ":9000"
room_capacity: 8
empty_room_ttl: 30s
ice_servers:
  - urls: ["turn:turn.example.com:3478"]
    username: user
    credential: pass
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MEETSIGNAL_ROOM_CAPACITY", "12")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("expected addr from file, got %s", cfg.Addr)
	}
	if cfg.RoomCapacity != 12 {
		t.Fatalf("expected env to win, got %d", cfg.RoomCapacity)
	}
	if cfg.EmptyRoomTTL != 30*time.Second {
		t.Fatalf("unexpected empty_room_ttl: %v", cfg.EmptyRoomTTL)
	}
	if len(cfg.ICEServers) != 1 || cfg.ICEServers[0].Username != "user" || cfg.ICEServers[0].Credential != "pass" {
		t.Fatalf("unexpected ice servers: %+v", cfg.ICEServers)
	}
}

func TestLoadRejectsInvalidCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("room_capacity: -1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(nil, path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", LogLevel: "debug"})
	if cfg.Addr != ":1234" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RoomCapacity != 100 {
		t.Fatalf("zero override must keep existing value, got %d", cfg.RoomCapacity)
	}
}

func TestLoadEnvOnlyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MEETSIGNAL_ALLOWED_ORIGINS", "app.example.com,*.example.org")
	t.Setenv("MEETSIGNAL_WRITE_TIMEOUT", "250ms")
	t.Setenv("MEETSIGNAL_JWT_SECRET", "s3cret")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "*.example.org" {
		t.Fatalf("expected comma separated origins from env, got %v", cfg.AllowedOrigins)
	}
	if cfg.WriteTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected write_timeout: %v", cfg.WriteTimeout)
	}
	if !cfg.AuthEnabled() {
		t.Fatalf("expected jwt_secret from env to enable auth")
	}
}

func TestDefaultTemplateUsesReadableDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if _, _, err := Load(nil, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.Contains(string(data), "empty_room_ttl: 10m0s") {
		t.Fatalf("expected human readable durations in template:\n%s", data)
	}
}
