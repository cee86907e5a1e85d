package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.Port != want.Port || cfg.Exports.Kind != ExportsLocal || cfg.Badge.TextWidth != 50 || cfg.Badge.LineHeight != 1.1 {
		t.Errorf("Load() = %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Error("default env is not development")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
port: 9000
env: Production
catalog: backgrounds.yml
assets:
  root: ./public
  fetch_timeout: 3s
fonts:
  Sans-serif: fonts/OpenSans.ttf
badge:
  text_width: 80
sessions:
  idle_ttl: 5m
exports:
  kind: S3
  public_url: https://cards.example.com
  s3:
    bucket: exports
    region: auto
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr() != ":9000" || cfg.IsDev() || cfg.Catalog != "backgrounds.yml" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Assets.Root != "./public" || cfg.Assets.FetchTimeout != 3*time.Second || cfg.Assets.BadgeImage != defaultBadgeImage {
		t.Errorf("assets = %+v", cfg.Assets)
	}
	if cfg.Badge.TextWidth != 80 || cfg.Badge.LineHeight != 1.1 {
		t.Errorf("badge = %+v", cfg.Badge)
	}
	if cfg.Sessions.IdleTTL != 5*time.Minute || cfg.Sessions.DefaultWidth != defaultCanvasWidth {
		t.Errorf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Exports.Kind != ExportsS3 || cfg.Fonts["Sans-serif"] != "fonts/OpenSans.ttf" {
		t.Errorf("exports = %+v fonts = %v", cfg.Exports, cfg.Fonts)
	}
}

func TestLoadPortOverride(t *testing.T) {
	t.Setenv("PORT", "7001")
	cfg, err := Load(writeConfig(t, "port: 9000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7001 {
		t.Errorf("Port = %d, want 7001", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("PORT", "")
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "prot: 1\n", "field prot not found"},
		{"bad port", "port: 70000\n", "invalid port"},
		{"bad env", "env: staging\n", "invalid env"},
		{"bad badge", "badge: {text_width: -1}\n", "badge.text_width"},
		{"bad kind", "exports: {kind: ftp}\n", "unknown exports.kind"},
		{"redis without url", "exports: {kind: redis}\n", "redis_url"},
		{"s3 without bucket", "exports: {kind: s3}\n", "exports.s3.bucket"},
		{"max too large", "sessions: {max_width: 20000}\n", "sessions.max_width"},
		{"default above max", "sessions: {max_width: 1000}\n", "exceeds sessions.max_width"},
		{"bad duration", "sessions: {idle_ttl: soon}\n", "time.Duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseEmptyKindDisablesExports(t *testing.T) {
	cfg := Default()
	if err := Parse([]byte("exports: {kind: ''}\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Exports.Kind != ExportsNone {
		t.Errorf("Kind = %q, want none", cfg.Exports.Kind)
	}
}
