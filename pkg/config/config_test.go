package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Camera.Backend != BackendHeadless {
		t.Errorf("backend = %q, want headless", cfg.Camera.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Viewport.Width != 1280 || cfg.Viewport.Height != 720 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Server.AuthEnabled() {
		t.Error("auth must be off without credentials")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.yaml")
	data := []byte(`
log:
  level: debug
camera:
  backend: process
  width: 1280
torch:
  enabled: true
  pin: 22
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAMERA_PREVIEW_CAMERA_WIDTH", "320")
	t.Setenv("CAMERA_PREVIEW_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Camera.Backend != BackendProcess {
		t.Errorf("backend = %q", cfg.Camera.Backend)
	}
	if cfg.Camera.Width != 320 {
		t.Errorf("env must override file, width = %d", cfg.Camera.Width)
	}
	if cfg.Camera.Height != 480 {
		t.Errorf("height default lost: %d", cfg.Camera.Height)
	}
	if !cfg.Torch.Enabled || cfg.Torch.Pin != 22 {
		t.Errorf("torch = %+v", cfg.Torch)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Camera.Backend = "v4l" }},
		{"zero viewport", func(c *Config) { c.Viewport.Width = 0 }},
		{"user without password", func(c *Config) { c.Server.Username = "admin" }},
		{"login without secret", func(c *Config) {
			c.Server.Username = "admin"
			c.Server.Password = "secret"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
