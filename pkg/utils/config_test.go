package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := validateConfig(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Simulation.Speed = 45
	cfg.Server.WriteTimeout = 3 * time.Second
	cfg.Client.DataDir = filepath.Join(dir, "data")
	cfg.Client.SnapshotDir = filepath.Join(dir, "snapshots")

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(cfg.Client.SnapshotDir); err != nil {
		t.Errorf("snapshot directory not created: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Simulation.Speed != 45 {
		t.Errorf("expected speed 45, got %v", loaded.Simulation.Speed)
	}
	if loaded.Server.WriteTimeout != 3*time.Second {
		t.Errorf("expected 3s write timeout, got %v", loaded.Server.WriteTimeout)
	}
	if loaded.Camera.FOV != 75 || loaded.Viewport.Width != 800 {
		t.Errorf("unexpected camera/viewport %+v %+v", loaded.Camera, loaded.Viewport)
	}
}

func TestLoadConfigPartialFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "simulation:\n  speed: 10\n  frame_rate: 30\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Simulation.Speed != 10 || cfg.Simulation.FrameRate != 30 {
		t.Errorf("file values not applied: %+v", cfg.Simulation)
	}
	if cfg.Simulation.MaxDelta != 0.25 || cfg.Server.ListenAddr != ":8088" {
		t.Errorf("defaults not applied: %+v %+v", cfg.Simulation, cfg.Server)
	}
	if cfg.FrameInterval() != time.Second/30 {
		t.Errorf("unexpected frame interval %v", cfg.FrameInterval())
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("client:\n  log_level: info\n"), 0644)
	t.Setenv("ORRERY_SERVER_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("ORRERY_CLIENT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("env override ignored: %s", cfg.Server.ListenAddr)
	}
	if !cfg.Verbose() {
		t.Error("expected debug logging from the environment")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero speed", func(c *Config) { c.Simulation.Speed = 0 }, "speed"},
		{"huge speed", func(c *Config) { c.Simulation.Speed = 1e308 }, "speed"},
		{"frame rate", func(c *Config) { c.Simulation.FrameRate = 0 }, "frame rate"},
		{"viewport", func(c *Config) { c.Viewport.Height = 0 }, "viewport"},
		{"fov", func(c *Config) { c.Camera.FOV = 180 }, "fov"},
		{"planes", func(c *Config) { c.Camera.Far = c.Camera.Near }, "near < far"},
		{"rate", func(c *Config) { c.Server.CommandBurst = 0 }, "rate"},
		{"log level", func(c *Config) { c.Client.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("camera:\n  near: 5\n  far: 1\n"), 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an invalid config error")
	}
}
