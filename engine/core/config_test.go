package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avenir.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if *cfg != *def {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[application]
name = "Simple FPS"
width = 1280

[renderer]
validation = false

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Application.Name != "Simple FPS" || cfg.Application.Width != 1280 {
		t.Errorf("application section not applied: %+v", cfg.Application)
	}
	if cfg.Application.Height != 720 {
		t.Errorf("height should keep its default, got %d", cfg.Application.Height)
	}
	if cfg.Renderer.Validation {
		t.Errorf("validation should be disabled")
	}
	if cfg.Renderer.Shader != "shaders/shader.spv" {
		t.Errorf("shader should keep its default, got %q", cfg.Renderer.Shader)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
[renderer]
msaa = 4
`)
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *EngineConfig)
		ok     bool
	}{
		{"defaults", func(c *EngineConfig) {}, true},
		{"zero width", func(c *EngineConfig) { c.Application.Width = 0 }, false},
		{"zero height", func(c *EngineConfig) { c.Application.Height = 0 }, false},
		{"upper case api", func(c *EngineConfig) { c.Renderer.API = "Vulkan" }, true},
		{"unknown api", func(c *EngineConfig) { c.Renderer.API = "glide" }, false},
		{"empty shader", func(c *EngineConfig) { c.Renderer.Shader = "" }, false},
		{"bad level", func(c *EngineConfig) { c.Log.Level = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if err := SetLogLevel(lvl); err != nil {
			t.Errorf("SetLogLevel(%q): %v", lvl, err)
		}
	}
	if err := SetLogLevel("verbose"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	_ = SetLogLevel("info")
}
