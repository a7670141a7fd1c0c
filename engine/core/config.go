package core

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// EngineConfig is the on-disk engine configuration (avenir.toml).
type EngineConfig struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Log         LogConfig         `toml:"log"`
}

type ApplicationConfig struct {
	Name   string `toml:"name"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	API        string `toml:"api"`
	Validation bool   `toml:"validation"`
	Shader     string `toml:"shader"`
	Texture    string `toml:"texture"`
	HotReload  bool   `toml:"hot_reload"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Application: ApplicationConfig{
			Name:   "Avenir",
			Width:  960,
			Height: 720,
		},
		Renderer: RendererConfig{
			API:        "vulkan",
			Validation: true,
			Shader:     "shaders/shader.spv",
			Texture:    "textures/checker.png",
			HotReload:  false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the configuration at path on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*EngineConfig, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			LogWarn("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return nil, errors.Wrapf(ErrInvalidConfig, "%s: %s", path, sme.String())
		}
		return nil, errors.Wrapf(err, "failed to decode config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EngineConfig) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return errors.Wrapf(ErrInvalidConfig, "window size must be non-zero, got %dx%d", c.Application.Width, c.Application.Height)
	}
	switch strings.ToLower(c.Renderer.API) {
	case "vulkan", "directx", "metal", "opengl":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown renderer api %q", c.Renderer.API)
	}
	if c.Renderer.Shader == "" {
		return errors.Wrap(ErrInvalidConfig, "renderer shader path is empty")
	}
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
