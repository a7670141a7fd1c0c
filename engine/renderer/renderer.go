package renderer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/avenir/engine/assets"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/platform"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
	"github.com/spaghettifunk/avenir/engine/renderer/vulkan"
	"golang.org/x/sync/errgroup"
)

type GraphicsAPI uint8

const (
	GraphicsAPIVulkan GraphicsAPI = iota
	GraphicsAPIDirectX
	GraphicsAPIMetal
	GraphicsAPIOpenGL
)

func (a GraphicsAPI) String() string {
	switch a {
	case GraphicsAPIVulkan:
		return "vulkan"
	case GraphicsAPIDirectX:
		return "directx"
	case GraphicsAPIMetal:
		return "metal"
	case GraphicsAPIOpenGL:
		return "opengl"
	}
	return "unknown"
}

func ParseGraphicsAPI(s string) (GraphicsAPI, error) {
	switch strings.ToLower(s) {
	case "vulkan":
		return GraphicsAPIVulkan, nil
	case "directx":
		return GraphicsAPIDirectX, nil
	case "metal":
		return GraphicsAPIMetal, nil
	case "opengl":
		return GraphicsAPIOpenGL, nil
	}
	return 0, errors.Wrapf(core.ErrUnsupportedGraphicsAPI, "%q", s)
}

type Renderer interface {
	DrawFrame(view mgl32.Mat4) error
	OnFramebufferResize(width, height int)
	Shutdown() error
}

// sceneAssets is what the renderer uploads at start up.
type sceneAssets struct {
	shader  *metadata.ShaderResourceData
	texture *metadata.ImageResourceData
}

// loadSceneAssets reads the shader and the texture concurrently.
func loadSceneAssets(ctx context.Context, am *assets.AssetManager, cfg *core.RendererConfig) (*sceneAssets, error) {
	out := &sceneAssets{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		shader, err := am.LoadShader(cfg.Shader)
		if err != nil {
			return errors.Wrapf(err, "failed to load shader %s", cfg.Shader)
		}
		out.shader = shader
		return nil
	})
	g.Go(func() error {
		texture, err := am.LoadImage(cfg.Texture, &metadata.ImageResourceParams{})
		if err != nil {
			return errors.Wrapf(err, "failed to load texture %s", cfg.Texture)
		}
		out.texture = texture
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create builds the renderer for api and subscribes it to the window's framebuffer resizes.
func Create(window *platform.Window, api GraphicsAPI, cfg *core.EngineConfig, am *assets.AssetManager) (Renderer, error) {
	if api != GraphicsAPIVulkan {
		err := errors.Wrapf(core.ErrUnsupportedGraphicsAPI, "%s", api)
		core.LogError("%s", err)
		return nil, err
	}

	loaded, err := loadSceneAssets(context.Background(), am, &cfg.Renderer)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	shaderPath := cfg.Renderer.Shader
	r, err := vulkan.NewVulkanRenderer(window, vulkan.VulkanRendererConfig{
		AppName:    cfg.Application.Name,
		Validation: cfg.Renderer.Validation,
		Shader:     loaded.shader,
		Texture:    loaded.texture,
		LoadShader: func() (*metadata.ShaderResourceData, error) {
			return am.LoadShader(shaderPath)
		},
	})
	if err != nil {
		return nil, err
	}

	window.RegisterFramebufferSizeListener(r, r.OnFramebufferResize)

	if cfg.Renderer.HotReload {
		watchShader(am, shaderPath, r.OnShaderChanged)
	}
	return r, nil
}

// watchShader calls onChange whenever the file at shaderPath is rewritten.
func watchShader(am *assets.AssetManager, shaderPath string, onChange func()) {
	want := filepath.Clean(shaderPath)
	am.OnChange(func(path string, assetType metadata.ResourceType) {
		if assetType == metadata.ResourceTypeShader && filepath.Clean(path) == want {
			onChange()
		}
	})
	if err := am.Watch(filepath.Dir(want)); err != nil {
		core.LogWarn("shader hot reload disabled: %s", err)
	}
}
