package renderer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/avenir/engine/assets"
	"github.com/spaghettifunk/avenir/engine/core"
)

func TestParseGraphicsAPI(t *testing.T) {
	tests := []struct {
		in   string
		want GraphicsAPI
	}{
		{"vulkan", GraphicsAPIVulkan},
		{"Vulkan", GraphicsAPIVulkan},
		{"directx", GraphicsAPIDirectX},
		{"metal", GraphicsAPIMetal},
		{"OPENGL", GraphicsAPIOpenGL},
	}
	for _, tt := range tests {
		got, err := ParseGraphicsAPI(tt.in)
		if err != nil {
			t.Fatalf("ParseGraphicsAPI(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseGraphicsAPI(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if again, _ := ParseGraphicsAPI(got.String()); again != got {
			t.Errorf("%s does not round trip", got)
		}
	}

	if _, err := ParseGraphicsAPI("glide"); !errors.Is(err, core.ErrUnsupportedGraphicsAPI) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateRejectsUnimplementedAPIs(t *testing.T) {
	for _, api := range []GraphicsAPI{GraphicsAPIDirectX, GraphicsAPIMetal, GraphicsAPIOpenGL} {
		r, err := Create(nil, api, core.DefaultConfig(), nil)
		if r != nil || !errors.Is(err, core.ErrUnsupportedGraphicsAPI) {
			t.Errorf("Create(%s) = %v, %v", api, r, err)
		}
	}
}

func TestWatchShaderOnlyFiresForTheShader(t *testing.T) {
	dir := t.TempDir()
	shader := filepath.Join(dir, "shader.spv")
	other := filepath.Join(dir, "other.spv")

	am, err := assets.NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Close()

	fired := make(chan struct{}, 8)
	watchShader(am, shader, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	if err := os.WriteFile(other, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
		t.Fatal("a different shader triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(shader, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the shader changed")
	}
}
