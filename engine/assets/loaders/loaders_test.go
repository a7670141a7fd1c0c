package loaders

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
	"golang.org/x/image/bmp"
)

func spirvBlob(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func TestParseSPIRV(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ok   bool
	}{
		{"valid", spirvBlob(spirvMagic, 0x00010600, 0, 8, 0), true},
		{"empty", nil, false},
		{"unaligned", append(spirvBlob(spirvMagic), 0x01), false},
		{"bad magic", spirvBlob(0xdeadbeef, 0), false},
		{"big endian magic", []byte{0x07, 0x23, 0x02, 0x03}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSPIRV(tt.data)
			if !tt.ok {
				if !errors.Is(err, core.ErrInvalidSPIRV) {
					t.Fatalf("expected ErrInvalidSPIRV, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(s.Code) != len(tt.data)/4 || s.Code[1] != 0x00010600 {
				t.Fatalf("code = %x", s.Code)
			}
		})
	}
}

func TestShaderLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.spv")
	if err := os.WriteFile(path, spirvBlob(spirvMagic, 1, 2, 3), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := (&ShaderLoader{}).Load(path, metadata.ResourceTypeShader, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "shader" || res.DataSize != 16 {
		t.Fatalf("resource = %+v", res)
	}
	if _, ok := res.Data.(*metadata.ShaderResourceData); !ok {
		t.Fatalf("data type = %T", res.Data)
	}

	if _, err := (&ShaderLoader{}).Load(filepath.Join(dir, "missing.spv"), metadata.ResourceTypeShader, nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})
	return img
}

func TestImageLoaderPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	res, err := (&ImageLoader{}).Load(path, metadata.ResourceTypeImage, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := res.Data.(*metadata.ImageResourceData)
	if img.Width != 2 || img.Height != 2 || img.ChannelCount != 4 || len(img.Pixels) != 16 {
		t.Fatalf("image = %dx%d channels=%d len=%d", img.Width, img.Height, img.ChannelCount, len(img.Pixels))
	}
	want := []uint8{255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255, 255, 255, 255, 255}
	for i := range want {
		if img.Pixels[i] != want[i] {
			t.Fatalf("pixels = %v", img.Pixels)
		}
	}
}

func TestImageLoaderBMPFlipY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(f, testImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	res, err := (&ImageLoader{}).Load(path, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		t.Fatal(err)
	}
	img := res.Data.(*metadata.ImageResourceData)
	// first row is now the old bottom row: blue, white
	if img.Pixels[2] != 255 || img.Pixels[0] != 0 || img.Pixels[4] != 255 {
		t.Fatalf("flipped pixels = %v", img.Pixels)
	}
}
