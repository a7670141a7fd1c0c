package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type ImageLoader struct{}

// Load decodes any registered image format into tightly packed RGBA8.
// params may be nil or *metadata.ImageResourceParams.
func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	flipY := false
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flipY = p.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image %s", path)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", path)
	}

	data := toRGBA(img, flipY)

	return &metadata.Resource{
		Name:     resourceName(path),
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(*metadata.Resource) error {
	return nil
}

func toRGBA(img image.Image, flipY bool) *metadata.ImageResourceData {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	width, height := b.Dx(), b.Dy()
	rowSize := width * 4
	pixels := make([]uint8, rowSize*height)
	for y := 0; y < height; y++ {
		srcY := y
		if flipY {
			srcY = height - 1 - y
		}
		copy(pixels[y*rowSize:(y+1)*rowSize], rgba.Pix[srcY*rgba.Stride:srcY*rgba.Stride+rowSize])
	}

	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(width),
		Height:       uint32(height),
		Pixels:       pixels,
	}
}
