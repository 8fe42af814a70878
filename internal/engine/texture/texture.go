// Package texture provides image decoding and texture processing utilities.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/hellovr/pkg/formats"
)

// MaxDimension is the largest texture side a render model can store.
const MaxDimension = 65535

// Decode decodes PNG, JPEG, BMP or TGA data. TGA has no magic number, so it
// is selected by the name's extension.
func Decode(data []byte, name string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// Load reads and decodes an image file.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// ImageToRGBA converts any image.Image to *image.RGBA with origin (0, 0).
func ImageToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FitWithin scales img down, preserving aspect ratio, so neither side exceeds
// maxW by maxH. Images that already fit are returned unscaled.
func FitWithin(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return ImageToRGBA(img)
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ToRenderModelTexture converts img to a render model texture, scaling it
// down if it is larger than the format allows.
func ToRenderModelTexture(img image.Image) formats.RenderModelTexture {
	rgba := FitWithin(img, MaxDimension, MaxDimension)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()

	pixels := make([]byte, w*h*formats.BytesPerPixel)
	for y := 0; y < h; y++ {
		copy(pixels[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return formats.RenderModelTexture{Width: uint16(w), Height: uint16(h), Pixels: pixels}
}

// FromRenderModelTexture wraps render model texture pixels as an image.
func FromRenderModelTexture(t formats.RenderModelTexture) *image.RGBA {
	w, h := int(t.Width), int(t.Height)
	return &image.RGBA{
		Pix:    t.Pixels,
		Stride: w * formats.BytesPerPixel,
		Rect:   image.Rect(0, 0, w, h),
	}
}
