package sprite

import (
	"fmt"
	"image/png"
	"io"
	"os"

	"pixelterm/internal/surface"
)

// Decode reads a PNG and returns an alpha-aware surface of the image's
// dimensions. Pixels with alpha below 50% or matching the #FF00FF colorkey
// are left Empty.
func Decode(r io.Reader) (*surface.Surface, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode png: empty %dx%d image", w, h)
	}

	s := surface.NewAlpha(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, a16 := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r8, g8, b8 := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)

			if a16 < 0x8000 || (r8 == 0xFF && g8 == 0x00 && b8 == 0xFF) {
				continue
			}
			i := s.Index(x, y)
			a8 := uint8(a16 >> 8)
			s.Color[i] = surface.RGB{R: r8, G: g8, B: b8}
			s.Shadow[i] = a8
			s.Alpha[i] = a8
		}
	}
	return s, nil
}

// LoadPNG reads a sprite from a PNG file.
func LoadPNG(path string) (*surface.Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
