// Package sprite produces ready-to-composite surfaces, either
// procedurally or from PNG files.
package sprite

import (
	"math"

	"pixelterm/internal/surface"
)

// Solid returns a fully opaque w×h surface filled with c.
func Solid(w, h int, c surface.RGB) *surface.Surface {
	s := surface.New(w, h)
	s.Fill(c)
	return s
}

// Checker returns an opaque w×h checkerboard with squares of the given
// size alternating between a and b.
func Checker(w, h, square int, a, b surface.RGB) *surface.Surface {
	if square < 1 {
		square = 1
	}
	s := surface.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := s.Index(x, y)
			if (x/square+y/square)%2 == 0 {
				s.Color[i] = a
			} else {
				s.Color[i] = b
			}
			s.Shadow[i] = surface.Opaque
		}
	}
	return s
}

// Circle returns an alpha-aware d×d surface containing a disc of color c.
// The rim fades over one pixel; corners outside the disc stay Empty.
func Circle(d int, c surface.RGB) *surface.Surface {
	s := surface.NewAlpha(d, d)
	r := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			px := float64(x) + 0.5 - r
			py := float64(y) + 0.5 - r
			dist := math.Sqrt(px*px + py*py)
			cover := r - dist + 0.5
			if cover <= 0 {
				continue
			}
			if cover > 1 {
				cover = 1
			}
			a := uint8(math.Round(cover * 255))
			i := s.Index(x, y)
			s.Color[i] = c
			s.Shadow[i] = a
			s.Alpha[i] = a
		}
	}
	return s
}
