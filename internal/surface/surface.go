package surface

import (
	"errors"
	"fmt"
	"sort"
)

// Shadow map markers. The binary compositor only distinguishes Empty from
// not-Empty; the alpha compositors read intermediate values as coverage.
const (
	Empty  uint8 = 0
	Opaque uint8 = 255
)

var (
	// ErrOutOfBounds reports a pixel access outside the surface dimensions.
	ErrOutOfBounds = errors.New("surface: out of bounds")

	// ErrDimensionMismatch reports a destination surface that cannot be
	// composited into (zero area, or missing maps a strategy needs).
	// Sprites placed partially or fully outside a valid destination are
	// clipped, never rejected with this error.
	ErrDimensionMismatch = errors.New("surface: dimension mismatch")
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Pixel is a single pixel read back from a surface.
type Pixel struct {
	Color  RGB
	Shadow uint8
	Alpha  uint8
}

// Surface is a fixed-size grid of pixels with a per-pixel shadow map.
// All maps are row-major with index y*W+x and are allocated once at
// construction; Clear reuses the backing storage so a surface can be
// recycled across frames without allocating.
type Surface struct {
	W, H int

	// Color holds one RGB triple per pixel. An entry whose Shadow is Empty
	// carries no meaning and is never read by the compositors.
	Color []RGB

	// Shadow marks per-pixel occupancy: Empty, Opaque, or a coverage value
	// in between for alpha-aware surfaces.
	Shadow []uint8

	// Alpha is the per-pixel source alpha of an alpha-aware surface.
	// Nil for binary-transparency surfaces.
	Alpha []uint8

	// X, Y place the surface's top-left corner in the shared output
	// coordinate space of a destination surface.
	X, Y int

	// Z is the draw-order key: smaller is nearer the viewer.
	Z int
}

// New returns a zeroed w×h surface with all shadow entries Empty.
// Dimensions must be positive.
func New(w, h int) *Surface {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("surface: invalid dimensions %dx%d", w, h))
	}
	return &Surface{
		W:      w,
		H:      h,
		Color:  make([]RGB, w*h),
		Shadow: make([]uint8, w*h),
	}
}

// NewAlpha returns a zeroed alpha-aware w×h surface.
func NewAlpha(w, h int) *Surface {
	s := New(w, h)
	s.Alpha = make([]uint8, w*h)
	return s
}

// Index returns the map index for (x, y). Callers must have checked bounds.
func (s *Surface) Index(x, y int) int {
	return y*s.W + x
}

// InBounds reports whether (x, y) lies within the surface.
func (s *Surface) InBounds(x, y int) bool {
	return x >= 0 && x < s.W && y >= 0 && y < s.H
}

// At returns the pixel at (x, y).
func (s *Surface) At(x, y int) (Pixel, error) {
	if !s.InBounds(x, y) {
		return Pixel{}, fmt.Errorf("at (%d,%d) on %dx%d: %w", x, y, s.W, s.H, ErrOutOfBounds)
	}
	i := s.Index(x, y)
	p := Pixel{Color: s.Color[i], Shadow: s.Shadow[i]}
	if s.Alpha != nil {
		p.Alpha = s.Alpha[i]
	}
	return p, nil
}

// Set writes a fully opaque pixel at (x, y).
func (s *Surface) Set(x, y int, c RGB) error {
	if !s.InBounds(x, y) {
		return fmt.Errorf("set (%d,%d) on %dx%d: %w", x, y, s.W, s.H, ErrOutOfBounds)
	}
	i := s.Index(x, y)
	s.Color[i] = c
	s.Shadow[i] = Opaque
	if s.Alpha != nil {
		s.Alpha[i] = Opaque
	}
	return nil
}

// SetAlpha writes a pixel with explicit alpha at (x, y). The shadow entry
// mirrors the alpha value, so alpha 0 leaves the pixel Empty.
func (s *Surface) SetAlpha(x, y int, c RGB, alpha uint8) error {
	if !s.InBounds(x, y) {
		return fmt.Errorf("set (%d,%d) on %dx%d: %w", x, y, s.W, s.H, ErrOutOfBounds)
	}
	i := s.Index(x, y)
	s.Color[i] = c
	s.Shadow[i] = alpha
	if s.Alpha != nil {
		s.Alpha[i] = alpha
	}
	return nil
}

// Clear resets every shadow (and alpha) entry to Empty without touching the
// backing storage, so repeated frames allocate nothing.
func (s *Surface) Clear() {
	for i := range s.Shadow {
		s.Shadow[i] = Empty
	}
	for i := range s.Alpha {
		s.Alpha[i] = Empty
	}
}

// Fill makes the whole surface opaque with the given color.
func (s *Surface) Fill(c RGB) {
	for i := range s.Color {
		s.Color[i] = c
	}
	for i := range s.Shadow {
		s.Shadow[i] = Opaque
	}
	for i := range s.Alpha {
		s.Alpha[i] = Opaque
	}
}

// SortNearestFirst orders sprites by ascending Z (nearest first), the order
// the compositors expect. The sort is stable so equal-Z sprites keep their
// supplied relative order.
func SortNearestFirst(sprites []*Surface) {
	sort.SliceStable(sprites, func(i, j int) bool {
		return sprites[i].Z < sprites[j].Z
	})
}
