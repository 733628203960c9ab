// Package compose merges ordered sprite lists into a destination surface.
//
// All three strategies share one contract: sprites are supplied
// nearest-first, the destination is never cleared here (callers reset it
// between frames with Clear), and sprites that hang over the destination
// edge are clipped up front so the inner loops run without bounds checks.
//
// The strategies differ in their branch profile, which matters more than
// their arithmetic. Opaque's only per-pixel branch is the source-empty
// check, which follows the sprite's shape — a static, highly predictable
// pattern. The same holds for AlphaOverOpaque and AlphaFull, which blend
// unconditionally once a source pixel is present. None of them branches on
// destination state, so cost does not depend on how sprites happen to
// overlap in a given frame.
package compose

import (
	"fmt"

	"pixelterm/internal/blend"
	"pixelterm/internal/surface"
)

// Strategy merges sprites, supplied nearest-first, into a destination.
type Strategy interface {
	Compose(sprites []*surface.Surface, dst *surface.Surface) error
}

// region is a sprite/destination overlap computed before the pixel loops.
type region struct {
	sx, sy int // top-left within the sprite
	dx, dy int // top-left within the destination
	w, h   int
}

// clip intersects src, placed at (src.X, src.Y), with the destination
// bounds. ok is false when nothing overlaps.
func clip(src, dst *surface.Surface) (r region, ok bool) {
	r = region{dx: src.X, dy: src.Y, w: src.W, h: src.H}
	if r.dx < 0 {
		r.sx -= r.dx
		r.w += r.dx
		r.dx = 0
	}
	if r.dy < 0 {
		r.sy -= r.dy
		r.h += r.dy
		r.dy = 0
	}
	if r.dx+r.w > dst.W {
		r.w = dst.W - r.dx
	}
	if r.dy+r.h > dst.H {
		r.h = dst.H - r.dy
	}
	return r, r.w > 0 && r.h > 0
}

func checkDst(dst *surface.Surface, needAlpha bool) error {
	if dst == nil || dst.W <= 0 || dst.H <= 0 {
		return fmt.Errorf("compose: unusable destination: %w", surface.ErrDimensionMismatch)
	}
	if needAlpha && dst.Alpha == nil {
		return fmt.Errorf("compose: destination has no alpha map: %w", surface.ErrDimensionMismatch)
	}
	return nil
}

// srcAlpha returns the per-pixel alpha slice of a sprite: the dedicated
// alpha map when present, otherwise the shadow map doubles as coverage.
func srcAlpha(s *surface.Surface) []uint8 {
	if s.Alpha != nil {
		return s.Alpha
	}
	return s.Shadow
}

// Opaque is the binary-transparency strategy: first writer wins in the
// supplied nearest-first order. It walks the list from the far end and
// overwrites unconditionally, so order alone enforces the winner and no
// per-pixel destination check exists to mispredict.
type Opaque struct{}

func (Opaque) Compose(sprites []*surface.Surface, dst *surface.Surface) error {
	if err := checkDst(dst, false); err != nil {
		return err
	}
	for i := len(sprites) - 1; i >= 0; i-- {
		stampOpaque(sprites[i], dst)
	}
	return nil
}

func stampOpaque(src, dst *surface.Surface) {
	r, ok := clip(src, dst)
	if !ok {
		return
	}
	for row := 0; row < r.h; row++ {
		si := (r.sy+row)*src.W + r.sx
		di := (r.dy+row)*dst.W + r.dx
		for col := 0; col < r.w; col++ {
			if src.Shadow[si] != surface.Empty {
				dst.Color[di] = src.Color[si]
				dst.Shadow[di] = surface.Opaque
			}
			si++
			di++
		}
	}
}

// AlphaOverOpaque blends alpha sprites over a destination that is already
// fully opaque (typically pre-filled with a background). Destination
// occupancy is left untouched.
type AlphaOverOpaque struct{}

func (AlphaOverOpaque) Compose(sprites []*surface.Surface, dst *surface.Surface) error {
	if err := checkDst(dst, false); err != nil {
		return err
	}
	for i := len(sprites) - 1; i >= 0; i-- {
		stampAlphaOpaque(sprites[i], dst)
	}
	return nil
}

func stampAlphaOpaque(src, dst *surface.Surface) {
	r, ok := clip(src, dst)
	if !ok {
		return
	}
	alpha := srcAlpha(src)
	for row := 0; row < r.h; row++ {
		si := (r.sy+row)*src.W + r.sx
		di := (r.dy+row)*dst.W + r.dx
		for col := 0; col < r.w; col++ {
			if src.Shadow[si] != surface.Empty {
				dst.Color[di] = blend.Over(src.Color[si], alpha[si], dst.Color[di])
			}
			si++
			di++
		}
	}
}

// AlphaFull blends alpha sprites over a destination that itself carries
// alpha, accumulating coverage as it goes. The accumulation is the identity
// on Empty destination pixels, so no occupancy-conditional write is needed.
// Requires a destination built with NewAlpha.
type AlphaFull struct{}

func (AlphaFull) Compose(sprites []*surface.Surface, dst *surface.Surface) error {
	if err := checkDst(dst, true); err != nil {
		return err
	}
	for i := len(sprites) - 1; i >= 0; i-- {
		stampAlphaFull(sprites[i], dst)
	}
	return nil
}

func stampAlphaFull(src, dst *surface.Surface) {
	r, ok := clip(src, dst)
	if !ok {
		return
	}
	alpha := srcAlpha(src)
	for row := 0; row < r.h; row++ {
		si := (r.sy+row)*src.W + r.sx
		di := (r.dy+row)*dst.W + r.dx
		for col := 0; col < r.w; col++ {
			if src.Shadow[si] != surface.Empty {
				c, a := blend.OverStraight(src.Color[si], alpha[si], dst.Color[di], dst.Alpha[di])
				dst.Color[di] = c
				dst.Alpha[di] = a
				dst.Shadow[di] = a
			}
			si++
			di++
		}
	}
}
