// Package blend implements the "over" compositing operator on straight
// (non-premultiplied) 8-bit color.
//
// All arithmetic is fixed-point with an exact round-to-nearest divide by
// 255, so repeated composites do not drift dark. The per-channel path is
// branch-free: alpha 0 and alpha 255 run through the same instructions as
// every other value.
package blend

import "pixelterm/internal/surface"

// div255 returns round(v / 255) for v in [0, 255*255].
func div255(v uint32) uint8 {
	t := v + 128
	return uint8((t + (t >> 8)) >> 8)
}

// Over composites fg over an opaque background, weighted by alpha.
func Over(fg surface.RGB, alpha uint8, bg surface.RGB) surface.RGB {
	a := uint32(alpha)
	na := 255 - a
	return surface.RGB{
		R: div255(uint32(fg.R)*a + uint32(bg.R)*na),
		G: div255(uint32(fg.G)*a + uint32(bg.G)*na),
		B: div255(uint32(fg.B)*a + uint32(bg.B)*na),
	}
}

// AccumulateAlpha returns the destination alpha after compositing a source
// with alpha src over a destination with alpha dst: sa + da*(1-sa).
// The result never exceeds 255 and is 255 whenever src is 255.
func AccumulateAlpha(src, dst uint8) uint8 {
	return src + div255(uint32(dst)*uint32(255-src))
}

// OverStraight composites fg (alpha sa) over a non-opaque background bg
// (alpha da) and returns the resulting color and alpha. When da is 0 the
// result is exactly (fg, sa); when both alphas are 0 the result is zero.
func OverStraight(fg surface.RGB, sa uint8, bg surface.RGB, da uint8) (surface.RGB, uint8) {
	// Background weight after the source covers it.
	w := uint32(div255(uint32(da) * uint32(255-sa)))
	den := uint32(sa) + w // equals the accumulated alpha
	if den == 0 {
		return surface.RGB{}, 0
	}
	s := uint32(sa)
	half := den / 2
	out := surface.RGB{
		R: uint8((uint32(fg.R)*s + uint32(bg.R)*w + half) / den),
		G: uint8((uint32(fg.G)*s + uint32(bg.G)*w + half) / den),
		B: uint8((uint32(fg.B)*s + uint32(bg.B)*w + half) / den),
	}
	return out, uint8(den)
}
