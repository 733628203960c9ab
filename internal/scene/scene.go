// Package scene drives the animated demo: a simplex-noise backdrop with a
// set of orbiting alpha discs, rendered tick by tick. Each viewer owns one
// Renderer (destination surface + encoder), so independent sessions never
// share mutable state.
package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"pixelterm/internal/compose"
	"pixelterm/internal/encode"
	"pixelterm/internal/sprite"
	"pixelterm/internal/surface"
)

// TickRate is the animation rate in ticks per second.
const TickRate = 20

// SecsToTicks converts a duration in seconds to ticks.
func SecsToTicks(s float64) int {
	t := int(s * TickRate)
	if t < 1 {
		t = 1
	}
	return t
}

var (
	orbitPeriod = SecsToTicks(6.0) // one full revolution of the nearest disc
	driftPeriod = SecsToTicks(30.0) // background noise scroll cycle
)

const discCount = 5

// Scene holds the sprites of one animated view. The disc list returned by
// Frame is nearest-first, ready for the compositors.
type Scene struct {
	w, h  int
	noise *noise2D

	background *surface.Surface
	discs      []*surface.Surface
}

// New creates a scene for a w×h pixel view.
func New(w, h int, seed int64) *Scene {
	s := &Scene{noise: newNoise2D(seed)}
	s.Resize(w, h)
	return s
}

// Resize rebuilds the backing sprites for new pixel dimensions.
func (s *Scene) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s.w, s.h = w, h
	s.background = surface.New(w, h)

	// Disc diameter scales with the view; palette is an HCL ramp so
	// neighbors stay distinct at equal lightness.
	d := min(w, h) / 3
	if d < 4 {
		d = 4
	}
	s.discs = s.discs[:0]
	for i := 0; i < discCount; i++ {
		hue := float64(i) * 360.0 / discCount
		r, g, b := colorful.Hcl(hue, 0.6, 0.7).Clamped().RGB255()
		disc := sprite.Circle(d, surface.RGB{R: r, G: g, B: b})
		disc.Z = i
		s.discs = append(s.discs, disc)
	}
}

// Frame positions the sprites for the given tick and returns them
// nearest-first. The background is excluded; it is composited separately
// as the opaque base layer.
func (s *Scene) Frame(tick uint64) []*surface.Surface {
	s.paintBackground(tick)

	cx, cy := s.w/2, s.h/2
	for i, disc := range s.discs {
		// Each disc orbits slightly slower and wider than the one in
		// front of it.
		phase := float64(tick)/float64(orbitPeriod) + float64(i)/discCount
		radius := float64(min(s.w, s.h)) * (0.15 + 0.06*float64(i))
		disc.X = cx + int(radius*cosTurn(phase)) - disc.W/2
		disc.Y = cy + int(radius*sinTurn(phase)) - disc.H/2
	}
	return s.discs
}

// Background returns the opaque backdrop painted by the last Frame call.
func (s *Scene) Background() *surface.Surface {
	return s.background
}

// paintBackground shades the backdrop from slow-scrolling noise.
func (s *Scene) paintBackground(tick uint64) {
	drift := float64(tick) / float64(driftPeriod)
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			v := s.noise.at(float64(x)/24+drift, float64(y)/24)
			shade := uint8(22 + (v+1)*14)
			i := s.background.Index(x, y)
			s.background.Color[i] = surface.RGB{R: shade / 2, G: shade / 2, B: shade}
			s.background.Shadow[i] = surface.Opaque
		}
	}
}

// Renderer owns the per-viewer destination surface and encoder, reusing
// both across frames.
type Renderer struct {
	scene *Scene
	dst   *surface.Surface
	enc   *encode.Encoder

	base    compose.Opaque
	sprites compose.AlphaOverOpaque
	bgList  [1]*surface.Surface // scratch to keep Frame allocation-free
}

// NewRenderer creates a renderer for a terminal of cols×rows cells. Each
// cell holds two vertically stacked pixels.
func NewRenderer(cols, rows int, seed int64) *Renderer {
	w, h := pixelDims(cols, rows)
	return &Renderer{
		scene: New(w, h, seed),
		dst:   surface.New(w, h),
		enc:   encode.New(),
	}
}

// Resize adapts the renderer to a new terminal size.
func (r *Renderer) Resize(cols, rows int) {
	w, h := pixelDims(cols, rows)
	if w == r.dst.W && h == r.dst.H {
		return
	}
	r.scene.Resize(w, h)
	r.dst = surface.New(w, h)
}

// Frame composites and encodes one tick. The returned bytes are valid
// until the next call.
func (r *Renderer) Frame(tick uint64) ([]byte, error) {
	discs := r.scene.Frame(tick)

	r.dst.Clear()
	r.bgList[0] = r.scene.Background()
	if err := r.base.Compose(r.bgList[:], r.dst); err != nil {
		return nil, err
	}
	if err := r.sprites.Compose(discs, r.dst); err != nil {
		return nil, err
	}
	return r.enc.Encode(r.dst), nil
}

// pixelDims maps a terminal size to pixel dimensions. The bottom terminal
// row stays unused: the encoder terminates rows with newlines, and writing
// one on the last row would scroll the screen every frame.
func pixelDims(cols, rows int) (int, int) {
	if cols < 1 {
		cols = 1
	}
	rows--
	if rows < 1 {
		rows = 1
	}
	return cols, rows * 2
}

// cosTurn and sinTurn take whole turns instead of radians.
func cosTurn(t float64) float64 { return math.Cos(2 * math.Pi * t) }
func sinTurn(t float64) float64 { return math.Sin(2 * math.Pi * t) }
