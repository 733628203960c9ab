package compose

import (
	"bytes"
	"errors"
	"testing"

	"pixelterm/internal/encode"
	"pixelterm/internal/surface"
)

var (
	red   = surface.RGB{R: 255}
	green = surface.RGB{G: 255}
	blue  = surface.RGB{B: 255}
)

// opaqueSprite builds a fully opaque w×h sprite at (x, y).
func opaqueSprite(w, h, x, y int, c surface.RGB) *surface.Surface {
	s := surface.New(w, h)
	s.Fill(c)
	s.X, s.Y = x, y
	return s
}

// alphaSprite builds a uniform-alpha w×h sprite at (x, y).
func alphaSprite(w, h, x, y int, c surface.RGB, alpha uint8) *surface.Surface {
	s := surface.NewAlpha(w, h)
	for i := range s.Color {
		s.Color[i] = c
		s.Shadow[i] = alpha
		s.Alpha[i] = alpha
	}
	s.X, s.Y = x, y
	return s
}

// TestOpaqueScenario is the canonical two-sprite case: red 2×2 at (0,0)
// nearest, blue 2×2 at (1,1) behind it, onto a cleared 3×3 destination.
func TestOpaqueScenario(t *testing.T) {
	dst := surface.New(3, 3)
	sprites := []*surface.Surface{
		opaqueSprite(2, 2, 0, 0, red),
		opaqueSprite(2, 2, 1, 1, blue),
	}

	if err := (Opaque{}).Compose(sprites, dst); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		x, y   int
		want   surface.RGB
		shadow uint8
	}{
		{"red corner", 0, 0, red, surface.Opaque},
		{"red right edge", 1, 0, red, surface.Opaque},
		{"red bottom edge", 0, 1, red, surface.Opaque},
		{"overlap goes to nearest", 1, 1, red, surface.Opaque},
		{"blue right", 2, 1, blue, surface.Opaque},
		{"blue bottom", 1, 2, blue, surface.Opaque},
		{"blue corner", 2, 2, blue, surface.Opaque},
		{"untouched top-right", 2, 0, surface.RGB{}, surface.Empty},
		{"untouched bottom-left", 0, 2, surface.RGB{}, surface.Empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := dst.At(tt.x, tt.y)
			if err != nil {
				t.Fatal(err)
			}
			if p.Shadow != tt.shadow {
				t.Fatalf("(%d,%d) shadow = %d, want %d", tt.x, tt.y, p.Shadow, tt.shadow)
			}
			if p.Shadow != surface.Empty && p.Color != tt.want {
				t.Errorf("(%d,%d) color = %v, want %v", tt.x, tt.y, p.Color, tt.want)
			}
		})
	}
}

// TestOpaqueFirstWriterWins checks the winner against a brute-force
// reference for deliberately irregular offsets.
func TestOpaqueFirstWriterWins(t *testing.T) {
	dst := surface.New(40, 40)
	sprites := []*surface.Surface{
		opaqueSprite(16, 16, 3, 5, red),
		opaqueSprite(16, 16, 10, 1, green),
		opaqueSprite(16, 16, 7, 11, blue),
		opaqueSprite(16, 16, 14, 9, surface.RGB{R: 50, G: 60, B: 70}),
	}

	if err := (Opaque{}).Compose(sprites, dst); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < dst.H; y++ {
		for x := 0; x < dst.W; x++ {
			// Nearest covering sprite is the reference winner.
			var want *surface.Surface
			for _, sp := range sprites {
				if x >= sp.X && x < sp.X+sp.W && y >= sp.Y && y < sp.Y+sp.H {
					want = sp
					break
				}
			}
			p, err := dst.At(x, y)
			if err != nil {
				t.Fatal(err)
			}
			if want == nil {
				if p.Shadow != surface.Empty {
					t.Fatalf("(%d,%d) occupied, want Empty", x, y)
				}
				continue
			}
			if p.Shadow == surface.Empty {
				t.Fatalf("(%d,%d) Empty, want covered", x, y)
			}
			if p.Color != want.Color[0] {
				t.Fatalf("(%d,%d) = %v, want %v", x, y, p.Color, want.Color[0])
			}
		}
	}
}

func TestComposeIdempotent(t *testing.T) {
	sprites := []*surface.Surface{
		opaqueSprite(5, 5, 2, 2, red),
		opaqueSprite(5, 5, 4, 4, blue),
	}
	dst := surface.New(10, 10)
	enc := encode.New()

	dst.Clear()
	if err := (Opaque{}).Compose(sprites, dst); err != nil {
		t.Fatal(err)
	}
	first := append([]byte(nil), enc.Encode(dst)...)

	dst.Clear()
	if err := (Opaque{}).Compose(sprites, dst); err != nil {
		t.Fatal(err)
	}
	second := enc.Encode(dst)

	if !bytes.Equal(first, second) {
		t.Error("clear+render twice produced different output")
	}
}

func TestClipping(t *testing.T) {
	tests := []struct {
		name       string
		x, y       int
		wantPixels int // occupied destination pixels after compositing
	}{
		{"fully inside", 1, 1, 16},
		{"hangs off top-left", -2, -2, 4},
		{"hangs off bottom-right", 6, 6, 4},
		{"fully left of destination", -4, 0, 0},
		{"fully below destination", 0, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := surface.New(8, 8)
			sp := opaqueSprite(4, 4, tt.x, tt.y, green)
			if err := (Opaque{}).Compose([]*surface.Surface{sp}, dst); err != nil {
				t.Fatal(err)
			}
			got := 0
			for _, v := range dst.Shadow {
				if v != surface.Empty {
					got++
				}
			}
			if got != tt.wantPixels {
				t.Errorf("occupied pixels = %d, want %d", got, tt.wantPixels)
			}
		})
	}
}

func TestAlphaOverOpaque(t *testing.T) {
	dst := surface.New(4, 4)
	dst.Fill(surface.RGB{}) // opaque black background

	sp := alphaSprite(2, 2, 1, 1, red, 128)
	// Punch a hole so one pixel stays background.
	sp.Shadow[3] = surface.Empty

	if err := (AlphaOverOpaque{}).Compose([]*surface.Surface{sp}, dst); err != nil {
		t.Fatal(err)
	}

	p, _ := dst.At(1, 1)
	if p.Color.R != 128 || p.Color.G != 0 || p.Color.B != 0 {
		t.Errorf("blended pixel = %v, want {128 0 0}", p.Color)
	}
	if p.Shadow != surface.Opaque {
		t.Errorf("destination occupancy changed to %d", p.Shadow)
	}

	p, _ = dst.At(2, 2) // the punched hole
	if p.Color != (surface.RGB{}) {
		t.Errorf("empty source pixel altered background: %v", p.Color)
	}

	p, _ = dst.At(0, 0) // outside the sprite entirely
	if p.Color != (surface.RGB{}) {
		t.Errorf("background outside sprite altered: %v", p.Color)
	}
}

// TestAlphaOverOpaqueOrder checks that the nearest sprite ends up on top:
// with two half-alpha sprites the nearest contributes the larger share.
func TestAlphaOverOpaqueOrder(t *testing.T) {
	dst := surface.New(1, 1)
	dst.Fill(surface.RGB{})

	sprites := []*surface.Surface{
		alphaSprite(1, 1, 0, 0, red, 128),  // nearest
		alphaSprite(1, 1, 0, 0, blue, 128), // behind
	}
	if err := (AlphaOverOpaque{}).Compose(sprites, dst); err != nil {
		t.Fatal(err)
	}

	p, _ := dst.At(0, 0)
	if p.Color.R <= p.Color.B {
		t.Errorf("nearest red should dominate: got %v", p.Color)
	}
	// blue: 128 applied first then attenuated by red's 128 → about a quarter
	if p.Color.B < 62 || p.Color.B > 66 {
		t.Errorf("occluded blue share = %d, want ≈64", p.Color.B)
	}
	if p.Color.R < 126 || p.Color.R > 130 {
		t.Errorf("near red share = %d, want ≈128", p.Color.R)
	}
}

func TestAlphaFull(t *testing.T) {
	t.Run("accumulation bound", func(t *testing.T) {
		dst := surface.NewAlpha(2, 2)
		a := alphaSprite(2, 2, 0, 0, red, 100)
		b := alphaSprite(2, 2, 0, 0, blue, 70)

		if err := (AlphaFull{}).Compose([]*surface.Surface{a, b}, dst); err != nil {
			t.Fatal(err)
		}
		got := dst.Alpha[0]
		if got < 100 || got < 70 {
			t.Errorf("accumulated alpha = %d, below an input", got)
		}
	})

	t.Run("opaque source saturates", func(t *testing.T) {
		dst := surface.NewAlpha(1, 1)
		a := alphaSprite(1, 1, 0, 0, red, 40)
		b := alphaSprite(1, 1, 0, 0, blue, 255)

		if err := (AlphaFull{}).Compose([]*surface.Surface{a, b}, dst); err != nil {
			t.Fatal(err)
		}
		if dst.Alpha[0] != 255 {
			t.Errorf("alpha = %d, want 255 with an opaque source", dst.Alpha[0])
		}
	})

	t.Run("empty destination is source identity", func(t *testing.T) {
		dst := surface.NewAlpha(1, 1)
		a := alphaSprite(1, 1, 0, 0, red, 90)

		if err := (AlphaFull{}).Compose([]*surface.Surface{a}, dst); err != nil {
			t.Fatal(err)
		}
		if dst.Color[0] != red || dst.Alpha[0] != 90 || dst.Shadow[0] != 90 {
			t.Errorf("got color=%v alpha=%d shadow=%d, want source values",
				dst.Color[0], dst.Alpha[0], dst.Shadow[0])
		}
	})

	t.Run("destination without alpha map rejected", func(t *testing.T) {
		dst := surface.New(1, 1)
		err := (AlphaFull{}).Compose(nil, dst)
		if !errors.Is(err, surface.ErrDimensionMismatch) {
			t.Errorf("error = %v, want ErrDimensionMismatch", err)
		}
	})
}

func TestUnusableDestination(t *testing.T) {
	strategies := []struct {
		name string
		s    Strategy
	}{
		{"Opaque", Opaque{}},
		{"AlphaOverOpaque", AlphaOverOpaque{}},
		{"AlphaFull", AlphaFull{}},
	}
	for _, tt := range strategies {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Compose(nil, &surface.Surface{}); !errors.Is(err, surface.ErrDimensionMismatch) {
				t.Errorf("zero-size destination: error = %v, want ErrDimensionMismatch", err)
			}
			if err := tt.s.Compose(nil, nil); !errors.Is(err, surface.ErrDimensionMismatch) {
				t.Errorf("nil destination: error = %v, want ErrDimensionMismatch", err)
			}
		})
	}
}

// TestComposeNoAlloc: after construction, repeated clear+compose cycles
// must not touch the allocator.
func TestComposeNoAlloc(t *testing.T) {
	dst := surface.New(64, 64)
	sprites := []*surface.Surface{
		opaqueSprite(16, 16, 3, 7, red),
		alphaSprite(16, 16, 20, 20, blue, 130),
	}
	var op Opaque
	var al AlphaOverOpaque

	allocs := testing.AllocsPerRun(50, func() {
		dst.Clear()
		if err := op.Compose(sprites[:1], dst); err != nil {
			t.Fatal(err)
		}
		if err := al.Compose(sprites[1:], dst); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Errorf("compose allocated %.1f times per run, want 0", allocs)
	}
}
