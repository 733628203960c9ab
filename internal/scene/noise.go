package scene

import (
	"math"
	"math/rand"
)

// noise2D generates seeded 2D simplex noise for the scene background.
type noise2D struct {
	perm [512]int
}

func newNoise2D(seed int64) *noise2D {
	n := &noise2D{}
	r := rand.New(rand.NewSource(seed))

	p := make([]int, 256)
	for i := range p {
		p[i] = i
	}
	r.Shuffle(256, func(i, j int) { p[i], p[j] = p[j], p[i] })

	for i := 0; i < 512; i++ {
		n.perm[i] = p[i&255]
	}
	return n
}

func grad2(hash int, x, y float64) float64 {
	h := hash & 7
	u, v := x, y
	if h >= 4 {
		u, v = y, x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

const (
	skew2   = 0.3660254037844386  // (sqrt(3) - 1) / 2
	unskew2 = 0.21132486540518713 // (3 - sqrt(3)) / 6
)

// at returns noise in [-1, 1].
func (n *noise2D) at(x, y float64) float64 {
	s := (x + y) * skew2
	i := math.Floor(x + s)
	j := math.Floor(y + s)

	t := (i + j) * unskew2
	x0 := x - (i - t)
	y0 := y - (j - t)

	var i1, j1 int
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - float64(i1) + unskew2
	y1 := y0 - float64(j1) + unskew2
	x2 := x0 - 1.0 + 2.0*unskew2
	y2 := y0 - 1.0 + 2.0*unskew2

	ii := int(i) & 255
	jj := int(j) & 255

	var n0, n1, n2 float64

	t0 := 0.5 - x0*x0 - y0*y0
	if t0 > 0 {
		t0 *= t0
		n0 = t0 * t0 * grad2(n.perm[ii+n.perm[jj]], x0, y0)
	}
	t1 := 0.5 - x1*x1 - y1*y1
	if t1 > 0 {
		t1 *= t1
		n1 = t1 * t1 * grad2(n.perm[ii+i1+n.perm[jj+j1]], x1, y1)
	}
	t2 := 0.5 - x2*x2 - y2*y2
	if t2 > 0 {
		t2 *= t2
		n2 = t2 * t2 * grad2(n.perm[ii+1+n.perm[jj+1]], x2, y2)
	}

	// Scale the corner sum back into [-1, 1]
	return 70.0 * (n0 + n1 + n2)
}
