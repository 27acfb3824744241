package globemesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/rclancey/earcut"

	"github.com/oliverbestmann/globemesh/gm"
	"github.com/oliverbestmann/globemesh/internal/typedpool"
)

// degenerateAreaFrac filters triangles whose area falls below this fraction
// of the total polygon area. Such slivers come from near collinear input and
// only cause z-fighting on screen.
const degenerateAreaFrac = 1e-9

// Triangulation is the flat index buffer over the concatenated 2d vertex
// buffer (outer ring first, then the holes in order).
type Triangulation struct {
	Vertices []gm.Vec
	Indices  []uint32
}

func (t *Triangulation) TriangleCount() int {
	return len(t.Indices) / 3
}

type earcutScratch struct {
	coords []float64
	holes  []int
}

var scratchPool = typedpool.NewWithReset(func(s *earcutScratch) {
	s.coords = s.coords[:0]
	s.holes = s.holes[:0]
})

// triangulatePart runs ear clipping over the projected rings. Ring winding
// is normalized in place first (outer counter clockwise, holes clockwise) so
// that the extruder sees the same orientation the triangles were built from.
func triangulatePart(pp *ProjectedPart) (Triangulation, error) {
	if signedArea2(pp.Outer) < 0 {
		slices.Reverse(pp.Outer)
	}

	totalArea := signedArea2(pp.Outer)
	for _, hole := range pp.Holes {
		if signedArea2(hole) > 0 {
			slices.Reverse(hole)
		}

		totalArea -= math.Abs(signedArea2(hole))
	}

	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	for _, p := range pp.Outer {
		scratch.coords = append(scratch.coords, p.X, p.Y)
	}
	for _, hole := range pp.Holes {
		scratch.holes = append(scratch.holes, len(scratch.coords)/2)
		for _, p := range hole {
			scratch.coords = append(scratch.coords, p.X, p.Y)
		}
	}

	indices, err := earcut.Earcut(scratch.coords, scratch.holes, 2)
	if err != nil {
		return Triangulation{}, fmt.Errorf("ear clipping: %w", err)
	}

	vertices := make([]gm.Vec, 0, len(scratch.coords)/2)
	for i := 0; i < len(scratch.coords); i += 2 {
		vertices = append(vertices, gm.VecOf(scratch.coords[i], scratch.coords[i+1]))
	}

	tri := Triangulation{
		Vertices: vertices,
		Indices:  make([]uint32, 0, len(indices)),
	}

	minArea := degenerateAreaFrac * math.Abs(totalArea)
	for i := 0; i+2 < len(indices); i += 3 {
		a := vertices[indices[i]]
		b := vertices[indices[i+1]]
		c := vertices[indices[i+2]]

		area := math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
		if area <= minArea {
			continue
		}

		tri.Indices = append(tri.Indices,
			uint32(indices[i]), uint32(indices[i+1]), uint32(indices[i+2]))
	}

	if len(tri.Indices) == 0 {
		return Triangulation{}, fmt.Errorf("ear clipping produced no usable triangles")
	}

	return tri, nil
}

// signedArea2 is the shoelace area of an open 2d ring, positive for counter
// clockwise winding.
func signedArea2(ring []gm.Vec) float64 {
	var sum float64
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		sum += a.Cross(b)
	}

	return sum / 2
}
