package globemesh

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oliverbestmann/globemesh/gm"
)

func squareVecs(minX, minY, maxX, maxY float64) []gm.Vec {
	return []gm.Vec{
		gm.VecOf(minX, minY),
		gm.VecOf(maxX, minY),
		gm.VecOf(maxX, maxY),
		gm.VecOf(minX, maxY),
	}
}

func triangleAreaSum(tri Triangulation) float64 {
	var sum float64
	for i := 0; i+2 < len(tri.Indices); i += 3 {
		a := tri.Vertices[tri.Indices[i]]
		b := tri.Vertices[tri.Indices[i+1]]
		c := tri.Vertices[tri.Indices[i+2]]
		sum += math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
	}

	return sum
}

func TestTriangulatePart_Square(t *testing.T) {
	pp := &ProjectedPart{Outer: squareVecs(0, 0, 10, 10)}

	tri, err := triangulatePart(pp)
	require.NoError(t, err)
	require.Equal(t, 2, tri.TriangleCount())
	require.InDelta(t, 100, triangleAreaSum(tri), 1e-9)
}

func TestTriangulatePart_SquareWithHole(t *testing.T) {
	pp := &ProjectedPart{
		Outer: squareVecs(0, 0, 10, 10),
		Holes: [][]gm.Vec{squareVecs(4, 4, 6, 6)},
	}

	tri, err := triangulatePart(pp)
	require.NoError(t, err)
	require.InDelta(t, 96, triangleAreaSum(tri), 1e-9)

	// no triangle center falls inside the hole
	for i := 0; i+2 < len(tri.Indices); i += 3 {
		a := tri.Vertices[tri.Indices[i]]
		b := tri.Vertices[tri.Indices[i+1]]
		c := tri.Vertices[tri.Indices[i+2]]

		cx := (a.X + b.X + c.X) / 3
		cy := (a.Y + b.Y + c.Y) / 3
		inside := cx > 4 && cx < 6 && cy > 4 && cy < 6
		require.False(t, inside, "triangle %d centered in the hole", i/3)
	}
}

func TestTriangulatePart_NormalizesWinding(t *testing.T) {
	outer := squareVecs(0, 0, 10, 10)
	slices.Reverse(outer)
	hole := squareVecs(4, 4, 6, 6)

	pp := &ProjectedPart{Outer: outer, Holes: [][]gm.Vec{hole}}

	_, err := triangulatePart(pp)
	require.NoError(t, err)

	require.Positive(t, signedArea2(pp.Outer))
	require.Negative(t, signedArea2(pp.Holes[0]))
}

func TestTriangulatePart_FiltersSliverTriangles(t *testing.T) {
	// a vertex sitting almost on the bottom edge spans sliver triangles
	pp := &ProjectedPart{Outer: []gm.Vec{
		gm.VecOf(0, 0),
		gm.VecOf(5, 1e-13),
		gm.VecOf(10, 0),
		gm.VecOf(10, 10),
		gm.VecOf(0, 10),
	}}

	tri, err := triangulatePart(pp)
	require.NoError(t, err)
	require.InDelta(t, 100, triangleAreaSum(tri), 1e-6)

	for i := 0; i+2 < len(tri.Indices); i += 3 {
		a := tri.Vertices[tri.Indices[i]]
		b := tri.Vertices[tri.Indices[i+1]]
		c := tri.Vertices[tri.Indices[i+2]]

		area := math.Abs(b.Sub(a).Cross(c.Sub(a))) / 2
		require.Greater(t, area, degenerateAreaFrac*100)
	}
}

func TestTriangulatePart_CollapsedRingFails(t *testing.T) {
	pp := &ProjectedPart{Outer: []gm.Vec{
		gm.VecOf(0, 0), gm.VecOf(5, 0), gm.VecOf(10, 0),
	}}

	_, err := triangulatePart(pp)
	require.Error(t, err)
}
