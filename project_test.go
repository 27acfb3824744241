package globemesh

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestSelectProjection(t *testing.T) {
	standard := &NormalizedPart{
		Classification: ClassStandard,
		Outer:          openRing(rectRing(0, 40, 20, 50, 5)),
	}
	require.Equal(t, ProjectionTangent, selectProjection(standard, ProjectionAuto))

	polar := &NormalizedPart{
		Classification: ClassPolar,
		Outer:          openRing(antarcticaLikeRing()),
	}
	require.Equal(t, ProjectionPolarLambert, selectProjection(polar, ProjectionAuto))

	// standard classification but centered far north
	highLat := &NormalizedPart{
		Classification: ClassStandard,
		Outer:          openRing(rectRing(10, 75, 30, 85, 5)),
	}
	require.Equal(t, ProjectionPolarLambert, selectProjection(highLat, ProjectionAuto))

	tiny := &NormalizedPart{
		Classification: ClassStandard,
		Outer:          openRing(rectRing(5, 5, 6, 6, 0.5)),
	}
	require.Equal(t, ProjectionLegacy, selectProjection(tiny, ProjectionAuto))

	// an override always wins
	require.Equal(t, ProjectionLegacy, selectProjection(standard, ProjectionLegacy))
	require.Equal(t, ProjectionTangent, selectProjection(polar, ProjectionTangent))
}

func TestBasis_RoundTrips(t *testing.T) {
	parts := map[ProjectionMode]*NormalizedPart{
		ProjectionTangent: {
			Classification: ClassStandard,
			Outer:          openRing(rectRing(0, 40, 20, 50, 5)),
		},
		ProjectionPolarLambert: {
			Classification: ClassPolar,
			Outer:          openRing(antarcticaLikeRing()),
		},
		ProjectionLegacy: {
			Classification: ClassStandard,
			Outer:          openRing(rectRing(5, 5, 6, 6, 0.5)),
		},
	}

	for mode, part := range parts {
		basis := newBasis(mode, part)

		for _, p := range part.Outer {
			back := basis.UnprojectLatLng(basis.Project(p))
			require.InDelta(t, p.Lon(), back.Lon(), 1e-6, "mode %s lon of %v", mode, p)
			require.InDelta(t, p.Lat(), back.Lat(), 1e-6, "mode %s lat of %v", mode, p)
		}
	}
}

func TestBasis_UnprojectLandsOnUnitSphere(t *testing.T) {
	part := &NormalizedPart{
		Classification: ClassStandard,
		Outer:          openRing(rectRing(-10, -10, 10, 10, 5)),
	}

	for _, mode := range []ProjectionMode{ProjectionTangent, ProjectionPolarLambert, ProjectionLegacy} {
		basis := newBasis(mode, part)

		for _, p := range part.Outer {
			v := basis.Unproject(basis.Project(p))
			require.InDelta(t, 1, v.Norm(), 1e-12, "mode %s", mode)
		}
	}
}

func TestBasis_TangentFrameIsOrthonormal(t *testing.T) {
	part := &NormalizedPart{
		Classification: ClassStandard,
		Outer:          openRing(rectRing(100, 30, 120, 45, 5)),
	}

	basis := newBasis(ProjectionTangent, part)

	require.InDelta(t, 1, basis.east.Norm(), 1e-12)
	require.InDelta(t, 1, basis.north.Norm(), 1e-12)
	require.InDelta(t, 0, basis.east.Dot(basis.north), 1e-12)
	require.InDelta(t, 0, basis.east.Dot(basis.origin), 1e-12)
	require.InDelta(t, 0, basis.north.Dot(basis.origin), 1e-12)
}

func TestBasis_PolarLambertHandlesPoleRing(t *testing.T) {
	// a ring around the south pole projects without the tangent plane's pole
	// singularity
	part := &NormalizedPart{
		Classification: ClassPolar,
		Outer:          openRing(antarcticaLikeRing()),
	}

	basis := newBasis(ProjectionPolarLambert, part)

	for _, p := range part.Outer {
		v := basis.Project(p)
		require.False(t, math.IsNaN(v.X) || math.IsNaN(v.Y))
	}

	// the projection center itself maps to the local origin
	center := orb.Point{basis.lon0 / math.Pi * 180, basis.lat0 / math.Pi * 180}
	origin := basis.Project(center)
	require.InDelta(t, 0, origin.Length(), 1e-12)
}
