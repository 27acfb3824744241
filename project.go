package globemesh

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"

	"github.com/oliverbestmann/globemesh/gm"
)

const (
	// polarCentroidLat routes parts centered above this latitude to the
	// azimuthal projection even when they were not classified polar.
	polarCentroidLat = 60.0

	// legacyMaxSpanDegrees: parts smaller than this in both axes take the
	// cheap equirectangular path under ProjectionAuto. Distortion at that
	// scale stays far below the fallback threshold.
	legacyMaxSpanDegrees = 2.0
)

// ProjectedPart carries a part's rings in the local 2d space of its Basis.
// It lives only for the duration of one feature build and is never shared
// across features.
type ProjectedPart struct {
	Part  *NormalizedPart
	Basis Basis
	Outer []gm.Vec
	Holes [][]gm.Vec
}

// Basis is the invertible mapping between (lon, lat) degrees and local 2d
// coordinates. The extruder inverts cap and wall vertices through the same
// basis, so the two cannot drift apart.
type Basis struct {
	Mode ProjectionMode

	// tangent plane frame
	origin, east, north r3.Vector

	// projection center in radians (lambert) or the reference longitude in
	// degrees (legacy)
	lat0, lon0 float64
}

// selectProjection is the pure projection choice: an explicit configuration
// override wins, polar parts take the azimuthal projection, tiny parts the
// legacy one, everything else the tangent plane.
func selectProjection(part *NormalizedPart, override ProjectionMode) ProjectionMode {
	if override != ProjectionAuto {
		return override
	}

	if part.Classification == ClassPolar || math.Abs(part.centroid().Lat()) > polarCentroidLat {
		return ProjectionPolarLambert
	}

	if part.lonSpan() < legacyMaxSpanDegrees && part.latSpan() < legacyMaxSpanDegrees {
		return ProjectionLegacy
	}

	return ProjectionTangent
}

func newBasis(mode ProjectionMode, part *NormalizedPart) Basis {
	centroid := part.centroid()

	switch mode {
	case ProjectionTangent:
		origin := sphereVec(centroid)

		east := r3.Vector{Z: 1}.Cross(origin)
		if east.Norm() < 1e-9 {
			// centroid sits on a pole, any tangent direction works
			east = r3.Vector{X: 1}
		}
		east = east.Normalize()
		north := origin.Cross(east)

		return Basis{Mode: ProjectionTangent, origin: origin, east: east, north: north}

	case ProjectionPolarLambert:
		return Basis{
			Mode: ProjectionPolarLambert,
			lat0: deg2rad(centroid.Lat()),
			lon0: deg2rad(centroid.Lon()),
		}

	default:
		return Basis{Mode: ProjectionLegacy, lon0: centroid.Lon()}
	}
}

func (b Basis) Project(p orb.Point) gm.Vec {
	switch b.Mode {
	case ProjectionTangent:
		v := sphereVec(p)
		return gm.VecOf(v.Dot(b.east), v.Dot(b.north))

	case ProjectionPolarLambert:
		phi := deg2rad(p.Lat())
		sinPhi0, cosPhi0 := math.Sincos(b.lat0)
		sinPhi, cosPhi := math.Sincos(phi)
		sinDl, cosDl := math.Sincos(deg2rad(p.Lon()) - b.lon0)

		denom := 1 + sinPhi0*sinPhi + cosPhi0*cosPhi*cosDl
		if denom < 1e-12 {
			// antipode of the projection center
			denom = 1e-12
		}
		k := math.Sqrt(2 / denom)

		return gm.VecOf(
			k*cosPhi*sinDl,
			k*(cosPhi0*sinPhi-sinPhi0*cosPhi*cosDl),
		)

	default:
		return gm.VecOf(p.Lon()-b.lon0, p.Lat())
	}
}

// Unproject maps a local 2d coordinate back onto the unit sphere using the
// exact inverse of the projection that produced it.
func (b Basis) Unproject(v gm.Vec) r3.Vector {
	switch b.Mode {
	case ProjectionTangent:
		w := math.Sqrt(max(0, 1-v.LengthSqr()))
		return b.east.Mul(v.X).Add(b.north.Mul(v.Y)).Add(b.origin.Mul(w)).Normalize()

	case ProjectionPolarLambert:
		rho := v.Length()
		if rho < 1e-15 {
			return sphereVecRad(b.lat0, b.lon0)
		}

		c := 2 * math.Asin(clamp(rho/2, -1, 1))
		sinC, cosC := math.Sincos(c)
		sinPhi0, cosPhi0 := math.Sincos(b.lat0)

		phi := math.Asin(clamp(cosC*sinPhi0+v.Y*sinC*cosPhi0/rho, -1, 1))
		lambda := b.lon0 + math.Atan2(v.X*sinC, rho*cosPhi0*cosC-v.Y*sinPhi0*sinC)

		return sphereVecRad(phi, lambda)

	default:
		return sphereVec(orb.Point{v.X + b.lon0, v.Y})
	}
}

// UnprojectLatLng maps a local 2d coordinate back to (lon, lat) degrees.
func (b Basis) UnprojectLatLng(v gm.Vec) orb.Point {
	ll := s2.LatLngFromPoint(s2.Point{Vector: b.Unproject(v)})
	return orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()}
}

func projectPart(part *NormalizedPart, mode ProjectionMode) *ProjectedPart {
	basis := newBasis(mode, part)

	pp := &ProjectedPart{Part: part, Basis: basis}
	pp.Outer = projectRing(basis, part.Outer)

	for _, hole := range part.Holes {
		pp.Holes = append(pp.Holes, projectRing(basis, hole))
	}

	return pp
}

func projectRing(basis Basis, ring orb.Ring) []gm.Vec {
	out := make([]gm.Vec, len(ring))
	for i, p := range ring {
		out[i] = basis.Project(p)
	}

	return out
}

func sphereVec(p orb.Point) r3.Vector {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())).Vector
}

func sphereVecRad(lat, lng float64) r3.Vector {
	return s2.PointFromLatLng(s2.LatLng{Lat: s1.Angle(lat), Lng: s1.Angle(lng)}).Vector
}

func deg2rad(deg float64) float64 {
	return gm.DegToRad(deg).Radians()
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
