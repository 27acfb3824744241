package globemesh

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// splitHole prepares a raw hole ring for assignment: unwrap, cut at the
// meridians the outer ring was cut at, split wide leftovers at the
// antimeridian, recenter every sub ring. Cutting at the outer's meridians
// keeps every sub hole wholly inside a single post split part.
func splitHole(hole orb.Ring, cuts []float64) []orb.Ring {
	open := openRing(dedupeRing(hole, coordEps))
	if len(open) < 3 {
		return nil
	}

	rings := []orb.Ring{unwrapRing(open)}

	for _, cut := range cuts {
		var next []orb.Ring
		for _, ring := range rings {
			minLon, maxLon := lonRange(ring)

			// the cut is in the outer ring's longitude frame, move it by a
			// multiple of 360 into this ring's frame
			shifted := cut + 360*math.Round((medianLon(ring)-cut)/360)
			if shifted <= minLon || shifted >= maxLon {
				next = append(next, ring)
				continue
			}

			next = append(next, splitAtMeridian(ring, shifted)...)
		}
		rings = next
	}

	var out []orb.Ring
	for _, ring := range rings {
		subs, _ := splitWide(ring)
		for _, sub := range subs {
			out = append(out, recenterRing(sub))
		}
	}

	return out
}

// assignHoles gives each (possibly split) hole to the outer part containing
// its centroid. cuts are the meridians the feature's outer ring was cut at.
// Parts are addressed by their index in the slice; a hole never holds a
// reference to its owner. Holes contained by no part come from degenerate
// data and are dropped with a warning instead of failing the feature.
func assignHoles(parts []*NormalizedPart, holes []orb.Ring, cuts []float64) []Warning {
	var warnings []Warning

	for _, hole := range holes {
		for _, sub := range splitHole(hole, cuts) {
			centroid, _ := planar.CentroidArea(closedRing(sub))

			owner := -1
			for idx, part := range parts {
				if partContains(part, centroid) {
					owner = idx
					break
				}
			}

			if owner < 0 {
				warnings = append(warnings, warningf(WarnOrphanHole,
					"hole centroid (%.4f, %.4f) lies outside every outer part",
					centroid.Lon(), centroid.Lat()))
				continue
			}

			part := parts[owner]
			part.Holes = append(part.Holes, shiftRingToFrame(sub, medianLon(part.Outer)))
		}
	}

	return warnings
}

// partContains runs a ray casting point in polygon test with the point
// shifted into the part's longitude frame first, so that parts renormalized
// across the antimeridian still match geographically.
func partContains(part *NormalizedPart, pt orb.Point) bool {
	shifted := shiftPointToFrame(pt, medianLon(part.Outer))
	return planar.RingContains(closedRing(part.Outer), shifted)
}

func shiftPointToFrame(pt orb.Point, frameLon float64) orb.Point {
	offset := 360 * math.Round((frameLon-pt.Lon())/360)
	return orb.Point{pt.Lon() + offset, pt.Lat()}
}

// shiftRingToFrame moves the whole ring by one multiple of 360 degrees so
// its median longitude lands next to frameLon. The ring stays continuous.
func shiftRingToFrame(ring orb.Ring, frameLon float64) orb.Ring {
	offset := 360 * math.Round((frameLon-medianLon(ring))/360)
	if offset == 0 {
		return ring
	}

	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{p.Lon() + offset, p.Lat()}
	}

	return out
}
