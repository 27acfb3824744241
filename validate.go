package globemesh

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// collinearAreaFrac drops a vertex when the triangle it spans with its
	// neighbours stays below this fraction of the total ring area. Relative
	// to the ring area so that small islands keep their shape.
	collinearAreaFrac = 1e-9

	// selfIntersectCeiling bounds the O(n²) self intersection scan. Rings
	// with more vertices are not scanned; a warning is emitted instead of
	// stalling the build.
	selfIntersectCeiling = 5000
)

// validatePart cleans the part's rings in place and reports everything it
// found. Self intersections are reported but never repaired; the part is
// still triangulated best effort. The part is unusable only when its outer
// ring degenerates below three points.
func validatePart(part *NormalizedPart) (ok bool, warnings []Warning) {
	outer, w := validateRing(part.Outer)
	warnings = append(warnings, w...)

	if len(outer) < 3 {
		warnings = append(warnings, warningf(WarnDegenerateRing,
			"outer ring degenerated to %d points", len(outer)))
		return false, warnings
	}
	part.Outer = outer

	holes := part.Holes[:0]
	for _, hole := range part.Holes {
		cleaned, w := validateRing(hole)
		warnings = append(warnings, w...)

		if len(cleaned) < 3 {
			warnings = append(warnings, warningf(WarnDegenerateRing, "degenerate hole dropped"))
			continue
		}

		holes = append(holes, cleaned)
	}
	part.Holes = holes

	return true, warnings
}

func validateRing(ring orb.Ring) (orb.Ring, []Warning) {
	var warnings []Warning

	deduped := dedupeRing(ring, coordEps)
	if removed := len(ring) - len(deduped); removed > 0 {
		warnings = append(warnings, warningf(WarnDuplicatePoints,
			"%d duplicate points removed", removed))
	}

	cleaned := removeCollinear(deduped)
	if removed := len(deduped) - len(cleaned); removed > 0 {
		warnings = append(warnings, warningf(WarnCollinearPoints,
			"%d near-collinear points removed", removed))
	}

	if len(cleaned) >= 3 {
		switch found, checked := selfIntersects(cleaned); {
		case !checked:
			warnings = append(warnings, warningf(WarnIntersectionCheckSkipped,
				"ring has %d vertices, check skipped above %d", len(cleaned), selfIntersectCeiling))
		case found:
			warnings = append(warnings, warningf(WarnSelfIntersection, "ring intersects itself"))
		}
	}

	return cleaned, warnings
}

// dedupeRing removes consecutive points closer than the squared-degree
// tolerance eps, including the wrap around pair. The result is an open ring.
func dedupeRing(ring orb.Ring, eps float64) orb.Ring {
	if len(ring) == 0 {
		return ring
	}

	out := make(orb.Ring, 0, len(ring))
	out = append(out, ring[0])

	for _, p := range ring[1:] {
		if sqDist(p, out[len(out)-1]) <= eps {
			continue
		}

		out = append(out, p)
	}

	for len(out) > 1 && sqDist(out[len(out)-1], out[0]) <= eps {
		out = out[:len(out)-1]
	}

	return out
}

// removeCollinear drops vertices whose removal changes the ring area by a
// negligible amount. Such vertices produce needle triangles downstream.
func removeCollinear(ring orb.Ring) orb.Ring {
	if len(ring) < 4 {
		return ring
	}

	// cross magnitude is twice the triangle area
	threshold := max(2*collinearAreaFrac*math.Abs(signedArea(ring)), 1e-18)

	out := make(orb.Ring, 0, len(ring))
	for _, p := range ring {
		for len(out) >= 2 && math.Abs(orient(out[len(out)-2], out[len(out)-1], p)) < threshold {
			out = out[:len(out)-1]
		}

		out = append(out, p)
	}

	// the pass above never questions the first and last vertex, close the
	// loop manually
	for len(out) >= 3 && math.Abs(orient(out[len(out)-2], out[len(out)-1], out[0])) < threshold {
		out = out[:len(out)-1]
	}
	for len(out) >= 3 && math.Abs(orient(out[len(out)-1], out[0], out[1])) < threshold {
		out = out[1:]
	}

	return out
}

// selfIntersects scans all non adjacent segment pairs of the open ring.
// checked is false when the ring exceeds selfIntersectCeiling vertices.
func selfIntersects(ring orb.Ring) (found, checked bool) {
	n := len(ring)
	if n > selfIntersectCeiling {
		return false, false
	}

	for i := range n {
		a1, a2 := ring[i], ring[(i+1)%n]

		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				// adjacent segments share an endpoint
				continue
			}

			if segmentsIntersect(a1, a2, ring[j], ring[(j+1)%n]) {
				return true, true
			}
		}
	}

	return false, true
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear endpoints count only when they actually overlap
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}

	return false
}

// orient returns the cross product of (b-a) and (c-a); positive when c lies
// left of the directed line a→b.
func orient(a, b, c orb.Point) float64 {
	return (b.Lon()-a.Lon())*(c.Lat()-a.Lat()) - (b.Lat()-a.Lat())*(c.Lon()-a.Lon())
}

func onSegment(a, b, p orb.Point) bool {
	return p.Lon() >= min(a.Lon(), b.Lon()) && p.Lon() <= max(a.Lon(), b.Lon()) &&
		p.Lat() >= min(a.Lat(), b.Lat()) && p.Lat() <= max(a.Lat(), b.Lat())
}

func sqDist(a, b orb.Point) float64 {
	dx := a.Lon() - b.Lon()
	dy := a.Lat() - b.Lat()
	return dx*dx + dy*dy
}
