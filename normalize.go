package globemesh

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// A ring spanning more than half the globe in longitude either crosses
	// the antimeridian or wraps a pole.
	datelineSpanDegrees = 180.0

	// Polar heuristic: a huge longitude span combined with most vertices at
	// high latitude means the ring wraps a pole (Antarctica). Splitting such
	// a ring at the antimeridian would slice a perfectly valid polygon.
	polarSpanDegrees    = 300.0
	polarLatDegrees     = 60.0
	polarVertexFraction = 0.5

	// coordEps is the squared-degree tolerance below which two consecutive
	// ring points count as duplicates, i.e. points closer than 1e-6 degrees
	// merge. Chosen against 1:10m Natural Earth data where distinct
	// vertices are never that close.
	coordEps = 1e-12

	// minRingArea drops split fragments that are numerically empty, in
	// square degrees.
	minRingArea = 1e-12
)

// NormalizedPart is one outer ring after unwrapping and antimeridian
// splitting. Rings are stored open (no repeated closing point) with
// longitudes continuous around the part's own median longitude. Holes are
// attached by assignHoles and share the part's longitude frame.
type NormalizedPart struct {
	Classification Classification
	Outer          orb.Ring
	Holes          []orb.Ring
}

// normalizeOuter splits a raw outer ring into one or more parts.
//
// The ring is unwrapped so consecutive longitudes never jump by more than
// 180 degrees. A ring that still spans more than 180 degrees is either
// classified polar and kept whole, or cut at the antimeridian into parts
// that each satisfy the span invariant. The returned cuts are the meridians
// the ring was cut at, in the unwrapped longitude frame; holes of the same
// feature must be cut at them too so every hole lands wholly in one part.
func normalizeOuter(featureID string, ring orb.Ring, polarHint bool) ([]*NormalizedPart, []float64, error) {
	open := openRing(dedupeRing(ring, coordEps))
	if len(open) < 3 {
		return nil, nil, malformed(featureID, "outer ring has %d usable points, need at least 3", len(open))
	}

	unwrapped := unwrapRing(open)
	minLon, maxLon := lonRange(unwrapped)
	span := maxLon - minLon

	polar := polarHint || (span > polarSpanDegrees && polarFraction(unwrapped) > polarVertexFraction)

	switch {
	case polar:
		return []*NormalizedPart{{
			Classification: ClassPolar,
			Outer:          recenterRing(unwrapped),
		}}, nil, nil

	case span <= datelineSpanDegrees:
		return []*NormalizedPart{{
			Classification: ClassStandard,
			Outer:          recenterRing(unwrapped),
		}}, nil, nil

	default:
		subs, cuts := splitWide(unwrapped)

		var parts []*NormalizedPart
		for _, sub := range subs {
			parts = append(parts, &NormalizedPart{
				Classification: ClassDatelineSplit,
				Outer:          recenterRing(sub),
			})
		}

		if len(parts) == 0 {
			return nil, nil, malformed(featureID, "antimeridian split produced no usable parts")
		}

		return parts, cuts, nil
	}
}

// unwrapRing returns a copy of the ring with cumulative longitude offsets
// applied so that no step between consecutive points exceeds 180 degrees.
func unwrapRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	out[0] = ring[0]

	offset := 0.0
	for i := 1; i < len(ring); i++ {
		lon := ring[i].Lon() + offset

		for lon-out[i-1].Lon() > datelineSpanDegrees {
			offset -= 360
			lon -= 360
		}
		for lon-out[i-1].Lon() < -datelineSpanDegrees {
			offset += 360
			lon += 360
		}

		out[i] = orb.Point{lon, ring[i].Lat()}
	}

	return out
}

// splitWide cuts an unwrapped ring at every antimeridian image inside its
// longitude range until every resulting ring spans at most 180 degrees.
// Rings wider than 180 degrees without an interior antimeridian are cut at
// their mid meridian instead, so the span invariant holds unconditionally.
// The second return value lists every meridian that was cut at.
func splitWide(ring orb.Ring) ([]orb.Ring, []float64) {
	minLon, maxLon := lonRange(ring)
	if maxLon-minLon <= datelineSpanDegrees {
		return []orb.Ring{ring}, nil
	}

	cut, ok := interiorMeridian(minLon, maxLon)
	if !ok {
		cut = (minLon + maxLon) / 2
	}

	var out []orb.Ring
	cuts := []float64{cut}
	for _, side := range splitAtMeridian(ring, cut) {
		rings, more := splitWide(side)
		out = append(out, rings...)
		cuts = append(cuts, more...)
	}

	return out, cuts
}

// interiorMeridian finds an antimeridian image (±180 shifted by multiples of
// 360) strictly inside the longitude range.
func interiorMeridian(minLon, maxLon float64) (float64, bool) {
	k := math.Ceil((minLon + datelineSpanDegrees) / 360)
	meridian := -datelineSpanDegrees + 360*k

	if meridian <= minLon {
		meridian += 360
	}

	if meridian > minLon && meridian < maxLon {
		return meridian, true
	}

	return 0, false
}

// splitAtMeridian cuts the open ring along the vertical line lon == cut.
// Every maximal run of vertices on one side, closed through its two
// interpolated crossing points, becomes one ring. The implicit closing edge
// of each ring runs along the cut meridian.
func splitAtMeridian(ring orb.Ring, cut float64) []orb.Ring {
	n := len(ring)

	// start at a vertex strictly off the cut
	start := -1
	for i, p := range ring {
		if p.Lon() != cut {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	side := func(lon float64) int {
		switch {
		case lon < cut:
			return -1
		case lon > cut:
			return 1
		default:
			return 0
		}
	}

	var chains []orb.Ring
	current := orb.Ring{}
	currentSide := side(ring[start].Lon())

	for k := range n {
		a := ring[(start+k)%n]
		b := ring[(start+k+1)%n]

		current = append(current, a)

		sb := side(b.Lon())
		if sb == 0 || sb == currentSide {
			continue
		}

		t := (cut - a.Lon()) / (b.Lon() - a.Lon())
		crossing := orb.Point{cut, a.Lat() + (b.Lat()-a.Lat())*t}

		current = append(current, crossing)
		chains = append(chains, current)

		current = orb.Ring{crossing}
		currentSide = sb
	}

	if len(chains) == 0 {
		return []orb.Ring{ring}
	}

	// the tail chain wraps around to the start vertex and continues the
	// first chain
	chains[0] = append(current, chains[0]...)

	var out []orb.Ring
	for _, chain := range chains {
		chain = openRing(dedupeRing(chain, coordEps))
		if len(chain) < 3 || math.Abs(signedArea(chain)) < minRingArea {
			continue
		}

		out = append(out, chain)
	}

	return out
}

// recenterRing shifts all longitudes by a multiple of 360 so that the median
// longitude falls into (-180, 180]. Keeping coordinates clustered around the
// median avoids large numeric ranges downstream.
func recenterRing(ring orb.Ring) orb.Ring {
	median := medianLon(ring)

	// ceil keeps a median of exactly 180 in place and moves -180 up to 180
	k := math.Ceil((median - datelineSpanDegrees) / 360)
	if k == 0 {
		return ring
	}

	offset := -360 * k
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{p.Lon() + offset, p.Lat()}
	}

	return out
}

func lonRange(ring orb.Ring) (minLon, maxLon float64) {
	minLon = ring[0].Lon()
	maxLon = minLon

	for _, p := range ring[1:] {
		minLon = min(minLon, p.Lon())
		maxLon = max(maxLon, p.Lon())
	}

	return
}

func medianLon(ring orb.Ring) float64 {
	lons := make([]float64, len(ring))
	for i, p := range ring {
		lons[i] = p.Lon()
	}

	slices.Sort(lons)
	return lons[len(lons)/2]
}

func polarFraction(ring orb.Ring) float64 {
	var count int
	for _, p := range ring {
		if math.Abs(p.Lat()) > polarLatDegrees {
			count++
		}
	}

	return float64(count) / float64(len(ring))
}

// signedArea is the shoelace area of an open ring in square degrees,
// positive for counter clockwise winding.
func signedArea(ring orb.Ring) float64 {
	var sum float64
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		sum += a.Lon()*b.Lat() - b.Lon()*a.Lat()
	}

	return sum / 2
}

func (p *NormalizedPart) lonSpan() float64 {
	minLon, maxLon := lonRange(p.Outer)
	return maxLon - minLon
}

func (p *NormalizedPart) latSpan() float64 {
	minLat := p.Outer[0].Lat()
	maxLat := minLat

	for _, pt := range p.Outer[1:] {
		minLat = min(minLat, pt.Lat())
		maxLat = max(maxLat, pt.Lat())
	}

	return maxLat - minLat
}

// centroid is the planar centroid of the outer ring in the part's own
// longitude frame.
func (p *NormalizedPart) centroid() orb.Point {
	centroid, _ := planar.CentroidArea(closedRing(p.Outer))
	return centroid
}
