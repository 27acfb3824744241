// Package globemesh turns raw geopolitical polygons given in longitude and
// latitude into artifact free triangle meshes on the unit sphere.
//
// The pipeline normalizes rings across the antimeridian, assigns holes to
// their post split outer parts, validates and repairs rings, projects them
// into a stable local 2d space, triangulates them with ear clipping and maps
// the result back onto the sphere, optionally with extruded side walls.
// Finished meshes are memoized in a vertex budget bounded LRU cache.
package globemesh

import (
	"github.com/paulmach/orb"
)

// Classification describes how a ring relates to the antimeridian and the
// poles. It drives both splitting and projection selection.
type Classification uint8

const (
	ClassStandard Classification = iota
	ClassPolar
	ClassDatelineSplit
)

func (c Classification) String() string {
	switch c {
	case ClassStandard:
		return "standard"
	case ClassPolar:
		return "polar"
	case ClassDatelineSplit:
		return "dateline-split"
	default:
		return "unknown"
	}
}

// Feature is the immutable input of the pipeline: one outer ring in
// (lon, lat) degrees plus zero or more hole rings. Features are loaded once
// per dataset and never modified afterwards.
type Feature struct {
	ID    string
	Outer orb.Ring
	Holes []orb.Ring

	// PolarHint marks a feature that is known to wrap a pole, e.g. from
	// dataset metadata. The polar heuristic still applies without it.
	PolarHint bool
}

// NewFeature builds a Feature from raw ring data. An unclosed outer ring is
// closed by repeating its first point. Rings with fewer than three distinct
// points are rejected with a MalformedInputError.
func NewFeature(id string, outer orb.Ring, holes ...orb.Ring) (*Feature, error) {
	open := openRing(dedupeRing(outer, coordEps))
	if len(open) < 3 {
		return nil, malformed(id, "outer ring has %d usable points, need at least 3", len(open))
	}

	feature := &Feature{
		ID:    id,
		Outer: closedRing(open),
	}

	for _, hole := range holes {
		hole = openRing(dedupeRing(hole, coordEps))
		if len(hole) < 3 {
			// not fatal, the feature just loses an insignificant hole
			continue
		}

		feature.Holes = append(feature.Holes, closedRing(hole))
	}

	return feature, nil
}

// openRing returns the ring without its closing point.
func openRing(ring orb.Ring) orb.Ring {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}

	return ring
}

// closedRing returns the ring with first and last point equal.
func closedRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring[0] == ring[len(ring)-1] {
		return ring
	}

	closed := make(orb.Ring, 0, len(ring)+1)
	closed = append(closed, ring...)
	closed = append(closed, ring[0])
	return closed
}
