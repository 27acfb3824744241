package globemesh

import (
	"math"

	"github.com/paulmach/orb"
)

// rectRing builds a counter clockwise rectangle ring with a vertex every
// step degrees along each edge. Longitudes may exceed ±180; use
// canonicalRing to fold them back into raw dataset form.
func rectRing(minLon, minLat, maxLon, maxLat, step float64) orb.Ring {
	var ring orb.Ring

	for lon := minLon; lon < maxLon; lon += step {
		ring = append(ring, orb.Point{lon, minLat})
	}
	for lat := minLat; lat < maxLat; lat += step {
		ring = append(ring, orb.Point{maxLon, lat})
	}
	for lon := maxLon; lon > minLon; lon -= step {
		ring = append(ring, orb.Point{lon, maxLat})
	}
	for lat := maxLat; lat > minLat; lat -= step {
		ring = append(ring, orb.Point{minLon, lat})
	}

	return closedRing(ring)
}

// canonicalRing folds all longitudes into [-180, 180), the way raw dataset
// coordinates arrive.
func canonicalRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		lon := math.Mod(p.Lon()+180, 360)
		if lon < 0 {
			lon += 360
		}

		out[i] = orb.Point{lon - 180, p.Lat()}
	}

	return out
}

// circleRing builds a counter clockwise circle around (lon, lat) with the
// given radius in degrees.
func circleRing(lon, lat, radius float64, segments int) orb.Ring {
	ring := make(orb.Ring, 0, segments+1)
	for i := range segments {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{
			lon + radius*math.Cos(angle),
			lat + radius*math.Sin(angle),
		})
	}

	return closedRing(ring)
}

// russiaLikeRing spans longitudes 15..200, crossing the ±180 line twice in
// its canonical form, like Russia's mainland ring does.
func russiaLikeRing() orb.Ring {
	return canonicalRing(rectRing(15, 45, 200, 70, 5))
}

// antarcticaLikeRing wraps the south pole: longitude span of a full circle
// with every vertex below -60 latitude.
func antarcticaLikeRing() orb.Ring {
	var ring orb.Ring
	for lon := -180.0; lon < 180; lon += 10 {
		ring = append(ring, orb.Point{lon, -70})
	}

	// an irregular coastline bump so the ring has more than one latitude
	ring = append(ring, orb.Point{179, -75})

	return closedRing(ring)
}
