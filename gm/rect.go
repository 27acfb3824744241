package gm

// Rect is an axis aligned rectangle spanned by the two corner points
// Min and Max.
type Rect struct {
	Min, Max Vec
}

func RectWithPoints(a, b Vec) Rect {
	return Rect{
		Min: Vec{
			X: min(a.X, b.X),
			Y: min(a.Y, b.Y),
		},
		Max: Vec{
			X: max(a.X, b.X),
			Y: max(a.Y, b.Y),
		},
	}
}

// BoundsOf computes the bounding rectangle of the given points.
// Returns the zero Rect for an empty slice.
func BoundsOf(points []Vec) Rect {
	if len(points) == 0 {
		return Rect{}
	}

	bounds := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bounds = bounds.ExtendedBy(p)
	}

	return bounds
}

func (r Rect) ExtendedBy(p Vec) Rect {
	r.Min.X = min(r.Min.X, p.X)
	r.Min.Y = min(r.Min.Y, p.Y)
	r.Max.X = max(r.Max.X, p.X)
	r.Max.Y = max(r.Max.Y, p.Y)
	return r
}

func (r Rect) Size() Vec {
	return r.Max.Sub(r.Min)
}

func (r Rect) Center() Vec {
	return r.Min.Add(r.Max).Mul(0.5)
}
