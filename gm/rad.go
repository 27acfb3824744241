package gm

import "math"

type Rad float64

// Radians returns the value of the angle in radians as float64.
func (r Rad) Radians() float64 {
	return float64(r)
}

// Normalized returns the angle normalized to the range [-π, π)
func (r Rad) Normalized() Rad {
	angle := math.Mod(float64(r)+math.Pi, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}

	return Rad(angle - math.Pi)
}

func DegToRad(deg float64) Rad {
	return Rad(math.Pi / 180 * deg)
}
