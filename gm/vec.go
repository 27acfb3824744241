package gm

import (
	"fmt"
	"math"
)

// Vec is a 2d vector of float64 values. Projected polygon coordinates are
// represented as Vec values in the local plane of their projection basis.
type Vec struct {
	X, Y float64
}

func VecOf(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) Add(other Vec) Vec {
	v.X += other.X
	v.Y += other.Y
	return v
}

func (v Vec) Sub(other Vec) Vec {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

func (v Vec) Mul(scalar float64) Vec {
	v.X *= scalar
	v.Y *= scalar
	return v
}

func (v Vec) Dot(other Vec) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the cross product of the two vectors.
// Its magnitude equals twice the area of the triangle spanned by them.
func (v Vec) Cross(other Vec) float64 {
	return v.X*other.Y - v.Y*other.X
}

func (v Vec) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec) LengthSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec) Normalized() Vec {
	length := v.Length()
	if length == 0 {
		return Vec{}
	}

	v.X /= length
	v.Y /= length
	return v
}

func (v Vec) String() string {
	return fmt.Sprintf("vec(x=%v, y=%v)", v.X, v.Y)
}
