// Package gm (stands for geometry math) provides the small planar geometry
// primitives used by the projection pipeline.
//
// It includes a simple 2d vector type called Vec, an axis aligned rectangle
// type Rect and a type named Rad to represent angle values in radian.
package gm
