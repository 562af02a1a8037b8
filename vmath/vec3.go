package vmath

import "math"

// Vec3 is a float64 3-vector used for camera and actor placement
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the euclidean magnitude
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Lerp interpolates between a and b at t in [0,1]
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// SmoothStep applies the cubic ease curve to t in [0,1]
// Camera transitions use this so moves settle without a hard stop
func SmoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
