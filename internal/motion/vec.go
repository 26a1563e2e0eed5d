// Package motion holds the stateless geometry and timing functions a renderer
// consults every frame: distances, curved edge paths, easing and pulses.
//
// Nothing here touches the graph model, so every function is safe to call from
// any number of goroutines.
package motion

import "math"

// Vec is a 2D point or direction.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Mul(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Finite reports whether both components are real numbers.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Distance returns the Euclidean distance between p1 and p2.
func Distance(p1, p2 Vec) float64 {
	return p2.Sub(p1).Len()
}

// Normalize returns the unit vector in the direction of v.
// A zero-length vector normalizes to (0,0) instead of NaN.
func Normalize(v Vec) Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}
