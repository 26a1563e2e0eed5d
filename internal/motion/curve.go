package motion

import "math"

// BezierPoint evaluates the quadratic Bezier curve p0 -> p2 with control point
// p1 at t in [0,1]. The endpoints are returned exactly at t=0 and t=1.
func BezierPoint(t float64, p0, p1, p2 Vec) Vec {
	switch t {
	case 0:
		return p0
	case 1:
		return p2
	}
	omt := 1 - t
	a := omt * omt
	b := 2 * omt * t
	c := t * t
	return Vec{
		X: a*p0.X + b*p1.X + c*p2.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y,
	}
}

// ControlPoint returns the control point that bows an edge from source to
// target: the segment midpoint pushed perpendicular to the segment by
// curvature times the segment vector. Curvature 0 gives a straight edge.
func ControlPoint(source, target Vec, curvature float64) Vec {
	mid := source.Add(target).Mul(0.5)
	d := target.Sub(source)
	// (dx, dy) rotated a quarter turn.
	return Vec{
		X: mid.X - d.Y*curvature,
		Y: mid.Y + d.X*curvature,
	}
}

// SampleCurve returns n+1 evenly spaced points along the quadratic curve,
// including both endpoints. n below 1 is treated as 1.
func SampleCurve(p0, p1, p2 Vec, n int) []Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]Vec, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = BezierPoint(float64(i)/float64(n), p0, p1, p2)
	}
	return pts
}

// EaseInOut is the cubic ease used for one-shot transitions.
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// PulseValue oscillates smoothly between 0 and 1 with the given frequency
// (cycles per unit of time) and phase (in cycles).
func PulseValue(time, frequency, phase float64) float64 {
	v := (math.Sin((time*frequency+phase)*2*math.Pi) + 1) / 2
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
