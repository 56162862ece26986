package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon below which a length is treated as zero.
const epsilon = 1e-9

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// Direction returns the unit vector pointing from one point to another.
// Coincident points yield the zero vector.
func Direction(from, to r3.Vec) r3.Vec {
	d := r3.Sub(to, from)
	n := r3.Norm(d)
	if n < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, d)
}

// AngleBetween returns the unsigned angle between two vectors in radians.
// Zero-length input yields 0.
func AngleBetween(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na < epsilon || nb < epsilon {
		return 0
	}
	cos := r3.Dot(a, b) / (na * nb)
	// Rounding can push |cos| slightly past 1.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// WithinRadius reports whether b lies within radius of a (inclusive).
func WithinRadius(a, b r3.Vec, radius float64) bool {
	return r3.Norm2(r3.Sub(b, a)) <= radius*radius
}

// ClampMagnitude scales v down so its length does not exceed max.
func ClampMagnitude(v r3.Vec, max float64) r3.Vec {
	if max <= 0 {
		return r3.Vec{}
	}
	n := r3.Norm(v)
	if n <= max {
		return v
	}
	return r3.Scale(max/n, v)
}

// Flatten zeroes the up (Y) axis. Ground agents apply it to positions and
// forces so steering stays in the horizontal plane.
func Flatten(v r3.Vec) r3.Vec {
	v.Y = 0
	return v
}

// InViewCone reports whether target lies inside the cone of full width
// viewAngle (radians) around forward, edge inclusive. A zero forward, a
// coincident target, or a viewAngle of zero or at least 2*pi sees all
// around.
func InViewCone(self, forward, target r3.Vec, viewAngle float64) bool {
	if viewAngle <= 0 || viewAngle >= 2*math.Pi {
		return true
	}
	return AngleBetween(forward, r3.Sub(target, self)) <= viewAngle/2+epsilon
}
