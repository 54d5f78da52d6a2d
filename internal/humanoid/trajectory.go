// internal/humanoid/trajectory.go
package humanoid

import (
	"math"
	"math/rand"
)

const (
	// pixels travelled per intermediate move event.
	stepSpan = 40.0
	minSteps = 2
	maxSteps = 16
	// control points deviate at most this fraction of the distance from the
	// straight line.
	maxBow = 0.2
)

// computeEaseInOutCubic provides a smooth acceleration and deceleration profile for movement.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// stepsFor picks how many move events a path of the given length uses.
func stepsFor(dist float64) int {
	n := int(dist / stepSpan)
	if n < minSteps {
		return minSteps
	}
	if n > maxSteps {
		return maxSteps
	}
	return n
}

// generatePath returns a cubic Bezier from start to end, sampled at eased
// times. The last point is always end exactly.
func generatePath(rng *rand.Rand, start, end Vector2D) []Vector2D {
	mainVec := end.Sub(start)
	dist := mainVec.Mag()
	if dist < 1.0 {
		return []Vector2D{end}
	}

	normal := mainVec.Mul(1 / dist).Perp()
	bow := func() Vector2D { return normal.Mul((rng.Float64()*2 - 1) * maxBow * dist) }
	p0, p3 := start, end
	p1 := start.Add(mainVec.Mul(1.0 / 3.0)).Add(bow())
	p2 := start.Add(mainVec.Mul(2.0 / 3.0)).Add(bow())

	n := stepsFor(dist)
	path := make([]Vector2D, n)
	for i := 0; i < n; i++ {
		t := computeEaseInOutCubic(float64(i+1) / float64(n))
		omt := 1.0 - t
		omt2 := omt * omt
		t2 := t * t
		path[i] = p0.Mul(omt2 * omt).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t2 * t))
	}
	path[n-1] = end
	return path
}
