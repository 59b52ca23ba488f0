// Package preprocess implements input-polygon cleanup: equal-point
// removal, colinear-point removal with a shrinking angle threshold, and
// centroid-direction sorting, run before an input polygon is installed on
// its support plane.
package preprocess

import (
	"math"
	"sort"

	"github.com/dunmore/ksr/internal/kernel"
)

// DefaultMinAngleDegrees is the starting colinearity threshold.
const DefaultMinAngleDegrees = 10.0

// MaxColinearRetries bounds the angle-halving retry loop.
const MaxColinearRetries = 8

// RemoveEqualPoints walks points cyclically and drops any point within
// minDist of the previously kept point. minDist defaults to
// kernel.Tolerance when <= 0.
func RemoveEqualPoints(points []kernel.Point2, minDist float64) []kernel.Point2 {
	if minDist <= 0 {
		minDist = kernel.Tolerance
	}
	if len(points) == 0 {
		return points
	}
	out := []kernel.Point2{points[0]}
	for _, p := range points[1:] {
		last := out[len(out)-1]
		if p.Sub(last).Length() >= minDist {
			out = append(out, p)
		}
	}
	// Close the cycle: drop the last point if it coincides with the first.
	if len(out) > 1 && out[len(out)-1].Sub(out[0]).Length() < minDist {
		out = out[:len(out)-1]
	}
	return out
}

// RemoveColinearPoints drops points q from consecutive triples (p, q, r)
// whose turn angle is at most minAngleDegrees (i.e. is nearly straight). If
// the result would have fewer than three points, the threshold is halved
// and the pass retried, up to MaxColinearRetries times.
func RemoveColinearPoints(points []kernel.Point2, minAngleDegrees float64) []kernel.Point2 {
	if minAngleDegrees <= 0 {
		minAngleDegrees = DefaultMinAngleDegrees
	}
	angle := minAngleDegrees
	current := points
	for i := 0; i < MaxColinearRetries; i++ {
		reduced := removeColinearPass(current, angle)
		if len(reduced) >= 3 {
			return reduced
		}
		angle /= 2
		if angle < 1e-6 {
			break
		}
	}
	return current
}

func removeColinearPass(points []kernel.Point2, minAngleDegrees float64) []kernel.Point2 {
	n := len(points)
	if n < 3 {
		return points
	}
	minAngleRad := minAngleDegrees * math.Pi / 180
	var out []kernel.Point2
	for i := 0; i < n; i++ {
		p := points[(i-1+n)%n]
		q := points[i]
		r := points[(i+1)%n]

		toR := r.Sub(q)
		toP := p.Sub(q)
		if toR.Length() < kernel.Tolerance || toP.Length() < kernel.Tolerance {
			continue // degenerate, drop q
		}
		cosA := toR.Normalized().Dot(toP.Normalized())
		cosA = math.Max(-1, math.Min(1, cosA))
		turnAngle := math.Pi - math.Acos(cosA)
		if turnAngle > minAngleRad {
			out = append(out, q)
		}
	}
	return out
}

// Centroid returns the area centroid of the polygon points trace: the
// centroid of a fan triangulation from the vertex mean, weighted by each
// triangle's signed area. A simple polygon's area centroid is the same
// regardless of which triangulation covers it, so this fan -- anchored at
// an interior point rather than requiring a full triangulation library --
// gives the same result a Delaunay triangulation of the same points would.
// Falls back to the plain vertex mean for degenerate input (fewer than
// three points, or zero total area).
func Centroid(points []kernel.Point2) kernel.Point2 {
	if len(points) == 0 {
		return kernel.Point2{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	mean := kernel.Point2{X: sx / n, Y: sy / n}
	if len(points) < 3 {
		return mean
	}

	var area, cx, cy float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		a := kernel.Orientation2(mean, p, q) / 2
		area += a
		cx += a * (mean.X + p.X + q.X) / 3
		cy += a * (mean.Y + p.Y + q.Y) / 3
	}
	if math.Abs(area) < kernel.Tolerance {
		return mean
	}
	return kernel.Point2{X: cx / area, Y: cy / area}
}

// SortByDirection orders points by the 2D direction of the segment from
// centroid to each point, producing the well-conditioned star-shaped
// outline needed for building the initial mesh.
func SortByDirection(points []kernel.Point2, centroid kernel.Point2) []kernel.Point2 {
	out := make([]kernel.Point2, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool {
		return kernel.AngleAbout(centroid, out[i]) < kernel.AngleAbout(centroid, out[j])
	})
	return out
}

// Clean runs the full cleanup pipeline: remove equal points, remove
// colinear points, then sort by direction about the centroid.
func Clean(points []kernel.Point2, minDist, minAngleDegrees float64) []kernel.Point2 {
	p := RemoveEqualPoints(points, minDist)
	p = RemoveColinearPoints(p, minAngleDegrees)
	c := Centroid(p)
	return SortByDirection(p, c)
}
