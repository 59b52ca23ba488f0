package kernel

import "math"

// Orientation2 classifies the turn from a->b->c: positive for
// counter-clockwise, negative for clockwise, zero (within Tolerance) for
// colinear.
func Orientation2(a, b, c Point2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Colinear2 reports whether a, b, c are colinear within Tolerance, scaled by
// the triangle's characteristic length so the test is stable for points far
// from the origin.
func Colinear2(a, b, c Point2) bool {
	area2 := Orientation2(a, b, c)
	scale := math.Max(b.Sub(a).Length()*c.Sub(a).Length(), 1)
	return math.Abs(area2) < Tolerance*scale
}

// IntersectSegments2 intersects two 2D segments, returning the intersection
// point and the parametric positions (s along seg1, t along seg2) if they
// cross within their bounds. ok is false for parallel or non-crossing
// segments.
func IntersectSegments2(seg1, seg2 Segment2) (point Point2, s, t float64, ok bool) {
	d1 := seg1.Direction()
	d2 := seg2.Direction()
	denom := d1.Cross(d2)
	if math.Abs(denom) < Tolerance {
		return Point2{}, 0, 0, false
	}
	diff := seg2.A.Sub(seg1.A)
	s = diff.Cross(d2) / denom
	t = diff.Cross(d1) / denom
	if s < -Tolerance || s > 1+Tolerance || t < -Tolerance || t > 1+Tolerance {
		return Point2{}, 0, 0, false
	}
	return seg1.A.Add(d1.Scale(s)), s, t, true
}

// IntersectLineSegment2 intersects an infinite ray/line p0 + u*dir with a
// bounded segment, returning the parametric position u along the ray and t
// along the segment. ok is false for parallel lines or a crossing outside
// the segment's bounds (the ray itself is unbounded: callers needing u >= 0
// check that separately).
func IntersectLineSegment2(p0 Point2, dir Vector2, seg Segment2) (point Point2, u, t float64, ok bool) {
	d2 := seg.Direction()
	denom := dir.Cross(d2)
	if math.Abs(denom) < Tolerance {
		return Point2{}, 0, 0, false
	}
	diff := seg.A.Sub(p0)
	u = diff.Cross(d2) / denom
	t = diff.Cross(dir) / denom
	if t < -Tolerance || t > 1+Tolerance {
		return Point2{}, 0, 0, false
	}
	return p0.Add(dir.Scale(u)), u, t, true
}

// ParallelSlope reports whether two directions are parallel within
// Tolerance, comparing their slopes via the cross product (which is
// rotation-invariant and avoids division by a near-zero run).
func ParallelSlope(a, b Vector2) bool {
	na, nb := a.Normalized(), b.Normalized()
	return math.Abs(na.Cross(nb)) < Tolerance
}

// ProjectOntoLine2 returns the closest point to p on the infinite line
// through origin with direction dir.
func ProjectOntoLine2(p, origin Point2, dir Vector2) Point2 {
	d := dir.Normalized()
	if d.IsZero() {
		return origin
	}
	t := p.Sub(origin).Dot(d)
	return origin.Add(d.Scale(t))
}

// IntersectLines2 intersects two infinite 2D lines, each given as a point and
// a direction. ok is false if the directions are parallel within Tolerance.
func IntersectLines2(p1 Point2, d1 Vector2, p2 Point2, d2 Vector2) (Point2, bool) {
	denom := d1.Cross(d2)
	if math.Abs(denom) < Tolerance {
		return Point2{}, false
	}
	diff := p2.Sub(p1)
	t := diff.Cross(d2) / denom
	return p1.Add(d1.Scale(t)), true
}

// PointOnSegment2 reports whether p lies on seg within Tolerance.
func PointOnSegment2(p Point2, seg Segment2) bool {
	d := seg.Direction()
	l2 := d.Dot(d)
	if l2 < Tolerance*Tolerance {
		return p.EqualPt(seg.A)
	}
	t := p.Sub(seg.A).Dot(d) / l2
	if t < -Tolerance || t > 1+Tolerance {
		return false
	}
	proj := seg.A.Add(d.Scale(t))
	return p.Sub(proj).Length() < Tolerance
}

// AngleAbout returns the angle (radians, in [0, 2*pi)) of p as seen from
// centroid, used to sort bbox-edge crossing points angularly when building
// the initial convex clip of an input polygon's supporting plane.
func AngleAbout(centroid, p Point2) float64 {
	d := p.Sub(centroid)
	a := math.Atan2(d.Y, d.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
