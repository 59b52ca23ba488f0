// Package kernel provides the arithmetic and geometric primitives the rest
// of the engine is generic over: 2D/3D points and vectors, segments, planes,
// and the orientation/intersection predicates needed to build the
// intersection graph and drive the kinetic propagation.
//
// Rather than a dual exact-rational / inexact-double kernel, this kernel is
// float64 throughout, with every comparison routed through Tolerance, the
// same Equal/Tolerance convention this package is named after, rather than
// introducing a second, exact-rational arithmetic type with no
// corresponding library at hand.
package kernel

import "math"

// Tolerance is the process-wide scalar used as the threshold for "equal
// under arithmetic noise". It parameterizes every predicate in this package.
const Tolerance = 1e-9

// Equal reports whether a and b are within Tolerance of each other.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

// EqualTol reports whether a and b are within tol of each other.
func EqualTol(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// Point2 is a point in a support plane's 2D parameterization.
type Point2 struct {
	X, Y float64
}

// Vector2 is a displacement in a support plane's 2D parameterization. A zero
// vector marks a frozen kinetic vertex.
type Vector2 struct {
	X, Y float64
}

func (p Point2) Add(v Vector2) Point2  { return Point2{p.X + v.X, p.Y + v.Y} }
func (p Point2) Sub(q Point2) Vector2  { return Vector2{p.X - q.X, p.Y - q.Y} }
func (p Point2) EqualPt(q Point2) bool { return Equal(p.X, q.X) && Equal(p.Y, q.Y) }

func (v Vector2) Scale(s float64) Vector2 { return Vector2{v.X * s, v.Y * s} }
func (v Vector2) Add(w Vector2) Vector2   { return Vector2{v.X + w.X, v.Y + w.Y} }
func (v Vector2) Sub(w Vector2) Vector2   { return Vector2{v.X - w.X, v.Y - w.Y} }
func (v Vector2) Dot(w Vector2) float64   { return v.X*w.X + v.Y*w.Y }
func (v Vector2) Cross(w Vector2) float64 { return v.X*w.Y - v.Y*w.X }
func (v Vector2) Length() float64         { return math.Hypot(v.X, v.Y) }
func (v Vector2) IsZero() bool            { return Equal(v.X, 0) && Equal(v.Y, 0) }

func (v Vector2) Normalized() Vector2 {
	l := v.Length()
	if l < Tolerance {
		return Vector2{}
	}
	return Vector2{v.X / l, v.Y / l}
}

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vector2) Perp() Vector2 { return Vector2{-v.Y, v.X} }

// Point3 is a point in world space.
type Point3 struct {
	X, Y, Z float64
}

type Vector3 struct {
	X, Y, Z float64
}

func (p Point3) Add(v Vector3) Point3  { return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z} }
func (p Point3) Sub(q Point3) Vector3  { return Vector3{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }
func (p Point3) EqualPt(q Point3) bool { return Equal(p.X, q.X) && Equal(p.Y, q.Y) && Equal(p.Z, q.Z) }

func (v Vector3) Add(w Vector3) Vector3 { return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }
func (v Vector3) Sub(w Vector3) Vector3 { return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}
func (v Vector3) Dot(w Vector3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}
func (v Vector3) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l < Tolerance {
		return Vector3{}
	}
	return Vector3{v.X / l, v.Y / l, v.Z / l}
}

// Segment2 is a directed segment in a support plane's 2D parameterization.
type Segment2 struct {
	A, B Point2
}

func (s Segment2) Direction() Vector2 { return s.B.Sub(s.A) }

func (s Segment2) BBox() BBox2 {
	return BBox2{
		Min: Point2{math.Min(s.A.X, s.B.X), math.Min(s.A.Y, s.B.Y)},
		Max: Point2{math.Max(s.A.X, s.B.X), math.Max(s.A.Y, s.B.Y)},
	}
}

// Segment3 is a directed segment in world space.
type Segment3 struct {
	A, B Point3
}

// BBox2 is an axis-aligned bounding box in 2D.
type BBox2 struct {
	Min, Max Point2
}

func (b BBox2) Overlaps(o BBox2) bool {
	return b.Min.X <= o.Max.X+Tolerance && b.Max.X >= o.Min.X-Tolerance &&
		b.Min.Y <= o.Max.Y+Tolerance && b.Max.Y >= o.Min.Y-Tolerance
}

func (b BBox2) Union(o BBox2) BBox2 {
	return BBox2{
		Min: Point2{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y)},
		Max: Point2{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y)},
	}
}
