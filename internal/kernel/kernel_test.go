package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/kernel"
)

func TestEqualTolerance(t *testing.T) {
	assert.True(t, kernel.Equal(1.0, 1.0+kernel.Tolerance/10))
	assert.False(t, kernel.Equal(1.0, 1.1))
}

func TestFrameRoundTrip(t *testing.T) {
	pl := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 1, Z: 0}, Offset: 2}
	f := kernel.FrameFromPlane(pl)
	p2 := kernel.Point2{X: 1.5, Y: -3.25}
	p3 := f.To3D(p2)
	require.True(t, pl.OnPlane(p3))
	back := f.To2D(p3)
	assert.InDelta(t, p2.X, back.X, 1e-6)
	assert.InDelta(t, p2.Y, back.Y, 1e-6)
}

func TestIntersectPlanes(t *testing.T) {
	a := kernel.Plane{Normal: kernel.Vector3{X: 1, Y: 0, Z: 0}, Offset: 0}
	b := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 1, Z: 0}, Offset: 0}
	p, dir, ok := kernel.IntersectPlanes(a, b)
	require.True(t, ok)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 1, dir.Z*dir.Z+dir.X*dir.X+dir.Y*dir.Y, 1e-9)
}

func TestIntersectParallelPlanes(t *testing.T) {
	a := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 0, Z: 1}, Offset: 0}
	b := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 0, Z: 1}, Offset: 5}
	_, _, ok := kernel.IntersectPlanes(a, b)
	assert.False(t, ok)
}

func TestAABBDegenerateAxisShift(t *testing.T) {
	pts := []kernel.Point3{{X: 0, Y: -1, Z: -1}, {X: 0, Y: 1, Z: 1}}
	box := kernel.AABB(pts, 1.0)
	assert.GreaterOrEqual(t, box.Half.X, kernel.Tolerance)
}

func TestOrientation2(t *testing.T) {
	a := kernel.Point2{X: 0, Y: 0}
	b := kernel.Point2{X: 1, Y: 0}
	c := kernel.Point2{X: 1, Y: 1}
	assert.Greater(t, kernel.Orientation2(a, b, c), 0.0)
	assert.Less(t, kernel.Orientation2(a, c, b), 0.0)
}

func TestIntersectSegments2(t *testing.T) {
	s1 := kernel.Segment2{A: kernel.Point2{X: -1, Y: 0}, B: kernel.Point2{X: 1, Y: 0}}
	s2 := kernel.Segment2{A: kernel.Point2{X: 0, Y: -1}, B: kernel.Point2{X: 0, Y: 1}}
	p, _, _, ok := kernel.IntersectSegments2(s1, s2)
	require.True(t, ok)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}
