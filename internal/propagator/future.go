// Package propagator implements the main kinetic loop: the event queue
// consumer that pops the earliest collision, dispatches it to one of the
// four handlers, and reschedules whatever vertices the handler touched.
//
// Grounded on triangulate/trapezoidize.go's own triangulation sweep
// (its AddSegment loop, which processes one
// input segment at a time against the live trapezoidation, mutating it
// and moving on) -- the shape here is the same incremental
// mutate-and-continue loop, just driven by simulated time instead of
// input order.
package propagator

import (
	"math"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/mesh"
)

// horizon bounds how far ahead a vertex's unbounded ray is swept when
// looking for candidate crossing edges; far larger than any bounding box
// this engine would be asked to reconstruct within.
const horizon = 1e6

// futureRayBBox returns a bounding box covering vertex v's future
// trajectory out to the horizon, used to query a support plane's spatial
// index for candidate crossing IEdges.
func futureRayBBox(sp *data.SupportPlane, v mesh.VertexID, now float64) kernel.BBox2 {
	pos := sp.PositionAt(v, now)
	dir := sp.Mesh.Vertices[v].Dir
	far := pos.Add(dir.Scale(horizon))
	return kernel.Segment2{A: pos, B: far}.BBox()
}

// futureIEdgeCrossing returns the global simulated time at which vertex v
// (moving from pos0 at t0 with direction dir) reaches seg, and the 2D
// point of that crossing. ok is false if v's ray never reaches seg, or
// would have needed to arrive in the past.
func futureIEdgeCrossing(sp *data.SupportPlane, v mesh.VertexID, seg kernel.Segment2, now float64) (time float64, point kernel.Point2, ok bool) {
	vert := &sp.Mesh.Vertices[v]
	if vert.Dir.IsZero() {
		return 0, kernel.Point2{}, false
	}
	p, u, _, found := kernel.IntersectLineSegment2(vert.Pos, vert.Dir, seg)
	if !found {
		return 0, kernel.Point2{}, false
	}
	t := vert.T0 + u
	if t < now-kernel.Tolerance {
		return 0, kernel.Point2{}, false
	}
	if t < now {
		t = now
	}
	return t, p, true
}

// futureIVertexArrival returns the global time at which v's trajectory
// reaches the fixed 2D point target, projecting v's direction onto the
// displacement to target rather than requiring an exact ray hit (a
// constrained vertex's direction is expected to already point along the
// edge it slides on, but floating noise can leave it a few degrees off).
func futureIVertexArrival(sp *data.SupportPlane, v mesh.VertexID, target kernel.Point2, now float64) (time float64, ok bool) {
	vert := &sp.Mesh.Vertices[v]
	if vert.Dir.IsZero() {
		if vert.Pos.EqualPt(target) {
			return now, true
		}
		return 0, false
	}
	disp := target.Sub(vert.Pos)
	len2 := vert.Dir.Dot(vert.Dir)
	if len2 < kernel.Tolerance*kernel.Tolerance {
		return 0, false
	}
	u := disp.Dot(vert.Dir) / len2
	proj := vert.Pos.Add(vert.Dir.Scale(u))
	if proj.Sub(target).Length() > 1e-6 {
		return 0, false
	}
	t := vert.T0 + u
	if t < now-kernel.Tolerance {
		return 0, false
	}
	if t < now {
		t = now
	}
	return t, true
}

// futurePointDirection implements the future-point-and-direction
// computation: v is about to become constrained to ie, so its new motion
// must stay tangent to L(ie), but which of the two possible tangent
// directions (and at what future point the projected position should be
// anchored) depends on where v's still-moving boundary neighbors are
// headed. For each neighbor, this extrapolates the line through the
// neighbor's and v's own position one time unit ahead; if that line runs
// parallel to L(ie) the neighbor is already sliding along it, so the
// future point is simply whichever endpoint of ie the neighbor's own
// velocity points toward, otherwise the future point is where the
// extrapolated line crosses L(ie). Of the (up to two) neighbor-derived
// candidates, the one whose direction continues v's existing motion most
// closely is kept, and its position is back-projected to t=0 so it can be
// stored as the vertex's new (Pos, T0, Dir) triple.
func futurePointDirection(sp *data.SupportPlane, g *igraph.Graph, v mesh.VertexID, ie igraph.EdgeID, tNow float64) (kernel.Point2, kernel.Vector2, bool) {
	seg := sp.Segment2Of(g, ie)
	lineDir := seg.Direction().Normalized()
	if lineDir.IsZero() {
		return kernel.Point2{}, kernel.Vector2{}, false
	}

	vert := &sp.Mesh.Vertices[v]
	pinit := kernel.ProjectOntoLine2(vert.PositionAt(tNow), seg.A, lineDir)

	var bestFuture kernel.Point2
	var bestDir kernel.Vector2
	var bestScore float64
	found := false
	for _, w := range neighborsOf(sp, v) {
		if !sp.Mesh.Vertices[w].Active {
			continue
		}
		nb := &sp.Mesh.Vertices[w]
		vNext := vert.PositionAt(tNow + 1)
		nbNext := nb.PositionAt(tNow + 1)
		extDir := vNext.Sub(nbNext)
		if extDir.IsZero() {
			continue
		}

		var future kernel.Point2
		if kernel.ParallelSlope(extDir, lineDir) {
			future = seg.B
			if nb.Dir.Dot(lineDir) < 0 {
				future = seg.A
			}
		} else {
			pt, ok := kernel.IntersectLines2(nbNext, extDir, seg.A, lineDir)
			if !ok {
				continue
			}
			future = pt
		}

		dir := future.Sub(pinit)
		if dir.IsZero() {
			continue
		}
		score := dir.Normalized().Dot(vert.Dir.Normalized())
		if !found || score > bestScore {
			bestFuture, bestDir, bestScore, found = future, dir, score, true
		}
	}
	if !found {
		return kernel.Point2{}, kernel.Vector2{}, false
	}

	pos0 := bestFuture.Add(bestDir.Scale(-tNow))
	return pos0, bestDir, true
}

// futurePVertexMeeting returns the global time at which two boundary
// vertices a, b on the same support plane meet (the edge between them
// shrinking to zero length), solving the affine system pos_a(t) = pos_b(t)
// via whichever coordinate has the larger relative-velocity magnitude (the
// more numerically stable one to divide by).
func futurePVertexMeeting(sp *data.SupportPlane, a, b mesh.VertexID, now float64) (time float64, ok bool) {
	va, vb := &sp.Mesh.Vertices[a], &sp.Mesh.Vertices[b]
	// f(t) = (posA + dirA*(t-t0A)) - (posB + dirB*(t-t0B)) = C + D*t
	baseA := va.Pos.Add(va.Dir.Scale(-va.T0))
	baseB := vb.Pos.Add(vb.Dir.Scale(-vb.T0))
	c := baseA.Sub(baseB)
	d := va.Dir.Sub(vb.Dir)

	if d.IsZero() {
		if c.Length() < kernel.Tolerance {
			return now, true
		}
		return 0, false
	}

	var t float64
	if math.Abs(d.X) >= math.Abs(d.Y) {
		t = -c.X / d.X
	} else {
		t = -c.Y / d.Y
	}
	// Verify the other coordinate also reaches zero at t (the two vertices
	// must be approaching along a single straight line for a merge to be
	// geometrically meaningful).
	resid := kernel.Vector2{X: c.X + d.X*t, Y: c.Y + d.Y*t}
	if resid.Length() > 1e-6 {
		return 0, false
	}
	if t < now-kernel.Tolerance {
		return 0, false
	}
	if t < now {
		t = now
	}
	return t, true
}
