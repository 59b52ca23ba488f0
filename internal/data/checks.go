package data

import (
	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/kernel"
)

// CheckBBoxPlane and CheckInteriorPlane are the named invariant checks
// assertable after the polygon splitter runs: every PFace on the
// plane must have every PVertex bound to an IVertex and every PEdge bound
// to an IEdge (CheckBBoxPlane, for the six immutable bbox planes, where
// every boundary point by construction is an intersection point), or every
// PEdge either bound to an IEdge or explicitly interior
// (CheckInteriorPlane, for input-polygon planes, whose outline may include
// genuinely interior edges with no intersection binding).
func (d *Data) CheckBBoxPlane(i int) error {
	sp := d.requirePlane(i)
	for _, f := range d.PFacesOf(i) {
		for _, pv := range d.PVerticesOfFace(f) {
			if _, ok := sp.IVertexOf(pv.V); !ok {
				return errors.Errorf("invariant violation: bbox plane %d pvertex %d has no bound ivertex", i, pv.V)
			}
		}
		for _, pe := range d.PEdgesOfFace(f) {
			if _, ok := sp.IEdgeOfHalfEdge(pe.HE); !ok {
				return errors.Errorf("invariant violation: bbox plane %d pedge %d has no bound iedge", i, pe.HE)
			}
		}
	}
	return nil
}

// CheckInteriorPlane checks the weaker invariant for input-polygon planes:
// every bound PEdge's origin lies on its IEdge's projected segment.
// Interior (unbound) edges are permitted, and vertex-to-IVertex bindings
// are not checked.
func (d *Data) CheckInteriorPlane(i int) error {
	sp := d.requirePlane(i)
	for _, f := range d.PFacesOf(i) {
		for _, pe := range d.PEdgesOfFace(f) {
			ie, ok := sp.IEdgeOfHalfEdge(pe.HE)
			if !ok {
				continue
			}
			he := sp.Mesh.HalfEdges[pe.HE]
			seg2 := sp.Segment2Of(d.Graph, ie)
			from := sp.Mesh.Vertices[he.Origin].Pos
			if !kernel.PointOnSegment2(from, seg2) {
				return errors.Errorf("invariant violation: plane %d pedge %d bound to iedge %d but origin is off its projection", i, pe.HE, ie)
			}
		}
	}
	return nil
}

// CheckAll runs every per-plane invariant (bbox planes strictly, interior
// planes weakly) plus the intersection graph's own invariants. Intended to
// run after every event when Options.Debug is set.
func (d *Data) CheckAll() error {
	if err := d.Graph.CheckInvariants(); err != nil {
		return err
	}
	for i := range d.Planes {
		if IsBBoxPlane(i) {
			if err := d.CheckBBoxPlane(i); err != nil {
				return err
			}
		} else {
			if err := d.CheckInteriorPlane(i); err != nil {
				return err
			}
		}
	}
	return d.checkLimitLines()
}

// checkLimitLines enforces that every limit_lines entry has at most two
// pairs, each with distinct plane indices.
func (d *Data) checkLimitLines() error {
	for line, entries := range d.LimitLines {
		if len(entries) > 2 {
			return errors.Errorf("invariant violation: limit_lines[%d] has %d entries (> 2)", line, len(entries))
		}
		for _, e := range entries {
			if e.ThisPlane == e.OtherPlane {
				return errors.Errorf("invariant violation: limit_lines[%d] has a degenerate plane pair (%d,%d)", line, e.ThisPlane, e.OtherPlane)
			}
		}
	}
	return nil
}

// CheckConstrainedOnSegment checks that for every constrained PVertex v
// with iedge e, position_at(v, currentTime) lies on e's 2D projection
// within tolerance.
func (d *Data) CheckConstrainedOnSegment(pv PVertex, currentTime float64) error {
	sp := d.requirePlane(pv.Plane)
	ie, ok := sp.IEdgeOfVertex(pv.V)
	if !ok {
		return nil
	}
	seg2 := sp.Segment2Of(d.Graph, ie)
	pos := sp.PositionAt(pv.V, currentTime)
	if !kernel.PointOnSegment2(pos, seg2) {
		return errors.Errorf("invariant violation: constrained pvertex plane=%d v=%d drifted off its iedge", pv.Plane, pv.V)
	}
	return nil
}
