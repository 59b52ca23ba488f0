// Package splitter implements the per-plane constrained planar subdivision
// that, at initialization, intersects an input (or bbox) polygon with every
// intersection line crossing its support plane and produces the initial
// planar subdivision on that plane.
//
// The trapezoid/query-graph machinery
// (triangulate/{trapezoid,querynode,querygraph,trapezoidize}.go,
// advanced/split_monotones.go) builds exactly this kind of constrained
// decomposition for triangulation, via Seidel's randomized incremental
// algorithm over a logarithmic point-location structure. This package
// keeps that algorithm's shape — locate the face a constraint segment
// falls in, split it there, repeat — but drives it directly against the
// half-edge mesh (internal/mesh) instead of a separate trapezoid graph,
// since the mesh already needs to support exactly this kind of edit during
// the kinetic phase proper and a second, throwaway representation would
// only have to be converted back afterward.
package splitter

import (
	"sort"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/mesh"
)

// Constraint is one intersection line's clipped 2D segment on a plane,
// together with the IEdge id it should bind to once inserted.
type Constraint struct {
	Edge igraph.EdgeID
	Seg  kernel.Segment2
}

// Split performs the three steps of the initial constrained subdivision
// for a single support plane: collect the crossing IEdges (already clipped
// to 2D by the caller via SupportPlane.Segment2Of), cut the polygon face
// along each one, and bind the new boundary edges to their originating
// IEdge. startFace is one of the faces installed by
// AddInputPolygon/AddBBoxPolygon. Binding a newly created boundary vertex
// to the intersection-graph vertex it lands on exactly is the caller's
// job, done afterward by point lookup against the same constraints.
func Split(sp *data.SupportPlane, startFace mesh.FaceID, constraints []Constraint) []mesh.FaceID {
	faces := []mesh.FaceID{startFace}

	// Longer constraints first: this tends to produce fewer, larger chords
	// before the face gets cut into slivers, mirroring
	// trapezoidize.go's intentional segment shuffle for expected-case
	// performance, except
	// here the ordering is deterministic because the kinetic phase that
	// follows needs reproducible mesh layouts across repeated runs on the
	// same input.
	ordered := make([]Constraint, len(constraints))
	copy(ordered, constraints)
	sort.Slice(ordered, func(i, j int) bool {
		li := ordered[i].Seg.Direction().Length()
		lj := ordered[j].Seg.Direction().Length()
		if li != lj {
			return li > lj
		}
		return ordered[i].Edge < ordered[j].Edge
	})

	for _, c := range ordered {
		faces = applyConstraint(sp, faces, c)
	}
	return faces
}

// applyConstraint locates the face among faces whose interior the
// constraint's segment crosses, clips the segment to that face's boundary,
// ensures both endpoints are mesh vertices (inserting them into boundary
// edges if necessary), and splits the face along the resulting chord,
// binding the new boundary to c.Edge.
func applyConstraint(sp *data.SupportPlane, faces []mesh.FaceID, c Constraint) []mesh.FaceID {
	target, a, b, ok := locateClip(sp, faces, c.Seg)
	if !ok {
		// The constraint does not cross this plane's polygon at all (it only
		// touches the bbox edge it was clipped from); nothing to do.
		return faces
	}

	vA := ensureVertex(sp, target, a)
	vB := ensureVertex(sp, target, b)
	if vA == vB {
		return faces
	}
	// A constraint running along an existing boundary edge of target does
	// not cross its interior: bind that edge instead of splitting.
	if he, ok2 := sp.Mesh.EdgeBetween(target, vA, vB); ok2 {
		sp.Mesh.HalfEdges[he].IEdge = int(c.Edge)
		return faces
	}
	if he, ok2 := sp.Mesh.EdgeBetween(target, vB, vA); ok2 {
		sp.Mesh.HalfEdges[he].IEdge = int(c.Edge)
		return faces
	}

	f1, f2 := sp.Mesh.SplitFaceByChord(target, vA, vB)
	if he, ok2 := sp.Mesh.EdgeBetween(f1, vA, vB); ok2 {
		sp.Mesh.HalfEdges[he].IEdge = int(c.Edge)
	}
	if he, ok2 := sp.Mesh.EdgeBetween(f2, vB, vA); ok2 {
		sp.Mesh.HalfEdges[he].IEdge = int(c.Edge)
	}

	out := make([]mesh.FaceID, 0, len(faces)+1)
	for _, f := range faces {
		if f != target {
			out = append(out, f)
		}
	}
	out = append(out, f1, f2)
	return out
}

// locateClip finds the first face among faces whose boundary the segment
// seg itself (not its infinite line) meets at two or more points, and
// returns the first and last of those points along seg.
func locateClip(sp *data.SupportPlane, faces []mesh.FaceID, seg kernel.Segment2) (mesh.FaceID, kernel.Point2, kernel.Point2, bool) {
	for _, f := range faces {
		pts := clipSegmentToFace(sp, f, seg)
		if len(pts) >= 2 {
			return f, pts[0], pts[len(pts)-1], true
		}
	}
	return mesh.NoFace, kernel.Point2{}, kernel.Point2{}, false
}

// clipSegmentToFace intersects the bounded segment seg against every
// boundary edge of f, returning the crossing points ordered along the
// segment. Points already coincident with a boundary vertex are included
// exactly once.
func clipSegmentToFace(sp *data.SupportPlane, f mesh.FaceID, seg kernel.Segment2) []kernel.Point2 {
	verts := sp.Mesh.FaceVertices(f)
	n := len(verts)
	if n < 3 {
		return nil
	}
	var hits []kernel.Point2
	for i := 0; i < n; i++ {
		a := sp.Mesh.Vertices[verts[i]].Pos
		b := sp.Mesh.Vertices[verts[(i+1)%n]].Pos
		p, _, t, ok := kernel.IntersectSegments2(seg, kernel.Segment2{A: a, B: b})
		if !ok {
			continue
		}
		_ = t
		hits = append(hits, p)
	}
	if len(hits) < 2 {
		return nil
	}
	dir := seg.Direction()
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Sub(seg.A).Dot(dir) < hits[j].Sub(seg.A).Dot(dir)
	})
	// Deduplicate near-identical hits (a line grazing a vertex reports it twice).
	out := hits[:1]
	for _, h := range hits[1:] {
		if h.Sub(out[len(out)-1]).Length() > kernel.Tolerance {
			out = append(out, h)
		}
	}
	return out
}

// ensureVertex returns the boundary vertex of f at p, inserting a new one
// into whichever boundary half-edge contains p if none already exists
// there.
func ensureVertex(sp *data.SupportPlane, f mesh.FaceID, p kernel.Point2) mesh.VertexID {
	for _, v := range sp.Mesh.FaceVertices(f) {
		if sp.Mesh.Vertices[v].Pos.EqualPt(p) {
			return v
		}
	}
	for _, he := range sp.Mesh.FaceHalfEdges(f) {
		a := sp.Mesh.Vertices[sp.Mesh.HalfEdges[he].Origin].Pos
		b := sp.Mesh.Vertices[sp.Mesh.NextVertex(he)].Pos
		if kernel.PointOnSegment2(p, kernel.Segment2{A: a, B: b}) {
			w, _, _ := sp.Mesh.InsertVertexOnEdge(he, p)
			return w
		}
	}
	panic("splitter: point is not on any boundary edge of the target face")
}
