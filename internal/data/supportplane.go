// Package data implements the Data structure D: the owner of every
// support plane SP_i and the intersection graph I, plus the
// PVertex/PEdge/PFace polygon-simplex abstraction used throughout the
// propagator.
package data

import (
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/mesh"
)

// iedgeLeaf is the rtreego.Spatial entry backing a support plane's spatial
// index over its crossing IEdges (the "cached iedges/isegments/ibboxes
// vectors"). dhconnelly/rtreego turns what would otherwise be an O(n)
// bbox-overlap scan for candidate generation into a logarithmic query, the
// 2D analogue of the point-location structure
// triangulate/querygraph.go's own trapezoidization relies on.
type iedgeLeaf struct {
	edge igraph.EdgeID
	rect rtreego.Rect
}

func (l *iedgeLeaf) Bounds() rtreego.Rect { return l.rect }

func toRect(bb kernel.BBox2) rtreego.Rect {
	const pad = 1e-6
	minX, minY := bb.Min.X-pad, bb.Min.Y-pad
	w := bb.Max.X - bb.Min.X + 2*pad
	h := bb.Max.Y - bb.Min.Y + 2*pad
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
	if err != nil {
		// Degenerate (zero-area) segments still need a queryable rect; widen it.
		rect, _ = rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w + pad, h + pad})
	}
	return rect
}

// SupportPlane is SP_i: a plane equation and 2D frame, an owned dynamic
// mesh M_i, the set of IEdges crossing this plane, and the per-plane
// crossing budget k.
type SupportPlane struct {
	Index int
	Frame kernel.Frame
	Mesh  *mesh.Mesh
	K     int

	uniqueIEdges map[igraph.EdgeID]struct{}

	// Populated once by FreezeIEdgeCache at the end of initialization from
	// unique_iedges, which is copied rather than moved: the set stays in
	// place alongside the cache during the kinetic phase.
	iedges   []igraph.EdgeID
	isegments []kernel.Segment2
	ibboxes  []kernel.BBox2
	index    *rtreego.Rtree
}

// NewSupportPlane creates an empty SP_i over the given plane, with crossing
// budget k.
func NewSupportPlane(index int, plane kernel.Plane, k int) *SupportPlane {
	return &SupportPlane{
		Index:        index,
		Frame:        kernel.FrameFromPlane(plane),
		Mesh:         mesh.New(),
		K:            k,
		uniqueIEdges: map[igraph.EdgeID]struct{}{},
	}
}

// To2D / To3D delegate to the plane's rigid isometry.
func (sp *SupportPlane) To2D(p kernel.Point3) kernel.Point2 { return sp.Frame.To2D(p) }
func (sp *SupportPlane) To3D(p kernel.Point2) kernel.Point3 { return sp.Frame.To3D(p) }

// PositionAt evaluates vertex v's kinetic position at time t.
func (sp *SupportPlane) PositionAt(v mesh.VertexID, t float64) kernel.Point2 {
	return sp.Mesh.Vertices[v].PositionAt(t)
}

// AddInputPolygon installs the initial face for an input polygon: outline
// points2 in order, each vertex's direction set outward-normal to its
// adjacent edges at unit speed.
func (sp *SupportPlane) AddInputPolygon(points2 []kernel.Point2, inputIndices []int) (mesh.FaceID, []mesh.VertexID) {
	f, verts := sp.Mesh.AddPolygonFace(points2, inputIndices)
	n := len(verts)
	for i, v := range verts {
		prev := points2[(i-1+n)%n]
		next := points2[(i+1)%n]
		sp.Mesh.Vertices[v].Dir = outwardBisector(prev, points2[i], next)
	}
	return f, verts
}

// outwardBisector returns the unit-speed direction a polygon vertex at cur
// (between prev and next, CCW winding) should move outward along: the
// angle bisector of the two edge outward normals, scaled so the vertex's
// own edges both recede at unit speed.
func outwardBisector(prev, cur, next kernel.Point2) kernel.Vector2 {
	inEdge := cur.Sub(prev)
	outEdge := next.Sub(cur)
	nIn := inEdge.Normalized().Perp().Scale(-1)
	nOut := outEdge.Normalized().Perp().Scale(-1)
	bis := nIn.Add(nOut)
	if bis.IsZero() {
		return nIn
	}
	bis = bis.Normalized()
	// Scale so that the edges themselves recede at unit normal speed: divide
	// by cos(half the turn angle), i.e. by bis . nIn.
	cosHalf := bis.Dot(nIn)
	if cosHalf < 0.05 {
		cosHalf = 0.05
	}
	return bis.Scale(1 / cosHalf)
}

// AddBBoxPolygon installs a rectangular bbox face: vertices are frozen
// (direction zero) and bound to the four given IVertices.
func (sp *SupportPlane) AddBBoxPolygon(points2 []kernel.Point2, ivertices []igraph.VertexID) (mesh.FaceID, []mesh.VertexID) {
	if len(points2) != len(ivertices) {
		panic(errors.Errorf("data: AddBBoxPolygon needs matching points/ivertices, got %d/%d", len(points2), len(ivertices)))
	}
	f, verts := sp.Mesh.AddPolygonFace(points2, nil)
	for i, v := range verts {
		sp.Mesh.Vertices[v].Dir = kernel.Vector2{}
		sp.Mesh.Vertices[v].IVertex = int(ivertices[i])
	}
	return f, verts
}

// SetIVertex binds mesh vertex v to intersection-graph vertex iv.
func (sp *SupportPlane) SetIVertex(v mesh.VertexID, iv igraph.VertexID) {
	sp.Mesh.Vertices[v].IVertex = int(iv)
}

// SetIEdge binds the half-edge leaving v to intersection-graph edge ie,
// marking v as constrained: a vertex is constrained iff iedge_of(v) is
// set.
func (sp *SupportPlane) SetIEdge(v mesh.VertexID, ie igraph.EdgeID) {
	sp.Mesh.HalfEdges[sp.Mesh.Vertices[v].Leaving].IEdge = int(ie)
}

// SetIEdgeBetween binds the half-edge from u to v specifically, used when
// a vertex has two incident edges and only one of them is the constraint.
func (sp *SupportPlane) SetIEdgeBetween(u, v mesh.VertexID, f mesh.FaceID, ie igraph.EdgeID) {
	he, ok := sp.Mesh.EdgeBetween(f, u, v)
	if !ok {
		panic(errors.Errorf("data: SetIEdgeBetween: %d/%d not adjacent on face %d", u, v, f))
	}
	sp.Mesh.HalfEdges[he].IEdge = int(ie)
}

// IVertexOf / IEdgeOf read back vertex/half-edge bindings. ok is false for
// an unbound simplex.
func (sp *SupportPlane) IVertexOf(v mesh.VertexID) (igraph.VertexID, bool) {
	iv := sp.Mesh.Vertices[v].IVertex
	if iv == mesh.NoIGraphRef {
		return igraph.NoVertex, false
	}
	return igraph.VertexID(iv), true
}

func (sp *SupportPlane) IEdgeOfHalfEdge(he mesh.HalfEdgeID) (igraph.EdgeID, bool) {
	ie := sp.Mesh.HalfEdges[he].IEdge
	if ie == mesh.NoIGraphRef {
		return igraph.NoEdge, false
	}
	return igraph.EdgeID(ie), true
}

// IEdgeOfVertex returns the iedge the vertex's leaving half-edge is bound
// to, i.e. the constraint v currently slides along.
func (sp *SupportPlane) IEdgeOfVertex(v mesh.VertexID) (igraph.EdgeID, bool) {
	return sp.IEdgeOfHalfEdge(sp.Mesh.Vertices[v].Leaving)
}

// Constrained reports whether v is currently bound to an iedge.
func (sp *SupportPlane) Constrained(v mesh.VertexID) bool {
	_, ok := sp.IEdgeOfVertex(v)
	return ok
}

// Prev / Next / Edge / Face / Faces delegate to the mesh.
func (sp *SupportPlane) Prev(leaving mesh.HalfEdgeID) mesh.VertexID { return sp.Mesh.PrevVertex(leaving) }
func (sp *SupportPlane) Next(leaving mesh.HalfEdgeID) mesh.VertexID { return sp.Mesh.NextVertex(leaving) }
func (sp *SupportPlane) Edge(f mesh.FaceID, u, v mesh.VertexID) (mesh.HalfEdgeID, bool) {
	return sp.Mesh.EdgeBetween(f, u, v)
}

// AddUniqueIEdge registers that IEdge e crosses this plane, populating the
// unique_iedges set during initialization and polygon splitting.
func (sp *SupportPlane) AddUniqueIEdge(e igraph.EdgeID) {
	sp.uniqueIEdges[e] = struct{}{}
}

// RemoveUniqueIEdge erases e from the live set, used by split_edge's
// erase/insert/insert cache maintenance.
func (sp *SupportPlane) RemoveUniqueIEdge(e igraph.EdgeID) {
	delete(sp.uniqueIEdges, e)
}

// UniqueIEdges returns the live (pre-freeze) set of IEdges crossing this
// plane.
func (sp *SupportPlane) UniqueIEdges() map[igraph.EdgeID]struct{} {
	return sp.uniqueIEdges
}

// FreezeIEdgeCache copies unique_iedges into the cached iedges/isegments/
// ibboxes vectors (the set itself is left as it is) and builds the
// spatial index over them, the
// end-of-initialization cache freeze. g supplies the 3D segment for each
// edge so it can be projected into this plane's 2D frame.
func (sp *SupportPlane) FreezeIEdgeCache(g *igraph.Graph) {
	sp.iedges = sp.iedges[:0]
	sp.isegments = sp.isegments[:0]
	sp.ibboxes = sp.ibboxes[:0]

	for e := range sp.uniqueIEdges {
		seg3 := g.Segment3(e)
		seg2 := kernel.Segment2{A: sp.To2D(seg3.A), B: sp.To2D(seg3.B)}
		sp.iedges = append(sp.iedges, e)
		sp.isegments = append(sp.isegments, seg2)
		sp.ibboxes = append(sp.ibboxes, seg2.BBox())
	}

	sp.index = rtreego.NewTree(2, 4, 16)
	for i, bb := range sp.ibboxes {
		sp.index.Insert(&iedgeLeaf{edge: sp.iedges[i], rect: toRect(bb)})
	}
}

// CachedIEdges / CachedSegment2 / CachedBBox give read access to the
// frozen cache by position, a parallel-vector layout.
func (sp *SupportPlane) CachedIEdges() []igraph.EdgeID       { return sp.iedges }
func (sp *SupportPlane) CachedSegment2(i int) kernel.Segment2 { return sp.isegments[i] }
func (sp *SupportPlane) CachedBBox(i int) kernel.BBox2        { return sp.ibboxes[i] }

// IEdgesNear returns the cached IEdges whose bounding box overlaps query,
// backed by the rtree built in FreezeIEdgeCache: the candidate-generation
// scan that enumerates IEdges in SP_i whose 2D bbox overlaps a query box.
func (sp *SupportPlane) IEdgesNear(query kernel.BBox2) []igraph.EdgeID {
	if sp.index == nil {
		return nil
	}
	hits := sp.index.SearchIntersect(toRect(query))
	out := make([]igraph.EdgeID, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*iedgeLeaf).edge)
	}
	return out
}

// Segment2Of projects an intersection edge into this plane's 2D frame,
// consulting the frozen cache first and falling back to a fresh
// projection before the cache is built (e.g. during initialization).
func (sp *SupportPlane) Segment2Of(g *igraph.Graph, e igraph.EdgeID) kernel.Segment2 {
	for i, cached := range sp.iedges {
		if cached == e {
			return sp.isegments[i]
		}
	}
	seg3 := g.Segment3(e)
	return kernel.Segment2{A: sp.To2D(seg3.A), B: sp.To2D(seg3.B)}
}
