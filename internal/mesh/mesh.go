// Package mesh implements the per-support-plane dynamic planar mesh: a
// half-edge mesh over a 2D plane, carrying the kinetic state of its
// vertices (position, direction, last-event time, active flag) and
// optional bindings to intersection-graph simplices.
//
// Descriptors (VertexID/HalfEdgeID/FaceID) are stable arena indices,
// rather than the raw *Trapezoid/*QueryNode
// pointers triangulate's own query graph uses (triangulate/trapezoid.go,
// triangulate/querynode.go) — a planar mesh that survives vertex merges and
// face splits for the lifetime of a kinetic run needs identity that
// outlives any single owning struct.
package mesh

import "github.com/dunmore/ksr/internal/kernel"

type VertexID int
type HalfEdgeID int
type FaceID int

const NoVertex VertexID = -1
const NoHalfEdge HalfEdgeID = -1
const NoFace FaceID = -1

// NoIGraphRef is the sentinel for an unbound IVertex/IEdge binding. The
// bound values themselves are plain ints (igraph.VertexID/EdgeID, widened)
// so this package does not need to import igraph.
const NoIGraphRef = -1

// Vertex is a boundary vertex, carrying the kinetic state used to move it:
// p(v,t) = p0(v) + (t - t0(v)) * d(v).
type Vertex struct {
	ID     VertexID
	Pos    kernel.Point2 // p0
	Dir    kernel.Vector2
	T0     float64
	Active bool

	// Half-edge leaving this vertex on some incident face; enough to recover
	// the full star via Twin/Next.
	Leaving HalfEdgeID

	IVertex int // igraph.VertexID, or NoIGraphRef
}

// PositionAt evaluates the vertex's 2D position at simulated time t.
func (v *Vertex) PositionAt(t float64) kernel.Point2 {
	return v.Pos.Add(v.Dir.Scale(t - v.T0))
}

// HalfEdge is one directed side of a mesh edge. A vertex's binding to an
// intersection edge lives on the half-edge (IEdge field), since a vertex sits
// at the junction of two edges and the edge it currently slides along is
// what "constrained" refers to.
type HalfEdge struct {
	ID     HalfEdgeID
	Origin VertexID
	Twin   HalfEdgeID
	Next   HalfEdgeID
	Prev   HalfEdgeID
	Face   FaceID

	IEdge int // igraph.EdgeID bound to this half-edge's supporting line, or NoIGraphRef
}

// Face is a bounded cell of M_i: a simple polygon named by one of its
// boundary half-edges.
type Face struct {
	ID        FaceID
	Outer     HalfEdgeID
	InputIdxs []int // provenance: indices into the initializer's input-polygon list
	Active    bool
}

// Mesh is the arena-owned half-edge planar mesh for one support plane.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face
}

func New() *Mesh {
	return &Mesh{}
}

func (m *Mesh) newVertex(pos kernel.Point2) VertexID {
	id := VertexID(len(m.Vertices))
	m.Vertices = append(m.Vertices, Vertex{ID: id, Pos: pos, Active: true, Leaving: NoHalfEdge, IVertex: NoIGraphRef})
	return id
}

func (m *Mesh) newHalfEdgePair(from, to VertexID) (HalfEdgeID, HalfEdgeID) {
	a := HalfEdgeID(len(m.HalfEdges))
	m.HalfEdges = append(m.HalfEdges, HalfEdge{ID: a, Origin: from, IEdge: NoIGraphRef})
	b := HalfEdgeID(len(m.HalfEdges))
	m.HalfEdges = append(m.HalfEdges, HalfEdge{ID: b, Origin: to, IEdge: NoIGraphRef})
	m.HalfEdges[a].Twin = b
	m.HalfEdges[b].Twin = a
	return a, b
}

// AddPolygonFace installs a single face whose boundary is points, in order.
// Returns the new face and the vertices created for it, in the same order.
// This is the shared core of AddInputPolygon and AddBBoxPolygon: callers
// set each vertex's Dir/T0/IVertex afterward according to which of the two
// they are building.
func (m *Mesh) AddPolygonFace(points []kernel.Point2, inputIdxs []int) (FaceID, []VertexID) {
	n := len(points)
	if n < 3 {
		panic("mesh: AddPolygonFace needs >= 3 points")
	}
	verts := make([]VertexID, n)
	for i, p := range points {
		verts[i] = m.newVertex(p)
	}

	faceID := FaceID(len(m.Faces))
	outerHE := make([]HalfEdgeID, n)
	innerHE := make([]HalfEdgeID, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := m.newHalfEdgePair(verts[i], verts[j])
		outerHE[i] = a
		innerHE[i] = b
		m.Vertices[verts[i]].Leaving = a
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		m.HalfEdges[outerHE[i]].Next = outerHE[j]
		m.HalfEdges[outerHE[j]].Prev = outerHE[i]
		m.HalfEdges[outerHE[i]].Face = faceID
		// The twin chain runs in the opposite direction around the (currently
		// unbounded) outer face.
		prevJ := (i - 1 + n) % n
		m.HalfEdges[innerHE[i]].Next = innerHE[prevJ]
		m.HalfEdges[innerHE[prevJ]].Prev = innerHE[i]
		m.HalfEdges[innerHE[i]].Face = NoFace
	}

	m.Faces = append(m.Faces, Face{ID: faceID, Outer: outerHE[0], InputIdxs: inputIdxs, Active: true})
	return faceID, verts
}

// Next returns the half-edge following he around its face.
func (m *Mesh) Next(he HalfEdgeID) HalfEdgeID { return m.HalfEdges[he].Next }

// Prev returns the half-edge preceding he around its face.
func (m *Mesh) Prev(he HalfEdgeID) HalfEdgeID { return m.HalfEdges[he].Prev }

// NextVertex / PrevVertex give the next/previous boundary vertex of the
// face that leaving belongs to.
func (m *Mesh) NextVertex(leaving HalfEdgeID) VertexID {
	return m.HalfEdges[m.HalfEdges[leaving].Next].Origin
}

func (m *Mesh) PrevVertex(leaving HalfEdgeID) VertexID {
	return m.HalfEdges[m.HalfEdges[leaving].Prev].Origin
}

// FaceVertices returns the boundary vertices of f in order.
func (m *Mesh) FaceVertices(f FaceID) []VertexID {
	start := m.Faces[f].Outer
	var out []VertexID
	he := start
	for {
		out = append(out, m.HalfEdges[he].Origin)
		he = m.HalfEdges[he].Next
		if he == start {
			break
		}
	}
	return out
}

// FaceHalfEdges returns the boundary half-edges of f in order.
func (m *Mesh) FaceHalfEdges(f FaceID) []HalfEdgeID {
	start := m.Faces[f].Outer
	var out []HalfEdgeID
	he := start
	for {
		out = append(out, he)
		he = m.HalfEdges[he].Next
		if he == start {
			break
		}
	}
	return out
}

// EdgeBetween returns the half-edge of face f whose origin is u and whose
// next origin is v. ok is false if u,v are not consecutive on f's boundary.
func (m *Mesh) EdgeBetween(f FaceID, u, v VertexID) (HalfEdgeID, bool) {
	for _, he := range m.FaceHalfEdges(f) {
		if m.HalfEdges[he].Origin == u && m.NextVertex(he) == v {
			return he, true
		}
	}
	return NoHalfEdge, false
}

// InsertVertexOnEdge splits half-edge he (and its twin) at pos, inserting a
// new vertex between he's origin and its destination. Returns the new
// vertex and the two half-edges it now sits between on he's face
// (replacing he). Used when a moving vertex reaches a point on a bounding
// edge that is not yet a mesh vertex (e.g. the far side of a bbox edge being
// clipped by the initializer, or an intersection point discovered by the
// splitter).
func (m *Mesh) InsertVertexOnEdge(he HalfEdgeID, pos kernel.Point2) (VertexID, HalfEdgeID, HalfEdgeID) {
	twin := m.HalfEdges[he].Twin

	w := m.newVertex(pos)

	// New forward half-edge w -> to (replaces the tail of he), and new
	// backward half-edge to -> w (replaces the head of twin).
	a, _ := m.newHalfEdgePair(w, m.HalfEdges[he].Origin)

	next := m.HalfEdges[he].Next
	face := m.HalfEdges[he].Face
	m.HalfEdges[he].Next = a
	m.HalfEdges[a].Prev = he
	m.HalfEdges[a].Next = next
	m.HalfEdges[next].Prev = a
	m.HalfEdges[a].Face = face
	m.HalfEdges[a].Origin = w

	prevTwin := m.HalfEdges[twin].Prev
	twinFace := m.HalfEdges[twin].Face
	b, _ := m.newHalfEdgePair(w, m.HalfEdges[twin].Origin)
	m.HalfEdges[b].Origin = m.HalfEdges[twin].Origin
	m.HalfEdges[prevTwin].Next = b
	m.HalfEdges[b].Prev = prevTwin
	m.HalfEdges[b].Next = twin
	m.HalfEdges[twin].Prev = b
	m.HalfEdges[b].Face = twinFace
	m.HalfEdges[twin].Origin = w
	m.Vertices[w].Leaving = a

	// Tie the two new half-edges together as twins of the split.
	m.HalfEdges[a].Twin = twin
	m.HalfEdges[twin].Twin = a
	m.HalfEdges[he].Twin = b
	m.HalfEdges[b].Twin = he

	return w, he, a
}

// SplitFaceByChord adds a new edge between two non-adjacent boundary
// vertices u, v of face f, splitting it into two faces. Used by the
// constrained-subdivision splitter to cut a face along a projected
// intersection segment whose endpoints are already mesh vertices.
func (m *Mesh) SplitFaceByChord(f FaceID, u, v VertexID) (FaceID, FaceID) {
	heU, okU := m.findLeaving(f, u)
	heV, okV := m.findLeaving(f, v)
	if !okU || !okV {
		panic("mesh: SplitFaceByChord endpoints not on face boundary")
	}

	a, b := m.newHalfEdgePair(u, v)

	prevU := m.HalfEdges[heU].Prev
	prevV := m.HalfEdges[heV].Prev

	// a runs u -> v, closing the chain prevU -> a -> heV ...
	m.HalfEdges[prevU].Next = a
	m.HalfEdges[a].Prev = prevU
	m.HalfEdges[a].Next = heV
	m.HalfEdges[heV].Prev = a

	// b runs v -> u, closing the chain prevV -> b -> heU ...
	m.HalfEdges[prevV].Next = b
	m.HalfEdges[b].Prev = prevV
	m.HalfEdges[b].Next = heU
	m.HalfEdges[heU].Prev = b

	f1 := f
	f2 := FaceID(len(m.Faces))
	m.Faces[f1].Outer = a
	m.Faces = append(m.Faces, Face{ID: f2, Outer: b, Active: true, InputIdxs: m.Faces[f1].InputIdxs})

	he := heV
	for {
		m.HalfEdges[he].Face = f1
		if he == a {
			break
		}
		he = m.HalfEdges[he].Next
	}
	he = heU
	for {
		m.HalfEdges[he].Face = f2
		if he == b {
			break
		}
		he = m.HalfEdges[he].Next
	}
	return f1, f2
}

func (m *Mesh) findLeaving(f FaceID, v VertexID) (HalfEdgeID, bool) {
	for _, he := range m.FaceHalfEdges(f) {
		if m.HalfEdges[he].Origin == v {
			return he, true
		}
	}
	return NoHalfEdge, false
}

// MergeVertices collapses b into a as the result of a pvertex-pvertex
// collision: every half-edge originating at b is retargeted to a, b is
// deactivated, and any face left with a zero-length edge a->a is simplified
// by splicing that edge out of its boundary cycle.
func (m *Mesh) MergeVertices(a, b VertexID) {
	if a == b {
		return
	}
	for i := range m.HalfEdges {
		if m.HalfEdges[i].Origin == b {
			m.HalfEdges[i].Origin = a
		}
	}
	m.Vertices[b].Active = false

	for i := range m.HalfEdges {
		he := &m.HalfEdges[i]
		if he.Origin == a && m.HalfEdges[he.Next].Origin == a {
			m.spliceOutDegenerateEdge(HalfEdgeID(i))
		}
	}
}

// spliceOutDegenerateEdge removes a zero-length half-edge he (and its twin)
// from their faces' boundary cycles: if a merge produces two identical
// consecutive border vertices, the mesh is simplified locally rather than
// left carrying a degenerate edge.
func (m *Mesh) spliceOutDegenerateEdge(he HalfEdgeID) {
	twin := m.HalfEdges[he].Twin
	prev := m.HalfEdges[he].Prev
	next := m.HalfEdges[he].Next
	m.HalfEdges[prev].Next = next
	m.HalfEdges[next].Prev = prev
	if m.Faces[m.HalfEdges[he].Face].Outer == he {
		m.Faces[m.HalfEdges[he].Face].Outer = next
	}

	twinPrev := m.HalfEdges[twin].Prev
	twinNext := m.HalfEdges[twin].Next
	m.HalfEdges[twinPrev].Next = twinNext
	m.HalfEdges[twinNext].Prev = twinPrev
	if m.HalfEdges[twin].Face != NoFace && m.Faces[m.HalfEdges[twin].Face].Outer == twin {
		m.Faces[m.HalfEdges[twin].Face].Outer = twinNext
	}
}
