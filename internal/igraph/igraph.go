// Package igraph implements the static intersection graph I: the graph of
// pairwise support-plane intersection lines, clipped to the bounding box,
// together with their plane incidences.
//
// IVertex and IEdge are referenced by many support planes at once, so they
// need stable integer descriptors into an arena the graph owns, rather
// than shared pointers. That is the one place this package deliberately
// departs from the raw-pointer trapezoid/query-node graphs
// (triangulate/trapezoid.go, triangulate/querynode.go): descriptors
// survive a split or a deactivation without invalidating anyone else's
// copy of them.
package igraph

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/dbgname"
	"github.com/dunmore/ksr/internal/kernel"
)

// VertexID and EdgeID are stable descriptors into the graph's arenas.
type VertexID int
type EdgeID int
type LineID int

const NoVertex VertexID = -1
const NoEdge EdgeID = -1
const NoLine LineID = -1

// IVertex is a node of the intersection graph.
type IVertex struct {
	ID     VertexID
	Point  kernel.Point3
	Planes map[int]struct{} // support-plane indices meeting at this point
	Active bool
}

// IEdge is an arc of the intersection graph between two IVertices.
type IEdge struct {
	ID     EdgeID
	U, V   VertexID
	Planes map[int]struct{} // every IEdge lies on >= 2 planes
	Line   LineID
	Active bool
}

// Graph is the arena-owned intersection graph I.
type Graph struct {
	vertices []IVertex
	edges    []IEdge
	nextLine LineID

	// incident[v] lists the edges touching vertex v, kept in sync by
	// add_edge/split_edge so incident_edges(v) only walks v's own list
	// instead of every edge in the graph.
	incident map[VertexID][]EdgeID

	// edgeIndex speeds up add_edge's idempotence check: (u,v) unordered pair
	// -> existing edge, if any.
	edgeIndex map[pairKey]EdgeID
}

type pairKey struct {
	a, b VertexID
}

func makePairKey(u, v VertexID) pairKey {
	if u > v {
		u, v = v, u
	}
	return pairKey{u, v}
}

// New returns an empty intersection graph.
func New() *Graph {
	return &Graph{
		incident:  map[VertexID][]EdgeID{},
		edgeIndex: map[pairKey]EdgeID{},
	}
}

// AddVertex creates a node at point, incident to the given support planes.
func (g *Graph) AddVertex(point kernel.Point3, planes map[int]struct{}) VertexID {
	id := VertexID(len(g.vertices))
	cp := make(map[int]struct{}, len(planes))
	for p := range planes {
		cp[p] = struct{}{}
	}
	g.vertices = append(g.vertices, IVertex{ID: id, Point: point, Planes: cp, Active: true})
	return id
}

// AddLine allocates a fresh line_id for a new supporting intersection line.
func (g *Graph) AddLine() LineID {
	id := g.nextLine
	g.nextLine++
	return id
}

// AddEdge is idempotent on (u,v): if an (active) arc already joins u and v,
// its plane set is extended with planes and the existing edge is returned
// with inserted=false. Otherwise a new edge is created with the given line
// id. u and v must already lie on a common line; callers that violate
// this are a programming error.
func (g *Graph) AddEdge(u, v VertexID, planes map[int]struct{}, line LineID) (EdgeID, bool) {
	if u == v {
		panic(errors.Errorf("igraph: add_edge with equal endpoints %d", u))
	}
	key := makePairKey(u, v)
	if existing, ok := g.edgeIndex[key]; ok && g.edges[existing].Active {
		e := &g.edges[existing]
		for p := range planes {
			e.Planes[p] = struct{}{}
		}
		return e.ID, false
	}

	id := EdgeID(len(g.edges))
	cp := make(map[int]struct{}, len(planes))
	for p := range planes {
		cp[p] = struct{}{}
	}
	g.edges = append(g.edges, IEdge{ID: id, U: u, V: v, Planes: cp, Line: line, Active: true})
	g.edgeIndex[key] = id
	g.incident[u] = append(g.incident[u], id)
	g.incident[v] = append(g.incident[v], id)
	return id, true
}

// SetLine / Line get and set an edge's line_id.
func (g *Graph) SetLine(e EdgeID, line LineID) { g.edges[e].Line = line }
func (g *Graph) Line(e EdgeID) LineID          { return g.edges[e].Line }

// Vertex / Edge fetch arena entries by descriptor.
func (g *Graph) Vertex(v VertexID) *IVertex { return &g.vertices[v] }
func (g *Graph) Edge(e EdgeID) *IEdge        { return &g.edges[e] }

// NumVertices / NumEdges report arena sizes (including inactive entries).
func (g *Graph) NumVertices() int { return len(g.vertices) }
func (g *Graph) NumEdges() int    { return len(g.edges) }

// Point3 / Segment3 read back the embedded 3D geometry of a simplex.
func (g *Graph) Point3(v VertexID) kernel.Point3 { return g.vertices[v].Point }
func (g *Graph) Segment3(e EdgeID) kernel.Segment3 {
	ie := g.edges[e]
	return kernel.Segment3{A: g.vertices[ie.U].Point, B: g.vertices[ie.V].Point}
}

// IncidentEdges returns the (active) arcs touching v.
func (g *Graph) IncidentEdges(v VertexID) []EdgeID {
	all := g.incident[v]
	out := make([]EdgeID, 0, len(all))
	for _, e := range all {
		if g.edges[e].Active {
			out = append(out, e)
		}
	}
	return out
}

// IntersectedPlanesEdge returns the set of support-plane indices incident to e.
func (g *Graph) IntersectedPlanesEdge(e EdgeID) map[int]struct{} {
	return g.edges[e].Planes
}

// IntersectedPlanesVertex returns the union of plane incidences of all arcs
// touching v. If keepBbox is false, the six bbox plane indices (0..5) are
// excluded.
func (g *Graph) IntersectedPlanesVertex(v VertexID, keepBbox bool) map[int]struct{} {
	out := map[int]struct{}{}
	for _, e := range g.IncidentEdges(v) {
		for p := range g.edges[e].Planes {
			if !keepBbox && p < 6 {
				continue
			}
			out[p] = struct{}{}
		}
	}
	return out
}

// SplitEdge splits e at w, which must lie on e's 3D segment (callers are
// expected to have already verified this against the kernel's on-segment
// predicate; igraph itself does not re-derive geometry it was not given).
// e is deactivated and replaced by two new arcs e1 (U->w) and e2 (w->V),
// both inheriting e's line_id and plane set. Callers must update the
// unique_iedges caches of every support plane incident to e: erase e,
// insert e1 and e2.
func (g *Graph) SplitEdge(e EdgeID, w VertexID) (e1, e2 EdgeID) {
	old := g.edges[e]
	if !old.Active {
		panic(errors.Errorf("igraph: split_edge on inactive edge %d", e))
	}
	planes := make(map[int]struct{}, len(old.Planes))
	for p := range old.Planes {
		planes[p] = struct{}{}
	}
	e1, _ = g.AddEdge(old.U, w, planes, old.Line)
	e2, _ = g.AddEdge(w, old.V, planes, old.Line)

	old.Active = false
	g.edges[e] = old
	delete(g.edgeIndex, makePairKey(old.U, old.V))
	return e1, e2
}

// Deactivate marks an edge inactive without removing it from the arena:
// removing an element is always replaced by clearing an active flag, since
// other structures hold its descriptor and would otherwise dangle.
func (g *Graph) Deactivate(e EdgeID) {
	g.edges[e].Active = false
	delete(g.edgeIndex, makePairKey(g.edges[e].U, g.edges[e].V))
}

// CheckInvariants verifies the post-bbox-intersection invariants: every
// active IVertex has >= 3 incident arcs, and every active IEdge has >= 2
// plane incidences. Returns an InvariantViolation-classified error on the
// first failure found.
func (g *Graph) CheckInvariants() error {
	for i := range g.vertices {
		v := &g.vertices[i]
		if !v.Active {
			continue
		}
		if n := len(g.IncidentEdges(v.ID)); n < 3 {
			return errors.Errorf("invariant violation: ivertex %s has only %d incident arcs",
				dbgname.Name(fmt.Sprintf("iv%d", v.ID)), n)
		}
	}
	for i := range g.edges {
		e := &g.edges[i]
		if !e.Active {
			continue
		}
		if len(e.Planes) < 2 {
			return errors.Errorf("invariant violation: iedge %s has only %d plane incidences",
				dbgname.Name(fmt.Sprintf("ie%d", e.ID)), len(e.Planes))
		}
	}
	return nil
}
