package data

import (
	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/mesh"
)

// VolumeCell is the output placeholder for a convex polyhedral cell
// bounded by one face per touching support plane. Volume extraction
// itself is out of scope here; this module only reserves the slots an
// external pass would fill.
type VolumeCell struct {
	Index    int
	Faces    []PFace
	Centroid [3]float64
	Label    string // "" until an external pass assigns INSIDE/OUTSIDE
}

// PFaceNeighbors is the (front, back) volume-index pair populated by the
// external volume-extraction pass this module does not implement. -1 marks
// "not yet assigned".
type PFaceNeighbors struct {
	Front, Back int
}

// Data is D: the unique owner of every SupportPlane and of the
// intersection graph I.
type Data struct {
	Planes []*SupportPlane
	Graph  *igraph.Graph

	// LimitLines is the per-line record of at most two ordered plane-pair
	// entries marking a k-budget exhaustion.
	LimitLines map[igraph.LineID][]LimitEntry

	pfaceNeighbors map[PFace]*PFaceNeighbors

	// ReconstructedModel and Volumes are the empty slots reserved for an
	// external volume-extraction/labeling pass.
	Volumes           []VolumeCell
	ReconstructedModel interface{}
}

// LimitEntry is one (ordered plane pair, is_limit) record.
type LimitEntry struct {
	ThisPlane, OtherPlane int
	IsLimit               bool
}

// New creates an empty D over the given intersection graph.
func New(g *igraph.Graph) *Data {
	return &Data{
		Graph:          g,
		LimitLines:     map[igraph.LineID][]LimitEntry{},
		pfaceNeighbors: map[PFace]*PFaceNeighbors{},
	}
}

// AddPlane appends a new owned SupportPlane and returns its index.
func (d *Data) AddPlane(sp *SupportPlane) int {
	sp.Index = len(d.Planes)
	d.Planes = append(d.Planes, sp)
	return sp.Index
}

// Plane fetches a support plane by index.
func (d *Data) Plane(i int) *SupportPlane { return d.Planes[i] }

// NumPlanes reports how many support planes D owns.
func (d *Data) NumPlanes() int { return len(d.Planes) }

// IsBBoxPlane reports whether plane i is one of the six immutable bbox
// faces: planes 0..5 are always the six faces of the bounding box.
func IsBBoxPlane(i int) bool { return i >= 0 && i < 6 }

// PFaceNeighbors returns (creating if absent) the volume-neighbor slot for
// a PFace.
func (d *Data) PFaceNeighbors(f PFace) *PFaceNeighbors {
	n, ok := d.pfaceNeighbors[f]
	if !ok {
		n = &PFaceNeighbors{Front: -1, Back: -1}
		d.pfaceNeighbors[f] = n
	}
	return n
}

// PFacesOf enumerates every active PFace on plane i.
func (d *Data) PFacesOf(i int) []PFace {
	sp := d.Planes[i]
	var out []PFace
	for _, f := range sp.Mesh.Faces {
		if f.Active {
			out = append(out, PFace{Plane: i, F: f.ID})
		}
	}
	return out
}

// AllPFaces enumerates every active PFace across every plane.
func (d *Data) AllPFaces() []PFace {
	var out []PFace
	for i := range d.Planes {
		out = append(out, d.PFacesOf(i)...)
	}
	return out
}

// PVerticesOfFace returns the PVertices bounding f, in order.
func (d *Data) PVerticesOfFace(f PFace) []PVertex {
	sp := d.Planes[f.Plane]
	var out []PVertex
	for _, v := range sp.Mesh.FaceVertices(f.F) {
		out = append(out, PVertex{Plane: f.Plane, V: v})
	}
	return out
}

// PEdgesOfFace returns the PEdges bounding f, in order.
func (d *Data) PEdgesOfFace(f PFace) []PEdge {
	sp := d.Planes[f.Plane]
	var out []PEdge
	for _, he := range sp.Mesh.FaceHalfEdges(f.F) {
		out = append(out, PEdge{Plane: f.Plane, HE: he})
	}
	return out
}

// requirePlane panics with a classified programming-error if i is out of
// range: invariant-breaking misuse panics rather than returning a zero
// value silently.
func (d *Data) requirePlane(i int) *SupportPlane {
	if i < 0 || i >= len(d.Planes) {
		panic(errors.Errorf("data: plane index %d out of range [0,%d)", i, len(d.Planes)))
	}
	return d.Planes[i]
}

// MeshVertex resolves a PVertex to its underlying kinetic vertex record.
func (d *Data) MeshVertex(pv PVertex) *mesh.Vertex {
	return &d.requirePlane(pv.Plane).Mesh.Vertices[pv.V]
}

// MeshHalfEdge resolves a PEdge to its underlying half-edge record.
func (d *Data) MeshHalfEdge(pe PEdge) *mesh.HalfEdge {
	return &d.requirePlane(pe.Plane).Mesh.HalfEdges[pe.HE]
}
