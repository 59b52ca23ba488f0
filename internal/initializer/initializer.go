// Package initializer builds the starting state of a reconstruction run:
// the bounding box, its six immutable support planes, one support plane
// per distinct input polygon, and the intersection graph connecting all of
// them, following the bounding-box/initial-graph phase a kinetic
// partition is seeded from.
//
// Grounded on triangulate.Triangulate's own entry point (triangulate.go,
// main.go), which likewise validates raw input, builds a derived
// structure (the query graph) from it, and hands the result to the
// algorithm proper -- except here the derived structure is a 3D box and
// a graph of plane intersections rather than a single 2D trapezoidation.
package initializer

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/mesh"
	"github.com/dunmore/ksr/internal/preprocess"
	"github.com/dunmore/ksr/internal/splitter"
)

// Options configures bounding-box construction and the per-plane crossing
// budget every support plane is seeded with.
type Options struct {
	K                 int
	EnlargeBBoxRatio  float64
	Reorient          bool
	MinAngleDegrees   float64
	MinDistance       float64
}

// DefaultOptions returns the conventional settings: a crossing budget of
// one (K=1), a 10% bbox enlargement, no reorientation, and the
// preprocessor's own default angle/distance thresholds.
func DefaultOptions() Options {
	return Options{
		K:                1,
		EnlargeBBoxRatio: 1.1,
		Reorient:         false,
		MinAngleDegrees:  preprocess.DefaultMinAngleDegrees,
		MinDistance:      1e-7,
	}
}

// cornerSigns/facesOfCorner describe which of the box's six faces (in
// kernel.Box3.FacePlanes/FaceCorners order: -X,+X,-Y,+Y,-Z,+Z) each corner
// and edge of the cube touches, mirroring kernel.Box3.Corners' own sign
// table so the two stay in lockstep.
var cornerSigns = [8][3]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

func facesOfCorner(i int) [3]int {
	s := cornerSigns[i]
	face := func(axis int, sign float64) int {
		if sign < 0 {
			return axis * 2
		}
		return axis*2 + 1
	}
	return [3]int{face(0, s[0]), face(1, s[1]), face(2, s[2])}
}

// boxEdge is one of the cube's 12 edges: a pair of corner indices and the
// two face indices it borders.
type boxEdge struct {
	A, B   int
	Faces  [2]int
}

var cubeEdges = []boxEdge{
	{0, 1, [2]int{2, 4}},
	{1, 2, [2]int{1, 4}},
	{2, 3, [2]int{3, 4}},
	{3, 0, [2]int{0, 4}},
	{4, 5, [2]int{2, 5}},
	{5, 6, [2]int{1, 5}},
	{6, 7, [2]int{3, 5}},
	{7, 4, [2]int{0, 5}},
	{0, 4, [2]int{0, 2}},
	{1, 5, [2]int{1, 2}},
	{2, 6, [2]int{1, 3}},
	{3, 7, [2]int{0, 3}},
}

// InputPolygon is one raw, unprocessed input face in world space.
type InputPolygon struct {
	Points []kernel.Point3
}

// Initialize runs the whole bounding-box/initial-graph phase: it computes
// the box from every input vertex, installs the six bbox support planes
// and their shared corner/edge skeleton in the intersection graph, then
// installs one support plane per input polygon, extending the
// intersection graph with every point where an input plane's infinite
// extent crosses a bbox edge, and finally freezes every plane's
// crossing-IEdge cache. Two input polygons found to share a plane within
// tolerance are refused rather than merged onto one support plane.
func Initialize(polys []InputPolygon, opts Options) (*data.Data, error) {
	if len(polys) == 0 {
		return nil, errors.New("initializer: no input polygons")
	}

	var all []kernel.Point3
	for _, p := range polys {
		if len(p.Points) < 3 {
			return nil, errors.New("initializer: input polygon has fewer than 3 points")
		}
		all = append(all, p.Points...)
	}

	var box kernel.Box3
	if opts.Reorient {
		box = kernel.OBB(all, opts.EnlargeBBoxRatio)
	} else {
		box = kernel.AABB(all, opts.EnlargeBBoxRatio)
	}

	g := igraph.New()
	d := data.New(g)

	corners3D := box.Corners()
	ivCorner := make([]igraph.VertexID, 8)
	for i := range corners3D {
		planes := map[int]struct{}{}
		for _, f := range facesOfCorner(i) {
			planes[f] = struct{}{}
		}
		ivCorner[i] = g.AddVertex(corners3D[i], planes)
	}

	fragments := make([][]igraph.EdgeID, len(cubeEdges))
	for i, ce := range cubeEdges {
		line := g.AddLine()
		planes := map[int]struct{}{ce.Faces[0]: {}, ce.Faces[1]: {}}
		e, _ := g.AddEdge(ivCorner[ce.A], ivCorner[ce.B], planes, line)
		fragments[i] = []igraph.EdgeID{e}
	}

	facePlanes := box.FacePlanes()
	faceCorners := box.FaceCorners()
	for face := 0; face < 6; face++ {
		sp := data.NewSupportPlane(face, facePlanes[face], opts.K)
		corners := faceCorners[face]
		pts2 := make([]kernel.Point2, 4)
		ivs := make([]igraph.VertexID, 4)
		for k, c := range corners {
			pts2[k] = sp.To2D(corners3D[c])
			ivs[k] = ivCorner[c]
		}
		sp.AddBBoxPolygon(pts2, ivs)
		d.AddPlane(sp)
	}

	for idx, poly := range polys {
		pl := planeThroughBestFit(poly.Points)
		if other, ok := findCoplanarPlane(d, pl); ok {
			return nil, errors.Errorf("initializer: input polygon %d is coplanar with plane %d", idx, other)
		}
		target := data.NewSupportPlane(d.NumPlanes(), pl, opts.K)
		d.AddPlane(target)
		if err := extendGraphForPlane(g, target, fragments, ivCorner); err != nil {
			return nil, err
		}

		pts2D := make([]kernel.Point2, len(poly.Points))
		for i, p := range poly.Points {
			pts2D[i] = target.To2D(p)
		}
		cleaned := preprocess.Clean(pts2D, opts.MinDistance, opts.MinAngleDegrees)
		if len(cleaned) < 3 {
			return nil, errors.Errorf("initializer: input polygon %d degenerates to fewer than 3 points after cleanup", idx)
		}
		target.AddInputPolygon(cleaned, []int{idx})
	}

	for e := 0; e < g.NumEdges(); e++ {
		ie := g.Edge(igraph.EdgeID(e))
		if !ie.Active {
			continue
		}
		for p := range ie.Planes {
			d.Plane(p).AddUniqueIEdge(igraph.EdgeID(e))
		}
	}

	// Replace each plane's single raw installed face(s) with the constrained
	// planar subdivision induced by every IEdge crossing it, before the
	// cache freeze below locks the plane's crossing-IEdge list in for the
	// kinetic phase.
	for i := 0; i < d.NumPlanes(); i++ {
		splitPlane(g, d.Plane(i))
	}

	for i := 0; i < d.NumPlanes(); i++ {
		d.Plane(i).FreezeIEdgeCache(g)
	}

	if err := g.CheckInvariants(); err != nil {
		return nil, err
	}
	return d, nil
}

// planeThroughBestFit fits a plane through the first three non-colinear
// points of an input polygon, matching triangulate.Triangulate's own
// "construct from the first usable data, validate the rest against it"
// pattern (it validates every subsequent point against the polygon built
// from the first few).
func planeThroughBestFit(points []kernel.Point3) kernel.Plane {
	for i := 2; i < len(points); i++ {
		pl := kernel.PlaneThrough(points[0], points[1], points[i])
		if pl.Normal.Length() > 0.5 {
			return pl
		}
	}
	return kernel.PlaneThrough(points[0], points[1], points[2])
}

// findCoplanarPlane returns the index of an already-installed non-bbox
// support plane coplanar with pl, if any. Two input polygons are never
// merged onto a shared support plane automatically; a caller finding one
// must refuse the input rather than silently combine them.
func findCoplanarPlane(d *data.Data, pl kernel.Plane) (int, bool) {
	for i := 6; i < d.NumPlanes(); i++ {
		if d.Plane(i).Frame.Plane.SamePlane(pl) {
			return i, true
		}
	}
	return 0, false
}

// boundaryPoint is one vertex of a new plane's bbox-clip boundary: the 3D
// crossing point, the IVertex it was bound to (existing corner or a freshly
// split one), and the pair of bbox faces the crossing bbox edge touched
// (used to find the shared face of two consecutive boundary points, which
// is the face their connecting boundary edge lies on).
type boundaryPoint struct {
	Point kernel.Point3
	IV    igraph.VertexID
	Faces [2]int
}

// extendGraphForPlane intersects a newly installed plane's infinite extent
// with every bbox edge still standing: each crossing either lands exactly
// on an existing intersection-graph vertex (a box corner, or a point an
// earlier plane already split that edge at) or falls strictly inside a
// fragment, splitting it at a fresh IVertex. The resulting crossing
// points -- sorted angularly around the new plane's own 2D frame -- become
// that plane's frozen bbox-clip boundary face.
func extendGraphForPlane(g *igraph.Graph, sp *data.SupportPlane, fragments [][]igraph.EdgeID, ivCorner []igraph.VertexID) error {
	var pts []boundaryPoint
	for i, ce := range cubeEdges {
		frag, point, t, ok := locateCrossing(g, fragments[i], sp.Frame.Plane)
		if !ok {
			continue
		}
		ed := g.Edge(frag)
		switch {
		case t < kernel.Tolerance:
			pts = append(pts, boundaryPoint{Point: g.Point3(ed.U), IV: ed.U, Faces: ce.Faces})
		case t > 1-kernel.Tolerance:
			pts = append(pts, boundaryPoint{Point: g.Point3(ed.V), IV: ed.V, Faces: ce.Faces})
		default:
			planes := map[int]struct{}{}
			for p := range ed.Planes {
				planes[p] = struct{}{}
			}
			w := g.AddVertex(point, planes)
			e1, e2 := g.SplitEdge(frag, w)
			fragments[i] = replaceFragment(fragments[i], frag, e1, e2)
			pts = append(pts, boundaryPoint{Point: point, IV: w, Faces: ce.Faces})
		}
	}

	if len(pts) < 3 {
		return errors.Errorf("initializer: plane %d crosses the bounding box at only %d points", sp.Index, len(pts))
	}

	centroid3 := kernel.Point3{}
	for _, p := range pts {
		centroid3 = centroid3.Add(kernel.Vector3{X: p.Point.X, Y: p.Point.Y, Z: p.Point.Z})
	}
	centroid3 = kernel.Point3{X: centroid3.X / float64(len(pts)), Y: centroid3.Y / float64(len(pts)), Z: centroid3.Z / float64(len(pts))}
	centroid2 := sp.To2D(centroid3)

	sort.Slice(pts, func(i, j int) bool {
		return kernel.AngleAbout(centroid2, sp.To2D(pts[i].Point)) < kernel.AngleAbout(centroid2, sp.To2D(pts[j].Point))
	})

	pts2D := make([]kernel.Point2, len(pts))
	ivs := make([]igraph.VertexID, len(pts))
	for i, p := range pts {
		pts2D[i] = sp.To2D(p.Point)
		ivs[i] = p.IV
	}
	sp.AddBBoxPolygon(pts2D, ivs)

	for i := range pts {
		j := (i + 1) % len(pts)
		shared := sharedFace(pts[i].Faces, pts[j].Faces)
		if shared < 0 {
			// The convex clip's edge ordering should always share a face between
			// angular neighbors; if it does not (degenerate tangency) the graph
			// simply omits that boundary edge rather than inserting an
			// under-constrained one.
			continue
		}
		line := g.AddLine()
		g.AddEdge(pts[i].IV, pts[j].IV, map[int]struct{}{sp.Index: {}, shared: {}}, line)
	}
	return nil
}

func sharedFace(a, b [2]int) int {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return x
			}
		}
	}
	return -1
}

// locateCrossing scans a cube edge's current fragments for the single one
// the plane's infinite extent crosses, returning it along with the
// crossing point and its parametric position along that fragment.
func locateCrossing(g *igraph.Graph, frags []igraph.EdgeID, pl kernel.Plane) (igraph.EdgeID, kernel.Point3, float64, bool) {
	for _, e := range frags {
		seg3 := g.Segment3(e)
		point, t, ok := kernel.IntersectSegmentPlane(seg3, pl)
		if ok {
			return e, point, t, true
		}
	}
	return igraph.NoEdge, kernel.Point3{}, 0, false
}

// splitPlane runs the per-plane constrained subdivision: every IEdge already
// known to cross sp becomes a splitter.Constraint, and each face sp's mesh
// was installed with (one per AddInputPolygon/AddBBoxPolygon call -- an
// input polygon's plane starts with both its bbox-clip face and the
// polygon's own face) is cut along every constraint that crosses its
// interior. Boundary
// vertices that land exactly on an existing IVertex are bound to it
// afterward; constraint-adjacent edges are already bound to their IEdge by
// splitter.Split itself.
func splitPlane(g *igraph.Graph, sp *data.SupportPlane) {
	unique := sp.UniqueIEdges()
	if len(unique) == 0 {
		return
	}
	constraints := make([]splitter.Constraint, 0, len(unique))
	for e := range unique {
		constraints = append(constraints, splitter.Constraint{Edge: e, Seg: sp.Segment2Of(g, e)})
	}

	startFaces := make([]mesh.FaceID, 0, len(sp.Mesh.Faces))
	for _, f := range sp.Mesh.Faces {
		if f.Active {
			startFaces = append(startFaces, f.ID)
		}
	}
	var resultFaces []mesh.FaceID
	for _, f := range startFaces {
		resultFaces = append(resultFaces, splitter.Split(sp, f, constraints)...)
	}

	bindBoundaryIVertices(g, sp, resultFaces, constraints)
}

// bindBoundaryIVertices binds every still-unbound boundary vertex that
// splitter.Split introduced to the IVertex it lands on, when that vertex is
// one of a constraint's own endpoints rather than a point splitter.Split
// clipped against the face's own boundary.
func bindBoundaryIVertices(g *igraph.Graph, sp *data.SupportPlane, faces []mesh.FaceID, constraints []splitter.Constraint) {
	for _, f := range faces {
		for _, v := range sp.Mesh.FaceVertices(f) {
			if sp.Mesh.Vertices[v].IVertex != mesh.NoIGraphRef {
				continue
			}
			pos := sp.Mesh.Vertices[v].Pos
			for _, c := range constraints {
				ed := g.Edge(c.Edge)
				if sp.To2D(g.Point3(ed.U)).EqualPt(pos) {
					sp.SetIVertex(v, ed.U)
					break
				}
				if sp.To2D(g.Point3(ed.V)).EqualPt(pos) {
					sp.SetIVertex(v, ed.V)
					break
				}
			}
		}
	}
}

// replaceFragment swaps old out of a cube edge's fragment list for its two
// children after a split.
func replaceFragment(frags []igraph.EdgeID, old, e1, e2 igraph.EdgeID) []igraph.EdgeID {
	out := make([]igraph.EdgeID, 0, len(frags)+1)
	for _, f := range frags {
		if f == old {
			out = append(out, e1, e2)
		} else {
			out = append(out, f)
		}
	}
	return out
}
