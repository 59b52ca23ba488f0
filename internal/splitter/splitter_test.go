package splitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/splitter"
)

func square() (*data.SupportPlane, kernel.Point2, kernel.Point2, kernel.Point2, kernel.Point2) {
	pl := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 0, Z: 1}, Offset: 0}
	sp := data.NewSupportPlane(6, pl, 3)
	a := kernel.Point2{X: -1, Y: -1}
	b := kernel.Point2{X: 1, Y: -1}
	c := kernel.Point2{X: 1, Y: 1}
	d := kernel.Point2{X: -1, Y: 1}
	return sp, a, b, c, d
}

func TestSplitSingleChordBisectsFace(t *testing.T) {
	sp, a, b, c, d := square()
	f, _ := sp.AddInputPolygon([]kernel.Point2{a, b, c, d}, []int{0})

	g := igraph.New()
	u := g.AddVertex(kernel.Point3{X: -1, Y: 0, Z: 0}, nil)
	v := g.AddVertex(kernel.Point3{X: 1, Y: 0, Z: 0}, nil)
	line := g.AddLine()
	e, _ := g.AddEdge(u, v, map[int]struct{}{6: {}}, line)

	seg := kernel.Segment2{A: kernel.Point2{X: -1, Y: 0}, B: kernel.Point2{X: 1, Y: 0}}
	faces := splitter.Split(sp, f, []splitter.Constraint{{Edge: e, Seg: seg}})

	require.Len(t, faces, 2)
	for _, fid := range faces {
		verts := sp.Mesh.FaceVertices(fid)
		assert.Len(t, verts, 4)
	}
}

func TestSplitWithNoCrossingConstraintLeavesFaceWhole(t *testing.T) {
	sp, a, b, c, d := square()
	f, _ := sp.AddInputPolygon([]kernel.Point2{a, b, c, d}, []int{0})

	g := igraph.New()
	u := g.AddVertex(kernel.Point3{X: 5, Y: 0, Z: 0}, nil)
	v := g.AddVertex(kernel.Point3{X: 6, Y: 0, Z: 0}, nil)
	line := g.AddLine()
	e, _ := g.AddEdge(u, v, map[int]struct{}{6: {}}, line)

	seg := kernel.Segment2{A: kernel.Point2{X: 5, Y: 0}, B: kernel.Point2{X: 6, Y: 0}}
	faces := splitter.Split(sp, f, []splitter.Constraint{{Edge: e, Seg: seg}})

	require.Len(t, faces, 1)
	assert.Equal(t, f, faces[0])
}

func TestSplitTwoChordsProducesThreeFaces(t *testing.T) {
	sp, a, b, c, d := square()
	f, _ := sp.AddInputPolygon([]kernel.Point2{a, b, c, d}, []int{0})

	g := igraph.New()
	l1 := g.AddLine()
	u1 := g.AddVertex(kernel.Point3{X: -1, Y: -0.5, Z: 0}, nil)
	v1 := g.AddVertex(kernel.Point3{X: 1, Y: -0.5, Z: 0}, nil)
	e1, _ := g.AddEdge(u1, v1, map[int]struct{}{6: {}}, l1)

	l2 := g.AddLine()
	u2 := g.AddVertex(kernel.Point3{X: -1, Y: 0.5, Z: 0}, nil)
	v2 := g.AddVertex(kernel.Point3{X: 1, Y: 0.5, Z: 0}, nil)
	e2, _ := g.AddEdge(u2, v2, map[int]struct{}{6: {}}, l2)

	cs := []splitter.Constraint{
		{Edge: e1, Seg: kernel.Segment2{A: kernel.Point2{X: -1, Y: -0.5}, B: kernel.Point2{X: 1, Y: -0.5}}},
		{Edge: e2, Seg: kernel.Segment2{A: kernel.Point2{X: -1, Y: 0.5}, B: kernel.Point2{X: 1, Y: 0.5}}},
	}
	faces := splitter.Split(sp, f, cs)
	require.Len(t, faces, 3)

	var total int
	for _, fid := range faces {
		total += len(sp.Mesh.FaceVertices(fid))
	}
	assert.Equal(t, 4*3, total)
}
