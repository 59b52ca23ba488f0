package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
)

func TestAddPlaneAndInputPolygon(t *testing.T) {
	g := igraph.New()
	d := data.New(g)
	pl := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 1, Z: 0}, Offset: 0}
	sp := data.NewSupportPlane(0, pl, 1)
	idx := d.AddPlane(sp)
	assert.Equal(t, 0, idx)

	pts := []kernel.Point2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	f, verts := sp.AddInputPolygon(pts, []int{0})
	require.Len(t, verts, 4)

	faces := d.PFacesOf(0)
	require.Len(t, faces, 1)
	assert.Equal(t, f, faces[0].F)

	for _, v := range verts {
		assert.False(t, sp.Mesh.Vertices[v].Dir.IsZero())
	}
}

func TestAddBBoxPolygonFreezesDirection(t *testing.T) {
	g := igraph.New()
	d := data.New(g)
	pl := kernel.Plane{Normal: kernel.Vector3{X: 1, Y: 0, Z: 0}, Offset: 1}
	sp := data.NewSupportPlane(0, pl, 1)
	d.AddPlane(sp)

	var ivs []igraph.VertexID
	for i := 0; i < 4; i++ {
		ivs = append(ivs, g.AddVertex(kernel.Point3{X: float64(i)}, nil))
	}
	pts := []kernel.Point2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	_, verts := sp.AddBBoxPolygon(pts, ivs)
	for i, v := range verts {
		assert.True(t, sp.Mesh.Vertices[v].Dir.IsZero())
		iv, ok := sp.IVertexOf(v)
		require.True(t, ok)
		assert.Equal(t, ivs[i], iv)
	}
}

func TestFreezeIEdgeCacheAndSpatialQuery(t *testing.T) {
	g := igraph.New()
	d := data.New(g)
	pl := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 0, Z: 1}, Offset: 0}
	sp := data.NewSupportPlane(0, pl, 1)
	d.AddPlane(sp)

	u := g.AddVertex(kernel.Point3{X: -1, Y: 0, Z: 0}, nil)
	v := g.AddVertex(kernel.Point3{X: 1, Y: 0, Z: 0}, nil)
	line := g.AddLine()
	e, _ := g.AddEdge(u, v, map[int]struct{}{0: {}, 1: {}}, line)
	sp.AddUniqueIEdge(e)
	sp.FreezeIEdgeCache(g)

	near := sp.IEdgesNear(kernel.BBox2{Min: kernel.Point2{X: -2, Y: -2}, Max: kernel.Point2{X: 2, Y: 2}})
	assert.Contains(t, near, e)

	far := sp.IEdgesNear(kernel.BBox2{Min: kernel.Point2{X: 100, Y: 100}, Max: kernel.Point2{X: 101, Y: 101}})
	assert.NotContains(t, far, e)
}

func TestCheckInteriorPlanePassesOnUnboundInputPolygon(t *testing.T) {
	g := igraph.New()
	d := data.New(g)
	pl := kernel.Plane{Normal: kernel.Vector3{X: 0, Y: 0, Z: 1}, Offset: 0}
	sp := data.NewSupportPlane(6, pl, 1) // not a bbox plane index, so CheckInteriorPlane applies
	d.Planes = append(d.Planes, nil, nil, nil, nil, nil, nil) // pad indices 0..5
	d.Planes = append(d.Planes, sp)

	pts := []kernel.Point2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	sp.AddInputPolygon(pts, []int{0})

	// No bbox planes populated; only check the interior one directly.
	assert.NoError(t, d.CheckInteriorPlane(6))
}
