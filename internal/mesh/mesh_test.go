package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/mesh"
)

func square() []kernel.Point2 {
	return []kernel.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
}

func TestAddPolygonFaceBoundary(t *testing.T) {
	m := mesh.New()
	f, verts := m.AddPolygonFace(square(), nil)
	require.Len(t, verts, 4)
	got := m.FaceVertices(f)
	assert.Equal(t, verts, got)
}

func TestNextPrevVertex(t *testing.T) {
	m := mesh.New()
	_, verts := m.AddPolygonFace(square(), nil)
	leaving := m.Vertices[verts[0]].Leaving
	assert.Equal(t, verts[1], m.NextVertex(leaving))
	assert.Equal(t, verts[3], m.PrevVertex(leaving))
}

func TestSplitFaceByChord(t *testing.T) {
	m := mesh.New()
	f, verts := m.AddPolygonFace(square(), nil)
	f1, f2 := m.SplitFaceByChord(f, verts[0], verts[2])
	v1 := m.FaceVertices(f1)
	v2 := m.FaceVertices(f2)
	assert.Len(t, v1, 3)
	assert.Len(t, v2, 3)
}

func TestInsertVertexOnEdge(t *testing.T) {
	m := mesh.New()
	f, verts := m.AddPolygonFace(square(), nil)
	he, ok := m.EdgeBetween(f, verts[0], verts[1])
	require.True(t, ok)
	w, _, _ := m.InsertVertexOnEdge(he, kernel.Point2{X: 0.5, Y: 0})
	fv := m.FaceVertices(f)
	assert.Contains(t, fv, w)
	assert.Len(t, fv, 5)
}

func TestMergeVerticesSimplifiesDegenerateEdge(t *testing.T) {
	m := mesh.New()
	f, verts := m.AddPolygonFace(square(), nil)
	he, ok := m.EdgeBetween(f, verts[0], verts[1])
	require.True(t, ok)
	w, _, _ := m.InsertVertexOnEdge(he, kernel.Point2{X: 0.5, Y: 0})

	m.MergeVertices(verts[1], w)
	fv := m.FaceVertices(f)
	assert.Len(t, fv, 4)
	assert.NotContains(t, fv, w)
}
