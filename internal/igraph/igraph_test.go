package igraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
)

func TestAddEdgeIdempotent(t *testing.T) {
	g := igraph.New()
	u := g.AddVertex(kernel.Point3{X: 0, Y: 0, Z: 0}, map[int]struct{}{0: {}, 1: {}})
	v := g.AddVertex(kernel.Point3{X: 1, Y: 0, Z: 0}, map[int]struct{}{0: {}, 1: {}})
	line := g.AddLine()

	e1, inserted1 := g.AddEdge(u, v, map[int]struct{}{0: {}}, line)
	require.True(t, inserted1)

	e2, inserted2 := g.AddEdge(u, v, map[int]struct{}{2: {}}, line)
	assert.False(t, inserted2)
	assert.Equal(t, e1, e2)

	planes := g.IntersectedPlanesEdge(e1)
	assert.Contains(t, planes, 0)
	assert.Contains(t, planes, 2)
}

func TestSplitEdgePreservesLineAndPlanes(t *testing.T) {
	g := igraph.New()
	a := g.AddVertex(kernel.Point3{X: 0, Y: 0, Z: 0}, nil)
	b := g.AddVertex(kernel.Point3{X: 2, Y: 0, Z: 0}, nil)
	w := g.AddVertex(kernel.Point3{X: 1, Y: 0, Z: 0}, nil)
	line := g.AddLine()

	e, _ := g.AddEdge(a, b, map[int]struct{}{0: {}, 1: {}}, line)
	e1, e2 := g.SplitEdge(e, w)

	assert.False(t, g.Edge(e).Active)
	assert.Equal(t, line, g.Line(e1))
	assert.Equal(t, line, g.Line(e2))
	assert.Equal(t, w, g.Edge(e1).V)
	assert.Equal(t, w, g.Edge(e2).U)
	assert.Contains(t, g.IntersectedPlanesEdge(e1), 0)
	assert.Contains(t, g.IntersectedPlanesEdge(e2), 1)
}

func TestIncidentEdgesInvariant(t *testing.T) {
	g := igraph.New()
	center := g.AddVertex(kernel.Point3{X: 0, Y: 0, Z: 0}, nil)
	line := g.AddLine()
	others := make([]igraph.VertexID, 0, 3)
	for i := 0; i < 3; i++ {
		other := g.AddVertex(kernel.Point3{X: float64(i + 1), Y: 0, Z: 0}, nil)
		g.AddEdge(center, other, map[int]struct{}{0: {}, 1: {}}, line)
		others = append(others, other)
	}
	// Join the outer vertices too, so each of them also has the three
	// incident arcs CheckInvariants requires of every active vertex.
	for i := 0; i < 3; i++ {
		g.AddEdge(others[i], others[(i+1)%3], map[int]struct{}{0: {}, 1: {}}, line)
	}
	assert.Len(t, g.IncidentEdges(center), 3)
	assert.NoError(t, g.CheckInvariants())
}

func TestCheckInvariantsCatchesUnderconnectedVertex(t *testing.T) {
	g := igraph.New()
	a := g.AddVertex(kernel.Point3{X: 0, Y: 0, Z: 0}, nil)
	b := g.AddVertex(kernel.Point3{X: 1, Y: 0, Z: 0}, nil)
	line := g.AddLine()
	g.AddEdge(a, b, map[int]struct{}{0: {}, 1: {}}, line)
	err := g.CheckInvariants()
	assert.Error(t, err)
}
