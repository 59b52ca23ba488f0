package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/events"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/mesh"
)

func TestPopReturnsEarliestByTime(t *testing.T) {
	q := events.New()
	pv1 := data.PVertex{Plane: 0, V: mesh.VertexID(1)}
	pv2 := data.PVertex{Plane: 0, V: mesh.VertexID(2)}
	q.Push(events.Event{Time: 5, Kind: events.PVertexIEdge, PV: pv1})
	q.Push(events.Event{Time: 1, Kind: events.PVertexIEdge, PV: pv2})

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1.0, e.Time)
	assert.Equal(t, pv2, e.PV)
}

func TestEqualTimeBreaksTieByVertexIndex(t *testing.T) {
	q := events.New()
	pv1 := data.PVertex{Plane: 0, V: mesh.VertexID(1)}
	pv2 := data.PVertex{Plane: 0, V: mesh.VertexID(2)}
	q.Push(events.Event{Time: 3, Kind: events.PVertexIEdge, PV: pv1})
	q.Push(events.Event{Time: 3, Kind: events.PVertexIEdge, PV: pv2})

	first, _ := q.Pop()
	second, _ := q.Pop()
	assert.Equal(t, pv1, first.PV)
	assert.Equal(t, pv2, second.PV)
}

func TestCancelSkipsEventOnPop(t *testing.T) {
	q := events.New()
	pv1 := data.PVertex{Plane: 0, V: mesh.VertexID(1)}
	pv2 := data.PVertex{Plane: 0, V: mesh.VertexID(2)}
	id := q.Push(events.Event{Time: 1, Kind: events.PVertexIEdge, PV: pv1})
	q.Push(events.Event{Time: 2, Kind: events.PVertexIEdge, PV: pv2})

	q.Cancel(id)
	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, pv2, e.PV)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestCancelAllForPVertexCancelsEveryReferencingEvent(t *testing.T) {
	q := events.New()
	pv := data.PVertex{Plane: 0, V: mesh.VertexID(1)}
	other := data.PVertex{Plane: 0, V: mesh.VertexID(2)}
	q.Push(events.Event{Time: 1, Kind: events.PVertexIEdge, PV: pv})
	q.Push(events.Event{Time: 2, Kind: events.PVertexPVertex, PV: other, PV2: pv})

	cancelled := q.CancelAllForPVertex(pv)
	assert.Len(t, cancelled, 2)
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestEventsAtIEdgeAndIVertexFindActiveEvents(t *testing.T) {
	q := events.New()
	pv := data.PVertex{Plane: 0, V: mesh.VertexID(1)}
	ie := igraph.EdgeID(7)
	iv := igraph.VertexID(9)
	q.Push(events.Event{Time: 1, Kind: events.PVertexIEdge, PV: pv, IEdge: ie})
	q.Push(events.Event{Time: 2, Kind: events.PVertexIVertex, PV: pv, IVertex: iv})

	assert.Len(t, q.EventsAtIEdge(ie), 1)
	assert.Len(t, q.EventsAtIVertex(iv), 1)
	assert.Empty(t, q.EventsAtIEdge(igraph.EdgeID(123)))
}

func TestLenCountsOnlyActiveEvents(t *testing.T) {
	q := events.New()
	pv := data.PVertex{Plane: 0, V: mesh.VertexID(1)}
	id := q.Push(events.Event{Time: 1, Kind: events.PVertexIEdge, PV: pv})
	q.Push(events.Event{Time: 2, Kind: events.PVertexIEdge, PV: pv})
	assert.Equal(t, 2, q.Len())
	q.Cancel(id)
	assert.Equal(t, 1, q.Len())
}
