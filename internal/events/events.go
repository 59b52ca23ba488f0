// Package events implements the time-ordered event queue the propagator
// pops and dispatches: the four kinds of kinetic collisions between a
// moving polygon vertex and the rest of the arrangement, kept in a
// priority queue with secondary indices so a mutated or merged vertex's
// now-stale events can be found and cancelled without scanning the heap.
//
// Grounded on triangulate/querygraph.go's own query graph, which likewise
// keeps both a primary structure (there: nested regions
// for point location; here: a time-ordered heap) and secondary lookup
// indices (there: trapezoid occupancy; here: per-pvertex and
// per-intersection-element event lists) so that inserting or invalidating
// one entry does not require a linear scan of the whole structure.
package events

import (
	"container/heap"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
)

// Kind names which of the four collision shapes an Event represents.
type Kind int

const (
	// PVertexIEdge: an unconstrained vertex reaches an intersection edge it
	// does not yet slide on.
	PVertexIEdge Kind = iota
	// PVertexIVertex: a constrained vertex reaches the intersection vertex at
	// the end of the edge it slides on.
	PVertexIVertex
	// PVertexPVertex: two vertices on the same support plane meet directly
	// (their connecting boundary edge shrinks to zero length).
	PVertexPVertex
	// SneakIVertex: two vertices constrained to the same intersection edge
	// meet while still moving the same direction along it, so an earlier
	// event that would have stopped one of them was missed; the propagator
	// reports it as an error rather than reconciling it.
	SneakIVertex
)

// EventID is a stable handle into the queue's arena, used to cancel a
// previously pushed event.
type EventID int

// Event is one scheduled collision. Which of PV2/IEdge/IVertex/Cluster is
// meaningful depends on Kind.
type Event struct {
	ID   EventID
	Time float64
	Kind Kind

	PV      data.PVertex
	PV2     data.PVertex
	IEdge   igraph.EdgeID
	IVertex igraph.VertexID
	Cluster []data.PVertex // SneakIVertex's full set of converging pvertices, PV included

	seq     uint64
	active  bool
	heapIdx int
}

// Queue is the propagator's event queue: a time-ordered binary heap plus
// indices from pvertex and intersection-graph element to every event that
// currently references them.
type Queue struct {
	// arena holds one *Event per pushed event, indexed by EventID. It is a
	// slice of pointers (not values) specifically so that growing it never
	// invalidates the pointers the heap and the secondary indices hold into
	// individual entries.
	arena []*Event
	heap  eventHeap
	seq   uint64

	byPVertex map[data.PVertex][]EventID
	byIEdge   map[igraph.EdgeID][]EventID
	byIVertex map[igraph.VertexID][]EventID
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		byPVertex: map[data.PVertex][]EventID{},
		byIEdge:   map[igraph.EdgeID][]EventID{},
		byIVertex: map[igraph.VertexID][]EventID{},
	}
}

// Push schedules e and returns its id. e.ID/seq/active/heapIdx are set by
// Push and should not be supplied by the caller.
func (q *Queue) Push(e Event) EventID {
	id := EventID(len(q.arena))
	e.ID = id
	e.active = true
	e.seq = q.seq
	q.seq++
	stored := &e
	q.arena = append(q.arena, stored)

	q.index(id)
	heap.Push(&q.heap, stored)
	return id
}

func (q *Queue) index(id EventID) {
	e := q.arena[id]
	q.byPVertex[e.PV] = append(q.byPVertex[e.PV], id)
	switch e.Kind {
	case PVertexIEdge:
		q.byIEdge[e.IEdge] = append(q.byIEdge[e.IEdge], id)
	case PVertexIVertex:
		q.byIVertex[e.IVertex] = append(q.byIVertex[e.IVertex], id)
	case PVertexPVertex:
		q.byPVertex[e.PV2] = append(q.byPVertex[e.PV2], id)
	case SneakIVertex:
		q.byIVertex[e.IVertex] = append(q.byIVertex[e.IVertex], id)
		for _, pv := range e.Cluster {
			if pv != e.PV {
				q.byPVertex[pv] = append(q.byPVertex[pv], id)
			}
		}
	}
}

// Pop removes and returns the earliest active event, skipping any
// cancelled entries it encounters. ok is false once the queue is empty of
// active events.
func (q *Queue) Pop() (Event, bool) {
	for q.heap.Len() > 0 {
		e := heap.Pop(&q.heap).(*Event)
		if !e.active {
			continue
		}
		e.active = false
		return *e, true
	}
	return Event{}, false
}

// Peek reports the earliest active event's time without removing it. ok is
// false if the queue has no active events.
func (q *Queue) Peek() (Event, bool) {
	for q.heap.Len() > 0 {
		if e := q.heap[0]; e.active {
			return *e, true
		}
		heap.Pop(&q.heap)
	}
	return Event{}, false
}

// Cancel marks id inactive; it is skipped (and lazily dropped from the
// heap) the next time it would otherwise be popped.
func (q *Queue) Cancel(id EventID) {
	if int(id) < 0 || int(id) >= len(q.arena) {
		return
	}
	q.arena[id].active = false
}

// CancelAllForPVertex cancels every currently active event referencing pv
// (as PV, PV2, or a SneakIVertex cluster member). The propagator calls
// this whenever a vertex is merged, frozen, or otherwise mutated in a way
// that invalidates any event computed from its old trajectory.
func (q *Queue) CancelAllForPVertex(pv data.PVertex) []EventID {
	var cancelled []EventID
	for _, id := range q.byPVertex[pv] {
		if q.arena[id].active {
			q.arena[id].active = false
			cancelled = append(cancelled, id)
		}
	}
	return cancelled
}

// EventsAtIEdge returns every currently active event referencing ie.
func (q *Queue) EventsAtIEdge(ie igraph.EdgeID) []Event {
	var out []Event
	for _, id := range q.byIEdge[ie] {
		if q.arena[id].active {
			out = append(out, *q.arena[id])
		}
	}
	return out
}

// EventsAtIVertex returns every currently active event referencing iv.
func (q *Queue) EventsAtIVertex(iv igraph.VertexID) []Event {
	var out []Event
	for _, id := range q.byIVertex[iv] {
		if q.arena[id].active {
			out = append(out, *q.arena[id])
		}
	}
	return out
}

// Len reports the number of active events still in the queue (an O(heap
// size) scan; intended for tests and diagnostics, not the hot loop).
func (q *Queue) Len() int {
	n := 0
	for i := range q.heap {
		if q.heap[i].active {
			n++
		}
	}
	return n
}

// eventHeap implements container/heap.Interface over *Event, ordered by
// time under a fixed tolerance band: two events landing within that band of
// each other are not treated as "equal time" by raw float comparison (noise
// in the future-point computations would make that comparison nondeterministic)
// but are instead resolved by kindPriority -- a pvertex-ivertex arrival takes
// precedence over a pvertex-iedge crossing so a vertex passing through an
// IVertex is never double-counted as a separate edge crossing first -- and
// finally by (plane, vertex, seq) for a fully deterministic order.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	dt := h[i].Time - h[j].Time
	if dt < -kernel.Tolerance || dt > kernel.Tolerance {
		return h[i].Time < h[j].Time
	}
	if pi, pj := kindPriority(h[i].Kind), kindPriority(h[j].Kind); pi != pj {
		return pi < pj
	}
	if h[i].PV.Plane != h[j].PV.Plane {
		return h[i].PV.Plane < h[j].PV.Plane
	}
	if h[i].PV.V != h[j].PV.V {
		return h[i].PV.V < h[j].PV.V
	}
	return h[i].seq < h[j].seq
}

// kindPriority orders the four event kinds within a tolerance band:
// pvertex-ivertex (and the sneak variant of it) before pvertex-iedge and
// pvertex-pvertex, so a vertex reaching an intersection vertex is never
// mistaken for crossing the edge just short of it.
func kindPriority(k Kind) int {
	switch k {
	case PVertexIVertex, SneakIVertex:
		return 0
	default:
		return 1
	}
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *eventHeap) Push(x interface{}) {
	e := x.(*Event)
	e.heapIdx = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
