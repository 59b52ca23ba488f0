package propagator

import (
	"math"

	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/events"
	"github.com/dunmore/ksr/internal/igraph"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/mesh"
)

// clusterTolerance bounds how far a constrained vertex's computed arrival
// time at an IVertex may drift from the event actually being dispatched and
// still count as part of the same converging cluster -- wider than
// kernel.Tolerance because it is comparing simulated *times*, not positions,
// and floating error in a chain of prior events compounds.
const clusterTolerance = 1e-6

// Propagator owns the simulated clock and the event queue New creates for
// it; Q is exported so a caller driving a debug step-by-step replay has
// direct access to it between steps.
type Propagator struct {
	D    *data.Data
	Q    *events.Queue
	Time float64

	// Debug runs data.Data.CheckAll, plus a CheckConstrainedOnSegment pass
	// over the event's own vertex, after every dispatched event -- matching
	// the density of the original's CGAL_KSR_CHECK macro rather than
	// checking only once at the end of the run.
	Debug bool
}

// New returns a propagator over d with an empty, zero-time queue.
func New(d *data.Data) *Propagator {
	return &Propagator{
		D: d,
		Q: events.New(),
	}
}

// Seed schedules one initial event for every active, non-frozen boundary
// vertex across every plane, and is the entry point a caller uses after
// initialization before calling Run.
func (p *Propagator) Seed() {
	for i := 0; i < p.D.NumPlanes(); i++ {
		sp := p.D.Plane(i)
		for _, v := range sp.Mesh.Vertices {
			if !v.Active {
				continue
			}
			p.reschedule(data.PVertex{Plane: i, V: v.ID})
		}
	}
}

// Run drains the queue, dispatching each popped event to its handler,
// until no active events remain or maxSteps have been processed (a
// termination backstop against a mis-scheduled event that would otherwise
// requeue itself forever).
func (p *Propagator) Run(maxSteps int) error {
	for steps := 0; steps < maxSteps; steps++ {
		e, ok := p.Q.Pop()
		if !ok {
			return nil
		}
		p.Time = e.Time
		if err := p.dispatch(e); err != nil {
			return err
		}
		if p.Debug {
			if err := p.checkAfterEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkAfterEvent runs the invariant suite plus a targeted on-segment check
// for the vertex the just-dispatched event moved, so a debug run catches
// drift at the event that caused it rather than only at the final state.
func (p *Propagator) checkAfterEvent(e events.Event) error {
	if err := p.D.CheckAll(); err != nil {
		return err
	}
	return p.D.CheckConstrainedOnSegment(e.PV, p.Time)
}

func (p *Propagator) dispatch(e events.Event) error {
	switch e.Kind {
	case events.PVertexIEdge:
		return p.handlePVertexIEdge(e)
	case events.PVertexIVertex:
		return p.handlePVertexIVertex(e)
	case events.PVertexPVertex:
		return p.handlePVertexPVertex(e)
	case events.SneakIVertex:
		return p.handleSneakIVertex(e)
	}
	return nil
}

// reschedule cancels pv's previously pending event, if any, recomputes the
// earliest thing that can now happen to it, and pushes a fresh event. A
// vertex with nothing ahead of it (frozen, or with no candidate collision
// within the horizon) is simply left unscheduled.
func (p *Propagator) reschedule(pv data.PVertex) {
	p.Q.CancelAllForPVertex(pv)
	if e, ok := p.bestCandidate(pv); ok {
		p.Q.Push(e)
	}
}

func (p *Propagator) bestCandidate(pv data.PVertex) (events.Event, bool) {
	sp := p.D.Plane(pv.Plane)
	v := pv.V
	vert := &sp.Mesh.Vertices[v]
	if !vert.Active || vert.Dir.IsZero() {
		return events.Event{}, false
	}

	best := events.Event{Time: -1}
	found := false
	consider := func(cand events.Event) {
		if !found || cand.Time < best.Time {
			best, found = cand, true
		}
	}

	if ie, constrained := sp.IEdgeOfVertex(v); constrained {
		ed := p.D.Graph.Edge(ie)
		for _, end := range [2]igraph.VertexID{ed.U, ed.V} {
			target := sp.To2D(p.D.Graph.Point3(end))
			if t, ok := futureIVertexArrival(sp, v, target, p.Time); ok {
				consider(events.Event{Time: t, Kind: events.PVertexIVertex, PV: pv, IVertex: end, IEdge: ie})
			}
		}
	} else {
		bbox := futureRayBBox(sp, v, p.Time)
		for _, ie := range sp.IEdgesNear(bbox) {
			seg := sp.Segment2Of(p.D.Graph, ie)
			if t, pt, ok := futureIEdgeCrossing(sp, v, seg, p.Time); ok {
				_ = pt
				consider(events.Event{Time: t, Kind: events.PVertexIEdge, PV: pv, IEdge: ie})
			}
		}
	}

	for _, w := range neighborsOf(sp, v) {
		if !sp.Mesh.Vertices[w].Active {
			continue
		}
		if t, ok := futurePVertexMeeting(sp, v, w, p.Time); ok {
			consider(events.Event{Time: t, Kind: events.PVertexPVertex, PV: pv, PV2: data.PVertex{Plane: pv.Plane, V: w}})
		}
	}

	return best, found
}

// neighborsOf returns the (up to two) boundary vertices adjacent to v
// around whichever face v.Leaving belongs to.
func neighborsOf(sp *data.SupportPlane, v mesh.VertexID) []mesh.VertexID {
	leaving := sp.Mesh.Vertices[v].Leaving
	if leaving == mesh.NoHalfEdge {
		return nil
	}
	next := sp.Mesh.NextVertex(leaving)
	prev := sp.Mesh.PrevVertex(leaving)
	if next == prev {
		return []mesh.VertexID{next}
	}
	return []mesh.VertexID{next, prev}
}

// handlePVertexIEdge is the unconstrained-vertex-meets-intersection-edge
// collision: v always becomes constrained to e. Whether it then
// freezes there or keeps sliding depends on what else sits on e: reaching a
// bbox plane always stops it (independent of any plane's crossing budget),
// otherwise, if some other plane is already bound to e, the plane's k
// budget decides whether this is the crossing that exhausts it.
func (p *Propagator) handlePVertexIEdge(e events.Event) error {
	sp := p.D.Plane(e.PV.Plane)
	v := e.PV.V
	vert := &sp.Mesh.Vertices[v]
	if !vert.Active {
		return nil
	}

	ed := p.D.Graph.Edge(e.IEdge)
	otherPlane := otherPlaneOn(ed.Planes, e.PV.Plane)

	bboxReached := false
	for pl := range ed.Planes {
		if pl != e.PV.Plane && data.IsBBoxPlane(pl) {
			bboxReached = true
			break
		}
	}

	isLimit := bboxReached
	if !isLimit && edgeOccupiedElsewhere(p.D, e.IEdge, e.PV.Plane) {
		isLimit = p.limitDecision(ed.Line, e.PV.Plane, otherPlane, sp)
	}

	pos, dir, ok := futurePointDirection(sp, p.D.Graph, v, e.IEdge, e.Time)
	if !ok {
		pos, dir = vert.PositionAt(e.Time), kernel.Vector2{}
	}
	vert.Pos = pos
	vert.T0 = e.Time
	if isLimit {
		vert.Dir = kernel.Vector2{}
	} else {
		vert.Dir = dir
	}
	sp.SetIEdge(v, e.IEdge)

	p.reschedule(e.PV)
	for _, w := range neighborsOf(sp, v) {
		p.reschedule(data.PVertex{Plane: e.PV.Plane, V: w})
	}
	for _, other := range constrainedVerticesOnEdge(sp, e.IEdge) {
		if other != v {
			p.reschedule(data.PVertex{Plane: e.PV.Plane, V: other})
		}
	}
	return nil
}

// edgeOccupiedElsewhere reports whether some plane other than self incident
// to ie already has a vertex bound to it -- the condition the k-budget test
// below is gated on.
func edgeOccupiedElsewhere(d *data.Data, ie igraph.EdgeID, self int) bool {
	for pl := range d.Graph.Edge(ie).Planes {
		if pl == self {
			continue
		}
		if len(constrainedVerticesOnEdge(d.Plane(pl), ie)) > 0 {
			return true
		}
	}
	return false
}

// constrainedVerticesOnEdge returns every vertex on sp currently sliding
// along ie, used both to detect occupancy for the k-budget test and to
// reschedule every co-occupant of an edge a new vertex has just joined.
func constrainedVerticesOnEdge(sp *data.SupportPlane, ie igraph.EdgeID) []mesh.VertexID {
	var out []mesh.VertexID
	for i := range sp.Mesh.Vertices {
		vid := mesh.VertexID(i)
		if !sp.Mesh.Vertices[i].Active {
			continue
		}
		if bound, ok := sp.IEdgeOfVertex(vid); ok && bound == ie {
			out = append(out, vid)
		}
	}
	return out
}

// limitDecision decides, for the first (thisPlane, otherPlane) ordered pair
// to cross line, whether this crossing exhausts sp's crossing budget
// (sp.K, one counter per plane) --
// recording the answer so every later crossing of this same ordered pair
// reuses it instead of re-deciding -- and decrements the budget otherwise.
func (p *Propagator) limitDecision(line igraph.LineID, thisPlane, otherPlane int, sp *data.SupportPlane) bool {
	entries := p.D.LimitLines[line]
	for _, en := range entries {
		if en.ThisPlane == thisPlane && en.OtherPlane == otherPlane {
			return en.IsLimit
		}
	}

	isLimit := sp.K <= 1
	if !isLimit {
		sp.K--
	}
	if len(entries) < 2 {
		p.D.LimitLines[line] = append(entries, data.LimitEntry{ThisPlane: thisPlane, OtherPlane: otherPlane, IsLimit: isLimit})
	}
	return isLimit
}

// handlePVertexIVertex is the pvertex-reaches-ivertex collision. Rather
// than freezing only the single popped vertex, it first discovers
// the contiguous arc of border vertices also converging on the same
// IVertex at this time (the "cluster"), merges all of them into one vertex
// bound to it, and then binds each of the merged vertex's unconstrained
// boundary neighbors whose boundary edge runs along one of the IVertex's
// other IEdges crossing this plane (no new vertices are created), so the
// boundary's local fan of future motion continues past the merge.
func (p *Propagator) handlePVertexIVertex(e events.Event) error {
	sp := p.D.Plane(e.PV.Plane)
	if !sp.Mesh.Vertices[e.PV.V].Active {
		return nil
	}

	cluster := p.gatherCluster(sp, e.PV.Plane, e.PV.V, e.IVertex)
	survivor := p.mergeClusterAtIVertex(sp, e.PV.Plane, cluster, e.IVertex, e.Time)
	p.spawnOpenPVertices(sp, e.PV.Plane, survivor, e.IVertex, e.Time)

	for _, w := range neighborsOf(sp, survivor) {
		p.reschedule(data.PVertex{Plane: e.PV.Plane, V: w})
	}
	return nil
}

// gatherCluster walks the border half-edges outward from v in both
// directions, collecting every vertex whose own trajectory also arrives at
// iv within clusterTolerance of tNow -- the contiguous arc of PVertices
// about to converge on the same IVertex together.
func (p *Propagator) gatherCluster(sp *data.SupportPlane, plane int, v mesh.VertexID, iv igraph.VertexID) []data.PVertex {
	target := sp.To2D(p.D.Graph.Point3(iv))
	seen := map[mesh.VertexID]bool{v: true}
	cluster := []data.PVertex{{Plane: plane, V: v}}

	walk := func(step func(mesh.HalfEdgeID) mesh.VertexID) {
		cur := v
		for {
			leaving := sp.Mesh.Vertices[cur].Leaving
			if leaving == mesh.NoHalfEdge {
				return
			}
			next := step(leaving)
			if seen[next] || !sp.Mesh.Vertices[next].Active {
				return
			}
			t, ok := futureIVertexArrival(sp, next, target, p.Time)
			if !ok || math.Abs(t-p.Time) > clusterTolerance {
				return
			}
			seen[next] = true
			cluster = append(cluster, data.PVertex{Plane: plane, V: next})
			cur = next
		}
	}
	walk(sp.Mesh.NextVertex)
	walk(sp.Mesh.PrevVertex)
	return cluster
}

// mergeClusterAtIVertex freezes every cluster member at iv's 2D position
// and merges them all into a single survivor bound to iv, cancelling each
// merged-away vertex's pending events as mesh.MergeVertices already expects
// a one-at-a-time caller to do.
func (p *Propagator) mergeClusterAtIVertex(sp *data.SupportPlane, plane int, cluster []data.PVertex, iv igraph.VertexID, tNow float64) mesh.VertexID {
	pos := sp.To2D(p.D.Graph.Point3(iv))
	survivor := cluster[0].V
	for _, pv := range cluster {
		vert := &sp.Mesh.Vertices[pv.V]
		vert.Pos = vert.PositionAt(tNow)
		vert.T0 = tNow
		vert.Dir = kernel.Vector2{}
		if pv.V != survivor {
			p.Q.CancelAllForPVertex(pv)
			sp.Mesh.MergeVertices(survivor, pv.V)
		}
	}
	sp.Mesh.Vertices[survivor].Pos = pos
	sp.SetIVertex(survivor, iv)
	return survivor
}

// spawnOpenPVertices binds each of survivor's still-unconstrained boundary
// neighbors that already runs tangent to one of iv's other incident IEdges
// crossing this plane, computing each one's future direction the same way
// an ordinary pvertex-iedge crossing would.
func (p *Propagator) spawnOpenPVertices(sp *data.SupportPlane, plane int, survivor mesh.VertexID, iv igraph.VertexID, tNow float64) {
	survivorPos := sp.Mesh.Vertices[survivor].Pos
	for _, w := range neighborsOf(sp, survivor) {
		if !sp.Mesh.Vertices[w].Active || sp.Constrained(w) {
			continue
		}
		boundary := sp.Mesh.Vertices[w].Pos.Sub(survivorPos)
		if boundary.IsZero() {
			continue
		}
		boundary = boundary.Normalized()

		for _, ie := range p.D.Graph.IncidentEdges(iv) {
			if _, onPlane := p.D.Graph.Edge(ie).Planes[plane]; !onPlane {
				continue
			}
			seg := sp.Segment2Of(p.D.Graph, ie)
			edgeDir := seg.Direction().Normalized()
			if edgeDir.IsZero() || !kernel.ParallelSlope(edgeDir, boundary) {
				continue
			}
			pos, dir, ok := futurePointDirection(sp, p.D.Graph, w, ie, tNow)
			if !ok {
				continue
			}
			vert := &sp.Mesh.Vertices[w]
			vert.Pos, vert.T0, vert.Dir = pos, tNow, dir
			sp.SetIEdge(w, ie)
			p.reschedule(data.PVertex{Plane: plane, V: w})
			break
		}
	}
}

// isSneakingPVertexPVertex reports a sneak: two vertices constrained to the
// same iedge should be converging on each other, so if both are sliding the
// same direction along it, one of them must have skipped past an event it
// should have stopped for.
func isSneakingPVertexPVertex(sp *data.SupportPlane, a, b mesh.VertexID) bool {
	ia, oka := sp.IEdgeOfVertex(a)
	ib, okb := sp.IEdgeOfVertex(b)
	if !oka || !okb || ia != ib {
		return false
	}
	va, vb := sp.Mesh.Vertices[a].Dir, sp.Mesh.Vertices[b].Dir
	if va.IsZero() || vb.IsZero() {
		return false
	}
	return va.Normalized().Dot(vb.Normalized()) > 1-kernel.Tolerance
}

// handlePVertexPVertex is the two-boundary-vertices-converge collision:
// they are merged into one (mesh.MergeVertices), and every vertex still
// adjacent to the survivor is rescheduled since its neighbor -- and
// possibly its own boundary topology -- just changed. Before applying the
// merge, the sneak check verifies the two vertices are actually converging
// rather than both having overrun a missed event.
func (p *Propagator) handlePVertexPVertex(e events.Event) error {
	sp := p.D.Plane(e.PV.Plane)
	a, b := e.PV.V, e.PV2.V
	if !sp.Mesh.Vertices[a].Active || !sp.Mesh.Vertices[b].Active {
		return nil
	}

	if isSneakingPVertexPVertex(sp, a, b) {
		return p.handleSneakIVertex(events.Event{
			Time:    e.Time,
			Kind:    events.SneakIVertex,
			PV:      e.PV,
			Cluster: []data.PVertex{e.PV, e.PV2},
		})
	}

	pos := sp.Mesh.Vertices[a].PositionAt(e.Time)
	sp.Mesh.Vertices[a].Pos = pos
	sp.Mesh.Vertices[a].T0 = e.Time
	sp.Mesh.Vertices[a].Dir = kernel.Vector2{}

	p.Q.CancelAllForPVertex(e.PV2)
	sp.Mesh.MergeVertices(a, b)

	p.reschedule(e.PV)
	for _, w := range neighborsOf(sp, a) {
		p.reschedule(data.PVertex{Plane: e.PV.Plane, V: w})
	}
	return nil
}

// handleSneakIVertex refuses to resolve a detected sneak silently: it is a
// symptom of an event the queue should have produced but did not, so it is
// surfaced as an error rather than papered over.
func (p *Propagator) handleSneakIVertex(e events.Event) error {
	return errors.Errorf("propagator: sneak detected among %d converging vertices at time %.9g", len(e.Cluster), e.Time)
}

func otherPlaneOn(planes map[int]struct{}, self int) int {
	for p := range planes {
		if p != self {
			return p
		}
	}
	return self
}
