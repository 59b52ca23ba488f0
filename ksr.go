// A kinetic shape reconstruction package for Go.
//
// This package takes a set of planar polygons in 3D -- possibly
// non-coplanar, possibly disjoint -- and reconstructs a piecewise-planar
// partition of their bounding box by simulating each polygon's boundary
// expanding at unit speed within its own supporting plane until it
// collides with another polygon's plane or the box itself.
package ksr

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/data"
	"github.com/dunmore/ksr/internal/initializer"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/propagator"
)

// Point and Polygon are the public input types: a polygon is a simple,
// planar, non-self-intersecting ring of 3D points.
type Point = kernel.Point3

type Polygon struct {
	Points []Point
}

// Options configures bounding-box construction and the per-plane crossing
// budget every support plane is seeded with.
type Options struct {
	// K is the number of intersection edges a moving polygon boundary may
	// cross, on a given plane, before being stopped and bound to one.
	K int

	// EnlargeBBoxRatio enlarges the computed bounding box about its center
	// before use (>= 1). 1.1 gives every input polygon 10% of headroom to
	// expand into before reaching the box.
	EnlargeBBoxRatio float64

	// Reorient selects an oriented (PCA-aligned) bounding box instead of an
	// axis-aligned one.
	Reorient bool

	// MinAngleDegrees and MinDistance control input-polygon cleanup before
	// it is installed on its support plane; zero selects the package
	// defaults.
	MinAngleDegrees float64
	MinDistance     float64

	// MaxSteps backstops the kinetic run against a mis-scheduled event that
	// would otherwise requeue itself forever; zero selects a generous
	// default. Reaching it stops the run without an error, and Reconstruct
	// returns the partition as it stands at that point.
	MaxSteps int

	// Debug runs the full invariant suite (data.Data.CheckAll) after every
	// dispatched event and once more when the kinetic run settles,
	// returning an InvariantViolation error instead of a silently wrong
	// model if anything drifted.
	Debug bool
}

// DefaultOptions returns the conventional settings: a crossing budget of
// one (K=1), a 10% bbox enlargement, no reorientation, and the
// preprocessor's own default angle/distance thresholds.
func DefaultOptions() Options {
	io := initializer.DefaultOptions()
	return Options{
		K:                io.K,
		EnlargeBBoxRatio: io.EnlargeBBoxRatio,
		Reorient:         io.Reorient,
		MinAngleDegrees:  io.MinAngleDegrees,
		MinDistance:      io.MinDistance,
		MaxSteps:         100000,
	}
}

func (o Options) toInitializer() initializer.Options {
	return initializer.Options{
		K:                o.K,
		EnlargeBBoxRatio: o.EnlargeBBoxRatio,
		Reorient:         o.Reorient,
		MinAngleDegrees:  o.MinAngleDegrees,
		MinDistance:      o.MinDistance,
	}
}

// ErrorKind classifies why Reconstruct failed.
type ErrorKind int

const (
	// DegenerateInput: an input polygon had too few points, or collapsed
	// under cleanup to fewer than three.
	DegenerateInput ErrorKind = iota
	// CoplanarPolygons: two input polygons share the same supporting plane
	// within tolerance. No merge policy is supported, so this is refused
	// rather than combining them onto one support plane.
	CoplanarPolygons
	// InvariantViolation: the intersection graph or a support plane's mesh
	// failed a structural invariant -- a programming error surfaced as data
	// rather than as a crash.
	InvariantViolation
	// KineticInconsistency: a handler encountered geometry it could not
	// reconcile (e.g. a crossing with no consistent future time, or a
	// detected sneak). Running into Options.MaxSteps is not an error.
	KineticInconsistency
)

func (k ErrorKind) String() string {
	switch k {
	case DegenerateInput:
		return "degenerate input"
	case CoplanarPolygons:
		return "coplanar polygons"
	case InvariantViolation:
		return "invariant violation"
	case KineticInconsistency:
		return "kinetic inconsistency"
	default:
		return "unknown"
	}
}

// ReconstructError is the classified error Reconstruct returns. Use
// errors.As to recover the Kind alongside the usual error text.
type ReconstructError struct {
	Kind ErrorKind
	Err  error
}

func (e *ReconstructError) Error() string { return e.Kind.String() + ": " + e.Err.Error() }
func (e *ReconstructError) Unwrap() error { return e.Err }

func classify(kind ErrorKind, err error) *ReconstructError {
	return &ReconstructError{Kind: kind, Err: err}
}

// classifyInitError guesses a more specific kind than InvariantViolation
// for the handful of error shapes initializer.Initialize actually returns;
// everything else defaults to InvariantViolation since it is the
// initializer's own call to g.CheckInvariants that produces it.
func classifyInitError(err error) ErrorKind {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "fewer than 3 points"), strings.Contains(msg, "degenerates to fewer than 3 points"),
		strings.Contains(msg, "no input polygons"), strings.Contains(msg, "crosses the bounding box at only"):
		return DegenerateInput
	case strings.Contains(msg, "is coplanar with plane"):
		return CoplanarPolygons
	default:
		return InvariantViolation
	}
}

// classifyRunError distinguishes the per-event debug check's own
// "invariant violation: ..." errors (data.Data.CheckAll,
// data.Data.CheckConstrainedOnSegment) from every other error a handler can
// return while the queue drains, which is a genuine kinetic inconsistency
// rather than a structural one.
func classifyRunError(err error) ErrorKind {
	if strings.Contains(err.Error(), "invariant violation") {
		return InvariantViolation
	}
	return KineticInconsistency
}

// Model is the result of a completed reconstruction run: the owning Data
// structure, with every support plane's mesh settled into its final
// piecewise-planar partition.
type Model struct {
	D *data.Data
}

// NumPlanes reports how many support planes the model has (six bbox
// planes plus one per distinct input plane).
func (m *Model) NumPlanes() int { return m.D.NumPlanes() }

// Reconstruct runs the whole pipeline: initialize the bounding box and
// intersection graph, seed the kinetic event queue, and drain it to
// completion.
//
// The polygons must be simple, planar, and non-self-intersecting, and no
// two may lie in the same plane within tolerance: Reconstruct has no merge
// policy for that case and returns a CoplanarPolygons error instead.
func Reconstruct(polygons []Polygon, opts Options) (result *Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*ReconstructError); ok {
				result = nil
				err = re
				return
			}
			result = nil
			err = classify(InvariantViolation, errors.Errorf("%v", r))
		}
	}()

	if len(polygons) == 0 {
		panic(classify(DegenerateInput, errors.New("no input polygons")))
	}

	polys := make([]initializer.InputPolygon, len(polygons))
	for i, p := range polygons {
		if len(p.Points) < 3 {
			panic(classify(DegenerateInput, errors.Errorf("polygon %d has fewer than 3 points", i)))
		}
		polys[i] = initializer.InputPolygon{Points: p.Points}
	}

	d, err := initializer.Initialize(polys, opts.toInitializer())
	if err != nil {
		return nil, classify(classifyInitError(err), err)
	}

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 100000
	}
	prop := propagator.New(d)
	prop.Debug = opts.Debug
	prop.Seed()
	if err := prop.Run(maxSteps); err != nil {
		return nil, classify(classifyRunError(err), err)
	}

	if opts.Debug {
		if err := d.CheckAll(); err != nil {
			return nil, classify(InvariantViolation, err)
		}
	}

	return &Model{D: d}, nil
}
