package propagator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/initializer"
	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/propagator"
)

func smallSquare() []kernel.Point3 {
	return []kernel.Point3{
		{X: -0.2, Y: -0.2, Z: 0},
		{X: 0.2, Y: -0.2, Z: 0},
		{X: 0.2, Y: 0.2, Z: 0},
		{X: -0.2, Y: 0.2, Z: 0},
	}
}

func buildData(t *testing.T, k int) *propagator.Propagator {
	opts := initializer.DefaultOptions()
	opts.K = k
	opts.EnlargeBBoxRatio = 3
	polys := []initializer.InputPolygon{{Points: smallSquare()}}
	d, err := initializer.Initialize(polys, opts)
	require.NoError(t, err)
	return propagator.New(d)
}

func TestRunTerminatesAndPreservesGraphInvariants(t *testing.T) {
	p := buildData(t, 0)
	p.Seed()
	err := p.Run(500)
	require.NoError(t, err)
	assert.NoError(t, p.D.Graph.CheckInvariants())
}

func TestRunWithDebugChecksEveryEvent(t *testing.T) {
	p := buildData(t, 0)
	p.Debug = true
	p.Seed()
	require.NoError(t, p.Run(500))
	assert.NoError(t, p.D.Graph.CheckInvariants())
}

func TestRunFreezesVerticesEventually(t *testing.T) {
	p := buildData(t, 0)
	p.Seed()
	require.NoError(t, p.Run(500))

	sp := p.D.Plane(6)
	frozen := 0
	for _, v := range sp.Mesh.Vertices {
		if v.Active && v.Dir.IsZero() {
			frozen++
		}
	}
	assert.Greater(t, frozen, 0)
}

// orthogonalSquares returns two 0.6-wide squares on perpendicular planes
// (XY and XZ) sharing the Z=0/Y=0 line through the origin, each centered
// on it -- the four-volume crossing configuration a single moving
// boundary can fan out into more than two directions at once.
func orthogonalSquares() []initializer.InputPolygon {
	return []initializer.InputPolygon{
		{Points: []kernel.Point3{
			{X: -0.3, Y: -0.3, Z: 0},
			{X: 0.3, Y: -0.3, Z: 0},
			{X: 0.3, Y: 0.3, Z: 0},
			{X: -0.3, Y: 0.3, Z: 0},
		}},
		{Points: []kernel.Point3{
			{X: -0.3, Y: 0, Z: -0.3},
			{X: 0.3, Y: 0, Z: -0.3},
			{X: 0.3, Y: 0, Z: 0.3},
			{X: -0.3, Y: 0, Z: 0.3},
		}},
	}
}

func buildOrthogonalData(t *testing.T, k int) *propagator.Propagator {
	opts := initializer.DefaultOptions()
	opts.K = k
	opts.EnlargeBBoxRatio = 3
	d, err := initializer.Initialize(orthogonalSquares(), opts)
	require.NoError(t, err)
	return propagator.New(d)
}

func TestRunWithTwoOrthogonalPlanesTerminatesAndPreservesGraphInvariants(t *testing.T) {
	p := buildOrthogonalData(t, 1)
	p.Seed()
	err := p.Run(2000)
	require.NoError(t, err)
	assert.NoError(t, p.D.Graph.CheckInvariants())
}

func TestRunWithTwoOrthogonalPlanesFreezesBothInputPlanes(t *testing.T) {
	p := buildOrthogonalData(t, 1)
	p.Seed()
	require.NoError(t, p.Run(2000))

	for _, plane := range []int{6, 7} {
		sp := p.D.Plane(plane)
		frozen := 0
		for _, v := range sp.Mesh.Vertices {
			if v.Active && v.Dir.IsZero() {
				frozen++
			}
		}
		assert.Greater(t, frozen, 0, "plane %d should have at least one frozen boundary vertex", plane)
	}
}

func TestSeedSchedulesOnlyActiveMovingVertices(t *testing.T) {
	p := buildData(t, 0)
	p.Seed()
	// The six frozen bbox planes' vertices should never be scheduled.
	for i := 0; i < 6; i++ {
		sp := p.D.Plane(i)
		for _, v := range sp.Mesh.Vertices {
			assert.True(t, v.Dir.IsZero())
		}
	}
	assert.Greater(t, p.Q.Len(), 0)
}
