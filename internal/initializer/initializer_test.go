package initializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/initializer"
	"github.com/dunmore/ksr/internal/kernel"
)

func square(z float64) []kernel.Point3 {
	return []kernel.Point3{
		{X: -1, Y: -1, Z: z},
		{X: 1, Y: -1, Z: z},
		{X: 1, Y: 1, Z: z},
		{X: -1, Y: 1, Z: z},
	}
}

func TestInitializeSinglePolygonProducesSixBBoxPlanesPlusOne(t *testing.T) {
	polys := []initializer.InputPolygon{{Points: square(0)}}
	d, err := initializer.Initialize(polys, initializer.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 7, d.NumPlanes())

	// The input plane z=0 crosses the four side faces (-X,+X,-Y,+Y), each
	// of which is cut in two along its clip line; -Z and +Z are not crossed.
	for i := 0; i < 4; i++ {
		assert.Len(t, d.PFacesOf(i), 2)
	}
	for i := 4; i < 6; i++ {
		assert.Len(t, d.PFacesOf(i), 1)
	}
	assert.Len(t, d.PFacesOf(6), 2) // bbox-clip boundary + the input polygon face
}

func TestInitializeRejectsTwoCoplanarPolygons(t *testing.T) {
	a := square(0)
	b := []kernel.Point3{
		{X: 2, Y: -1, Z: 0}, {X: 3, Y: -1, Z: 0}, {X: 3, Y: 1, Z: 0}, {X: 2, Y: 1, Z: 0},
	}
	polys := []initializer.InputPolygon{{Points: a}, {Points: b}}
	_, err := initializer.Initialize(polys, initializer.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coplanar")
}

func TestInitializeTwoOrthogonalPolygonsGetDistinctPlanes(t *testing.T) {
	a := square(0)
	b := []kernel.Point3{
		{X: 0, Y: -1, Z: -1}, {X: 0, Y: 1, Z: -1}, {X: 0, Y: 1, Z: 1}, {X: 0, Y: -1, Z: 1},
	}
	polys := []initializer.InputPolygon{{Points: a}, {Points: b}}
	d, err := initializer.Initialize(polys, initializer.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 8, d.NumPlanes())
}

func TestInitializeRejectsEmptyInput(t *testing.T) {
	_, err := initializer.Initialize(nil, initializer.DefaultOptions())
	assert.Error(t, err)
}

func TestInitializeRejectsDegeneratePolygon(t *testing.T) {
	polys := []initializer.InputPolygon{{Points: []kernel.Point3{{X: 0}, {X: 1}}}}
	_, err := initializer.Initialize(polys, initializer.DefaultOptions())
	assert.Error(t, err)
}
