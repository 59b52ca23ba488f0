package ksr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr"
)

func square(z float64) []ksr.Point {
	return []ksr.Point{
		{X: -0.2, Y: -0.2, Z: z},
		{X: 0.2, Y: -0.2, Z: z},
		{X: 0.2, Y: 0.2, Z: z},
		{X: -0.2, Y: 0.2, Z: z},
	}
}

func TestReconstructSettlesASinglePolygon(t *testing.T) {
	opts := ksr.DefaultOptions()
	opts.EnlargeBBoxRatio = 3
	opts.Debug = true

	model, err := ksr.Reconstruct([]ksr.Polygon{{Points: square(0)}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 7, model.NumPlanes())
}

func TestReconstructRejectsEmptyInput(t *testing.T) {
	_, err := ksr.Reconstruct(nil, ksr.DefaultOptions())
	require.Error(t, err)
	var re *ksr.ReconstructError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ksr.DegenerateInput, re.Kind)
}

func TestReconstructRejectsDegeneratePolygon(t *testing.T) {
	opts := ksr.DefaultOptions()
	_, err := ksr.Reconstruct([]ksr.Polygon{{Points: square(0)[:2]}}, opts)
	require.Error(t, err)
	var re *ksr.ReconstructError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ksr.DegenerateInput, re.Kind)
}

func TestReconstructRejectsTwoCoplanarPolygons(t *testing.T) {
	opts := ksr.DefaultOptions()
	opts.EnlargeBBoxRatio = 3

	second := []ksr.Point{
		{X: 2, Y: -0.2, Z: 0},
		{X: 2.4, Y: -0.2, Z: 0},
		{X: 2.4, Y: 0.2, Z: 0},
		{X: 2, Y: 0.2, Z: 0},
	}
	_, err := ksr.Reconstruct([]ksr.Polygon{{Points: square(0)}, {Points: second}}, opts)
	require.Error(t, err)
	var re *ksr.ReconstructError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ksr.CoplanarPolygons, re.Kind)
}

func TestReconstructTwoOrthogonalPolygonsProduceDistinctPlanes(t *testing.T) {
	opts := ksr.DefaultOptions()
	opts.EnlargeBBoxRatio = 3

	vertical := []ksr.Point{
		{X: -0.2, Y: 0, Z: -0.2},
		{X: 0.2, Y: 0, Z: -0.2},
		{X: 0.2, Y: 0, Z: 0.2},
		{X: -0.2, Y: 0, Z: 0.2},
	}
	model, err := ksr.Reconstruct([]ksr.Polygon{{Points: square(0)}, {Points: vertical}}, opts)
	require.NoError(t, err)
	assert.Equal(t, 8, model.NumPlanes())
}
