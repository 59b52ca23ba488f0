package preprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dunmore/ksr/internal/kernel"
	"github.com/dunmore/ksr/internal/preprocess"
)

func TestRemoveEqualPoints(t *testing.T) {
	pts := []kernel.Point2{
		{X: 0, Y: 0}, {X: 0, Y: 1e-12}, {X: 1, Y: 0}, {X: 1, Y: 1},
	}
	out := preprocess.RemoveEqualPoints(pts, 1e-6)
	assert.Len(t, out, 3)
}

func TestRemoveColinearPointsDropsStraightRun(t *testing.T) {
	pts := []kernel.Point2{
		{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	out := preprocess.RemoveColinearPoints(pts, preprocess.DefaultMinAngleDegrees)
	assert.Len(t, out, 4)
}

func TestRemoveColinearPointsNeverBelowTriangle(t *testing.T) {
	pts := []kernel.Point2{
		{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 1, Y: 0},
	}
	out := preprocess.RemoveColinearPoints(pts, preprocess.DefaultMinAngleDegrees)
	assert.GreaterOrEqual(t, len(out), 3)
}

func TestSortByDirectionProducesStarOrder(t *testing.T) {
	pts := []kernel.Point2{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}
	centroid := preprocess.Centroid(pts)
	sorted := preprocess.SortByDirection(pts, centroid)
	var angles []float64
	for _, p := range sorted {
		angles = append(angles, kernel.AngleAbout(centroid, p))
	}
	for i := 1; i < len(angles); i++ {
		assert.LessOrEqual(t, angles[i-1], angles[i])
	}
}
