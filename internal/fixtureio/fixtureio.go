// Package fixtureio loads raw input polygons from SVG files: each
// top-level <polygon> element becomes one planar polygon, lifted to 3D at
// the height given by its own "data-z" attribute (0 if absent).
//
// Adapted from triangulate/fixture_test.go's own SVG fixture loader --
// that one only needed a single 2D *Polygon per file; this one needs every
// polygon in the file, each independently placed in 3D, since a
// reconstruction input is a set of (possibly non-coplanar) faces rather
// than a single outline.
package fixtureio

import (
	"io"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/pkg/errors"

	"github.com/dunmore/ksr/internal/initializer"
	"github.com/dunmore/ksr/internal/kernel"
)

// Load parses an SVG document from r and returns one InputPolygon per
// top-level <polygon> element.
func Load(r io.Reader) ([]initializer.InputPolygon, error) {
	root, err := svgparser.Parse(r, true)
	if err != nil {
		return nil, errors.Wrap(err, "fixtureio: parse svg")
	}

	elements := root.FindAll("polygon")
	if len(elements) == 0 {
		return nil, errors.New("fixtureio: no <polygon> elements found")
	}

	out := make([]initializer.InputPolygon, 0, len(elements))
	for i, el := range elements {
		z, err := parseZ(el.Attributes["data-z"])
		if err != nil {
			return nil, errors.Wrapf(err, "fixtureio: polygon %d", i)
		}
		points, err := parsePoints(el.Attributes["points"], z)
		if err != nil {
			return nil, errors.Wrapf(err, "fixtureio: polygon %d", i)
		}
		out = append(out, initializer.InputPolygon{Points: points})
	}
	return out, nil
}

func parseZ(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parsePoints(raw string, z float64) ([]kernel.Point3, error) {
	fields := strings.Fields(raw)
	points := make([]kernel.Point3, 0, len(fields))
	for _, field := range fields {
		xy := strings.Split(field, ",")
		if len(xy) != 2 {
			return nil, errors.Errorf("invalid point %q", field)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid x in %q", field)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid y in %q", field)
		}
		points = append(points, kernel.Point3{X: x, Y: y, Z: z})
	}
	if len(points) < 3 {
		return nil, errors.Errorf("polygon has fewer than 3 points: %q", raw)
	}
	return points, nil
}
