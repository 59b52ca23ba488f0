package dbgname

import (
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"

	"github.com/dunmore/ksr/internal/kernel"
)

const dbgDrawPadding = 8

// RenderPolygons rasterizes a set of closed 2D polylines (a support plane's
// faces, projected into its own frame) to a PNG at path, adapted from
// PolygonList.dbgDraw. scale converts plane units to pixels.
func RenderPolygons(path string, polys [][]kernel.Point2, scale float64) error {
	if len(polys) == 0 {
		return nil
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, p := range poly {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}

	width := int(scale*(maxX-minX)) + dbgDrawPadding*2
	height := int(scale*(maxY-minY)) + dbgDrawPadding*2
	if width <= 0 {
		width = dbgDrawPadding * 2
	}
	if height <= 0 {
		height = dbgDrawPadding * 2
	}
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()
	c.SetFillRuleEvenOdd()

	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(dbgDrawPadding, dbgDrawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	c.SetLineWidth(2 / scale)
	for _, poly := range polys {
		if len(poly) == 0 {
			continue
		}
		c.MoveTo(poly[0].X, poly[0].Y)
		for _, p := range poly[1:] {
			c.LineTo(p.X, p.Y)
		}
		c.ClosePath()
	}
	c.SetRGB(0, 0.5, 0)
	c.FillPreserve()
	c.SetRGB(0, 1, 1)
	c.Stroke()

	return c.SavePNG(path)
}

// PreviewInTerminal cats path to w using imgcat's inline terminal image
// protocol, adapted from triangulate/polygon_list_draw.go's debug draw
// helper.
func PreviewInTerminal(path string, w *os.File) error {
	return imgcat.CatFile(path, w)
}

// WriteOFF writes a mesh of 3D polygonal faces in Geomview OFF format to
// path, for diagnostic dumps such as init.off, intersected.off, and
// volumes/degenerate-*.off. verts is the shared vertex pool; faces index
// into it.
func WriteOFF(path string, verts []kernel.Point3, faces [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "OFF")
	fmt.Fprintf(f, "%d %d 0\n", len(verts), len(faces))
	for _, v := range verts {
		fmt.Fprintf(f, "%g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, face := range faces {
		fmt.Fprintf(f, "%d", len(face))
		for _, idx := range face {
			fmt.Fprintf(f, " %d", idx)
		}
		fmt.Fprintln(f)
	}
	return nil
}
