package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/logrusorgru/aurora"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/dunmore/ksr"
	"github.com/dunmore/ksr/internal/dbgname"
	"github.com/dunmore/ksr/internal/fixtureio"
	"github.com/dunmore/ksr/internal/kernel"
)

// Demo CLI: reconstructs a piecewise-planar partition from an SVG file of
// polygons (each lifted to 3D by its own "data-z" attribute) and, with
// --debug, dumps a PNG per support plane plus an OFF file of the whole
// bounding box.
var (
	inputPath  = kingpin.Arg("input", "SVG file of input polygons").Required().String()
	k          = kingpin.Flag("k", "per-plane intersection-crossing budget").Default("1").Int()
	enlarge    = kingpin.Flag("enlarge-bbox-ratio", "bounding box enlargement ratio").Default("1.1").Float64()
	reorient   = kingpin.Flag("reorient", "use an oriented (PCA-aligned) bounding box instead of axis-aligned").Bool()
	verbose    = kingpin.Flag("verbose", "print per-plane summaries after reconstruction").Short('v').Bool()
	debug      = kingpin.Flag("debug", "run invariant checks and write per-plane PNG dumps").Bool()
	outDir     = kingpin.Flag("out-dir", "directory for --debug PNG/OFF dumps").Default(".").String()
)

func main() {
	kingpin.Parse()

	f, err := os.Open(*inputPath)
	if err != nil {
		fatal(err)
	}
	defer f.Close()

	polys, err := fixtureio.Load(f)
	if err != nil {
		fatal(err)
	}

	opts := ksr.DefaultOptions()
	opts.K = *k
	opts.EnlargeBBoxRatio = *enlarge
	opts.Reorient = *reorient
	opts.Debug = *debug

	input := make([]ksr.Polygon, len(polys))
	for i, p := range polys {
		input[i] = ksr.Polygon{Points: p.Points}
	}

	model, err := ksr.Reconstruct(input, opts)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%s %d support planes\n", aurora.Green("reconstructed"), model.NumPlanes())

	if *verbose {
		for i := 0; i < model.NumPlanes(); i++ {
			sp := model.D.Plane(i)
			fmt.Printf("  plane %d: %d faces, %d vertices\n", i, len(sp.Mesh.Faces), len(sp.Mesh.Vertices))
		}
	}

	if *debug {
		if err := dumpDebug(model, *outDir); err != nil {
			fatal(err)
		}
	}
}

func dumpDebug(model *ksr.Model, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var verts3 []kernel.Point3
	var faces3 [][]int
	vertIndex := map[kernel.Point3]int{}
	indexOf := func(p kernel.Point3) int {
		if idx, ok := vertIndex[p]; ok {
			return idx
		}
		idx := len(verts3)
		verts3 = append(verts3, p)
		vertIndex[p] = idx
		return idx
	}

	for i := 0; i < model.NumPlanes(); i++ {
		sp := model.D.Plane(i)
		var polys2 [][]kernel.Point2
		for _, f := range sp.Mesh.Faces {
			if !f.Active {
				continue
			}
			vertIDs := sp.Mesh.FaceVertices(f.ID)
			poly2 := make([]kernel.Point2, len(vertIDs))
			face3 := make([]int, len(vertIDs))
			for j, v := range vertIDs {
				pos := sp.Mesh.Vertices[v].Pos
				poly2[j] = pos
				face3[j] = indexOf(sp.To3D(pos))
			}
			polys2 = append(polys2, poly2)
			faces3 = append(faces3, face3)
		}
		png := filepath.Join(dir, fmt.Sprintf("plane-%02d.png", i))
		if err := dbgname.RenderPolygons(png, polys2, 64); err != nil {
			return err
		}
	}
	return dbgname.WriteOFF(filepath.Join(dir, "reconstructed.off"), verts3, faces3)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, aurora.Red(err.Error()))
	os.Exit(1)
}
