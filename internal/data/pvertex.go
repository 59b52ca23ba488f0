package data

import "github.com/dunmore/ksr/internal/mesh"

// PVertex, PEdge and PFace are the polygon-simplex abstraction used
// throughout the engine: opaque (support_plane_index, local_mesh_handle)
// pairs. Equality is component-wise, so they can be used directly as map
// keys.
type PVertex struct {
	Plane int
	V     mesh.VertexID
}

type PEdge struct {
	Plane int
	HE    mesh.HalfEdgeID
}

type PFace struct {
	Plane int
	F     mesh.FaceID
}
