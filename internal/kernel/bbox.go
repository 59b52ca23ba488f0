package kernel

import "math"

// Box3 is an oriented 3D box: a center, an orthonormal axis triple, and the
// half-extents along each axis. An axis-aligned box is the special case
// Axes == Identity.
type Box3 struct {
	Center Point3
	Axes   [3]Vector3 // orthonormal
	Half   Vector3    // half-extent along each axis, all > 0
}

// AABB computes the axis-aligned bounding box of points, enlarged by ratio
// (>= 1) about its center, with any extent below Tolerance pushed apart to
// 2*Tolerance: a degenerate (flat or collinear) input set still gets a
// proper box with positive volume rather than a zero-thickness slab.
func AABB(points []Point3, ratio float64) Box3 {
	if len(points) == 0 {
		return Box3{Axes: identityAxes(), Half: Vector3{1, 1, 1}}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = Point3{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Point3{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	center := Point3{(min.X + max.X) / 2, (min.Y + max.Y) / 2, (min.Z + max.Z) / 2}
	half := Vector3{(max.X - min.X) / 2, (max.Y - min.Y) / 2, (max.Z - min.Z) / 2}
	half = half.Scale(ratio)
	half = clampHalfExtent(half)
	return Box3{Center: center, Axes: identityAxes(), Half: half}
}

func identityAxes() [3]Vector3 {
	return [3]Vector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func clampHalfExtent(half Vector3) Vector3 {
	fix := func(h float64) float64 {
		if h < Tolerance {
			return Tolerance
		}
		return h
	}
	return Vector3{fix(half.X), fix(half.Y), fix(half.Z)}
}

// OBB estimates an oriented bounding box via the covariance/PCA heuristic:
// the box axes are the eigenvectors of the point cloud's covariance matrix,
// found here by Jacobi iteration on the symmetric 3x3 matrix (small, fixed
// size, so a closed numeric routine is simpler than pulling in a general
// linear-algebra dependency for a single eigendecomposition). Falls back to
// AABB when points is too small to define a covariance.
func OBB(points []Point3, ratio float64) Box3 {
	if len(points) < 3 {
		return AABB(points, ratio)
	}
	mean := Point3{}
	for _, p := range points {
		mean.X += p.X
		mean.Y += p.Y
		mean.Z += p.Z
	}
	n := float64(len(points))
	mean = Point3{mean.X / n, mean.Y / n, mean.Z / n}

	var cov [3][3]float64
	for _, p := range points {
		d := p.Sub(mean)
		dv := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i][j] += dv[i] * dv[j]
			}
		}
	}
	axes := jacobiEigenvectors(cov)

	// Project points onto the candidate axes to find the true extents and
	// center along each axis.
	var min, max [3]float64
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, p := range points {
		d := p.Sub(mean)
		for i := 0; i < 3; i++ {
			proj := d.Dot(axes[i])
			min[i] = math.Min(min[i], proj)
			max[i] = math.Max(max[i], proj)
		}
	}
	center := mean
	half := Vector3{}
	halfArr := [3]float64{}
	for i := 0; i < 3; i++ {
		mid := (min[i] + max[i]) / 2
		center = center.Add(axes[i].Scale(mid))
		halfArr[i] = (max[i] - min[i]) / 2 * ratio
	}
	half = Vector3{halfArr[0], halfArr[1], halfArr[2]}
	half = clampHalfExtent(half)
	return Box3{Center: center, Axes: axes, Half: half}
}

// jacobiEigenvectors computes the eigenvectors of a symmetric 3x3 matrix via
// the cyclic Jacobi eigenvalue algorithm, returning them as an orthonormal
// triple. Fixed iteration count is ample for 3x3 matrices.
func jacobiEigenvectors(a [3][3]float64) [3]Vector3 {
	v := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for iter := 0; iter < 50; iter++ {
		// Find largest off-diagonal element.
		p, q := 0, 1
		maxVal := math.Abs(a[0][1])
		if math.Abs(a[0][2]) > maxVal {
			p, q, maxVal = 0, 2, math.Abs(a[0][2])
		}
		if math.Abs(a[1][2]) > maxVal {
			p, q, maxVal = 1, 2, math.Abs(a[1][2])
		}
		if maxVal < 1e-12 {
			break
		}
		theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
		t := sign(theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
		c := 1 / math.Sqrt(t*t+1)
		s := t * c

		app, aqq, apq := a[p][p], a[q][q], a[p][q]
		a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
		a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
		a[p][q] = 0
		a[q][p] = 0
		for i := 0; i < 3; i++ {
			if i != p && i != q {
				aip, aiq := a[i][p], a[i][q]
				a[i][p] = c*aip - s*aiq
				a[p][i] = a[i][p]
				a[i][q] = s*aip + c*aiq
				a[q][i] = a[i][q]
			}
		}
		for i := 0; i < 3; i++ {
			vip, viq := v[i][p], v[i][q]
			v[i][p] = c*vip - s*viq
			v[i][q] = s*vip + c*viq
		}
	}
	return [3]Vector3{
		{v[0][0], v[1][0], v[2][0]},
		{v[0][1], v[1][1], v[2][1]},
		{v[0][2], v[1][2], v[2][2]},
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Corners returns the 8 corners of the box, in a fixed order matching the
// six-face winding used by the initializer: (-,-,-),(+,-,-),(+,+,-),(-,+,-),
// (-,-,+),(+,-,+),(+,+,+),(-,+,+).
func (b Box3) Corners() [8]Point3 {
	signs := [8][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	var out [8]Point3
	for i, s := range signs {
		p := b.Center
		p = p.Add(b.Axes[0].Scale(s[0] * b.Half.X))
		p = p.Add(b.Axes[1].Scale(s[1] * b.Half.Y))
		p = p.Add(b.Axes[2].Scale(s[2] * b.Half.Z))
		out[i] = p
	}
	return out
}

// FacePlanes returns the six face planes in the fixed order
// -X,+X,-Y,+Y,-Z,+Z (local axes), oriented with outward normals.
func (b Box3) FacePlanes() [6]Plane {
	var out [6]Plane
	axisHalf := [3]float64{b.Half.X, b.Half.Y, b.Half.Z}
	for axis := 0; axis < 3; axis++ {
		n := b.Axes[axis]
		center := Vector3{b.Center.X, b.Center.Y, b.Center.Z}
		out[axis*2] = Plane{Normal: n.Scale(-1), Offset: n.Scale(-1).Dot(center) + axisHalf[axis]}
		out[axis*2+1] = Plane{Normal: n, Offset: n.Dot(center) + axisHalf[axis]}
	}
	return out
}

// FaceCorners returns the four corners of face index 0..5 in boundary
// order (a simple, non-self-intersecting traversal), indexing into
// Corners(). Winding direction is not normalized to a common "outward"
// sense across faces: each face gets its own 2D frame independent of the
// others (see FrameFromPlane), so only within-face non-degeneracy matters.
func (b Box3) FaceCorners() [6][4]int {
	return [6][4]int{
		{0, 3, 7, 4}, // -X
		{1, 5, 6, 2}, // +X
		{0, 1, 5, 4}, // -Y
		{3, 2, 6, 7}, // +Y
		{0, 1, 2, 3}, // -Z
		{4, 5, 6, 7}, // +Z
	}
}
