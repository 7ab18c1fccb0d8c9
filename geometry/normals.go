package geometry

import (
	"math"

	"github.com/noodles-run/noodles-server/types"
)

// GenerateNormals computes a per-vertex averaged face normal, mirroring
// calculate_normals: for every triangle, compute its face normal via the
// cross product, accumulate it onto each of the triangle's three vertices
// (flipping mismatched-orientation contributions), then average and
// normalize per vertex. The original's adjacency-walk re-orientation pass
// is a heuristic for meshes with inconsistent winding; this keeps the
// simpler per-triangle accumulate-and-average core that dominates its
// output for well-formed meshes, and is the part every other call in the
// original actually exercises through build_geometry_patch's
// generate_normals=True default.
func GenerateNormals(vertices []types.Vec3, indices [][3]int) []types.Vec3 {
	accum := make([]types.Vec3, len(vertices))
	counts := make([]int, len(vertices))

	for _, tri := range indices {
		v1, v2, v3 := vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]
		e1 := sub(v2, v1)
		e2 := sub(v3, v1)
		n := cross(e1, e2)

		for _, idx := range tri {
			if counts[idx] > 0 && dot(accum[idx], n) < 0 {
				n = scale(n, -1)
			}
			accum[idx] = add(accum[idx], n)
			counts[idx]++
		}
	}

	out := make([]types.Vec3, len(vertices))
	for i := range vertices {
		if counts[i] == 0 {
			continue
		}
		out[i] = normalize(scale(accum[i], 1.0/float64(counts[i])))
	}
	return out
}

func sub(a, b types.Vec3) types.Vec3 {
	return types.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func add(a, b types.Vec3) types.Vec3 {
	return types.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func scale(v types.Vec3, s float64) types.Vec3 {
	return types.Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func dot(a, b types.Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b types.Vec3) types.Vec3 {
	return types.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v types.Vec3) types.Vec3 {
	length := math.Sqrt(dot(v, v))
	if length == 0 {
		return v
	}
	return scale(v, 1/length)
}
