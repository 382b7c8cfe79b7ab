package debug_utils

import (
	"math"

	"github.com/gorustyt/navbuild/common"
	"github.com/gorustyt/navbuild/geom"
	"github.com/gorustyt/navbuild/recast"
)

// DefaultWeldDistance is the distance under which detail vertices are merged.
const DefaultWeldDistance = 1e-5

type weldKey [3]int64

// DetailTriMesh flattens the detail sub-meshes into one world-space triangle
// mesh. Vertices closer than weldDist are merged and triangles that collapse
// after merging are dropped. A non-positive weldDist uses DefaultWeldDistance.
func DetailTriMesh(dmesh *recast.RcPolyMeshDetail, weldDist float64) *geom.Mesh {
	out := &geom.Mesh{Name: "navmesh"}
	if dmesh == nil {
		return out
	}
	if weldDist <= 0 {
		weldDist = DefaultWeldDistance
	}

	grid := make(map[weldKey][]int)
	remap := make([]int, dmesh.Nverts)
	for i := 0; i < dmesh.Nverts; i++ {
		v := common.ToVec3(dmesh.Verts[i*3:])
		remap[i] = weldVertex(out, grid, v, weldDist)
	}

	for i := 0; i < dmesh.Nmeshes; i++ {
		m := dmesh.Meshes[i*4:]
		bverts := m[0]
		btris := m[2]
		ntris := m[3]
		for j := 0; j < ntris; j++ {
			t := dmesh.Tris[(btris+j)*4:]
			a := remap[bverts+t[0]]
			b := remap[bverts+t[1]]
			c := remap[bverts+t[2]]
			if a == b || b == c || a == c {
				continue
			}
			out.Tris = append(out.Tris, a, b, c)
		}
	}
	return out
}

// weldVertex returns the index of an existing vertex within dist of v, or
// appends v.
func weldVertex(m *geom.Mesh, grid map[weldKey][]int, v common.Vec3, dist float64) int {
	var key weldKey
	for k := 0; k < 3; k++ {
		key[k] = int64(math.Floor(v[k] / dist))
	}
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, idx := range grid[weldKey{key[0] + dx, key[1] + dy, key[2] + dz}] {
					if common.ToVec3(m.Verts[idx*3:]).Sub(v).Len() <= dist {
						return idx
					}
				}
			}
		}
	}
	idx := m.VertCount()
	m.Verts = append(m.Verts, v[0], v[1], v[2])
	grid[key] = append(grid[key], idx)
	return idx
}
