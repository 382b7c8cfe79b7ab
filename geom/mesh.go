// Package geom loads and prepares input geometry for a navigation mesh build.
package geom

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gorustyt/navbuild/common"
	"github.com/gorustyt/navbuild/navbuild"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name  string
	Verts []float64 // 3 per vertex
	Tris  []int     // 3 per triangle
}

func (m *Mesh) VertCount() int { return len(m.Verts) / 3 }
func (m *Mesh) TriCount() int  { return len(m.Tris) / 3 }

// Bounds returns the axis aligned bounds of the vertices.
func (m *Mesh) Bounds() (bmin, bmax common.Vec3) {
	if m.VertCount() == 0 {
		return
	}
	bmin = common.ToVec3(m.Verts)
	bmax = bmin
	for i := 1; i < m.VertCount(); i++ {
		v := common.ToVec3(m.Verts[i*3:])
		for j := 0; j < 3; j++ {
			bmin[j] = min(bmin[j], v[j])
			bmax[j] = max(bmax[j], v[j])
		}
	}
	return bmin, bmax
}

// zUpToYUp maps (x, y, z) to (x, z, -y).
var zUpToYUp = mgl64.Mat4{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// ConvertZUp rotates a Z-up mesh into the Y-up space the build works in.
func (m *Mesh) ConvertZUp() {
	m.Transform(zUpToYUp)
}

// ZUpFromRecast maps a Y-up point back to Z-up space, (x, y, z) to (x, -z, y).
func ZUpFromRecast(v common.Vec3) common.Vec3 {
	return zUpToYUp.Inv().Mul4x1(v.Vec4(1)).Vec3()
}

// ConvertToZUp undoes ConvertZUp.
func (m *Mesh) ConvertToZUp() {
	m.Transform(zUpToYUp.Inv())
}

// Scale multiplies every vertex by s.
func (m *Mesh) Scale(s float64) {
	m.Transform(mgl64.Scale3D(s, s, s))
}

// Transform applies mat to every vertex.
func (m *Mesh) Transform(mat mgl64.Mat4) {
	for i := 0; i < m.VertCount(); i++ {
		v := common.ToVec3(m.Verts[i*3:])
		common.PutVec3(m.Verts[i*3:], mgl64.TransformCoordinate(v, mat))
	}
}

// InputMesh shares the vertex and index arrays with the build input.
func (m *Mesh) InputMesh() navbuild.InputMesh {
	return navbuild.InputMesh{Verts: m.Verts, Tris: m.Tris}
}
