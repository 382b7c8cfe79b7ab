package geom

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/navbuild/common"
	"github.com/gorustyt/navbuild/navbuild"
)

const quadObj = `# a quad split by the loader
o ground
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vn 0 1 0
vt 0 0
f 1/1/1 4/4/1 3/3/1 2/2/1
`

func TestParseObj(t *testing.T) {
	m, err := ParseObj(strings.NewReader(quadObj))
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertCount())
	assert.Equal(t, 2, m.TriCount())
	assert.Equal(t, []int{0, 3, 2, 0, 2, 1}, m.Tris)
	assert.Equal(t, []float64{-1, 0, -1}, m.Verts[:3])
}

func TestParseObjRelativeIndices(t *testing.T) {
	m, err := ParseObj(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 0 1\nf -3 -2 -1\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, m.Tris)
}

func TestParseObjErrors(t *testing.T) {
	tests := []struct {
		name string
		obj  string
		msg  string
	}{
		{"short vertex", "v 1 2\n", "line 1"},
		{"bad coordinate", "v 1 2 x\n", "vertex coordinate"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 0 1\n\nf 1 2 4\n", "line 5"},
		{"bad index", "v 0 0 0\nf a b c\n", "face index"},
		{"short face", "v 0 0 0\nf 1 1\n", "face needs 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseObj(strings.NewReader(tt.obj))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadObj(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(p, []byte(quadObj), 0o644))

	m, err := LoadObj(p)
	require.NoError(t, err)
	assert.Equal(t, "quad.obj", m.Name)
	assert.Equal(t, 2, m.TriCount())

	_, err = LoadObj(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)
}

func TestWriteObjRoundTrip(t *testing.T) {
	m, err := ParseObj(strings.NewReader(quadObj))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteObj(&buf))
	back, err := ParseObj(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Verts, back.Verts)
	assert.Equal(t, m.Tris, back.Tris)
}

func TestConvertZUp(t *testing.T) {
	m := &Mesh{Verts: []float64{1, 2, 3}}
	m.ConvertZUp()
	assert.InDelta(t, 1.0, m.Verts[0], 1e-12)
	assert.InDelta(t, 3.0, m.Verts[1], 1e-12)
	assert.InDelta(t, -2.0, m.Verts[2], 1e-12)

	back := ZUpFromRecast(common.ToVec3(m.Verts))
	assert.True(t, back.ApproxEqual(mgl64.Vec3{1, 2, 3}), "inverse mapping restores %v", back)

	m.ConvertToZUp()
	assert.True(t, common.ToVec3(m.Verts).ApproxEqual(mgl64.Vec3{1, 2, 3}))
}

func TestScaleAndBounds(t *testing.T) {
	m := &Mesh{Verts: []float64{-1, 0, 2, 3, -4, 1}}
	m.Scale(2)
	bmin, bmax := m.Bounds()
	assert.Equal(t, common.Vec3{-2, -8, 2}, bmin)
	assert.Equal(t, common.Vec3{6, 0, 4}, bmax)

	empty := &Mesh{}
	bmin, bmax = empty.Bounds()
	assert.Equal(t, common.Vec3{}, bmin)
	assert.Equal(t, common.Vec3{}, bmax)
}

func TestTransform(t *testing.T) {
	m := &Mesh{Verts: []float64{1, 1, 1}}
	m.Transform(mgl64.Translate3D(1, 2, 3))
	assert.Equal(t, []float64{2, 3, 4}, m.Verts)
}

func TestInputMeshBuilds(t *testing.T) {
	m, err := ParseObj(strings.NewReader(quadObj))
	require.NoError(t, err)
	m.Scale(10)

	in := m.InputMesh()
	require.NoError(t, in.Validate())
	res, err := navbuild.Build(navbuild.DefaultConfig(), in)
	require.NoError(t, err)
	defer res.Release()
	assert.Greater(t, res.PolyMesh.Npolys, 0)
}
