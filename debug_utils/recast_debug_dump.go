package debug_utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/gorustyt/navbuild/common/rw"
	"github.com/gorustyt/navbuild/recast"
)

var (
	ErrBadMagic   = errors.New("bad voodoo")
	ErrBadVersion = errors.New("bad version")
)

// DuDumpPolyMeshToObj writes the polygon mesh in world space, polygons fanned
// into triangles.
func DuDumpPolyMeshToObj(pmesh *recast.RcPolyMesh, w io.Writer) error {
	if pmesh == nil {
		return errors.New("duDumpPolyMeshToObj: poly mesh is nil")
	}
	nvp := pmesh.Nvp
	cs := pmesh.Cs
	ch := pmesh.Ch
	orig := pmesh.Bmin

	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "# Recast Navmesh\n")
	fmt.Fprint(bw, "o NavMesh\n")
	fmt.Fprint(bw, "\n")

	for i := 0; i < pmesh.Nverts; i++ {
		v := pmesh.Verts[i*3:]
		x := orig[0] + float64(v[0])*cs
		y := orig[1] + float64(v[1]+1)*ch + 0.1
		z := orig[2] + float64(v[2])*cs
		fmt.Fprintf(bw, "v %f %f %f\n", x, y, z)
	}

	fmt.Fprint(bw, "\n")

	for i := 0; i < pmesh.Npolys; i++ {
		p := pmesh.Polys[i*nvp*2:]
		for j := 2; j < nvp; j++ {
			if p[j] == recast.RC_MESH_NULL_IDX {
				break
			}
			fmt.Fprintf(bw, "f %d %d %d\n", p[0]+1, p[j-1]+1, p[j]+1)
		}
	}
	return bw.Flush()
}

// DuDumpPolyMeshDetailToObj writes the detail vertices and every sub-mesh
// triangle, offset by the sub-mesh base vertex.
func DuDumpPolyMeshDetailToObj(dmesh *recast.RcPolyMeshDetail, w io.Writer) error {
	if dmesh == nil {
		return errors.New("duDumpPolyMeshDetailToObj: detail mesh is nil")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "# Recast Navmesh\n")
	fmt.Fprint(bw, "o NavMesh\n")
	fmt.Fprint(bw, "\n")

	for i := 0; i < dmesh.Nverts; i++ {
		v := dmesh.Verts[i*3:]
		fmt.Fprintf(bw, "v %f %f %f\n", v[0], v[1], v[2])
	}

	fmt.Fprint(bw, "\n")

	for i := 0; i < dmesh.Nmeshes; i++ {
		m := dmesh.Meshes[i*4:]
		bverts := m[0]
		btris := m[2]
		ntris := m[3]
		tris := dmesh.Tris[btris*4:]
		for j := 0; j < ntris; j++ {
			fmt.Fprintf(bw, "f %d %d %d\n",
				bverts+tris[j*4+0]+1,
				bverts+tris[j*4+1]+1,
				bverts+tris[j*4+2]+1)
		}
	}
	return bw.Flush()
}

const PMESH_MAGIC = 'r'<<24 | 'c'<<16 | 'p'<<8 | 'm'

const PMESH_VERSION = 1

// DuDumpPolyMesh writes the used part of the polygon mesh in binary form.
func DuDumpPolyMesh(pmesh *recast.RcPolyMesh, w io.Writer) error {
	if pmesh == nil {
		return errors.New("duDumpPolyMesh: poly mesh is nil")
	}
	npolys := pmesh.Npolys
	b := rw.NewBinWriter()
	b.WriteInt32(PMESH_MAGIC)
	b.WriteInt32(PMESH_VERSION)
	b.WriteInt32(int32(pmesh.Nverts))
	b.WriteInt32(int32(npolys))
	b.WriteInt32(int32(pmesh.Nvp))
	b.WriteInt32(int32(pmesh.BorderSize))
	b.WriteFloat64s(pmesh.Bmin[:])
	b.WriteFloat64s(pmesh.Bmax[:])
	b.WriteFloat64(pmesh.Cs)
	b.WriteFloat64(pmesh.Ch)
	b.WriteFloat64(pmesh.MaxEdgeError)
	b.WriteUInt16s(pmesh.Verts[:pmesh.Nverts*3])
	b.WriteUInt16s(pmesh.Polys[:npolys*2*pmesh.Nvp])
	b.WriteUInt16s(pmesh.Regs[:npolys])
	b.WriteUInt16s(pmesh.Flags[:npolys])
	b.WriteUInt8s(pmesh.Areas[:npolys])
	_, err := b.WriteTo(w)
	return err
}

// DuReadPolyMesh reads one mesh written by DuDumpPolyMesh and leaves r at
// the end of it.
func DuReadPolyMesh(r io.Reader) (*recast.RcPolyMesh, error) {
	if err := readHeader(r, PMESH_MAGIC, PMESH_VERSION); err != nil {
		return nil, fmt.Errorf("duReadPolyMesh: %w", err)
	}
	b, err := readBlock(r, pmeshHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("duReadPolyMesh: %w", err)
	}
	pmesh := &recast.RcPolyMesh{}
	pmesh.Nverts = int(b.ReadInt32())
	pmesh.Npolys = int(b.ReadInt32())
	pmesh.Maxpolys = pmesh.Npolys
	pmesh.Nvp = int(b.ReadInt32())
	pmesh.BorderSize = int(b.ReadInt32())
	b.ReadFloat64s(pmesh.Bmin[:])
	b.ReadFloat64s(pmesh.Bmax[:])
	pmesh.Cs = b.ReadFloat64()
	pmesh.Ch = b.ReadFloat64()
	pmesh.MaxEdgeError = b.ReadFloat64()
	if pmesh.Nverts < 0 || pmesh.Nverts > 0xffff || pmesh.Npolys < 0 || pmesh.Npolys > 0xffff || pmesh.Nvp < 3 || pmesh.Nvp > maxNvp {
		return nil, fmt.Errorf("duReadPolyMesh: bad counts (verts %d, polys %d, nvp %d)", pmesh.Nverts, pmesh.Npolys, pmesh.Nvp)
	}

	b, err = readBlock(r, pmesh.Nverts*3*2+pmesh.Npolys*(pmesh.Nvp*2*2+2+2+1))
	if err != nil {
		return nil, fmt.Errorf("duReadPolyMesh: %w", err)
	}
	pmesh.Verts = make([]int, pmesh.Nverts*3)
	pmesh.Polys = make([]int, pmesh.Npolys*2*pmesh.Nvp)
	pmesh.Regs = make([]int, pmesh.Npolys)
	pmesh.Flags = make([]int, pmesh.Npolys)
	pmesh.Areas = make([]int, pmesh.Npolys)
	b.ReadUInt16s(pmesh.Verts)
	b.ReadUInt16s(pmesh.Polys)
	b.ReadUInt16s(pmesh.Regs)
	b.ReadUInt16s(pmesh.Flags)
	b.ReadUInt8s(pmesh.Areas)
	return pmesh, nil
}

const DMESH_MAGIC = 'r'<<24 | 'c'<<16 | 'd'<<8 | 'm'

const DMESH_VERSION = 1

// DuDumpPolyMeshDetail writes the detail mesh in binary form.
func DuDumpPolyMeshDetail(dmesh *recast.RcPolyMeshDetail, w io.Writer) error {
	if dmesh == nil {
		return errors.New("duDumpPolyMeshDetail: detail mesh is nil")
	}
	b := rw.NewBinWriter()
	b.WriteInt32(DMESH_MAGIC)
	b.WriteInt32(DMESH_VERSION)
	b.WriteInt32(int32(dmesh.Nmeshes))
	b.WriteInt32(int32(dmesh.Nverts))
	b.WriteInt32(int32(dmesh.Ntris))
	b.WriteInt32s(dmesh.Meshes[:dmesh.Nmeshes*4])
	b.WriteFloat64s(dmesh.Verts[:dmesh.Nverts*3])
	b.WriteUInt8s(dmesh.Tris[:dmesh.Ntris*4])
	_, err := b.WriteTo(w)
	return err
}

// DuReadPolyMeshDetail reads one mesh written by DuDumpPolyMeshDetail and
// leaves r at the end of it.
func DuReadPolyMeshDetail(r io.Reader) (*recast.RcPolyMeshDetail, error) {
	if err := readHeader(r, DMESH_MAGIC, DMESH_VERSION); err != nil {
		return nil, fmt.Errorf("duReadPolyMeshDetail: %w", err)
	}
	b, err := readBlock(r, dmeshHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("duReadPolyMeshDetail: %w", err)
	}
	dmesh := &recast.RcPolyMeshDetail{}
	dmesh.Nmeshes = int(b.ReadInt32())
	dmesh.Nverts = int(b.ReadInt32())
	dmesh.Ntris = int(b.ReadInt32())
	if dmesh.Nmeshes < 0 || dmesh.Nverts < 0 || dmesh.Ntris < 0 || dmesh.Nmeshes > maxDetailCount || dmesh.Nverts > maxDetailCount || dmesh.Ntris > maxDetailCount {
		return nil, fmt.Errorf("duReadPolyMeshDetail: bad counts (meshes %d, verts %d, tris %d)", dmesh.Nmeshes, dmesh.Nverts, dmesh.Ntris)
	}

	b, err = readBlock(r, dmesh.Nmeshes*4*4+dmesh.Nverts*3*8+dmesh.Ntris*4)
	if err != nil {
		return nil, fmt.Errorf("duReadPolyMeshDetail: %w", err)
	}
	dmesh.Meshes = make([]int, dmesh.Nmeshes*4)
	dmesh.Verts = make([]float64, dmesh.Nverts*3)
	dmesh.Tris = make([]int, dmesh.Ntris*4)
	b.ReadInt32s(dmesh.Meshes)
	b.ReadFloat64s(dmesh.Verts)
	b.ReadUInt8s(dmesh.Tris)
	return dmesh, nil
}

const (
	pmeshHeaderSize = 4*4 + 9*8
	dmeshHeaderSize = 3 * 4
	maxDetailCount  = 1 << 24
	maxNvp          = 32
)

func readHeader(r io.Reader, magic, version int32) error {
	b, err := readBlock(r, 8)
	if err != nil {
		return err
	}
	gotMagic := b.ReadInt32()
	gotVersion := b.ReadInt32()
	if gotMagic != magic {
		return ErrBadMagic
	}
	if gotVersion != version {
		return fmt.Errorf("%w %d, want %d", ErrBadVersion, gotVersion, version)
	}
	return nil
}

// readBlock reads exactly n bytes from r.
func readBlock(r io.Reader, n int) (*rw.ReaderWriter, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes", rw.ErrShortBuffer, n)
		}
		return nil, err
	}
	return rw.NewBinReader(data), nil
}
