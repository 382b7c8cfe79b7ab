// Package message encodes finished navigation meshes in protobuf wire format.
//
// The layout is equivalent to this schema:
//
//	message NavMesh {
//	  PolyMesh poly_mesh = 1;
//	  PolyMeshDetail detail_mesh = 2;
//	}
//	// Arrays hold the used part only; maxpolys equals npolys.
//	message PolyMesh {
//	  repeated uint32 verts = 1;
//	  repeated uint32 polys = 2;
//	  repeated uint32 regs = 3;
//	  repeated uint32 flags = 4;
//	  repeated uint32 areas = 5;
//	  int32 nverts = 6;
//	  int32 npolys = 7;
//	  int32 maxpolys = 8;
//	  int32 nvp = 9;
//	  repeated double bmin = 10;
//	  repeated double bmax = 11;
//	  double cs = 12;
//	  double ch = 13;
//	  int32 border_size = 14;
//	  double max_edge_error = 15;
//	}
//	message PolyMeshDetail {
//	  repeated uint32 meshes = 1;
//	  repeated double verts = 2;
//	  repeated uint32 tris = 3;
//	  int32 nmeshes = 4;
//	  int32 nverts = 5;
//	  int32 ntris = 6;
//	}
package message

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/gorustyt/navbuild/recast"
)

const (
	navMeshPoly   protowire.Number = 1
	navMeshDetail protowire.Number = 2
)

const (
	polyVerts protowire.Number = iota + 1
	polyPolys
	polyRegs
	polyFlags
	polyAreas
	polyNverts
	polyNpolys
	polyMaxpolys
	polyNvp
	polyBmin
	polyBmax
	polyCs
	polyCh
	polyBorderSize
	polyMaxEdgeError
)

const (
	detailMeshes protowire.Number = iota + 1
	detailVerts
	detailTris
	detailNmeshes
	detailNverts
	detailNtris
)

// EncodeNavMesh serializes the meshes. Either mesh may be nil.
func EncodeNavMesh(pmesh *recast.RcPolyMesh, dmesh *recast.RcPolyMeshDetail) []byte {
	var b []byte
	if pmesh != nil {
		b = protowire.AppendTag(b, navMeshPoly, protowire.BytesType)
		b = protowire.AppendBytes(b, encodePolyMesh(pmesh))
	}
	if dmesh != nil {
		b = protowire.AppendTag(b, navMeshDetail, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeDetail(dmesh))
	}
	return b
}

// DecodeNavMesh parses data written by EncodeNavMesh. Absent meshes decode as nil.
func DecodeNavMesh(data []byte) (*recast.RcPolyMesh, *recast.RcPolyMeshDetail, error) {
	var pmesh *recast.RcPolyMesh
	var dmesh *recast.RcPolyMeshDetail
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case navMeshPoly, navMeshDetail:
			if typ != protowire.BytesType {
				return 0, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
			}
			msg, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			var err error
			if num == navMeshPoly {
				pmesh, err = decodePolyMesh(msg)
			} else {
				dmesh, err = decodeDetail(msg)
			}
			return n, err
		}
		return skip(num, typ, v)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("decode navmesh: %w", err)
	}
	return pmesh, dmesh, nil
}

func encodePolyMesh(pmesh *recast.RcPolyMesh) []byte {
	npolys := pmesh.Npolys
	var b []byte
	b = appendPackedInts(b, polyVerts, pmesh.Verts[:pmesh.Nverts*3])
	b = appendPackedInts(b, polyPolys, pmesh.Polys[:npolys*2*pmesh.Nvp])
	b = appendPackedInts(b, polyRegs, pmesh.Regs[:npolys])
	b = appendPackedInts(b, polyFlags, pmesh.Flags[:npolys])
	b = appendPackedInts(b, polyAreas, pmesh.Areas[:npolys])
	b = appendInt(b, polyNverts, pmesh.Nverts)
	b = appendInt(b, polyNpolys, npolys)
	b = appendInt(b, polyMaxpolys, npolys)
	b = appendInt(b, polyNvp, pmesh.Nvp)
	b = appendPackedDoubles(b, polyBmin, pmesh.Bmin[:])
	b = appendPackedDoubles(b, polyBmax, pmesh.Bmax[:])
	b = appendDouble(b, polyCs, pmesh.Cs)
	b = appendDouble(b, polyCh, pmesh.Ch)
	b = appendInt(b, polyBorderSize, pmesh.BorderSize)
	b = appendDouble(b, polyMaxEdgeError, pmesh.MaxEdgeError)
	return b
}

func decodePolyMesh(data []byte) (*recast.RcPolyMesh, error) {
	pmesh := &recast.RcPolyMesh{}
	var bmin, bmax []float64
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case polyVerts:
			return consumeInts(typ, v, &pmesh.Verts)
		case polyPolys:
			return consumeInts(typ, v, &pmesh.Polys)
		case polyRegs:
			return consumeInts(typ, v, &pmesh.Regs)
		case polyFlags:
			return consumeInts(typ, v, &pmesh.Flags)
		case polyAreas:
			return consumeInts(typ, v, &pmesh.Areas)
		case polyNverts:
			return consumeInt(typ, v, &pmesh.Nverts)
		case polyNpolys:
			return consumeInt(typ, v, &pmesh.Npolys)
		case polyMaxpolys:
			return consumeInt(typ, v, &pmesh.Maxpolys)
		case polyNvp:
			return consumeInt(typ, v, &pmesh.Nvp)
		case polyBmin:
			return consumeDoubles(typ, v, &bmin)
		case polyBmax:
			return consumeDoubles(typ, v, &bmax)
		case polyCs:
			return consumeDouble(typ, v, &pmesh.Cs)
		case polyCh:
			return consumeDouble(typ, v, &pmesh.Ch)
		case polyBorderSize:
			return consumeInt(typ, v, &pmesh.BorderSize)
		case polyMaxEdgeError:
			return consumeDouble(typ, v, &pmesh.MaxEdgeError)
		}
		return skip(num, typ, v)
	})
	if err != nil {
		return nil, fmt.Errorf("poly mesh: %w", err)
	}
	copy(pmesh.Bmin[:], bmin)
	copy(pmesh.Bmax[:], bmax)
	if len(pmesh.Verts) != pmesh.Nverts*3 {
		return nil, fmt.Errorf("poly mesh: %d vertex values for %d vertices", len(pmesh.Verts), pmesh.Nverts)
	}
	if len(pmesh.Polys) != pmesh.Npolys*pmesh.Nvp*2 {
		return nil, fmt.Errorf("poly mesh: %d polygon values for %d polygons", len(pmesh.Polys), pmesh.Npolys)
	}
	if len(pmesh.Regs) != pmesh.Npolys || len(pmesh.Areas) != pmesh.Npolys || len(pmesh.Flags) != pmesh.Npolys {
		return nil, fmt.Errorf("poly mesh: per-polygon arrays do not match %d polygons", pmesh.Npolys)
	}
	return pmesh, nil
}

func encodeDetail(dmesh *recast.RcPolyMeshDetail) []byte {
	var b []byte
	b = appendPackedInts(b, detailMeshes, dmesh.Meshes[:dmesh.Nmeshes*4])
	b = appendPackedDoubles(b, detailVerts, dmesh.Verts[:dmesh.Nverts*3])
	b = appendPackedInts(b, detailTris, dmesh.Tris[:dmesh.Ntris*4])
	b = appendInt(b, detailNmeshes, dmesh.Nmeshes)
	b = appendInt(b, detailNverts, dmesh.Nverts)
	b = appendInt(b, detailNtris, dmesh.Ntris)
	return b
}

func decodeDetail(data []byte) (*recast.RcPolyMeshDetail, error) {
	dmesh := &recast.RcPolyMeshDetail{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case detailMeshes:
			return consumeInts(typ, v, &dmesh.Meshes)
		case detailVerts:
			return consumeDoubles(typ, v, &dmesh.Verts)
		case detailTris:
			return consumeInts(typ, v, &dmesh.Tris)
		case detailNmeshes:
			return consumeInt(typ, v, &dmesh.Nmeshes)
		case detailNverts:
			return consumeInt(typ, v, &dmesh.Nverts)
		case detailNtris:
			return consumeInt(typ, v, &dmesh.Ntris)
		}
		return skip(num, typ, v)
	})
	if err != nil {
		return nil, fmt.Errorf("detail mesh: %w", err)
	}
	if len(dmesh.Meshes) != dmesh.Nmeshes*4 || len(dmesh.Verts) != dmesh.Nverts*3 || len(dmesh.Tris) != dmesh.Ntris*4 {
		return nil, fmt.Errorf("detail mesh: array lengths do not match counts")
	}
	return dmesh, nil
}

// walkFields calls fn with each field's value bytes. fn returns how many
// bytes of v it consumed.
func walkFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, v)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendPackedInts(b []byte, num protowire.Number, vs []int) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(uint32(v)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	packed := make([]byte, 0, len(vs)*8)
	for _, v := range vs {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func consumeInt(typ protowire.Type, v []byte, dst *int) (int, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("unexpected wire type %d for integer", typ)
	}
	x, n := protowire.ConsumeVarint(v)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int(int32(x))
	return n, nil
}

func consumeDouble(typ protowire.Type, v []byte, dst *float64) (int, error) {
	if typ != protowire.Fixed64Type {
		return 0, fmt.Errorf("unexpected wire type %d for double", typ)
	}
	x, n := protowire.ConsumeFixed64(v)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = math.Float64frombits(x)
	return n, nil
}

// consumeInts accepts both packed and unpacked repeated uint32 encodings.
func consumeInts(typ protowire.Type, v []byte, dst *[]int) (int, error) {
	switch typ {
	case protowire.VarintType:
		x, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		*dst = append(*dst, int(uint32(x)))
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		for len(packed) > 0 {
			x, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return 0, protowire.ParseError(m)
			}
			*dst = append(*dst, int(uint32(x)))
			packed = packed[m:]
		}
		return n, nil
	}
	return 0, fmt.Errorf("unexpected wire type %d for repeated integer", typ)
}

func consumeDoubles(typ protowire.Type, v []byte, dst *[]float64) (int, error) {
	switch typ {
	case protowire.Fixed64Type:
		x, n := protowire.ConsumeFixed64(v)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		*dst = append(*dst, math.Float64frombits(x))
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		if len(packed)%8 != 0 {
			return 0, fmt.Errorf("packed double field has %d bytes", len(packed))
		}
		for i := 0; i < len(packed); i += 8 {
			x, _ := protowire.ConsumeFixed64(packed[i:])
			*dst = append(*dst, math.Float64frombits(x))
		}
		return n, nil
	}
	return 0, fmt.Errorf("unexpected wire type %d for repeated double", typ)
}
