package common

import "github.com/go-gl/mathgl/mgl64"

type Vec3 = mgl64.Vec3

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type SignedIndex interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

func GetVert3[T any, T1 SignedIndex](verts []T, index T1) []T {
	return verts[index*3 : index*3+3]
}

func GetVert4[T any, T1 SignedIndex](verts []T, index T1) []T {
	return verts[index*4 : index*4+4]
}

// ToVec3 reads a packed (x, y, z) triple.
func ToVec3(v []float64) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// PutVec3 writes v into a packed (x, y, z) triple.
func PutVec3(dst []float64, v Vec3) {
	dst[0], dst[1], dst[2] = v[0], v[1], v[2]
}
