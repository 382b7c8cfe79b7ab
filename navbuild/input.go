package navbuild

import (
	"errors"
	"fmt"

	"github.com/gorustyt/navbuild/recast"
)

// InputMesh is a triangle soup in Recast's Y-up space.
type InputMesh struct {
	Verts []float64 // 3 per vertex
	Tris  []int     // 3 per triangle
}

func (m InputMesh) NumVerts() int { return len(m.Verts) / 3 }
func (m InputMesh) NumTris() int  { return len(m.Tris) / 3 }

// Validate checks array shapes and that every index references a vertex.
func (m InputMesh) Validate() error {
	if len(m.Verts) == 0 {
		return errors.New("mesh has no vertices")
	}
	if len(m.Tris) == 0 {
		return errors.New("mesh has no triangles")
	}
	if len(m.Verts)%3 != 0 {
		return fmt.Errorf("vertex array length %d is not a multiple of 3", len(m.Verts))
	}
	if len(m.Tris)%3 != 0 {
		return fmt.Errorf("triangle array length %d is not a multiple of 3", len(m.Tris))
	}
	nverts := m.NumVerts()
	for i, idx := range m.Tris {
		if idx < 0 || idx >= nverts {
			return fmt.Errorf("triangle %d references vertex %d of %d", i/3, idx, nverts)
		}
	}
	return nil
}

// VolumeShape selects how an AreaVolume is read.
type VolumeShape string

const (
	ShapeConvex   VolumeShape = "convex"
	ShapeBox      VolumeShape = "box"
	ShapeCylinder VolumeShape = "cylinder"
)

// AreaVolume marks the walkable spans inside a volume with Area.
// An empty Shape is a convex volume.
type AreaVolume struct {
	Shape VolumeShape `yaml:"shape,omitempty"`
	Area  int         `yaml:"area"`

	// Convex: an xz polygon extruded from MinY to MaxY and grown by Offset.
	Verts  []float64 `yaml:"verts,omitempty"` // 3 per vertex, y ignored
	MinY   float64   `yaml:"min_y,omitempty"`
	MaxY   float64   `yaml:"max_y,omitempty"`
	Offset float64   `yaml:"offset,omitempty"`

	// Box: axis aligned from Min to Max.
	Min []float64 `yaml:"min,omitempty"`
	Max []float64 `yaml:"max,omitempty"`

	// Cylinder: vertical, standing on Center.
	Center []float64 `yaml:"center,omitempty"`
	Radius float64   `yaml:"radius,omitempty"`
	Height float64   `yaml:"height,omitempty"`
}

func (v AreaVolume) shape() VolumeShape {
	if v.Shape == "" {
		return ShapeConvex
	}
	return v.Shape
}

func (v AreaVolume) Validate() error {
	if v.Area < 0 || v.Area > 63 {
		return fmt.Errorf("area %d is out of range [0, 63]", v.Area)
	}
	switch v.shape() {
	case ShapeConvex:
		if len(v.Verts)%3 != 0 || len(v.Verts) < 9 {
			return fmt.Errorf("convex volume needs at least 3 vertices, got %d floats", len(v.Verts))
		}
		if v.MinY > v.MaxY {
			return fmt.Errorf("convex volume min y %g is above max y %g", v.MinY, v.MaxY)
		}
		if v.Offset < 0 {
			return fmt.Errorf("convex volume offset %g is negative", v.Offset)
		}
	case ShapeBox:
		if len(v.Min) != 3 || len(v.Max) != 3 {
			return errors.New("box volume needs 3 coordinates for min and max")
		}
		for i := range 3 {
			if v.Min[i] > v.Max[i] {
				return fmt.Errorf("box volume min %v is not below max %v", v.Min, v.Max)
			}
		}
	case ShapeCylinder:
		if len(v.Center) != 3 {
			return errors.New("cylinder volume needs 3 coordinates for center")
		}
		if !(v.Radius > 0) || v.Height < 0 {
			return fmt.Errorf("cylinder volume radius %g and height %g are invalid", v.Radius, v.Height)
		}
	default:
		return fmt.Errorf("unknown volume shape %q", v.Shape)
	}
	return nil
}

// hull returns the convex polygon to mark, grown by Offset when it is set.
// The offset always grows the polygon, whichever way it winds.
func (v AreaVolume) hull() []float64 {
	n := len(v.Verts) / 3
	if v.Offset <= 0 || n < 3 {
		return v.Verts
	}
	verts := v.Verts
	if signedArea2(verts, n) < 0 {
		verts = make([]float64, 0, len(v.Verts))
		for i := n - 1; i >= 0; i-- {
			verts = append(verts, v.Verts[i*3:i*3+3]...)
		}
	}
	out := make([]float64, n*2*3)
	nout := recast.RcOffsetPoly(verts, n, v.Offset, out, n*2)
	if nout == 0 {
		return v.Verts
	}
	return out[:nout*3]
}

// signedArea2 is twice the signed xz area of a polygon.
func signedArea2(verts []float64, n int) float64 {
	area := 0.0
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		area += verts[j*3]*verts[i*3+2] - verts[i*3]*verts[j*3+2]
	}
	return area
}
