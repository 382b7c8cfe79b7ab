package navbuild

import (
	"github.com/gorustyt/navbuild/recast"
)

// Artifact is an opaque handle to a transient stage result.
// Release drops the data it owns and may be called more than once.
type Artifact interface {
	Release()
}

// Toolkit is the geometry collaborator the Builder drives, one method per stage.
// Methods returning an artifact together with false still hand over whatever
// they allocated, so the caller can release it.
type Toolkit interface {
	GridSizer
	CalcBounds(verts []float64) (bmin, bmax [3]float64)

	CreateHeightfield(ctx *recast.RcContext, p Params) (Artifact, bool)
	RasterizeTriangles(ctx *recast.RcContext, hf Artifact, mesh InputMesh, p Params, flagMergeThreshold int) bool
	FilterLowHangingWalkableObstacles(ctx *recast.RcContext, hf Artifact, p Params)
	FilterLedgeSpans(ctx *recast.RcContext, hf Artifact, p Params)
	FilterWalkableLowHeightSpans(ctx *recast.RcContext, hf Artifact, p Params)
	BuildCompactHeightfield(ctx *recast.RcContext, hf Artifact, p Params) (Artifact, bool)

	ErodeWalkableArea(ctx *recast.RcContext, chf Artifact, p Params) bool
	MedianFilterWalkableArea(ctx *recast.RcContext, chf Artifact) bool
	MarkConvexPolyArea(ctx *recast.RcContext, chf Artifact, verts []float64, minY, maxY float64, area int)
	MarkBoxArea(ctx *recast.RcContext, chf Artifact, bmin, bmax []float64, area int)
	MarkCylinderArea(ctx *recast.RcContext, chf Artifact, center []float64, radius, height float64, area int)

	BuildDistanceField(ctx *recast.RcContext, chf Artifact) bool
	BuildRegions(ctx *recast.RcContext, chf Artifact, p Params) bool
	BuildRegionsMonotone(ctx *recast.RcContext, chf Artifact, p Params) bool
	BuildLayerRegions(ctx *recast.RcContext, chf Artifact, p Params) bool

	BuildContours(ctx *recast.RcContext, chf Artifact, p Params) (Artifact, bool)
	BuildPolyMesh(ctx *recast.RcContext, cset Artifact, p Params) (*recast.RcPolyMesh, bool)
	BuildPolyMeshDetail(ctx *recast.RcContext, pmesh *recast.RcPolyMesh, chf Artifact, p Params) (*recast.RcPolyMeshDetail, bool)
}

// RecastToolkit runs every stage with the recast package.
type RecastToolkit struct{}

var _ Toolkit = RecastToolkit{}

func heightfieldOf(ctx *recast.RcContext, a Artifact) (*recast.RcHeightfield, bool) {
	hf, ok := a.(*recast.RcHeightfield)
	if !ok || hf == nil {
		ctx.Errorf("navbuild: artifact %T is not a heightfield", a)
		return nil, false
	}
	return hf, true
}

func compactOf(ctx *recast.RcContext, a Artifact) (*recast.RcCompactHeightfield, bool) {
	chf, ok := a.(*recast.RcCompactHeightfield)
	if !ok || chf == nil {
		ctx.Errorf("navbuild: artifact %T is not a compact heightfield", a)
		return nil, false
	}
	return chf, true
}

func contoursOf(ctx *recast.RcContext, a Artifact) (*recast.RcContourSet, bool) {
	cset, ok := a.(*recast.RcContourSet)
	if !ok || cset == nil {
		ctx.Errorf("navbuild: artifact %T is not a contour set", a)
		return nil, false
	}
	return cset, true
}

func (RecastToolkit) CalcBounds(verts []float64) (bmin, bmax [3]float64) {
	return recast.RcCalcBounds(verts, len(verts)/3)
}

func (RecastToolkit) CalcGridSize(bmin, bmax [3]float64, cellSize float64) (width, height int) {
	return recast.RcCalcGridSize(bmin, bmax, cellSize)
}

func (RecastToolkit) CreateHeightfield(ctx *recast.RcContext, p Params) (Artifact, bool) {
	hf := &recast.RcHeightfield{}
	ok := recast.RcCreateHeightfield(ctx, hf, p.Width, p.Height, p.Bmin, p.Bmax, p.CellSize, p.CellHeight)
	return hf, ok
}

// RasterizeTriangles classifies the triangles by slope and rasterizes all of them.
func (RecastToolkit) RasterizeTriangles(ctx *recast.RcContext, a Artifact, mesh InputMesh, p Params, flagMergeThreshold int) bool {
	hf, ok := heightfieldOf(ctx, a)
	if !ok {
		return false
	}
	ntris := mesh.NumTris()
	areas := make([]int, ntris)
	recast.RcMarkWalkableTriangles(ctx, p.WalkableSlopeAngle, mesh.Verts, mesh.Tris, ntris, areas)
	return recast.RcRasterizeTriangles(ctx, mesh.Verts, mesh.Tris, areas, ntris, hf, flagMergeThreshold)
}

func (RecastToolkit) FilterLowHangingWalkableObstacles(ctx *recast.RcContext, a Artifact, p Params) {
	if hf, ok := heightfieldOf(ctx, a); ok {
		recast.RcFilterLowHangingWalkableObstacles(ctx, p.WalkableClimb, hf)
	}
}

func (RecastToolkit) FilterLedgeSpans(ctx *recast.RcContext, a Artifact, p Params) {
	if hf, ok := heightfieldOf(ctx, a); ok {
		recast.RcFilterLedgeSpans(ctx, p.WalkableHeight, p.WalkableClimb, hf)
	}
}

func (RecastToolkit) FilterWalkableLowHeightSpans(ctx *recast.RcContext, a Artifact, p Params) {
	if hf, ok := heightfieldOf(ctx, a); ok {
		recast.RcFilterWalkableLowHeightSpans(ctx, p.WalkableHeight, hf)
	}
}

func (RecastToolkit) BuildCompactHeightfield(ctx *recast.RcContext, a Artifact, p Params) (Artifact, bool) {
	hf, ok := heightfieldOf(ctx, a)
	if !ok {
		return nil, false
	}
	chf := &recast.RcCompactHeightfield{}
	ok = recast.RcBuildCompactHeightfield(ctx, p.WalkableHeight, p.WalkableClimb, hf, chf)
	return chf, ok
}

func (RecastToolkit) ErodeWalkableArea(ctx *recast.RcContext, a Artifact, p Params) bool {
	chf, ok := compactOf(ctx, a)
	return ok && recast.RcErodeWalkableArea(ctx, p.WalkableRadius, chf)
}

func (RecastToolkit) MedianFilterWalkableArea(ctx *recast.RcContext, a Artifact) bool {
	chf, ok := compactOf(ctx, a)
	return ok && recast.RcMedianFilterWalkableArea(ctx, chf)
}

func (RecastToolkit) MarkConvexPolyArea(ctx *recast.RcContext, a Artifact, verts []float64, minY, maxY float64, area int) {
	if chf, ok := compactOf(ctx, a); ok {
		recast.RcMarkConvexPolyArea(ctx, verts, len(verts)/3, minY, maxY, area, chf)
	}
}

func (RecastToolkit) MarkBoxArea(ctx *recast.RcContext, a Artifact, bmin, bmax []float64, area int) {
	if chf, ok := compactOf(ctx, a); ok {
		recast.RcMarkBoxArea(ctx, bmin, bmax, area, chf)
	}
}

func (RecastToolkit) MarkCylinderArea(ctx *recast.RcContext, a Artifact, center []float64, radius, height float64, area int) {
	if chf, ok := compactOf(ctx, a); ok {
		recast.RcMarkCylinderArea(ctx, center, radius, height, area, chf)
	}
}

func (RecastToolkit) BuildDistanceField(ctx *recast.RcContext, a Artifact) bool {
	chf, ok := compactOf(ctx, a)
	return ok && recast.RcBuildDistanceField(ctx, chf)
}

func (RecastToolkit) BuildRegions(ctx *recast.RcContext, a Artifact, p Params) bool {
	chf, ok := compactOf(ctx, a)
	return ok && recast.RcBuildRegions(ctx, chf, borderSize, p.MinRegionArea, p.MergeRegionArea)
}

func (RecastToolkit) BuildRegionsMonotone(ctx *recast.RcContext, a Artifact, p Params) bool {
	chf, ok := compactOf(ctx, a)
	return ok && recast.RcBuildRegionsMonotone(ctx, chf, borderSize, p.MinRegionArea, p.MergeRegionArea)
}

func (RecastToolkit) BuildLayerRegions(ctx *recast.RcContext, a Artifact, p Params) bool {
	chf, ok := compactOf(ctx, a)
	return ok && recast.RcBuildLayerRegions(ctx, chf, borderSize, p.MinRegionArea)
}

func (RecastToolkit) BuildContours(ctx *recast.RcContext, a Artifact, p Params) (Artifact, bool) {
	chf, ok := compactOf(ctx, a)
	if !ok {
		return nil, false
	}
	cset := &recast.RcContourSet{}
	ok = recast.RcBuildContours(ctx, chf, p.MaxSimplificationError, p.MaxEdgeLen, cset, recast.RC_CONTOUR_TESS_WALL_EDGES)
	return cset, ok
}

func (RecastToolkit) BuildPolyMesh(ctx *recast.RcContext, a Artifact, p Params) (*recast.RcPolyMesh, bool) {
	cset, ok := contoursOf(ctx, a)
	if !ok {
		return nil, false
	}
	pmesh := &recast.RcPolyMesh{}
	ok = recast.RcBuildPolyMesh(ctx, cset, p.MaxVertsPerPoly, pmesh)
	return pmesh, ok
}

func (RecastToolkit) BuildPolyMeshDetail(ctx *recast.RcContext, pmesh *recast.RcPolyMesh, a Artifact, p Params) (*recast.RcPolyMeshDetail, bool) {
	chf, ok := compactOf(ctx, a)
	if !ok || pmesh == nil {
		return nil, false
	}
	dmesh := &recast.RcPolyMeshDetail{}
	ok = recast.RcBuildPolyMeshDetail(ctx, pmesh, chf, p.DetailSampleDist, p.DetailSampleMaxError, dmesh)
	return dmesh, ok
}
