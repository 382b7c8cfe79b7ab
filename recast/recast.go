package recast

import (
	"math"

	"github.com/gorustyt/navbuild/common"
)

// / The number of spans allocated per span spool.
const RC_SPANS_PER_POOL = 2048

// / Defines the number of bits allocated to rcSpan::smin and rcSpan::smax.
const RC_SPAN_HEIGHT_BITS = 13

// / Defines the maximum value for rcSpan::smin and rcSpan::smax.
const RC_SPAN_MAX_HEIGHT = (1 << RC_SPAN_HEIGHT_BITS) - 1

// / The value returned by #rcGetCon if the specified direction is not connected
// / to another span. (Has no neighbor.)
const RC_NOT_CONNECTED = 0x3f

// / Represents the null area.
// / When a data element is given this value it is considered to no longer be
// / assigned to a usable area.  (E.g. It is unwalkable.)
const RC_NULL_AREA = 0

// / The default area id used to indicate a walkable polygon.
// / This is also the maximum allowed area id, and the only non-null area id
// / recognized by some steps in the build process.
const RC_WALKABLE_AREA = 63

// / Heightfield border flag.
// / If a heightfield region ID has this bit set, then the region is a border
// / region and its spans are considered un-walkable.
const RC_BORDER_REG = 0x8000

// / Polygon touches multiple regions.
// / If a polygon has this region ID it was merged with or created
// / from polygons of different regions during the polymesh
// / build step that removes redundant border vertices.
const RC_MULTIPLE_REGS = 0

// / Border vertex flag.
// / If a region ID has this bit set, then the associated element lies on
// / a tile border.
const RC_BORDER_VERTEX = 0x10000

// / Area border flag.
// / If a region ID has this bit set, then the associated element lies on
// / the border of an area.
const RC_AREA_BORDER = 0x20000

// / Applied to the region id field of contour vertices in order to extract the region id.
const RC_CONTOUR_REG_MASK = 0xffff

// / An value which indicates an invalid index within a mesh.
const RC_MESH_NULL_IDX = 0xffff

// / Contour build flags.
const (
	RC_CONTOUR_TESS_WALL_EDGES = 0x01 ///< Tessellate solid (impassable) edges during contour simplification.
	RC_CONTOUR_TESS_AREA_EDGES = 0x02 ///< Tessellate edges between areas during contour simplification.
)

// / Specifies a configuration to use when performing Recast builds.
type RcConfig struct {
	/// The width of the field along the x-axis. [Limit: >= 0] [Units: vx]
	Width int

	/// The height of the field along the z-axis. [Limit: >= 0] [Units: vx]
	Height int

	/// The size of the non-navigable border around the heightfield. [Limit: >=0] [Units: vx]
	BorderSize int

	/// The xz-plane cell size to use for fields. [Limit: > 0] [Units: wu]
	Cs float64

	/// The y-axis cell size to use for fields. [Limit: > 0] [Units: wu]
	Ch float64

	/// The minimum bounds of the field's AABB. [(x, y, z)] [Units: wu]
	Bmin [3]float64

	/// The maximum bounds of the field's AABB. [(x, y, z)] [Units: wu]
	Bmax [3]float64

	/// The maximum slope that is considered walkable. [Limits: 0 <= value < 90] [Units: Degrees]
	WalkableSlopeAngle float64

	/// Minimum floor to 'ceiling' height that will still allow the floor area to
	/// be considered walkable. [Limit: >= 3] [Units: vx]
	WalkableHeight int

	/// Maximum ledge height that is considered to still be traversable. [Limit: >=0] [Units: vx]
	WalkableClimb int

	/// The distance to erode/shrink the walkable area of the heightfield away from
	/// obstructions.  [Limit: >=0] [Units: vx]
	WalkableRadius int

	/// The maximum allowed length for contour edges along the border of the mesh. [Limit: >=0] [Units: vx]
	MaxEdgeLen int

	/// The maximum distance a simplified contour's border edges should deviate
	/// the original raw contour. [Limit: >=0] [Units: vx]
	MaxSimplificationError float64

	/// The minimum number of cells allowed to form isolated island areas. [Limit: >=0] [Units: vx]
	MinRegionArea int

	/// Any regions with a span count smaller than this value will, if possible,
	/// be merged with larger regions. [Limit: >=0] [Units: vx]
	MergeRegionArea int

	/// The maximum number of vertices allowed for polygons generated during the
	/// contour to polygon conversion process. [Limit: >= 3]
	MaxVertsPerPoly int

	/// Sets the sampling distance to use when generating the detail mesh.
	/// (For height detail only.) [Limits: 0 or >= 0.9] [Units: wu]
	DetailSampleDist float64

	/// The maximum distance the detail mesh surface should deviate from heightfield
	/// data. (For height detail only.) [Limit: >=0] [Units: wu]
	DetailSampleMaxError float64
}

// / Represents a span in a heightfield.
type RcSpan struct {
	Smin int     ///< The lower limit of the span. [Limit: < #smax]
	Smax int     ///< The upper limit of the span. [Limit: <= #RC_SPAN_MAX_HEIGHT]
	Area int     ///< The area id assigned to the span.
	Next *RcSpan ///< The next span higher up in column.
}

// / A memory pool used for quick allocation of spans within a heightfield.
type RcSpanPool struct {
	next  *RcSpanPool               ///< The next span pool.
	items [RC_SPANS_PER_POOL]RcSpan ///< Array of spans in the pool.
}

// / A dynamic heightfield representing obstructed space.
type RcHeightfield struct {
	Width    int        ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height   int        ///< The height of the heightfield. (Along the z-axis in cell units.)
	Bmin     [3]float64 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax     [3]float64 ///< The maximum bounds in world space. [(x, y, z)]
	Cs       float64    ///< The size of each cell. (On the xz-plane.)
	Ch       float64    ///< The height of each cell. (The minimum increment along the y-axis.)
	Spans    []*RcSpan  ///< Heightfield of spans (width*height).
	pools    *RcSpanPool
	freelist *RcSpan
}

// Release drops the span columns and the span pools.
func (hf *RcHeightfield) Release() {
	if hf == nil {
		return
	}
	hf.Spans = nil
	hf.pools = nil
	hf.freelist = nil
}

// / Provides information on the content of a cell column in a compact heightfield.
type RcCompactCell struct {
	Index int ///< Index to the first span in the column.
	Count int ///< Number of spans in the column.
}

// / Represents a span of unobstructed space within a compact heightfield.
type RcCompactSpan struct {
	Y   int ///< The lower extent of the span. (Measured from the heightfield's base.)
	Reg int ///< The id of the region the span belongs to. (Or zero if not in a region.)
	Con int ///< Packed neighbor connection data.
	H   int ///< The height of the span.  (Measured from #y.)
}

// / A compact, static heightfield representing unobstructed space.
type RcCompactHeightfield struct {
	Width          int             ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height         int             ///< The height of the heightfield. (Along the z-axis in cell units.)
	SpanCount      int             ///< The number of spans in the heightfield.
	WalkableHeight int             ///< The walkable height used during the build of the field.
	WalkableClimb  int             ///< The walkable climb used during the build of the field.
	BorderSize     int             ///< The AABB border size used during the build of the field.
	MaxDistance    int             ///< The maximum distance value of any span within the field.
	MaxRegions     int             ///< The maximum region id of any span within the field.
	Bmin           [3]float64      ///< The minimum bounds in world space. [(x, y, z)]
	Bmax           [3]float64      ///< The maximum bounds in world space. [(x, y, z)]
	Cs             float64         ///< The size of each cell. (On the xz-plane.)
	Ch             float64         ///< The height of each cell. (The minimum increment along the y-axis.)
	Cells          []RcCompactCell ///< Array of cells. [Size: #width*#height]
	Spans          []RcCompactSpan ///< Array of spans. [Size: #spanCount]
	Dist           []int           ///< Array containing border distance data. [Size: #spanCount]
	Areas          []int           ///< Array containing area id data. [Size: #spanCount]
}

// Release drops the cells, spans and per-span data.
func (chf *RcCompactHeightfield) Release() {
	if chf == nil {
		return
	}
	chf.Cells = nil
	chf.Spans = nil
	chf.Dist = nil
	chf.Areas = nil
	chf.SpanCount = 0
}

// / Represents a simple, non-overlapping contour in field space.
type RcContour struct {
	Verts   []int ///< Simplified contour vertex and connection data. [Size: 4 * #nverts]
	Nverts  int   ///< The number of vertices in the simplified contour.
	Rverts  []int ///< Raw contour vertex and connection data. [Size: 4 * #nrverts]
	Nrverts int   ///< The number of vertices in the raw contour.
	Reg     int   ///< The region id of the contour.
	Area    int   ///< The area id of the contour.
}

// / Represents a group of related contours.
type RcContourSet struct {
	Conts      []*RcContour ///< An array of the contours in the set. [Size: #nconts]
	Nconts     int          ///< The number of contours in the set.
	Bmin       [3]float64   ///< The minimum bounds in world space. [(x, y, z)]
	Bmax       [3]float64   ///< The maximum bounds in world space. [(x, y, z)]
	Cs         float64      ///< The size of each cell. (On the xz-plane.)
	Ch         float64      ///< The height of each cell. (The minimum increment along the y-axis.)
	Width      int          ///< The width of the set. (Along the x-axis in cell units.)
	Height     int          ///< The height of the set. (Along the z-axis in cell units.)
	BorderSize int          ///< The AABB border size used to generate the source data from which the contours were derived.
	MaxError   float64      ///< The max edge error that this contour set was simplified with.
}

// Release drops all contours of the set.
func (cset *RcContourSet) Release() {
	if cset == nil {
		return
	}
	cset.Conts = nil
	cset.Nconts = 0
}

// / Represents a polygon mesh suitable for use in building a navigation mesh.
type RcPolyMesh struct {
	Verts        []int      ///< The mesh vertices. [Form: (x, y, z) * #nverts]
	Polys        []int      ///< Polygon and neighbor data. [Length: #maxpolys * 2 * #nvp]
	Regs         []int      ///< The region id assigned to each polygon. [Length: #maxpolys]
	Flags        []int      ///< The user defined flags for each polygon. [Length: #maxpolys]
	Areas        []int      ///< The area id assigned to each polygon. [Length: #maxpolys]
	Nverts       int        ///< The number of vertices.
	Npolys       int        ///< The number of polygons.
	Maxpolys     int        ///< The number of allocated polygons.
	Nvp          int        ///< The maximum number of vertices per polygon.
	Bmin         [3]float64 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax         [3]float64 ///< The maximum bounds in world space. [(x, y, z)]
	Cs           float64    ///< The size of each cell. (On the xz-plane.)
	Ch           float64    ///< The height of each cell. (The minimum increment along the y-axis.)
	BorderSize   int        ///< The AABB border size used to generate the source data from which the mesh was derived.
	MaxEdgeError float64    ///< The max error of the polygon edges in the mesh.
}

// Release drops the mesh arrays and zeroes the counts.
func (pmesh *RcPolyMesh) Release() {
	if pmesh == nil {
		return
	}
	pmesh.Verts = nil
	pmesh.Polys = nil
	pmesh.Regs = nil
	pmesh.Flags = nil
	pmesh.Areas = nil
	pmesh.Nverts = 0
	pmesh.Npolys = 0
	pmesh.Maxpolys = 0
}

// / Contains triangle meshes that represent detailed height data associated
// / with the polygons in its associated polygon mesh object.
type RcPolyMeshDetail struct {
	Meshes  []int     ///< The sub-mesh data. [Size: 4*#nmeshes]
	Verts   []float64 ///< The mesh vertices. [Size: 3*#nverts]
	Tris    []int     ///< The mesh triangles. [Size: 4*#ntris]
	Nmeshes int       ///< The number of sub-meshes defined by #meshes.
	Nverts  int       ///< The number of vertices in #verts.
	Ntris   int       ///< The number of triangles in #tris.
}

// Release drops the mesh arrays and zeroes the counts.
func (dmesh *RcPolyMeshDetail) Release() {
	if dmesh == nil {
		return
	}
	dmesh.Meshes = nil
	dmesh.Verts = nil
	dmesh.Tris = nil
	dmesh.Nmeshes = 0
	dmesh.Nverts = 0
	dmesh.Ntris = 0
}

// / Sets the neighbor connection data for the specified direction.
func rcSetCon(span *RcCompactSpan, direction, neighborIndex int) {
	shift := uint(direction * 6)
	span.Con = (span.Con &^ (0x3f << shift)) | ((neighborIndex & 0x3f) << shift)
}

// / Gets neighbor connection data for the specified direction.
// / @return The neighbor connection data for the specified direction, or #RC_NOT_CONNECTED if there is no connection.
func rcGetCon(span *RcCompactSpan, direction int) int {
	shift := uint(direction * 6)
	return (span.Con >> shift) & 0x3f
}

// RcCalcBounds calculates the axis aligned bounding box of the packed vertices.
func RcCalcBounds(verts []float64, numVerts int) (minBounds, maxBounds [3]float64) {
	copy(minBounds[:], verts[:3])
	copy(maxBounds[:], verts[:3])
	for i := 1; i < numVerts; i++ {
		v := common.GetVert3(verts, i)
		common.Vmin(minBounds[:], v)
		common.Vmax(maxBounds[:], v)
	}
	return minBounds, maxBounds
}

// RcCalcGridSize returns the grid size along the x and z axes.
func RcCalcGridSize(minBounds, maxBounds [3]float64, cellSize float64) (sizeX, sizeZ int) {
	sizeX = int((maxBounds[0]-minBounds[0])/cellSize + 0.5)
	sizeZ = int((maxBounds[2]-minBounds[2])/cellSize + 0.5)
	return sizeX, sizeZ
}

// / Initializes a new heightfield.
func RcCreateHeightfield(ctx *RcContext, heightfield *RcHeightfield, sizeX, sizeZ int,
	minBounds, maxBounds [3]float64, cellSize, cellHeight float64) bool {
	if sizeX <= 0 || sizeZ <= 0 || cellSize <= 0 || cellHeight <= 0 {
		ctx.Errorf("rcCreateHeightfield: Invalid grid %d x %d (cs=%f, ch=%f)", sizeX, sizeZ, cellSize, cellHeight)
		return false
	}
	heightfield.Width = sizeX
	heightfield.Height = sizeZ
	heightfield.Bmin = minBounds
	heightfield.Bmax = maxBounds
	heightfield.Cs = cellSize
	heightfield.Ch = cellHeight
	heightfield.Spans = make([]*RcSpan, sizeX*sizeZ)
	heightfield.pools = nil
	heightfield.freelist = nil
	return true
}

func calcTriNormal(v0, v1, v2 []float64) [3]float64 {
	var e0, e1, faceNormal [3]float64
	common.Vsub(e0[:], v1, v0)
	common.Vsub(e1[:], v2, v0)
	common.Vcross(faceNormal[:], e0[:], e1[:])
	common.Vnormalize(faceNormal[:])
	return faceNormal
}

// / Sets the area id of all triangles with a slope below the specified value
// / to #RC_WALKABLE_AREA.
// / @param[in]		walkableSlopeAngle	The maximum slope that is considered walkable. [Limits: 0 <= value < 90] [Units: Degrees]
func RcMarkWalkableTriangles(ctx *RcContext, walkableSlopeAngle float64,
	verts []float64, tris []int, numTris int, triAreaIDs []int) {
	walkableThr := math.Cos(walkableSlopeAngle / 180.0 * math.Pi)
	for i := 0; i < numTris; i++ {
		tri := common.GetVert3(tris, i)
		norm := calcTriNormal(common.GetVert3(verts, tri[0]), common.GetVert3(verts, tri[1]), common.GetVert3(verts, tri[2]))
		// Check if the face is walkable.
		if norm[1] > walkableThr {
			triAreaIDs[i] = RC_WALKABLE_AREA
		}
	}
}

// / Returns the number of spans contained in the specified heightfield.
// / Only walkable spans are counted.
func RcGetHeightFieldSpanCount(ctx *RcContext, heightfield *RcHeightfield) int {
	numCols := heightfield.Width * heightfield.Height
	spanCount := 0
	for columnIndex := 0; columnIndex < numCols; columnIndex++ {
		for span := heightfield.Spans[columnIndex]; span != nil; span = span.Next {
			if span.Area != RC_NULL_AREA {
				spanCount++
			}
		}
	}
	return spanCount
}

// / Builds a compact heightfield representing open space, from a heightfield representing solid space.
func RcBuildCompactHeightfield(ctx *RcContext, walkableHeight, walkableClimb int,
	heightfield *RcHeightfield, compactHeightfield *RcCompactHeightfield) bool {
	ctx.StartTimer(RC_TIMER_BUILD_COMPACTHEIGHTFIELD)
	defer ctx.StopTimer(RC_TIMER_BUILD_COMPACTHEIGHTFIELD)

	xSize := heightfield.Width
	zSize := heightfield.Height
	spanCount := RcGetHeightFieldSpanCount(ctx, heightfield)

	// Fill in header.
	compactHeightfield.Width = xSize
	compactHeightfield.Height = zSize
	compactHeightfield.SpanCount = spanCount
	compactHeightfield.WalkableHeight = walkableHeight
	compactHeightfield.WalkableClimb = walkableClimb
	compactHeightfield.MaxRegions = 0
	compactHeightfield.Bmin = heightfield.Bmin
	compactHeightfield.Bmax = heightfield.Bmax
	compactHeightfield.Bmax[1] += float64(walkableHeight) * heightfield.Ch
	compactHeightfield.Cs = heightfield.Cs
	compactHeightfield.Ch = heightfield.Ch
	compactHeightfield.Cells = make([]RcCompactCell, xSize*zSize)
	compactHeightfield.Spans = make([]RcCompactSpan, spanCount)
	compactHeightfield.Areas = make([]int, spanCount)
	const MAX_HEIGHT = 0xffff

	// Fill in cells and spans.
	currentCellIndex := 0
	numColumns := xSize * zSize
	for columnIndex := 0; columnIndex < numColumns; columnIndex++ {
		span := heightfield.Spans[columnIndex]

		// If there are no spans at this cell, just leave the data to index=0, count=0.
		if span == nil {
			continue
		}

		cell := &compactHeightfield.Cells[columnIndex]
		cell.Index = currentCellIndex
		cell.Count = 0

		for ; span != nil; span = span.Next {
			if span.Area != RC_NULL_AREA {
				bot := span.Smax
				top := MAX_HEIGHT
				if span.Next != nil {
					top = span.Next.Smin
				}
				compactHeightfield.Spans[currentCellIndex].Y = common.Clamp(bot, 0, 0xffff)
				compactHeightfield.Spans[currentCellIndex].H = common.Clamp(top-bot, 0, 0xff)
				compactHeightfield.Areas[currentCellIndex] = span.Area
				currentCellIndex++
				cell.Count++
			}
		}
	}

	// Find neighbour connections.
	const MAX_LAYERS = RC_NOT_CONNECTED - 1
	maxLayerIndex := 0
	zStride := xSize // for readability
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			cell := compactHeightfield.Cells[x+z*zStride]
			for i, ni := cell.Index, cell.Index+cell.Count; i < ni; i++ {
				span := &compactHeightfield.Spans[i]

				for dir := 0; dir < 4; dir++ {
					rcSetCon(span, dir, RC_NOT_CONNECTED)
					neighborX := x + common.GetDirOffsetX(dir)
					neighborZ := z + common.GetDirOffsetY(dir)
					// First check that the neighbour cell is in bounds.
					if neighborX < 0 || neighborZ < 0 || neighborX >= xSize || neighborZ >= zSize {
						continue
					}

					// Iterate over all neighbour spans and check if any of the is
					// accessible from current cell.
					neighborCell := compactHeightfield.Cells[neighborX+neighborZ*zStride]
					for k, nk := neighborCell.Index, neighborCell.Index+neighborCell.Count; k < nk; k++ {
						neighborSpan := &compactHeightfield.Spans[k]
						bot := max(span.Y, neighborSpan.Y)
						top := min(span.Y+span.H, neighborSpan.Y+neighborSpan.H)

						// Check that the gap between the spans is walkable,
						// and that the climb height between the gaps is not too high.
						if (top-bot) >= walkableHeight && common.Abs(neighborSpan.Y-span.Y) <= walkableClimb {
							// Mark direction as walkable.
							layerIndex := k - neighborCell.Index
							if layerIndex < 0 || layerIndex > MAX_LAYERS {
								maxLayerIndex = max(maxLayerIndex, layerIndex)
								continue
							}
							rcSetCon(span, dir, layerIndex)
							break
						}
					}
				}
			}
		}
	}

	if maxLayerIndex > MAX_LAYERS {
		ctx.Errorf("rcBuildCompactHeightfield: Heightfield has too many layers %d (max: %d)", maxLayerIndex, MAX_LAYERS)
	}

	return true
}
