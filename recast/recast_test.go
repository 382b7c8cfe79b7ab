package recast

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}

// regionCount returns the number of distinct non-border regions assigned to spans.
func regionCount(chf *RcCompactHeightfield) int {
	seen := map[int]struct{}{}
	for i := 0; i < chf.SpanCount; i++ {
		if r := chf.Spans[i].Reg; r != 0 && r&RC_BORDER_REG == 0 {
			seen[r] = struct{}{}
		}
	}
	return len(seen)
}

// flatHeightfield returns a w x h heightfield with one walkable span [0,1] per cell.
func flatHeightfield(t *testing.T, w, h int) *RcHeightfield {
	t.Helper()
	hf := &RcHeightfield{}
	bmin := [3]float64{0, 0, 0}
	bmax := [3]float64{float64(w), 10, float64(h)}
	assertTrue(t, RcCreateHeightfield(nil, hf, w, h, bmin, bmax, 1, 1), "create flat heightfield")
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			assertTrue(t, addSpan(hf, x, z, 0, 1, RC_WALKABLE_AREA, 1), "add flat span")
		}
	}
	return hf
}

func flatCompactHeightfield(t *testing.T, w, h int) *RcCompactHeightfield {
	t.Helper()
	hf := flatHeightfield(t, w, h)
	chf := &RcCompactHeightfield{}
	assertTrue(t, RcBuildCompactHeightfield(nil, 2, 1, hf, chf), "build flat compact heightfield")
	return chf
}

func countArea(chf *RcCompactHeightfield, area int) int {
	n := 0
	for i := 0; i < chf.SpanCount; i++ {
		if chf.Areas[i] == area {
			n++
		}
	}
	return n
}

func TestCalcBounds(t *testing.T) {
	verts := []float64{1, 2, 3}
	bmin, bmax := RcCalcBounds(verts, 1)
	msg := "bounds of one vector"
	for i := 0; i < 3; i++ {
		assertTrue(t, bmin[i] == verts[i], msg)
		assertTrue(t, bmax[i] == verts[i], msg)
	}

	verts = []float64{
		1, 2, 3,
		0, 2, 5,
	}
	bmin, bmax = RcCalcBounds(verts, 2)
	msg = "bounds of more than one vector"
	assertTrue(t, bmin[0] == 0, msg)
	assertTrue(t, bmin[1] == 2, msg)
	assertTrue(t, bmin[2] == 3, msg)
	assertTrue(t, bmax[0] == 1, msg)
	assertTrue(t, bmax[1] == 2, msg)
	assertTrue(t, bmax[2] == 5, msg)
}

func TestCalcGridSize(t *testing.T) {
	verts := []float64{
		1, 2, 3,
		0, 2, 6,
	}
	bmin, bmax := RcCalcBounds(verts, 2)
	width, height := RcCalcGridSize(bmin, bmax, 1.5)

	msg := "computes the size of an x & z axis grid"
	assertTrue(t, width == 1, msg)
	assertTrue(t, height == 2, msg)

	width, height = RcCalcGridSize([3]float64{-10, 0, -10}, [3]float64{10, 2, 10}, 0.3)
	assertTrue(t, width == 67, "rounds to the nearest cell count")
	assertTrue(t, height == 67, "rounds to the nearest cell count")
}

func TestCreateHeightfield(t *testing.T) {
	verts := []float64{
		1, 2, 3,
		0, 2, 6,
	}
	bmin, bmax := RcCalcBounds(verts, 2)
	cellSize := 1.5
	cellHeight := 2.0
	width, height := RcCalcGridSize(bmin, bmax, cellSize)

	heightfield := &RcHeightfield{}
	result := RcCreateHeightfield(nil, heightfield, width, height, bmin, bmax, cellSize, cellHeight)
	msg := "create a heightfield"
	assertTrue(t, result, msg)

	assertTrue(t, heightfield.Width == width, msg)
	assertTrue(t, heightfield.Height == height, msg)
	assertTrue(t, heightfield.Bmin == bmin, msg)
	assertTrue(t, heightfield.Bmax == bmax, msg)
	assertTrue(t, heightfield.Cs == cellSize, msg)
	assertTrue(t, heightfield.Ch == cellHeight, msg)

	assertTrue(t, len(heightfield.Spans) == width*height, msg)
	assertTrue(t, heightfield.pools == nil, msg)
	assertTrue(t, heightfield.freelist == nil, msg)

	heightfield.Release()
	assertTrue(t, heightfield.Spans == nil, "release drops the span columns")
}

func TestCreateHeightfieldRejectsEmptyGrid(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	ctx := NewRcContext(zap.New(core))

	hf := &RcHeightfield{}
	assertTrue(t, !RcCreateHeightfield(ctx, hf, 0, 4, [3]float64{}, [3]float64{1, 1, 1}, 1, 1), "zero width is rejected")
	assertTrue(t, !RcCreateHeightfield(ctx, hf, 4, 4, [3]float64{}, [3]float64{1, 1, 1}, 0, 1), "zero cell size is rejected")
	assertTrue(t, logs.Len() == 2, "each rejection is logged")
}

func TestMarkWalkableTriangles(t *testing.T) {
	walkableSlopeAngle := 45.0
	var (
		verts         []float64
		walkableTri   []int
		unwalkableTri []int
		areas         []int
	)
	reset := func() {
		verts = []float64{
			0, 0, 0,
			1, 0, 0,
			0, 0, -1,
		}
		walkableTri = []int{0, 1, 2}
		unwalkableTri = []int{0, 2, 1}
		areas = []int{RC_NULL_AREA}
	}
	reset()
	RcMarkWalkableTriangles(nil, walkableSlopeAngle, verts, walkableTri, 1, areas)
	assertTrue(t, areas[0] == RC_WALKABLE_AREA, "One walkable triangle")

	reset()
	RcMarkWalkableTriangles(nil, walkableSlopeAngle, verts, unwalkableTri, 1, areas)
	assertTrue(t, areas[0] == RC_NULL_AREA, "One non-walkable triangle")

	reset()
	areas[0] = 42
	RcMarkWalkableTriangles(nil, walkableSlopeAngle, verts, unwalkableTri, 1, areas)
	assertTrue(t, areas[0] == 42, "Non-walkable triangle area id's are not modified")

	reset()
	RcMarkWalkableTriangles(nil, 0, verts, walkableTri, 1, areas)
	assertTrue(t, areas[0] == RC_NULL_AREA, "Slopes equal to the max slope are considered unwalkable.")
}

func TestAddSpan(t *testing.T) {
	var hf RcHeightfield
	area := 42
	flagMergeThr := 1
	reset := func() {
		verts := []float64{
			1, 2, 3,
			0, 2, 6,
		}
		bmin, bmax := RcCalcBounds(verts, 2)
		width, height := RcCalcGridSize(bmin, bmax, 1.5)
		hf = RcHeightfield{}
		assertTrue(t, RcCreateHeightfield(nil, &hf, width, height, bmin, bmax, 1.5, 2.0), "rcAddSpan")
	}

	reset()
	msg := "Add a span to an empty heightfield."
	assertTrue(t, addSpan(&hf, 0, 0, 0, 1, area, flagMergeThr), msg)
	assertTrue(t, hf.Spans[0] != nil, msg)
	assertTrue(t, hf.Spans[0].Smin == 0, msg)
	assertTrue(t, hf.Spans[0].Smax == 1, msg)
	assertTrue(t, hf.Spans[0].Area == area, msg)

	msg = "Add a span that gets merged with an existing span."
	assertTrue(t, addSpan(&hf, 0, 0, 1, 2, area, flagMergeThr), msg)
	assertTrue(t, hf.Spans[0] != nil, msg)
	assertTrue(t, hf.Spans[0].Smin == 0, msg)
	assertTrue(t, hf.Spans[0].Smax == 2, msg)
	assertTrue(t, hf.Spans[0].Area == area, msg)
	assertTrue(t, hf.Spans[0].Next == nil, msg)

	reset()
	msg = "Add a span that merges with two spans above and below."
	assertTrue(t, addSpan(&hf, 0, 0, 0, 1, area, flagMergeThr), msg)
	assertTrue(t, addSpan(&hf, 0, 0, 2, 3, area, flagMergeThr), msg)
	assertTrue(t, hf.Spans[0].Next != nil, msg)
	assertTrue(t, hf.Spans[0].Next.Smin == 2, msg)
	assertTrue(t, hf.Spans[0].Next.Smax == 3, msg)

	assertTrue(t, addSpan(&hf, 0, 0, 1, 2, area, flagMergeThr), msg)
	assertTrue(t, hf.Spans[0].Smin == 0, msg)
	assertTrue(t, hf.Spans[0].Smax == 3, msg)
	assertTrue(t, hf.Spans[0].Area == area, msg)
	assertTrue(t, hf.Spans[0].Next == nil, msg)

	reset()
	msg = "The higher area id wins when the tops are within the merge threshold."
	assertTrue(t, addSpan(&hf, 0, 0, 0, 4, 1, flagMergeThr), msg)
	assertTrue(t, addSpan(&hf, 0, 0, 2, 5, 7, flagMergeThr), msg)
	assertTrue(t, hf.Spans[0].Area == 7, msg)
	assertTrue(t, addSpan(&hf, 0, 0, 0, 9, 3, flagMergeThr), msg)
	assertTrue(t, hf.Spans[0].Smax == 9, msg)
	assertTrue(t, hf.Spans[0].Area == 3, "A span whose top is far above keeps its own area id.")

}

func TestAddSpanReusesFreedSpans(t *testing.T) {
	hf := flatHeightfield(t, 1, 1)
	for i := 0; i < 2*RC_SPANS_PER_POOL; i++ {
		assertTrue(t, addSpan(hf, 0, 0, 0, 1, RC_WALKABLE_AREA, 1), "merge into the same span")
	}
	assertTrue(t, hf.Spans[0].Next == nil, "merged spans do not pile up")
	assertTrue(t, hf.pools != nil && hf.pools.next == nil, "merged spans return to the freelist")
}

func TestRasterizeTriangle(t *testing.T) {
	verts := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
	}
	bmin, bmax := RcCalcBounds(verts, 3)
	cellSize := 0.5
	cellHeight := 0.5
	width, height := RcCalcGridSize(bmin, bmax, cellSize)

	var solid RcHeightfield
	assertTrue(t, RcCreateHeightfield(nil, &solid, width, height, bmin, bmax, cellSize, cellHeight), "create")

	area := 42
	flagMergeThr := 1
	msg := "Rasterize a triangle"
	assertTrue(t, RcRasterizeTriangles(nil, verts, []int{0, 1, 2}, []int{area}, 1, &solid, flagMergeThr), msg)

	assertTrue(t, solid.Spans[0+0*width] != nil, msg)
	assertTrue(t, solid.Spans[1+0*width] == nil, msg)
	assertTrue(t, solid.Spans[0+1*width] != nil, msg)
	assertTrue(t, solid.Spans[1+1*width] != nil, msg)

	assertTrue(t, solid.Spans[0+0*width].Smin == 0, msg)
	assertTrue(t, solid.Spans[0+0*width].Smax == 1, msg)
	assertTrue(t, solid.Spans[0+0*width].Area == area, msg)
	assertTrue(t, solid.Spans[0+0*width].Next == nil, msg)

	assertTrue(t, solid.Spans[0+1*width].Smin == 0, msg)
	assertTrue(t, solid.Spans[0+1*width].Smax == 1, msg)
	assertTrue(t, solid.Spans[0+1*width].Area == area, msg)
	assertTrue(t, solid.Spans[0+1*width].Next == nil, msg)

	assertTrue(t, solid.Spans[1+1*width].Smin == 0, msg)
	assertTrue(t, solid.Spans[1+1*width].Smax == 1, msg)
	assertTrue(t, solid.Spans[1+1*width].Area == area, msg)
	assertTrue(t, solid.Spans[1+1*width].Next == nil, msg)
}

func TestRasterizeTriangleOutsideBounds(t *testing.T) {
	hf := &RcHeightfield{}
	assertTrue(t, RcCreateHeightfield(nil, hf, 4, 4, [3]float64{0, 0, 0}, [3]float64{4, 4, 4}, 1, 1), "create")
	verts := []float64{
		10, 0, 10,
		11, 0, 10,
		10, 0, 11,
	}
	assertTrue(t, RcRasterizeTriangles(nil, verts, []int{0, 1, 2}, []int{RC_WALKABLE_AREA}, 1, hf, 1), "Triangles outside the heightfield are skipped")
	assertTrue(t, RcGetHeightFieldSpanCount(nil, hf) == 0, "Skipped triangles add no spans")
}

func TestRasterizeTriangles(t *testing.T) {
	verts := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, -1,
		0, 0, 1,
	}
	tris := []int{
		0, 1, 2,
		0, 3, 1,
	}
	areas := []int{
		1,
		2,
	}
	bmin, bmax := RcCalcBounds(verts, 4)
	cellSize := .5
	cellHeight := .5
	width, height := RcCalcGridSize(bmin, bmax, cellSize)

	var solid RcHeightfield
	assertTrue(t, RcCreateHeightfield(nil, &solid, width, height, bmin, bmax, cellSize, cellHeight), "rcRasterizeTriangles")
	msg := "Rasterize some triangles"
	assertTrue(t, RcRasterizeTriangles(nil, verts, tris, areas, 2, &solid, 1), msg)

	assertTrue(t, solid.Spans[0+0*width] != nil, msg)
	assertTrue(t, solid.Spans[0+1*width] != nil, msg)
	assertTrue(t, solid.Spans[0+2*width] != nil, msg)
	assertTrue(t, solid.Spans[0+3*width] != nil, msg)
	assertTrue(t, solid.Spans[1+0*width] == nil, msg)
	assertTrue(t, solid.Spans[1+1*width] != nil, msg)
	assertTrue(t, solid.Spans[1+2*width] != nil, msg)
	assertTrue(t, solid.Spans[1+3*width] == nil, msg)

	expected := map[int]int{
		0 + 0*width: 1,
		0 + 1*width: 1,
		0 + 2*width: 2,
		0 + 3*width: 2,
		1 + 1*width: 1,
		1 + 2*width: 2,
	}
	for column, area := range expected {
		span := solid.Spans[column]
		assertTrue(t, span.Smin == 0, msg)
		assertTrue(t, span.Smax == 1, msg)
		assertTrue(t, span.Area == area, msg)
		assertTrue(t, span.Next == nil, msg)
	}
}

func TestDividePoly(t *testing.T) {
	in := []float64{
		0, 0, 0,
		2, 0, 0,
		2, 0, 2,
		0, 0, 2,
	}
	out1 := make([]float64, 7*3)
	out2 := make([]float64, 7*3)
	n1, n2 := dividePoly(in, 4, out1, out2, 1, RC_AXIS_X)
	assertTrue(t, n1 == 4, "left part is a quad")
	assertTrue(t, n2 == 4, "right part is a quad")
	for i := 0; i < n1; i++ {
		assertTrue(t, out1[i*3] <= 1, "left part stays left of the axis")
	}
	for i := 0; i < n2; i++ {
		assertTrue(t, out2[i*3] >= 1, "right part stays right of the axis")
	}
}

func TestFilterLowHangingWalkableObstacles(t *testing.T) {
	hf := &RcHeightfield{}
	assertTrue(t, RcCreateHeightfield(nil, hf, 1, 1, [3]float64{}, [3]float64{1, 10, 1}, 1, 1), "create")
	assertTrue(t, addSpan(hf, 0, 0, 0, 1, RC_WALKABLE_AREA, 1), "walkable base")
	assertTrue(t, addSpan(hf, 0, 0, 2, 3, RC_NULL_AREA, 1), "low obstacle")
	assertTrue(t, addSpan(hf, 0, 0, 4, 5, RC_NULL_AREA, 1), "second obstacle")

	RcFilterLowHangingWalkableObstacles(nil, 2, hf)

	span := hf.Spans[0]
	assertTrue(t, span.Area == RC_WALKABLE_AREA, "base stays walkable")
	assertTrue(t, span.Next.Area == RC_WALKABLE_AREA, "obstacle within climb becomes walkable")
	assertTrue(t, span.Next.Next.Area == RC_NULL_AREA, "walkable flag does not propagate past two obstacles")
}

func TestFilterLedgeSpans(t *testing.T) {
	hf := flatHeightfield(t, 3, 3)
	RcFilterLedgeSpans(nil, 2, 1, hf)

	assertTrue(t, hf.Spans[1+1*3].Area == RC_WALKABLE_AREA, "interior span is not a ledge")
	assertTrue(t, hf.Spans[0+0*3].Area == RC_NULL_AREA, "span at the grid edge is a ledge")
	assertTrue(t, hf.Spans[1+0*3].Area == RC_NULL_AREA, "span at the grid edge is a ledge")
}

func TestFilterWalkableLowHeightSpans(t *testing.T) {
	hf := &RcHeightfield{}
	assertTrue(t, RcCreateHeightfield(nil, hf, 1, 1, [3]float64{}, [3]float64{1, 10, 1}, 1, 1), "create")
	assertTrue(t, addSpan(hf, 0, 0, 0, 1, RC_WALKABLE_AREA, 1), "floor")
	assertTrue(t, addSpan(hf, 0, 0, 3, 5, RC_WALKABLE_AREA, 1), "ceiling")

	RcFilterWalkableLowHeightSpans(nil, 5, hf)

	assertTrue(t, hf.Spans[0].Area == RC_NULL_AREA, "floor under a low ceiling is cleared")
	assertTrue(t, hf.Spans[0].Next.Area == RC_WALKABLE_AREA, "open span stays walkable")
}

func TestBuildCompactHeightfield(t *testing.T) {
	chf := flatCompactHeightfield(t, 3, 3)
	msg := "compact a flat heightfield"
	assertTrue(t, chf.SpanCount == 9, msg)
	assertTrue(t, chf.Width == 3 && chf.Height == 3, msg)
	assertTrue(t, chf.Bmax[1] == 10+2, "top bound is raised by the walkable height")

	center := chf.Cells[1+1*3]
	assertTrue(t, center.Count == 1, msg)
	span := &chf.Spans[center.Index]
	assertTrue(t, span.Y == 1, "span floor is the solid top")
	for dir := 0; dir < 4; dir++ {
		assertTrue(t, rcGetCon(span, dir) == 0, "center span connects in all directions")
	}

	corner := &chf.Spans[chf.Cells[0].Index]
	connected := 0
	for dir := 0; dir < 4; dir++ {
		if rcGetCon(corner, dir) != RC_NOT_CONNECTED {
			connected++
		}
	}
	assertTrue(t, connected == 2, "corner span connects to two neighbours")

	chf.Release()
	assertTrue(t, chf.Spans == nil && chf.SpanCount == 0, "release clears the compact heightfield")
}

func TestCompactConnectionRespectsClimb(t *testing.T) {
	hf := &RcHeightfield{}
	assertTrue(t, RcCreateHeightfield(nil, hf, 2, 1, [3]float64{}, [3]float64{2, 20, 1}, 1, 1), "create")
	assertTrue(t, addSpan(hf, 0, 0, 0, 1, RC_WALKABLE_AREA, 1), "low")
	assertTrue(t, addSpan(hf, 1, 0, 0, 6, RC_WALKABLE_AREA, 1), "high")

	chf := &RcCompactHeightfield{}
	assertTrue(t, RcBuildCompactHeightfield(nil, 2, 2, hf, chf), "build")
	assertTrue(t, rcGetCon(&chf.Spans[0], 2) == RC_NOT_CONNECTED, "step higher than climb is not connected")
}

func TestErodeWalkableArea(t *testing.T) {
	chf := flatCompactHeightfield(t, 5, 5)
	assertTrue(t, RcErodeWalkableArea(nil, 1, chf), "erode")
	assertTrue(t, countArea(chf, RC_WALKABLE_AREA) == 9, "only the inner 3x3 stays walkable")
	assertTrue(t, chf.Areas[chf.Cells[0].Index] == RC_NULL_AREA, "border span is eroded")
	assertTrue(t, chf.Areas[chf.Cells[2+2*5].Index] == RC_WALKABLE_AREA, "center span survives")
}

func TestMedianFilterWalkableArea(t *testing.T) {
	chf := flatCompactHeightfield(t, 3, 3)
	center := chf.Cells[1+1*3].Index
	chf.Areas[center] = 5
	assertTrue(t, RcMedianFilterWalkableArea(nil, chf), "median filter")
	assertTrue(t, chf.Areas[center] == RC_WALKABLE_AREA, "isolated area id is replaced by the median")
}

func TestMarkAreas(t *testing.T) {
	chf := flatCompactHeightfield(t, 5, 5)
	RcMarkBoxArea(nil, []float64{0, 0, 0}, []float64{1.9, 5, 1.9}, 3, chf)
	assertTrue(t, countArea(chf, 3) == 4, "box covers a 2x2 corner")

	chf = flatCompactHeightfield(t, 5, 5)
	square := []float64{
		1, 0, 1,
		4, 0, 1,
		4, 0, 4,
		1, 0, 4,
	}
	RcMarkConvexPolyArea(nil, square, 4, 0, 5, 5, chf)
	assertTrue(t, countArea(chf, 5) == 9, "convex polygon covers the cells whose centers are inside")

	chf = flatCompactHeightfield(t, 5, 5)
	RcMarkCylinderArea(nil, []float64{2.5, 0, 2.5}, 0.6, 5, 6, chf)
	assertTrue(t, countArea(chf, 6) == 1, "thin cylinder covers the center cell")
}

func TestOffsetPoly(t *testing.T) {
	// Corners are beveled when the polygon winds with x turning towards z.
	square := []float64{
		0, 0, 0,
		1, 0, 0,
		1, 0, 1,
		0, 0, 1,
	}
	out := make([]float64, 16*3)
	n := RcOffsetPoly(square, 4, 0.1, out, 16)
	assertTrue(t, n == 8, "each right angle corner gets two bevel vertices")
	for i := 0; i < n; i++ {
		x, z := out[i*3], out[i*3+2]
		assertTrue(t, x < 0 || x > 1 || z < 0 || z > 1, "offset vertices lie outside the original square")
		assertTrue(t, x >= -0.1-1e-9 && x <= 1.1+1e-9 && z >= -0.1-1e-9 && z <= 1.1+1e-9, "offset vertices stay within the offset distance")
	}

	assertTrue(t, RcOffsetPoly(square, 4, 0.1, out, 7) == 0, "too small an output buffer")

	// The opposite winding moves the corners inward along the miter.
	reversed := []float64{
		0, 0, 0,
		0, 0, 1,
		1, 0, 1,
		1, 0, 0,
	}
	n = RcOffsetPoly(reversed, 4, 0.1, out, 16)
	assertTrue(t, n == 4, "mitered corners keep one vertex each")
	for i := 0; i < n; i++ {
		x, z := out[i*3], out[i*3+2]
		assertTrue(t, math.Abs(x-0.1) < 1e-9 || math.Abs(x-0.9) < 1e-9, "mitered x moves inward")
		assertTrue(t, math.Abs(z-0.1) < 1e-9 || math.Abs(z-0.9) < 1e-9, "mitered z moves inward")
	}
}

func TestBuildRegions(t *testing.T) {
	chf := flatCompactHeightfield(t, 10, 10)
	assertTrue(t, !RcBuildRegions(nil, chf, 0, 0, 0), "watershed needs the distance field")

	assertTrue(t, RcBuildDistanceField(nil, chf), "distance field")
	assertTrue(t, chf.MaxDistance > 0, "distance field has a maximum")
	assertTrue(t, RcBuildRegions(nil, chf, 0, 0, 0), "watershed regions")
	assertTrue(t, regionCount(chf) >= 1, "watershed assigns regions")
	for i := 0; i < chf.SpanCount; i++ {
		assertTrue(t, chf.Spans[i].Reg != 0, "every walkable span gets a region")
	}
	assertTrue(t, chf.MaxRegions >= regionCount(chf), "max regions bounds the region ids")
}

func TestBuildRegionsMonotone(t *testing.T) {
	chf := flatCompactHeightfield(t, 10, 10)
	assertTrue(t, RcBuildRegionsMonotone(nil, chf, 0, 0, 0), "monotone regions")
	assertTrue(t, regionCount(chf) == 1, "a rectangle becomes one monotone region")
	for i := 0; i < chf.SpanCount; i++ {
		assertTrue(t, chf.Spans[i].Reg != 0, "every walkable span gets a region")
	}
}

func TestBuildLayerRegions(t *testing.T) {
	chf := flatCompactHeightfield(t, 10, 10)
	assertTrue(t, RcBuildLayerRegions(nil, chf, 0, 0), "layer regions")
	assertTrue(t, regionCount(chf) >= 1, "layers assign regions")
}

func TestSmallRegionsAreRemoved(t *testing.T) {
	chf := flatCompactHeightfield(t, 3, 3)
	assertTrue(t, RcBuildRegionsMonotone(nil, chf, 0, 100, 0), "monotone regions")
	assertTrue(t, regionCount(chf) == 0, "regions below the minimum area are dropped")
}

func TestContoursAndPolyMeshOfARectangle(t *testing.T) {
	chf := flatCompactHeightfield(t, 10, 10)
	assertTrue(t, RcBuildRegionsMonotone(nil, chf, 0, 0, 0), "regions")

	cset := &RcContourSet{}
	assertTrue(t, RcBuildContours(nil, chf, 1.3, 0, cset, RC_CONTOUR_TESS_WALL_EDGES), "contours")
	assertTrue(t, cset.Nconts == 1, "one region gives one contour")
	cont := cset.Conts[0]
	assertTrue(t, cont.Nverts == 4, "a rectangle simplifies to four corners")
	assertTrue(t, cont.Nrverts >= cont.Nverts, "raw contour has at least the simplified vertices")
	assertTrue(t, calcAreaOfPolygon2D(cont.Verts, cont.Nverts) > 0, "outline winds forward")

	pmesh := &RcPolyMesh{}
	assertTrue(t, RcBuildPolyMesh(nil, cset, 6, pmesh), "poly mesh")
	assertTrue(t, pmesh.Nverts == 4, "rectangle mesh has four vertices")
	assertTrue(t, pmesh.Npolys == 1, "convex rectangle merges into one polygon")
	assertTrue(t, pmesh.Nvp == 6, "verts per poly is kept")
	assertTrue(t, len(pmesh.Flags) == pmesh.Npolys, "flags are allocated per polygon")
	for j := 0; j < 4; j++ {
		assertTrue(t, pmesh.Polys[6+j] == RC_MESH_NULL_IDX, "a single polygon has no neighbours")
	}

	dmesh := &RcPolyMeshDetail{}
	assertTrue(t, RcBuildPolyMeshDetail(nil, pmesh, chf, 0, 1, dmesh), "detail mesh without sampling")
	assertTrue(t, dmesh.Nmeshes == 1, "one sub-mesh per polygon")
	assertTrue(t, dmesh.Ntris == 2, "a quad without samples splits into two triangles")
	assertTrue(t, dmesh.Nverts == 4, "no sample vertices are added")

	pmesh.Release()
	dmesh.Release()
	cset.Release()
	assertTrue(t, pmesh.Verts == nil && pmesh.Npolys == 0, "released poly mesh")
	assertTrue(t, dmesh.Tris == nil && dmesh.Ntris == 0, "released detail mesh")
	assertTrue(t, cset.Conts == nil && cset.Nconts == 0, "released contour set")
}

func TestTriangulate(t *testing.T) {
	// An L shaped hexagon, 4 ints per vertex.
	verts := []int{
		0, 0, 0, 0,
		0, 0, 4, 0,
		2, 0, 4, 0,
		2, 0, 2, 0,
		4, 0, 2, 0,
		4, 0, 0, 0,
	}
	indices := []int{0, 1, 2, 3, 4, 5}
	tris := make([]int, 6*3)
	ntris := triangulate(6, verts, indices, tris)
	assertTrue(t, ntris == 4, "a hexagon triangulates into four triangles")
	for i := 0; i < ntris*3; i++ {
		assertTrue(t, tris[i] >= 0 && tris[i] < 6, "triangle indices reference the polygon")
	}
}

func TestDelaunayHullOfSquare(t *testing.T) {
	pts := []float64{
		0, 0, 0,
		0, 0, 2,
		2, 0, 2,
		2, 0, 0,
		1, 0, 1,
	}
	hull := []int{0, 1, 2, 3}
	tris := delaunayHull(nil, 5, pts, hull, nil)
	assertTrue(t, len(tris)/4 == 4, "a center point splits the square into four triangles")
}

func TestGetHeightSpiralSearch(t *testing.T) {
	hp := &rcHeightPatch{
		data:   []int{rcUnsetHeight, rcUnsetHeight, rcUnsetHeight, 7},
		width:  2,
		height: 2,
	}
	h := getHeight(0.1, 0, 0.1, 1, 1, 1, hp)
	assertTrue(t, h == 7, "unset height falls back to the nearest sampled neighbour")
}

// Two cubes standing on a 20 by 20 ground plane.
var cubesVerts = []float64{
	1, 1, -1,
	1, -1, -1,
	1, 1, 1,
	1, -1, 1,
	-1, 1, -1,
	-1, -1, -1,
	-1, 1, 1,
	-1, -1, 1,
	-10, 0, 10,
	10, 0, 10,
	-10, 0, -10,
	10, 0, -10,
}

var cubesTris = []int{
	4, 2, 0,
	2, 7, 3,
	6, 5, 7,
	1, 7, 5,
	0, 3, 1,
	4, 1, 5,
	4, 6, 2,
	2, 6, 7,
	6, 4, 5,
	1, 3, 7,
	0, 2, 3,
	4, 0, 1,
	9, 10, 8,
	9, 11, 10,
}

type partitionFunc func(ctx *RcContext, chf *RcCompactHeightfield) bool

func buildCubes(t *testing.T, partition partitionFunc) (*RcPolyMesh, *RcPolyMeshDetail) {
	t.Helper()
	ctx := NewRcContext(nil)
	nverts := len(cubesVerts) / 3
	ntris := len(cubesTris) / 3

	cs, ch := 0.3, 0.2
	walkableHeight := int(math.Ceil(2.0 / ch))
	walkableClimb := int(math.Floor(0.9 / ch))
	walkableRadius := int(math.Ceil(0.6 / cs))

	bmin, bmax := RcCalcBounds(cubesVerts, nverts)
	w, h := RcCalcGridSize(bmin, bmax, cs)
	assertTrue(t, w == 67 && h == 67, "grid size of the cube scene")

	solid := &RcHeightfield{}
	assertTrue(t, RcCreateHeightfield(ctx, solid, w, h, bmin, bmax, cs, ch), "heightfield")
	areas := make([]int, ntris)
	RcMarkWalkableTriangles(ctx, 45, cubesVerts, cubesTris, ntris, areas)
	assertTrue(t, RcRasterizeTriangles(ctx, cubesVerts, cubesTris, areas, ntris, solid, 1), "rasterize")

	RcFilterLowHangingWalkableObstacles(ctx, walkableClimb, solid)
	RcFilterLedgeSpans(ctx, walkableHeight, walkableClimb, solid)
	RcFilterWalkableLowHeightSpans(ctx, walkableHeight, solid)

	chf := &RcCompactHeightfield{}
	assertTrue(t, RcBuildCompactHeightfield(ctx, walkableHeight, walkableClimb, solid, chf), "compact")
	solid.Release()
	assertTrue(t, RcErodeWalkableArea(ctx, walkableRadius, chf), "erode")
	assertTrue(t, partition(ctx, chf), "partition")

	cset := &RcContourSet{}
	assertTrue(t, RcBuildContours(ctx, chf, 1.3, int(12/cs), cset, RC_CONTOUR_TESS_WALL_EDGES), "contours")
	pmesh := &RcPolyMesh{}
	assertTrue(t, RcBuildPolyMesh(ctx, cset, 6, pmesh), "poly mesh")
	dmesh := &RcPolyMeshDetail{}
	assertTrue(t, RcBuildPolyMeshDetail(ctx, pmesh, chf, cs*6, ch*1, dmesh), "detail mesh")
	chf.Release()
	cset.Release()
	return pmesh, dmesh
}

func checkCubesMesh(t *testing.T, pmesh *RcPolyMesh, dmesh *RcPolyMeshDetail) {
	t.Helper()
	assertTrue(t, pmesh.Npolys > 0, "poly mesh has polygons")
	assertTrue(t, pmesh.Nverts > 0, "poly mesh has vertices")
	assertTrue(t, pmesh.Nvp == 6, "verts per poly")
	assertTrue(t, dmesh.Nmeshes == pmesh.Npolys, "one detail sub-mesh per polygon")
	assertTrue(t, dmesh.Ntris > 0, "detail mesh has triangles")
	assertTrue(t, len(dmesh.Verts) == dmesh.Nverts*3, "detail vertex array matches its count")
	assertTrue(t, len(dmesh.Tris) == dmesh.Ntris*4, "detail triangle array matches its count")

	for i := 0; i < pmesh.Nverts*3; i++ {
		assertTrue(t, pmesh.Verts[i] >= 0, "poly mesh vertices are in voxel space")
	}
	for i := 0; i < dmesh.Nmeshes; i++ {
		baseVert, nverts := dmesh.Meshes[i*4+0], dmesh.Meshes[i*4+1]
		baseTri, ntris := dmesh.Meshes[i*4+2], dmesh.Meshes[i*4+3]
		assertTrue(t, baseVert+nverts <= dmesh.Nverts, "sub-mesh vertices are in range")
		assertTrue(t, baseTri+ntris <= dmesh.Ntris, "sub-mesh triangles are in range")
		for j := baseTri; j < baseTri+ntris; j++ {
			for k := 0; k < 3; k++ {
				assertTrue(t, dmesh.Tris[j*4+k] < nverts, "triangle indices are local to the sub-mesh")
			}
		}
	}
}

func TestBuildCubesWatershed(t *testing.T) {
	pmesh, dmesh := buildCubes(t, func(ctx *RcContext, chf *RcCompactHeightfield) bool {
		return RcBuildDistanceField(ctx, chf) && RcBuildRegions(ctx, chf, 0, 8*8, 20*20)
	})
	checkCubesMesh(t, pmesh, dmesh)
}

func TestBuildCubesMonotone(t *testing.T) {
	pmesh, dmesh := buildCubes(t, func(ctx *RcContext, chf *RcCompactHeightfield) bool {
		return RcBuildRegionsMonotone(ctx, chf, 0, 8*8, 20*20)
	})
	checkCubesMesh(t, pmesh, dmesh)
}

func TestBuildCubesLayers(t *testing.T) {
	pmesh, dmesh := buildCubes(t, func(ctx *RcContext, chf *RcCompactHeightfield) bool {
		return RcBuildLayerRegions(ctx, chf, 0, 8*8)
	})
	checkCubesMesh(t, pmesh, dmesh)
}

func TestContextTimers(t *testing.T) {
	ctx := NewRcContext(nil)
	ctx.StartTimer(RC_TIMER_TOTAL)
	ctx.StopTimer(RC_TIMER_TOTAL)
	assertTrue(t, ctx.AccumulatedTime(RC_TIMER_TOTAL) >= 0, "timer accumulates")
	ctx.ResetTimers()
	assertTrue(t, ctx.AccumulatedTime(RC_TIMER_TOTAL) == 0, "reset clears timers")
	ctx.EnableTimer(false)
	assertTrue(t, ctx.AccumulatedTime(RC_TIMER_TOTAL) == -1, "disabled timers report -1")

	var nilCtx *RcContext
	nilCtx.StartTimer(RC_TIMER_TOTAL)
	nilCtx.StopTimer(RC_TIMER_TOTAL)
	nilCtx.Warnf("ignored %d", 1)
	assertTrue(t, nilCtx.AccumulatedTime(RC_TIMER_TOTAL) == -1, "nil context is inert")
	assertTrue(t, RC_TIMER_BUILD_CONTOURS.String() != "", "timer labels have names")
}

func TestStack(t *testing.T) {
	s := NewStack[int](2)
	s.Push(1)
	s.Push(2)
	s.Push(3)
	assertTrue(t, s.Len() == 3, "stack grows past its capacity")
	assertTrue(t, s.Pop() == 3, "stack pops the last value")
	s.SetByIndex(0, 9)
	assertTrue(t, s.Index(0) == 9, "stack values are addressable")
	s.Clear()
	assertTrue(t, s.Empty(), "clear empties the stack")
}
