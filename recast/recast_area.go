package recast

import (
	"slices"

	"github.com/gorustyt/navbuild/common"
)

// / Checks if a point is contained within a polygon
// /
// / @param[in]	numVerts	Number of vertices in the polygon
// / @param[in]	verts		The polygon vertices
// / @param[in]	point		The point to check
// / @returns true if the point lies within the polygon, false otherwise.
func pointInPoly(numVerts int, verts []float64, point []float64) bool {
	inPoly := false
	for i, j := 0, numVerts-1; i < numVerts; j, i = i, i+1 {
		vi := common.GetVert3(verts, i)
		vj := common.GetVert3(verts, j)
		if (vi[2] > point[2]) == (vj[2] > point[2]) {
			continue
		}
		if point[0] >= (vj[0]-vi[0])*(point[2]-vi[2])/(vj[2]-vi[2])+vi[0] {
			continue
		}
		inPoly = !inPoly
	}
	return inPoly
}

// neighborIndex returns the index of the span reached from span (at x, z) in direction dir.
// The connection must exist.
func neighborIndex(chf *RcCompactHeightfield, x, z int, span *RcCompactSpan, dir int) (nx, nz, index int) {
	nx = x + common.GetDirOffsetX(dir)
	nz = z + common.GetDirOffsetY(dir)
	index = chf.Cells[nx+nz*chf.Width].Index + rcGetCon(span, dir)
	return nx, nz, index
}

// relaxDistance lowers dist[spanIndex] through the straight neighbour in dir and
// the diagonal reached by turning towards diagDir.
func relaxDistance(chf *RcCompactHeightfield, dist []int, x, z, spanIndex, dir, diagDir int) {
	span := &chf.Spans[spanIndex]
	if rcGetCon(span, dir) == RC_NOT_CONNECTED {
		return
	}
	aX, aZ, aIndex := neighborIndex(chf, x, z, span, dir)
	aSpan := &chf.Spans[aIndex]
	if newDistance := min(dist[aIndex]+2, 255); newDistance < dist[spanIndex] {
		dist[spanIndex] = newDistance
	}
	if rcGetCon(aSpan, diagDir) != RC_NOT_CONNECTED {
		_, _, bIndex := neighborIndex(chf, aX, aZ, aSpan, diagDir)
		if newDistance := min(dist[bIndex]+3, 255); newDistance < dist[spanIndex] {
			dist[spanIndex] = newDistance
		}
	}
}

// / Erodes the walkable area within the heightfield by the specified radius.
// /
// / Basically, any spans that are closer to a boundary or obstruction than the specified radius
// / are marked as un-walkable.
func RcErodeWalkableArea(ctx *RcContext, erosionRadius int, compactHeightfield *RcCompactHeightfield) bool {
	ctx.StartTimer(RC_TIMER_ERODE_AREA)
	defer ctx.StopTimer(RC_TIMER_ERODE_AREA)

	xSize := compactHeightfield.Width
	zSize := compactHeightfield.Height
	zStride := xSize // For readability

	distanceToBoundary := make([]int, compactHeightfield.SpanCount)
	for i := range distanceToBoundary {
		distanceToBoundary[i] = 0xff
	}

	// Mark boundary cells.
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			cell := compactHeightfield.Cells[x+z*zStride]
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				if compactHeightfield.Areas[spanIndex] == RC_NULL_AREA {
					distanceToBoundary[spanIndex] = 0
					continue
				}
				span := &compactHeightfield.Spans[spanIndex]

				// Check that there is a non-null adjacent span in each of the 4 cardinal directions.
				neighborCount := 0
				for direction := 0; direction < 4; direction++ {
					if rcGetCon(span, direction) == RC_NOT_CONNECTED {
						break
					}
					_, _, neighborSpanIndex := neighborIndex(compactHeightfield, x, z, span, direction)
					if compactHeightfield.Areas[neighborSpanIndex] == RC_NULL_AREA {
						break
					}
					neighborCount++
				}

				// At least one missing neighbour, so this is a boundary cell.
				if neighborCount != 4 {
					distanceToBoundary[spanIndex] = 0
				}
			}
		}
	}

	// Pass 1: (-1,0), (-1,-1), (0,-1), (1,-1)
	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			cell := compactHeightfield.Cells[x+z*zStride]
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				relaxDistance(compactHeightfield, distanceToBoundary, x, z, spanIndex, 0, 3)
				relaxDistance(compactHeightfield, distanceToBoundary, x, z, spanIndex, 3, 2)
			}
		}
	}

	// Pass 2: (1,0), (1,1), (0,1), (-1,1)
	for z := zSize - 1; z >= 0; z-- {
		for x := xSize - 1; x >= 0; x-- {
			cell := compactHeightfield.Cells[x+z*zStride]
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				relaxDistance(compactHeightfield, distanceToBoundary, x, z, spanIndex, 2, 1)
				relaxDistance(compactHeightfield, distanceToBoundary, x, z, spanIndex, 1, 0)
			}
		}
	}

	minBoundaryDistance := erosionRadius * 2
	for spanIndex := 0; spanIndex < compactHeightfield.SpanCount; spanIndex++ {
		if distanceToBoundary[spanIndex] < minBoundaryDistance {
			compactHeightfield.Areas[spanIndex] = RC_NULL_AREA
		}
	}

	return true
}

// / Applies a median filter to walkable area types (based on area id), removing noise.
func RcMedianFilterWalkableArea(ctx *RcContext, compactHeightfield *RcCompactHeightfield) bool {
	ctx.StartTimer(RC_TIMER_MEDIAN_AREA)
	defer ctx.StopTimer(RC_TIMER_MEDIAN_AREA)

	xSize := compactHeightfield.Width
	zSize := compactHeightfield.Height
	zStride := xSize // For readability

	areas := make([]int, compactHeightfield.SpanCount)
	for i := range areas {
		areas[i] = 0xff
	}

	for z := 0; z < zSize; z++ {
		for x := 0; x < xSize; x++ {
			cell := compactHeightfield.Cells[x+z*zStride]
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				span := &compactHeightfield.Spans[spanIndex]
				if compactHeightfield.Areas[spanIndex] == RC_NULL_AREA {
					areas[spanIndex] = compactHeightfield.Areas[spanIndex]
					continue
				}

				var neighborAreas [9]int
				for i := range neighborAreas {
					neighborAreas[i] = compactHeightfield.Areas[spanIndex]
				}

				for dir := 0; dir < 4; dir++ {
					if rcGetCon(span, dir) == RC_NOT_CONNECTED {
						continue
					}
					aX, aZ, aIndex := neighborIndex(compactHeightfield, x, z, span, dir)
					if compactHeightfield.Areas[aIndex] != RC_NULL_AREA {
						neighborAreas[dir*2+0] = compactHeightfield.Areas[aIndex]
					}

					aSpan := &compactHeightfield.Spans[aIndex]
					dir2 := (dir + 1) & 0x3
					if rcGetCon(aSpan, dir2) != RC_NOT_CONNECTED {
						_, _, bIndex := neighborIndex(compactHeightfield, aX, aZ, aSpan, dir2)
						if compactHeightfield.Areas[bIndex] != RC_NULL_AREA {
							neighborAreas[dir*2+1] = compactHeightfield.Areas[bIndex]
						}
					}
				}
				slices.Sort(neighborAreas[:])
				areas[spanIndex] = neighborAreas[4]
			}
		}
	}

	compactHeightfield.Areas = areas
	return true
}

// gridFootprint converts a world space box to clamped cell coordinates.
// ok is false when the box lies entirely outside the grid.
func gridFootprint(chf *RcCompactHeightfield, bmin, bmax []float64) (minX, minY, minZ, maxX, maxY, maxZ int, ok bool) {
	minX = int((bmin[0] - chf.Bmin[0]) / chf.Cs)
	minY = int((bmin[1] - chf.Bmin[1]) / chf.Ch)
	minZ = int((bmin[2] - chf.Bmin[2]) / chf.Cs)
	maxX = int((bmax[0] - chf.Bmin[0]) / chf.Cs)
	maxY = int((bmax[1] - chf.Bmin[1]) / chf.Ch)
	maxZ = int((bmax[2] - chf.Bmin[2]) / chf.Cs)

	if maxX < 0 || minX >= chf.Width || maxZ < 0 || minZ >= chf.Height {
		return
	}

	minX = max(minX, 0)
	maxX = min(maxX, chf.Width-1)
	minZ = max(minZ, 0)
	maxZ = min(maxZ, chf.Height-1)
	return minX, minY, minZ, maxX, maxY, maxZ, true
}

// / Applies an area id to all spans within the specified bounding box. (AABB)
func RcMarkBoxArea(ctx *RcContext, boxMinBounds, boxMaxBounds []float64, areaId int, compactHeightfield *RcCompactHeightfield) {
	ctx.StartTimer(RC_TIMER_MARK_BOX_AREA)
	defer ctx.StopTimer(RC_TIMER_MARK_BOX_AREA)

	minX, minY, minZ, maxX, maxY, maxZ, ok := gridFootprint(compactHeightfield, boxMinBounds, boxMaxBounds)
	if !ok {
		return
	}

	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			cell := compactHeightfield.Cells[x+z*compactHeightfield.Width]
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				span := &compactHeightfield.Spans[spanIndex]

				// Skip if the span is outside the box extents.
				if span.Y < minY || span.Y > maxY {
					continue
				}
				// Skip if the span has been removed.
				if compactHeightfield.Areas[spanIndex] == RC_NULL_AREA {
					continue
				}
				compactHeightfield.Areas[spanIndex] = areaId
			}
		}
	}
}

// / Applies the area id to the all spans within the specified convex polygon.
// /
// / The value of spacial parameters are in world units.
// / The y-values of the polygon vertices are ignored. So the polygon is effectively
// / projected onto the xz-plane, translated to @p minY, and extruded to @p maxY.
func RcMarkConvexPolyArea(ctx *RcContext, verts []float64, numVerts int, minY, maxY float64, areaId int, compactHeightfield *RcCompactHeightfield) {
	ctx.StartTimer(RC_TIMER_MARK_CONVEXPOLY_AREA)
	defer ctx.StopTimer(RC_TIMER_MARK_CONVEXPOLY_AREA)

	// Compute the bounding box of the polygon
	bmin, bmax := RcCalcBounds(verts, numVerts)
	bmin[1] = minY
	bmax[1] = maxY

	minx, miny, minz, maxx, maxy, maxz, ok := gridFootprint(compactHeightfield, bmin[:], bmax[:])
	if !ok {
		return
	}

	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			cell := compactHeightfield.Cells[x+z*compactHeightfield.Width]
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				span := &compactHeightfield.Spans[spanIndex]

				// Skip if span is removed.
				if compactHeightfield.Areas[spanIndex] == RC_NULL_AREA {
					continue
				}
				// Skip if y extents don't overlap.
				if span.Y < miny || span.Y > maxy {
					continue
				}

				point := []float64{
					compactHeightfield.Bmin[0] + (float64(x)+0.5)*compactHeightfield.Cs,
					0,
					compactHeightfield.Bmin[2] + (float64(z)+0.5)*compactHeightfield.Cs,
				}
				if pointInPoly(numVerts, verts, point) {
					compactHeightfield.Areas[spanIndex] = areaId
				}
			}
		}
	}
}

// / Applies the area id to all spans within the specified y-axis-aligned cylinder.
func RcMarkCylinderArea(ctx *RcContext, position []float64, radius, height float64, areaId int, compactHeightfield *RcCompactHeightfield) {
	ctx.StartTimer(RC_TIMER_MARK_CYLINDER_AREA)
	defer ctx.StopTimer(RC_TIMER_MARK_CYLINDER_AREA)

	// Compute the bounding box of the cylinder
	cylinderBBMin := []float64{position[0] - radius, position[1], position[2] - radius}
	cylinderBBMax := []float64{position[0] + radius, position[1] + height, position[2] + radius}

	minx, miny, minz, maxx, maxy, maxz, ok := gridFootprint(compactHeightfield, cylinderBBMin, cylinderBBMax)
	if !ok {
		return
	}

	radiusSq := radius * radius
	for z := minz; z <= maxz; z++ {
		for x := minx; x <= maxx; x++ {
			cell := compactHeightfield.Cells[x+z*compactHeightfield.Width]

			cellX := compactHeightfield.Bmin[0] + (float64(x)+0.5)*compactHeightfield.Cs
			cellZ := compactHeightfield.Bmin[2] + (float64(z)+0.5)*compactHeightfield.Cs
			// Skip this column if it's too far from the center point of the cylinder.
			if common.Sqr(cellX-position[0])+common.Sqr(cellZ-position[2]) >= radiusSq {
				continue
			}

			// Mark all overlapping spans
			for spanIndex := cell.Index; spanIndex < cell.Index+cell.Count; spanIndex++ {
				span := &compactHeightfield.Spans[spanIndex]
				if compactHeightfield.Areas[spanIndex] == RC_NULL_AREA {
					continue
				}
				if span.Y >= miny && span.Y <= maxy {
					compactHeightfield.Areas[spanIndex] = areaId
				}
			}
		}
	}
}

const epsilon = 1e-6

// / Normalizes the vector if the length is greater than zero.
// / If the magnitude is zero, the vector is unchanged.
func rcVsafeNormalize(v []float64) {
	sqMag := common.Sqr(v[0]) + common.Sqr(v[1]) + common.Sqr(v[2])
	if sqMag > epsilon {
		inverseMag := 1.0 / common.Sqrt(sqMag)
		v[0] *= inverseMag
		v[1] *= inverseMag
		v[2] *= inverseMag
	}
}

// / Expands a convex polygon along its vertex normals by the given offset amount.
// / Inserts extra vertices to bevel sharp corners.
// /
// / @return The number of vertices in the offset polygon or 0 if too few vertices in @p outVerts.
func RcOffsetPoly(verts []float64, numVerts int, offset float64, outVerts []float64, maxOutVerts int) int {
	// Defines the limit at which a miter becomes a bevel.
	const MITER_LIMIT = 1.20
	numOutVerts := 0

	for vertIndex := 0; vertIndex < numVerts; vertIndex++ {
		// Grab three vertices of the polygon.
		vertA := common.GetVert3(verts, (vertIndex+numVerts-1)%numVerts)
		vertB := common.GetVert3(verts, vertIndex)
		vertC := common.GetVert3(verts, (vertIndex+1)%numVerts)

		// From A to B on the x/z plane
		var prevSegmentDir, currSegmentDir [3]float64
		common.Vsub(prevSegmentDir[:], vertB, vertA)
		prevSegmentDir[1] = 0 // Squash onto x/z plane
		rcVsafeNormalize(prevSegmentDir[:])

		// From B to C on the x/z plane
		common.Vsub(currSegmentDir[:], vertC, vertB)
		currSegmentDir[1] = 0 // Squash onto x/z plane
		rcVsafeNormalize(currSegmentDir[:])

		// The y component of the cross product of the two normalized segment directions.
		cross := currSegmentDir[0]*prevSegmentDir[2] - prevSegmentDir[0]*currSegmentDir[2]

		// CCW perpendicular vector to AB and BC.  The segment normals.
		prevSegmentNormX := -prevSegmentDir[2]
		prevSegmentNormZ := prevSegmentDir[0]
		currSegmentNormX := -currSegmentDir[2]
		currSegmentNormZ := currSegmentDir[0]

		// Average the two segment normals to get the proportional miter offset for B.
		cornerMiterX := (prevSegmentNormX + currSegmentNormX) * 0.5
		cornerMiterZ := (prevSegmentNormZ + currSegmentNormZ) * 0.5
		cornerMiterSqMag := common.Sqr(cornerMiterX) + common.Sqr(cornerMiterZ)

		// If the magnitude of the segment normal average is less than about .69444,
		// the corner is an acute enough angle that the result should be beveled.
		bevel := cornerMiterSqMag*MITER_LIMIT*MITER_LIMIT < 1.0

		// Scale the corner miter so it's proportional to how much the corner should be offset compared to the edges.
		if cornerMiterSqMag > epsilon {
			scale := 1.0 / cornerMiterSqMag
			cornerMiterX *= scale
			cornerMiterZ *= scale
		}

		if bevel && cross < 0.0 { // If the corner is convex and an acute enough angle, generate a bevel.
			if numOutVerts+2 > maxOutVerts {
				return 0
			}

			// Generate two bevel vertices at a distances from B proportional to the angle between the two segments.
			d := 1.0 - (prevSegmentDir[0]*currSegmentDir[0]+prevSegmentDir[2]*currSegmentDir[2])*0.5

			outVerts[numOutVerts*3+0] = vertB[0] + (-prevSegmentNormX+prevSegmentDir[0]*d)*offset
			outVerts[numOutVerts*3+1] = vertB[1]
			outVerts[numOutVerts*3+2] = vertB[2] + (-prevSegmentNormZ+prevSegmentDir[2]*d)*offset
			numOutVerts++

			outVerts[numOutVerts*3+0] = vertB[0] + (-currSegmentNormX-currSegmentDir[0]*d)*offset
			outVerts[numOutVerts*3+1] = vertB[1]
			outVerts[numOutVerts*3+2] = vertB[2] + (-currSegmentNormZ-currSegmentDir[2]*d)*offset
			numOutVerts++
		} else {
			if numOutVerts+1 > maxOutVerts {
				return 0
			}

			// Move B along the miter direction by the specified offset.
			outVerts[numOutVerts*3+0] = vertB[0] - cornerMiterX*offset
			outVerts[numOutVerts*3+1] = vertB[1]
			outVerts[numOutVerts*3+2] = vertB[2] - cornerMiterZ*offset
			numOutVerts++
		}
	}

	return numOutVerts
}
