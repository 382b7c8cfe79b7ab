package recast

import (
	"cmp"
	"slices"

	"github.com/gorustyt/navbuild/common"
)

func getCornerHeight(x, z, i, dir int, chf *RcCompactHeightfield) (height int, isBorderVertex bool) {
	s := &chf.Spans[i]
	height = s.Y
	dirp := (dir + 1) & 0x3

	var regs [4]int

	// Combine region and area codes in order to prevent
	// border vertices which are in between two areas to be removed.
	regs[0] = chf.Spans[i].Reg | (chf.Areas[i] << 16)

	if rcGetCon(s, dir) != RC_NOT_CONNECTED {
		ax, az, ai := neighborIndex(chf, x, z, s, dir)
		as := &chf.Spans[ai]
		height = max(height, as.Y)
		regs[1] = as.Reg | (chf.Areas[ai] << 16)
		if rcGetCon(as, dirp) != RC_NOT_CONNECTED {
			_, _, ai2 := neighborIndex(chf, ax, az, as, dirp)
			as2 := &chf.Spans[ai2]
			height = max(height, as2.Y)
			regs[2] = as2.Reg | (chf.Areas[ai2] << 16)
		}
	}
	if rcGetCon(s, dirp) != RC_NOT_CONNECTED {
		ax, az, ai := neighborIndex(chf, x, z, s, dirp)
		as := &chf.Spans[ai]
		height = max(height, as.Y)
		regs[3] = as.Reg | (chf.Areas[ai] << 16)
		if rcGetCon(as, dir) != RC_NOT_CONNECTED {
			_, _, ai2 := neighborIndex(chf, ax, az, as, dir)
			as2 := &chf.Spans[ai2]
			height = max(height, as2.Y)
			regs[2] = as2.Reg | (chf.Areas[ai2] << 16)
		}
	}

	// Check if the vertex is special edge vertex, these vertices will be removed later.
	for j := 0; j < 4; j++ {
		a := j
		b := (j + 1) & 0x3
		c := (j + 2) & 0x3
		d := (j + 3) & 0x3

		// The vertex is a border vertex there are two same exterior cells in a row,
		// followed by two interior cells and none of the regions are out of bounds.
		twoSameExts := (regs[a]&regs[b]&RC_BORDER_REG) != 0 && regs[a] == regs[b]
		twoInts := ((regs[c] | regs[d]) & RC_BORDER_REG) == 0
		intsSameArea := (regs[c] >> 16) == (regs[d] >> 16)
		noZeros := regs[a] != 0 && regs[b] != 0 && regs[c] != 0 && regs[d] != 0
		if twoSameExts && twoInts && intsSameArea && noZeros {
			isBorderVertex = true
			break
		}
	}

	return height, isBorderVertex
}

// walkContourPoints traces the boundary of the region starting at span i and
// appends (x, y, z, flags) for every corner visited.
func walkContourPoints(x, z, i int, chf *RcCompactHeightfield, flags []int, points []int) []int {
	// Choose the first non-connected edge
	dir := 0
	for (flags[i] & (1 << dir)) == 0 {
		dir++
	}

	startDir := dir
	starti := i
	area := chf.Areas[i]

	for iter := 1; iter < 40000; iter++ {
		if flags[i]&(1<<dir) != 0 {
			// Choose the edge corner
			isAreaBorder := false
			px := x
			py, isBorderVertex := getCornerHeight(x, z, i, dir, chf)
			pz := z
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			r := 0
			s := &chf.Spans[i]
			if rcGetCon(s, dir) != RC_NOT_CONNECTED {
				_, _, ai := neighborIndex(chf, x, z, s, dir)
				r = chf.Spans[ai].Reg
				if area != chf.Areas[ai] {
					isAreaBorder = true
				}
			}
			if isBorderVertex {
				r |= RC_BORDER_VERTEX
			}
			if isAreaBorder {
				r |= RC_AREA_BORDER
			}
			points = append(points, px, py, pz, r)

			flags[i] &^= 1 << dir // Remove visited edges
			dir = (dir + 1) & 0x3 // Rotate CW
		} else {
			s := &chf.Spans[i]
			if rcGetCon(s, dir) == RC_NOT_CONNECTED {
				// Should not happen.
				return points
			}
			x, z, i = neighborIndex(chf, x, z, s, dir)
			dir = (dir + 3) & 0x3 // Rotate CCW
		}

		if starti == i && startDir == dir {
			break
		}
	}
	return points
}

func distancePtSeg(x, z, px, pz, qx, qz int) float64 {
	pqx := float64(qx - px)
	pqz := float64(qz - pz)
	dx := float64(x - px)
	dz := float64(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = float64(px) + t*pqx - float64(x)
	dz = float64(pz) + t*pqz - float64(z)

	return dx*dx + dz*dz
}

// insertContourPoint inserts raw point maxi after simplified vertex i.
func insertContourPoint(simplified []int, points []int, i, maxi int) []int {
	pt := [4]int{points[maxi*4+0], points[maxi*4+1], points[maxi*4+2], maxi}
	return slices.Insert(simplified, (i+1)*4, pt[:]...)
}

func simplifyContour(points []int, simplified []int, maxError float64, maxEdgeLen, buildFlags int) []int {
	// Add initial points.
	hasConnections := false
	for i := 0; i < len(points); i += 4 {
		if points[i+3]&RC_CONTOUR_REG_MASK != 0 {
			hasConnections = true
			break
		}
	}

	if hasConnections {
		// The contour has some portals to other regions.
		// Add a new point to every location where the region changes.
		for i, ni := 0, len(points)/4; i < ni; i++ {
			ii := (i + 1) % ni
			differentRegs := (points[i*4+3] & RC_CONTOUR_REG_MASK) != (points[ii*4+3] & RC_CONTOUR_REG_MASK)
			areaBorders := (points[i*4+3] & RC_AREA_BORDER) != (points[ii*4+3] & RC_AREA_BORDER)
			if differentRegs || areaBorders {
				simplified = append(simplified, points[i*4+0], points[i*4+1], points[i*4+2], i)
			}
		}
	}

	if len(simplified) == 0 {
		// If there is no connections at all,
		// create some initial points for the simplification process.
		// Find lower-left and upper-right vertices of the contour.
		llx, lly, llz, lli := points[0], points[1], points[2], 0
		urx, ury, urz, uri := points[0], points[1], points[2], 0
		for i := 0; i < len(points); i += 4 {
			x := points[i+0]
			y := points[i+1]
			z := points[i+2]
			if x < llx || (x == llx && z < llz) {
				llx, lly, llz, lli = x, y, z, i/4
			}
			if x > urx || (x == urx && z > urz) {
				urx, ury, urz, uri = x, y, z, i/4
			}
		}
		simplified = append(simplified, llx, lly, llz, lli, urx, ury, urz, uri)
	}

	// Add points until all raw points are within
	// error tolerance to the simplified shape.
	pn := len(points) / 4
	for i := 0; i < len(simplified)/4; {
		ii := (i + 1) % (len(simplified) / 4)

		ax := simplified[i*4+0]
		az := simplified[i*4+2]
		ai := simplified[i*4+3]

		bx := simplified[ii*4+0]
		bz := simplified[ii*4+2]
		bi := simplified[ii*4+3]

		// Find maximum deviation from the segment.
		maxd := 0.0
		maxi := -1
		var ci, cinc, endi int

		// Traverse the segment in lexilogical order so that the
		// max deviation is calculated similarly when traversing
		// opposite segments.
		if bx > ax || (bx == ax && bz > az) {
			cinc = 1
			ci = (ai + cinc) % pn
			endi = bi
		} else {
			cinc = pn - 1
			ci = (bi + cinc) % pn
			endi = ai
			ax, bx = bx, ax
			az, bz = bz, az
		}

		// Tessellate only outer edges or edges between areas.
		if points[ci*4+3]&RC_CONTOUR_REG_MASK == 0 || points[ci*4+3]&RC_AREA_BORDER != 0 {
			for ci != endi {
				d := distancePtSeg(points[ci*4+0], points[ci*4+2], ax, az, bx, bz)
				if d > maxd {
					maxd = d
					maxi = ci
				}
				ci = (ci + cinc) % pn
			}
		}

		// If the max deviation is larger than accepted error,
		// add new point, else continue to next segment.
		if maxi != -1 && maxd > maxError*maxError {
			simplified = insertContourPoint(simplified, points, i, maxi)
		} else {
			i++
		}
	}

	// Split too long edges.
	if maxEdgeLen > 0 && buildFlags&(RC_CONTOUR_TESS_WALL_EDGES|RC_CONTOUR_TESS_AREA_EDGES) != 0 {
		for i := 0; i < len(simplified)/4; {
			ii := (i + 1) % (len(simplified) / 4)

			ax := simplified[i*4+0]
			az := simplified[i*4+2]
			ai := simplified[i*4+3]

			bx := simplified[ii*4+0]
			bz := simplified[ii*4+2]
			bi := simplified[ii*4+3]

			maxi := -1
			ci := (ai + 1) % pn

			// Tessellate only outer edges or edges between areas.
			tess := false
			// Wall edges.
			if buildFlags&RC_CONTOUR_TESS_WALL_EDGES != 0 && points[ci*4+3]&RC_CONTOUR_REG_MASK == 0 {
				tess = true
			}
			// Edges between areas.
			if buildFlags&RC_CONTOUR_TESS_AREA_EDGES != 0 && points[ci*4+3]&RC_AREA_BORDER != 0 {
				tess = true
			}

			if tess {
				dx := bx - ax
				dz := bz - az
				if dx*dx+dz*dz > maxEdgeLen*maxEdgeLen {
					// Round based on the segments in lexilogical order so that the
					// max tesselation is consistent regardles in which direction
					// segments are traversed.
					n := bi - ai
					if bi < ai {
						n = bi + pn - ai
					}
					if n > 1 {
						if bx > ax || (bx == ax && bz > az) {
							maxi = (ai + n/2) % pn
						} else {
							maxi = (ai + (n+1)/2) % pn
						}
					}
				}
			}

			if maxi != -1 {
				simplified = insertContourPoint(simplified, points, i, maxi)
			} else {
				i++
			}
		}
	}

	for i := 0; i < len(simplified)/4; i++ {
		// The edge vertex flag is take from the current raw point,
		// and the neighbour region is take from the next raw point.
		ai := (simplified[i*4+3] + 1) % pn
		bi := simplified[i*4+3]
		simplified[i*4+3] = (points[ai*4+3] & (RC_CONTOUR_REG_MASK | RC_AREA_BORDER)) | (points[bi*4+3] & RC_BORDER_VERTEX)
	}

	return simplified
}

func calcAreaOfPolygon2D(verts []int, nverts int) int {
	area := 0
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi := common.GetVert4(verts, i)
		vj := common.GetVert4(verts, j)
		area += vi[0]*vj[2] - vj[0]*vi[2]
	}
	return (area + 1) / 2
}

func intersectSegContour(d0, d1 []int, i, n int, verts []int) bool {
	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := common.Next(k, n)
		// Skip edges incident to i.
		if i == k || i == k1 {
			continue
		}
		p0 := common.GetVert4(verts, k)
		p1 := common.GetVert4(verts, k1)
		if common.Vequal2D(d0, p0) || common.Vequal2D(d1, p0) || common.Vequal2D(d0, p1) || common.Vequal2D(d1, p1) {
			continue
		}
		if common.Intersect(d0, d1, p0, p1) {
			return true
		}
	}
	return false
}

func inConeContour(i, n int, verts []int, pj []int) bool {
	pi := common.GetVert4(verts, i)
	pi1 := common.GetVert4(verts, common.Next(i, n))
	pin1 := common.GetVert4(verts, common.Prev(i, n))

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if common.LeftOn(pin1, pi, pi1) {
		return common.Left(pi, pj, pin1) && common.Left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(common.LeftOn(pi, pj, pi1) && common.LeftOn(pj, pi, pin1))
}

// removeDegenerateSegments removes adjacent vertices which are equal on xz-plane,
// or else the triangulator will get confused.
func removeDegenerateSegments(simplified []int) []int {
	npts := len(simplified) / 4
	for i := 0; i < npts; i++ {
		ni := common.Next(i, npts)
		if common.Vequal2D(simplified[i*4:], simplified[ni*4:]) {
			// Degenerate segment, remove.
			simplified = slices.Delete(simplified, i*4, i*4+4)
			npts--
		}
	}
	return simplified
}

func mergeContours(ca, cb *RcContour, ia, ib int) bool {
	maxVerts := ca.Nverts + cb.Nverts + 2
	verts := make([]int, 0, maxVerts*4)

	// Copy contour A.
	for i := 0; i <= ca.Nverts; i++ {
		verts = append(verts, common.GetVert4(ca.Verts, (ia+i)%ca.Nverts)...)
	}
	// Copy contour B
	for i := 0; i <= cb.Nverts; i++ {
		verts = append(verts, common.GetVert4(cb.Verts, (ib+i)%cb.Nverts)...)
	}

	ca.Verts = verts
	ca.Nverts = len(verts) / 4

	cb.Verts = nil
	cb.Nverts = 0

	return true
}

type rcContourHole struct {
	contour  *RcContour
	minx     int
	minz     int
	leftmost int
}

type rcContourRegion struct {
	outline *RcContour
	holes   []*rcContourHole
}

type rcPotentialDiagonal struct {
	vert int
	dist int
}

// Finds the lowest leftmost vertex of a contour.
func findLeftMostVertex(contour *RcContour) (minx, minz, leftmost int) {
	minx = contour.Verts[0]
	minz = contour.Verts[2]
	for i := 1; i < contour.Nverts; i++ {
		x := contour.Verts[i*4+0]
		z := contour.Verts[i*4+2]
		if x < minx || (x == minx && z < minz) {
			minx, minz, leftmost = x, z, i
		}
	}
	return minx, minz, leftmost
}

func mergeRegionHoles(ctx *RcContext, region *rcContourRegion) {
	// Sort holes from left to right.
	for _, hole := range region.holes {
		hole.minx, hole.minz, hole.leftmost = findLeftMostVertex(hole.contour)
	}
	slices.SortFunc(region.holes, func(a, b *rcContourHole) int {
		if a.minx == b.minx {
			return cmp.Compare(a.minz, b.minz)
		}
		return cmp.Compare(a.minx, b.minx)
	})

	maxVerts := region.outline.Nverts
	for _, hole := range region.holes {
		maxVerts += hole.contour.Nverts
	}
	diags := make([]rcPotentialDiagonal, 0, maxVerts)

	outline := region.outline

	// Merge holes into the outline one by one.
	for i, h := range region.holes {
		hole := h.contour

		index := -1
		bestVertex := h.leftmost
		for iter := 0; iter < hole.Nverts; iter++ {
			// Find potential diagonals.
			// The 'best' vertex must be in the cone described by 3 cosequtive vertices of the outline.
			diags = diags[:0]
			corner := common.GetVert4(hole.Verts, bestVertex)
			for j := 0; j < outline.Nverts; j++ {
				if inConeContour(j, outline.Nverts, outline.Verts, corner) {
					dx := outline.Verts[j*4+0] - corner[0]
					dz := outline.Verts[j*4+2] - corner[2]
					diags = append(diags, rcPotentialDiagonal{vert: j, dist: dx*dx + dz*dz})
				}
			}
			// Sort potential diagonals by distance, we want to make the connection as short as possible.
			slices.SortStableFunc(diags, func(a, b rcPotentialDiagonal) int {
				return cmp.Compare(a.dist, b.dist)
			})

			// Find a diagonal that is not intersecting the outline not the remaining holes.
			index = -1
			for _, diag := range diags {
				pt := common.GetVert4(outline.Verts, diag.vert)
				intersect := intersectSegContour(pt, corner, diag.vert, outline.Nverts, outline.Verts)
				for k := i; k < len(region.holes) && !intersect; k++ {
					other := region.holes[k].contour
					intersect = intersectSegContour(pt, corner, -1, other.Nverts, other.Verts)
				}
				if !intersect {
					index = diag.vert
					break
				}
			}
			// If found non-intersecting diagonal, stop looking.
			if index != -1 {
				break
			}
			// All the potential diagonals for the current vertex were intersecting, try next vertex.
			bestVertex = (bestVertex + 1) % hole.Nverts
		}

		if index == -1 {
			ctx.Warnf("mergeHoles: Failed to find merge points for region %d.", outline.Reg)
			continue
		}
		if !mergeContours(region.outline, hole, index, bestVertex) {
			ctx.Warnf("mergeHoles: Failed to merge contours for region %d.", outline.Reg)
			continue
		}
	}
}

// / Builds a contour set from the region outlines in the provided compact heightfield.
// /
// / The raw contours will match the region outlines exactly. The @p maxError and @p maxEdgeLen
// / parameters control how closely the simplified contours will match the raw contours.
// /
// / Simplified contours are generated such that the vertices for portals between areas match up.
// / (They are considered mandatory vertices.)
// /
// / @param[in]		maxError	The maximum distance a simplified contour's border edges should deviate
// /								the original raw contour. [Limit: >=0] [Units: wu]
// / @param[in]		maxEdgeLen	The maximum allowed length for contour edges along the border of the mesh.
// /								[Limit: >=0] [Units: vx]
// / @param[out]		cset		The resulting contour set. (Must be pre-allocated.)
// / @param[in]		buildFlags	The build flags. (See: #rcBuildContoursFlags)
func RcBuildContours(ctx *RcContext, chf *RcCompactHeightfield, maxError float64, maxEdgeLen int,
	cset *RcContourSet, buildFlags int) bool {
	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	ctx.StartTimer(RC_TIMER_BUILD_CONTOURS)
	defer ctx.StopTimer(RC_TIMER_BUILD_CONTOURS)

	cset.Bmin = chf.Bmin
	cset.Bmax = chf.Bmax
	if borderSize > 0 {
		// If the heightfield was build with bordersize, remove the offset.
		pad := float64(borderSize) * chf.Cs
		cset.Bmin[0] += pad
		cset.Bmin[2] += pad
		cset.Bmax[0] -= pad
		cset.Bmax[2] -= pad
	}
	cset.Cs = chf.Cs
	cset.Ch = chf.Ch
	cset.Width = chf.Width - chf.BorderSize*2
	cset.Height = chf.Height - chf.BorderSize*2
	cset.BorderSize = chf.BorderSize
	cset.MaxError = maxError

	maxContours := max(chf.MaxRegions, 8)
	cset.Conts = make([]*RcContour, 0, maxContours)
	cset.Nconts = 0

	flags := make([]int, chf.SpanCount)

	ctx.StartTimer(RC_TIMER_BUILD_CONTOURS_TRACE)

	// Mark boundaries.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				res := 0
				s := &chf.Spans[i]
				if s.Reg == 0 || s.Reg&RC_BORDER_REG != 0 {
					flags[i] = 0
					continue
				}
				for dir := 0; dir < 4; dir++ {
					r := 0
					if rcGetCon(s, dir) != RC_NOT_CONNECTED {
						_, _, ai := neighborIndex(chf, x, z, s, dir)
						r = chf.Spans[ai].Reg
					}
					if r == s.Reg {
						res |= 1 << dir
					}
				}
				flags[i] = res ^ 0xf // Inverse, mark non connected edges.
			}
		}
	}

	ctx.StopTimer(RC_TIMER_BUILD_CONTOURS_TRACE)

	verts := make([]int, 0, 256)
	simplified := make([]int, 0, 64)

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if flags[i] == 0 || flags[i] == 0xf {
					flags[i] = 0
					continue
				}
				reg := chf.Spans[i].Reg
				if reg == 0 || reg&RC_BORDER_REG != 0 {
					continue
				}
				area := chf.Areas[i]

				ctx.StartTimer(RC_TIMER_BUILD_CONTOURS_TRACE)
				verts = walkContourPoints(x, z, i, chf, flags, verts[:0])
				ctx.StopTimer(RC_TIMER_BUILD_CONTOURS_TRACE)

				ctx.StartTimer(RC_TIMER_BUILD_CONTOURS_SIMPLIFY)
				simplified = simplifyContour(verts, simplified[:0], maxError, maxEdgeLen, buildFlags)
				simplified = removeDegenerateSegments(simplified)
				ctx.StopTimer(RC_TIMER_BUILD_CONTOURS_SIMPLIFY)

				// Create contour.
				if len(simplified)/4 < 3 {
					continue
				}
				cont := &RcContour{
					Nverts:  len(simplified) / 4,
					Verts:   slices.Clone(simplified),
					Nrverts: len(verts) / 4,
					Rverts:  slices.Clone(verts),
					Reg:     reg,
					Area:    area,
				}
				if borderSize > 0 {
					// If the heightfield was build with bordersize, remove the offset.
					for j := 0; j < cont.Nverts; j++ {
						cont.Verts[j*4+0] -= borderSize
						cont.Verts[j*4+2] -= borderSize
					}
					for j := 0; j < cont.Nrverts; j++ {
						cont.Rverts[j*4+0] -= borderSize
						cont.Rverts[j*4+2] -= borderSize
					}
				}
				cset.Conts = append(cset.Conts, cont)
				cset.Nconts++
			}
		}
	}

	// Merge holes if needed.
	if cset.Nconts == 0 {
		return true
	}

	// Calculate winding of all polygons.
	winding := make([]int, cset.Nconts)
	nholes := 0
	for i, cont := range cset.Conts {
		// If the contour is wound backwards, it is a hole.
		if calcAreaOfPolygon2D(cont.Verts, cont.Nverts) < 0 {
			winding[i] = -1
			nholes++
		} else {
			winding[i] = 1
		}
	}
	if nholes == 0 {
		return true
	}

	// Collect outline contour and holes contours per region.
	// We assume that there is one outline and multiple holes.
	nregions := chf.MaxRegions + 1
	regions := make([]rcContourRegion, nregions)
	for i, cont := range cset.Conts {
		// Positively would contours are outlines, negative holes.
		if winding[i] > 0 {
			if regions[cont.Reg].outline != nil {
				ctx.Errorf("rcBuildContours: Multiple outlines for region %d.", cont.Reg)
			}
			regions[cont.Reg].outline = cont
		} else {
			regions[cont.Reg].holes = append(regions[cont.Reg].holes, &rcContourHole{contour: cont})
		}
	}

	// Finally merge each regions holes into the outline.
	for i := range regions {
		reg := &regions[i]
		if len(reg.holes) == 0 {
			continue
		}
		if reg.outline != nil {
			mergeRegionHoles(ctx, reg)
		} else {
			// The region does not have an outline.
			// This can happen if the contour becaomes selfoverlapping because of
			// too aggressive simplification settings.
			ctx.Errorf("rcBuildContours: Bad outline for region %d, contour simplification is likely too aggressive.", i)
		}
	}

	return true
}
