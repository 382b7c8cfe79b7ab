package recast

const rcNullNei = 0xffff

// distanceFieldNeighbor relaxes src[i] through the neighbour in dir and the diagonal via diagDir.
func distanceFieldNeighbor(chf *RcCompactHeightfield, src []int, x, z, i, dir, diagDir int) {
	s := &chf.Spans[i]
	if rcGetCon(s, dir) == RC_NOT_CONNECTED {
		return
	}
	ax, az, ai := neighborIndex(chf, x, z, s, dir)
	if src[ai]+2 < src[i] {
		src[i] = src[ai] + 2
	}
	as := &chf.Spans[ai]
	if rcGetCon(as, diagDir) != RC_NOT_CONNECTED {
		_, _, aai := neighborIndex(chf, ax, az, as, diagDir)
		if src[aai]+3 < src[i] {
			src[i] = src[aai] + 3
		}
	}
}

func calculateDistanceField(chf *RcCompactHeightfield, src []int) (maxDist int) {
	w := chf.Width
	h := chf.Height

	// Init distance and points.
	for i := 0; i < chf.SpanCount; i++ {
		src[i] = 0xffff
	}

	// Mark boundary cells.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				s := &chf.Spans[i]
				area := chf.Areas[i]

				nc := 0
				for dir := 0; dir < 4; dir++ {
					if rcGetCon(s, dir) == RC_NOT_CONNECTED {
						continue
					}
					_, _, ai := neighborIndex(chf, x, z, s, dir)
					if area == chf.Areas[ai] {
						nc++
					}
				}
				if nc != 4 {
					src[i] = 0
				}
			}
		}
	}

	// Pass 1
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				distanceFieldNeighbor(chf, src, x, z, i, 0, 3) // (-1,0) (-1,-1)
				distanceFieldNeighbor(chf, src, x, z, i, 3, 2) // (0,-1) (1,-1)
			}
		}
	}

	// Pass 2
	for z := h - 1; z >= 0; z-- {
		for x := w - 1; x >= 0; x-- {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				distanceFieldNeighbor(chf, src, x, z, i, 2, 1) // (1,0) (1,1)
				distanceFieldNeighbor(chf, src, x, z, i, 1, 0) // (0,1) (-1,1)
			}
		}
	}

	for i := 0; i < chf.SpanCount; i++ {
		maxDist = max(src[i], maxDist)
	}
	return maxDist
}

func boxBlur(chf *RcCompactHeightfield, thr int, src, dst []int) []int {
	w := chf.Width
	h := chf.Height

	thr *= 2

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				s := &chf.Spans[i]
				cd := src[i]
				if cd <= thr {
					dst[i] = cd
					continue
				}

				d := cd
				for dir := 0; dir < 4; dir++ {
					if rcGetCon(s, dir) == RC_NOT_CONNECTED {
						d += cd * 2
						continue
					}
					ax, az, ai := neighborIndex(chf, x, z, s, dir)
					d += src[ai]

					as := &chf.Spans[ai]
					dir2 := (dir + 1) & 0x3
					if rcGetCon(as, dir2) != RC_NOT_CONNECTED {
						_, _, ai2 := neighborIndex(chf, ax, az, as, dir2)
						d += src[ai2]
					} else {
						d += cd
					}
				}
				dst[i] = (d + 5) / 9
			}
		}
	}
	return dst
}

// / Builds the distance field for the specified compact heightfield.
// /
// / This is usually the second to the last step in creating a fully built
// / compact heightfield.  This step is required before regions are built
// / using #rcBuildRegions or #rcBuildRegionsMonotone.
func RcBuildDistanceField(ctx *RcContext, chf *RcCompactHeightfield) bool {
	ctx.StartTimer(RC_TIMER_BUILD_DISTANCEFIELD)
	defer ctx.StopTimer(RC_TIMER_BUILD_DISTANCEFIELD)

	chf.Dist = nil
	src := make([]int, chf.SpanCount)
	dst := make([]int, chf.SpanCount)

	ctx.StartTimer(RC_TIMER_BUILD_DISTANCEFIELD_DIST)
	chf.MaxDistance = calculateDistanceField(chf, src)
	ctx.StopTimer(RC_TIMER_BUILD_DISTANCEFIELD_DIST)

	ctx.StartTimer(RC_TIMER_BUILD_DISTANCEFIELD_BLUR)
	// Store distance.
	chf.Dist = boxBlur(chf, 1, src, dst)
	ctx.StopTimer(RC_TIMER_BUILD_DISTANCEFIELD_BLUR)

	return true
}

func paintRectRegion(minx, maxx, minz, maxz, regId int, chf *RcCompactHeightfield, srcReg []int) {
	w := chf.Width
	for z := minz; z < maxz; z++ {
		for x := minx; x < maxx; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Areas[i] != RC_NULL_AREA {
					srcReg[i] = regId
				}
			}
		}
	}
}

// paintBorderRegions marks the four border strips with their own border regions
// and returns the next free region id.
func paintBorderRegions(chf *RcCompactHeightfield, borderSize int, srcReg []int, id int) int {
	if borderSize <= 0 {
		return id
	}
	w := chf.Width
	h := chf.Height
	// Make sure border will not overflow.
	bw := min(w, borderSize)
	bh := min(h, borderSize)

	paintRectRegion(0, bw, 0, h, id|RC_BORDER_REG, chf, srcReg)
	id++
	paintRectRegion(w-bw, w, 0, h, id|RC_BORDER_REG, chf, srcReg)
	id++
	paintRectRegion(0, w, 0, bh, id|RC_BORDER_REG, chf, srcReg)
	id++
	paintRectRegion(0, w, h-bh, h, id|RC_BORDER_REG, chf, srcReg)
	id++
	return id
}

type levelStackEntry struct {
	x     int
	z     int
	index int
}

func floodRegion(x, z, i int, level, r int,
	chf *RcCompactHeightfield, srcReg, srcDist []int, stack *Stack[levelStackEntry]) bool {
	area := chf.Areas[i]

	// Flood fill mark region.
	stack.Clear()
	stack.Push(levelStackEntry{x: x, z: z, index: i})
	srcReg[i] = r
	srcDist[i] = 0

	lev := 0
	if level >= 2 {
		lev = level - 2
	}
	count := 0

	for !stack.Empty() {
		back := stack.Pop()
		cx, cz, ci := back.x, back.z, back.index
		cs := &chf.Spans[ci]

		// Check if any of the neighbours already have a valid region set.
		ar := 0
		for dir := 0; dir < 4 && ar == 0; dir++ {
			// 8 connected
			if rcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}
			ax, az, ai := neighborIndex(chf, cx, cz, cs, dir)
			if chf.Areas[ai] != area {
				continue
			}
			nr := srcReg[ai]
			if nr&RC_BORDER_REG != 0 { // Do not take borders into account.
				continue
			}
			if nr != 0 && nr != r {
				ar = nr
				break
			}

			as := &chf.Spans[ai]
			dir2 := (dir + 1) & 0x3
			if rcGetCon(as, dir2) != RC_NOT_CONNECTED {
				_, _, ai2 := neighborIndex(chf, ax, az, as, dir2)
				if chf.Areas[ai2] != area {
					continue
				}
				if nr2 := srcReg[ai2]; nr2 != 0 && nr2 != r {
					ar = nr2
				}
			}
		}
		if ar != 0 {
			srcReg[ci] = 0
			continue
		}

		count++

		// Expand neighbours.
		for dir := 0; dir < 4; dir++ {
			if rcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}
			ax, az, ai := neighborIndex(chf, cx, cz, cs, dir)
			if chf.Areas[ai] != area {
				continue
			}
			if chf.Dist[ai] >= lev && srcReg[ai] == 0 {
				srcReg[ai] = r
				srcDist[ai] = 0
				stack.Push(levelStackEntry{x: ax, z: az, index: ai})
			}
		}
	}

	return count > 0
}

type dirtyEntry struct {
	index     int
	region    int
	distance2 int
}

func expandRegions(maxIter, level int, chf *RcCompactHeightfield,
	srcReg, srcDist []int, stack *Stack[levelStackEntry], fillStack bool) {
	w := chf.Width
	h := chf.Height

	if fillStack {
		// Find cells revealed by the raised level.
		stack.Clear()
		for z := 0; z < h; z++ {
			for x := 0; x < w; x++ {
				c := chf.Cells[x+z*w]
				for i := c.Index; i < c.Index+c.Count; i++ {
					if chf.Dist[i] >= level && srcReg[i] == 0 && chf.Areas[i] != RC_NULL_AREA {
						stack.Push(levelStackEntry{x: x, z: z, index: i})
					}
				}
			}
		}
	} else {
		// mark all cells which already have a region
		entries := stack.Data()
		for j := range entries {
			if srcReg[entries[j].index] != 0 {
				entries[j].index = -1
			}
		}
	}

	var dirtyEntries []dirtyEntry
	iter := 0
	for stack.Len() > 0 {
		failed := 0
		dirtyEntries = dirtyEntries[:0]

		entries := stack.Data()
		for j := range entries {
			x, z, i := entries[j].x, entries[j].z, entries[j].index
			if i < 0 {
				failed++
				continue
			}

			r := srcReg[i]
			d2 := 0xffff
			area := chf.Areas[i]
			s := &chf.Spans[i]
			for dir := 0; dir < 4; dir++ {
				if rcGetCon(s, dir) == RC_NOT_CONNECTED {
					continue
				}
				_, _, ai := neighborIndex(chf, x, z, s, dir)
				if chf.Areas[ai] != area {
					continue
				}
				if srcReg[ai] > 0 && srcReg[ai]&RC_BORDER_REG == 0 && srcDist[ai]+2 < d2 {
					r = srcReg[ai]
					d2 = srcDist[ai] + 2
				}
			}
			if r != 0 {
				entries[j].index = -1 // mark as used
				dirtyEntries = append(dirtyEntries, dirtyEntry{index: i, region: r, distance2: d2})
			} else {
				failed++
			}
		}

		// Copy entries that differ between src and dst to keep them in sync.
		for _, e := range dirtyEntries {
			srcReg[e.index] = e.region
			srcDist[e.index] = e.distance2
		}

		if failed == stack.Len() {
			break
		}

		if level > 0 {
			iter++
			if iter >= maxIter {
				break
			}
		}
	}
}

func sortCellsByLevel(startLevel int, chf *RcCompactHeightfield, srcReg []int,
	stacks []*Stack[levelStackEntry], loglevelsPerStack uint) {
	w := chf.Width
	h := chf.Height
	startLevel = startLevel >> loglevelsPerStack

	for _, s := range stacks {
		s.Clear()
	}

	// put all cells in the level range into the appropriate stacks
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if chf.Areas[i] == RC_NULL_AREA || srcReg[i] != 0 {
					continue
				}
				level := chf.Dist[i] >> loglevelsPerStack
				sId := startLevel - level
				if sId >= len(stacks) {
					continue
				}
				if sId < 0 {
					sId = 0
				}
				stacks[sId].Push(levelStackEntry{x: x, z: z, index: i})
			}
		}
	}
}

func appendStacks(srcStack, dstStack *Stack[levelStackEntry], srcReg []int) {
	for _, e := range srcStack.Data() {
		if e.index < 0 || srcReg[e.index] != 0 {
			continue
		}
		dstStack.Push(e)
	}
}

type rcRegion struct {
	spanCount        int // Number of spans belonging to this region
	id               int // ID of the region
	areaType         int // Are type.
	remap            bool
	visited          bool
	overlap          bool
	connectsToBorder bool
	ymin, ymax       int
	connections      []int
	floors           []int
}

func newRegions(nreg int) []*rcRegion {
	regions := make([]*rcRegion, nreg)
	for i := range regions {
		regions[i] = &rcRegion{id: i, ymin: 0xffff}
	}
	return regions
}

// removeAdjacentDuplicates removes consecutive duplicates of a circular list.
func removeAdjacentDuplicates(values []int) []int {
	for i := 0; i < len(values) && len(values) > 1; {
		ni := (i + 1) % len(values)
		if values[i] == values[ni] {
			values = append(values[:i], values[i+1:]...)
		} else {
			i++
		}
	}
	return values
}

func replaceNeighbour(reg *rcRegion, oldId, newId int) {
	neiChanged := false
	for i := range reg.connections {
		if reg.connections[i] == oldId {
			reg.connections[i] = newId
			neiChanged = true
		}
	}
	for i := range reg.floors {
		if reg.floors[i] == oldId {
			reg.floors[i] = newId
		}
	}
	if neiChanged {
		reg.connections = removeAdjacentDuplicates(reg.connections)
	}
}

func canMergeWithRegion(rega, regb *rcRegion) bool {
	if rega.areaType != regb.areaType {
		return false
	}
	n := 0
	for _, c := range rega.connections {
		if c == regb.id {
			n++
		}
	}
	if n > 1 {
		return false
	}
	for _, f := range rega.floors {
		if f == regb.id {
			return false
		}
	}
	return true
}

func addUniqueFloorRegion(reg *rcRegion, n int) {
	for _, f := range reg.floors {
		if f == n {
			return
		}
	}
	reg.floors = append(reg.floors, n)
}

func mergeRegions(rega, regb *rcRegion) bool {
	aid := rega.id
	bid := regb.id

	// Duplicate current neighbourhood.
	acon := append([]int(nil), rega.connections...)
	bcon := regb.connections

	// Find insertion point on A.
	insa := -1
	for i, c := range acon {
		if c == bid {
			insa = i
			break
		}
	}
	if insa == -1 {
		return false
	}

	// Find insertion point on B.
	insb := -1
	for i, c := range bcon {
		if c == aid {
			insb = i
			break
		}
	}
	if insb == -1 {
		return false
	}

	// Merge neighbours.
	rega.connections = rega.connections[:0]
	for i, ni := 0, len(acon); i < ni-1; i++ {
		rega.connections = append(rega.connections, acon[(insa+1+i)%ni])
	}
	for i, ni := 0, len(bcon); i < ni-1; i++ {
		rega.connections = append(rega.connections, bcon[(insb+1+i)%ni])
	}
	rega.connections = removeAdjacentDuplicates(rega.connections)

	for _, f := range regb.floors {
		addUniqueFloorRegion(rega, f)
	}
	rega.spanCount += regb.spanCount
	regb.spanCount = 0
	regb.connections = nil

	return true
}

func isRegionConnectedToBorder(reg *rcRegion) bool {
	// Region is connected to border if
	// one of the neighbours is null id.
	for _, c := range reg.connections {
		if c == 0 {
			return true
		}
	}
	return false
}

func isSolidEdge(chf *RcCompactHeightfield, srcReg []int, x, z, i, dir int) bool {
	s := &chf.Spans[i]
	r := 0
	if rcGetCon(s, dir) != RC_NOT_CONNECTED {
		_, _, ai := neighborIndex(chf, x, z, s, dir)
		r = srcReg[ai]
	}
	return r != srcReg[i]
}

func walkContour(x, z, i, dir int, chf *RcCompactHeightfield, srcReg []int) []int {
	startDir := dir
	starti := i

	ss := &chf.Spans[i]
	curReg := 0
	if rcGetCon(ss, dir) != RC_NOT_CONNECTED {
		_, _, ai := neighborIndex(chf, x, z, ss, dir)
		curReg = srcReg[ai]
	}
	cont := []int{curReg}

	for iter := 1; iter < 40000; iter++ {
		s := &chf.Spans[i]

		if isSolidEdge(chf, srcReg, x, z, i, dir) {
			// Choose the edge corner
			r := 0
			if rcGetCon(s, dir) != RC_NOT_CONNECTED {
				_, _, ai := neighborIndex(chf, x, z, s, dir)
				r = srcReg[ai]
			}
			if r != curReg {
				curReg = r
				cont = append(cont, curReg)
			}
			dir = (dir + 1) & 0x3 // Rotate CW
		} else {
			if rcGetCon(s, dir) == RC_NOT_CONNECTED {
				// Should not happen.
				return cont
			}
			x, z, i = neighborIndex(chf, x, z, s, dir)
			dir = (dir + 3) & 0x3 // Rotate CCW
		}

		if starti == i && startDir == dir {
			break
		}
	}

	// Remove adjacent duplicates.
	if len(cont) > 1 {
		cont = removeAdjacentDuplicates(cont)
	}
	return cont
}

// compressRegionIds renumbers the surviving regions from 1, rewrites srcReg and
// returns the new maximum region id.
func compressRegionIds(regions []*rcRegion, chf *RcCompactHeightfield, srcReg []int) int {
	for _, reg := range regions {
		reg.remap = reg.id != 0 && reg.id&RC_BORDER_REG == 0
	}

	regIdGen := 0
	for i, reg := range regions {
		if !reg.remap {
			continue
		}
		oldId := reg.id
		regIdGen++
		newId := regIdGen
		for _, other := range regions[i:] {
			if other.id == oldId {
				other.id = newId
				other.remap = false
			}
		}
	}

	// Remap regions.
	for i := 0; i < chf.SpanCount; i++ {
		if srcReg[i]&RC_BORDER_REG == 0 {
			srcReg[i] = regions[srcReg[i]].id
		}
	}
	return regIdGen
}

func mergeAndFilterRegions(ctx *RcContext, minRegionArea, mergeRegionSize int,
	maxRegionId *int, chf *RcCompactHeightfield, srcReg []int) (overlaps []int) {
	w := chf.Width
	h := chf.Height

	nreg := *maxRegionId + 1
	regions := newRegions(nreg)

	// Find edge of a region and find connections around the contour.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			ni := c.Index + c.Count
			for i := c.Index; i < ni; i++ {
				r := srcReg[i]
				if r == 0 || r >= nreg {
					continue
				}

				reg := regions[r]
				reg.spanCount++

				// Update floors.
				for j := c.Index; j < ni; j++ {
					if i == j {
						continue
					}
					floorId := srcReg[j]
					if floorId == 0 || floorId >= nreg {
						continue
					}
					if floorId == r {
						reg.overlap = true
					}
					addUniqueFloorRegion(reg, floorId)
				}

				// Have found contour
				if len(reg.connections) > 0 {
					continue
				}

				reg.areaType = chf.Areas[i]

				// Check if this cell is next to a border.
				ndir := -1
				for dir := 0; dir < 4; dir++ {
					if isSolidEdge(chf, srcReg, x, z, i, dir) {
						ndir = dir
						break
					}
				}

				if ndir != -1 {
					// The cell is at border.
					// Walk around the contour to find all the neighbours.
					reg.connections = walkContour(x, z, i, ndir, chf, srcReg)
				}
			}
		}
	}

	// Remove too small regions.
	stack := NewStack[int](32)
	trace := NewStack[int](32)
	for i := 0; i < nreg; i++ {
		reg := regions[i]
		if reg.id == 0 || reg.id&RC_BORDER_REG != 0 {
			continue
		}
		if reg.spanCount == 0 || reg.visited {
			continue
		}

		// Count the total size of all the connected regions.
		// Also keep track of the regions connects to a tile border.
		connectsToBorder := false
		spanCount := 0
		stack.Clear()
		trace.Clear()

		reg.visited = true
		stack.Push(i)

		for !stack.Empty() {
			ri := stack.Pop()
			creg := regions[ri]

			spanCount += creg.spanCount
			trace.Push(ri)

			for _, con := range creg.connections {
				if con&RC_BORDER_REG != 0 {
					connectsToBorder = true
					continue
				}
				neireg := regions[con]
				if neireg.visited {
					continue
				}
				if neireg.id == 0 || neireg.id&RC_BORDER_REG != 0 {
					continue
				}
				// Visit
				stack.Push(neireg.id)
				neireg.visited = true
			}
		}

		// If the accumulated regions size is too small, remove it.
		// Do not remove areas which connect to tile borders
		// as their size cannot be estimated correctly and removing them
		// can potentially remove necessary areas.
		if spanCount < minRegionArea && !connectsToBorder {
			// Kill all visited regions.
			for _, t := range trace.Data() {
				regions[t].spanCount = 0
				regions[t].id = 0
			}
		}
	}

	// Merge too small regions to neighbour regions.
	for mergeCount := 1; mergeCount > 0; {
		mergeCount = 0
		for i := 0; i < nreg; i++ {
			reg := regions[i]
			if reg.id == 0 || reg.id&RC_BORDER_REG != 0 {
				continue
			}
			if reg.overlap || reg.spanCount == 0 {
				continue
			}

			// Check to see if the region should be merged.
			if reg.spanCount > mergeRegionSize && isRegionConnectedToBorder(reg) {
				continue
			}

			// Small region with more than 1 connection.
			// Or region which is not connected to a border at all.
			// Find smallest neighbour region that connects to this one.
			smallest := 0xfffffff
			mergeId := reg.id
			for _, con := range reg.connections {
				if con&RC_BORDER_REG != 0 {
					continue
				}
				mreg := regions[con]
				if mreg.id == 0 || mreg.id&RC_BORDER_REG != 0 || mreg.overlap {
					continue
				}
				if mreg.spanCount < smallest && canMergeWithRegion(reg, mreg) && canMergeWithRegion(mreg, reg) {
					smallest = mreg.spanCount
					mergeId = mreg.id
				}
			}

			// Found new id.
			if mergeId == reg.id {
				continue
			}
			oldId := reg.id
			target := regions[mergeId]

			// Merge neighbours.
			if !mergeRegions(target, reg) {
				continue
			}
			// Fixup regions pointing to current region.
			for _, other := range regions {
				if other.id == 0 || other.id&RC_BORDER_REG != 0 {
					continue
				}
				// If another region was already merged into current region
				// change the nid of the previous region too.
				if other.id == oldId {
					other.id = mergeId
				}
				// Replace the current region with the new one if the
				// current regions is neighbour.
				replaceNeighbour(other, oldId, mergeId)
			}
			mergeCount++
		}
	}

	*maxRegionId = compressRegionIds(regions, chf, srcReg)

	// Return regions that we found to be overlapping.
	for _, reg := range regions {
		if reg.overlap {
			overlaps = append(overlaps, reg.id)
		}
	}
	return overlaps
}

func addUniqueConnection(reg *rcRegion, n int) {
	for _, c := range reg.connections {
		if c == n {
			return
		}
	}
	reg.connections = append(reg.connections, n)
}

func mergeAndFilterLayerRegions(ctx *RcContext, minRegionArea int,
	maxRegionId *int, chf *RcCompactHeightfield, srcReg []int) {
	w := chf.Width
	h := chf.Height

	nreg := *maxRegionId + 1
	regions := newRegions(nreg)

	// Find region neighbours and overlapping regions.
	lregs := make([]int, 0, 32)
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := chf.Cells[x+z*w]
			lregs = lregs[:0]

			for i := c.Index; i < c.Index+c.Count; i++ {
				s := &chf.Spans[i]
				ri := srcReg[i]
				if ri == 0 || ri >= nreg {
					continue
				}
				reg := regions[ri]

				reg.spanCount++
				reg.areaType = chf.Areas[i]
				reg.ymin = min(reg.ymin, s.Y)
				reg.ymax = max(reg.ymax, s.Y)

				// Collect all region layers.
				lregs = append(lregs, ri)

				// Update neighbours
				for dir := 0; dir < 4; dir++ {
					if rcGetCon(s, dir) == RC_NOT_CONNECTED {
						continue
					}
					_, _, ai := neighborIndex(chf, x, z, s, dir)
					rai := srcReg[ai]
					if rai > 0 && rai < nreg && rai != ri {
						addUniqueConnection(reg, rai)
					}
					if rai&RC_BORDER_REG != 0 {
						reg.connectsToBorder = true
					}
				}
			}

			// Update overlapping regions.
			for i := 0; i < len(lregs)-1; i++ {
				for j := i + 1; j < len(lregs); j++ {
					if lregs[i] != lregs[j] {
						addUniqueFloorRegion(regions[lregs[i]], lregs[j])
						addUniqueFloorRegion(regions[lregs[j]], lregs[i])
					}
				}
			}
		}
	}

	// Create 2D layers from regions.
	layerId := 1
	for _, reg := range regions {
		reg.id = 0
	}

	// Merge montone regions to create non-overlapping areas.
	var queue []int
	for i := 1; i < nreg; i++ {
		root := regions[i]
		// Skip already visited.
		if root.id != 0 {
			continue
		}

		// Start search.
		root.id = layerId
		queue = append(queue[:0], i)

		for len(queue) > 0 {
			// Pop front
			reg := regions[queue[0]]
			queue = queue[1:]

			for _, nei := range reg.connections {
				regn := regions[nei]
				// Skip already visited.
				if regn.id != 0 {
					continue
				}
				// Skip if different area type, do not connect regions with different area type.
				if reg.areaType != regn.areaType {
					continue
				}
				// Skip if the neighbour is overlapping root region.
				overlap := false
				for _, f := range root.floors {
					if f == nei {
						overlap = true
						break
					}
				}
				if overlap {
					continue
				}

				// Deepen
				queue = append(queue, nei)

				// Mark layer id
				regn.id = layerId
				// Merge current layers to root.
				for _, f := range regn.floors {
					addUniqueFloorRegion(root, f)
				}
				root.ymin = min(root.ymin, regn.ymin)
				root.ymax = max(root.ymax, regn.ymax)
				root.spanCount += regn.spanCount
				regn.spanCount = 0
				root.connectsToBorder = root.connectsToBorder || regn.connectsToBorder
			}
		}

		layerId++
	}

	// Remove small regions
	for _, reg := range regions {
		if reg.spanCount > 0 && reg.spanCount < minRegionArea && !reg.connectsToBorder {
			id := reg.id
			for _, other := range regions {
				if other.id == id {
					other.id = 0
				}
			}
		}
	}

	*maxRegionId = compressRegionIds(regions, chf, srcReg)
}

// / Builds region data for the heightfield using watershed partitioning.
// /
// / Non-null regions will consist of connected, non-overlapping walkable spans that form a single contour.
// / Contours will form simple polygons.
// /
// / If multiple regions form an area that is smaller than @p minRegionArea, then all spans will be
// / re-assigned to the zero (null) region.
// /
// / Watershed partitioning can result in smaller than necessary regions, especially in diagonal corridors.
// / @p mergeRegionArea helps reduce unnecessarily small regions.
func RcBuildRegions(ctx *RcContext, chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) bool {
	ctx.StartTimer(RC_TIMER_BUILD_REGIONS)
	defer ctx.StopTimer(RC_TIMER_BUILD_REGIONS)

	if chf.SpanCount > 0 && len(chf.Dist) != chf.SpanCount {
		ctx.Errorf("rcBuildRegions: Distance field has not been built.")
		return false
	}

	ctx.StartTimer(RC_TIMER_BUILD_REGIONS_WATERSHED)

	const LOG_NB_STACKS = 3
	const NB_STACKS = 1 << LOG_NB_STACKS
	lvlStacks := make([]*Stack[levelStackEntry], NB_STACKS)
	for i := range lvlStacks {
		lvlStacks[i] = NewStack[levelStackEntry](256)
	}
	stack := NewStack[levelStackEntry](256)

	srcReg := make([]int, chf.SpanCount)
	srcDist := make([]int, chf.SpanCount)

	regionId := 1
	level := (chf.MaxDistance + 1) &^ 1

	// expandIters defines how much the watershed "overflows" and simplifies the regions.
	const expandIters = 8

	regionId = paintBorderRegions(chf, borderSize, srcReg, regionId)
	chf.BorderSize = borderSize

	sId := -1
	for level > 0 {
		if level >= 2 {
			level -= 2
		} else {
			level = 0
		}
		sId = (sId + 1) & (NB_STACKS - 1)

		if sId == 0 {
			sortCellsByLevel(level, chf, srcReg, lvlStacks, 1)
		} else {
			appendStacks(lvlStacks[sId-1], lvlStacks[sId], srcReg) // copy left overs from last level
		}

		// Expand current regions until no empty connected cells found.
		ctx.StartTimer(RC_TIMER_BUILD_REGIONS_EXPAND)
		expandRegions(expandIters, level, chf, srcReg, srcDist, lvlStacks[sId], false)
		ctx.StopTimer(RC_TIMER_BUILD_REGIONS_EXPAND)

		// Mark new regions with IDs.
		ctx.StartTimer(RC_TIMER_BUILD_REGIONS_FLOOD)
		for _, current := range lvlStacks[sId].Data() {
			i := current.index
			if i < 0 || srcReg[i] != 0 {
				continue
			}
			if floodRegion(current.x, current.z, i, level, regionId, chf, srcReg, srcDist, stack) {
				if regionId == 0xFFFF {
					ctx.StopTimer(RC_TIMER_BUILD_REGIONS_FLOOD)
					ctx.StopTimer(RC_TIMER_BUILD_REGIONS_WATERSHED)
					ctx.Errorf("rcBuildRegions: Region ID overflow")
					return false
				}
				regionId++
			}
		}
		ctx.StopTimer(RC_TIMER_BUILD_REGIONS_FLOOD)
	}

	// Expand current regions until no empty connected cells found.
	expandRegions(expandIters*8, 0, chf, srcReg, srcDist, stack, true)

	ctx.StopTimer(RC_TIMER_BUILD_REGIONS_WATERSHED)

	// Merge regions and filter out small regions.
	ctx.StartTimer(RC_TIMER_BUILD_REGIONS_FILTER)
	chf.MaxRegions = regionId
	overlaps := mergeAndFilterRegions(ctx, minRegionArea, mergeRegionArea, &chf.MaxRegions, chf, srcReg)
	// If overlapping regions were found during merging, split those regions.
	if len(overlaps) > 0 {
		ctx.Errorf("rcBuildRegions: %d overlapping regions.", len(overlaps))
	}
	ctx.StopTimer(RC_TIMER_BUILD_REGIONS_FILTER)

	// Write the result out.
	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}

	return true
}

type rcSweepSpan struct {
	rid int // row id
	id  int // region id
	ns  int // number samples
	nei int // neighbour id
}

// sweepRegions assigns per-row regions and merges them with the previous row
// where the connection is unique. It returns the next free region id.
func sweepRegions(chf *RcCompactHeightfield, borderSize int, srcReg []int, id int) int {
	w := chf.Width
	h := chf.Height

	sweeps := make([]rcSweepSpan, max(w, h)+1)

	// Sweep one line at a time.
	for z := borderSize; z < h-borderSize; z++ {
		// Collect spans from this row.
		prev := make([]int, id+1)
		rid := 1

		for x := borderSize; x < w-borderSize; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				s := &chf.Spans[i]
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}

				// -x
				previd := 0
				if rcGetCon(s, 0) != RC_NOT_CONNECTED {
					_, _, ai := neighborIndex(chf, x, z, s, 0)
					if srcReg[ai]&RC_BORDER_REG == 0 && chf.Areas[i] == chf.Areas[ai] {
						previd = srcReg[ai]
					}
				}

				if previd == 0 {
					previd = rid
					rid++
					if previd >= len(sweeps) {
						sweeps = append(sweeps, make([]rcSweepSpan, previd-len(sweeps)+1)...)
					}
					sweeps[previd] = rcSweepSpan{rid: previd}
				}

				// -z
				if rcGetCon(s, 3) != RC_NOT_CONNECTED {
					_, _, ai := neighborIndex(chf, x, z, s, 3)
					if nr := srcReg[ai]; nr != 0 && nr&RC_BORDER_REG == 0 && chf.Areas[i] == chf.Areas[ai] {
						if sweeps[previd].nei == 0 || sweeps[previd].nei == nr {
							sweeps[previd].nei = nr
							sweeps[previd].ns++
							prev[nr]++
						} else {
							sweeps[previd].nei = rcNullNei
						}
					}
				}

				srcReg[i] = previd
			}
		}

		// Create unique ID.
		for i := 1; i < rid; i++ {
			if sweeps[i].nei != rcNullNei && sweeps[i].nei != 0 && prev[sweeps[i].nei] == sweeps[i].ns {
				sweeps[i].id = sweeps[i].nei
			} else {
				sweeps[i].id = id
				id++
			}
		}

		// Remap IDs
		for x := borderSize; x < w-borderSize; x++ {
			c := chf.Cells[x+z*w]
			for i := c.Index; i < c.Index+c.Count; i++ {
				if srcReg[i] > 0 && srcReg[i] < rid {
					srcReg[i] = sweeps[srcReg[i]].id
				}
			}
		}
	}
	return id
}

// / Builds region data for the heightfield using simple monotone partitioning.
// /
// / Monotone partitioning creates regions from sweeping rows and does not need
// / the distance field. It is fast but may create long, thin regions.
func RcBuildRegionsMonotone(ctx *RcContext, chf *RcCompactHeightfield, borderSize, minRegionArea, mergeRegionArea int) bool {
	ctx.StartTimer(RC_TIMER_BUILD_REGIONS)
	defer ctx.StopTimer(RC_TIMER_BUILD_REGIONS)

	srcReg := make([]int, chf.SpanCount)

	id := paintBorderRegions(chf, borderSize, srcReg, 1)
	chf.BorderSize = borderSize
	id = sweepRegions(chf, borderSize, srcReg, id)

	// Merge regions and filter out small regions.
	// Monotone partitioning does not generate overlapping regions.
	ctx.StartTimer(RC_TIMER_BUILD_REGIONS_FILTER)
	chf.MaxRegions = id
	mergeAndFilterRegions(ctx, minRegionArea, mergeRegionArea, &chf.MaxRegions, chf, srcReg)
	ctx.StopTimer(RC_TIMER_BUILD_REGIONS_FILTER)

	// Store the result out.
	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}

	return true
}

// / Builds region data for the heightfield by partitioning the heightfield in non-overlapping layers.
func RcBuildLayerRegions(ctx *RcContext, chf *RcCompactHeightfield, borderSize, minRegionArea int) bool {
	ctx.StartTimer(RC_TIMER_BUILD_REGIONS)
	defer ctx.StopTimer(RC_TIMER_BUILD_REGIONS)

	srcReg := make([]int, chf.SpanCount)

	id := paintBorderRegions(chf, borderSize, srcReg, 1)
	chf.BorderSize = borderSize
	id = sweepRegions(chf, borderSize, srcReg, id)

	// Merge monotone regions to layers and remove small regions.
	ctx.StartTimer(RC_TIMER_BUILD_REGIONS_FILTER)
	chf.MaxRegions = id
	mergeAndFilterLayerRegions(ctx, minRegionArea, &chf.MaxRegions, chf, srcReg)
	ctx.StopTimer(RC_TIMER_BUILD_REGIONS_FILTER)

	// Store the result out.
	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}

	return true
}
