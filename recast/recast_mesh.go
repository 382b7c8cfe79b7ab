package recast

import (
	"github.com/gorustyt/navbuild/common"
)

const (
	vertexBucketCount = 1 << 12
	// indexRemovable marks a triangulation index whose vertex can be clipped as an ear.
	indexRemovable = 0x80000000
	indexMask      = 0x0fffffff
)

type rcEdge struct {
	vert     [2]int
	polyEdge [2]int
	poly     [2]int
}

func buildMeshAdjacency(polys []int, npolys, nverts, vertsPerPoly int) bool {
	// Based on code by Eric Lengyel from:
	// https://web.archive.org/web/20080704083314/http://www.terathon.com/code/edges.php

	maxEdgeCount := npolys * vertsPerPoly
	firstEdge := make([]int, nverts)
	nextEdge := make([]int, maxEdgeCount)
	edges := make([]rcEdge, 0, maxEdgeCount)

	for i := range firstEdge {
		firstEdge[i] = RC_MESH_NULL_IDX
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0 := t[j]
			v1 := t[0]
			if j+1 < vertsPerPoly && t[j+1] != RC_MESH_NULL_IDX {
				v1 = t[j+1]
			}
			if v0 < v1 {
				edgeCount := len(edges)
				edges = append(edges, rcEdge{
					vert:     [2]int{v0, v1},
					poly:     [2]int{i, i},
					polyEdge: [2]int{j, 0},
				})
				// Insert edge
				nextEdge[edgeCount] = firstEdge[v0]
				firstEdge[v0] = edgeCount
			}
		}
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == RC_MESH_NULL_IDX {
				break
			}
			v0 := t[j]
			v1 := t[0]
			if j+1 < vertsPerPoly && t[j+1] != RC_MESH_NULL_IDX {
				v1 = t[j+1]
			}
			if v0 > v1 {
				for e := firstEdge[v1]; e != RC_MESH_NULL_IDX; e = nextEdge[e] {
					edge := &edges[e]
					if edge.vert[1] == v0 && edge.poly[0] == edge.poly[1] {
						edge.poly[1] = i
						edge.polyEdge[1] = j
						break
					}
				}
			}
		}
	}

	// Store adjacency
	for _, e := range edges {
		if e.poly[0] != e.poly[1] {
			p0 := polys[e.poly[0]*vertsPerPoly*2:]
			p1 := polys[e.poly[1]*vertsPerPoly*2:]
			p0[vertsPerPoly+e.polyEdge[0]] = e.poly[1]
			p1[vertsPerPoly+e.polyEdge[1]] = e.poly[0]
		}
	}
	return true
}

func computeVertexHash(x, y, z int) int {
	const h1 = 0x8da6b343 // Large multiplicative constants;
	const h2 = 0xd8163841 // here arbitrarily chosen primes
	const h3 = 0xcb1ab31f
	n := uint32(h1*x + h2*y + h3*z)
	return int(n & (vertexBucketCount - 1))
}

// addVertex returns the index of the welded vertex (x, y, z), appending it when new.
func addVertex(x, y, z int, verts []int, firstVert, nextVert []int, nv *int) int {
	bucket := computeVertexHash(x, 0, z)
	i := firstVert[bucket]

	for i != -1 {
		v := common.GetVert3(verts, i)
		if v[0] == x && common.Abs(v[1]-y) <= 2 && v[2] == z {
			return i
		}
		i = nextVert[i] // next
	}

	// Could not find, create new.
	i = *nv
	*nv++
	v := common.GetVert3(verts, i)
	v[0] = x
	v[1] = y
	v[2] = z
	nextVert[i] = firstVert[bucket]
	firstVert[bucket] = i

	return i
}

func triVert(verts []int, indices []int, i int) []int {
	return common.GetVert4(verts, indices[i]&indexMask)
}

// Returns T iff (v_i, v_j) is a proper internal *or* external
// diagonal of P, *ignoring edges incident to v_i and v_j*.
func diagonalie(i, j, n int, verts []int, indices []int, loose bool) bool {
	d0 := triVert(verts, indices, i)
	d1 := triVert(verts, indices, j)

	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := common.Next(k, n)
		// Skip edges incident to i or j
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := triVert(verts, indices, k)
		p1 := triVert(verts, indices, k1)

		if common.Vequal2D(d0, p0) || common.Vequal2D(d1, p0) || common.Vequal2D(d0, p1) || common.Vequal2D(d1, p1) {
			continue
		}
		if loose {
			if common.IntersectProp(d0, d1, p0, p1) {
				return false
			}
		} else if common.Intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

// Returns true iff the diagonal (i,j) is strictly internal to the
// polygon P in the neighborhood of the i endpoint.
func inCone(i, j, n int, verts []int, indices []int) bool {
	pi := triVert(verts, indices, i)
	pj := triVert(verts, indices, j)
	pi1 := triVert(verts, indices, common.Next(i, n))
	pin1 := triVert(verts, indices, common.Prev(i, n))

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if common.LeftOn(pin1, pi, pi1) {
		return common.Left(pi, pj, pin1) && common.Left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(common.LeftOn(pi, pj, pi1) && common.LeftOn(pj, pi, pin1))
}

func inConeLoose(i, j, n int, verts []int, indices []int) bool {
	pi := triVert(verts, indices, i)
	pj := triVert(verts, indices, j)
	pi1 := triVert(verts, indices, common.Next(i, n))
	pin1 := triVert(verts, indices, common.Prev(i, n))

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if common.LeftOn(pin1, pi, pi1) {
		return common.LeftOn(pi, pj, pin1) && common.LeftOn(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(common.LeftOn(pi, pj, pi1) && common.LeftOn(pj, pi, pin1))
}

// Returns T iff (v_i, v_j) is a proper internal
// diagonal of P.
func diagonal(i, j, n int, verts []int, indices []int) bool {
	return inCone(i, j, n, verts, indices) && diagonalie(i, j, n, verts, indices, false)
}

func diagonalLoose(i, j, n int, verts []int, indices []int) bool {
	return inConeLoose(i, j, n, verts, indices) && diagonalie(i, j, n, verts, indices, true)
}

// triangulate ear-clips the polygon given by indices into verts (4 ints per vertex)
// and writes the triangles to tris. A negative count means the contour was malformed
// and only the first -n triangles are valid.
func triangulate(n int, verts, indices []int, tris []int) int {
	ntris := 0
	dst := 0

	// The last bit of the index is used to indicate if the vertex can be removed.
	for i := 0; i < n; i++ {
		i1 := common.Next(i, n)
		i2 := common.Next(i1, n)
		if diagonal(i, i2, n, verts, indices) {
			indices[i1] |= indexRemovable
		}
	}

	for n > 3 {
		minLen := -1
		mini := -1
		for i := 0; i < n; i++ {
			i1 := common.Next(i, n)
			if indices[i1]&indexRemovable != 0 {
				p0 := triVert(verts, indices, i)
				p2 := triVert(verts, indices, common.Next(i1, n))

				dx := p2[0] - p0[0]
				dz := p2[2] - p0[2]
				length := dx*dx + dz*dz

				if minLen < 0 || length < minLen {
					minLen = length
					mini = i
				}
			}
		}

		if mini == -1 {
			// We might get here because the contour has overlapping segments, like this:
			//
			//  A o-o=====o---o B
			//   /  |C   D|    \.
			//  o   o     o     o
			//  :   :     :     :
			// We'll try to recover by loosing up the inCone test a bit so that a diagonal
			// like A-B or C-D can be found and we can continue.
			minLen = -1
			mini = -1
			for i := 0; i < n; i++ {
				i1 := common.Next(i, n)
				i2 := common.Next(i1, n)
				if diagonalLoose(i, i2, n, verts, indices) {
					p0 := triVert(verts, indices, i)
					p2 := triVert(verts, indices, common.Next(i2, n))
					dx := p2[0] - p0[0]
					dz := p2[2] - p0[2]
					length := dx*dx + dz*dz

					if minLen < 0 || length < minLen {
						minLen = length
						mini = i
					}
				}
			}
			if mini == -1 {
				// The contour is messed up. This sometimes happens
				// if the contour simplification is too aggressive.
				return -ntris
			}
		}

		i := mini
		i1 := common.Next(i, n)
		i2 := common.Next(i1, n)

		tris[dst+0] = indices[i] & indexMask
		tris[dst+1] = indices[i1] & indexMask
		tris[dst+2] = indices[i2] & indexMask
		dst += 3
		ntris++

		// Removes P[i1] by copying P[i+1]...P[n-1] left one index.
		n--
		copy(indices[i1:n], indices[i1+1:n+1])

		if i1 >= n {
			i1 = 0
		}
		i = common.Prev(i1, n)

		// Update diagonal flags.
		if diagonal(common.Prev(i, n), i1, n, verts, indices) {
			indices[i] |= indexRemovable
		} else {
			indices[i] &= indexMask
		}

		if diagonal(i, common.Next(i1, n), n, verts, indices) {
			indices[i1] |= indexRemovable
		} else {
			indices[i1] &= indexMask
		}
	}

	// Append the remaining triangle.
	tris[dst+0] = indices[0] & indexMask
	tris[dst+1] = indices[1] & indexMask
	tris[dst+2] = indices[2] & indexMask
	ntris++

	return ntris
}

func countPolyVerts(p []int, nvp int) int {
	for i := 0; i < nvp; i++ {
		if p[i] == RC_MESH_NULL_IDX {
			return i
		}
	}
	return nvp
}

func uleft(a, b, c []int) bool {
	return (b[0]-a[0])*(c[2]-a[2])-(c[0]-a[0])*(b[2]-a[2]) < 0
}

// getPolyMergeValue returns the squared length of the shared edge of pa and pb,
// or -1 when the polygons cannot be merged into a convex polygon of at most nvp vertices.
func getPolyMergeValue(pa, pb []int, verts []int, nvp int) (value, ea, eb int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// If the merged polygon would be too big, do not merge.
	if na+nb-2 > nvp {
		return -1, -1, -1
	}

	// Check if the polygons share an edge.
	ea = -1
	eb = -1

	for i := 0; i < na; i++ {
		va0 := pa[i]
		va1 := pa[(i+1)%na]
		if va0 > va1 {
			va0, va1 = va1, va0
		}
		for j := 0; j < nb; j++ {
			vb0 := pb[j]
			vb1 := pb[(j+1)%nb]
			if vb0 > vb1 {
				vb0, vb1 = vb1, vb0
			}
			if va0 == vb0 && va1 == vb1 {
				ea = i
				eb = j
				break
			}
		}
	}

	// No common edge, cannot merge.
	if ea == -1 || eb == -1 {
		return -1, ea, eb
	}

	// Check to see if the merged polygon would be convex.
	va := pa[(ea+na-1)%na]
	vb := pa[ea]
	vc := pb[(eb+2)%nb]
	if !uleft(common.GetVert3(verts, va), common.GetVert3(verts, vb), common.GetVert3(verts, vc)) {
		return -1, ea, eb
	}

	va = pb[(eb+nb-1)%nb]
	vb = pb[eb]
	vc = pa[(ea+2)%na]
	if !uleft(common.GetVert3(verts, va), common.GetVert3(verts, vb), common.GetVert3(verts, vc)) {
		return -1, ea, eb
	}

	va = pa[ea]
	vb = pa[(ea+1)%na]

	dx := verts[va*3+0] - verts[vb*3+0]
	dz := verts[va*3+2] - verts[vb*3+2]

	return dx*dx + dz*dz, ea, eb
}

func mergePolyVerts(pa, pb []int, ea, eb int, tmp []int, nvp int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// Merge polygons.
	for i := 0; i < nvp; i++ {
		tmp[i] = RC_MESH_NULL_IDX
	}
	n := 0
	// Add pa
	for i := 0; i < na-1; i++ {
		tmp[n] = pa[(ea+1+i)%na]
		n++
	}
	// Add pb
	for i := 0; i < nb-1; i++ {
		tmp[n] = pb[(eb+1+i)%nb]
		n++
	}

	copy(pa[:nvp], tmp[:nvp])
}

// mergePolys greedily merges the npolys polygons (nvp stride) along their longest
// shared edges. onMerge is called with the indices of the kept and the removed
// polygon before the last polygon is moved into the removed slot.
func mergePolys(polys []int, npolys, nvp int, verts []int, tmpPoly []int, onMerge func(pa, pb, last int)) int {
	for {
		// Find best polygons to merge.
		bestMergeVal := 0
		bestPa, bestPb, bestEa, bestEb := 0, 0, 0, 0

		for j := 0; j < npolys-1; j++ {
			pj := polys[j*nvp : j*nvp+nvp]
			for k := j + 1; k < npolys; k++ {
				pk := polys[k*nvp : k*nvp+nvp]
				v, ea, eb := getPolyMergeValue(pj, pk, verts, nvp)
				if v > bestMergeVal {
					bestMergeVal = v
					bestPa = j
					bestPb = k
					bestEa = ea
					bestEb = eb
				}
			}
		}

		if bestMergeVal <= 0 {
			// Could not merge any polygons, stop.
			return npolys
		}

		// Found best, merge.
		pa := polys[bestPa*nvp : bestPa*nvp+nvp]
		pb := polys[bestPb*nvp : bestPb*nvp+nvp]
		mergePolyVerts(pa, pb, bestEa, bestEb, tmpPoly, nvp)
		if onMerge != nil {
			onMerge(bestPa, bestPb, npolys-1)
		}
		if bestPb != npolys-1 {
			copy(pb, polys[(npolys-1)*nvp:npolys*nvp])
		}
		npolys--
	}
}

func canRemoveVertex(mesh *RcPolyMesh, rem int) bool {
	nvp := mesh.Nvp

	// Count number of polygons to remove.
	numTouchedVerts := 0
	numRemainingEdges := 0
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		numRemoved := 0
		numVerts := 0
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				numTouchedVerts++
				numRemoved++
			}
			numVerts++
		}
		if numRemoved > 0 {
			numRemainingEdges += numVerts - (numRemoved + 1)
		}
	}

	// There would be too few edges remaining to create a polygon.
	// This can happen for example when a tip of a triangle is marked
	// as deletion, but there are no other polys that share the vertex.
	// In this case, the vertex should not be removed.
	if numRemainingEdges <= 2 {
		return false
	}

	// Find edges which share the removed vertex.
	edges := make([][3]int, 0, numTouchedVerts*2)
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)

		// Collect edges which touches the removed vertex.
		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			if p[j] != rem && p[k] != rem {
				continue
			}
			// Arrange edge so that a=rem.
			a := p[j]
			b := p[k]
			if b == rem {
				a, b = b, a
			}

			// Check if the edge exists
			exists := false
			for m := range edges {
				if edges[m][1] == b {
					// Exists, increment vertex share count.
					edges[m][2]++
					exists = true
				}
			}
			// Add new edge.
			if !exists {
				edges = append(edges, [3]int{a, b, 1})
			}
		}
	}

	// There should be no more than 2 open edges.
	// This catches the case that two non-adjacent polygons
	// share the removed vertex. In that case, do not remove the vertex.
	numOpenEdges := 0
	for _, e := range edges {
		if e[2] < 2 {
			numOpenEdges++
		}
	}
	return numOpenEdges <= 2
}

func removeVertex(ctx *RcContext, mesh *RcPolyMesh, rem, maxTris int) bool {
	nvp := mesh.Nvp

	// Count number of polygons to remove.
	numRemovedVerts := 0
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				numRemovedVerts++
			}
		}
	}

	maxHole := numRemovedVerts * nvp
	edges := make([][4]int, 0, maxHole)
	hole := make([]int, 0, maxHole)
	hreg := make([]int, 0, maxHole)
	harea := make([]int, 0, maxHole)

	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2 : (i+1)*nvp*2]
		nv := countPolyVerts(p, nvp)
		hasRem := false
		for j := 0; j < nv; j++ {
			if p[j] == rem {
				hasRem = true
			}
		}
		if !hasRem {
			continue
		}
		// Collect edges which does not touch the removed vertex.
		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			if p[j] != rem && p[k] != rem {
				edges = append(edges, [4]int{p[k], p[j], mesh.Regs[i], mesh.Areas[i]})
			}
		}
		// Remove the polygon.
		last := mesh.Npolys - 1
		if i != last {
			copy(p[:nvp], mesh.Polys[last*nvp*2:last*nvp*2+nvp])
		}
		for j := nvp; j < nvp*2; j++ {
			p[j] = RC_MESH_NULL_IDX
		}
		mesh.Regs[i] = mesh.Regs[last]
		mesh.Areas[i] = mesh.Areas[last]
		mesh.Npolys--
		i--
	}

	// Remove vertex.
	copy(mesh.Verts[rem*3:(mesh.Nverts-1)*3], mesh.Verts[(rem+1)*3:mesh.Nverts*3])
	mesh.Nverts--

	// Adjust indices to match the removed vertex layout.
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		nv := countPolyVerts(p, nvp)
		for j := 0; j < nv; j++ {
			if p[j] > rem {
				p[j]--
			}
		}
	}
	for i := range edges {
		if edges[i][0] > rem {
			edges[i][0]--
		}
		if edges[i][1] > rem {
			edges[i][1]--
		}
	}

	if len(edges) == 0 {
		return true
	}

	// Start with one vertex, keep appending connected
	// segments to the start and end of the hole.
	hole = append(hole, edges[0][0])
	hreg = append(hreg, edges[0][2])
	harea = append(harea, edges[0][3])

	for len(edges) > 0 {
		match := false

		for i := 0; i < len(edges); i++ {
			ea := edges[i][0]
			eb := edges[i][1]
			r := edges[i][2]
			a := edges[i][3]
			add := false
			if hole[0] == eb {
				// The segment matches the beginning of the hole boundary.
				if len(hole) >= maxHole {
					ctx.Errorf("removeVertex: Too many hole vertices (max: %d).", maxHole)
					return false
				}
				hole = append([]int{ea}, hole...)
				hreg = append([]int{r}, hreg...)
				harea = append([]int{a}, harea...)
				add = true
			} else if hole[len(hole)-1] == ea {
				// The segment matches the end of the hole boundary.
				if len(hole) >= maxHole {
					ctx.Errorf("removeVertex: Too many hole vertices (max: %d).", maxHole)
					return false
				}
				hole = append(hole, eb)
				hreg = append(hreg, r)
				harea = append(harea, a)
				add = true
			}
			if add {
				// The edge segment was added, remove it.
				edges[i] = edges[len(edges)-1]
				edges = edges[:len(edges)-1]
				match = true
				i--
			}
		}

		if !match {
			break
		}
	}

	nhole := len(hole)
	tris := make([]int, nhole*3)
	tverts := make([]int, nhole*4)
	thole := make([]int, nhole)

	// Generate temp vertex array for triangulation.
	for i, pi := range hole {
		tverts[i*4+0] = mesh.Verts[pi*3+0]
		tverts[i*4+1] = mesh.Verts[pi*3+1]
		tverts[i*4+2] = mesh.Verts[pi*3+2]
		tverts[i*4+3] = 0
		thole[i] = i
	}

	// Triangulate the hole.
	ntris := triangulate(nhole, tverts, thole, tris)
	if ntris < 0 {
		ntris = -ntris
		ctx.Warnf("removeVertex: triangulate() returned bad results.")
	}

	// Merge the hole triangles back to polygons.
	polys := make([]int, (ntris+1)*nvp)
	pregs := make([]int, ntris)
	pareas := make([]int, ntris)

	tmpPoly := polys[ntris*nvp:]

	// Build initial polygons.
	npolys := 0
	for i := range polys {
		polys[i] = RC_MESH_NULL_IDX
	}
	for j := 0; j < ntris; j++ {
		t := tris[j*3 : j*3+3]
		if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
			polys[npolys*nvp+0] = hole[t[0]]
			polys[npolys*nvp+1] = hole[t[1]]
			polys[npolys*nvp+2] = hole[t[2]]

			// If this polygon covers multiple region types then
			// mark it as such
			if hreg[t[0]] != hreg[t[1]] || hreg[t[1]] != hreg[t[2]] {
				pregs[npolys] = RC_MULTIPLE_REGS
			} else {
				pregs[npolys] = hreg[t[0]]
			}

			pareas[npolys] = harea[t[0]]
			npolys++
		}
	}
	if npolys == 0 {
		return true
	}

	// Merge polygons.
	if nvp > 3 {
		npolys = mergePolys(polys, npolys, nvp, mesh.Verts, tmpPoly, func(pa, pb, last int) {
			if pregs[pa] != pregs[pb] {
				pregs[pa] = RC_MULTIPLE_REGS
			}
			pregs[pb] = pregs[last]
			pareas[pb] = pareas[last]
		})
	}

	// Store polygons.
	for i := 0; i < npolys; i++ {
		if mesh.Npolys >= maxTris {
			break
		}
		p := mesh.Polys[mesh.Npolys*nvp*2 : (mesh.Npolys+1)*nvp*2]
		for j := range p {
			p[j] = RC_MESH_NULL_IDX
		}
		copy(p[:nvp], polys[i*nvp:(i+1)*nvp])
		mesh.Regs[mesh.Npolys] = pregs[i]
		mesh.Areas[mesh.Npolys] = pareas[i]
		mesh.Npolys++
		if mesh.Npolys > maxTris {
			ctx.Errorf("removeVertex: Too many polygons %d (max:%d).", mesh.Npolys, maxTris)
			return false
		}
	}

	return true
}

// / Builds a polygon mesh from the provided contours.
// /
// / @param[in]		cset	A fully built contour set.
// / @param[in]		nvp		The maximum number of vertices allowed for polygons generated during the
// /							contour to polygon conversion process. [Limit: >= 3]
// / @param[out]		mesh	The resulting polygon mesh. (Must be re-allocated.)
// / @returns True if the operation completed successfully.
func RcBuildPolyMesh(ctx *RcContext, cset *RcContourSet, nvp int, mesh *RcPolyMesh) bool {
	ctx.StartTimer(RC_TIMER_BUILD_POLYMESH)
	defer ctx.StopTimer(RC_TIMER_BUILD_POLYMESH)

	mesh.Bmin = cset.Bmin
	mesh.Bmax = cset.Bmax
	mesh.Cs = cset.Cs
	mesh.Ch = cset.Ch
	mesh.BorderSize = cset.BorderSize
	mesh.MaxEdgeError = cset.MaxError

	maxVertices := 0
	maxTris := 0
	maxVertsPerCont := 0
	for _, cont := range cset.Conts {
		// Skip null contours.
		if cont.Nverts < 3 {
			continue
		}
		maxVertices += cont.Nverts
		maxTris += cont.Nverts - 2
		maxVertsPerCont = max(maxVertsPerCont, cont.Nverts)
	}

	if maxVertices >= 0xfffe {
		ctx.Errorf("rcBuildPolyMesh: Too many vertices %d.", maxVertices)
		return false
	}

	vflags := make([]bool, maxVertices)

	mesh.Verts = make([]int, maxVertices*3)
	mesh.Polys = make([]int, maxTris*nvp*2)
	mesh.Regs = make([]int, maxTris)
	mesh.Areas = make([]int, maxTris)

	mesh.Nverts = 0
	mesh.Npolys = 0
	mesh.Nvp = nvp
	mesh.Maxpolys = maxTris

	for i := range mesh.Polys {
		mesh.Polys[i] = RC_MESH_NULL_IDX
	}

	nextVert := make([]int, maxVertices)
	firstVert := make([]int, vertexBucketCount)
	for i := range firstVert {
		firstVert[i] = -1
	}

	indices := make([]int, maxVertsPerCont)
	tris := make([]int, maxVertsPerCont*3)
	polys := make([]int, (maxVertsPerCont+1)*nvp)
	tmpPoly := polys[maxVertsPerCont*nvp:]

	for i, cont := range cset.Conts {
		// Skip null contours.
		if cont.Nverts < 3 {
			continue
		}

		// Triangulate contour
		for j := 0; j < cont.Nverts; j++ {
			indices[j] = j
		}

		ntris := triangulate(cont.Nverts, cont.Verts, indices, tris)
		if ntris <= 0 {
			// Bad triangulation, should not happen.
			ctx.Warnf("rcBuildPolyMesh: Bad triangulation Contour %d.", i)
			ntris = -ntris
		}

		// Add and merge vertices.
		for j := 0; j < cont.Nverts; j++ {
			v := common.GetVert4(cont.Verts, j)
			indices[j] = addVertex(v[0], v[1], v[2], mesh.Verts, firstVert, nextVert, &mesh.Nverts)
			if v[3]&RC_BORDER_VERTEX != 0 {
				// This vertex should be removed.
				vflags[indices[j]] = true
			}
		}

		// Build initial polygons.
		npolys := 0
		for j := 0; j < maxVertsPerCont*nvp; j++ {
			polys[j] = RC_MESH_NULL_IDX
		}
		for j := 0; j < ntris; j++ {
			t := tris[j*3 : j*3+3]
			if t[0] != t[1] && t[0] != t[2] && t[1] != t[2] {
				polys[npolys*nvp+0] = indices[t[0]]
				polys[npolys*nvp+1] = indices[t[1]]
				polys[npolys*nvp+2] = indices[t[2]]
				npolys++
			}
		}
		if npolys == 0 {
			continue
		}

		// Merge polygons.
		if nvp > 3 {
			npolys = mergePolys(polys, npolys, nvp, mesh.Verts, tmpPoly, nil)
		}

		// Store polygons.
		for j := 0; j < npolys; j++ {
			if mesh.Npolys >= maxTris {
				ctx.Errorf("rcBuildPolyMesh: Too many polygons %d (max:%d).", mesh.Npolys+1, maxTris)
				return false
			}
			p := mesh.Polys[mesh.Npolys*nvp*2:]
			copy(p[:nvp], polys[j*nvp:(j+1)*nvp])
			mesh.Regs[mesh.Npolys] = cont.Reg
			mesh.Areas[mesh.Npolys] = cont.Area
			mesh.Npolys++
		}
	}

	// Remove edge vertices.
	for i := 0; i < mesh.Nverts; i++ {
		if !vflags[i] {
			continue
		}
		if !canRemoveVertex(mesh, i) {
			continue
		}
		if !removeVertex(ctx, mesh, i, maxTris) {
			// Failed to remove vertex
			ctx.Errorf("rcBuildPolyMesh: Failed to remove edge vertex %d.", i)
			return false
		}
		// Remove vertex
		// Note: mesh.Nverts is already decremented inside removeVertex()!
		// Fixup vertex flags
		copy(vflags[i:mesh.Nverts], vflags[i+1:mesh.Nverts+1])
		i--
	}

	// Calculate adjacency.
	if !buildMeshAdjacency(mesh.Polys, mesh.Npolys, mesh.Nverts, nvp) {
		ctx.Errorf("rcBuildPolyMesh: Adjacency failed.")
		return false
	}

	// Find portal edges
	if mesh.BorderSize > 0 {
		w := cset.Width
		h := cset.Height
		for i := 0; i < mesh.Npolys; i++ {
			p := mesh.Polys[i*2*nvp:]
			for j := 0; j < nvp; j++ {
				if p[j] == RC_MESH_NULL_IDX {
					break
				}
				// Skip connected edges.
				if p[nvp+j] != RC_MESH_NULL_IDX {
					continue
				}
				nj := j + 1
				if nj >= nvp || p[nj] == RC_MESH_NULL_IDX {
					nj = 0
				}
				va := common.GetVert3(mesh.Verts, p[j])
				vb := common.GetVert3(mesh.Verts, p[nj])

				switch {
				case va[0] == 0 && vb[0] == 0:
					p[nvp+j] = 0x8000 | 0
				case va[2] == h && vb[2] == h:
					p[nvp+j] = 0x8000 | 1
				case va[0] == w && vb[0] == w:
					p[nvp+j] = 0x8000 | 2
				case va[2] == 0 && vb[2] == 0:
					p[nvp+j] = 0x8000 | 3
				}
			}
		}
	}

	// Just allocate the mesh flags array. The user is resposible to fill it.
	mesh.Flags = make([]int, mesh.Npolys)

	if mesh.Nverts > 0xffff {
		ctx.Errorf("rcBuildPolyMesh: The resulting mesh has too many vertices %d (max %d). Data can be corrupted.", mesh.Nverts, 0xffff)
	}
	if mesh.Npolys > 0xffff {
		ctx.Errorf("rcBuildPolyMesh: The resulting mesh has too many polygons %d (max %d). Data can be corrupted.", mesh.Npolys, 0xffff)
	}

	return true
}
