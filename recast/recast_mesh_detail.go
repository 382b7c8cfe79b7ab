package recast

import (
	"math"

	"github.com/gorustyt/navbuild/common"
)

const rcUnsetHeight = 0xffff

type rcHeightPatch struct {
	data   []int
	xmin   int
	zmin   int
	width  int
	height int
}

func vdot2(a, b []float64) float64 {
	return a[0]*b[0] + a[2]*b[2]
}

func vdistSq2(p, q []float64) float64 {
	dx := q[0] - p[0]
	dz := q[2] - p[2]
	return dx*dx + dz*dz
}

func vdist2(p, q []float64) float64 {
	return math.Sqrt(vdistSq2(p, q))
}

func vcross2(p1, p2, p3 []float64) float64 {
	u1 := p2[0] - p1[0]
	v1 := p2[2] - p1[2]
	u2 := p3[0] - p1[0]
	v2 := p3[2] - p1[2]
	return u1*v2 - v1*u2
}

func circumCircle(p1, p2, p3 []float64) (c [3]float64, r float64, ok bool) {
	const eps = 1e-6
	// Calculate the circle relative to p1, to avoid some precision issues.
	v1 := []float64{0, 0, 0}
	v2 := make([]float64, 3)
	v3 := make([]float64, 3)
	common.Vsub(v2, p2, p1)
	common.Vsub(v3, p3, p1)

	cp := vcross2(v1, v2, v3)
	if math.Abs(cp) > eps {
		v1Sq := vdot2(v1, v1)
		v2Sq := vdot2(v2, v2)
		v3Sq := vdot2(v3, v3)
		c[0] = (v1Sq*(v2[2]-v3[2]) + v2Sq*(v3[2]-v1[2]) + v3Sq*(v1[2]-v2[2])) / (2 * cp)
		c[1] = 0
		c[2] = (v1Sq*(v3[0]-v2[0]) + v2Sq*(v1[0]-v3[0]) + v3Sq*(v2[0]-v1[0])) / (2 * cp)
		r = vdist2(c[:], v1)
		common.Vadd(c[:], c[:], p1)
		return c, r, true
	}

	copy(c[:], p1)
	return c, 0, false
}

func distPtTri(p, a, b, c []float64) float64 {
	v0 := make([]float64, 3)
	v1 := make([]float64, 3)
	v2 := make([]float64, 3)
	common.Vsub(v0, c, a)
	common.Vsub(v1, b, a)
	common.Vsub(v2, p, a)

	dot00 := vdot2(v0, v0)
	dot01 := vdot2(v0, v1)
	dot02 := vdot2(v0, v2)
	dot11 := vdot2(v1, v1)
	dot12 := vdot2(v1, v2)

	// Compute barycentric coordinates
	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	// If point lies inside the triangle, return interpolated y-coord.
	const eps = 1e-4
	if u >= -eps && v >= -eps && (u+v) <= 1+eps {
		y := a[1] + v0[1]*u + v1[1]*v
		return math.Abs(y - p[1])
	}
	return math.MaxFloat64
}

func distancePtSeg3(pt, p, q []float64) float64 {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqy*pqy + pqz*pqz
	t := pqx*dx + pqy*dy + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	dz = p[2] + t*pqz - pt[2]

	return dx*dx + dy*dy + dz*dz
}

func distancePtSeg2d(pt, p, q []float64) float64 {
	pqx := q[0] - p[0]
	pqz := q[2] - p[2]
	dx := pt[0] - p[0]
	dz := pt[2] - p[2]
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)

	dx = p[0] + t*pqx - pt[0]
	dz = p[2] + t*pqz - pt[2]

	return dx*dx + dz*dz
}

func distToTriMesh(p []float64, verts []float64, tris []int, ntris int) float64 {
	dmin := math.MaxFloat64
	for i := 0; i < ntris; i++ {
		va := common.GetVert3(verts, tris[i*4+0])
		vb := common.GetVert3(verts, tris[i*4+1])
		vc := common.GetVert3(verts, tris[i*4+2])
		d := distPtTri(p, va, vb, vc)
		if d < dmin {
			dmin = d
		}
	}
	if dmin == math.MaxFloat64 {
		return -1
	}
	return dmin
}

// distToPoly returns the 2D distance from p to the polygon outline, negative when p is inside.
func distToPoly(nvert int, verts []float64, p []float64) float64 {
	dmin := math.MaxFloat64
	inside := false
	for i, j := 0, nvert-1; i < nvert; j, i = i, i+1 {
		vi := common.GetVert3(verts, i)
		vj := common.GetVert3(verts, j)
		if ((vi[2] > p[2]) != (vj[2] > p[2])) &&
			(p[0] < (vj[0]-vi[0])*(p[2]-vi[2])/(vj[2]-vi[2])+vi[0]) {
			inside = !inside
		}
		dmin = min(dmin, distancePtSeg2d(p, vj, vi))
	}
	if inside {
		return -dmin
	}
	return dmin
}

func getHeight(fx, fy, fz, ics, ch float64, radius int, hp *rcHeightPatch) int {
	ix := int(math.Floor(fx*ics + 0.01))
	iz := int(math.Floor(fz*ics + 0.01))
	ix = common.Clamp(ix-hp.xmin, 0, hp.width-1)
	iz = common.Clamp(iz-hp.zmin, 0, hp.height-1)
	h := hp.data[ix+iz*hp.width]
	if h != rcUnsetHeight {
		return h
	}

	// Special case when data might be bad.
	// Walk adjacent cells in a spiral up to 'radius', and look
	// for a pixel which has a valid height.
	x, z, dx, dz := 1, 0, 1, 0
	maxSize := radius*2 + 1
	maxIter := maxSize*maxSize - 1

	nextRingIterStart := 8
	nextRingIters := 16

	dmin := math.MaxFloat64
	for i := 0; i < maxIter; i++ {
		nx := ix + x
		nz := iz + z

		if nx >= 0 && nz >= 0 && nx < hp.width && nz < hp.height {
			nh := hp.data[nx+nz*hp.width]
			if nh != rcUnsetHeight {
				d := math.Abs(float64(nh)*ch - fy)
				if d < dmin {
					h = nh
					dmin = d
				}
			}
		}

		// The search visits rings of cells around the center. Once a height
		// is found in one ring the next ring is not entered, so the closest
		// ring wins and the best height inside that ring is kept.
		if i+1 == nextRingIterStart {
			if h != rcUnsetHeight {
				break
			}
			nextRingIterStart += nextRingIters
			nextRingIters += 8
		}

		if x == z || (x < 0 && x == -z) || (x > 0 && x == 1-z) {
			dx, dz = -dz, dx
		}
		x += dx
		z += dz
	}
	return h
}

const (
	evUndef = -1
	evHull  = -2
)

// detailEdges is the edge list of a hull triangulation, 4 ints per edge:
// start vertex, end vertex, left face, right face.
type detailEdges struct {
	ctx      *RcContext
	data     []int
	maxEdges int
}

func (e *detailEdges) count() int {
	return len(e.data) / 4
}

func (e *detailEdges) edge(i int) []int {
	return e.data[i*4 : i*4+4]
}

func (e *detailEdges) find(s, t int) int {
	for i := 0; i < e.count(); i++ {
		edge := e.edge(i)
		if (edge[0] == s && edge[1] == t) || (edge[0] == t && edge[1] == s) {
			return i
		}
	}
	return evUndef
}

func (e *detailEdges) add(s, t, l, r int) int {
	if e.count() >= e.maxEdges {
		e.ctx.Errorf("addEdge: Too many edges (%d/%d).", e.count(), e.maxEdges)
		return evUndef
	}

	// Add edge if not already in the triangulation.
	if e.find(s, t) != evUndef {
		return evUndef
	}
	e.data = append(e.data, s, t, l, r)
	return e.count() - 1
}

func updateLeftFace(e []int, s, t, f int) {
	if e[0] == s && e[1] == t && e[2] == evUndef {
		e[2] = f
	} else if e[1] == s && e[0] == t && e[3] == evUndef {
		e[3] = f
	}
}

func overlapSegSeg2d(a, b, c, d []float64) bool {
	a1 := vcross2(a, b, d)
	a2 := vcross2(a, b, c)
	if a1*a2 < 0 {
		a3 := vcross2(c, d, a)
		a4 := a3 + a2 - a1
		if a3*a4 < 0 {
			return true
		}
	}
	return false
}

func (e *detailEdges) overlaps(pts []float64, s1, t1 int) bool {
	for i := 0; i < e.count(); i++ {
		s0 := e.data[i*4+0]
		t0 := e.data[i*4+1]
		// Same or connected edges do not overlap.
		if s0 == s1 || s0 == t1 || t0 == s1 || t0 == t1 {
			continue
		}
		if overlapSegSeg2d(common.GetVert3(pts, s0), common.GetVert3(pts, t0), common.GetVert3(pts, s1), common.GetVert3(pts, t1)) {
			return true
		}
	}
	return false
}

func completeFacet(pts []float64, npts int, edges *detailEdges, nfaces *int, e int) {
	const eps = 1e-5

	edge := edges.edge(e)

	// Cache s and t.
	var s, t int
	switch {
	case edge[2] == evUndef:
		s = edge[0]
		t = edge[1]
	case edge[3] == evUndef:
		s = edge[1]
		t = edge[0]
	default:
		// Edge already completed.
		return
	}

	// Find best point on left of edge.
	pt := npts
	var c [3]float64
	r := -1.0
	ps := common.GetVert3(pts, s)
	pt0 := common.GetVert3(pts, t)
	for u := 0; u < npts; u++ {
		if u == s || u == t {
			continue
		}
		pu := common.GetVert3(pts, u)
		if vcross2(ps, pt0, pu) <= eps {
			continue
		}
		if r < 0 {
			// The circle is not updated yet, do it now.
			pt = u
			c, r, _ = circumCircle(ps, pt0, pu)
			continue
		}
		d := vdist2(c[:], pu)
		const tol = 0.001
		if d > r*(1+tol) {
			// Outside current circumcircle, skip.
			continue
		} else if d < r*(1-tol) {
			// Inside safe circumcircle, update circle.
			pt = u
			c, r, _ = circumCircle(ps, pt0, pu)
		} else {
			// Inside epsilon circum circle, do extra tests to make sure the edge is valid.
			// s-u and t-u cannot overlap with s-pt nor t-pt if they exists.
			if edges.overlaps(pts, s, u) {
				continue
			}
			if edges.overlaps(pts, t, u) {
				continue
			}
			// Edge is valid.
			pt = u
			c, r, _ = circumCircle(ps, pt0, pu)
		}
	}

	// Add new triangle or update edge info if s-t is on hull.
	if pt >= npts {
		updateLeftFace(edges.edge(e), s, t, evHull)
		return
	}

	// Update face information of edge being completed.
	updateLeftFace(edges.edge(e), s, t, *nfaces)

	// Add new edge or update face info of old edge.
	if e = edges.find(pt, s); e == evUndef {
		edges.add(pt, s, *nfaces, evUndef)
	} else {
		updateLeftFace(edges.edge(e), pt, s, *nfaces)
	}

	// Add new edge or update face info of old edge.
	if e = edges.find(t, pt); e == evUndef {
		edges.add(t, pt, *nfaces, evUndef)
	} else {
		updateLeftFace(edges.edge(e), t, pt, *nfaces)
	}

	*nfaces++
}

func delaunayHull(ctx *RcContext, npts int, pts []float64, hull []int, tris []int) []int {
	nfaces := 0
	edges := &detailEdges{ctx: ctx, maxEdges: npts * 10}
	edges.data = make([]int, 0, edges.maxEdges*4)

	nhull := len(hull)
	for i, j := 0, nhull-1; i < nhull; j, i = i, i+1 {
		edges.add(hull[j], hull[i], evHull, evUndef)
	}

	for currentEdge := 0; currentEdge < edges.count(); currentEdge++ {
		if edges.data[currentEdge*4+2] == evUndef {
			completeFacet(pts, npts, edges, &nfaces, currentEdge)
		}
		if edges.data[currentEdge*4+3] == evUndef {
			completeFacet(pts, npts, edges, &nfaces, currentEdge)
		}
	}

	// Create tris
	tris = tris[:0]
	for i := 0; i < nfaces*4; i++ {
		tris = append(tris, -1)
	}

	for i := 0; i < edges.count(); i++ {
		e := edges.edge(i)
		if e[3] >= 0 {
			// Left face
			t := tris[e[3]*4:]
			if t[0] == -1 {
				t[0] = e[0]
				t[1] = e[1]
			} else if t[0] == e[1] {
				t[2] = e[0]
			} else if t[1] == e[0] {
				t[2] = e[1]
			}
		}
		if e[2] >= 0 {
			// Right
			t := tris[e[2]*4:]
			if t[0] == -1 {
				t[0] = e[1]
				t[1] = e[0]
			} else if t[0] == e[0] {
				t[2] = e[1]
			} else if t[1] == e[1] {
				t[2] = e[0]
			}
		}
	}

	for i := 0; i < len(tris)/4; i++ {
		t := tris[i*4 : i*4+4]
		if t[0] == -1 || t[1] == -1 || t[2] == -1 {
			ctx.Warnf("delaunayHull: Removing dangling face %d [%d,%d,%d].", i, t[0], t[1], t[2])
			copy(t, tris[len(tris)-4:])
			tris = tris[:len(tris)-4]
			i--
		}
	}
	return tris
}

// Calculate minimum extend of the polygon.
func polyMinExtent(verts []float64, nverts int) float64 {
	minDist := math.MaxFloat64
	for i := 0; i < nverts; i++ {
		ni := (i + 1) % nverts
		p1 := common.GetVert3(verts, i)
		p2 := common.GetVert3(verts, ni)
		maxEdgeDist := 0.0
		for j := 0; j < nverts; j++ {
			if j == i || j == ni {
				continue
			}
			d := distancePtSeg2d(common.GetVert3(verts, j), p1, p2)
			maxEdgeDist = max(maxEdgeDist, d)
		}
		minDist = min(minDist, maxEdgeDist)
	}
	return math.Sqrt(minDist)
}

func triangulateHull(verts []float64, hull []int, nin int, tris []int) []int {
	nhull := len(hull)
	start, left, right := 0, 1, nhull-1

	// Start from an ear with shortest perimeter.
	// This tends to favor well formed triangles as starting point.
	dmin := math.MaxFloat64
	for i := 0; i < nhull; i++ {
		if hull[i] >= nin {
			continue // Ears are triangles with original vertices as middle vertex while others are actually line segments on edges
		}
		pi := common.Prev(i, nhull)
		ni := common.Next(i, nhull)
		pv := common.GetVert3(verts, hull[pi])
		cv := common.GetVert3(verts, hull[i])
		nv := common.GetVert3(verts, hull[ni])
		d := vdist2(pv, cv) + vdist2(cv, nv) + vdist2(nv, pv)
		if d < dmin {
			start = i
			left = ni
			right = pi
			dmin = d
		}
	}

	// Add first triangle
	tris = append(tris, hull[start], hull[left], hull[right], 0)

	// Triangulate the polygon by moving left or right,
	// depending on which triangle has shorter perimeter.
	// This heuristic was chose emprically, since it seems
	// handle tesselated straight edges well.
	for common.Next(left, nhull) != right {
		// Check to see if se should advance left or right.
		nleft := common.Next(left, nhull)
		nright := common.Prev(right, nhull)

		cvleft := common.GetVert3(verts, hull[left])
		nvleft := common.GetVert3(verts, hull[nleft])
		cvright := common.GetVert3(verts, hull[right])
		nvright := common.GetVert3(verts, hull[nright])
		dleft := vdist2(cvleft, nvleft) + vdist2(nvleft, cvright)
		dright := vdist2(cvright, nvright) + vdist2(cvleft, nvright)

		if dleft < dright {
			tris = append(tris, hull[left], hull[nleft], hull[right], 0)
			left = nleft
		} else {
			tris = append(tris, hull[left], hull[nright], hull[right], 0)
			right = nright
		}
	}
	return tris
}

func getJitterX(i int) float64 {
	return (float64((uint32(i)*0x8da6b343)&0xffff)/65535.0*2.0 - 1.0)
}

func getJitterY(i int) float64 {
	return (float64((uint32(i)*0xd8163841)&0xffff)/65535.0*2.0 - 1.0)
}

const (
	detailMaxVerts        = 127
	detailMaxTris         = 255 // Max tris for delaunay is 2n-2-k (n=num verts, k=num hull verts).
	detailMaxVertsPerEdge = 32
)

// detailScratch holds the buffers reused between polygons of one detail build.
type detailScratch struct {
	verts   []float64
	tris    []int
	samples []int
	queue   []int
	edge    []float64
	hull    []int
}

func newDetailScratch() *detailScratch {
	return &detailScratch{
		verts:   make([]float64, 256*3),
		tris:    make([]int, 0, 512),
		samples: make([]int, 0, 512),
		queue:   make([]int, 0, 512),
		edge:    make([]float64, (detailMaxVertsPerEdge+1)*3),
		hull:    make([]int, 0, detailMaxVerts),
	}
}

// buildPolyDetail tessellates the polygon in (nin vertices, poly local space) and
// leaves the vertices in sc.verts and the triangles in sc.tris. It returns the vertex count.
func buildPolyDetail(ctx *RcContext, in []float64, nin int, sampleDist, sampleMaxError float64,
	heightSearchRadius int, chf *RcCompactHeightfield, hp *rcHeightPatch, sc *detailScratch) (int, bool) {
	verts := sc.verts
	edge := sc.edge
	hull := sc.hull[:0]

	nverts := nin
	copy(verts[:nin*3], in[:nin*3])

	sc.tris = sc.tris[:0]

	cs := chf.Cs
	ics := 1.0 / cs

	// Calculate minimum extents of the polygon based on input data.
	minExtent := polyMinExtent(verts, nverts)

	// Tessellate outlines.
	// This is done in separate pass in order to ensure
	// seamless height values across the ply boundaries.
	if sampleDist > 0 {
		for i, j := 0, nin-1; i < nin; j, i = i, i+1 {
			vj := common.GetVert3(in, j)
			vi := common.GetVert3(in, i)
			swapped := false
			// Make sure the segments are always handled in same order
			// using lexological sort or else there will be seams.
			if math.Abs(vj[0]-vi[0]) < 1e-6 {
				if vj[2] > vi[2] {
					vj, vi = vi, vj
					swapped = true
				}
			} else if vj[0] > vi[0] {
				vj, vi = vi, vj
				swapped = true
			}
			// Create samples along the edge.
			dx := vi[0] - vj[0]
			dy := vi[1] - vj[1]
			dz := vi[2] - vj[2]
			d := math.Sqrt(dx*dx + dz*dz)
			nn := 1 + int(math.Floor(d/sampleDist))
			if nn >= detailMaxVertsPerEdge {
				nn = detailMaxVertsPerEdge - 1
			}
			if nverts+nn >= detailMaxVerts {
				nn = detailMaxVerts - 1 - nverts
			}

			for k := 0; k <= nn; k++ {
				u := float64(k) / float64(nn)
				pos := common.GetVert3(edge, k)
				pos[0] = vj[0] + dx*u
				pos[1] = vj[1] + dy*u
				pos[2] = vj[2] + dz*u
				pos[1] = float64(getHeight(pos[0], pos[1], pos[2], ics, chf.Ch, heightSearchRadius, hp)) * chf.Ch
			}
			// Simplify samples.
			idx := make([]int, 2, detailMaxVertsPerEdge)
			idx[0], idx[1] = 0, nn
			for k := 0; k < len(idx)-1; {
				a := idx[k]
				b := idx[k+1]
				va := common.GetVert3(edge, a)
				vb := common.GetVert3(edge, b)
				// Find maximum deviation along the segment.
				maxd := 0.0
				maxi := -1
				for m := a + 1; m < b; m++ {
					dev := distancePtSeg3(common.GetVert3(edge, m), va, vb)
					if dev > maxd {
						maxd = dev
						maxi = m
					}
				}
				// If the max deviation is larger than accepted error,
				// add new point, else continue to next segment.
				if maxi != -1 && maxd > common.Sqr(sampleMaxError) {
					idx = append(idx, 0)
					copy(idx[k+2:], idx[k+1:len(idx)-1])
					idx[k+1] = maxi
				} else {
					k++
				}
			}

			hull = append(hull, j)
			// Add new vertices.
			if swapped {
				for k := len(idx) - 2; k > 0; k-- {
					copy(verts[nverts*3:nverts*3+3], common.GetVert3(edge, idx[k]))
					hull = append(hull, nverts)
					nverts++
				}
			} else {
				for k := 1; k < len(idx)-1; k++ {
					copy(verts[nverts*3:nverts*3+3], common.GetVert3(edge, idx[k]))
					hull = append(hull, nverts)
					nverts++
				}
			}
		}
	}
	if len(hull) == 0 {
		// No edge sampling, the hull is the polygon outline.
		for i := 0; i < nin; i++ {
			hull = append(hull, i)
		}
	}
	sc.hull = hull

	// If the polygon minimit extent is small (sliver or small triangle), do not try to add internal points.
	if minExtent < sampleDist*2 {
		sc.tris = triangulateHull(verts, hull, nin, sc.tris)
		return nverts, true
	}

	// Tessellate the base mesh.
	// We're using the triangulateHull instead of delaunayHull as it tends to
	// create a bit better triangulation for long thin triangles when there
	// are no internal points.
	sc.tris = triangulateHull(verts, hull, nin, sc.tris)

	if len(sc.tris) == 0 {
		// Could not triangulate the poly, make sure there is some valid data there.
		ctx.Warnf("buildPolyDetail: Could not triangulate polygon (%d verts).", nverts)
		return nverts, true
	}

	if sampleDist > 0 {
		// Create sample locations in a grid.
		bmin := make([]float64, 3)
		bmax := make([]float64, 3)
		copy(bmin, in[:3])
		copy(bmax, in[:3])
		for i := 1; i < nin; i++ {
			common.Vmin(bmin, common.GetVert3(in, i))
			common.Vmax(bmax, common.GetVert3(in, i))
		}
		x0 := int(math.Floor(bmin[0] / sampleDist))
		x1 := int(math.Ceil(bmax[0] / sampleDist))
		z0 := int(math.Floor(bmin[2] / sampleDist))
		z1 := int(math.Ceil(bmax[2] / sampleDist))
		samples := sc.samples[:0]
		for z := z0; z < z1; z++ {
			for x := x0; x < x1; x++ {
				pt := []float64{
					float64(x) * sampleDist,
					(bmax[1] + bmin[1]) * 0.5,
					float64(z) * sampleDist,
				}
				// Make sure the samples are not too close to the edges.
				if distToPoly(nin, in, pt) > -sampleDist/2 {
					continue
				}
				samples = append(samples, x, getHeight(pt[0], pt[1], pt[2], ics, chf.Ch, heightSearchRadius, hp), z, 0) // Not added
			}
		}
		sc.samples = samples

		// Add the samples starting from the one that has the most
		// error. The procedure stops when all samples are added
		// or when the max error is within treshold.
		nsamples := len(samples) / 4
		pt := make([]float64, 3)
		bestpt := make([]float64, 3)
		for iter := 0; iter < nsamples; iter++ {
			if nverts >= detailMaxVerts {
				break
			}

			// Find sample with most error.
			bestd := 0.0
			besti := -1
			for i := 0; i < nsamples; i++ {
				s := samples[i*4 : i*4+4]
				if s[3] != 0 {
					continue // skip added.
				}
				// The sample location is jittered to get rid of some bad triangulations
				// which are cause by symmetrical data from the grid structure.
				pt[0] = float64(s[0])*sampleDist + getJitterX(i)*cs*0.1
				pt[1] = float64(s[1]) * chf.Ch
				pt[2] = float64(s[2])*sampleDist + getJitterY(i)*cs*0.1
				d := distToTriMesh(pt, verts, sc.tris, len(sc.tris)/4)
				if d < 0 {
					continue // did not hit the mesh.
				}
				if d > bestd {
					bestd = d
					besti = i
					copy(bestpt, pt)
				}
			}
			// If the max error is within accepted threshold, stop tesselating.
			if bestd <= sampleMaxError || besti == -1 {
				break
			}
			// Mark sample as added.
			samples[besti*4+3] = 1
			// Add the new sample point.
			copy(verts[nverts*3:nverts*3+3], bestpt)
			nverts++

			// Create new triangulation.
			sc.tris = delaunayHull(ctx, nverts, verts, hull, sc.tris)
		}
	}

	ntris := len(sc.tris) / 4
	if ntris > detailMaxTris {
		sc.tris = sc.tris[:detailMaxTris*4]
		ctx.Errorf("rcBuildPolyMeshDetail: Shrinking triangle count from %d to max %d.", ntris, detailMaxTris)
	}

	return nverts, true
}

// Cell offsets searched around each polygon vertex, center first.
var seedOffsets = [9 * 2]int{
	0, 0, -1, -1, 0, -1, 1, -1, 1, 0, 1, 1, 0, 1, -1, 1, -1, 0,
}

// seedArrayWithPolyCenter walks from the span closest to a polygon vertex towards
// the polygon center and seeds the queue with the span reached there.
// Reads to the compact heightfield are offset by border size (bs)
// since border size offset is already removed from the polymesh vertices.
func seedArrayWithPolyCenter(ctx *RcContext, chf *RcCompactHeightfield, poly []int, npoly int,
	verts []int, bs int, hp *rcHeightPatch, queue []int) []int {
	// Find cell closest to a poly vertex
	startCellX, startCellZ, startSpanIndex := 0, 0, -1
	dmin := rcUnsetHeight
	for j := 0; j < npoly && dmin > 0; j++ {
		for k := 0; k < 9 && dmin > 0; k++ {
			ax := verts[poly[j]*3+0] + seedOffsets[k*2+0]
			ay := verts[poly[j]*3+1]
			az := verts[poly[j]*3+2] + seedOffsets[k*2+1]
			if ax < hp.xmin || ax >= hp.xmin+hp.width ||
				az < hp.zmin || az >= hp.zmin+hp.height {
				continue
			}

			c := chf.Cells[(ax+bs)+(az+bs)*chf.Width]
			for i := c.Index; i < c.Index+c.Count && dmin > 0; i++ {
				d := common.Abs(ay - chf.Spans[i].Y)
				if d < dmin {
					startCellX = ax
					startCellZ = az
					startSpanIndex = i
					dmin = d
				}
			}
		}
	}
	if startSpanIndex == -1 {
		ctx.Warnf("Walk towards polygon center failed to find a start span")
		return queue[:0]
	}

	// Find center of the polygon
	pcx, pcz := 0, 0
	for j := 0; j < npoly; j++ {
		pcx += verts[poly[j]*3+0]
		pcz += verts[poly[j]*3+2]
	}
	pcx /= npoly
	pcz /= npoly

	// Use seeds array as a stack for DFS
	queue = append(queue[:0], startCellX, startCellZ, startSpanIndex)

	dirs := [4]int{0, 1, 2, 3}
	for i := range hp.data {
		hp.data[i] = 0
	}
	// DFS to move to the center. Note that we need a DFS here and can not just move
	// directly towards the center without recording intermediate nodes, even though the polygons
	// are convex. In very rare we can get stuck due to contour simplification if we do not
	// record nodes.
	cx, cz, ci := -1, -1, -1
	for {
		if len(queue) < 3 {
			ctx.Warnf("Walk towards polygon center failed to reach center")
			break
		}

		n := len(queue)
		cx, cz, ci = queue[n-3], queue[n-2], queue[n-1]
		queue = queue[:n-3]

		if cx == pcx && cz == pcz {
			break
		}

		// If we are already at the correct X-position, prefer direction
		// directly towards the center in the Z-axis; otherwise prefer
		// direction in the X-axis
		var directDir int
		if cx == pcx {
			off := -1
			if pcz > cz {
				off = 1
			}
			directDir = common.GetDirForOffset(0, off)
		} else {
			off := -1
			if pcx > cx {
				off = 1
			}
			directDir = common.GetDirForOffset(off, 0)
		}

		// Push the direct dir last so we start with this on next iteration
		dirs[directDir], dirs[3] = dirs[3], dirs[directDir]

		cs := &chf.Spans[ci]
		for i := 0; i < 4; i++ {
			dir := dirs[i]
			if rcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}

			newX := cx + common.GetDirOffsetX(dir)
			newZ := cz + common.GetDirOffsetY(dir)

			hpx := newX - hp.xmin
			hpz := newZ - hp.zmin
			if hpx < 0 || hpx >= hp.width || hpz < 0 || hpz >= hp.height {
				continue
			}
			if hp.data[hpx+hpz*hp.width] != 0 {
				continue
			}

			hp.data[hpx+hpz*hp.width] = 1
			queue = append(queue, newX, newZ, chf.Cells[(newX+bs)+(newZ+bs)*chf.Width].Index+rcGetCon(cs, dir))
		}

		dirs[directDir], dirs[3] = dirs[3], dirs[directDir]
	}

	// getHeightData seeds are given in coordinates with borders
	queue = append(queue[:0], cx+bs, cz+bs, ci)

	for i := range hp.data {
		hp.data[i] = rcUnsetHeight
	}
	hp.data[cx-hp.xmin+(cz-hp.zmin)*hp.width] = chf.Spans[ci].Y
	return queue
}

// getHeightData fills the height patch for the polygon by flooding out from the
// spans of its region, or from the polygon center when the region gives no seeds.
func getHeightData(ctx *RcContext, chf *RcCompactHeightfield, poly []int, npoly int,
	verts []int, bs int, hp *rcHeightPatch, queue []int, region int) []int {
	queue = queue[:0]
	// Set all heights to rcUnsetHeight.
	for i := range hp.data {
		hp.data[i] = rcUnsetHeight
	}

	empty := true

	// We cannot sample from this poly if it was created from polys
	// of different regions. If it was then it could potentially be overlapping
	// with polys of that region and the heights sampled here could be wrong.
	if region != RC_MULTIPLE_REGS {
		// Copy the height from the same region, and mark region borders
		// as seed points to fill the rest.
		for hz := 0; hz < hp.height; hz++ {
			z := hp.zmin + hz + bs
			for hx := 0; hx < hp.width; hx++ {
				x := hp.xmin + hx + bs
				c := chf.Cells[x+z*chf.Width]
				for i := c.Index; i < c.Index+c.Count; i++ {
					s := &chf.Spans[i]
					if s.Reg != region {
						continue
					}
					// Store height
					hp.data[hx+hz*hp.width] = s.Y
					empty = false

					// If any of the neighbours is not in same region,
					// add the current location as flood fill start
					border := false
					for dir := 0; dir < 4; dir++ {
						if rcGetCon(s, dir) != RC_NOT_CONNECTED {
							_, _, ai := neighborIndex(chf, x, z, s, dir)
							if chf.Spans[ai].Reg != region {
								border = true
								break
							}
						}
					}
					if border {
						queue = append(queue, x, z, i)
					}
					break
				}
			}
		}
	}

	// if the polygon does not contain any points from the current region (rare, but happens)
	// or if it could potentially be overlapping polygons of the same region,
	// then use the center as the seed point.
	if empty {
		queue = seedArrayWithPolyCenter(ctx, chf, poly, npoly, verts, bs, hp, queue)
	}

	const retractSize = 256
	head := 0

	// We assume the seed is centered in the polygon, so a BFS to collect
	// height data will ensure we do not move onto overlapping polygons and
	// sample wrong heights.
	for head*3 < len(queue) {
		cx := queue[head*3+0]
		cz := queue[head*3+1]
		ci := queue[head*3+2]
		head++
		if head >= retractSize {
			head = 0
			queue = queue[:copy(queue, queue[retractSize*3:])]
		}

		cs := &chf.Spans[ci]
		for dir := 0; dir < 4; dir++ {
			if rcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}

			ax := cx + common.GetDirOffsetX(dir)
			az := cz + common.GetDirOffsetY(dir)
			hx := ax - hp.xmin - bs
			hz := az - hp.zmin - bs

			if hx < 0 || hx >= hp.width || hz < 0 || hz >= hp.height {
				continue
			}
			if hp.data[hx+hz*hp.width] != rcUnsetHeight {
				continue
			}

			ai := chf.Cells[ax+az*chf.Width].Index + rcGetCon(cs, dir)
			hp.data[hx+hz*hp.width] = chf.Spans[ai].Y

			queue = append(queue, ax, az, ai)
		}
	}
	return queue
}

func getEdgeFlags(va, vb []float64, vpoly []float64, npoly int) int {
	// The flag returned by this function matches the detail edge boundary flag.
	// Figure out if edge (va,vb) is part of the polygon boundary.
	const thrSqr = 0.001 * 0.001
	for i, j := 0, npoly-1; i < npoly; j, i = i, i+1 {
		pj := common.GetVert3(vpoly, j)
		pi := common.GetVert3(vpoly, i)
		if distancePtSeg2d(va, pj, pi) < thrSqr && distancePtSeg2d(vb, pj, pi) < thrSqr {
			return 1
		}
	}
	return 0
}

func getTriFlags(va, vb, vc []float64, vpoly []float64, npoly int) int {
	flags := 0
	flags |= getEdgeFlags(va, vb, vpoly, npoly) << 0
	flags |= getEdgeFlags(vb, vc, vpoly, npoly) << 2
	flags |= getEdgeFlags(vc, va, vpoly, npoly) << 4
	return flags
}

// / Builds a detail mesh from the provided polygon mesh.
// / @param[in]		mesh			A fully built polygon mesh.
// / @param[in]		chf				The compact heightfield used to build the polygon mesh.
// / @param[in]		sampleDist		Sets the distance to use when samping the heightfield. [Limit: >=0] [Units: wu]
// / @param[in]		sampleMaxError	The maximum distance the detail mesh surface should deviate from
// / 								heightfield data. [Limit: >=0] [Units: wu]
// / @param[out]		dmesh			The resulting detail mesh.  (Must be pre-allocated.)
// / @returns True if the operation completed successfully.
func RcBuildPolyMeshDetail(ctx *RcContext, mesh *RcPolyMesh, chf *RcCompactHeightfield,
	sampleDist, sampleMaxError float64, dmesh *RcPolyMeshDetail) bool {
	ctx.StartTimer(RC_TIMER_BUILD_POLYMESHDETAIL)
	defer ctx.StopTimer(RC_TIMER_BUILD_POLYMESHDETAIL)

	if mesh.Nverts == 0 || mesh.Npolys == 0 {
		return true
	}

	nvp := mesh.Nvp
	cs := mesh.Cs
	ch := mesh.Ch
	orig := mesh.Bmin
	borderSize := mesh.BorderSize
	heightSearchRadius := max(1, int(math.Ceil(mesh.MaxEdgeError)))

	sc := newDetailScratch()
	var hp rcHeightPatch
	nPolyVerts := 0
	maxhw, maxhh := 0, 0

	bounds := make([]int, mesh.Npolys*4)
	poly := make([]float64, nvp*3)

	// Find max size for a polygon area.
	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2:]
		xmin, xmax := chf.Width, 0
		zmin, zmax := chf.Height, 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := common.GetVert3(mesh.Verts, p[j])
			xmin = min(xmin, v[0])
			xmax = max(xmax, v[0])
			zmin = min(zmin, v[2])
			zmax = max(zmax, v[2])
			nPolyVerts++
		}
		xmin = max(0, xmin-1)
		xmax = min(chf.Width, xmax+1)
		zmin = max(0, zmin-1)
		zmax = min(chf.Height, zmax+1)
		bounds[i*4+0] = xmin
		bounds[i*4+1] = xmax
		bounds[i*4+2] = zmin
		bounds[i*4+3] = zmax
		if xmin >= xmax || zmin >= zmax {
			continue
		}
		maxhw = max(maxhw, xmax-xmin)
		maxhh = max(maxhh, zmax-zmin)
	}

	heightData := make([]int, maxhw*maxhh)

	dmesh.Nmeshes = mesh.Npolys
	dmesh.Meshes = make([]int, dmesh.Nmeshes*4)

	vcap := nPolyVerts + nPolyVerts/2
	tcap := vcap * 2

	dmesh.Nverts = 0
	dmesh.Verts = make([]float64, 0, vcap*3)
	dmesh.Ntris = 0
	dmesh.Tris = make([]int, 0, tcap*4)

	for i := 0; i < mesh.Npolys; i++ {
		p := mesh.Polys[i*nvp*2:]

		// Store polygon vertices for processing.
		npoly := 0
		for j := 0; j < nvp; j++ {
			if p[j] == RC_MESH_NULL_IDX {
				break
			}
			v := common.GetVert3(mesh.Verts, p[j])
			poly[j*3+0] = float64(v[0]) * cs
			poly[j*3+1] = float64(v[1]) * ch
			poly[j*3+2] = float64(v[2]) * cs
			npoly++
		}

		// Get the height data from the area of the polygon.
		hp.xmin = bounds[i*4+0]
		hp.zmin = bounds[i*4+2]
		hp.width = max(0, bounds[i*4+1]-bounds[i*4+0])
		hp.height = max(0, bounds[i*4+3]-bounds[i*4+2])
		hp.data = heightData[:hp.width*hp.height]
		sc.queue = getHeightData(ctx, chf, p, npoly, mesh.Verts, borderSize, &hp, sc.queue, mesh.Regs[i])

		// Build detail mesh.
		nverts, ok := buildPolyDetail(ctx, poly, npoly, sampleDist, sampleMaxError, heightSearchRadius, chf, &hp, sc)
		if !ok {
			return false
		}
		verts := sc.verts

		// Move detail verts to world space.
		for j := 0; j < nverts; j++ {
			verts[j*3+0] += orig[0]
			verts[j*3+1] += orig[1] + chf.Ch // Is this offset necessary?
			verts[j*3+2] += orig[2]
		}
		// Offset poly too, will be used to flag checking.
		for j := 0; j < npoly; j++ {
			poly[j*3+0] += orig[0]
			poly[j*3+1] += orig[1]
			poly[j*3+2] += orig[2]
		}

		// Store detail submesh.
		ntris := len(sc.tris) / 4

		dmesh.Meshes[i*4+0] = dmesh.Nverts
		dmesh.Meshes[i*4+1] = nverts
		dmesh.Meshes[i*4+2] = dmesh.Ntris
		dmesh.Meshes[i*4+3] = ntris

		// Store vertices.
		dmesh.Verts = append(dmesh.Verts, verts[:nverts*3]...)
		dmesh.Nverts += nverts

		// Store triangles.
		for j := 0; j < ntris; j++ {
			t := sc.tris[j*4 : j*4+4]
			flags := getTriFlags(common.GetVert3(verts, t[0]), common.GetVert3(verts, t[1]), common.GetVert3(verts, t[2]), poly, npoly)
			dmesh.Tris = append(dmesh.Tris, t[0], t[1], t[2], flags)
			dmesh.Ntris++
		}
	}

	return true
}
