package epa

import (
	"container/heap"
	"math"
	"sync"

	"github.com/akmonengine/proximity/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Polytope is the expanding polytope of one EPA query.
//
// All storage is fixed-size: support points live in aBuf/bBuf/qBuf
// (qBuf[i] = aBuf[i] - bBuf[i]) and facets in an arena addressed by
// FacetIndex. Facets are never freed during a query; the silhouette only
// marks them obsolete.
type Polytope struct {
	aBuf [MaxSupportPoints]mgl64.Vec3
	bBuf [MaxSupportPoints]mgl64.Vec3
	qBuf [MaxSupportPoints]mgl64.Vec3

	facets    [MaxFacets]Facet
	numFacets int
	numVerts  int

	heap      facetHeap
	heapItems [MaxFacets]FacetIndex

	edges     [maxEdges]Edge
	numEdges  int
	stack     [maxEdges]Edge
	stackSize int
}

// maxEdges bounds both the silhouette output and the traversal stack: the
// start facet pushes 3 entries and every visible facet at most 2 more.
const maxEdges = 2*MaxFacets + 3

// polytopePool recycles polytopes, which are too large to allocate per query.
var polytopePool = sync.Pool{
	New: func() interface{} {
		p := &Polytope{}
		p.heap.facets = &p.facets
		p.heap.items = p.heapItems[:0]
		return p
	},
}

// Reset clears the polytope for a new query.
func (p *Polytope) Reset() {
	p.numFacets = 0
	p.numVerts = 0
	p.numEdges = 0
	p.stackSize = 0
	p.heap.facets = &p.facets
	p.heap.reset()
}

// NumFacets returns the number of facets allocated from the arena.
func (p *Polytope) NumFacets() int { return p.numFacets }

// NumVertices returns the number of support points in the polytope.
func (p *Polytope) NumVertices() int { return p.numVerts }

// full reports whether the facet arena has no free slot left.
func (p *Polytope) full() bool { return p.numFacets == MaxFacets }

// Facet returns the facet at index i.
func (p *Polytope) Facet(i FacetIndex) *Facet { return &p.facets[i] }

// Vertex returns the Minkowski point i and the support points it came from.
func (p *Polytope) Vertex(i int) (q, a, b mgl64.Vec3) {
	return p.qBuf[i], p.aBuf[i], p.bBuf[i]
}

// setVertex stores the support pair (a, b) at slot i.
func (p *Polytope) setVertex(i int, a, b mgl64.Vec3) {
	p.aBuf[i] = a
	p.bBuf[i] = b
	p.qBuf[i] = a.Sub(b)
}

// AddFacet allocates the facet (i0, i1, i2) and computes its closest point.
//
// The facet enters the heap only when its closest point lies within the
// triangle and its squared distance is within [lower2, upper2]. Returns
// NoFacet when the triangle is degenerate or the arena is full; a facet that
// is valid but kept out of the heap is still returned.
func (p *Polytope) AddFacet(i0, i1, i2 int, lower2, upper2 float64) FacetIndex {
	if p.numFacets == MaxFacets {
		return NoFacet
	}

	f := &p.facets[p.numFacets]
	*f = Facet{
		Indices:      [3]int{i0, i1, i2},
		Adjacent:     [3]FacetIndex{NoFacet, NoFacet, NoFacet},
		AdjacentEdge: [3]int{-1, -1, -1},
	}

	ok, inside := f.computeClosest(p.aBuf[:], p.bBuf[:], p.qBuf[:])
	if !ok {
		return NoFacet
	}

	index := FacetIndex(p.numFacets)
	p.numFacets++

	if inside && lower2 <= f.SquaredDistance && f.SquaredDistance <= upper2 {
		heap.Push(&p.heap, index)
	}

	return index
}

// Link records that edge e of facet f and edge ge of facet g are the same
// edge, in both facets. It returns false when the two edges do not share
// their endpoints in opposite directions; the adjacency is recorded anyway.
func (p *Polytope) Link(f FacetIndex, e int, g FacetIndex, ge int) bool {
	ff := &p.facets[f]
	gf := &p.facets[g]

	ff.Adjacent[e] = g
	ff.AdjacentEdge[e] = ge
	gf.Adjacent[ge] = f
	gf.AdjacentEdge[ge] = e

	return ff.Indices[e] == gf.Indices[incMod3(ge)] &&
		ff.Indices[incMod3(e)] == gf.Indices[ge]
}

// linkAll applies a table of {f, e, g, ge} links and reports whether every
// one of them matched.
func (p *Polytope) linkAll(facets []FacetIndex, links [][4]int) bool {
	ok := true
	for _, l := range links {
		if !p.Link(facets[l[0]], l[1], facets[l[2]], l[3]) {
			ok = false
		}
	}
	return ok
}

// addFacets allocates a table of facets, failing on the first NoFacet.
func (p *Polytope) addFacets(dst []FacetIndex, indices [][3]int) bool {
	for i, idx := range indices {
		dst[i] = p.AddFacet(idx[0], idx[1], idx[2], 0, math.MaxFloat64)
		if dst[i] == NoFacet {
			return false
		}
	}
	return true
}

// silhouette removes every facet visible from w, starting with start, and
// collects the horizon: the edges of the remaining facets bordering the
// removed region, in counter-clockwise order.
//
// The traversal is depth-first across edges e+1 then e+2 of each visible
// facet. It returns false if the edge buffers overflow.
func (p *Polytope) silhouette(start FacetIndex, w mgl64.Vec3) bool {
	p.numEdges = 0
	p.stackSize = 0

	s := &p.facets[start]
	s.Obsolete = true
	for e := 2; e >= 0; e-- {
		if !p.push(Edge{Facet: s.Adjacent[e], Index: s.AdjacentEdge[e]}) {
			return false
		}
	}

	for p.stackSize > 0 {
		p.stackSize--
		edge := p.stack[p.stackSize]
		if edge.Facet == NoFacet {
			continue
		}

		f := &p.facets[edge.Facet]
		if f.Obsolete {
			continue
		}

		if !f.isVisibleFrom(w) {
			if p.numEdges == maxEdges {
				return false
			}
			p.edges[p.numEdges] = edge
			p.numEdges++
			continue
		}

		f.Obsolete = true
		next := incMod3(edge.Index)
		next2 := incMod3(next)
		// pushed in reverse so that next is visited first
		if !p.push(Edge{Facet: f.Adjacent[next2], Index: f.AdjacentEdge[next2]}) ||
			!p.push(Edge{Facet: f.Adjacent[next], Index: f.AdjacentEdge[next]}) {
			return false
		}
	}

	return true
}

func (p *Polytope) push(e Edge) bool {
	if p.stackSize == maxEdges {
		return false
	}
	p.stack[p.stackSize] = e
	p.stackSize++
	return true
}

// source and target are the endpoints of an edge, as vertex indices.
func (p *Polytope) source(e Edge) int { return p.facets[e.Facet].Indices[e.Index] }
func (p *Polytope) target(e Edge) int { return p.facets[e.Facet].Indices[incMod3(e.Index)] }

// Facet and link tables of the initial polytopes. Links are {f, e, g, ge}.
var (
	tetrahedronFacets = [][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
	tetrahedronLinks  = [][4]int{
		{0, 0, 1, 2}, {0, 1, 3, 2}, {0, 2, 2, 0},
		{1, 0, 2, 2}, {1, 1, 3, 0}, {2, 1, 3, 1},
	}

	// hexahedron: two tetrahedra glued on the simplex triangle
	hexahedronFacets = [][3]int{{0, 3, 2}, {1, 3, 0}, {2, 3, 1}, {2, 4, 0}, {0, 4, 1}, {1, 4, 2}}
	hexahedronLinks  = [][4]int{
		{0, 0, 1, 1}, {0, 1, 2, 0}, {0, 2, 3, 2},
		{1, 0, 2, 1}, {1, 2, 4, 2}, {2, 2, 5, 2},
		{3, 0, 5, 1}, {3, 1, 4, 0}, {4, 1, 5, 0},
	}

	// octahedron: four points around the simplex segment, joined to both ends
	octahedronFacets = [][3]int{
		{2, 0, 5}, {3, 0, 2}, {4, 0, 3}, {5, 0, 4},
		{2, 1, 3}, {3, 1, 4}, {4, 1, 5}, {5, 1, 2},
	}
	octahedronLinks = [][4]int{
		{0, 0, 1, 1}, {0, 1, 3, 0}, {0, 2, 7, 2},
		{1, 0, 2, 1}, {1, 2, 4, 2}, {2, 0, 3, 1},
		{2, 2, 5, 2}, {3, 2, 6, 2}, {4, 0, 7, 1},
		{4, 1, 5, 0}, {5, 1, 6, 0}, {6, 1, 7, 0},
	}
)

// seedTetrahedron builds the polytope from a 4-point simplex.
func (p *Polytope) seedTetrahedron() bool {
	var facets [4]FacetIndex
	if !p.addFacets(facets[:], tetrahedronFacets) {
		return false
	}
	p.linkAll(facets[:], tetrahedronLinks)
	p.numVerts = 4
	return p.heap.Len() > 0
}

// expandTriangle builds the polytope from a 3-point simplex.
//
// Two support points are sampled on either side of the triangle plane. The
// resulting hexahedron must enclose the origin.
func (p *Polytope) expandTriangle(a, b gjk.Convex) bool {
	q0, q1, q2 := p.qBuf[0], p.qBuf[1], p.qBuf[2]

	normal := q1.Sub(q0).Cross(q2.Sub(q0))
	if normal.LenSqr() <= degenerateLengthSquared {
		return false
	}
	normal = normal.Normalize()

	p.setVertex(3, a.Support(normal), b.Support(normal.Mul(-1)))
	p.setVertex(4, a.Support(normal.Mul(-1)), b.Support(normal))

	if !originInTetrahedron(q0, q1, q2, p.qBuf[3]) && !originInTetrahedron(q0, q1, q2, p.qBuf[4]) {
		return false
	}

	var facets [6]FacetIndex
	if !p.addFacets(facets[:], hexahedronFacets) {
		return false
	}
	p.linkAll(facets[:], hexahedronLinks)
	p.numVerts = 5
	return p.heap.Len() > 0
}

// expandSegment builds the polytope from a 2-point simplex.
//
// Four support points are sampled around the segment, along a direction
// orthogonal to it rotated by quarter turns, forming an octahedron.
func (p *Polytope) expandSegment(a, b gjk.Convex) bool {
	dir := p.qBuf[1].Sub(p.qBuf[0])
	if dir.LenSqr() <= degenerateLengthSquared {
		return false
	}
	dir = dir.Normalize()

	tangent := mgl64.Vec3{1, 1, 1}.Cross(dir)
	if tangent.LenSqr() <= degenerateLengthSquared {
		// dir is parallel to the diagonal
		tangent = mgl64.Vec3{1, 0, 0}.Cross(dir)
	}
	aux := dir.Cross(tangent.Normalize())

	rotation := mgl64.QuatRotate(math.Pi/2, dir)
	for i := 2; i < 6; i++ {
		p.setVertex(i, a.Support(aux), b.Support(aux.Mul(-1)))
		aux = rotation.Rotate(aux)
	}

	var facets [8]FacetIndex
	if !p.addFacets(facets[:], octahedronFacets) {
		return false
	}
	p.linkAll(facets[:], octahedronLinks)
	p.numVerts = 6
	return p.heap.Len() > 0
}

// originInTetrahedron reports whether no face of the tetrahedron strictly
// separates the origin from the opposite vertex.
func originInTetrahedron(p0, p1, p2, p3 mgl64.Vec3) bool {
	return !originOutsideFace(p0, p1, p2, p3) &&
		!originOutsideFace(p0, p2, p3, p1) &&
		!originOutsideFace(p0, p3, p1, p2) &&
		!originOutsideFace(p1, p3, p2, p0)
}

func originOutsideFace(a, b, c, d mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	return n.Dot(a.Mul(-1))*n.Dot(d.Sub(a)) < 0
}
