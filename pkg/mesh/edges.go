package mesh

import (
	"slices"
)

// CreateOrFindEdge returns the edge between points p1 and p2, creating it
// if needed, and records tri as one of its triangles.
// The point order does not matter.
func (im *Importer) CreateOrFindEdge(p1, p2, tri int) int {
	key := edgeKey(p1, p2)
	if i, ok := im.edgeIndex[key]; ok {
		e := &im.edges[i]
		if !slices.Contains(e.Triangles, tri) {
			e.Triangles = append(e.Triangles, tri)
		}
		return i
	}

	i := len(im.edges)
	im.edges = append(im.edges, Edge{
		P1:        key[0],
		P2:        key[1],
		Triangles: []int{tri},
		Bending:   BoundarySentinel,
	})
	im.edgeIndex[key] = i
	return i
}

// FindEdge returns the edge between p1 and p2 if it exists
func (im *Importer) FindEdge(p1, p2 int) (int, bool) {
	i, ok := im.edgeIndex[edgeKey(p1, p2)]
	return i, ok
}

// BuildEdges links every triangle side to its edge, then computes the
// bending angle of every edge. It runs once, after all facets are added,
// so each edge sees all of its triangles regardless of facet order.
func (im *Importer) BuildEdges() {
	if im.built {
		return
	}

	for ti := range im.triangles {
		t := &im.triangles[ti]
		for k := 0; k < 3; k++ {
			t.E[k] = im.CreateOrFindEdge(t.P[k], t.P[(k+1)%3], ti)
		}
	}

	for ei := range im.edges {
		im.ComputeBendingAngle(ei)
		switch im.edges[ei].Kind() {
		case EdgeBoundary:
			im.stats.Boundary++
		case EdgeNonManifold:
			im.stats.NonManifold++
		}
	}

	im.built = true
	im.cfg.logger.Debug("edges built",
		"edges", len(im.edges),
		"boundary", im.stats.Boundary,
		"nonManifold", im.stats.NonManifold)
}

// ComputeBendingAngle stores and returns the angle between the normals of
// the two triangles of edge ei. Edges that are not shared by exactly two
// triangles, or that touch a degenerate triangle, get BoundarySentinel.
func (im *Importer) ComputeBendingAngle(ei int) float64 {
	e := &im.edges[ei]
	e.Bending = BoundarySentinel

	if len(e.Triangles) != 2 {
		return e.Bending
	}
	n1 := im.triangles[e.Triangles[0]].Normal
	n2 := im.triangles[e.Triangles[1]].Normal
	if n1.IsZero() || n2.IsZero() {
		return e.Bending
	}

	e.Bending = n1.AngleTo(n2)
	return e.Bending
}

// smooth reports whether the edge joins two triangles across a flat fold
func (im *Importer) smooth(e Edge) bool {
	return len(e.Triangles) == 2 && e.Bending < im.cfg.smoothTolerance
}
