package mesh

import (
	"fmt"
	"math"

	"github.com/philipparndt/stlfaces/pkg/geometry"
)

// NoSurface marks a triangle that is not part of any planar surface
const NoSurface = -1

// BoundarySentinel is the bending angle of every edge that does not join
// exactly two triangles, and of edges next to a degenerate triangle.
// It is the largest possible angle so such edges never count as smooth.
const BoundarySentinel = math.Pi

// Triangle is a facet over deduplicated points.
// P and E are indices into the importer's point and edge lists;
// edge E[k] runs from P[k] to P[(k+1)%3].
type Triangle struct {
	P       [3]int
	E       [3]int
	Normal  geometry.Vector3 // unit normal from the winding, zero if degenerate
	Surface int              // surface index or NoSurface
}

// Degenerate reports whether the triangle has no area
func (t Triangle) Degenerate() bool {
	return t.Normal.IsZero()
}

// EdgeKind classifies an edge by the number of adjoining triangles
type EdgeKind int

const (
	EdgeBoundary    EdgeKind = iota // one triangle
	EdgeManifold                    // two triangles
	EdgeNonManifold                 // three or more triangles
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeBoundary:
		return "boundary"
	case EdgeManifold:
		return "manifold"
	case EdgeNonManifold:
		return "non-manifold"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Edge is an unordered point pair, stored with P1 < P2, and every triangle
// that has it as a side.
type Edge struct {
	P1, P2    int
	Triangles []int
	Bending   float64 // angle between the two triangle normals, or BoundarySentinel
}

// Kind returns the classification of the edge
func (e Edge) Kind() EdgeKind {
	switch {
	case len(e.Triangles) <= 1:
		return EdgeBoundary
	case len(e.Triangles) == 2:
		return EdgeManifold
	default:
		return EdgeNonManifold
	}
}

// Other returns the triangle on the other side of a manifold edge
func (e Edge) Other(t int) (int, bool) {
	if len(e.Triangles) != 2 {
		return -1, false
	}
	switch t {
	case e.Triangles[0]:
		return e.Triangles[1], true
	case e.Triangles[1]:
		return e.Triangles[0], true
	}
	return -1, false
}

// Surface is a planar group of triangles with its fitted plane.
// Outlines are closed loops of point indices around the group, following
// the triangle winding.
type Surface struct {
	ID        int
	Plane     geometry.Plane
	Triangles []int
	Points    []int
	Outlines  [][]int
}

// Stats counts what happened during an import
type Stats struct {
	Facets            int // facets passed to AddFacet
	Collapsed         int // facets rejected because two corners merged
	Degenerate        int // triangles with zero area
	Boundary          int // edges with one triangle
	NonManifold       int // edges with three or more triangles
	FailedFits        int // clusters left without a surface
	TruncatedOutlines int // surfaces whose outline search hit the step budget
}

func edgeKey(p1, p2 int) [2]int {
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	return [2]int{p1, p2}
}
