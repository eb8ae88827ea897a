package mesh

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/philipparndt/stlfaces/pkg/geometry"
)

// R-tree node fan-out
const (
	minBranch = 25
	maxBranch = 50
)

// indexedPoint is a point stored in the R-tree with a box of ±tol around it
type indexedPoint struct {
	id  int
	pos geometry.Vector3
	box rtreego.Rect
}

func (p *indexedPoint) Bounds() rtreego.Rect {
	return p.box
}

// PointIndex answers "is there already a point within tol of p" queries
// over a growing point set.
type PointIndex struct {
	tree *rtreego.Rtree
	tol  float64
}

// NewPointIndex creates an empty index. tol must be positive.
func NewPointIndex(tol float64) *PointIndex {
	return &PointIndex{
		tree: rtreego.NewTree(3, minBranch, maxBranch),
		tol:  tol,
	}
}

// Tolerance returns the match distance of the index
func (pi *PointIndex) Tolerance() float64 {
	return pi.tol
}

// Len returns the number of indexed points
func (pi *PointIndex) Len() int {
	return pi.tree.Size()
}

// Insert adds point p under id
func (pi *PointIndex) Insert(id int, p geometry.Vector3) {
	pi.tree.Insert(&indexedPoint{id: id, pos: p, box: pi.box(p)})
}

// Find returns the id of the indexed point nearest to p among those closer
// than the tolerance. Ties go to the lower id.
func (pi *PointIndex) Find(p geometry.Vector3) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for _, s := range pi.tree.SearchIntersect(pi.box(p)) {
		candidate := s.(*indexedPoint)
		d := candidate.pos.Distance(p)
		if d >= pi.tol {
			continue
		}
		if d < bestDist || (d == bestDist && candidate.id < best) {
			best, bestDist = candidate.id, d
		}
	}
	return best, best >= 0
}

func (pi *PointIndex) box(p geometry.Vector3) rtreego.Rect {
	return rtreego.Point{p.X, p.Y, p.Z}.ToRect(pi.tol)
}
