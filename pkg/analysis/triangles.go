package analysis

import (
	"sort"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/samber/lo"
)

// TriangleInfo describes one triangle of an imported mesh
type TriangleInfo struct {
	Index      int
	Area       float64
	Perimeter  float64
	Surface    int
	Degenerate bool
	Vertices   [3]geometry.Vector3
}

// Triangles lists every triangle of res
func Triangles(res *mesh.Result) []TriangleInfo {
	return lo.Map(res.Triangles, func(t mesh.Triangle, i int) TriangleInfo {
		v := res.Vertices(i)
		tri := geometry.NewTriangle(t.Normal, v[0], v[1], v[2])
		return TriangleInfo{
			Index:      i,
			Area:       tri.Area(),
			Perimeter:  tri.Perimeter(),
			Surface:    t.Surface,
			Degenerate: t.Degenerate(),
			Vertices:   v,
		}
	})
}

// SortTrianglesByArea sorts in place, largest first unless ascending is set
func SortTrianglesByArea(triangles []TriangleInfo, ascending bool) {
	sort.SliceStable(triangles, func(i, j int) bool {
		if ascending {
			return triangles[i].Area < triangles[j].Area
		}
		return triangles[i].Area > triangles[j].Area
	})
}

// SurfacesWithPoint returns the ids of the surfaces that use point p
func SurfacesWithPoint(res *mesh.Result, p int) []int {
	return lo.FilterMap(res.Surfaces, func(s mesh.Surface, _ int) (int, bool) {
		return s.ID, lo.Contains(s.Points, p)
	})
}

// NearestPoint returns the index of the deduplicated point closest to q,
// or -1 for an empty mesh
func NearestPoint(res *mesh.Result, q geometry.Vector3) int {
	best := -1
	bestDist := 0.0
	for i, p := range res.Points {
		d := q.Distance(p)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
