package mesh

import (
	"github.com/philipparndt/stlfaces/pkg/geometry"
)

func v(x, y, z float64) geometry.Vector3 {
	return geometry.NewVector3(x, y, z)
}

// quad splits the counter-clockwise quad a, b, c, d into two facets
// sharing the diagonal a-c.
func quad(a, b, c, d geometry.Vector3) []geometry.Triangle {
	n := geometry.FaceNormal(a, b, c)
	return []geometry.Triangle{
		geometry.NewTriangle(n, a, b, c),
		geometry.NewTriangle(n, a, c, d),
	}
}

// cubeFacets returns a unit cube with outward normals. Face f consists of
// facets 2f and 2f+1.
func cubeFacets() []geometry.Triangle {
	var facets []geometry.Triangle
	faces := [][4]geometry.Vector3{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)}, // -Z
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)}, // +Z
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)}, // -Y
		{v(0, 1, 0), v(0, 1, 1), v(1, 1, 1), v(1, 1, 0)}, // +Y
		{v(0, 0, 0), v(0, 0, 1), v(0, 1, 1), v(0, 1, 0)}, // -X
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)}, // +X
	}
	for _, f := range faces {
		facets = append(facets, quad(f[0], f[1], f[2], f[3])...)
	}
	return facets
}

// cubeNormals lists the outward normal of each cube face in cubeFacets order
var cubeNormals = []geometry.Vector3{
	v(0, 0, -1), v(0, 0, 1), v(0, -1, 0), v(0, 1, 0), v(-1, 0, 0), v(1, 0, 0),
}

// gridFacets returns an n x n grid of unit quads in the z = 0 plane
func gridFacets(n int) []geometry.Triangle {
	var facets []geometry.Triangle
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := float64(i), float64(j)
			facets = append(facets, quad(v(x, y, 0), v(x+1, y, 0), v(x+1, y+1, 0), v(x, y+1, 0))...)
		}
	}
	return facets
}

// gridWithHole returns an n x n grid without the quad at column i, row j
func gridWithHole(n, i, j int) []geometry.Triangle {
	skip := i*n + j
	var facets []geometry.Triangle
	for k, f := range gridFacets(n) {
		if k/2 == skip {
			continue
		}
		facets = append(facets, f)
	}
	return facets
}

func extentOf(facets []geometry.Triangle) geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, f := range facets {
		bbox.Extend(f.V1)
		bbox.Extend(f.V2)
		bbox.Extend(f.V3)
	}
	return bbox
}

// newBuilt adds all facets to a fresh importer and builds the edges
func newBuilt(facets []geometry.Triangle, opts ...Option) *Importer {
	im := NewImporter(extentOf(facets), opts...)
	for _, f := range facets {
		_, _ = im.AddFacet(f.Normal, f.V1, f.V2, f.V3)
	}
	im.BuildEdges()
	return im
}
