package mesh

import (
	"context"
	"math"
	"testing"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertOrFindPointIdempotent(t *testing.T) {
	im := NewImporter(extentOf(cubeFacets()))
	p := v(0.5, 0.5, 0.5)

	first := im.InsertOrFindPoint(p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, im.InsertOrFindPoint(p))
	}
	assert.Equal(t, first, im.InsertOrFindPoint(p.Add(v(1e-9, -1e-9, 1e-9))))
	assert.Len(t, im.Points(), 1)

	other := im.InsertOrFindPoint(v(0.5, 0.5, 0.6))
	assert.NotEqual(t, first, other)
	assert.Len(t, im.Points(), 2)
}

func TestInsertOrFindPointZeroExtent(t *testing.T) {
	extent := geometry.NewBoundingBox()
	extent.Extend(v(3, 3, 3))

	im := NewImporter(extent)
	assert.Equal(t, DefaultMinPrecision, im.Precision())
	assert.Equal(t, 0, im.InsertOrFindPoint(v(3, 3, 3)))
	assert.Equal(t, 0, im.InsertOrFindPoint(v(3, 3, 3)))
	assert.Len(t, im.Points(), 1)

	empty := NewImporter(geometry.NewBoundingBox())
	assert.Equal(t, DefaultMinPrecision, empty.Precision())
}

func TestPrecisionScalesWithExtent(t *testing.T) {
	extent := geometry.NewBoundingBox()
	extent.Extend(v(0, 0, 0))
	extent.Extend(v(3, 4, 0))

	im := NewImporter(extent, WithRelativePrecision(1e-3))
	assert.InDelta(t, 5e-3, im.Precision(), 1e-15)
}

func TestCreateOrFindEdgeSymmetric(t *testing.T) {
	im := NewImporter(extentOf(cubeFacets()))

	a := im.CreateOrFindEdge(3, 7, 0)
	b := im.CreateOrFindEdge(7, 3, 1)
	require.Equal(t, a, b)

	e := im.Edges()[a]
	assert.Equal(t, 3, e.P1)
	assert.Equal(t, 7, e.P2)
	assert.Equal(t, []int{0, 1}, e.Triangles)

	found, ok := im.FindEdge(7, 3)
	assert.True(t, ok)
	assert.Equal(t, a, found)
	assert.Len(t, im.Edges(), 1)
}

func TestAddFacetFixesWinding(t *testing.T) {
	im := NewImporter(extentOf(gridFacets(1)))

	ti, err := im.AddFacet(v(0, 0, -1), v(0, 0, 0), v(1, 0, 0), v(0, 1, 0))
	require.NoError(t, err)

	tri := im.Triangles()[ti]
	assert.Equal(t, [3]int{0, 2, 1}, tri.P)
	assert.Equal(t, v(0, 0, -1), tri.Normal)
}

func TestAddFacetCollapsed(t *testing.T) {
	im := NewImporter(extentOf(gridFacets(1)))

	_, err := im.AddFacet(geometry.Vector3{}, v(0, 0, 0), v(0, 0, 0), v(1, 1, 0))
	require.ErrorIs(t, err, ErrDegenerateFacet)
	assert.Empty(t, im.Triangles())
	assert.Equal(t, 1, im.Stats().Collapsed)
	assert.Equal(t, 1, im.Stats().Facets)
}

func TestAddFacetAfterBuild(t *testing.T) {
	im := newBuilt(gridFacets(1))
	_, err := im.AddFacet(geometry.Vector3{}, v(0, 0, 1), v(1, 0, 1), v(0, 1, 1))
	assert.ErrorIs(t, err, ErrEdgesBuilt)
}

func TestBendingAngleFlat(t *testing.T) {
	im := newBuilt([]geometry.Triangle{
		geometry.NewTriangle(geometry.Vector3{}, v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)),
		geometry.NewTriangle(geometry.Vector3{}, v(1, 0, 0), v(1, 1, 0), v(0, 1, 0)),
	})

	ei, ok := im.FindEdge(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 0, im.ComputeBendingAngle(ei), 1e-9)
	assert.Equal(t, EdgeManifold, im.Edges()[ei].Kind())
}

func TestBendingAngleFoldedBack(t *testing.T) {
	im := newBuilt([]geometry.Triangle{
		geometry.NewTriangle(geometry.Vector3{}, v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)),
		geometry.NewTriangle(geometry.Vector3{}, v(0, 0, 0), v(0.5, 1, 0), v(1, 0, 0)),
	})

	ei, ok := im.FindEdge(0, 1)
	require.True(t, ok)
	assert.InDelta(t, math.Pi, im.Edges()[ei].Bending, 1e-9)
}

func TestBendingAngleRightAngle(t *testing.T) {
	im := newBuilt(cubeFacets())

	flat, folded := 0, 0
	for ei, e := range im.Edges() {
		require.Equal(t, EdgeManifold, e.Kind(), "edge %d", ei)
		switch {
		case math.Abs(e.Bending) < 1e-9:
			flat++
		case math.Abs(e.Bending-math.Pi/2) < 1e-9:
			folded++
		default:
			t.Errorf("edge %d: unexpected bending angle %v", ei, e.Bending)
		}
	}
	assert.Equal(t, 6, flat)
	assert.Equal(t, 12, folded)
}

func TestBoundarySentinel(t *testing.T) {
	im := newBuilt([]geometry.Triangle{
		geometry.NewTriangle(geometry.Vector3{}, v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)),
	})

	for ei, e := range im.Edges() {
		assert.Equal(t, EdgeBoundary, e.Kind())
		assert.Equal(t, BoundarySentinel, e.Bending)
		assert.Equal(t, BoundarySentinel, im.ComputeBendingAngle(ei))
	}
	assert.Equal(t, 3, im.Stats().Boundary)

	id, err := im.CollectPlanarTriangles(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, im.Surfaces()[id].Triangles)
}

func TestNonManifoldEdge(t *testing.T) {
	im := newBuilt([]geometry.Triangle{
		geometry.NewTriangle(geometry.Vector3{}, v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)),
		geometry.NewTriangle(geometry.Vector3{}, v(1, 0, 0), v(0, 0, 0), v(0, -1, 0)),
		geometry.NewTriangle(geometry.Vector3{}, v(0, 0, 0), v(1, 0, 0), v(0, 0, 1)),
	})

	ei, ok := im.FindEdge(0, 1)
	require.True(t, ok)

	e := im.Edges()[ei]
	assert.Equal(t, EdgeNonManifold, e.Kind())
	assert.Equal(t, []int{0, 1, 2}, e.Triangles)
	assert.Equal(t, BoundarySentinel, e.Bending)
	assert.Equal(t, 1, im.Stats().NonManifold)

	_, ok = e.Other(0)
	assert.False(t, ok)
}

func TestCollectPlanarTrianglesCube(t *testing.T) {
	for f := 0; f < 6; f++ {
		for _, seed := range []int{2 * f, 2*f + 1} {
			im := newBuilt(cubeFacets())

			id, err := im.CollectPlanarTriangles(seed)
			require.NoError(t, err)

			s := im.Surfaces()[id]
			assert.Equal(t, []int{2 * f, 2*f + 1}, s.Triangles, "seed %d", seed)
			assert.Len(t, s.Points, 4)
			assert.InDelta(t, 1, s.Plane.Normal.Dot(cubeNormals[f]), 1e-9, "seed %d", seed)
		}
	}
}

func TestCollectPlanarTrianglesPartition(t *testing.T) {
	im := newBuilt(cubeFacets())

	for ti := range im.Triangles() {
		_, err := im.CollectPlanarTriangles(ti)
		require.NoError(t, err)
	}

	require.Len(t, im.Surfaces(), 6)
	seen := make(map[int]int)
	for _, s := range im.Surfaces() {
		assert.Len(t, s.Triangles, 2)
		for _, ti := range s.Triangles {
			seen[ti]++
			assert.Equal(t, s.ID, im.Triangles()[ti].Surface)
		}
	}
	assert.Len(t, seen, 12)
	for ti, n := range seen {
		assert.Equal(t, 1, n, "triangle %d", ti)
	}
}

func TestCollectPlanarTrianglesAlreadyAssigned(t *testing.T) {
	im := newBuilt(cubeFacets())

	first, err := im.CollectPlanarTriangles(0)
	require.NoError(t, err)
	again, err := im.CollectPlanarTriangles(1)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Len(t, im.Surfaces(), 1)
}

func TestCollectPlanarTrianglesRequiresEdges(t *testing.T) {
	im := NewImporter(extentOf(cubeFacets()))
	_, err := im.CollectPlanarTriangles(0)
	assert.ErrorIs(t, err, ErrEdgesNotBuilt)
	assert.ErrorIs(t, im.ClusterPlanar(), ErrEdgesNotBuilt)
}

func TestClusterPlanarSeedPolicy(t *testing.T) {
	// No cube triangle has three flat edges.
	cube := newBuilt(cubeFacets(), WithPartialSeeds(false))
	require.NoError(t, cube.ClusterPlanar())
	assert.Empty(t, cube.Surfaces())
	assert.Len(t, cube.Result().Unassigned(), 12)

	// The centre quad of a 3x3 grid is fully interior and seeds the whole grid.
	grid := newBuilt(gridFacets(3), WithPartialSeeds(false))
	require.NoError(t, grid.ClusterPlanar())
	require.Len(t, grid.Surfaces(), 1)
	assert.Len(t, grid.Surfaces()[0].Triangles, 18)
	assert.Empty(t, grid.Result().Unassigned())
}

func TestClusterPlanarDegenerateTriangle(t *testing.T) {
	facets := append(gridFacets(1),
		geometry.NewTriangle(geometry.Vector3{}, v(2, 0, 0), v(3, 0, 0), v(4, 0, 0)),
	)
	im := newBuilt(facets)
	require.NoError(t, im.ClusterPlanar())

	stats := im.Stats()
	assert.Equal(t, 1, stats.Degenerate)
	assert.Equal(t, 1, stats.FailedFits)
	assert.Len(t, im.Surfaces(), 1)
	assert.Equal(t, []int{2}, im.Result().Unassigned())

	_, err := im.CollectPlanarTriangles(2)
	assert.ErrorIs(t, err, ErrPlaneFit)
}

func TestClusterPlanarCountsFailedClusterOnce(t *testing.T) {
	// Two slivers sharing a flat edge; all four points lie within 1e-7 of
	// the x axis, too close to a line for a plane fit.
	a, b, c, d := v(0, 0, 0), v(1, 0, 0), v(2, 1e-7, 0), v(3, 0, 0)
	im := newBuilt([]geometry.Triangle{
		geometry.NewTriangle(geometry.Vector3{}, a, b, c),
		geometry.NewTriangle(geometry.Vector3{}, b, d, c),
	})

	ei, ok := im.FindEdge(1, 2)
	require.True(t, ok)
	require.Equal(t, EdgeManifold, im.Edges()[ei].Kind())
	require.Less(t, im.Edges()[ei].Bending, DefaultSmoothTolerance)

	require.NoError(t, im.ClusterPlanar())
	assert.Equal(t, 0, im.Stats().Degenerate)
	assert.Equal(t, 1, im.Stats().FailedFits)
	assert.Empty(t, im.Surfaces())
	assert.Equal(t, []int{0, 1}, im.Result().Unassigned())
}

func TestImportCube(t *testing.T) {
	res, err := Import(context.Background(), cubeFacets())
	require.NoError(t, err)

	assert.Len(t, res.Points, 8)
	assert.Len(t, res.Triangles, 12)
	assert.Len(t, res.Edges, 18)
	require.Len(t, res.Surfaces, 6)
	assert.Equal(t, 0, res.Stats.Boundary)
	assert.Empty(t, res.Unassigned())

	for _, s := range res.Surfaces {
		require.Len(t, s.Outlines, 1, "surface %d", s.ID)
		assert.Len(t, s.Outlines[0], 4)
		assert.InDelta(t, 1.0, res.SurfaceArea(s.ID), 1e-12)

		normal := res.Triangles[s.Triangles[0]].Normal
		assert.InDelta(t, 1, s.Plane.Normal.Dot(normal), 1e-9)
		for _, p := range s.Points {
			assert.True(t, s.Plane.Contains(res.Points[p], 1e-9))
		}
	}
}

func TestImportMergesJitteredCorners(t *testing.T) {
	facets := cubeFacets()
	facets[3].V2 = facets[3].V2.Add(v(1e-9, 0, -1e-9))

	res, err := Import(context.Background(), facets)
	require.NoError(t, err)
	assert.Len(t, res.Points, 8)
	assert.Len(t, res.Surfaces, 6)
}

func TestImportGridOutline(t *testing.T) {
	res, err := Import(context.Background(), gridFacets(3))
	require.NoError(t, err)

	assert.Len(t, res.Points, 16)
	assert.Equal(t, 12, res.Stats.Boundary)
	require.Len(t, res.Surfaces, 1)

	outlines := res.Surfaces[0].Outlines
	require.Len(t, outlines, 1)
	loop := outlines[0]
	assert.Len(t, loop, 12)

	// Outline follows the winding: counter-clockwise seen from +Z.
	area := 0.0
	for i := range loop {
		a, b := res.Points[loop[i]], res.Points[loop[(i+1)%len(loop)]]
		area += a.X*b.Y - b.X*a.Y
	}
	assert.InDelta(t, 18.0, area, 1e-9)
}

func TestImportOutlineWithHole(t *testing.T) {
	res, err := Import(context.Background(), gridWithHole(3, 1, 1))
	require.NoError(t, err)
	require.Len(t, res.Surfaces, 1)

	outlines := res.Surfaces[0].Outlines
	require.Len(t, outlines, 2)
	lengths := []int{len(outlines[0]), len(outlines[1])}
	assert.ElementsMatch(t, []int{12, 4}, lengths)
}

func TestImportLargeOutlineKeepsHole(t *testing.T) {
	// The outer boundary has 240 points; walking it once per point would
	// need 240*240 steps.
	res, err := Import(context.Background(), gridWithHole(60, 58, 58), WithMaxLoopSteps(1000))
	require.NoError(t, err)
	require.Len(t, res.Surfaces, 1)
	assert.Equal(t, 0, res.Stats.TruncatedOutlines)

	outlines := res.Surfaces[0].Outlines
	require.Len(t, outlines, 2)
	assert.ElementsMatch(t, []int{240, 4}, []int{len(outlines[0]), len(outlines[1])})
}

func TestImportTruncatedOutline(t *testing.T) {
	// 12 steps are needed for the outer boundary, 4 for the hole.
	res, err := Import(context.Background(), gridWithHole(3, 1, 1), WithMaxLoopSteps(5))
	require.NoError(t, err)
	require.Len(t, res.Surfaces, 1)
	assert.Equal(t, 1, res.Stats.TruncatedOutlines)

	outlines := res.Surfaces[0].Outlines
	require.Len(t, outlines, 1)
	hole := outlines[0]
	require.Len(t, hole, 4)
	for _, p := range hole {
		q := res.Points[p]
		assert.True(t, q.X >= 1 && q.X <= 2 && q.Y >= 1 && q.Y <= 2, "point %v", q)
	}
}

func TestImportTruncatedOutlineCountsSurfaces(t *testing.T) {
	res, err := Import(context.Background(), cubeFacets(), WithMaxLoopSteps(2))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Stats.TruncatedOutlines)
	for _, s := range res.Surfaces {
		assert.NotNil(t, s.Outlines)
		assert.Empty(t, s.Outlines)
	}
}

func TestImportWithoutOutlines(t *testing.T) {
	res, err := Import(context.Background(), cubeFacets(), WithOutlines(false))
	require.NoError(t, err)
	for _, s := range res.Surfaces {
		assert.Nil(t, s.Outlines)
	}
}

func TestImportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Import(ctx, cubeFacets())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportEmpty(t *testing.T) {
	res, err := Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Points)
	assert.Empty(t, res.Surfaces)
}
