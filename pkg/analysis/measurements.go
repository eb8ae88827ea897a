package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/samber/lo"
)

// EdgeInfo contains information about a deduplicated edge
type EdgeInfo struct {
	Index     int
	Start     geometry.Vector3
	End       geometry.Vector3
	Length    float64
	Bending   float64
	Kind      mesh.EdgeKind
	Triangles int
}

// SurfaceInfo summarizes one planar surface
type SurfaceInfo struct {
	ID        int
	Triangles int
	Area      float64
	Normal    geometry.Vector3
	Origin    geometry.Vector3
	Outlines  int
}

// TopologyReport contains measurements of an imported mesh
type TopologyReport struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64
	SurfaceArea   float64
	PointCount    int
	TriangleCount int
	EdgeCount     int
	BoundaryEdges int
	NonManifold   int
	SurfaceCount  int
	Unassigned    int
	Closed        bool
	Euler         int // V - E + F over points, edges and triangles
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	AllEdges      []EdgeInfo
	Surfaces      []SurfaceInfo
}

// AnalyzeMesh measures an import result
func AnalyzeMesh(res *mesh.Result) *TopologyReport {
	report := &TopologyReport{
		BoundingBox:   geometry.NewBoundingBox(),
		PointCount:    len(res.Points),
		TriangleCount: len(res.Triangles),
		EdgeCount:     len(res.Edges),
		SurfaceCount:  len(res.Surfaces),
		Unassigned:    len(res.Unassigned()),
		AllEdges:      make([]EdgeInfo, 0, len(res.Edges)),
	}

	for _, p := range res.Points {
		report.BoundingBox.Extend(p)
	}
	report.Dimensions = report.BoundingBox.Size()
	report.Volume = report.BoundingBox.Volume()

	for i := range res.Triangles {
		v := res.Vertices(i)
		report.SurfaceArea += geometry.NewTriangle(geometry.Vector3{}, v[0], v[1], v[2]).Area()
	}

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for i, e := range res.Edges {
		length := res.EdgeLength(i)
		info := EdgeInfo{
			Index:     i,
			Start:     res.Points[e.P1],
			End:       res.Points[e.P2],
			Length:    length,
			Bending:   e.Bending,
			Kind:      e.Kind(),
			Triangles: len(e.Triangles),
		}
		report.AllEdges = append(report.AllEdges, info)

		switch info.Kind {
		case mesh.EdgeBoundary:
			report.BoundaryEdges++
		case mesh.EdgeNonManifold:
			report.NonManifold++
		}

		totalLength += length
		minLength = math.Min(minLength, length)
		maxLength = math.Max(maxLength, length)
	}

	if report.EdgeCount > 0 {
		report.MinEdgeLength = minLength
		report.MaxEdgeLength = maxLength
		report.AvgEdgeLength = totalLength / float64(report.EdgeCount)
	}

	report.Closed = report.EdgeCount > 0 && report.BoundaryEdges == 0 && report.NonManifold == 0
	report.Euler = report.PointCount - report.EdgeCount + report.TriangleCount

	report.Surfaces = lo.Map(res.Surfaces, func(s mesh.Surface, i int) SurfaceInfo {
		return SurfaceInfo{
			ID:        s.ID,
			Triangles: len(s.Triangles),
			Area:      res.SurfaceArea(i),
			Normal:    s.Plane.Normal,
			Origin:    s.Plane.Origin,
			Outlines:  len(s.Outlines),
		}
	})

	return report
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(report *TopologyReport, minLength, maxLength float64) []EdgeInfo {
	return lo.Filter(report.AllEdges, func(e EdgeInfo, _ int) bool {
		return e.Length >= minLength && e.Length <= maxLength
	})
}

// FindLongestEdges returns the N longest edges in the model
func FindLongestEdges(report *TopologyReport, count int) []EdgeInfo {
	return topEdges(report.AllEdges, count, func(a, b EdgeInfo) bool {
		return a.Length > b.Length
	})
}

// FindShortestEdges returns the N shortest edges in the model
func FindShortestEdges(report *TopologyReport, count int) []EdgeInfo {
	return topEdges(report.AllEdges, count, func(a, b EdgeInfo) bool {
		return a.Length < b.Length
	})
}

// SharpEdges returns the edges bending by at least minAngle radians,
// sharpest first. Boundary and non-manifold edges are included since they
// carry the maximum bending angle.
func SharpEdges(report *TopologyReport, minAngle float64) []EdgeInfo {
	edges := lo.Filter(report.AllEdges, func(e EdgeInfo, _ int) bool {
		return e.Bending >= minAngle
	})
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Bending > edges[j].Bending
	})
	return edges
}

// LargestSurfaces returns the N surfaces with the largest area
func LargestSurfaces(report *TopologyReport, count int) []SurfaceInfo {
	surfaces := make([]SurfaceInfo, len(report.Surfaces))
	copy(surfaces, report.Surfaces)

	sort.SliceStable(surfaces, func(i, j int) bool {
		return surfaces[i].Area > surfaces[j].Area
	})

	if count > len(surfaces) {
		count = len(surfaces)
	}
	return surfaces[:count]
}

func topEdges(all []EdgeInfo, count int, less func(a, b EdgeInfo) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(all))
	copy(edges, all)

	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i], edges[j])
	})

	if count > len(edges) {
		count = len(edges)
	}
	return edges[:count]
}

// FindNearestVertex finds the deduplicated point nearest to a given point
func FindNearestVertex(res *mesh.Result, point geometry.Vector3) (geometry.Vector3, float64) {
	i := NearestPoint(res, point)
	if i < 0 {
		return geometry.Vector3{}, math.MaxFloat64
	}
	return res.Points[i], point.Distance(res.Points[i])
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

// FormatAngle formats an angle in radians as degrees
func FormatAngle(rad float64) string {
	return fmt.Sprintf("%.4f°", rad*180/math.Pi)
}
