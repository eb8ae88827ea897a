package analysis

import (
	"math"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/philipparndt/stlfaces/pkg/stl"
)

// PLA density in g/cm³
const plaDensity = 1.24

// MeasurementResult contains facet-level measurements of an STL model,
// taken before any point deduplication
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64 // mesh volume, not bounding box
	SurfaceArea   float64
	TriangleCount int
	FacetEdges    int // three per facet, shared edges counted twice
	MinEdgeLength float64
	MaxEdgeLength float64
	WeightPLA100  float64 // grams at 100% infill, assuming mm units
}

// AnalyzeModel measures the raw facets of an STL model
func AnalyzeModel(model *stl.Model) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox:   model.BoundingBox(),
		SurfaceArea:   model.SurfaceArea(),
		TriangleCount: model.TriangleCount(),
		Volume:        model.Volume(),
		FacetEdges:    3 * model.TriangleCount(),
	}
	result.Dimensions = result.BoundingBox.Size()
	result.WeightPLA100 = result.Volume / 1000.0 * plaDensity

	if result.TriangleCount == 0 {
		return result
	}

	result.MinEdgeLength = math.MaxFloat64
	for _, t := range model.Triangles {
		for _, l := range t.EdgeLengths() {
			result.MinEdgeLength = math.Min(result.MinEdgeLength, l)
			result.MaxEdgeLength = math.Max(result.MaxEdgeLength, l)
		}
	}

	return result
}
