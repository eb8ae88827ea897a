package analysis

import (
	"math"
	"testing"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/philipparndt/stlfaces/pkg/stl"
)

func TestAnalyzeModel(t *testing.T) {
	model := stl.NewModel("box")
	for _, f := range boxFacets(geometry.NewVector3(10, 20, 30)) {
		model.AddTriangle(f)
	}

	result := AnalyzeModel(model)

	if result.TriangleCount != 12 {
		t.Errorf("TriangleCount failed: expected 12, got %d", result.TriangleCount)
	}
	if result.FacetEdges != 36 {
		t.Errorf("FacetEdges failed: expected 36, got %d", result.FacetEdges)
	}
	if math.Abs(result.Volume-6000) > 1e-6 {
		t.Errorf("Volume failed: expected 6000, got %f", result.Volume)
	}
	if math.Abs(result.SurfaceArea-2200) > 1e-6 {
		t.Errorf("SurfaceArea failed: expected 2200, got %f", result.SurfaceArea)
	}
	if math.Abs(result.WeightPLA100-7.44) > 1e-9 {
		t.Errorf("WeightPLA100 failed: expected 7.44, got %f", result.WeightPLA100)
	}
	if result.MinEdgeLength != 10 {
		t.Errorf("MinEdgeLength failed: expected 10, got %f", result.MinEdgeLength)
	}
	if math.Abs(result.MaxEdgeLength-math.Sqrt(1300)) > 1e-9 {
		t.Errorf("MaxEdgeLength failed: expected %f, got %f", math.Sqrt(1300), result.MaxEdgeLength)
	}
}

func TestAnalyzeModelEmpty(t *testing.T) {
	result := AnalyzeModel(stl.NewModel(""))

	if result.TriangleCount != 0 || result.MinEdgeLength != 0 || result.Volume != 0 {
		t.Errorf("empty model failed: got %+v", result)
	}
}
