package stl

import (
	"math"

	"github.com/philipparndt/stlfaces/pkg/geometry"
)

// Model is the raw facet list of an STL file: triangles exactly as declared,
// without any shared vertices or topology.
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// BoundingBox calculates the bounding box over every facet vertex
func (m *Model) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, triangle := range m.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	return bbox
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}

// Volume returns the enclosed volume using the divergence theorem. The
// result is only meaningful for closed, consistently wound meshes.
func (m *Model) Volume() float64 {
	volume := 0.0
	for _, t := range m.Triangles {
		volume += t.V1.Dot(t.V2.Cross(t.V3)) / 6.0
	}
	return math.Abs(volume)
}
