// Package export writes imported meshes to CAD exchange formats.
package export

import (
	"fmt"

	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// OpenEdgesLayer holds boundary and non-manifold edges
const OpenEdgesLayer = "OPEN_EDGES"

var faceColors = []color.ColorNumber{
	color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta,
}

// FaceLayer returns the layer name used for the outlines of surface id
func FaceLayer(id int) string {
	return fmt.Sprintf("FACE_%d", id)
}

// BuildDXF draws every surface outline as closed 3D lines on its own layer
// and every open edge on OpenEdgesLayer.
func BuildDXF(res *mesh.Result) (*drawing.Drawing, error) {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	for _, s := range res.Surfaces {
		if len(s.Outlines) == 0 {
			continue
		}
		name := FaceLayer(s.ID)
		if _, err := d.AddLayer(name, faceColors[s.ID%len(faceColors)], dxf.DefaultLineType, true); err != nil {
			return nil, fmt.Errorf("adding layer %s: %w", name, err)
		}

		for _, outline := range s.Outlines {
			for i, p := range outline {
				if err := line(d, res, p, outline[(i+1)%len(outline)]); err != nil {
					return nil, err
				}
			}
		}
	}

	open := 0
	for _, e := range res.Edges {
		if e.Kind() == mesh.EdgeManifold {
			continue
		}
		if open == 0 {
			if _, err := d.AddLayer(OpenEdgesLayer, color.White, dxf.DefaultLineType, true); err != nil {
				return nil, fmt.Errorf("adding layer %s: %w", OpenEdgesLayer, err)
			}
		}
		if err := line(d, res, e.P1, e.P2); err != nil {
			return nil, err
		}
		open++
	}

	return d, nil
}

func line(d *drawing.Drawing, res *mesh.Result, from, to int) error {
	a, b := res.Points[from], res.Points[to]
	if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
		return fmt.Errorf("drawing line %d-%d: %w", from, to, err)
	}
	return nil
}

// WriteDXF builds the drawing and saves it to filename
func WriteDXF(res *mesh.Result, filename string) error {
	d, err := BuildDXF(res)
	if err != nil {
		return err
	}
	if err := d.SaveAs(filename); err != nil {
		return fmt.Errorf("saving %s: %w", filename, err)
	}
	return nil
}
