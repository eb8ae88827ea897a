package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/philipparndt/stlfaces/pkg/openscad"
	"github.com/philipparndt/stlfaces/pkg/stl"
)

func isSCAD(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".scad")
}

// loadModel parses an STL file, rendering it first when given an OpenSCAD source
func loadModel(ctx context.Context, path string) (*stl.Model, error) {
	if !isSCAD(path) {
		return stl.Parse(path)
	}

	renderer := openscad.NewRenderer(filepath.Dir(path), logger)
	out, err := renderer.RenderTemp(ctx, path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(out)

	return stl.Parse(out)
}

// loadMesh parses path and runs the import pipeline with the active configuration
func loadMesh(ctx context.Context, path string) (*stl.Model, *mesh.Result, error) {
	model, err := loadModel(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	res, err := mesh.Import(ctx, model.Triangles, cfg.MeshOptions(logger)...)
	if err != nil {
		return nil, nil, err
	}
	return model, res, nil
}

// sources lists the files whose change should trigger a reload of path
func sources(path string) ([]string, error) {
	if !isSCAD(path) {
		return []string{path}, nil
	}
	return openscad.NewRenderer(filepath.Dir(path), logger).ResolveDependencies(filepath.Base(path))
}
