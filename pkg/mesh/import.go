package mesh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/philipparndt/stlfaces/pkg/geometry"
)

// ctxCheckFacets is how many facets are added between context checks
const ctxCheckFacets = 4096

// Result is the outcome of an import
type Result struct {
	Points    []geometry.Vector3
	Triangles []Triangle
	Edges     []Edge
	Surfaces  []Surface
	Stats     Stats
	Precision float64
}

// Result returns the current state of the importer as a Result.
// The slices are shared with the importer.
func (im *Importer) Result() *Result {
	return &Result{
		Points:    im.points,
		Triangles: im.triangles,
		Edges:     im.edges,
		Surfaces:  im.surfaces,
		Stats:     im.stats,
		Precision: im.Precision(),
	}
}

// Import runs the whole pipeline over a facet list: point deduplication,
// edge graph, bending angles, planar clustering and outline reconstruction.
// Degenerate facets are skipped and counted.
func Import(ctx context.Context, facets []geometry.Triangle, opts ...Option) (*Result, error) {
	extent := geometry.NewBoundingBox()
	for _, f := range facets {
		extent.Extend(f.V1)
		extent.Extend(f.V2)
		extent.Extend(f.V3)
	}

	im := NewImporter(extent, opts...)
	logger := im.cfg.logger
	start := time.Now()

	for i, f := range facets {
		if i%ctxCheckFacets == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, err := im.AddFacet(f.Normal, f.V1, f.V2, f.V3); err != nil {
			if errors.Is(err, ErrDegenerateFacet) {
				logger.Debug("skipping facet", "error", err)
				continue
			}
			return nil, fmt.Errorf("facet %d: %w", i, err)
		}
	}
	logger.Info("points deduplicated",
		"facets", len(facets),
		"points", len(im.points),
		"precision", im.Precision())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	im.BuildEdges()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := im.ClusterPlanar(); err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}

	if im.cfg.outlines {
		if err := im.ReconstructOutlines(ctx); err != nil {
			return nil, err
		}
	}

	logger.Info("import finished",
		"triangles", len(im.triangles),
		"edges", len(im.edges),
		"surfaces", len(im.surfaces),
		"collapsed", im.stats.Collapsed,
		"degenerate", im.stats.Degenerate,
		"failedFits", im.stats.FailedFits,
		"duration", time.Since(start))

	return im.Result(), nil
}

// Vertices returns the corner positions of triangle t
func (r *Result) Vertices(t int) [3]geometry.Vector3 {
	tri := r.Triangles[t]
	return [3]geometry.Vector3{r.Points[tri.P[0]], r.Points[tri.P[1]], r.Points[tri.P[2]]}
}

// EdgeLength returns the length of edge e
func (r *Result) EdgeLength(e int) float64 {
	return r.Points[r.Edges[e].P1].Distance(r.Points[r.Edges[e].P2])
}

// SurfaceArea returns the summed triangle area of surface s
func (r *Result) SurfaceArea(s int) float64 {
	area := 0.0
	for _, t := range r.Surfaces[s].Triangles {
		v := r.Vertices(t)
		area += v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Length() / 2
	}
	return area
}

// Unassigned returns the triangles without a surface
func (r *Result) Unassigned() []int {
	var out []int
	for i, t := range r.Triangles {
		if t.Surface == NoSurface {
			out = append(out, i)
		}
	}
	return out
}
