package mesh

import (
	"context"
	"errors"
	"fmt"

	"github.com/philipparndt/stlfaces/pkg/loops"
)

// OutlineGraph returns the boundary of surface si as a directed graph over
// point indices. Every triangle side whose edge is not shared with another
// triangle of the same surface contributes one edge in winding direction.
func (im *Importer) OutlineGraph(si int) *loops.Graph[int] {
	g := loops.NewGraph[int]()
	for _, ti := range im.surfaces[si].Triangles {
		t := im.triangles[ti]
		for k := 0; k < 3; k++ {
			if im.sharedWithin(im.edges[t.E[k]], ti, si) {
				continue
			}
			g.AddEdge(t.P[k], t.P[(k+1)%3])
		}
	}
	return g
}

func (im *Importer) sharedWithin(e Edge, ti, si int) bool {
	for _, other := range e.Triangles {
		if other != ti && im.triangles[other].Surface == si {
			return true
		}
	}
	return false
}

// ReconstructOutlines finds the outline loops of every surface: the outer
// boundary and one loop per hole. Each connected part of a surface's
// boundary is searched separately with its own step budget, so a long outer
// boundary cannot use up the budget of its holes. A surface where any part
// exceeds the budget keeps the loops found so far and is counted once in
// Stats.TruncatedOutlines.
func (im *Importer) ReconstructOutlines(ctx context.Context) error {
	if !im.built {
		return ErrEdgesNotBuilt
	}

	for si := range im.surfaces {
		outlines := make([][]int, 0)
		truncated := false

		for _, part := range im.OutlineGraph(si).Components() {
			found, err := loops.FindAllLoops(part,
				loops.WithContext(ctx),
				loops.WithMaxSteps(im.cfg.maxLoopSteps),
				loops.WithConsumeLoops(),
				loops.WithLogger(im.cfg.logger))

			switch {
			case errors.Is(err, loops.ErrBudgetExceeded):
				truncated = true
				im.cfg.logger.Warn("outline search truncated",
					"surface", si,
					"points", part.Len(),
					"loops", len(found),
					"error", err)
			case err != nil:
				return fmt.Errorf("outline of surface %d: %w", si, err)
			}

			outlines = append(outlines, found...)
		}

		if truncated {
			im.stats.TruncatedOutlines++
		}
		im.surfaces[si].Outlines = outlines
	}
	return nil
}
