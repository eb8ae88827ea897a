package mesh

import (
	"fmt"
	"slices"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/samber/lo"
)

// CollectPlanarTriangles assigns a surface to the planar group containing
// seed and returns the surface index.
//
// The group is every unassigned triangle reachable from seed across edges
// that join exactly two triangles with a bending angle below the smooth
// tolerance. A plane is fitted through the group's points and oriented along
// the triangle normals. If the seed already has a surface, that surface is
// returned. If the fit fails, for example for a lone degenerate triangle,
// the triangles stay unassigned and the error wraps ErrPlaneFit.
func (im *Importer) CollectPlanarTriangles(seed int) (int, error) {
	id, _, err := im.collect(seed)
	return id, err
}

// collect is CollectPlanarTriangles that also returns the flooded cluster,
// including when its plane fit fails.
func (im *Importer) collect(seed int) (int, []int, error) {
	if !im.built {
		return NoSurface, nil, ErrEdgesNotBuilt
	}
	if seed < 0 || seed >= len(im.triangles) {
		return NoSurface, nil, fmt.Errorf("triangle %d out of range [0, %d)", seed, len(im.triangles))
	}
	if s := im.triangles[seed].Surface; s != NoSurface {
		return s, nil, nil
	}

	cluster := im.flood(seed)
	points := lo.Uniq(lo.FlatMap(cluster, func(t int, _ int) []int {
		return im.triangles[t].P[:]
	}))

	plane, err := geometry.FitPlane(lo.Map(points, func(p int, _ int) geometry.Vector3 {
		return im.points[p]
	}))
	if err != nil {
		im.stats.FailedFits++
		im.cfg.logger.Debug("plane fit failed",
			"seed", seed,
			"triangles", len(cluster),
			"error", err)
		return NoSurface, cluster, fmt.Errorf("%w: cluster of %d triangles at %d: %w", ErrPlaneFit, len(cluster), seed, err)
	}

	if plane.Normal.Dot(im.weightedNormal(cluster)) < 0 {
		plane = plane.Flip()
	}

	id := len(im.surfaces)
	for _, t := range cluster {
		im.triangles[t].Surface = id
	}
	im.surfaces = append(im.surfaces, Surface{
		ID:        id,
		Plane:     plane,
		Triangles: cluster,
		Points:    points,
	})
	return id, cluster, nil
}

// flood returns the sorted indices of the unassigned triangles connected to
// seed through smooth edges. It uses an explicit stack so large flat regions
// do not grow the goroutine stack.
func (im *Importer) flood(seed int) []int {
	visited := map[int]bool{seed: true}
	stack := []int{seed}
	var cluster []int

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cluster = append(cluster, t)

		for _, ei := range im.triangles[t].E {
			e := im.edges[ei]
			if !im.smooth(e) {
				continue
			}
			other, ok := e.Other(t)
			if !ok || visited[other] || im.triangles[other].Surface != NoSurface {
				continue
			}
			visited[other] = true
			stack = append(stack, other)
		}
	}

	slices.Sort(cluster)
	return cluster
}

// weightedNormal sums the triangle normals weighted by area
func (im *Importer) weightedNormal(cluster []int) geometry.Vector3 {
	var sum geometry.Vector3
	for _, ti := range cluster {
		t := im.triangles[ti]
		a, b, c := im.points[t.P[0]], im.points[t.P[1]], im.points[t.P[2]]
		sum = sum.Add(b.Sub(a).Cross(c.Sub(a)))
	}
	return sum
}

// fullySmooth reports whether all three edges of triangle t are smooth
func (im *Importer) fullySmooth(t int) bool {
	for _, ei := range im.triangles[t].E {
		if !im.smooth(im.edges[ei]) {
			return false
		}
	}
	return true
}

// ClusterPlanar partitions the triangles into planar surfaces.
//
// Surfaces are first started only from triangles whose three edges are all
// smooth, so every seed lies inside a flat region and never on a fold; the
// flood fill still pulls in the triangles along the region's border. With
// partial seeds enabled, a second pass starts a surface from every triangle
// still unassigned, which covers flat regions without an interior triangle
// (for example a quad made of two triangles) and single triangles.
// Clusters whose plane fit fails are counted in Stats.FailedFits and left
// unassigned.
func (im *Importer) ClusterPlanar() error {
	if !im.built {
		return ErrEdgesNotBuilt
	}

	// triangles of clusters whose fit failed are not flooded again
	failed := make(map[int]bool)
	try := func(ti int) {
		if _, cluster, err := im.collect(ti); err != nil {
			for _, t := range cluster {
				failed[t] = true
			}
		}
	}

	for ti := range im.triangles {
		if im.triangles[ti].Surface != NoSurface || failed[ti] || !im.fullySmooth(ti) {
			continue
		}
		try(ti)
	}
	seeded := len(im.surfaces)

	if im.cfg.partialSeeds {
		for ti := range im.triangles {
			if im.triangles[ti].Surface != NoSurface || failed[ti] {
				continue
			}
			try(ti)
		}
	}

	im.cfg.logger.Debug("planar clustering done",
		"surfaces", len(im.surfaces),
		"fromInteriorSeeds", seeded,
		"failedFits", im.stats.FailedFits)
	return nil
}
