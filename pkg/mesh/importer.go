// Package mesh rebuilds topology from a triangle soup.
//
// An Importer deduplicates facet corners within a tolerance derived from
// the mesh extent, links triangles through shared edges, measures the
// bending angle across every edge and groups triangles into planar surfaces
// with a fitted plane and outline loops.
//
// Triangles, edges and points refer to each other by index into flat
// slices owned by one Importer.
package mesh

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/philipparndt/stlfaces/pkg/geometry"
	"github.com/philipparndt/stlfaces/pkg/loops"
)

const (
	// DefaultRelativePrecision scales the extent diagonal into the point merge distance.
	DefaultRelativePrecision = 1e-6
	// DefaultMinPrecision is the merge distance floor for tiny or zero-extent meshes.
	DefaultMinPrecision = 1e-12
	// DefaultSmoothTolerance is the largest bending angle in radians treated as flat.
	DefaultSmoothTolerance = 1e-6
)

var (
	// ErrDegenerateFacet is returned by AddFacet when two corners merge into one point.
	ErrDegenerateFacet = errors.New("degenerate facet")
	// ErrPlaneFit is returned when no plane can be fitted through a cluster.
	ErrPlaneFit = errors.New("plane fit failed")
	// ErrEdgesBuilt is returned by AddFacet once BuildEdges has run.
	ErrEdgesBuilt = errors.New("edges already built")
	// ErrEdgesNotBuilt is returned by operations that need the edge graph.
	ErrEdgesNotBuilt = errors.New("edges not built")
)

type settings struct {
	relativePrecision float64
	minPrecision      float64
	smoothTolerance   float64
	partialSeeds      bool
	outlines          bool
	maxLoopSteps      int
	logger            *slog.Logger
}

func defaultSettings() settings {
	return settings{
		relativePrecision: DefaultRelativePrecision,
		minPrecision:      DefaultMinPrecision,
		smoothTolerance:   DefaultSmoothTolerance,
		partialSeeds:      true,
		outlines:          true,
		maxLoopSteps:      loops.DefaultMaxSteps,
		logger:            slog.Default(),
	}
}

// Option configures an Importer
type Option func(*settings)

// WithRelativePrecision sets the merge distance relative to the extent diagonal
func WithRelativePrecision(p float64) Option {
	return func(s *settings) {
		s.relativePrecision = p
	}
}

// WithMinPrecision sets the absolute merge distance floor
func WithMinPrecision(p float64) Option {
	return func(s *settings) {
		s.minPrecision = p
	}
}

// WithSmoothTolerance sets the bending angle below which an edge is flat
func WithSmoothTolerance(rad float64) Option {
	return func(s *settings) {
		s.smoothTolerance = rad
	}
}

// WithPartialSeeds controls whether triangles that are not fully surrounded
// by flat edges may start a surface after the regular seeding pass.
func WithPartialSeeds(enabled bool) Option {
	return func(s *settings) {
		s.partialSeeds = enabled
	}
}

// WithOutlines controls whether Import reconstructs surface outlines
func WithOutlines(enabled bool) Option {
	return func(s *settings) {
		s.outlines = enabled
	}
}

// WithMaxLoopSteps sets the loop search budget per surface outline
func WithMaxLoopSteps(n int) Option {
	return func(s *settings) {
		s.maxLoopSteps = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Importer owns the state of one import. It is not safe for concurrent use.
type Importer struct {
	cfg settings

	points    []geometry.Vector3
	index     *PointIndex
	triangles []Triangle
	edges     []Edge
	edgeIndex map[[2]int]int
	surfaces  []Surface
	built     bool

	stats Stats
}

// NewImporter creates an importer for facets inside extent.
// The point merge distance is the extent diagonal times the relative
// precision, but never below the minimum precision.
func NewImporter(extent geometry.BoundingBox, opts ...Option) *Importer {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	precision := math.Max(extent.Diagonal()*cfg.relativePrecision, cfg.minPrecision)

	return &Importer{
		cfg:       cfg,
		index:     NewPointIndex(precision),
		edgeIndex: make(map[[2]int]int),
	}
}

// Precision returns the point merge distance
func (im *Importer) Precision() float64 {
	return im.index.Tolerance()
}

// Points returns the deduplicated points
func (im *Importer) Points() []geometry.Vector3 {
	return im.points
}

// Triangles returns the triangles
func (im *Importer) Triangles() []Triangle {
	return im.triangles
}

// Edges returns the edges
func (im *Importer) Edges() []Edge {
	return im.edges
}

// Surfaces returns the surfaces found so far
func (im *Importer) Surfaces() []Surface {
	return im.surfaces
}

// Stats returns the counters collected so far
func (im *Importer) Stats() Stats {
	return im.stats
}

// InsertOrFindPoint returns the index of an existing point closer than the
// precision to p, or appends p and returns its new index.
func (im *Importer) InsertOrFindPoint(p geometry.Vector3) int {
	if id, ok := im.index.Find(p); ok {
		return id
	}
	id := len(im.points)
	im.points = append(im.points, p)
	im.index.Insert(id, p)
	return id
}

// AddFacet adds a facet and returns its triangle index.
//
// The corners are deduplicated first. If the declared normal is non-zero
// and points against the winding, the winding is reversed. Facets whose
// corners merge are not added and return ErrDegenerateFacet; callers may
// skip them and continue.
func (im *Importer) AddFacet(normal, v1, v2, v3 geometry.Vector3) (int, error) {
	if im.built {
		return -1, ErrEdgesBuilt
	}

	facet := im.stats.Facets
	im.stats.Facets++

	p := [3]int{
		im.InsertOrFindPoint(v1),
		im.InsertOrFindPoint(v2),
		im.InsertOrFindPoint(v3),
	}
	if p[0] == p[1] || p[1] == p[2] || p[2] == p[0] {
		im.stats.Collapsed++
		return -1, fmt.Errorf("%w: facet %d has merged corners %v", ErrDegenerateFacet, facet, p)
	}

	n := geometry.FaceNormal(im.points[p[0]], im.points[p[1]], im.points[p[2]])
	if !normal.IsZero() && n.Dot(normal) < 0 {
		p[1], p[2] = p[2], p[1]
		n = n.Mul(-1)
	}
	if n.IsZero() {
		im.stats.Degenerate++
	}

	im.triangles = append(im.triangles, Triangle{
		P:       p,
		E:       [3]int{-1, -1, -1},
		Normal:  n,
		Surface: NoSurface,
	})
	return len(im.triangles) - 1, nil
}
