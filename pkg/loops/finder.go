package loops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"
)

// DefaultMaxSteps bounds the number of path extensions of one FindAllLoops call.
// Densely branching graphs fork exponentially many candidate paths.
const DefaultMaxSteps = 1_000_000

// ctxCheckInterval is how many steps pass between context checks
const ctxCheckInterval = 1024

// ErrBudgetExceeded is returned together with the loops found so far when
// the step budget runs out.
var ErrBudgetExceeded = errors.New("loop search step budget exceeded")

type options struct {
	ctx          context.Context
	maxSteps     int
	consumeLoops bool
	logger       *slog.Logger
}

// Option configures FindAllLoops
type Option func(*options)

// WithMaxSteps sets the step budget. n <= 0 disables the limit.
func WithMaxSteps(n int) Option {
	return func(o *options) {
		o.maxSteps = n
	}
}

// WithContext makes the search stop when ctx is done
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithConsumeLoops makes the nodes of every recorded loop unavailable as
// seeds. On graphs made of disjoint simple cycles, such as face outlines,
// each cycle is then walked once instead of once per node.
func WithConsumeLoops() Option {
	return func(o *options) {
		o.consumeLoops = true
	}
}

// WithLogger sets the logger for search statistics
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// loopKey identifies a loop by length and node set
type loopKey[T comparable] struct {
	length int
	nodes  map[T]struct{}
}

func (k loopKey[T]) matches(loop []T) bool {
	if k.length != len(loop) {
		return false
	}
	return lo.EveryBy(loop, func(n T) bool {
		_, ok := k.nodes[n]
		return ok
	})
}

type finder[T comparable] struct {
	g    *Graph[T]
	opts options

	// remaining holds nodes still available as seeds, in graph order.
	// A node leaves it when it seeds a path or starts a forked branch.
	remaining map[T]bool
	cursor    int

	// frontier is a FIFO of forked paths waiting to be followed.
	frontier [][]T

	loops [][]T
	seen  []loopKey[T]
	steps int
}

// FindAllLoops enumerates the closed loops of g.
//
// Paths are seeded from nodes not used yet and extended along the first
// successor of their last node; the other successors fork new paths onto a
// queue and count as used. A path closes as soon as a successor of its last
// node is already on it; the loop is the part of the path from that node on.
// Paths that reach a node without successors are dropped.
//
// Two loops with the same length and the same node set are reported once,
// even if they visit the nodes in a different order. Because forked and seed
// nodes are consumed, a loop reachable only from an already consumed seed can
// be missed.
//
// Each loop is returned in visiting order, starting at the node where it
// closed. The result is never nil. When the step budget runs out or the
// context is done, the loops found so far are returned with the error.
func FindAllLoops[T comparable](g *Graph[T], opts ...Option) ([][]T, error) {
	o := options{
		ctx:      context.Background(),
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	f := &finder[T]{
		g:         g,
		opts:      o,
		remaining: make(map[T]bool, g.Len()),
		loops:     make([][]T, 0),
	}
	for _, n := range g.nodes {
		f.remaining[n] = true
	}

	err := f.run()
	o.logger.Debug("loop search finished",
		"nodes", g.Len(),
		"loops", len(f.loops),
		"steps", f.steps,
		"error", err)
	return f.loops, err
}

func (f *finder[T]) run() error {
	for {
		if err := f.opts.ctx.Err(); err != nil {
			return err
		}
		path, ok := f.next()
		if !ok {
			return nil
		}
		if err := f.follow(path); err != nil {
			return err
		}
	}
}

// next returns the oldest forked path, or a fresh path from the next unused seed
func (f *finder[T]) next() ([]T, bool) {
	if len(f.frontier) > 0 {
		path := f.frontier[0]
		f.frontier[0] = nil
		f.frontier = f.frontier[1:]
		return path, true
	}
	for f.cursor < len(f.g.nodes) {
		n := f.g.nodes[f.cursor]
		f.cursor++
		if f.remaining[n] {
			delete(f.remaining, n)
			return []T{n}, true
		}
	}
	return nil, false
}

func (f *finder[T]) follow(path []T) error {
	pos := make(map[T]int, len(path))
	for i, n := range path {
		if _, ok := pos[n]; !ok {
			pos[n] = i
		}
	}

	for {
		if err := f.tick(); err != nil {
			return err
		}

		next := f.g.succ[path[len(path)-1]]

		if start := closure(pos, next); start >= 0 {
			f.record(path[start:])
			return nil
		}

		if len(next) == 0 {
			return nil
		}

		for _, n := range next[1:] {
			branch := make([]T, len(path), len(path)+1)
			copy(branch, path)
			f.frontier = append(f.frontier, append(branch, n))
			delete(f.remaining, n)
		}
		pos[next[0]] = len(path)
		path = append(path, next[0])
	}
}

func (f *finder[T]) tick() error {
	f.steps++
	if f.opts.maxSteps > 0 && f.steps > f.opts.maxSteps {
		return fmt.Errorf("%w: %d steps, %d loops found", ErrBudgetExceeded, f.opts.maxSteps, len(f.loops))
	}
	if f.steps%ctxCheckInterval == 0 {
		if err := f.opts.ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// closure returns the path position (from pos) of the first successor
// already on the path, or -1 if the path stays open.
func closure[T comparable](pos map[T]int, next []T) int {
	for _, n := range next {
		if i, ok := pos[n]; ok {
			return i
		}
	}
	return -1
}

func (f *finder[T]) record(loop []T) {
	for _, k := range f.seen {
		if k.matches(loop) {
			return
		}
	}
	f.seen = append(f.seen, loopKey[T]{
		length: len(loop),
		nodes:  lo.SliceToMap(loop, func(n T) (T, struct{}) { return n, struct{}{} }),
	})
	f.loops = append(f.loops, slices.Clone(loop))

	if f.opts.consumeLoops {
		for _, n := range loop {
			delete(f.remaining, n)
		}
	}
}
