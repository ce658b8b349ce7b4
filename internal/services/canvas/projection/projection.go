// Package projection derives current canvas state from the placement journal.
//
// Two strategies sit behind the same read contract: delegating straight to the
// store's grouped-max query, or an incrementally maintained in-memory index.
// The index is a cache of the journal, never a divergent source of truth; both
// strategies produce identical results.
package projection

import (
	"context"
	"sync"

	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/event"
)

// Source provides the derived canvas state: for every painted coordinate, the
// latest placement there. storage.EventStore satisfies this directly with its
// grouped-aggregation query.
type Source interface {
	LatestByCoordinate(ctx context.Context) (map[event.Coord]event.Placement, error)
}

// Index incrementally maintains the latest placement per coordinate in memory,
// avoiding a full journal scan on every canvas read. It must be primed from
// the journal at startup and fed every accepted placement afterwards.
type Index struct {
	mu    sync.RWMutex
	cells map[event.Coord]event.Placement
}

// NewIndex creates an empty projection index.
func NewIndex() *Index {
	return &Index{cells: make(map[event.Coord]event.Placement)}
}

// Prime loads the current journal reduction into the index. Prime replaces
// any previous contents.
func (x *Index) Prime(ctx context.Context, source Source) error {
	cells, err := source.LatestByCoordinate(ctx)
	if err != nil {
		return err
	}

	copied := make(map[event.Coord]event.Placement, len(cells))
	for coord, placement := range cells {
		copied[coord] = placement
	}

	x.mu.Lock()
	x.cells = copied
	x.mu.Unlock()
	return nil
}

// Apply folds one appended placement into the index. Placements that do not
// supersede the current cell (by seq) are ignored, so replays and
// out-of-order delivery are harmless.
func (x *Index) Apply(placement event.Placement) {
	coord := event.Coord{X: placement.X, Y: placement.Y}

	x.mu.Lock()
	defer x.mu.Unlock()
	current, ok := x.cells[coord]
	if ok && !event.Newer(placement, current) {
		return
	}
	x.cells[coord] = placement
}

// LatestByCoordinate returns a consistent snapshot of the indexed canvas.
// The returned map is a copy; callers may mutate it freely.
func (x *Index) LatestByCoordinate(ctx context.Context) (map[event.Coord]event.Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	snapshot := make(map[event.Coord]event.Placement, len(x.cells))
	for coord, placement := range x.cells {
		snapshot[coord] = placement
	}
	return snapshot, nil
}

// Len returns the number of painted coordinates currently indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.cells)
}
