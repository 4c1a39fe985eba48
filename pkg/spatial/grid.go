// Package spatial implements an unbounded uniform grid used to answer
// "who is near me" queries in amortized constant time per agent.
package spatial

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Locatable is anything with a position in world space.
type Locatable interface {
	Position() geometry.Vector2D
}

// CellKey identifies a grid cell: floor(x/cellSize), floor(y/cellSize).
type CellKey struct {
	X, Y int
}

// Grid maps cell keys to the items currently located in them.
// It has no bounds: any finite position maps to a cell.
//
// The grid is meant to be rebuilt every tick (Clear, then Insert every live
// item once) and pruned once all queries of that tick are done.
type Grid[T Locatable] struct {
	cellSize float64
	cells    map[CellKey][]T

	// live is reused by Prune to avoid allocating a key set every tick
	live map[CellKey]struct{}
}

// NewGrid creates a grid with square cells of side cellSize.
// Non-positive sizes are rejected with a panic: they are a programming error.
func NewGrid[T Locatable](cellSize float64) *Grid[T] {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		panic("spatial: cell size must be a positive finite number")
	}
	return &Grid[T]{
		cellSize: cellSize,
		cells:    make(map[CellKey][]T),
		live:     make(map[CellKey]struct{}),
	}
}

// CellSize returns the side length of a cell.
func (g *Grid[T]) CellSize() float64 {
	return g.cellSize
}

// CellKeyOf returns the key of the cell containing p.
// Two positions share a key iff they lie in the same axis-aligned cell.
func (g *Grid[T]) CellKeyOf(p geometry.Vector2D) CellKey {
	return CellKey{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// CellOrigin returns the world position of the lower corner of a cell.
func (g *Grid[T]) CellOrigin(key CellKey) geometry.Vector2D {
	return geometry.Vector2D{X: float64(key.X) * g.cellSize, Y: float64(key.Y) * g.cellSize}
}

// Insert appends item to the cell matching its current position.
// There is no dedup check: callers insert each item once per rebuild.
func (g *Grid[T]) Insert(item T) {
	key := g.CellKeyOf(item.Position())
	// append reuses the capacity left by Clear
	g.cells[key] = append(g.cells[key], item)
}

// NeighborsOf returns the items in the 3x3 block of cells around item,
// item itself included.
func (g *Grid[T]) NeighborsOf(item T) []T {
	return g.AppendNeighbors(nil, item)
}

// AppendNeighbors is NeighborsOf writing into dst, so a caller can reuse the
// same buffer for every query of a tick.
func (g *Grid[T]) AppendNeighbors(dst []T, item T) []T {
	center := g.CellKeyOf(item.Position())
	for x := center.X - 1; x <= center.X+1; x++ {
		for y := center.Y - 1; y <= center.Y+1; y++ {
			if items, ok := g.cells[CellKey{X: x, Y: y}]; ok {
				dst = append(dst, items...)
			}
		}
	}
	return dst
}

// Prune deletes every cell whose key is not the cell of one of positions.
// It bounds memory to the cells that still have live occupants.
func (g *Grid[T]) Prune(positions []geometry.Vector2D) {
	clear(g.live)
	for _, p := range positions {
		g.live[g.CellKeyOf(p)] = struct{}{}
	}
	for key := range g.cells {
		if _, ok := g.live[key]; !ok {
			delete(g.cells, key)
		}
	}
}

// Clear empties every cell. Cell slices keep their capacity so a rebuild
// does not allocate; cells that stay empty disappear on the next Prune.
func (g *Grid[T]) Clear() {
	for key, items := range g.cells {
		clear(items)
		g.cells[key] = items[:0]
	}
}

// CellCount returns the number of cells currently tracked, empty ones included.
func (g *Grid[T]) CellCount() int {
	return len(g.cells)
}

// ForEachCell calls fn with every tracked cell and its occupants.
// The slice is owned by the grid and must not be retained.
func (g *Grid[T]) ForEachCell(fn func(key CellKey, items []T)) {
	for key, items := range g.cells {
		fn(key, items)
	}
}
