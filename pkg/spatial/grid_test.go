package spatial

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

type dot struct {
	id  string
	pos geometry.Vector2D
}

func (d *dot) Position() geometry.Vector2D { return d.pos }

func contains(list []*dot, id string) bool {
	for _, d := range list {
		if d.id == id {
			return true
		}
	}
	return false
}

func TestGrid_CellKeyOf(t *testing.T) {
	g := NewGrid[*dot](10)
	tests := []struct {
		name string
		pos  geometry.Vector2D
		want CellKey
	}{
		{"Origin", geometry.Vector2D{X: 0, Y: 0}, CellKey{0, 0}},
		{"Inside first cell", geometry.Vector2D{X: 9.99, Y: 0.01}, CellKey{0, 0}},
		{"Cell boundary", geometry.Vector2D{X: 10, Y: 20}, CellKey{1, 2}},
		{"Negative floors down", geometry.Vector2D{X: -0.5, Y: -10}, CellKey{-1, -1}},
		{"Negative boundary", geometry.Vector2D{X: -10.01, Y: -19.99}, CellKey{-2, -2}},
		{"Far away", geometry.Vector2D{X: 1e6, Y: -1e6}, CellKey{100000, -100000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CellKeyOf(tt.pos); got != tt.want {
				t.Errorf("CellKeyOf(%v) = %v; want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestGrid_Insert(t *testing.T) {
	g := NewGrid[*dot](100)

	a1 := &dot{id: "a1", pos: geometry.Vector2D{X: 50, Y: 50}}   // 0,0
	a2 := &dot{id: "a2", pos: geometry.Vector2D{X: 150, Y: 50}}  // 1,0
	a3 := &dot{id: "a3", pos: geometry.Vector2D{X: 50, Y: 150}}  // 0,1
	a4 := &dot{id: "a4", pos: geometry.Vector2D{X: -50, Y: -50}} // -1,-1
	for _, d := range []*dot{a1, a2, a3, a4} {
		g.Insert(d)
	}

	expect := map[CellKey]string{
		{0, 0}:   "a1",
		{1, 0}:   "a2",
		{0, 1}:   "a3",
		{-1, -1}: "a4",
	}
	for key, id := range expect {
		if list, ok := g.cells[key]; !ok || !contains(list, id) {
			t.Errorf("Expected %s in cell %v, got %v", id, key, list)
		}
	}
	if contains(g.cells[CellKey{0, 0}], "a2") {
		t.Errorf("Did not expect a2 in cell 0,0")
	}
	if g.CellCount() != 4 {
		t.Errorf("CellCount() = %d; want 4", g.CellCount())
	}
}

func TestGrid_NeighborsOf(t *testing.T) {
	g := NewGrid[*dot](100)

	center := &dot{id: "center", pos: geometry.Vector2D{X: 150, Y: 150}}  // 1,1
	corner := &dot{id: "corner", pos: geometry.Vector2D{X: 50, Y: 50}}    // 0,0
	edge := &dot{id: "edge", pos: geometry.Vector2D{X: 299, Y: 150}}      // 2,1
	farAway := &dot{id: "far", pos: geometry.Vector2D{X: 350, Y: 350}}    // 3,3
	negative := &dot{id: "neg", pos: geometry.Vector2D{X: -1, Y: 150}}    // -1,1
	for _, d := range []*dot{center, corner, edge, farAway, negative} {
		g.Insert(d)
	}

	result := g.NeighborsOf(center)
	if !contains(result, "center") {
		t.Error("the querying item must be part of its own neighbourhood")
	}
	if !contains(result, "corner") || !contains(result, "edge") {
		t.Errorf("Expected corner and edge neighbours, got %v", result)
	}
	if contains(result, "far") || contains(result, "neg") {
		t.Errorf("Did not expect far or neg in %v", result)
	}

	buf := make([]*dot, 0, 8)
	buf = g.AppendNeighbors(buf, center)
	if len(buf) != len(result) {
		t.Errorf("AppendNeighbors returned %d items; want %d", len(buf), len(result))
	}
}

// TestGrid_NeighborsMatchCellDistance checks, for random layouts, that the
// neighbourhood is exactly the set of items whose cell differs by at most one
// on each axis.
func TestGrid_NeighborsMatchCellDistance(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, cellSize := range []float64{0.5, 3, 10, 42} {
		t.Run(fmt.Sprintf("cell=%v", cellSize), func(t *testing.T) {
			g := NewGrid[*dot](cellSize)
			dots := make([]*dot, 300)
			for i := range dots {
				dots[i] = &dot{
					id:  fmt.Sprint(i),
					pos: geometry.Vector2D{X: (rng.Float64() - 0.5) * 200, Y: (rng.Float64() - 0.5) * 200},
				}
				g.Insert(dots[i])
			}

			for _, a := range dots {
				got := make(map[*dot]bool)
				for _, n := range g.NeighborsOf(a) {
					got[n] = true
				}
				ka := g.CellKeyOf(a.pos)
				for _, b := range dots {
					kb := g.CellKeyOf(b.pos)
					want := abs(ka.X-kb.X) <= 1 && abs(ka.Y-kb.Y) <= 1
					if got[b] != want {
						t.Fatalf("item %s in neighbourhood of %s = %v; want %v", b.id, a.id, got[b], want)
					}
				}
				if !got[a] {
					t.Fatalf("item %s missing from its own neighbourhood", a.id)
				}
			}
		})
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestGrid_ClearAndPrune(t *testing.T) {
	g := NewGrid[*dot](10)
	a := &dot{id: "a", pos: geometry.Vector2D{X: 1, Y: 1}}
	b := &dot{id: "b", pos: geometry.Vector2D{X: 55, Y: 55}}
	g.Insert(a)
	g.Insert(b)

	g.Clear()
	if g.CellCount() != 2 {
		t.Fatalf("Clear should keep cells for reuse, got %d cells", g.CellCount())
	}
	if n := g.NeighborsOf(a); len(n) != 0 {
		t.Fatalf("cleared grid still returns %v", n)
	}

	// b moved away, a stayed
	b.pos = geometry.Vector2D{X: 500, Y: 500}
	g.Insert(a)
	g.Prune([]geometry.Vector2D{a.pos, b.pos})
	if g.CellCount() != 1 {
		t.Errorf("CellCount() after prune = %d; want 1", g.CellCount())
	}
	if _, ok := g.cells[CellKey{5, 5}]; ok {
		t.Error("stale cell 5,5 should have been pruned")
	}

	g.Prune(nil)
	if g.CellCount() != 0 {
		t.Errorf("Prune(nil) left %d cells", g.CellCount())
	}
}

func TestNewGrid_InvalidCellSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewGrid(0) should panic")
		}
	}()
	NewGrid[*dot](0)
}

func BenchmarkGrid_Rebuild(b *testing.B) {
	g := NewGrid[*dot](10)
	dots := make([]*dot, 1000)
	for i := range dots {
		dots[i] = &dot{pos: geometry.Vector2D{X: float64(i % 100), Y: float64(i / 10)}}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Clear()
		for _, d := range dots {
			g.Insert(d)
		}
	}
}

func BenchmarkGrid_AppendNeighbors(b *testing.B) {
	g := NewGrid[*dot](10)
	for i := 0; i < 1000; i++ {
		g.Insert(&dot{pos: geometry.Vector2D{X: float64(i % 100), Y: float64(i % 100)}})
	}
	probe := &dot{pos: geometry.Vector2D{X: 50, Y: 50}}
	buf := make([]*dot, 0, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = g.AppendNeighbors(buf[:0], probe)
	}
}
