package projection

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/event"
)

func TestApplyKeepsLatestPerCoordinate(t *testing.T) {
	t.Parallel()

	index := NewIndex()
	index.Apply(event.Placement{Seq: 1, X: 5, Y: 5, Color: "#FF0000", UserID: "u1"})
	index.Apply(event.Placement{Seq: 2, X: 5, Y: 5, Color: "#00FF00", UserID: "u2"})
	index.Apply(event.Placement{Seq: 3, X: 6, Y: 6, Color: "#0000FF", UserID: "u1"})

	cells, err := index.LatestByCoordinate(context.Background())
	if err != nil {
		t.Fatalf("latest by coordinate: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("painted cells = %d, want 2", len(cells))
	}
	if got := cells[event.Coord{X: 5, Y: 5}]; got.Seq != 2 || got.Color != "#00FF00" {
		t.Fatalf("cell (5,5) = %+v, want seq 2 green", got)
	}
}

func TestApplyIgnoresStalePlacement(t *testing.T) {
	t.Parallel()

	index := NewIndex()
	index.Apply(event.Placement{Seq: 9, X: 1, Y: 1, Color: "#AAAAAA"})
	index.Apply(event.Placement{Seq: 4, X: 1, Y: 1, Color: "#BBBBBB"})

	cells, err := index.LatestByCoordinate(context.Background())
	if err != nil {
		t.Fatalf("latest by coordinate: %v", err)
	}
	if got := cells[event.Coord{X: 1, Y: 1}]; got.Seq != 9 {
		t.Fatalf("cell (1,1) seq = %d, want 9", got.Seq)
	}
}

func TestSnapshotIsIsolatedFromIndex(t *testing.T) {
	t.Parallel()

	index := NewIndex()
	index.Apply(event.Placement{Seq: 1, X: 0, Y: 0, Color: "#FF0000"})

	snapshot, err := index.LatestByCoordinate(context.Background())
	if err != nil {
		t.Fatalf("latest by coordinate: %v", err)
	}
	delete(snapshot, event.Coord{X: 0, Y: 0})

	if index.Len() != 1 {
		t.Fatalf("index length = %d after mutating snapshot, want 1", index.Len())
	}
}

type staticSource map[event.Coord]event.Placement

func (s staticSource) LatestByCoordinate(context.Context) (map[event.Coord]event.Placement, error) {
	return s, nil
}

func TestPrimeReplacesContents(t *testing.T) {
	t.Parallel()

	index := NewIndex()
	index.Apply(event.Placement{Seq: 50, X: 9, Y: 9, Color: "#123456"})

	source := staticSource{
		{X: 2, Y: 3}: {Seq: 7, X: 2, Y: 3, Color: "#FEDCBA"},
	}
	if err := index.Prime(context.Background(), source); err != nil {
		t.Fatalf("prime: %v", err)
	}

	cells, err := index.LatestByCoordinate(context.Background())
	if err != nil {
		t.Fatalf("latest by coordinate: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("painted cells = %d, want 1", len(cells))
	}
	if _, stale := cells[event.Coord{X: 9, Y: 9}]; stale {
		t.Fatal("expected prime to drop pre-existing cells")
	}
}

// TestProperty_IndexMatchesJournalReduction checks that folding any sequence
// of placements into the index produces exactly the max-seq-per-coordinate
// reduction over that sequence, with coordinates never painted absent.
func TestProperty_IndexMatchesJournalReduction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	placementGen := gen.SliceOf(gopter.CombineGens(
		gen.IntRange(0, 7),  // x
		gen.IntRange(0, 7),  // y
		gen.IntRange(0, 15), // color index
	).Map(func(values []interface{}) event.Placement {
		return event.Placement{
			X:     values[0].(int),
			Y:     values[1].(int),
			Color: fmt.Sprintf("#%06X", values[2].(int)*0x111111/0xF),
		}
	}))

	properties.Property("index equals brute-force latest-per-group", prop.ForAll(
		func(placements []event.Placement) bool {
			index := NewIndex()
			expected := make(map[event.Coord]event.Placement)
			for i := range placements {
				placements[i].Seq = uint64(i + 1)
				index.Apply(placements[i])

				coord := event.Coord{X: placements[i].X, Y: placements[i].Y}
				current, ok := expected[coord]
				if !ok || placements[i].Seq > current.Seq {
					expected[coord] = placements[i]
				}
			}

			cells, err := index.LatestByCoordinate(context.Background())
			if err != nil {
				return false
			}
			if len(cells) != len(expected) {
				return false
			}
			for coord, want := range expected {
				got, ok := cells[coord]
				if !ok || got.Seq != want.Seq || got.Color != want.Color {
					return false
				}
			}
			return true
		},
		placementGen,
	))

	properties.TestingRun(t)
}
