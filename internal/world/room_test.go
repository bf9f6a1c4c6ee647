package world

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRoomValidate(t *testing.T) {
	tests := map[string]struct {
		room   Room
		expErr bool
	}{
		"valid": {
			room: Room{Name: "Test", Tiles: []string{"###", "#s#", "###"}},
		},
		"missing name": {
			room:   Room{Tiles: []string{"..."}},
			expErr: true,
		},
		"no tiles": {
			room:   Room{Name: "Test"},
			expErr: true,
		},
		"ragged rows": {
			room:   Room{Name: "Test", Tiles: []string{"....", ".."}},
			expErr: true,
		},
		"unknown tile rune": {
			room:   Room{Name: "Test", Tiles: []string{"..x."}},
			expErr: true,
		},
		"fully blocked": {
			room:   Room{Name: "Test", Tiles: []string{"###", "###"}},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.room.Validate()
			if tc.expErr && err == nil {
				t.Error("expected an error")
			}
			if !tc.expErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRoomCompile(t *testing.T) {
	room := Room{
		Name: "Test",
		Tiles: []string{
			"####",
			"#.s#",
			"####",
		},
	}

	grid, err := room.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "cols", grid.Cols(), 4)
	testutil.AssertEqual(t, "rows", grid.Rows(), 3)
	testutil.AssertEqual(t, "open cell", grid.Walkable(1, 1), true)
	testutil.AssertEqual(t, "seat walkable", grid.Walkable(2, 1), true)
	testutil.AssertEqual(t, "wall", grid.Walkable(0, 0), false)
	testutil.AssertEqual(t, "out of bounds", grid.Walkable(4, 1), false)
	testutil.AssertEqual(t, "seat", grid.IsSeat(2, 1), true)
	testutil.AssertEqual(t, "non-seat", grid.IsSeat(1, 1), false)
	testutil.AssertEqual(t, "seat count", len(grid.Seats()), 1)
}

func TestDefaultRooms(t *testing.T) {
	rooms := DefaultRooms()

	for _, id := range []string{"lobby", "cafe", "rooftop"} {
		room, ok := rooms[id]
		if !ok {
			t.Fatalf("missing preset %q", id)
		}
		grid, err := room.Compile()
		if err != nil {
			t.Fatalf("compiling %q: %v", id, err)
		}
		if len(grid.Seats()) == 0 {
			t.Errorf("preset %q has no seats", id)
		}
		if _, ok := grid.FirstWalkable(); !ok {
			t.Errorf("preset %q has no walkable cells", id)
		}
	}
}
