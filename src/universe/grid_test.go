package universe

import (
	"testing"

	"github.com/pkg/errors"
)

//gridOf builds the grid from rows of 'O' and '.' characters
func gridOf(t *testing.T, rows ...string) Grid {
	t.Helper()
	cells := make([][]Cell, len(rows))
	for r, line := range rows {
		cells[r] = make([]Cell, len(line))
		for c, ch := range line {
			cells[r][c] = ch == 'O'
		}
	}
	g, err := FromCells(cells)
	if err != nil {
		t.Fatalf("bad test grid: %v", err)
	}
	return g
}

func assertGrid(t *testing.T, got Grid, want Grid) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("grid mismatch\ngot:\n%v\nwant:\n%v", got, want)
	}
}

func TestEmptyGrid(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {2, 3}, {10, 10}, {50, 30}} {
		g := EmptyGrid(dims[0], dims[1])
		if err := g.Check(); err != nil {
			t.Fatalf("%dx%d: %v", dims[0], dims[1], err)
		}
		if g.Rows != dims[0] || g.Cols != dims[1] {
			t.Fatalf("got %dx%d, want %dx%d", g.Rows, g.Cols, dims[0], dims[1])
		}
		if n := g.LiveCells(); n != 0 {
			t.Fatalf("%dx%d: %d live cells in the empty grid", dims[0], dims[1], n)
		}
	}
}

func TestEmptyGridPanicsOnBadDimensions(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for 0x5 grid")
		}
	}()
	EmptyGrid(0, 5)
}

func TestStepIsDeterministic(t *testing.T) {
	g := Randomize(20, 17, DefDensity, NewRNG(42))
	assertGrid(t, Step(g), Step(g))
}

func TestStepDoesNotModifySource(t *testing.T) {
	g := gridOf(t,
		".....",
		"..O..",
		"..O..",
		"..O..",
		".....",
	)
	before := g.String()
	next := Step(g)
	if g.String() != before {
		t.Fatalf("source grid changed:\n%v", g)
	}
	if next.Equal(g) {
		t.Fatal("blinker did not change")
	}
}

func TestToroidalWrap(t *testing.T) {
	g := gridOf(t,
		"O..",
		"...",
		"...",
	)
	for _, rc := range [][2]int{{2, 2}, {0, 2}, {2, 0}, {0, 1}, {1, 0}, {1, 1}} {
		if n := NeighborCount(g, rc[0], rc[1]); n != 1 {
			t.Fatalf("neighbours of %v: got %d, want 1", rc, n)
		}
	}
	if n := NeighborCount(g, 0, 0); n != 0 {
		t.Fatalf("the cell counted itself: %d", n)
	}
}

func TestWrapEdgeNeighbours(t *testing.T) {
	//the vertical blinker crossing the top/bottom edge
	g := gridOf(t,
		"..O..",
		".....",
		".....",
		"..O..",
		"..O..",
	)
	want := gridOf(t,
		".....",
		".....",
		".....",
		".....",
		".OOO.",
	)
	assertGrid(t, Step(g), want)
}

func TestDegenerateGrids(t *testing.T) {
	tests := []struct {
		name string
		in   Grid
		want Grid
	}{
		//the single cell is its own 8 neighbours
		{"1x1 live dies", gridOf(t, "O"), gridOf(t, ".")},
		{"1x1 dead stays", gridOf(t, "."), gridOf(t, ".")},
		//on 2x2 the diagonal cell is seen 4 times, the orthogonal ones twice
		{"2x2 one live", gridOf(t, "O.", ".."), gridOf(t, "..", "..")},
		{"2x2 full dies", gridOf(t, "OO", "OO"), gridOf(t, "..", "..")},
		{"1x3 row", gridOf(t, "OO."), gridOf(t, "...")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertGrid(t, Step(tt.in), tt.want)
			assertGrid(t, Step(tt.in), Step(tt.in))
		})
	}
}

func TestDegenerateNeighbourCounts(t *testing.T) {
	if n := NeighborCount(gridOf(t, "O"), 0, 0); n != 8 {
		t.Fatalf("1x1: got %d, want 8", n)
	}
	g := gridOf(t, "O.", "..")
	//(1,1) reaches (0,0) through 4 diagonal offsets
	if n := NeighborCount(g, 1, 1); n != 4 {
		t.Fatalf("2x2 diagonal: got %d, want 4", n)
	}
	if n := NeighborCount(g, 0, 0); n != 0 {
		t.Fatalf("2x2 self: got %d, want 0", n)
	}
}

func TestBlockIsStillLife(t *testing.T) {
	g := gridOf(t,
		"......",
		"......",
		"..OO..",
		"..OO..",
		"......",
		"......",
	)
	next := g
	for i := 0; i < 5; i++ {
		next = Step(next)
		assertGrid(t, next, g)
	}
}

func TestBlinkerOscillation(t *testing.T) {
	horizontal := gridOf(t,
		".....",
		".....",
		".OOO.",
		".....",
		".....",
	)
	vertical := gridOf(t,
		".....",
		"..O..",
		"..O..",
		"..O..",
		".....",
	)
	first := Step(horizontal)
	assertGrid(t, first, vertical)
	assertGrid(t, Step(first), horizontal)
}

func TestGliderTravelsAroundTorus(t *testing.T) {
	g := gridOf(t,
		".O....",
		"..O...",
		"OOO...",
		"......",
		"......",
		"......",
	)
	//the glider moves one cell diagonally every 4 generations,
	//on the 6x6 torus it returns home after 24
	next := g
	for i := 0; i < 24; i++ {
		next = Step(next)
		if next.LiveCells() != 5 {
			t.Fatalf("generation %d: %d live cells\n%v", i+1, next.LiveCells(), next)
		}
	}
	assertGrid(t, next, g)
}

func TestToggleIsSelfInverse(t *testing.T) {
	g := Randomize(12, 15, 0.5, NewRNG(7))
	for _, rc := range [][2]int{{0, 0}, {11, 14}, {5, 3}} {
		once, err := Toggle(g, rc[0], rc[1])
		if err != nil {
			t.Fatal(err)
		}
		if once.Alive(rc[0], rc[1]) == g.Alive(rc[0], rc[1]) {
			t.Fatalf("cell %v did not flip", rc)
		}
		twice, err := Toggle(once, rc[0], rc[1])
		if err != nil {
			t.Fatal(err)
		}
		assertGrid(t, twice, g)
	}
}

func TestToggleSharesUntouchedRows(t *testing.T) {
	g := EmptyGrid(4, 4)
	next, err := Toggle(g, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.Alive(1, 2) {
		t.Fatal("source grid was modified")
	}
	if &next.Cells[0][0] != &g.Cells[0][0] {
		t.Fatal("untouched row was copied")
	}
	if &next.Cells[1][0] == &g.Cells[1][0] {
		t.Fatal("toggled row is shared with the source")
	}
}

func TestToggleOutOfRange(t *testing.T) {
	g := EmptyGrid(3, 4)
	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		next, err := Toggle(g, rc[0], rc[1])
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("%v: got %v, want ErrOutOfRange", rc, err)
		}
		assertGrid(t, next, g)
	}
}

func TestRandomizeExtremes(t *testing.T) {
	rng := NewRNG(1)
	if n := Randomize(10, 12, 0, rng).LiveCells(); n != 0 {
		t.Fatalf("p=0: %d live cells", n)
	}
	if n := Randomize(10, 12, 1, rng).LiveCells(); n != 120 {
		t.Fatalf("p=1: %d live cells, want 120", n)
	}
}

func TestRandomizeUsesInjectedSource(t *testing.T) {
	g := Randomize(6, 9, DefDensity, NewRNG(99))
	expected := NewRNG(99)
	for r := 0; r < 6; r++ {
		for c := 0; c < 9; c++ {
			if want := expected.Float64() < DefDensity; g.Alive(r, c) != want {
				t.Fatalf("cell %d,%d: got %v, want %v", r, c, g.Alive(r, c), want)
			}
		}
	}
	assertGrid(t, Randomize(6, 9, DefDensity, NewRNG(99)), g)
}

func TestFromCellsRejectsRaggedRows(t *testing.T) {
	_, err := FromCells([][]Cell{{true, false}, {true}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
	_, err = FromCells(nil)
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("got %v, want ErrInvalidDimensions", err)
	}
}

func TestFromCellsCopies(t *testing.T) {
	cells := [][]Cell{{true, false}, {false, false}}
	g, err := FromCells(cells)
	if err != nil {
		t.Fatal(err)
	}
	cells[0][0] = false
	if !g.Alive(0, 0) {
		t.Fatal("grid shares the caller's cells")
	}
}

func TestCheckDetectsMismatch(t *testing.T) {
	g := EmptyGrid(3, 3)
	g.Rows = 4
	if err := g.Check(); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
}

func TestCellNextState(t *testing.T) {
	for n := 0; n <= 8; n++ {
		wantAlive := n == 2 || n == 3
		wantDead := n == 3
		if got := cellNextState(true, n); got != wantAlive {
			t.Errorf("live cell with %d neighbours: got %v", n, got)
		}
		if got := cellNextState(false, n); got != wantDead {
			t.Errorf("dead cell with %d neighbours: got %v", n, got)
		}
	}
}
