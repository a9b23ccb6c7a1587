package universe

import (
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
)

type Cell bool

//Grid is the rows x cols board, row-major with the origin at (0,0)
//Grid values are never modified after they are published: every operation returns a new Grid,
//so a reader holding an old value keeps a consistent view of it
type Grid struct {
	Rows  int
	Cols  int
	Cells [][]Cell
}

//DefDensity is the default probability of a cell being alive after randomization
const DefDensity = 0.3

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	ErrShapeMismatch     = errors.New("grid shape does not match its dimensions")
	ErrOutOfRange        = errors.New("cell coordinates out of range")
)

//neighborhood is the list of [row, col] offsets of the 8 surrounding cells
var neighborhood = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

//EmptyGrid returns the rows x cols grid with all cells dead
//panics on non-positive dimensions, callers validate them with CheckDimensions
func EmptyGrid(rows int, cols int) Grid {
	return createGrid(rows, cols)
}

//Randomize returns the new rows x cols grid where every cell is alive with probability p
//rng can be nil, in this case the global source is used
func Randomize(rows int, cols int, p float64, rng *rand.Rand) Grid {
	g := createGrid(rows, cols)
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	for r := range g.Cells {
		for c := range g.Cells[r] {
			g.Cells[r][c] = Cell(float() < p)
		}
	}
	return g
}

//Step calculates the next generation of the grid
func Step(g Grid) Grid {
	next, _, _ := advance(g)
	return next
}

//Toggle returns the copy of the grid with the cell at r, c inverted
//the untouched rows are shared with the source grid
func Toggle(g Grid, r int, c int) (Grid, error) {
	if r < 0 || r >= g.Rows || c < 0 || c >= g.Cols {
		return g, errors.Wrapf(ErrOutOfRange, "[Toggle] cell %d,%d on %dx%d grid", r, c, g.Rows, g.Cols)
	}
	next := Grid{Rows: g.Rows, Cols: g.Cols, Cells: make([][]Cell, g.Rows)}
	copy(next.Cells, g.Cells)
	row := make([]Cell, g.Cols)
	copy(row, g.Cells[r])
	row[c] = !row[c]
	next.Cells[r] = row
	return next, nil
}

//NeighborCount counts the live neighbours of the cell at r, c
//the coordinates wrap around both edges, so the grid is a torus
func NeighborCount(g Grid, r int, c int) (liveNeighbours int) {
	for _, d := range neighborhood {
		if g.Cells[wrap(r+d[0], g.Rows)][wrap(c+d[1], g.Cols)] {
			liveNeighbours++
		}
	}
	return
}

//FromCells builds the grid from the caller's cells, the data is copied
func FromCells(cells [][]Cell) (Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return Grid{}, errors.Wrap(ErrInvalidDimensions, "[FromCells] empty cells")
	}
	g := createGrid(len(cells), len(cells[0]))
	for r := range cells {
		if len(cells[r]) != g.Cols {
			return Grid{}, errors.Wrapf(ErrShapeMismatch, "[FromCells] row %d has %d cells, want %d", r, len(cells[r]), g.Cols)
		}
		copy(g.Cells[r], cells[r])
	}
	return g, nil
}

//CheckDimensions validates the grid dimensions
func CheckDimensions(rows int, cols int) error {
	if rows < 1 || cols < 1 {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d", rows, cols)
	}
	return nil
}

//Check validates that the cells match the declared dimensions
func (g Grid) Check() error {
	if err := CheckDimensions(g.Rows, g.Cols); err != nil {
		return err
	}
	if len(g.Cells) != g.Rows {
		return errors.Wrapf(ErrShapeMismatch, "%d rows, want %d", len(g.Cells), g.Rows)
	}
	for r := range g.Cells {
		if len(g.Cells[r]) != g.Cols {
			return errors.Wrapf(ErrShapeMismatch, "row %d has %d cells, want %d", r, len(g.Cells[r]), g.Cols)
		}
	}
	return nil
}

//Alive reports the state of the cell at r, c
func (g Grid) Alive(r int, c int) bool {
	return bool(g.Cells[r][c])
}

//LiveCells calculates the count of live cells
func (g Grid) LiveCells() (liveCells int) {
	g.walk(func(_ int, _ int, e Cell) {
		if e {
			liveCells++
		}
	})
	return
}

//Equal reports whether both grids have the same shape and cells
func (g Grid) Equal(o Grid) bool {
	if g.Rows != o.Rows || g.Cols != o.Cols {
		return false
	}
	for r := range g.Cells {
		for c := range g.Cells[r] {
			if g.Cells[r][c] != o.Cells[r][c] {
				return false
			}
		}
	}
	return true
}

//String renders the grid as plain text, 'O' is alive and '.' is dead
func (g Grid) String() string {
	var b strings.Builder
	for r, row := range g.Cells {
		if r != 0 {
			b.WriteByte('\n')
		}
		for _, e := range row {
			if e {
				b.WriteByte('O')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

//advance does one generation over the entire grid
//all the cells are calculated from the source grid into the new buffer
func advance(g Grid) (next Grid, liveCells int, changed bool) {
	next = createGrid(g.Rows, g.Cols)
	g.walk(func(r int, c int, e Cell) {
		nextState := cellNextState(bool(e), NeighborCount(g, r, c))
		if nextState {
			liveCells++
		}
		changed = changed || nextState != bool(e)
		next.Cells[r][c] = Cell(nextState)
	})
	return
}

//cellNextState applies the life rule to one cell
func cellNextState(alive bool, liveNeighbours int) bool {
	if liveNeighbours < 2 {
		return false
	} else if liveNeighbours > 3 {
		return false
	} else if liveNeighbours == 3 {
		return true
	}
	return alive
}

//walk walks the entire grid and calls the cb function for each cell
func (g Grid) walk(cb func(r int, c int, e Cell)) {
	for r := range g.Cells {
		for c := range g.Cells[r] {
			cb(r, c, g.Cells[r][c])
		}
	}
}

//wrap maps the coordinate into [0, n)
func wrap(i int, n int) int {
	return (i%n + n) % n
}

//createGrid allocates the new grid with one backing buffer for all rows
func createGrid(rows int, cols int) Grid {
	if err := CheckDimensions(rows, cols); err != nil {
		panic(err)
	}
	g := Grid{Rows: rows, Cols: cols, Cells: make([][]Cell, rows)}
	b := make([]Cell, rows*cols)
	for i := range g.Cells {
		start := cols * i
		g.Cells[i] = b[start : start+cols : start+cols]
	}
	return g
}
