//Package pattern composes the patterns imported into the universe
package pattern

import (
	"github.com/pkg/errors"

	"lifeboard/src/universe"
)

//Editor is the secondary grid the pattern is drawn on before the import
//it keeps its own dimensions, independent of the universe
type Editor struct {
	grid universe.Grid
}

//NewEditor creates the editor with the empty rows x cols grid
func NewEditor(rows int, cols int) (*Editor, error) {
	if err := universe.CheckDimensions(rows, cols); err != nil {
		return nil, errors.Wrap(err, "[NewEditor]")
	}
	return &Editor{grid: universe.EmptyGrid(rows, cols)}, nil
}

//Grid returns the pattern drawn so far
func (e *Editor) Grid() universe.Grid {
	return e.grid
}

//Resize discards the pattern and starts the new empty one
func (e *Editor) Resize(rows int, cols int) error {
	if err := universe.CheckDimensions(rows, cols); err != nil {
		return errors.Wrap(err, "[Editor.Resize]")
	}
	e.grid = universe.EmptyGrid(rows, cols)
	return nil
}

//Clear kills all the cells
func (e *Editor) Clear() {
	e.grid = universe.EmptyGrid(e.grid.Rows, e.grid.Cols)
}

//Toggle inverses the cell at r, c
func (e *Editor) Toggle(r int, c int) error {
	next, err := universe.Toggle(e.grid, r, c)
	if err != nil {
		return errors.Wrap(err, "[Editor.Toggle]")
	}
	e.grid = next
	return nil
}

//Stamp places the template with its top left corner at r, c
//the coordinates wrap around the edges like the universe does
func (e *Editor) Stamp(name string, r int, c int) error {
	tmpl, err := Lookup(name)
	if err != nil {
		return errors.Wrap(err, "[Editor.Stamp]")
	}
	e.Settle(tmpl.Coordinates, r, c)
	return nil
}

//Settle makes the cells at the coordinates alive, shifted by r, c
func (e *Editor) Settle(coords [][]int, r int, c int) {
	next, err := universe.FromCells(e.grid.Cells)
	if err != nil {
		//the editor grid is always well formed
		panic(err)
	}
	for _, v := range coords {
		if len(v) < 2 {
			continue
		}
		rr := ((r+v[0])%next.Rows + next.Rows) % next.Rows
		cc := ((c+v[1])%next.Cols + next.Cols) % next.Cols
		next.Cells[rr][cc] = true
	}
	e.grid = next
}

//Export returns the pattern in the form accepted by Universe.ImportPattern
func (e *Editor) Export() (rows int, cols int, cells [][]universe.Cell) {
	return e.grid.Rows, e.grid.Cols, e.grid.Cells
}

//ImportTo hands the pattern over to the universe
func (e *Editor) ImportTo(u universe.Universe) error {
	rows, cols, cells := e.Export()
	return errors.Wrap(u.ImportPattern(rows, cols, cells), "[Editor.ImportTo]")
}
