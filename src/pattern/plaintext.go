package pattern

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"lifeboard/src/universe"
)

var ErrBadPattern = errors.New("malformed plaintext pattern")

//ParsePlaintext reads the pattern in the plaintext (.cells) format:
//lines starting with '!' are comments, '.' is the dead cell, 'O' or '*' is the live one
//short lines are padded with dead cells up to the widest line
func ParsePlaintext(r io.Reader) (universe.Grid, error) {
	var rows [][]universe.Cell
	width := 0
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), " \t\r")
		if strings.HasPrefix(text, "!") {
			continue
		}
		row := make([]universe.Cell, 0, len(text))
		col := 0
		for _, ch := range text {
			col++
			switch ch {
			case '.':
				row = append(row, false)
			case 'O', 'o', '*':
				row = append(row, true)
			default:
				return universe.Grid{}, errors.Wrapf(ErrBadPattern, "[ParsePlaintext] line %d, column %d: unexpected %q", line, col, ch)
			}
		}
		if len(row) > width {
			width = len(row)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return universe.Grid{}, errors.Wrap(err, "[ParsePlaintext] failed to read pattern")
	}
	//trailing blank lines do not belong to the pattern
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 || width == 0 {
		return universe.Grid{}, errors.Wrap(ErrBadPattern, "[ParsePlaintext] no cells")
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], false)
		}
	}
	return universe.FromCells(rows)
}

//Place copies the pattern into the editor with its top left corner at r, c
//the editor keeps its dimensions, the cells outside wrap around
func (e *Editor) Place(g universe.Grid, r int, c int) {
	var coords [][]int
	for pr := range g.Cells {
		for pc := range g.Cells[pr] {
			if g.Cells[pr][pc] {
				coords = append(coords, []int{pr, pc})
			}
		}
	}
	e.Settle(coords, r, c)
}
