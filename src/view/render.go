package view

import (
	"bytes"

	"lifeboard/src/universe"
)

//renderGrid draws the grid into the maxW x maxH characters area
//the rows and columns outside the area are discarded, crop reports that
func renderGrid(g universe.Grid, maxW int, maxH int, liveFiller string, deadFiller string) (out string, crop bool) {
	if g.Cols > maxW || g.Rows > maxH {
		crop = true
	}
	var b bytes.Buffer
	for i, l := range g.Cells {
		if i >= maxH {
			break
		}
		//line feed char
		if i != 0 {
			b.WriteByte(10)
		}
		for j, e := range l {
			if j >= maxW {
				break
			}
			if e {
				b.WriteString(liveFiller)
			} else {
				b.WriteString(deadFiller)
			}
		}
	}
	return b.String(), crop
}

//cellAt maps the view cursor to the grid cell
func cellAt(g universe.Grid, cx int, cy int, ox int, oy int) (r int, c int, ok bool) {
	r, c = cy+oy, cx+ox
	ok = r >= 0 && r < g.Rows && c >= 0 && c < g.Cols
	return
}
