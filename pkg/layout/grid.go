package layout

// grid is a lazily grown occupancy bitmap with a fixed column count and an
// unbounded number of rows.
type grid struct {
	cols int
	rows [][]bool
}

func newGrid(cols int) *grid {
	return &grid{cols: cols}
}

// row returns row y, growing the bitmap as needed.
func (g *grid) row(y int) []bool {
	for len(g.rows) <= y {
		g.rows = append(g.rows, make([]bool, g.cols))
	}
	return g.rows[y]
}

// free reports whether the w×h block anchored at (x, y) is entirely
// unoccupied. Rows past the grown area are empty.
func (g *grid) free(x, y, w, h int) bool {
	if x < 0 || y < 0 || x+w > g.cols {
		return false
	}
	for r := y; r < y+h; r++ {
		if r >= len(g.rows) {
			return true
		}
		row := g.rows[r]
		for c := x; c < x+w; c++ {
			if row[c] {
				return false
			}
		}
	}
	return true
}

func (g *grid) mark(x, y, w, h int) {
	for r := y; r < y+h; r++ {
		row := g.row(r)
		for c := x; c < x+w; c++ {
			row[c] = true
		}
	}
}

// firstFit returns the lowest row, then lowest column, at which a w×h block
// fits. A row at or past the grown area is always empty, so the scan ends.
func (g *grid) firstFit(w, h int) (x, y int) {
	for y = 0; ; y++ {
		for x = 0; x+w <= g.cols; x++ {
			if g.free(x, y, w, h) {
				return x, y
			}
		}
	}
}
