package layout

import "sort"

// Rect is a placed rectangle on the grid, measured in cells.
// X and Y anchor the top-left cell; W and H are spans.
type Rect struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
	W  int    `json:"w"`
	H  int    `json:"h"`
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Overlaps reports whether r and o share at least one cell.
// Rectangles that merely touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Before reports whether r precedes o in reading order: by row, then by
// column, then by ID so the order is total.
func (r Rect) Before(o Rect) bool {
	if r.Y != o.Y {
		return r.Y < o.Y
	}
	if r.X != o.X {
		return r.X < o.X
	}
	return r.ID < o.ID
}

// SortReading returns a copy of rects sorted in reading order.
func SortReading(rects []Rect) []Rect {
	out := make([]Rect, len(rects))
	copy(out, rects)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Height returns the number of rows spanned by the layout.
func Height(rects []Rect) int {
	h := 0
	for _, r := range rects {
		if b := r.Bottom(); b > h {
			h = b
		}
	}
	return h
}

// Overlapping returns every pair of IDs whose rectangles overlap, in reading
// order of the first member.
func Overlapping(rects []Rect) [][2]string {
	sorted := SortReading(rects)
	var pairs [][2]string
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].Overlaps(sorted[j]) {
				pairs = append(pairs, [2]string{sorted[i].ID, sorted[j].ID})
			}
		}
	}
	return pairs
}

// OutOfBounds returns the IDs of rectangles that extend past the column
// count or sit at negative coordinates.
func OutOfBounds(rects []Rect, cols int) []string {
	var ids []string
	for _, r := range SortReading(rects) {
		if r.X < 0 || r.Y < 0 || r.Right() > cols {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Equal reports whether a and b place the same IDs at the same positions
// with the same sizes, ignoring slice order.
func Equal(a, b []Rect) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := SortReading(a), SortReading(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}
