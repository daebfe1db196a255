package layout

import (
	"fmt"
	"sort"
)

// Mode selects the packing strategy used by [Compact].
type Mode string

const (
	// ModeList is first-fit bin packing in reading order. Its output is
	// fully determined by the input rectangles and the column count.
	ModeList Mode = "list"

	// ModeDense lets each rectangle float upward in its own column until it
	// meets another one. The exact packing is engine-defined.
	ModeDense Mode = "compact"
)

// ParseMode converts a mode name into a Mode. The empty string selects
// ModeList.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeList:
		return ModeList, nil
	case ModeDense:
		return ModeDense, nil
	}
	return "", fmt.Errorf("unknown compaction mode %q (want %q or %q)", s, ModeList, ModeDense)
}

// Compact reflows rects onto a grid of cols columns and returns the new
// positions in input order. Sizes are preserved except that spans are
// clamped to at least one cell and widths to at most cols. The input is not
// modified.
//
// An unknown mode is treated as ModeList. ModeList repeats first-fit passes
// until nothing moves, so its output can differ from that of a single pass.
func Compact(rects []Rect, cols int, mode Mode) []Rect {
	if cols < 1 {
		cols = 1
	}
	items := normalize(rects, cols)
	if mode == ModeDense {
		return gravity(items, cols)
	}
	return packList(items, cols)
}

func normalize(rects []Rect, cols int) []Rect {
	out := make([]Rect, len(rects))
	for i, r := range rects {
		r.W = clamp(r.W, 1, cols)
		if r.H < 1 {
			r.H = 1
		}
		if r.X < 0 {
			r.X = 0
		}
		if r.Y < 0 {
			r.Y = 0
		}
		out[i] = r
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// packList runs first-fit passes until the layout stops changing. A single
// pass can move an item ahead of one that preceded it in reading order, and
// the next pass would then place them differently; repeating until a fixed
// point makes Compact idempotent.
func packList(items []Rect, cols int) []Rect {
	cur := items
	for pass := 0; pass <= len(items)+1; pass++ {
		next := firstFitPass(cur, cols)
		if samePositions(cur, next) {
			return next
		}
		cur = next
	}
	return cur
}

// firstFitPass places every item, in reading order, at the first free anchor
// scanning rows from the top and columns from the left.
func firstFitPass(items []Rect, cols int) []Rect {
	order := readingOrder(items)
	g := newGrid(cols)
	out := make([]Rect, len(items))
	for _, i := range order {
		r := items[i]
		r.X, r.Y = g.firstFit(r.W, r.H)
		g.mark(r.X, r.Y, r.W, r.H)
		out[i] = r
	}
	return out
}

// gravity moves every item, in reading order, as far up its column as it can
// go. Items that start on top of an earlier one are pushed down first.
func gravity(items []Rect, cols int) []Rect {
	order := readingOrder(items)
	g := newGrid(cols)
	out := make([]Rect, len(items))
	for _, i := range order {
		r := items[i]
		r.X = clamp(r.X, 0, cols-r.W)
		for !g.free(r.X, r.Y, r.W, r.H) {
			r.Y++
		}
		for r.Y > 0 && g.free(r.X, r.Y-1, r.W, r.H) {
			r.Y--
		}
		g.mark(r.X, r.Y, r.W, r.H)
		out[i] = r
	}
	return out
}

// readingOrder returns the indices of items sorted by (Y, X, ID).
func readingOrder(items []Rect) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return items[order[a]].Before(items[order[b]]) })
	return order
}

func samePositions(a, b []Rect) bool {
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			return false
		}
	}
	return true
}
