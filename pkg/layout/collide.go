package layout

// ResolveCollisions keeps the rectangle with ID pinned where it is and pushes
// any rectangle that would overlap an already settled one straight down
// until it fits. Rectangles are settled in reading order after the pinned
// one; those that overlap nothing keep their positions. The result is in
// input order and never overlaps.
//
// If pinned is not present every rectangle is treated alike.
func ResolveCollisions(rects []Rect, pinned string, cols int) []Rect {
	if cols < 1 {
		cols = 1
	}
	items := normalize(rects, cols)
	for i := range items {
		items[i].X = clamp(items[i].X, 0, cols-items[i].W)
	}

	g := newGrid(cols)
	out := make([]Rect, len(items))
	done := make([]bool, len(items))
	for i, r := range items {
		if r.ID == pinned {
			g.mark(r.X, r.Y, r.W, r.H)
			out[i] = r
			done[i] = true
			break
		}
	}
	for _, i := range readingOrder(items) {
		if done[i] {
			continue
		}
		r := items[i]
		for !g.free(r.X, r.Y, r.W, r.H) {
			r.Y++
		}
		g.mark(r.X, r.Y, r.W, r.H)
		out[i] = r
	}
	return out
}
