// Package adapter maps dashboard widgets to and from the native layout items
// of the grid rendering engine.
//
// The mapping is asymmetric. [Adapter.ToEngineLayout] drops disabled widgets,
// and [Adapter.FromEngineLayout] produces only what the engine placed, with
// every widget enabled. Callers that must keep disabled widgets merge them
// back with [MergeDisabled].
package adapter

import (
	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// EngineItem is one placed item in the rendering engine's layout.
type EngineItem struct {
	I      string `json:"i"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
	MinW   int    `json:"minW,omitempty"`
	MinH   int    `json:"minH,omitempty"`
	Static bool   `json:"static,omitempty"`
}

// Rect returns the item's rectangle.
func (e EngineItem) Rect() layout.Rect {
	return layout.Rect{ID: e.I, X: e.X, Y: e.Y, W: e.W, H: e.H}
}

// Adapter converts between widgets and engine items under fixed minimum
// sizes. The zero value uses minimums of one cell.
type Adapter struct {
	MinW int
	MinH int
}

// New returns an Adapter with the given minimum sizes, each raised to at
// least one cell.
func New(minW, minH int) Adapter {
	return Adapter{MinW: max(minW, 1), MinH: max(minH, 1)}
}

func (a Adapter) mins() (int, int) {
	return max(a.MinW, 1), max(a.MinH, 1)
}

// ToEngineLayout returns the engine items for the enabled widgets, in input
// order, with spans clamped to the minimums. The input is not modified.
func (a Adapter) ToEngineLayout(widgets []dashboard.Widget) []EngineItem {
	minW, minH := a.mins()
	out := make([]EngineItem, 0, len(widgets))
	for _, w := range widgets {
		if !w.Enabled {
			continue
		}
		out = append(out, EngineItem{
			I:    w.ID,
			X:    max(w.X, 0),
			Y:    max(w.Y, 0),
			W:    max(w.W, minW),
			H:    max(w.H, minH),
			MinW: minW,
			MinH: minH,
		})
	}
	return out
}

// FromEngineLayout maps engine items back to widgets. Display metadata is
// copied from the widget with the same ID in previous, if there is one; an
// item without a previous widget is still produced, without metadata. Every
// produced widget is enabled. Items with an empty ID are dropped.
func (a Adapter) FromEngineLayout(items []EngineItem, previous []dashboard.Widget) []dashboard.Widget {
	minW, minH := a.mins()
	byID := make(map[string]dashboard.Widget, len(previous))
	for _, w := range previous {
		byID[w.ID] = w
	}

	out := make([]dashboard.Widget, 0, len(items))
	for _, it := range items {
		if it.I == "" {
			continue
		}
		w := dashboard.Widget{
			ID:      it.I,
			X:       max(it.X, 0),
			Y:       max(it.Y, 0),
			W:       max(it.W, minW),
			H:       max(it.H, minH),
			Enabled: true,
		}
		if prev, ok := byID[it.I]; ok {
			w.DisplayName = prev.DisplayName
			w.Category = prev.Category
			w.Description = prev.Description
		}
		out = append(out, w)
	}
	return out
}

// MergeDisabled appends to placed every disabled widget of previous whose ID
// is not already in placed. Neither input is modified.
func MergeDisabled(placed, previous []dashboard.Widget) []dashboard.Widget {
	out := dashboard.Clone(placed)
	if out == nil {
		out = []dashboard.Widget{}
	}
	seen := make(map[string]bool, len(placed))
	for _, w := range placed {
		seen[w.ID] = true
	}
	for _, w := range previous {
		if !w.Enabled && !seen[w.ID] {
			out = append(out, w)
		}
	}
	return out
}

// Rects returns the rectangles of items.
func Rects(items []EngineItem) []layout.Rect {
	out := make([]layout.Rect, len(items))
	for i, it := range items {
		out[i] = it.Rect()
	}
	return out
}

// Apply returns a copy of items moved to the positions and sizes of the
// matching rectangles. Items without a rectangle are kept as they are.
func Apply(items []EngineItem, rects []layout.Rect) []EngineItem {
	byID := make(map[string]layout.Rect, len(rects))
	for _, r := range rects {
		byID[r.ID] = r
	}
	out := make([]EngineItem, len(items))
	for i, it := range items {
		if r, ok := byID[it.I]; ok {
			it.X, it.Y, it.W, it.H = r.X, r.Y, r.W, r.H
		}
		out[i] = it
	}
	return out
}
