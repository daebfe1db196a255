// Package dashboard defines the canonical records of a dashboard surface:
// placed widgets, saved layout presets and the widget metadata registry.
//
// These types carry no behaviour beyond small slice helpers. Placement is
// computed by package layout, converted to and from the rendering engine by
// package adapter and synchronized by package interaction.
//
// # Widgets
//
// A [Widget] occupies a W×H block of grid cells anchored at (X, Y). Disabled
// widgets stay in the master list but are never placed or compacted; deleting
// a widget removes it from the list entirely ([Remove]).
//
// Display metadata (DisplayName, Category, Description) is not authoritative.
// It is looked up from a [Registry] by ID and carried forward when present,
// never invented.
//
// # Presets
//
// A [Preset] is a saved layout stored in one of [SlotCount] nullable [Slots].
// A slot is valid when it is non-nil and its layout has at least one enabled
// widget.
package dashboard

import "github.com/matzehuels/gridboard/pkg/layout"

// Widget is a placed unit on the dashboard grid.
type Widget struct {
	ID      string `json:"id" toml:"id" yaml:"id"`
	X       int    `json:"x" toml:"x" yaml:"x"`
	Y       int    `json:"y" toml:"y" yaml:"y"`
	W       int    `json:"w" toml:"w" yaml:"w"`
	H       int    `json:"h" toml:"h" yaml:"h"`
	Enabled bool   `json:"enabled" toml:"enabled" yaml:"enabled"`

	DisplayName string `json:"displayName,omitempty" toml:"display_name,omitempty" yaml:"displayName,omitempty"`
	Category    string `json:"category,omitempty" toml:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
}

// Rect returns the widget's occupied rectangle.
func (w Widget) Rect() layout.Rect {
	return layout.Rect{ID: w.ID, X: w.X, Y: w.Y, W: w.W, H: w.H}
}

// Clone returns a copy of widgets that shares no backing array with the input.
// A nil input yields nil.
func Clone(widgets []Widget) []Widget {
	if widgets == nil {
		return nil
	}
	out := make([]Widget, len(widgets))
	copy(out, widgets)
	return out
}

// Enabled returns the enabled widgets in their original order.
func Enabled(widgets []Widget) []Widget {
	out := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if w.Enabled {
			out = append(out, w)
		}
	}
	return out
}

// Disabled returns the disabled widgets in their original order.
func Disabled(widgets []Widget) []Widget {
	var out []Widget
	for _, w := range widgets {
		if !w.Enabled {
			out = append(out, w)
		}
	}
	return out
}

// Find returns the index of the widget with the given ID, or -1.
func Find(widgets []Widget, id string) int {
	for i, w := range widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// Remove returns a new slice without the widget with the given ID.
// The second result reports whether anything was removed.
func Remove(widgets []Widget, id string) ([]Widget, bool) {
	out := make([]Widget, 0, len(widgets))
	removed := false
	for _, w := range widgets {
		if w.ID == id {
			removed = true
			continue
		}
		out = append(out, w)
	}
	return out, removed
}

// SetEnabled returns a copy of widgets with the given widget's enabled flag
// changed. This is the soft-remove path; the widget keeps its position.
func SetEnabled(widgets []Widget, id string, enabled bool) ([]Widget, bool) {
	out := Clone(widgets)
	i := Find(out, id)
	if i < 0 {
		return out, false
	}
	out[i].Enabled = enabled
	return out, true
}

// Rects returns the rectangles of the enabled widgets.
func Rects(widgets []Widget) []layout.Rect {
	out := make([]layout.Rect, 0, len(widgets))
	for _, w := range widgets {
		if w.Enabled {
			out = append(out, w.Rect())
		}
	}
	return out
}

// Place returns a copy of widgets moved to the positions and sizes of the
// rectangles with matching IDs. Widgets without a rectangle are unchanged.
func Place(widgets []Widget, rects []layout.Rect) []Widget {
	byID := make(map[string]layout.Rect, len(rects))
	for _, r := range rects {
		byID[r.ID] = r
	}
	out := Clone(widgets)
	for i := range out {
		if r, ok := byID[out[i].ID]; ok {
			out[i].X, out[i].Y, out[i].W, out[i].H = r.X, r.Y, r.W, r.H
		}
	}
	return out
}
