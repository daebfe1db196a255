package dashboard

import "time"

// SlotCount is the number of preset slots on a dashboard.
const SlotCount = 9

// Preset is a saved dashboard layout.
type Preset struct {
	Type        string    `json:"type" toml:"type" yaml:"type"`
	Layout      []Widget  `json:"layout" toml:"layout" yaml:"layout"`
	Name        string    `json:"name" toml:"name" yaml:"name"`
	Description string    `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" toml:"created_at" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" toml:"updated_at" yaml:"updatedAt"`
}

// Valid reports whether the preset can be loaded: it must be non-nil and
// contain at least one enabled widget.
func (p *Preset) Valid() bool {
	if p == nil {
		return false
	}
	for _, w := range p.Layout {
		if w.Enabled {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the preset. A nil preset yields nil.
func (p *Preset) Clone() *Preset {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Layout = Clone(p.Layout)
	return &cp
}

// Slots holds the nine nullable preset slots of a dashboard.
type Slots [SlotCount]*Preset

// Valid reports whether slot i is in range and holds a valid preset.
func (s *Slots) Valid(i int) bool {
	if i < 0 || i >= SlotCount {
		return false
	}
	return s[i].Valid()
}

// ValidIndices intersects the ordered selection with the valid slots.
// Selection order is preserved; out-of-range and repeated indices are
// dropped. A nil selection means every slot in ascending order.
func (s *Slots) ValidIndices(selection []int) []int {
	if selection == nil {
		selection = AllSlots()
	}
	out := make([]int, 0, len(selection))
	seen := make(map[int]bool, len(selection))
	for _, i := range selection {
		if seen[i] || !s.Valid(i) {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out
}

// Clone returns a deep copy of all slots, so later mutation of the original
// presets is not observed through the copy.
func (s *Slots) Clone() Slots {
	var out Slots
	for i, p := range s {
		out[i] = p.Clone()
	}
	return out
}

// AllSlots returns the indices of every slot in ascending order.
func AllSlots() []int {
	out := make([]int, SlotCount)
	for i := range out {
		out[i] = i
	}
	return out
}

// SlotsFromList builds Slots from a list of up to SlotCount presets; entries
// past the last slot are ignored.
func SlotsFromList(presets []*Preset) Slots {
	var out Slots
	for i, p := range presets {
		if i >= SlotCount {
			break
		}
		out[i] = p
	}
	return out
}
