package dashboard

import "sync"

// Meta is the registry record for a widget type.
type Meta struct {
	Title       string `json:"title" toml:"title"`
	Category    string `json:"category" toml:"category"`
	Description string `json:"description" toml:"description"`
	DefaultW    int    `json:"defaultW" toml:"default_w"`
	DefaultH    int    `json:"defaultH" toml:"default_h"`
}

// Registry looks up widget metadata by widget ID.
type Registry interface {
	Lookup(id string) (Meta, bool)
}

// MapRegistry is a map-backed Registry. It is safe for concurrent use.
type MapRegistry struct {
	mu      sync.RWMutex
	entries map[string]Meta
}

// NewMapRegistry creates a registry from the given entries. The map is copied.
func NewMapRegistry(entries map[string]Meta) *MapRegistry {
	r := &MapRegistry{entries: make(map[string]Meta, len(entries))}
	for id, m := range entries {
		r.entries[id] = m
	}
	return r
}

// Lookup implements Registry.
func (r *MapRegistry) Lookup(id string) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entries[id]
	return m, ok
}

// Register adds or replaces an entry.
func (r *MapRegistry) Register(id string, m Meta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = m
}

// Len returns the number of registered widget types.
func (r *MapRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Annotate returns a copy of widgets with display metadata filled from the
// registry. Widgets unknown to the registry keep whatever metadata they
// already carry; nothing is fabricated.
func Annotate(reg Registry, widgets []Widget) []Widget {
	out := Clone(widgets)
	if reg == nil {
		return out
	}
	for i := range out {
		m, ok := reg.Lookup(out[i].ID)
		if !ok {
			continue
		}
		out[i].DisplayName = m.Title
		out[i].Category = m.Category
		out[i].Description = m.Description
	}
	return out
}

// NewWidget creates an enabled widget at (x, y) using the registry's default
// size. The second result is false when the ID is not registered.
func NewWidget(reg Registry, id string, x, y int) (Widget, bool) {
	if reg == nil {
		return Widget{}, false
	}
	m, ok := reg.Lookup(id)
	if !ok {
		return Widget{}, false
	}
	return Widget{
		ID:          id,
		X:           x,
		Y:           y,
		W:           m.DefaultW,
		H:           m.DefaultH,
		Enabled:     true,
		DisplayName: m.Title,
		Category:    m.Category,
		Description: m.Description,
	}, true
}
