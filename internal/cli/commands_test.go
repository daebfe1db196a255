package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/gridboard/pkg/autocycle"
	"github.com/matzehuels/gridboard/pkg/board"
	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/interaction"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

func TestCompactWidgetsKeepsDisabled(t *testing.T) {
	widgets := []dashboard.Widget{
		{ID: "a", X: 4, Y: 3, W: 2, H: 2, Enabled: true},
		{ID: "off", X: 9, Y: 9, W: 1, H: 1, Enabled: false},
		{ID: "b", X: 0, Y: 6, W: 3, H: 1, Enabled: true},
	}
	got := compactWidgets(widgets, 12, layout.ModeList)

	want := []dashboard.Widget{
		{ID: "a", X: 0, Y: 0, W: 2, H: 2, Enabled: true},
		{ID: "off", X: 9, Y: 9, W: 1, H: 1, Enabled: false},
		{ID: "b", X: 2, Y: 0, W: 3, H: 1, Enabled: true},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("compactWidgets()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if widgets[0].X != 4 {
		t.Error("compactWidgets() modified its input")
	}
}

func TestPickCols(t *testing.T) {
	tests := []struct {
		in   []int
		want int
	}{
		{[]int{0, 8, 12}, 8},
		{[]int{6, 8, 12}, 6},
		{[]int{0, 0, 0}, config.DefaultCols},
		{nil, config.DefaultCols},
	}
	for _, tt := range tests {
		if got := pickCols(tt.in...); got != tt.want {
			t.Errorf("pickCols(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCheckLayout(t *testing.T) {
	widgets := []dashboard.Widget{
		{ID: "a", X: 0, Y: 0, W: 3, H: 2, Enabled: true},
		{ID: "b", X: 2, Y: 1, W: 2, H: 2, Enabled: true},
		{ID: "a", X: 5, Y: 5, W: 1, H: 1, Enabled: false},
		{ID: "wide", X: 10, Y: 0, W: 4, H: 1, Enabled: true},
		{ID: "bad id!", X: 0, Y: 8, W: 1, H: 1, Enabled: true},
	}
	li := checkLayout(widgets, 12, 2, 1)

	if len(li.Duplicates) != 1 || li.Duplicates[0] != "a" {
		t.Errorf("Duplicates = %v, want [a]", li.Duplicates)
	}
	if len(li.Overlaps) != 1 || li.Overlaps[0] != [2]string{"a", "b"} {
		t.Errorf("Overlaps = %v, want [[a b]]", li.Overlaps)
	}
	if len(li.OutOfBounds) != 1 || li.OutOfBounds[0] != "wide" {
		t.Errorf("OutOfBounds = %v, want [wide]", li.OutOfBounds)
	}
	if len(li.InvalidIDs) != 1 || li.InvalidIDs[0] != "bad id!" {
		t.Errorf("InvalidIDs = %v, want [bad id!]", li.InvalidIDs)
	}
	if len(li.Undersized) != 1 || li.Undersized[0] != "bad id!" {
		t.Errorf("Undersized = %v, want [bad id!]", li.Undersized)
	}

	clean := checkLayout(widgets[:1], 12, 1, 1)
	if clean.count() != 0 {
		t.Errorf("checkLayout(clean) found %d problems", clean.count())
	}
}

func TestSimulateCycle(t *testing.T) {
	var slots dashboard.Slots
	for _, i := range []int{0, 2, 5} {
		slots[i] = &dashboard.Preset{Name: "p", Layout: []dashboard.Widget{{ID: "w", W: 1, H: 1, Enabled: true}}}
	}
	slots[3] = &dashboard.Preset{Name: "empty"}

	tests := []struct {
		name     string
		selected []int
		start    int
		want     []int
	}{
		{"all slots", nil, -1, []int{0, 2, 5, 0, 2}},
		{"selection order", []int{5, 3, 0}, -1, []int{5, 0, 5, 0, 5}},
		{"start mid rotation", nil, 2, []int{5, 0, 2, 5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := autocycle.Config{Interval: 10 * time.Second, SelectedIndices: tt.selected}
			steps, err := simulateCycle(context.Background(), slots, cfg, tt.start, len(tt.want))
			if err != nil {
				t.Fatalf("simulateCycle() error: %v", err)
			}
			for i, s := range steps {
				if s.Outcome != observability.TickLoaded || s.Slot != tt.want[i] {
					t.Errorf("step %d = %s slot %d, want loaded slot %d", i, s.Outcome, s.Slot, tt.want[i])
				}
				if want := time.Duration(i+1) * 10 * time.Second; s.At != want {
					t.Errorf("step %d at %s, want %s", i, s.At, want)
				}
			}
		})
	}
}

func TestSimulateCycleSingleSlot(t *testing.T) {
	var slots dashboard.Slots
	slots[4] = &dashboard.Preset{Layout: []dashboard.Widget{{ID: "w", W: 1, H: 1, Enabled: true}}}

	steps, err := simulateCycle(context.Background(), slots, autocycle.Config{}, 4, 2)
	if err != nil {
		t.Fatalf("simulateCycle() error: %v", err)
	}
	for i, s := range steps {
		if s.Outcome != observability.TickUnchanged {
			t.Errorf("step %d = %s, want unchanged", i, s.Outcome)
		}
	}

	if _, err := simulateCycle(context.Background(), dashboard.Slots{}, autocycle.Config{}, -1, 1); err == nil {
		t.Error("simulateCycle() with no valid presets should fail")
	}
}

func TestRenderGrid(t *testing.T) {
	widgets := []dashboard.Widget{
		{ID: "alpha", X: 0, Y: 0, W: 2, H: 1, Enabled: true},
		{ID: "beta", X: 3, Y: 1, W: 1, H: 1, Enabled: true},
		{ID: "gone", X: 0, Y: 5, W: 1, H: 1, Enabled: false},
	}
	var buf bytes.Buffer
	renderGrid(&buf, widgets, 4, "")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("renderGrid() drew %d rows, want 2:\n%s", len(lines), buf.String())
	}
	if strings.Count(lines[0], "A") != 2 || !strings.Contains(lines[1], "B") {
		t.Errorf("renderGrid() =\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "G") {
		t.Error("renderGrid() drew a disabled widget")
	}
}

func TestReadCompactWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "board.yaml")
	f := &config.LayoutFile{Cols: 6, Widgets: []dashboard.Widget{
		{ID: "a", X: 3, Y: 4, W: 2, H: 2, Enabled: true},
	}}
	if err := config.WriteLayoutFile(in, f); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "board.json")
	t.Setenv("XDG_CONFIG_HOME", dir)
	c := New(&bytes.Buffer{}, LogInfo)
	if err := c.runCompact(context.Background(), in, compactOpts{output: out, print: printGrid}); err != nil {
		t.Fatalf("runCompact() error: %v", err)
	}

	got, err := config.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cols != 6 || got.Widgets[0].X != 0 || got.Widgets[0].Y != 0 {
		t.Errorf("compacted file = %+v", got)
	}
}

// =============================================================================
// Editor
// =============================================================================

func newTestEditor(t *testing.T) (GridModel, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	var slots dashboard.Slots
	slots[0] = &dashboard.Preset{Name: "solo", Layout: []dashboard.Widget{{ID: "s", W: 2, H: 2, Enabled: true}}}
	b, err := board.New(board.Options{
		Widgets: []dashboard.Widget{
			{ID: "a", X: 0, Y: 0, W: 2, H: 2, Enabled: true},
			{ID: "b", X: 2, Y: 0, W: 2, H: 2, Enabled: true},
		},
		Presets: slots,
		Cols:    6,
		Clock:   clock,
		Lock:    &interaction.Lock{},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return NewGridModel(b, filepath.Join(t.TempDir(), "out.toml"), 1, 1), clock
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func nextUpdate(t *testing.T, m GridModel) board.Update {
	t.Helper()
	select {
	case u := <-m.updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("no board update")
	}
	return board.Update{}
}

func TestEditorMoveRunsGesture(t *testing.T) {
	m, clock := newTestEditor(t)
	if m.Selected != "a" {
		t.Fatalf("Selected = %q, want a", m.Selected)
	}

	next, _ := m.Update(key("right"))
	m = next.(GridModel)
	if m.Err != nil {
		t.Fatalf("move error: %v", m.Err)
	}
	if !m.Board.Controller().Pending() {
		t.Fatal("move did not schedule an emission")
	}

	clock.Advance(interaction.DefaultDebounce)
	u := nextUpdate(t, m)
	if u.Source != interaction.SourceLocalInteraction {
		t.Errorf("Source = %q, want %q", u.Source, interaction.SourceLocalInteraction)
	}
	a := u.Widgets[dashboard.Find(u.Widgets, "a")]
	b := u.Widgets[dashboard.Find(u.Widgets, "b")]
	if a.X != 1 || a.Rect().Overlaps(b.Rect()) {
		t.Errorf("after move a=%+v b=%+v", a, b)
	}

	next, _ = m.Update(updateMsg(u))
	m = next.(GridModel)
	if m.Last == nil || m.Last.Seq != u.Seq {
		t.Errorf("Last = %+v, want seq %d", m.Last, u.Seq)
	}
}

func TestEditorKeys(t *testing.T) {
	m, _ := newTestEditor(t)

	next, _ := m.Update(key("tab"))
	m = next.(GridModel)
	if m.Selected != "b" {
		t.Errorf("Selected after tab = %q, want b", m.Selected)
	}

	next, _ = m.Update(key("d"))
	m = next.(GridModel)
	if u := nextUpdate(t, m); u.Source != interaction.SourceWidgetRemove || len(u.Widgets) != 1 {
		t.Errorf("delete update = %+v", u)
	}

	next, _ = m.Update(key("1"))
	m = next.(GridModel)
	if u := nextUpdate(t, m); u.Source != board.SourcePresetLoad || m.Board.Current() != 0 {
		t.Errorf("preset update = %+v, current = %d", u, m.Board.Current())
	}

	next, _ = m.Update(key("5"))
	m = next.(GridModel)
	if m.Err == nil {
		t.Error("loading an empty slot should set Err")
	}

	next, _ = m.Update(key("w"))
	m = next.(GridModel)
	if m.Err != nil {
		t.Fatalf("write error: %v", m.Err)
	}
	f, err := config.ReadLayoutFile(m.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Widgets) != 1 || f.Widgets[0].ID != "s" || len(f.Presets) != 1 {
		t.Errorf("written file = %+v", f)
	}

	if view := m.View(); !strings.Contains(view, "preset 1") {
		t.Errorf("View() missing current preset:\n%s", view)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
