package adapter

import (
	"reflect"
	"testing"

	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/layout"
)

func TestNewClampsMinimums(t *testing.T) {
	a := New(0, -3)
	if a.MinW != 1 || a.MinH != 1 {
		t.Errorf("New(0, -3) = %+v, want mins of 1", a)
	}
}

func TestToEngineLayout(t *testing.T) {
	widgets := []dashboard.Widget{
		{ID: "a", X: 0, Y: 0, W: 1, H: 5, Enabled: true, DisplayName: "A"},
		{ID: "b", X: 2, Y: 0, W: 3, H: 3, Enabled: false},
		{ID: "c", X: 4, Y: 1, W: 4, H: 1, Enabled: true},
	}
	before := dashboard.Clone(widgets)

	got := New(2, 2).ToEngineLayout(widgets)
	want := []EngineItem{
		{I: "a", X: 0, Y: 0, W: 2, H: 5, MinW: 2, MinH: 2},
		{I: "c", X: 4, Y: 1, W: 4, H: 2, MinW: 2, MinH: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToEngineLayout() = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(widgets, before) {
		t.Error("ToEngineLayout() mutated its input")
	}
}

func TestFromEngineLayout(t *testing.T) {
	previous := []dashboard.Widget{
		{ID: "a", W: 2, H: 2, Enabled: true, DisplayName: "Alpha", Category: "ops", Description: "first"},
		{ID: "b", W: 2, H: 2, Enabled: false, DisplayName: "Beta"},
	}
	items := []EngineItem{
		{I: "a", X: 3, Y: 1, W: 4, H: 2},
		{I: "new", X: 0, Y: 0, W: 1, H: 1},
		{I: "", X: 9, Y: 9, W: 1, H: 1},
	}

	got := New(1, 1).FromEngineLayout(items, previous)
	want := []dashboard.Widget{
		{ID: "a", X: 3, Y: 1, W: 4, H: 2, Enabled: true, DisplayName: "Alpha", Category: "ops", Description: "first"},
		{ID: "new", X: 0, Y: 0, W: 1, H: 1, Enabled: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromEngineLayout() = %+v, want %+v", got, want)
	}
}

func TestRoundTripDropsDisabled(t *testing.T) {
	a := New(1, 1)
	widgets := []dashboard.Widget{
		{ID: "a", X: 0, Y: 0, W: 2, H: 2, Enabled: true},
		{ID: "b", X: 2, Y: 0, W: 2, H: 2, Enabled: false},
	}
	back := a.FromEngineLayout(a.ToEngineLayout(widgets), widgets)
	if len(back) != 1 || back[0].ID != "a" {
		t.Fatalf("round trip = %+v, want only a", back)
	}

	merged := MergeDisabled(back, widgets)
	if len(merged) != 2 || merged[1].ID != "b" || merged[1].Enabled {
		t.Errorf("MergeDisabled() = %+v", merged)
	}
}

func TestMergeDisabledSkipsPlaced(t *testing.T) {
	placed := []dashboard.Widget{{ID: "b", Enabled: true}}
	previous := []dashboard.Widget{{ID: "b", Enabled: false}, {ID: "c", Enabled: false}}
	got := MergeDisabled(placed, previous)
	if len(got) != 2 || got[0].ID != "b" || !got[0].Enabled || got[1].ID != "c" {
		t.Errorf("MergeDisabled() = %+v", got)
	}
	if got := MergeDisabled(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("MergeDisabled(nil, nil) = %#v, want empty slice", got)
	}
}

func TestRectsAndApply(t *testing.T) {
	items := []EngineItem{
		{I: "a", X: 5, Y: 0, W: 2, H: 2, MinW: 1, MinH: 1},
		{I: "b", X: 9, Y: 9, W: 1, H: 1},
	}
	rects := Rects(items)
	if rects[0] != (layout.Rect{ID: "a", X: 5, Y: 0, W: 2, H: 2}) {
		t.Errorf("Rects()[0] = %+v", rects[0])
	}

	moved := Apply(items, []layout.Rect{{ID: "a", X: 0, Y: 0, W: 2, H: 2}})
	if moved[0].X != 0 || moved[0].MinW != 1 {
		t.Errorf("Apply()[0] = %+v", moved[0])
	}
	if moved[1] != items[1] {
		t.Errorf("Apply() changed an unmatched item: %+v", moved[1])
	}
	if items[0].X != 5 {
		t.Error("Apply() mutated its input")
	}
}
