package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"layout.json", FormatJSON, false},
		{"dir/layout.TOML", FormatTOML, false},
		{"layout.yml", FormatYAML, false},
		{"layout.yaml", FormatYAML, false},
		{"layout.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeLayout(t *testing.T) {
	inputs := map[Format]string{
		FormatJSON: `{"cols": 8, "widgets": [{"id": "a", "x": 1, "y": 2, "w": 3, "h": 4, "enabled": true}],
			"presets": [{"slot": 4, "name": "night", "layout": [{"id": "a", "w": 1, "h": 1, "enabled": true}]}]}`,
		FormatTOML: `
cols = 8
[[widgets]]
id = "a"
x = 1
y = 2
w = 3
h = 4
enabled = true
[[presets]]
slot = 4
name = "night"
[[presets.layout]]
id = "a"
w = 1
h = 1
enabled = true
`,
		FormatYAML: `
cols: 8
widgets:
  - {id: a, x: 1, y: 2, w: 3, h: 4, enabled: true}
presets:
  - slot: 4
    name: night
    layout:
      - {id: a, w: 1, h: 1, enabled: true}
`,
	}

	for format, src := range inputs {
		t.Run(string(format), func(t *testing.T) {
			f, err := DecodeLayout(strings.NewReader(src), format)
			if err != nil {
				t.Fatalf("DecodeLayout() error = %v", err)
			}
			want := dashboard.Widget{ID: "a", X: 1, Y: 2, W: 3, H: 4, Enabled: true}
			if f.Cols != 8 || len(f.Widgets) != 1 || f.Widgets[0] != want {
				t.Errorf("DecodeLayout() = %+v", f)
			}
			slots, err := f.Slots()
			if err != nil {
				t.Fatal(err)
			}
			if !slots.Valid(4) || slots[4].Name != "night" {
				t.Errorf("Slots()[4] = %+v", slots[4])
			}
		})
	}
}

func TestDecodeLayoutErrors(t *testing.T) {
	if _, err := DecodeLayout(strings.NewReader("{"), FormatJSON); !errs.Is(err, errs.ErrCodeInvalidLayout) {
		t.Errorf("DecodeLayout(bad json) error = %v", err)
	}
	if _, err := DecodeLayout(strings.NewReader(""), "xml"); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("DecodeLayout(xml) error = %v", err)
	}
}

func TestSlotsErrors(t *testing.T) {
	f := &LayoutFile{Presets: []PresetEntry{{Slot: 12}}}
	if _, err := f.Slots(); !errs.Is(err, errs.ErrCodeInvalidSlot) {
		t.Errorf("Slots() error = %v", err)
	}
	f = &LayoutFile{Presets: []PresetEntry{{Slot: 1}, {Slot: 1}}}
	if _, err := f.Slots(); !errs.Is(err, errs.ErrCodeInvalidSlot) {
		t.Errorf("Slots() duplicate error = %v", err)
	}
}

func TestWriteReadLayoutFile(t *testing.T) {
	var slots dashboard.Slots
	slots[2] = &dashboard.Preset{Name: "two", Layout: []dashboard.Widget{{ID: "b", W: 2, H: 2, Enabled: true}}}
	f := &LayoutFile{Cols: 6, Widgets: []dashboard.Widget{{ID: "b", X: 1, W: 2, H: 2, Enabled: true}}}
	f.SetSlots(slots)

	for _, name := range []string{"out.json", "out.toml", "out.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := WriteLayoutFile(path, f); err != nil {
			t.Fatalf("WriteLayoutFile(%s) error = %v", name, err)
		}
		back, err := ReadLayoutFile(path)
		if err != nil {
			t.Fatalf("ReadLayoutFile(%s) error = %v", name, err)
		}
		if back.Cols != 6 || len(back.Widgets) != 1 || back.Widgets[0] != f.Widgets[0] {
			t.Errorf("%s: widgets = %+v", name, back.Widgets)
		}
		if s, _ := back.Slots(); !s.Valid(2) {
			t.Errorf("%s: slot 2 lost", name)
		}
	}
}
