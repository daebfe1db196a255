package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// Format is a layout file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer layout format from %q (want .json, .toml, .yaml or .yml)", path)
}

// PresetEntry is a preset stored in a numbered slot.
type PresetEntry struct {
	Slot             int `json:"slot" toml:"slot" yaml:"slot"`
	dashboard.Preset `yaml:",inline"`
}

// LayoutFile is a dashboard layout with optional presets, as read by the
// compact, validate, cycle and tui commands.
type LayoutFile struct {
	Cols    int                `json:"cols,omitempty" toml:"cols,omitempty" yaml:"cols,omitempty"`
	Widgets []dashboard.Widget `json:"widgets" toml:"widgets" yaml:"widgets"`
	Presets []PresetEntry      `json:"presets,omitempty" toml:"presets,omitempty" yaml:"presets,omitempty"`
}

// Slots places the presets in their slots. Out-of-range or repeated slots
// are an error.
func (f *LayoutFile) Slots() (dashboard.Slots, error) {
	var out dashboard.Slots
	for _, e := range f.Presets {
		if err := errs.ValidateSlot(e.Slot); err != nil {
			return out, err
		}
		if out[e.Slot] != nil {
			return out, errs.New(errs.ErrCodeInvalidSlot, "preset slot %d defined twice", e.Slot)
		}
		p := e.Preset
		out[e.Slot] = p.Clone()
	}
	return out, nil
}

// SetSlots replaces the presets with the non-empty slots.
func (f *LayoutFile) SetSlots(slots dashboard.Slots) {
	f.Presets = nil
	for i, p := range slots {
		if p != nil {
			f.Presets = append(f.Presets, PresetEntry{Slot: i, Preset: *p.Clone()})
		}
	}
}

// ReadLayoutFile reads and decodes a layout file, picking the format from
// the extension.
func ReadLayoutFile(path string) (*LayoutFile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return DecodeLayout(bytes.NewReader(data), format)
}

// WriteLayoutFile encodes f to path, picking the format from the extension.
func WriteLayoutFile(path string, f *LayoutFile) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeLayout(&buf, format, f); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DecodeLayout decodes a layout file in the given format.
func DecodeLayout(r io.Reader, format Format) (*LayoutFile, error) {
	var f LayoutFile
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&f)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&f)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&f)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported layout format %q", format)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidLayout, err, "decode %s layout", format)
	}
	return &f, nil
}

// EncodeLayout writes f in the given format.
func EncodeLayout(w io.Writer, format Format, f *LayoutFile) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unsupported layout format %q", format)
}
