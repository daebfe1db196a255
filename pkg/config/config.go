// Package config loads gridboard settings from a TOML file.
//
// Every section is optional. Missing values take the defaults below, so an
// empty file and no file at all are equivalent.
//
//	[grid]
//	cols = 12
//	row_height = 30
//	min_w = 1
//	min_h = 1
//
//	[sync]
//	debounce = "150ms"
//	compact_on_remove = false
//	compact_mode = "list"
//
//	[autocycle]
//	enabled = false
//	interval = "30s"
//	selected = [0, 1, 2]
//	pause_on_interaction = true
//	resume_delay = "60s"
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	backend = "memory"   # memory, file, redis, mongo or none
//
//	[[widgets]]
//	id = "clock"
//	title = "Clock"
//	default_w = 2
//	default_h = 2
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridboard/pkg/autocycle"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/interaction"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultCols      = interaction.DefaultCols
	DefaultRowHeight = 30
	DefaultAddr      = ":8080"
	DefaultBackend   = "memory"
	DefaultDatabase  = "gridboard"
	DefaultStoreDir  = ".gridboard"
)

// Backend names accepted in [store].
var Backends = []string{"memory", "file", "redis", "mongo", "none"}

// Duration is a time.Duration written as a string such as "150ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Grid holds the grid dimensions.
type Grid struct {
	Cols      int `toml:"cols"`
	RowHeight int `toml:"row_height"`
	MinW      int `toml:"min_w"`
	MinH      int `toml:"min_h"`
}

// Sync holds interaction controller settings.
type Sync struct {
	Debounce        Duration `toml:"debounce"`
	CompactOnRemove bool     `toml:"compact_on_remove"`
	CompactMode     string   `toml:"compact_mode"`
}

// AutoCycle holds preset rotation settings.
type AutoCycle struct {
	Enabled            bool     `toml:"enabled"`
	Interval           Duration `toml:"interval"`
	Selected           []int    `toml:"selected,omitempty"`
	PauseOnInteraction bool     `toml:"pause_on_interaction"`
	ResumeDelay        Duration `toml:"resume_delay"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Store selects and configures the preferences backend.
type Store struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path,omitempty"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
}

// Widget is a widget registry entry.
type Widget struct {
	ID          string `toml:"id"`
	Title       string `toml:"title"`
	Category    string `toml:"category,omitempty"`
	Description string `toml:"description,omitempty"`
	DefaultW    int    `toml:"default_w"`
	DefaultH    int    `toml:"default_h"`
}

// Config is the complete gridboard configuration.
type Config struct {
	Grid      Grid      `toml:"grid"`
	Sync      Sync      `toml:"sync"`
	AutoCycle AutoCycle `toml:"autocycle"`
	Server    Server    `toml:"server"`
	Store     Store     `toml:"store"`
	Widgets   []Widget  `toml:"widgets,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.AutoCycle.PauseOnInteraction = true
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Grid.Cols <= 0 {
		c.Grid.Cols = DefaultCols
	}
	if c.Grid.RowHeight <= 0 {
		c.Grid.RowHeight = DefaultRowHeight
	}
	c.Grid.MinW = max(c.Grid.MinW, 1)
	c.Grid.MinH = max(c.Grid.MinH, 1)

	if c.Sync.Debounce.Duration <= 0 {
		c.Sync.Debounce.Duration = interaction.DefaultDebounce
	}
	if c.Sync.CompactMode == "" {
		c.Sync.CompactMode = string(layout.ModeList)
	}

	if c.AutoCycle.Interval.Duration == 0 {
		c.AutoCycle.Interval.Duration = autocycle.DefaultInterval
	}
	if c.AutoCycle.ResumeDelay.Duration == 0 {
		c.AutoCycle.ResumeDelay.Duration = autocycle.DefaultResumeDelay
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}

	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.Backend == "file" && c.Store.Path == "" {
		c.Store.Path = DefaultStoreDir
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		c.Store.RedisAddr = "localhost:6379"
	}
	if c.Store.Backend == "mongo" && c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = DefaultDatabase
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if err := errs.ValidateGrid(c.Grid.Cols, c.Grid.MinW, c.Grid.MinH); err != nil {
		return err
	}
	if _, err := layout.ParseMode(c.Sync.CompactMode); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "[sync] compact_mode")
	}
	cycle := c.AutoCycleConfig()
	if err := cycle.Validate(); err != nil {
		return err
	}
	if !validBackend(c.Store.Backend) {
		return errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q (want one of %v)", c.Store.Backend, Backends)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "[store] mongo_uri is required for the mongo backend")
	}
	seen := make(map[string]bool, len(c.Widgets))
	for _, w := range c.Widgets {
		if err := errs.ValidateWidgetID(w.ID); err != nil {
			return err
		}
		if seen[w.ID] {
			return errs.New(errs.ErrCodeInvalidConfig, "widget %q registered twice", w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}

func validBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// AutoCycleConfig converts the [autocycle] section.
func (c *Config) AutoCycleConfig() autocycle.Config {
	cfg := autocycle.Config{
		Enabled:            c.AutoCycle.Enabled,
		Interval:           c.AutoCycle.Interval.Duration,
		SelectedIndices:    c.AutoCycle.Selected,
		PauseOnInteraction: c.AutoCycle.PauseOnInteraction,
		ResumeDelay:        c.AutoCycle.ResumeDelay.Duration,
	}
	cfg.SetDefaults()
	return cfg
}

// Registry builds the widget registry from [[widgets]].
func (c *Config) Registry() *dashboard.MapRegistry {
	entries := make(map[string]dashboard.Meta, len(c.Widgets))
	for _, w := range c.Widgets {
		entries[w.ID] = dashboard.Meta{
			Title:       w.Title,
			Category:    w.Category,
			Description: w.Description,
			DefaultW:    max(w.DefaultW, c.Grid.MinW),
			DefaultH:    max(w.DefaultH, c.Grid.MinH),
		}
	}
	return dashboard.NewMapRegistry(entries)
}

// CompactMode returns the parsed [sync] compact_mode.
func (c *Config) CompactMode() layout.Mode {
	m, err := layout.ParseMode(c.Sync.CompactMode)
	if err != nil {
		return layout.ModeList
	}
	return m
}

// Load reads the TOML file at path, applies defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, errs.Wrap(errs.ErrCodeNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data, applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown config keys: %v", undecoded)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
