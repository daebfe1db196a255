package autocycle

import (
	"time"

	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultInterval is the time between rotations.
	DefaultInterval = 30 * time.Second

	// DefaultResumeDelay is how long rotation stays paused after input.
	DefaultResumeDelay = 60 * time.Second

	// MinInterval is the shortest accepted rotation interval.
	MinInterval = time.Second
)

// Config controls preset rotation.
type Config struct {
	Enabled  bool
	Interval time.Duration

	// SelectedIndices is the ordered rotation. Nil selects every slot; an
	// empty, non-nil slice selects none.
	SelectedIndices []int

	PauseOnInteraction bool
	ResumeDelay        time.Duration
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.ResumeDelay == 0 {
		c.ResumeDelay = DefaultResumeDelay
	}
	if c.SelectedIndices == nil {
		c.SelectedIndices = dashboard.AllSlots()
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if c.Interval < MinInterval {
		return errs.New(errs.ErrCodeInvalidConfig, "auto-cycle interval %s is below the minimum of %s", c.Interval, MinInterval)
	}
	if c.ResumeDelay < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "resume delay must not be negative")
	}
	for _, i := range c.SelectedIndices {
		if err := errs.ValidateSlot(i); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) clone() Config {
	if c.SelectedIndices != nil {
		c.SelectedIndices = append([]int{}, c.SelectedIndices...)
	}
	return c
}

// InputKind names a host input event.
type InputKind string

const (
	InputPointerDown InputKind = "pointerdown"
	InputKeyDown     InputKind = "keydown"
	InputWheel       InputKind = "wheel"
	InputTouchStart  InputKind = "touchstart"
)

// Qualifies reports whether input of this kind pauses rotation.
func (k InputKind) Qualifies() bool {
	switch k {
	case InputPointerDown, InputKeyDown, InputWheel, InputTouchStart:
		return true
	}
	return false
}
