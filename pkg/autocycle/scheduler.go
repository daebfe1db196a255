// Package autocycle rotates a dashboard through its saved presets on a
// timer.
//
// The rotation is the configured slot selection intersected with the valid
// slots, recomputed on every tick and on every configuration, preset or
// modal change. The interval timer runs only while rotation is enabled, the
// rotation is non-empty and no modal is open.
//
// Qualifying user input pauses rotation for a resume delay; further input
// restarts that delay rather than adding a second one. The interval timer
// keeps ticking while paused and those ticks do nothing, so pausing
// suppresses loads without shifting the rotation phase.
package autocycle

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// LoadFunc loads the preset in slot index. The preset is a private copy.
// Loads run outside the scheduler's lock, so by the time one runs
// [Scheduler.Current] may already name a later slot.
type LoadFunc func(index int, preset *dashboard.Preset) error

// Options configures a Scheduler.
type Options struct {
	Clock  clockwork.Clock
	Logger *log.Logger
	Hooks  observability.AutoCycleHooks
	OnLoad LoadFunc
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Hooks == nil {
		o.Hooks = observability.AutoCycle()
	}
}

// Scheduler is the preset rotation state machine. It is safe for concurrent
// use. A new Scheduler is disabled until Configure enables it.
type Scheduler struct {
	opts Options

	mu      sync.Mutex
	cfg     Config
	slots   dashboard.Slots
	valid   []int
	modal   bool
	paused  bool
	current int
	closed  bool

	interval     clockwork.Timer
	intervalGen  uint64
	intervalSpan time.Duration
	resume       clockwork.Timer
	resumeGen    uint64
}

// New creates a Scheduler with no current preset.
func New(opts Options) *Scheduler {
	opts.SetDefaults()
	cfg := Config{}
	cfg.SetDefaults()
	return &Scheduler{opts: opts, cfg: cfg, current: -1}
}

// Configure replaces the configuration. Zero fields take their defaults.
// Turning off PauseOnInteraction ends any pause in progress.
func (s *Scheduler) Configure(cfg Config) error {
	cfg = cfg.clone()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.cfg = cfg
	if !cfg.PauseOnInteraction && s.paused {
		s.stopResumeLocked()
		s.paused = false
	}
	s.reconcileLocked()
	s.opts.Logger.Debug("auto-cycle configured",
		"enabled", cfg.Enabled, "interval", cfg.Interval, "rotation", s.valid)
	return nil
}

// Config returns a copy of the configuration in effect.
func (s *Scheduler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.clone()
}

// SetPresets takes a snapshot of slots. Later changes to the caller's
// presets are not observed until SetPresets is called again.
func (s *Scheduler) SetPresets(slots dashboard.Slots) {
	snap := slots.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = snap
	s.reconcileLocked()
}

// SetModalOpen records whether any modal is open in the host. Rotation stops
// while one is.
func (s *Scheduler) SetModalOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal = open
	s.reconcileLocked()
}

// SetCurrent records the slot currently loaded, or -1 for none.
func (s *Scheduler) SetCurrent(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = index
}

// Current returns the slot currently loaded, or -1.
func (s *Scheduler) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ValidIndices returns the current rotation.
func (s *Scheduler) ValidIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots.ValidIndices(s.cfg.SelectedIndices)
}

// Paused reports whether input has paused rotation.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Running reports whether the interval timer is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval != nil
}

// NotifyInput reports a host input event. Qualifying input pauses rotation
// for the resume delay, replacing any pending resume. It reports whether the
// event paused rotation.
func (s *Scheduler) NotifyInput(kind InputKind) bool {
	s.mu.Lock()
	if s.closed || !s.cfg.Enabled || !s.cfg.PauseOnInteraction || !kind.Qualifies() {
		s.mu.Unlock()
		return false
	}
	s.paused = true
	s.stopResumeLocked()
	gen := s.resumeGen
	s.resume = s.opts.Clock.AfterFunc(s.cfg.ResumeDelay, func() { s.resumeFire(gen) })
	s.mu.Unlock()

	s.opts.Hooks.OnPause(context.Background(), string(kind))
	return true
}

// Close stops both timers. It is idempotent.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopIntervalLocked()
	s.stopResumeLocked()
	return nil
}

// =============================================================================
// Timers
// =============================================================================

// reconcileLocked recomputes the rotation and arms or tears down the
// interval timer to match.
func (s *Scheduler) reconcileLocked() {
	s.valid = s.slots.ValidIndices(s.cfg.SelectedIndices)
	run := !s.closed && s.cfg.Enabled && !s.modal && len(s.valid) > 0
	switch {
	case !run:
		s.stopIntervalLocked()
	case s.interval == nil || s.intervalSpan != s.cfg.Interval:
		s.stopIntervalLocked()
		s.armIntervalLocked(s.intervalGen)
	}
}

func (s *Scheduler) armIntervalLocked(gen uint64) {
	s.intervalSpan = s.cfg.Interval
	s.interval = s.opts.Clock.AfterFunc(s.cfg.Interval, func() { s.tick(gen) })
}

func (s *Scheduler) stopIntervalLocked() {
	if s.interval != nil {
		s.interval.Stop()
		s.interval = nil
	}
	s.intervalGen++
}

func (s *Scheduler) stopResumeLocked() {
	if s.resume != nil {
		s.resume.Stop()
		s.resume = nil
	}
	s.resumeGen++
}

func (s *Scheduler) resumeFire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.resumeGen {
		s.mu.Unlock()
		return
	}
	s.resume = nil
	s.paused = false
	s.mu.Unlock()

	s.opts.Logger.Debug("auto-cycle resumed")
	s.opts.Hooks.OnResume(context.Background())
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.intervalGen {
		s.mu.Unlock()
		return
	}
	s.armIntervalLocked(gen)
	outcome, from, next, preset := s.stepLocked()
	s.mu.Unlock()

	ctx := context.Background()
	s.opts.Hooks.OnTick(ctx, outcome)
	if outcome != observability.TickLoaded {
		return
	}

	var err error
	if s.opts.OnLoad != nil {
		err = s.opts.OnLoad(next, preset)
	}
	s.opts.Hooks.OnLoad(ctx, from, next, err)
	if err != nil {
		s.opts.Logger.Warn("auto-cycle preset load failed", "slot", next, "err", err)
		return
	}
	s.opts.Logger.Debug("auto-cycle loaded preset", "from", from, "to", next)
}

// stepLocked advances the rotation by one position. The current index is
// updated before the load callback runs.
func (s *Scheduler) stepLocked() (outcome observability.TickOutcome, from, next int, preset *dashboard.Preset) {
	from = s.current
	if s.paused {
		return observability.TickPaused, from, from, nil
	}
	if s.modal {
		return observability.TickModalOpen, from, from, nil
	}
	s.valid = s.slots.ValidIndices(s.cfg.SelectedIndices)
	if len(s.valid) == 0 {
		s.stopIntervalLocked()
		return observability.TickNoValid, from, from, nil
	}

	pos := slices.Index(s.valid, s.current)
	next = s.valid[(pos+1)%len(s.valid)]
	if next == s.current {
		return observability.TickUnchanged, from, next, nil
	}
	s.current = next
	return observability.TickLoaded, from, next, s.slots[next].Clone()
}
