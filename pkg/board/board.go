// Package board owns the live state of one dashboard surface.
//
// A [Board] holds the widget list and the preset slots, and drives an
// [interaction.Controller] and an [autocycle.Scheduler] over them. Every
// layout the controller commits, every preset load and every remote change
// becomes an [Update]: it is applied to the board, appended to a bounded
// history and fanned out to subscribers.
//
// # Persistence
//
// When a [prefs.Service] is configured the board writes its layout to
// "dashboard.layout" and its presets to "dashboard.presets". While the
// interaction lock is held (a drag or resize is in progress) writes are
// deferred and [Board.Flush] performs them once the gesture ends.
package board

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/gridboard/pkg/adapter"
	"github.com/matzehuels/gridboard/pkg/autocycle"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/interaction"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/prefs"
)

const (
	// DefaultUser owns the preferences of a board when none is configured.
	DefaultUser = "local"

	// DefaultHistory is the number of updates kept for late readers.
	DefaultHistory = 64

	// LayoutKey and PresetsKey are the preference paths the board persists.
	LayoutKey  = "dashboard.layout"
	PresetsKey = "dashboard.presets"

	updateBuffer   = 16
	persistTimeout = 5 * time.Second
)

// Board-level update sources, in addition to the controller's.
const (
	SourcePresetLoad interaction.Source = "preset-load"
	SourceRemote     interaction.Source = "remote"
)

// ErrClosed is returned by operations on a closed board.
var ErrClosed = errs.New(errs.ErrCodeClosed, "board is closed")

// Update is one committed change of the board's layout.
type Update struct {
	Seq     uint64             `json:"seq"`
	ID      string             `json:"id"`
	Source  interaction.Source `json:"source"`
	Widgets []dashboard.Widget `json:"widgets"`
	Preset  int                `json:"preset"`
	At      time.Time          `json:"at"`
}

// Options configures a Board.
type Options struct {
	// Widgets and Presets are the initial state.
	Widgets  []dashboard.Widget
	Presets  dashboard.Slots
	Registry dashboard.Registry

	Cols            int
	MinW, MinH      int
	Debounce        time.Duration
	CompactOnRemove bool
	CompactMode     layout.Mode
	AutoCycle       autocycle.Config

	// Prefs persists the board. Nil disables persistence.
	Prefs   *prefs.Service
	User    string
	Session string

	// History bounds the update log.
	History int

	Clock          clockwork.Clock
	Lock           *interaction.Lock
	Logger         *log.Logger
	LayoutHooks    observability.LayoutHooks
	AutoCycleHooks observability.AutoCycleHooks
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Cols <= 0 {
		o.Cols = interaction.DefaultCols
	}
	if o.User == "" {
		o.User = DefaultUser
	}
	if o.Session == "" {
		o.Session = uuid.NewString()
	}
	if o.History <= 0 {
		o.History = DefaultHistory
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Lock == nil {
		o.Lock = interaction.DefaultLock
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Board is the owner of a dashboard's layout and presets. It is safe for
// concurrent use.
type Board struct {
	opts  Options
	ctrl  *interaction.Controller
	sched *autocycle.Scheduler

	// loadMu orders preset loads from LoadPreset and from the scheduler.
	loadMu sync.Mutex

	mu      sync.Mutex
	widgets []dashboard.Widget
	slots   dashboard.Slots
	current int
	seq     uint64
	history []Update
	subs    map[chan Update]struct{}
	dirty   bool
	closed  bool
}

// New creates a Board and starts its scheduler with opts.AutoCycle.
func New(opts Options) (*Board, error) {
	opts.SetDefaults()
	b := &Board{
		opts:    opts,
		widgets: dashboard.Annotate(opts.Registry, opts.Widgets),
		slots:   opts.Presets.Clone(),
		current: -1,
		subs:    make(map[chan Update]struct{}),
	}
	if b.widgets == nil {
		b.widgets = []dashboard.Widget{}
	}

	b.ctrl = interaction.New(interaction.Options{
		Adapter:         adapter.New(opts.MinW, opts.MinH),
		Cols:            opts.Cols,
		Debounce:        opts.Debounce,
		CompactOnRemove: opts.CompactOnRemove,
		CompactMode:     opts.CompactMode,
		Clock:           opts.Clock,
		Lock:            opts.Lock,
		Logger:          opts.Logger,
		Hooks:           opts.LayoutHooks,
		OnLayoutChange:  b.onLayoutChange,
	})
	b.ctrl.SetWidgets(b.widgets)

	b.sched = autocycle.New(autocycle.Options{
		Clock:  opts.Clock,
		Logger: opts.Logger,
		Hooks:  opts.AutoCycleHooks,
		OnLoad: b.onPresetLoad,
	})
	b.sched.SetPresets(b.slots)
	if err := b.sched.Configure(opts.AutoCycle); err != nil {
		b.ctrl.Close()
		b.sched.Close()
		return nil, err
	}
	return b, nil
}

// Controller returns the board's interaction controller.
func (b *Board) Controller() *interaction.Controller { return b.ctrl }

// Scheduler returns the board's auto-cycle scheduler.
func (b *Board) Scheduler() *autocycle.Scheduler { return b.sched }

// Session returns the session ID the board writes preferences as.
func (b *Board) Session() string { return b.opts.Session }

// Cols returns the grid column count.
func (b *Board) Cols() int { return b.opts.Cols }

// Widgets returns a copy of the current layout.
func (b *Board) Widgets() []dashboard.Widget {
	b.mu.Lock()
	defer b.mu.Unlock()
	return dashboard.Clone(b.widgets)
}

// Presets returns a copy of the preset slots.
func (b *Board) Presets() dashboard.Slots {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slots.Clone()
}

// Current returns the slot of the last loaded preset, or -1.
func (b *Board) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// History returns the retained updates, oldest first.
func (b *Board) History() []Update {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Update(nil), b.history...)
}

// Subscribe returns a channel of future updates and a cancel func. A
// subscriber that falls behind misses updates rather than blocking the
// board.
func (b *Board) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, updateBuffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

// =============================================================================
// Layout
// =============================================================================

// EngineLayout returns the current layout as engine items.
func (b *Board) EngineLayout() []adapter.EngineItem { return b.ctrl.EngineLayout() }

// DragStart begins a drag of widget id.
func (b *Board) DragStart(id string) error { return b.ctrl.DragStart(id) }

// ResizeStart begins a resize of widget id.
func (b *Board) ResizeStart(id string) error { return b.ctrl.ResizeStart(id) }

// DragStop ends a drag and writes any persistence deferred during it.
func (b *Board) DragStop(items []adapter.EngineItem, item adapter.EngineItem) error {
	if err := b.ctrl.DragStop(items, item); err != nil {
		return err
	}
	return b.flushAfterGesture()
}

// ResizeStop ends a resize and writes any persistence deferred during it.
func (b *Board) ResizeStop(items []adapter.EngineItem, item adapter.EngineItem) error {
	if err := b.ctrl.ResizeStop(items, item); err != nil {
		return err
	}
	return b.flushAfterGesture()
}

func (b *Board) flushAfterGesture() error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := b.Flush(ctx); err != nil {
		b.opts.Logger.Warn("persist after gesture failed", "err", err)
	}
	return nil
}

// LayoutChanged forwards an engine layout notification.
func (b *Board) LayoutChanged(items []adapter.EngineItem) error { return b.ctrl.LayoutChanged(items) }

// RemoveWidget deletes widget id.
func (b *Board) RemoveWidget(id string) error { return b.ctrl.RemoveWidget(id) }

// ResizeWidget resizes widget id from a context menu.
func (b *Board) ResizeWidget(id string, w, h int) error { return b.ctrl.ResizeWidget(id, w, h) }

// Compact reflows the layout in mode.
func (b *Board) Compact(mode layout.Mode) error { return b.ctrl.Compact(mode) }

func (b *Board) onLayoutChange(widgets []dashboard.Widget, source interaction.Source) error {
	b.commit(widgets, source, true)
	return nil
}

// commit applies widgets as the new layout, then persists (unless the change
// came from the store) and notifies subscribers.
func (b *Board) commit(widgets []dashboard.Widget, source interaction.Source, persist bool) {
	if widgets == nil {
		widgets = []dashboard.Widget{}
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.widgets = dashboard.Clone(widgets)
	if persist {
		b.dirty = true
	}
	b.seq++
	u := Update{
		Seq:     b.seq,
		ID:      uuid.NewString(),
		Source:  source,
		Widgets: dashboard.Clone(widgets),
		Preset:  b.current,
		At:      b.opts.Clock.Now(),
	}
	b.history = append(b.history, u)
	if over := len(b.history) - b.opts.History; over > 0 {
		b.history = append([]Update(nil), b.history[over:]...)
	}
	b.mu.Unlock()

	if persist {
		b.persist()
	}
	b.publish(u)
	b.opts.Logger.Debug("board updated", "seq", u.Seq, "source", source, "widgets", len(widgets))
}

func (b *Board) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		out := u
		out.Widgets = dashboard.Clone(u.Widgets)
		select {
		case ch <- out:
		default:
			b.opts.Logger.Debug("subscriber lagging, update dropped", "seq", u.Seq)
		}
	}
}

// =============================================================================
// Presets
// =============================================================================

// LoadPreset replaces the layout with the preset in slot i.
func (b *Board) LoadPreset(i int) error {
	if err := errs.ValidateSlot(i); err != nil {
		return err
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	p := b.slots[i]
	if !p.Valid() {
		b.mu.Unlock()
		return errs.New(errs.ErrCodePresetNotFound, "preset slot %d is empty", i)
	}
	p = p.Clone()
	b.mu.Unlock()

	b.loadMu.Lock()
	defer b.loadMu.Unlock()
	b.sched.SetCurrent(i)
	return b.applyPreset(i, p)
}

// onPresetLoad applies a scheduled rotation. The scheduler advances its
// current slot before calling, so a load whose slot is no longer current
// was overtaken by a later one and is skipped.
func (b *Board) onPresetLoad(i int, p *dashboard.Preset) error {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()
	if cur := b.sched.Current(); cur != i {
		b.opts.Logger.Debug("superseded preset load skipped", "slot", i, "current", cur)
		return nil
	}
	return b.applyPreset(i, p)
}

func (b *Board) applyPreset(i int, p *dashboard.Preset) error {
	widgets := dashboard.Annotate(b.opts.Registry, p.Layout)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.current = i
	b.mu.Unlock()

	b.ctrl.Replace(widgets, func(ws []dashboard.Widget) {
		b.commit(ws, SourcePresetLoad, true)
	})
	b.opts.Logger.Info("preset loaded", "slot", i, "name", p.Name)
	return nil
}

// SetPreset stores p in slot i. A nil preset clears the slot.
func (b *Board) SetPreset(i int, p *dashboard.Preset) error {
	if err := errs.ValidateSlot(i); err != nil {
		return err
	}
	now := b.opts.Clock.Now().UTC()
	if p != nil {
		p = p.Clone()
		if p.Type == "" {
			p.Type = "custom"
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.slots[i] = p
	b.dirty = true
	snap := b.slots.Clone()
	b.mu.Unlock()

	b.sched.SetPresets(snap)
	b.persist()
	return nil
}

// SavePreset stores the current layout in slot i under name, keeping the
// creation time of a preset already in the slot.
func (b *Board) SavePreset(i int, name string) error {
	if err := errs.ValidateSlot(i); err != nil {
		return err
	}
	p := &dashboard.Preset{Type: "custom", Name: name, Layout: b.ctrl.Widgets()}
	if !p.Valid() {
		return errs.New(errs.ErrCodeInvalidLayout, "cannot save a layout without enabled widgets")
	}
	b.mu.Lock()
	if old := b.slots[i]; old != nil {
		p.CreatedAt = old.CreatedAt
	}
	b.mu.Unlock()
	return b.SetPreset(i, p)
}

// =============================================================================
// Auto-cycle
// =============================================================================

// ConfigureAutoCycle replaces the rotation settings.
func (b *Board) ConfigureAutoCycle(cfg autocycle.Config) error { return b.sched.Configure(cfg) }

// NotifyInput reports host input to the scheduler.
func (b *Board) NotifyInput(kind autocycle.InputKind) bool { return b.sched.NotifyInput(kind) }

// SetModalOpen reports whether a modal is open in the host.
func (b *Board) SetModalOpen(open bool) { b.sched.SetModalOpen(open) }

// =============================================================================
// Persistence
// =============================================================================

func (b *Board) persist() {
	if b.opts.Prefs == nil {
		return
	}
	if b.opts.Lock.Held() {
		b.opts.Logger.Debug("persist deferred while interacting")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := b.Flush(ctx); err != nil {
		b.opts.Logger.Warn("persist board failed", "err", err)
	}
}

// Flush writes unsaved layout and preset changes. It does nothing while the
// interaction lock is held or when nothing changed.
func (b *Board) Flush(ctx context.Context) error {
	if b.opts.Prefs == nil || b.opts.Lock.Held() {
		return nil
	}
	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return nil
	}
	b.dirty = false
	widgets := dashboard.Clone(b.widgets)
	slots := b.slots.Clone()
	b.mu.Unlock()

	update := map[string]any{}
	prefs.SetPath(update, LayoutKey, widgets)
	prefs.SetPath(update, PresetsKey, slots)
	if _, err := b.opts.Prefs.Patch(ctx, b.opts.User, b.opts.Session, update, nil); err != nil {
		b.mu.Lock()
		b.dirty = true
		b.mu.Unlock()
		return err
	}
	return nil
}

// Restore loads the persisted layout and presets, if any. It reports whether
// anything was found.
func (b *Board) Restore(ctx context.Context) (bool, error) {
	if b.opts.Prefs == nil {
		return false, nil
	}
	doc, err := b.opts.Prefs.Get(ctx, b.opts.User)
	if err != nil {
		return false, err
	}
	return b.applyPrefs(doc.Preferences)
}

// Watch applies dashboard changes written by other sessions until ctx is
// done or the preferences hub closes. Changes that arrive during a gesture
// are skipped; the gesture's own result supersedes them.
func (b *Board) Watch(ctx context.Context) error {
	if b.opts.Prefs == nil {
		<-ctx.Done()
		return nil
	}
	ch, cancel := b.opts.Prefs.Hub().Subscribe(b.opts.User, b.opts.Session)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-ch:
			if !ok {
				return nil
			}
			if b.opts.Lock.Held() {
				b.opts.Logger.Debug("remote change skipped while interacting", "version", c.Version)
				continue
			}
			if _, err := b.applyPrefs(c.Preferences); err != nil {
				b.opts.Logger.Warn("apply remote change failed", "version", c.Version, "err", err)
			}
		}
	}
}

func (b *Board) applyPrefs(p map[string]any) (bool, error) {
	found := false
	if v, ok := prefs.GetPath(p, PresetsKey); ok {
		var slots dashboard.Slots
		if err := decode(v, &slots); err != nil {
			return false, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", PresetsKey)
		}
		b.mu.Lock()
		b.slots = slots
		b.mu.Unlock()
		b.sched.SetPresets(slots)
		found = true
	}
	if v, ok := prefs.GetPath(p, LayoutKey); ok {
		var widgets []dashboard.Widget
		if err := decode(v, &widgets); err != nil {
			return found, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", LayoutKey)
		}
		widgets = dashboard.Annotate(b.opts.Registry, widgets)
		if !layoutEqual(widgets, b.Widgets()) {
			b.ctrl.Replace(widgets, func(ws []dashboard.Widget) {
				b.commit(ws, SourceRemote, false)
			})
		}
		found = true
	}
	return found, nil
}

func layoutEqual(a, c []dashboard.Widget) bool {
	if len(a) != len(c) {
		return false
	}
	for i := range a {
		if a[i] != c[i] {
			return false
		}
	}
	return true
}

// decode converts a JSON value tree into v.
func decode(src, v any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Close stops the controller and scheduler, writes unsaved changes and
// closes every subscription.
func (b *Board) Close() error {
	b.ctrl.Close()
	b.sched.Close()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	err := b.Flush(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
	return err
}
