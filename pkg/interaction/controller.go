// Package interaction turns the raw layout events of a grid rendering engine
// into one deduplicated, debounced stream of committed layouts, each tagged
// with the action that caused it.
//
// # Sources
//
// Drag and resize gestures settle through a debounce window and are emitted
// as [SourceLocalInteraction]. Discrete actions bypass the window and emit
// before returning: deletion as [SourceWidgetRemove], compaction as
// [SourceCompact] and a context-menu resize as [SourceLocalInteraction].
// A discrete action cancels any emission still waiting in the window.
//
// # Deduplication
//
// Every candidate layout is reduced to a canonical fingerprint and compared
// with the last layout the controller committed. Identical candidates are
// dropped; if one arrives while a different layout is pending, the pending
// emission is cancelled because the engine has returned to the committed
// state.
//
// # Gestures
//
// While a gesture is in progress the controller raises an advisory [Lock]
// so other subsystems can hold back conflicting writes. The lock never
// blocks anything inside this package.
//
// # Failure
//
// All controller state is updated before the layout callback runs, so a
// failing callback leaves the next comparison correct. Callback errors from
// debounced emissions are logged; synchronous actions return them.
//
// # Ordering
//
// The callback is invoked for one layout at a time, in commit order. A
// layout superseded by a later commit before its turn comes is dropped
// rather than delivered late. The callback must not call the controller's
// mutating methods; the read accessors are safe.
package interaction

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/gridboard/pkg/adapter"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

const (
	// DefaultDebounce is the quiet period before a settled gesture is emitted.
	DefaultDebounce = 150 * time.Millisecond

	// DefaultCols is the grid column count used when none is configured.
	DefaultCols = 12
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errs.New(errs.ErrCodeClosed, "interaction controller is closed")

// Options configures a Controller.
type Options struct {
	Adapter  adapter.Adapter
	Cols     int
	Debounce time.Duration

	// CompactOnRemove compacts the remaining widgets in CompactMode before a
	// deletion is emitted.
	CompactOnRemove bool
	CompactMode     layout.Mode

	Clock  clockwork.Clock
	Lock   *Lock
	Logger *log.Logger
	Hooks  observability.LayoutHooks

	OnLayoutChange LayoutChangeFunc
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Cols <= 0 {
		o.Cols = DefaultCols
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.CompactMode == "" {
		o.CompactMode = layout.ModeList
	}
	o.Adapter = adapter.New(o.Adapter.MinW, o.Adapter.MinH)
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Lock == nil {
		o.Lock = DefaultLock
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Hooks == nil {
		o.Hooks = observability.Layout()
	}
}

// Controller synchronizes layout changes for one dashboard surface. It is
// safe for concurrent use.
type Controller struct {
	opts Options

	// emitMu is held while a layout is handed to OnLayoutChange.
	emitMu sync.Mutex

	mu      sync.Mutex
	seq     uint64 // bumped on every commit
	widgets []dashboard.Widget
	last    string // fingerprint of the last committed layout
	state   State
	gesture string
	timer   clockwork.Timer
	pending []adapter.EngineItem
	gen     uint64
	closed  bool
}

// New creates a Controller. Zero option fields take their defaults.
func New(opts Options) *Controller {
	opts.SetDefaults()
	return &Controller{opts: opts, last: fingerprint(nil)}
}

// SetWidgets replaces the current layout with one owned by the caller, for
// example after a preset load. Any pending emission is discarded since it was
// computed against the previous layout.
func (c *Controller) SetWidgets(widgets []dashboard.Widget) {
	c.Replace(widgets, nil)
}

// Replace is SetWidgets followed by then, with no emission delivered in
// between: an in-flight emission finishes first and one superseded by this
// layout is dropped. then receives a private copy of the new layout and is
// bound by the same rule as OnLayoutChange.
func (c *Controller) Replace(widgets []dashboard.Widget, then func([]dashboard.Widget)) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.cancelLocked()
	c.commitLocked(dashboard.Clone(widgets))
	c.mu.Unlock()

	if then != nil {
		then(dashboard.Clone(widgets))
	}
}

// Widgets returns a copy of the current layout.
func (c *Controller) Widgets() []dashboard.Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dashboard.Clone(c.widgets)
}

// EngineLayout returns the current layout as engine items.
func (c *Controller) EngineLayout() []adapter.EngineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Adapter.ToEngineLayout(c.widgets)
}

// State returns the gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Gesture returns the ID of the widget being dragged or resized, or "".
func (c *Controller) Gesture() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture
}

// Pending reports whether a debounced emission is waiting.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// =============================================================================
// Gestures
// =============================================================================

// DragStart marks the beginning of a drag on widget id.
func (c *Controller) DragStart(id string) error {
	return c.begin(id, GestureMove)
}

// ResizeStart marks the beginning of a resize on widget id.
func (c *Controller) ResizeStart(id string) error {
	return c.begin(id, GestureResize)
}

// DragStop ends a drag. items is the engine layout after the drop and item
// the dragged widget's final placement.
func (c *Controller) DragStop(items []adapter.EngineItem, item adapter.EngineItem) error {
	return c.end(items, item, GestureMove)
}

// ResizeStop ends a resize. items is the engine layout after the resize and
// item the resized widget's final placement.
func (c *Controller) ResizeStop(items []adapter.EngineItem, item adapter.EngineItem) error {
	return c.end(items, item, GestureResize)
}

func (c *Controller) begin(id string, kind GestureKind) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = Interacting
	c.gesture = id
	c.opts.Lock.Acquire()
	c.mu.Unlock()

	c.opts.Logger.Debug("gesture started", "widget", id, "kind", kind)
	return nil
}

func (c *Controller) end(items []adapter.EngineItem, item adapter.EngineItem, kind GestureKind) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == Interacting {
		c.opts.Lock.Release()
	}
	c.state = Idle
	c.gesture = ""
	scheduled := c.scheduleLocked(items)
	c.mu.Unlock()

	ev := observability.GestureEvent{WidgetID: item.I, Kind: string(kind)}
	if kind == GestureResize {
		ev.W, ev.H = item.W, item.H
	}
	c.opts.Hooks.OnGesture(context.Background(), ev)
	c.opts.Logger.Debug("gesture finished", "widget", item.I, "kind", kind, "scheduled", scheduled)
	return nil
}

// LayoutChanged receives a layout notification from the engine. Duplicates
// of the committed layout are dropped; anything else restarts the debounce
// window with items as the payload.
func (c *Controller) LayoutChanged(items []adapter.EngineItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.scheduleLocked(items)
	return nil
}

func (c *Controller) scheduleLocked(items []adapter.EngineItem) bool {
	if fingerprint(items) == c.last {
		c.cancelLocked()
		return false
	}
	c.cancelLocked()
	c.pending = append([]adapter.EngineItem(nil), items...)
	gen := c.gen
	c.timer = c.opts.Clock.AfterFunc(c.opts.Debounce, func() { c.fire(gen) })
	return true
}

// cancelLocked stops the pending timer. Bumping the generation also fences a
// timer that fired but has not yet taken the mutex.
func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.gen++
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	items := c.pending
	c.timer = nil
	c.pending = nil
	placed := c.opts.Adapter.FromEngineLayout(items, c.widgets)
	next := adapter.MergeDisabled(placed, c.widgets)
	c.widgets = next
	c.last = fingerprint(items)
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	_ = c.emit(next, SourceLocalInteraction, seq)
}

// =============================================================================
// Discrete actions
// =============================================================================

// RemoveWidget deletes widget id and emits the result at once. Unknown IDs
// are ignored.
func (c *Controller) RemoveWidget(id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	next, ok := dashboard.Remove(c.widgets, id)
	if !ok {
		c.mu.Unlock()
		c.opts.Logger.Debug("remove ignored: unknown widget", "widget", id)
		return nil
	}
	if c.opts.CompactOnRemove {
		next = dashboard.Place(next, layout.Compact(dashboard.Rects(next), c.opts.Cols, c.opts.CompactMode))
	}
	c.cancelLocked()
	seq := c.commitLocked(next)
	c.mu.Unlock()

	return c.emit(next, SourceWidgetRemove, seq)
}

// ResizeWidget sets the size of widget id, pushes overlapped widgets down
// and emits the result at once. The size is clamped to the minimums and the
// column count. Unknown and disabled widgets are ignored.
func (c *Controller) ResizeWidget(id string, w, h int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	i := dashboard.Find(c.widgets, id)
	if i < 0 || !c.widgets[i].Enabled {
		c.mu.Unlock()
		c.opts.Logger.Debug("resize ignored: unknown or disabled widget", "widget", id)
		return nil
	}
	w = min(max(w, c.opts.Adapter.MinW), c.opts.Cols)
	h = max(h, c.opts.Adapter.MinH)

	next := dashboard.Clone(c.widgets)
	next[i].W, next[i].H = w, h
	next = dashboard.Place(next, layout.ResolveCollisions(dashboard.Rects(next), id, c.opts.Cols))
	c.cancelLocked()
	seq := c.commitLocked(next)
	c.mu.Unlock()

	c.opts.Hooks.OnGesture(context.Background(), observability.GestureEvent{
		WidgetID: id, Kind: string(GestureResize), W: w, H: h,
	})
	return c.emit(next, SourceLocalInteraction, seq)
}

// Compact reflows the enabled widgets in the given mode and emits the result
// at once.
func (c *Controller) Compact(mode layout.Mode) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	start := c.opts.Clock.Now()
	rects := dashboard.Rects(c.widgets)
	next := dashboard.Place(c.widgets, layout.Compact(rects, c.opts.Cols, mode))
	c.cancelLocked()
	seq := c.commitLocked(next)
	c.mu.Unlock()

	c.opts.Hooks.OnCompact(context.Background(), string(mode), len(rects), c.opts.Clock.Since(start))
	return c.emit(next, SourceCompact, seq)
}

// Close cancels the pending emission and releases the interaction lock if a
// gesture holds it. Later operations return ErrClosed. Close is idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancelLocked()
	if c.state == Interacting {
		c.opts.Lock.Release()
		c.state = Idle
		c.gesture = ""
	}
	return nil
}

func (c *Controller) commitLocked(widgets []dashboard.Widget) uint64 {
	c.widgets = widgets
	c.last = fingerprint(c.opts.Adapter.ToEngineLayout(widgets))
	c.seq++
	return c.seq
}

// emit delivers the layout committed as seq unless a later commit has
// replaced it.
func (c *Controller) emit(widgets []dashboard.Widget, source Source, seq uint64) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	latest := c.seq
	c.mu.Unlock()
	if seq != latest {
		c.opts.Logger.Debug("superseded layout dropped", "source", source, "seq", seq, "latest", latest)
		return nil
	}

	ctx := context.Background()
	var err error
	if c.opts.OnLayoutChange != nil {
		err = c.opts.OnLayoutChange(dashboard.Clone(widgets), source)
	}
	c.opts.Hooks.OnEmit(ctx, string(source), len(widgets))
	if err != nil {
		c.opts.Hooks.OnCallbackError(ctx, string(source), err)
		c.opts.Logger.Warn("layout change callback failed", "source", source, "err", err)
		return err
	}
	c.opts.Logger.Debug("layout emitted", "source", source, "widgets", len(widgets))
	return nil
}

// fingerprint serializes the placement of items independent of their order.
func fingerprint(items []adapter.EngineItem) string {
	rects := layout.SortReading(adapter.Rects(items))
	b, _ := json.Marshal(rects)
	return string(b)
}
