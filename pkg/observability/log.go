package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing structured log
// records. Routine events go to Debug; failures and conflicts go to Warn.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

// Register installs h as the global layout, auto-cycle and store hooks.
func (h *LogHooks) Register() {
	SetLayoutHooks(h)
	SetAutoCycleHooks(h)
	SetStoreHooks(h)
}

func (h *LogHooks) OnEmit(_ context.Context, source string, widgetCount int) {
	h.Logger.Debug("layout emitted", "source", source, "widgets", widgetCount)
}

func (h *LogHooks) OnGesture(_ context.Context, ev GestureEvent) {
	if ev.Kind == "resize" {
		h.Logger.Info("widget resized", "widget", ev.WidgetID, "w", ev.W, "h", ev.H)
		return
	}
	h.Logger.Info("widget moved", "widget", ev.WidgetID)
}

func (h *LogHooks) OnCompact(_ context.Context, mode string, itemCount int, d time.Duration) {
	h.Logger.Debug("layout compacted", "mode", mode, "items", itemCount, "took", d)
}

func (h *LogHooks) OnCallbackError(_ context.Context, source string, err error) {
	h.Logger.Warn("layout callback failed", "source", source, "err", err)
}

func (h *LogHooks) OnTick(_ context.Context, outcome TickOutcome) {
	h.Logger.Debug("auto-cycle tick", "outcome", outcome)
}

func (h *LogHooks) OnLoad(_ context.Context, from, to int, err error) {
	if err != nil {
		h.Logger.Warn("auto-cycle load failed", "from", from, "to", to, "err", err)
		return
	}
	h.Logger.Info("auto-cycle loaded preset", "from", from, "to", to)
}

func (h *LogHooks) OnPause(_ context.Context, inputKind string) {
	h.Logger.Debug("auto-cycle paused", "input", inputKind)
}

func (h *LogHooks) OnResume(context.Context) {
	h.Logger.Debug("auto-cycle resumed")
}

func (h *LogHooks) OnRead(_ context.Context, backend string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("preferences read failed", "backend", backend, "err", err)
		return
	}
	h.Logger.Debug("preferences read", "backend", backend, "took", d)
}

func (h *LogHooks) OnWrite(_ context.Context, backend string, version int64, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("preferences write rejected", "backend", backend, "err", err)
		return
	}
	h.Logger.Debug("preferences written", "backend", backend, "version", version, "took", d)
}

func (h *LogHooks) OnConflict(_ context.Context, backend string) {
	h.Logger.Warn("preferences version conflict", "backend", backend)
}

var (
	_ LayoutHooks    = (*LogHooks)(nil)
	_ AutoCycleHooks = (*LogHooks)(nil)
	_ StoreHooks     = (*LogHooks)(nil)
)
