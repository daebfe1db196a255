// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout synchronization, preset auto-cycling and
// preference storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Components also accept hooks through their Options, falling back to the
// registry when none are given. Tests use that to observe timer-driven
// behaviour without touching global state.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&analyticsHooks{})
//	    // ... run application
//	}
//
// Components call hooks to emit events:
//
//	observability.Layout().OnGesture(ctx, observability.GestureEvent{WidgetID: "clock", Kind: "move"})
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// GestureEvent describes a completed drag or resize gesture. W and H are only
// set for resize gestures.
type GestureEvent struct {
	WidgetID string `json:"widget_id"`
	Kind     string `json:"kind"` // "move" or "resize"
	W        int    `json:"w,omitempty"`
	H        int    `json:"h,omitempty"`
}

// LayoutHooks receives events from the interaction sync controller.
type LayoutHooks interface {
	// OnEmit records a layout delivered upstream with its source tag.
	OnEmit(ctx context.Context, source string, widgetCount int)

	// OnGesture records a finished drag or resize gesture (analytics).
	OnGesture(ctx context.Context, ev GestureEvent)

	// OnCompact records a compaction run.
	OnCompact(ctx context.Context, mode string, itemCount int, duration time.Duration)

	// OnCallbackError records an upstream callback failure.
	OnCallbackError(ctx context.Context, source string, err error)
}

// =============================================================================
// Auto-cycle Hooks
// =============================================================================

// TickOutcome describes what a single auto-cycle interval tick did.
type TickOutcome string

// Tick outcomes.
const (
	TickPaused    TickOutcome = "paused"
	TickModalOpen TickOutcome = "modal-open"
	TickNoValid   TickOutcome = "no-valid"
	TickUnchanged TickOutcome = "unchanged"
	TickLoaded    TickOutcome = "loaded"
)

// AutoCycleHooks receives events from the preset auto-cycle scheduler.
type AutoCycleHooks interface {
	// OnTick records every processed interval tick and its outcome.
	OnTick(ctx context.Context, outcome TickOutcome)

	// OnLoad records a preset load requested by the scheduler.
	OnLoad(ctx context.Context, from, to int, err error)

	// OnPause records a pause (or pause extension) caused by user input.
	OnPause(ctx context.Context, inputKind string)

	// OnResume records the resume timer firing.
	OnResume(ctx context.Context)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from preference store operations.
type StoreHooks interface {
	// OnRead records a preferences read.
	OnRead(ctx context.Context, backend string, duration time.Duration, err error)

	// OnWrite records a preferences write and the resulting version.
	OnWrite(ctx context.Context, backend string, version int64, duration time.Duration, err error)

	// OnConflict records an optimistic-locking conflict.
	OnConflict(ctx context.Context, backend string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnEmit(context.Context, string, int)                   {}
func (NoopLayoutHooks) OnGesture(context.Context, GestureEvent)               {}
func (NoopLayoutHooks) OnCompact(context.Context, string, int, time.Duration) {}
func (NoopLayoutHooks) OnCallbackError(context.Context, string, error)        {}

// NoopAutoCycleHooks is a no-op implementation of AutoCycleHooks.
type NoopAutoCycleHooks struct{}

func (NoopAutoCycleHooks) OnTick(context.Context, TickOutcome)     {}
func (NoopAutoCycleHooks) OnLoad(context.Context, int, int, error) {}
func (NoopAutoCycleHooks) OnPause(context.Context, string)         {}
func (NoopAutoCycleHooks) OnResume(context.Context)                {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnRead(context.Context, string, time.Duration, error)         {}
func (NoopStoreHooks) OnWrite(context.Context, string, int64, time.Duration, error) {}
func (NoopStoreHooks) OnConflict(context.Context, string)                           {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	autoCycleHooks AutoCycleHooks = NoopAutoCycleHooks{}
	storeHooks     StoreHooks     = NoopStoreHooks{}
	hooksMu        sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any controller is built.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetAutoCycleHooks registers custom auto-cycle hooks.
// This should be called once at application startup before any scheduler is built.
func SetAutoCycleHooks(h AutoCycleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		autoCycleHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// AutoCycle returns the registered auto-cycle hooks.
func AutoCycle() AutoCycleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return autoCycleHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	autoCycleHooks = NoopAutoCycleHooks{}
	storeHooks = NoopStoreHooks{}
}
