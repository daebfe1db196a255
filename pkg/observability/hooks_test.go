package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Layout hooks
	l := NoopLayoutHooks{}
	l.OnEmit(ctx, "compact", 4)
	l.OnGesture(ctx, GestureEvent{WidgetID: "clock", Kind: "resize", W: 3, H: 2})
	l.OnCompact(ctx, "list", 4, time.Millisecond)
	l.OnCallbackError(ctx, "widget-remove", errors.New("boom"))

	// Auto-cycle hooks
	a := NoopAutoCycleHooks{}
	a.OnTick(ctx, TickLoaded)
	a.OnLoad(ctx, 1, 4, nil)
	a.OnPause(ctx, "keydown")
	a.OnResume(ctx)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnRead(ctx, "memory", time.Millisecond, nil)
	s.OnWrite(ctx, "redis", 7, time.Millisecond, nil)
	s.OnConflict(ctx, "mongo")
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := AutoCycle().(NoopAutoCycleHooks); !ok {
		t.Error("AutoCycle() should return NoopAutoCycleHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCycle := &testAutoCycleHooks{}
	SetAutoCycleHooks(customCycle)
	if AutoCycle() != customCycle {
		t.Error("SetAutoCycleHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
	if _, ok := AutoCycle().(NoopAutoCycleHooks); !ok {
		t.Error("Reset() should restore NoopAutoCycleHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)

	// Setting nil should be ignored
	SetLayoutHooks(nil)

	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testLayoutHooks struct{ NoopLayoutHooks }
type testAutoCycleHooks struct{ NoopAutoCycleHooks }
type testStoreHooks struct{ NoopStoreHooks }
