package interaction

import "github.com/matzehuels/gridboard/pkg/dashboard"

// Source tags the cause of an emitted layout.
type Source string

const (
	// SourceLocalInteraction marks a settled drag or resize, or a resize
	// requested from a context menu.
	SourceLocalInteraction Source = "local-interaction"

	// SourceWidgetRemove marks a widget deletion.
	SourceWidgetRemove Source = "widget-remove"

	// SourceCompact marks an explicit compaction request.
	SourceCompact Source = "compact"
)

// LayoutChangeFunc receives every layout the controller commits. The slice
// belongs to the callee.
type LayoutChangeFunc func(widgets []dashboard.Widget, source Source) error

// State is the gesture state of a controller.
type State int

const (
	// Idle means no gesture is in progress.
	Idle State = iota
	// Interacting means a drag or resize gesture is in progress.
	Interacting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Interacting:
		return "interacting"
	}
	return "unknown"
}

// GestureKind distinguishes the two pointer gestures.
type GestureKind string

const (
	GestureMove   GestureKind = "move"
	GestureResize GestureKind = "resize"
)
