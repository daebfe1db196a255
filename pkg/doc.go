// Package pkg provides the libraries behind gridboard, a layout and
// synchronization engine for grid dashboards.
//
// # Overview
//
// A dashboard is a list of widgets placed on a grid with a fixed number of
// columns. Users drag and resize widgets, save arrangements into numbered
// preset slots, and optionally let the dashboard rotate through those presets
// on a timer. The packages are organized in three layers:
//
//  1. Geometry: [layout] (collisions and compaction) and [dashboard]
//     (widgets, presets, registry).
//  2. Synchronization: [adapter] (engine items), [interaction] (gesture
//     debounce and deduplication) and [autocycle] (preset rotation).
//  3. Surfaces: [board] (live state), [prefs] (versioned per-user
//     preferences) and [server] (HTTP and WebSocket).
//
// Cross-cutting packages are [config], [errors], [observability] and
// [buildinfo].
//
// # Data Flow
//
//	grid engine layout events
//	         ↓
//	    [adapter] package (engine items ↔ widgets)
//	         ↓
//	    [interaction] package (debounce, dedup, source tag)
//	         ↓
//	    [board] package (commit, compact, persist)
//	         ↓
//	    [prefs] store + [server] WebSocket subscribers
//
// # Quick Start
//
// Compact a set of widgets without the rest of the stack:
//
//	import "github.com/matzehuels/gridboard/pkg/layout"
//
//	rects := []layout.Rect{
//	    {ID: "clock", X: 4, Y: 3, W: 2, H: 2},
//	    {ID: "news", X: 0, Y: 6, W: 4, H: 3},
//	}
//	packed := layout.Compact(rects, 12, layout.ModeList)
//
// Run a board with a preference store and serve it:
//
//	store := prefs.NewMemoryStore()
//	svc := prefs.NewService(store, prefs.ServiceOptions{})
//	b, _ := board.New(board.Options{Widgets: widgets, Cols: 12, Prefs: svc})
//	srv := server.New(server.Options{Addr: ":8080", Board: b, Prefs: svc})
//	go b.Watch(ctx)
//	srv.ListenAndServe(ctx)
//
// # CLI
//
// The gridboard command wraps these packages:
//
//	gridboard compact layout.yaml --mode compact
//	gridboard validate layout.yaml
//	gridboard cycle layout.yaml --interval 30s --ticks 8
//	gridboard tui layout.yaml
//	gridboard serve --store redis
package pkg
