// Package layout places rectangles on a grid with a fixed number of columns
// and an unbounded number of rows.
//
// # Compaction
//
// [Compact] removes gaps from a layout while keeping every rectangle's size.
// Two modes are available:
//
//   - [ModeList] sorts rectangles by row, then column, then ID, and places
//     each one at the first free anchor found scanning rows from the top and
//     columns from the left. Passes repeat until the layout no longer
//     changes, so compacting a compacted layout returns it unchanged, and a
//     gap-free layout already in reading order maps to itself.
//   - [ModeDense] keeps each rectangle in its column and lets it float up
//     until it touches another. It is offered for engines that want density
//     without horizontal movement; its exact output is not guaranteed to
//     match any particular grid library.
//
// Placement always succeeds: rows past the occupied area are empty, so the
// scan terminates for any rectangle no wider than the grid. Wider
// rectangles are clamped to the column count first.
//
// # Collisions
//
// [ResolveCollisions] settles a layout around one pinned rectangle, which is
// how a resize from a context menu is committed without overlap.
// [Overlapping] and [OutOfBounds] report problems without fixing them.
package layout
