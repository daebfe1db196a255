package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	errs "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// layoutIssues lists the problems found in one widget list.
type layoutIssues struct {
	InvalidIDs  []string
	Duplicates  []string
	Overlaps    [][2]string
	OutOfBounds []string
	Undersized  []string
}

func (li layoutIssues) count() int {
	return len(li.InvalidIDs) + len(li.Duplicates) + len(li.Overlaps) + len(li.OutOfBounds) + len(li.Undersized)
}

// checkLayout inspects the enabled widgets of a layout against the grid.
func checkLayout(widgets []dashboard.Widget, cols, minW, minH int) layoutIssues {
	var li layoutIssues
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		if err := errs.ValidateWidgetID(w.ID); err != nil {
			li.InvalidIDs = append(li.InvalidIDs, w.ID)
		}
		if seen[w.ID] {
			li.Duplicates = append(li.Duplicates, w.ID)
		}
		seen[w.ID] = true
		if w.Enabled && (w.W < minW || w.H < minH) {
			li.Undersized = append(li.Undersized, w.ID)
		}
	}
	rects := dashboard.Rects(dashboard.Enabled(widgets))
	li.Overlaps = layout.Overlapping(rects)
	li.OutOfBounds = layout.OutOfBounds(rects, cols)
	return li
}

// validateCommand creates the validate command for checking layout files.
func (c *CLI) validateCommand() *cobra.Command {
	var cols int

	cmd := &cobra.Command{
		Use:   "validate [layout-file]",
		Short: "Check a layout file for overlaps and out-of-bounds widgets",
		Long: `Check the layout and every preset in a layout file.

Reports invalid or duplicate widget IDs, overlapping enabled widgets,
widgets that extend past the column count and widgets smaller than the
configured minimum size. Exits non-zero when any problem is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], cols)
		},
	}

	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns (default: file, then config)")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input string, colsFlag int) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f, err := config.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if _, err := f.Slots(); err != nil {
		return err
	}
	cols := pickCols(colsFlag, f.Cols, cfg.Grid.Cols)
	loggerFromContext(ctx).Debug("validating", "file", input, "cols", cols, "presets", len(f.Presets))

	total := reportIssues("layout", checkLayout(f.Widgets, cols, cfg.Grid.MinW, cfg.Grid.MinH))
	for _, p := range f.Presets {
		name := fmt.Sprintf("preset %d", p.Slot)
		if p.Name != "" {
			name += fmt.Sprintf(" (%s)", p.Name)
		}
		total += reportIssues(name, checkLayout(p.Layout, cols, cfg.Grid.MinW, cfg.Grid.MinH))
	}

	if total > 0 {
		return errs.New(errs.ErrCodeInvalidLayout, "%s: %d problem(s) found", input, total)
	}
	printSuccess("%s is valid", input)
	fmt.Println("  " + layoutStats(f.Widgets, cols))
	return nil
}

func reportIssues(name string, li layoutIssues) int {
	n := li.count()
	if n == 0 {
		return 0
	}
	printWarning("%s: %d problem(s)", name, n)
	for _, id := range li.InvalidIDs {
		printDetail("invalid widget id %q", id)
	}
	for _, id := range li.Duplicates {
		printDetail("duplicate widget id %q", id)
	}
	for _, p := range li.Overlaps {
		printDetail("%s overlaps %s", p[0], p[1])
	}
	for _, id := range li.OutOfBounds {
		printDetail("%s is outside the grid", id)
	}
	for _, id := range li.Undersized {
		printDetail("%s is below the minimum size", id)
	}
	return n
}
