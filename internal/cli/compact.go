package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/layout"
)

const (
	printGrid   = "grid"
	printLayout = "layout"
)

type compactOpts struct {
	mode   string
	cols   int
	output string
	print  string
}

// compactCommand creates the compact command for reflowing layout files.
func (c *CLI) compactCommand() *cobra.Command {
	var opts compactOpts

	cmd := &cobra.Command{
		Use:   "compact [layout-file]",
		Short: "Reflow a layout file onto the grid",
		Long: `Reflow the enabled widgets of a layout file onto the grid.

List mode packs widgets first-fit in reading order and always produces the
same result for the same input. Compact mode lets each widget float upward in
its own column. Disabled widgets keep their stored positions.

Layout files may be JSON, TOML or YAML; the format follows the extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompact(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "compaction mode: list (default), compact")
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "grid columns (default: file, then config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to this file instead of stdout")
	cmd.Flags().StringVarP(&opts.print, "print", "p", printGrid, "stdout format: grid, layout")

	return cmd
}

func (c *CLI) runCompact(ctx context.Context, input string, opts compactOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f, err := config.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	mode := cfg.CompactMode()
	if opts.mode != "" {
		if mode, err = layout.ParseMode(opts.mode); err != nil {
			return err
		}
	}
	cols := pickCols(opts.cols, f.Cols, cfg.Grid.Cols)

	prog := newProgress(logger)
	f.Widgets = compactWidgets(f.Widgets, cols, mode)
	f.Cols = cols
	logger.Debug("compacted", "mode", mode, "cols", cols, "widgets", len(f.Widgets))
	prog.done(fmt.Sprintf("Compacted %d widgets", len(dashboard.Enabled(f.Widgets))))

	if opts.output != "" {
		if err := config.WriteLayoutFile(opts.output, f); err != nil {
			return fmt.Errorf("write output %s: %w", opts.output, err)
		}
		printSuccess("Layout compacted (%s)", mode)
		printFile(opts.output)
		fmt.Println("  " + layoutStats(f.Widgets, cols))
		return nil
	}

	switch opts.print {
	case printLayout:
		format, err := config.FormatFromPath(input)
		if err != nil {
			return err
		}
		return config.EncodeLayout(os.Stdout, format, f)
	case printGrid:
		renderGrid(os.Stdout, f.Widgets, cols, "")
		fmt.Println(layoutStats(f.Widgets, cols))
		return nil
	}
	return fmt.Errorf("unknown print format %q (want %s or %s)", opts.print, printGrid, printLayout)
}

// compactWidgets reflows the enabled widgets and merges the disabled ones
// back in their original order.
func compactWidgets(widgets []dashboard.Widget, cols int, mode layout.Mode) []dashboard.Widget {
	enabled := dashboard.Enabled(widgets)
	placed := dashboard.Place(enabled, layout.Compact(dashboard.Rects(enabled), cols, mode))
	byID := make(map[string]dashboard.Widget, len(placed))
	for _, w := range placed {
		byID[w.ID] = w
	}
	out := dashboard.Clone(widgets)
	for i, w := range out {
		if p, ok := byID[w.ID]; ok && w.Enabled {
			out[i] = p
		}
	}
	return out
}

// pickCols returns the first positive column count.
func pickCols(candidates ...int) int {
	for _, c := range candidates {
		if c > 0 {
			return c
		}
	}
	return config.DefaultCols
}
