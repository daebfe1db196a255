package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/autocycle"
	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// cycleStepTimeout bounds the wait for one simulated tick.
const cycleStepTimeout = 2 * time.Second

// cycleStep is one simulated interval tick.
type cycleStep struct {
	At      time.Duration
	Outcome observability.TickOutcome
	Slot    int
}

// cycleRecorder turns scheduler hooks into one event per tick. Loaded ticks
// are reported from OnLoad, after the load callback has run.
type cycleRecorder struct {
	observability.NoopAutoCycleHooks
	steps chan cycleStep
}

func (r *cycleRecorder) OnTick(_ context.Context, o observability.TickOutcome) {
	if o != observability.TickLoaded {
		r.steps <- cycleStep{Outcome: o, Slot: -1}
	}
}

func (r *cycleRecorder) OnLoad(_ context.Context, _, to int, _ error) {
	r.steps <- cycleStep{Outcome: observability.TickLoaded, Slot: to}
}

// simulateCycle runs a scheduler on a fake clock for the given number of
// interval ticks and returns what each tick did.
func simulateCycle(ctx context.Context, slots dashboard.Slots, cfg autocycle.Config, start, ticks int) ([]cycleStep, error) {
	cfg.Enabled = true
	cfg.SetDefaults()
	if len(slots.ValidIndices(cfg.SelectedIndices)) == 0 {
		return nil, errors.New("no valid presets in the rotation")
	}

	clock := clockwork.NewFakeClock()
	rec := &cycleRecorder{steps: make(chan cycleStep, 1)}
	sched := autocycle.New(autocycle.Options{
		Clock:  clock,
		Logger: loggerFromContext(ctx),
		Hooks:  rec,
		OnLoad: func(int, *dashboard.Preset) error { return nil },
	})
	defer sched.Close()

	sched.SetPresets(slots)
	sched.SetCurrent(start)
	if err := sched.Configure(cfg); err != nil {
		return nil, err
	}

	steps := make([]cycleStep, 0, ticks)
	for i := 1; i <= ticks; i++ {
		clock.Advance(cfg.Interval)
		select {
		case step := <-rec.steps:
			step.At = time.Duration(i) * cfg.Interval
			steps = append(steps, step)
		case <-time.After(cycleStepTimeout):
			return steps, fmt.Errorf("tick %d did not fire", i)
		case <-ctx.Done():
			return steps, ctx.Err()
		}
	}
	return steps, nil
}

// cycleCommand creates the cycle command for simulating preset rotation.
func (c *CLI) cycleCommand() *cobra.Command {
	var (
		ticks    int
		start    int
		selected []int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "cycle [layout-file]",
		Short: "Simulate auto-cycle rotation over the presets of a layout file",
		Long: `Simulate auto-cycle rotation over the presets of a layout file.

The rotation is the selected slots that hold a preset with at least one
enabled widget. Each tick advances to the next slot in rotation order and
wraps at the end. No real time passes; ticks are driven by a fake clock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ac := cfg.AutoCycleConfig()
			if cmd.Flags().Changed("select") {
				ac.SelectedIndices = selected
				if ac.SelectedIndices == nil {
					ac.SelectedIndices = []int{}
				}
			}
			if interval > 0 {
				ac.Interval = interval
			}
			return c.runCycle(cmd.Context(), args[0], ac, start, ticks)
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 10, "number of interval ticks to simulate")
	cmd.Flags().IntVar(&start, "start", -1, "slot loaded before the first tick (-1 for none)")
	cmd.Flags().IntSliceVar(&selected, "select", nil, "slots in rotation order (default: config, then all)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "rotation interval (default: config)")

	return cmd
}

func (c *CLI) runCycle(ctx context.Context, input string, cfg autocycle.Config, start, ticks int) error {
	f, err := config.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	slots, err := f.Slots()
	if err != nil {
		return err
	}

	steps, err := simulateCycle(ctx, slots, cfg, start, ticks)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render("Rotation") + " " + StyleDim.Render(fmt.Sprint(slots.ValidIndices(cfg.SelectedIndices))))
	for _, s := range steps {
		at := StyleDim.Render(fmt.Sprintf("%8s", s.At))
		if s.Outcome != observability.TickLoaded {
			fmt.Printf("%s  %s\n", at, StyleDim.Render(string(s.Outcome)))
			continue
		}
		fmt.Printf("%s  %s %s\n", at, StyleHighlight.Render(fmt.Sprintf("slot %d", s.Slot)), StyleValue.Render(slots[s.Slot].Name))
	}
	return nil
}
