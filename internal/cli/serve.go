package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridboard/pkg/board"
	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/prefs"
	"github.com/matzehuels/gridboard/pkg/server"
)

type serveOpts struct {
	addr    string
	backend string
	layout  string
	user    string
}

// serveCommand creates the serve command that runs the dashboard server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP and WebSocket server",
		Long: `Run the dashboard HTTP and WebSocket server.

The board starts from the persisted state in the preference store when there
is one, then from --layout, then from the widgets registered in the config
file. Layout changes and presets are written back to the store; changes made
by other sessions are applied as they arrive.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: config)")
	cmd.Flags().StringVar(&opts.backend, "store", "", "preference store: "+strings.Join(config.Backends, ", ")+" (default: config)")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", "", "initial layout file")
	cmd.Flags().StringVar(&opts.user, "user", board.DefaultUser, "user whose preferences hold the board")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	widgets, slots, err := initialBoard(cfg, opts.layout)
	if err != nil {
		return err
	}

	observability.NewLogHooks(logger.WithPrefix("events")).Register()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Opening %s store...", cfg.Store.Backend))
	spinner.Start()
	prog := newProgress(logger)
	store, err := prefs.OpenWithRetry(ctx, cfg.Store)
	if err != nil {
		spinner.StopWithError("Store unavailable")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Opened %s store", store.Name()))

	svc := prefs.NewService(store, prefs.ServiceOptions{Logger: logger.WithPrefix("prefs")})
	defer svc.Close()

	b, err := board.New(board.Options{
		Widgets:         widgets,
		Presets:         slots,
		Registry:        cfg.Registry(),
		Cols:            cfg.Grid.Cols,
		MinW:            cfg.Grid.MinW,
		MinH:            cfg.Grid.MinH,
		Debounce:        cfg.Sync.Debounce.Duration,
		CompactOnRemove: cfg.Sync.CompactOnRemove,
		CompactMode:     cfg.CompactMode(),
		AutoCycle:       cfg.AutoCycleConfig(),
		Prefs:           svc,
		User:            opts.user,
		Logger:          logger.WithPrefix("board"),
	})
	if err != nil {
		return err
	}
	defer b.Close()

	restored, err := b.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore board: %w", err)
	}
	if restored {
		logger.Info("restored board", "user", opts.user, "widgets", len(b.Widgets()))
	}

	srv := server.New(server.Options{
		Addr:   cfg.Server.Addr,
		Board:  b,
		Prefs:  svc,
		Logger: logger.WithPrefix("http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error { return b.Watch(gctx) })

	printSuccess("Serving dashboard on %s", StyleHighlight.Render(cfg.Server.Addr))
	printDetail("store %s · user %s · %d widgets", store.Name(), opts.user, len(b.Widgets()))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// initialBoard returns the starting widgets and presets: the layout file if
// given, otherwise every registered widget packed in list mode.
func initialBoard(cfg config.Config, path string) ([]dashboard.Widget, dashboard.Slots, error) {
	if path != "" {
		f, err := config.ReadLayoutFile(path)
		if err != nil {
			return nil, dashboard.Slots{}, fmt.Errorf("load layout %s: %w", path, err)
		}
		slots, err := f.Slots()
		if err != nil {
			return nil, dashboard.Slots{}, err
		}
		return f.Widgets, slots, nil
	}

	reg := cfg.Registry()
	widgets := make([]dashboard.Widget, 0, len(cfg.Widgets))
	for _, w := range cfg.Widgets {
		if wdg, ok := dashboard.NewWidget(reg, w.ID, 0, 0); ok {
			widgets = append(widgets, wdg)
		}
	}
	return compactWidgets(widgets, cfg.Grid.Cols, layout.ModeList), dashboard.Slots{}, nil
}
