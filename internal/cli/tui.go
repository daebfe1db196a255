package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/adapter"
	"github.com/matzehuels/gridboard/pkg/board"
	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/interaction"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Editor styles
var (
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	editorFrameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

const editorHelp = "tab select · ←↑↓→ move · shift+arrows resize · c/C compact · d delete · 1-9 preset · w write · q quit"

// =============================================================================
// Messages
// =============================================================================

// updateMsg carries a committed board update into the event loop.
type updateMsg board.Update

// waitForUpdate blocks on the board's update stream.
func waitForUpdate(ch <-chan board.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

// =============================================================================
// GridModel - Interactive layout editor
// =============================================================================

// GridModel is the bubbletea model for the layout editor. Keyboard moves and
// resizes run through the same gesture lifecycle a pointer would, so edits
// reach the board after the debounce window.
type GridModel struct {
	Board    *board.Board
	Path     string
	Selected string
	Last     *board.Update
	Status   string
	Err      error

	updates <-chan board.Update
	minW    int
	minH    int
}

// NewGridModel creates an editor for b. Path is where 'w' writes the layout.
func NewGridModel(b *board.Board, path string, minW, minH int) GridModel {
	updates, _ := b.Subscribe()
	m := GridModel{
		Board:   b,
		Path:    path,
		updates: updates,
		minW:    max(minW, 1),
		minH:    max(minH, 1),
	}
	if enabled := dashboard.Enabled(b.Widgets()); len(enabled) > 0 {
		m.Selected = enabled[0].ID
	}
	return m
}

func (m GridModel) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		u := board.Update(msg)
		m.Last = &u
		if dashboard.Find(dashboard.Enabled(u.Widgets), m.Selected) < 0 {
			m.Selected = ""
			if enabled := dashboard.Enabled(u.Widgets); len(enabled) > 0 {
				m.Selected = enabled[0].ID
			}
		}
		return m, waitForUpdate(m.updates)
	case tea.KeyMsg:
		m.Err = nil
		m.Status = ""
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.cycleSelection(1)
		case "shift+tab":
			m.cycleSelection(-1)
		case "left", "h":
			m.Err = m.nudge(-1, 0, 0, 0)
		case "right", "l":
			m.Err = m.nudge(1, 0, 0, 0)
		case "up", "k":
			m.Err = m.nudge(0, -1, 0, 0)
		case "down", "j":
			m.Err = m.nudge(0, 1, 0, 0)
		case "shift+left", "H":
			m.Err = m.nudge(0, 0, -1, 0)
		case "shift+right", "L":
			m.Err = m.nudge(0, 0, 1, 0)
		case "shift+up", "K":
			m.Err = m.nudge(0, 0, 0, -1)
		case "shift+down", "J":
			m.Err = m.nudge(0, 0, 0, 1)
		case "c":
			m.Err = m.Board.Compact(layout.ModeList)
		case "C":
			m.Err = m.Board.Compact(layout.ModeDense)
		case "d", "delete":
			if m.Selected != "" {
				m.Err = m.Board.RemoveWidget(m.Selected)
			}
		case "w":
			m.Err = m.write()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.Err = m.Board.LoadPreset(int(key[0] - '1'))
		}
	}
	return m, nil
}

// cycleSelection moves the selection through the enabled widgets in reading
// order.
func (m *GridModel) cycleSelection(step int) {
	rects := layout.SortReading(dashboard.Rects(dashboard.Enabled(m.Board.Widgets())))
	if len(rects) == 0 {
		m.Selected = ""
		return
	}
	pos := 0
	for i, r := range rects {
		if r.ID == m.Selected {
			pos = (i + step + len(rects)) % len(rects)
			break
		}
	}
	m.Selected = rects[pos].ID
}

// nudge plays a one-step drag (dw == dh == 0) or resize of the selected
// widget: start the gesture, resolve collisions the way the engine would,
// then stop the gesture with the resulting layout.
func (m *GridModel) nudge(dx, dy, dw, dh int) error {
	if m.Selected == "" {
		return nil
	}
	items := m.Board.EngineLayout()
	i := -1
	for j, it := range items {
		if it.I == m.Selected {
			i = j
			break
		}
	}
	if i < 0 {
		return nil
	}

	cols := m.Board.Cols()
	resize := dw != 0 || dh != 0
	start, stop := m.Board.DragStart, m.Board.DragStop
	if resize {
		start, stop = m.Board.ResizeStart, m.Board.ResizeStop
	}
	if err := start(m.Selected); err != nil {
		return err
	}

	it := items[i]
	it.W = min(max(it.W+dw, m.minW), cols)
	it.H = max(it.H+dh, m.minH)
	it.X = min(max(it.X+dx, 0), cols-it.W)
	it.Y = max(it.Y+dy, 0)
	items[i] = it
	items = adapter.Apply(items, layout.ResolveCollisions(adapter.Rects(items), it.I, cols))

	return stop(items, items[i])
}

func (m *GridModel) write() error {
	if m.Path == "" {
		return errors.New("no output file")
	}
	f := &config.LayoutFile{Cols: m.Board.Cols(), Widgets: m.Board.Widgets()}
	f.SetSlots(m.Board.Presets())
	if err := config.WriteLayoutFile(m.Path, f); err != nil {
		return err
	}
	m.Status = "wrote " + m.Path
	return nil
}

func (m GridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Gridboard"))
	if m.Path != "" {
		b.WriteString(" " + StyleDim.Render(m.Path))
	}
	b.WriteString("\n\n")

	var grid strings.Builder
	widgets := m.Board.Widgets()
	renderGrid(&grid, widgets, m.Board.Cols(), m.Selected)
	b.WriteString(editorFrameStyle.Render(strings.TrimRight(grid.String(), "\n")))
	b.WriteString("\n")
	b.WriteString(layoutStats(widgets, m.Board.Cols()))
	b.WriteString("\n\n")

	b.WriteString(editorStatusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(editorErrorStyle.Render(iconError+" "+m.Err.Error()) + "\n")
	} else if m.Status != "" {
		b.WriteString(StyleSuccess.Render(iconSuccess+" "+m.Status) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(editorHelpStyle.Render(editorHelp))
	b.WriteString("\n")
	return b.String()
}

func (m GridModel) statusLine() string {
	parts := []string{}
	if i := dashboard.Find(m.Board.Widgets(), m.Selected); i >= 0 {
		w := m.Board.Widgets()[i]
		parts = append(parts, fmt.Sprintf("%s %d,%d %d×%d", w.ID, w.X, w.Y, w.W, w.H))
	}
	ctrl := m.Board.Controller()
	if ctrl.State() == interaction.Interacting {
		parts = append(parts, "interacting")
	} else if ctrl.Pending() {
		parts = append(parts, "pending")
	}
	if m.Last != nil {
		parts = append(parts, fmt.Sprintf("last #%d %s", m.Last.Seq, m.Last.Source))
	}
	if cur := m.Board.Current(); cur >= 0 {
		parts = append(parts, fmt.Sprintf("preset %d", cur+1))
	}
	return strings.Join(parts, " · ")
}

// =============================================================================
// Command
// =============================================================================

// tuiCommand creates the tui command for editing a layout interactively.
func (c *CLI) tuiCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tui [layout-file]",
		Short: "Edit a layout file interactively",
		Long: `Edit a layout file in the terminal.

Arrow keys move the selected widget and shift+arrows resize it. Each step is
a complete drag or resize gesture; the board commits the result after the
configured debounce window, exactly as it would for a pointer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			f, err := config.ReadLayoutFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			slots, err := f.Slots()
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}

			b, err := board.New(board.Options{
				Widgets:         f.Widgets,
				Presets:         slots,
				Registry:        cfg.Registry(),
				Cols:            pickCols(f.Cols, cfg.Grid.Cols),
				MinW:            cfg.Grid.MinW,
				MinH:            cfg.Grid.MinH,
				Debounce:        cfg.Sync.Debounce.Duration,
				CompactOnRemove: cfg.Sync.CompactOnRemove,
				CompactMode:     cfg.CompactMode(),
				Lock:            &interaction.Lock{},
			})
			if err != nil {
				return err
			}
			defer b.Close()

			m := NewGridModel(b, output, cfg.Grid.MinW, cfg.Grid.MinH)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file written by 'w' (default: the input file)")

	return cmd
}
