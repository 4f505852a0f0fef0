package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaosfan/internal/palette"
	"github.com/san-kum/chaosfan/internal/physics"
	"github.com/san-kum/chaosfan/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 45
	historyCapacity = 600
	countStep       = 10
	maxCount        = 1000
)

type TickMsg time.Time

// pivot is the fan origin in simulation space. Screen placement happens at
// draw time.
var pivot = physics.Vec2{}

// Model is the live fan view. The pool is only touched from Update, so
// parameter changes land between ticks.
type Model struct {
	pool          *sim.Pool
	scheme        string
	theme         Theme
	st            styles
	canvas        *Canvas
	fps           int
	frame         int
	selected      int
	energyHistory []float64
	showHelp      bool
}

func NewModel(pool *sim.Pool, scheme string, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	return Model{
		pool:          pool,
		scheme:        scheme,
		theme:         ThemeDefault,
		st:            newStyles(ThemeDefault),
		canvas:        NewCanvas(width, height),
		fps:           fps,
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and ticks the pool.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.pool.Toggle()
		case "r":
			m.pool.Reset(m.pool.Defaults().AnglesDeg)
			m.energyHistory = m.energyHistory[:0]
		case "tab":
			m.selected = (m.selected + 1) % len(params)
		case "shift+tab":
			m.selected = (m.selected + len(params) - 1) % len(params)
		case "up", "k":
			m.pool.Apply(params[m.selected].nudge(m.pool.Defaults(), 1))
		case "down", "j":
			m.pool.Apply(params[m.selected].nudge(m.pool.Defaults(), -1))
		case "a":
			m.pool.Apply(sim.Options{ShowArms: sim.Bool(!m.pool.Defaults().ShowArms)})
		case "t":
			m.pool.Apply(sim.Options{ShowTrace: sim.Bool(!m.pool.Defaults().ShowTrace)})
		case "d":
			m.pool.Apply(sim.Options{Damping: sim.Bool(!m.pool.Defaults().Damping)})
		case "+", "=":
			m.pool.Resize(min(maxCount, m.pool.Len()+countStep))
		case "-", "_":
			m.pool.Resize(max(1, m.pool.Len()-countStep))
		case "c":
			m.scheme = palette.Next(m.scheme)
		case "T":
			m.theme = NextTheme(m.theme.Name)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-panelWidth-8)
		h := max(8, msg.Height-3)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.pool.Tick(pivot) {
			m.energyHistory = append(m.energyHistory, m.pool.Energy())
			if len(m.energyHistory) > historyCapacity {
				m.energyHistory = m.energyHistory[1:]
			}
		}
		m.frame++
		return m, m.tick()
	}
	return m, nil
}

// projection maps simulation space onto canvas dots with the pivot
// centred and the full arm reach fitting the shorter side.
func projection(c *Canvas, d sim.Defaults, origin physics.Vec2) func(v physics.Vec2) (int, int) {
	cx, cy := c.SubWidth()/2, c.SubHeight()/2
	reach := d.Lengths[0] + d.Lengths[1]
	scale := 1.0
	if reach > 0 {
		scale = 0.95 * float64(min(cx, cy)) / reach
	}
	return func(v physics.Vec2) (int, int) {
		return cx + int(math.Round((v.X-origin.X)*scale)), cy + int(math.Round((v.Y-origin.Y)*scale))
	}
}

// DrawPool paints traces then arms in index order, so later pendulums
// cover earlier ones. Pendulums with a non-finite state are skipped.
func DrawPool(c *Canvas, p *sim.Pool, origin physics.Vec2, scheme string) {
	c.Clear()
	toScreen := projection(c, p.Defaults(), origin)

	for _, e := range p.All() {
		if !e.Valid() {
			continue
		}
		col := palette.Colour(scheme, e.ColorIndex)

		if e.ShowTrace {
			pts := e.Trace().Points()
			for i := 1; i < len(pts); i++ {
				x0, y0 := toScreen(pts[i-1])
				x1, y1 := toScreen(pts[i])
				c.DrawLine(x0, y0, x1, y1, col)
			}
		}

		if e.ShowArms {
			b1, b2 := e.Arms(origin)
			ox, oy := toScreen(origin)
			x1, y1 := toScreen(b1)
			x2, y2 := toScreen(b2)
			c.DrawLine(ox, oy, x1, y1, col)
			c.DrawLine(x1, y1, x2, y2, col)
			c.Dot(x2, y2, 1, col)
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View renders the TUI interface.
func (m Model) View() string {
	DrawPool(m.canvas, m.pool, pivot, m.scheme)
	canvasView := m.st.canvas.Render(m.canvas.Render())

	d := m.pool.Defaults()
	var s strings.Builder
	s.WriteString(m.st.header.Render("CHAOS FAN") + "\n")
	if m.pool.Running() {
		s.WriteString(m.st.running.Render(AnimatedSpinner(m.frame)+" RUNNING") + "\n\n")
	} else {
		s.WriteString(m.st.paused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Pendulums", fmt.Sprintf("%d", m.pool.Len()))
	row("Steps", fmt.Sprintf("%d", m.pool.Steps()))
	row("Energy", fmt.Sprintf("%.2f", m.pool.Energy()))
	row("Colours", m.scheme)
	row("Damping", onOff(d.Damping))
	row("Arms", onOff(d.ShowArms))
	row("Trace", onOff(d.ShowTrace))

	s.WriteString("\nPARAMETERS\n")
	for i, p := range params {
		v := p.get(d)
		line := fmt.Sprintf("%-9s %s "+p.format, p.name, ParamBar(v, p.lo, p.hi, 10), v)
		if i == m.selected {
			s.WriteString(m.st.activeParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.st.label.Render(line) + "\n")
		}
	}
	s.WriteString(m.st.help.Render("\n─────────────────────\nSP:Run R:Reset Q:Quit\nTab ↑↓:Tune ?:Help"))
	statsView := m.st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space     run / pause
  R         reset every pendulum to the start angles
  Tab       next parameter (shift+tab: previous)
  Up/K      increase parameter
  Down/J    decrease parameter
  A         toggle arms
  T         toggle traces
  D         toggle damping
  + / -     add or remove pendulums
  C         next colour scheme
  Shift+T   next panel theme
  Q         quit
`

// Run starts the live view and blocks until the user quits.
func Run(pool *sim.Pool, scheme string, fps int) error {
	p := tea.NewProgram(NewModel(pool, scheme, fps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
