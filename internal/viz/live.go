package viz

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	kitlog "github.com/go-kit/kit/log"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/keplerlab/internal/kepler"
	"github.com/san-kum/keplerlab/internal/orbit"
)

const (
	width           = 80
	height          = 24
	fps             = 60
	historyCapacity = 600
	trailLength     = 120

	eccentricityStep = 0.02
	omegaStep        = math.Pi / 36
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Options configures the live view.
type Options struct {
	Title string
	// Epoch is where the body starts and where reset returns it, as time
	// since periapsis.
	Epoch     float64
	Samples   int
	TimeScale float64
	Theme     string
	// GIFPath is where the recording is written when it is stopped.
	GIFPath string
}

// Model animates a body following an orbit.Path. The outline is resampled
// whenever the path's revision changes.
type Model struct {
	path     *orbit.Path
	follower *orbit.Follower
	opts     Options
	logger   kitlog.Logger

	canvas   *Canvas
	view     Viewport
	outline  []r2.Vec
	revision uint64

	state    kepler.StateVector
	trail    []r2.Vec
	speeds   []float64
	lastErr  error
	running  bool
	showHelp bool
	theme    Theme

	recording bool
	frames    []*image.Paletted
}

func NewModel(path *orbit.Path, opts Options, logger kitlog.Logger) Model {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if opts.Samples < 2 {
		opts.Samples = 256
	}
	if opts.TimeScale == 0 {
		opts.TimeScale = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "orbit.gif"
	}
	m := Model{
		path:     path,
		follower: orbit.NewFollower(path, logger),
		opts:     opts,
		logger:   kitlog.With(logger, "subsys", "live"),
		canvas:   NewCanvas(width, height),
		trail:    make([]r2.Vec, 0, trailLength),
		speeds:   make([]float64, 0, historyCapacity),
		running:  true,
		theme:    ThemeByName(opts.Theme),
	}
	m.follower.Seek(opts.Epoch)
	m.resample()
	m.advance(0)
	m.draw()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.adjust(m.path.SetEccentricity(m.path.Config().Eccentricity + eccentricityStep))
		case "down", "j":
			m.adjust(m.path.SetEccentricity(math.Max(0, m.path.Config().Eccentricity-eccentricityStep)))
		case "right", "l":
			m.adjust(m.path.SetArgumentOfPeriapsis(m.path.Config().ArgumentOfPeriapsis + omegaStep))
		case "left", "h":
			m.adjust(m.path.SetArgumentOfPeriapsis(m.path.Config().ArgumentOfPeriapsis - omegaStep))
		case "+", "=":
			m.opts.TimeScale *= 1.25
		case "-", "_":
			m.opts.TimeScale /= 1.25
		case "t":
			m.theme = NextTheme(m.theme)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case TickMsg:
		if m.running {
			m.advance(m.opts.TimeScale / fps)
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Image(8, 16))
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) adjust(err error) {
	m.lastErr = err
	if err == nil {
		m.trail = m.trail[:0]
		m.resample()
	}
}

// advance steps the follower and records history. A convergence failure
// still moves the body to its best estimate.
func (m *Model) advance(dt float64) {
	if rev := m.path.Revision(); rev != m.revision {
		m.resample()
	}
	sv, err := m.follower.Advance(dt)
	m.lastErr = err
	var ce *kepler.ConvergenceError
	if err != nil && !errors.As(err, &ce) {
		return
	}
	m.state = sv

	m.trail = append(m.trail, sv.Position)
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
	m.speeds = append(m.speeds, sv.Speed())
	if len(m.speeds) > historyCapacity {
		m.speeds = m.speeds[1:]
	}
}

func (m *Model) resample() {
	m.revision = m.path.Revision()
	pts, err := m.path.Sample(m.opts.Samples)
	if err != nil {
		m.logger.Log("level", "warning", "err", err)
		m.lastErr = err
		return
	}
	m.outline = pts
	m.view = FitViewport(pts, 0.05)
}

func (m *Model) reset() {
	m.follower.Seek(m.opts.Epoch)
	m.trail = m.trail[:0]
	m.speeds = m.speeds[:0]
	m.lastErr = nil
	m.advance(0)
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	if err := m.saveGIF(); err != nil {
		m.lastErr = err
		m.logger.Log("level", "error", "path", m.opts.GIFPath, "err", err)
	}
	m.recording = false
	m.frames = nil
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/fps+1)
	}
	f, err := os.Create(m.opts.GIFPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	return f.Close()
}

func (m *Model) draw() {
	m.canvas.Clear()
	closed := m.path.Elements().Conic().Closed()
	m.canvas.DrawPath(m.view, m.outline, closed)
	if x, y, ok := m.view.Project(m.canvas, r2.Vec{}); ok {
		m.canvas.Blob(x, y)
	}
	for _, p := range m.trail {
		if x, y, ok := m.view.Project(m.canvas, p); ok {
			m.canvas.Set(x, y)
		}
	}
	if x, y, ok := m.view.Project(m.canvas, m.state.Position); ok {
		m.canvas.Blob(x, y)
	}
}

// Frame is the current canvas without styling.
func (m Model) Frame() string { return m.canvas.String() }

func (m Model) View() string {
	st := m.theme.styles()
	cfg := m.path.Config()
	el := m.path.Elements()

	var s strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "orbit"
	}
	s.WriteString(st.header.Render(strings.ToUpper(title)) + "\n\n")

	switch {
	case m.recording:
		s.WriteString(st.recording.Render("● REC") + "\n\n")
	case m.running:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Conic", el.Conic().String())
	row("a", fmt.Sprintf("%.4g", cfg.SemiMajorAxis))
	row("e", fmt.Sprintf("%.4f", cfg.Eccentricity))
	row("ω", fmt.Sprintf("%.3f rad", cfg.ArgumentOfPeriapsis))
	row("μ", fmt.Sprintf("%.4g", el.Mu))
	if T, err := el.Period(); err == nil {
		row("Period", fmt.Sprintf("%.4g", T))
	}
	row("t", fmt.Sprintf("%.4g", m.follower.Time()))
	row("r", fmt.Sprintf("%.4g", m.state.Distance()))
	row("v", fmt.Sprintf("%.4g", m.state.Speed()))
	row("Speed ×", fmt.Sprintf("%.3g", m.opts.TimeScale))

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("speed"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	if len(m.trail) > 1 {
		radii := make([]float64, len(m.trail))
		for i, p := range m.trail {
			radii[i] = r2.Norm(p)
		}
		row("r trail", SparklineChart(radii, 30))
	}
	if m.lastErr != nil {
		s.WriteString(st.errText.Render(m.lastErr.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit ?:Help\n↑↓:e  ←→:ω  +-:Speed"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space     pause or resume
  R         back to the start
  Up/Down   eccentricity ±0.02
  Left/Right  argument of periapsis ±5°
  + / -     time scale
  T         cycle theme
  G         start or stop GIF recording
  Q         quit
`
