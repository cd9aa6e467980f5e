package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kin"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 300
)

var (
	canvasStyle   = lipgloss.NewStyle().Padding(1, 2)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeAxStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	mimicTagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("140"))
)

var axisNames = [6]string{"vx", "vy", "vz", "wx", "wy", "wz"}

type TickMsg time.Time

// Model is the interactive jog view: the user edits a twist while the
// solver tracks it live, joints integrating at each tick.
type Model struct {
	chain  *kin.Chain
	solver *ik.Solver

	twist    [6]float64
	q        []float64
	q0       []float64
	t, dt    float64
	paused   bool
	selected int
	degraded bool

	manipHistory []float64
	canvas       *Canvas
	planar       bool
}

// NewModel starts the view at configuration q0 with a zero twist.
func NewModel(chain *kin.Chain, solver *ik.Solver, q0 []float64, dt float64) Model {
	q := append([]float64(nil), q0...)
	chain.ApplyMimic(q)
	return Model{
		chain:        chain,
		solver:       solver,
		q:            q,
		q0:           append([]float64(nil), q...),
		dt:           dt,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		manipHistory: make([]float64, 0, historyCapacity),
		planar:       isPlanar(chain),
	}
}

// isPlanar reports whether every movable revolute axis is along Z, in
// which case the arm lives in the XY plane and we project onto it.
func isPlanar(c *kin.Chain) bool {
	for _, j := range c.Joints {
		if j.Type != kin.Revolute {
			continue
		}
		a := j.Axis.Normalize()
		if math.Abs(a[0]) > 1e-9 || math.Abs(a[1]) > 1e-9 {
			return false
		}
	}
	return true
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % 6
		case "up", "k":
			m.twist[m.selected] += 0.02
		case "down", "j":
			m.twist[m.selected] -= 0.02
		case "0":
			m.twist = [6]float64{}
		}
	case TickMsg:
		if !m.paused {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) reset() {
	m.t = 0
	m.q = append(m.q[:0], m.q0...)
	m.twist = [6]float64{}
	m.manipHistory = m.manipHistory[:0]
	m.degraded = false
}

func (m *Model) step() {
	jac, err := m.chain.Jacobian(m.q)
	if err != nil {
		return
	}

	qdot, err := m.solver.Solve(jac, m.twist[:])
	m.degraded = err != nil
	if err != nil {
		qdot = make([]float64, len(m.q))
	}

	for j := range m.q {
		m.q[j] += m.dt * qdot[j]
	}
	m.t += m.dt

	m.manipHistory = append(m.manipHistory, manipulability(jac))
	if len(m.manipHistory) > historyCapacity {
		m.manipHistory = m.manipHistory[1:]
	}
}

func manipulability(jac *mat.Dense) float64 {
	var svd mat.SVD
	if !svd.Factorize(jac, mat.SVDNone) {
		return 0
	}
	w := 1.0
	for _, s := range svd.Values(nil) {
		w *= s
	}
	return w
}

// View renders the arm on the left and the twist/joint panel on the
// right.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.chain.Name)) + "\n")
	status := "JOGGING"
	if m.paused {
		status = "PAUSED"
	}
	if m.degraded {
		status += degradedStyle.Render("  SINGULAR")
	}
	s.WriteString(status + "\n\n")

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n\n")

	s.WriteString("TWIST\n")
	for i, name := range axisNames {
		line := fmt.Sprintf("%-3s %s %+.2f", name, twistBar(m.twist[i]), m.twist[i])
		if i == m.selected {
			s.WriteString(activeAxStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString("\nJOINTS\n")
	qi := 0
	for _, j := range m.chain.Joints {
		if j.Type == kin.Fixed {
			continue
		}
		line := fmt.Sprintf("  %-12s %+.3f", j.Name, m.q[qi])
		if j.Mimic != nil {
			line += mimicTagStyle.Render(fmt.Sprintf("  = %.2f x %s", j.Mimic.Multiplier, j.Mimic.Joint))
		}
		s.WriteString(labelStyle.Render("") + valueStyle.Render(line) + "\n")
		qi++
	}

	if len(m.manipHistory) > 1 {
		chart := asciigraph.Plot(m.manipHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Manipulability"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("\nTab:Axis ↑↓:Adjust 0:Zero\nSP:Pause R:Reset Q:Quit"))

	panel := panelStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}

func twistBar(v float64) string {
	const half = 6
	bar := []byte(strings.Repeat("-", 2*half+1))
	bar[half] = '|'
	pos := half + int(v/0.02)
	if pos < 0 {
		pos = 0
	}
	if pos > 2*half {
		pos = 2 * half
	}
	bar[pos] = '#'
	return "[" + string(bar) + "]"
}

func (m *Model) draw() {
	m.canvas.Clear()

	points, err := m.chain.JointPositions(m.q)
	if err != nil || len(points) < 2 {
		return
	}

	// Fit the arm into the canvas with a margin, keeping the aspect
	// ratio square in dot space.
	reach := 1e-9
	for _, p := range points {
		px, py := m.flatten(p)
		if r := math.Hypot(px, py); r > reach {
			reach = r
		}
	}
	cw, ch := canvasWidth*2, canvasHeight*4
	scale := float64(minInt(cw, ch))*0.45 / reach
	cx, cy := cw/2, ch/2

	prevX, prevY := cx, cy
	for i, p := range points {
		px, py := m.flatten(p)
		x := cx + int(px*scale)
		y := cy - int(py*scale)
		if i > 0 {
			m.canvas.Line(prevX, prevY, x, y)
		}
		m.canvas.Blob(x, y, 1)
		prevX, prevY = x, y
	}
	m.canvas.Blob(prevX, prevY, 2)
}

// flatten projects a root-frame point onto the drawing plane: XY for
// planar chains, XZ otherwise.
func (m *Model) flatten(p mgl64.Vec3) (float64, float64) {
	if m.planar {
		return p[0], p[1]
	}
	return p[0], p[2]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
