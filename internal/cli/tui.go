package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/dotgrid/pkg/engine"
	"github.com/matzehuels/dotgrid/pkg/errors"
	"github.com/matzehuels/dotgrid/pkg/geom"
	"github.com/matzehuels/dotgrid/pkg/input"
	"github.com/matzehuels/dotgrid/pkg/metrics"
	"github.com/matzehuels/dotgrid/pkg/pipeline"
	"github.com/matzehuels/dotgrid/pkg/render/sink"
	"github.com/matzehuels/dotgrid/pkg/scene"
)

// Status bar styles
var (
	statusBarStyle    = lipgloss.NewStyle().Foreground(colorGray).Background(lipgloss.Color("236"))
	statusKeyStyle    = lipgloss.NewStyle().Foreground(colorCyan).Background(lipgloss.Color("236")).Bold(true)
	statusErrStyle    = lipgloss.NewStyle().Foreground(colorRed).Background(lipgloss.Color("236"))
	labelStyle        = lipgloss.NewStyle().Foreground(colorWhite)
	editingLabelStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// statusRows is the number of terminal rows below the grid.
const statusRows = 1

// =============================================================================
// BackgroundModel - Interactive frame loop
// =============================================================================

// tickMsg drives one engine step.
type tickMsg time.Time

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// BackgroundModel is the bubbletea model animating one scene. Terminal
// positions map to pixels through the size of one character of the base
// font, so the terminal behaves like a surface of cols x rows characters.
type BackgroundModel struct {
	eng     *engine.Engine
	doc     *scene.Document
	cfg     Config
	char    geom.Size // pixel size of one terminal character
	palette sink.Palette
	clicks  *input.ClickCounter
	clip    Clipboard
	log     *log.Logger

	interval time.Duration
	labels   bool
	now      func() time.Time

	width, height int
	focus         *scene.Element
	status        string
	statusErr     bool
}

// NewBackgroundModel creates a model around an engine built for doc.
func NewBackgroundModel(eng *engine.Engine, doc *scene.Document, cfg Config, char geom.Size, logger *log.Logger) *BackgroundModel {
	clicks := input.NewClickCounter()
	clicks.Interval = cfg.DoubleClick
	return &BackgroundModel{
		eng:      eng,
		doc:      doc,
		cfg:      cfg,
		char:     char,
		palette:  cfg.Palette(),
		clicks:   clicks,
		clip:     systemClipboard{},
		log:      logger,
		interval: time.Second / time.Duration(cfg.FrameRate),
		labels:   true,
		now:      time.Now,
	}
}

// SetLabels toggles drawing of box content.
func (m *BackgroundModel) SetLabels(on bool) { m.labels = on }

// SetClipboard replaces the system clipboard.
func (m *BackgroundModel) SetClipboard(c Clipboard) { m.clip = c }

func (m *BackgroundModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *BackgroundModel) Init() tea.Cmd {
	return m.tick()
}

func (m *BackgroundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if _, err := m.eng.Step(time.Time(msg)); err != nil {
			m.setError(err)
		}
		m.syncChar()
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.eng.Post(engine.Resize{Viewport: m.viewport()})
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.BlurMsg:
		m.finishEdit()
		m.eng.Post(engine.PointerLeave{})
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

// syncChar follows the engine's cell size after a font change: one terminal
// character becomes one character of the new font, and the viewport is
// resized so the grid covers the terminal again.
func (m *BackgroundModel) syncChar() {
	char := metrics.CharFromCell(m.eng.Cell())
	if !char.Valid() || char == m.char {
		return
	}
	m.char = char
	m.eng.Post(engine.Resize{Viewport: m.viewport()})
}

// viewport is the terminal area above the status bar in pixels.
func (m *BackgroundModel) viewport() geom.Size {
	rows := max(m.height-statusRows, 0)
	return geom.Size{W: float64(m.width) * m.char.W, H: float64(rows) * m.char.H}
}

// pixel maps a terminal cell to the pixel at its centre.
func (m *BackgroundModel) pixel(x, y int) geom.Point {
	return geom.Point{X: (float64(x) + 0.5) * m.char.W, Y: (float64(y) + 0.5) * m.char.H}
}

func (m *BackgroundModel) handleMouse(msg tea.MouseMsg) {
	p := m.pixel(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		m.eng.Post(engine.PointerMove{At: p})
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		n := m.clicks.Press(p, m.now())
		hit := m.elementAt(p)
		if editing := m.doc.Editing(); editing != nil && editing != hit {
			m.finishEdit()
		}
		if n >= 2 && hit != nil {
			if hit.BeginEdit() {
				m.focus = hit
				m.log.Debug("edit start", "box", hit.Handle())
				return
			}
		}
		m.eng.Post(engine.PointerMove{At: p}, engine.PointerDown{At: p, Clicks: n})
	case tea.MouseActionRelease:
		m.eng.Post(engine.PointerUp{})
	}
}

// elementAt returns the topmost scene element under p.
func (m *BackgroundModel) elementAt(p geom.Point) *scene.Element {
	b, ok := m.eng.Registry().HitTest(p)
	if !ok {
		return nil
	}
	el, _ := b.Element.(*scene.Element)
	return el
}

func (m *BackgroundModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.finishEdit()
		return tea.Quit
	}
	if el := m.doc.Editing(); el != nil {
		m.editKey(el, msg)
		return nil
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "+", "=":
		m.changeFont(fontStep)
	case "-", "_":
		m.changeFont(-fontStep)
	case "y":
		m.copyFrame()
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "enter":
		if m.focus != nil && m.focus.BeginEdit() {
			m.log.Debug("edit start", "box", m.focus.Handle())
		}
	case "esc":
		m.focus = nil
	}
	return nil
}

func (m *BackgroundModel) editKey(el *scene.Element, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		if msg.Alt {
			el.InsertText("\n")
			return
		}
		m.finishEdit()
	case tea.KeyEsc:
		el.CancelEdit()
		m.editDone(el, false)
	case tea.KeyBackspace:
		el.DeleteBack()
	case tea.KeySpace:
		el.InsertText(" ")
	case tea.KeyRunes:
		el.InsertText(string(msg.Runes))
	case tea.KeyCtrlV:
		m.paste(el)
	}
}

// copyFrame puts the plain text of the current frame on the clipboard.
func (m *BackgroundModel) copyFrame() {
	if err := m.clip.WriteAll(m.eng.Text()); err != nil {
		m.setError(fmt.Errorf("copy frame: %w", err))
		return
	}
	m.setStatus(fmt.Sprintf("copied %dx%d frame", m.eng.Grid().Cols(), m.eng.Grid().Rows()))
}

// paste inserts clipboard text into the edit buffer.
func (m *BackgroundModel) paste(el *scene.Element) {
	text, err := m.clip.ReadAll()
	if err != nil {
		m.setError(fmt.Errorf("paste: %w", err))
		return
	}
	el.InsertText(strings.ReplaceAll(text, "\r\n", "\n"))
}

// finishEdit ends the active edit, if any, keeping the edited text.
func (m *BackgroundModel) finishEdit() {
	el := m.doc.Editing()
	if el == nil {
		return
	}
	changed := el.FinishEdit()
	m.editDone(el, changed)
}

func (m *BackgroundModel) editDone(el *scene.Element, changed bool) {
	m.log.Debug("edit end", "box", el.Handle(), "changed", changed)
	// Content drives auto-size, so box geometry is rebuilt.
	m.eng.Post(engine.Rebuild{})
}

func (m *BackgroundModel) changeFont(delta float64) {
	cur := m.eng.FontSize()
	pt := m.cfg.ClampFontSize(cur + delta)
	if pt == cur {
		return
	}
	m.eng.Post(engine.SetFontSize{Points: pt})
	m.setStatus(fmt.Sprintf("font %vpt", pt))
}

// cycleFocus moves keyboard focus through the focusable elements.
func (m *BackgroundModel) cycleFocus(dir int) {
	order := m.doc.FocusOrder()
	if len(order) == 0 {
		m.focus = nil
		return
	}
	idx := -1
	for i, el := range order {
		if el == m.focus {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && dir > 0:
		idx = 0
	case idx < 0:
		idx = len(order) - 1
	default:
		idx = (idx + dir + len(order)) % len(order)
	}
	m.focus = order[idx]
}

func (m *BackgroundModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *BackgroundModel) setError(err error) {
	m.status, m.statusErr = errors.UserMessage(err), true
	m.log.Warn("step failed", "err", err)
}

func (m *BackgroundModel) View() string {
	opts := []sink.ANSIOption{sink.WithPalette(m.palette)}
	cell := m.eng.Cell()
	if m.labels {
		opts = append(opts, sink.WithLabels(m.sceneLabels(cell)...))
	}
	if m.focus != nil {
		opts = append(opts, sink.WithHighlight(sink.BoxCells(m.focus.Bounds(), cell)))
	}

	frame := sink.RenderANSI(m.eng.Grid(), opts...)
	rows := m.eng.Grid().Rows()
	pad := max(m.height-statusRows-rows, 0)

	var b strings.Builder
	b.WriteString(frame)
	if rows > 0 {
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("\n", pad))
	b.WriteString(m.statusBar())
	return b.String()
}

// sceneLabels draws content in the label style and the edit buffer in the
// editing style.
func (m *BackgroundModel) sceneLabels(cell geom.Size) []sink.Label {
	var labels []sink.Label
	for _, el := range m.doc.Elements() {
		lines, style := el.Lines(), labelStyle
		if el.Editing() {
			lines, style = el.EditLines(pipeline.Caret), editingLabelStyle
		}
		labels = append(labels, sink.BoxLabels(el.Bounds(), cell, lines, style)...)
	}
	return labels
}

func (m *BackgroundModel) statusBar() string {
	left := statusKeyStyle.Render(" "+appName+" ") +
		statusBarStyle.Render(fmt.Sprintf(" %vpt · %dx%d · trail %d ",
			m.eng.FontSize(), m.eng.Grid().Cols(), m.eng.Grid().Rows(), m.eng.Stats().Trail))

	var mode string
	switch {
	case m.doc.Editing() != nil:
		mode = "editing · ⏎ done · alt+⏎ newline · esc cancel"
	case m.eng.Dragging() != nil:
		mode = "dragging"
	default:
		mode = "tab focus · +/- font · y copy · q quit"
	}
	if m.status != "" {
		mode = m.status + " · " + mode
	}

	style := statusBarStyle
	if m.statusErr {
		style = statusErrStyle
	}
	avail := m.width - lipgloss.Width(left)
	if avail <= 0 {
		return runewidth.Truncate(appName, max(m.width, 0), "")
	}
	right := runewidth.Truncate(" "+mode, avail, "…")
	right += strings.Repeat(" ", avail-runewidth.StringWidth(right))
	return left + style.Render(right)
}
