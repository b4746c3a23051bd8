package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/ptop/config"
	"github.com/ftahirops/ptop/engine"
)

// helpColWidth is the width of one key/description column on the help screen.
const helpColWidth = 26

// msgTTL is how long a transient message stays on the message line.
const msgTTL = 3 * time.Second

// tickMsg re-arms the refresh loop. Ticks from an earlier schedule carry
// a stale id and are dropped.
type tickMsg struct{ id int }

// Model is the bubbletea model. Frames run inside Update, so the engine
// is only ever touched from the bubbletea loop.
type Model struct {
	framer  engine.Framer
	engine  *engine.Engine
	cfgPath string
	limit   int // frames before quitting, 0 = no limit

	width  int
	height int
	screen *screen

	// Message line
	msg     string
	msgErr  bool
	msgTime time.Time

	prompt   *prompt
	fields   *fieldScreen
	showHelp bool

	err    error
	frames int
	tickID int
	now    func() time.Time
}

// NewModel creates a model driving f. Startup messages (config warnings)
// are shown on the first frames.
func NewModel(f engine.Framer, cfgPath string, limit int, startup []string) *Model {
	m := &Model{
		framer:  f,
		engine:  f.Base(),
		cfgPath: cfgPath,
		limit:   limit,
		screen:  &screen{},
		now:     time.Now,
	}
	if len(startup) > 0 {
		m.setMessage(strings.Join(startup, "; "), true)
	}
	return m
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

// Frames returns the number of frames shown.
func (m *Model) Frames() int { return m.frames }

// Init waits for the first WindowSizeMsg, which draws the first frame.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) tick() tea.Cmd {
	m.tickID++
	id := m.tickID
	return tea.Tick(m.engine.Delay, func(time.Time) tea.Msg { return tickMsg{id: id} })
}

// frame renders into the screen buffer and schedules the next refresh.
func (m *Model) frame() tea.Cmd {
	if m.width == 0 || m.height == 0 {
		return nil
	}
	m.screen.cols, m.screen.rows = m.width, m.height
	m.screen.reset()
	if err := m.framer.Frame(m.screen); err != nil {
		m.err = err
		return tea.Quit
	}
	m.frames++
	if m.limit > 0 && m.frames >= m.limit {
		return tea.Quit
	}
	return m.tick()
}

func (m *Model) setMessage(text string, isErr bool) {
	m.msg = text
	m.msgErr = isErr
	m.msgTime = m.now()
}

// apply runs c and reports whether it was accepted.
func (m *Model) apply(c engine.Command) bool {
	if err := m.framer.Apply(c); err != nil {
		m.setMessage(err.Error(), true)
		return false
	}
	return true
}

func (m *Model) save() {
	path := m.cfgPath
	if path == "" {
		path = config.Path()
	}
	if err := config.Save(path, config.FromEngine(m.engine)); err != nil {
		m.setMessage(fmt.Sprintf("Failed '%s' write: %v", path, err), true)
		return
	}
	m.setMessage(fmt.Sprintf("Wrote configuration to '%s'", path), false)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.id != m.tickID {
			return m, nil
		}
		return m, m.frame()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.frame()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	if m.prompt != nil {
		return m, m.prompt.update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.prompt != nil {
		return m.handlePrompt(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return nil
	}
	if m.fields != nil {
		open, err := m.fields.update(m.framer, msg)
		if err != nil {
			m.setMessage(err.Error(), true)
		}
		if !open {
			m.fields = nil
			return m.frame()
		}
		return nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, keys.Refresh):
		return m.frame()
	case key.Matches(msg, keys.Suspend):
		return tea.Suspend
	case key.Matches(msg, keys.Save):
		m.save()
		return nil
	case key.Matches(msg, keys.Fields):
		m.fields = &fieldScreen{}
		return nil
	}
	if p := promptFor(m.engine, msg); p != nil {
		m.prompt = p
		return textinput.Blink
	}
	if c, ok := lookupCommand(msg); ok && m.apply(c) {
		return m.frame()
	}
	return nil
}

func (m *Model) handlePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt = nil
		return nil
	case tea.KeyEnter:
		p := m.prompt
		m.prompt = nil
		c, next, err := p.submit(m.engine, p.input.Value())
		if err != nil {
			m.setMessage(err.Error(), true)
			return nil
		}
		if next != nil {
			m.prompt = next
			return textinput.Blink
		}
		if c != nil && m.apply(c) {
			return m.frame()
		}
		return nil
	}
	return m.prompt.update(msg)
}

// messageLine returns the prompt or a message still within its lifetime.
func (m *Model) messageLine() string {
	if m.prompt != nil {
		return m.prompt.view()
	}
	if m.msg == "" || m.now().Sub(m.msgTime) > msgTTL {
		return ""
	}
	if m.msgErr {
		return errorStyle.Render(m.msg)
	}
	return messageStyle.Render(m.msg)
}

func (m *Model) View() string {
	if m.err != nil {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.fields != nil {
		return m.fields.view(m.engine, m.width, m.height)
	}
	if m.width == 0 || len(m.screen.lines) == 0 {
		return "Loading..."
	}
	return m.screen.render(m.messageLine())
}

func (m *Model) renderHelp() string {
	e := m.engine
	w := e.Cur()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("ptop - interactive process monitor"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Window %d:%s  Delay %.1f secs  Irix %s  Threads %s\n\n",
		w.Num, w.Name, e.Delay.Seconds(), onOff(e.Irix), onOff(e.Threads))

	// At most three columns per block.
	groups := helpGroups()
	for i := 0; i < len(groups); i += 3 {
		block := groups[i:min(i+3, len(groups))]
		rows := 0
		for _, g := range block {
			rows = max(rows, len(g))
		}
		for r := 0; r < rows; r++ {
			for _, g := range block {
				if r >= len(g) {
					sb.WriteString(strings.Repeat(" ", helpColWidth))
					continue
				}
				h := g[r].Help()
				fmt.Fprintf(&sb, "  %-6s %-17s", h.Key, h.Desc)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("Press any key to continue"))
	return sb.String()
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}
