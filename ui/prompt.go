package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/ptop/engine"
)

// submitFunc turns a prompt's input into a command. A returned follow-up
// prompt replaces the current one.
type submitFunc func(e *engine.Engine, input string) (engine.Command, *prompt, error)

// prompt is one line of operator input shown on the message line.
type prompt struct {
	input  textinput.Model
	submit submitFunc
}

func newPrompt(label, value string, submit submitFunc) *prompt {
	in := textinput.New()
	in.Prompt = label + " "
	in.PromptStyle = promptStyle
	in.CharLimit = 256
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return &prompt{input: in, submit: submit}
}

func (p *prompt) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *prompt) view() string { return p.input.View() }

// promptFor opens the prompt bound to msg, if any.
func promptFor(e *engine.Engine, msg tea.KeyMsg) *prompt {
	w := e.Cur()
	switch {
	case key.Matches(msg, keys.MaxTasks):
		return newPrompt(fmt.Sprintf("Maximum tasks = 0 is unlimited, currently %d:", w.MaxTasks), "", maxTasksSubmit)
	case key.Matches(msg, keys.User):
		return newPrompt("Which user (blank for all):", "", userSubmit('u'))
	case key.Matches(msg, keys.AnyUser):
		return newPrompt("Which user (blank for all, any uid):", "", userSubmit('U'))
	case key.Matches(msg, keys.PIDs):
		return newPrompt("Monitor pids (comma separated, blank for all):", "", func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
			return engine.FilterPIDs{Text: s}, nil, nil
		})
	case key.Matches(msg, keys.Locate):
		return newPrompt("Locate string:", w.Find, func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
			return engine.Locate{Text: s}, nil, nil
		})
	case key.Matches(msg, keys.Kill):
		return pidPrompt(e, "Send pid", killSignalPrompt)
	case key.Matches(msg, keys.Renice):
		return pidPrompt(e, "Renice pid", renicePrompt)
	case key.Matches(msg, keys.Delay):
		return newPrompt(fmt.Sprintf("Change delay from %.1f to", e.Delay.Seconds()), "", delaySubmit)
	case key.Matches(msg, keys.Rename):
		return newPrompt(fmt.Sprintf("Rename window '%s' to (1-3 chars):", w.Name), "", func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
			return engine.RenameWindow{Name: s}, nil, nil
		})
	case key.Matches(msg, keys.Group):
		return newPrompt("Choose field group (1 - 4):", "", groupSubmit)
	case key.Matches(msg, keys.SortByName):
		return newPrompt("Sort by field name:", "", func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
			return engine.SortByName{Name: strings.TrimSpace(s)}, nil, nil
		})
	}
	return nil
}

func inputErr(format string, args ...any) error {
	return &engine.InputError{Msg: fmt.Sprintf(format, args...)}
}

func maxTasksSubmit(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, nil, inputErr("unacceptable integer")
	}
	return engine.SetMaxTasks{N: n}, nil, nil
}

func userSubmit(mode byte) submitFunc {
	return func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
		return engine.FilterUser{Mode: mode, User: s}, nil, nil
	}
}

func delaySubmit(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, nil, inputErr("unacceptable floating point")
	}
	return engine.SetDelay{Seconds: secs}, nil, nil
}

func groupSubmit(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, nil, inputErr("unacceptable integer")
	}
	return engine.SelectWindow{Index: n - 1}, nil, nil
}

// pidPrompt asks for a pid, defaulting to the top row, and hands it to
// the next stage.
func pidPrompt(e *engine.Engine, label string, next func(pid int) *prompt) *prompt {
	def := ""
	if pid, ok := e.TopTask(); ok {
		def = strconv.Itoa(pid)
	}
	return newPrompt(label+":", def, func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil, nil
		}
		pid, err := strconv.Atoi(s)
		if err != nil || pid <= 0 {
			return nil, nil, inputErr("unacceptable pid %q", s)
		}
		return nil, next(pid), nil
	})
}

func killSignalPrompt(pid int) *prompt {
	return newPrompt(fmt.Sprintf("Send pid %d signal [15/sigterm]", pid), "", func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			s = "15"
		}
		return engine.Kill{PID: pid, Signal: s}, nil, nil
	})
}

func renicePrompt(pid int) *prompt {
	return newPrompt(fmt.Sprintf("Renice PID %d to value", pid), "", func(_ *engine.Engine, s string) (engine.Command, *prompt, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil, nil
		}
		nice, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, inputErr("unacceptable nice value")
		}
		return engine.Renice{PID: pid, Nice: nice}, nil, nil
	})
}
