package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ftahirops/ptop/util"
)

// InputError is a rejected command. The session keeps its state and the
// caller shows Msg as a transient message.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func inputErrorf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// Command is one operator request applied between frames.
type Command interface {
	Apply(e *Engine) error
}

// Apply runs c and schedules recalibration. Every failure comes back as
// an *InputError.
func (e *Engine) Apply(c Command) error {
	err := c.Apply(e)
	e.recalibrate = true
	if err == nil {
		return nil
	}
	var ie *InputError
	if errors.As(err, &ie) {
		return ie
	}
	return &InputError{Msg: err.Error()}
}

// Option names a window toggle.
type Option int

const (
	OptVisible Option = iota
	OptShowIdle
	OptForest
	OptCmdLine
	OptChildTimes
	OptDescending
	OptNumbersLeft
	OptStringsRight
	OptHighlightSort
	OptHighlightRunning
	OptShowLoad
	OptShowStates
	OptShowMemory
	OptPerCPU
)

func (o *Options) ref(opt Option) *bool {
	switch opt {
	case OptVisible:
		return &o.Visible
	case OptShowIdle:
		return &o.ShowIdle
	case OptForest:
		return &o.Forest
	case OptCmdLine:
		return &o.CmdLine
	case OptChildTimes:
		return &o.ChildTimes
	case OptDescending:
		return &o.Descending
	case OptNumbersLeft:
		return &o.NumbersLeft
	case OptStringsRight:
		return &o.StringsRight
	case OptHighlightSort:
		return &o.HighlightSort
	case OptHighlightRunning:
		return &o.HighlightRunning
	case OptShowLoad:
		return &o.ShowLoad
	case OptShowStates:
		return &o.ShowStates
	case OptShowMemory:
		return &o.ShowMemory
	case OptPerCPU:
		return &o.PerCPU
	}
	return nil
}

// Toggle flips one option.
func (o *Options) Toggle(opt Option) {
	if p := o.ref(opt); p != nil {
		*p = !*p
	}
}

// ToggleOption flips an option of the current window.
type ToggleOption struct{ Opt Option }

func (c ToggleOption) Apply(e *Engine) error {
	e.Cur().Options.Toggle(c.Opt)
	return nil
}

// ToggleField shows or hides a column in the current window.
type ToggleField struct{ ID FieldID }

func (c ToggleField) Apply(e *Engine) error {
	e.Cur().ToggleField(c.ID)
	return nil
}

// MoveField shifts a column within the current window's order.
type MoveField struct {
	ID    FieldID
	Delta int
}

func (c MoveField) Apply(e *Engine) error {
	e.Cur().MoveField(c.ID, c.Delta)
	return nil
}

// SortBy sets the current window's sort column.
type SortBy struct{ ID FieldID }

func (c SortBy) Apply(e *Engine) error {
	if c.ID < 0 || c.ID >= NumFields {
		return inputErrorf("invalid sort field")
	}
	e.Cur().SortField = c.ID
	return nil
}

// SortByName sets the sort column from its header name.
type SortByName struct{ Name string }

func (c SortByName) Apply(e *Engine) error {
	id, err := FieldByName(c.Name)
	if err != nil {
		return inputErrorf("%v", err)
	}
	e.Cur().SortField = id
	return nil
}

// SortStep moves the sort column to the previous (-1) or next (+1)
// displayed column.
type SortStep struct{ Delta int }

func (c SortStep) Apply(e *Engine) error {
	w := e.Cur()
	vis := w.layout.Visible
	if len(vis) == 0 {
		return nil
	}
	i := slices.Index(vis, w.SortField)
	switch {
	case i < 0 && c.Delta < 0:
		i = len(vis) - 1
	case i < 0:
		i = 0
	default:
		i = min(max(i+c.Delta, 0), len(vis)-1)
	}
	w.SortField = vis[i]
	return nil
}

// SetMaxTasks caps the current window's rows; zero removes the cap.
type SetMaxTasks struct{ N int }

func (c SetMaxTasks) Apply(e *Engine) error {
	if c.N < 0 {
		return inputErrorf("invalid maximum tasks value")
	}
	e.Cur().MaxTasks = c.N
	return nil
}

// FilterUser shows only one user's tasks. Mode is 'u' for the effective
// uid or 'U' for any uid. An empty User clears the filter.
type FilterUser struct {
	Mode byte
	User string
}

func (c FilterUser) Apply(e *Engine) error {
	w := e.Cur()
	name := strings.TrimSpace(c.User)
	if name == "" {
		w.User = UserFilter{}
		return nil
	}
	if c.Mode != 'u' && c.Mode != 'U' {
		return inputErrorf("invalid user filter mode %q", c.Mode)
	}
	uid, err := e.lookupUID(name)
	if err != nil {
		return inputErrorf("invalid user %q", name)
	}
	w.User = UserFilter{Mode: c.Mode, UID: uid, Name: name}
	w.BegTask = 0
	return nil
}

func (e *Engine) lookupUID(name string) (int, error) {
	if e.users != nil {
		return e.users.LookupUID(name)
	}
	uid, err := strconv.Atoi(name)
	if err != nil || uid < 0 {
		return 0, fmt.Errorf("unknown user %q", name)
	}
	return uid, nil
}

// FilterPIDs limits the current window to a pid list; empty clears it.
type FilterPIDs struct{ Text string }

func (c FilterPIDs) Apply(e *Engine) error {
	pids, err := util.ParsePIDList(c.Text)
	if err != nil {
		return inputErrorf("%v", err)
	}
	w := e.Cur()
	w.PIDs = pids
	w.BegTask = 0
	return nil
}

// Locate scrolls the current window to the first row containing Text.
type Locate struct{ Text string }

func (c Locate) Apply(e *Engine) error {
	w := e.Cur()
	w.Find = c.Text
	if c.Text == "" {
		return nil
	}
	return e.locate(w, w.BegTask)
}

// LocateNext repeats the last locate from the row after the top one.
type LocateNext struct{}

func (LocateNext) Apply(e *Engine) error {
	w := e.Cur()
	if w.Find == "" {
		return inputErrorf("nothing to locate")
	}
	return e.locate(w, w.BegTask+1)
}

func (e *Engine) locate(w *Window, from int) error {
	for i := max(from, 0); i < len(w.tasks); i++ {
		if strings.Contains(e.renderRow(w, w.tasks[i], ""), w.Find) {
			w.BegTask = i
			return nil
		}
	}
	return inputErrorf("locate %q not found", w.Find)
}

// ScrollDir is a scrolling motion.
type ScrollDir int

const (
	ScrollUp ScrollDir = iota
	ScrollDown
	ScrollLeft
	ScrollRight
	ScrollPageUp
	ScrollPageDown
	ScrollHome
	ScrollEnd
)

// varScroll is how far one horizontal step moves inside variable columns.
const varScroll = 8

// Scroll moves the current window's view.
type Scroll struct{ Dir ScrollDir }

func (c Scroll) Apply(e *Engine) error {
	w := e.Cur()
	page := max(w.budget, 1)
	switch c.Dir {
	case ScrollUp:
		w.BegTask--
	case ScrollDown:
		w.BegTask++
	case ScrollPageUp:
		w.BegTask -= page
	case ScrollPageDown:
		w.BegTask += page
	case ScrollHome:
		w.BegTask = 0
	case ScrollEnd:
		w.BegTask = len(w.tasks) - page
	case ScrollLeft:
		if w.VarOffset > 0 {
			w.VarOffset = max(w.VarOffset-varScroll, 0)
		} else {
			w.BegField--
		}
	case ScrollRight:
		if e.atVarEnd(w) {
			w.VarOffset += varScroll
		} else {
			w.BegField++
		}
	}
	w.Clamp(len(w.tasks), len(w.layout.All))
	return nil
}

// atVarEnd reports whether the last column is on screen and variable, so
// scrolling right moves within it.
func (e *Engine) atVarEnd(w *Window) bool {
	lay := &w.layout
	n := len(lay.Visible)
	if n == 0 || w.BegField+n < len(lay.All) {
		return false
	}
	return e.Catalog.Field(lay.Visible[n-1]).Variable()
}

// SelectWindow makes window Index (0-based) current.
type SelectWindow struct{ Index int }

func (c SelectWindow) Apply(e *Engine) error {
	if c.Index < 0 || c.Index >= NumWindows {
		return inputErrorf("invalid window %d", c.Index+1)
	}
	e.Current = c.Index
	return nil
}

// CycleWindow moves to the next (+1) or previous (-1) window.
type CycleWindow struct{ Delta int }

func (c CycleWindow) Apply(e *Engine) error {
	e.Current = ((e.Current+c.Delta)%NumWindows + NumWindows) % NumWindows
	return nil
}

// ToggleMultiWindow switches between one and all visible windows.
type ToggleMultiWindow struct{}

func (ToggleMultiWindow) Apply(e *Engine) error {
	e.MultiWindow = !e.MultiWindow
	return nil
}

// ShowAllWindows makes every window visible, or when all are, hides all
// but the current one.
type ShowAllWindows struct{}

func (ShowAllWindows) Apply(e *Engine) error {
	all := true
	for _, w := range e.Windows {
		all = all && w.Options.Visible
	}
	for i, w := range e.Windows {
		w.Options.Visible = !all || i == e.Current
	}
	return nil
}

// EqualizeWindows shows every window and removes row caps and scrolling.
type EqualizeWindows struct{}

func (EqualizeWindows) Apply(e *Engine) error {
	for _, w := range e.Windows {
		w.Options.Visible = true
		w.MaxTasks = 0
		w.BegTask = 0
	}
	return nil
}

// ResetWindow clears the current window's filters, caps and scrolling.
type ResetWindow struct{}

func (ResetWindow) Apply(e *Engine) error {
	w := e.Cur()
	w.Options.ShowIdle = true
	w.User = UserFilter{}
	w.PIDs = nil
	w.MaxTasks = 0
	w.Find = ""
	w.BegTask, w.BegField, w.VarOffset = 0, 0, 0
	return nil
}

// maxWindowName is the longest window name kept.
const maxWindowName = 3

// RenameWindow changes the current window's name.
type RenameWindow struct{ Name string }

func (c RenameWindow) Apply(e *Engine) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return inputErrorf("window name cannot be empty")
	}
	if r := []rune(name); len(r) > maxWindowName {
		name = string(r[:maxWindowName])
	}
	e.Cur().Name = name
	return nil
}

// ToggleIrix switches %CPU between per-cpu and whole-system scaling.
type ToggleIrix struct{}

func (ToggleIrix) Apply(e *Engine) error {
	if e.cpus.Count() < 2 {
		return inputErrorf("only 1 cpu detected")
	}
	e.Irix = !e.Irix
	return e.Catalog.SetCPUs(e.cpus.Count(), e.Irix, e.Threads)
}

// ToggleThreads switches between processes and individual threads.
type ToggleThreads struct{}

func (ToggleThreads) Apply(e *Engine) error {
	e.Threads = !e.Threads
	return e.Catalog.SetCPUs(e.cpus.Count(), e.Irix, e.Threads)
}

// ToggleZero switches suppression of zero values.
type ToggleZero struct{}

func (ToggleZero) Apply(e *Engine) error {
	e.Catalog.ZeroSuppress = !e.Catalog.ZeroSuppress
	return nil
}

// CycleTaskScale steps the memory columns' unit from KiB up to PiB.
type CycleTaskScale struct{}

func (CycleTaskScale) Apply(e *Engine) error {
	if e.Catalog.TaskScale++; e.Catalog.TaskScale > ScalePiB {
		e.Catalog.TaskScale = ScaleKiB
	}
	return nil
}

// CycleSummaryScale steps the summary memory unit from KiB up to EiB.
type CycleSummaryScale struct{}

func (CycleSummaryScale) Apply(e *Engine) error {
	if e.SummaryScale++; e.SummaryScale > ScaleEiB {
		e.SummaryScale = ScaleKiB
	}
	return nil
}

// SetDelay changes the refresh interval.
type SetDelay struct{ Seconds float64 }

func (c SetDelay) Apply(e *Engine) error {
	if c.Seconds < 0 {
		return inputErrorf("invalid delay %g", c.Seconds)
	}
	e.Delay = time.Duration(c.Seconds * float64(time.Second))
	return nil
}

// Kill sends a signal to a task. Signal may be a number or a name.
type Kill struct {
	PID    int
	Signal string
}

func (c Kill) Apply(e *Engine) error {
	if c.PID <= 0 {
		return inputErrorf("invalid pid %d", c.PID)
	}
	sig, err := ParseSignal(c.Signal)
	if err != nil {
		return inputErrorf("%v", err)
	}
	if err := e.actions.Signal(c.PID, sig); err != nil {
		return inputErrorf("failed signal pid '%d' with '%s': %v", c.PID, SignalName(sig), err)
	}
	return nil
}

// Renice sets a task's nice value.
type Renice struct {
	PID  int
	Nice int
}

func (c Renice) Apply(e *Engine) error {
	if c.PID <= 0 {
		return inputErrorf("invalid pid %d", c.PID)
	}
	if err := e.actions.Renice(c.PID, c.Nice); err != nil {
		return inputErrorf("failed renice of pid '%d' to '%d': %v", c.PID, c.Nice, err)
	}
	return nil
}

// TopTask returns the pid in the first row of the current window, the
// default target of kill and renice.
func (e *Engine) TopTask() (int, bool) {
	w := e.Cur()
	if w.BegTask < 0 || w.BegTask >= len(w.tasks) {
		return 0, false
	}
	return w.tasks[w.BegTask].PID, true
}
