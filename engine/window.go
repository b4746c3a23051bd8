package engine

import (
	"slices"

	"github.com/ftahirops/ptop/model"
)

// NumWindows is the number of field groups that exist for the whole run.
const NumWindows = 4

// Options are a window's display toggles.
type Options struct {
	Visible          bool
	ShowIdle         bool // false shows only tasks that used cpu this frame
	Forest           bool
	CmdLine          bool
	ChildTimes       bool
	Descending       bool
	NumbersLeft      bool
	StringsRight     bool
	HighlightSort    bool
	HighlightRunning bool

	// Summary area, taken from the current window.
	ShowLoad   bool
	ShowStates bool
	ShowMemory bool
	PerCPU     bool
}

// UserFilter selects tasks by uid. Mode 'u' matches the effective uid,
// 'U' any of real, effective, saved or filesystem. Zero is inactive.
type UserFilter struct {
	Mode byte
	UID  int
	Name string
}

// Match reports whether t passes the filter.
func (u UserFilter) Match(t *model.Task) bool {
	switch u.Mode {
	case 0:
		return true
	case 'U':
		if t.RUID == u.UID || t.SUID == u.UID || t.FUID == u.UID {
			return true
		}
		fallthrough
	case 'u':
		return t.EUID == u.UID
	}
	return false
}

// FieldSlot is one entry of a window's ordered field list.
type FieldSlot struct {
	ID      FieldID
	Enabled bool
}

// Window is one field group: its columns, sort, filters and scroll state.
type Window struct {
	Num       int
	Name      string
	Fields    []FieldSlot
	SortField FieldID
	Options   Options
	User      UserFilter
	PIDs      []int
	MaxTasks  int
	Find      string

	BegTask   int
	BegField  int
	VarOffset int

	layout Layout
	budget int
	tasks  []*model.Task
}

// WindowDefaults seed a window at startup and on reset.
type WindowDefaults struct {
	Name    string
	Fields  []FieldID
	Sort    FieldID
	Options Options

	// Slots, when set, replace Fields and keep the position of disabled
	// fields. Saved configurations use it.
	Slots    []FieldSlot
	MaxTasks int
}

var baseOptions = Options{
	Visible:          true,
	ShowIdle:         true,
	Descending:       true,
	HighlightRunning: true,
	ShowLoad:         true,
	ShowStates:       true,
	ShowMemory:       true,
}

// DefaultWindows are the four stock field groups.
var DefaultWindows = [NumWindows]WindowDefaults{
	{
		Name: "Def",
		Fields: []FieldID{FieldPID, FieldUser, FieldPR, FieldNI, FieldVirt, FieldRes, FieldShr,
			FieldState, FieldCPU, FieldMem, FieldTimePlus, FieldCommand},
		Sort:    FieldCPU,
		Options: baseOptions,
	},
	{
		Name: "Job",
		Fields: []FieldID{FieldPID, FieldPPID, FieldTimePlus, FieldCPU, FieldMem, FieldPR, FieldNI,
			FieldState, FieldVirt, FieldRes, FieldUID, FieldCommand},
		Sort:    FieldPID,
		Options: baseOptions,
	},
	{
		Name: "Mem",
		Fields: []FieldID{FieldPID, FieldMem, FieldVirt, FieldRes, FieldCode, FieldData, FieldShr,
			FieldMajFlt, FieldMinFlt, FieldDirty, FieldCPU, FieldCommand},
		Sort:    FieldMem,
		Options: baseOptions,
	},
	{
		Name: "Usr",
		Fields: []FieldID{FieldPID, FieldPPID, FieldUID, FieldUser, FieldRUID, FieldTTY,
			FieldTimePlus, FieldCPU, FieldMem, FieldState, FieldCommand},
		Sort:    FieldUser,
		Options: func() Options { o := baseOptions; o.Descending = false; return o }(),
	},
}

// NewWindow builds window num (1-based) from defaults. Fields the
// defaults leave out follow in catalog order, disabled.
func NewWindow(num int, d WindowDefaults) *Window {
	w := &Window{Num: num}
	w.Reset(d)
	return w
}

// Reset restores the window's fields, sort and options, and clears its
// filters and scroll state.
func (w *Window) Reset(d WindowDefaults) {
	w.Name = d.Name
	w.SortField = d.Sort
	w.Options = d.Options
	w.Fields = w.Fields[:0]
	seen := make([]bool, NumFields)
	slots := d.Slots
	if slots == nil {
		for _, id := range d.Fields {
			slots = append(slots, FieldSlot{ID: id, Enabled: true})
		}
	}
	for _, s := range slots {
		if s.ID < 0 || s.ID >= NumFields || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		w.Fields = append(w.Fields, s)
	}
	for id := FieldID(0); id < NumFields; id++ {
		if !seen[id] {
			w.Fields = append(w.Fields, FieldSlot{ID: id})
		}
	}
	w.User = UserFilter{}
	w.PIDs = nil
	w.MaxTasks = d.MaxTasks
	w.Find = ""
	w.BegTask, w.BegField, w.VarOffset = 0, 0, 0
}

// Defaults captures the window's current definition.
func (w *Window) Defaults() WindowDefaults {
	return WindowDefaults{
		Name:     w.Name,
		Sort:     w.SortField,
		Options:  w.Options,
		Slots:    slices.Clone(w.Fields),
		MaxTasks: w.MaxTasks,
	}
}

// Enabled returns the enabled fields in display order.
func (w *Window) Enabled() []FieldID {
	ids := make([]FieldID, 0, len(w.Fields))
	for _, s := range w.Fields {
		if s.Enabled {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func (w *Window) slot(id FieldID) int {
	return slices.IndexFunc(w.Fields, func(s FieldSlot) bool { return s.ID == id })
}

// ToggleField flips whether id is shown.
func (w *Window) ToggleField(id FieldID) {
	if i := w.slot(id); i >= 0 {
		w.Fields[i].Enabled = !w.Fields[i].Enabled
	}
}

// MoveField shifts id by delta positions within the field order.
func (w *Window) MoveField(id FieldID, delta int) {
	i := w.slot(id)
	if i < 0 {
		return
	}
	j := min(max(i+delta, 0), len(w.Fields)-1)
	s := w.Fields[i]
	w.Fields = slices.Delete(w.Fields, i, i+1)
	w.Fields = slices.Insert(w.Fields, j, s)
}

// Clamp keeps the scroll offsets inside the task and field counts.
func (w *Window) Clamp(taskCount, fieldCount int) {
	w.BegTask = min(w.BegTask, taskCount-1)
	w.BegTask = max(w.BegTask, 0)
	w.BegField = min(w.BegField, fieldCount-1)
	w.BegField = max(w.BegField, 0)
	w.VarOffset = max(w.VarOffset, 0)
}

// Layout returns the calibration from the last frame.
func (w *Window) Layout() Layout {
	return w.layout
}

// Budget returns the rows granted to the window this frame.
func (w *Window) Budget() int {
	return w.budget
}

// PIDAllowed reports whether t passes the pid allow-list.
func (w *Window) PIDAllowed(t *model.Task) bool {
	return len(w.PIDs) == 0 || slices.Contains(w.PIDs, t.PID)
}

// show reports whether t passes every row filter of the window.
func (w *Window) show(t *model.Task) bool {
	if !w.Options.ShowIdle && t.Ticks == 0 {
		return false
	}
	return w.User.Match(t) && w.PIDAllowed(t)
}
