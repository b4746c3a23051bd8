package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/ptop/engine"
)

// keyMap holds the keys handled by the model itself. Keys that map
// straight to an engine command live in commandKeys.
type keyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Refresh key.Binding
	Suspend key.Binding
	Save    key.Binding
	Fields  key.Binding

	MaxTasks   key.Binding
	User       key.Binding
	AnyUser    key.Binding
	PIDs       key.Binding
	Locate     key.Binding
	Kill       key.Binding
	Renice     key.Binding
	Delay      key.Binding
	Rename     key.Binding
	Group      key.Binding
	SortByName key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:    key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h/?", "help")),
	Refresh: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "refresh now")),
	Suspend: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("^Z", "suspend")),
	Save:    key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "write config")),
	Fields:  key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "manage fields")),

	MaxTasks:   key.NewBinding(key.WithKeys("n", "#"), key.WithHelp("n/#", "max tasks")),
	User:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "effective user")),
	AnyUser:    key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "any user")),
	PIDs:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pid filter")),
	Locate:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "locate")),
	Kill:       key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "kill")),
	Renice:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "renice")),
	Delay:      key.NewBinding(key.WithKeys("d", "s"), key.WithHelp("d/s", "delay")),
	Rename:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "rename window")),
	Group:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "choose window")),
	SortByName: key.NewBinding(key.WithKeys("o", "O"), key.WithHelp("o", "sort by name")),
}

type commandKey struct {
	binding key.Binding
	cmd     engine.Command
}

func bind(k, help string, cmd engine.Command) commandKey {
	return commandKey{key.NewBinding(key.WithKeys(k), key.WithHelp(k, help)), cmd}
}

var commandKeys = []commandKey{
	bind("R", "reverse sort", engine.ToggleOption{Opt: engine.OptDescending}),
	bind("V", "forest view", engine.ToggleOption{Opt: engine.OptForest}),
	bind("i", "idle tasks", engine.ToggleOption{Opt: engine.OptShowIdle}),
	bind("c", "command line", engine.ToggleOption{Opt: engine.OptCmdLine}),
	bind("S", "cumulative time", engine.ToggleOption{Opt: engine.OptChildTimes}),
	bind("J", "numbers left", engine.ToggleOption{Opt: engine.OptNumbersLeft}),
	bind("j", "strings right", engine.ToggleOption{Opt: engine.OptStringsRight}),
	bind("x", "sort column", engine.ToggleOption{Opt: engine.OptHighlightSort}),
	bind("y", "running tasks", engine.ToggleOption{Opt: engine.OptHighlightRunning}),
	bind("l", "load line", engine.ToggleOption{Opt: engine.OptShowLoad}),
	bind("t", "task/cpu states", engine.ToggleOption{Opt: engine.OptShowStates}),
	bind("m", "memory lines", engine.ToggleOption{Opt: engine.OptShowMemory}),
	bind("1", "per-cpu lines", engine.ToggleOption{Opt: engine.OptPerCPU}),
	bind("-", "show window", engine.ToggleOption{Opt: engine.OptVisible}),

	bind("<", "sort left", engine.SortStep{Delta: -1}),
	bind(">", "sort right", engine.SortStep{Delta: 1}),
	bind("M", "sort %MEM", engine.SortBy{ID: engine.FieldMem}),
	bind("N", "sort PID", engine.SortBy{ID: engine.FieldPID}),
	bind("P", "sort %CPU", engine.SortBy{ID: engine.FieldCPU}),
	bind("T", "sort TIME+", engine.SortBy{ID: engine.FieldTimePlus}),
	bind("&", "locate next", engine.LocateNext{}),

	bind("up", "scroll up", engine.Scroll{Dir: engine.ScrollUp}),
	bind("down", "scroll down", engine.Scroll{Dir: engine.ScrollDown}),
	bind("left", "scroll left", engine.Scroll{Dir: engine.ScrollLeft}),
	bind("right", "scroll right", engine.Scroll{Dir: engine.ScrollRight}),
	bind("pgup", "page up", engine.Scroll{Dir: engine.ScrollPageUp}),
	bind("pgdown", "page down", engine.Scroll{Dir: engine.ScrollPageDown}),
	bind("home", "first task", engine.Scroll{Dir: engine.ScrollHome}),
	bind("end", "last task", engine.Scroll{Dir: engine.ScrollEnd}),

	bind("a", "next window", engine.CycleWindow{Delta: 1}),
	bind("w", "previous window", engine.CycleWindow{Delta: -1}),
	bind("A", "multi-window", engine.ToggleMultiWindow{}),
	bind("_", "all windows", engine.ShowAllWindows{}),
	bind("+", "equalize windows", engine.EqualizeWindows{}),
	bind("=", "reset window", engine.ResetWindow{}),

	bind("I", "irix mode", engine.ToggleIrix{}),
	bind("H", "threads", engine.ToggleThreads{}),
	bind("0", "zero suppress", engine.ToggleZero{}),
	bind("e", "task memory scale", engine.CycleTaskScale{}),
	bind("E", "summary mem scale", engine.CycleSummaryScale{}),
}

// lookupCommand returns the engine command bound to msg.
func lookupCommand(msg tea.KeyMsg) (engine.Command, bool) {
	for _, ck := range commandKeys {
		if key.Matches(msg, ck.binding) {
			return ck.cmd, true
		}
	}
	return nil, false
}

// helpGroups lays out every binding for the help screen.
func helpGroups() [][]key.Binding {
	prompts := []key.Binding{keys.MaxTasks, keys.User, keys.AnyUser, keys.PIDs, keys.Locate,
		keys.Kill, keys.Renice, keys.Delay, keys.Rename, keys.Group, keys.SortByName}
	general := []key.Binding{keys.Quit, keys.Help, keys.Refresh, keys.Suspend, keys.Save, keys.Fields}
	groups := [][]key.Binding{general, prompts}
	var col []key.Binding
	for _, ck := range commandKeys {
		col = append(col, ck.binding)
		if len(col) == len(prompts) {
			groups = append(groups, col)
			col = nil
		}
	}
	if len(col) > 0 {
		groups = append(groups, col)
	}
	return groups
}
