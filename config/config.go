package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ftahirops/ptop/engine"
)

// Config is the saved session: global modes plus the four window
// definitions.
type Config struct {
	Delay        float64        `yaml:"delay"`
	MultiWindow  bool           `yaml:"multi_window"`
	Current      int            `yaml:"current_window"` // 1-based
	Irix         bool           `yaml:"irix"`
	Threads      bool           `yaml:"threads"`
	TaskScale    string         `yaml:"task_scale"`
	SummaryScale string         `yaml:"summary_scale"`
	ZeroSuppress bool           `yaml:"zero_suppress"`
	Widths       map[string]int `yaml:"widths,omitempty"`
	Windows      []Window       `yaml:"windows"`
}

// Window is one saved field group. Fields lists every column in display
// order; a leading '-' marks a hidden one.
type Window struct {
	Name     string   `yaml:"name"`
	Fields   []string `yaml:"fields"`
	Sort     string   `yaml:"sort"`
	MaxTasks int      `yaml:"max_tasks,omitempty"`
	Options  Options  `yaml:"options"`
}

// Options mirror engine.Options.
type Options struct {
	Visible          bool `yaml:"visible"`
	ShowIdle         bool `yaml:"show_idle"`
	Forest           bool `yaml:"forest"`
	CmdLine          bool `yaml:"command_line"`
	ChildTimes       bool `yaml:"child_times"`
	Descending       bool `yaml:"descending"`
	NumbersLeft      bool `yaml:"numbers_left"`
	StringsRight     bool `yaml:"strings_right"`
	HighlightSort    bool `yaml:"highlight_sort"`
	HighlightRunning bool `yaml:"highlight_running"`
	ShowLoad         bool `yaml:"show_load"`
	ShowStates       bool `yaml:"show_states"`
	ShowMemory       bool `yaml:"show_memory"`
	PerCPU           bool `yaml:"per_cpu"`
}

func optionsFrom(o engine.Options) Options {
	return Options(o)
}

func (o Options) engine() engine.Options {
	return engine.Options(o)
}

// Default returns the stock configuration.
func Default() Config {
	s := engine.DefaultSettings()
	cfg := Config{
		Delay:        s.Delay.Seconds(),
		Current:      s.Current + 1,
		TaskScale:    s.TaskScale.String(),
		SummaryScale: s.SummaryScale.String(),
	}
	for i := range s.Windows {
		w := engine.NewWindow(i+1, s.Windows[i])
		cfg.Windows = append(cfg.Windows, windowFrom(w.Defaults()))
	}
	return cfg
}

// FromEngine captures a running engine's state for saving. Widths are
// kept only for columns that grew past their default.
func FromEngine(e *engine.Engine) Config {
	cfg := Config{
		Delay:        e.Delay.Seconds(),
		MultiWindow:  e.MultiWindow,
		Current:      e.Current + 1,
		Irix:         e.Irix,
		Threads:      e.Threads,
		TaskScale:    e.Catalog.TaskScale.String(),
		SummaryScale: e.SummaryScale.String(),
		ZeroSuppress: e.Catalog.ZeroSuppress,
	}
	stock := engine.NewCatalog()
	for _, f := range e.Catalog.Fields() {
		if f.AutoX && f.Width > stock.Field(f.ID).Width {
			if cfg.Widths == nil {
				cfg.Widths = make(map[string]int)
			}
			cfg.Widths[f.Name] = f.Width
		}
	}
	for _, w := range e.Windows {
		cfg.Windows = append(cfg.Windows, windowFrom(w.Defaults()))
	}
	return cfg
}

func windowFrom(d engine.WindowDefaults) Window {
	cat := engine.NewCatalog()
	w := Window{
		Name:     d.Name,
		Sort:     cat.Field(d.Sort).Name,
		MaxTasks: d.MaxTasks,
		Options:  optionsFrom(d.Options),
	}
	for _, s := range d.Slots {
		name := cat.Field(s.ID).Name
		if !s.Enabled {
			name = "-" + name
		}
		w.Fields = append(w.Fields, name)
	}
	return w
}

// Settings applies the configuration over base. Problems are returned as
// messages; the affected value keeps its base setting.
func (c Config) Settings(base engine.Settings) (engine.Settings, []string) {
	s := base
	var msgs []string
	warn := func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Delay > 0:
		s.Delay = time.Duration(c.Delay * float64(time.Second))
	case c.Delay < 0:
		warn("invalid delay %g", c.Delay)
	}
	s.MultiWindow = c.MultiWindow
	if c.Current >= 1 && c.Current <= engine.NumWindows {
		s.Current = c.Current - 1
	} else if c.Current != 0 {
		warn("invalid current window %d", c.Current)
	}
	s.Irix = c.Irix
	s.Threads = c.Threads
	s.ZeroSuppress = c.ZeroSuppress
	if c.TaskScale != "" {
		if sc, err := engine.ParseScale(c.TaskScale); err == nil && sc <= engine.ScalePiB {
			s.TaskScale = sc
		} else {
			warn("invalid task memory scale %q", c.TaskScale)
		}
	}
	if c.SummaryScale != "" {
		if sc, err := engine.ParseScale(c.SummaryScale); err == nil {
			s.SummaryScale = sc
		} else {
			warn("invalid summary memory scale %q", c.SummaryScale)
		}
	}

	if len(c.Widths) > 0 {
		widths := make(map[engine.FieldID]int, len(base.Widths)+len(c.Widths))
		for id, w := range base.Widths {
			widths[id] = w
		}
		for name, w := range c.Widths {
			id, err := engine.FieldByName(name)
			if err != nil || w < 1 {
				warn("invalid width for %q", name)
				continue
			}
			widths[id] = w
		}
		s.Widths = widths
	}

	for i, w := range c.Windows {
		if i >= engine.NumWindows {
			warn("ignoring window %d", i+1)
			continue
		}
		d, err := w.defaults()
		if err != nil {
			warn("window %d: %v", i+1, err)
			continue
		}
		s.Windows[i] = d
	}
	return s, msgs
}

func (w Window) defaults() (engine.WindowDefaults, error) {
	sort, err := engine.FieldByName(w.Sort)
	if err != nil {
		return engine.WindowDefaults{}, fmt.Errorf("sort: %w", err)
	}
	d := engine.WindowDefaults{
		Name:     w.Name,
		Sort:     sort,
		Options:  w.Options.engine(),
		MaxTasks: max(w.MaxTasks, 0),
		Slots:    make([]engine.FieldSlot, 0, len(w.Fields)),
	}
	for _, name := range w.Fields {
		enabled := !strings.HasPrefix(name, "-")
		id, err := engine.FieldByName(strings.TrimPrefix(name, "-"))
		if err != nil {
			return engine.WindowDefaults{}, err
		}
		d.Slots = append(d.Slots, engine.FieldSlot{ID: id, Enabled: enabled})
	}
	return d, nil
}

// Path returns ~/.config/ptop/config.yaml (or under XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ptop", "config.yaml")
}

// Load reads the config at path, or Path() when empty; returns defaults
// on error.
func Load(path string) Config {
	cfg := Default()
	if path == "" {
		path = Path()
	}
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("ptop: warning: config read error: %v", err)
		}
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("ptop: warning: config parse error: %v", err)
		return Default()
	}
	return cfg
}

// Save writes the config to path, or Path() when empty.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
