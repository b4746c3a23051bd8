package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sys/unix"

	"github.com/ftahirops/ptop/collector"
	"github.com/ftahirops/ptop/config"
	"github.com/ftahirops/ptop/engine"
	"github.com/ftahirops/ptop/ui"
	"github.com/ftahirops/ptop/util"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

const procRoot = "/proc"

// Options holds the command line.
type Options struct {
	Delay      float64 // seconds, negative keeps the configured delay
	Iterations int
	Batch      bool
	PIDs       string
	User       string
	AnyUser    string
	Threads    bool
	Idle       bool
	CmdLine    bool
	Cumulative bool
	Sort       string
	Width      int
	ConfigPath string
	Version    bool
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ptop v%s - interactive process monitor

Usage:
  ptop [OPTIONS] [DELAY]

Options:
  -d SECS        Delay between refreshes (default: from config, 3)
  -n N           Exit after N frames (0 = run until quit)
  -b             Batch mode: write frames to stdout, no keyboard input
  -p PID,...     Monitor only these pids
  -u USER        Show only tasks whose effective user is USER
  -U USER        Show only tasks where any uid is USER
  -H             Toggle threads mode
  -i             Toggle idle tasks
  -c             Toggle command line / program name
  -S             Toggle cumulative time
  -o FIELD       Sort by FIELD (e.g. %%MEM, PID, TIME+)
  -w COLS        Batch mode output width
  -config PATH   Configuration file (default: %s)
  -version       Print version and exit

Positional:
  DELAY          Same as -d: ptop 5 = ptop -d 5

Interactive keys are listed on the help screen (h or ?).
`, Version, config.Path())
}

// parseArgs reads the command line into Options.
func parseArgs(args []string) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("ptop", flag.ContinueOnError)
	fs.Usage = printUsage
	fs.Float64Var(&opts.Delay, "d", -1, "Delay between refreshes in seconds")
	fs.IntVar(&opts.Iterations, "n", 0, "Number of frames before exiting (0=infinite)")
	fs.BoolVar(&opts.Batch, "b", false, "Batch mode")
	fs.StringVar(&opts.PIDs, "p", "", "Monitor only these pids")
	fs.StringVar(&opts.User, "u", "", "Effective user filter")
	fs.StringVar(&opts.AnyUser, "U", "", "Any-uid user filter")
	fs.BoolVar(&opts.Threads, "H", false, "Toggle threads mode")
	fs.BoolVar(&opts.Idle, "i", false, "Toggle idle tasks")
	fs.BoolVar(&opts.CmdLine, "c", false, "Toggle command line")
	fs.BoolVar(&opts.Cumulative, "S", false, "Toggle cumulative time")
	fs.StringVar(&opts.Sort, "o", "", "Sort field")
	fs.IntVar(&opts.Width, "w", 0, "Batch mode output width")
	fs.StringVar(&opts.ConfigPath, "config", "", "Configuration file")
	fs.BoolVar(&opts.Version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	// `ptop 5` = `ptop -d 5`
	if rest := fs.Args(); len(rest) > 0 {
		d, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return opts, fmt.Errorf("bad delay %q", rest[0])
		}
		opts.Delay = d
	}
	if opts.Iterations < 0 {
		return opts, fmt.Errorf("bad iterations %d", opts.Iterations)
	}
	if opts.Width < 0 {
		return opts, fmt.Errorf("bad width %d", opts.Width)
	}
	if opts.User != "" && opts.AnyUser != "" {
		return opts, errors.New("-u and -U are mutually exclusive")
	}
	return opts, nil
}

// Run parses flags and starts the application.
func Run() error {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.Version {
		fmt.Printf("ptop v%s\n", Version)
		return nil
	}

	// Keep log output off the alternate screen.
	if !opts.Batch {
		closeLog := redirectLog()
		defer closeLog()
	}

	cfg := config.Load(opts.ConfigPath)
	settings, msgs := cfg.Settings(engine.DefaultSettings())
	src, err := collector.NewSources(procRoot)
	if err != nil {
		return err
	}
	e, err := newEngine(src, settings, opts)
	if err != nil {
		return err
	}

	if opts.Batch {
		for _, m := range msgs {
			log.Printf("ptop: warning: %s", m)
		}
		return runBatch(e, opts, os.Stdout)
	}

	m := ui.NewModel(e, opts.ConfigPath, opts.Iterations, msgs)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.Err()
}

// newEngine builds the engine from the configured settings, applies the
// command line over them and takes the first sample.
func newEngine(src collector.Sources, s engine.Settings, opts Options) (*engine.Engine, error) {
	if opts.Delay >= 0 {
		s.Delay = durationOf(opts.Delay)
	}
	if opts.Threads {
		s.Threads = !s.Threads
	}
	if opts.PIDs != "" {
		pids, err := util.ParsePIDList(opts.PIDs)
		if err != nil {
			return nil, err
		}
		s.Monitor = pids
	}
	if pidMax, err := collector.ReadPIDMax(procRoot); err == nil {
		s.PIDMax = pidMax
	} else {
		log.Printf("ptop: warning: %v", err)
	}
	s.PageKB = uint64(unix.Getpagesize()) / 1024
	if pts, ok := src.Tasks.(*collector.ProcTaskSource); ok {
		s.Users = pts.Users
	}

	e, err := engine.New(src, s)
	if err != nil {
		return nil, err
	}
	if err := applyOptions(e, opts); err != nil {
		return nil, err
	}
	if err := e.Prime(); err != nil {
		return nil, err
	}
	return e, nil
}

func durationOf(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// applyOptions turns the command line toggles into commands on the
// current window.
func applyOptions(e *engine.Engine, opts Options) error {
	var cmds []engine.Command
	if opts.Idle {
		cmds = append(cmds, engine.ToggleOption{Opt: engine.OptShowIdle})
	}
	if opts.CmdLine {
		cmds = append(cmds, engine.ToggleOption{Opt: engine.OptCmdLine})
	}
	if opts.Cumulative {
		cmds = append(cmds, engine.ToggleOption{Opt: engine.OptChildTimes})
	}
	if opts.Sort != "" {
		cmds = append(cmds, engine.SortByName{Name: opts.Sort})
	}
	if opts.User != "" {
		cmds = append(cmds, engine.FilterUser{Mode: 'u', User: opts.User})
	}
	if opts.AnyUser != "" {
		cmds = append(cmds, engine.FilterUser{Mode: 'U', User: opts.AnyUser})
	}
	for _, c := range cmds {
		if err := e.Apply(c); err != nil {
			return err
		}
	}
	return nil
}

// redirectLog sends the standard logger to the state log file, or
// discards it when the file cannot be opened.
func redirectLog() func() {
	path := logPath()
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err == nil {
				log.SetOutput(f)
				return func() {
					log.SetOutput(os.Stderr)
					f.Close()
				}
			}
		}
	}
	log.SetOutput(io.Discard)
	return func() { log.SetOutput(os.Stderr) }
}

// logPath returns $XDG_STATE_HOME/ptop/ptop.log (~/.local/state fallback).
func logPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "ptop", "ptop.log")
}
