package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ftahirops/ptop/collector"
	"github.com/ftahirops/ptop/model"
)

var (
	ErrSource           = errors.New("task source failed")
	ErrCounters         = errors.New("cpu counters unavailable")
	ErrTerminalTooSmall = errors.New("terminal too small")
	ErrTerminated       = errors.New("terminated")
)

const (
	minCols = 10
	minRows = 4

	memRefresh = 3 * time.Second
)

// Flags are set from signal handlers and consumed at the top of a frame.
type Flags struct {
	resize    atomic.Bool
	terminate atomic.Bool
}

// Resize asks the next frame to recalibrate.
func (f *Flags) Resize() { f.resize.Store(true) }

// Terminate asks the next frame to stop.
func (f *Flags) Terminate() { f.terminate.Store(true) }

// UserResolver turns a user name or number into a uid.
type UserResolver interface {
	LookupUID(name string) (int, error)
}

// Settings seed an engine at startup.
type Settings struct {
	PIDMax       uint64
	PageKB       uint64
	Threads      bool
	Irix         bool
	MultiWindow  bool
	Current      int // window index, 0-based
	Monitor      []int
	Delay        time.Duration
	Windows      [NumWindows]WindowDefaults
	Widths       map[FieldID]int
	TaskScale    Scale
	SummaryScale Scale
	ZeroSuppress bool
	Users        UserResolver
	Actions      TaskActions
}

// DefaultSettings returns the stock engine settings.
func DefaultSettings() Settings {
	return Settings{
		PIDMax:  32768,
		PageKB:  4,
		Delay:   3 * time.Second,
		Windows: DefaultWindows,
	}
}

// Engine owns everything one frame needs. It is driven from a single
// goroutine; only Flags may be touched from elsewhere.
type Engine struct {
	src collector.Sources

	Catalog      *Catalog
	Windows      [NumWindows]*Window
	Current      int
	MultiWindow  bool
	Threads      bool
	Irix         bool
	SummaryScale Scale
	Delay        time.Duration
	Monitor      []int
	Flags        Flags

	users   UserResolver
	actions TaskActions

	history *History
	cpus    *CPUs
	forest  Forest
	pool    []*model.Task
	tasks   []*model.Task
	trees   []*model.Task
	counts  model.TaskCounts

	sys   model.SysSnapshot
	memAt time.Time

	need        model.Need
	recalibrate bool
	cols, rows  int
	frames      uint64
	phase       Phase
	now         func() time.Time
}

// New builds an engine reading from src.
func New(src collector.Sources, s Settings) (*Engine, error) {
	e := &Engine{
		src:          src,
		Catalog:      NewCatalog(),
		Current:      s.Current,
		MultiWindow:  s.MultiWindow,
		Threads:      s.Threads,
		Irix:         s.Irix,
		SummaryScale: s.SummaryScale,
		Delay:        s.Delay,
		Monitor:      s.Monitor,
		users:        s.Users,
		actions:      s.Actions,
		history:      NewHistory(),
		cpus:         NewCPUs(src.Counters),
		need:         model.NeedDefault,
		recalibrate:  true,
		now:          time.Now,
	}
	if e.actions == nil {
		e.actions = SystemActions{}
	}
	if e.Current < 0 || e.Current >= NumWindows {
		e.Current = 0
	}
	if s.PageKB > 0 {
		e.Catalog.PageKB = s.PageKB
	}
	e.Catalog.TaskScale = s.TaskScale
	e.Catalog.ZeroSuppress = s.ZeroSuppress
	if err := e.Catalog.SetPIDMax(s.PIDMax); err != nil {
		return nil, err
	}
	for id, w := range s.Widths {
		e.Catalog.SetWidth(id, w)
	}
	for i := range e.Windows {
		e.Windows[i] = NewWindow(i+1, s.Windows[i])
	}
	return e, nil
}

// Prime takes a first sample without rendering so the first frame shows
// rates rather than totals since boot.
func (e *Engine) Prime() error {
	if _, err := e.refreshCPUs(); err != nil {
		return err
	}
	return e.refreshTasks()
}

// Cur returns the current window.
func (e *Engine) Cur() *Window {
	return e.Windows[e.Current]
}

// Counts returns the task state tally of the last frame.
func (e *Engine) Counts() model.TaskCounts {
	return e.counts
}

// Tasks returns the tasks read during the last frame, in snapshot order.
func (e *Engine) Tasks() []*model.Task {
	return e.tasks
}

// CPUs returns the cpu aggregator.
func (e *Engine) CPUs() *CPUs {
	return e.cpus
}

// Need is the data union requested from the task source.
func (e *Engine) Need() model.Need {
	return e.need
}

// Recalibrate forces calibration on the next frame.
func (e *Engine) Recalibrate() {
	e.recalibrate = true
}

// visible lists the windows drawn this frame, in window order.
func (e *Engine) visible() []*Window {
	if !e.MultiWindow {
		return []*Window{e.Cur()}
	}
	var ws []*Window
	for _, w := range e.Windows {
		if w.Options.Visible {
			ws = append(ws, w)
		}
	}
	return ws
}

func (e *Engine) headerPrefix(w *Window) string {
	if !e.MultiWindow {
		return ""
	}
	return fmt.Sprint(w.Num)
}

// calibrate lays out every visible window and recomputes the data need.
func (e *Engine) calibrate() {
	need := model.NeedDefault
	for _, w := range e.visible() {
		w.layout = Calibrate(e.Catalog, w, e.cols, e.headerPrefix(w))
		need |= w.layout.Need
	}
	e.need = need
	e.recalibrate = false
}

// refreshTasks reads the whole task table into the pool and merges it
// against the previous frame.
func (e *Engine) refreshTasks() (err error) {
	r, err := e.src.Tasks.Open(e.need, e.Monitor, e.Threads)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSource, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrSource, cerr)
		}
	}()

	e.history.BeginFrame()
	e.counts = model.TaskCounts{}
	n := 0
	for {
		if n == len(e.pool) {
			e.growPool()
		}
		t := e.pool[n]
		t.Reset()
		ok, err := r.Next(t)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSource, err)
		}
		if !ok {
			break
		}
		d := e.history.Record(t.PID, t.StartTime, Counters{
			Ticks:  t.TotalTime(false),
			MajFlt: t.MajFlt,
			MinFlt: t.MinFlt,
		})
		t.Ticks, t.MajDelta, t.MinDelta = d.Ticks, d.MajFlt, d.MinFlt
		e.counts.Add(t.State)
		n++
	}
	e.tasks = e.pool[:n]
	return nil
}

func (e *Engine) growPool() {
	n := len(e.pool)
	grown := n + n/4 + 10
	for i := n; i < grown; i++ {
		e.pool = append(e.pool, &model.Task{})
	}
}

// refreshCPUs updates the cpu counters and re-derives the cpu columns
// when cpus came or went.
func (e *Engine) refreshCPUs() (bool, error) {
	hotplug, err := e.cpus.Refresh()
	if err != nil {
		return false, err
	}
	if hotplug {
		if err := e.Catalog.SetCPUs(e.cpus.Count(), e.Irix, e.Threads); err != nil {
			return false, err
		}
		e.recalibrate = true
	}
	return hotplug, nil
}

// refreshSys updates uptime and load every frame and memory when due.
// Failures keep the previous figures.
func (e *Engine) refreshSys() {
	if e.src.Sys == nil {
		return
	}
	if s, err := e.src.Sys.System(); err == nil {
		mem := e.sys.Mem
		e.sys = s
		e.sys.Mem = mem
	}
	now := e.now()
	if e.memAt.IsZero() || now.Sub(e.memAt) >= memRefresh {
		if m, err := e.src.Sys.Memory(); err == nil {
			e.sys.Mem = m
			e.memAt = now
		}
	}
}

// etScale is the %CPU contributed by one task tick this frame.
func (e *Engine) etScale() float64 {
	elapsed := e.cpus.Elapsed()
	if elapsed == 0 {
		return 0
	}
	ncpu := float64(e.cpus.Count())
	perCPU := float64(elapsed) / ncpu
	if e.Irix {
		return 100 / perCPU
	}
	return 100 / (perCPU * ncpu)
}
