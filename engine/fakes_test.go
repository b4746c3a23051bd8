package engine

import (
	"errors"
	"syscall"
	"time"

	"github.com/ftahirops/ptop/collector"
	"github.com/ftahirops/ptop/model"
)

// fakeTasks replays one task table per Open; the last one repeats.
type fakeTasks struct {
	frames [][]model.Task
	opens  int
	needs  []model.Need
	err    error
}

func (f *fakeTasks) Open(need model.Need, _ []int, _ bool) (collector.TaskReader, error) {
	f.needs = append(f.needs, need)
	if f.err != nil {
		return nil, f.err
	}
	i := min(f.opens, len(f.frames)-1)
	f.opens++
	var tasks []model.Task
	if i >= 0 {
		tasks = f.frames[i]
	}
	return &fakeReader{tasks: tasks}, nil
}

type fakeReader struct {
	tasks []model.Task
	i     int
}

func (r *fakeReader) Next(t *model.Task) (bool, error) {
	if r.i >= len(r.tasks) {
		return false, nil
	}
	*t = r.tasks[r.i]
	r.i++
	return true, nil
}

func (r *fakeReader) Close() error { return nil }

// fakeCounters advances every cpu by user and idle ticks per read.
type fakeCounters struct {
	ncpu       int
	user, idle uint64
	cur        []model.CPUTimes
	bad        int // index of a malformed per-cpu line, -1 for none
	err        error
}

func newFakeCounters(ncpu int, user, idle uint64) *fakeCounters {
	return &fakeCounters{ncpu: ncpu, user: user, idle: idle, bad: -1}
}

func (f *fakeCounters) ReadCPUs() (model.CPULine, []model.CPULine, error) {
	if f.err != nil {
		return model.CPULine{}, nil, f.err
	}
	if len(f.cur) != f.ncpu {
		f.cur = make([]model.CPUTimes, f.ncpu)
	}
	sum := model.CPULine{ID: -1, OK: true}
	lines := make([]model.CPULine, f.ncpu)
	for i := range f.cur {
		f.cur[i].User += f.user
		f.cur[i].Idle += f.idle
		sum.Times.User += f.cur[i].User
		sum.Times.Idle += f.cur[i].Idle
		lines[i] = model.CPULine{ID: i, Times: f.cur[i], OK: i != f.bad}
	}
	return sum, lines, nil
}

type fakeSys struct {
	mem model.MemInfo
}

func (f *fakeSys) System() (model.SysSnapshot, error) {
	return model.SysSnapshot{
		Timestamp: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
		Uptime:    26 * time.Hour,
		Users:     1,
		Load:      model.LoadAvg{Load1: 0.5, Load5: 0.25, Load15: 0.1},
	}, nil
}

func (f *fakeSys) Memory() (model.MemInfo, error) {
	return f.mem, nil
}

type fakeSink struct {
	cols, rows int
	lines      []Line
}

func (s *fakeSink) Dimensions() (int, int) { return s.cols, s.rows }
func (s *fakeSink) WriteLine(l Line)      { s.lines = append(s.lines, l) }

func (s *fakeSink) kind(k LineKind) []Line {
	var out []Line
	for _, l := range s.lines {
		if l.Kind == k {
			out = append(out, l)
		}
	}
	return out
}

func (s *fakeSink) window(num int) []Line {
	var out []Line
	for _, l := range s.lines {
		if l.Kind == LineTask && l.Window == num {
			out = append(out, l)
		}
	}
	return out
}

type signalCall struct {
	pid int
	sig syscall.Signal
}

type fakeActions struct {
	signals []signalCall
	nices   [][2]int
	err     error
}

func (a *fakeActions) Signal(pid int, sig syscall.Signal) error {
	a.signals = append(a.signals, signalCall{pid, sig})
	return a.err
}

func (a *fakeActions) Renice(pid, nice int) error {
	a.nices = append(a.nices, [2]int{pid, nice})
	return a.err
}

type fakeUsers map[string]int

func (u fakeUsers) LookupUID(name string) (int, error) {
	if uid, ok := u[name]; ok {
		return uid, nil
	}
	return 0, errors.New("no such user")
}

// testEngine builds an engine over the given task frames with two cpus
// that each tick 50 user and 50 idle per frame.
func testEngine(frames ...[]model.Task) (*Engine, *fakeTasks, *fakeActions) {
	ft := &fakeTasks{frames: frames}
	fa := &fakeActions{}
	s := DefaultSettings()
	s.Actions = fa
	s.Users = fakeUsers{"alice": 1000}
	e, err := New(collector.Sources{
		Tasks:    ft,
		Counters: newFakeCounters(2, 50, 50),
		Sys:      &fakeSys{mem: model.MemInfo{Total: 1000, Free: 400, Used: 600}},
	}, s)
	if err != nil {
		panic(err)
	}
	return e, ft, fa
}
