package collector

import "github.com/ftahirops/ptop/model"

// TaskSource opens one pass over the process table. It is reopened every
// frame with the union of the data groups the visible columns need.
type TaskSource interface {
	Open(need model.Need, pids []int, threads bool) (TaskReader, error)
}

// TaskReader yields tasks one at a time until it returns false.
type TaskReader interface {
	Next(t *model.Task) (bool, error)
	Close() error
}

// CounterSource reads the aggregate and per-CPU tick counters.
type CounterSource interface {
	ReadCPUs() (sum model.CPULine, cpus []model.CPULine, err error)
}

// SysSource supplies the figures shown in the summary area.
type SysSource interface {
	System() (model.SysSnapshot, error)
	Memory() (model.MemInfo, error)
}

// Sources bundles the collaborators the engine reads from.
type Sources struct {
	Tasks    TaskSource
	Counters CounterSource
	Sys      SysSource
}

// NewSources returns the /proc backed sources rooted at procRoot.
func NewSources(procRoot string) (Sources, error) {
	tasks, err := NewProcTaskSource(procRoot)
	if err != nil {
		return Sources{}, err
	}
	sys, err := NewSysInfo(procRoot)
	if err != nil {
		return Sources{}, err
	}
	return Sources{
		Tasks:    tasks,
		Counters: &StatCounters{Path: procRoot + "/stat"},
		Sys:      sys,
	}, nil
}
