package model

// Task holds one process (or thread) as observed in the current frame.
// The snapshot source fills the raw attributes; the engine only writes the
// derived per-frame fields Ticks, MajDelta, MinDelta and Level.
type Task struct {
	PID     int
	PPID    int
	TGID    int
	PGRP    int
	Session int
	TTY     int
	TPGID   int

	State     byte
	StartTime uint64 // clock ticks since boot

	UTime  uint64
	STime  uint64
	CUTime uint64
	CSTime uint64

	MajFlt uint64
	MinFlt uint64

	Priority   int
	Nice       int
	NumThreads int
	Processor  int
	Flags      uint64

	// Memory, in pages unless noted.
	Size     uint64 // VIRT
	Resident uint64
	Share    uint64
	Text     uint64 // CODE
	Data     uint64
	Dirty    uint64
	SwapKB   uint64

	EUID, RUID, SUID, FUID int
	EGID                   int
	EUser, RUser, SUser    string
	EGroup                 string
	SupGIDs                string
	SupGroups              string

	Comm    string
	Cmdline string
	Cgroup  string
	Environ string
	WChan   string

	// Derived by the history merge.
	Ticks    uint64
	MajDelta uint64
	MinDelta uint64

	// Forest indent level, written by the forest builder.
	Level int
}

// TotalTime returns utime+stime, optionally with the reaped children's time.
func (t *Task) TotalTime(children bool) uint64 {
	v := t.UTime + t.STime
	if children {
		v += t.CUTime + t.CSTime
	}
	return v
}

// Reset clears a pooled task before the source refills it.
func (t *Task) Reset() {
	*t = Task{}
}

// Need is a set of raw data groups a snapshot source must collect.
type Need uint32

const (
	NeedStat Need = 1 << iota
	NeedStatm
	NeedStatus
	NeedCmdline
	NeedEnviron
	NeedCgroup
	NeedUser
	NeedGroup
	NeedSupGroups
	NeedWchan
	// NeedNone marks a field that is populated as a side effect of listing
	// the task (pid, euid).
	NeedNone
)

// NeedDefault is used when nothing else is requested.
const NeedDefault = NeedStat

// Has reports whether every group in o is part of n.
func (n Need) Has(o Need) bool { return n&o == o }

// With returns the union of n and o.
func (n Need) With(o Need) Need { return n | o }

// TaskCounts tallies task states for the summary area.
type TaskCounts struct {
	Total    int
	Running  int
	Sleeping int
	Stopped  int
	Zombie   int
}

// Add counts one task state.
func (c *TaskCounts) Add(state byte) {
	c.Total++
	switch state {
	case 'R':
		c.Running++
	case 'S', 'D':
		c.Sleeping++
	case 'T', 't':
		c.Stopped++
	case 'Z':
		c.Zombie++
	}
}
