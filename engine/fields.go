package engine

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ftahirops/ptop/model"
	"github.com/ftahirops/ptop/util"
)

// FieldID indexes the field catalog.
type FieldID int

const (
	FieldPID FieldID = iota
	FieldPPID
	FieldUID
	FieldUser
	FieldRUID
	FieldRUser
	FieldSUID
	FieldSUser
	FieldGID
	FieldGroup
	FieldPGRP
	FieldTTY
	FieldTPGID
	FieldSID
	FieldPR
	FieldNI
	FieldThreads
	FieldCPUNum
	FieldCPU
	FieldTime
	FieldTimePlus
	FieldMem
	FieldVirt
	FieldSwap
	FieldRes
	FieldCode
	FieldData
	FieldShr
	FieldMajFlt
	FieldMinFlt
	FieldDirty
	FieldState
	FieldCommand
	FieldWChan
	FieldFlags
	FieldCgroups
	FieldSupGIDs
	FieldSupGroups
	FieldTGID
	FieldEnviron
	FieldMajDelta
	FieldMinDelta
	NumFields
)

// varWidth marks a column that takes its share of the leftover screen width.
const varWidth = -1

// Align is a column's default justification. Windows flip either class.
type Align int

const (
	AlignNumber Align = iota // right unless NumbersLeft
	AlignString              // left unless StringsRight
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrWidePID      = errors.New("pid_max needs more than 10 digits")
	ErrWideCPU      = errors.New("cpu count needs more than 5 digits")
)

// Field describes one column: its header, geometry, the data it needs and
// how it is rendered and compared.
type Field struct {
	ID     FieldID
	Name   string
	Desc   string
	Width  int
	Scaled bool
	Align  Align
	Need   model.Need
	AutoX  bool // width grows when a cell is truncated

	cell    func(c *cellCtx, t *model.Task) string
	compare func(a, b *model.Task, o Options) int
}

// Variable reports whether the column takes leftover width.
func (f *Field) Variable() bool { return f.Width == varWidth }

type cellCtx struct {
	cat   *Catalog
	f     *Field
	win   *Window
	width int
	right bool
}

func (c *cellCtx) num(n int64) string {
	s, cut := truncPlus(strconv.FormatInt(n, 10), c.width)
	if cut {
		c.cat.flag(c.f)
	}
	return justifyPad(s, c.width, c.right)
}

func (c *cellCtx) str(s string) string {
	s, cut := truncPlus(s, c.width)
	if cut {
		c.cat.flag(c.f)
	}
	return justifyPad(s, c.width, c.right)
}

// variable renders a variable column from the window's horizontal offset.
func (c *cellCtx) variable(s string) string {
	if off := c.win.VarOffset; off > 0 {
		r := []rune(s)
		if off < len(r) {
			s = string(r[off:])
		} else {
			s = ""
		}
	}
	s, _ = truncPlus(s, c.width)
	return justifyPad(s, c.width, c.right)
}

func intField(name, desc string, width int, need model.Need, val func(*model.Task) int64) Field {
	return Field{
		Name: name, Desc: desc, Width: width, Align: AlignNumber, Need: need,
		cell:    func(c *cellCtx, t *model.Task) string { return c.num(val(t)) },
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(val(a), val(b)) },
	}
}

func countField(name, desc string, need model.Need, val func(*model.Task) uint64) Field {
	return Field{
		Name: name, Desc: desc, Width: 4, Align: AlignNumber, Need: need,
		cell: func(c *cellCtx, t *model.Task) string {
			return scaleNum(val(t), c.width, c.right, c.cat.ZeroSuppress)
		},
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(val(a), val(b)) },
	}
}

// memField renders a KiB figure; pages are converted with the page size.
func memField(name, desc string, width int, need model.Need, kib func(t *model.Task, pageKB uint64) uint64) Field {
	return Field{
		Name: name, Desc: desc, Width: width, Scaled: true, Align: AlignNumber, Need: need,
		cell: func(c *cellCtx, t *model.Task) string {
			return scaleMem(c.cat.TaskScale, kib(t, c.cat.PageKB), c.width, c.right, c.cat.ZeroSuppress)
		},
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(kib(a, 1), kib(b, 1)) },
	}
}

func strField(name, desc string, width int, need model.Need, val func(*model.Task) string) Field {
	return Field{
		Name: name, Desc: desc, Width: width, Align: AlignString, Need: need,
		cell:    func(c *cellCtx, t *model.Task) string { return c.str(val(t)) },
		compare: func(a, b *model.Task, _ Options) int { return strings.Compare(val(a), val(b)) },
	}
}

func varField(name, desc string, need model.Need, val func(*model.Task) string) Field {
	return Field{
		Name: name, Desc: desc, Width: varWidth, Align: AlignString, Need: need,
		cell:    func(c *cellCtx, t *model.Task) string { return c.variable(val(t)) },
		compare: func(a, b *model.Task, _ Options) int { return strings.Compare(val(a), val(b)) },
	}
}

func autoX(f Field) Field {
	f.AutoX = true
	return f
}

const (
	needStatusUser  = model.NeedStatus | model.NeedUser
	needStatusGroup = model.NeedStatus | model.NeedGroup
)

var defaultFields = [NumFields]Field{
	FieldPID:  intField("PID", "Process Id", 5, model.NeedNone, func(t *model.Task) int64 { return int64(t.PID) }),
	FieldPPID: intField("PPID", "Parent Process pid", 5, model.NeedStat, func(t *model.Task) int64 { return int64(t.PPID) }),
	FieldUID:  autoX(intField("UID", "Effective User Id", 5, model.NeedNone, func(t *model.Task) int64 { return int64(t.EUID) })),
	FieldUser: autoX(strField("USER", "Effective User Name", 8, model.NeedUser, func(t *model.Task) string { return t.EUser })),
	FieldRUID: autoX(intField("RUID", "Real User Id", 5, model.NeedStatus, func(t *model.Task) int64 { return int64(t.RUID) })),
	FieldRUser: autoX(strField("RUSER", "Real User Name", 8, needStatusUser,
		func(t *model.Task) string { return t.RUser })),
	FieldSUID: autoX(intField("SUID", "Saved User Id", 5, model.NeedStatus, func(t *model.Task) int64 { return int64(t.SUID) })),
	FieldSUser: autoX(strField("SUSER", "Saved User Name", 8, needStatusUser,
		func(t *model.Task) string { return t.SUser })),
	FieldGID: autoX(intField("GID", "Group Id", 5, model.NeedNone, func(t *model.Task) int64 { return int64(t.EGID) })),
	FieldGroup: autoX(strField("GROUP", "Group Name", 8, needStatusGroup,
		func(t *model.Task) string { return t.EGroup })),
	FieldPGRP: intField("PGRP", "Process Group Id", 5, model.NeedStat, func(t *model.Task) int64 { return int64(t.PGRP) }),
	FieldTTY: {
		Name: "TTY", Desc: "Controlling Tty", Width: 8, Align: AlignString, Need: model.NeedStat, AutoX: true,
		cell:    func(c *cellCtx, t *model.Task) string { return c.str(ttyName(t.TTY)) },
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(a.TTY, b.TTY) },
	},
	FieldTPGID: intField("TPGID", "Tty Process Grp Id", 5, model.NeedStat, func(t *model.Task) int64 { return int64(t.TPGID) }),
	FieldSID:   intField("SID", "Session Id", 5, model.NeedStat, func(t *model.Task) int64 { return int64(t.Session) }),
	FieldPR: {
		Name: "PR", Desc: "Priority", Width: 3, Align: AlignNumber, Need: model.NeedStat,
		cell: func(c *cellCtx, t *model.Task) string {
			if t.Priority < -99 || t.Priority > 999 {
				return c.str("rt")
			}
			return c.num(int64(t.Priority))
		},
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(a.Priority, b.Priority) },
	},
	FieldNI:      intField("NI", "Nice Value", 3, model.NeedStat, func(t *model.Task) int64 { return int64(t.Nice) }),
	FieldThreads: intField("nTH", "Number of Threads", 3, model.NeedStat, func(t *model.Task) int64 { return int64(t.NumThreads) }),
	FieldCPUNum:  intField("P", "Last Used Cpu (SMP)", 1, model.NeedStat, func(t *model.Task) int64 { return int64(t.Processor) }),
	FieldCPU: {
		Name: "%CPU", Desc: "CPU Usage", Width: 5, Align: AlignNumber, Need: model.NeedStat,
		cell: func(c *cellCtx, t *model.Task) string {
			return scalePcnt(c.cat.CPUPercent(t), c.width, c.right, c.cat.ZeroSuppress)
		},
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(a.Ticks, b.Ticks) },
	},
	FieldTime:     timeField("TIME", "CPU Time", 6),
	FieldTimePlus: timeField("TIME+", "CPU Time, hundredths", 9),
	FieldMem: {
		Name: "%MEM", Desc: "Memory Usage (RES)", Width: 5, Align: AlignNumber, Need: model.NeedStatm,
		cell: func(c *cellCtx, t *model.Task) string {
			return scalePcnt(util.Pct(t.Resident*c.cat.PageKB, c.cat.memTotal), c.width, c.right, c.cat.ZeroSuppress)
		},
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(a.Resident, b.Resident) },
	},
	FieldVirt: memField("VIRT", "Virtual Image (KiB)", 7, model.NeedStatm, func(t *model.Task, pg uint64) uint64 { return t.Size * pg }),
	FieldSwap: memField("SWAP", "Swapped Size (KiB)", 6, model.NeedStatus, func(t *model.Task, _ uint64) uint64 { return t.SwapKB }),
	FieldRes:  memField("RES", "Resident Size (KiB)", 6, model.NeedStatm, func(t *model.Task, pg uint64) uint64 { return t.Resident * pg }),
	FieldCode: memField("CODE", "Code Size (KiB)", 6, model.NeedStatm, func(t *model.Task, pg uint64) uint64 { return t.Text * pg }),
	FieldData: memField("DATA", "Data+Stack (KiB)", 7, model.NeedStatm, func(t *model.Task, pg uint64) uint64 { return t.Data * pg }),
	FieldShr:  memField("SHR", "Shared Memory (KiB)", 6, model.NeedStatm, func(t *model.Task, pg uint64) uint64 { return t.Share * pg }),
	FieldMajFlt: countField("nMaj", "Major Page Faults", model.NeedStat, func(t *model.Task) uint64 { return t.MajFlt }),
	FieldMinFlt: countField("nMin", "Minor Page Faults", model.NeedStat, func(t *model.Task) uint64 { return t.MinFlt }),
	FieldDirty:  countField("nDRT", "Dirty Pages Count", model.NeedStatm, func(t *model.Task) uint64 { return t.Dirty }),
	FieldState: {
		Name: "S", Desc: "Process Status", Width: 1, Align: AlignNumber, Need: model.NeedStat,
		cell: func(c *cellCtx, t *model.Task) string {
			right := c.win != nil && c.win.Options.StringsRight
			return justifyPad(string(t.State), c.width, right)
		},
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(a.State, b.State) },
	},
	FieldCommand: {
		Name: "COMMAND", Desc: "Command Name/Line", Width: varWidth, Align: AlignString, Need: model.NeedStat,
		cell: func(c *cellCtx, t *model.Task) string { return c.variable(commandText(t, c.win.Options)) },
		compare: func(a, b *model.Task, o Options) int {
			return strings.Compare(commandName(a, o.CmdLine), commandName(b, o.CmdLine))
		},
	},
	FieldWChan: autoX(strField("WCHAN", "Sleeping in Function", 10, model.NeedWchan, func(t *model.Task) string { return t.WChan })),
	FieldFlags: {
		Name: "Flags", Desc: "Task Flags <sched.h>", Width: 8, Align: AlignString, Need: model.NeedStat,
		cell:    func(c *cellCtx, t *model.Task) string { return c.str(hexFlags(t.Flags)) },
		compare: func(a, b *model.Task, _ Options) int { return cmp.Compare(a.Flags, b.Flags) },
	},
	FieldCgroups:   varField("CGROUPS", "Control Groups", model.NeedCgroup, func(t *model.Task) string { return t.Cgroup }),
	FieldSupGIDs:   varField("SUPGIDS", "Supp Groups IDs", model.NeedStatus, func(t *model.Task) string { return t.SupGIDs }),
	FieldSupGroups: varField("SUPGRPS", "Supp Groups Names", model.NeedStatus|model.NeedSupGroups, func(t *model.Task) string { return t.SupGroups }),
	FieldTGID:      intField("TGID", "Thread Group Id", 5, model.NeedStatus, func(t *model.Task) int64 { return int64(t.TGID) }),
	FieldEnviron:   varField("ENVIRON", "Environment vars", model.NeedEnviron, func(t *model.Task) string { return t.Environ }),
	FieldMajDelta: func() Field {
		f := countField("vMj", "Major Faults delta", model.NeedStat, func(t *model.Task) uint64 { return t.MajDelta })
		f.Width = 3
		return f
	}(),
	FieldMinDelta: func() Field {
		f := countField("vMn", "Minor Faults delta", model.NeedStat, func(t *model.Task) uint64 { return t.MinDelta })
		f.Width = 3
		return f
	}(),
}

func timeField(name, desc string, width int) Field {
	return Field{
		Name: name, Desc: desc, Width: width, Align: AlignNumber, Need: model.NeedStat,
		cell: func(c *cellCtx, t *model.Task) string {
			return scaleTics(t.TotalTime(c.win.Options.ChildTimes), c.cat.Hz, c.width, c.right, c.cat.ZeroSuppress)
		},
		compare: func(a, b *model.Task, o Options) int {
			return cmp.Compare(a.TotalTime(o.ChildTimes), b.TotalTime(o.ChildTimes))
		},
	}
}

// commandName is the bare program name or, when asked for, the full
// command line. Kernel threads have no command line and show [comm].
func commandName(t *model.Task, cmdline bool) string {
	if !cmdline {
		return t.Comm
	}
	if t.Cmdline == "" {
		return "[" + t.Comm + "]"
	}
	return t.Cmdline
}

// commandText adds the forest art to the command for nested tasks.
func commandText(t *model.Task, o Options) string {
	s := commandName(t, o.CmdLine)
	if !o.Forest || t.Level == 0 {
		return s
	}
	return strings.Repeat(" ", 4*(t.Level-1)) + " `- " + s
}

// pidFields share the width derived from pid_max.
var pidFields = []FieldID{FieldPID, FieldPPID, FieldPGRP, FieldSID, FieldTGID, FieldTPGID}

// FieldByName resolves a column header name, ignoring case.
func FieldByName(name string) (FieldID, error) {
	for i := range defaultFields {
		if strings.EqualFold(defaultFields[i].Name, name) {
			return FieldID(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownField, name)
}

// Catalog is the per-engine copy of the field table plus the state its
// formatters share.
type Catalog struct {
	fields  [NumFields]Field
	flagged [NumFields]bool

	CPUMax       float64
	Hz           uint64
	PageKB       uint64
	ZeroSuppress bool
	TaskScale    Scale

	etScale  float64 // percent per tick for the current frame
	memTotal uint64  // KiB
}

// NewCatalog returns a catalog with the default widths.
func NewCatalog() *Catalog {
	c := &Catalog{CPUMax: 99.9, Hz: 100, PageKB: 4}
	c.fields = defaultFields
	for i := range c.fields {
		c.fields[i].ID = FieldID(i)
	}
	return c
}

// Field returns the entry for id.
func (c *Catalog) Field(id FieldID) *Field {
	return &c.fields[id]
}

// Fields returns every entry in catalog order.
func (c *Catalog) Fields() []Field {
	return c.fields[:]
}

// SetPIDMax widens the pid-like columns to hold pid_max.
func (c *Catalog) SetPIDMax(pidMax uint64) error {
	digits := util.Digits(pidMax)
	if digits > 10 {
		return ErrWidePID
	}
	w := max(5, digits)
	for _, id := range pidFields {
		c.fields[id].Width = w
	}
	return nil
}

// SetCPUs derives the P column width and the %CPU ceiling from the cpu
// count. Irix mode lets one task show more than 100%.
func (c *Catalog) SetCPUs(ncpu int, irix, threads bool) error {
	digits := util.Digits(uint64(max(ncpu, 1)))
	if digits > 5 {
		return ErrWideCPU
	}
	c.fields[FieldCPUNum].Width = digits

	c.CPUMax = 99.9
	if irix && ncpu > 1 && !threads {
		c.CPUMax = 100 * float64(ncpu)
		if ncpu > 10 {
			c.CPUMax = min(c.CPUMax, 99999)
		} else {
			c.CPUMax = min(c.CPUMax, 999.9)
		}
	}
	return nil
}

// SetWidth overrides a fixed column's width. Variable columns ignore it.
func (c *Catalog) SetWidth(id FieldID, w int) {
	if id < 0 || id >= NumFields || c.fields[id].Variable() || w < 1 {
		return
	}
	c.fields[id].Width = w
}

// SetFrame records the per-frame scale used by %CPU and %MEM.
func (c *Catalog) SetFrame(etScale float64, memTotalKB uint64) {
	c.etScale = etScale
	c.memTotal = memTotalKB
}

// CPUPercent converts a task's elapsed ticks to a percentage, capped by
// its thread count and the catalog ceiling.
func (c *Catalog) CPUPercent(t *model.Task) float64 {
	u := float64(t.Ticks) * c.etScale
	if lim := 100 * float64(max(t.NumThreads, 1)); u > lim {
		u = lim
	}
	return min(u, c.CPUMax)
}

func (c *Catalog) flag(f *Field) {
	if f.AutoX {
		c.flagged[f.ID] = true
	}
}

// Grow widens every column truncated since the last call by one cell and
// reports whether anything changed.
func (c *Catalog) Grow() bool {
	grew := false
	for i := range c.flagged {
		if c.flagged[i] {
			c.fields[i].Width++
			c.flagged[i] = false
			grew = true
		}
	}
	return grew
}

// Cell renders one task's column, padding included. varWidth is the
// window's current width for variable columns.
func (c *Catalog) Cell(id FieldID, w *Window, t *model.Task, varW int) string {
	f := &c.fields[id]
	ctx := cellCtx{cat: c, f: f, win: w, width: f.Width}
	if f.Variable() {
		ctx.width = varW
	}
	ctx.right = justifyRight(f, w.Options)
	return f.cell(&ctx, t)
}

// Compare orders two tasks by column id.
func (c *Catalog) Compare(id FieldID, a, b *model.Task, o Options) int {
	return c.fields[id].compare(a, b, o)
}

func justifyRight(f *Field, o Options) bool {
	if f.Align == AlignNumber {
		return !o.NumbersLeft
	}
	return o.StringsRight
}
