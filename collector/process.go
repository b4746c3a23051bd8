package collector

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"

	"github.com/ftahirops/ptop/model"
	"github.com/ftahirops/ptop/util"
)

// ProcTaskSource reads tasks from a procfs mount.
type ProcTaskSource struct {
	fs       procfs.FS
	root     string
	pageSize uint64
	Users    *UserCache
}

// NewProcTaskSource opens the procfs mounted at root.
func NewProcTaskSource(root string) (*ProcTaskSource, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", root, err)
	}
	return &ProcTaskSource{
		fs:       fs,
		root:     root,
		pageSize: uint64(unix.Getpagesize()),
		Users:    NewUserCache(),
	}, nil
}

// Open lists the tasks to read this frame. A non-empty pids list limits
// the pass to those processes; threads expands every process into its
// threads.
func (s *ProcTaskSource) Open(need model.Need, pids []int, threads bool) (TaskReader, error) {
	var procs procfs.Procs
	if len(pids) > 0 {
		for _, pid := range pids {
			if p, err := s.fs.Proc(pid); err == nil {
				procs = append(procs, p)
			}
		}
	} else {
		all, err := s.fs.AllProcs()
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.root, err)
		}
		procs = all
	}
	sortByPID(procs)
	return &procReader{src: s, need: need, procs: procs, threads: threads}, nil
}

type procReader struct {
	src     *ProcTaskSource
	need    model.Need
	procs   procfs.Procs
	threads bool
	i       int

	pending procfs.Procs // threads of tgid not yet returned
	tgid    int
}

// Next fills t with the next task. Tasks that exit while being read are
// skipped.
func (r *procReader) Next(t *model.Task) (bool, error) {
	for {
		if len(r.pending) > 0 {
			p := r.pending[0]
			r.pending = r.pending[1:]
			dir := filepath.Join(r.src.root, strconv.Itoa(r.tgid), "task", strconv.Itoa(p.PID))
			if r.src.fill(t, p, dir, r.tgid, r.need) == nil {
				return true, nil
			}
			continue
		}
		if r.i >= len(r.procs) {
			return false, nil
		}
		p := r.procs[r.i]
		r.i++
		if r.threads {
			if ts, err := r.src.fs.AllThreads(p.PID); err == nil && len(ts) > 0 {
				sortByPID(ts)
				r.pending, r.tgid = ts, p.PID
				continue
			}
		}
		dir := filepath.Join(r.src.root, strconv.Itoa(p.PID))
		if r.src.fill(t, p, dir, p.PID, r.need) == nil {
			return true, nil
		}
	}
}

func (r *procReader) Close() error {
	r.procs, r.pending = nil, nil
	return nil
}

func sortByPID(ps procfs.Procs) {
	slices.SortFunc(ps, func(a, b procfs.Proc) int { return cmp.Compare(a.PID, b.PID) })
}

func nonNeg(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// fill reads the data groups in need for one task directory.
func (s *ProcTaskSource) fill(t *model.Task, p procfs.Proc, dir string, tgid int, need model.Need) error {
	st, err := p.Stat()
	if err != nil {
		return err
	}
	t.PID = st.PID
	t.TGID = tgid
	t.PPID = st.PPID
	t.PGRP = st.PGRP
	t.Session = st.Session
	t.TTY = st.TTY
	t.TPGID = st.TPGID
	if st.State != "" {
		t.State = st.State[0]
	}
	t.Comm = st.Comm
	t.StartTime = uint64(st.Starttime)
	t.UTime = uint64(st.UTime)
	t.STime = uint64(st.STime)
	t.CUTime = nonNeg(int64(st.CUTime))
	t.CSTime = nonNeg(int64(st.CSTime))
	t.MajFlt = uint64(st.MajFlt)
	t.MinFlt = uint64(st.MinFlt)
	t.Priority = st.Priority
	t.Nice = st.Nice
	t.NumThreads = st.NumThreads
	t.Processor = int(st.Processor)
	t.Flags = uint64(st.Flags)
	t.Size = uint64(st.VSize) / s.pageSize
	t.Resident = nonNeg(int64(st.RSS))

	if fi, err := os.Stat(dir); err == nil {
		if sys, ok := fi.Sys().(*syscall.Stat_t); ok {
			t.EUID, t.EGID = int(sys.Uid), int(sys.Gid)
			t.RUID, t.SUID, t.FUID = t.EUID, t.EUID, t.EUID
		}
	}

	if need.Has(model.NeedStatm) {
		readStatm(dir, t)
	}
	if need&(model.NeedStatus|model.NeedGroup|model.NeedSupGroups) != 0 {
		readStatus(dir, t)
	}
	if need.Has(model.NeedUser) {
		t.EUser = s.Users.UserName(t.EUID)
		t.RUser = s.Users.UserName(t.RUID)
		t.SUser = s.Users.UserName(t.SUID)
	}
	if need.Has(model.NeedGroup) {
		t.EGroup = s.Users.GroupName(t.EGID)
	}
	if need.Has(model.NeedSupGroups) {
		t.SupGroups = s.Users.GroupNames(t.SupGIDs)
	}
	if need.Has(model.NeedCmdline) {
		if args, err := p.CmdLine(); err == nil {
			t.Cmdline = strings.Join(args, " ")
		}
	}
	if need.Has(model.NeedEnviron) {
		if env, err := p.Environ(); err == nil {
			t.Environ = strings.Join(env, " ")
		}
	}
	if need.Has(model.NeedCgroup) {
		if cgs, err := p.Cgroups(); err == nil {
			t.Cgroup = formatCgroups(cgs)
		}
	}
	if need.Has(model.NeedWchan) {
		t.WChan = readWchan(dir)
	}
	return nil
}

// readStatm fills the memory figures, all in pages.
func readStatm(dir string, t *model.Task) {
	content, err := util.ReadFileString(filepath.Join(dir, "statm"))
	if err != nil {
		return
	}
	f := strings.Fields(content)
	if len(f) < 7 {
		return
	}
	t.Size = util.ParseUint64(f[0])
	t.Resident = util.ParseUint64(f[1])
	t.Share = util.ParseUint64(f[2])
	t.Text = util.ParseUint64(f[3])
	t.Data = util.ParseUint64(f[5])
	t.Dirty = util.ParseUint64(f[6])
}

func readStatus(dir string, t *model.Task) {
	lines, err := util.ReadFileLines(filepath.Join(dir, "status"))
	if err != nil {
		return
	}
	kv := util.ParseKeyValueLines(lines)
	if ids := strings.Fields(kv["Uid"]); len(ids) == 4 {
		t.RUID = util.ParseInt(ids[0])
		t.EUID = util.ParseInt(ids[1])
		t.SUID = util.ParseInt(ids[2])
		t.FUID = util.ParseInt(ids[3])
	}
	if ids := strings.Fields(kv["Gid"]); len(ids) >= 2 {
		t.EGID = util.ParseInt(ids[1])
	}
	if v, ok := kv["Tgid"]; ok {
		t.TGID = util.ParseInt(v)
	}
	t.SwapKB = util.ParseUint64(kv["VmSwap"])
	t.SupGIDs = strings.Join(strings.Fields(kv["Groups"]), ",")
}

func readWchan(dir string) string {
	s, err := util.ReadFileString(filepath.Join(dir, "wchan"))
	s = strings.TrimSpace(s)
	if err != nil || s == "" || s == "0" {
		return "-"
	}
	return s
}

func formatCgroups(cgs []procfs.Cgroup) string {
	parts := make([]string, 0, len(cgs))
	for _, cg := range cgs {
		parts = append(parts, fmt.Sprintf("%d:%s:%s", cg.HierarchyID, strings.Join(cg.Controllers, ","), cg.Path))
	}
	return strings.Join(parts, ";")
}

// ReadPIDMax returns the kernel's pid_max.
func ReadPIDMax(root string) (uint64, error) {
	s, err := util.ReadFileString(filepath.Join(root, "sys", "kernel", "pid_max"))
	if err != nil {
		return 0, err
	}
	v := util.ParseUint64(s)
	if v == 0 {
		return 0, fmt.Errorf("bad pid_max %q", strings.TrimSpace(s))
	}
	return v, nil
}
