package collector

import (
	"fmt"
	"time"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/ftahirops/ptop/model"
)

// SysInfo reads uptime, users, load and memory for the summary area.
type SysInfo struct {
	fs procfs.FS
}

// NewSysInfo opens the procfs mounted at root.
func NewSysInfo(root string) (*SysInfo, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", root, err)
	}
	return &SysInfo{fs: fs}, nil
}

// System returns uptime, logged-in users and load averages. Uptime and
// users are best effort.
func (s *SysInfo) System() (model.SysSnapshot, error) {
	snap := model.SysSnapshot{Timestamp: time.Now()}
	if up, err := host.Uptime(); err == nil {
		snap.Uptime = time.Duration(up) * time.Second
	}
	if users, err := host.Users(); err == nil {
		snap.Users = len(users)
	}
	la, err := s.fs.LoadAvg()
	if err != nil {
		return snap, fmt.Errorf("read loadavg: %w", err)
	}
	snap.Load = model.LoadAvg{Load1: la.Load1, Load5: la.Load5, Load15: la.Load15}
	return snap, nil
}

// Memory returns the memory and swap figures in KiB.
func (s *SysInfo) Memory() (model.MemInfo, error) {
	mi, err := s.fs.Meminfo()
	if err != nil {
		return model.MemInfo{}, fmt.Errorf("read meminfo: %w", err)
	}
	return memInfoFrom(mi), nil
}

func kb(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

func memInfoFrom(mi procfs.Meminfo) model.MemInfo {
	m := model.MemInfo{
		Total:     kb(mi.MemTotal),
		Free:      kb(mi.MemFree),
		Buffers:   kb(mi.Buffers),
		Cached:    kb(mi.Cached) + kb(mi.SReclaimable),
		Available: kb(mi.MemAvailable),
		SwapTotal: kb(mi.SwapTotal),
		SwapFree:  kb(mi.SwapFree),
	}
	if mi.MemAvailable == nil || m.Available > m.Total {
		m.Available = m.Free
	}
	if used := m.Free + m.Buffers + m.Cached; used < m.Total {
		m.Used = m.Total - used
	}
	if m.SwapFree < m.SwapTotal {
		m.SwapUsed = m.SwapTotal - m.SwapFree
	}
	return m
}
