package model

import "time"

// CPUTimes holds cumulative CPU time in clock ticks from one /proc/stat line.
type CPUTimes struct {
	User      uint64
	Nice      uint64
	System    uint64
	Idle      uint64
	IOWait    uint64
	IRQ       uint64
	SoftIRQ   uint64
	Steal     uint64
	Guest     uint64
	GuestNice uint64
}

// Total returns the sum of the eight accounted categories. Guest time is
// already included in user/nice by the kernel.
func (c CPUTimes) Total() uint64 {
	return c.User + c.Nice + c.System + c.Idle + c.IOWait + c.IRQ + c.SoftIRQ + c.Steal
}

// CPULine is one per-CPU line as read from the counter source.
// OK is false when the line was missing or malformed.
type CPULine struct {
	ID    int
	Times CPUTimes
	OK    bool
}

// MemInfo holds the memory figures shown in the summary area, in KiB.
type MemInfo struct {
	Total     uint64
	Free      uint64
	Used      uint64
	Buffers   uint64
	Cached    uint64
	Available uint64
	SwapTotal uint64
	SwapFree  uint64
	SwapUsed  uint64
}

// LoadAvg holds the 1/5/15 minute load averages.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// SysSnapshot holds the system-wide figures for the summary area.
type SysSnapshot struct {
	Timestamp time.Time
	Uptime    time.Duration
	Users     int
	Load      LoadAvg
	Mem       MemInfo
}
