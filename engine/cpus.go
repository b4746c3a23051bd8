package engine

import (
	"fmt"

	"github.com/ftahirops/ptop/collector"
	"github.com/ftahirops/ptop/model"
	"github.com/ftahirops/ptop/util"
)

// edgePercent is the share of expected ticks below which a cpu is shown
// as idle.
const edgePercent = 20

// CPUState holds one cpu's counters for the previous and current frame.
type CPUState struct {
	ID     int
	Prev   model.CPUTimes
	Cur    model.CPUTimes
	Edge   uint64
	Online bool
}

// CPUPercents is the per-category share of the frame's ticks.
type CPUPercents struct {
	User, System, Nice, Idle, IOWait, IRQ, SoftIRQ, Steal float64
}

// Percents converts the frame's tick deltas into percentages. A cpu that
// registered fewer ticks than the edge is reported fully idle.
func (s *CPUState) Percents() CPUPercents {
	d := [8]uint64{
		util.Delta(s.Prev.User, s.Cur.User),
		util.Delta(s.Prev.System, s.Cur.System),
		util.Delta(s.Prev.Nice, s.Cur.Nice),
		util.Delta(s.Prev.Idle, s.Cur.Idle),
		util.Delta(s.Prev.IOWait, s.Cur.IOWait),
		util.Delta(s.Prev.IRQ, s.Cur.IRQ),
		util.Delta(s.Prev.SoftIRQ, s.Cur.SoftIRQ),
		util.Delta(s.Prev.Steal, s.Cur.Steal),
	}
	var total uint64
	for _, v := range d {
		total += v
	}
	if total < s.Edge {
		d = [8]uint64{}
		total = 0
	}
	if total < 1 {
		d[3], total = 1, 1
	}
	scale := 100 / float64(total)
	return CPUPercents{
		User:    float64(d[0]) * scale,
		System:  float64(d[1]) * scale,
		Nice:    float64(d[2]) * scale,
		Idle:    float64(d[3]) * scale,
		IOWait:  float64(d[4]) * scale,
		IRQ:     float64(d[5]) * scale,
		SoftIRQ: float64(d[6]) * scale,
		Steal:   float64(d[7]) * scale,
	}
}

// CPUs keeps the aggregate and per-cpu counters across frames.
type CPUs struct {
	src collector.CounterSource
	Sum CPUState
	Per []CPUState
}

// NewCPUs creates an aggregator reading from src.
func NewCPUs(src collector.CounterSource) *CPUs {
	return &CPUs{src: src, Sum: CPUState{ID: -1, Online: true}}
}

// Count is the number of cpus seen on the last refresh, at least one.
func (c *CPUs) Count() int {
	return max(len(c.Per), 1)
}

// Elapsed is the aggregate tick growth over the last frame.
func (c *CPUs) Elapsed() uint64 {
	return util.Delta(c.Sum.Prev.Total(), c.Sum.Cur.Total())
}

// Refresh reads new counters. It reports hotplug when the number of cpus
// changed; per-cpu history is then discarded. A cpu whose line is missing
// or malformed takes the aggregate values and is marked offline.
func (c *CPUs) Refresh() (bool, error) {
	sum, lines, err := c.src.ReadCPUs()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCounters, err)
	}
	if !sum.OK {
		return false, fmt.Errorf("%w: bad aggregate cpu line", ErrCounters)
	}

	hotplug := len(lines) != len(c.Per)
	if hotplug {
		c.Per = make([]CPUState, len(lines))
	}

	c.Sum.Prev = c.Sum.Cur
	c.Sum.Cur = sum.Times
	n := uint64(max(len(lines), 1))
	c.Sum.Edge = c.Elapsed() / n * edgePercent / 100

	for i, l := range lines {
		s := &c.Per[i]
		s.Prev = s.Cur
		s.Edge = c.Sum.Edge
		if !l.OK {
			s.ID, s.Prev, s.Cur, s.Online = i, c.Sum.Prev, c.Sum.Cur, false
			continue
		}
		s.ID, s.Cur, s.Online = l.ID, l.Times, true
	}
	return hotplug, nil
}
