package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mattn/go-runewidth"
)

// summary writes the lines above the windows and returns the rows used,
// the message line included. Sections are dropped when rows run short.
func (e *Engine) summary(sink Sink, rows int) int {
	o := e.Cur().Options
	used := 0
	room := func(n int) bool { return used+n < rows-1 }
	write := func(s string) {
		s = runewidth.Truncate(s, e.cols, "")
		sink.WriteLine(Line{Kind: LineSummary, Text: s, SortStart: -1, SortEnd: -1})
		used++
	}

	if o.ShowLoad && room(1) {
		write(e.loadLine())
	}
	if o.ShowStates && room(2) {
		write(e.taskLine())
		if !o.PerCPU {
			write(cpuLine("%Cpu(s):", e.cpus.Sum.Percents()))
		} else {
			for i := range e.cpus.Per {
				if !room(1) {
					break
				}
				s := &e.cpus.Per[i]
				write(cpuLine(fmt.Sprintf("%%Cpu%-3d:", s.ID), s.Percents()))
			}
		}
	}
	if o.ShowMemory && room(2) {
		for _, l := range e.memLines() {
			write(l)
		}
	}
	sink.WriteLine(Line{Kind: LineMessage, SortStart: -1, SortEnd: -1})
	return used + 1
}

func (e *Engine) loadLine() string {
	name := "ptop"
	if e.MultiWindow {
		w := e.Cur()
		name = strconv.Itoa(w.Num) + ":" + w.Name
	}
	users := "users"
	if e.sys.Users == 1 {
		users = "user"
	}
	clock := e.sys.Timestamp
	if clock.IsZero() {
		clock = e.now()
	}
	return fmt.Sprintf("%s - %s up %s, %2d %s,  load average: %.2f, %.2f, %.2f",
		name, clock.Format("15:04:05"), formatUptime(e.sys.Uptime), e.sys.Users, users,
		e.sys.Load.Load1, e.sys.Load.Load5, e.sys.Load.Load15)
}

// formatUptime renders uptime the way uptime(1) does.
func formatUptime(d time.Duration) string {
	mins := int(d / time.Minute)
	days := mins / (60 * 24)
	hours := mins / 60 % 24
	mins %= 60

	s := ""
	switch {
	case days == 1:
		s = "1 day, "
	case days > 1:
		s = fmt.Sprintf("%d days, ", days)
	}
	if hours > 0 {
		return s + fmt.Sprintf("%2d:%02d", hours, mins)
	}
	return s + fmt.Sprintf("%d min", mins)
}

func (e *Engine) taskLine() string {
	label := "Tasks"
	if e.Threads {
		label = "Threads"
	}
	c := e.counts
	return fmt.Sprintf("%s: %3d total, %3d running, %3d sleeping, %3d stopped, %3d zombie",
		label, c.Total, c.Running, c.Sleeping, c.Stopped, c.Zombie)
}

func cpuLine(prefix string, p CPUPercents) string {
	return fmt.Sprintf("%s %5.1f us, %5.1f sy, %5.1f ni, %5.1f id, %5.1f wa, %5.1f hi, %5.1f si, %5.1f st",
		prefix, p.User, p.System, p.Nice, p.Idle, p.IOWait, p.IRQ, p.SoftIRQ, p.Steal)
}

func (e *Engine) memLines() []string {
	m := e.sys.Mem
	unit := e.SummaryScale.String()
	num := func(kb uint64) string { return summaryNum(kb, e.SummaryScale) }
	return []string{
		fmt.Sprintf("%-4s Mem : %8s total, %8s free, %8s used, %8s buff/cache",
			unit, num(m.Total), num(m.Free), num(m.Used), num(m.Buffers+m.Cached)),
		fmt.Sprintf("%-4s Swap: %8s total, %8s free, %8s used. %8s avail Mem",
			unit, num(m.SwapTotal), num(m.SwapFree), num(m.SwapUsed), num(m.Available)),
	}
}

// summaryNum converts KiB to the summary unit.
func summaryNum(kb uint64, s Scale) string {
	if s <= ScaleKiB {
		return strconv.FormatUint(kb, 10)
	}
	v := float64(kb)
	for i := ScaleKiB; i < s; i++ {
		v /= 1024
	}
	if s == ScaleMiB {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
