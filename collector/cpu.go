package collector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ftahirops/ptop/model"
	"github.com/ftahirops/ptop/util"
)

// StatCounters reads cpu tick counters from /proc/stat.
type StatCounters struct {
	Path string
}

// ReadCPUs returns the aggregate line and one entry per cpu line.
func (c *StatCounters) ReadCPUs() (model.CPULine, []model.CPULine, error) {
	lines, err := util.ReadFileLines(c.Path)
	if err != nil {
		return model.CPULine{}, nil, fmt.Errorf("read %s: %w", c.Path, err)
	}
	sum, cpus := parseStat(lines)
	return sum, cpus, nil
}

func parseStat(lines []string) (model.CPULine, []model.CPULine) {
	sum := model.CPULine{ID: -1}
	var cpus []model.CPULine
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "cpu "):
			sum.Times, sum.OK = parseCPULine(line)
		case strings.HasPrefix(line, "cpu"):
			l := model.CPULine{ID: len(cpus)}
			name, _, _ := strings.Cut(line, " ")
			if id, err := strconv.Atoi(strings.TrimPrefix(name, "cpu")); err == nil {
				l.ID = id
				l.Times, l.OK = parseCPULine(line)
			}
			cpus = append(cpus, l)
		}
	}
	return sum, cpus
}

// parseCPULine reads "cpuN user nice system idle [iowait irq softirq
// steal guest guest_nice]". At least the first four counters are required.
func parseCPULine(line string) (model.CPUTimes, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return model.CPUTimes{}, false
	}
	vals := make([]uint64, 10)
	for i := 1; i < len(fields) && i <= len(vals); i++ {
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return model.CPUTimes{}, false
		}
		vals[i-1] = v
	}
	return model.CPUTimes{
		User:      vals[0],
		Nice:      vals[1],
		System:    vals[2],
		Idle:      vals[3],
		IOWait:    vals[4],
		IRQ:       vals[5],
		SoftIRQ:   vals[6],
		Steal:     vals[7],
		Guest:     vals[8],
		GuestNice: vals[9],
	}, true
}
