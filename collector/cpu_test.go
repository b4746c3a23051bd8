package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/ptop/model"
)

func TestParseCPULine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.CPUTimes
		ok   bool
	}{
		{
			name: "full",
			line: "cpu0 10 20 30 40 50 60 70 80 90 100",
			want: model.CPUTimes{User: 10, Nice: 20, System: 30, Idle: 40, IOWait: 50,
				IRQ: 60, SoftIRQ: 70, Steal: 80, Guest: 90, GuestNice: 100},
			ok: true,
		},
		{
			name: "old kernel four counters",
			line: "cpu 1 2 3 4",
			want: model.CPUTimes{User: 1, Nice: 2, System: 3, Idle: 4},
			ok:   true,
		},
		{name: "too short", line: "cpu1 1 2 3"},
		{name: "garbage", line: "cpu1 1 x 3 4 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCPULine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatMarksBadLines(t *testing.T) {
	lines := []string{
		"cpu  100 0 50 850 0 0 0 0 0 0",
		"cpu0 50 0 25 425 0 0 0 0 0 0",
		"cpu1 bogus",
		"intr 12345",
		"ctxt 999",
	}
	sum, cpus := parseStat(lines)
	require.True(t, sum.OK)
	assert.Equal(t, uint64(1000), sum.Times.Total())
	require.Len(t, cpus, 2)
	assert.True(t, cpus[0].OK)
	assert.Equal(t, 0, cpus[0].ID)
	assert.False(t, cpus[1].OK)
}

func TestStatCountersReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path, []byte("cpu  4 0 4 92\ncpu0 4 0 4 92\n"), 0o644))

	sum, cpus, err := (&StatCounters{Path: path}).ReadCPUs()
	require.NoError(t, err)
	assert.True(t, sum.OK)
	assert.Len(t, cpus, 1)

	_, _, err = (&StatCounters{Path: filepath.Join(t.TempDir(), "missing")}).ReadCPUs()
	assert.Error(t, err)
}
