package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/ptop/model"
)

func task(pid int, state byte, utime uint64) model.Task {
	return model.Task{
		PID: pid, PPID: 1, TGID: pid, State: state, UTime: utime, NumThreads: 1,
		StartTime: uint64(pid), Comm: fmt.Sprintf("proc%d", pid), EUser: "root", Resident: 25,
	}
}

func TestFrameRendersSummaryAndTasks(t *testing.T) {
	e, ft, _ := testEngine(
		[]model.Task{task(1, 'S', 100), task(2, 'R', 10)},
		[]model.Task{task(1, 'S', 200), task(2, 'R', 10)},
	)
	require.NoError(t, e.Prime())

	sink := &fakeSink{cols: 80, rows: 24}
	require.NoError(t, e.Frame(sink))
	assert.Equal(t, PhaseIdle, e.Phase())

	summary := sink.kind(LineSummary)
	require.Len(t, summary, 5)
	assert.Equal(t, "ptop - 10:30:00 up 1 day,  2:00,  1 user,  load average: 0.50, 0.25, 0.10", summary[0].Text)
	assert.True(t, strings.HasPrefix(summary[1].Text, "Tasks:   2 total,   1 running,   1 sleeping"), summary[1].Text)
	assert.True(t, strings.HasPrefix(summary[2].Text, "%Cpu(s):  50.0 us,   0.0 sy"), summary[2].Text)
	assert.True(t, strings.HasPrefix(summary[3].Text, "KiB  Mem :     1000 total,      400 free"), summary[3].Text)
	assert.Len(t, sink.kind(LineMessage), 1)

	headers := sink.kind(LineHeader)
	require.Len(t, headers, 1)
	assert.Contains(t, headers[0].Text, "PID USER")

	rows := sink.window(1)
	require.Len(t, rows, 2)
	assert.True(t, strings.HasPrefix(rows[0].Text, "    1 "), "busiest task first: %q", rows[0].Text)
	assert.Contains(t, rows[0].Text, " 50.00 ")
	assert.Contains(t, rows[0].Text, " 10.00 ", "%%MEM of 100 KiB out of 1000")
	assert.False(t, rows[0].Running)
	assert.True(t, rows[1].Running)
	for _, l := range sink.lines {
		assert.LessOrEqual(t, runewidth.StringWidth(l.Text), 80)
	}

	assert.True(t, ft.needs[len(ft.needs)-1].Has(model.NeedUser|model.NeedStatm))
	assert.Equal(t, 2, e.Counts().Total)
}

func TestFrameSizeAndSignals(t *testing.T) {
	e, _, _ := testEngine([]model.Task{task(1, 'S', 0)})

	assert.ErrorIs(t, e.Frame(&fakeSink{cols: 5, rows: 30}), ErrTerminalTooSmall)
	assert.ErrorIs(t, e.Frame(&fakeSink{cols: 80, rows: 2}), ErrTerminalTooSmall)

	e.Flags.Terminate()
	assert.ErrorIs(t, e.Frame(&fakeSink{cols: 80, rows: 24}), ErrTerminated)
	assert.Equal(t, PhaseSignalCheck, e.Phase())
	require.NoError(t, e.Frame(&fakeSink{cols: 80, rows: 24}), "terminate is consumed")

	e.Flags.Resize()
	require.NoError(t, e.Frame(&fakeSink{cols: 80, rows: 24}))
}

func TestFrameSourceFailures(t *testing.T) {
	e, ft, _ := testEngine([]model.Task{task(1, 'S', 0)})
	ft.err = errors.New("proc unmounted")
	err := e.Frame(&fakeSink{cols: 80, rows: 24})
	assert.ErrorIs(t, err, ErrSource)
	assert.Contains(t, err.Error(), "snapshot-refresh")
	assert.Equal(t, PhaseSnapshotRefresh, e.Phase())

	e, _, _ = testEngine([]model.Task{task(1, 'S', 0)})
	e.cpus = NewCPUs(&fakeCounters{err: errors.New("no stat")})
	err = e.Frame(&fakeSink{cols: 80, rows: 24})
	assert.ErrorIs(t, err, ErrCounters)
	assert.Contains(t, err.Error(), "cpu-refresh")
}

func manyTasks(n int) []model.Task {
	out := make([]model.Task, n)
	for i := range out {
		out[i] = task(i+1, 'S', uint64(i))
	}
	return out
}

func quietSummary(e *Engine) {
	o := &e.Cur().Options
	o.ShowLoad, o.ShowStates, o.ShowMemory = false, false, false
}

func TestFrameMultiWindowBudget(t *testing.T) {
	e, _, _ := testEngine(manyTasks(100))
	e.MultiWindow = true
	e.Windows[2].Options.Visible = false
	e.Windows[3].Options.Visible = false
	quietSummary(e)

	sink := &fakeSink{cols: 120, rows: 51}
	require.NoError(t, e.Frame(sink))
	assert.Equal(t, 24, e.Windows[0].Budget())
	assert.Equal(t, 24, e.Windows[1].Budget())
	assert.Len(t, sink.window(1), 24)
	assert.Len(t, sink.window(2), 24)
	assert.Len(t, sink.lines, 51)

	headers := sink.kind(LineHeader)
	require.Len(t, headers, 2)
	assert.True(t, strings.HasPrefix(headers[0].Text, "1"))
	assert.True(t, strings.HasPrefix(headers[1].Text, "2"))
}

func TestFrameUnusedRowsFlowDown(t *testing.T) {
	e, _, _ := testEngine(manyTasks(100))
	e.MultiWindow = true
	e.Windows[2].Options.Visible = false
	e.Windows[3].Options.Visible = false
	quietSummary(e)
	e.Windows[0].PIDs = []int{1, 2, 3, 4, 5}

	sink := &fakeSink{cols: 120, rows: 51}
	require.NoError(t, e.Frame(sink))
	assert.Len(t, sink.window(1), 5)
	assert.Equal(t, 43, e.Windows[1].Budget())
	assert.Len(t, sink.window(2), 43)
}

func TestFrameForestWindow(t *testing.T) {
	tasks := []model.Task{
		{PID: 4, PPID: 1, TGID: 4, StartTime: 4, Comm: "d", State: 'S'},
		{PID: 3, PPID: 2, TGID: 3, StartTime: 3, Comm: "c", State: 'S'},
		{PID: 2, PPID: 1, TGID: 2, StartTime: 2, Comm: "b", State: 'S'},
		{PID: 1, TGID: 1, StartTime: 1, Comm: "a", State: 'S'},
	}
	e, _, _ := testEngine(tasks)
	e.Cur().Options.Forest = true

	sink := &fakeSink{cols: 80, rows: 24}
	require.NoError(t, e.Frame(sink))
	rows := sink.window(1)
	require.Len(t, rows, 4)
	assert.True(t, strings.HasSuffix(strings.TrimRight(rows[0].Text, " "), " a"))
	assert.Contains(t, rows[1].Text, " `- b")
	assert.Contains(t, rows[2].Text, "     `- c")
	assert.Contains(t, rows[3].Text, " `- d")
}

func TestFrameAutosizeRecalibrates(t *testing.T) {
	long := task(1, 'S', 0)
	long.EUser = "averylongusername"
	e, _, _ := testEngine([]model.Task{long})

	require.NoError(t, e.Frame(&fakeSink{cols: 120, rows: 24}))
	assert.Equal(t, 9, e.Catalog.Field(FieldUser).Width)
	assert.True(t, e.recalibrate)

	require.NoError(t, e.Frame(&fakeSink{cols: 120, rows: 24}))
	assert.Equal(t, 10, e.Catalog.Field(FieldUser).Width)
}

func TestFrameFiltersIdleAndUsers(t *testing.T) {
	busy := task(1, 'R', 0)
	idle := task(2, 'S', 0)
	other := task(3, 'S', 0)
	other.EUID = 1000
	e, _, _ := testEngine(
		[]model.Task{busy, idle, other},
		[]model.Task{task(1, 'R', 50), idle, other},
	)
	require.NoError(t, e.Prime())

	e.Cur().Options.ShowIdle = false
	sink := &fakeSink{cols: 80, rows: 24}
	require.NoError(t, e.Frame(sink))
	assert.Len(t, sink.window(1), 1)

	e.Cur().Options.ShowIdle = true
	require.NoError(t, e.Apply(FilterUser{Mode: 'u', User: "alice"}))
	sink = &fakeSink{cols: 80, rows: 24}
	require.NoError(t, e.Frame(sink))
	require.Len(t, sink.window(1), 1)
	assert.True(t, strings.HasPrefix(sink.window(1)[0].Text, "    3 "))
}

func TestFrameSummaryDropsSectionsWhenShort(t *testing.T) {
	e, _, _ := testEngine(manyTasks(3))
	sink := &fakeSink{cols: 80, rows: 5}
	require.NoError(t, e.Frame(sink))
	assert.LessOrEqual(t, len(sink.lines), 5)
	assert.Len(t, sink.kind(LineMessage), 1)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "history-merge", PhaseHistoryMerge.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5 min", formatUptime(5*60e9))
	assert.Equal(t, " 3:07", formatUptime((3*60+7)*60e9))
	assert.Equal(t, "2 days, 10 min", formatUptime((48*60+10)*60e9))
}

func TestSummaryNum(t *testing.T) {
	assert.Equal(t, "2048", summaryNum(2048, ScaleKiB))
	assert.Equal(t, "2.0", summaryNum(2048, ScaleMiB))
	assert.Equal(t, "1.000", summaryNum(1024*1024, ScaleGiB))
}
