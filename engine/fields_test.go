package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/ptop/model"
)

func TestFieldByName(t *testing.T) {
	id, err := FieldByName("%cpu")
	require.NoError(t, err)
	assert.Equal(t, FieldCPU, id)

	id, err = FieldByName("COMMAND")
	require.NoError(t, err)
	assert.Equal(t, FieldCommand, id)

	_, err = FieldByName("nope")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCatalogIDsMatchTable(t *testing.T) {
	c := NewCatalog()
	for i, f := range c.Fields() {
		assert.Equal(t, FieldID(i), f.ID)
		assert.NotEmpty(t, f.Name)
		assert.NotNil(t, f.cell, f.Name)
		assert.NotNil(t, f.compare, f.Name)
	}
}

func TestSetPIDMax(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.SetPIDMax(32768))
	assert.Equal(t, 5, c.Field(FieldPID).Width)

	require.NoError(t, c.SetPIDMax(4194304))
	for _, id := range pidFields {
		assert.Equal(t, 7, c.Field(id).Width)
	}

	assert.ErrorIs(t, c.SetPIDMax(100_000_000_000), ErrWidePID)
}

func TestSetCPUs(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.SetCPUs(4, false, false))
	assert.Equal(t, 99.9, c.CPUMax)
	assert.Equal(t, 1, c.Field(FieldCPUNum).Width)

	require.NoError(t, c.SetCPUs(4, true, false))
	assert.Equal(t, 400.0, c.CPUMax)

	require.NoError(t, c.SetCPUs(16, true, false))
	assert.Equal(t, 1600.0, c.CPUMax)
	assert.Equal(t, 2, c.Field(FieldCPUNum).Width)

	require.NoError(t, c.SetCPUs(4, true, true))
	assert.Equal(t, 99.9, c.CPUMax, "thread mode never exceeds one cpu")

	assert.ErrorIs(t, c.SetCPUs(100000, false, false), ErrWideCPU)
}

func TestCPUPercentCapped(t *testing.T) {
	c := NewCatalog()
	c.SetFrame(0.5, 1000)

	assert.InDelta(t, 50.0, c.CPUPercent(&model.Task{Ticks: 100, NumThreads: 1}), 1e-9)
	assert.InDelta(t, 99.9, c.CPUPercent(&model.Task{Ticks: 400, NumThreads: 1}), 1e-9)

	require.NoError(t, c.SetCPUs(4, true, false))
	assert.InDelta(t, 100.0, c.CPUPercent(&model.Task{Ticks: 400, NumThreads: 1}), 1e-9,
		"a single thread is capped at one cpu")
	assert.InDelta(t, 200.0, c.CPUPercent(&model.Task{Ticks: 400, NumThreads: 3}), 1e-9)
}

func TestSetWidthIgnoresVariable(t *testing.T) {
	c := NewCatalog()
	c.SetWidth(FieldUser, 12)
	c.SetWidth(FieldCommand, 40)
	c.SetWidth(FieldPID, 0)
	assert.Equal(t, 12, c.Field(FieldUser).Width)
	assert.True(t, c.Field(FieldCommand).Variable())
	assert.Equal(t, 5, c.Field(FieldPID).Width)
}

func TestCellTruncationFlagsAutosize(t *testing.T) {
	c := NewCatalog()
	w := NewWindow(1, DefaultWindows[0])
	task := &model.Task{EUser: "averylongname"}

	assert.Equal(t, "averylo+ ", c.Cell(FieldUser, w, task, 0))
	assert.True(t, c.Grow())
	assert.Equal(t, 9, c.Field(FieldUser).Width)
	assert.False(t, c.Grow(), "flags are cleared after growing")

	// PID is not an autosize column.
	c.Cell(FieldPID, w, &model.Task{PID: 1234567}, 0)
	assert.False(t, c.Grow())
}

func TestCellAlignment(t *testing.T) {
	c := NewCatalog()
	w := NewWindow(1, DefaultWindows[0])
	task := &model.Task{PID: 42, EUser: "root"}

	assert.Equal(t, "   42 ", c.Cell(FieldPID, w, task, 0))
	assert.Equal(t, "root     ", c.Cell(FieldUser, w, task, 0))

	w.Options.NumbersLeft = true
	w.Options.StringsRight = true
	assert.Equal(t, "42    ", c.Cell(FieldPID, w, task, 0))
	assert.Equal(t, "    root ", c.Cell(FieldUser, w, task, 0))
}

func TestPriorityShowsRT(t *testing.T) {
	c := NewCatalog()
	w := NewWindow(1, DefaultWindows[0])
	assert.Equal(t, " rt ", c.Cell(FieldPR, w, &model.Task{Priority: -100}, 0))
	assert.Equal(t, " 20 ", c.Cell(FieldPR, w, &model.Task{Priority: 20}, 0))
}

func TestCommandCell(t *testing.T) {
	c := NewCatalog()
	w := NewWindow(1, DefaultWindows[0])
	kthread := &model.Task{Comm: "kthreadd"}
	shell := &model.Task{Comm: "bash", Cmdline: "/bin/bash -l", Level: 2}

	assert.Equal(t, "kthreadd   ", c.Cell(FieldCommand, w, kthread, 10))

	w.Options.CmdLine = true
	assert.Equal(t, "[kthreadd] ", c.Cell(FieldCommand, w, kthread, 10))
	assert.Equal(t, "/bin/bash -l ", c.Cell(FieldCommand, w, shell, 12))

	w.Options.Forest = true
	w.Options.CmdLine = false
	assert.Equal(t, "     `- bash ", c.Cell(FieldCommand, w, shell, 12))

	w.VarOffset = 5
	assert.Equal(t, "`- bash      ", c.Cell(FieldCommand, w, shell, 12))
}

func TestVariableCellTruncatesWithoutGrowing(t *testing.T) {
	c := NewCatalog()
	w := NewWindow(1, DefaultWindows[0])
	got := c.Cell(FieldCommand, w, &model.Task{Comm: "averyveryverylongname"}, 6)
	assert.Equal(t, "avery+ ", got)
	assert.False(t, c.Grow())
}

func TestCompareByField(t *testing.T) {
	c := NewCatalog()
	a := &model.Task{PID: 1, Comm: "b", Resident: 10, UTime: 5}
	b := &model.Task{PID: 2, Comm: "a", Resident: 20, UTime: 1, CUTime: 10}
	o := Options{}

	assert.Negative(t, c.Compare(FieldPID, a, b, o))
	assert.Positive(t, c.Compare(FieldCommand, a, b, o))
	assert.Negative(t, c.Compare(FieldMem, a, b, o))
	assert.Positive(t, c.Compare(FieldTimePlus, a, b, o))

	o.ChildTimes = true
	assert.Negative(t, c.Compare(FieldTimePlus, a, b, o))
}
