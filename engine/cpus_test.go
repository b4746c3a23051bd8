package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/ptop/model"
)

func TestCPUStatePercents(t *testing.T) {
	s := CPUState{
		Prev: model.CPUTimes{User: 100, System: 50, Idle: 800},
		Cur:  model.CPUTimes{User: 130, System: 60, Idle: 860},
	}
	p := s.Percents()
	assert.InDelta(t, 30.0, p.User, 1e-9)
	assert.InDelta(t, 10.0, p.System, 1e-9)
	assert.InDelta(t, 60.0, p.Idle, 1e-9)
}

func TestCPUStateBelowEdgeIsIdle(t *testing.T) {
	s := CPUState{
		Prev: model.CPUTimes{User: 100},
		Cur:  model.CPUTimes{User: 103},
		Edge: 20,
	}
	p := s.Percents()
	assert.Zero(t, p.User)
	assert.InDelta(t, 100.0, p.Idle, 1e-9)

	// Counters that went backwards contribute nothing.
	s = CPUState{Prev: model.CPUTimes{User: 100, Idle: 100}, Cur: model.CPUTimes{User: 50, Idle: 100}}
	p = s.Percents()
	assert.InDelta(t, 100.0, p.Idle, 1e-9)
}

func TestCPUsRefreshHotplug(t *testing.T) {
	fc := newFakeCounters(2, 10, 40)
	c := NewCPUs(fc)
	assert.Equal(t, 1, c.Count())

	hot, err := c.Refresh()
	require.NoError(t, err)
	assert.True(t, hot)
	assert.Equal(t, 2, c.Count())

	hot, err = c.Refresh()
	require.NoError(t, err)
	assert.False(t, hot)
	assert.Equal(t, uint64(100), c.Elapsed())
	assert.Equal(t, uint64(10), c.Sum.Edge)
	assert.InDelta(t, 20.0, c.Sum.Percents().User, 1e-9)
	assert.InDelta(t, 20.0, c.Per[1].Percents().User, 1e-9)

	fc.ncpu = 3
	hot, err = c.Refresh()
	require.NoError(t, err)
	assert.True(t, hot)
	assert.Len(t, c.Per, 3)
}

func TestCPUsBadLineTakesAggregate(t *testing.T) {
	fc := newFakeCounters(2, 10, 40)
	fc.bad = 1
	c := NewCPUs(fc)
	_, err := c.Refresh()
	require.NoError(t, err)
	_, err = c.Refresh()
	require.NoError(t, err)

	assert.True(t, c.Per[0].Online)
	assert.False(t, c.Per[1].Online)
	assert.Equal(t, c.Sum.Cur, c.Per[1].Cur)
	assert.Equal(t, 1, c.Per[1].ID)
}

func TestCPUsRefreshErrors(t *testing.T) {
	fc := newFakeCounters(1, 1, 1)
	fc.err = errors.New("boom")
	_, err := NewCPUs(fc).Refresh()
	assert.ErrorIs(t, err, ErrCounters)
}
