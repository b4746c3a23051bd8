package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func windows(n int) []*Window {
	ws := make([]*Window, n)
	for i := range ws {
		ws[i] = NewWindow(i+1, DefaultWindows[i])
	}
	return ws
}

func TestAllocateEvenSplit(t *testing.T) {
	assert.Equal(t, []int{24, 24}, Allocate(windows(2), 50))
	assert.Equal(t, []int{49}, Allocate(windows(1), 50))
}

func TestAllocateMaxTasks(t *testing.T) {
	ws := windows(2)
	ws[0].MaxTasks = 5
	assert.Equal(t, []int{5, 43}, Allocate(ws, 50))

	ws[0].MaxTasks = 1000
	assert.Equal(t, []int{49, 0}, Allocate(ws, 50), "a cap never exceeds the rows left")
}

func TestAllocateNeverExceedsRows(t *testing.T) {
	for n := 1; n <= NumWindows; n++ {
		for rows := n; rows <= 120; rows++ {
			total := 0
			for _, b := range Allocate(windows(n), rows) {
				assert.GreaterOrEqual(t, b, 0)
				total += b + 1
			}
			assert.LessOrEqual(t, total, rows, "%d windows, %d rows", n, rows)
		}
	}
}

func TestShareDegenerate(t *testing.T) {
	assert.Zero(t, share(0, 2, 0))
	assert.Zero(t, share(10, 0, 0))
	assert.Zero(t, share(1, 3, 0))
	assert.Zero(t, share(1, 1, 10))
}
