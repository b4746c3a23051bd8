package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ftahirops/ptop/model"
)

func proc(pid, ppid int, start uint64) *model.Task {
	return &model.Task{PID: pid, PPID: ppid, TGID: pid, StartTime: start}
}

func levels(tasks []*model.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.Level
	}
	return out
}

func TestForestParentBeforeChild(t *testing.T) {
	var f Forest
	tasks := []*model.Task{proc(4, 1, 4), proc(3, 2, 3), proc(2, 1, 2), proc(1, 0, 1)}

	out := f.Linearize(tasks)
	assert.Equal(t, []int{1, 2, 3, 4}, pids(out))
	assert.Equal(t, []int{0, 1, 2, 1}, levels(out))
	assert.Equal(t, 4, tasks[0].PID, "input order is untouched")
}

func TestForestOrphansAndLateParents(t *testing.T) {
	var f Forest
	tasks := []*model.Task{
		proc(10, 1, 5),
		proc(20, 999, 6), // parent not present
		proc(30, 40, 7),  // parent started later
		proc(40, 1, 8),
	}
	out := f.Linearize(tasks)
	assert.Equal(t, []int{10, 20, 30, 40}, pids(out))
	assert.Equal(t, []int{0, 0, 0, 0}, levels(out))
}

func TestForestThreadsUnderLeader(t *testing.T) {
	var f Forest
	leader := proc(100, 1, 10)
	thread := &model.Task{PID: 101, PPID: 1, TGID: 100, StartTime: 11}
	child := proc(102, 100, 12)
	other := proc(200, 1, 13)

	out := f.Linearize([]*model.Task{other, child, thread, leader})
	assert.Equal(t, []int{100, 101, 102, 200}, pids(out))
	assert.Equal(t, []int{0, 1, 1, 0}, levels(out))
}

func TestForestReusesBuffers(t *testing.T) {
	var f Forest
	f.Linearize([]*model.Task{proc(1, 0, 1), proc(2, 1, 2), proc(3, 1, 3)})
	out := f.Linearize([]*model.Task{proc(7, 0, 1)})
	assert.Equal(t, []int{7}, pids(out))
	assert.Equal(t, []int{0}, levels(out))
}
