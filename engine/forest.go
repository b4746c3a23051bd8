package engine

import (
	"cmp"
	"slices"

	"github.com/ftahirops/ptop/model"
)

// Forest linearizes the task table into parent-before-child order.
// Buffers are kept between frames.
type Forest struct {
	seed []*model.Task
	seen []bool
	out  []*model.Task
}

// Linearize returns tasks ordered as a depth-first walk of the process
// tree and sets each task's Level. A task's children are its threads and
// the thread-group leaders whose parent it is. Tasks whose parent is not
// present, or started later, are roots at level 0.
func (f *Forest) Linearize(tasks []*model.Task) []*model.Task {
	f.seed = append(f.seed[:0], tasks...)
	slices.SortStableFunc(f.seed, func(a, b *model.Task) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})
	if cap(f.seen) < len(tasks) {
		f.seen = make([]bool, len(tasks))
	}
	f.seen = f.seen[:len(tasks)]
	clear(f.seen)
	f.out = f.out[:0]

	for i := range f.seed {
		if !f.seen[i] {
			f.add(i, 0)
		}
	}
	return f.out
}

func (f *Forest) add(self, level int) {
	p := f.seed[self]
	f.seen[self] = true
	p.Level = level
	f.out = append(f.out, p)
	for j := self + 1; j < len(f.seed); j++ {
		c := f.seed[j]
		if f.seen[j] {
			continue
		}
		if p.PID == c.TGID || (p.PID == c.PPID && c.PID == c.TGID) {
			f.add(j, level+1)
		}
	}
}
