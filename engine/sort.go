package engine

import (
	"slices"

	"github.com/ftahirops/ptop/model"
)

// SortTasks orders tasks by the window's sort field. Equal keys keep their
// snapshot order; descending reverses the comparison, not the ties.
func SortTasks(tasks []*model.Task, cat *Catalog, w *Window) {
	id, o := w.SortField, w.Options
	slices.SortStableFunc(tasks, func(a, b *model.Task) int {
		c := cat.Compare(id, a, b, o)
		if o.Descending {
			return -c
		}
		return c
	})
}
