package engine

// share is the task rows the next window may use when remaining rows are
// left for windowsLeft windows, each of which also takes a header row.
// maxTasks, when positive, replaces the fair share.
func share(remaining, windowsLeft, maxTasks int) int {
	if windowsLeft < 1 || remaining < 1 {
		return 0
	}
	n := (remaining - windowsLeft) / windowsLeft
	if maxTasks > 0 {
		n = maxTasks
	}
	return max(min(n, remaining-1), 0)
}

// Allocate divides totalRows among the visible windows assuming every
// window fills its share. The compositor applies the same rule frame by
// frame with the rows each window actually used, so unused rows flow to
// the windows below.
func Allocate(wins []*Window, totalRows int) []int {
	budgets := make([]int, len(wins))
	remaining := totalRows
	for i, w := range wins {
		budgets[i] = share(remaining, len(wins)-i, w.MaxTasks)
		if remaining > 0 {
			remaining -= budgets[i] + 1
		}
	}
	return budgets
}
