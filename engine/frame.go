package engine

import (
	"fmt"
	"strings"

	"github.com/ftahirops/ptop/model"
)

// LineKind tells a sink how to style a line.
type LineKind int

const (
	LineSummary LineKind = iota
	LineMessage
	LineHeader
	LineTask
)

// Line is one screen row.
type Line struct {
	Kind   LineKind
	Text   string
	Window int

	// Header lines: the sort column span, -1 when not highlighted.
	SortStart, SortEnd int

	// Task lines: the task is running and the window highlights it.
	Running bool
}

// Sink receives a frame's rows.
type Sink interface {
	Dimensions() (cols, rows int)
	WriteLine(Line)
}

// Phase names a step of the frame cycle.
type Phase int

const (
	PhaseSignalCheck Phase = iota
	PhaseSnapshotRefresh
	PhaseHistoryMerge
	PhaseCPURefresh
	PhaseWindowRender
	PhaseIdle
)

var phaseNames = [...]string{"signal-check", "snapshot-refresh", "history-merge", "cpu-refresh", "window-render", "idle"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Phase returns the step the last frame reached.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Frame runs one full refresh cycle and writes it to sink. Errors other
// than input errors are fatal to the session.
func (e *Engine) Frame(sink Sink) error {
	e.phase = PhaseSignalCheck
	if e.Flags.terminate.Swap(false) {
		return ErrTerminated
	}
	if e.Flags.resize.Swap(false) {
		e.recalibrate = true
	}
	cols, rows := sink.Dimensions()
	if cols < minCols || rows < minRows {
		return ErrTerminalTooSmall
	}
	if cols != e.cols || rows != e.rows {
		e.cols, e.rows = cols, rows
		e.recalibrate = true
	}
	if e.recalibrate {
		e.calibrate()
	}

	e.phase = PhaseSnapshotRefresh
	if err := e.refreshTasks(); err != nil {
		return fmt.Errorf("%s: %w", e.phase, err)
	}

	e.phase = PhaseCPURefresh
	if _, err := e.refreshCPUs(); err != nil {
		return fmt.Errorf("%s: %w", e.phase, err)
	}
	if e.recalibrate {
		e.calibrate()
	}
	e.refreshSys()
	e.Catalog.SetFrame(e.etScale(), e.sys.Mem.Total)

	e.phase = PhaseWindowRender
	used := e.summary(sink, rows)
	e.trees = nil
	wins := e.visible()
	for i, w := range wins {
		remaining := rows - used
		if remaining < 1 {
			break
		}
		used += e.renderWindow(sink, w, share(remaining, len(wins)-i, w.MaxTasks))
	}

	e.phase = PhaseIdle
	if e.Catalog.Grow() {
		e.recalibrate = true
	}
	e.frames++
	return nil
}

// renderWindow writes a window's header and up to budget task rows and
// returns the rows consumed.
func (e *Engine) renderWindow(sink Sink, w *Window, budget int) int {
	w.budget = budget
	lay := &w.layout
	line := Line{Kind: LineHeader, Text: lay.Header, Window: w.Num, SortStart: -1, SortEnd: -1}
	if w.Options.HighlightSort {
		line.SortStart, line.SortEnd = lay.SortStart, lay.SortEnd
	}
	sink.WriteLine(line)

	w.tasks = e.windowTasks(w, w.tasks[:0])
	w.Clamp(len(w.tasks), len(lay.All))

	prefix := ""
	if e.MultiWindow {
		prefix = strings.Repeat(" ", len(e.headerPrefix(w)))
	}
	n := 0
	for i := w.BegTask; i < len(w.tasks) && n < budget; i++ {
		t := w.tasks[i]
		sink.WriteLine(Line{
			Kind:    LineTask,
			Text:    e.renderRow(w, t, prefix),
			Window:  w.Num,
			Running: t.State == 'R' && w.Options.HighlightRunning,
		})
		n++
	}
	return n + 1
}

// windowTasks returns the window's filtered, ordered view of this frame's
// tasks, reusing buf. Forest windows share one linearization per frame.
func (e *Engine) windowTasks(w *Window, buf []*model.Task) []*model.Task {
	if w.Options.Forest {
		if e.trees == nil {
			e.trees = e.forest.Linearize(e.tasks)
		}
		for _, t := range e.trees {
			if w.show(t) {
				buf = append(buf, t)
			}
		}
		return buf
	}
	for _, t := range e.tasks {
		if w.show(t) {
			buf = append(buf, t)
		}
	}
	SortTasks(buf, e.Catalog, w)
	return buf
}

func (e *Engine) renderRow(w *Window, t *model.Task, prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, id := range w.layout.Visible {
		b.WriteString(e.Catalog.Cell(id, w, t, w.layout.VarWidth))
	}
	return b.String()
}
