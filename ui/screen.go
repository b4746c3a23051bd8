package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ftahirops/ptop/engine"
)

// screen collects one frame's lines for View.
type screen struct {
	cols, rows int
	lines      []engine.Line
}

func (s *screen) Dimensions() (int, int) { return s.cols, s.rows }

func (s *screen) WriteLine(l engine.Line) { s.lines = append(s.lines, l) }

func (s *screen) reset() { s.lines = s.lines[:0] }

// render styles the frame. The message line shows msg (a prompt or a
// transient message) when set.
func (s *screen) render(msg string) string {
	var b strings.Builder
	for i, l := range s.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch l.Kind {
		case engine.LineSummary:
			b.WriteString(summaryStyle.Render(l.Text))
		case engine.LineMessage:
			b.WriteString(msg)
		case engine.LineHeader:
			b.WriteString(renderHeader(l, s.cols))
		case engine.LineTask:
			if l.Running {
				b.WriteString(runningStyle.Render(l.Text))
			} else {
				b.WriteString(l.Text)
			}
		}
	}
	return b.String()
}

// renderHeader pads the header to the screen width and picks out the
// sort column.
func renderHeader(l engine.Line, cols int) string {
	text := runewidth.FillRight(l.Text, cols)
	if l.SortStart < 0 || l.SortEnd > len(text) || l.SortStart >= l.SortEnd {
		return headerStyle.Render(text)
	}
	return headerStyle.Render(text[:l.SortStart]) +
		sortStyle.Render(text[l.SortStart:l.SortEnd]) +
		headerStyle.Render(text[l.SortEnd:])
}
