package engine

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ftahirops/ptop/model"
)

// Layout is the column arrangement that fits a window into the screen.
type Layout struct {
	All      []FieldID // enabled fields in order
	Visible  []FieldID // maximal run from BegField that fits
	EndField int       // first index of All from which the rest still fits
	VarWidth int       // width of each variable column
	Header   string

	// SortStart and SortEnd delimit the sort column within Header,
	// -1 when it is scrolled out of view.
	SortStart, SortEnd int

	Need model.Need
}

// colLen is the screen cells a column header reserves, pad included.
func colLen(f *Field) int {
	if f.Variable() {
		return len(f.Name) + colPad
	}
	return f.Width + colPad
}

// Calibrate decides which of w's fields fit in cols and builds the header.
// prefix is written ahead of the header (the window number in
// multi-window mode) and is counted against cols.
func Calibrate(cat *Catalog, w *Window, cols int, prefix string) Layout {
	lay := Layout{All: w.Enabled(), SortStart: -1, SortEnd: -1}
	w.BegField = max(min(w.BegField, len(lay.All)-1), 0)
	lay.EndField = len(lay.All)

	used := runewidth.StringWidth(prefix)
	varCount, varSum := 0, 0
	for i := w.BegField; i < len(lay.All); i++ {
		f := cat.Field(lay.All[i])
		n := colLen(f)
		if used+n > cols {
			break
		}
		if f.Variable() {
			varCount++
			varSum += len(f.Name)
		}
		used += n
		lay.Visible = append(lay.Visible, f.ID)
	}
	if varCount > 0 {
		lay.VarWidth = (varSum + cols - used) / varCount
	}

	used = runewidth.StringWidth(prefix)
	for i := len(lay.All) - 1; i >= 0; i-- {
		n := colLen(cat.Field(lay.All[i]))
		if used+n > cols {
			break
		}
		used += n
		lay.EndField = i
	}

	var b strings.Builder
	b.WriteString(prefix)
	pos := runewidth.StringWidth(prefix)
	for _, id := range lay.Visible {
		f := cat.Field(id)
		width := f.Width
		if f.Variable() {
			width = lay.VarWidth
		}
		cell := justifyPad(f.Name, width, justifyRight(f, w.Options))
		if id == w.SortField {
			lay.SortStart, lay.SortEnd = pos, pos+width
		}
		b.WriteString(cell)
		pos += width + colPad
	}
	lay.Header = runewidth.Truncate(b.String(), cols, "")
	lay.Need = calibrateNeed(cat, w, lay.Visible)
	return lay
}

// calibrateNeed is the data the window needs this frame: its visible
// columns plus whatever sorting and filtering read.
func calibrateNeed(cat *Catalog, w *Window, visible []FieldID) model.Need {
	var need model.Need
	addCmd := func(id FieldID) {
		need |= cat.Field(id).Need
		if id == FieldCommand && w.Options.CmdLine {
			need |= model.NeedCmdline
		}
	}
	for _, id := range visible {
		addCmd(id)
	}
	addCmd(w.SortField)
	if w.Options.Forest {
		need |= model.NeedStat | model.NeedStatus
	}
	if !w.Options.ShowIdle {
		need |= model.NeedStat
	}
	if w.User.Mode == 'U' {
		need |= model.NeedStatus
	}
	return need
}
