package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/ptop/engine"
)

// fieldScreen edits the current window's columns: which are shown, their
// order and the sort column.
type fieldScreen struct {
	cursor int
}

// update handles a key and reports whether the screen stays open.
func (fs *fieldScreen) update(f engine.Framer, msg tea.KeyMsg) (bool, error) {
	w := f.Base().Cur()
	n := len(w.Fields)
	fs.cursor = min(max(fs.cursor, 0), n-1)
	id := w.Fields[fs.cursor].ID

	var err error
	switch msg.String() {
	case "q", "esc", "f", "F", "enter":
		return false, nil
	case "up", "k":
		fs.cursor = max(fs.cursor-1, 0)
	case "down", "j":
		fs.cursor = min(fs.cursor+1, n-1)
	case "home":
		fs.cursor = 0
	case "end":
		fs.cursor = n - 1
	case " ", "d":
		err = f.Apply(engine.ToggleField{ID: id})
	case "K", "shift+up":
		if err = f.Apply(engine.MoveField{ID: id, Delta: -1}); err == nil {
			fs.cursor = max(fs.cursor-1, 0)
		}
	case "J", "shift+down":
		if err = f.Apply(engine.MoveField{ID: id, Delta: 1}); err == nil {
			fs.cursor = min(fs.cursor+1, n-1)
		}
	case "s":
		err = f.Apply(engine.SortBy{ID: id})
	case "a":
		err = f.Apply(engine.CycleWindow{Delta: 1})
	case "w":
		err = f.Apply(engine.CycleWindow{Delta: -1})
	}
	return true, err
}

func (fs *fieldScreen) view(e *engine.Engine, width, height int) string {
	w := e.Cur()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Fields Management for window %d:%s, whose current sort field is %s",
		w.Num, w.Name, e.Catalog.Field(w.SortField).Name)))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("   Navigate with Up/Dn, 'd' or <Space> toggles display, K/J move, 's' sets sort"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("   Use 'a' or 'w' to cycle windows, 'q' or <Esc> when done"))
	sb.WriteString("\n\n")

	rows := max(height-5, 1)
	top := 0
	if fs.cursor >= rows {
		top = fs.cursor - rows + 1
	}
	for i := top; i < len(w.Fields) && i < top+rows; i++ {
		s := w.Fields[i]
		f := e.Catalog.Field(s.ID)
		mark := "  "
		if s.Enabled {
			mark = "* "
		}
		line := fmt.Sprintf("%s%-8s = %s", mark, f.Name, f.Desc)
		if s.ID == w.SortField {
			line += "  (sort)"
		}
		if len(line) > width && width > 0 {
			line = line[:width]
		}
		switch {
		case i == fs.cursor:
			line = selectedStyle.Render(line)
		case !s.Enabled:
			line = dimStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
