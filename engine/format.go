package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	colPad  = 1   // blank after every column
	colPlus = "+" // last character of a truncated cell
)

// Scale is the unit memory columns and summary lines are shown in.
type Scale int

const (
	ScaleKiB Scale = iota
	ScaleMiB
	ScaleGiB
	ScaleTiB
	ScalePiB
	ScaleEiB
)

const scaleSuffixes = "kmgtpe"

var scaleNames = [...]string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

func (s Scale) String() string {
	if s < ScaleKiB || s > ScaleEiB {
		return "?"
	}
	return scaleNames[s]
}

// ParseScale resolves a unit name such as "MiB" or "m".
func ParseScale(name string) (Scale, error) {
	for i, n := range scaleNames {
		if strings.EqualFold(n, name) || strings.EqualFold(n[:1], name) {
			return Scale(i), nil
		}
	}
	return ScaleKiB, fmt.Errorf("unknown memory scale %q", name)
}

// justifyPad fits s into width display cells and appends the column pad.
func justifyPad(s string, width int, right bool) string {
	if width < 0 {
		width = 0
	}
	s = runewidth.Truncate(s, width, "")
	if right {
		s = runewidth.FillLeft(s, width)
	} else {
		s = runewidth.FillRight(s, width)
	}
	return s + " "
}

// truncPlus shortens s to width cells, marking the cut with a '+'.
func truncPlus(s string, width int) (string, bool) {
	if runewidth.StringWidth(s) <= width {
		return s, false
	}
	if width < 1 {
		return "", true
	}
	return runewidth.Truncate(s, width-1, "") + colPlus, true
}

func fits(s string, width int) bool {
	return len(s) <= width
}

// scaleMem formats a KiB quantity starting at the target unit and moving
// up until it fits.
func scaleMem(target Scale, kb uint64, width int, right, zero bool) string {
	if zero && kb == 0 {
		return justifyPad("", width, right)
	}
	v := float64(kb)
	for i := ScaleKiB; i < ScaleEiB; i++ {
		if i >= target {
			var s string
			switch i {
			case ScaleKiB:
				s = fmt.Sprintf("%.0f", v)
			case ScaleMiB:
				s = fmt.Sprintf("%.1f%c", v, scaleSuffixes[i])
			default:
				s = fmt.Sprintf("%.3f%c", v, scaleSuffixes[i])
			}
			if fits(s, width) {
				return justifyPad(s, width, right)
			}
		}
		v /= 1024
	}
	return justifyPad("?", width, right)
}

// scaleNum formats a count, falling back to 1024 based suffixes.
func scaleNum(n uint64, width int, right, zero bool) string {
	if zero && n == 0 {
		return justifyPad("", width, right)
	}
	if s := strconv.FormatUint(n, 10); fits(s, width) {
		return justifyPad(s, width, right)
	}
	v := float64(n)
	for i := 0; i < len(scaleSuffixes); i++ {
		v /= 1024
		if s := fmt.Sprintf("%.1f%c", v, scaleSuffixes[i]); fits(s, width) {
			return justifyPad(s, width, right)
		}
		if s := fmt.Sprintf("%.0f%c", v, scaleSuffixes[i]); fits(s, width) {
			return justifyPad(s, width, right)
		}
	}
	return justifyPad("?", width, right)
}

// scalePcnt formats a percentage with decreasing precision.
func scalePcnt(v float64, width int, right, zero bool) string {
	if zero && v <= 0 {
		return justifyPad("", width, right)
	}
	for _, prec := range []int{3, 2, 1, 0} {
		if s := strconv.FormatFloat(v, 'f', prec, 64); fits(s, width) {
			return justifyPad(s, width, right)
		}
	}
	return justifyPad("?", width, right)
}

// scaleTics formats clock ticks as cpu time, collapsing from m:ss.hh
// through m:ss, h,mm, hours, days and weeks.
func scaleTics(tics, hz uint64, width int, right, zero bool) string {
	if hz == 0 {
		hz = 100
	}
	nt := tics * 100 / hz
	if zero && nt == 0 {
		return justifyPad("", width, right)
	}
	cc := nt % 100
	nt /= 100
	nn := nt % 60
	nt /= 60
	candidates := []string{
		fmt.Sprintf("%d:%02d.%02d", nt, nn, cc),
		fmt.Sprintf("%d:%02d", nt, nn),
	}
	nn = nt % 60
	nt /= 60
	candidates = append(candidates,
		fmt.Sprintf("%d,%02d", nt, nn),
		fmt.Sprintf("%dh", nt),
		fmt.Sprintf("%dd", nt/24),
		fmt.Sprintf("%dw", nt/24/7),
	)
	for _, s := range candidates {
		if fits(s, width) {
			return justifyPad(s, width, right)
		}
	}
	return justifyPad("?", width, right)
}

// hexFlags renders kernel task flags with zeros shown as dots.
func hexFlags(v uint64) string {
	return strings.ReplaceAll(fmt.Sprintf("%08x", v), "0", ".")
}

// ttyName abbreviates a controlling terminal device number.
func ttyName(tty int) string {
	if tty == 0 {
		return "?"
	}
	major := (tty >> 8) & 0xfff
	minor := (tty & 0xff) | ((tty >> 12) & 0xfff00)
	switch {
	case major == 4 && minor < 64:
		return "tty" + strconv.Itoa(minor)
	case major == 4:
		return "ttyS" + strconv.Itoa(minor-64)
	case major >= 136 && major <= 143:
		return "pts/" + strconv.Itoa(minor+(major-136)*256)
	}
	return fmt.Sprintf("%d,%d", major, minor)
}
