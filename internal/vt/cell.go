package vt

import "github.com/gdamore/tcell/v2"

// Cell is one grid position. A wide rune occupies its own cell plus a
// continuation cell with Width 0 and empty Content.
type Cell struct {
	Content string
	Width   int
	Style   tcell.Style
}

// Blank is an empty default-styled cell.
var Blank = Cell{Content: " ", Width: 1, Style: tcell.StyleDefault}

// IsBlank reports whether c renders as nothing on a default background.
func (c Cell) IsBlank() bool {
	return c == Blank
}

// Line is one row of cells. Wrapped marks a row that continues on the next
// row because the cursor ran past the right margin.
type Line struct {
	Cells   []Cell
	Wrapped bool
}

func (l Line) blank() bool {
	for _, c := range l.Cells {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Trimmed returns the cells up to the last non-blank one.
func (l Line) Trimmed() []Cell {
	return trimBlank(l.Cells)
}

func trimBlank(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && cells[end-1].IsBlank() {
		end--
	}
	return cells[:end]
}

func eraseStyle(style tcell.Style) tcell.Style {
	_, bg, _ := style.Decompose()
	if bg == tcell.ColorDefault {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Background(bg)
}

func fillLine(cols int, fill Cell) Line {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = fill
	}
	return Line{Cells: cells}
}

// pad copies cells into a new row of exactly cols cells.
func pad(cells []Cell, cols int) []Cell {
	out := make([]Cell, cols)
	n := copy(out, cells)
	for i := n; i < cols; i++ {
		out[i] = Blank
	}
	return out
}
