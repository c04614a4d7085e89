// Package vt interprets a child's output stream into a grid of styled cells
// with a bounded scrollback history.
package vt

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	DefaultScrollback = 1000
	tabWidth          = 8
)

type Option func(*Terminal)

// WithScrollback caps the number of history lines kept. Zero disables history.
func WithScrollback(n int) Option {
	return func(t *Terminal) {
		if n >= 0 {
			t.capacity = n
		}
	}
}

type cursor struct {
	x, y     int
	style    tcell.Style
	wrapNext bool
}

type Terminal struct {
	cols, rows int
	capacity   int

	history   []Line
	primary   []Line
	alternate []Line

	cur          cursor
	saved        cursor
	primarySaved cursor

	top, bottom   int
	autowrap      bool
	cursorVisible bool

	parser  *ansi.Parser
	reflows int
}

func New(cols, rows int, opts ...Option) *Terminal {
	t := &Terminal{
		cols:          max(cols, 1),
		rows:          max(rows, 1),
		capacity:      DefaultScrollback,
		autowrap:      true,
		cursorVisible: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.primary = t.blankLines(t.cols, t.rows)
	t.bottom = t.rows - 1
	t.parser = ansi.NewParser()
	t.parser.SetHandler(ansi.Handler{
		Print:     t.print,
		Execute:   t.execute,
		HandleCsi: t.csi,
		HandleEsc: t.esc,
	})
	return t
}

// Write feeds raw output. Escape sequences split across calls are resumed.
func (t *Terminal) Write(p []byte) (int, error) {
	for _, b := range p {
		t.parser.Advance(b)
	}
	return len(p), nil
}

func (t *Terminal) Size() (cols, rows int) {
	return t.cols, t.rows
}

// Reflows counts how many times Resize actually changed the grid.
func (t *Terminal) Reflows() int {
	return t.reflows
}

// HistoryRows is the number of scrollback lines reachable with negative
// indices. It is zero while the alternate screen is shown.
func (t *Terminal) HistoryRows() int {
	if t.alternate != nil {
		return 0
	}
	return len(t.history)
}

// Line returns row i, where 0 is the first visible row and negative values
// index into history. Out of range rows are empty.
func (t *Terminal) Line(i int) Line {
	if i >= 0 {
		if i < t.rows {
			return t.lines()[i]
		}
		return Line{}
	}
	if t.alternate != nil {
		return Line{}
	}
	j := len(t.history) + i
	if j < 0 {
		return Line{}
	}
	return t.history[j]
}

func (t *Terminal) Cursor() (x, y int, visible bool) {
	return t.cur.x, t.cur.y, t.cursorVisible
}

func (t *Terminal) AltScreen() bool {
	return t.alternate != nil
}

func (t *Terminal) lines() []Line {
	if t.alternate != nil {
		return t.alternate
	}
	return t.primary
}

func (t *Terminal) eraseCell() Cell {
	return Cell{Content: " ", Width: 1, Style: eraseStyle(t.cur.style)}
}

func (t *Terminal) blankLine() Line {
	return fillLine(t.cols, t.eraseCell())
}

func (t *Terminal) blankLines(cols, rows int) []Line {
	lines := make([]Line, rows)
	for i := range lines {
		lines[i] = fillLine(cols, Blank)
	}
	return lines
}

func (t *Terminal) pushHistory(l Line) {
	if t.capacity == 0 {
		return
	}
	t.history = append(t.history, l)
	if over := len(t.history) - t.capacity; over > 0 {
		copy(t.history, t.history[over:])
		clear(t.history[len(t.history)-over:])
		t.history = t.history[:len(t.history)-over]
	}
}

func (t *Terminal) print(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		t.combine(r)
		return
	}
	if w > t.cols {
		return
	}
	c := &t.cur
	if c.wrapNext {
		c.wrapNext = false
		if t.autowrap {
			t.lines()[c.y].Wrapped = true
			c.x = 0
			t.index()
		}
	}
	if c.x+w > t.cols {
		if t.autowrap {
			cells := t.lines()[c.y].Cells
			for x := c.x; x < t.cols; x++ {
				cells[x] = t.eraseCell()
			}
			t.lines()[c.y].Wrapped = true
			c.x = 0
			t.index()
		} else {
			c.x = t.cols - w
		}
	}
	cells := t.lines()[c.y].Cells
	cells[c.x] = Cell{Content: string(r), Width: w, Style: c.style}
	if w == 2 {
		cells[c.x+1] = Cell{Style: c.style}
	}
	c.x += w
	if c.x >= t.cols {
		c.x = t.cols - 1
		c.wrapNext = true
	}
}

// combine attaches a zero-width rune to the cell before the cursor.
func (t *Terminal) combine(r rune) {
	x := t.cur.x
	if !t.cur.wrapNext {
		x--
	}
	if x < 0 {
		return
	}
	cells := t.lines()[t.cur.y].Cells
	if cells[x].Width == 0 && x > 0 {
		x--
	}
	cells[x].Content += string(r)
}

func (t *Terminal) execute(b byte) {
	switch b {
	case ansi.BS:
		if t.cur.x > 0 {
			t.cur.x--
		}
		t.cur.wrapNext = false
	case ansi.HT:
		t.cur.x = min((t.cur.x/tabWidth+1)*tabWidth, t.cols-1)
		t.cur.wrapNext = false
	case ansi.LF, ansi.VT, ansi.FF:
		t.index()
	case ansi.CR:
		t.cur.x = 0
		t.cur.wrapNext = false
	}
}

// index moves the cursor down one row, scrolling at the bottom margin.
func (t *Terminal) index() {
	t.cur.wrapNext = false
	switch {
	case t.cur.y == t.bottom:
		t.scrollUp(1)
	case t.cur.y < t.rows-1:
		t.cur.y++
	}
}

func (t *Terminal) reverseIndex() {
	t.cur.wrapNext = false
	switch {
	case t.cur.y == t.top:
		t.scrollDown(1)
	case t.cur.y > 0:
		t.cur.y--
	}
}

func (t *Terminal) scrollUp(n int) {
	lines := t.lines()
	n = min(n, t.bottom-t.top+1)
	for range n {
		if t.top == 0 && t.alternate == nil {
			t.pushHistory(lines[t.top])
		}
		copy(lines[t.top:t.bottom], lines[t.top+1:t.bottom+1])
		lines[t.bottom] = t.blankLine()
	}
}

func (t *Terminal) scrollDown(n int) {
	lines := t.lines()
	n = min(n, t.bottom-t.top+1)
	for range n {
		copy(lines[t.top+1:t.bottom+1], lines[t.top:t.bottom])
		lines[t.top] = t.blankLine()
	}
}

func (t *Terminal) moveTo(x, y int) {
	t.cur.x = clamp(x, 0, t.cols-1)
	t.cur.y = clamp(y, 0, t.rows-1)
	t.cur.wrapNext = false
}

func (t *Terminal) esc(cmd ansi.Cmd) {
	if cmd.Intermediate() != 0 {
		return
	}
	switch cmd.Final() {
	case '7':
		t.saved = t.cur
	case '8':
		t.restoreCursor()
	case 'D':
		t.index()
	case 'E':
		t.cur.x = 0
		t.index()
	case 'M':
		t.reverseIndex()
	case 'c':
		t.reset()
	}
}

func (t *Terminal) restoreCursor() {
	t.cur = t.saved
	t.cur.x = clamp(t.cur.x, 0, t.cols-1)
	t.cur.y = clamp(t.cur.y, 0, t.rows-1)
}

func (t *Terminal) reset() {
	t.alternate = nil
	t.primary = t.blankLines(t.cols, t.rows)
	t.cur = cursor{}
	t.saved = cursor{}
	t.top, t.bottom = 0, t.rows-1
	t.autowrap = true
	t.cursorVisible = true
}

func (t *Terminal) setAlternate(on bool) {
	if on == (t.alternate != nil) {
		return
	}
	if on {
		t.primarySaved = t.cur
		t.alternate = t.blankLines(t.cols, t.rows)
	} else {
		t.alternate = nil
		t.cur = t.primarySaved
	}
	t.top, t.bottom = 0, t.rows-1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
