package vt

import "github.com/charmbracelet/x/ansi"

func (t *Terminal) csi(cmd ansi.Cmd, params ansi.Params) {
	param := func(i, def int) int {
		v, _, _ := params.Param(i, def)
		return v
	}
	count := func() int {
		return max(param(0, 1), 1)
	}

	switch cmd.Prefix() {
	case 0:
	case '?':
		t.privateMode(cmd.Final(), params)
		return
	default:
		return
	}
	if cmd.Intermediate() != 0 {
		return
	}

	x, y := t.cur.x, t.cur.y
	switch cmd.Final() {
	case '@':
		t.insertChars(count())
	case 'A':
		t.moveTo(x, max(y-count(), t.upperLimit()))
	case 'B', 'e':
		t.moveTo(x, min(y+count(), t.lowerLimit()))
	case 'C', 'a':
		t.moveTo(x+count(), y)
	case 'D':
		t.moveTo(x-count(), y)
	case 'E':
		t.moveTo(0, min(y+count(), t.lowerLimit()))
	case 'F':
		t.moveTo(0, max(y-count(), t.upperLimit()))
	case 'G', '`':
		t.moveTo(param(0, 1)-1, y)
	case 'd':
		t.moveTo(x, param(0, 1)-1)
	case 'H', 'f':
		t.moveTo(param(1, 1)-1, param(0, 1)-1)
	case 'J':
		t.eraseDisplay(param(0, 0))
	case 'K':
		t.eraseLine(param(0, 0))
	case 'L':
		t.insertLines(count())
	case 'M':
		t.deleteLines(count())
	case 'P':
		t.deleteChars(count())
	case 'S':
		t.scrollUp(count())
	case 'T':
		t.scrollDown(count())
	case 'X':
		t.eraseChars(count())
	case 'm':
		t.sgr(params)
	case 'r':
		t.setMargins(param(0, 1), param(1, t.rows))
	case 's':
		t.saved = t.cur
	case 'u':
		t.restoreCursor()
	}
}

func (t *Terminal) privateMode(final byte, params ansi.Params) {
	if final != 'h' && final != 'l' {
		return
	}
	set := final == 'h'
	params.ForEach(-1, func(_, mode int, _ bool) {
		switch mode {
		case 7:
			t.autowrap = set
		case 25:
			t.cursorVisible = set
		case 47, 1047, 1049:
			t.setAlternate(set)
		}
	})
}

// upperLimit and lowerLimit bound vertical movement to the scroll region
// while the cursor is inside it.
func (t *Terminal) upperLimit() int {
	if t.cur.y >= t.top {
		return t.top
	}
	return 0
}

func (t *Terminal) lowerLimit() int {
	if t.cur.y <= t.bottom {
		return t.bottom
	}
	return t.rows - 1
}

func (t *Terminal) setMargins(top, bottom int) {
	top = max(top, 1)
	bottom = min(bottom, t.rows)
	if top >= bottom {
		return
	}
	t.top, t.bottom = top-1, bottom-1
	t.moveTo(0, 0)
}

func (t *Terminal) eraseDisplay(mode int) {
	lines := t.lines()
	switch mode {
	case 0:
		t.eraseLine(0)
		for y := t.cur.y + 1; y < t.rows; y++ {
			lines[y] = t.blankLine()
		}
	case 1:
		for y := 0; y < t.cur.y; y++ {
			lines[y] = t.blankLine()
		}
		t.eraseLine(1)
	case 2:
		for y := range lines {
			lines[y] = t.blankLine()
		}
	case 3:
		clear(t.history)
		t.history = t.history[:0]
	}
}

func (t *Terminal) eraseLine(mode int) {
	line := &t.lines()[t.cur.y]
	from, to := 0, t.cols
	switch mode {
	case 0:
		from = t.cur.x
		line.Wrapped = false
	case 1:
		to = t.cur.x + 1
	case 2:
		line.Wrapped = false
	default:
		return
	}
	t.fill(line.Cells, from, to)
	t.cur.wrapNext = false
}

func (t *Terminal) fill(cells []Cell, from, to int) {
	blank := t.eraseCell()
	for x := max(from, 0); x < min(to, len(cells)); x++ {
		cells[x] = blank
	}
}

func (t *Terminal) insertChars(n int) {
	cells := t.lines()[t.cur.y].Cells
	x := t.cur.x
	n = min(n, t.cols-x)
	copy(cells[x+n:], cells[x:t.cols-n])
	t.fill(cells, x, x+n)
	t.cur.wrapNext = false
}

func (t *Terminal) deleteChars(n int) {
	cells := t.lines()[t.cur.y].Cells
	x := t.cur.x
	n = min(n, t.cols-x)
	copy(cells[x:], cells[x+n:])
	t.fill(cells, t.cols-n, t.cols)
	t.cur.wrapNext = false
}

func (t *Terminal) eraseChars(n int) {
	t.fill(t.lines()[t.cur.y].Cells, t.cur.x, t.cur.x+n)
	t.cur.wrapNext = false
}

func (t *Terminal) insertLines(n int) {
	if t.cur.y < t.top || t.cur.y > t.bottom {
		return
	}
	lines := t.lines()
	n = min(n, t.bottom-t.cur.y+1)
	for range n {
		copy(lines[t.cur.y+1:t.bottom+1], lines[t.cur.y:t.bottom])
		lines[t.cur.y] = t.blankLine()
	}
	t.cur.x = 0
	t.cur.wrapNext = false
}

func (t *Terminal) deleteLines(n int) {
	if t.cur.y < t.top || t.cur.y > t.bottom {
		return
	}
	lines := t.lines()
	n = min(n, t.bottom-t.cur.y+1)
	for range n {
		copy(lines[t.cur.y:t.bottom], lines[t.cur.y+1:t.bottom+1])
		lines[t.bottom] = t.blankLine()
	}
	t.cur.x = 0
	t.cur.wrapNext = false
}
