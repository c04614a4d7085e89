package vt

// Resize changes the grid dimensions. Primary screen content, history
// included, is rewrapped to the new width by joining wrapped rows back into
// logical lines. Same-size calls do nothing.
func (t *Terminal) Resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	if cols == t.cols && rows == t.rows {
		return
	}
	t.reflows++
	if t.alternate != nil {
		t.primarySaved = t.reflowPrimary(cols, rows, t.primarySaved)
		t.alternate = cropLines(t.alternate, cols, rows)
		t.cur.x = clamp(t.cur.x, 0, cols-1)
		t.cur.y = clamp(t.cur.y, 0, rows-1)
		t.cur.wrapNext = false
	} else {
		t.cur = t.reflowPrimary(cols, rows, t.cur)
	}
	t.cols, t.rows = cols, rows
	t.top, t.bottom = 0, rows-1
	t.saved.x = clamp(t.saved.x, 0, cols-1)
	t.saved.y = clamp(t.saved.y, 0, rows-1)
}

func (t *Terminal) reflowPrimary(cols, rows int, cur cursor) cursor {
	all := make([]Line, 0, len(t.history)+len(t.primary))
	all = append(all, t.history...)
	all = append(all, t.primary...)

	cursorRow := len(t.history) + cur.y
	cursorCol := cur.x
	if cur.wrapNext {
		cursorCol++
	}
	last := cursorRow
	for i := len(all) - 1; i > cursorRow; i-- {
		if !all[i].blank() {
			last = i
			break
		}
	}
	all = all[:last+1]

	var out []Line
	newRow, newCol := 0, 0
	for i := 0; i < len(all); {
		var cells []Cell
		offset := -1
		for {
			line := all[i]
			seg := line.Cells
			if !line.Wrapped {
				seg = trimBlank(seg)
			}
			if i == cursorRow {
				offset = len(cells) + cursorCol
			}
			cells = append(cells, seg...)
			i++
			if !line.Wrapped || i >= len(all) {
				break
			}
		}
		wrapped, r, c := wrapCells(cells, cols, offset)
		if offset >= 0 {
			newRow, newCol = len(out)+r, c
		}
		out = append(out, wrapped...)
	}

	for len(out) < rows {
		out = append(out, fillLine(cols, Blank))
	}
	start := len(out) - rows
	if newRow < start {
		out = out[:newRow+rows]
		start = newRow
	}
	history := out[:start:start]
	if over := len(history) - t.capacity; over > 0 {
		history = history[over:]
	}
	t.history = history
	t.primary = out[start:]

	next := cur
	next.x = clamp(newCol, 0, cols-1)
	next.y = newRow - start
	next.wrapNext = false
	return next
}

// wrapCells splits one logical line into rows of width cols and locates the
// cell at offset on the new grid.
func wrapCells(cells []Cell, cols, offset int) (lines []Line, row, col int) {
	cur := make([]Cell, 0, cols)
	for k, c := range cells {
		if c.Width == 0 {
			if k == offset {
				row, col = len(lines), max(len(cur)-1, 0)
			}
			continue
		}
		if c.Width > cols {
			c = Cell{Content: " ", Width: 1, Style: c.Style}
		}
		if len(cur)+c.Width > cols {
			lines = append(lines, Line{Cells: pad(cur, cols), Wrapped: true})
			cur = make([]Cell, 0, cols)
		}
		if k == offset {
			row, col = len(lines), len(cur)
		}
		cur = append(cur, c)
		if c.Width == 2 {
			cur = append(cur, Cell{Style: c.Style})
		}
	}
	if offset >= len(cells) {
		row = len(lines)
		col = min(len(cur)+offset-len(cells), cols-1)
	}
	lines = append(lines, Line{Cells: pad(cur, cols)})
	return lines, row, col
}

func cropLines(lines []Line, cols, rows int) []Line {
	out := make([]Line, rows)
	for i := range out {
		if i < len(lines) {
			out[i] = Line{Cells: pad(lines[i].Cells, cols)}
		} else {
			out[i] = fillLine(cols, Blank)
		}
	}
	return out
}
