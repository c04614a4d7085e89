package screen

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one position on a Surface. The right half of a wide rune is a
// continuation cell with Width 0.
type Cell struct {
	Content string
	Width   int
	Style   tcell.Style
}

var Blank = Cell{Content: " ", Width: 1, Style: tcell.StyleDefault}

// Update is a cell that differs between two frames.
type Update struct {
	X, Y int
	Cell Cell
}

// Surface is an off-screen grid that Changes are applied to.
type Surface struct {
	width, height int
	cells         []Cell
	x, y          int
	style         tcell.Style
	lastX, lastY  int
}

func NewSurface(width, height int) *Surface {
	width, height = max(width, 0), max(height, 0)
	s := &Surface{width: width, height: height, cells: make([]Cell, width*height), lastX: -1}
	s.fill(0, len(s.cells), Blank)
	return s
}

func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Cursor returns the position the next Text change would be written at.
func (s *Surface) Cursor() (x, y int) {
	return s.x, s.y
}

// Cell returns the cell at x,y, or Blank outside the grid.
func (s *Surface) Cell(x, y int) Cell {
	if !s.inside(x, y) {
		return Blank
	}
	return s.cells[y*s.width+x]
}

// Row renders row y as plain text with trailing blanks removed.
func (s *Surface) Row(y int) string {
	var b strings.Builder
	for x := 0; x < s.width; x++ {
		b.WriteString(s.Cell(x, y).Content)
	}
	return strings.TrimRight(b.String(), " ")
}

func (s *Surface) Apply(changes ...Change) {
	for _, ch := range changes {
		switch c := ch.(type) {
		case CursorPosition:
			s.x = c.X.resolve(s.x)
			s.y = c.Y.resolve(s.y)
			s.lastX = -1
		case SetStyle:
			s.style = c.Style
		case Text:
			s.text(string(c))
		case ClearToEndOfLine:
			if s.y >= 0 && s.y < s.height && s.x < s.width {
				row := s.y * s.width
				s.fill(row+max(s.x, 0), row+s.width, Cell{Content: " ", Width: 1, Style: backgroundStyle(c.Background)})
			}
		case ClearScreen:
			s.fill(0, len(s.cells), Cell{Content: " ", Width: 1, Style: backgroundStyle(c.Background)})
			s.x, s.y = 0, 0
			s.lastX = -1
		}
	}
}

func (s *Surface) text(text string) {
	for _, r := range text {
		if r == utf8.RuneError {
			r = '?'
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			if s.inside(s.lastX, s.lastY) {
				s.cells[s.lastY*s.width+s.lastX].Content += string(r)
			}
			continue
		}
		if s.inside(s.x, s.y) && s.x+w <= s.width {
			i := s.y*s.width + s.x
			s.cells[i] = Cell{Content: string(r), Width: w, Style: s.style}
			if w == 2 {
				s.cells[i+1] = Cell{Style: s.style}
			}
			s.lastX, s.lastY = s.x, s.y
		} else {
			s.lastX = -1
		}
		s.x += w
	}
}

func (s *Surface) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

func (s *Surface) fill(from, to int, c Cell) {
	for i := from; i < to; i++ {
		s.cells[i] = c
	}
}

// Diff lists the cells of next that differ from s. A nil receiver or a size
// mismatch yields every cell of next. Continuation cells are never listed.
func (s *Surface) Diff(next *Surface) []Update {
	full := s == nil || s.width != next.width || s.height != next.height
	var updates []Update
	for y := 0; y < next.height; y++ {
		for x := 0; x < next.width; x++ {
			i := y*next.width + x
			c := next.cells[i]
			if c.Width == 0 {
				continue
			}
			if full || s.cells[i] != c {
				updates = append(updates, Update{X: x, Y: y, Cell: c})
			}
		}
	}
	return updates
}
