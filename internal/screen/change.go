// Package screen describes terminal output as a list of changes and keeps an
// off-screen copy of the result so consecutive frames can be diffed.
package screen

import "github.com/gdamore/tcell/v2"

// Change is one drawing instruction. The set of implementations is closed.
type Change interface {
	change()
}

// Position is a coordinate that is either absolute or relative to the
// current cursor.
type Position struct {
	N        int
	Relative bool
}

func Abs(n int) Position { return Position{N: n} }
func Rel(n int) Position { return Position{N: n, Relative: true} }

func (p Position) resolve(current int) int {
	if p.Relative {
		return current + p.N
	}
	return p.N
}

type CursorPosition struct {
	X, Y Position
}

// SetStyle replaces the style used by subsequent Text changes.
type SetStyle struct {
	Style tcell.Style
}

// Text is written at the cursor, which advances by the display width.
type Text string

// ClearToEndOfLine blanks from the cursor to the right edge.
type ClearToEndOfLine struct {
	Background tcell.Color
}

// ClearScreen blanks every cell and homes the cursor.
type ClearScreen struct {
	Background tcell.Color
}

func (CursorPosition) change()   {}
func (SetStyle) change()         {}
func (Text) change()             {}
func (ClearToEndOfLine) change() {}
func (ClearScreen) change()      {}

// MoveTo is shorthand for an absolute cursor move.
func MoveTo(x, y int) CursorPosition {
	return CursorPosition{X: Abs(x), Y: Abs(y)}
}

// NextLine moves to column 0 of the row below.
func NextLine() CursorPosition {
	return CursorPosition{X: Abs(0), Y: Rel(1)}
}

func backgroundStyle(bg tcell.Color) tcell.Style {
	if bg == tcell.ColorDefault {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Background(bg)
}
