package ui

import (
	"github.com/bma-d/sudare/internal/logging"
	"github.com/bma-d/sudare/internal/procfile"
	"github.com/bma-d/sudare/internal/screen"
	"github.com/gdamore/tcell/v2"
	"pkt.systems/pslog"
)

// Target is where frames are drawn. tcell.Screen satisfies it.
type Target interface {
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Clear()
	Show()
	Sync()
}

// Compositor owns every window and turns them into minimal screen updates.
type Compositor struct {
	windows []*Window
	focus   int

	prev    *screen.Surface
	repaint bool
	cols    int
	rows    int

	log pslog.Logger
}

// New creates one window per group, all starting on the disabled member.
// cols and rows are the initial viewport used for spawning.
func New(groups []procfile.Group, open PaneOpener, cols, rows int, log pslog.Logger) *Compositor {
	if log == nil {
		log = logging.Discard()
	}
	c := &Compositor{repaint: true, cols: cols, rows: rows, log: log}
	for _, g := range groups {
		c.windows = append(c.windows, NewWindow(g, open, log))
	}
	return c
}

func (c *Compositor) Windows() []*Window {
	return c.windows
}

// Focused returns the index of the focused window.
func (c *Compositor) Focused() int {
	return c.focus
}

// ForceRepaint clears the target before the next frame.
func (c *Compositor) ForceRepaint() {
	c.repaint = true
}

// RenderFrame composes all windows on a fresh surface, sends the cells
// that changed since the previous frame and shows the result. It returns
// the number of cells written.
func (c *Compositor) RenderFrame(target Target) int {
	width, height := target.Size()
	if width != c.cols || height != c.rows {
		c.cols, c.rows = width, height
		c.repaint = true
	}

	next := screen.NewSurface(width, height)
	for i, sp := range windowSpans(len(c.windows), c.focus, height) {
		c.windows[i].Render(next, sp.y, width, sp.height, i == c.focus)
	}

	prev := c.prev
	repaint := c.repaint
	if repaint {
		target.Clear()
		prev = nil
		c.repaint = false
	}
	updates := prev.Diff(next)
	for _, u := range updates {
		primary, combining := splitContent(u.Cell.Content)
		target.SetContent(u.X, u.Y, primary, combining, u.Cell.Style)
	}
	if repaint {
		// Sync also clears the physical terminal, not just tcell's buffer.
		target.Sync()
	} else {
		target.Show()
	}
	c.prev = next
	return len(updates)
}

func splitContent(content string) (rune, []rune) {
	runes := []rune(content)
	if len(runes) == 0 {
		return ' ', nil
	}
	if len(runes) == 1 {
		return runes[0], nil
	}
	return runes[0], runes[1:]
}

func (c *Compositor) Close() {
	for _, w := range c.windows {
		w.Close()
	}
}
