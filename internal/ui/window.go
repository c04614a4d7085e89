// Package ui stacks one window per group on the screen and tracks which
// window has focus.
package ui

import (
	"fmt"
	"strings"

	"github.com/bma-d/sudare/internal/logging"
	"github.com/bma-d/sudare/internal/pane"
	"github.com/bma-d/sudare/internal/procfile"
	"github.com/bma-d/sudare/internal/screen"
	"github.com/gdamore/tcell/v2"
	"pkt.systems/pslog"
)

// Pane is the terminal a window shows below its status bar.
type Pane interface {
	Resize(cols, rows int) error
	PollRender() []screen.Change
	ScrollUp()
	ScrollDown()
	ResetScroll()
	Close() error
}

// PaneOpener starts argv in a new pane of the given size.
type PaneOpener func(cols, rows int, argv string) (Pane, error)

// OpenWith adapts a pane.Opener.
func OpenWith(o pane.Opener) PaneOpener {
	return func(cols, rows int, argv string) (Pane, error) {
		p, err := o.Open(cols, rows, argv)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

type Window struct {
	group  procfile.Group
	active int
	pane   Pane
	open   PaneOpener
	log    pslog.Logger
}

func NewWindow(group procfile.Group, open PaneOpener, log pslog.Logger) *Window {
	if log == nil {
		log = logging.Discard()
	}
	return &Window{group: group, open: open, log: log}
}

func (w *Window) Title() string {
	return w.group.Title
}

// Active returns the index of the active member and the member itself.
func (w *Window) Active() (int, procfile.Member) {
	return w.active, w.group.Members[w.active]
}

// Running reports whether the window currently owns a pane.
func (w *Window) Running() bool {
	return w.pane != nil
}

// SetActive switches to member index. The current pane is always torn down
// first, even when index is already active. Out of range indices are
// ignored.
func (w *Window) SetActive(cols, rows, index int) {
	if index < 0 || index >= len(w.group.Members) {
		return
	}
	w.closePane()
	w.active = index

	cmd, ok := w.group.Members[index].(procfile.Command)
	if !ok {
		return
	}
	p, err := w.open(cols, rows, cmd.Argv)
	if err != nil {
		w.log.Warn("spawn failed", "group", w.group.Title, "member", cmd.Name, "err", err)
		return
	}
	w.log.Info("member started", "group", w.group.Title, "member", cmd.Name)
	w.pane = p
}

// Render draws the status bar at row y and the pane below it.
func (w *Window) Render(s *screen.Surface, y, width, height int, focused bool) {
	if height <= 0 {
		return
	}
	bg := tcell.ColorGray
	if focused {
		bg = tcell.ColorFuchsia
	}
	s.Apply(
		screen.MoveTo(0, y),
		screen.SetStyle{Style: tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(bg)},
		screen.Text(w.statusLine()),
		screen.ClearToEndOfLine{Background: bg},
		screen.SetStyle{Style: tcell.StyleDefault},
		screen.NextLine(),
	)
	if w.pane == nil {
		return
	}
	if err := w.pane.Resize(width, height-1); err != nil {
		w.log.Debug("pane resize failed", "group", w.group.Title, "err", err)
	}
	s.Apply(w.pane.PollRender()...)
}

func (w *Window) statusLine() string {
	items := make([]string, len(w.group.Members))
	for i, m := range w.group.Members {
		marker := ""
		if i == w.active {
			marker = "*"
		}
		items[i] = fmt.Sprintf("%s%d:%s", marker, i, m.Label())
	}
	return w.group.Title + " | " + strings.Join(items, " ")
}

func (w *Window) ScrollUp() {
	if w.pane != nil {
		w.pane.ScrollUp()
	}
}

func (w *Window) ScrollDown() {
	if w.pane != nil {
		w.pane.ScrollDown()
	}
}

func (w *Window) ResetScroll() {
	if w.pane != nil {
		w.pane.ResetScroll()
	}
}

func (w *Window) Close() {
	w.closePane()
}

func (w *Window) closePane() {
	if w.pane == nil {
		return
	}
	if err := w.pane.Close(); err != nil {
		w.log.Debug("pane close failed", "group", w.group.Title, "err", err)
	}
	w.pane = nil
}
