// Package pane binds a pty session to a terminal emulator and renders the
// visible part of it as screen changes.
package pane

import (
	"github.com/bma-d/sudare/internal/ptysession"
	"github.com/bma-d/sudare/internal/screen"
	"github.com/bma-d/sudare/internal/vt"
	"github.com/gdamore/tcell/v2"
	"pkt.systems/pslog"
)

// Session is the part of a pty session a pane drives.
type Session interface {
	Poll() []byte
	Resize(ptysession.Size) error
	Close() error
}

type Pane struct {
	session Session
	term    *vt.Terminal
	cols    int
	rows    int
	// offset is 0 when following live output, negative when scrolled
	// back into history.
	offset int
}

func New(session Session, cols, rows int, opts ...vt.Option) *Pane {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Pane{
		session: session,
		term:    vt.New(cols, rows, opts...),
		cols:    cols,
		rows:    rows,
	}
}

func (p *Pane) Size() (cols, rows int) {
	return p.cols, p.rows
}

// Resize adapts the emulator and the pty to a new viewport. It does nothing
// when the viewport is unchanged.
func (p *Pane) Resize(cols, rows int) error {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols == p.cols && rows == p.rows {
		return nil
	}
	p.cols, p.rows = cols, rows
	p.term.Resize(cols, rows)
	p.clampOffset()
	return p.session.Resize(ptysession.Size{Cols: max(cols, 1), Rows: max(rows, 1)})
}

// Reflows reports how many times the emulator grid was rebuilt.
func (p *Pane) Reflows() int {
	return p.term.Reflows()
}

// PollRender feeds pending output into the emulator and returns the
// changes that draw the visible rows, starting at the current cursor.
func (p *Pane) PollRender() []screen.Change {
	if data := p.session.Poll(); len(data) > 0 {
		_, _ = p.term.Write(data)
	}
	p.clampOffset()

	changes := make([]screen.Change, 0, p.rows*3)
	style := tcell.StyleDefault
	var text []byte
	flush := func() {
		if len(text) > 0 {
			changes = append(changes, screen.Text(text))
			text = text[:0]
		}
	}
	for i := p.offset; i < p.offset+p.rows; i++ {
		for _, c := range p.term.Line(i).Trimmed() {
			if c.Width == 0 {
				continue
			}
			if c.Style != style {
				flush()
				style = c.Style
				changes = append(changes, screen.SetStyle{Style: style})
			}
			text = append(text, c.Content...)
		}
		flush()
		changes = append(changes, screen.ClearToEndOfLine{Background: tcell.ColorDefault}, screen.NextLine())
	}
	return changes
}

func (p *Pane) ScrollUp() {
	if p.offset > -p.term.HistoryRows() {
		p.offset--
	}
}

func (p *Pane) ScrollDown() {
	if p.offset < 0 {
		p.offset++
	}
}

func (p *Pane) ResetScroll() {
	p.offset = 0
}

func (p *Pane) ScrollOffset() int {
	return p.offset
}

func (p *Pane) Close() error {
	return p.session.Close()
}

// clampOffset keeps the offset inside history after evictions, reflows or
// a switch to the alternate screen.
func (p *Pane) clampOffset() {
	if lo := -p.term.HistoryRows(); p.offset < lo {
		p.offset = lo
	}
}

// Opener starts panes with shared spawn settings.
type Opener struct {
	Shell      string
	Dir        string
	DrainLimit int
	Scrollback int
	Log        pslog.Logger
}

// Open spawns argv on a pty sized cols x rows and wraps it in a pane.
func (o Opener) Open(cols, rows int, argv string) (*Pane, error) {
	session, err := ptysession.Open(
		ptysession.Size{Cols: max(cols, 1), Rows: max(rows, 1)},
		argv,
		ptysession.WithShell(o.Shell),
		ptysession.WithDir(o.Dir),
		ptysession.WithDrainLimit(o.DrainLimit),
		ptysession.WithLogger(o.Log),
	)
	if err != nil {
		return nil, err
	}
	var opts []vt.Option
	if o.Scrollback > 0 {
		opts = append(opts, vt.WithScrollback(o.Scrollback))
	}
	return New(session, cols, rows, opts...), nil
}
