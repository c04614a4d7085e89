package vt

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"pgregory.net/rapid"
)

func lineText(l Line) string {
	var b strings.Builder
	for _, c := range l.Trimmed() {
		b.WriteString(c.Content)
	}
	return b.String()
}

func screenText(term *Terminal) []string {
	_, rows := term.Size()
	out := make([]string, rows)
	for i := range out {
		out[i] = lineText(term.Line(i))
	}
	return out
}

func historyText(term *Terminal) []string {
	n := term.HistoryRows()
	out := make([]string, n)
	for i := range out {
		out[i] = lineText(term.Line(i - n))
	}
	return out
}

func write(t *testing.T, term *Terminal, s string) {
	t.Helper()
	if _, err := term.Write([]byte(s)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestPrintAndNewline(t *testing.T) {
	term := New(10, 3)
	write(t, term, "hello\r\nworld")
	got := screenText(term)
	if got[0] != "hello" || got[1] != "world" || got[2] != "" {
		t.Fatalf("screen = %q", got)
	}
	if x, y, visible := term.Cursor(); x != 5 || y != 1 || !visible {
		t.Fatalf("cursor = %d,%d,%v", x, y, visible)
	}
}

func TestAutowrapIsDeferred(t *testing.T) {
	term := New(4, 3)
	write(t, term, "abcd")
	if x, y, _ := term.Cursor(); x != 3 || y != 0 {
		t.Fatalf("cursor after full row = %d,%d", x, y)
	}
	write(t, term, "e")
	got := screenText(term)
	if got[0] != "abcd" || got[1] != "e" {
		t.Fatalf("screen = %q", got)
	}
	if !term.Line(0).Wrapped {
		t.Fatalf("first row not marked wrapped")
	}
}

func TestCarriageReturnCancelsPendingWrap(t *testing.T) {
	term := New(4, 2)
	write(t, term, "abcd\rX")
	if got := screenText(term); got[0] != "Xbcd" || got[1] != "" {
		t.Fatalf("screen = %q", got)
	}
}

func TestScrollbackAndCapacity(t *testing.T) {
	term := New(10, 2, WithScrollback(3))
	for i := range 6 {
		write(t, term, string(rune('a'+i))+"\r\n")
	}
	if got := historyText(term); strings.Join(got, ",") != "c,d,e" {
		t.Fatalf("history = %q", got)
	}
	if got := screenText(term); got[0] != "f" || got[1] != "" {
		t.Fatalf("screen = %q", got)
	}
	if l := term.Line(-4); len(l.Cells) != 0 {
		t.Fatalf("line beyond history should be empty")
	}
}

func TestScrollRegionDoesNotFeedHistory(t *testing.T) {
	term := New(10, 4)
	write(t, term, "top\x1b[2;3r\x1b[2;1Hone\r\ntwo\r\nthree")
	if n := term.HistoryRows(); n != 0 {
		t.Fatalf("history rows = %d", n)
	}
	got := screenText(term)
	if got[0] != "top" || got[1] != "two" || got[2] != "three" {
		t.Fatalf("screen = %q", got)
	}
}

func TestCursorMovementAndErase(t *testing.T) {
	term := New(10, 3)
	write(t, term, "0123456789\x1b[2;3Hxy\x1b[1;5H\x1b[K")
	got := screenText(term)
	if got[0] != "0123" || got[1] != "  xy" {
		t.Fatalf("screen = %q", got)
	}
	write(t, term, "\x1b[2J")
	for i, row := range screenText(term) {
		if row != "" {
			t.Fatalf("row %d = %q after ED 2", i, row)
		}
	}
	write(t, term, "\x1b[3;4Hz\x1b[1A\x1b[2Dq")
	got = screenText(term)
	if got[1] != "  q" || got[2] != "   z" {
		t.Fatalf("screen = %q", got)
	}
}

func TestInsertDeleteChars(t *testing.T) {
	term := New(8, 1)
	write(t, term, "abcdef\x1b[1;2H\x1b[2@")
	if got := lineText(term.Line(0)); got != "a  bcdef" {
		t.Fatalf("after ICH = %q", got)
	}
	write(t, term, "\x1b[3P")
	if got := lineText(term.Line(0)); got != "acdef" {
		t.Fatalf("after DCH = %q", got)
	}
	write(t, term, "\x1b[2X")
	if got := lineText(term.Line(0)); got != "a  ef" {
		t.Fatalf("after ECH = %q", got)
	}
}

func TestInsertDeleteLines(t *testing.T) {
	term := New(5, 3)
	write(t, term, "a\r\nb\r\nc\x1b[2;1H\x1b[L")
	if got := strings.Join(screenText(term), ","); got != "a,,b" {
		t.Fatalf("after IL = %q", got)
	}
	write(t, term, "\x1b[M")
	if got := strings.Join(screenText(term), ","); got != "a,b," {
		t.Fatalf("after DL = %q", got)
	}
}

func TestWideAndCombiningRunes(t *testing.T) {
	term := New(6, 1)
	write(t, term, "日x")
	cells := term.Line(0).Cells
	if cells[0].Content != "日" || cells[0].Width != 2 || cells[1].Width != 0 {
		t.Fatalf("wide cell = %+v %+v", cells[0], cells[1])
	}
	if cells[2].Content != "x" {
		t.Fatalf("cell after wide = %+v", cells[2])
	}
	write(t, term, "e\u0301")
	if got := term.Line(0).Cells[3].Content; got != "e\u0301" {
		t.Fatalf("combined = %q", got)
	}
}

func TestSplitSequenceAcrossWrites(t *testing.T) {
	term := New(10, 1)
	write(t, term, "\x1b[3")
	write(t, term, "1mR")
	fg, _, _ := term.Line(0).Cells[0].Style.Decompose()
	if fg != tcell.ColorMaroon {
		t.Fatalf("fg = %v", fg)
	}
}

func TestApplySGR(t *testing.T) {
	style := applySGR(tcell.StyleDefault, []int{31})
	fg, _, _ := style.Decompose()
	if fg != tcell.ColorMaroon {
		t.Fatalf("fg = %v", fg)
	}

	style = applySGR(style, []int{1, 3, 9})
	_, _, attr := style.Decompose()
	if attr&tcell.AttrBold == 0 || attr&tcell.AttrItalic == 0 || attr&tcell.AttrStrikeThrough == 0 {
		t.Fatalf("attrs = %v", attr)
	}

	style = applySGR(style, []int{22, 23})
	_, _, attr = style.Decompose()
	if attr&tcell.AttrBold != 0 || attr&tcell.AttrItalic != 0 {
		t.Fatalf("attrs after reset = %v", attr)
	}

	style = applySGR(style, []int{38, 2, 10, 20, 30})
	fg, _, _ = style.Decompose()
	if fg != tcell.NewRGBColor(10, 20, 30) {
		t.Fatalf("rgb fg = %v", fg)
	}

	style = applySGR(style, []int{48, 5, 200})
	_, bg, _ := style.Decompose()
	if bg != tcell.PaletteColor(200) {
		t.Fatalf("palette bg = %v", bg)
	}

	style = applySGR(style, []int{97, 100})
	fg, bg, _ = style.Decompose()
	if fg != tcell.ColorWhite || bg != tcell.ColorGray {
		t.Fatalf("bright fg/bg = %v/%v", fg, bg)
	}

	if style = applySGR(style, nil); style != tcell.StyleDefault {
		t.Fatalf("empty SGR should reset, got %v", style)
	}
}

func TestColonSeparatedTrueColor(t *testing.T) {
	cases := map[string]tcell.Color{
		"\x1b[38:2::10:20:30mX":   tcell.NewRGBColor(10, 20, 30),
		"\x1b[38:2:0:10:20:30mX":  tcell.NewRGBColor(10, 20, 30),
		"\x1b[38:2:10:20:30mX":    tcell.NewRGBColor(10, 20, 30),
		"\x1b[38;2;10;20;30mX":    tcell.NewRGBColor(10, 20, 30),
		"\x1b[38:5:200mX":         tcell.PaletteColor(200),
		"\x1b[1;38:2::1:2:3;31mX": tcell.ColorMaroon,
	}
	for in, want := range cases {
		term := New(4, 1)
		write(t, term, in)
		fg, _, _ := term.Line(0).Cells[0].Style.Decompose()
		if fg != want {
			t.Fatalf("%q: fg = %v, want %v", in, fg, want)
		}
	}
}

func TestEraseUsesBackground(t *testing.T) {
	term := New(4, 1)
	write(t, term, "\x1b[1;44m\x1b[K")
	c := term.Line(0).Cells[2]
	_, bg, attr := c.Style.Decompose()
	if bg != tcell.ColorNavy || attr&tcell.AttrBold != 0 {
		t.Fatalf("erased cell style bg=%v attr=%v", bg, attr)
	}
}

func TestAlternateScreen(t *testing.T) {
	term := New(10, 2)
	write(t, term, "a\r\nb\r\nc")
	if term.HistoryRows() != 1 {
		t.Fatalf("history rows = %d", term.HistoryRows())
	}
	write(t, term, "\x1b[?1049h\x1b[Hfull")
	if !term.AltScreen() || term.HistoryRows() != 0 {
		t.Fatalf("alt screen not active")
	}
	if got := screenText(term); got[0] != "full" || got[1] != "" {
		t.Fatalf("alt screen = %q", got)
	}
	write(t, term, "\x1b[?1049l")
	if got := screenText(term); got[0] != "b" || got[1] != "c" {
		t.Fatalf("primary after alt = %q", got)
	}
	if x, y, _ := term.Cursor(); x != 1 || y != 1 {
		t.Fatalf("cursor after alt = %d,%d", x, y)
	}
}

func TestCursorVisibility(t *testing.T) {
	term := New(4, 1)
	write(t, term, "\x1b[?25l")
	if _, _, visible := term.Cursor(); visible {
		t.Fatalf("cursor still visible")
	}
	write(t, term, "\x1b[?25h")
	if _, _, visible := term.Cursor(); !visible {
		t.Fatalf("cursor hidden")
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	term := New(10, 3)
	write(t, term, "\x1b[2;3H\x1b7\x1b[H\x1b8X")
	if got := screenText(term); got[1] != "  X" {
		t.Fatalf("screen = %q", got)
	}
}

func TestResizeSameSizeDoesNotReflow(t *testing.T) {
	term := New(20, 5)
	write(t, term, "content")
	term.Resize(20, 5)
	if n := term.Reflows(); n != 0 {
		t.Fatalf("reflows = %d", n)
	}
	term.Resize(10, 5)
	if n := term.Reflows(); n != 1 {
		t.Fatalf("reflows = %d", n)
	}
}

func TestResizeReflowsWrappedLines(t *testing.T) {
	term := New(4, 3)
	write(t, term, "abcdefgh\r\nxy")
	if got := strings.Join(screenText(term), ","); got != "abcd,efgh,xy" {
		t.Fatalf("before = %q", got)
	}
	term.Resize(8, 3)
	if got := strings.Join(screenText(term), ","); got != "abcdefgh,xy," {
		t.Fatalf("widened = %q", got)
	}
	if x, y, _ := term.Cursor(); x != 2 || y != 1 {
		t.Fatalf("cursor after widen = %d,%d", x, y)
	}
	term.Resize(3, 3)
	got := append(historyText(term), screenText(term)...)
	if strings.Join(got, ",") != "abc,def,gh,xy" {
		t.Fatalf("narrowed = %q", got)
	}
	if x, y, _ := term.Cursor(); x != 2 || y != 2 {
		t.Fatalf("cursor after narrow = %d,%d", x, y)
	}
}

func TestResizeKeepsCursorRowVisible(t *testing.T) {
	term := New(10, 4)
	write(t, term, "one\r\ntwo\x1b[H")
	term.Resize(10, 2)
	if x, y, _ := term.Cursor(); x != 0 || y != 0 {
		t.Fatalf("cursor = %d,%d", x, y)
	}
	if got := screenText(term); got[0] != "one" || got[1] != "two" {
		t.Fatalf("screen = %q", got)
	}
}

func TestRandomInputKeepsGridShape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cols := rapid.IntRange(1, 12).Draw(rt, "cols")
		rows := rapid.IntRange(1, 6).Draw(rt, "rows")
		term := New(cols, rows, WithScrollback(5))
		data := rapid.SliceOf(rapid.SampledFrom([]string{
			"a", "日", "\r", "\n", "\b", "\t", "\x1b[2J", "\x1b[H", "\x1b[5;5H",
			"\x1b[3L", "\x1b[2M", "\x1b[P", "\x1b[4@", "\x1b[1;2r", "\x1b[S",
			"\x1b[T", "\x1bM", "\x1b[?1049h", "\x1b[?1049l", "\x1b[31m", "\u0301",
		})).Draw(rt, "data")
		for _, chunk := range data {
			term.Write([]byte(chunk))
			if rapid.Bool().Draw(rt, "resize") {
				term.Resize(rapid.IntRange(1, 12).Draw(rt, "c"), rapid.IntRange(1, 6).Draw(rt, "r"))
			}
		}
		c, r := term.Size()
		for i := -term.HistoryRows(); i < r; i++ {
			if n := len(term.Line(i).Cells); n != c {
				rt.Fatalf("line %d has %d cells, want %d", i, n, c)
			}
		}
		if term.HistoryRows() > 5 {
			rt.Fatalf("history rows %d over capacity", term.HistoryRows())
		}
		x, y, _ := term.Cursor()
		if x < 0 || x >= c || y < 0 || y >= r {
			rt.Fatalf("cursor %d,%d outside %dx%d", x, y, c, r)
		}
	})
}
