package ui

// unfocusedHeight is a status bar plus two rows of output.
const unfocusedHeight = 3

type span struct {
	y, height int
}

// windowSpans stacks count windows top to bottom. Every window but the
// focused one gets unfocusedHeight rows; the focused one takes the rest and
// never less than its status bar.
func windowSpans(count, focus, height int) []span {
	if count <= 0 {
		return nil
	}
	focusedHeight := height - (count-1)*unfocusedHeight
	if focusedHeight < 1 {
		focusedHeight = 1
	}
	spans := make([]span, count)
	y := 0
	for i := range spans {
		h := unfocusedHeight
		if i == focus {
			h = focusedHeight
		}
		spans[i] = span{y: y, height: h}
		y += h
	}
	return spans
}

func windowIndexForTitle(windows []*Window, title string) int {
	for i, w := range windows {
		if w.Title() == title {
			return i
		}
	}
	return -1
}
