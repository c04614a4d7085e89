package vt

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2"
)

func (t *Terminal) sgr(params ansi.Params) {
	values := make([]int, 0, len(params))
	var group []int
	params.ForEach(0, func(_, p int, more bool) {
		group = append(group, p)
		if more {
			return
		}
		values = append(values, colonColor(group)...)
		group = group[:0]
	})
	values = append(values, group...)
	t.cur.style = applySGR(t.cur.style, values)
}

// colonColor drops the colorspace id from the ITU form 38:2:<id>:r:g:b so
// it reads like the semicolon form.
func colonColor(group []int) []int {
	if len(group) >= 6 && (group[0] == 38 || group[0] == 48) && group[1] == 2 {
		return append(group[:2:2], group[3:6]...)
	}
	return group
}

func applySGR(style tcell.Style, params []int) tcell.Style {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			style = tcell.StyleDefault
		case p == 1:
			style = style.Bold(true)
		case p == 2:
			style = style.Dim(true)
		case p == 3:
			style = style.Italic(true)
		case p == 4:
			style = style.Underline(true)
		case p == 5 || p == 6:
			style = style.Blink(true)
		case p == 7:
			style = style.Reverse(true)
		case p == 9:
			style = style.StrikeThrough(true)
		case p == 22:
			style = style.Bold(false).Dim(false)
		case p == 23:
			style = style.Italic(false)
		case p == 24:
			style = style.Underline(false)
		case p == 25:
			style = style.Blink(false)
		case p == 27:
			style = style.Reverse(false)
		case p == 29:
			style = style.StrikeThrough(false)
		case p >= 30 && p <= 37:
			style = style.Foreground(ansiBasicColor(p-30, false))
		case p >= 90 && p <= 97:
			style = style.Foreground(ansiBasicColor(p-90, true))
		case p == 39:
			style = style.Foreground(tcell.ColorDefault)
		case p >= 40 && p <= 47:
			style = style.Background(ansiBasicColor(p-40, false))
		case p >= 100 && p <= 107:
			style = style.Background(ansiBasicColor(p-100, true))
		case p == 49:
			style = style.Background(tcell.ColorDefault)
		case p == 38 || p == 48:
			if i+1 >= len(params) {
				continue
			}
			var color tcell.Color
			mode := params[i+1]
			if mode == 5 && i+2 < len(params) {
				color = tcell.PaletteColor(clamp8(params[i+2]))
				i += 2
			} else if mode == 2 && i+4 < len(params) {
				color = tcell.NewRGBColor(int32(clamp8(params[i+2])), int32(clamp8(params[i+3])), int32(clamp8(params[i+4])))
				i += 4
			} else {
				i++
				continue
			}
			if p == 38 {
				style = style.Foreground(color)
			} else {
				style = style.Background(color)
			}
		}
	}
	return style
}

func ansiBasicColor(index int, bright bool) tcell.Color {
	switch index {
	case 0:
		if bright {
			return tcell.ColorGray
		}
		return tcell.ColorBlack
	case 1:
		if bright {
			return tcell.ColorRed
		}
		return tcell.ColorMaroon
	case 2:
		if bright {
			return tcell.ColorLime
		}
		return tcell.ColorGreen
	case 3:
		if bright {
			return tcell.ColorYellow
		}
		return tcell.ColorOlive
	case 4:
		if bright {
			return tcell.ColorBlue
		}
		return tcell.ColorNavy
	case 5:
		if bright {
			return tcell.ColorFuchsia
		}
		return tcell.ColorPurple
	case 6:
		if bright {
			return tcell.ColorAqua
		}
		return tcell.ColorTeal
	default:
		if bright {
			return tcell.ColorWhite
		}
		return tcell.ColorSilver
	}
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
