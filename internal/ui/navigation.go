package ui

// FocusNext moves focus one window down, stopping at the last one. The
// window losing focus returns to live output.
func (c *Compositor) FocusNext() {
	if len(c.windows) == 0 {
		return
	}
	c.windows[c.focus].ResetScroll()
	if c.focus < len(c.windows)-1 {
		c.focus++
	}
}

// FocusPrevious moves focus one window up, stopping at the first one.
func (c *Compositor) FocusPrevious() {
	if len(c.windows) == 0 {
		return
	}
	c.windows[c.focus].ResetScroll()
	if c.focus > 0 {
		c.focus--
	}
}

// Select activates member index in the focused window using the full
// viewport as the initial pane size.
func (c *Compositor) Select(index int) {
	if w := c.focused(); w != nil {
		w.SetActive(c.cols, c.rows, index)
	}
}

func (c *Compositor) ScrollUp() {
	if w := c.focused(); w != nil {
		w.ScrollUp()
	}
}

func (c *Compositor) ScrollDown() {
	if w := c.focused(); w != nil {
		w.ScrollDown()
	}
}

func (c *Compositor) focused() *Window {
	if c.focus < 0 || c.focus >= len(c.windows) {
		return nil
	}
	return c.windows[c.focus]
}
