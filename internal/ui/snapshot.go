package ui

import (
	"github.com/bma-d/sudare/internal/persist"
	"github.com/bma-d/sudare/internal/procfile"
)

// Snapshot captures the focused group and every group's active member.
// Groups on the disabled member are left out.
func (c *Compositor) Snapshot() persist.Record {
	rec := persist.Record{ActiveProcesses: map[string]string{}}
	if w := c.focused(); w != nil {
		rec.FocusedGroup = w.Title()
	}
	for _, w := range c.windows {
		_, m := w.Active()
		if _, disabled := m.(procfile.Disabled); !disabled {
			rec.ActiveProcesses[w.Title()] = m.Label()
		}
	}
	return rec
}

// Restore applies a saved record. Titles and labels that no longer exist
// in the configuration are skipped.
func (c *Compositor) Restore(rec persist.Record) {
	if i := windowIndexForTitle(c.windows, rec.FocusedGroup); i >= 0 {
		c.focus = i
	}
	for _, w := range c.windows {
		label, ok := rec.ActiveProcesses[w.Title()]
		if !ok {
			continue
		}
		if i := w.group.IndexOf(label); i >= 0 {
			w.SetActive(c.cols, c.rows, i)
		}
	}
	if len(rec.ActiveProcesses) > 0 {
		c.log.Info("session restored", "focused", rec.FocusedGroup, "active", len(rec.ActiveProcesses))
	}
}
