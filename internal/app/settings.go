package app

import (
	"time"

	"github.com/bma-d/sudare/internal/ptysession"
	"github.com/bma-d/sudare/internal/vt"
)

// Settings holds the runtime knobs bound from flags and SUDARE_* variables.
type Settings struct {
	Tick       time.Duration
	DrainLimit int
	Scrollback int
	Shell      string
	CacheDir   string
	LogFile    string
	LogLevel   string
	NoRestore  bool
}

func DefaultSettings() Settings {
	return Settings{
		Tick:       10 * time.Millisecond,
		DrainLimit: ptysession.DefaultDrainLimit,
		Scrollback: vt.DefaultScrollback,
		Shell:      ptysession.DefaultShell,
		LogLevel:   "info",
	}
}

// Normalize clamps out-of-range values.
func (s Settings) Normalize() Settings {
	if s.Tick < time.Millisecond {
		s.Tick = time.Millisecond
	}
	if s.Tick > time.Second {
		s.Tick = time.Second
	}
	if s.DrainLimit < ptysession.ReadChunkSize {
		s.DrainLimit = ptysession.ReadChunkSize
	}
	if s.Scrollback < 0 {
		s.Scrollback = 0
	}
	if s.Scrollback > 100000 {
		s.Scrollback = 100000
	}
	if s.Shell == "" {
		s.Shell = ptysession.DefaultShell
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	return s
}
