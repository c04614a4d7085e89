// Package app runs the multiplexer: it loads the group file, restores the
// previous session, and drives input and rendering from a single loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bma-d/sudare/internal/logging"
	"github.com/bma-d/sudare/internal/pane"
	"github.com/bma-d/sudare/internal/persist"
	"github.com/bma-d/sudare/internal/procfile"
	"github.com/bma-d/sudare/internal/ui"
	"github.com/gdamore/tcell/v2"
	"pkt.systems/pslog"
)

type App struct {
	settings Settings
	screen   tcell.Screen
	comp     *ui.Compositor
	store    *persist.Store
	key      string
	log      pslog.Logger
}

// Run owns the terminal for the lifetime of the multiplexer. SIGINT and
// SIGTERM end it the same way Escape does.
func Run(ctx context.Context, settings Settings, procfilePath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	groups, err := procfile.Load(procfilePath)
	if err != nil {
		return fmt.Errorf("load procfile: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	a, err := New(ctx, screen, settings, procfilePath, groups)
	if err != nil {
		return err
	}
	return a.Loop(ctx)
}

// New builds the compositor for groups on an initialised screen and applies
// the saved session for procfilePath unless restoring is disabled.
func New(ctx context.Context, screen tcell.Screen, settings Settings, procfilePath string, groups []procfile.Group) (*App, error) {
	settings = settings.Normalize()
	log := pslog.Ctx(ctx)
	if log == nil {
		log = logging.Discard()
	}

	key, err := persist.Key(procfilePath)
	if err != nil {
		return nil, err
	}
	a := &App{settings: settings, screen: screen, key: key, log: log}

	cacheDir := settings.CacheDir
	if cacheDir == "" {
		cacheDir, err = persist.CacheDir(os.Getenv)
	}
	if err != nil {
		log.Warn("session persistence disabled", "err", err)
	} else {
		a.store = persist.NewStore(cacheDir)
	}

	opener := pane.Opener{
		Shell:      settings.Shell,
		DrainLimit: settings.DrainLimit,
		Scrollback: settings.Scrollback,
		Log:        log.With("component", "pty"),
	}
	cols, rows := screen.Size()
	a.comp = ui.New(groups, ui.OpenWith(opener), cols, rows, log.With("component", "ui"))

	if !settings.NoRestore {
		a.restore()
	}
	log.Info("sudare started", "procfile", procfilePath, "groups", len(groups))
	return a, nil
}

func (a *App) restore() {
	if a.store == nil {
		return
	}
	rec, found, err := a.store.Load(a.key)
	switch {
	case errors.Is(err, persist.ErrCorrupt):
		a.log.Warn("ignoring corrupt session file", "path", a.store.Path(a.key), "err", err)
	case err != nil:
		a.log.Warn("session load failed", "err", err)
	case found:
		a.comp.Restore(rec)
	}
}

// Loop drains pending input, renders a frame and sleeps one tick, until
// Escape, Ctrl-C, closed input or ctx cancellation. It then saves the
// session and tears every pane down.
func (a *App) Loop(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go forwardEvents(a.screen, events, quit)

	ticker := time.NewTicker(a.settings.Tick)
	defer ticker.Stop()

	for {
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok || a.handle(ev) {
					return a.shutdown()
				}
			default:
				break drain
			}
		}

		a.comp.RenderFrame(a.screen)

		select {
		case <-ctx.Done():
			a.log.Info("stopping", "reason", context.Cause(ctx))
			return a.shutdown()
		case <-ticker.C:
		}
	}
}

// forwardEvents moves tcell's blocking poll off the render loop.
func forwardEvents(screen tcell.Screen, events chan<- tcell.Event, quit <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

// handle applies one event and reports whether the loop should stop.
func (a *App) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.comp.ForceRepaint()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyDown:
		a.comp.FocusNext()
	case tcell.KeyUp:
		a.comp.FocusPrevious()
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'n':
			a.comp.FocusNext()
		case r == 'p':
			a.comp.FocusPrevious()
		case r == 'j':
			a.comp.ScrollDown()
		case r == 'k':
			a.comp.ScrollUp()
		case r >= '0' && r <= '9':
			a.comp.Select(int(r - '0'))
		}
	}
	return false
}

func (a *App) shutdown() error {
	var err error
	if a.store != nil {
		rec := a.comp.Snapshot()
		if err = a.store.Save(a.key, rec); err != nil {
			err = fmt.Errorf("save session: %w", err)
		} else {
			a.log.Info("session saved", "path", a.store.Path(a.key), "focused", rec.FocusedGroup)
		}
	}
	a.comp.Close()
	return err
}
