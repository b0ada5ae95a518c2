// cmd/physim/terminal.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-physim/pkg/config"
	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/logging"
	"github.com/opd-ai/go-physim/pkg/render"
	"github.com/opd-ai/go-physim/pkg/spawn"
)

// terminalSession is the interactive tcell front end. Left mouse drags
// shapes, right mouse spawns a circle, space pauses, c clears, q quits.
type terminalSession struct {
	eng      *engine.Engine
	screen   tcell.Screen
	renderer *render.TerminalRenderer
	loop     *stepLoop
	tmpl     spawn.Template

	dragging  bool
	rightDown bool
	quit      bool
}

func runTerminal(ctx context.Context, eng *engine.Engine, cfg config.SimulationConfig, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	session, err := newTerminalSession(eng, screen, cfg)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "terminal session started")
	session.run(ctx)
	logStats(ctx, logger, eng.Stats())
	return nil
}

func newTerminalSession(eng *engine.Engine, screen tcell.Screen, cfg config.SimulationConfig) (*terminalSession, error) {
	renderer, err := render.NewTerminalRenderer(screen, eng.WorldBounds())
	if err != nil {
		return nil, err
	}
	tmpl := spawn.DefaultTemplate()
	tmpl.Width = 20
	return &terminalSession{
		eng:      eng,
		screen:   screen,
		renderer: renderer,
		loop:     newStepLoop(eng, cfg, time.Now()),
		tmpl:     tmpl,
	}, nil
}

func (s *terminalSession) run(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			events <- ev
		}
	}()

	var snaps []engine.ShapeSnapshot
	for !s.quit {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			s.handleEvent(ev)
		case now := <-ticker.C:
			s.loop.Tick(now)
			snaps = s.eng.Snapshots(snaps[:0])
			s.renderer.SetStatus(s.status())
			render.Frame(s.renderer, snaps)
		}
	}
}

func (s *terminalSession) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		s.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		x, y := ev.Position()
		s.handleMouse(ev.Buttons(), x, y)
	case *tcell.EventResize:
		s.screen.Sync()
		s.renderer.Resize()
	}
}

func (s *terminalSession) handleKey(key tcell.Key, r rune) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		s.quit = true
		return
	case tcell.KeyRune:
	default:
		return
	}
	switch r {
	case 'q':
		s.quit = true
	case ' ':
		s.loop.SetPaused(!s.loop.Paused())
	case 'c':
		s.eng.ClearShapes()
	case 'r':
		spawn.At(s.eng, s.tmpl, s.eng.WorldBounds().Center())
	}
}

// handleMouse tracks button state across events; tcell reports the held
// buttons with every motion event.
func (s *terminalSession) handleMouse(buttons tcell.ButtonMask, x, y int) {
	pos := s.renderer.ScreenToWorld(x, y)

	left := buttons&tcell.Button1 != 0
	switch {
	case left && !s.dragging:
		_, s.dragging = s.eng.BeginDrag(pos)
	case left && s.dragging:
		s.eng.UpdateDrag(pos)
	case !left && s.dragging:
		s.eng.EndDrag()
		s.dragging = false
	}

	right := buttons&tcell.Button2 != 0
	if right && !s.rightDown {
		spawn.At(s.eng, s.tmpl, pos)
	}
	s.rightDown = right
}

func (s *terminalSession) status() string {
	st := s.eng.Stats()
	state := "running"
	if s.loop.Paused() {
		state = "paused"
	}
	return fmt.Sprintf("%s  frame %d  shapes %d  checks %d  hits %d  [drag:left spawn:right r:center space:pause c:clear q:quit]",
		state, st.Frame, st.Shapes, st.CollisionChecks, st.ActualCollisions)
}
