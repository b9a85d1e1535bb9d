package channel

import (
	"bytes"
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/aggrechat/channel/tui"
	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/logger"
	"github.com/linanwx/aggrechat/session"
)

// tuiChannel runs the bubbletea front end.
type tuiChannel struct {
	ctrl *session.Controller
	cfg  Options
}

func newTUIChannel(ctrl *session.Controller, cfg Options) *tuiChannel {
	return &tuiChannel{ctrl: ctrl, cfg: cfg}
}

func (c *tuiChannel) Name() string { return "tui" }

func (c *tuiChannel) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.NewApp(ctx, c.ctrl, tui.Options{WordWrap: c.cfg.WordWrap})
	program := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(c.cfg.In),
		tea.WithOutput(c.cfg.Out),
	)

	// Controller callbacks run synchronously, sometimes from inside
	// App.Update, so they only post to the bridge and never block on the
	// program.
	b := newBridge()
	unsubscribeLog := c.ctrl.Log().Subscribe(func(turns []conversation.Turn) {
		b.turns.put(turns)
	})
	defer unsubscribeLog()
	unsubscribeSession := c.ctrl.Subscribe(func(ev session.Event) {
		b.events.put(ev)
	})
	defer unsubscribeSession()

	logger.Intercept(&logWriter{lines: b.lines})
	defer logger.Restore()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.forward(ctx, program.Send)
	}()

	logger.Info("cli channel started (TUI mode)", "session", c.ctrl.ID())
	_, err := program.Run()
	cancel()
	wg.Wait()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// mailbox keeps only the latest value. put never blocks.
type mailbox[T any] struct {
	mu     sync.Mutex
	value  T
	full   bool
	signal chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{signal: make(chan struct{}, 1)}
}

func (m *mailbox[T]) put(v T) {
	m.mu.Lock()
	m.value = v
	m.full = true
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox[T]) take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.value, m.full
	var zero T
	m.value = zero
	m.full = false
	return v, ok
}

// bridge carries session updates to the program. Turn snapshots and events
// are full states, so only the newest of each is delivered.
type bridge struct {
	turns  *mailbox[[]conversation.Turn]
	events *mailbox[session.Event]
	lines  *mailbox[string]
}

func newBridge() *bridge {
	return &bridge{
		turns:  newMailbox[[]conversation.Turn](),
		events: newMailbox[session.Event](),
		lines:  newMailbox[string](),
	}
}

func (b *bridge) forward(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.turns.signal:
			if turns, ok := b.turns.take(); ok {
				send(tui.TurnsMsg{Turns: turns})
			}
		case <-b.events.signal:
			if ev, ok := b.events.take(); ok {
				send(tui.SessionMsg{Event: ev})
			}
		case <-b.lines.signal:
			if line, ok := b.lines.take(); ok {
				send(tui.LogLineMsg{Line: line})
			}
		}
	}
}

// logWriter implements io.Writer and posts the last non-empty line of each
// write to the status bar.
type logWriter struct {
	lines *mailbox[string]
}

func (w *logWriter) Write(p []byte) (int, error) {
	lines := bytes.Split(p, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(bytes.TrimSpace(lines[i])) > 0 {
			w.lines.put(string(lines[i]))
			break
		}
	}
	return len(p), nil
}
