// Package session drives one conversation: it appends turns, talks to the
// aggregation service and reveals each answer incrementally.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/linanwx/aggrechat/aggregator"
	"github.com/linanwx/aggrechat/conversation"
	"github.com/linanwx/aggrechat/logger"
	"github.com/linanwx/aggrechat/reveal"
)

// ErrorPrefix starts the respondent turn appended for a failed request.
const ErrorPrefix = "Error: "

// State is the controller's position in the request/reveal cycle.
type State int

const (
	StateIdle      State = iota // ready for input
	StateAwaiting               // request outstanding
	StateRevealing              // answer received, reveal running
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	case StateRevealing:
		return "revealing"
	default:
		return "unknown"
	}
}

// Theme selects the display palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps a config value to a Theme, defaulting to dark.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

// Event describes session flags after a change.
type Event struct {
	State       State
	Busy        bool
	Theme       Theme
	ShowDetails bool
}

// Listener receives session events. It is called synchronously and must not
// call Submit.
type Listener func(Event)

// Options configures a Controller.
type Options struct {
	Reveal      reveal.Options
	Theme       Theme
	ShowDetails bool
}

type activeReveal struct {
	task   *reveal.Task
	handle conversation.Handle
}

// Controller owns the session state. Log and diagnostics writes happen only
// through it; the running reveal writes through a handle to its own turn.
type Controller struct {
	id       string
	client   aggregator.Client
	log      *conversation.Log
	diag     *DiagnosticsStore
	animator *reveal.Animator
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu orders state transitions with the log appends they imply.
	writeMu sync.Mutex
	// inflight counts outstanding requests and reveal watchers.
	inflight sync.WaitGroup

	mu          sync.Mutex
	state       State
	theme       Theme
	showDetails bool
	active      *activeReveal
	closed      bool
	listeners   map[int]Listener
	nextID      int
}

// New creates a controller that sends conversations to client.
func New(client aggregator.Client, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	theme := opts.Theme
	if theme == "" {
		theme = ThemeDark
	}
	return &Controller{
		id:          id,
		client:      client,
		log:         conversation.NewLog(),
		diag:        &DiagnosticsStore{},
		animator:    reveal.NewAnimator(opts.Reveal),
		logger:      logger.With("session", id),
		ctx:         ctx,
		cancel:      cancel,
		theme:       theme,
		showDetails: opts.ShowDetails,
		listeners:   make(map[int]Listener),
	}
}

// ID returns the session identifier used in logs.
func (c *Controller) ID() string { return c.id }

// Log returns the message log. Callers may read and subscribe but must not
// write to it.
func (c *Controller) Log() *conversation.Log { return c.log }

// Diagnostics returns the diagnostics store.
func (c *Controller) Diagnostics() *DiagnosticsStore { return c.diag }

// Submit appends text as an author turn and sends the conversation to the
// service. It returns false without side effects when text is blank, a
// request is already outstanding, or the session is closed. On true the
// caller should clear its input buffer.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.closed || c.state == StateAwaiting {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	c.finishReveal()

	if _, err := c.log.Append(conversation.AuthorTurn(text)); err != nil {
		c.logger.Error("append author turn failed", "err", err)
		return false
	}
	c.setState(StateAwaiting)

	turns := c.log.Snapshot()
	c.logger.Debug("request dispatched", "turns", len(turns))

	c.inflight.Add(1)
	go c.dispatch(ctx, turns)
	return true
}

func (c *Controller) dispatch(ctx context.Context, turns []conversation.Turn) {
	defer c.inflight.Done()

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	payload, err := c.client.Aggregate(reqCtx, turns)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.Closed() {
		return
	}

	if err != nil {
		c.logger.Warn("request failed", "err", err)
		c.setState(StateIdle)
		if _, appendErr := c.log.Append(conversation.RespondentTurn(ErrorPrefix + err.Error())); appendErr != nil {
			c.logger.Error("append error turn failed", "err", appendErr)
		}
		return
	}

	display, diag := aggregator.Normalize(payload)
	c.setState(StateIdle)
	c.diag.Set(diag)

	handle, err := c.log.Append(conversation.RespondentTurn(""))
	if err != nil {
		c.logger.Error("append respondent turn failed", "err", err)
		return
	}

	pace := c.animator.Options()
	c.logger.Debug("reveal started",
		"turn", handle.Index(),
		"runes", utf8.RuneCountInString(display),
		"interval", pace.Interval,
		"step", pace.Step,
	)
	task := c.animator.Start(c.ctx, display, handle.Rewrite)
	c.mu.Lock()
	c.active = &activeReveal{task: task, handle: handle}
	c.mu.Unlock()
	c.setState(StateRevealing)

	c.inflight.Add(1)
	go c.watchReveal(task)
}

// watchReveal returns the controller to idle when task ends on its own.
func (c *Controller) watchReveal(task *reveal.Task) {
	defer c.inflight.Done()
	<-task.Done()

	if err := task.Err(); err != nil {
		c.logger.Error("reveal write rejected", "err", err, "written", task.Written())
	}

	c.mu.Lock()
	current := c.active != nil && c.active.task == task
	if current {
		c.active = nil
	}
	c.mu.Unlock()

	if current {
		c.setStateIf(StateRevealing, StateIdle)
	}
}

// finishReveal stops the running reveal, if any, and writes its full text so
// the turn is complete before it stops being the last one. Must be called
// with writeMu held.
func (c *Controller) finishReveal() {
	c.mu.Lock()
	a := c.active
	c.active = nil
	c.mu.Unlock()

	if a == nil {
		return
	}
	a.task.Stop()
	if a.task.Completed() {
		return
	}
	c.logger.Debug("reveal flushed", "turn", a.handle.Index(), "written", a.task.Written())
	if err := a.handle.Rewrite(a.task.Target()); err != nil {
		c.logger.Error("flush reveal failed", "err", err)
	}
}

// Busy reports whether a request is outstanding.
func (c *Controller) Busy() bool {
	return c.State() == StateAwaiting
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// ToggleTheme switches between dark and light and returns the new theme.
func (c *Controller) ToggleTheme() Theme {
	c.mu.Lock()
	if c.theme == ThemeDark {
		c.theme = ThemeLight
	} else {
		c.theme = ThemeDark
	}
	ev, ls := c.eventLocked(), c.listenersLocked()
	c.mu.Unlock()

	emit(ls, ev)
	return ev.Theme
}

// DetailsVisible reports whether the details panel is shown.
func (c *Controller) DetailsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showDetails
}

// ToggleDetails flips details-panel visibility and returns the new value.
func (c *Controller) ToggleDetails() bool {
	c.mu.Lock()
	c.showDetails = !c.showDetails
	ev, ls := c.eventLocked(), c.listenersLocked()
	c.mu.Unlock()

	emit(ls, ev)
	return ev.ShowDetails
}

// Subscribe registers fn for session events and returns a function that
// removes it.
func (c *Controller) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Wait blocks until no request is outstanding and no reveal is running.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close tears the session down: the running reveal stops where it is and any
// outstanding request is abandoned.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	a := c.active
	c.active = nil
	c.mu.Unlock()

	c.cancel()
	if a != nil {
		a.task.Stop()
	}
	c.logger.Debug("session closed", "turns", c.log.Len())
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	ev, ls := c.eventLocked(), c.listenersLocked()
	c.mu.Unlock()

	emit(ls, ev)
}

func (c *Controller) setStateIf(from, to State) {
	c.mu.Lock()
	if c.state != from {
		c.mu.Unlock()
		return
	}
	c.state = to
	ev, ls := c.eventLocked(), c.listenersLocked()
	c.mu.Unlock()

	emit(ls, ev)
}

func (c *Controller) eventLocked() Event {
	return Event{
		State:       c.state,
		Busy:        c.state == StateAwaiting,
		Theme:       c.theme,
		ShowDetails: c.showDetails,
	}
}

func (c *Controller) listenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func emit(listeners []Listener, ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
