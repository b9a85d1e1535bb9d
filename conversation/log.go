// Package conversation holds the ordered log of turns exchanged in one session.
package conversation

import (
	"errors"
	"sync"
)

var (
	// ErrNoTurn is returned when rewriting content of an empty log.
	ErrNoTurn = errors.New("conversation: no turn to rewrite")
	// ErrNotLast is returned when a handle no longer points at the final turn.
	ErrNotLast = errors.New("conversation: turn is no longer the last one")
	// ErrInvalidRole is returned when appending a turn with an unknown role.
	ErrInvalidRole = errors.New("conversation: invalid role")
)

// Role identifies who authored a turn.
type Role string

const (
	RoleAuthor     Role = "user"      // typed by the person at the keyboard
	RoleRespondent Role = "assistant" // produced from the aggregation service
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAuthor || r == RoleRespondent
}

// Turn is one entry in the log.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AuthorTurn creates a turn typed by the user.
func AuthorTurn(content string) Turn {
	return Turn{Role: RoleAuthor, Content: content}
}

// RespondentTurn creates a turn answered by the service.
func RespondentTurn(content string) Turn {
	return Turn{Role: RoleRespondent, Content: content}
}

// Observer receives a snapshot after every change to the log.
type Observer func(turns []Turn)

// Log is an append-only sequence of turns. Only the content of the final turn
// may change after it has been appended.
type Log struct {
	mu        sync.Mutex
	turns     []Turn
	observers map[int]Observer
	nextObs   int
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{observers: make(map[int]Observer)}
}

// Append adds turn at the end of the log and returns a handle to it.
func (l *Log) Append(turn Turn) (Handle, error) {
	if !turn.Role.Valid() {
		return Handle{}, ErrInvalidRole
	}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	h := Handle{log: l, index: len(l.turns) - 1}
	snap, obs := l.snapshotLocked(), l.observersLocked()
	l.mu.Unlock()

	notify(obs, snap)
	return h, nil
}

// RewriteLast replaces the content of the final turn, keeping its role.
func (l *Log) RewriteLast(text string) error {
	l.mu.Lock()
	if len(l.turns) == 0 {
		l.mu.Unlock()
		return ErrNoTurn
	}
	return l.rewriteLocked(len(l.turns)-1, text)
}

// rewriteLocked updates turns[index] and releases l.mu before notifying.
func (l *Log) rewriteLocked(index int, text string) error {
	l.turns[index].Content = text
	snap, obs := l.snapshotLocked(), l.observersLocked()
	l.mu.Unlock()

	notify(obs, snap)
	return nil
}

// Snapshot returns a copy of the turns in conversation order.
func (l *Log) Snapshot() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Last returns the final turn, if any.
func (l *Log) Last() (Turn, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}

// Subscribe registers fn to be called synchronously after each change.
// The returned function removes the subscription.
func (l *Log) Subscribe(fn Observer) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.observers, id)
			l.mu.Unlock()
		})
	}
}

func (l *Log) snapshotLocked() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) observersLocked() []Observer {
	out := make([]Observer, 0, len(l.observers))
	for i := 0; i < l.nextObs; i++ {
		if fn, ok := l.observers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(observers []Observer, snap []Turn) {
	for _, fn := range observers {
		fn(snap)
	}
}

// Handle points at one turn of a Log. Writes through a handle succeed only
// while that turn is still the last one.
type Handle struct {
	log   *Log
	index int
}

// Index returns the position of the turn in the log, or -1 for a zero Handle.
func (h Handle) Index() int {
	if h.log == nil {
		return -1
	}
	return h.index
}

// Rewrite replaces the content of the referenced turn.
func (h Handle) Rewrite(text string) error {
	if h.log == nil {
		return ErrNoTurn
	}
	l := h.log
	l.mu.Lock()
	if len(l.turns) == 0 {
		l.mu.Unlock()
		return ErrNoTurn
	}
	if h.index != len(l.turns)-1 {
		l.mu.Unlock()
		return ErrNotLast
	}
	return l.rewriteLocked(h.index, text)
}
