package conversation

import (
	"errors"
	"testing"
)

func TestLogAppendKeepsOrder(t *testing.T) {
	l := NewLog()
	if _, err := l.Append(AuthorTurn("Hi")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := l.Append(RespondentTurn("Hello")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := l.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(got))
	}
	if got[0] != AuthorTurn("Hi") || got[1] != RespondentTurn("Hello") {
		t.Fatalf("Snapshot() = %+v", got)
	}
}

func TestLogAppendRejectsUnknownRole(t *testing.T) {
	l := NewLog()
	_, err := l.Append(Turn{Role: "system", Content: "x"})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("Append() error = %v, want ErrInvalidRole", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}

func TestRewriteLastOnEmptyLog(t *testing.T) {
	l := NewLog()
	if err := l.RewriteLast("x"); !errors.Is(err, ErrNoTurn) {
		t.Fatalf("RewriteLast() error = %v, want ErrNoTurn", err)
	}
}

func TestRewriteLastPreservesRole(t *testing.T) {
	l := NewLog()
	l.Append(AuthorTurn("q"))
	l.Append(RespondentTurn(""))

	if err := l.RewriteLast("partial"); err != nil {
		t.Fatalf("RewriteLast() error = %v", err)
	}
	last, ok := l.Last()
	if !ok {
		t.Fatal("Last() should report a turn")
	}
	if last.Role != RoleRespondent || last.Content != "partial" {
		t.Fatalf("Last() = %+v", last)
	}
	if first := l.Snapshot()[0]; first.Content != "q" {
		t.Fatalf("first turn changed: %+v", first)
	}
}

func TestSnapshotIsNotLive(t *testing.T) {
	l := NewLog()
	l.Append(RespondentTurn("a"))
	snap := l.Snapshot()
	l.RewriteLast("b")
	snap[0].Content = "mutated"

	if snap2 := l.Snapshot(); snap2[0].Content != "b" {
		t.Fatalf("Snapshot()[0].Content = %q, want %q", snap2[0].Content, "b")
	}
}

func TestHandleRewriteOnlyWhileLast(t *testing.T) {
	l := NewLog()
	h, _ := l.Append(RespondentTurn(""))
	if h.Index() != 0 {
		t.Fatalf("Index() = %d, want 0", h.Index())
	}
	if err := h.Rewrite("He"); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	l.Append(AuthorTurn("next"))
	if err := h.Rewrite("Hello"); !errors.Is(err, ErrNotLast) {
		t.Fatalf("Rewrite() error = %v, want ErrNotLast", err)
	}
	if got := l.Snapshot()[0].Content; got != "He" {
		t.Fatalf("stale handle wrote through: %q", got)
	}
	if got := l.Snapshot()[1].Content; got != "next" {
		t.Fatalf("author turn changed: %q", got)
	}
}

func TestZeroHandle(t *testing.T) {
	var h Handle
	if h.Index() != -1 {
		t.Fatalf("Index() = %d, want -1", h.Index())
	}
	if err := h.Rewrite("x"); !errors.Is(err, ErrNoTurn) {
		t.Fatalf("Rewrite() error = %v, want ErrNoTurn", err)
	}
}

func TestObserversNotifiedSynchronously(t *testing.T) {
	l := NewLog()
	var seen [][]Turn
	unsubscribe := l.Subscribe(func(turns []Turn) {
		seen = append(seen, turns)
	})

	l.Append(AuthorTurn("Hi"))
	if len(seen) != 1 {
		t.Fatalf("observer calls after Append = %d, want 1", len(seen))
	}
	l.Append(RespondentTurn(""))
	l.RewriteLast("H")
	if len(seen) != 3 {
		t.Fatalf("observer calls = %d, want 3", len(seen))
	}
	if got := seen[2][1].Content; got != "H" {
		t.Fatalf("last snapshot content = %q, want %q", got, "H")
	}

	unsubscribe()
	unsubscribe()
	l.RewriteLast("He")
	if len(seen) != 3 {
		t.Fatalf("observer called after unsubscribe")
	}
}

func TestObserverMayReadLog(t *testing.T) {
	l := NewLog()
	var lens []int
	l.Subscribe(func([]Turn) {
		lens = append(lens, l.Len())
	})
	l.Append(AuthorTurn("a"))
	l.Append(RespondentTurn("b"))
	if len(lens) != 2 || lens[0] != 1 || lens[1] != 2 {
		t.Fatalf("lens = %v, want [1 2]", lens)
	}
}
