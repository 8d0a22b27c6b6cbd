package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qmcDevelopment/auditoria-iso/internal/content"
	"github.com/qmcDevelopment/auditoria-iso/internal/game"
	"github.com/qmcDevelopment/auditoria-iso/internal/game/gametest"
)

func newSession(t *testing.T, id string) (*Session, *gametest.Scheduler) {
	t.Helper()
	cat, err := content.Default()
	if err != nil {
		t.Fatal(err)
	}
	sched := gametest.NewScheduler()
	g, err := game.New(cat, game.WithScheduler(sched))
	if err != nil {
		t.Fatal(err)
	}
	return &Session{ID: id, Mode: "random", Game: g, CreatedAt: time.Now()}, sched
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s, _ := newSession(t, "abc")

	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, "abc")
	if err != nil || got != s {
		t.Fatalf("get: %v %v", got, err)
	}
	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Delete(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSaveRejectsInvalidSession(t *testing.T) {
	st := NewMemoryStore()
	if err := st.Save(context.Background(), &Session{ID: "x"}); err == nil {
		t.Fatal("expected error for session without game")
	}
}

func TestDeleteClosesGame(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s, sched := newSession(t, "abc")
	_ = st.Save(ctx, s)

	s.Game.StartGame()
	s.Game.SelectTerm("1-1")
	s.Game.SelectDef("1-2")
	if err := st.Delete(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if sched.Pending() != 0 {
		t.Fatalf("expected timers cancelled, got %d pending", sched.Pending())
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	st := &memory{sessions: map[string]*Session{}, now: func() time.Time { return clock }}

	old, _ := newSession(t, "old")
	_ = st.Save(ctx, old)
	clock = clock.Add(time.Hour)
	fresh, _ := newSession(t, "fresh")
	_ = st.Save(ctx, fresh)

	if n := st.Sweep(ctx, clock.Add(-2*time.Hour)); n != 0 {
		t.Fatalf("expected nothing swept, got %d", n)
	}
	if n := st.Sweep(ctx, clock.Add(-30*time.Minute)); n != 1 {
		t.Fatalf("expected 1 swept, got %d", n)
	}
	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatal("old session survived the sweep")
	}

	// Get counts as activity.
	clock = clock.Add(time.Hour)
	if _, err := st.Get(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	if n := st.Sweep(ctx, clock.Add(-time.Minute)); n != 0 {
		t.Fatal("recently used session swept")
	}
}

func TestCloseAll(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	a, schedA := newSession(t, "a")
	b, schedB := newSession(t, "b")
	_ = st.Save(ctx, a)
	_ = st.Save(ctx, b)

	// A finished level leaves a settle timer armed.
	a.Game.StartGame()
	for _, card := range a.Game.Snapshot().Terms {
		a.Game.SelectTerm(card.ID)
		a.Game.SelectDef(card.ID)
	}
	if schedA.Pending() != 1 {
		t.Fatalf("expected a pending settle, got %d", schedA.Pending())
	}

	if n := st.CloseAll(ctx); n != 2 {
		t.Fatalf("expected 2 closed, got %d", n)
	}
	if schedA.Pending() != 0 || schedB.Pending() != 0 {
		t.Fatal("timers still armed after CloseAll")
	}
	schedA.RunStopped()
	if v := a.Game.Snapshot(); v.State != game.StatePlaying {
		t.Fatalf("closed game moved on: %s", v.State)
	}
	if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatal("session survived CloseAll")
	}
}
