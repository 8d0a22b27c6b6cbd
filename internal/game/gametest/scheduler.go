// Package gametest provides a manually driven scheduler so timer-dependent
// game behaviour can be tested without sleeping.
package gametest

import (
	"sort"
	"sync"
	"time"

	"github.com/qmcDevelopment/auditoria-iso/internal/game"
)

// Scheduler is a game.Scheduler whose clock only moves on Advance.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
	all   []*task
}

type task struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewScheduler returns a scheduler at time zero.
func NewScheduler() *Scheduler { return &Scheduler{} }

// AfterFunc registers f to run once the clock has advanced by d.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) game.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{s: s, at: s.now + d, seq: s.seq, f: f}
	s.tasks = append(s.tasks, t)
	s.all = append(s.all, t)
	return t
}

func (t *task) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d and runs every callback that became
// due, in deadline order, on the calling goroutine.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due, rest []*task
	for _, t := range s.tasks {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.tasks = rest
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending reports how many callbacks are armed and not yet stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// RunStopped runs the callbacks of timers that were stopped before firing.
// It models real timers whose callback had already started when Stop lost
// the race, which the controller must tolerate.
func (s *Scheduler) RunStopped() {
	s.mu.Lock()
	var late []*task
	for _, t := range s.all {
		if t.stopped && !t.fired {
			t.fired = true
			late = append(late, t)
		}
	}
	s.mu.Unlock()
	for _, t := range late {
		t.f()
	}
}
