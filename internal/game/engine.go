// internal/game/engine.go
//
// Core game engine for a single matching-game session.
// Responsibilities:
//   - Deal each level: shuffle its terms and definitions independently.
//   - Accept card selections and resolve a term/definition pair once both are chosen.
//   - Score: +reward on a match, -penalty on a mismatch (never below zero).
//   - Track state transitions: intro → playing → levelComplete ↔ playing → gameComplete.
//   - Own the two delayed transitions (mismatch clear, level settle) and cancel them
//     whenever the session moves on.
//
// Notes:
//   - Every public method and every timer callback runs under one mutex, so a session
//     behaves like a single-threaded event loop regardless of the caller.
//   - A timer callback carries the generation it was armed for and does nothing if the
//     generation moved on, even when Stop lost the race against it.
//   - Calls made in the wrong state are no-ops and report false.
package game

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/qmcDevelopment/auditoria-iso/internal/content"
)

// Option configures a Controller.
type Option func(*Controller)

// WithConfig overrides the default scoring and timing rules.
func WithConfig(cfg Config) Option { return func(c *Controller) { c.cfg = cfg } }

// WithScheduler replaces the time.AfterFunc based scheduler.
func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

// WithRand sets the source used for shuffling.
func WithRand(r *rand.Rand) Option { return func(c *Controller) { c.rng = r } }

// WithObserver registers fn to receive every Event. fn runs outside the
// controller lock and may call back into the controller.
func WithObserver(fn func(Event)) Option { return func(c *Controller) { c.observer = fn } }

// pending is a delayed transition and the generation it was armed for.
type pending struct {
	timer Timer
	gen   uint64
}

// cancel stops the timer and invalidates any callback already in flight.
func (p *pending) cancel() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

// Controller drives one game session.
type Controller struct {
	mu       sync.Mutex
	catalog  *content.Catalog
	cfg      Config
	sched    Scheduler
	rng      *rand.Rand
	observer func(Event)

	state        State
	run          int
	level        int
	terms        []DisplayItem
	definitions  []DisplayItem
	selectedTerm *DisplayItem
	selectedDef  *DisplayItem
	matched      map[string]struct{}
	mistakes     int
	score        int

	clear  pending // mismatch display
	settle pending // level completion
	closed bool
	events []Event // emitted under the lock, dispatched after it
}

// New constructs a controller in the intro state.
// The catalog is validated; it must not be modified afterwards.
func New(cat *content.Catalog, opts ...Option) (*Controller, error) {
	if err := content.Validate(cat); err != nil {
		return nil, err
	}
	c := &Controller{
		catalog: cat,
		cfg:     DefaultConfig(),
		sched:   SystemScheduler,
		state:   StateIntro,
		matched: map[string]struct{}{},
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c, nil
}

// StartGame resets score, mistakes and progress and deals the first level.
// It is valid from any state and doubles as restart.
func (c *Controller) StartGame() {
	c.do(func() bool {
		c.score, c.mistakes = 0, 0
		c.run++
		c.emit(EventStarted, "")
		c.enterLevel(0)
		return true
	})
}

// NextLevel deals the following level. Only valid on the level-complete screen.
func (c *Controller) NextLevel() bool {
	return c.do(func() bool {
		if c.state != StateLevelComplete {
			return false
		}
		c.enterLevel(c.level + 1)
		return true
	})
}

// SelectTerm selects the term card with the given pair id.
// It reports false when the selection was ignored: not playing, a mismatch is
// on display, the card is already matched, or no such card is dealt.
func (c *Controller) SelectTerm(id string) bool {
	return c.do(func() bool { return c.selectLocked(ColumnTerm, id) })
}

// SelectDef is SelectTerm for the definition column.
func (c *Controller) SelectDef(id string) bool {
	return c.do(func() bool { return c.selectLocked(ColumnDefinition, id) })
}

// Click routes a card click to the column it belongs to.
func (c *Controller) Click(col Column, id string) bool {
	switch col {
	case ColumnTerm:
		return c.SelectTerm(id)
	case ColumnDefinition:
		return c.SelectDef(id)
	default:
		return false
	}
}

// Close cancels pending transitions. Every later event is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear.cancel()
	c.settle.cancel()
	c.closed = true
}

// Snapshot returns a copy of the observable session state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:      c.state,
		LevelIndex: c.level,
		LevelCount: c.catalog.Len(),
		Mistakes:   c.mistakes,
		Score:      c.score,
		Mismatch:   c.mismatchLocked(),
	}
	if c.state != StateIntro {
		lvl := c.current()
		v.LevelName = lvl.Name
		v.LevelDescription = lvl.Description
		v.PairCount = len(lvl.Pairs)
	}
	v.Terms = c.cards(c.terms, c.selectedTerm, v.Mismatch)
	v.Definitions = c.cards(c.definitions, c.selectedDef, v.Mismatch)
	if c.selectedTerm != nil {
		it := *c.selectedTerm
		v.SelectedTerm = &it
	}
	if c.selectedDef != nil {
		it := *c.selectedDef
		v.SelectedDef = &it
	}
	v.MatchedIDs = make([]string, 0, len(c.matched))
	for id := range c.matched {
		v.MatchedIDs = append(v.MatchedIDs, id)
	}
	sort.Strings(v.MatchedIDs)
	if v.Mismatch {
		v.Feedback = MismatchFeedback
	}
	return v
}

// do runs fn under the lock and then hands the emitted events to the observer.
func (c *Controller) do(fn func() bool) bool {
	c.mu.Lock()
	ok := false
	if !c.closed {
		ok = fn()
	}
	events := c.events
	c.events = nil
	c.mu.Unlock()

	if c.observer != nil {
		for _, e := range events {
			c.observer(e)
		}
	}
	return ok
}

func (c *Controller) emit(kind EventKind, id string) {
	c.events = append(c.events, Event{
		Kind:     kind,
		Run:      c.run,
		Level:    c.level,
		ID:       id,
		Score:    c.score,
		Mistakes: c.mistakes,
	})
}

// enterLevel deals level i and switches to playing. Pending transitions
// from the previous board are dropped.
func (c *Controller) enterLevel(i int) {
	c.clear.cancel()
	c.settle.cancel()

	lvl, _ := c.catalog.Level(i)
	pairs := lvl.Pairs
	terms := make([]DisplayItem, len(pairs))
	defs := make([]DisplayItem, len(pairs))
	for k, p := range pairs {
		terms[k] = DisplayItem{ID: p.ID, Text: p.Term}
		defs[k] = DisplayItem{ID: p.ID, Text: p.Definition}
	}

	c.level = i
	c.terms = Shuffle(terms, c.rng)
	c.definitions = Shuffle(defs, c.rng)
	c.matched = make(map[string]struct{}, len(pairs))
	c.selectedTerm, c.selectedDef = nil, nil
	c.state = StatePlaying
	c.emit(EventLevelStarted, "")
}

func (c *Controller) selectLocked(col Column, id string) bool {
	if c.state != StatePlaying || c.mismatchLocked() {
		return false
	}
	if _, done := c.matched[id]; done {
		return false
	}
	list := c.terms
	if col == ColumnDefinition {
		list = c.definitions
	}
	item, ok := findItem(list, id)
	if !ok {
		return false
	}
	if col == ColumnTerm {
		c.selectedTerm = &item
	} else {
		c.selectedDef = &item
	}
	c.evaluate()
	return true
}

// evaluate resolves the pair once both columns have a selection.
func (c *Controller) evaluate() {
	if c.selectedTerm == nil || c.selectedDef == nil {
		return
	}

	if c.selectedTerm.ID == c.selectedDef.ID {
		id := c.selectedTerm.ID
		c.matched[id] = struct{}{}
		c.score += c.cfg.MatchReward
		c.selectedTerm, c.selectedDef = nil, nil
		c.emit(EventMatched, id)
		c.checkLevelDone()
		return
	}

	c.mistakes++
	c.score = max(0, c.score-c.cfg.MismatchPenalty)
	c.emit(EventMismatched, c.selectedTerm.ID)

	c.clear.cancel()
	gen := c.clear.gen
	c.clear.timer = c.sched.AfterFunc(c.cfg.MismatchDisplayDelay, func() { c.fireClear(gen) })
}

func (c *Controller) fireClear(gen uint64) {
	c.do(func() bool {
		if gen != c.clear.gen {
			return false
		}
		c.clear.timer = nil
		c.selectedTerm, c.selectedDef = nil, nil
		c.emit(EventSelectionCleared, "")
		return true
	})
}

// checkLevelDone arms the settle timer once every pair of the level is matched.
func (c *Controller) checkLevelDone() {
	n := len(c.current().Pairs)
	if c.state != StatePlaying || n == 0 || len(c.matched) != n {
		return
	}
	c.settle.cancel()
	gen := c.settle.gen
	c.settle.timer = c.sched.AfterFunc(c.cfg.LevelSettleDelay, func() { c.fireSettle(gen) })
}

func (c *Controller) fireSettle(gen uint64) {
	c.do(func() bool {
		if gen != c.settle.gen || c.state != StatePlaying {
			return false
		}
		c.settle.timer = nil
		if c.level < c.catalog.Len()-1 {
			c.state = StateLevelComplete
			c.emit(EventLevelComplete, "")
		} else {
			c.state = StateGameComplete
			c.emit(EventGameComplete, "")
		}
		return true
	})
}

// current returns the level being played.
func (c *Controller) current() content.Level {
	lvl, _ := c.catalog.Level(c.level)
	return lvl
}

// mismatchLocked reports whether a wrong pair is currently held on the board.
func (c *Controller) mismatchLocked() bool {
	return c.selectedTerm != nil && c.selectedDef != nil && c.selectedTerm.ID != c.selectedDef.ID
}

func (c *Controller) cards(items []DisplayItem, selected *DisplayItem, mismatch bool) []Card {
	out := make([]Card, 0, len(items))
	for _, it := range items {
		_, matched := c.matched[it.ID]
		sel := selected != nil && selected.ID == it.ID
		out = append(out, Card{
			DisplayItem: it,
			Matched:     matched,
			Selected:    sel,
			Mismatched:  sel && mismatch,
		})
	}
	return out
}

func findItem(items []DisplayItem, id string) (DisplayItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return DisplayItem{}, false
}
