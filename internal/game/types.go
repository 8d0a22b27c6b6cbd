// internal/game/types.go
//
// Core type definitions for the matching game engine.
// Defines:
//   - State: the screen the session is on (intro/playing/levelComplete/gameComplete).
//   - Column: which side of the board an item belongs to.
//   - DisplayItem / Card: what the presentation layer renders.
//   - View: the observable snapshot of a session.
//   - Event: notifications emitted on every state change.

package game

// State is the coarse state of a game session.
type State string

const (
	StateIntro         State = "intro"
	StatePlaying       State = "playing"
	StateLevelComplete State = "levelComplete"
	StateGameComplete  State = "gameComplete"
)

// Column identifies the board column an item is displayed in.
type Column string

const (
	ColumnTerm       Column = "term"
	ColumnDefinition Column = "definition"
)

// DisplayItem is one card's content. ID is the id of the pair it came from,
// so a term and its definition share an ID.
type DisplayItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Card is a DisplayItem decorated with its current presentation flags.
type Card struct {
	DisplayItem
	Matched    bool `json:"matched"`
	Selected   bool `json:"selected"`
	Mismatched bool `json:"mismatched"`
}

// MismatchFeedback is shown while a wrong pair is held on the board.
const MismatchFeedback = "¡No coinciden! Intenta de nuevo."

// View is a copy of everything the presentation layer needs. It shares no
// memory with the controller.
type View struct {
	State            State        `json:"state"`
	LevelIndex       int          `json:"levelIndex"`
	LevelCount       int          `json:"levelCount"`
	LevelName        string       `json:"levelName,omitempty"`
	LevelDescription string       `json:"levelDescription,omitempty"`
	PairCount        int          `json:"pairCount"`
	Terms            []Card       `json:"terms"`
	Definitions      []Card       `json:"definitions"`
	SelectedTerm     *DisplayItem `json:"selectedTerm,omitempty"`
	SelectedDef      *DisplayItem `json:"selectedDef,omitempty"`
	MatchedIDs       []string     `json:"matchedIds"`
	Mistakes         int          `json:"mistakes"`
	Score            int          `json:"score"`
	Mismatch         bool         `json:"mismatch"`
	Feedback         string       `json:"feedback,omitempty"`
}

// EventKind names a state change.
type EventKind string

const (
	EventStarted          EventKind = "started"
	EventLevelStarted     EventKind = "levelStarted"
	EventMatched          EventKind = "matched"
	EventMismatched       EventKind = "mismatched"
	EventSelectionCleared EventKind = "selectionCleared"
	EventLevelComplete    EventKind = "levelComplete"
	EventGameComplete     EventKind = "gameComplete"
)

// Event is passed to the observer after the change it describes.
// ID is the pair id for matched events and the selected term id for mismatches.
// Run counts StartGame calls, so a replay in the same session has its own run.
type Event struct {
	Kind     EventKind
	Run      int
	Level    int
	ID       string
	Score    int
	Mistakes int
}
