package game

import (
	"errors"
	"time"
)

// Config holds the scoring and timing rules of a session.
type Config struct {
	MatchReward          int           // points added on a correct match
	MismatchPenalty      int           // points subtracted on a wrong pair (score floors at 0)
	MismatchDisplayDelay time.Duration // how long a wrong pair stays on the board
	LevelSettleDelay     time.Duration // pause between the last match and the level transition
}

// DefaultConfig returns the reference rules: +100, -20, 800ms, 500ms.
func DefaultConfig() Config {
	return Config{
		MatchReward:          100,
		MismatchPenalty:      20,
		MismatchDisplayDelay: 800 * time.Millisecond,
		LevelSettleDelay:     500 * time.Millisecond,
	}
}

// Validate rejects negative values.
func (c Config) Validate() error {
	if c.MatchReward < 0 {
		return errors.New("match reward must not be negative")
	}
	if c.MismatchPenalty < 0 {
		return errors.New("mismatch penalty must not be negative")
	}
	if c.MismatchDisplayDelay < 0 || c.LevelSettleDelay < 0 {
		return errors.New("delays must not be negative")
	}
	return nil
}
