// internal/content/content.go
//
// Static level definitions for the matching game.
//
// Responsibilities:
//   - Describe the catalog: ordered levels, each an ordered list of term/definition pairs.
//   - Load the catalog from the embedded asset or from a file (LEVELS_FILE).
//   - Validate it once at startup so the game engine can trust its input.
//
// A Catalog is immutable after loading. Callers must not modify the slices it returns.

package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/qmcDevelopment/auditoria-iso/assets"
)

var (
	ErrNoLevels    = errors.New("catalog has no levels")
	ErrEmptyLevel  = errors.New("level has no pairs")
	ErrDuplicateID = errors.New("duplicate pair id")
	ErrInvalidPair = errors.New("invalid pair")
)

// Pair is one term together with its definition. ID is unique within a level.
type Pair struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Level is a named group of pairs played on one screen.
type Level struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pairs       []Pair `json:"pairs"`
}

// Catalog is the full, ordered game content plus the intro screen text.
type Catalog struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Intro    []string `json:"intro"`
	Levels   []Level  `json:"levels"`
}

// Len reports the number of levels.
func (c *Catalog) Len() int { return len(c.Levels) }

// Level returns level i, or false when i is out of range.
func (c *Catalog) Level(i int) (Level, bool) {
	if i < 0 || i >= len(c.Levels) {
		return Level{}, false
	}
	return c.Levels[i], true
}

// Parse decodes a JSON catalog and validates it.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads and validates a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(bytes.NewReader(assets.LevelsJSON()))
	})
	return defaultCat, defaultErr
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

// Validate checks the structural rules the game engine relies on:
// at least one level, no empty level, non-empty fields, and unique ids per level.
func Validate(c *Catalog) error {
	if c == nil || len(c.Levels) == 0 {
		return ErrNoLevels
	}
	for i, lvl := range c.Levels {
		if len(lvl.Pairs) == 0 {
			return fmt.Errorf("level %d (%q): %w", i+1, lvl.Name, ErrEmptyLevel)
		}
		seen := make(map[string]struct{}, len(lvl.Pairs))
		for j, p := range lvl.Pairs {
			if p.ID == "" || strings.TrimSpace(p.Term) == "" || strings.TrimSpace(p.Definition) == "" {
				return fmt.Errorf("level %d pair %d: %w", i+1, j+1, ErrInvalidPair)
			}
			if _, dup := seen[p.ID]; dup {
				return fmt.Errorf("level %d: %w %q", i+1, ErrDuplicateID, p.ID)
			}
			seen[p.ID] = struct{}{}
		}
	}
	return nil
}
