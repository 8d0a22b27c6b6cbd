package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 levels, got %d", c.Len())
	}
	for i, lvl := range c.Levels {
		if len(lvl.Pairs) != 4 {
			t.Errorf("level %d: expected 4 pairs, got %d", i+1, len(lvl.Pairs))
		}
	}
	lvl, ok := c.Level(1)
	if !ok || lvl.Pairs[2].ID != "2-3" {
		t.Fatalf("expected level 2 pair 3 to be 2-3, got %+v", lvl.Pairs)
	}
	if _, ok := c.Level(3); ok {
		t.Fatal("expected out-of-range level to be missing")
	}
	if c.Title == "" {
		t.Fatal("expected intro title")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cat     *Catalog
		wantErr error
	}{
		{
			name:    "nil catalog",
			cat:     nil,
			wantErr: ErrNoLevels,
		},
		{
			name:    "no levels",
			cat:     &Catalog{},
			wantErr: ErrNoLevels,
		},
		{
			name:    "empty level",
			cat:     &Catalog{Levels: []Level{{Name: "a"}}},
			wantErr: ErrEmptyLevel,
		},
		{
			name: "duplicate id",
			cat: &Catalog{Levels: []Level{{Pairs: []Pair{
				{ID: "1", Term: "a", Definition: "b"},
				{ID: "1", Term: "c", Definition: "d"},
			}}}},
			wantErr: ErrDuplicateID,
		},
		{
			name:    "blank term",
			cat:     &Catalog{Levels: []Level{{Pairs: []Pair{{ID: "1", Term: " ", Definition: "b"}}}}},
			wantErr: ErrInvalidPair,
		},
		{
			name:    "missing id",
			cat:     &Catalog{Levels: []Level{{Pairs: []Pair{{Term: "a", Definition: "b"}}}}},
			wantErr: ErrInvalidPair,
		},
		{
			name: "same id on different levels",
			cat: &Catalog{Levels: []Level{
				{Pairs: []Pair{{ID: "1", Term: "a", Definition: "b"}}},
				{Pairs: []Pair{{ID: "1", Term: "c", Definition: "d"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cat)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"levels":[{"pairs":[{"id":"1","term":"a","def":"b"}]}]}`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.json")
	body := `{"title":"T","levels":[{"name":"only","pairs":[{"id":"x","term":"t","definition":"d"}]}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if c.Len() != 1 || c.Levels[0].Pairs[0].ID != "x" {
		t.Fatalf("unexpected catalog: %+v", c)
	}

	def, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if def.Len() != 3 {
		t.Fatalf("expected embedded catalog, got %d levels", def.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
