package game

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestShuffleIsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	tests := []struct {
		name  string
		input []string
	}{
		{name: "empty", input: []string{}},
		{name: "single", input: []string{"a"}},
		{name: "four", input: []string{"a", "b", "c", "d"}},
		{name: "duplicates", input: []string{"x", "x", "y", "z", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := slices.Clone(tt.input)
			for i := 0; i < 50; i++ {
				got := Shuffle(tt.input, r)
				if len(got) != len(tt.input) {
					t.Fatalf("length changed: got %d, want %d", len(got), len(tt.input))
				}
				a, b := slices.Clone(got), slices.Clone(orig)
				slices.Sort(a)
				slices.Sort(b)
				if !slices.Equal(a, b) {
					t.Fatalf("not a permutation: %v vs %v", got, orig)
				}
			}
			if !slices.Equal(tt.input, orig) {
				t.Fatalf("input was modified: %v", tt.input)
			}
		})
	}
}

func TestShuffleIsUniform(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	items := []int{0, 1, 2, 3}
	const trials = 40000

	var counts [4][4]int // counts[position][value]
	for i := 0; i < trials; i++ {
		for pos, v := range Shuffle(items, r) {
			counts[pos][v]++
		}
	}

	// Expected 10000 per cell; the standard deviation is ~87.
	const want, slack = trials / 4, 500
	for pos := range counts {
		for v, n := range counts[pos] {
			if n < want-slack || n > want+slack {
				t.Errorf("position %d holds %d %d times, want %d±%d", pos, v, n, want, slack)
			}
		}
	}
}
