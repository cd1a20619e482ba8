package engine

import (
	"errors"
	"math"
	"testing"
)

func TestPick(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		if label, ok := g.Pick(nil); ok || label != "" {
			t.Errorf("Pick(nil) = (%q, %v), want empty result", label, ok)
		}
	})

	t.Run("all weights invalid", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		options := []WeightedOption{
			{Label: "a", Weight: 0},
			{Label: "b", Weight: -1},
			{Label: "c", Weight: math.NaN()},
			{Label: "d", Weight: math.Inf(1)},
		}
		if label, ok := g.Pick(options); ok || label != "" {
			t.Errorf("Pick() = (%q, %v), want empty result", label, ok)
		}
	})

	t.Run("single positive weight always wins", func(t *testing.T) {
		options := []WeightedOption{
			{Label: "a", Weight: 0},
			{Label: "b", Weight: 0},
			{Label: "c", Weight: 1},
		}
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		for i := 0; i < 200; i++ {
			label, ok := g.Pick(options)
			if !ok || label != "c" {
				t.Fatalf("Pick() = (%q, %v), want (\"c\", true)", label, ok)
			}
			g.State().Advance()
		}
	})

	t.Run("does not advance", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		before := g.State().Nonce()
		g.Pick([]WeightedOption{{Label: "a", Weight: 1}, {Label: "b", Weight: 2}})
		if g.State().Nonce() != before {
			t.Error("Pick() advanced the counter")
		}
	})

	t.Run("all labels reachable", func(t *testing.T) {
		options := []WeightedOption{
			{Label: "a", Weight: 1},
			{Label: "b", Weight: 1},
			{Label: "c", Weight: 1},
		}
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		seen := map[string]int{}
		for i := 0; i < 300; i++ {
			label, ok := g.Pick(options)
			if !ok {
				t.Fatal("Pick() returned empty result for valid weights")
			}
			seen[label]++
			g.State().Advance()
		}
		for _, o := range options {
			if seen[o.Label] == 0 {
				t.Errorf("label %q never picked in 300 draws: %v", o.Label, seen)
			}
		}
	})
}

func TestShuffleIsPermutation(t *testing.T) {
	sizes := []int{0, 1, 2, 10, 52}
	for _, size := range sizes {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})

		items := make([]int, size)
		for i := range items {
			items[i] = i
		}
		if err := Shuffle(g, items); err != nil {
			t.Fatalf("Shuffle(size=%d) error: %v", size, err)
		}

		seen := make([]bool, size)
		for _, v := range items {
			if v < 0 || v >= size || seen[v] {
				t.Fatalf("Shuffle(size=%d) is not a permutation: %v", size, items)
			}
			seen[v] = true
		}
	}
}

func TestShuffleAdvancesPerElement(t *testing.T) {
	g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
	items := make([]int, 8)
	before := g.State().Nonce()
	if err := Shuffle(g, items); err != nil {
		t.Fatalf("Shuffle() error: %v", err)
	}
	if advanced := g.State().Nonce() - before; advanced < 8 {
		t.Errorf("Shuffle of 8 elements advanced counter %d times, want >= 8", advanced)
	}
}

func TestShuffleDeterministic(t *testing.T) {
	run := func() []int {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "clientSeed", ServerSeed: "serverSeed"})
		items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		if err := Shuffle(g, items); err != nil {
			t.Fatalf("Shuffle() error: %v", err)
		}
		return items
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("shuffle not deterministic: %v vs %v", first, second)
		}
	}
}

func TestSampleUnique(t *testing.T) {
	t.Run("distinct values in range", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		values, err := g.SampleUnique(1, 10, 5)
		if err != nil {
			t.Fatalf("SampleUnique() error: %v", err)
		}
		if len(values) != 5 {
			t.Fatalf("SampleUnique(1, 10, 5) returned %d values, want 5", len(values))
		}
		seen := map[int64]bool{}
		for _, v := range values {
			if v < 1 || v > 10 {
				t.Errorf("value %d out of [1, 10]", v)
			}
			if seen[v] {
				t.Errorf("duplicate value %d in %v", v, values)
			}
			seen[v] = true
		}
	})

	t.Run("size clamps to domain", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		values, err := g.SampleUnique(1, 3, 10)
		if err != nil {
			t.Fatalf("SampleUnique() error: %v", err)
		}
		if len(values) != 3 {
			t.Errorf("SampleUnique(1, 3, 10) returned %d values, want 3", len(values))
		}
	})

	t.Run("negative size yields empty result", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		values, err := g.SampleUnique(1, 10, -4)
		if err != nil {
			t.Fatalf("SampleUnique() error: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("SampleUnique(1, 10, -4) returned %v, want empty", values)
		}
	})

	t.Run("malformed range errors", func(t *testing.T) {
		g := newTestGenerator(t, SeedConfig{ClientSeed: "c", ServerSeed: "s"})
		var rangeErr *RangeError
		if _, err := g.SampleUnique(10, 1, 3); !errors.As(err, &rangeErr) {
			t.Errorf("SampleUnique(10, 1, 3) error = %v, want RangeError", err)
		}
	})
}
