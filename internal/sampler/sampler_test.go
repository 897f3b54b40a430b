package sampler

import (
	"errors"
	"fmt"
	"testing"
)

func TestChooseReturnsDistinctMembers(t *testing.T) {
	pop := []string{"a", "b", "c", "d", "e", "f", "g"}
	r := Seeded(1, 2)
	for n := 0; n <= len(pop); n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			got, err := Choose(r, pop, n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != n {
				t.Fatalf("expected %d elements, got %d", n, len(got))
			}
			seen := map[string]bool{}
			for _, v := range got {
				if seen[v] {
					t.Errorf("duplicate element %q in %v", v, got)
				}
				seen[v] = true
			}
		})
	}
}

func TestChooseTooMany(t *testing.T) {
	_, err := Choose(Seeded(1, 1), []int{1, 2, 3}, 4)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	_, err = Choose(Seeded(1, 1), []int{1, 2, 3}, -1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative count, got %v", err)
	}
}

func TestChooseDeterministicWithSeed(t *testing.T) {
	a, _ := Indexes(Seeded(42, 7), 100, 10)
	b, _ := Indexes(Seeded(42, 7), 100, 10)
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestChooseWholePopulationIsPermutation(t *testing.T) {
	got, err := Indexes(Seeded(3, 3), 50, 50)
	if err != nil {
		t.Fatal(err)
	}
	seen := make([]bool, 50)
	for _, v := range got {
		if v < 0 || v >= 50 || seen[v] {
			t.Fatalf("not a permutation: %v", got)
		}
		seen[v] = true
	}
}

// fixedRand always picks the given slot (clamped to the range).
type fixedRand struct{ pick int }

func (f fixedRand) IntN(n int) int {
	if f.pick >= n {
		return n - 1
	}
	return f.pick
}

func TestChooseSwapsLastSlotIntoPicked(t *testing.T) {
	// Always picking slot 0: first draw takes pop[0], slot 0 then holds pop[4],
	// second draw takes pop[4], slot 0 then holds pop[3].
	got, err := Choose(fixedRand{pick: 0}, []int{10, 11, 12, 13, 14}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{13, 14, 10} // filled from the back
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestChooseRoughlyUniform(t *testing.T) {
	const (
		n      = 10
		k      = 3
		rounds = 30000
	)
	r := Seeded(99, 1)
	counts := make([]int, n)
	for i := 0; i < rounds; i++ {
		got, err := Indexes(r, n, k)
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range got {
			counts[v]++
		}
	}
	expected := float64(rounds*k) / n
	for i, c := range counts {
		if dev := (float64(c) - expected) / expected; dev > 0.05 || dev < -0.05 {
			t.Errorf("index %d chosen %d times, expected about %.0f", i, c, expected)
		}
	}
}
