package randx

import (
	"errors"
	"testing"
	"time"

	"tempo/pkg/resolve"
)

func TestSeededDeterminism(t *testing.T) {
	a := NewSeeded(7, WithRandRuntime(resolve.NewRuntime()))
	b := NewSeeded(7, WithRandRuntime(resolve.NewRuntime()))
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed should produce the same sequence")
		}
	}
}

func TestBetweenBounds(t *testing.T) {
	r := NewSeeded(1, WithRandRuntime(resolve.NewRuntime()))
	for i := 0; i < 100; i++ {
		v := r.Between(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("Between(3,7) = %d", v)
		}
	}
	// Swapped bounds are tolerated.
	if v := r.Between(7, 3); v < 3 || v > 7 {
		t.Fatalf("Between(7,3) = %d", v)
	}
}

func TestScaledRange(t *testing.T) {
	r := NewSeeded(2, WithRandRuntime(resolve.NewRuntime()))
	for i := 0; i < 100; i++ {
		v := r.Scaled(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Scaled(5) = %g", v)
		}
	}
}

func TestChoice(t *testing.T) {
	r := NewSeeded(3, WithRandRuntime(resolve.NewRuntime()))
	items := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		v, err := Choice(r, items)
		if err != nil {
			t.Fatalf("Choice: %v", err)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Fatalf("200 draws hit only %d of 3 items", len(seen))
	}
	if _, err := Choice(r, []string{}); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("empty Choice = %v, want ErrNoCandidates", err)
	}
}

func TestWeightedProportions(t *testing.T) {
	r := NewSeeded(4, WithRandRuntime(resolve.NewRuntime()))
	objs := []Object[string]{
		Prep("common", 9),
		Prep("rare", 1),
	}
	counts := map[string]int{}
	const draws = 2000
	for i := 0; i < draws; i++ {
		v, err := Weighted(r, objs)
		if err != nil {
			t.Fatalf("Weighted: %v", err)
		}
		counts[v]++
	}
	if counts["common"] <= counts["rare"] {
		t.Fatalf("weights ignored: %v", counts)
	}
	// ~10% expected for rare; allow generous slack.
	if counts["rare"] == 0 || counts["rare"] > draws/4 {
		t.Fatalf("rare drawn %d times out of %d", counts["rare"], draws)
	}
}

func TestWeightedNoCandidates(t *testing.T) {
	r := NewSeeded(5, WithRandRuntime(resolve.NewRuntime()))
	if _, err := Weighted(r, []Object[int]{}); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("empty Weighted = %v", err)
	}
	if _, err := Weighted(r, []Object[int]{{Value: 1, Chance: -2}}); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("all-nonpositive Weighted = %v", err)
	}
}

func TestPrepDefaultsChance(t *testing.T) {
	o := Prep("x", 0)
	if o.Chance != 1 {
		t.Fatalf("Chance = %g, want fallback 1", o.Chance)
	}
}

func TestThreadedDraws(t *testing.T) {
	rt := resolve.NewRuntime()
	r := NewSeeded(6, WithRandRuntime(rt))

	f, err := GoFloat64(r).Result(time.Second)
	if err != nil {
		t.Fatalf("GoFloat64: %v", err)
	}
	if f < 0 || f >= 1 {
		t.Fatalf("GoFloat64 = %g", f)
	}

	n, err := GoBetween(r, 1, 2).Result(time.Second)
	if err != nil || n < 1 || n > 2 {
		t.Fatalf("GoBetween = (%d, %v)", n, err)
	}

	v, err := GoWeighted(r, []Object[string]{Prep("only", 1)}).Result(time.Second)
	if err != nil || v != "only" {
		t.Fatalf("GoWeighted = (%q, %v)", v, err)
	}

	if _, err := GoChoice(r, []int{}).Result(time.Second); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("GoChoice(empty) = %v, want ErrNoCandidates", err)
	}

	rep := rt.CleanupAll(time.Second)
	if rep.Abandoned != 0 {
		t.Fatalf("threaded draws left goroutines behind: %+v", rep)
	}
}
