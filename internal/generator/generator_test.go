package generator

import (
	"errors"
	"math/rand/v2"
	"testing"

	"klotto/internal/analysis"
	"klotto/internal/lotto"
)

type fixedRand struct {
	floats []float64
	ints   []int
}

func (r *fixedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *fixedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func history() analysis.FrequencyAnalysis {
	records := []lotto.DrawRecord{
		{DrawNo: 3, Numbers: []int{1, 7, 13, 22, 34, 45}, Bonus: 2},
		{DrawNo: 2, Numbers: []int{7, 8, 13, 27, 33, 40}, Bonus: 5},
		{DrawNo: 1, Numbers: []int{7, 10, 13, 19, 34, 41}, Bonus: 9},
	}
	return analysis.Frequency(records)
}

func seeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func assertValid(t *testing.T, set []int, c Constraints) {
	t.Helper()
	if len(set) != lotto.PickCount {
		t.Fatalf("set=%v len=%d", set, len(set))
	}
	seen := map[int]bool{}
	for i, n := range set {
		if !lotto.InRange(n) || seen[n] {
			t.Fatalf("set=%v has invalid or duplicate %d", set, n)
		}
		if i > 0 && set[i-1] > n {
			t.Fatalf("set=%v not sorted", set)
		}
		seen[n] = true
	}
	for _, f := range c.FixedNumbers {
		if !seen[f] {
			t.Fatalf("set=%v missing fixed %d", set, f)
		}
	}
	for _, e := range c.ExcludedNumbers {
		if seen[e] {
			t.Fatalf("set=%v contains excluded %d", set, e)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		cand      int
		selection []int
		remaining int
		want      bool
	}{
		{1, []int{3, 5, 7, 9}, 2, false},
		{1, []int{3, 5, 7}, 3, true},
		{2, []int{4, 6, 8, 10}, 2, false},
		{2, []int{3, 6, 8, 10}, 2, true},
		{2, nil, 6, true},
		{2, []int{4, 6, 8}, 3, true},
	}
	for _, tt := range tests {
		if got := Allowed(tt.cand, tt.selection, tt.remaining); got != tt.want {
			t.Fatalf("Allowed(%d, %v, %d)=%v want=%v", tt.cand, tt.selection, tt.remaining, got, tt.want)
		}
	}
}

func TestGenerate_Totality(t *testing.T) {
	freq := history()
	c := Constraints{FixedNumbers: []int{7, 13}, ExcludedNumbers: []int{1, 2, 3}, PreferHot: true, BalanceMode: true}
	g := seeded(42)
	for i := 0; i < 200; i++ {
		set, err := g.Generate(freq, c)
		if err != nil {
			t.Fatalf("iteration %d err=%v", i, err)
		}
		assertValid(t, set, c)
	}
}

func TestGenerate_BalanceBand(t *testing.T) {
	freq := history()
	for _, preferHot := range []bool{true, false} {
		g := seeded(7)
		for i := 0; i < 300; i++ {
			set, err := g.Generate(freq, Constraints{PreferHot: preferHot, BalanceMode: true})
			if err != nil {
				t.Fatalf("err=%v", err)
			}
			if odd := countOdd(set); odd < MinOdd || odd > MaxOdd {
				t.Fatalf("set=%v odd=%d outside band", set, odd)
			}
		}
	}
}

func TestGenerate_UniformWithoutHistory(t *testing.T) {
	g := seeded(1)
	c := Constraints{FixedNumbers: []int{45}, ExcludedNumbers: []int{44, 43}}
	set, err := g.Generate(analysis.FrequencyAnalysis{}, c)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	assertValid(t, set, c)
}

func TestGenerate_InvalidConstraints(t *testing.T) {
	g := seeded(1)
	tests := []Constraints{
		{FixedNumbers: []int{1, 2, 3, 4, 5, 6}},
		{FixedNumbers: []int{46}},
		{ExcludedNumbers: []int{0}},
		{FixedNumbers: []int{5}, ExcludedNumbers: []int{5}},
	}
	for _, c := range tests {
		if _, err := g.Generate(history(), c); !errors.Is(err, ErrInvalidConstraints) {
			t.Fatalf("constraints=%+v err=%v want ErrInvalidConstraints", c, err)
		}
	}
}

func TestGenerate_InsufficientCandidates(t *testing.T) {
	g := seeded(3)
	excluded := make([]int, 0, 40)
	for n := 1; n <= 40; n++ {
		excluded = append(excluded, n)
	}
	set, err := g.Generate(history(), Constraints{ExcludedNumbers: excluded, PreferHot: true})
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Fatalf("err=%v want ErrInsufficientCandidates", err)
	}
	if len(set) != 5 {
		t.Fatalf("partial=%v want 5 numbers", set)
	}
}

func TestGenerate_BalanceStarvesWithoutOdds(t *testing.T) {
	g := seeded(5)
	var odds []int
	for n := 1; n <= 45; n += 2 {
		odds = append(odds, n)
	}
	set, err := g.Generate(history(), Constraints{ExcludedNumbers: odds, PreferHot: true, BalanceMode: true})
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Fatalf("err=%v want ErrInsufficientCandidates", err)
	}
	if len(set) != 4 {
		t.Fatalf("partial=%v want 4 evens", set)
	}
}

func TestGenerate_FixedOutsideBandNotCorrected(t *testing.T) {
	g := seeded(9)
	fixed := []int{1, 3, 5, 7, 9}
	set, err := g.Generate(history(), Constraints{FixedNumbers: fixed, PreferHot: true, BalanceMode: true})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	assertValid(t, set, Constraints{FixedNumbers: fixed})
	if countOdd(set) != 5 {
		t.Fatalf("set=%v odd=%d want=5", set, countOdd(set))
	}
}

func TestPick_Roulette(t *testing.T) {
	items := []candidate{{number: 1, weight: 1}, {number: 2, weight: 3}, {number: 3, weight: 6}}
	tests := []struct {
		r    float64
		want int
	}{
		{0.0, 1},
		{0.1, 1},
		{0.15, 2},
		{0.4, 2},
		{0.41, 3},
		{0.99, 3},
	}
	for _, tt := range tests {
		g := New(&fixedRand{floats: []float64{tt.r}})
		if got := g.pick(items); got != tt.want {
			t.Fatalf("r=%v pick=%d want=%d", tt.r, got, tt.want)
		}
	}
}

func TestPick_ZeroWeightIsUniform(t *testing.T) {
	items := []candidate{{number: 4}, {number: 5}, {number: 6}}
	g := New(&fixedRand{ints: []int{2}})
	if got := g.pick(items); got != 6 {
		t.Fatalf("pick=%d want=6", got)
	}
}

func TestGenerateBalancedSet(t *testing.T) {
	g := seeded(11)
	c := Constraints{FixedNumbers: []int{7}}
	sets, err := g.GenerateBalancedSet(history(), 7, c)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(sets) != 7 {
		t.Fatalf("sets=%d want=7", len(sets))
	}
	for i, set := range sets {
		assertValid(t, set, c)
		if Presets[i%len(Presets)].BalanceMode {
			if odd := countOdd(set); odd < MinOdd || odd > MaxOdd {
				t.Fatalf("set %d=%v odd=%d outside band", i, set, odd)
			}
		}
	}

	if _, err := g.GenerateBalancedSet(history(), 3, Constraints{FixedNumbers: []int{99}}); !errors.Is(err, ErrInvalidConstraints) {
		t.Fatalf("err=%v want ErrInvalidConstraints", err)
	}
}

func TestGenerateBalancedSet_KeepsPartialSets(t *testing.T) {
	g := seeded(13)
	var odds []int
	for n := 1; n <= 45; n += 2 {
		odds = append(odds, n)
	}
	sets, err := g.GenerateBalancedSet(history(), 5, Constraints{ExcludedNumbers: odds})
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Fatalf("err=%v want ErrInsufficientCandidates", err)
	}
	if len(sets) != 5 {
		t.Fatalf("sets=%d want=5", len(sets))
	}
	for i, set := range sets {
		want := 4
		if !Presets[i%len(Presets)].BalanceMode {
			want = lotto.PickCount
		}
		if len(set) != want {
			t.Fatalf("set %d=%v len=%d want=%d", i, set, len(set), want)
		}
		if countOdd(set) != 0 {
			t.Fatalf("set %d=%v holds an excluded odd", i, set)
		}
	}
	got := PartialIndexes(sets)
	want := []int{0, 1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("partial=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("partial=%v want=%v", got, want)
		}
	}
}
