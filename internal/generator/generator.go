// Package generator draws six-number picks weighted by historical frequency,
// optionally held inside an odd/even balance band.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"klotto/internal/analysis"
	"klotto/internal/lotto"
)

var (
	ErrInvalidConstraints = errors.New("invalid generation constraints")
	// ErrInsufficientCandidates comes back with the partial, sorted pick
	// when the pool ran dry before six numbers were chosen.
	ErrInsufficientCandidates = errors.New("not enough candidates for a full set")
)

const (
	MinOdd = 2
	MaxOdd = 4
)

// Rand is the randomness the sampler needs. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int    { return rand.IntN(n) }

type Constraints struct {
	FixedNumbers    []int `json:"fixed_numbers"`
	ExcludedNumbers []int `json:"excluded_numbers"`
	PreferHot       bool  `json:"prefer_hot"`
	BalanceMode     bool  `json:"balance_mode"`
}

type Strategy struct {
	Name        string `json:"name"`
	PreferHot   bool   `json:"prefer_hot"`
	BalanceMode bool   `json:"balance_mode"`
}

// Presets cycled by GenerateBalancedSet.
var Presets = []Strategy{
	{Name: "hot_balanced", PreferHot: true, BalanceMode: true},
	{Name: "cold_balanced", PreferHot: false, BalanceMode: true},
	{Name: "hot_only", PreferHot: true, BalanceMode: false},
}

type candidate struct {
	number int
	weight float64
}

type Generator struct {
	rng Rand
}

// New returns a generator over rng; nil uses the math/rand/v2 global source.
func New(rng Rand) *Generator {
	if rng == nil {
		rng = globalRand{}
	}
	return &Generator{rng: rng}
}

// Allowed reports whether candidate may join selection under balance mode.
// remainingSlots counts the open slots before candidate is placed.
func Allowed(candidate int, selection []int, remainingSlots int) bool {
	odd := countOdd(selection)
	if candidate%2 == 1 {
		return odd < MaxOdd
	}
	return odd+(remainingSlots-1) >= MinOdd
}

// Generate returns one sorted set built from freq under c. On
// ErrInsufficientCandidates the partial set is returned alongside the error.
func (g *Generator) Generate(freq analysis.FrequencyAnalysis, c Constraints) ([]int, error) {
	fixed, excluded, err := normalizeConstraints(c)
	if err != nil {
		return nil, err
	}

	result := make([]int, 0, lotto.PickCount)
	result = append(result, fixed...)

	blocked := make(map[int]struct{}, len(fixed)+len(excluded))
	for _, n := range fixed {
		blocked[n] = struct{}{}
	}
	for _, n := range excluded {
		blocked[n] = struct{}{}
	}

	if freq.TotalDraws == 0 {
		return g.uniform(result, blocked)
	}

	maxCount := freq.MaxCount()
	pool := make([]candidate, 0, lotto.NumberMax)
	for n := lotto.NumberMin; n <= lotto.NumberMax; n++ {
		if _, skip := blocked[n]; skip {
			continue
		}
		count := freq.Count(n)
		w := count + 1
		if !c.PreferHot {
			w = maxCount - count + 1
		}
		pool = append(pool, candidate{number: n, weight: float64(w)})
	}

	for len(result) < lotto.PickCount && len(pool) > 0 {
		current := pool
		if c.BalanceMode {
			remaining := lotto.PickCount - len(result)
			current = make([]candidate, 0, len(pool))
			for _, cand := range pool {
				if Allowed(cand.number, result, remaining) {
					current = append(current, cand)
				}
			}
		}
		if len(current) == 0 {
			break
		}

		picked := g.pick(current)
		result = append(result, picked)
		pool = removeNumber(pool, picked)
	}

	sort.Ints(result)
	if len(result) < lotto.PickCount {
		return result, ErrInsufficientCandidates
	}
	return result, nil
}

// GenerateBalancedSet produces count sets cycling through Presets. The fixed
// and excluded numbers of c apply to every set; its flags are ignored.
// A preset that runs dry contributes its partial set and the batch goes on;
// the returned error then wraps ErrInsufficientCandidates and names the
// short sets.
func (g *Generator) GenerateBalancedSet(freq analysis.FrequencyAnalysis, count int, c Constraints) ([][]int, error) {
	if _, _, err := normalizeConstraints(c); err != nil {
		return nil, err
	}
	sets := make([][]int, 0, max(count, 0))
	var partial []string
	for i := 0; i < count; i++ {
		preset := Presets[i%len(Presets)]
		set, err := g.Generate(freq, Constraints{
			FixedNumbers:    c.FixedNumbers,
			ExcludedNumbers: c.ExcludedNumbers,
			PreferHot:       preset.PreferHot,
			BalanceMode:     preset.BalanceMode,
		})
		switch {
		case errors.Is(err, ErrInsufficientCandidates):
			partial = append(partial, fmt.Sprintf("%d (%s)", i+1, preset.Name))
		case err != nil:
			return sets, fmt.Errorf("set %d (%s): %w", i+1, preset.Name, err)
		}
		sets = append(sets, set)
	}
	if len(partial) > 0 {
		return sets, fmt.Errorf("%w: sets %s", ErrInsufficientCandidates, strings.Join(partial, ", "))
	}
	return sets, nil
}

// PartialIndexes lists the positions of sets shorter than a full pick.
func PartialIndexes(sets [][]int) []int {
	out := []int{}
	for i, set := range sets {
		if len(set) < lotto.PickCount {
			out = append(out, i)
		}
	}
	return out
}

// pick is a linear cumulative-weight roulette. A non-positive total falls
// back to a uniform pick.
func (g *Generator) pick(items []candidate) int {
	total := 0.0
	for _, it := range items {
		total += it.weight
	}
	if total <= 0 {
		return items[g.rng.IntN(len(items))].number
	}
	r := g.rng.Float64() * total
	cumulative := 0.0
	for _, it := range items {
		cumulative += it.weight
		if cumulative >= r {
			return it.number
		}
	}
	return items[len(items)-1].number
}

func (g *Generator) uniform(result []int, blocked map[int]struct{}) ([]int, error) {
	pool := make([]int, 0, lotto.NumberMax)
	for n := lotto.NumberMin; n <= lotto.NumberMax; n++ {
		if _, skip := blocked[n]; !skip {
			pool = append(pool, n)
		}
	}
	for len(result) < lotto.PickCount && len(pool) > 0 {
		i := g.rng.IntN(len(pool))
		result = append(result, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	sort.Ints(result)
	if len(result) < lotto.PickCount {
		return result, ErrInsufficientCandidates
	}
	return result, nil
}

func normalizeConstraints(c Constraints) (fixed, excluded []int, err error) {
	fixed, err = dedupe(c.FixedNumbers)
	if err != nil {
		return nil, nil, err
	}
	excluded, err = dedupe(c.ExcludedNumbers)
	if err != nil {
		return nil, nil, err
	}
	if len(fixed) > lotto.MaxFixed {
		return nil, nil, fmt.Errorf("%w: at most %d fixed numbers", ErrInvalidConstraints, lotto.MaxFixed)
	}
	ex := make(map[int]struct{}, len(excluded))
	for _, n := range excluded {
		ex[n] = struct{}{}
	}
	for _, n := range fixed {
		if _, ok := ex[n]; ok {
			return nil, nil, fmt.Errorf("%w: %d is both fixed and excluded", ErrInvalidConstraints, n)
		}
	}
	return fixed, excluded, nil
}

func dedupe(in []int) ([]int, error) {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, n := range in {
		if !lotto.InRange(n) {
			return nil, fmt.Errorf("%w: %d out of range", ErrInvalidConstraints, n)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func removeNumber(pool []candidate, n int) []candidate {
	out := make([]candidate, 0, len(pool))
	for _, c := range pool {
		if c.number != n {
			out = append(out, c)
		}
	}
	return out
}

func countOdd(nums []int) int {
	odd := 0
	for _, n := range nums {
		if n%2 == 1 {
			odd++
		}
	}
	return odd
}
