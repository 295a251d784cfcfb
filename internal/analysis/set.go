package analysis

import (
	"errors"
	"sort"

	"klotto/internal/lotto"
)

var ErrInvalidSet = errors.New("a set needs exactly 6 distinct numbers in 1..45")

type SetAnalysis struct {
	Numbers   []int         `json:"numbers"`
	Total     int           `json:"total"`
	Odd       int           `json:"odd"`
	Even      int           `json:"even"`
	Low       int           `json:"low"`
	High      int           `json:"high"`
	Ranges    []RangeBucket `json:"ranges"`
	Score     int           `json:"score"`
	IsOptimal bool          `json:"is_optimal"`
}

// AnalyzeSet scores a single six-number pick against the usual balance
// heuristics: sum band, odd/even split and low/high split.
func AnalyzeSet(numbers []int) (SetAnalysis, error) {
	if len(numbers) != lotto.PickCount {
		return SetAnalysis{}, ErrInvalidSet
	}
	nums := make([]int, len(numbers))
	copy(nums, numbers)
	sort.Ints(nums)

	out := SetAnalysis{Numbers: nums, Ranges: newBuckets()}
	for i, n := range nums {
		if !lotto.InRange(n) || (i > 0 && nums[i-1] == n) {
			return SetAnalysis{}, ErrInvalidSet
		}
		out.Total += n
		if n%2 == 1 {
			out.Odd++
		}
		if n <= lotto.LowHighSplit {
			out.Low++
		}
		out.Ranges[bucketIndex(n)].Count++
	}
	out.Even = lotto.PickCount - out.Odd
	out.High = lotto.PickCount - out.Low

	inBand := out.Total >= lotto.OptimalSumMin && out.Total <= lotto.OptimalSumMax
	score := 100
	if !inBand {
		score -= 20
	}
	if out.Odd == 0 || out.Even == 0 {
		score -= 15
	}
	if out.Low == 0 || out.High == 0 {
		score -= 15
	}
	out.Score = max(0, score)
	out.IsOptimal = inBand && out.Odd >= 2 && out.Odd <= 4
	return out, nil
}

type MatchResult struct {
	DrawNo       int   `json:"draw_no,omitempty"`
	Matched      []int `json:"matched"`
	MatchCount   int   `json:"match_count"`
	BonusMatched bool  `json:"bonus_matched"`
	// Rank is 1..5, or 0 when the set did not win.
	Rank int `json:"rank"`
}

func CompareWithWinning(numbers, winning []int, bonus int) MatchResult {
	win := make(map[int]struct{}, len(winning))
	for _, n := range winning {
		win[n] = struct{}{}
	}
	seen := make(map[int]struct{}, len(numbers))
	matched := make([]int, 0, lotto.PickCount)
	bonusMatched := false
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := win[n]; ok {
			matched = append(matched, n)
		}
		if n == bonus {
			bonusMatched = true
		}
	}
	sort.Ints(matched)

	res := MatchResult{Matched: matched, MatchCount: len(matched), BonusMatched: bonusMatched}
	switch {
	case res.MatchCount == 6:
		res.Rank = 1
	case res.MatchCount == 5 && bonusMatched:
		res.Rank = 2
	case res.MatchCount == 5:
		res.Rank = 3
	case res.MatchCount == 4:
		res.Rank = 4
	case res.MatchCount == 3:
		res.Rank = 5
	}
	return res
}
