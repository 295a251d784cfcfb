// Package analysis derives statistics from a snapshot of draw records. Every
// function is pure; callers pass the snapshot they hold.
package analysis

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"klotto/internal/lotto"
)

const (
	TopN          = 10
	DefaultRecent = 10
)

type RankedNumber struct {
	Number int             `json:"number"`
	Count  int             `json:"count"`
	Share  decimal.Decimal `json:"share"`
}

type FrequencyAnalysis struct {
	TotalDraws   int            `json:"total_draws"`
	NumberCounts map[int]int    `json:"number_counts"`
	BonusCounts  map[int]int    `json:"bonus_counts"`
	HotNumbers   []RankedNumber `json:"hot_numbers"`
	ColdNumbers  []RankedNumber `json:"cold_numbers"`
}

// Count returns how often n was drawn as a main number.
func (f FrequencyAnalysis) Count(n int) int {
	return f.NumberCounts[n]
}

// MaxCount is the largest main-number count, 0 for an empty analysis.
func (f FrequencyAnalysis) MaxCount() int {
	maxCount := 0
	for _, c := range f.NumberCounts {
		if c > maxCount {
			maxCount = c
		}
	}
	return maxCount
}

// Frequency counts main and bonus numbers in one pass. An empty snapshot
// yields the zero value.
func Frequency(records []lotto.DrawRecord) FrequencyAnalysis {
	if len(records) == 0 {
		return FrequencyAnalysis{}
	}

	numberCounts := make(map[int]int, lotto.NumberMax)
	bonusCounts := make(map[int]int, lotto.NumberMax)
	for n := lotto.NumberMin; n <= lotto.NumberMax; n++ {
		numberCounts[n] = 0
		bonusCounts[n] = 0
	}

	drawn := 0
	for _, r := range records {
		for _, n := range r.Numbers {
			if lotto.InRange(n) {
				numberCounts[n]++
				drawn++
			}
		}
		if lotto.InRange(r.Bonus) {
			bonusCounts[r.Bonus]++
		}
	}

	ranked := make([]RankedNumber, 0, lotto.NumberMax)
	for n := lotto.NumberMin; n <= lotto.NumberMax; n++ {
		ranked = append(ranked, RankedNumber{
			Number: n,
			Count:  numberCounts[n],
			Share:  share(numberCounts[n], drawn),
		})
	}

	hot := make([]RankedNumber, len(ranked))
	copy(hot, ranked)
	sort.SliceStable(hot, func(i, j int) bool {
		if hot[i].Count != hot[j].Count {
			return hot[i].Count > hot[j].Count
		}
		return hot[i].Number < hot[j].Number
	})

	cold := make([]RankedNumber, len(ranked))
	copy(cold, ranked)
	sort.SliceStable(cold, func(i, j int) bool {
		if cold[i].Count != cold[j].Count {
			return cold[i].Count < cold[j].Count
		}
		return cold[i].Number < cold[j].Number
	})

	return FrequencyAnalysis{
		TotalDraws:   len(records),
		NumberCounts: numberCounts,
		BonusCounts:  bonusCounts,
		HotNumbers:   hot[:TopN],
		ColdNumbers:  cold[:TopN],
	}
}

func share(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Div(decimal.NewFromInt(int64(total))).
		Round(4)
}

type RangeBucket struct {
	Label string `json:"label"`
	Low   int    `json:"low"`
	High  int    `json:"high"`
	Count int    `json:"count"`
}

var rangeBounds = [][2]int{{1, 10}, {11, 20}, {21, 30}, {31, 40}, {41, 45}}

func newBuckets() []RangeBucket {
	buckets := make([]RangeBucket, 0, len(rangeBounds))
	for _, b := range rangeBounds {
		buckets = append(buckets, RangeBucket{
			Label: fmt.Sprintf("%d-%d", b[0], b[1]),
			Low:   b[0],
			High:  b[1],
		})
	}
	return buckets
}

func bucketIndex(n int) int {
	for i, b := range rangeBounds {
		if n >= b[0] && n <= b[1] {
			return i
		}
	}
	return -1
}

// Ranges counts main numbers per decade bucket. Nil for an empty snapshot.
func Ranges(records []lotto.DrawRecord) []RangeBucket {
	if len(records) == 0 {
		return nil
	}
	buckets := newBuckets()
	for _, r := range records {
		for _, n := range r.Numbers {
			if i := bucketIndex(n); i >= 0 {
				buckets[i].Count++
			}
		}
	}
	return buckets
}

type Pair struct {
	A     int `json:"a"`
	B     int `json:"b"`
	Count int `json:"count"`
}

type PairAnalysis struct {
	TopPairs []Pair `json:"top_pairs"`
}

// Pairs counts every unordered pair inside each draw and keeps the ten most
// frequent, ties by ascending (A, B).
func Pairs(records []lotto.DrawRecord) PairAnalysis {
	if len(records) == 0 {
		return PairAnalysis{}
	}
	counts := make(map[[2]int]int)
	for _, r := range records {
		nums := r.Numbers
		for i := 0; i < len(nums); i++ {
			for j := i + 1; j < len(nums); j++ {
				a, b := nums[i], nums[j]
				if a > b {
					a, b = b, a
				}
				counts[[2]int{a, b}]++
			}
		}
	}

	pairs := make([]Pair, 0, len(counts))
	for k, c := range counts {
		pairs = append(pairs, Pair{A: k[0], B: k[1], Count: c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	if len(pairs) > TopN {
		pairs = pairs[:TopN]
	}
	return PairAnalysis{TopPairs: pairs}
}

// RecentTrend returns the first n records of a newest-first snapshot.
func RecentTrend(records []lotto.DrawRecord, n int) []lotto.DrawRecord {
	if n <= 0 {
		n = DefaultRecent
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]lotto.DrawRecord, n)
	for i := 0; i < n; i++ {
		out[i] = records[i].Clone()
	}
	return out
}
