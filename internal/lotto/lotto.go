// Package lotto holds the Lotto 6/45 record type and the validation every
// record passes before it reaches storage.
package lotto

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	NumberMin = 1
	NumberMax = 45
	PickCount = 6
	MaxFixed  = 5

	OptimalSumMin = 100
	OptimalSumMax = 175

	// LowHighSplit is the largest number counted as "low".
	LowHighSplit = 22

	dateLayout = "2006-01-02"
)

// DrawInput is an unvalidated draw as it arrives from the remote client, the
// HTTP API or the JSON cache.
type DrawInput struct {
	DrawNo       int    `json:"draw_no"`
	Date         string `json:"date"`
	Numbers      []int  `json:"numbers"`
	Bonus        int    `json:"bonus"`
	PrizeAmount  int64  `json:"prize_amount,omitempty"`
	WinnersCount int64  `json:"winners_count,omitempty"`
	TotalSales   int64  `json:"total_sales,omitempty"`
}

// DrawRecord is a validated draw. Numbers are six distinct values in
// ascending order and Bonus is not one of them.
type DrawRecord struct {
	DrawNo       int    `json:"draw_no"`
	Date         string `json:"date"`
	Numbers      []int  `json:"numbers"`
	Bonus        int    `json:"bonus"`
	PrizeAmount  int64  `json:"prize_amount,omitempty"`
	WinnersCount int64  `json:"winners_count,omitempty"`
	TotalSales   int64  `json:"total_sales,omitempty"`
}

type ValidationError struct {
	DrawNo int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid draw %d: %s", e.DrawNo, e.Reason)
}

func invalid(drawNo int, format string, args ...any) *ValidationError {
	return &ValidationError{DrawNo: drawNo, Reason: fmt.Sprintf(format, args...)}
}

func InRange(n int) bool {
	return n >= NumberMin && n <= NumberMax
}

// Normalize validates in and returns the canonical record. The first
// violation found is returned as a *ValidationError.
func Normalize(in DrawInput) (DrawRecord, error) {
	if in.DrawNo <= 0 {
		return DrawRecord{}, invalid(in.DrawNo, "draw_no must be positive")
	}
	if len(in.Numbers) != PickCount {
		return DrawRecord{}, invalid(in.DrawNo, "expected %d numbers, got %d", PickCount, len(in.Numbers))
	}

	nums := make([]int, PickCount)
	copy(nums, in.Numbers)
	sort.Ints(nums)

	for i, n := range nums {
		if !InRange(n) {
			return DrawRecord{}, invalid(in.DrawNo, "number %d out of range", n)
		}
		if i > 0 && nums[i-1] == n {
			return DrawRecord{}, invalid(in.DrawNo, "duplicate number %d", n)
		}
	}
	if !InRange(in.Bonus) {
		return DrawRecord{}, invalid(in.DrawNo, "bonus %d out of range", in.Bonus)
	}
	for _, n := range nums {
		if n == in.Bonus {
			return DrawRecord{}, invalid(in.DrawNo, "bonus %d repeats a main number", in.Bonus)
		}
	}

	date, err := NormalizeDate(in.Date)
	if err != nil {
		return DrawRecord{}, invalid(in.DrawNo, "%v", err)
	}

	return DrawRecord{
		DrawNo:       in.DrawNo,
		Date:         date,
		Numbers:      nums,
		Bonus:        in.Bonus,
		PrizeAmount:  in.PrizeAmount,
		WinnersCount: in.WinnersCount,
		TotalSales:   in.TotalSales,
	}, nil
}

// NormalizeDate accepts YYYY-MM-DD, YYYYMMDD or an RFC3339 timestamp and
// returns YYYY-MM-DD. An empty value stays empty.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range []string{dateLayout, "20060102", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", raw)
}

func (r DrawRecord) Clone() DrawRecord {
	out := r
	out.Numbers = make([]int, len(r.Numbers))
	copy(out.Numbers, r.Numbers)
	return out
}

// SortDesc orders records by draw_no, newest first.
func SortDesc(records []DrawRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DrawNo > records[j].DrawNo
	})
}
