package service

import (
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"klotto/internal/analysis"
	"klotto/internal/drawstore"
	"klotto/internal/jsonfile"
	"klotto/internal/lotto"
)

const DefaultHistoryEntries = 500

type HistoryEntry struct {
	Numbers   []int     `json:"numbers"`
	CreatedAt time.Time `json:"created_at"`
}

type NumberCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

type HistoryStats struct {
	TotalSets    int           `json:"total_sets"`
	NumberCounts map[int]int   `json:"number_counts,omitempty"`
	MostCommon   []NumberCount `json:"most_common,omitempty"`
	LeastCommon  []NumberCount `json:"least_common,omitempty"`
}

// HistoryService keeps the generated sets, newest first, capped and persisted
// as one JSON file. Each combination is stored once.
type HistoryService struct {
	path   string
	limit  int
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries []HistoryEntry
}

func NewHistoryService(path string, limit int, logger *zap.Logger) *HistoryService {
	if limit <= 0 {
		limit = DefaultHistoryEntries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{path: path, limit: limit, logger: logger, now: time.Now}
}

// Load reads the history file. An unreadable file starts an empty history.
func (h *HistoryService) Load() int {
	var entries []HistoryEntry
	if h.path != "" {
		if _, err := jsonfile.Read(h.path, &entries); err != nil {
			h.logger.Error("history load failed", zap.String("path", h.path), zap.Error(err))
			entries = nil
		}
	}
	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
	return len(entries)
}

// Add records numbers unless the same combination is already present. The
// bool reports whether it was added.
func (h *HistoryService) Add(numbers []int) (bool, error) {
	set, err := analysis.AnalyzeSet(numbers)
	if err != nil {
		return false, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.indexOf(set.Numbers) >= 0 {
		return false, nil
	}

	next := make([]HistoryEntry, 0, min(len(h.entries)+1, h.limit))
	next = append(next, HistoryEntry{Numbers: set.Numbers, CreatedAt: h.now().UTC()})
	next = append(next, h.entries...)
	if len(next) > h.limit {
		next = next[:h.limit]
	}
	if err := h.save(next); err != nil {
		return false, err
	}
	h.entries = next
	return true, nil
}

func (h *HistoryService) IsDuplicate(numbers []int) bool {
	sorted := slices.Clone(numbers)
	sort.Ints(sorted)
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.indexOf(sorted) >= 0
}

// Recent returns up to count entries, newest first. count <= 0 returns all.
func (h *HistoryService) Recent(count int) []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.entries)
	if count > 0 && count < n {
		n = count
	}
	out := make([]HistoryEntry, n)
	for i := range out {
		out[i] = HistoryEntry{Numbers: slices.Clone(h.entries[i].Numbers), CreatedAt: h.entries[i].CreatedAt}
	}
	return out
}

func (h *HistoryService) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.save([]HistoryEntry{}); err != nil {
		return err
	}
	h.entries = nil
	return nil
}

// Statistics counts how often each number appears across the history. Ties
// rank the lower number first.
func (h *HistoryService) Statistics() HistoryStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return HistoryStats{}
	}
	counts := make(map[int]int, lotto.NumberMax)
	for n := lotto.NumberMin; n <= lotto.NumberMax; n++ {
		counts[n] = 0
	}
	for _, e := range h.entries {
		for _, n := range e.Numbers {
			counts[n]++
		}
	}
	ranked := make([]NumberCount, 0, lotto.NumberMax)
	for n := lotto.NumberMin; n <= lotto.NumberMax; n++ {
		ranked = append(ranked, NumberCount{Number: n, Count: counts[n]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return HistoryStats{
		TotalSets:    len(h.entries),
		NumberCounts: counts,
		MostCommon:   slices.Clone(ranked[:analysis.TopN]),
		LeastCommon:  slices.Clone(ranked[len(ranked)-analysis.TopN:]),
	}
}

func (h *HistoryService) indexOf(sorted []int) int {
	for i, e := range h.entries {
		if slices.Equal(e.Numbers, sorted) {
			return i
		}
	}
	return -1
}

func (h *HistoryService) save(entries []HistoryEntry) error {
	if h.path == "" {
		return nil
	}
	if err := jsonfile.Write(h.path, entries); err != nil {
		h.logger.Error("history save failed", zap.String("path", h.path), zap.Error(err))
		return &drawstore.PersistenceError{Op: "write history", Err: err}
	}
	return nil
}
