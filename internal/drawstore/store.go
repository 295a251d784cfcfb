// Package drawstore keeps the validated draw history. The primary repository
// is authoritative when configured and alone decides the sync watermark; the
// JSON cache covers the case where it is absent, failing or still being
// backfilled.
package drawstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"klotto/internal/lotto"
	"klotto/internal/models"
	"klotto/internal/repository"
)

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type Options struct {
	Logger *zap.Logger
}

type Store struct {
	primary repository.DrawRepository
	cache   *JSONCache
	logger  *zap.Logger

	mu      sync.RWMutex
	records []lotto.DrawRecord
}

// New builds a store. primary and cache may both be nil; with neither the
// store is memory-only.
func New(primary repository.DrawRepository, cache *JSONCache, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		primary: primary,
		cache:   cache,
		logger:  logger,
	}
}

func (s *Store) HasPrimary() bool {
	return s != nil && s.primary != nil
}

// Load rebuilds the in-memory view and returns a copy of it, newest first.
func (s *Store) Load(ctx context.Context) []lotto.DrawRecord {
	if s == nil {
		return nil
	}
	cached := s.readCache()
	if s.primary != nil {
		records, err := s.readPrimary(ctx)
		if err != nil {
			s.logger.Warn("primary load failed, using cache", zap.Error(err))
		} else if len(records) > 0 {
			// Cached draws the primary has not been backfilled with yet
			// stay visible.
			merged := mergeRecords(records, cached)
			s.setView(merged)
			return cloneRecords(merged)
		}
	}
	s.setView(cached)
	return cloneRecords(cached)
}

func (s *Store) readCache() []lotto.DrawRecord {
	records, skipped, err := s.cache.Read()
	if err != nil {
		s.logger.Warn("cache load failed", zap.String("path", s.cache.Path()), zap.Error(err))
		return nil
	}
	if skipped > 0 {
		s.logger.Warn("cache entries skipped", zap.Int("skipped", skipped))
	}
	return records
}

// Reload re-reads the primary and merges it into the current view. The view
// is kept as is when the primary is absent, failing or empty.
func (s *Store) Reload(ctx context.Context) []lotto.DrawRecord {
	if s == nil {
		return nil
	}
	if s.primary == nil {
		return s.Records()
	}
	records, err := s.readPrimary(ctx)
	if err != nil {
		s.logger.Warn("primary reload failed", zap.Error(err))
		return s.Records()
	}
	if len(records) == 0 {
		return s.Records()
	}
	return cloneRecords(s.mergeView(records))
}

func (s *Store) Records() []lotto.DrawRecord {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

func (s *Store) Get(drawNo int) (lotto.DrawRecord, bool) {
	if s == nil {
		return lotto.DrawRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.DrawNo == drawNo {
			return r.Clone(), true
		}
	}
	return lotto.DrawRecord{}, false
}

// LastDrawNo is the sync watermark. With a primary it is MAX(draw_no) of the
// primary alone, so an empty primary reports 0 even when the cache holds
// draws. The view only answers when there is no primary or it is failing.
func (s *Store) LastDrawNo(ctx context.Context) int {
	if s == nil {
		return 0
	}
	if s.primary != nil {
		maxNo, err := s.primary.MaxDrawNo(ctx)
		if err == nil {
			return maxNo
		}
		s.logger.Warn("primary max draw_no failed", zap.Error(err))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return 0
	}
	return s.records[0].DrawNo
}

// Add validates and stores one draw. Re-adding an existing draw_no is a
// no-op. A *lotto.ValidationError or *PersistenceError leaves the view
// untouched.
func (s *Store) Add(ctx context.Context, in lotto.DrawInput) error {
	if s == nil {
		return nil
	}
	rec, err := lotto.Normalize(in)
	if err != nil {
		s.logger.Warn("draw rejected", zap.Int("draw_no", in.DrawNo), zap.Error(err))
		return err
	}
	if s.primary != nil {
		return s.addPrimary(ctx, rec)
	}
	return s.addCacheOnly(rec)
}

func (s *Store) addPrimary(ctx context.Context, rec lotto.DrawRecord) error {
	inserted, err := s.primary.InsertDrawIgnore(ctx, toModel(rec))
	if err != nil {
		perr := &PersistenceError{Op: "insert draw", Err: err}
		s.logger.Error("draw insert failed", zap.Int("draw_no", rec.DrawNo), zap.Error(err))
		return perr
	}
	if !inserted {
		return nil
	}

	records, err := s.readPrimary(ctx)
	if err != nil {
		s.logger.Error("reload after insert failed", zap.Int("draw_no", rec.DrawNo), zap.Error(err))
		return &PersistenceError{Op: "reload draws", Err: err}
	}
	merged := s.mergeView(records)

	if err := s.cache.Write(merged); err != nil {
		s.logger.Warn("cache mirror failed", zap.String("path", s.cache.Path()), zap.Error(err))
	}
	return nil
}

func (s *Store) addCacheOnly(rec lotto.DrawRecord) error {
	s.mu.RLock()
	current := s.records
	for _, r := range current {
		if r.DrawNo == rec.DrawNo {
			s.mu.RUnlock()
			return nil
		}
	}
	next := make([]lotto.DrawRecord, 0, len(current)+1)
	next = append(next, current...)
	s.mu.RUnlock()

	next = append(next, rec)
	lotto.SortDesc(next)
	if size := s.cache.Size(); len(next) > size {
		next = next[:size]
	}

	if err := s.cache.Write(next); err != nil {
		s.logger.Error("cache write failed", zap.Int("draw_no", rec.DrawNo), zap.String("path", s.cache.Path()), zap.Error(err))
		return &PersistenceError{Op: "write cache", Err: err}
	}
	s.setView(next)
	return nil
}

func (s *Store) readPrimary(ctx context.Context) ([]lotto.DrawRecord, error) {
	rows, err := s.primary.ListDraws(ctx, repository.ListDrawsParams{})
	if err != nil {
		return nil, err
	}
	records := make([]lotto.DrawRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := lotto.Normalize(fromModel(row))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		s.logger.Warn("primary rows skipped", zap.Int("skipped", skipped))
	}
	lotto.SortDesc(records)
	return records, nil
}

func (s *Store) setView(records []lotto.DrawRecord) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// mergeView folds primary rows into the current view under the write lock
// and returns the new view. Draws are insert-only, so the union never
// resurrects anything.
func (s *Store) mergeView(primary []lotto.DrawRecord) []lotto.DrawRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = mergeRecords(primary, s.records)
	return s.records
}

// mergeRecords returns the union of both lists ordered desc. On a draw_no
// present in both, the record from primary wins.
func mergeRecords(primary, extra []lotto.DrawRecord) []lotto.DrawRecord {
	out := make([]lotto.DrawRecord, 0, len(primary)+len(extra))
	seen := make(map[int]struct{}, len(primary))
	for _, r := range primary {
		seen[r.DrawNo] = struct{}{}
		out = append(out, r)
	}
	for _, r := range extra {
		if _, dup := seen[r.DrawNo]; dup {
			continue
		}
		seen[r.DrawNo] = struct{}{}
		out = append(out, r)
	}
	lotto.SortDesc(out)
	return out
}

func cloneRecords(in []lotto.DrawRecord) []lotto.DrawRecord {
	if len(in) == 0 {
		return []lotto.DrawRecord{}
	}
	out := make([]lotto.DrawRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func toModel(rec lotto.DrawRecord) *models.Draw {
	return &models.Draw{
		DrawNo:       rec.DrawNo,
		Date:         rec.Date,
		Num1:         rec.Numbers[0],
		Num2:         rec.Numbers[1],
		Num3:         rec.Numbers[2],
		Num4:         rec.Numbers[3],
		Num5:         rec.Numbers[4],
		Num6:         rec.Numbers[5],
		Bonus:        rec.Bonus,
		PrizeAmount:  rec.PrizeAmount,
		WinnersCount: rec.WinnersCount,
		TotalSales:   rec.TotalSales,
	}
}

func fromModel(row models.Draw) lotto.DrawInput {
	return lotto.DrawInput{
		DrawNo:       row.DrawNo,
		Date:         row.Date,
		Numbers:      row.Numbers(),
		Bonus:        row.Bonus,
		PrizeAmount:  row.PrizeAmount,
		WinnersCount: row.WinnersCount,
		TotalSales:   row.TotalSales,
	}
}
