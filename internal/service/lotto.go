package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"klotto/internal/analysis"
	"klotto/internal/drawstore"
	"klotto/internal/generator"
	"klotto/internal/lotto"
	"klotto/internal/models"
)

var ErrDrawNotFound = errors.New("draw not found")

// LottoService is the consumer-facing surface over the draw store. It owns
// the single-writer discipline: manual adds and sync writes share writeMu,
// and only one sync run is in flight at a time.
type LottoService struct {
	Store     *drawstore.Store
	Generator *generator.Generator
	Sync      *DrawSyncService
	Logger    *zap.Logger
	// History, when set, receives every complete generated set.
	History *HistoryService

	writeMu sync.Mutex
	runMu   sync.Mutex
	current *SyncRun
}

type lockedSink struct {
	mu    *sync.Mutex
	store *drawstore.Store
}

func (l lockedSink) LastDrawNo(ctx context.Context) int {
	return l.store.LastDrawNo(ctx)
}

func (l lockedSink) Add(ctx context.Context, in lotto.DrawInput) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Add(ctx, in)
}

// NewLottoService wires the facade. syncSvc may be nil; when set, its Sink is
// replaced so sync writes go through the facade's write lock.
func NewLottoService(store *drawstore.Store, gen *generator.Generator, syncSvc *DrawSyncService, logger *zap.Logger) *LottoService {
	if gen == nil {
		gen = generator.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LottoService{
		Store:     store,
		Generator: gen,
		Sync:      syncSvc,
		Logger:    logger,
	}
	if syncSvc != nil {
		syncSvc.Sink = lockedSink{mu: &s.writeMu, store: store}
	}
	return s
}

func (s *LottoService) LoadAll(ctx context.Context) []lotto.DrawRecord {
	return s.Store.Load(ctx)
}

func (s *LottoService) Records() []lotto.DrawRecord {
	return s.Store.Records()
}

func (s *LottoService) GetDraw(drawNo int) (lotto.DrawRecord, error) {
	rec, ok := s.Store.Get(drawNo)
	if !ok {
		return lotto.DrawRecord{}, ErrDrawNotFound
	}
	return rec, nil
}

func (s *LottoService) AddRecord(ctx context.Context, in lotto.DrawInput) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.Store.Add(ctx, in)
}

func (s *LottoService) GetFrequencyAnalysis() analysis.FrequencyAnalysis {
	return analysis.Frequency(s.Store.Records())
}

func (s *LottoService) GetRangeDistribution() []analysis.RangeBucket {
	return analysis.Ranges(s.Store.Records())
}

func (s *LottoService) GetPairAnalysis() analysis.PairAnalysis {
	return analysis.Pairs(s.Store.Records())
}

func (s *LottoService) GetRecentTrend(count int) []lotto.DrawRecord {
	return analysis.RecentTrend(s.Store.Records(), count)
}

func (s *LottoService) GenerateSmartNumbers(c generator.Constraints) ([]int, error) {
	set, err := s.Generator.Generate(s.GetFrequencyAnalysis(), c)
	if err == nil {
		s.record(set)
	}
	return set, err
}

func (s *LottoService) GenerateBalancedSet(count int, c generator.Constraints) ([][]int, error) {
	sets, err := s.Generator.GenerateBalancedSet(s.GetFrequencyAnalysis(), count, c)
	for _, set := range sets {
		if len(set) == lotto.PickCount {
			s.record(set)
		}
	}
	return sets, err
}

// record keeps a generated set in the history. Failures only cost the
// history entry, never the response.
func (s *LottoService) record(set []int) {
	if s.History == nil {
		return
	}
	if _, err := s.History.Add(set); err != nil {
		s.Logger.Warn("record generated set failed", zap.Ints("numbers", set), zap.Error(err))
	}
}

type CheckResult struct {
	Analysis analysis.SetAnalysis  `json:"analysis"`
	Match    *analysis.MatchResult `json:"match,omitempty"`
}

// CheckNumbers scores a set and, when drawNo is set or any draw is stored,
// compares it with that draw (latest when drawNo is 0).
func (s *LottoService) CheckNumbers(numbers []int, drawNo int) (CheckResult, error) {
	set, err := analysis.AnalyzeSet(numbers)
	if err != nil {
		return CheckResult{}, err
	}
	out := CheckResult{Analysis: set}

	var target lotto.DrawRecord
	switch {
	case drawNo > 0:
		rec, ok := s.Store.Get(drawNo)
		if !ok {
			return CheckResult{}, ErrDrawNotFound
		}
		target = rec
	default:
		records := s.Store.Records()
		if len(records) == 0 {
			return out, nil
		}
		target = records[0]
	}
	match := analysis.CompareWithWinning(set.Numbers, target.Numbers, target.Bonus)
	match.DrawNo = target.DrawNo
	out.Match = &match
	return out, nil
}

// StartBackgroundSync cancels and waits for any previous run, then starts a
// new one. A run that stored draws triggers a store reload before onComplete.
func (s *LottoService) StartBackgroundSync(ctx context.Context, onComplete func(int)) *SyncRun {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.current != nil {
		s.current.Cancel()
		s.current.Wait()
		s.current = nil
	}

	if s.Sync == nil {
		run := newSyncRun()
		if onComplete != nil {
			onComplete(0)
		}
		close(run.done)
		return run
	}

	run := s.Sync.Start(ctx, func(synced int) {
		if synced > 0 {
			records := s.Store.Reload(context.WithoutCancel(ctx))
			s.Logger.Info("background sync stored draws",
				zap.Int("synced", synced),
				zap.Int("records", len(records)),
			)
		}
		if onComplete != nil {
			onComplete(synced)
		}
	})
	s.current = run
	return run
}

func (s *LottoService) CurrentSync() *SyncRun {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.current
}

// StopSync cancels the in-flight run, if any, and waits for it.
func (s *LottoService) StopSync() {
	s.runMu.Lock()
	run := s.current
	s.runMu.Unlock()
	if run == nil {
		return
	}
	run.Cancel()
	run.Wait()
}

func (s *LottoService) EstimateCurrentDraw(now time.Time) int {
	if s.Sync == nil {
		return 0
	}
	return s.Sync.EstimateCurrentDraw(now)
}

func (s *LottoService) LastDrawNo(ctx context.Context) int {
	return s.Store.LastDrawNo(ctx)
}

func (s *LottoService) SyncState(ctx context.Context) (*models.SyncState, error) {
	if s.Sync == nil || s.Sync.State == nil {
		return nil, nil
	}
	return s.Sync.State.GetSyncState(ctx, SyncScopeDraws)
}
