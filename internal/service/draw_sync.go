package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"

	"klotto/internal/client/dhlottery"
	"klotto/internal/config"
	"klotto/internal/lotto"
	"klotto/internal/models"
	"klotto/internal/repository"
)

const (
	SyncScopeDraws = "draws"
	DefaultPace    = 200 * time.Millisecond
)

type DrawFetcher interface {
	FetchDraw(ctx context.Context, drawNo int) (*dhlottery.Draw, error)
}

// DrawSink is where synced draws land. *drawstore.Store satisfies it.
type DrawSink interface {
	LastDrawNo(ctx context.Context) int
	Add(ctx context.Context, in lotto.DrawInput) error
}

// DrawEstimator guesses the newest announced draw from the calendar alone.
type DrawEstimator struct {
	Epoch      time.Time
	DrawDay    time.Weekday
	CutoffHour int
	Location   *time.Location
}

func NewDrawEstimator(cfg config.SyncConfig) (DrawEstimator, error) {
	loc := cfg.Location()
	epoch := strings.TrimSpace(cfg.Epoch)
	if epoch == "" {
		epoch = "2002-12-07"
	}
	start, err := time.ParseInLocation("2006-01-02", epoch, loc)
	if err != nil {
		return DrawEstimator{}, fmt.Errorf("parse sync epoch: %w", err)
	}
	cutoff := cfg.CutoffHour
	if cutoff < 0 || cutoff > 23 {
		cutoff = 21
	}
	return DrawEstimator{
		Epoch:      start,
		DrawDay:    cfg.Weekday(),
		CutoffHour: cutoff,
		Location:   loc,
	}, nil
}

// Estimate returns floor(days since epoch / 7) + 1, one less on draw day
// before the cutoff hour.
func (e DrawEstimator) Estimate(now time.Time) int {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	epoch := time.Date(e.Epoch.Year(), e.Epoch.Month(), e.Epoch.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(epoch).Hours() / 24)
	if days < 0 {
		return 0
	}
	estimated := days/7 + 1
	if local.Weekday() == e.DrawDay && local.Hour() < e.CutoffHour {
		estimated--
	}
	return estimated
}

type SyncResult struct {
	RunID      string    `json:"run_id"`
	From       int       `json:"from"`
	To         int       `json:"to"`
	Attempted  int       `json:"attempted"`
	Synced     int       `json:"synced"`
	Failed     int       `json:"failed"`
	Cancelled  bool      `json:"cancelled"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	LastError  string    `json:"last_error,omitempty"`
}

// SyncRun is the handle of one background run.
type SyncRun struct {
	ID        string
	cancelled atomic.Bool
	done      chan struct{}
	result    SyncResult
}

func newSyncRun() *SyncRun {
	return &SyncRun{ID: uuid.NewString(), done: make(chan struct{})}
}

// Cancel asks the run to stop at its next loop boundary. An in-flight fetch
// is not interrupted.
func (r *SyncRun) Cancel() {
	if r != nil {
		r.cancelled.Store(true)
	}
}

func (r *SyncRun) Cancelled() bool {
	return r != nil && r.cancelled.Load()
}

func (r *SyncRun) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run and its completion callback have finished.
func (r *SyncRun) Wait() SyncResult {
	<-r.done
	return r.result
}

type DrawSyncService struct {
	Fetcher   DrawFetcher
	Sink      DrawSink
	State     repository.SyncStateRepository
	Hub       *EventHub
	Logger    *zap.Logger
	Estimator DrawEstimator
	Pace      time.Duration
	Now       func() time.Time
}

func (s *DrawSyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DrawSyncService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DrawSyncService) EstimateCurrentDraw(now time.Time) int {
	return s.Estimator.Estimate(now)
}

// Start runs a sync in its own goroutine. onComplete is called exactly once
// with the number of draws stored, before Wait returns.
func (s *DrawSyncService) Start(ctx context.Context, onComplete func(int)) *SyncRun {
	run := newSyncRun()
	go func() {
		synced := 0
		defer close(run.done)
		defer func() {
			if onComplete != nil {
				onComplete(synced)
			}
		}()
		run.result = s.Run(ctx, run)
		synced = run.result.Synced
	}()
	return run
}

// Run walks draw numbers from the stored watermark up to the estimate in
// increasing order. Failed draws are skipped and never retried by this run.
func (s *DrawSyncService) Run(ctx context.Context, run *SyncRun) SyncResult {
	if run == nil {
		run = newSyncRun()
	}
	log := s.logger().With(zap.String("run_id", run.ID))
	res := SyncResult{RunID: run.ID, StartedAt: s.now().UTC()}

	last := 0
	if s.Sink != nil {
		last = s.Sink.LastDrawNo(ctx)
	}
	estimate := s.EstimateCurrentDraw(s.now())
	res.From, res.To = last+1, estimate

	if last >= estimate || s.Fetcher == nil || s.Sink == nil {
		log.Info("draws up to date", zap.Int("last_draw_no", last), zap.Int("estimated", estimate))
		res.FinishedAt = s.now().UTC()
		res.From, res.To = 0, 0
		s.Hub.Publish(SyncEvent{Type: EventSyncCompleted, RunID: run.ID})
		return res
	}

	log.Info("draw sync started", zap.Int("from", res.From), zap.Int("to", res.To))
	s.Hub.Publish(SyncEvent{Type: EventSyncStarted, RunID: run.ID, From: res.From, To: res.To})

	limit := rate.Inf
	if s.Pace > 0 {
		limit = rate.Every(s.Pace)
	}
	limiter := rate.NewLimiter(limit, 1)

	for n := res.From; n <= res.To; n++ {
		if run.Cancelled() || ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			res.Cancelled = true
			break
		}
		res.Attempted++
		if err := s.syncOne(ctx, n); err != nil {
			res.Failed++
			res.LastError = err.Error()
			log.Warn("draw sync failed", zap.Int("draw_no", n), zap.Error(err))
			s.Hub.Publish(SyncEvent{Type: EventDrawFailed, RunID: run.ID, DrawNo: n, Synced: res.Synced, Failed: res.Failed, Error: err.Error()})
			continue
		}
		res.Synced++
		log.Info("draw synced", zap.Int("draw_no", n))
		s.Hub.Publish(SyncEvent{Type: EventDrawSynced, RunID: run.ID, DrawNo: n, Synced: res.Synced, Failed: res.Failed})
	}

	res.FinishedAt = s.now().UTC()
	log.Info("draw sync finished",
		zap.Int("synced", res.Synced),
		zap.Int("failed", res.Failed),
		zap.Bool("cancelled", res.Cancelled),
	)
	s.saveState(ctx, res)
	s.Hub.Publish(SyncEvent{
		Type:      EventSyncCompleted,
		RunID:     run.ID,
		From:      res.From,
		To:        res.To,
		Synced:    res.Synced,
		Failed:    res.Failed,
		Cancelled: res.Cancelled,
		Error:     res.LastError,
	})
	return res
}

func (s *DrawSyncService) syncOne(ctx context.Context, drawNo int) error {
	draw, err := s.Fetcher.FetchDraw(ctx, drawNo)
	if err != nil {
		return err
	}
	if draw == nil {
		return dhlottery.ErrDrawNotFound
	}
	if draw.DrawNo != drawNo {
		return fmt.Errorf("%w: asked for %d, got %d", dhlottery.ErrMalformedPayload, drawNo, draw.DrawNo)
	}
	return s.Sink.Add(ctx, draw.Input())
}

func (s *DrawSyncService) saveState(ctx context.Context, res SyncResult) {
	if s.State == nil {
		return
	}
	// Shutdown cancels ctx; the final state row should still land.
	ctx = context.WithoutCancel(ctx)

	prev, err := s.State.GetSyncState(ctx, SyncScopeDraws)
	if err != nil {
		s.logger().Warn("read sync state failed", zap.Error(err))
	}

	stats, _ := json.Marshal(map[string]any{
		"from":      res.From,
		"to":        res.To,
		"attempted": res.Attempted,
		"synced":    res.Synced,
		"failed":    res.Failed,
		"cancelled": res.Cancelled,
	})
	attempted := res.StartedAt
	state := &models.SyncState{
		Scope:         SyncScopeDraws,
		LastDrawNo:    s.Sink.LastDrawNo(ctx),
		LastRunID:     res.RunID,
		LastAttemptAt: &attempted,
		StatsJSON:     datatypes.JSON(stats),
	}
	if prev != nil {
		state.LastSuccessAt = prev.LastSuccessAt
	}
	if res.Failed == 0 && !res.Cancelled {
		finished := res.FinishedAt
		state.LastSuccessAt = &finished
	}
	if res.LastError != "" {
		msg := res.LastError
		state.LastError = &msg
	}
	if err := s.State.SaveSyncState(ctx, state); err != nil {
		s.logger().Warn("save sync state failed", zap.Error(err))
	}
}
