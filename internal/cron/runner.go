package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New builds a seconds-resolution scheduler evaluated in loc (UTC when nil).
// Jobs receive baseCtx so shutdown reaches them.
func New(logger *zap.Logger, baseCtx context.Context, loc *time.Location) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		if r.baseCtx.Err() != nil {
			return
		}
		r.logger.Info("cron job fired", zap.String("job", name))
		job(r.baseCtx)
	})
}

// Next reports when the entry fires next; zero before Start.
func (r *Runner) Next(id cron.EntryID) time.Time {
	return r.cron.Entry(id).Next
}

func (r *Runner) Start() {
	r.logger.Info("cron started")
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
