package schedule

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Araychaudhur/portfolio-2025/internal/indexer"
)

// Runner is the indexing pipeline as the scheduler sees it.
type Runner interface {
	Run(ctx context.Context) (*indexer.Summary, error)
}

// ReindexScheduler re-runs the indexing pipeline on a cron spec so published
// content changes reach the index without a manual run. There is exactly one
// schedulable thing in this system, so the scheduler holds a single runner
// and a single entry. A tick that fires while the previous run is still
// embedding is skipped; the pipeline is idempotent, so the next tick
// converges anyway.
type ReindexScheduler struct {
	cron    *cron.Cron
	runner  Runner
	spec    string
	running atomic.Bool
	ctx     context.Context
}

func NewReindexScheduler(runner Runner, spec string) (*ReindexScheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s := &ReindexScheduler{
		cron:   cron.New(cron.WithParser(parser)),
		runner: runner,
		spec:   spec,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ReindexScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.cron.Start()
	logutil.GetLogger(ctx).Info("reindex scheduled", zap.String("spec", s.spec))
}

func (s *ReindexScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ReindexScheduler) tick() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logutil.GetLogger(ctx).With(zap.String("spec", s.spec))
	if !s.running.CompareAndSwap(false, true) {
		logger.Info("reindex skipped: previous run still in progress")
		return
	}
	defer s.running.Store(false)

	logger.Info("scheduled reindex started")
	summary, err := s.runner.Run(ctx)
	if err != nil {
		logger.Error("scheduled reindex failed", zap.Error(err))
		return
	}
	logger.Info("scheduled reindex finished",
		zap.Int("extracted", summary.Extracted),
		zap.Int("deduped", summary.Deduped),
		zap.Int("bases", summary.Bases),
		zap.Int("indexed", summary.Indexed),
		zap.Duration("duration", summary.Duration),
	)
}
