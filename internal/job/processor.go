package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/store"
)

// Processor poll and execution defaults.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultStaleAfter   = 5 * time.Minute
	DefaultExecTimeout  = 2 * time.Minute
)

// Executor runs one claimed job end to end.
type Executor interface {
	ExecuteJob(ctx context.Context, jobID string) error
}

// ProcessorConfig tunes the polling worker. Zero values take the defaults.
type ProcessorConfig struct {
	// Interval between queue polls.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// StaleAfter is how long a job may sit in processing before it is
	// presumed orphaned by a dead worker and returned to pending.
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
	// ExecTimeout caps a single job execution.
	ExecTimeout time.Duration `yaml:"exec_timeout" mapstructure:"exec_timeout"`
}

func (c ProcessorConfig) withDefaults() ProcessorConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.ExecTimeout <= 0 {
		c.ExecTimeout = DefaultExecTimeout
	}
	return c
}

// Processor drains the job queue: each poll first recovers stuck jobs, then
// picks up the highest-priority pending job if the processor is idle.
// Single-flight per process; cross-process safety comes from the store's
// conditional claim.
type Processor struct {
	store    store.Store
	executor Executor
	cfg      ProcessorConfig

	busy atomic.Bool

	mu    sync.Mutex
	owned map[string]struct{}
}

// NewProcessor creates a Processor. cfg fields left zero take the defaults.
func NewProcessor(st store.Store, executor Executor, cfg ProcessorConfig) *Processor {
	return &Processor{
		store:    st,
		executor: executor,
		cfg:      cfg.withDefaults(),
		owned:    make(map[string]struct{}),
	}
}

// Start polls until ctx is cancelled. The first poll happens immediately.
func (p *Processor) Start(ctx context.Context) {
	log := zap.L().With(zap.Duration("interval", p.cfg.Interval))
	log.Info("processor: started")

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("processor: stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one poll cycle. Stuck-job recovery happens every cycle, even
// when the processor is busy with a job.
func (p *Processor) tick(ctx context.Context) {
	if n, err := p.store.ResetStuckJobs(ctx, p.cfg.StaleAfter); err != nil {
		zap.L().Error("processor: stuck job recovery failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Warn("processor: recovered stuck jobs", zap.Int("count", n))
	}

	if !p.busy.CompareAndSwap(false, true) {
		return
	}
	defer p.busy.Store(false)

	next, err := p.store.NextPendingJob(ctx)
	if err != nil {
		zap.L().Error("processor: queue poll failed", zap.Error(err))
		return
	}
	if next == nil {
		return
	}

	if err := p.execute(ctx, next.ID); err != nil {
		zap.L().Warn("processor: job execution failed",
			zap.String("job_id", next.ID),
			zap.Error(err),
		)
	}
}

// ExecuteNow runs a specific job immediately, bypassing the poll cycle.
// Used by the run-one CLI path and by tests.
func (p *Processor) ExecuteNow(ctx context.Context, jobID string) error {
	return p.execute(ctx, jobID)
}

// execute runs one job under the execution timeout. The owned set stops the
// same process from running a job twice concurrently (poll racing
// ExecuteNow); a second process is stopped by the store's conditional claim.
func (p *Processor) execute(ctx context.Context, jobID string) error {
	p.mu.Lock()
	if _, running := p.owned[jobID]; running {
		p.mu.Unlock()
		zap.L().Debug("processor: job already running here", zap.String("job_id", jobID))
		return nil
	}
	p.owned[jobID] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.owned, jobID)
		p.mu.Unlock()
	}()

	execCtx, cancel := context.WithTimeout(ctx, p.cfg.ExecTimeout)
	defer cancel()
	return p.executor.ExecuteJob(execCtx, jobID)
}
