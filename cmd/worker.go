package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job processor",
	Long:  "Polls for pending jobs, executes them, recovers jobs stranded by crashed workers, and runs scheduled cleanup and retry maintenance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sched := cron.New()

		if cfg.Worker.CleanupCron != "" {
			_, err := sched.AddFunc(cfg.Worker.CleanupCron, func() {
				deleted, err := env.Service.CleanupOldJobs(ctx, cfg.Worker.JobsKeptDays)
				if err != nil {
					zap.L().Error("job cleanup failed", zap.Error(err))
					return
				}
				if deleted > 0 {
					zap.L().Info("old jobs deleted", zap.Int("count", deleted))
				}
			})
			if err != nil {
				return eris.Wrap(err, "schedule cleanup")
			}
		}

		if cfg.Worker.RetryCron != "" {
			_, err := sched.AddFunc(cfg.Worker.RetryCron, func() {
				requeueFailedJobs(ctx, env)
			})
			if err != nil {
				return eris.Wrap(err, "schedule retry sweep")
			}
		}

		sched.Start()
		defer sched.Stop()

		zap.L().Info("worker started",
			zap.Duration("poll_interval", cfg.Worker.Interval),
			zap.Duration("exec_timeout", cfg.Worker.ExecTimeout),
		)

		env.Processor.Start(ctx)

		zap.L().Info("worker stopped")
		return nil
	},
}

// requeueFailedJobs returns failed jobs with remaining retry budget to the
// pending queue so the poll loop picks them up again.
func requeueFailedJobs(ctx context.Context, env *env) {
	jobs, err := env.Service.FailedJobsForRetry(ctx)
	if err != nil {
		zap.L().Error("retry sweep failed", zap.Error(err))
		return
	}

	for _, j := range jobs {
		if err := env.Store.RequeueJob(ctx, j.ID, ""); err != nil {
			zap.L().Error("requeue failed", zap.String("job_id", j.ID), zap.Error(err))
			continue
		}
		zap.L().Info("failed job requeued",
			zap.String("job_id", j.ID),
			zap.Int("retry_count", j.RetryCount+1),
		)
	}
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
