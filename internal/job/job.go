// internal/job/job.go

// Package job runs an analysis as an ordered list of named stages.
package job

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage is one named step of a job.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// CleanupFunc undoes the visible effects of a failed job.
type CleanupFunc func(ctx context.Context) error

// Job executes stages sequentially. The first stage error stops the
// job, triggers cleanup, and is returned wrapped with the stage name.
type Job struct {
	name    string
	stages  []Stage
	cleanup CleanupFunc
	log     *zap.SugaredLogger
}

func New(name string, stages []Stage, cleanup CleanupFunc, log *zap.SugaredLogger) *Job {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Job{name: name, stages: stages, cleanup: cleanup, log: log}
}

// Stages lists the stage names in execution order.
func (j *Job) Stages() []string {
	names := make([]string, len(j.stages))
	for i, s := range j.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes the job under ctx.
func (j *Job) Run(ctx context.Context) error {
	j.log.Infow("job started", "job", j.name, "stages", len(j.stages))
	started := time.Now()

	for i, stage := range j.stages {
		if err := ctx.Err(); err != nil {
			return j.fail(ctx, stage.Name, err)
		}

		j.log.Infow("stage started",
			"job", j.name,
			"stage", stage.Name,
			"number", i+1,
		)
		stageStart := time.Now()

		if err := stage.Run(ctx); err != nil {
			return j.fail(ctx, stage.Name, err)
		}

		j.log.Infow("stage finished",
			"job", j.name,
			"stage", stage.Name,
			"duration", time.Since(stageStart),
		)
	}

	j.log.Infow("job finished", "job", j.name, "duration", time.Since(started))
	return nil
}

func (j *Job) fail(ctx context.Context, stage string, err error) error {
	j.log.Errorw("job failed", "job", j.name, "stage", stage, "error", err)

	if j.cleanup != nil {
		// Cleanup still runs when the context is gone.
		cleanupCtx := ctx
		if ctx.Err() != nil {
			cleanupCtx = context.WithoutCancel(ctx)
		}
		if cerr := j.cleanup(cleanupCtx); cerr != nil {
			j.log.Errorw("cleanup failed", "job", j.name, "error", cerr)
		}
	}

	return fmt.Errorf("stage %s: %w", stage, err)
}
