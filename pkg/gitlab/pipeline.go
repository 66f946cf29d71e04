package gitlab

import (
	"context"
	"fmt"
	"time"

	glab "gitlab.com/gitlab-org/api/client-go"
)

// PipelineGetter is the slice of the pipelines API the waiter needs.
type PipelineGetter interface {
	GetPipeline(pid any, pipeline int, options ...glab.RequestOptionFunc) (*glab.Pipeline, *glab.Response, error)
}

// PipelineLister lists project pipelines, newest first.
type PipelineLister interface {
	ListProjectPipelines(pid any, opt *glab.ListProjectPipelinesOptions, options ...glab.RequestOptionFunc) ([]*glab.PipelineInfo, *glab.Response, error)
}

// PipelineService combines the pipeline API surfaces the release flow
// touches. *glab.PipelinesService satisfies it.
type PipelineService interface {
	PipelineGetter
	PipelineLister
}

// LatestPipelineID returns the id of the most recently created pipeline,
// or zero when the project has none.
func LatestPipelineID(ctx context.Context, svc PipelineLister, pid any) (int, error) {
	pipelines, _, err := svc.ListProjectPipelines(pid, &glab.ListProjectPipelinesOptions{
		ListOptions: glab.ListOptions{PerPage: 1, Page: 1},
	}, glab.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("list pipelines: %w", err)
	}
	if len(pipelines) == 0 {
		return 0, nil
	}
	return pipelines[0].ID, nil
}

// PipelineWaiter polls a pipeline until it reaches a terminal status.
type PipelineWaiter struct {
	Service  PipelineGetter
	Interval time.Duration
	MaxWait  time.Duration
}

// NewPipelineWaiter constructs a waiter with the default polling policy:
// probe every 30 seconds, give up after two hours.
func NewPipelineWaiter(service PipelineGetter) *PipelineWaiter {
	return &PipelineWaiter{
		Service:  service,
		Interval: 30 * time.Second,
		MaxWait:  2 * time.Hour,
	}
}

// Wait blocks until the pipeline finishes. A terminal status other than
// success, the wait cap, or context cancellation all yield an error.
func (w *PipelineWaiter) Wait(ctx context.Context, pid any, pipelineID int) error {
	deadline := time.Now().Add(w.MaxWait)

	for {
		pipeline, _, err := w.Service.GetPipeline(pid, pipelineID, glab.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("get pipeline %d: %w", pipelineID, err)
		}

		if !pipelineInFlight(pipeline.Status) {
			if pipeline.Status != "success" {
				return fmt.Errorf("pipeline %d finished with status %q", pipelineID, pipeline.Status)
			}
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("pipeline %d still %s after %s", pipelineID, pipeline.Status, w.MaxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.Interval):
		}
	}
}

func pipelineInFlight(status string) bool {
	switch status {
	case "created", "waiting_for_resource", "preparing", "pending", "running", "scheduled":
		return true
	}
	return false
}
