package tasks

import (
	"context"
	"log/slog"
)

// RunPipelineTask performs one full fetch, process and store cycle.
type RunPipelineTask struct {
	Task
	pipeline *Pipeline
}

func NewRunPipelineTask(runID string, pipeline *Pipeline) *RunPipelineTask {
	return &RunPipelineTask{
		Task:     NewTask(TaskTypeRunPipeline, runID),
		pipeline: pipeline,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	articles := t.pipeline.Fetcher.RunFullFetch(ctx, t.RunID)
	if len(articles) == 0 {
		slog.Warn("Pipeline run fetched no articles", "run_id", t.RunID)
		return nil
	}

	saved, err := processAndStore(ctx, t.pipeline, t.RunID, articles)
	if err != nil {
		slog.Error("Task failed", "type", string(t.Type), "run_id", t.RunID, "error", err)
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"run_id", t.RunID,
		"fetched", len(articles),
		"saved", saved,
		"duration", t.GetDuration())

	return nil
}
