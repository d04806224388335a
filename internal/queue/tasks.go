package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"instagram-agent-platform/internal/agent"
	"instagram-agent-platform/internal/logger"
	"instagram-agent-platform/services"
)

const (
	TaskAgentRun = "agent:run"
)

type AgentRunPayload struct {
	ForcePublish bool   `json:"force_publish"`
	Trigger      string `json:"trigger"`
}

// NewAgentRunTask enqueues one pipeline run. MaxRetry is zero: a failed
// run is retried by the next scheduled or manual trigger, never by the
// queue itself.
func NewAgentRunTask(forcePublish bool, trigger string) (*asynq.Task, error) {
	payload, err := json.Marshal(AgentRunPayload{
		ForcePublish: forcePublish,
		Trigger:      trigger,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskAgentRun,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Enqueuer is the slice of asynq.Client the trigger paths use.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ScheduledRunTaskID keys the scheduled trigger's task by calendar day.
// A run can outlast the minute between schedule checks; later checks the
// same day must collapse into the one task already in flight instead of
// enqueueing a duplicate that could publish a second post.
func ScheduledRunTaskID(date string) string {
	return TaskAgentRun + ":" + date
}

// EnqueueScheduledRun enqueues the day's scheduled run. It returns false
// without error when a task for the same day is already pending or
// running. A failed run frees its task id, so the next check can still
// retry the same day.
func EnqueueScheduledRun(client Enqueuer, date string) (bool, error) {
	task, err := NewAgentRunTask(true, "schedule")
	if err != nil {
		return false, err
	}

	if _, err := client.Enqueue(task, asynq.TaskID(ScheduledRunTaskID(date))); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TaskProcessor executes queued agent runs in the worker binary.
type TaskProcessor struct {
	pipeline *agent.Pipeline
	notifier *services.RunAlertNotifier
}

func NewTaskProcessor(pipeline *agent.Pipeline, notifier *services.RunAlertNotifier) *TaskProcessor {
	return &TaskProcessor{
		pipeline: pipeline,
		notifier: notifier,
	}
}

func (p *TaskProcessor) HandleAgentRun(ctx context.Context, t *asynq.Task) error {
	var payload AgentRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("Processing agent run", "trigger", payload.Trigger, "force_publish", payload.ForcePublish)

	result, err := p.pipeline.Run(ctx, agent.RunOptions{ForcePublish: payload.ForcePublish})
	if err != nil {
		logger.Error("Agent run failed", "trigger", payload.Trigger, "error", err)
		p.notifier.NotifyRunFailed(payload.Trigger, err)
		return err
	}

	if len(result.Warnings) > 0 {
		p.notifier.NotifyDegradedRun(payload.Trigger, result)
	}

	logger.Info("Agent run finished",
		"trigger", payload.Trigger,
		"published", result.Post.Published,
		"warnings", len(result.Warnings))
	return nil
}
