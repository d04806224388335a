package queue

import (
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
)

// fakeEnqueuer rejects a task id it has already accepted, matching the
// broker's unique-id semantics.
type fakeEnqueuer struct {
	ids []string
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var id string
	for _, opt := range opts {
		if opt.Type() == asynq.TaskIDOpt {
			id = opt.Value().(string)
		}
	}
	for _, seen := range f.ids {
		if seen == id {
			return nil, asynq.ErrTaskIDConflict
		}
	}
	f.ids = append(f.ids, id)
	return &asynq.TaskInfo{ID: id, Queue: "default"}, nil
}

func TestEnqueueScheduledRunOncePerDay(t *testing.T) {
	client := &fakeEnqueuer{}

	enqueued, err := EnqueueScheduledRun(client, "2025-06-02")
	if err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if !enqueued {
		t.Fatal("expected the first check of the day to enqueue a run")
	}

	// A run still in flight leaves lastRunDate unset, so the next minute
	// check fires again; it must not queue a second run.
	enqueued, err = EnqueueScheduledRun(client, "2025-06-02")
	if err != nil {
		t.Fatalf("repeat enqueue: %v", err)
	}
	if enqueued {
		t.Fatal("expected a repeat check the same day to be deduplicated")
	}

	enqueued, err = EnqueueScheduledRun(client, "2025-06-03")
	if err != nil {
		t.Fatalf("next-day enqueue: %v", err)
	}
	if !enqueued {
		t.Fatal("expected the next day to enqueue a fresh run")
	}
}

func TestScheduledRunTaskIDKeyedByDate(t *testing.T) {
	if ScheduledRunTaskID("2025-06-02") != "agent:run:2025-06-02" {
		t.Fatalf("unexpected task id: %s", ScheduledRunTaskID("2025-06-02"))
	}
	if ScheduledRunTaskID("2025-06-02") == ScheduledRunTaskID("2025-06-03") {
		t.Fatal("different days must map to different task ids")
	}
}

func TestNewAgentRunTaskPayload(t *testing.T) {
	task, err := NewAgentRunTask(true, "schedule")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskAgentRun {
		t.Fatalf("unexpected task type: %s", task.Type())
	}

	var payload AgentRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !payload.ForcePublish {
		t.Fatal("expected force_publish to carry through")
	}
	if payload.Trigger != "schedule" {
		t.Fatalf("unexpected trigger: %s", payload.Trigger)
	}
}
