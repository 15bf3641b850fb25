package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/avatarforge/api/internal/model"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestGenerateCreatesProcessingTask(t *testing.T) {
	sessions := NewEditorService(0, 0)
	sess, _ := sessions.CreateSession()
	enq := &fakeEnqueuer{}
	svc := NewGenerationService(sessions, enq)

	resp, err := svc.Generate(context.Background(), sess.ID, &model.GenerateRequest{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Status != model.TaskStatusProcessing {
		t.Errorf("expected processing, got %s", resp.Status)
	}

	// The task is in the ledger before any completion can run.
	task, err := sess.Tasks.Get(resp.TaskID)
	if err != nil {
		t.Fatalf("task not in ledger: %v", err)
	}
	if task.DisplayName != "Text to 3D" || task.Kind != model.TaskKindTextToImage {
		t.Errorf("unexpected task identity: %+v", task)
	}

	if len(enq.tasks) != 1 {
		t.Fatalf("expected one enqueued task, got %d", len(enq.tasks))
	}
	var payload model.GenerateTaskPayload
	if err := json.Unmarshal(enq.tasks[0].Payload(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.SessionID != sess.ID || payload.TaskID != resp.TaskID {
		t.Errorf("payload does not reference the created task: %+v", payload)
	}
	if payload.Snapshot != sess.Working() {
		t.Error("payload must carry the request-time snapshot")
	}
}

func TestGenerateWithReferenceImage(t *testing.T) {
	sessions := NewEditorService(0, 0)
	sess, _ := sessions.CreateSession()
	enq := &fakeEnqueuer{}
	svc := NewGenerationService(sessions, enq)

	resp, err := svc.Generate(context.Background(), sess.ID, &model.GenerateRequest{
		ReferenceImage: "data:image/jpeg;base64,AAAA",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	task, _ := sess.Tasks.Get(resp.TaskID)
	if task.DisplayName != "Image to 3D" || task.Kind != model.TaskKindImageTo3D {
		t.Errorf("reference image should produce an image-to-3d task: %+v", task)
	}
}

func TestGenerateEnqueueFailureMarksTaskFailed(t *testing.T) {
	sessions := NewEditorService(0, 0)
	sess, _ := sessions.CreateSession()
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	svc := NewGenerationService(sessions, enq)

	if _, err := svc.Generate(context.Background(), sess.ID, &model.GenerateRequest{}); err == nil {
		t.Fatal("expected an error when enqueue fails")
	}

	tasks := sess.Tasks.List()
	if len(tasks) != 1 {
		t.Fatalf("expected the task to remain in the ledger, got %d", len(tasks))
	}
	if tasks[0].Status != model.TaskStatusFailed {
		t.Errorf("task must not be left processing forever, got %s", tasks[0].Status)
	}
}

func TestGenerateConcurrentTasksIndependent(t *testing.T) {
	sessions := NewEditorService(0, 0)
	sess, _ := sessions.CreateSession()
	enq := &fakeEnqueuer{}
	svc := NewGenerationService(sessions, enq)

	a, _ := svc.Generate(context.Background(), sess.ID, &model.GenerateRequest{})
	b, _ := svc.Generate(context.Background(), sess.ID, &model.GenerateRequest{})

	if a.TaskID == b.TaskID {
		t.Fatal("each request must get its own task id")
	}

	// Completing the second leaves the first untouched.
	if err := sess.Tasks.Complete(b.TaskID, model.DefaultCharacter()); err != nil {
		t.Fatal(err)
	}
	first, _ := sess.Tasks.Get(a.TaskID)
	if first.Status != model.TaskStatusProcessing {
		t.Errorf("completion must only mutate its own task, got %s", first.Status)
	}
}

func TestCancelPendingTask(t *testing.T) {
	sessions := NewEditorService(0, 0)
	sess, _ := sessions.CreateSession()
	svc := NewGenerationService(sessions, &fakeEnqueuer{})

	resp, _ := svc.Generate(context.Background(), sess.ID, &model.GenerateRequest{})

	task, err := svc.Cancel(sess.ID, resp.TaskID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if task.Status != model.TaskStatusFailed || task.Error == nil || *task.Error != "cancelled" {
		t.Errorf("expected failed/cancelled, got %+v", task)
	}

	// Cancelling again is a no-op returning the terminal task.
	task, err = svc.Cancel(sess.ID, resp.TaskID)
	if err != nil {
		t.Fatalf("idempotent cancel failed: %v", err)
	}
	if task.Status != model.TaskStatusFailed {
		t.Errorf("expected failed, got %s", task.Status)
	}
}
