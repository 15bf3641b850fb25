package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/store"
)

// TaskTypeGenerate is the asynq task type for concept generation.
const TaskTypeGenerate = "generate:concept"

// QueueGenerate is the asynq queue for generation tasks.
const QueueGenerate = "generate"

// Default prompts when the client sends none.
const (
	promptFromImage = "Match the character in the provided image. Extract body shape and skin tone."
	promptFromText  = "Generate a unique 3D humanoid character concept."
)

// TaskEnqueuer is the slice of asynq.Client the generation service
// needs; tests substitute a fake.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// GenerationService records generation requests in the session's task
// ledger and queues the background work. Multiple tasks may be in
// flight per session; each is tracked independently by its id.
type GenerationService struct {
	sessions *EditorService
	enqueuer TaskEnqueuer
}

func NewGenerationService(sessions *EditorService, enqueuer TaskEnqueuer) *GenerationService {
	return &GenerationService{
		sessions: sessions,
		enqueuer: enqueuer,
	}
}

// Generate creates a processing task from the session's current
// working state and enqueues the concept-generation call. The task is
// visible in the ledger before the background call can ever complete.
func (s *GenerationService) Generate(ctx context.Context, sessionID string, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	sess, err := s.sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}

	displayName := "Text to 3D"
	kind := model.TaskKindTextToImage
	prompt := promptFromText
	if req.ReferenceImage != "" {
		displayName = "Image to 3D"
		kind = model.TaskKindImageTo3D
		prompt = promptFromImage
	}
	if req.Prompt != "" {
		prompt = req.Prompt
	}

	snapshot := sess.Working()
	taskID := sess.Tasks.Create(displayName, kind, snapshot)

	payload := &model.GenerateTaskPayload{
		SessionID:      sessionID,
		TaskID:         taskID,
		Prompt:         prompt,
		ReferenceImage: req.ReferenceImage,
		Snapshot:       snapshot,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// The task was already created; record the failure instead of
		// leaving it processing forever.
		s.failTask(sess, taskID, "failed to encode task payload")
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeGenerate, data)
	_, err = s.enqueuer.Enqueue(task,
		asynq.Queue(QueueGenerate),
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		s.failTask(sess, taskID, "failed to enqueue task")
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	created, err := sess.Tasks.Get(taskID)
	if err != nil {
		return nil, err
	}

	return &model.GenerateResponse{
		TaskID:    taskID,
		Status:    created.Status,
		CreatedAt: created.CreatedAt,
	}, nil
}

// ListTasks returns the session's tasks, most recent first.
func (s *GenerationService) ListTasks(sessionID string) (*model.TaskListResponse, error) {
	sess, err := s.sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return &model.TaskListResponse{Tasks: sess.Tasks.List()}, nil
}

// GetTask returns one task by id.
func (s *GenerationService) GetTask(sessionID, taskID string) (model.Task, error) {
	sess, err := s.sessions.Session(sessionID)
	if err != nil {
		return model.Task{}, err
	}
	return sess.Tasks.Get(taskID)
}

// Cancel marks a pending task failed with reason "cancelled". A task
// already terminal is left as is; a completion arriving later for a
// cancelled task is a no-op by ledger idempotency.
func (s *GenerationService) Cancel(sessionID, taskID string) (model.Task, error) {
	sess, err := s.sessions.Session(sessionID)
	if err != nil {
		return model.Task{}, err
	}

	if err := sess.Tasks.Fail(taskID, "cancelled"); err != nil {
		if err == store.ErrAlreadyTerminal {
			return sess.Tasks.Get(taskID)
		}
		return model.Task{}, err
	}
	return sess.Tasks.Get(taskID)
}

func (s *GenerationService) failTask(sess *Session, taskID, reason string) {
	if err := sess.Tasks.Fail(taskID, reason); err != nil {
		log.Printf("Failed to mark task %s failed: %v", taskID, err)
	}
}
