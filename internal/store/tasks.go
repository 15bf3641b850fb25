package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avatarforge/api/internal/model"
)

var (
	// ErrTaskNotFound is returned for an unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAlreadyTerminal is returned when a completion or failure
	// arrives for a task already in a terminal state. Callers log and
	// ignore it; the ledger stays unchanged.
	ErrAlreadyTerminal = errors.New("task already in a terminal state")
)

// TaskLedger owns the ordered log of generation tasks for one session.
// Creation is append-only (front-inserted, most recent first); updates
// are keyed by id and idempotent. A task transitions exactly once from
// processing to completed or failed.
type TaskLedger struct {
	mu    sync.Mutex
	tasks []*model.Task
	byID  map[string]*model.Task
}

// NewTaskLedger creates an empty ledger.
func NewTaskLedger() *TaskLedger {
	return &TaskLedger{byID: make(map[string]*model.Task)}
}

// Create inserts a new processing task at the front of the visible
// order and returns its id. The snapshot records the working state at
// request time.
func (l *TaskLedger) Create(displayName string, kind model.TaskKind, snapshot model.CharacterState) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := &model.Task{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Kind:        kind,
		Status:      model.TaskStatusProcessing,
		Snapshot:    snapshot,
		CreatedAt:   time.Now().UTC(),
	}
	l.tasks = append([]*model.Task{t}, l.tasks...)
	l.byID[t.ID] = t
	return t.ID
}

// Complete transitions processing -> completed and attaches the result.
func (l *TaskLedger) Complete(id string, result model.CharacterState) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.pending(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t.Status = model.TaskStatusCompleted
	t.ResultState = &result
	t.CompletedAt = &now
	return nil
}

// Fail transitions processing -> failed with a reason.
func (l *TaskLedger) Fail(id, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.pending(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t.Status = model.TaskStatusFailed
	t.Error = &reason
	t.CompletedAt = &now
	return nil
}

// Get returns a copy of the task with the given id.
func (l *TaskLedger) Get(id string) (model.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.byID[id]
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// List returns a copy of the tasks, most recent first. The returned
// slice is stable under concurrent appends.
func (l *TaskLedger) List() []model.Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Task, len(l.tasks))
	for i, t := range l.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// cloneTask copies the record including its pointer fields, so callers
// cannot reach back into the ledger through a returned task.
func cloneTask(t *model.Task) model.Task {
	out := *t
	if t.ResultState != nil {
		rs := *t.ResultState
		out.ResultState = &rs
	}
	if t.Error != nil {
		e := *t.Error
		out.Error = &e
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// Len returns the number of tasks ever created.
func (l *TaskLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

func (l *TaskLedger) pending(id string) (*model.Task, error) {
	t, ok := l.byID[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if t.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	return t, nil
}
