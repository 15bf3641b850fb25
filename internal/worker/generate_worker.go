package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/avatarforge/api/internal/client"
	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/service"
	"github.com/avatarforge/api/internal/store"
)

// Skin color applied when a successful concept omits one.
const fallbackSkinColor = "#ffffff"

// ConceptGenerator is the external AI boundary the worker calls.
type ConceptGenerator interface {
	IsConfigured() bool
	GenerateConcept(ctx context.Context, prompt, referenceImage string) (*client.ConceptResult, error)
}

// TaskBroadcaster pushes task lifecycle events to subscribers. The
// websocket hub satisfies it.
type TaskBroadcaster interface {
	BroadcastStatus(taskID string, status model.TaskStatus)
	BroadcastComplete(taskID string, result model.CharacterState)
	BroadcastError(taskID, code, message string)
}

// GenerateWorker processes concept-generation tasks. Each task only
// ever mutates its own ledger entry; completions never move the active
// variation selection, so a late result cannot clobber newer edits.
type GenerateWorker struct {
	sessions  *service.EditorService
	generator ConceptGenerator
	hub       TaskBroadcaster
}

// NewGenerateWorker creates a new generation worker.
func NewGenerateWorker(sessions *service.EditorService, generator ConceptGenerator, hub TaskBroadcaster) *GenerateWorker {
	return &GenerateWorker{
		sessions:  sessions,
		generator: generator,
		hub:       hub,
	}
}

// ProcessTask handles one generation task.
func (w *GenerateWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.GenerateTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	sess, err := w.sessions.Session(payload.SessionID)
	if err != nil {
		log.Printf("Generation task %s: session %s gone, dropping", payload.TaskID, payload.SessionID)
		return nil
	}

	w.hub.BroadcastStatus(payload.TaskID, model.TaskStatusProcessing)

	concept, err := w.generate(ctx, &payload)
	if err != nil {
		w.failTask(sess, payload.TaskID, err)
		return nil
	}

	result := conceptToState(payload.Snapshot, concept)

	// Merge clamps the numeric attributes, but anything it cannot
	// repair fails the task rather than storing an unsafe state.
	if violations := model.Validate(result); len(violations) > 0 {
		w.failTask(sess, payload.TaskID, fmt.Errorf("concept %s: %s", violations[0].Field, violations[0].Message))
		return nil
	}

	if err := sess.Tasks.Complete(payload.TaskID, result); err != nil {
		// Unknown id or already terminal (e.g. cancelled while the
		// call was in flight). Logged anomaly, nothing to apply.
		log.Printf("Generation task %s: completion dropped: %v", payload.TaskID, err)
		return nil
	}

	if _, err := sess.Variations.Append(result); err != nil {
		log.Printf("Generation task %s: could not save variation: %v", payload.TaskID, err)
	}

	w.hub.BroadcastComplete(payload.TaskID, result)
	log.Printf("Generation task %s completed", payload.TaskID)
	return nil
}

func (w *GenerateWorker) generate(ctx context.Context, payload *model.GenerateTaskPayload) (*client.ConceptResult, error) {
	// Unconfigured client serves a canned concept so the editor works
	// end to end in development.
	if w.generator == nil || !w.generator.IsConfigured() {
		return mockConcept(), nil
	}
	return w.generator.GenerateConcept(ctx, payload.Prompt, payload.ReferenceImage)
}

func (w *GenerateWorker) failTask(sess *service.Session, taskID string, cause error) {
	log.Printf("Generation task %s failed: %v", taskID, cause)
	if err := sess.Tasks.Fail(taskID, cause.Error()); err != nil {
		if err != store.ErrAlreadyTerminal {
			log.Printf("Generation task %s: could not record failure: %v", taskID, err)
		}
		return
	}
	w.hub.BroadcastError(taskID, "GENERATION_FAILED", cause.Error())
}

// conceptToState folds the concept into the request-time snapshot.
// Numeric attributes are clamped here, at the trust boundary; a value
// like height=5.0 from the model is never stored as is.
func conceptToState(snapshot model.CharacterState, concept *client.ConceptResult) model.CharacterState {
	attrs := concept.Attributes

	skinColor := attrs.SkinColor
	if skinColor == "" {
		skinColor = fallbackSkinColor
	}

	patch := model.CharacterPatch{
		Height:      &attrs.Height,
		Width:       &attrs.Width,
		MuscleMass:  &attrs.MuscleMass,
		SkinColor:   &skinColor,
		Name:        &concept.Name,
		Description: &concept.Description,
	}

	return model.Merge(snapshot, patch)
}

func mockConcept() *client.ConceptResult {
	return &client.ConceptResult{
		Name:        "Drifter",
		Description: "A lean wanderer with sun-worn skin.",
		Attributes: &client.ConceptAttributes{
			Height:     1.15,
			Width:      0.9,
			MuscleMass: 0.45,
			SkinColor:  "#8d5524",
		},
	}
}
