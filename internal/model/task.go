package model

import "time"

// Task records one asynchronous generation request and its eventual
// outcome. Lifecycle: created processing, then exactly one transition
// to completed (with ResultState set) or failed. Both are terminal.
type Task struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Kind        TaskKind        `json:"kind"`
	Status      TaskStatus      `json:"status"`
	Snapshot    CharacterState  `json:"snapshot"`
	ResultState *CharacterState `json:"resultState,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// GenerateTaskPayload is the queue payload for one generation task.
type GenerateTaskPayload struct {
	SessionID      string         `json:"sessionId"`
	TaskID         string         `json:"taskId"`
	Prompt         string         `json:"prompt"`
	ReferenceImage string         `json:"referenceImage,omitempty"`
	Snapshot       CharacterState `json:"snapshot"`
}
