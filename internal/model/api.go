package model

import "time"

// SessionResponse is returned when a session is created or fetched.
type SessionResponse struct {
	SessionID   string         `json:"sessionId"`
	State       CharacterState `json:"state"`
	ActiveIndex int            `json:"activeIndex"`
	Variations  int            `json:"variations"`
}

// UpdateCharacterRequest carries a partial edit of the working state.
// BaseIndex, when set, is the variation index the client was editing;
// the edit is discarded if the active index moved in the meantime.
type UpdateCharacterRequest struct {
	BaseIndex *int `json:"baseIndex" validate:"omitempty,min=0"`
	CharacterPatch
}

// VariationListResponse lists every saved snapshot in order.
type VariationListResponse struct {
	ActiveIndex int              `json:"activeIndex"`
	Variations  []CharacterState `json:"variations"`
}

// GenerateRequest starts an AI concept-generation task. ReferenceImage
// is base64, with or without a data-URL prefix.
type GenerateRequest struct {
	Prompt         string `json:"prompt" validate:"omitempty,max=2000"`
	ReferenceImage string `json:"referenceImage"`
}

// GenerateResponse acknowledges a queued generation task.
type GenerateResponse struct {
	TaskID    string     `json:"taskId"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// TaskListResponse lists generation tasks, most recent first.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

// ExportRequest configures the downloadable character package.
type ExportRequest struct {
	Complexity  ExportComplexity `json:"complexity" validate:"required,oneof=Simple Standard Complex"`
	TextureSize int              `json:"textureSize" validate:"required,oneof=512 1024 1536 2048"`
	FileType    ExportFileType   `json:"fileType" validate:"required,oneof=GLB OBJ FBX"`
}

// ExportResponse describes the produced package.
type ExportResponse struct {
	PackageURL    string           `json:"packageUrl"`
	FileType      ExportFileType   `json:"fileType"`
	TextureSize   int              `json:"textureSize"`
	Complexity    ExportComplexity `json:"complexity"`
	TriangleCount int              `json:"triangleCount"`
	Primitives    int              `json:"primitives"`
	Files         []string         `json:"files"`
	ExpiresAt     time.Time        `json:"expiresAt"`
}
