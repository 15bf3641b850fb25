package model

// Calibration poses
type Pose string

const (
	PoseA      Pose = "A-Pose"
	PoseT      Pose = "T-Pose"
	PoseAction Pose = "Action"
)

var ValidPoses = []Pose{PoseA, PoseT, PoseAction}

// Task status
type TaskStatus string

const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task kinds
type TaskKind string

const (
	TaskKindImageTo3D   TaskKind = "image-to-3d"
	TaskKindTextToImage TaskKind = "text-to-image"
)

// Export complexity levels
type ExportComplexity string

const (
	ComplexitySimple   ExportComplexity = "Simple"
	ComplexityStandard ExportComplexity = "Standard"
	ComplexityComplex  ExportComplexity = "Complex"
)

// Export file types
type ExportFileType string

const (
	FileTypeGLB ExportFileType = "GLB"
	FileTypeOBJ ExportFileType = "OBJ"
	FileTypeFBX ExportFileType = "FBX"
)
