package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSStatusMessage reports a task status change.
type WSStatusMessage struct {
	Type   string     `json:"type"`
	TaskID string     `json:"taskId"`
	Status TaskStatus `json:"status"`
}

// WSCompleteMessage carries the resulting character state of a
// completed task.
type WSCompleteMessage struct {
	Type   string         `json:"type"`
	TaskID string         `json:"taskId"`
	Result CharacterState `json:"result"`
}

// WSErrorMessage reports a terminal task failure.
type WSErrorMessage struct {
	Type   string  `json:"type"`
	TaskID string  `json:"taskId"`
	Error  WSError `json:"error"`
}

// WSError holds failure details.
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
