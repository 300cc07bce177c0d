package model

import "time"

// ProgressUpdate is one pipeline stage event streamed to a session's
// websocket clients.
type ProgressUpdate struct {
	SessionId string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
