package api

import "github.com/voicebank/voicebank/internal/recording"

// CreateSessionResponse is returned when a new wizard run is opened.
type CreateSessionResponse struct {
	SessionID string             `json:"session_id"`
	Prompts   []recording.Prompt `json:"prompts"`
}

// PromptsResponse lists the recording prompts.
type PromptsResponse struct {
	Prompts []recording.Prompt `json:"prompts"`
}

// StartCaptureRequest is the request body for starting a capture.
type StartCaptureRequest struct {
	ContentType string `json:"content_type,omitempty"`
}

// SessionStateResponse reports the wizard state after an operation.
type SessionStateResponse struct {
	SessionID      string `json:"session_id"`
	State          string `json:"state"`
	Step           int    `json:"step"`
	PromptCount    int    `json:"prompt_count"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	Completed      bool   `json:"completed"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
