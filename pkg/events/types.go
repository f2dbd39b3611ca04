package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	RecordingCompleted EventType = "recording.completed"
	VoiceCreated       EventType = "voice.created"
	VoiceRenamed       EventType = "voice.renamed"
	VoiceDeactivated   EventType = "voice.deactivated"
	PhraseSaved        EventType = "phrase.saved"
	SynthesisCompleted EventType = "synthesis.completed"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	OwnerID   string            `json:"owner_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RecordingCompletedData is the payload for recording.completed events.
type RecordingCompletedData struct {
	SessionID    string `json:"session_id"`
	SegmentCount int    `json:"segment_count"`
	TotalBytes   int    `json:"total_bytes"`
}

// VoiceCreatedData is the payload for voice.created events.
type VoiceCreatedData struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

// VoiceUpdatedData is the payload for voice.renamed and voice.deactivated
// events.
type VoiceUpdatedData struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name,omitempty"`
}

// PhraseSavedData is the payload for phrase.saved events.
type PhraseSavedData struct {
	PhraseID string `json:"phrase_id"`
	VoiceID  string `json:"voice_id"`
	Category string `json:"category"`
}

// SynthesisCompletedData is the payload for synthesis.completed events.
type SynthesisCompletedData struct {
	VoiceID    string `json:"voice_id"`
	TextLength int    `json:"text_length"`
	AudioBytes int    `json:"audio_bytes"`
}
