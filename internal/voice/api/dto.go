package api

// GenerateVoiceRequest is the request body for cloning a voice from a
// completed recording session.
type GenerateVoiceRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
}

// GenerateVoiceResponse is returned when a voice has been cloned.
type GenerateVoiceResponse struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	RecordID string `json:"record_id,omitempty"`
}

// VoiceResponse is the API representation of a directory record.
type VoiceResponse struct {
	ID         string `json:"id"`
	VoiceID    string `json:"voice_id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

// ListVoicesResponse lists the caller's active voices.
type ListVoicesResponse struct {
	Voices []VoiceResponse `json:"voices"`
}

// UpdateVoiceRequest is the request body for PATCH /api/v1/voices/{id}.
type UpdateVoiceRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// SpeakRequest is the request body for POST /api/v1/speak.
type SpeakRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// CreatePhraseRequest is the request body for saving a phrase.
type CreatePhraseRequest struct {
	VoiceID  string `json:"voice_id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// PhraseResponse is the API representation of a saved phrase.
type PhraseResponse struct {
	ID        string `json:"id"`
	VoiceID   string `json:"voice_id"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	AudioURL  string `json:"audio_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ListPhrasesResponse lists saved phrases for a voice.
type ListPhrasesResponse struct {
	Phrases []PhraseResponse `json:"phrases"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
