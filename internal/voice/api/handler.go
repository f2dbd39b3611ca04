package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pitabwire/util"

	"github.com/voicebank/voicebank/internal/httputil"
	"github.com/voicebank/voicebank/internal/recording/store"
	"github.com/voicebank/voicebank/internal/voice"
	"github.com/voicebank/voicebank/pkg/cache"
	"github.com/voicebank/voicebank/pkg/events"
)

const maxRequestBodySize = 1 << 20 // 1 MiB

// Handler provides REST endpoints for the voice directory, cloning and
// synthesis.
type Handler struct {
	repo      *voice.Repository
	creator   *voice.Creator
	synth     *voice.Synthesizer
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher *events.Publisher

	// subject resolves the caller identity; swapped in tests.
	subject func(ctx context.Context) string
}

// NewHandler creates a new voice API handler.
func NewHandler(repo *voice.Repository, creator *voice.Creator, synth *voice.Synthesizer, phraseCache cache.Cache, cacheTTL time.Duration, publisher *events.Publisher) *Handler {
	return &Handler{
		repo:      repo,
		creator:   creator,
		synth:     synth,
		cache:     phraseCache,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		subject:   httputil.SubjectFromContext,
	}
}

// RegisterRoutes registers all voice API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/voices", h.List)
	mux.HandleFunc("POST /api/v1/voices/generate", h.Generate)
	mux.HandleFunc("PATCH /api/v1/voices/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/voices/{id}", h.Delete)
	mux.HandleFunc("POST /api/v1/speak", h.Speak)
	mux.HandleFunc("POST /api/v1/phrases", h.CreatePhrase)
	mux.HandleFunc("GET /api/v1/phrases", h.ListPhrases)
	mux.HandleFunc("GET /api/v1/phrases/{id}", h.GetPhrase)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps the failure taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voice.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, voice.ErrMissingParameter),
		errors.Is(err, voice.ErrInsufficientAudio):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, voice.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable,
			"Recording storage temporarily unavailable, please try again")
	case errors.Is(err, voice.ErrCloneFailed),
		errors.Is(err, voice.ErrSynthesisFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toVoiceResponse(v *voice.Voice) VoiceResponse {
	return VoiceResponse{
		ID:         v.ID,
		VoiceID:    v.VoiceID,
		Name:       v.Name,
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt.Format(time.RFC3339),
		ModifiedAt: v.ModifiedAt.Format(time.RFC3339),
	}
}

func toPhraseResponse(p *voice.SavedPhrase) PhraseResponse {
	return PhraseResponse{
		ID:        p.ID,
		VoiceID:   p.VoiceID,
		Text:      p.Text,
		Category:  p.Category,
		AudioURL:  p.AudioURL,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func phraseCacheKey(ownerID, voiceID, phraseID string) string {
	return fmt.Sprintf("phrase:%s:%s:%s", ownerID, voiceID, phraseID)
}

// cachePhrase stores the rendered phrase document so later reads can be
// served without touching the directory.
func (h *Handler) cachePhrase(ctx context.Context, ownerID string, p *voice.SavedPhrase) {
	if h.cache == nil {
		return
	}
	body, err := json.Marshal(toPhraseResponse(p))
	if err != nil {
		return
	}
	key := phraseCacheKey(ownerID, p.VoiceID, p.ID)
	if err = h.cache.Set(ctx, key, string(body), h.cacheTTL); err != nil {
		util.Log(ctx).WithError(err).Warn("failed to cache phrase")
	}
}

// List handles GET /api/v1/voices
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	voices, err := h.repo.ListVoices(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list voices")
		return
	}

	resp := ListVoicesResponse{Voices: make([]VoiceResponse, 0, len(voices))}
	for i := range voices {
		resp.Voices = append(resp.Voices, toVoiceResponse(&voices[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Generate handles POST /api/v1/voices/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req GenerateVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.creator.Create(r.Context(), ownerID, req.SessionID, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, GenerateVoiceResponse{
		VoiceID:  result.VoiceID,
		Name:     result.Name,
		RecordID: result.RecordID,
	})
}

// Update handles PATCH /api/v1/voices/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req UpdateVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")

	if req.IsActive != nil && !*req.IsActive {
		if err := h.deactivate(r.Context(), ownerID, id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	v, err := h.repo.RenameVoice(r.Context(), ownerID, id, *req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err = h.publisher.Emit(r.Context(), events.VoiceRenamed, ownerID, events.VoiceUpdatedData{
		VoiceID: v.VoiceID,
		Name:    v.Name,
	}); err != nil {
		util.Log(r.Context()).WithError(err).Warn("failed to emit voice.renamed event")
	}

	writeJSON(w, http.StatusOK, toVoiceResponse(v))
}

// Delete handles DELETE /api/v1/voices/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.deactivate(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivate(ctx context.Context, ownerID, id string) error {
	v, err := h.repo.GetVoice(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err = h.repo.DeactivateVoice(ctx, ownerID, id); err != nil {
		return err
	}

	if err = h.publisher.Emit(ctx, events.VoiceDeactivated, ownerID, events.VoiceUpdatedData{
		VoiceID: v.VoiceID,
	}); err != nil {
		util.Log(ctx).WithError(err).Warn("failed to emit voice.deactivated event")
	}
	return nil
}

// Speak handles POST /api/v1/speak
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	audio, contentType, err := h.synth.Synthesize(r.Context(), ownerID, req.Text, req.VoiceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// CreatePhrase handles POST /api/v1/phrases
func (h *Handler) CreatePhrase(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req CreatePhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VoiceID == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "voice_id and text are required")
		return
	}

	category := req.Category
	if category == "" {
		category = "general"
	}

	p := &voice.SavedPhrase{
		OwnerID:  ownerID,
		VoiceID:  req.VoiceID,
		Text:     req.Text,
		Category: category,
		AudioURL: req.AudioURL,
	}
	if err := h.repo.CreatePhrase(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save phrase")
		return
	}

	h.cachePhrase(r.Context(), ownerID, p)

	if err := h.publisher.Emit(r.Context(), events.PhraseSaved, ownerID, events.PhraseSavedData{
		PhraseID: p.ID,
		VoiceID:  p.VoiceID,
		Category: p.Category,
	}); err != nil {
		util.Log(r.Context()).WithError(err).Warn("failed to emit phrase.saved event")
	}

	writeJSON(w, http.StatusCreated, toPhraseResponse(p))
}

// ListPhrases handles GET /api/v1/phrases?voice_id=
func (h *Handler) ListPhrases(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	voiceID := r.URL.Query().Get("voice_id")
	if voiceID == "" {
		writeError(w, http.StatusBadRequest, "voice_id is required")
		return
	}

	phrases, err := h.repo.ListPhrases(r.Context(), ownerID, voiceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list phrases")
		return
	}

	resp := ListPhrasesResponse{Phrases: make([]PhraseResponse, 0, len(phrases))}
	for i := range phrases {
		p := &phrases[i]
		resp.Phrases = append(resp.Phrases, toPhraseResponse(p))
		h.cachePhrase(r.Context(), ownerID, p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPhrase handles GET /api/v1/phrases/{id}?voice_id=
// Reads are served from the phrase cache when possible; the directory is
// only consulted on a miss, and the result warms the cache for the next
// read.
func (h *Handler) GetPhrase(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	voiceID := r.URL.Query().Get("voice_id")
	if voiceID == "" {
		writeError(w, http.StatusBadRequest, "voice_id is required")
		return
	}
	id := r.PathValue("id")

	if h.cache != nil {
		if body, ok := h.cache.Get(r.Context(), phraseCacheKey(ownerID, voiceID, id)); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(body))
			return
		}
	}

	p, err := h.repo.GetPhrase(r.Context(), ownerID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if p.VoiceID != voiceID {
		writeError(w, http.StatusNotFound, "phrase not found")
		return
	}

	h.cachePhrase(r.Context(), ownerID, p)
	writeJSON(w, http.StatusOK, toPhraseResponse(p))
}
