package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"
	"github.com/rs/xid"

	"github.com/voicebank/voicebank/internal/httputil"
	"github.com/voicebank/voicebank/internal/recording"
	"github.com/voicebank/voicebank/internal/recording/store"
	"github.com/voicebank/voicebank/internal/recording/wizard"
	"github.com/voicebank/voicebank/pkg/events"
)

const (
	maxChunkSize   = 16 << 20 // raw audio chunks
	maxRequestBody = 1 << 20
	reaperInterval = 1 * time.Minute
)

// Config carries the tunables for the wizard session handler.
type Config struct {
	SessionTTL time.Duration
	MinCapture time.Duration
}

type activeSession struct {
	id         string
	ownerID    string
	wiz        *wizard.Wizard
	lastActive time.Time
}

// sessionStore holds in-flight wizard runs.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*activeSession
}

// Handler drives the recording wizard over REST. One wizard run per
// session id; all state transitions happen under the session store lock
// since the wizard itself is not concurrency safe.
type Handler struct {
	loader    *recording.Loader
	recStore  store.Store
	publisher *events.Publisher
	pool      workerpool.WorkerPool
	cfg       Config
	store     *sessionStore

	// subject resolves the caller identity; swapped in tests.
	subject func(ctx context.Context) string
}

// NewHandler creates a wizard session handler.
func NewHandler(loader *recording.Loader, recStore store.Store, publisher *events.Publisher, pool workerpool.WorkerPool, cfg Config) *Handler {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	return &Handler{
		loader:    loader,
		recStore:  recStore,
		publisher: publisher,
		pool:      pool,
		cfg:       cfg,
		store:     &sessionStore{sessions: make(map[string]*activeSession)},
		subject:   httputil.SubjectFromContext,
	}
}

// RegisterRoutes registers the wizard session routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/recording/prompts", h.ListPrompts)
	mux.HandleFunc("POST /api/v1/recording/sessions", h.CreateSession)
	mux.HandleFunc("POST /api/v1/recording/sessions/{id}/start", h.StartCapture)
	mux.HandleFunc("POST /api/v1/recording/sessions/{id}/chunk", h.AppendChunk)
	mux.HandleFunc("POST /api/v1/recording/sessions/{id}/stop", h.StopCapture)
	mux.HandleFunc("POST /api/v1/recording/sessions/{id}/confirm", h.Confirm)
	mux.HandleFunc("POST /api/v1/recording/sessions/{id}/rerecord", h.Rerecord)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// StartReaper begins the background session TTL reaper.
func (h *Handler) StartReaper(ctx context.Context) {
	reap := func() {
		ticker := time.NewTicker(reaperInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.reapStaleSessions(ctx)
			}
		}
	}
	if h.pool != nil {
		_ = h.pool.Submit(ctx, reap)
	} else {
		go reap()
	}
}

func (h *Handler) reapStaleSessions(ctx context.Context) {
	now := time.Now()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	for id, as := range h.store.sessions {
		if now.Sub(as.lastActive) > h.cfg.SessionTTL {
			slog.Warn("reaping stale recording session", slog.String("session_id", id))
			as.wiz.Abort()
			delete(h.store.sessions, id)
			if err := h.recStore.Clear(ctx, store.SessionKey(as.ownerID, id)); err != nil {
				util.Log(ctx).WithError(err).
					WithField("session_id", id).
					Warn("failed to clear reaped recording set")
			}
		}
	}
}

// ListPrompts handles GET /api/v1/recording/prompts
func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PromptsResponse{Prompts: h.loader.Prompts()})
}

// CreateSession handles POST /api/v1/recording/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prompts := h.loader.Prompts()
	wiz, err := wizard.New(wizard.Config{
		PromptCount: len(prompts),
		MinCapture:  h.cfg.MinCapture,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	id := xid.New().String()

	// Start every run from an empty set.
	if err = h.recStore.Clear(r.Context(), store.SessionKey(ownerID, id)); err != nil {
		writeError(w, http.StatusServiceUnavailable,
			"Recording storage temporarily unavailable, please try again")
		return
	}

	h.store.mu.Lock()
	h.store.sessions[id] = &activeSession{
		id:         id,
		ownerID:    ownerID,
		wiz:        wiz,
		lastActive: time.Now(),
	}
	h.store.mu.Unlock()

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: id,
		Prompts:   prompts,
	})
}

// session looks up an owned session, touching its activity timestamp.
func (h *Handler) session(r *http.Request) (*activeSession, int, string) {
	ownerID := h.subject(r.Context())
	if ownerID == "" {
		return nil, http.StatusUnauthorized, "Unauthorized"
	}
	id := r.PathValue("id")
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	as, ok := h.store.sessions[id]
	if !ok || as.ownerID != ownerID {
		return nil, http.StatusNotFound, "session not found"
	}
	as.lastActive = time.Now()
	return as, 0, ""
}

func (h *Handler) stateResponse(as *activeSession) SessionStateResponse {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return SessionStateResponse{
		SessionID:      as.id,
		State:          as.wiz.State().String(),
		Step:           as.wiz.Step(),
		PromptCount:    h.loader.Count(),
		ElapsedSeconds: int(as.wiz.Elapsed().Seconds()),
		Completed:      as.wiz.State() == wizard.StateComplete,
	}
}

// StartCapture handles POST /api/v1/recording/sessions/{id}/start
func (h *Handler) StartCapture(w http.ResponseWriter, r *http.Request) {
	as, status, msg := h.session(r)
	if as == nil {
		writeError(w, status, msg)
		return
	}

	var req StartCaptureRequest
	if r.ContentLength > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	h.store.mu.Lock()
	err := as.wiz.StartCapture(nil, req.ContentType)
	h.store.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.stateResponse(as))
}

// AppendChunk handles POST /api/v1/recording/sessions/{id}/chunk
func (h *Handler) AppendChunk(w http.ResponseWriter, r *http.Request) {
	as, status, msg := h.session(r)
	if as == nil {
		writeError(w, status, msg)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChunkSize)
	chunk, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio chunk")
		return
	}

	h.store.mu.Lock()
	err = as.wiz.AppendChunk(chunk)
	h.store.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.stateResponse(as))
}

// StopCapture handles POST /api/v1/recording/sessions/{id}/stop
func (h *Handler) StopCapture(w http.ResponseWriter, r *http.Request) {
	as, status, msg := h.session(r)
	if as == nil {
		writeError(w, status, msg)
		return
	}

	force := r.URL.Query().Get("force") == "true"

	h.store.mu.Lock()
	err := as.wiz.StopCapture(force)
	h.store.mu.Unlock()
	if err != nil {
		// ErrShortCapture keeps the capture running; the client retries
		// with force=true to override the recommended minimum.
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.stateResponse(as))
}

// Confirm handles POST /api/v1/recording/sessions/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	as, status, msg := h.session(r)
	if as == nil {
		writeError(w, status, msg)
		return
	}

	h.store.mu.Lock()
	var err error
	if as.wiz.State() != wizard.StateComplete {
		// At Complete a repeated confirm only retries the bulk write, so a
		// failed persist is recoverable.
		err = as.wiz.Confirm()
	}
	completed := as.wiz.State() == wizard.StateComplete
	h.store.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if completed {
		if err = h.persistSet(r.Context(), as); err != nil {
			writeError(w, http.StatusServiceUnavailable,
				"Recording storage temporarily unavailable, please try again")
			return
		}
	}

	writeJSON(w, http.StatusOK, h.stateResponse(as))
}

// persistSet writes the completed Recording Set in a single bulk replace.
func (h *Handler) persistSet(ctx context.Context, as *activeSession) error {
	h.store.mu.RLock()
	segments, err := as.wiz.Segments()
	h.store.mu.RUnlock()
	if err != nil {
		return err
	}
	if err = h.recStore.ReplaceAll(ctx, store.SessionKey(as.ownerID, as.id), segments); err != nil {
		return err
	}

	total := 0
	for _, seg := range segments {
		total += len(seg.Data)
	}
	if err = h.publisher.Emit(ctx, events.RecordingCompleted, as.ownerID, events.RecordingCompletedData{
		SessionID:    as.id,
		SegmentCount: len(segments),
		TotalBytes:   total,
	}); err != nil {
		util.Log(ctx).WithError(err).Warn("failed to emit recording.completed event")
	}
	return nil
}

// Rerecord handles POST /api/v1/recording/sessions/{id}/rerecord
func (h *Handler) Rerecord(w http.ResponseWriter, r *http.Request) {
	as, status, msg := h.session(r)
	if as == nil {
		writeError(w, status, msg)
		return
	}

	h.store.mu.Lock()
	err := as.wiz.Rerecord()
	h.store.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.stateResponse(as))
}
