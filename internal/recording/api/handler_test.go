package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voicebank/voicebank/internal/recording"
	"github.com/voicebank/voicebank/internal/recording/store"
)

func newTestHandler(t *testing.T, recStore store.Store, minCapture time.Duration) (*Handler, *http.ServeMux) {
	t.Helper()
	loader := recording.NewLoader("")
	h := NewHandler(loader, recStore, nil, nil, Config{
		SessionTTL: time.Hour,
		MinCapture: minCapture,
	})
	h.subject = func(context.Context) string { return "user-1" }

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func doRaw(t *testing.T, mux *http.ServeMux, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, mux *http.ServeMux) CreateSessionResponse {
	t.Helper()
	rec := doJSON(t, mux, "POST", "/api/v1/recording/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", rec.Code, rec.Body)
	}
	var resp CreateSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	return resp
}

func TestListPrompts(t *testing.T) {
	_, mux := newTestHandler(t, store.NewMemoryStore(), 0)

	rec := doJSON(t, mux, "GET", "/api/v1/recording/prompts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp PromptsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Prompts) != 8 {
		t.Errorf("got %d prompts, want 8", len(resp.Prompts))
	}
}

func TestCreateSessionRequiresAuth(t *testing.T) {
	h, mux := newTestHandler(t, store.NewMemoryStore(), 0)
	h.subject = func(context.Context) string { return "" }

	rec := doJSON(t, mux, "POST", "/api/v1/recording/sessions", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestFullWizardRun(t *testing.T) {
	recStore := store.NewMemoryStore()
	_, mux := newTestHandler(t, recStore, 0)

	sess := createSession(t, mux)
	if len(sess.Prompts) != 8 {
		t.Fatalf("got %d prompts, want 8", len(sess.Prompts))
	}
	base := "/api/v1/recording/sessions/" + sess.SessionID

	var state SessionStateResponse
	for step := 0; step < 8; step++ {
		rec := doJSON(t, mux, "POST", base+"/start", StartCaptureRequest{ContentType: "audio/webm"})
		if rec.Code != http.StatusOK {
			t.Fatalf("start step %d: status %d: %s", step, rec.Code, rec.Body)
		}

		chunk := bytes.Repeat([]byte{byte(step + 1)}, 256)
		rec = doRaw(t, mux, "POST", base+"/chunk", chunk)
		if rec.Code != http.StatusOK {
			t.Fatalf("chunk step %d: status %d", step, rec.Code)
		}

		rec = doJSON(t, mux, "POST", base+"/stop", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("stop step %d: status %d: %s", step, rec.Code, rec.Body)
		}

		rec = doJSON(t, mux, "POST", base+"/confirm", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("confirm step %d: status %d: %s", step, rec.Code, rec.Body)
		}
		if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
			t.Fatalf("decode state: %v", err)
		}
	}

	if !state.Completed {
		t.Fatalf("run not completed: %+v", state)
	}

	segments, err := recStore.ReadAll(context.Background(), store.SessionKey("user-1", sess.SessionID))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(segments) != 8 {
		t.Fatalf("stored %d segments, want 8", len(segments))
	}
	for i, seg := range segments {
		if len(seg.Data) != 256 || seg.Data[0] != byte(i+1) {
			t.Errorf("segment %d has wrong data", i)
		}
	}
}

func TestShortStopRefusedThenForced(t *testing.T) {
	_, mux := newTestHandler(t, store.NewMemoryStore(), 30*time.Second)

	sess := createSession(t, mux)
	base := "/api/v1/recording/sessions/" + sess.SessionID

	if rec := doJSON(t, mux, "POST", base+"/start", nil); rec.Code != http.StatusOK {
		t.Fatalf("start: status %d", rec.Code)
	}
	doRaw(t, mux, "POST", base+"/chunk", []byte("short"))

	rec := doJSON(t, mux, "POST", base+"/stop", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("short stop: status %d, want 409", rec.Code)
	}

	rec = doJSON(t, mux, "POST", base+"/stop?force=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("forced stop: status %d: %s", rec.Code, rec.Body)
	}
}

func TestRerecordDiscardsTake(t *testing.T) {
	_, mux := newTestHandler(t, store.NewMemoryStore(), 0)

	sess := createSession(t, mux)
	base := "/api/v1/recording/sessions/" + sess.SessionID

	doJSON(t, mux, "POST", base+"/start", nil)
	doRaw(t, mux, "POST", base+"/chunk", []byte("take one"))
	doJSON(t, mux, "POST", base+"/stop", nil)

	rec := doJSON(t, mux, "POST", base+"/rerecord", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rerecord: status %d", rec.Code)
	}
	var state SessionStateResponse
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.State != "idle" || state.Step != 0 {
		t.Errorf("state after rerecord = %+v", state)
	}
}

func TestSessionOwnershipEnforced(t *testing.T) {
	h, mux := newTestHandler(t, store.NewMemoryStore(), 0)

	sess := createSession(t, mux)

	// Another caller cannot touch this session.
	h.subject = func(context.Context) string { return "intruder" }
	rec := doJSON(t, mux, "POST", "/api/v1/recording/sessions/"+sess.SessionID+"/start", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOutOfOrderOperationsConflict(t *testing.T) {
	_, mux := newTestHandler(t, store.NewMemoryStore(), 0)

	sess := createSession(t, mux)
	base := "/api/v1/recording/sessions/" + sess.SessionID

	tests := []struct {
		name string
		path string
	}{
		{name: "chunk before start", path: "/chunk"},
		{name: "stop before start", path: "/stop"},
		{name: "confirm before capture", path: "/confirm"},
		{name: "rerecord before capture", path: "/rerecord"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRaw(t, mux, "POST", base+tt.path, []byte("x"))
			if rec.Code != http.StatusConflict {
				t.Errorf("status = %d, want 409", rec.Code)
			}
		})
	}
}

func TestReaperDropsStaleSessions(t *testing.T) {
	recStore := store.NewMemoryStore()
	h, mux := newTestHandler(t, recStore, 0)
	h.cfg.SessionTTL = time.Millisecond

	sess := createSession(t, mux)

	time.Sleep(5 * time.Millisecond)
	h.reapStaleSessions(context.Background())

	rec := doJSON(t, mux, "POST", fmt.Sprintf("/api/v1/recording/sessions/%s/start", sess.SessionID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after reap", rec.Code)
	}
}
