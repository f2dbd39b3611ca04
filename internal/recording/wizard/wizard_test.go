package wizard

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

type fakeDevice struct {
	stops int
}

func (d *fakeDevice) Stop() error {
	d.stops++
	return nil
}

// clock is a controllable time source for capture duration checks.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestWizard(t *testing.T, prompts int, minCapture time.Duration) (*Wizard, *clock) {
	t.Helper()
	clk := &clock{now: time.Unix(1700000000, 0)}
	w, err := New(Config{PromptCount: prompts, MinCapture: minCapture, Now: clk.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, clk
}

func TestNewRejectsZeroPrompts(t *testing.T) {
	if _, err := New(Config{PromptCount: 0}); err == nil {
		t.Error("expected error for zero prompt count")
	}
}

func TestHappyPathRun(t *testing.T) {
	w, clk := newTestWizard(t, 2, 30*time.Second)

	for step := 0; step < 2; step++ {
		if w.Step() != step {
			t.Fatalf("step = %d, want %d", w.Step(), step)
		}
		dev := &fakeDevice{}
		if err := w.StartCapture(dev, "audio/webm"); err != nil {
			t.Fatalf("StartCapture: %v", err)
		}
		if err := w.AppendChunk([]byte{byte(step), 1, 2}); err != nil {
			t.Fatalf("AppendChunk: %v", err)
		}
		if err := w.AppendChunk([]byte{3, 4}); err != nil {
			t.Fatalf("AppendChunk: %v", err)
		}
		clk.Advance(31 * time.Second)
		if err := w.StopCapture(false); err != nil {
			t.Fatalf("StopCapture: %v", err)
		}
		if dev.stops != 1 {
			t.Fatalf("device stopped %d times, want 1", dev.stops)
		}
		if err := w.Confirm(); err != nil {
			t.Fatalf("Confirm: %v", err)
		}
	}

	if w.State() != StateComplete {
		t.Fatalf("state = %s, want complete", w.State())
	}
	segments, err := w.Segments()
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if !bytes.Equal(segments[0].Data, []byte{0, 1, 2, 3, 4}) {
		t.Errorf("segment 0 data = %v", segments[0].Data)
	}
	if !bytes.Equal(segments[1].Data, []byte{1, 1, 2, 3, 4}) {
		t.Errorf("segment 1 data = %v", segments[1].Data)
	}
	if segments[0].ContentType != "audio/webm" {
		t.Errorf("content type = %q", segments[0].ContentType)
	}
}

func TestShortCaptureRefusedUnlessForced(t *testing.T) {
	w, clk := newTestWizard(t, 1, 30*time.Second)
	dev := &fakeDevice{}

	if err := w.StartCapture(dev, ""); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	_ = w.AppendChunk([]byte("short"))
	clk.Advance(5 * time.Second)

	err := w.StopCapture(false)
	if !errors.Is(err, ErrShortCapture) {
		t.Fatalf("StopCapture = %v, want ErrShortCapture", err)
	}
	if w.State() != StateCapturing {
		t.Fatalf("state after refusal = %s, want capturing", w.State())
	}
	if dev.stops != 0 {
		t.Fatal("device must stay held after a refused stop")
	}

	if err = w.StopCapture(true); err != nil {
		t.Fatalf("forced StopCapture: %v", err)
	}
	if w.State() != StateCaptured {
		t.Fatalf("state = %s, want captured", w.State())
	}
	if dev.stops != 1 {
		t.Fatalf("device stopped %d times, want 1", dev.stops)
	}
}

func TestDefaultContentType(t *testing.T) {
	w, clk := newTestWizard(t, 1, 0)
	if err := w.StartCapture(nil, ""); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	_ = w.AppendChunk([]byte("x"))
	clk.Advance(time.Second)
	if err := w.StopCapture(false); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}
	if err := w.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	segments, _ := w.Segments()
	if segments[0].ContentType != "audio/webm" {
		t.Errorf("content type = %q, want audio/webm", segments[0].ContentType)
	}
}

func TestRerecordReplacesTake(t *testing.T) {
	w, clk := newTestWizard(t, 1, 0)

	if err := w.StartCapture(nil, "audio/webm"); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	_ = w.AppendChunk([]byte("first take"))
	clk.Advance(time.Second)
	if err := w.StopCapture(false); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}

	if err := w.Rerecord(); err != nil {
		t.Fatalf("Rerecord: %v", err)
	}
	if w.State() != StateIdle {
		t.Fatalf("state = %s, want idle", w.State())
	}
	if w.Step() != 0 {
		t.Fatalf("step = %d, want 0", w.Step())
	}

	if err := w.StartCapture(nil, "audio/webm"); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	_ = w.AppendChunk([]byte("second take"))
	clk.Advance(time.Second)
	if err := w.StopCapture(false); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}
	if err := w.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	segments, err := w.Segments()
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if string(segments[0].Data) != "second take" {
		t.Errorf("segment data = %q, want second take", segments[0].Data)
	}
}

func TestAbortReleasesDeviceAndDropsData(t *testing.T) {
	w, clk := newTestWizard(t, 2, 0)
	dev := &fakeDevice{}

	if err := w.StartCapture(dev, "audio/webm"); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	_ = w.AppendChunk([]byte("doomed"))
	clk.Advance(time.Second)

	w.Abort()
	if dev.stops != 1 {
		t.Fatalf("device stopped %d times, want 1", dev.stops)
	}
	if w.State() != StateIdle {
		t.Fatalf("state = %s, want idle", w.State())
	}
	if w.Step() != 0 {
		t.Fatalf("step = %d, want 0", w.Step())
	}

	// Abort again in idle is a no-op.
	w.Abort()
	if dev.stops != 1 {
		t.Fatal("idle abort must not stop the device again")
	}
}

func TestInvalidTransitions(t *testing.T) {
	w, _ := newTestWizard(t, 1, 0)

	if err := w.AppendChunk([]byte("x")); err == nil {
		t.Error("AppendChunk in idle should fail")
	}
	if err := w.StopCapture(true); err == nil {
		t.Error("StopCapture in idle should fail")
	}
	if err := w.Confirm(); err == nil {
		t.Error("Confirm in idle should fail")
	}
	if err := w.Rerecord(); err == nil {
		t.Error("Rerecord in idle should fail")
	}
	if _, err := w.Segments(); err == nil {
		t.Error("Segments before complete should fail")
	}

	if err := w.StartCapture(nil, ""); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	if err := w.StartCapture(nil, ""); err == nil {
		t.Error("StartCapture while capturing should fail")
	}
}

func TestSegmentsOnlyAtComplete(t *testing.T) {
	w, clk := newTestWizard(t, 2, 0)

	if err := w.StartCapture(nil, ""); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	_ = w.AppendChunk([]byte("one"))
	clk.Advance(time.Second)
	if err := w.StopCapture(false); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}
	if err := w.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if _, err := w.Segments(); err == nil {
		t.Error("Segments with one prompt remaining should fail")
	}
}
