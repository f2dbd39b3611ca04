// Package wizard drives a voice-banking recording run: N fixed prompts,
// one captured audio segment per prompt, with re-record support. The state
// machine is pure so it can be tested apart from any transport or UI.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/voicebank/voicebank/internal/recording/store"
)

// State is the wizard's position within the current prompt.
type State int

const (
	// StateIdle means no capture is in progress for the current prompt.
	StateIdle State = iota
	// StateCapturing means the capture device is held and chunks accumulate.
	StateCapturing
	// StateCaptured means a segment awaits confirm or re-record.
	StateCaptured
	// StateComplete means every prompt has a confirmed segment.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateCaptured:
		return "captured"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Device is an exclusively held capture device. Stop releases it; the
// wizard guarantees exactly one Stop on every exit path from capturing.
type Device interface {
	Stop() error
}

// ErrShortCapture is returned by StopCapture when the elapsed capture time
// is under the quality threshold and the stop was not forced. The caller
// asks the user to confirm, then retries with force.
var ErrShortCapture = errors.New("capture shorter than recommended minimum")

// Config parameterizes a wizard run.
type Config struct {
	PromptCount int
	MinCapture  time.Duration
	Now         func() time.Time // defaults to time.Now
}

// Wizard is the state machine for one recording run. Not safe for
// concurrent use; callers serialize access per session.
type Wizard struct {
	cfg Config

	state        State
	step         int
	device       Device
	contentType  string
	captureStart time.Time
	chunks       [][]byte

	pending  *store.Segment
	segments []store.Segment
	recorded []bool
}

// New creates a wizard at prompt 0 in the idle state.
func New(cfg Config) (*Wizard, error) {
	if cfg.PromptCount <= 0 {
		return nil, fmt.Errorf("prompt count must be positive, got %d", cfg.PromptCount)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Wizard{
		cfg:      cfg,
		state:    StateIdle,
		segments: make([]store.Segment, cfg.PromptCount),
		recorded: make([]bool, cfg.PromptCount),
	}, nil
}

// State returns the current state.
func (w *Wizard) State() State { return w.state }

// Step returns the current prompt ordinal, 0-based.
func (w *Wizard) Step() int { return w.step }

// Elapsed returns how long the current capture has been running.
func (w *Wizard) Elapsed() time.Duration {
	if w.state != StateCapturing {
		return 0
	}
	return w.cfg.Now().Sub(w.captureStart)
}

// StartCapture acquires the device and begins accumulating chunks for the
// current prompt. The negotiated content type tags the finished segment.
func (w *Wizard) StartCapture(dev Device, contentType string) error {
	if w.state != StateIdle {
		return fmt.Errorf("cannot start capture in state %s", w.state)
	}
	if contentType == "" {
		contentType = "audio/webm"
	}
	w.device = dev
	w.contentType = contentType
	w.captureStart = w.cfg.Now()
	w.chunks = nil
	w.state = StateCapturing
	return nil
}

// AppendChunk adds one captured chunk. Chunks are only concatenated at
// StopCapture; nothing observes a partial segment mid-capture.
func (w *Wizard) AppendChunk(b []byte) error {
	if w.state != StateCapturing {
		return fmt.Errorf("cannot append chunk in state %s", w.state)
	}
	if len(b) == 0 {
		return nil
	}
	chunk := make([]byte, len(b))
	copy(chunk, b)
	w.chunks = append(w.chunks, chunk)
	return nil
}

// StopCapture finalizes the current capture into a pending segment and
// releases the device. Below the quality threshold it refuses with
// ErrShortCapture unless force is set, and keeps capturing.
func (w *Wizard) StopCapture(force bool) error {
	if w.state != StateCapturing {
		return fmt.Errorf("cannot stop capture in state %s", w.state)
	}
	if !force && w.Elapsed() < w.cfg.MinCapture {
		return ErrShortCapture
	}

	var size int
	for _, c := range w.chunks {
		size += len(c)
	}
	data := make([]byte, 0, size)
	for _, c := range w.chunks {
		data = append(data, c...)
	}

	w.releaseDevice()
	w.chunks = nil
	w.pending = &store.Segment{Data: data, ContentType: w.contentType}
	w.state = StateCaptured
	return nil
}

// Confirm accepts the pending segment for the current prompt, overwriting
// any earlier take at the same ordinal, and advances to the next prompt or
// to the complete state.
func (w *Wizard) Confirm() error {
	if w.state != StateCaptured {
		return fmt.Errorf("cannot confirm in state %s", w.state)
	}

	w.segments[w.step] = *w.pending
	w.recorded[w.step] = true
	w.pending = nil

	if w.step+1 < w.cfg.PromptCount {
		w.step++
		w.state = StateIdle
	} else {
		w.state = StateComplete
	}
	return nil
}

// Rerecord discards the pending segment and returns to idle for the same
// prompt, resetting the per-prompt timer.
func (w *Wizard) Rerecord() error {
	if w.state != StateCaptured {
		return fmt.Errorf("cannot re-record in state %s", w.state)
	}
	w.pending = nil
	w.captureStart = time.Time{}
	w.state = StateIdle
	return nil
}

// Abort drops any in-flight capture or pending segment and returns to idle
// at the same prompt. Used on device errors; the device is released and no
// partial data is retained.
func (w *Wizard) Abort() {
	if w.state == StateComplete {
		return
	}
	w.releaseDevice()
	w.chunks = nil
	w.pending = nil
	w.state = StateIdle
}

// Segments returns the ordered Recording Set. Only valid once complete.
func (w *Wizard) Segments() ([]store.Segment, error) {
	if w.state != StateComplete {
		return nil, fmt.Errorf("recording run not complete (state %s, prompt %d)", w.state, w.step)
	}
	out := make([]store.Segment, len(w.segments))
	copy(out, w.segments)
	return out, nil
}

// releaseDevice is the single release point for the capture device.
func (w *Wizard) releaseDevice() {
	if w.device != nil {
		_ = w.device.Stop()
		w.device = nil
	}
}
