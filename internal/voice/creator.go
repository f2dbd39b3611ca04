package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pitabwire/util"

	"github.com/voicebank/voicebank/internal/recording/store"
	"github.com/voicebank/voicebank/internal/speech/engine"
	"github.com/voicebank/voicebank/pkg/events"
)

// CreatorConfig carries the audio-quality thresholds enforced before a
// clone request is sent to the provider.
type CreatorConfig struct {
	MinSegmentBytes int
	MinTotalBytes   int
}

// Creator orchestrates voice creation: it reads the caller's Recording
// Set, validates it locally, submits it to the clone engine and records
// the resulting voice in the directory.
type Creator struct {
	store     store.Store
	engine    engine.CloneEngine
	repo      *Repository
	publisher *events.Publisher
	cfg       CreatorConfig
}

// NewCreator wires a creation orchestrator. repo and publisher may be nil;
// creation then still returns the provider handle but skips the directory
// write and event emission.
func NewCreator(st store.Store, eng engine.CloneEngine, repo *Repository, publisher *events.Publisher, cfg CreatorConfig) *Creator {
	return &Creator{
		store:     st,
		engine:    eng,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

// CreateResult is the outcome of a successful voice creation.
type CreateResult struct {
	VoiceID  string
	Name     string
	RecordID string
}

// Create clones a voice from the segments the caller recorded under
// sessionID. The set is addressed by owner and session together, so a
// session id belonging to another user reads back empty. Thresholds are
// checked before any provider traffic; an undersized set fails fast with
// ErrInsufficientAudio. A directory persistence failure after a
// successful clone is logged and swallowed so the user never loses a
// voice the provider already created.
func (c *Creator) Create(ctx context.Context, ownerID, sessionID, name string) (*CreateResult, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	setKey := store.SessionKey(ownerID, sessionID)
	segments, err := c.store.ReadAll(ctx, setKey)
	if err != nil {
		return nil, err
	}
	if err = c.validate(segments); err != nil {
		return nil, err
	}

	if name == "" {
		name = fmt.Sprintf("VoiceBank_%d", time.Now().UnixMilli())
	}

	samples := make([]engine.Sample, 0, len(segments))
	for i, seg := range segments {
		samples = append(samples, engine.Sample{
			Name:        fmt.Sprintf("recording_%d.%s", i+1, extensionFor(seg.ContentType)),
			ContentType: seg.ContentType,
			Data:        seg.Data,
		})
	}

	voiceID, err := c.engine.CloneVoice(ctx, name, samples)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloneFailed, err)
	}

	result := &CreateResult{VoiceID: voiceID, Name: name}

	if c.repo != nil {
		rec := &Voice{
			OwnerID:  ownerID,
			VoiceID:  voiceID,
			Name:     name,
			IsActive: true,
		}
		if err = c.repo.CreateVoice(ctx, rec); err != nil {
			// The provider-side voice exists; losing the directory row is
			// recoverable, losing the handle is not.
			util.Log(ctx).WithError(err).
				WithField("voice_id", voiceID).
				Error("voice cloned but directory persist failed")
		} else {
			result.RecordID = rec.ID
		}
	}

	if err = c.store.Clear(ctx, setKey); err != nil {
		util.Log(ctx).WithError(err).
			WithField("session_id", sessionID).
			Warn("failed to clear recording set after clone")
	}

	if err = c.publisher.Emit(ctx, events.VoiceCreated, ownerID, events.VoiceCreatedData{
		VoiceID: voiceID,
		Name:    name,
	}); err != nil {
		util.Log(ctx).WithError(err).Warn("failed to emit voice.created event")
	}

	return result, nil
}

func (c *Creator) validate(segments []store.Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("%w: no recordings found", ErrInsufficientAudio)
	}
	total := 0
	for i, seg := range segments {
		if len(seg.Data) < c.cfg.MinSegmentBytes {
			return fmt.Errorf("%w: recording %d is too short (%d bytes)",
				ErrInsufficientAudio, i+1, len(seg.Data))
		}
		total += len(seg.Data)
	}
	if total < c.cfg.MinTotalBytes {
		return fmt.Errorf("%w: total audio is too short (%d bytes)",
			ErrInsufficientAudio, total)
	}
	return nil
}

// extensionFor maps a capture content type onto a provider-friendly file
// extension. Browsers mostly hand over webm, which is also the fallback.
func extensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "mp4"):
		return "mp4"
	case strings.Contains(ct, "ogg"):
		return "ogg"
	case strings.Contains(ct, "wav"):
		return "wav"
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return "mp3"
	default:
		return "webm"
	}
}
