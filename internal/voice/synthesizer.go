package voice

import (
	"context"
	"fmt"

	"github.com/pitabwire/util"

	"github.com/voicebank/voicebank/internal/speech/engine"
	"github.com/voicebank/voicebank/pkg/events"
)

// Synthesizer turns text into audio using a previously cloned voice.
type Synthesizer struct {
	engine    engine.TTSEngine
	publisher *events.Publisher
}

// NewSynthesizer wires a synthesis orchestrator.
func NewSynthesizer(eng engine.TTSEngine, publisher *events.Publisher) *Synthesizer {
	return &Synthesizer{engine: eng, publisher: publisher}
}

// Synthesize renders text in the given voice and returns the audio bytes
// plus their content type. Empty text or voiceID fails before any provider
// traffic.
func (s *Synthesizer) Synthesize(ctx context.Context, ownerID, text, voiceID string) ([]byte, string, error) {
	if text == "" {
		return nil, "", fmt.Errorf("%w: text", ErrMissingParameter)
	}
	if voiceID == "" {
		return nil, "", fmt.Errorf("%w: voice", ErrMissingParameter)
	}

	audio, err := s.engine.Synthesize(ctx, text, voiceID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	if err = s.publisher.Emit(ctx, events.SynthesisCompleted, ownerID, events.SynthesisCompletedData{
		VoiceID:    voiceID,
		TextLength: len(text),
		AudioBytes: len(audio),
	}); err != nil {
		util.Log(ctx).WithError(err).Warn("failed to emit synthesis.completed event")
	}

	return audio, s.engine.ContentType(), nil
}
