package engine

import "context"

// Sample is one named audio file submitted to a voice cloning provider.
type Sample struct {
	Name        string
	ContentType string
	Data        []byte
}

// CloneEngine creates a cloned voice from recorded audio samples and
// returns the provider's opaque voice identifier.
type CloneEngine interface {
	CloneVoice(ctx context.Context, name string, samples []Sample) (string, error)
	Close() error
}

// TTSEngine synthesizes speech from text in a previously cloned voice.
// The returned artifact is the fully drained audio payload; callers play
// or download it as a unit, so nothing here streams.
type TTSEngine interface {
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)
	ContentType() string
	Close() error
}
