package voice

import "errors"

// Failure taxonomy for the voice orchestrators. Handlers map these onto
// HTTP statuses; everything else is an internal error.
var (
	// ErrUnauthorized means the request carries no authenticated subject.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingParameter means a required field was absent or empty.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrInsufficientAudio means the Recording Set is empty or below the
	// minimum byte thresholds. The provider is never called in this case.
	ErrInsufficientAudio = errors.New("insufficient audio")

	// ErrCloneFailed means the provider rejected the clone request. There
	// is deliberately no fallback voice: substituting someone else's voice
	// would break the product's core promise, so the failure propagates.
	ErrCloneFailed = errors.New("voice cloning failed")

	// ErrSynthesisFailed means the provider rejected the synthesis request.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrNotFound means the referenced directory record does not exist or
	// belongs to another user.
	ErrNotFound = errors.New("voice not found")
)
