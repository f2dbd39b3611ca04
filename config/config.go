package config

import (
	"time"

	"github.com/pitabwire/frame/config"
)

// VoicebankConfig holds configuration for the voicebank service.
type VoicebankConfig struct {
	config.ConfigurationDefault

	// Voice provider
	ElevenLabsAPIKey  string  `envDefault:""                          env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string  `envDefault:"https://api.elevenlabs.io" env:"ELEVENLABS_BASE_URL"`
	CloneBackend      string  `envDefault:"elevenlabs"                env:"CLONE_BACKEND"`
	TTSBackend        string  `envDefault:"elevenlabs"                env:"TTS_BACKEND"`
	SynthesisModel    string  `envDefault:"eleven_multilingual_v2"    env:"SYNTHESIS_MODEL"`
	VoiceStability    float64 `envDefault:"0.55"                      env:"VOICE_STABILITY"`
	VoiceSimilarity   float64 `envDefault:"0.95"                      env:"VOICE_SIMILARITY"`
	VoiceStyle        float64 `envDefault:"0.0"                       env:"VOICE_STYLE"`
	VoiceSpeakerBoost bool    `envDefault:"true"                      env:"VOICE_SPEAKER_BOOST"`

	// Audio acceptance thresholds. Byte counts, not decoded durations:
	// the provider rejects unusably short uploads anyway, so these only
	// need to catch obviously broken segments before we spend a call.
	MinSegmentBytes   int `envDefault:"1000"  env:"MIN_SEGMENT_BYTES"`
	MinTotalBytes     int `envDefault:"10000" env:"MIN_TOTAL_BYTES"`
	MinCaptureSeconds int `envDefault:"30"    env:"MIN_CAPTURE_SECONDS"`

	// Recording prompts
	PromptsDir string `envDefault:"" env:"PROMPTS_DIR"`

	// Transient recording store
	RecordingStoreBackend string `envDefault:"memory"     env:"RECORDING_STORE_BACKEND"`
	MinioEndpoint         string `envDefault:""           env:"MINIO_ENDPOINT"`
	MinioAccessKey        string `envDefault:""           env:"MINIO_ACCESS_KEY"`
	MinioSecretKey        string `envDefault:""           env:"MINIO_SECRET_KEY"`
	MinioBucket           string `envDefault:"recordings" env:"MINIO_BUCKET"`
	MinioUseSSL           bool   `envDefault:"false"      env:"MINIO_USE_SSL"`

	// Wizard sessions
	WizardSessionTTLMin int `envDefault:"60" env:"WIZARD_SESSION_TTL_MIN"`

	// Phrase cache
	CacheBackend  string `envDefault:"local"          env:"CACHE_BACKEND"`
	RedisAddr     string `envDefault:"localhost:6379" env:"REDIS_ADDR"`
	RedisPassword string `envDefault:""               env:"REDIS_PASSWORD"`
	RedisDB       int    `envDefault:"0"              env:"REDIS_DB"`
	CacheTTLMin   int    `envDefault:"1440"           env:"CACHE_TTL_MIN"`

	// Worker pool
	WorkerPoolCount    int `envDefault:"4"   env:"WORKER_POOL_COUNT"`
	WorkerPoolCapacity int `envDefault:"100" env:"WORKER_POOL_CAPACITY"`
}

// WizardSessionTTL returns the wizard session TTL as a duration.
func (c *VoicebankConfig) WizardSessionTTL() time.Duration {
	return time.Duration(c.WizardSessionTTLMin) * time.Minute
}

// CacheTTL returns the phrase cache TTL as a duration.
func (c *VoicebankConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMin) * time.Minute
}
