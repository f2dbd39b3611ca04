package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/voicebank/voicebank/internal/speech/backends/restutil"
	"github.com/voicebank/voicebank/internal/speech/engine"
	"github.com/voicebank/voicebank/internal/speech/registry"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Labels submitted with every clone request. They describe the recording
// sessions the product collects and help the provider fit the model.
var cloneLabels = map[string]string{
	"accent":      "neutral",
	"description": "natural conversational voice",
	"age":         "adult",
	"gender":      "neutral",
	"use_case":    "conversational",
}

const cloneDescription = "Voice created via VoiceBank - Professional voice banking for accessibility"

func init() {
	registry.Clone.Register("elevenlabs", func(config map[string]string) (engine.CloneEngine, error) {
		c, err := newClient(config)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	registry.TTS.Register("elevenlabs", func(config map[string]string) (engine.TTSEngine, error) {
		c, err := newClient(config)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Client talks to the ElevenLabs REST API. It implements both the clone
// and the TTS engine interfaces.
type Client struct {
	apiKey  string
	baseURL string
	model   string

	stability    float64
	similarity   float64
	style        float64
	speakerBoost bool
}

func newClient(config map[string]string) (*Client, error) {
	apiKey := config["elevenlabs_api_key"]
	if apiKey == "" {
		apiKey = config["api_key"]
	}
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs API key required (set elevenlabs_api_key in config)")
	}

	baseURL := config["base_url"]
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config["model"]
	if model == "" {
		model = "eleven_multilingual_v2"
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		// Tuned for fidelity to the banked voice over expressiveness.
		stability:    parseFloat(config["stability"], 0.55),
		similarity:   parseFloat(config["similarity_boost"], 0.95),
		style:        parseFloat(config["style"], 0.0),
		speakerBoost: config["use_speaker_boost"] != "false",
	}, nil
}

type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

// CloneVoice submits all samples in one multipart request to /v1/voices/add
// and returns the provider's voice identifier.
func (c *Client) CloneVoice(_ context.Context, name string, samples []engine.Sample) (string, error) {
	labels, err := json.Marshal(cloneLabels)
	if err != nil {
		return "", fmt.Errorf("marshal labels: %w", err)
	}

	fields := map[string]string{
		"name":        name,
		"description": cloneDescription,
		"labels":      string(labels),
	}

	files := make([]restutil.FilePart, 0, len(samples))
	for _, s := range samples {
		files = append(files, restutil.FilePart{
			FieldName:   "files",
			FileName:    s.Name,
			ContentType: s.ContentType,
			Data:        s.Data,
		})
	}

	headers := map[string]string{"xi-api-key": c.apiKey}

	var resp addVoiceResponse
	if err := restutil.DoMultipart("POST", c.baseURL+"/v1/voices/add", headers, fields, files, &resp); err != nil {
		return "", fmt.Errorf("elevenlabs clone: %s", providerDetail(err))
	}
	if resp.VoiceID == "" {
		return "", fmt.Errorf("elevenlabs clone: response missing voice_id")
	}
	return resp.VoiceID, nil
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize posts text to /v1/text-to-speech/{voice} and drains the full
// audio response into memory.
func (c *Client) Synthesize(_ context.Context, text string, voiceID string) ([]byte, error) {
	apiURL := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)

	headers := map[string]string{
		"xi-api-key":   c.apiKey,
		"Content-Type": "application/json",
		"Accept":       "audio/mpeg",
	}

	req := ttsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
			Style:           c.style,
			UseSpeakerBoost: c.speakerBoost,
		},
	}

	body, err := restutil.DoRaw("POST", apiURL, headers, marshalJSON(req))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs TTS: %s", providerDetail(err))
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs TTS read: %w", err)
	}
	return audio, nil
}

// ContentType reports the media type of synthesized artifacts.
func (c *Client) ContentType() string { return "audio/mpeg" }

func (c *Client) Close() error { return nil }

// providerDetail extracts the most specific human-readable message from a
// provider error body. ElevenLabs nests messages inconsistently, so probe
// detail.message, then message, then a plain detail string, falling back
// to the raw body.
func providerDetail(err error) string {
	var se *restutil.StatusError
	if !errors.As(err, &se) {
		return err.Error()
	}

	var probe struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(se.Body, &probe) == nil {
		if len(probe.Detail) > 0 {
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(probe.Detail, &nested) == nil && nested.Message != "" {
				return nested.Message
			}
			var plain string
			if json.Unmarshal(probe.Detail, &plain) == nil && plain != "" {
				return plain
			}
		}
		if probe.Message != "" {
			return probe.Message
		}
	}
	if len(se.Body) > 0 {
		return string(se.Body)
	}
	return err.Error()
}

func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func marshalJSON(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}
