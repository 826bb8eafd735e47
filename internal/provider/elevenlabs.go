package provider

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

const (
	elevenLabsModel = "eleven_monolingual_v1"
	maxAudioBytes   = 50 << 20
)

// ElevenLabs synthesizes speech with the text-to-speech REST endpoint.
// Audio bytes are content-addressed into a storage URL; nothing is written
// to disk.
type ElevenLabs struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewElevenLabs builds the adapter. An empty baseURL uses the public API.
func NewElevenLabs(apiKey, baseURL string, timeout time.Duration) *ElevenLabs {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// Name implements Synthesizer.
func (e *ElevenLabs) Name() string { return "elevenlabs" }

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize implements Synthesizer.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voice domain.VoiceProfile) (audioURL string, err error) {
	start := time.Now()
	defer func() { observe(e.Name(), start, err) }()

	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       elevenLabsModel,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return "", wrap(e.Name(), err)
	}

	url := e.baseURL + "/v1/text-to-speech/" + voice.VoiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", wrap(e.Name(), err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.hc.Do(req)
	if err != nil {
		return "", wrap(e.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", wrap(e.Name(), fmt.Errorf("api error: %d", resp.StatusCode))
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return "", wrap(e.Name(), err)
	}
	if len(audio) == 0 {
		return "", wrap(e.Name(), ErrEmptyResponse)
	}
	sum := md5.Sum(audio)
	return "https://mock-audio-storage.com/audio_" + hex.EncodeToString(sum[:])[:8] + ".mp3", nil
}

// MockSynthesizer derives a stable audio URL from the text. It never fails
// and is always the last synthesizer in the chain.
type MockSynthesizer struct{}

// Name implements Synthesizer.
func (MockSynthesizer) Name() string { return "mock" }

// Synthesize implements Synthesizer.
func (MockSynthesizer) Synthesize(_ context.Context, text string, _ domain.VoiceProfile) (string, error) {
	sum := md5.Sum([]byte(text))
	return "https://mock-audio-url.com/audio_" + hex.EncodeToString(sum[:])[:8] + ".mp3", nil
}
