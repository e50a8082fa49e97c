package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultVoiceID is the stock narrator voice used when none is configured.
const DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"

const ttsModelID = "eleven_multilingual_v2"

// TTSClient talks to an ElevenLabs-style text-to-speech endpoint and
// writes the synthesized audio straight to disk.
type TTSClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voiceID    string
}

type ttsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string           `json:"text"`
	ModelID       string           `json:"model_id"`
	VoiceSettings ttsVoiceSettings `json:"voice_settings"`
}

// NewTTSClient creates a client for the given endpoint. An empty voiceID
// falls back to DefaultVoiceID.
func NewTTSClient(baseURL, apiKey, voiceID string) *TTSClient {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	return &TTSClient{
		// Synthesis of a long chunk can take a while on the provider side.
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		voiceID:    voiceID,
	}
}

// IsConfigured reports whether an API key is present.
func (c *TTSClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Synthesize converts text to speech and writes the MP3 to outputPath.
func (c *TTSClient) Synthesize(ctx context.Context, text, outputPath string) error {
	reqBody := ttsRequest{
		Text:    text,
		ModelID: ttsModelID,
		VoiceSettings: ttsVoiceSettings{
			Stability:       0.35,
			SimilarityBoost: 0.80,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal tts request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=mp3_44100_128", c.baseURL, url.PathEscape(c.voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("tts", resp)
	}
	return saveBody(resp, outputPath)
}
