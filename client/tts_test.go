package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTTSSynthesize(t *testing.T) {
	var gotPath, gotFormat, gotKey, gotAccept string
	var gotReq ttsRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		gotKey = r.Header.Get("xi-api-key")
		gotAccept = r.Header.Get("Accept")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "narration.mp3")
	c := NewTTSClient(server.URL, "voice-key", "custom-voice")
	if err := c.Synthesize(context.Background(), "One, two, three!", outputPath); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if gotPath != "/text-to-speech/custom-voice" {
		t.Errorf("Expected voice in path, got %s", gotPath)
	}
	if gotFormat != "mp3_44100_128" {
		t.Errorf("Expected mp3_44100_128 output format, got %s", gotFormat)
	}
	if gotKey != "voice-key" {
		t.Errorf("Expected xi-api-key header, got %q", gotKey)
	}
	if gotAccept != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg accept header, got %q", gotAccept)
	}
	if gotReq.Text != "One, two, three!" {
		t.Errorf("Expected text in request, got %q", gotReq.Text)
	}
	if gotReq.ModelID != "eleven_multilingual_v2" {
		t.Errorf("Expected multilingual model, got %s", gotReq.ModelID)
	}
	if gotReq.VoiceSettings.Stability != 0.35 || gotReq.VoiceSettings.SimilarityBoost != 0.80 {
		t.Errorf("Expected stability 0.35 and similarity 0.80, got %+v", gotReq.VoiceSettings)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("Expected audio bytes on disk, got %q", string(data))
	}
}

func TestTTSDefaultVoice(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	c := NewTTSClient(server.URL, "key", "")
	if err := c.Synthesize(context.Background(), "Hello there", outputPath); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if gotPath != "/text-to-speech/"+DefaultVoiceID {
		t.Errorf("Expected default voice in path, got %s", gotPath)
	}
}

func TestTTSErrorKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	c := NewTTSClient(server.URL, "bad-key", "")
	err := c.Synthesize(context.Background(), "Hello", outputPath)
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("Expected response body in error, got: %v", err)
	}
	if _, statErr := os.Stat(outputPath); statErr == nil {
		t.Error("Expected no output file after a failed request")
	}
}
