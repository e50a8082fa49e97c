package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageGenerate(t *testing.T) {
	var gotReq imageGenerationRequest
	var downloads int

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer img-key" {
			t.Errorf("Expected bearer auth, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		fmt.Fprintf(w, `{"data":[{"url":"%s/hosted/scene.png"}]}`, server.URL)
	})
	mux.HandleFunc("/hosted/scene.png", func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.Write([]byte("png-bytes"))
	})

	outputPath := filepath.Join(t.TempDir(), "scene_01.png")
	c := NewImageClient(server.URL, "img-key")
	if err := c.Generate(context.Background(), "A happy cartoon elephant counting apples", outputPath); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotReq.Model != "dall-e-3" {
		t.Errorf("Expected dall-e-3 model, got %s", gotReq.Model)
	}
	if gotReq.Size != "1024x1024" {
		t.Errorf("Expected 1024x1024 size, got %s", gotReq.Size)
	}
	if gotReq.N != 1 {
		t.Errorf("Expected n=1, got %d", gotReq.N)
	}
	if !strings.Contains(gotReq.Prompt, "elephant") {
		t.Errorf("Expected prompt to be forwarded, got %q", gotReq.Prompt)
	}
	if downloads != 1 {
		t.Errorf("Expected exactly one download, got %d", downloads)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Expected downloaded bytes on disk, got %q", string(data))
	}
}

func TestImageGenerateNoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := NewImageClient(server.URL, "img-key")
	err := c.Generate(context.Background(), "prompt", filepath.Join(t.TempDir(), "out.png"))
	if err == nil {
		t.Fatal("Expected error for empty data")
	}
	if !strings.Contains(err.Error(), "no url") {
		t.Errorf("Expected no-url error, got: %v", err)
	}
}

func TestImageGenerateErrorKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
	}))
	defer server.Close()

	c := NewImageClient(server.URL, "img-key")
	err := c.Generate(context.Background(), "prompt", filepath.Join(t.TempDir(), "out.png"))
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "content policy violation") {
		t.Errorf("Expected response body in error, got: %v", err)
	}
}

func TestImageDownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"url":"%s/hosted/gone.png"}]}`, server.URL)
	})
	mux.HandleFunc("/hosted/gone.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := NewImageClient(server.URL, "img-key")
	err := c.Generate(context.Background(), "prompt", filepath.Join(t.TempDir(), "out.png"))
	if err == nil {
		t.Fatal("Expected error when the hosted image is gone")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
}
