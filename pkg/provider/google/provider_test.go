package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-annotation-be/pkg/provider"
)

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speech:recognize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", got)
		}

		var req transcribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.MediaURL != "https://media.example/a.mp3" || req.LanguageCode != "en" {
			t.Errorf("unexpected payload %+v", req)
		}

		json.NewEncoder(w).Encode(transcribeResponse{Transcript: "hello world"})
	}))
	defer server.Close()

	p := NewGoogleProvider(server.URL, "test-key")
	got, err := p.Transcribe(context.Background(), provider.TranscriptionRequest{
		MediaURL: "https://media.example/a.mp3",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if got != "hello world" {
		t.Errorf("unexpected transcript %q", got)
	}
}

func TestTranscribeRequiresMediaURL(t *testing.T) {
	p := NewGoogleProvider("http://unused", "")
	if _, err := p.Transcribe(context.Background(), provider.TranscriptionRequest{Language: "en"}); err == nil {
		t.Fatal("expected error for missing media url")
	}
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.SourceLanguage != "en" || req.TargetLanguage != "es" {
			t.Errorf("unexpected payload %+v", req)
		}
		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "hola mundo"})
	}))
	defer server.Close()

	p := NewGoogleProvider(server.URL, "")
	got, err := p.Translate(context.Background(), provider.TranslationRequest{
		SourceText:     "hello world",
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got != "hola mundo" {
		t.Errorf("unexpected translation %q", got)
	}
}

func TestProviderErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{Error: "unsupported language pair"})
	}))
	defer server.Close()

	p := NewGoogleProvider(server.URL, "")
	if _, err := p.Translate(context.Background(), provider.TranslationRequest{
		SourceText:     "hello",
		SourceLanguage: "en",
		TargetLanguage: "xx",
	}); err == nil {
		t.Fatal("expected the provider error to surface")
	}
}

func TestNon200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewGoogleProvider(server.URL, "")
	if _, err := p.Transcribe(context.Background(), provider.TranscriptionRequest{
		MediaURL: "https://media.example/a.mp3",
		Language: "en",
	}); err == nil {
		t.Fatal("expected an error on non-200 status")
	}
}
