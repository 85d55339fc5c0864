package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-annotation-be/pkg/provider"
)

// GoogleProvider talks to the speech-to-text and translation HTTP endpoints.
// The base URL is configurable so tests and self-hosted gateways can stand in
// for the real service.
type GoogleProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Ensure GoogleProvider implements AnnotationProvider
var _ provider.AnnotationProvider = &GoogleProvider{}

func NewGoogleProvider(baseURL, apiKey string) *GoogleProvider {
	return &GoogleProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type transcribeRequest struct {
	MediaURL     string `json:"media_url"`
	LanguageCode string `json:"language_code"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error,omitempty"`
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Error          string `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (g *GoogleProvider) Transcribe(ctx context.Context, req provider.TranscriptionRequest) (string, error) {
	if req.MediaURL == "" {
		return "", fmt.Errorf("transcription requires a media url")
	}
	payload := transcribeRequest{
		MediaURL:     req.MediaURL,
		LanguageCode: req.Language,
	}

	var res transcribeResponse
	if err := g.post(ctx, "/v1/speech:recognize", payload, &res); err != nil {
		return "", err
	}
	if res.Error != "" {
		return "", fmt.Errorf("provider rejected transcription: %s", res.Error)
	}
	return res.Transcript, nil
}

func (g *GoogleProvider) Translate(ctx context.Context, req provider.TranslationRequest) (string, error) {
	if req.SourceText == "" {
		return "", fmt.Errorf("translation requires source text")
	}
	payload := translateRequest{
		Text:           req.SourceText,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	}

	var res translateResponse
	if err := g.post(ctx, "/v2/translate", payload, &res); err != nil {
		return "", err
	}
	if res.Error != "" {
		return "", fmt.Errorf("provider rejected translation: %s", res.Error)
	}
	return res.TranslatedText, nil
}

func (g *GoogleProvider) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal provider request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
