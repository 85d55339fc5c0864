package provider

import "context"

// TranscriptionRequest asks a provider to transcribe a recording.
type TranscriptionRequest struct {
	MediaURL string // where the provider fetches the audio/video
	Language string // expected language of the recording
}

// TranslationRequest asks a provider to translate existing text.
type TranslationRequest struct {
	SourceText     string
	SourceLanguage string
	TargetLanguage string
}

// AnnotationProvider defines the contract for any automatic annotation
// backend. Calls are synchronous from the worker's point of view; queueing
// and status bookkeeping happen above this interface.
type AnnotationProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
	Translate(ctx context.Context, req TranslationRequest) (string, error)
}
