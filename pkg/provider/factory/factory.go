package factory

import (
	"fmt"

	"ai-annotation-be/pkg/provider"
	"ai-annotation-be/pkg/provider/google"
)

func NewAnnotationProvider(providerType, baseURL, apiKey string) (provider.AnnotationProvider, error) {
	switch providerType {
	case "google":
		if baseURL == "" {
			baseURL = "https://speech.googleapis.com" // Default
		}
		return google.NewGoogleProvider(baseURL, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported annotation provider: %s", providerType)
	}
}
