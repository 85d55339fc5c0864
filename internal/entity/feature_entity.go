// Domain entity for annotation features
package entity

import (
	"time"

	"github.com/google/uuid"
)

// FeatureParam enables one language (or one qual sub-question) within a
// feature. Exactly one of Language / QuestionUuid is set depending on the
// action kind.
type FeatureParam struct {
	Language     string `json:"language,omitempty"`
	QuestionUuid string `json:"question_uuid,omitempty"`
}

// Feature is the per-(question, action) configuration record. It must exist
// and include the requested language before the backend accepts a generation
// or edit request for that language. Params are ordered; no language may
// appear twice.
type Feature struct {
	Uid           uuid.UUID
	QuestionXPath string // stable per-form question identifier
	Action        string // catalog action, e.g. automatic_google_transcription
	Params        []FeatureParam
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasLanguage reports whether the feature already enables the language.
func (f *Feature) HasLanguage(language string) bool {
	for _, p := range f.Params {
		if p.Language == language {
			return true
		}
	}
	return false
}

// HasQuestionUuid reports whether the feature already enables the qual
// sub-question.
func (f *Feature) HasQuestionUuid(questionUuid string) bool {
	for _, p := range f.Params {
		if p.QuestionUuid == questionUuid {
			return true
		}
	}
	return false
}
