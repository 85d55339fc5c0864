package dto

import (
	"time"

	"github.com/google/uuid"
)

// VersionItemResponse mirrors one record of an annotation history.
type VersionItemResponse struct {
	Uuid         uuid.UUID  `json:"uuid"`
	DateCreated  time.Time  `json:"date_created"`
	DateAccepted *time.Time `json:"date_accepted,omitempty"`
	Language     string     `json:"language,omitempty"`
	QuestionUuid string     `json:"question_uuid,omitempty"`
	Value        *string    `json:"value"`
	Status       string     `json:"status,omitempty"`
}

// GetSupplementResponse is the wholesale slice for one question:
// action -> group key -> history in creation order.
type GetSupplementResponse struct {
	SubmissionRootId uuid.UUID                                  `json:"submission_root_id"`
	QuestionXPath    string                                     `json:"question_xpath"`
	Versions         map[string]map[string][]VersionItemResponse `json:"versions"`
}

// ResolvedSupplementResponse is the collapsed "current" view.
type ResolvedSupplementResponse struct {
	Transcript   *VersionItemResponse           `json:"transcript,omitempty"`
	Translations map[string]VersionItemResponse `json:"translations"`
}

type SaveManualRequest struct {
	SubmissionRootId uuid.UUID `json:"submission_root_id" validate:"required"`
	QuestionXPath    string    `json:"question_xpath" validate:"required"`
	Kind             string    `json:"kind" validate:"required,oneof=transcription translation qual"`
	Language         string    `json:"language"`
	QualQuestionUuid string    `json:"qual_question_uuid"`
	Value            *string   `json:"value"`
}

type SaveManualResponse struct {
	Uuid     uuid.UUID `json:"uuid"`
	Accepted bool      `json:"accepted"` // true when the save resolved to an accept, not a fork
	State    string    `json:"state"`
}

type RequestAutomaticRequest struct {
	SubmissionRootId uuid.UUID `json:"submission_root_id" validate:"required"`
	QuestionXPath    string    `json:"question_xpath" validate:"required"`
	Kind             string    `json:"kind" validate:"required,oneof=transcription translation"`
	Language         string    `json:"language" validate:"required"`
	// Transcription only: where the worker finds the recording. Media storage
	// itself is outside this service.
	MediaURL string `json:"media_url"`
}

type RequestAutomaticResponse struct {
	Uuid  uuid.UUID `json:"uuid"`
	State string    `json:"state"`
}

// AcceptRequest confirms an automatic version as-is, without editing.
type AcceptRequest struct {
	SubmissionRootId uuid.UUID `json:"submission_root_id" validate:"required"`
	QuestionXPath    string    `json:"question_xpath" validate:"required"`
	VersionUuid      uuid.UUID `json:"version_uuid" validate:"required"`
}

type AcceptResponse struct {
	Uuid  uuid.UUID `json:"uuid"`
	State string    `json:"state"`
}

type DiscardRequest struct {
	SubmissionRootId uuid.UUID `json:"submission_root_id" validate:"required"`
	QuestionXPath    string    `json:"question_xpath" validate:"required"`
	Kind             string    `json:"kind" validate:"required,oneof=transcription translation qual"`
	Language         string    `json:"language"`
	QualQuestionUuid string    `json:"qual_question_uuid"`
}

type DiscardResponse struct {
	Uuid  uuid.UUID `json:"uuid"`
	State string    `json:"state"`
}
