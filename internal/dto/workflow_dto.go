package dto

import "github.com/google/uuid"

type OpenWorkflowRequest struct {
	SubmissionRootId uuid.UUID `json:"submission_root_id" validate:"required"`
	QuestionXPath    string    `json:"question_xpath" validate:"required"`
	Kind             string    `json:"kind" validate:"required,oneof=transcription translation qual"`
	Language         string    `json:"language"`
	QualQuestionUuid string    `json:"qual_question_uuid"`
}

type WorkflowStateResponse struct {
	SessionId string  `json:"session_id"`
	State     string  `json:"state"`
	CanChange bool    `json:"can_change"` // advisory capability flag; backend re-checks on write
	Seed      *string `json:"seed,omitempty"`
	Draft     *string `json:"draft,omitempty"`
	// Languages already carrying a translation; hidden from the selector.
	HiddenLanguages []string `json:"hidden_languages,omitempty"`
}

type UpdateDraftRequest struct {
	SessionId string  `json:"session_id" validate:"required"`
	Value     *string `json:"value"`
}

type CloseWorkflowRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}
