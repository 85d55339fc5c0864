package dto

import "github.com/google/uuid"

// PublishGenerationJobMessage is the payload queued for the generation worker
// when an automatic annotation is requested.
type PublishGenerationJobMessage struct {
	VersionUuid      uuid.UUID `json:"version_uuid"`
	SubmissionRootId uuid.UUID `json:"submission_root_id"`
	QuestionXPath    string    `json:"question_xpath"`
	Action           string    `json:"action"`
	Language         string    `json:"language"`
	MediaURL         string    `json:"media_url,omitempty"`
}
