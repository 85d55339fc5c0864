package dto

import (
	"time"

	"github.com/google/uuid"
)

type FeatureParamResponse struct {
	Language     string `json:"language,omitempty"`
	QuestionUuid string `json:"question_uuid,omitempty"`
}

type FeatureResponse struct {
	Uid           uuid.UUID              `json:"uid"`
	QuestionXPath string                 `json:"question_xpath"`
	Action        string                 `json:"action"`
	Params        []FeatureParamResponse `json:"params"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}
