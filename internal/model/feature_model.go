// GORM model for the annotation_features table
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Feature configures one (question, action) annotation pipeline. Params is an
// ordered JSONB array of {language} / {question_uuid} objects.
type Feature struct {
	Uid           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuestionXPath string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_feature_question_action"`
	Action        string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_feature_question_action"`
	Params        datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (Feature) TableName() string {
	return "annotation_features"
}
