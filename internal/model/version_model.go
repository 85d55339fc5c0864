// GORM model for the annotation_versions table
package model

import (
	"time"

	"github.com/google/uuid"
)

// Version is one append-only history record. Rows are only ever updated to
// leave in_progress or to stamp date_accepted; everything else is an insert.
type Version struct {
	Uuid             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubmissionRootId uuid.UUID  `gorm:"type:uuid;not null;index:idx_version_submission_question"`
	QuestionXPath    string     `gorm:"type:varchar(255);not null;index:idx_version_submission_question"`
	Action           string     `gorm:"type:varchar(100);not null;index"`
	Language         string     `gorm:"type:varchar(16)"`
	QualQuestionUuid string     `gorm:"type:varchar(64)"`
	Value            *string    `gorm:"type:text"`
	Status           string     `gorm:"type:varchar(20)"`
	DateCreated      time.Time  `gorm:"autoCreateTime"`
	DateAccepted     *time.Time `gorm:""`
}

func (Version) TableName() string {
	return "annotation_versions"
}
