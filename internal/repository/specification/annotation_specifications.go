package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByQuestion filters versions/features by the question xpath
type ByQuestion struct {
	XPath string
}

func (s ByQuestion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("question_x_path = ?", s.XPath)
}

// BySubmission filters versions by the submission root id
type BySubmission struct {
	SubmissionRootId uuid.UUID
}

func (s BySubmission) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("submission_root_id = ?", s.SubmissionRootId)
}

// ByAction filters by the annotation action
type ByAction struct {
	Action string
}

func (s ByAction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("action = ?", s.Action)
}

// ByLanguage filters versions by language code
type ByLanguage struct {
	Language string
}

func (s ByLanguage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("language = ?", s.Language)
}

// ByStatus filters versions by automatic job status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
