// Domain entity for annotation versions
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Version is one record in an annotation's append-only history. Records are
// never edited in place: "editing" appends a new record, "discarding" appends
// a record whose Value is nil, and the only in-place transitions are the
// provider job leaving in_progress and a human setting DateAccepted.
type Version struct {
	Uuid             uuid.UUID
	SubmissionRootId uuid.UUID
	QuestionXPath    string
	Action           string
	Language         string  // empty for qual codes
	QualQuestionUuid string  // qual sub-question id, empty otherwise
	Value            *string // nil = cleared (discard) or not yet produced
	Status           string  // "" manual | in_progress | completed | failed
	DateCreated      time.Time
	DateAccepted     *time.Time
}

// GroupKey is the key the version's history is grouped under when resolving:
// language for transcripts/translations, sub-question uuid for qual codes.
func (v *Version) GroupKey() string {
	if v.QualQuestionUuid != "" {
		return v.QualQuestionUuid
	}
	return v.Language
}
