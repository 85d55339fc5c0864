// Package supplement holds the normalized in-memory view of a question's
// annotation histories and the pure resolution rules that collapse them into
// one effective "current" version per kind and language.
package supplement

import (
	"time"

	"github.com/google/uuid"
)

// Status of an automatic version. Manual versions carry an empty status;
// the presence of a status is the discriminator between the two payload shapes.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Payload is the data part of a version record.
//
// Shapes in the wild:
//   - manual with value:      {Language, Value}
//   - automatic pending:      {Language, Status: in_progress}
//   - automatic with value:   {Language, Value | nil, Status: completed|failed}
//
// Value == nil denotes a logically cleared version (the result of a discard),
// not absence of the record.
type Payload struct {
	Language     string  `json:"language,omitempty"`
	QuestionUuid string  `json:"question_uuid,omitempty"` // qual sub-question id
	Value        *string `json:"value"`
	Status       Status  `json:"status,omitempty"`
}

// VersionItem is one immutable record in an annotation's append-only history.
// DateCreated is assigned by the backend; clients never supply it.
type VersionItem struct {
	Uuid         uuid.UUID  `json:"uuid"`
	DateCreated  time.Time  `json:"date_created"`
	DateAccepted *time.Time `json:"date_accepted,omitempty"`
	Data         Payload    `json:"data"`
}

// Slice maps action -> group key -> ordered version history for one question.
// The group key is the language code for transcripts/translations and the
// qual sub-question uuid for qualitative codes. Order is insertion order
// (creation order), not necessarily date-sorted after concurrent writes.
type Slice map[string]map[string][]VersionItem

// GroupKey returns the key the item's history is grouped under.
func (v VersionItem) GroupKey() string {
	if v.Data.QuestionUuid != "" {
		return v.Data.QuestionUuid
	}
	return v.Data.Language
}

// Append adds an item to the slice under (action, group key), allocating the
// intermediate maps as needed.
func (s Slice) Append(action string, item VersionItem) {
	if s[action] == nil {
		s[action] = make(map[string][]VersionItem)
	}
	key := item.GroupKey()
	s[action][key] = append(s[action][key], item)
}

// Versions returns the history for (action, groupKey), or nil when absent.
func (s Slice) Versions(action, groupKey string) []VersionItem {
	if s == nil || s[action] == nil {
		return nil
	}
	return s[action][groupKey]
}
