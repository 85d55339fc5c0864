package store

import "strings"

// State is the explicit generation-workflow state. Transitions are handled
// exhaustively in the workflow service; encoding the machine as a tagged value
// keeps illegal combinations (such as editing without a draft) checkable in
// one place instead of scattered boolean flags.
type State string

const (
	StateBegin            State = "BEGIN"             // no version exists yet
	StateSelectLanguage   State = "SELECT_LANGUAGE"   // picking a language to annotate
	StateManualCreate     State = "MANUAL_CREATE"     // drafting a first manual value
	StateAutomaticPending State = "AUTOMATIC_PENDING" // provider job outstanding
	StateViewing          State = "VIEWING"           // resolved value on screen
	StateEditing          State = "EDITING"           // drafting over an existing value
)

// Draft is the ephemeral unsaved edit. It is never persisted: it is promoted
// to a version-creating mutation on save and dropped on cancel or navigation.
type Draft struct {
	LanguageCode string  `json:"language_code"`
	Value        *string `json:"value"`
}

// ReviewSession is the per-(user, question, kind, group) workflow context.
// It is created when the question view opens and destroyed when it closes;
// nothing about it is global.
type ReviewSession struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Role             string `json:"role"`
	SubmissionRootID string `json:"submission_root_id"`
	QuestionXPath    string `json:"question_xpath"`
	Kind             string `json:"kind"`      // transcription | translation | qual
	GroupKey         string `json:"group_key"` // language code or qual question uuid

	State State  `json:"state"`
	Draft *Draft `json:"draft,omitempty"`

	// Accept-vs-fork bookkeeping: the unaccepted automatic version the editor
	// was seeded from, if any, and the exact seed value.
	ReviewedVersionUuid string  `json:"reviewed_version_uuid,omitempty"`
	SeedValue           *string `json:"seed_value,omitempty"`

	// Set when a generation request went out and no terminal state has been
	// observed yet; keeps the poller alive across slice refreshes that may not
	// contain the new row yet.
	AwaitingGeneration bool `json:"awaiting_generation"`

	// Replace-generation of the supplement store this session last observed.
	// Used as the stale-response guard for async completions.
	ObservedGeneration uint64 `json:"observed_generation"`
}

// SessionKey builds the cache key a session lives under.
func SessionKey(userID, submissionRootID, xpath, kind, groupKey string) string {
	return strings.Join([]string{userID, submissionRootID, xpath, kind, groupKey}, "|")
}

// CanEdit reports whether the session is in a state where a draft may be
// mutated.
func (s *ReviewSession) CanEdit() bool {
	return s.State == StateManualCreate || s.State == StateEditing
}
