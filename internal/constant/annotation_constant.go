// Closed catalog of annotation actions and their classification helpers.
package constant

import "strings"

// Annotation actions. Each action pairs a kind (transcription, translation,
// qualitative coding) with an origin (manual or automatic). The set is closed:
// the backend rejects anything outside this catalog.
const (
	ActionManualTranscription    = "manual_transcription"
	ActionAutomaticTranscription = "automatic_google_transcription"
	ActionManualTranslation      = "manual_translation"
	ActionAutomaticTranslation   = "automatic_google_translation"
	ActionManualQual             = "manual_qual"
	ActionAutomaticQualPrefix    = "automatic_" // automatic_<provider>_qual
	ActionQualSuffix             = "_qual"
)

// Annotation kinds (the action family, origin stripped).
const (
	KindTranscription = "transcription"
	KindTranslation   = "translation"
	KindQual          = "qual"
)

// Automatic version statuses. Manual versions carry no status at all.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// AllActions lists the statically known actions. Automatic qual actions are
// provider-parameterized and validated via IsValidAction instead.
var AllActions = []string{
	ActionManualTranscription,
	ActionAutomaticTranscription,
	ActionManualTranslation,
	ActionAutomaticTranslation,
	ActionManualQual,
}

// IsValidAction reports whether the action belongs to the closed catalog.
func IsValidAction(action string) bool {
	for _, a := range AllActions {
		if a == action {
			return true
		}
	}
	// automatic_<provider>_qual
	return strings.HasPrefix(action, ActionAutomaticQualPrefix) &&
		strings.HasSuffix(action, ActionQualSuffix) &&
		len(action) > len(ActionAutomaticQualPrefix)+len(ActionQualSuffix)
}

// IsAutomaticAction reports whether the action is provider-generated.
func IsAutomaticAction(action string) bool {
	return strings.HasPrefix(action, "automatic_")
}

// KindOfAction maps an action to its annotation kind.
// Unknown actions map to "".
func KindOfAction(action string) string {
	switch {
	case strings.HasSuffix(action, "_transcription"):
		return KindTranscription
	case strings.HasSuffix(action, "_translation"):
		return KindTranslation
	case strings.HasSuffix(action, ActionQualSuffix):
		return KindQual
	default:
		return ""
	}
}

// ManualCounterpart returns the manual action of the same kind.
// Saving an edited automatic result forks into this action.
func ManualCounterpart(action string) string {
	switch KindOfAction(action) {
	case KindTranscription:
		return ActionManualTranscription
	case KindTranslation:
		return ActionManualTranslation
	case KindQual:
		return ActionManualQual
	default:
		return ""
	}
}

// ActionsOfKind returns every known action in the kind family. The resolver
// unions their version histories when computing the effective value.
func ActionsOfKind(kind string) []string {
	switch kind {
	case KindTranscription:
		return []string{ActionManualTranscription, ActionAutomaticTranscription}
	case KindTranslation:
		return []string{ActionManualTranslation, ActionAutomaticTranslation}
	case KindQual:
		return []string{ActionManualQual}
	default:
		return nil
	}
}
