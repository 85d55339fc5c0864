package supplement

import "strings"

// Resolution rules. All functions here are pure and total: they never panic on
// an empty or malformed slice, and absence is a nil return or empty map.

// HasValue reports whether the item carries a usable value. A nil value is a
// cleared/pending placeholder and must not be rendered as content.
func HasValue(item *VersionItem) bool {
	return item != nil && item.Data.Value != nil
}

// IsAutomatic reports whether the item came from a provider. The status field
// is the discriminator: manual payloads never carry one.
func IsAutomatic(item *VersionItem) bool {
	return item != nil && item.Data.Status != ""
}

// IsAccepted reports whether a human has confirmed the item.
func IsAccepted(item *VersionItem) bool {
	return item != nil && item.DateAccepted != nil
}

// newer orders candidates by DateCreated descending. Equal timestamps break
// ties by uuid ascending so repeated resolutions are deterministic; that is a
// local choice, not a backend guarantee.
func newer(a, b VersionItem) bool {
	if !a.DateCreated.Equal(b.DateCreated) {
		return a.DateCreated.After(b.DateCreated)
	}
	return strings.Compare(a.Uuid.String(), b.Uuid.String()) < 0
}

func latestOf(items []VersionItem) *VersionItem {
	var best *VersionItem
	for i := range items {
		if best == nil || newer(items[i], *best) {
			it := items[i]
			best = &it
		}
	}
	return best
}

// collect unions the histories of the given actions, optionally keeping only
// one group key.
func collect(slice Slice, actions []string, groupKey string) []VersionItem {
	var out []VersionItem
	for _, action := range actions {
		groups := slice[action]
		if groups == nil {
			continue
		}
		if groupKey != "" {
			out = append(out, groups[groupKey]...)
			continue
		}
		for _, items := range groups {
			out = append(out, items...)
		}
	}
	return out
}

// LatestTranscript unions the manual and automatic transcription histories and
// returns the most recent record, or nil when none exist. A pending or cleared
// record can win; callers check HasValue before rendering.
func LatestTranscript(slice Slice) *VersionItem {
	return latestOf(collect(slice, transcriptionActions, ""))
}

// LatestTranslationsByLanguage unions manual and automatic translation
// histories, groups them by language, and resolves each group independently.
// Groups whose latest record has no usable value are dropped unless
// includeWithoutValue is set.
func LatestTranslationsByLanguage(slice Slice, includeWithoutValue bool) map[string]VersionItem {
	byLanguage := make(map[string][]VersionItem)
	for _, item := range collect(slice, translationActions, "") {
		lang := item.Data.Language
		byLanguage[lang] = append(byLanguage[lang], item)
	}

	out := make(map[string]VersionItem, len(byLanguage))
	for lang, items := range byLanguage {
		latest := latestOf(items)
		if latest == nil {
			continue
		}
		if !includeWithoutValue && !HasValue(latest) {
			continue
		}
		out[lang] = *latest
	}
	return out
}

// LatestTranslation resolves a single language.
func LatestTranslation(slice Slice, language string) *VersionItem {
	var candidates []VersionItem
	for _, item := range collect(slice, translationActions, "") {
		if item.Data.Language == language {
			candidates = append(candidates, item)
		}
	}
	return latestOf(candidates)
}

// LatestQual resolves the history of one qual sub-question.
func LatestQual(slice Slice, questionUuid string) *VersionItem {
	if questionUuid == "" {
		return nil
	}
	return latestOf(collect(slice, qualActions(slice), questionUuid))
}

var (
	transcriptionActions = []string{"manual_transcription", "automatic_google_transcription"}
	translationActions   = []string{"manual_translation", "automatic_google_translation"}
)

// qualActions discovers qual actions present in the slice, since automatic
// qual actions are provider-parameterized (automatic_<provider>_qual).
func qualActions(slice Slice) []string {
	actions := []string{"manual_qual"}
	for action := range slice {
		if action != "manual_qual" && strings.HasSuffix(action, "_qual") {
			actions = append(actions, action)
		}
	}
	return actions
}
