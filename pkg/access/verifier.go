package access

import "strings"

// Verifier answers the can-change-submission capability question. The answer
// is advisory on the read path (it only dims controls); every write path
// re-checks before mutating.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// Roles that may change submission annotations.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// CanChangeSubmission reports whether the caller may create, edit, accept or
// discard annotation versions on the submission. Owners and editors can;
// viewers never can.
func (v *Verifier) CanChangeSubmission(role string, userId, submissionOwnerId string) bool {
	switch strings.ToLower(role) {
	case RoleOwner:
		return true
	case RoleEditor:
		return true
	case RoleViewer:
		return false
	default:
		// Unknown roles fall back to ownership.
		return userId != "" && userId == submissionOwnerId
	}
}
