package report

// VerificationStatus is the match completion state derived from the two
// per-team verification flags.
type VerificationStatus string

const (
	Unverified        VerificationStatus = "unverified"
	PartiallyVerified VerificationStatus = "partially_verified"
	FullyVerified     VerificationStatus = "fully_verified"
)

func StatusOf(homeVerified, awayVerified bool) VerificationStatus {
	switch {
	case homeVerified && awayVerified:
		return FullyVerified
	case homeVerified || awayVerified:
		return PartiallyVerified
	default:
		return Unverified
	}
}

// Eligibility says which sides the submitting user may verify. It comes
// from the authorization layer, never from the client.
type Eligibility struct {
	Home bool
	Away bool
}

func (e Eligibility) Any() bool { return e.Home || e.Away }

// AdvanceVerification merges a submission's verify flags into the stored
// flags. Transitions only move forward: a stored true is never unset,
// and a request can only set a side the caller is eligible for.
func AdvanceVerification(
	storedHome, storedAway bool,
	verifyHome, verifyAway bool,
	eligibility Eligibility,
) (home, away bool) {
	home = storedHome || (verifyHome && eligibility.Home)
	away = storedAway || (verifyAway && eligibility.Away)
	return home, away
}
