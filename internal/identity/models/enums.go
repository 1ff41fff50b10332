package models

// PersonType is the role a person plays in the records.
type PersonType string

const (
	PersonTypeEnslaved    PersonType = "enslaved"
	PersonTypeSlaveholder PersonType = "slaveholder"
	PersonTypeDescendant  PersonType = "descendant"
	PersonTypeUnknown     PersonType = "unknown"
)

func (t PersonType) IsValid() bool {
	switch t {
	case PersonTypeEnslaved, PersonTypeSlaveholder, PersonTypeDescendant, PersonTypeUnknown:
		return true
	}
	return false
}

// OrUnknown maps empty or unrecognised values to unknown.
func (t PersonType) OrUnknown() PersonType {
	if t.IsValid() {
		return t
	}
	return PersonTypeUnknown
}

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale || s == SexUnknown
}

func (s Sex) OrUnknown() Sex {
	if s.IsValid() {
		return s
	}
	return SexUnknown
}

// VerificationStatus records how far a canonical has been confirmed.
type VerificationStatus string

const (
	VerificationAutoCreated       VerificationStatus = "auto_created"
	VerificationHumanConfirmed    VerificationStatus = "human_confirmed"
	VerificationVerifiedScholarly VerificationStatus = "verified_scholarly"
)

func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationAutoCreated, VerificationHumanConfirmed, VerificationVerifiedScholarly:
		return true
	}
	return false
}

// MatchMethod records how a variant was linked to its canonical.
type MatchMethod string

const (
	MatchMethodExact          MatchMethod = "exact"
	MatchMethodSoundex        MatchMethod = "soundex"
	MatchMethodMetaphone      MatchMethod = "metaphone"
	MatchMethodFuzzy          MatchMethod = "fuzzy"
	MatchMethodHumanConfirmed MatchMethod = "human_confirmed"
	MatchMethodAuto           MatchMethod = "auto"
	MatchMethodAutoSoundex    MatchMethod = "auto_soundex"
)

func (m MatchMethod) IsValid() bool {
	switch m {
	case MatchMethodExact, MatchMethodSoundex, MatchMethodMetaphone, MatchMethodFuzzy,
		MatchMethodHumanConfirmed, MatchMethodAuto, MatchMethodAutoSoundex:
		return true
	}
	return false
}

// QueueStatus is the review-queue state. Resolved and dismissed are terminal.
type QueueStatus string

const (
	QueueStatusPending   QueueStatus = "pending"
	QueueStatusResolved  QueueStatus = "resolved"
	QueueStatusDismissed QueueStatus = "dismissed"
)

func (s QueueStatus) IsValid() bool {
	return s == QueueStatusPending || s == QueueStatusResolved || s == QueueStatusDismissed
}

func (s QueueStatus) IsTerminal() bool {
	return s == QueueStatusResolved || s == QueueStatusDismissed
}

// ResolutionType is the outcome a reviewer records for a queue item.
type ResolutionType string

const (
	ResolutionLinkedExisting ResolutionType = "linked_existing"
	ResolutionCreatedNew     ResolutionType = "created_new"
	ResolutionNotAPerson     ResolutionType = "not_a_person"
	ResolutionDeferred       ResolutionType = "deferred"
)

func (r ResolutionType) IsValid() bool {
	switch r {
	case ResolutionLinkedExisting, ResolutionCreatedNew, ResolutionNotAPerson, ResolutionDeferred:
		return true
	}
	return false
}

// MatchType labels why a candidate was retrieved.
type MatchType string

const (
	MatchTypeExact           MatchType = "exact"
	MatchTypeSoundex         MatchType = "soundex"
	MatchTypeMetaphone       MatchType = "metaphone"
	MatchTypeSoundexLastOnly MatchType = "soundex_last_only"
	MatchTypeFirstLetter     MatchType = "first_letter"
	MatchTypeFuzzy           MatchType = "fuzzy"
	MatchTypeVariant         MatchType = "variant"
)

// Action is what the resolver did with an occurrence.
type Action string

const (
	ActionMatched         Action = "matched"
	ActionQueuedForReview Action = "queued_for_review"
	ActionCreatedNew      Action = "created_new"
)
