package domain

import (
	"time"
)

// State names a point in the dialogue graph. The state of a session decides
// which handler processes the next inbound message.
type State string

// The full state set. OPT-OUT is terminal within a session: no handler
// advances it, and re-entry happens only through a brand-new session, which
// starts over from the greeting.
const (
	StatePreRegistration    State = "PRE-REGISTRATION"
	StateRegistration       State = "REGISTRATION"
	StateOptOut             State = "OPT-OUT"
	StateAskRaceEthnicity   State = "ASK_RACE_ETHNICITY"
	StateAskMultiracial1    State = "ASK_MULTIRACIAL1"
	StateAskMultiracial2    State = "ASK_MULTIRACIAL2"
	StateAskGender          State = "ASK_GENDER"
	StateAskGenderOther     State = "ASK_GENDER_OTHER"
	StateAskAgeGroup        State = "ASK_AGE_GROUP"
	StateMainMenu           State = "MAIN_MENU"
	StateReturningUser      State = "RETURNING_USER"
	StateResourceMenu       State = "RESOURCE_MENU"
	StateZipcodeInput       State = "ZIPCODE_INPUT"
	StateResourceView       State = "RESOURCE_VIEW"
	StateHelplineMenu       State = "HELPLINE_MENU"
	StateHelplineView       State = "HELPLINE_VIEW"
	StateNewAlertsUser      State = "NEW_ALERTS_USER"
	StateExistingAlertsUser State = "EXISTING_ALERTS_USER"
)

// registrationStates are the states of an unfinished registration survey. A
// session abandoned in one of these forces the next session back to
// PRE-REGISTRATION.
var registrationStates = map[State]bool{
	StateRegistration:     true,
	StateOptOut:           true,
	StateAskRaceEthnicity: true,
	StateAskMultiracial1:  true,
	StateAskMultiracial2:  true,
	StateAskGender:        true,
	StateAskGenderOther:   true,
	StateAskAgeGroup:      true,
}

// MidRegistration reports whether the state belongs to the registration
// survey (including OPT-OUT).
func (s State) MidRegistration() bool {
	return registrationStates[s]
}

// Session represents one continuous conversation for a user. Sessions are
// append-only history: an expired session is never reused, a new row is
// created instead. The current session is the most recent one by
// LastInteraction.
type Session struct {
	ID                string    `json:"id"`
	HashedPhoneNumber string    `json:"hashed_phone_number"`
	State             State     `json:"state"`
	LastInteraction   time.Time `json:"last_interaction"`
	ResourceCategory  string    `json:"resource_category,omitempty"`
	PageNumber        int       `json:"page_number"`
	HelplineProgram   string    `json:"helpline_program,omitempty"`
}

// ExpiredAt reports whether the session's inactivity window has elapsed at
// the given instant. It is a pure check; refreshing LastInteraction on a
// fresh session is the session resolver's job.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastInteraction) > ttl
}
