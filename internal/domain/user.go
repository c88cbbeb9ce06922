// Package domain contains core domain types for the harm reduction chatbot.
package domain

import (
	"time"
)

// User represents a registered (or registering) chatbot user. Users are keyed
// by a salted one-way hash of their phone number; the raw number is never
// stored here.
type User struct {
	HashedPhoneNumber string    `json:"hashed_phone_number"`
	FirstInteraction  time.Time `json:"first_interaction"`
	RaceEthnicity     string    `json:"race_ethnicity,omitempty"`
	Multiracial1      string    `json:"multiracial1,omitempty"`
	Multiracial2      string    `json:"multiracial2,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	GenderOther       string    `json:"gender_other,omitempty"`
	AgeGroup          string    `json:"age_group,omitempty"`
	OptIn             bool      `json:"opt_in"`
	OptInTime         time.Time `json:"opt_in_time,omitempty"`
}

// Registered returns true once the user has opted in and completed the
// demographic survey.
func (u *User) Registered() bool {
	return u.OptIn && u.RaceEthnicity != "" && u.Gender != "" && u.AgeGroup != ""
}
