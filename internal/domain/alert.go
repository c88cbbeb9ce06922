package domain

import (
	"time"
)

// AlertSubscriber is a phone number opted into emergency drug-supply alerts.
// Unlike every other entity this one keys by the raw number: outbound
// dispatch needs it. Absence of a row means not subscribed.
type AlertSubscriber struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	TotalAlerts int       `json:"total_alerts"`
	CreatedAt   time.Time `json:"created_at"`
}

// Alert is an immutable record of one broadcast to all subscribers.
type Alert struct {
	ID                string    `json:"id"`
	Message           string    `json:"message"`
	Timestamp         time.Time `json:"timestamp"`
	NumberOfUsersSent int       `json:"number_of_users_sent"`
}
