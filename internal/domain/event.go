package domain

import (
	"time"
)

// EventType tags an audit log entry.
type EventType string

// Event types recorded by the dialogue engine. The values double as the
// analytics vocabulary, so renaming one is a breaking change for reporting.
const (
	EventSMSReceived       EventType = "sms_received"
	EventSMSSent           EventType = "sms_sent"
	EventCreateUser        EventType = "create_user"
	EventSessionCreated    EventType = "session_created"
	EventOptIn             EventType = "opt-in"
	EventOptOut            EventType = "opt-out"
	EventRaceCollected     EventType = "race_collected"
	EventGenderCollected   EventType = "gender_collected"
	EventAgeCollected      EventType = "age_collected"
	EventChatbotService    EventType = "chatbot_service"
	EventResourceView      EventType = "resource_view"
	EventPageChange        EventType = "page_change"
	EventHelplineView      EventType = "helpline_view"
	EventAlertsSubscribe   EventType = "alerts_subscribe"
	EventAlertsUnsubscribe EventType = "alerts_unsubscribe"
)

// Event is one immutable audit record. Events are append-only; they are never
// mutated or deleted.
type Event struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id,omitempty"`
	HashedPhoneNumber string    `json:"hashed_phone_number"`
	Type              EventType `json:"type"`
	ChatbotService    string    `json:"chatbot_service,omitempty"`
	ResourceCategory  string    `json:"resource_category,omitempty"`
	HelplineProgram   string    `json:"helpline_program,omitempty"`
	PageNumber        *int      `json:"page_number,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}
