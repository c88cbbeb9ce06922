// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/masshrc/chatbot/internal/domain"
)

// Repository defines the persistence operations available to the chatbot.
// The same interface is implemented by the root store and by an open
// transaction, so handler code is written once and runs in either.
type Repository interface {
	// GetUser retrieves a user by hashed phone number. Missing users return
	// (nil, nil).
	GetUser(ctx context.Context, hashedPhoneNumber string) (*domain.User, error)

	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, user *domain.User) error

	// UpdateUser persists the mutable demographic and opt-in fields.
	UpdateUser(ctx context.Context, user *domain.User) error

	// LatestSession returns the user's most recent session by
	// last_interaction, or (nil, nil) if none exists.
	LatestSession(ctx context.Context, hashedPhoneNumber string) (*domain.Session, error)

	// CreateSession inserts a new session row. Sessions are append-only
	// history; expired sessions are never reused.
	CreateSession(ctx context.Context, session *domain.Session) error

	// UpdateSession persists the session's state and scratch fields.
	UpdateSession(ctx context.Context, session *domain.Session) error

	// TouchSession refreshes a session's last_interaction timestamp.
	TouchSession(ctx context.Context, sessionID string, at time.Time) error

	// AppendEvent inserts one immutable audit event.
	AppendEvent(ctx context.Context, event *domain.Event) error

	// GetAlertSubscriber looks up a subscriber by raw phone number, or
	// (nil, nil) when the number is not subscribed.
	GetAlertSubscriber(ctx context.Context, phoneNumber string) (*domain.AlertSubscriber, error)

	// CreateAlertSubscriber subscribes a raw phone number.
	CreateAlertSubscriber(ctx context.Context, subscriber *domain.AlertSubscriber) error

	// DeleteAlertSubscriber unsubscribes a raw phone number.
	DeleteAlertSubscriber(ctx context.Context, phoneNumber string) error

	// ListAlertSubscribers returns every current subscriber.
	ListAlertSubscribers(ctx context.Context) ([]*domain.AlertSubscriber, error)

	// IncrementAlertCount bumps a subscriber's received-alert counter.
	IncrementAlertCount(ctx context.Context, subscriberID string) error

	// CreateAlert records one broadcast.
	CreateAlert(ctx context.Context, alert *domain.Alert) error

	// LatestAlert returns the most recent broadcast by timestamp, or
	// (nil, nil) if none has been sent.
	LatestAlert(ctx context.Context) (*domain.Alert, error)
}

// Store is the root handle: a Repository plus transaction control and
// lifecycle.
type Store interface {
	Repository

	// InTx runs fn inside a single transaction. A non-nil error from fn
	// rolls back every write; otherwise the transaction commits. One inbound
	// message maps to exactly one InTx call, so a failure partway never
	// leaves a session advanced without its event log entries.
	InTx(ctx context.Context, fn func(Repository) error) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
