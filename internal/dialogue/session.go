package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/store"
)

// ensureUser loads the user for the hashed sender, creating a record on
// first contact.
func (e *Engine) ensureUser(ctx context.Context, repo store.Repository, hashedID string, now time.Time) (*domain.User, error) {
	user, err := repo.GetUser(ctx, hashedID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		return user, nil
	}
	user = &domain.User{
		HashedPhoneNumber: hashedID,
		FirstInteraction:  now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	ev := &domain.Event{
		ID:                uuid.NewString(),
		HashedPhoneNumber: hashedID,
		Type:              domain.EventCreateUser,
		Timestamp:         now,
	}
	if err := repo.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("record create_user: %w", err)
	}
	return user, nil
}

// resolveSession returns the sender's current session. A live session has its
// last interaction refreshed; the expiry check and the refresh are one
// operation so back-to-back messages cannot race an expiring session. When no
// live session exists a fresh one is created. A sender whose previous session
// died mid-registration restarts at the beginning, everyone else comes back
// as a returning user.
func (e *Engine) resolveSession(ctx context.Context, repo store.Repository, hashedID string, now time.Time) (*domain.Session, error) {
	latest, err := repo.LatestSession(ctx, hashedID)
	if err != nil {
		return nil, fmt.Errorf("latest session: %w", err)
	}
	if latest != nil && !latest.ExpiredAt(now, e.ttl) {
		latest.LastInteraction = now
		if err := repo.TouchSession(ctx, latest.ID, now); err != nil {
			return nil, fmt.Errorf("touch session: %w", err)
		}
		return latest, nil
	}

	state := domain.StateReturningUser
	if latest == nil || latest.State.MidRegistration() {
		state = domain.StatePreRegistration
	}
	sess := &domain.Session{
		ID:                uuid.NewString(),
		HashedPhoneNumber: hashedID,
		State:             state,
		LastInteraction:   now,
	}
	if err := repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	ev := &domain.Event{
		ID:                uuid.NewString(),
		HashedPhoneNumber: hashedID,
		SessionID:         sess.ID,
		Type:              domain.EventSessionCreated,
		Timestamp:         now,
	}
	if err := repo.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("record session_created: %w", err)
	}
	return sess, nil
}
