package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/masshrc/chatbot/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "chatbot.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return s
}

func testUser(hashedID string) *domain.User {
	return &domain.User{
		HashedPhoneNumber: hashedID,
		FirstInteraction:  time.Now(),
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetUser(ctx, "absent")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing user, got %+v", got)
	}

	user := testUser("hash-1")
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.RaceEthnicity = "Multiracial"
	user.Multiracial1 = "Asian"
	user.Gender = "Woman"
	user.AgeGroup = "25-34"
	user.OptIn = true
	user.OptInTime = time.Now()
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	got, err = s.GetUser(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected user, got nil")
	}
	if got.RaceEthnicity != "Multiracial" || got.Gender != "Woman" || got.AgeGroup != "25-34" {
		t.Errorf("Unexpected demographics: %+v", got)
	}
	if !got.OptIn || got.OptInTime.IsZero() {
		t.Errorf("Expected opt-in recorded, got %+v", got)
	}
	if !got.Registered() {
		t.Error("Expected user to be registered")
	}
}

func TestUpdateMissingUser(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateUser(context.Background(), testUser("nope")); err == nil {
		t.Error("Expected error updating missing user")
	}
}

func TestLatestSessionOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("hash-1")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.LatestSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for user without sessions, got %+v", got)
	}

	base := time.Now().Add(-time.Hour)
	older := &domain.Session{
		ID:                uuid.NewString(),
		HashedPhoneNumber: "hash-1",
		State:             domain.StateOptOut,
		LastInteraction:   base,
	}
	newer := &domain.Session{
		ID:                uuid.NewString(),
		HashedPhoneNumber: "hash-1",
		State:             domain.StateMainMenu,
		LastInteraction:   base.Add(10 * time.Minute),
	}
	for _, sess := range []*domain.Session{older, newer} {
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	got, err = s.LatestSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got == nil || got.ID != newer.ID {
		t.Fatalf("Expected most recent session %s, got %+v", newer.ID, got)
	}
	if got.State != domain.StateMainMenu {
		t.Errorf("Expected state MAIN_MENU, got %s", got.State)
	}

	// Touching the older session makes it current.
	if err := s.TouchSession(ctx, older.ID, base.Add(20*time.Minute)); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}
	got, err = s.LatestSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got == nil || got.ID != older.ID {
		t.Errorf("Expected touched session to be current, got %+v", got)
	}
}

func TestUpdateSessionScratchFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("hash-1")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	sess := &domain.Session{
		ID:                uuid.NewString(),
		HashedPhoneNumber: "hash-1",
		State:             domain.StateResourceMenu,
		LastInteraction:   time.Now(),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess.State = domain.StateZipcodeInput
	sess.ResourceCategory = "Detox"
	sess.HelplineProgram = "SafeSpot"
	sess.PageNumber = 2
	if err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	got, err := s.LatestSession(ctx, "hash-1")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got.State != domain.StateZipcodeInput || got.ResourceCategory != "Detox" ||
		got.HelplineProgram != "SafeSpot" || got.PageNumber != 2 {
		t.Errorf("Unexpected session after update: %+v", got)
	}
}

func TestAppendEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	page := 3
	event := &domain.Event{
		ID:                uuid.NewString(),
		SessionID:         "sess-1",
		HashedPhoneNumber: "hash-1",
		Type:              domain.EventPageChange,
		ResourceCategory:  "Shelter",
		PageNumber:        &page,
		Timestamp:         time.Now(),
	}
	if err := s.AppendEvent(ctx, event); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}

	var count int
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE type = ? AND resource_category = ? AND page_number = ?`,
		"page_change", "Shelter", 3)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 matching event, got %d", count)
	}
}

func TestAlertSubscriberLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetAlertSubscriber(ctx, "+15555550100")
	if err != nil {
		t.Fatalf("GetAlertSubscriber failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unsubscribed number, got %+v", got)
	}

	sub := &domain.AlertSubscriber{
		ID:          uuid.NewString(),
		PhoneNumber: "+15555550100",
		CreatedAt:   time.Now(),
	}
	if err := s.CreateAlertSubscriber(ctx, sub); err != nil {
		t.Fatalf("CreateAlertSubscriber failed: %v", err)
	}

	// The phone number column is unique; a duplicate insert must fail.
	dup := &domain.AlertSubscriber{
		ID:          uuid.NewString(),
		PhoneNumber: "+15555550100",
		CreatedAt:   time.Now(),
	}
	if err := s.CreateAlertSubscriber(ctx, dup); err == nil {
		t.Error("Expected duplicate subscriber insert to fail")
	}

	if err := s.IncrementAlertCount(ctx, sub.ID); err != nil {
		t.Fatalf("IncrementAlertCount failed: %v", err)
	}
	got, err = s.GetAlertSubscriber(ctx, "+15555550100")
	if err != nil {
		t.Fatalf("GetAlertSubscriber failed: %v", err)
	}
	if got.TotalAlerts != 1 {
		t.Errorf("Expected total_alerts 1, got %d", got.TotalAlerts)
	}

	if err := s.DeleteAlertSubscriber(ctx, "+15555550100"); err != nil {
		t.Fatalf("DeleteAlertSubscriber failed: %v", err)
	}
	got, err = s.GetAlertSubscriber(ctx, "+15555550100")
	if err != nil {
		t.Fatalf("GetAlertSubscriber failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after unsubscribe, got %+v", got)
	}
}

func TestLatestAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.LatestAlert(ctx)
	if err != nil {
		t.Fatalf("LatestAlert failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil before any broadcast, got %+v", got)
	}

	base := time.Now().Add(-time.Hour)
	first := &domain.Alert{ID: uuid.NewString(), Message: "first", Timestamp: base, NumberOfUsersSent: 2}
	second := &domain.Alert{ID: uuid.NewString(), Message: "second", Timestamp: base.Add(time.Minute), NumberOfUsersSent: 3}
	for _, a := range []*domain.Alert{first, second} {
		if err := s.CreateAlert(ctx, a); err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}
	}

	got, err = s.LatestAlert(ctx)
	if err != nil {
		t.Fatalf("LatestAlert failed: %v", err)
	}
	if got == nil || got.Message != "second" {
		t.Errorf("Expected most recent alert, got %+v", got)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	failure := errors.New("handler failure")
	err := s.InTx(ctx, func(repo Repository) error {
		if err := repo.CreateUser(ctx, testUser("hash-tx")); err != nil {
			return err
		}
		if err := repo.AppendEvent(ctx, &domain.Event{
			ID:                uuid.NewString(),
			HashedPhoneNumber: "hash-tx",
			Type:              domain.EventCreateUser,
			Timestamp:         time.Now(),
		}); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected handler failure, got %v", err)
	}

	got, err := s.GetUser(ctx, "hash-tx")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got != nil {
		t.Error("Expected rollback to discard the user row")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to discard events, got %d rows", count)
	}
}

func TestInTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(repo Repository) error {
		return repo.CreateUser(ctx, testUser("hash-commit"))
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	got, err := s.GetUser(ctx, "hash-commit")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got == nil {
		t.Error("Expected committed user row")
	}
}
