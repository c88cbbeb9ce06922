package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/store"
)

type recordingTransport struct {
	mu     sync.Mutex
	sent   map[string]string
	failOn string
}

func (r *recordingTransport) Send(ctx context.Context, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if to == r.failOn {
		return errors.New("carrier rejected")
	}
	if r.sent == nil {
		r.sent = map[string]string{}
	}
	r.sent[to] = body
	return nil
}

func newTestBroadcaster(t *testing.T) (*Broadcaster, store.Store, *recordingTransport) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "chatbot.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	transport := &recordingTransport{}
	return NewBroadcaster(st, transport), st, transport
}

func subscribe(t *testing.T, st store.Store, phone string) *domain.AlertSubscriber {
	t.Helper()
	sub := &domain.AlertSubscriber{ID: uuid.NewString(), PhoneNumber: phone, CreatedAt: time.Now()}
	if err := st.CreateAlertSubscriber(context.Background(), sub); err != nil {
		t.Fatalf("Failed to subscribe %s: %v", phone, err)
	}
	return sub
}

func TestBroadcast(t *testing.T) {
	b, st, transport := newTestBroadcaster(t)
	ctx := context.Background()

	subs := []*domain.AlertSubscriber{
		subscribe(t, st, "+15550000001"),
		subscribe(t, st, "+15550000002"),
		subscribe(t, st, "+15550000003"),
	}

	n, err := b.Broadcast(ctx, "Bad batch circulating in Suffolk County")
	if err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 deliveries, got %d", n)
	}

	body := transport.sent["+15550000002"]
	if !strings.Contains(body, "**This is an automated alert**") ||
		!strings.Contains(body, "**End of alert**") {
		t.Errorf("Expected alert framing, got %q", body)
	}
	if !strings.Contains(body, "Bad batch circulating in Suffolk County") {
		t.Errorf("Expected alert message, got %q", body)
	}

	alert, err := st.LatestAlert(ctx)
	if err != nil || alert == nil {
		t.Fatalf("Expected recorded alert, got %v, %v", alert, err)
	}
	if alert.NumberOfUsersSent != 3 {
		t.Errorf("Expected 3 recipients recorded, got %d", alert.NumberOfUsersSent)
	}

	for _, sub := range subs {
		got, err := st.GetAlertSubscriber(ctx, sub.PhoneNumber)
		if err != nil || got == nil {
			t.Fatalf("Failed to look up subscriber: %v", err)
		}
		if got.TotalAlerts != 1 {
			t.Errorf("Expected counter 1 for %s, got %d", sub.PhoneNumber, got.TotalAlerts)
		}
	}
}

func TestBroadcastSkipsFailedDeliveries(t *testing.T) {
	b, st, transport := newTestBroadcaster(t)
	ctx := context.Background()

	subscribe(t, st, "+15550000001")
	subscribe(t, st, "+15550000002")
	transport.failOn = "+15550000001"

	n, err := b.Broadcast(ctx, "Supply warning")
	if err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 delivery, got %d", n)
	}

	alert, _ := st.LatestAlert(ctx)
	if alert.NumberOfUsersSent != 1 {
		t.Errorf("Expected 1 recipient recorded, got %d", alert.NumberOfUsersSent)
	}
	failed, _ := st.GetAlertSubscriber(ctx, "+15550000001")
	if failed.TotalAlerts != 0 {
		t.Errorf("Expected failed subscriber counter untouched, got %d", failed.TotalAlerts)
	}
}

func TestBroadcastSanitizesMarkup(t *testing.T) {
	b, st, transport := newTestBroadcaster(t)
	ctx := context.Background()

	subscribe(t, st, "+15550000001")

	if _, err := b.Broadcast(ctx, "<script>alert(1)</script>Stay safe"); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	body := transport.sent["+15550000001"]
	if strings.Contains(body, "<script>") {
		t.Errorf("Expected markup stripped, got %q", body)
	}
	if !strings.Contains(body, "Stay safe") {
		t.Errorf("Expected remaining text kept, got %q", body)
	}
}

func TestBroadcastRejectsEmptyMessage(t *testing.T) {
	b, _, _ := newTestBroadcaster(t)

	if _, err := b.Broadcast(context.Background(), "  <b></b>  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Expected ErrEmptyMessage, got %v", err)
	}
}
