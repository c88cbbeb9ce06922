// Package alerts broadcasts emergency drug supply alerts to subscribers.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/sms"
	"github.com/masshrc/chatbot/internal/store"
)

var ErrEmptyMessage = errors.New("alert message is empty")

// Broadcaster fans an alert out to every subscriber and records the
// broadcast. Delivery happens outside any transaction; a failed send is
// logged and skipped so one bad number cannot block the rest of the list.
type Broadcaster struct {
	store     store.Store
	transport sms.Transport
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewBroadcaster(st store.Store, transport sms.Transport) *Broadcaster {
	return &Broadcaster{
		store:     st,
		transport: transport,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Broadcast sends message to all subscribers and returns the number of
// successful deliveries.
func (b *Broadcaster) Broadcast(ctx context.Context, message string) (int, error) {
	message = strings.TrimSpace(b.sanitizer.Sanitize(message))
	if message == "" {
		return 0, ErrEmptyMessage
	}
	body := "**This is an automated alert**\n\n" + message + "\n\n**End of alert**"

	subscribers, err := b.store.ListAlertSubscribers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscribers: %w", err)
	}

	delivered := make([]*domain.AlertSubscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		if err := b.transport.Send(ctx, sub.PhoneNumber, body); err != nil {
			slog.Error("alert delivery failed", "subscriber", sub.ID, "error", err)
			continue
		}
		delivered = append(delivered, sub)
	}

	now := b.now()
	err = b.store.InTx(ctx, func(repo store.Repository) error {
		for _, sub := range delivered {
			if err := repo.IncrementAlertCount(ctx, sub.ID); err != nil {
				return err
			}
		}
		return repo.CreateAlert(ctx, &domain.Alert{
			ID:                uuid.NewString(),
			Message:           message,
			Timestamp:         now,
			NumberOfUsersSent: len(delivered),
		})
	})
	if err != nil {
		return len(delivered), fmt.Errorf("record broadcast: %w", err)
	}
	return len(delivered), nil
}
