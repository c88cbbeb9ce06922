package dialogue

import (
	"github.com/google/uuid"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/fuzzy"
)

// handleNewAlertsUser signs the sender up for emergency alerts. The
// subscriber list stores the raw phone number because the broadcaster has to
// dial it; it never joins against the hashed analytics tables.
func (e *Engine) handleNewAlertsUser(t *turn) error {
	switch {
	case fuzzy.Matches(t.input, "add"):
		sub := &domain.AlertSubscriber{
			ID:          uuid.NewString(),
			PhoneNumber: t.from,
			CreatedAt:   t.now,
		}
		if err := t.repo.CreateAlertSubscriber(t.ctx, sub); err != nil {
			return err
		}
		if err := t.record(domain.EventAlertsSubscribe); err != nil {
			return err
		}
		t.sess.State = domain.StateMainMenu
		t.reply.Text(addedToAlerts + "\n" + mainMenuText)
	case backToMainMenu(t.input):
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
	default:
		t.reply.Text("Invalid response.\n\n" + notSubscribedFooter)
	}
	return nil
}

func (e *Engine) handleExistingAlertsUser(t *turn) error {
	switch {
	case fuzzy.Matches(t.input, "remove"):
		if err := t.repo.DeleteAlertSubscriber(t.ctx, t.from); err != nil {
			return err
		}
		if err := t.record(domain.EventAlertsUnsubscribe); err != nil {
			return err
		}
		t.sess.State = domain.StateMainMenu
		t.reply.Text("You have been removed from the emergency alerts list. 🔕\n\n" +
			"Bringing you back to the main menu...\n\n" + mainMenuText)
	case fuzzy.Matches(t.input, "latest"):
		alert, err := t.repo.LatestAlert(t.ctx)
		if err != nil {
			return err
		}
		t.sess.State = domain.StateMainMenu
		if alert == nil {
			t.reply.Text("No emergency alerts have been sent out yet.\n\n" +
				"Bringing you back to the main menu...\n\n" + mainMenuText)
		} else {
			t.reply.Text("The latest emergency alert is:\n\n'" + alert.Message + "'\n\n" +
				"Bringing you back to the main menu...\n\n" + mainMenuText)
		}
	case backToMainMenu(t.input):
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
	default:
		t.reply.Text("Invalid response.\n\n" + alreadySubscribedFooter)
	}
	return nil
}
