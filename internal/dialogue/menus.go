package dialogue

import (
	"fmt"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/fuzzy"
)

// backToMainMenu matches the escape hatch offered on every sub-menu.
func backToMainMenu(input string) bool {
	return input == "0" || fuzzy.Matches(input, "menu")
}

// handleReturningUser welcomes back a registered sender whose previous
// session expired. The inbound body is ignored.
func (e *Engine) handleReturningUser(t *turn) error {
	body := fmt.Sprintf("Welcome back! %s\n\n%s\n%s", greeting, mainMenuText, betaNotice)
	if e.mediaURL != "" {
		t.reply.TextWithMedia(body, e.mediaURL)
	} else {
		t.reply.Text(body)
	}
	t.sess.State = domain.StateMainMenu
	return nil
}

func (e *Engine) handleMainMenu(t *turn) error {
	switch {
	case t.input == "1" || fuzzy.Matches(t.input, "harm reduction resources"):
		if err := t.recordService("resource_menu"); err != nil {
			return err
		}
		t.sess.State = domain.StateResourceMenu
		t.reply.Text(resourceMenuText)
	case t.input == "2" || fuzzy.Matches(t.input, "talk with a helpline"):
		if err := t.recordService("helpline_menu"); err != nil {
			return err
		}
		t.sess.State = domain.StateHelplineMenu
		t.reply.Text(helplineMenuText)
	case t.input == "3" || fuzzy.Matches(t.input, "emergency alerts"):
		if err := t.recordService("emergency_alerts"); err != nil {
			return err
		}
		sub, err := t.repo.GetAlertSubscriber(t.ctx, t.from)
		if err != nil {
			return err
		}
		if sub == nil {
			t.sess.State = domain.StateNewAlertsUser
			t.reply.Text("You are not signed up for emergency alerts. 🔕\n\n" + notSubscribedFooter)
		} else {
			t.sess.State = domain.StateExistingAlertsUser
			t.reply.Text("You are already signed up for emergency alerts. 🔔\n\n" + alreadySubscribedFooter)
		}
	default:
		t.reply.Text("Invalid response.\n\n" + mainMenuText)
	}
	return nil
}
