package dialogue

import (
	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/fuzzy"
)

// backToResourceMenu matches the escape hatch offered on resource views.
func backToResourceMenu(input string) bool {
	return input == "*" || fuzzy.Matches(input, "resources")
}

func isZipcode(input string) bool {
	if len(input) != 5 {
		return false
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (e *Engine) handleResourceMenu(t *turn) error {
	if backToMainMenu(t.input) {
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
		return nil
	}
	category, ok := resourceCategoryMenu.Lookup(t.input)
	if !ok {
		t.reply.Text("Invalid response.\n\n" + resourceMenuText)
		return nil
	}
	t.sess.ResourceCategory = category
	if err := t.recordResourceView(category); err != nil {
		return err
	}
	t.sess.State = domain.StateZipcodeInput
	t.reply.Text(zipcodePrompt + "\n\n" + resourceViewFooter)
	return nil
}

func (e *Engine) handleZipcodeInput(t *turn) error {
	switch {
	case backToResourceMenu(t.input):
		t.sess.State = domain.StateResourceMenu
		t.reply.Text(resourceMenuText)
	case backToMainMenu(t.input):
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
	case isZipcode(t.input):
		listing := e.locator.Locate(t.sess.ResourceCategory, t.input)
		if err := t.recordResourceView(t.sess.ResourceCategory); err != nil {
			return err
		}
		t.reply.Text(listing + "\n\nEnter another zipcode to try again.\n\n" + resourceViewFooter)
	default:
		t.reply.Text("Invalid response. Please reply with a 5-digit zipcode.\n\n" + resourceViewFooter)
	}
	return nil
}

// handleResourceView serves the navigation footer shown under a listing.
func (e *Engine) handleResourceView(t *turn) error {
	switch {
	case backToResourceMenu(t.input):
		t.sess.State = domain.StateResourceMenu
		t.reply.Text(resourceMenuText)
	case backToMainMenu(t.input):
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
	default:
		t.reply.Text("Invalid response.\n\n" + resourceViewFooter)
	}
	return nil
}
