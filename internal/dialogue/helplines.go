package dialogue

import (
	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/fuzzy"
)

// helplineProgram pairs a menu choice with the program card it serves. The
// 911 entry has no numeric key and is reachable by phrase only.
type helplineProgram struct {
	key    string
	phrase string
	name   string
	info   string
}

var helplinePrograms = []helplineProgram{
	{"1", "substance use help", "MA Substance Use Helpline", substanceHelplineInfo},
	{"2", "safespot", "SafeSpot", safeSpotInfo},
	{"3", "suicide", "Suicide and Crisis Lifeline", lifelineInfo},
	{"4", "safe link", "SafeLink", safeLinkInfo},
	{"", "immediate danger", "911", nineOneOneInfo},
}

func backToHelplineMenu(input string) bool {
	return input == "*" || fuzzy.Matches(input, "helplines")
}

func (e *Engine) handleHelplineMenu(t *turn) error {
	if backToMainMenu(t.input) {
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
		return nil
	}
	for _, p := range helplinePrograms {
		if (p.key != "" && t.input == p.key) || fuzzy.Matches(t.input, p.phrase) {
			t.sess.HelplineProgram = p.name
			if err := t.recordHelplineView(p.name); err != nil {
				return err
			}
			t.sess.State = domain.StateHelplineView
			t.reply.Text(p.info + "\n\n" + helplineViewFooter)
			return nil
		}
	}
	t.reply.Text("Invalid response.\n\n" + helplineMenuText)
	return nil
}

func (e *Engine) handleHelplineView(t *turn) error {
	switch {
	case backToHelplineMenu(t.input):
		t.sess.State = domain.StateHelplineMenu
		t.reply.Text(helplineMenuText)
	case backToMainMenu(t.input):
		t.sess.State = domain.StateMainMenu
		t.reply.Text(mainMenuText)
	default:
		t.reply.Text("Invalid response.\n\n" + helplineViewFooter)
	}
	return nil
}
