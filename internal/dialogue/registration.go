package dialogue

import (
	"fmt"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/fuzzy"
)

// handlePreRegistration greets a brand new sender. The inbound body is
// ignored, whatever woke the chatbot up gets the same welcome.
func (e *Engine) handlePreRegistration(t *turn) error {
	body := fmt.Sprintf("Hello! %s\n\n%s\n\n%s", greeting, optInQuestion, betaNotice)
	if e.mediaURL != "" {
		t.reply.TextWithMedia(body, e.mediaURL)
	} else {
		t.reply.Text(body)
	}
	t.sess.State = domain.StateRegistration
	return nil
}

func (e *Engine) handleRegistration(t *turn) error {
	switch {
	case fuzzy.Matches(t.input, "yes"):
		t.user.OptIn = true
		t.user.OptInTime = t.now
		if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
			return err
		}
		if err := t.record(domain.EventOptIn); err != nil {
			return err
		}
		t.sess.State = domain.StateAskRaceEthnicity
		t.reply.Text(raceEthnicityPrompt())
	case fuzzy.Matches(t.input, "no"):
		t.user.OptIn = false
		if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
			return err
		}
		if err := t.record(domain.EventOptOut); err != nil {
			return err
		}
		t.sess.State = domain.StateOptOut
		t.reply.Text(youOptedOut)
	default:
		t.reply.Text(optInReprompt)
	}
	return nil
}

func (e *Engine) handleAskRaceEthnicity(t *turn) error {
	if t.input == raceMultiracialKey || fuzzy.Matches(t.input, "multiracial") {
		t.user.RaceEthnicity = "Multiracial"
		if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
			return err
		}
		if err := t.record(domain.EventRaceCollected); err != nil {
			return err
		}
		t.sess.State = domain.StateAskMultiracial1
		t.reply.Text("You selected Multiracial.\n" + multiracialPrompt("your first"))
		return nil
	}
	if value, ok := raceEthnicityMenu.Lookup(t.input); ok {
		t.user.RaceEthnicity = value
		if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
			return err
		}
		if err := t.record(domain.EventRaceCollected); err != nil {
			return err
		}
		t.sess.State = domain.StateAskGender
		t.reply.Text(genderPrompt())
		return nil
	}
	t.reply.Text("Invalid response.\n" + raceEthnicityPrompt())
	return nil
}

func (e *Engine) handleAskMultiracial1(t *turn) error {
	value, ok := multiracialMenu.Lookup(t.input)
	if !ok {
		t.reply.Text("Invalid response.\n" + multiracialPrompt("your first"))
		return nil
	}
	t.user.Multiracial1 = value
	if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
		return err
	}
	if err := t.record(domain.EventRaceCollected); err != nil {
		return err
	}
	t.sess.State = domain.StateAskMultiracial2
	t.reply.Text(multiracialPrompt("your second"))
	return nil
}

func (e *Engine) handleAskMultiracial2(t *turn) error {
	value, ok := multiracialMenu.Lookup(t.input)
	if !ok {
		t.reply.Text("Invalid response.\n" + multiracialPrompt("your second"))
		return nil
	}
	// The second answer overwrites the first identity instead of filling the
	// second slot. Upstream analytics depend on the column as written, so this
	// stays until the data team signs off on a migration.
	t.user.Multiracial1 = value
	if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
		return err
	}
	if err := t.record(domain.EventRaceCollected); err != nil {
		return err
	}
	t.sess.State = domain.StateAskGender
	t.reply.Text(genderPrompt())
	return nil
}

func (e *Engine) handleAskGender(t *turn) error {
	value, ok := genderMenu.Lookup(t.input)
	if !ok {
		t.reply.Text("Invalid response.\n" + genderPrompt())
		return nil
	}
	t.user.Gender = value
	if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
		return err
	}
	if err := t.record(domain.EventGenderCollected); err != nil {
		return err
	}
	if value == "Other" {
		t.sess.State = domain.StateAskGenderOther
		t.reply.Text("Please type and send your gender identity:")
		return nil
	}
	t.sess.State = domain.StateAskAgeGroup
	t.reply.Text(ageGroupPrompt())
	return nil
}

func (e *Engine) handleAskGenderOther(t *turn) error {
	t.user.GenderOther = t.input
	if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
		return err
	}
	t.sess.State = domain.StateAskAgeGroup
	t.reply.Text(ageGroupPrompt())
	return nil
}

func (e *Engine) handleAskAgeGroup(t *turn) error {
	value, ok := ageGroupMenu.Lookup(t.input)
	if !ok {
		t.reply.Text("Invalid response.\n" + ageGroupPrompt())
		return nil
	}
	t.user.AgeGroup = value
	if err := t.repo.UpdateUser(t.ctx, t.user); err != nil {
		return err
	}
	if err := t.record(domain.EventAgeCollected); err != nil {
		return err
	}
	t.sess.State = domain.StateMainMenu
	t.reply.Text("Thank you for registering! 🎉\n\n" + mainMenuText)
	return nil
}
