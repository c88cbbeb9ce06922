package dialogue

import (
	"strings"

	"github.com/masshrc/chatbot/internal/fuzzy"
)

// Option is one menu entry: a numeric key and the label it records.
type Option struct {
	Key   string
	Value string
}

// Menu is an ordered list of options. Lookup checks numeric keys by exact
// equality first and only then falls back to fuzzy matching against the
// labels, so "2" can never fuzzily hit the wrong entry.
type Menu []Option

// Lookup resolves free-text input to a menu value.
func (m Menu) Lookup(input string) (string, bool) {
	for _, o := range m {
		if input == o.Key {
			return o.Value, true
		}
	}
	for _, o := range m {
		if fuzzy.Matches(input, o.Value) {
			return o.Value, true
		}
	}
	return "", false
}

// Prompt renders the menu as "1) Label" lines.
func (m Menu) Prompt() string {
	var b strings.Builder
	for _, o := range m {
		b.WriteString(o.Key)
		b.WriteString(") ")
		b.WriteString(o.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// raceMultiracialKey is the race menu entry that branches into the
// multiracial identity questions.
const raceMultiracialKey = "7"

var raceEthnicityMenu = Menu{
	{"1", "Asian"},
	{"2", "Native Hawaiian/Pacific Islander"},
	{"3", "Black/African American"},
	{"4", "White"},
	{"5", "Hispanic/Latino(x)(e)"},
	{"6", "Indigenous/Native American"},
	{raceMultiracialKey, "Multiracial"},
	{"8", "Middle Eastern/North African"},
	{"9", "Other"},
	{"10", "Don't Know"},
	{"11", "Refuse to Answer"},
}

// multiracialMenu is the race menu without the multiracial option itself.
var multiracialMenu = Menu{
	{"1", "Asian"},
	{"2", "Native Hawaiian/Pacific Islander"},
	{"3", "Black/African American"},
	{"4", "White"},
	{"5", "Hispanic/Latino(x)(e)"},
	{"6", "Indigenous/Native American"},
	{"7", "Middle Eastern/North African"},
	{"8", "Other"},
	{"9", "Don't Know"},
	{"10", "Refuse to Answer"},
}

// genderOtherKey routes to the free-text gender question.
const genderOtherKey = "6"

var genderMenu = Menu{
	{"1", "Woman"},
	{"2", "Man"},
	{"3", "Non-binary"},
	{"4", "Transgender Woman"},
	{"5", "Transgender Man"},
	{genderOtherKey, "Other"},
	{"7", "Don't Know"},
	{"8", "Refuse to Answer"},
}

var ageGroupMenu = Menu{
	{"1", "Under 18"},
	{"2", "18-24"},
	{"3", "25-34"},
	{"4", "35-44"},
	{"5", "45-54"},
	{"6", "55-70"},
	{"7", "More than 70"},
	{"8", "Don't Know"},
	{"9", "Refuse to Answer"},
}

// resourceCategoryMenu maps the resource menu keys onto the category tags
// used by the resource dataset.
var resourceCategoryMenu = Menu{
	{"1", "Syringe Service Program"},
	{"2", "Medication for Opioid Use Disorder"},
	{"3", "Naloxone and Overdose Training"},
	{"4", "Bridge Clinic"},
	{"5", "Shelter"},
	{"6", "Detox"},
}

const (
	greeting = "I'm a Harm Reduction Chatbot! I'm helping out in Massachusetts."

	optInQuestion = "You'll need to opt-in to use this app.\n\n" +
		"This chatbot anonymously and securely collects the app user activity.\n\n" +
		"The info improves the chatbot.\n\n" +
		"Type 'Yes' to opt-in or 'No' to opt-out"

	betaNotice = "**We're beta testing, so service may go under maintenance. " +
		"Users may need to re-register when the chatbot updates. " +
		"Encounter a bug or have a suggestion? Tell the developer!**"

	youOptedOut = "You have opted out.\n" +
		"You cannot use the app unless you opt-in.\n" +
		"You can opt-in anytime by sending a new message.\n" +
		"Otherwise, have a nice day!"

	optInReprompt = "Please reply with 'Yes' to opt-in or 'No' to opt-out."

	mainMenuText = "What are you looking for? Reply with the number or category:\n" +
		"1) Harm reduction resources\n" +
		"2) Talk with a helpline\n" +
		"3) Alerts about emerging risks in the Massachusetts drug supply\n"

	zipcodePrompt = "What zipcode are you looking for? Reply with the Massachusetts zipcode."

	resourceViewFooter = "Reply '*' or 'Resources' to return to the resources menu." +
		"\n\nReply '0' or 'Menu' to return to the chatbot main menu."

	helplineMenuText = "What helpline are you looking for? Reply with the number:\n" +
		"1) Looking for substance use help, like treatment or services?\n" +
		"2) Want support from SafeSpot while you use drugs?\n" +
		"3) Thinking about suicide or need mental health support?\n" +
		"4) In danger from domestic violence? Reply 'Safe Link'\n" +
		"\nIn immediate danger or witnessing an overdose? Call 911.\n" +
		"\nReply 'Menu' or '0' to return to the chatbot main menu."

	helplineViewFooter = "Reply '*' or 'Helplines' to return to the helpline menu." +
		"\n\nReply '0' or 'Menu' to return to the chatbot main menu."

	substanceHelplineInfo = "MA Substance Use Helpline 🧭\n" +
		"• Provides information about substance use treatment, helping with questions about location and insurance and more.\n" +
		"• Call 800.327.5050\n" +
		"• Text: \"HOPE\" to 8003275050\n" +
		"• Available 24 hours per day"

	safeSpotInfo = "SafeSpot ❤️\n" +
		"• Connect with trained operators and peers who support you while you use drugs, and call for help if you overdose.\n" +
		"• Call 1-800-972-0590\n" +
		"• Available 24/7"

	lifelineInfo = "Suicide and Crisis Lifeline 🆘\n" +
		"• Call for any emotional or mental health support or if you just need someone to talk to\n" +
		"• Call or text: 988\n" +
		"• Available 24/7"

	safeLinkInfo = "SafeLink. Massachusetts Domestic Violence 🛡️\n" +
		"• Call for help if you are in danger or need to talk to someone about domestic violence.\n" +
		"• Call 1-877-785-2020\n" +
		"• Available 24/7"

	nineOneOneInfo = "911 🚨\n" +
		"• Call for immediate danger, like an overdose or violence.\n" +
		"• Available 24/7"

	notSubscribedFooter = "Reply 'Add' to sign up for emergency alerts. 🔔\n\n" +
		"Reply 'Menu' to return to the chatbot main menu."

	alreadySubscribedFooter = "Reply 'Remove' to remove yourself from the list.\n\n" +
		"Reply 'Latest' to get the latest emergency alert.\n\n" +
		"Reply 'Menu' to return to the chatbot main menu."

	addedToAlerts = "You have been added to the emergency alerts list. " +
		"The chatbot administrator will send out mass texts if new risks in the drug supply appear.\n\n" +
		"Bringing you back to the main menu...\n"

	apologyText = "An error occurred. Please try again later."
)

// resourceMenuText lists the six resource categories with their emoji.
const resourceMenuText = "What are you looking for? Reply with the number or category:\n" +
	"1) Syringe Service Program 💉\n" +
	"2) Medication for Opioid Use Disorder 💊\n" +
	"3) Naloxone and Overdose Training 🚨\n" +
	"4) Bridge Clinic (medical services) 🩺\n" +
	"5) Emergency Shelter 🛏️\n" +
	"6) Detox 🏥\n" +
	"\nReply 'Menu' or '0' to return to the chatbot main menu."

func raceEthnicityPrompt() string {
	return "Please enter your race/ethnicity. Reply with the number next to the category:\n" + raceEthnicityMenu.Prompt()
}

func multiracialPrompt(which string) string {
	return "Please select " + which + " racial/ethnic identity by replying with the number next to the category:\n" + multiracialMenu.Prompt()
}

func genderPrompt() string {
	return "Please enter your gender. Reply with the number next to the category:\n" + genderMenu.Prompt()
}

func ageGroupPrompt() string {
	return "Please enter your age group. Reply with the number next to the category:\n" + ageGroupMenu.Prompt()
}
