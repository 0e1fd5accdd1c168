package types

// Intent is a classified user intention. The set is closed: the classifier
// prompt enumerates exactly these values and anything unparseable collapses
// to IntentGeneralChat.
type Intent string

const (
	IntentGeneralChat     Intent = "general_chat"
	IntentIntroduction    Intent = "introduction"
	IntentHelp            Intent = "help"
	IntentGenerateContent Intent = "generate_content"
	IntentSchedulePost    Intent = "schedule_post"
	IntentListContent     Intent = "list_content"
	IntentDeleteContent   Intent = "delete_content"
	IntentUpdateSettings  Intent = "update_settings"
	IntentBrandSummary    Intent = "brand_summary"
)

// AllIntents returns the closed set of intents known to the classifier
func AllIntents() []Intent {
	return []Intent{
		IntentGeneralChat,
		IntentIntroduction,
		IntentHelp,
		IntentGenerateContent,
		IntentSchedulePost,
		IntentListContent,
		IntentDeleteContent,
		IntentUpdateSettings,
		IntentBrandSummary,
	}
}

// IsValid checks if the intent belongs to the closed set
func (i Intent) IsValid() bool {
	for _, known := range AllIntents() {
		if i == known {
			return true
		}
	}
	return false
}

// IsLightweight reports whether the intent is pure conversation that must
// not produce a durable task record.
func (i Intent) IsLightweight() bool {
	switch i {
	case IntentGeneralChat, IntentIntroduction, IntentHelp:
		return true
	default:
		return false
	}
}

// GuestAllowed reports whether an unauthenticated user may reach the intent.
// Everything else requires login before any side effect is planned.
func (i Intent) GuestAllowed() bool {
	return i.IsLightweight()
}

func (i Intent) String() string {
	return string(i)
}
