package i18n

// Key names a localizable message and carries the literal fallback used when
// no loaded language bundle covers it. Placeholders of the form {name} are
// substituted from the args passed to Localize.
type Key struct {
	Name    string
	Default string
}

// Messages the bridge emits. The defaults double as the de-facto English
// bundle so the binary is usable without any locale files on disk.
var (
	Welcome = Key{
		Name:    "common.welcome",
		Default: "Hi! Write your question here and our team will get back to you.",
	}
	Faq = Key{
		Name:    "common.faq",
		Default: "Frequently asked questions: nothing here yet.",
	}
	ReplySent = Key{
		Name:    "common.userReply",
		Default: "Thanks! Your message was passed on to the team.",
	}
	PollsNotSupported = Key{
		Name:    "common.pollsNotSupported",
		Default: "Polls not supported",
	}
	GamesNotSupported = Key{
		Name:    "common.gamesNotSupported",
		Default: "Games not supported",
	}
	VoiceNotSupported = Key{
		Name:    "common.voiceMessagesNotSupported",
		Default: "Voice messages not supported",
	}
	InfoHeader = Key{
		Name:    "common.infoHeader",
		Default: "<b>#T{id}</b> {first_name} {last_name}\nlang: <code>{lang}</code>\n",
	}
	NoteSaved = Key{
		Name:    "staff.noteSaved",
		Default: "Note saved",
	}
	NoteDeleted = Key{
		Name:    "staff.noteDeleted",
		Default: "Note deleted",
	}
	NotesHeader = Key{
		Name:    "staff.notesHeader",
		Default: "User notes:",
	}
)
