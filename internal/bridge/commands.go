package bridge

import (
	"strings"

	"github.com/tbourn/go-support-bridge/internal/transport"
)

// command is a recognized slash command with its parsed arguments.
type command struct {
	name  string
	key   string // setnote, delnote
	value string // setnote
}

// userHelpText is sent verbatim for /help in a private conversation.
const userHelpText = "These commands are supported:\n" +
	"/help — display this text\n" +
	"/start — print welcome message\n" +
	"/faq — show FAQ"

// commandName extracts the lowercase command name from text content, or ""
// when the content is not a slash command at all. The addressed form
// "/help@somebot" is accepted.
func commandName(c transport.Content) string {
	if c.Kind != transport.KindText || !strings.HasPrefix(c.Text, "/") {
		return ""
	}
	fields := strings.Fields(c.Text)
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// parseUserCommand recognizes the private-conversation commands. Anything
// else, including staff commands typed into a private conversation, is not
// a command and is forwarded as an ordinary message.
func parseUserCommand(c transport.Content) (command, bool) {
	switch name := commandName(c); name {
	case "help", "start", "faq":
		return command{name: name}, true
	default:
		return command{}, false
	}
}

// parseStaffCommand recognizes the staff-space commands. A known command
// with missing arguments does not parse and falls through to plain
// forwarding, mirroring how unknown commands behave.
func parseStaffCommand(c transport.Content) (command, bool) {
	name := commandName(c)
	fields := strings.Fields(c.Text)
	switch name {
	case "setnote":
		if len(fields) < 3 {
			return command{}, false
		}
		return command{name: name, key: fields[1], value: strings.Join(fields[2:], " ")}, true
	case "delnote":
		if len(fields) != 2 {
			return command{}, false
		}
		return command{name: name, key: fields[1]}, true
	case "notes":
		return command{name: name}, true
	default:
		return command{}, false
	}
}
