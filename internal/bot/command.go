package bot

import (
	"strings"
	"unicode"
)

// Command is one entry of the bot's command menu.
type Command struct {
	Name        string
	Description string
}

// Commands returns the command menu published at startup.
func Commands() []Command {
	return []Command{
		{Name: "start", Description: "Show usage"},
		{Name: "upload", Description: "Upload a file or folder: /upload <path>"},
		{Name: "to", Description: "Upload to another chat: /to <chatId> <path>"},
		{Name: "folder", Description: "Upload a folder: /folder <path>"},
	}
}

// parseCommand splits "/name@bot args" into name and the raw argument
// text. The name ends at the first whitespace. Commands addressed to another bot are rejected. The argument text
// keeps inner spaces so paths may contain them.
func parseCommand(text, botUsername string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	name = strings.TrimPrefix(head, "/")
	if n, target, found := strings.Cut(name, "@"); found {
		if botUsername == "" || !strings.EqualFold(target, botUsername) {
			return "", "", false
		}
		name = n
	}
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(rest), true
}

// splitTarget parses "<chatId> <path>".
func splitTarget(args string) (chatID string, path string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", ""
	}
	chatID = fields[0]
	path = strings.TrimSpace(strings.TrimPrefix(args, chatID))
	return chatID, path
}
