package bot

import "strings"

// Event is a message read from the real-time stream.
type Event struct {
	Text      string
	Channel   string
	User      string
	Timestamp string
}

// Command is a message directed to the bot with the mention removed.
type Command struct {
	Text      string
	Channel   string
	User      string
	Timestamp string
}

// Mention returns the token Slack uses to mention the user id.
func Mention(id string) string {
	return "<@" + id + ">"
}

// Filter returns the first event of batch that mentions the bot. The command
// text is what follows the mention, up to a second mention if there is one.
func Filter(batch []Event, mention string) (Command, bool) {
	if mention == "" {
		return Command{}, false
	}

	for _, ev := range batch {
		i := strings.Index(ev.Text, mention)
		if i < 0 {
			continue
		}

		text := ev.Text[i+len(mention):]
		if j := strings.Index(text, mention); j >= 0 {
			text = text[:j]
		}
		return Command{
			Text:      strings.TrimSpace(text),
			Channel:   ev.Channel,
			User:      ev.User,
			Timestamp: ev.Timestamp,
		}, true
	}
	return Command{}, false
}
