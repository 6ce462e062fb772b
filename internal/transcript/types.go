package transcript

import (
	"fmt"
	"time"
)

// TimestampLayout is the lexical shape of an exported message timestamp,
// e.g. "01/02/23, 09:00:00" (day/month/year, 24h clock).
const TimestampLayout = "02/01/06, 15:04:05"

// Message is a single parsed chat line. Values are never modified after parsing.
type Message struct {
	Timestamp string `json:"timestamp"` // kept verbatim, "DD/MM/YY, HH:MM:SS"
	Sender    string `json:"sender"`
	Content   string `json:"content"`
}

// Time parses the message timestamp as UTC.
func (m Message) Time() (time.Time, error) {
	t, err := time.Parse(TimestampLayout, m.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", m.Timestamp, err)
	}
	return t, nil
}

// Conversation is the ordered sequence of messages from one transcript, in
// source line order.
type Conversation []Message

// FirstSender returns the sender of the first message, or "" when empty.
func (c Conversation) FirstSender() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Sender
}

// Senders returns the distinct senders in order of first appearance.
func (c Conversation) Senders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c {
		if seen[m.Sender] {
			continue
		}
		seen[m.Sender] = true
		out = append(out, m.Sender)
	}
	return out
}
