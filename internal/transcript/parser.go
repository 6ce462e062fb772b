package transcript

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// linePattern matches "[DD/MM/YY, HH:MM:SS] Sender: content". The sender group
// is non-greedy, so the first ": " after the timestamp ends the sender; names
// containing ": " are split there.
var linePattern = regexp.MustCompile(`^\[(\d{2}/\d{2}/\d{2}, \d{2}:\d{2}:\d{2})\] (.*?): (.*)`)

// Parse converts a transcript into a Conversation. Each physical line is
// evaluated on its own: lines that do not match the message pattern (system
// notices, continuation lines of multi-line messages) are dropped.
func Parse(text string) Conversation {
	var msgs Conversation
	for _, line := range strings.Split(text, "\n") {
		m, ok := parseLine(line)
		if !ok {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// ParseBytes lossily decodes raw and parses it.
func ParseBytes(raw []byte) Conversation {
	return Parse(Decode(raw))
}

// ParseReader reads r to EOF and parses the content. Only read errors are
// returned; malformed content never is.
func ParseReader(r io.Reader) (Conversation, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return ParseBytes(raw), nil
}

func parseLine(line string) (Message, bool) {
	groups := linePattern.FindStringSubmatch(line)
	if groups == nil {
		return Message{}, false
	}
	sender := strings.TrimSpace(groups[2])
	if sender == "" {
		return Message{}, false
	}
	return Message{
		Timestamp: groups[1],
		Sender:    sender,
		Content:   strings.TrimSpace(groups[3]),
	}, true
}
