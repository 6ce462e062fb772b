package hermes

import (
	"errors"
	"time"
)

const (
	// SubjectSubmitted carries transcripts pushed by other services for import.
	SubjectSubmitted = "chatview.transcript.submitted"
	// SubjectImported is published after a transcript has been parsed and stored.
	SubjectImported = "chatview.transcript.imported"
)

// SubmittedEvent asks chatview to import a transcript. Either Text (plain
// transcript) or Data (raw export bytes, base64 in JSON) must be set.
type SubmittedEvent struct {
	Name   string `json:"name,omitempty"` // file name, used to detect zip archives
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text,omitempty"`
	Data   []byte `json:"data_b64,omitempty"`
}

var errEmptySubmission = errors.New("submission has neither text nor data")

// Payload returns the file name and bytes to import.
func (e SubmittedEvent) Payload() (string, []byte, error) {
	name := e.Name
	if name == "" {
		name = "submitted.txt"
	}
	switch {
	case len(e.Data) > 0:
		return name, e.Data, nil
	case e.Text != "":
		return name, []byte(e.Text), nil
	default:
		return "", nil, errEmptySubmission
	}
}

// ImportedEvent announces a stored transcript.
type ImportedEvent struct {
	TranscriptID string    `json:"transcript_id"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	MessageCount int       `json:"message_count"`
	Senders      []string  `json:"senders"`
	Timestamp    time.Time `json:"timestamp"`
}
