// Package ingest runs the import pipeline: unpack an export, parse it, store
// the conversation and announce it on NATS.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/chatview/internal/archive"
	"github.com/MikeSquared-Agency/chatview/internal/hermes"
	"github.com/MikeSquared-Agency/chatview/internal/store"
	"github.com/MikeSquared-Agency/chatview/internal/transcript"
)

const untitled = "Untitled chat"

// Publisher is the subset of the NATS client the service needs.
type Publisher interface {
	Publish(subject string, data any) error
}

// Request describes one export to import.
type Request struct {
	Name   string // file name; ".zip" or zip magic bytes select archive handling
	Title  string // optional; derived from the transcript file name when empty
	Source string // free-form origin label, e.g. "upload", "cli", "nats"
	Data   []byte
}

// Service imports transcripts into a repository.
type Service struct {
	repo     store.Repository
	pub      Publisher
	maxBytes int64
	logger   *slog.Logger
}

// New creates a Service. pub may be nil to disable import events.
func New(repo store.Repository, pub Publisher, maxBytes int64, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		pub:      pub,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Import stores the conversation contained in req. A transcript with no
// recognisable messages is still stored; callers present it as empty.
func (s *Service) Import(ctx context.Context, req Request) (*store.Transcript, error) {
	file, err := archive.Load(req.Name, req.Data, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", req.Name, err)
	}

	msgs := transcript.ParseBytes(file.Text)

	t := store.Transcript{
		Title:     firstNonEmpty(req.Title, file.Title, untitled),
		Source:    req.Source,
		CreatedAt: time.Now().UTC(),
		Messages:  msgs,
	}
	id, err := s.repo.SaveTranscript(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}
	t.ID = id

	s.logger.Info("transcript imported",
		"transcript_id", id,
		"title", t.Title,
		"source", t.Source,
		"messages", len(msgs),
	)
	s.announce(t)

	return &t, nil
}

// announce publishes the import event. Failures are logged only.
func (s *Service) announce(t store.Transcript) {
	if s.pub == nil {
		return
	}
	evt := hermes.ImportedEvent{
		TranscriptID: t.ID.String(),
		Title:        t.Title,
		Source:       t.Source,
		MessageCount: len(t.Messages),
		Senders:      t.Messages.Senders(),
		Timestamp:    t.CreatedAt,
	}
	if err := s.pub.Publish(hermes.SubjectImported, evt); err != nil {
		s.logger.Warn("failed to publish import event", "transcript_id", t.ID, "error", err)
	}
}

// HandleSubmitted is the NATS handler for hermes.SubjectSubmitted.
func (s *Service) HandleSubmitted(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.SubmittedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Error("failed to parse submission", "subject", subject, "error", err)
		return
	}

	name, payload, err := evt.Payload()
	if err != nil {
		s.logger.Error("invalid submission", "subject", subject, "title", evt.Title, "error", err)
		return
	}

	source := evt.Source
	if source == "" {
		source = "nats"
	}
	if _, err := s.Import(ctx, Request{Name: name, Title: evt.Title, Source: source, Data: payload}); err != nil {
		s.logger.Error("import failed", "subject", subject, "name", name, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
