package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/chatview/internal/transcript"
)

// ErrNotFound is returned when a transcript id is unknown.
var ErrNotFound = errors.New("transcript not found")

// Transcript is a parsed conversation with its import metadata.
type Transcript struct {
	ID        uuid.UUID
	Title     string
	Source    string
	CreatedAt time.Time
	Messages  transcript.Conversation
}

// TranscriptSummary is the listing view of a stored transcript.
type TranscriptSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists transcripts. Stored conversations are treated as
// read-only once saved.
type Repository interface {
	SaveTranscript(ctx context.Context, t Transcript) (uuid.UUID, error)
	GetTranscript(ctx context.Context, id uuid.UUID) (*Transcript, error)
	ListTranscripts(ctx context.Context, limit int) ([]TranscriptSummary, error)
}

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id            UUID PRIMARY KEY,
	title         TEXT NOT NULL,
	source        TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transcript_messages (
	transcript_id UUID NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
	seq           INTEGER NOT NULL,
	ts            TEXT NOT NULL,
	sender        TEXT NOT NULL,
	content       TEXT NOT NULL,
	PRIMARY KEY (transcript_id, seq)
);`

// Migrate creates the transcript tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*Memory)(nil)
)
