package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/chatview/internal/transcript"
)

// SaveTranscript writes a transcript and its messages in one transaction.
// Messages are stored with their source position so reads preserve order.
func (s *Store) SaveTranscript(ctx context.Context, t Transcript) (uuid.UUID, error) {
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO transcripts (id, title, source, message_count, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, t.Title, t.Source, len(t.Messages), createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert transcript: %w", err)
	}

	if len(t.Messages) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"transcript_messages"},
			[]string{"transcript_id", "seq", "ts", "sender", "content"},
			pgx.CopyFromSlice(len(t.Messages), func(i int) ([]any, error) {
				m := t.Messages[i]
				return []any{id, i, m.Timestamp, m.Sender, m.Content}, nil
			}),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("copy messages: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetTranscript loads a transcript with all of its messages in source order.
func (s *Store) GetTranscript(ctx context.Context, id uuid.UUID) (*Transcript, error) {
	t := Transcript{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT title, source, created_at FROM transcripts WHERE id = $1`, id,
	).Scan(&t.Title, &t.Source, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ts, sender, content FROM transcript_messages
		WHERE transcript_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (transcript.Message, error) {
		var m transcript.Message
		err := row.Scan(&m.Timestamp, &m.Sender, &m.Content)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	t.Messages = msgs
	return &t, nil
}

// ListTranscripts returns the most recently imported transcripts first.
func (s *Store) ListTranscripts(ctx context.Context, limit int) ([]TranscriptSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, source, message_count, created_at FROM transcripts
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []TranscriptSummary
	for rows.Next() {
		var ts TranscriptSummary
		if err := rows.Scan(&ts.ID, &ts.Title, &ts.Source, &ts.MessageCount, &ts.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return out, nil
}
