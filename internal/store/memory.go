package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Repository, used when no database is configured.
type Memory struct {
	mu          sync.RWMutex
	transcripts map[uuid.UUID]Transcript
}

func NewMemory() *Memory {
	return &Memory{transcripts: make(map[uuid.UUID]Transcript)}
}

func (m *Memory) SaveTranscript(_ context.Context, t Transcript) (uuid.UUID, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Messages = slices.Clone(t.Messages)

	m.mu.Lock()
	m.transcripts[t.ID] = t
	m.mu.Unlock()
	return t.ID, nil
}

func (m *Memory) GetTranscript(_ context.Context, id uuid.UUID) (*Transcript, error) {
	m.mu.RLock()
	t, ok := m.transcripts[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	t.Messages = slices.Clone(t.Messages)
	return &t, nil
}

func (m *Memory) ListTranscripts(_ context.Context, limit int) ([]TranscriptSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	m.mu.RLock()
	out := make([]TranscriptSummary, 0, len(m.transcripts))
	for _, t := range m.transcripts {
		out = append(out, TranscriptSummary{
			ID:           t.ID,
			Title:        t.Title,
			Source:       t.Source,
			MessageCount: len(t.Messages),
			CreatedAt:    t.CreatedAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
