// Package session persists the CLI's "load more" cursor between runs.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/chatview/internal/grouping"
)

// Cursor is the window last shown for one transcript file.
type Cursor struct {
	Window    grouping.Window `json:"window"`
	PageSize  int             `json:"page_size"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// State maps transcript paths to their cursors.
type State struct {
	Cursors map[string]Cursor `json:"cursors"`

	path string // not serialized
}

// LoadState reads the state file at path, or returns an empty state when it
// does not exist. A leading "~/" is expanded to the home directory.
func LoadState(path string) (*State, error) {
	p := ExpandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Cursors: make(map[string]Cursor), path: p}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if s.Cursors == nil {
		s.Cursors = make(map[string]Cursor)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *State) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// Window returns the stored window for transcript, or the first page when
// none is stored or the page size changed.
func (s *State) Window(transcript string, pageSize int) grouping.Window {
	c, ok := s.Cursors[key(transcript)]
	if !ok || c.PageSize != pageSize {
		return grouping.FirstWindow(pageSize)
	}
	return c.Window
}

// Advance grows the stored window by one page and returns it.
func (s *State) Advance(transcript string, total, pageSize int) grouping.Window {
	next := s.Window(transcript, pageSize).Next(total, pageSize)
	s.set(transcript, next, pageSize)
	return next
}

// Reset rewinds transcript to its first page and returns it.
func (s *State) Reset(transcript string, pageSize int) grouping.Window {
	first := grouping.FirstWindow(pageSize)
	s.set(transcript, first, pageSize)
	return first
}

func (s *State) set(transcript string, w grouping.Window, pageSize int) {
	s.Cursors[key(transcript)] = Cursor{
		Window:    w,
		PageSize:  pageSize,
		UpdatedAt: time.Now().UTC(),
	}
}

func key(transcript string) string {
	if abs, err := filepath.Abs(transcript); err == nil {
		return abs
	}
	return transcript
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
