package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DirSummary reports the outcome of ImportDir.
type DirSummary struct {
	Imported []uuid.UUID
	Messages int
	Errors   []string
}

// ImportDir imports every .zip and .txt export under root. root may also be a
// single file. A file that fails to import is recorded in the summary and the
// walk continues; only cancellation or an unreadable root stop it.
func (s *Service) ImportDir(ctx context.Context, root, source string) (DirSummary, error) {
	var sum DirSummary

	files, err := discoverFiles(root)
	if err != nil {
		return sum, fmt.Errorf("discover files: %w", err)
	}
	s.logger.Info("files discovered", "root", root, "files", len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			s.logger.Info("import interrupted", "imported", len(sum.Imported))
			return sum, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read export", "path", path, "error", err)
			sum.Errors = append(sum.Errors, fmt.Sprintf("read %s: %v", path, err))
			continue
		}

		t, err := s.Import(ctx, Request{Name: filepath.Base(path), Source: source, Data: data})
		if err != nil {
			s.logger.Warn("failed to import export", "path", path, "error", err)
			sum.Errors = append(sum.Errors, fmt.Sprintf("import %s: %v", path, err))
			continue
		}
		sum.Imported = append(sum.Imported, t.ID)
		sum.Messages += len(t.Messages)
	}

	return sum, nil
}

func discoverFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".zip", ".txt":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
