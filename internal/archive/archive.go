// Package archive pulls chat transcript text out of exported files: either a
// zip archive with a .txt member, or a bare .txt file.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// DefaultMaxBytes bounds the size of a transcript read from an upload.
const DefaultMaxBytes = 32 << 20

var (
	ErrInvalidArchive = errors.New("invalid .zip file")
	ErrNoTranscript   = errors.New("no .txt file found in archive")
	ErrTooLarge       = errors.New("transcript exceeds size limit")
)

var zipMagic = []byte("PK\x03\x04")

// File is a transcript ready for parsing.
type File struct {
	Name  string // archive member or file name
	Title string
	Text  []byte
}

// Load returns the transcript contained in data. Zip input (by extension or
// magic bytes) is unpacked; anything else is treated as transcript text.
// maxBytes <= 0 means DefaultMaxBytes.
func Load(name string, data []byte, maxBytes int64) (File, error) {
	maxBytes = limit(maxBytes)

	if IsZip(name, data) {
		member, text, err := ExtractText(data, maxBytes)
		if err != nil {
			return File{}, err
		}
		return File{Name: member, Title: Title(member), Text: text}, nil
	}

	if int64(len(data)) > maxBytes {
		return File{}, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	return File{Name: name, Title: Title(name), Text: data}, nil
}

// IsZip reports whether the input should be treated as a zip archive.
func IsZip(name string, data []byte) bool {
	if strings.EqualFold(path.Ext(name), ".zip") {
		return true
	}
	return bytes.HasPrefix(data, zipMagic)
}

// ExtractText returns the first member (in archive order) whose name ends in
// ".txt", along with its contents.
func ExtractText(data []byte, maxBytes int64) (string, []byte, error) {
	maxBytes = limit(maxBytes)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".txt") {
			continue
		}
		if f.UncompressedSize64 > uint64(maxBytes) {
			return "", nil, fmt.Errorf("%s: %w", f.Name, ErrTooLarge)
		}

		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("%w: open %s: %v", ErrInvalidArchive, f.Name, err)
		}
		text, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("%w: read %s: %v", ErrInvalidArchive, f.Name, err)
		}
		if int64(len(text)) > maxBytes {
			return "", nil, fmt.Errorf("%s: %w", f.Name, ErrTooLarge)
		}
		return f.Name, text, nil
	}

	return "", nil, ErrNoTranscript
}

// Title derives a chat title from a file name: the base name up to its first
// dot, e.g. "WhatsApp Chat with Bob.txt" -> "WhatsApp Chat with Bob".
func Title(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func limit(maxBytes int64) int64 {
	if maxBytes <= 0 {
		return DefaultMaxBytes
	}
	return maxBytes
}
