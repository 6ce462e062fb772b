package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/chatview/internal/archive"
	"github.com/MikeSquared-Agency/chatview/internal/grouping"
	"github.com/MikeSquared-Agency/chatview/internal/ingest"
	"github.com/MikeSquared-Agency/chatview/internal/store"
)

// multipartOverhead is allowed on top of the transcript limit for form framing.
const multipartOverhead = 1 << 20

// UploadResponse is returned after a successful import.
type UploadResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	Senders      []string  `json:"senders"`
}

// MessagesResponse is one window of aligned messages.
type MessagesResponse struct {
	TranscriptID uuid.UUID        `json:"transcript_id"`
	Title        string           `json:"title"`
	Total        int              `json:"total"`
	Layout       string           `json:"layout"`
	Window       grouping.Window  `json:"window"`
	Next         *grouping.Window `json:"next"` // nil when the window reaches the end
	Entries      []grouping.Entry `json:"entries"`
}

// uploadTranscript handles POST /api/v1/transcripts. It accepts a multipart
// form with a "file" field, or the raw export as the request body with the
// file name in ?name=.
func (s *Server) uploadTranscript(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = archive.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	name, title, data, err := readUpload(r, maxBytes)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.ingest.Import(r.Context(), ingest.Request{
		Name:   name,
		Title:  title,
		Source: "upload",
		Data:   data,
	})
	switch {
	case errors.Is(err, archive.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, archive.ErrInvalidArchive), errors.Is(err, archive.ErrNoTranscript):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("import failed", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	senders := t.Messages.Senders()
	if senders == nil {
		senders = []string{}
	}
	writeJSON(w, http.StatusCreated, UploadResponse{
		ID:           t.ID,
		Title:        t.Title,
		MessageCount: len(t.Messages),
		Senders:      senders,
	})
}

func readUpload(r *http.Request, maxBytes int64) (name, title string, data []byte, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err = io.ReadAll(r.Body)
		if err != nil {
			return "", "", nil, err
		}
		if len(data) == 0 {
			return "", "", nil, errors.New("empty request body")
		}
		name = r.URL.Query().Get("name")
		if name == "" {
			name = "upload.txt"
		}
		return name, r.URL.Query().Get("title"), data, nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", "", nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, errors.New(`missing form field "file"`)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, err
	}
	return header.Filename, r.FormValue("title"), data, nil
}

// listTranscripts handles GET /api/v1/transcripts.
func (s *Server) listTranscripts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := s.repo.ListTranscripts(r.Context(), limit)
	if err != nil {
		slog.Error("list transcripts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if list == nil {
		list = []store.TranscriptSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transcripts": list,
		"count":       len(list),
		"as_of":       time.Now().UTC().Format(time.RFC3339),
	})
}

// transcriptMessages handles GET /api/v1/transcripts/{id}/messages.
// The caller owns the window: ?start=&end= select it, and the response's
// "next" field is the window to request for "load more".
func (s *Server) transcriptMessages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transcript id")
		return
	}

	q := r.URL.Query()
	start, err := intParam(q.Get("start"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start")
		return
	}
	end, err := intParam(q.Get("end"), start+s.cfg.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end")
		return
	}
	layout, err := grouping.ParseLayout(q.Get("layout"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	self := q.Get("self")
	if self == "" {
		self = s.cfg.SelfName
	}

	t, err := s.repo.GetTranscript(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transcript not found")
		return
	}
	if err != nil {
		slog.Error("get transcript failed", "transcript_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	total := len(t.Messages)
	win := grouping.Window{Start: start, End: end}.Clamp(total)

	resp := MessagesResponse{
		TranscriptID: t.ID,
		Title:        t.Title,
		Total:        total,
		Layout:       layout.String(),
		Window:       win,
		Entries:      grouping.View(t.Messages, win.Start, win.End, grouping.Options{Layout: layout, Self: self}),
	}
	if win.HasMore(total) {
		next := win.Next(total, s.cfg.PageSize)
		resp.Next = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
