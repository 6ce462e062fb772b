package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/chatview/internal/ingest"
	"github.com/MikeSquared-Agency/chatview/internal/store"
)

const scenarioA = "[01/02/23, 09:00:00] Alice: Hi\n[01/02/23, 09:00:05] Alice: How are you?\n[01/02/23, 09:01:00] Bob: Good, thanks!\n"

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	repo := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := ingest.New(repo, nil, cfg.MaxUploadBytes, logger)
	return NewServer(cfg, repo, svc)
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, srv *Server, name, body string) UploadResponse {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/transcripts/?name="+name, strings.NewReader(body))
	w := do(srv, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{Port: 8760})

	w := do(srv, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{Port: 8760})

	w := do(srv, httptest.NewRequest("GET", "/api/v1/chatview/status", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "chatview" {
		t.Errorf("expected agent chatview, got %q", body["agent"])
	}
	if body["status"] != "ready" {
		t.Errorf("expected status ready, got %q", body["status"])
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, Config{Port: 8760})

	w := do(srv, httptest.NewRequest("GET", "/nonexistent", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpload_RawText(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := upload(t, srv, "WhatsApp%20Chat%20with%20Bob.txt", scenarioA)
	if resp.MessageCount != 3 {
		t.Errorf("expected 3 messages, got %d", resp.MessageCount)
	}
	if resp.Title != "WhatsApp Chat with Bob" {
		t.Errorf("unexpected title %q", resp.Title)
	}
	if len(resp.Senders) != 2 || resp.Senders[0] != "Alice" || resp.Senders[1] != "Bob" {
		t.Errorf("unexpected senders %v", resp.Senders)
	}
}

func TestUpload_MultipartZip(t *testing.T) {
	srv := newTestServer(t, Config{})

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	f, err := zw.Create("_chat.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte(scenarioA))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "export.zip")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(zbuf.Bytes())
	mw.WriteField("title", "Family")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/transcripts/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(srv, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Title != "Family" || resp.MessageCount != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestUpload_BadZip(t *testing.T) {
	srv := newTestServer(t, Config{})

	req := httptest.NewRequest("POST", "/api/v1/transcripts/?name=broken.zip", strings.NewReader("not a zip"))
	w := do(srv, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUpload_EmptyBody(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := do(srv, httptest.NewRequest("POST", "/api/v1/transcripts/", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	srv := newTestServer(t, Config{MaxUploadBytes: 64})

	body := strings.Repeat(scenarioA, 10)
	req := httptest.NewRequest("POST", "/api/v1/transcripts/?name=chat.txt", strings.NewReader(body))
	w := do(srv, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, Config{APIToken: "secret"})

	w := do(srv, httptest.NewRequest("GET", "/api/v1/transcripts/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/transcripts/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if w := do(srv, req); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/transcripts/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if w := do(srv, req); w.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", w.Code)
	}

	// health stays open
	if w := do(srv, httptest.NewRequest("GET", "/health", nil)); w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
}

func TestListTranscripts(t *testing.T) {
	srv := newTestServer(t, Config{})
	upload(t, srv, "one.txt", scenarioA)
	upload(t, srv, "two.txt", scenarioA)

	w := do(srv, httptest.NewRequest("GET", "/api/v1/transcripts/?limit=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Transcripts []store.TranscriptSummary `json:"transcripts"`
		Count       int                       `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || len(body.Transcripts) != 1 {
		t.Errorf("expected 1 transcript, got %d", body.Count)
	}

	if w := do(srv, httptest.NewRequest("GET", "/api/v1/transcripts/?limit=abc", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}
}

type wireEntry struct {
	Message struct {
		Sender  string `json:"sender"`
		Content string `json:"content"`
	} `json:"message"`
	Alignment struct {
		Index     int    `json:"index"`
		Side      string `json:"side"`
		Continued bool   `json:"continued"`
	} `json:"alignment"`
}

type wireMessages struct {
	Total  int `json:"total"`
	Window struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"window"`
	Next *struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"next"`
	Entries []wireEntry `json:"entries"`
}

func getMessages(t *testing.T, srv *Server, path string) wireMessages {
	t.Helper()
	w := do(srv, httptest.NewRequest("GET", path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d: %s", path, w.Code, w.Body.String())
	}
	var body wireMessages
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body
}

func TestMessages_Alignment(t *testing.T) {
	srv := newTestServer(t, Config{})
	up := upload(t, srv, "chat.txt", scenarioA)

	body := getMessages(t, srv, "/api/v1/transcripts/"+up.ID.String()+"/messages")
	if body.Total != 3 || len(body.Entries) != 3 {
		t.Fatalf("expected 3 entries, got total=%d entries=%d", body.Total, len(body.Entries))
	}

	want := []struct {
		side      string
		continued bool
	}{
		{"left", false},
		{"left", true},
		{"right", false},
	}
	for i, w := range want {
		got := body.Entries[i].Alignment
		if got.Index != i || got.Side != w.side || got.Continued != w.continued {
			t.Errorf("entry %d: got %+v, want side=%s continued=%v", i, got, w.side, w.continued)
		}
	}
	if body.Next != nil {
		t.Errorf("expected no next window, got %+v", body.Next)
	}
}

func TestMessages_WindowAndNext(t *testing.T) {
	srv := newTestServer(t, Config{PageSize: 2})
	up := upload(t, srv, "chat.txt", scenarioA)

	base := "/api/v1/transcripts/" + up.ID.String() + "/messages"
	body := getMessages(t, srv, base)
	if body.Window.Start != 0 || body.Window.End != 2 || len(body.Entries) != 2 {
		t.Fatalf("unexpected first window %+v with %d entries", body.Window, len(body.Entries))
	}
	if body.Next == nil || body.Next.Start != 0 || body.Next.End != 3 {
		t.Fatalf("unexpected next window %+v", body.Next)
	}

	// a window starting at Bob places him left; sides are not carried in
	body = getMessages(t, srv, base+"?start=2&end=3")
	if len(body.Entries) != 1 || body.Entries[0].Alignment.Side != "left" {
		t.Errorf("first message in a window is always left, got %+v", body.Entries)
	}

	// out-of-range windows are clamped
	body = getMessages(t, srv, base+"?start=5&end=100")
	if len(body.Entries) != 0 || body.Window.Start != 3 || body.Window.End != 3 {
		t.Errorf("expected empty clamped window, got %+v", body.Window)
	}
}

func TestMessages_SelfLayout(t *testing.T) {
	srv := newTestServer(t, Config{SelfName: "Bob"})
	up := upload(t, srv, "chat.txt", scenarioA)

	body := getMessages(t, srv, "/api/v1/transcripts/"+up.ID.String()+"/messages?layout=self")
	sides := []string{"left", "left", "right"}
	for i, s := range sides {
		if body.Entries[i].Alignment.Side != s {
			t.Errorf("entry %d: expected %s, got %s", i, s, body.Entries[i].Alignment.Side)
		}
	}

	body = getMessages(t, srv, "/api/v1/transcripts/"+up.ID.String()+"/messages?layout=self&self=Alice")
	sides = []string{"right", "right", "left"}
	for i, s := range sides {
		if body.Entries[i].Alignment.Side != s {
			t.Errorf("self=Alice entry %d: expected %s, got %s", i, s, body.Entries[i].Alignment.Side)
		}
	}
}

func TestMessages_Errors(t *testing.T) {
	srv := newTestServer(t, Config{})
	up := upload(t, srv, "chat.txt", scenarioA)
	base := "/api/v1/transcripts/" + up.ID.String() + "/messages"

	tests := []struct {
		name string
		path string
		want int
	}{
		{"bad id", "/api/v1/transcripts/not-a-uuid/messages", http.StatusBadRequest},
		{"unknown id", "/api/v1/transcripts/00000000-0000-0000-0000-000000000001/messages", http.StatusNotFound},
		{"bad start", base + "?start=x", http.StatusBadRequest},
		{"bad end", base + "?end=1.5", http.StatusBadRequest},
		{"bad layout", base + "?layout=diagonal", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, httptest.NewRequest("GET", tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
