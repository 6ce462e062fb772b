package render

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/chatview/internal/grouping"
	"github.com/MikeSquared-Agency/chatview/internal/transcript"
)

const scenarioA = "[01/02/23, 09:00:00] Alice: Hi\n[01/02/23, 09:00:05] Alice: How are you?\n[01/02/23, 09:01:00] Bob: Good, thanks!"

func lineContaining(t *testing.T, out, needle string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	t.Fatalf("no line contains %q in:\n%s", needle, out)
	return ""
}

func TestRender_Sides(t *testing.T) {
	conv := transcript.Parse(scenarioA)
	entries := grouping.View(conv, 0, len(conv), grouping.Options{})

	out := New(80).Render("Chat with Bob", entries, grouping.Window{Start: 0, End: 3}, 3)

	left := lineContaining(t, out, "How are you?")
	if strings.HasPrefix(left, " ") {
		t.Errorf("left bubble should start at column 0: %q", left)
	}
	right := lineContaining(t, out, "Good, thanks!")
	if !strings.HasPrefix(right, " ") {
		t.Errorf("right bubble should be indented: %q", right)
	}
}

func TestRender_ContinuedBubbleOmitsSender(t *testing.T) {
	conv := transcript.Parse(scenarioA)
	entries := grouping.View(conv, 0, len(conv), grouping.Options{})

	out := New(80).Render("Chat", entries, grouping.Window{Start: 0, End: 3}, 3)

	if n := strings.Count(out, "Alice"); n != 1 {
		t.Errorf("expected Alice header once for her run, got %d", n)
	}
	if !strings.Contains(out, "01/02/23, 09:00:05") {
		t.Error("continued bubble should still show its timestamp")
	}
}

func TestRender_Empty(t *testing.T) {
	out := New(80).Render("Empty", nil, grouping.Window{}, 0)
	if !strings.Contains(out, "No messages found.") {
		t.Errorf("expected empty notice, got:\n%s", out)
	}
}

func TestRender_FooterMentionsMore(t *testing.T) {
	conv := transcript.Parse(scenarioA)
	entries := grouping.View(conv, 0, 2, grouping.Options{})

	out := New(80).Render("Chat", entries, grouping.Window{Start: 0, End: 2}, 3)
	if !strings.Contains(out, "messages 1-2 of 3") {
		t.Errorf("footer missing window info:\n%s", out)
	}
	if !strings.Contains(out, "--more") {
		t.Errorf("footer should hint at --more:\n%s", out)
	}
}

func TestRender_LongContentWraps(t *testing.T) {
	long := strings.Repeat("word ", 40)
	conv := transcript.Conversation{{Timestamp: "01/02/23, 09:00:00", Sender: "Alice", Content: long}}
	entries := grouping.View(conv, 0, 1, grouping.Options{})

	out := New(60).Render("Chat", entries, grouping.Window{Start: 0, End: 1}, 1)
	for _, line := range strings.Split(out, "\n") {
		if w := len([]rune(line)); w > 60 {
			t.Errorf("line exceeds width (%d): %q", w, line)
		}
	}
}

func TestNew_MinimumWidth(t *testing.T) {
	if New(10).width != minWidth {
		t.Errorf("expected width raised to %d", minWidth)
	}
	if New(0).width != defaultWidth {
		t.Errorf("expected default width %d", defaultWidth)
	}
}
