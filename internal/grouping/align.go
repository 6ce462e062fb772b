// Package grouping assigns display alignment to conversation messages.
// It groups consecutive messages from one sender into a run and decides which
// side each run is drawn on. All functions are pure and keep no state between
// calls; windowing state belongs to the caller.
package grouping

import (
	"fmt"

	"github.com/MikeSquared-Agency/chatview/internal/transcript"
)

// Side is the horizontal placement of a message bubble.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Alignment is the display decision for one message.
type Alignment struct {
	Index     int  `json:"index"`
	Side      Side `json:"side"`
	Continued bool `json:"continued"` // same sender as the previous message in the window
}

// Class names the alignment as one of first-left, first-right,
// continued-left or continued-right.
func (a Alignment) Class() string {
	if a.Continued {
		return "continued-" + a.Side.String()
	}
	return "first-" + a.Side.String()
}

// Layout selects how a new sender's side is chosen.
type Layout int

const (
	// LayoutAlternate compares the previous sender against the conversation's
	// first sender.
	LayoutAlternate Layout = iota
	// LayoutSelf puts one named participant on the right and everyone else on the left.
	LayoutSelf
)

func (l Layout) String() string {
	if l == LayoutSelf {
		return "self"
	}
	return "alternate"
}

// ParseLayout maps "alternate" (or "") and "self" to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "alternate":
		return LayoutAlternate, nil
	case "self":
		return LayoutSelf, nil
	default:
		return LayoutAlternate, fmt.Errorf("unknown layout %q", s)
	}
}

// Options configures View.
type Options struct {
	Layout Layout
	Self   string // participant drawn on the right under LayoutSelf
}

// Entry pairs a message with its alignment for renderers.
type Entry struct {
	Message   transcript.Message `json:"message"`
	Alignment Alignment          `json:"alignment"`
}

// Align computes alignments for conv[start:end] in one forward pass.
//
// The previous-sender memory starts empty at start. The first message in the
// window is always left. A message from the same sender as its predecessor
// continues on the same side. Any other sender goes right when the previous
// sender is the conversation's first sender (conv[0], not the window's first),
// and left otherwise. With three or more participants this alternates by
// proxy rather than mapping each identity to a fixed side.
//
// The window is clamped to the conversation; an empty window yields nil.
func Align(conv transcript.Conversation, start, end int) []Alignment {
	first := conv.FirstSender()
	return alignWith(conv, start, end, func(prevSender, _ string) Side {
		if prevSender == first {
			return Right
		}
		return Left
	}, false)
}

// AlignSelf is Align with self always on the right and every other sender on
// the left. Continuation is decided exactly as in Align, and the first message
// of the window is placed by the same rule as the rest.
func AlignSelf(conv transcript.Conversation, start, end int, self string) []Alignment {
	return alignWith(conv, start, end, func(_, sender string) Side {
		if sender == self {
			return Right
		}
		return Left
	}, true)
}

// View returns the messages of conv[start:end] paired with their alignment.
func View(conv transcript.Conversation, start, end int, opts Options) []Entry {
	var aligned []Alignment
	if opts.Layout == LayoutSelf {
		aligned = AlignSelf(conv, start, end, opts.Self)
	} else {
		aligned = Align(conv, start, end)
	}

	entries := make([]Entry, len(aligned))
	for i, a := range aligned {
		entries[i] = Entry{Message: conv[a.Index], Alignment: a}
	}
	return entries
}

// sideFunc picks the side for a sender that starts a new run.
type sideFunc func(prevSender, sender string) Side

func alignWith(conv transcript.Conversation, start, end int, newSide sideFunc, placeFirst bool) []Alignment {
	w := Window{Start: start, End: end}.Clamp(len(conv))
	if w.Len() == 0 {
		return nil
	}

	out := make([]Alignment, 0, w.Len())
	var (
		prevSender string
		prevSide   Side
		started    bool
	)
	for i := w.Start; i < w.End; i++ {
		sender := conv[i].Sender
		a := Alignment{Index: i}

		switch {
		case started && sender == prevSender:
			a.Side = prevSide
			a.Continued = true
		case !started:
			a.Side = Left
			if placeFirst {
				a.Side = newSide("", sender)
			}
		default:
			a.Side = newSide(prevSender, sender)
		}

		out = append(out, a)
		prevSender = sender
		prevSide = a.Side
		started = true
	}
	return out
}
