package grouping

// DefaultPageSize is the window size used when callers pass a non-positive size.
const DefaultPageSize = 50

// Window is a half-open index range [Start, End) over a conversation. It is
// the cursor a caller keeps between "load more" requests.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FirstWindow returns the initial window [0, size).
func FirstWindow(size int) Window {
	return Window{Start: 0, End: pageSize(size)}
}

// Len returns the number of indices in the window, or 0 when it is empty.
func (w Window) Len() int {
	if w.End <= w.Start {
		return 0
	}
	return w.End - w.Start
}

// Clamp bounds the window to [0, total].
func (w Window) Clamp(total int) Window {
	if w.Start < 0 {
		w.Start = 0
	}
	if w.End > total {
		w.End = total
	}
	if w.Start > total {
		w.Start = total
	}
	if w.End < w.Start {
		w.End = w.Start
	}
	return w
}

// HasMore reports whether messages remain past the end of the window.
func (w Window) HasMore(total int) bool {
	return w.End < total
}

// Next grows the window by size messages, keeping Start. The result is capped
// at total.
func (w Window) Next(total, size int) Window {
	return Window{Start: w.Start, End: w.End + pageSize(size)}.Clamp(total)
}

// Pages splits total messages into consecutive windows of at most size.
func Pages(total, size int) []Window {
	if total <= 0 {
		return nil
	}
	size = pageSize(size)

	pages := make([]Window, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		pages = append(pages, Window{Start: start, End: end})
	}
	return pages
}

func pageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}
