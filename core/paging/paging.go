// Package paging moves a fixed-size window over an immutable id snapshot.
package paging

// DefaultSize is the number of items per page.
const DefaultSize = 10

// DefaultColumns is the number of buttons per keyboard row.
const DefaultColumns = 2

// Window is a page position over Total items. Offset is always a multiple of Size.
type Window struct {
	Offset int
	Size   int
	Total  int
}

// New returns the window at offset, snapped to a page boundary inside total.
func New(offset, size, total int) Window {
	if size <= 0 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}
	w := Window{Size: size, Total: total}
	if offset < 0 {
		offset = 0
	}
	w.Offset = offset - offset%size
	if last := w.End().Offset; w.Offset > last {
		w.Offset = last
	}
	return w
}

// Previous steps back one page, floored at 0.
func (w Window) Previous() Window {
	w.Offset -= w.Size
	if w.Offset < 0 {
		w.Offset = 0
	}
	return w
}

// Next steps forward one page when another page exists.
func (w Window) Next() Window {
	if w.HasNext() {
		w.Offset += w.Size
	}
	return w
}

// Start jumps to the first page.
func (w Window) Start() Window {
	w.Offset = 0
	return w
}

// End jumps to the last page.
func (w Window) End() Window {
	if w.Total == 0 {
		w.Offset = 0
		return w
	}
	w.Offset = (w.Total - 1) / w.Size * w.Size
	return w
}

// HasPrevious reports whether a previous page exists.
func (w Window) HasPrevious() bool { return w.Offset > 0 }

// HasNext reports whether a next page exists.
func (w Window) HasNext() bool { return w.Offset+w.Size < w.Total }

// Bounds returns the half-open index range of the current page.
func (w Window) Bounds() (int, int) {
	lo := min(w.Offset, w.Total)
	hi := min(w.Offset+w.Size, w.Total)
	return lo, hi
}

// Page returns the slice of ids visible in w.
func Page[T any](w Window, ids []T) []T {
	w.Total = len(ids)
	lo, hi := w.Bounds()
	return ids[lo:hi]
}
