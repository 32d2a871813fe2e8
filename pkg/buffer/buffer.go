// Package buffer holds already-fetched, not-yet-delivered items in arrival
// order.
package buffer

import "encoding/json"

// Item is a single opaque item as returned by the item service.
type Item = json.RawMessage

// Buffer is a FIFO queue of items. Items are appended as fetches complete
// and drained from the front as callers are served; an item is removed
// exactly once, so no two callers ever receive the same item.
//
// Buffer is not safe for concurrent use. The prefetch coordinator owns the
// single authoritative instance and serializes access to it.
type Buffer struct {
	items []Item
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append adds items to the back of the buffer.
func (b *Buffer) Append(items ...Item) {
	b.items = append(b.items, items...)
}

// PopN removes and returns up to n items from the front. Fewer than n are
// returned when the buffer holds fewer; n <= 0 returns an empty slice.
func (b *Buffer) PopN(n int) []Item {
	if n <= 0 {
		return []Item{}
	}
	if n > len(b.items) {
		n = len(b.items)
	}
	out := make([]Item, n)
	copy(out, b.items[:n])
	b.items = b.items[n:]
	return out
}

// Len returns the number of buffered items.
func (b *Buffer) Len() int {
	return len(b.items)
}

// Items returns a copy of the buffered items for introspection. The buffer
// itself is unchanged.
func (b *Buffer) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}
