package marketdata

import (
	"twsclient/src/models"
)

// -----------------------------------------------------------------------------
// TickHistory is a fixed-size circular buffer of the latest events of one
// subscription. Not safe for concurrent use; the engine guards it.
// -----------------------------------------------------------------------------

type TickHistory struct {
	data     []models.MMarketDataEvent
	capacity int
	index    int // Next write position
	size     int
}

// -----------------------------------------------------------------------------

const defaultHistoryDepth = 256

func NewTickHistory(capacity int) *TickHistory {
	if capacity <= 0 {
		capacity = defaultHistoryDepth
	}
	return &TickHistory{
		data:     make([]models.MMarketDataEvent, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append stores ev, overwriting the oldest entry when full.
func (h *TickHistory) Append(ev models.MMarketDataEvent) {
	h.data[h.index] = ev
	h.index = (h.index + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns up to n of the newest events, oldest first.
func (h *TickHistory) Latest(n int) []models.MMarketDataEvent {
	if h.size == 0 || n <= 0 {
		return []models.MMarketDataEvent{}
	}
	count := n
	if count > h.size {
		count = h.size
	}

	result := make([]models.MMarketDataEvent, count)
	start := (h.index - count + h.capacity) % h.capacity
	for i := 0; i < count; i++ {
		result[i] = h.data[(start+i)%h.capacity]
	}
	return result
}

// -----------------------------------------------------------------------------

// All returns every stored event, oldest first.
func (h *TickHistory) All() []models.MMarketDataEvent {
	return h.Latest(h.size)
}

// -----------------------------------------------------------------------------

func (h *TickHistory) Size() int {
	return h.size
}

func (h *TickHistory) Capacity() int {
	return h.capacity
}

func (h *TickHistory) IsFull() bool {
	return h.size == h.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity, keeping the newest events that still fit.
func (h *TickHistory) Resize(capacity int) {
	if capacity <= 0 || capacity == h.capacity {
		return
	}
	kept := h.Latest(capacity)
	h.data = make([]models.MMarketDataEvent, capacity)
	copy(h.data, kept)
	h.capacity = capacity
	h.size = len(kept)
	h.index = h.size % capacity
}

// -----------------------------------------------------------------------------

func (h *TickHistory) Clear() {
	clear(h.data)
	h.index = 0
	h.size = 0
}
