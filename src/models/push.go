package models

import "time"

// -----------------------------------------------------------------------------
// Monitoring push channel
// -----------------------------------------------------------------------------

// MPushMessage is what the websocket hub writes. INITIAL carries every
// snapshot the listener asked for, UPDATE carries one event.
type MPushMessage struct {
	Type      string                `json:"type"`
	Snapshots []MMarketDataSnapshot `json:"snapshots,omitempty"`
	Event     *MMarketDataEvent     `json:"event,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

// MSubscribeCommand narrows a websocket listener to some request ids. An
// empty list means everything.
type MSubscribeCommand struct {
	Command    string `json:"command"`
	RequestIDs []int  `json:"request_ids"`
}

// MPolicyUpdate is the REST and gRPC form of a session policy change. Nil
// fields keep their current value.
type MPolicyUpdate struct {
	DuplicateTimeoutMs       *int  `json:"duplicate_timeout_ms,omitempty"`
	GenerateTradesFromLast   *bool `json:"generate_trades_from_last,omitempty"`
	GenerateTradesFromVolume *bool `json:"generate_trades_from_volume,omitempty"`
	SuppressSizeWithPrice    *bool `json:"suppress_size_with_price,omitempty"`
}

// Apply returns p with the set fields of u replaced.
func (u MPolicyUpdate) Apply(p MSessionPolicy) MSessionPolicy {
	if u.DuplicateTimeoutMs != nil {
		p.DuplicateTimeout = time.Duration(*u.DuplicateTimeoutMs) * time.Millisecond
	}
	if u.GenerateTradesFromLast != nil {
		p.GenerateTradesFromLast = *u.GenerateTradesFromLast
	}
	if u.GenerateTradesFromVolume != nil {
		p.GenerateTradesFromVolume = *u.GenerateTradesFromVolume
	}
	if u.SuppressSizeWithPrice != nil {
		p.SuppressSizeWithPrice = *u.SuppressSizeWithPrice
	}
	return p
}
