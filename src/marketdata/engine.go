// Package marketdata folds the unordered tick stream of every market data
// subscription into one snapshot per request id.
//
// Only the dispatcher goroutine calls the Apply methods. Everything else
// (snapshot reads, policy changes, subscribe/unsubscribe from API callers)
// goes through the engine lock, and readers always get copies.
package marketdata

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"twsclient/src/helpers"
	"twsclient/src/logger"
	"twsclient/src/metrics"
	"twsclient/src/models"
)

// -----------------------------------------------------------------------------

type Options struct {
	Policy models.MSessionPolicy

	// CalendarMIC forces one exchange calendar for every subscription. Empty
	// picks one per contract.
	CalendarMIC string

	HistoryDepth int
	Now          func() time.Time
	Logger       *logger.Logger
	Metrics      *metrics.Collectors
}

// PolicyFromConfig converts the YAML policy section.
func PolicyFromConfig(c models.MPolicyConfig) models.MSessionPolicy {
	return models.MSessionPolicy{
		DuplicateTimeout:         time.Duration(c.DuplicateTimeoutMs) * time.Millisecond,
		GenerateTradesFromLast:   c.GenerateTradesFromLast,
		GenerateTradesFromVolume: c.GenerateTradesFromVolume,
		SuppressSizeWithPrice:    c.SuppressSizeWithPrice,
	}
}

// -----------------------------------------------------------------------------

type subscription struct {
	snap     models.MMarketDataSnapshot
	calendar *SessionCalendar
	history  *TickHistory
}

type Engine struct {
	log     *logger.Logger
	metrics *metrics.Collectors
	now     func() time.Time
	mic     string
	depth   int

	mu        sync.RWMutex
	policy    models.MSessionPolicy
	subs      map[int]*subscription
	calendars map[string]*SessionCalendar
}

// -----------------------------------------------------------------------------

func NewEngine(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger("MarketData")
	}
	return &Engine{
		log:       opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
		mic:       opts.CalendarMIC,
		depth:     opts.HistoryDepth,
		policy:    opts.Policy,
		subs:      make(map[int]*subscription),
		calendars: make(map[string]*SessionCalendar),
	}
}

// -----------------------------------------------------------------------------
// Policy
// -----------------------------------------------------------------------------

func (e *Engine) Policy() models.MSessionPolicy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

func (e *Engine) SetPolicy(p models.MSessionPolicy) {
	e.mu.Lock()
	e.policy = p
	e.mu.Unlock()
	e.log.Info("Session policy updated: %+v", p)
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Subscribe creates an empty snapshot for requestID, replacing any previous
// one. Call it before the market data request goes out.
func (e *Engine) Subscribe(requestID int, contract models.MContract) {
	mic := e.mic
	if mic == "" {
		mic = MICForContract(contract)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cal, ok := e.calendars[mic]
	if !ok {
		cal = NewSessionCalendar(mic, e.log)
		e.calendars[mic] = cal
	}

	now := e.now()
	e.subs[requestID] = &subscription{
		snap: models.MMarketDataSnapshot{
			RequestID: requestID,
			Contract:  contract,
			CreatedAt: now,
			UpdatedAt: now,
		},
		calendar: cal,
		history:  NewTickHistory(e.depth),
	}
	e.metrics.SetActiveSubscriptions(len(e.subs))
}

// -----------------------------------------------------------------------------

// Unsubscribe drops the snapshot. It reports whether one existed.
func (e *Engine) Unsubscribe(requestID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.subs[requestID]
	delete(e.subs, requestID)
	e.metrics.SetActiveSubscriptions(len(e.subs))
	return ok
}

// Clear drops every snapshot. Called when the connection goes away.
func (e *Engine) Clear() {
	e.mu.Lock()
	clear(e.subs)
	e.mu.Unlock()
	e.metrics.SetActiveSubscriptions(0)
}

// -----------------------------------------------------------------------------
// Readers
// -----------------------------------------------------------------------------

func (e *Engine) Snapshot(requestID int) (models.MMarketDataSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sub, ok := e.subs[requestID]
	if !ok {
		return models.MMarketDataSnapshot{}, false
	}
	return sub.snap.Clone(), true
}

// Snapshots returns a copy of every snapshot ordered by request id.
func (e *Engine) Snapshots() []models.MMarketDataSnapshot {
	e.mu.RLock()
	out := make([]models.MMarketDataSnapshot, 0, len(e.subs))
	for _, sub := range e.subs {
		out = append(out, sub.snap.Clone())
	}
	e.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.MMarketDataSnapshot) int {
		return cmp.Compare(a.RequestID, b.RequestID)
	})
	return out
}

// History returns up to n of the latest events of requestID, oldest first.
func (e *Engine) History(requestID, n int) ([]models.MMarketDataEvent, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sub, ok := e.subs[requestID]
	if !ok {
		return nil, false
	}
	return sub.history.Latest(n), true
}

// -----------------------------------------------------------------------------
// Tick folding
// -----------------------------------------------------------------------------

type side struct {
	name       string
	price      *float64
	size       *int
	at         *time.Time
	events     *int
	duplicates *int
}

func sideOf(s *models.MMarketDataSnapshot, tick models.TickType) side {
	switch tick {
	case models.TickBid, models.TickBidSize:
		return side{"bid", &s.Bid, &s.BidSize, &s.BidTime, &s.BidEvents, &s.BidDuplicates}
	case models.TickAsk, models.TickAskSize:
		return side{"ask", &s.Ask, &s.AskSize, &s.AskTime, &s.AskEvents, &s.AskDuplicates}
	default:
		return side{"last", &s.Last, &s.LastSize, &s.LastTime, &s.LastEvents, &s.LastDuplicates}
	}
}

// -----------------------------------------------------------------------------

// ApplyPrice folds a price tick. It returns the events to publish, in order.
// An unknown request id yields an UnknownSubscription error and no change.
func (e *Engine) ApplyPrice(t models.MTickPrice) ([]models.MMarketDataEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.subs[t.RequestID]
	if !ok {
		return nil, e.unknown(t.RequestID)
	}
	s := &sub.snap
	now := e.now()

	switch t.Field {
	case models.TickBid, models.TickAsk, models.TickLast:
		if t.Field == models.TickLast && !e.policy.GenerateTradesFromLast {
			return nil, nil
		}
		sd := sideOf(s, t.Field)
		*sd.price = t.Price
		traded := 0
		if !e.policy.SuppressSizeWithPrice {
			if t.Size > 0 {
				*sd.size = t.Size
				if t.Field == models.TickLast {
					traded = t.Size
				}
			}
			*sd.at = now
		}
		*sd.events++
		if traded > 0 {
			e.countTrade(sub, traded, now)
		}
		return []models.MMarketDataEvent{e.emit(sub, t.Field, traded, now)}, nil

	case models.TickHigh:
		s.High = t.Price
	case models.TickLow:
		s.Low = t.Price
	case models.TickOpen:
		s.Open = t.Price
	case models.TickClose:
		s.Close = t.Price
	default:
		return nil, nil
	}
	return []models.MMarketDataEvent{e.emit(sub, t.Field, 0, now)}, nil
}

// -----------------------------------------------------------------------------

// ApplySize folds a size tick, filtering zero sizes and duplicates and
// reconciling reported volume against synthetic volume.
func (e *Engine) ApplySize(t models.MTickSize) ([]models.MMarketDataEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.subs[t.RequestID]
	if !ok {
		return nil, e.unknown(t.RequestID)
	}
	if t.Size == 0 {
		return nil, nil
	}
	now := e.now()

	switch t.Field {
	case models.TickBidSize, models.TickAskSize, models.TickLastSize:
		if t.Field == models.TickLastSize && !e.policy.GenerateTradesFromLast {
			return nil, nil
		}
		sd := sideOf(&sub.snap, t.Field)
		if *sd.size == t.Size && !sd.at.IsZero() && now.Sub(*sd.at) < e.policy.DuplicateTimeout {
			*sd.duplicates++
			e.metrics.DuplicateTick(sd.name)
			return nil, nil
		}
		*sd.size = t.Size
		*sd.at = now
		*sd.events++
		traded := 0
		if t.Field == models.TickLastSize {
			traded = t.Size
			e.countTrade(sub, traded, now)
		}
		return []models.MMarketDataEvent{e.emit(sub, t.Field, traded, now)}, nil

	case models.TickVolume:
		return e.reconcileVolume(sub, t.Size, now), nil
	}
	return nil, nil
}

// -----------------------------------------------------------------------------

// rollSession resets volume tracking when now falls in a new session.
func (e *Engine) rollSession(sub *subscription, now time.Time) {
	s := &sub.snap
	key := sub.calendar.SessionKey(now)
	if s.Session == key {
		return
	}
	if s.Session != "" {
		s.Volume = 0
		s.SyntheticVolume = 0
		s.VolumeSeeded = false
	}
	s.Session = key
}

// countTrade adds a trade to synthetic volume, seeding it from the reported
// volume on the first trade of the session.
func (e *Engine) countTrade(sub *subscription, size int, now time.Time) {
	e.rollSession(sub, now)
	s := &sub.snap
	if !s.VolumeSeeded {
		s.SyntheticVolume = s.Volume
		s.VolumeSeeded = true
	}
	s.SyntheticVolume += size
}

// -----------------------------------------------------------------------------

func (e *Engine) reconcileVolume(sub *subscription, reported int, now time.Time) []models.MMarketDataEvent {
	e.rollSession(sub, now)
	s := &sub.snap

	if s.VolumeSeeded && reported < s.SyntheticVolume {
		s.VolumeRegressions++
		e.metrics.VolumeRegression()
		e.log.Debug("Request %d: reported volume %d below synthetic %d, ignored", s.RequestID, reported, s.SyntheticVolume)
		return nil
	}

	var out []models.MMarketDataEvent
	if s.VolumeSeeded && reported > s.SyntheticVolume {
		gap := reported - s.SyntheticVolume
		s.VolumeMisses++
		e.metrics.VolumeMiss()
		s.SyntheticVolume = reported
		if e.policy.GenerateTradesFromVolume {
			s.SyntheticTrades++
			e.metrics.SyntheticTrade()
			out = append(out, e.emit(sub, models.TickSyntheticTrade, gap, now))
		}
	}

	if reported == s.Volume {
		return out
	}
	s.Volume = reported
	s.VolumeTime = now
	s.VolumeEvents++
	return append(out, e.emit(sub, models.TickVolume, 0, now))
}

// -----------------------------------------------------------------------------

func (e *Engine) emit(sub *subscription, tick models.TickType, size int, now time.Time) models.MMarketDataEvent {
	sub.snap.UpdatedAt = now
	ev := models.MMarketDataEvent{
		RequestID: sub.snap.RequestID,
		Tick:      tick,
		Size:      size,
		Snapshot:  sub.snap.Clone(),
	}
	sub.history.Append(ev)
	e.metrics.MarketDataEvent(tick.String())
	return ev
}

func (e *Engine) unknown(requestID int) error {
	e.metrics.UnknownSubscription()
	e.log.Warning("Tick for unknown subscription %d dropped", requestID)
	return helpers.UnknownSubscription(requestID)
}
