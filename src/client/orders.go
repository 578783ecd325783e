package client

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/models"
)

// orderRegistry keeps the contract and parameters last submitted under each
// order id so that later status events can be given that context. Records
// leave memory once their status is terminal; the journal keeps them.
type orderRegistry struct {
	mu      sync.Mutex
	records map[int]*models.MOrderRecord
	journal interfaces.IOrderJournal
	log     *logger.Logger
	now     func() time.Time
}

func newOrderRegistry(journal interfaces.IOrderJournal, log *logger.Logger) *orderRegistry {
	return &orderRegistry{
		records: make(map[int]*models.MOrderRecord),
		journal: journal,
		log:     log,
		now:     time.Now,
	}
}

// -----------------------------------------------------------------------------

func (o *orderRegistry) submit(id int, contract models.MContract, order models.MOrder) models.MOrderRecord {
	now := o.now()
	o.mu.Lock()
	rec, ok := o.records[id]
	if !ok {
		rec = &models.MOrderRecord{OrderID: id, SubmittedAt: now, Status: models.StatusApiPending}
		o.records[id] = rec
	}
	rec.Contract = contract
	rec.Order = order
	rec.Remaining = order.TotalQuantity - rec.Filled
	rec.UpdatedAt = now
	out := *rec
	o.mu.Unlock()

	if o.journal != nil {
		if err := o.journal.SaveOrder(out); err != nil {
			o.log.Error("Failed to journal order %d: %v", id, err)
		}
	}
	return out
}

// forget removes a record whose submission never reached the wire.
func (o *orderRegistry) forget(id int) {
	o.mu.Lock()
	delete(o.records, id)
	o.mu.Unlock()
}

// -----------------------------------------------------------------------------

// status applies st and returns the updated record, or nil for an order this
// process did not submit.
func (o *orderRegistry) status(st models.MOrderStatus) *models.MOrderRecord {
	now := o.now()
	o.mu.Lock()
	rec, ok := o.records[st.OrderID]
	var out *models.MOrderRecord
	if ok {
		rec.Status = st.Status
		rec.Filled = st.Filled
		rec.Remaining = st.Remaining
		rec.AvgFillPrice = st.AvgFillPrice
		rec.UpdatedAt = now
		cp := *rec
		out = &cp
		if st.Status.IsTerminal() {
			delete(o.records, st.OrderID)
		}
	}
	o.mu.Unlock()

	if o.journal != nil {
		if err := o.journal.AppendStatus(st, now); err != nil {
			o.log.Error("Failed to journal status of order %d: %v", st.OrderID, err)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func (o *orderRegistry) get(id int) (models.MOrderRecord, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec, ok := o.records[id]
	if !ok {
		return models.MOrderRecord{}, false
	}
	return *rec, true
}

// list returns the live records ordered by id.
func (o *orderRegistry) list() []models.MOrderRecord {
	o.mu.Lock()
	out := make([]models.MOrderRecord, 0, len(o.records))
	for _, rec := range o.records {
		out = append(out, *rec)
	}
	o.mu.Unlock()

	slices.SortFunc(out, func(a, b models.MOrderRecord) int { return cmp.Compare(a.OrderID, b.OrderID) })
	return out
}
