package storage

import (
	"path/filepath"
	"testing"
	"time"

	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/models"
)

var _ interfaces.IOrderJournal = (*SQLiteJournal)(nil)
var _ interfaces.IOrderJournal = (*PostgresJournal)(nil)

func openJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "orders.db")}}
	j, err := NewJournal(cfg, logger.NewNopLogger("SQLiteJournal"))
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })
	return j.(*SQLiteJournal)
}

func limitBuy(id int, symbol string, qty int, at time.Time) models.MOrderRecord {
	return models.MOrderRecord{
		OrderID:     id,
		Contract:    models.MContract{Symbol: symbol, SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD"},
		Order:       models.MOrder{OrderID: id, Action: models.ActionBuy, TotalQuantity: qty, OrderType: models.OrderTypeLimit, LmtPrice: 101.5},
		Status:      models.StatusApiPending,
		Remaining:   qty,
		SubmittedAt: at,
		UpdatedAt:   at,
	}
}

func TestSaveAndListOrders(t *testing.T) {
	j := openJournal(t)
	base := time.Now().Add(-time.Minute)

	if err := j.SaveOrder(limitBuy(1, "AAPL", 100, base)); err != nil {
		t.Fatal(err)
	}
	if err := j.SaveOrder(limitBuy(2, "MSFT", 50, base.Add(time.Second))); err != nil {
		t.Fatal(err)
	}
	// Resubmission replaces the row but keeps the first submission time.
	if err := j.SaveOrder(limitBuy(1, "AAPL", 200, base.Add(2*time.Second))); err != nil {
		t.Fatal(err)
	}

	got, err := j.RecentOrders(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d orders", len(got))
	}
	if got[0].OrderID != 1 || got[0].Order.TotalQuantity != 200 || got[0].Contract.Symbol != "AAPL" {
		t.Errorf("newest = %+v", got[0])
	}
	if got[0].Order.OrderType != models.OrderTypeLimit || got[0].Order.LmtPrice != 101.5 {
		t.Errorf("order params lost: %+v", got[0].Order)
	}
	if !got[0].SubmittedAt.Equal(base) || !got[0].UpdatedAt.Equal(base.Add(2*time.Second)) {
		t.Errorf("submitted at = %v", got[0].SubmittedAt)
	}

	if limited, _ := j.RecentOrders(1); len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}
}

func TestAppendStatus(t *testing.T) {
	j := openJournal(t)
	now := time.Now()
	if err := j.SaveOrder(limitBuy(7, "AAPL", 100, now)); err != nil {
		t.Fatal(err)
	}

	steps := []models.MOrderStatus{
		{OrderID: 7, Status: models.StatusSubmitted, Remaining: 100},
		{OrderID: 7, Status: models.StatusSubmitted, Filled: 40, Remaining: 60, AvgFillPrice: 101.4, LastFillPrice: 101.4},
		{OrderID: 7, Status: models.StatusFilled, Filled: 100, Remaining: 0, AvgFillPrice: 101.45, LastFillPrice: 101.5},
	}
	for i, st := range steps {
		if err := j.AppendStatus(st, now.Add(time.Duration(i+1)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}

	history, err := j.StatusHistory(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != len(steps) {
		t.Fatalf("history has %d rows", len(history))
	}
	for i := range steps {
		if history[i] != steps[i] {
			t.Errorf("step %d = %+v, want %+v", i, history[i], steps[i])
		}
	}

	got, _ := j.RecentOrders(1)
	if got[0].Status != models.StatusFilled || got[0].Filled != 100 || got[0].AvgFillPrice != 101.45 {
		t.Errorf("order row = %+v", got[0])
	}
}

// A status for an order this journal never saw is kept in the history only.
func TestAppendStatusForUnknownOrder(t *testing.T) {
	j := openJournal(t)
	if err := j.AppendStatus(models.MOrderStatus{OrderID: 99, Status: models.StatusCancelled}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if got, _ := j.RecentOrders(10); len(got) != 0 {
		t.Errorf("orders = %+v", got)
	}
	if h, _ := j.StatusHistory(99); len(h) != 1 {
		t.Errorf("history = %+v", h)
	}
}

func TestCleanupOldData(t *testing.T) {
	j := openJournal(t)
	now := time.Now()
	j.SaveOrder(limitBuy(1, "OLD", 1, now.Add(-48*time.Hour)))
	j.AppendStatus(models.MOrderStatus{OrderID: 1, Status: models.StatusCancelled}, now.Add(-47*time.Hour))
	j.SaveOrder(limitBuy(2, "NEW", 1, now))

	if err := j.CleanupOldData(24 * time.Hour); err != nil {
		t.Fatal(err)
	}
	got, _ := j.RecentOrders(10)
	if len(got) != 1 || got[0].Contract.Symbol != "NEW" {
		t.Errorf("after cleanup = %+v", got)
	}
	if h, _ := j.StatusHistory(1); len(h) != 0 {
		t.Errorf("history of removed order = %+v", h)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBPath: path}}

	first, _ := NewSQLiteJournal(cfg, logger.NewNopLogger("SQLiteJournal"))
	if err := first.Initialize(); err != nil {
		t.Fatal(err)
	}
	first.SaveOrder(limitBuy(3, "AAPL", 10, time.Now()))
	first.Close()

	second, _ := NewSQLiteJournal(cfg, logger.NewNopLogger("SQLiteJournal"))
	if err := second.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	if got, _ := second.RecentOrders(10); len(got) != 1 {
		t.Errorf("rows after reopen = %d", len(got))
	}
}

func TestSplitTableRef(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want SymbolMetadata
	}{
		{"AAPL", false, SymbolMetadata{}},
		{"BRK.B", false, SymbolMetadata{}},
		{"market.watchlist.ticker", true, SymbolMetadata{Symbol: "market.watchlist.ticker", Type: "postgres_ref", RefSchema: "market", RefTable: "watchlist", RefField: "ticker"}},
	}
	for _, tt := range tests {
		got, ok := splitTableRef(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("splitTableRef(%q) = %+v, %v", tt.in, got, ok)
		}
	}
}
