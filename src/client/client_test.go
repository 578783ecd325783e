package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"twsclient/src/helpers"
	"twsclient/src/interfaces"
	"twsclient/src/marketdata"
	"twsclient/src/models"
	"twsclient/src/peer"
	"twsclient/src/protocol"
)

// -----------------------------------------------------------------------------
// Test handler
// -----------------------------------------------------------------------------

type recorder struct {
	interfaces.NoopHandler

	mu          sync.Mutex
	marketData  []models.MMarketDataEvent
	errors      []models.MErrorEvent
	records     []*models.MOrderRecord
	disconnects int
	faults      int
	causes      []error
	signal      chan string
}

func newRecorder() *recorder {
	return &recorder{signal: make(chan string, 1024)}
}

func (r *recorder) note(name string) {
	select {
	case r.signal <- name:
	default:
	}
}

func (r *recorder) OnMarketData(ev models.MMarketDataEvent) {
	r.mu.Lock()
	r.marketData = append(r.marketData, ev)
	r.mu.Unlock()
	r.note("marketData")
}

func (r *recorder) OnError(ev models.MErrorEvent) {
	r.mu.Lock()
	r.errors = append(r.errors, ev)
	r.mu.Unlock()
	r.note("error")
}

func (r *recorder) OnOrderStatus(_ models.MOrderStatus, rec *models.MOrderRecord) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	r.note("orderStatus")
}

func (r *recorder) OnDisconnected(cause error) {
	r.mu.Lock()
	r.disconnects++
	r.causes = append(r.causes, cause)
	r.mu.Unlock()
	r.note("disconnected")
}

func (r *recorder) OnInternalFault(error) {
	r.mu.Lock()
	r.faults++
	r.mu.Unlock()
	r.note("fault")
}

func (r *recorder) OnNextValidID(int)        { r.note("nextValidId") }
func (r *recorder) OnCurrentTime(int64)      { r.note("currentTime") }
func (r *recorder) OnContractDetailsEnd(int) { r.note("contractDetailsEnd") }

func (r *recorder) waitFor(t *testing.T, name string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.signal:
			if got == name {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func (r *recorder) counts() (disconnects, faults int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disconnects, r.faults
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func aapl() models.MContract {
	return models.MContract{Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD"}
}

func testEngine() *marketdata.Engine {
	return marketdata.NewEngine(marketdata.Options{
		Policy: models.MSessionPolicy{DuplicateTimeout: time.Second, GenerateTradesFromLast: true},
	})
}

// connect wires a client to a loopback peer over an in-memory pipe.
func connect(t *testing.T, opts Options, popts peer.Options) (*Client, *peer.Peer, *recorder) {
	t.Helper()
	cli, srv := net.Pipe()

	rec := newRecorder()
	opts.Handler = rec
	if opts.Engine == nil {
		opts.Engine = testEngine()
	}
	c := New(opts)

	ch := make(chan *peer.Peer, 1)
	go func() {
		p, err := peer.Serve(srv, popts)
		if err != nil {
			t.Errorf("peer: %v", err)
		}
		ch <- p
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.ConnectConn(ctx, cli); err != nil {
		t.Fatalf("connect: %v", err)
	}
	p := <-ch
	if p == nil {
		t.FailNow()
	}
	t.Cleanup(func() {
		c.Disconnect()
		p.Close()
	})
	return c, p, rec
}

func nextRequest[T protocol.Request](t *testing.T, p *peer.Peer) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := p.Next(ctx)
	if err != nil {
		t.Fatalf("peer next: %v", err)
	}
	typed, ok := req.(T)
	if !ok {
		t.Fatalf("unexpected request %#v", req)
	}
	return typed
}

func send(t *testing.T, p *peer.Peer, msgs ...protocol.Message) {
	t.Helper()
	if err := p.Send(msgs...); err != nil {
		t.Fatalf("peer send: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Handshake
// -----------------------------------------------------------------------------

func TestHandshake(t *testing.T) {
	tests := []struct {
		name     string
		sv       int
		clientID int
		wantID   int
		wantTime string
	}{
		{"explicit id", 38, 7, 7, "20240103 10:00:00 EST"},
		{"derived id on a pipe", 38, 0, 0, "20240103 10:00:00 EST"},
		{"no timestamp before 20", 15, 3, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p, _ := connect(t, Options{ClientID: tt.clientID}, peer.Options{ServerVersion: tt.sv, Timestamp: "20240103 10:00:00 EST"})
			if c.ServerVersion() != tt.sv || c.ServerTime() != tt.wantTime {
				t.Errorf("server version=%d time=%q", c.ServerVersion(), c.ServerTime())
			}
			if p.ClientVersion() != protocol.ClientVersion || p.ClientID() != tt.wantID {
				t.Errorf("peer saw version=%d id=%d", p.ClientVersion(), p.ClientID())
			}
			if !c.IsConnected() {
				t.Error("not connected after handshake")
			}
		})
	}
}

func TestHandshakeRejectsOldServer(t *testing.T) {
	cli, srv := net.Pipe()
	defer srv.Close()
	go peer.Serve(srv, peer.Options{ServerVersion: 20})

	c := New(Options{MinServerVersion: 30})
	err := c.ConnectConn(context.Background(), cli)
	if !errors.Is(err, helpers.ErrProtocolTooOld) {
		t.Fatalf("err = %v", err)
	}
	if c.IsConnected() {
		t.Error("connected to a server below the minimum")
	}
}

func TestDeriveClientID(t *testing.T) {
	tests := []struct {
		addr net.Addr
		want int
	}{
		{&net.TCPAddr{IP: net.ParseIP("192.168.1.5"), Port: 4001}, 5<<16 | 4001},
		{&net.TCPAddr{IP: net.ParseIP("::1"), Port: 7}, 1<<16 | 7},
		{&net.UnixAddr{Name: "/tmp/x", Net: "unix"}, 0},
	}
	for _, tt := range tests {
		if got := DeriveClientID(tt.addr); got != tt.want {
			t.Errorf("DeriveClientID(%v) = %d, want %d", tt.addr, got, tt.want)
		}
	}
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

func TestRequestsNeedConnection(t *testing.T) {
	c := New(Options{})
	if _, err := c.RequestMarketData(aapl(), "", false); !errors.Is(err, helpers.ErrNotConnected) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := c.Snapshot(1); ok {
		t.Error("failed request left a snapshot behind")
	}
	if err := c.RequestCurrentTime(); !errors.Is(err, helpers.ErrNotConnected) {
		t.Fatalf("err = %v", err)
	}
}

func TestTooOldRequestKeepsConnection(t *testing.T) {
	c, p, _ := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 30})

	if err := c.RequestCurrentTime(); !errors.Is(err, helpers.ErrProtocolTooOld) {
		t.Fatalf("err = %v", err)
	}
	if !c.IsConnected() {
		t.Fatal("ProtocolTooOld must not drop the connection")
	}
	// The next request still goes through intact.
	if err := c.RequestIDs(1); err != nil {
		t.Fatal(err)
	}
	if q := nextRequest[*protocol.IDsRequest](t, p); q.NumIDs != 1 {
		t.Errorf("ids request = %+v", q)
	}
}

// A bid tick with its paired size gives one market data event and leaves no
// duplicate behind.
func TestMarketDataEndToEnd(t *testing.T) {
	c, p, rec := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38, NextValidID: 42})
	rec.waitFor(t, "nextValidId")
	if id := c.NextOrderID(); id != 42 {
		t.Errorf("next order id = %d", id)
	}

	id, err := c.RequestMarketData(aapl(), "", false)
	if err != nil || id != 1 {
		t.Fatalf("request id=%d err=%v", id, err)
	}
	q := nextRequest[*protocol.MktDataRequest](t, p)
	if q.TickerID != 1 || q.Contract.Symbol != "AAPL" {
		t.Fatalf("peer saw %+v", q)
	}

	send(t, p,
		&protocol.TickPriceMsg{MTickPrice: models.MTickPrice{RequestID: 1, Field: models.TickBid, Price: 150.25, Size: 100}},
		&protocol.CurrentTimeMsg{Time: 1},
	)
	rec.waitFor(t, "currentTime")

	rec.mu.Lock()
	events := len(rec.marketData)
	rec.mu.Unlock()
	if events != 1 {
		t.Fatalf("%d market data events, want 1", events)
	}

	s, ok := c.Snapshot(1)
	if !ok {
		t.Fatal("no snapshot")
	}
	if s.Bid != 150.25 || s.BidSize != 100 || s.BidEvents != 1 || s.BidDuplicates != 0 {
		t.Errorf("snapshot bid=%v size=%d events=%d duplicates=%d", s.Bid, s.BidSize, s.BidEvents, s.BidDuplicates)
	}

	if err := c.CancelMarketData(1); err != nil {
		t.Fatal(err)
	}
	nextRequest[*protocol.CancelMktDataRequest](t, p)
	if _, ok := c.Snapshot(1); ok {
		t.Error("snapshot kept after cancel")
	}
}

// The size carried by a price tick is part of the price mutation whatever the
// session policy says about duplicates.
func TestPriceTickCarriesSizeOnce(t *testing.T) {
	tests := []struct {
		name     string
		policy   models.MSessionPolicy
		wantSize int
	}{
		{"default policy", models.MSessionPolicy{}, 100},
		{"duplicate timeout", models.MSessionPolicy{DuplicateTimeout: time.Second}, 100},
		{"suppress size with price", models.MSessionPolicy{SuppressSizeWithPrice: true}, 0},
		{"suppress and timeout", models.MSessionPolicy{SuppressSizeWithPrice: true, DuplicateTimeout: time.Second}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := marketdata.NewEngine(marketdata.Options{Policy: tt.policy})
			c, p, rec := connect(t, Options{ClientID: 1, Engine: engine}, peer.Options{ServerVersion: 38})

			if _, err := c.RequestMarketData(aapl(), "", false); err != nil {
				t.Fatal(err)
			}
			nextRequest[*protocol.MktDataRequest](t, p)

			send(t, p,
				&protocol.TickPriceMsg{MTickPrice: models.MTickPrice{RequestID: 1, Field: models.TickBid, Price: 150, Size: 100}},
				&protocol.CurrentTimeMsg{Time: 1},
			)
			rec.waitFor(t, "currentTime")

			rec.mu.Lock()
			events := len(rec.marketData)
			rec.mu.Unlock()
			if events != 1 {
				t.Errorf("%d market data events, want 1", events)
			}
			s, ok := c.Snapshot(1)
			if !ok {
				t.Fatal("no snapshot")
			}
			if s.Bid != 150 || s.BidSize != tt.wantSize || s.BidEvents != 1 || s.BidDuplicates != 0 {
				t.Errorf("snapshot bid=%v size=%d events=%d duplicates=%d, want size %d",
					s.Bid, s.BidSize, s.BidEvents, s.BidDuplicates, tt.wantSize)
			}
		})
	}
}

// A standalone size tick equal to the size a price tick just carried is still
// a duplicate.
func TestRepeatedSizeAfterPriceIsDuplicate(t *testing.T) {
	c, p, rec := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38})
	if _, err := c.RequestMarketData(aapl(), "", false); err != nil {
		t.Fatal(err)
	}
	nextRequest[*protocol.MktDataRequest](t, p)

	send(t, p,
		&protocol.TickPriceMsg{MTickPrice: models.MTickPrice{RequestID: 1, Field: models.TickBid, Price: 150, Size: 100}},
		&protocol.TickSizeMsg{MTickSize: models.MTickSize{RequestID: 1, Field: models.TickBidSize, Size: 100}},
		&protocol.CurrentTimeMsg{Time: 1},
	)
	rec.waitFor(t, "currentTime")

	s, _ := c.Snapshot(1)
	if s.BidEvents != 1 || s.BidDuplicates != 1 {
		t.Errorf("events=%d duplicates=%d", s.BidEvents, s.BidDuplicates)
	}
}

func TestTickForUnknownSubscriptionIsDropped(t *testing.T) {
	c, p, rec := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38})

	send(t, p,
		&protocol.TickSizeMsg{MTickSize: models.MTickSize{RequestID: 77, Field: models.TickBidSize, Size: 5}},
		&protocol.CurrentTimeMsg{Time: 1},
	)
	rec.waitFor(t, "currentTime")
	if !c.IsConnected() {
		t.Fatal("unknown subscription must not disconnect")
	}
	if len(c.Snapshots()) != 0 {
		t.Error("snapshot created for unknown id")
	}
}

// -----------------------------------------------------------------------------
// Disconnects
// -----------------------------------------------------------------------------

func TestUnknownTagDisconnectsOnce(t *testing.T) {
	c, p, rec := connect(t, Options{ClientID: 1, RequestTimeout: 5 * time.Second}, peer.Options{ServerVersion: 38})

	result := make(chan error, 1)
	go func() {
		_, err := c.ContractDetails(context.Background(), aapl())
		result <- err
	}()
	nextRequest[*protocol.ContractDetailsRequest](t, p)

	if err := p.SendRaw([]byte("999\x00")); err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, "disconnected")

	select {
	case err := <-result:
		if !errors.Is(err, helpers.ErrDisconnected) {
			t.Errorf("pending call err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending call not released")
	}

	c.Disconnect()
	disconnects, faults := rec.counts()
	if disconnects != 1 || faults != 1 {
		t.Errorf("disconnects=%d faults=%d", disconnects, faults)
	}
	if c.IsConnected() || c.PendingCalls() != 0 {
		t.Error("state not cleaned up")
	}
}

func TestPeerCloseDisconnects(t *testing.T) {
	c, p, rec := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38})
	p.Close()
	rec.waitFor(t, "disconnected")
	if c.IsConnected() {
		t.Error("still connected")
	}
	if _, err := c.RequestMarketData(aapl(), "", false); !errors.Is(err, helpers.ErrNotConnected) {
		t.Errorf("err = %v", err)
	}
}

func TestFatalPeerErrorDisconnects(t *testing.T) {
	for _, code := range []int{502, 504, 1100, 1300} {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			c, p, rec := connect(t, Options{ClientID: 1, RequestTimeout: 5 * time.Second}, peer.Options{ServerVersion: 38})

			result := make(chan error, 1)
			go func() {
				_, err := c.ContractDetails(context.Background(), aapl())
				result <- err
			}()
			nextRequest[*protocol.ContractDetailsRequest](t, p)

			send(t, p, &protocol.ErrorMsg{RequestID: -1, Code: code, Message: "Connectivity between IB and TWS has been lost"})
			rec.waitFor(t, "disconnected")

			select {
			case err := <-result:
				if !errors.Is(err, helpers.ErrDisconnected) {
					t.Errorf("pending call err = %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("pending call not released")
			}

			c.Disconnect()
			disconnects, _ := rec.counts()
			if disconnects != 1 {
				t.Errorf("disconnects = %d", disconnects)
			}

			rec.mu.Lock()
			defer rec.mu.Unlock()
			if len(rec.errors) != 1 || !rec.errors[0].Fatal {
				t.Fatalf("errors = %+v", rec.errors)
			}
			var pe *helpers.PeerError
			if !errors.As(rec.causes[0], &pe) || pe.Code != code {
				t.Errorf("cause = %v", rec.causes[0])
			}
			if c.IsConnected() || c.PendingCalls() != 0 {
				t.Error("state not cleaned up")
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Correlated calls
// -----------------------------------------------------------------------------

func TestContractDetailsCall(t *testing.T) {
	c, p, _ := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38})

	go func() {
		q := nextRequest[*protocol.ContractDetailsRequest](t, p)
		d1 := models.MContractDetails{Summary: aapl(), MarketName: "NMS"}
		d2 := models.MContractDetails{Summary: aapl(), MarketName: "AAPL"}
		p.Send(
			&protocol.ContractDataMsg{RequestID: q.RequestID, Details: d1},
			&protocol.ContractDataMsg{RequestID: q.RequestID, Details: d2},
			&protocol.ContractDataEndMsg{RequestID: q.RequestID},
		)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	details, err := c.ContractDetails(ctx, aapl())
	if err != nil {
		t.Fatal(err)
	}
	if len(details) != 2 || details[1].MarketName != "AAPL" {
		t.Errorf("details = %+v", details)
	}
}

func TestCallFailsOnPeerError(t *testing.T) {
	c, p, _ := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38})

	go func() {
		q := nextRequest[*protocol.ContractDetailsRequest](t, p)
		p.Send(&protocol.ErrorMsg{RequestID: q.RequestID, Code: 200, Message: "No security definition has been found for the request"})
	}()

	_, err := c.ContractDetails(context.Background(), aapl())
	var pe *helpers.PeerError
	if !errors.As(err, &pe) || pe.Code != 200 {
		t.Fatalf("err = %v", err)
	}
	if !c.IsConnected() {
		t.Error("non-fatal peer error dropped the connection")
	}
}

func TestCallTimeoutSucceedsEmpty(t *testing.T) {
	c, p, _ := connect(t, Options{ClientID: 1, RequestTimeout: 50 * time.Millisecond}, peer.Options{ServerVersion: 38})

	execs, err := c.Executions(context.Background(), models.MExecutionFilter{})
	if err != nil {
		t.Fatalf("timeout should succeed, got %v", err)
	}
	if len(execs) != 0 {
		t.Errorf("executions = %+v", execs)
	}
	nextRequest[*protocol.ExecutionsRequest](t, p)
	if c.PendingCalls() != 0 {
		t.Error("timed out call still pending")
	}
}

func TestHistoricalDataCall(t *testing.T) {
	c, p, _ := connect(t, Options{ClientID: 1}, peer.Options{ServerVersion: 38})

	go func() {
		q := nextRequest[*protocol.HistoricalDataRequest](t, p)
		p.Send(&protocol.HistoricalDataMsg{
			RequestID: q.TickerID,
			Start:     "20240102 09:30:00",
			End:       "20240102 16:00:00",
			Bars: []models.MBar{
				{Date: "20240102", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, WAP: 1.2, Count: 3},
				{Date: "20240103", Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 20, WAP: 1.8, Count: 4},
			},
		})
	}()

	bars, err := c.HistoricalData(context.Background(), HistoricalQuery{
		Contract:   aapl(),
		Duration:   "2 D",
		BarSize:    models.BarOneDay,
		WhatToShow: models.ShowTrades,
		FormatDate: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 || bars[1].Close != 2 || bars[1].Volume != 20 {
		t.Errorf("bars = %+v", bars)
	}
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

type memJournal struct {
	mu       sync.Mutex
	saved    []models.MOrderRecord
	statuses []models.MOrderStatus
}

func (j *memJournal) Initialize() error { return nil }
func (j *memJournal) Close() error      { return nil }

func (j *memJournal) SaveOrder(rec models.MOrderRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.saved = append(j.saved, rec)
	return nil
}

func (j *memJournal) AppendStatus(st models.MOrderStatus, _ time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.statuses = append(j.statuses, st)
	return nil
}

func (j *memJournal) RecentOrders(int) ([]models.MOrderRecord, error) { return nil, nil }
func (j *memJournal) CleanupOldData(time.Duration) error              { return nil }

func TestOrderLifecycle(t *testing.T) {
	journal := &memJournal{}
	c, p, rec := connect(t, Options{ClientID: 1, Journal: journal}, peer.Options{ServerVersion: 38, NextValidID: 42})
	rec.waitFor(t, "nextValidId")

	order := models.NewOrder()
	order.Action = models.ActionBuy
	order.TotalQuantity = 100
	order.OrderType = models.OrderTypeLimit
	order.LmtPrice = 150

	id, err := c.PlaceOrder(aapl(), order)
	if err != nil || id != 42 {
		t.Fatalf("place order id=%d err=%v", id, err)
	}
	q := nextRequest[*protocol.PlaceOrderRequest](t, p)
	if q.OrderID != 42 || q.Order.LmtPrice != 150 {
		t.Fatalf("peer saw %+v", q)
	}
	if r, ok := c.Order(42); !ok || r.Remaining != 100 {
		t.Fatalf("record = %+v ok=%v", r, ok)
	}

	send(t, p, &protocol.OrderStatusMsg{MOrderStatus: models.MOrderStatus{OrderID: 42, Status: models.StatusSubmitted, Remaining: 100}})
	rec.waitFor(t, "orderStatus")
	send(t, p, &protocol.OrderStatusMsg{MOrderStatus: models.MOrderStatus{OrderID: 42, Status: models.StatusFilled, Filled: 100, AvgFillPrice: 149.9}})
	rec.waitFor(t, "orderStatus")

	rec.mu.Lock()
	records := append([]*models.MOrderRecord(nil), rec.records...)
	rec.mu.Unlock()
	if len(records) != 2 || records[0] == nil || records[0].Contract.Symbol != "AAPL" {
		t.Fatalf("records = %+v", records)
	}
	if records[1] == nil || records[1].Status != models.StatusFilled || records[1].AvgFillPrice != 149.9 {
		t.Errorf("final record = %+v", records[1])
	}
	if _, ok := c.Order(42); ok {
		t.Error("filled order still held in memory")
	}
	if len(c.Orders()) != 0 {
		t.Error("orders list not empty")
	}

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if len(journal.saved) != 1 || len(journal.statuses) != 2 {
		t.Errorf("journal saved=%d statuses=%d", len(journal.saved), len(journal.statuses))
	}
}

func TestPolicyAccessors(t *testing.T) {
	c := New(Options{Engine: testEngine()})
	p := c.Policy()
	p.SuppressSizeWithPrice = true
	c.SetPolicy(p)
	if !c.Policy().SuppressSizeWithPrice {
		t.Error("policy not updated")
	}
}
