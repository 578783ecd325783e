package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"twsclient/src/codec"
	"twsclient/src/helpers"
	"twsclient/src/models"
	"twsclient/src/symbols"
)

func reader(b []byte) *codec.Reader {
	return codec.NewReader(bufio.NewReader(bytes.NewReader(b)))
}

func assertDrained(t *testing.T, r *codec.Reader) {
	t.Helper()
	_, _ = r.OptString()
	if !errors.Is(r.Err(), io.EOF) {
		t.Fatalf("trailing bytes after message, err=%v", r.Err())
	}
}

func roundTripRequest(t *testing.T, sv int, req Request) Request {
	t.Helper()
	w := codec.NewWriter()
	if err := EncodeRequest(w, sv, req); err != nil {
		t.Fatalf("encode %T at %d: %v", req, sv, err)
	}
	r := reader(w.Bytes())
	got, err := DecodeRequest(r, sv)
	if err != nil {
		t.Fatalf("decode %T at %d: %v", req, sv, err)
	}
	assertDrained(t, r)
	return got
}

func roundTripMessage(t *testing.T, sv int, m Message) Message {
	t.Helper()
	w := codec.NewWriter()
	if err := EncodeMessage(w, sv, m); err != nil {
		t.Fatalf("encode %T: %v", m, err)
	}
	r := reader(w.Bytes())
	got, err := DecodeMessage(r, sv)
	if err != nil {
		t.Fatalf("decode %T: %v", m, err)
	}
	assertDrained(t, r)
	return got
}

func aapl() models.MContract {
	return models.MContract{
		Symbol:      "AAPL",
		SecType:     models.SecTypeStock,
		Exchange:    "SMART",
		PrimaryExch: "NASDAQ",
		Currency:    "USD",
		LocalSymbol: "AAPL",
		Multiplier:  "1",
	}
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

func TestDecodeRequestVersion(t *testing.T) {
	order := models.NewOrder()
	order.Action = models.ActionBuy
	order.TotalQuantity = 1
	order.OrderType = models.OrderTypeMarket

	tests := []struct {
		name string
		sv   int
		req  Request
		want int
	}{
		{"market data", 38, &MktDataRequest{TickerID: 1, Contract: aapl()}, 8},
		{"cancel market data", 38, &CancelMktDataRequest{TickerID: 1}, 1},
		{"contract details", 38, &ContractDetailsRequest{RequestID: 2, Contract: aapl()}, 5},
		{"place order before not held", MinServerVerNotHeld - 1, &PlaceOrderRequest{OrderID: 3, Contract: aapl(), Order: order}, 27},
		{"place order with not held", MinServerVerNotHeld, &PlaceOrderRequest{OrderID: 3, Contract: aapl(), Order: order}, 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := codec.NewWriter()
			if err := EncodeRequest(w, tt.sv, tt.req); err != nil {
				t.Fatal(err)
			}
			r := reader(w.Bytes())
			got, version, err := DecodeRequestVersion(r, tt.sv)
			if err != nil {
				t.Fatal(err)
			}
			if version != tt.want || got.Tag() != tt.req.Tag() {
				t.Errorf("%v version %d, want %v version %d", got.Tag(), version, tt.req.Tag(), tt.want)
			}
			assertDrained(t, r)
		})
	}
}

func TestDecodeRequestRejectsBadVersion(t *testing.T) {
	w := codec.NewWriter()
	codec.WriteSymbol(w, OutgoingMessages, CancelMktData)
	w.Int(0).Int(7)
	if _, err := DecodeRequest(reader(w.Bytes()), 38); err == nil {
		t.Fatal("request version 0 accepted")
	}
}

func TestMktDataAcrossVersions(t *testing.T) {
	full := &MktDataRequest{TickerID: 9, Contract: aapl(), GenericTicks: "100,101,104"}

	cases := []struct {
		sv     int
		expect func(q *MktDataRequest)
	}{
		{1, func(q *MktDataRequest) {
			q.Contract.Multiplier, q.Contract.PrimaryExch, q.Contract.LocalSymbol, q.GenericTicks = "", "", "", ""
		}},
		{14, func(q *MktDataRequest) { q.Contract.Multiplier, q.GenericTicks = "", "" }},
		{15, func(q *MktDataRequest) { q.GenericTicks = "" }},
		{31, func(*MktDataRequest) {}},
		{MaxServerVersion, func(*MktDataRequest) {}},
	}
	for _, c := range cases {
		want := *full
		c.expect(&want)
		got := roundTripRequest(t, c.sv, full)
		if !reflect.DeepEqual(got, &want) {
			t.Errorf("sv=%d\n got %+v\nwant %+v", c.sv, got, &want)
		}
	}
}

func TestMktDataComboLegsAndUnderComp(t *testing.T) {
	bag := models.MContract{
		Symbol: "SPREAD", SecType: models.SecTypeBag, Exchange: "SMART", Currency: "USD",
		ComboLegs: []models.MComboLeg{
			{ConID: 1, Ratio: 1, Action: models.ActionBuy, Exchange: "SMART"},
			{ConID: 2, Ratio: 2, Action: models.ActionSell, Exchange: "SMART"},
		},
		UnderComp: &models.MUnderComp{ConID: 3, Delta: 0.5, Price: 99.5},
	}
	req := &MktDataRequest{TickerID: 1, Contract: bag, Snapshot: true}
	got := roundTripRequest(t, MaxServerVersion, req).(*MktDataRequest)
	if !got.Contract.Equal(bag) || !got.Snapshot {
		t.Errorf("got %+v", got)
	}
}

func TestSnapshotNeedsServer35(t *testing.T) {
	w := codec.NewWriter()
	err := EncodeRequest(w, 34, &MktDataRequest{TickerID: 1, Contract: aapl(), Snapshot: true})
	if !errors.Is(err, helpers.ErrProtocolTooOld) {
		t.Fatalf("err = %v", err)
	}
	if len(w.Bytes()) != 0 {
		t.Fatalf("wrote %q after a version failure", w.Bytes())
	}
}

func fullOrder() models.MOrder {
	o := models.NewOrder()
	o.OrderID = 1001
	o.Action = models.ActionSell
	o.TotalQuantity = 300
	o.OrderType = models.OrderTypeLimit
	o.LmtPrice = 151.25
	o.Tif = models.TifGoodTillCancel
	o.OcaGroup = "oca-1"
	o.Account = "DU12345"
	o.OrderRef = "ref-7"
	o.ParentID = 1000
	o.BlockOrder = true
	o.DisplaySize = 100
	o.TriggerMethod = models.TriggerLast
	o.OutsideRth = true
	o.Hidden = true
	o.DiscretionaryAmt = 0.05
	o.GoodAfterTime = "20240102 09:30:00"
	o.GoodTillDate = "20240110 16:00:00"
	o.FAGroup = "grp"
	o.FAMethod = "EqualQuantity"
	o.ShortSaleSlot = 2
	o.DesignatedLocation = "LOC"
	o.OcaType = models.OcaReduceWithBlocking
	o.Rule80A = models.Rule80AAgency
	o.AllOrNone = true
	o.MinQty = 50
	o.PercentOffset = 0.01
	o.NbboPriceCap = 152
	o.AuctionStrategy = 1
	o.OverridePercentageConstraints = true
	o.TrailStopPrice = 149
	o.ScaleInitLevelSize = 100
	o.ScaleSubsLevelSize = 50
	o.ScalePriceIncrement = 0.1
	o.ClearingAccount = "CLR"
	o.ClearingIntent = "IB"
	o.NotHeld = true
	o.AlgoStrategy = "Vwap"
	o.AlgoParams = []models.MTagValue{{Tag: "maxPctVol", Value: "0.2"}}
	o.WhatIf = true
	return o
}

func TestPlaceOrderFullRoundTrip(t *testing.T) {
	c := aapl()
	c.ConID = 265598
	c.UnderComp = &models.MUnderComp{ConID: 1, Delta: 0.4, Price: 10}
	req := &PlaceOrderRequest{OrderID: 1001, Contract: c, Order: fullOrder()}

	got := roundTripRequest(t, MaxServerVersion, req)
	if !reflect.DeepEqual(got, req) {
		t.Errorf("round trip mismatch\n got %+v\nwant %+v", got, req)
	}
}

func TestPlaceOrderVolatilityWatermarkVersion(t *testing.T) {
	o := models.NewOrder()
	o.OrderID = 5
	o.Action = models.ActionBuy
	o.TotalQuantity = 1
	o.OrderType = models.OrderTypeVolatility
	o.Volatility = 0.3
	o.VolatilityType = 2
	o.DeltaNeutralOrderType = models.OrderTypeMarket
	o.StockRangeLower = 100
	o.StockRangeUpper = 120
	o.ReferencePriceType = 1

	c := models.MContract{Symbol: "IBM", SecType: models.SecTypeOption, Expiry: "20240119", Strike: 150,
		Right: models.RightCall, Exchange: "SMART", Currency: "USD"}
	req := &PlaceOrderRequest{OrderID: 5, Contract: c, Order: o}

	got := roundTripRequest(t, 26, req)
	if !reflect.DeepEqual(got, req) {
		t.Errorf("round trip mismatch at 26\n got %+v\nwant %+v", got, req)
	}
}

func TestPlaceOrderVersionChecks(t *testing.T) {
	cases := []struct {
		name string
		sv   int
		edit func(*PlaceOrderRequest)
	}{
		{"what-if", 35, func(q *PlaceOrderRequest) { q.Order.WhatIf = true }},
		{"scale", 34, func(q *PlaceOrderRequest) { q.Order.ScaleInitLevelSize = 10 }},
		{"scale subs", 39, func(q *PlaceOrderRequest) { q.Order.ScaleSubsLevelSize = 10 }},
		{"algo", 40, func(q *PlaceOrderRequest) { q.Order.AlgoStrategy = "Twap" }},
		{"not held", 43, func(q *PlaceOrderRequest) { q.Order.NotHeld = true }},
		{"sec id", 44, func(q *PlaceOrderRequest) { q.Contract.SecIDType = models.SecIDISIN }},
		{"conId", 45, func(q *PlaceOrderRequest) { q.Contract.ConID = 1 }},
		{"under comp", 39, func(q *PlaceOrderRequest) { q.Contract.UnderComp = &models.MUnderComp{} }},
	}
	for _, c := range cases {
		q := &PlaceOrderRequest{OrderID: 1, Contract: aapl(), Order: models.NewOrder()}
		c.edit(q)
		w := codec.NewWriter()
		if err := EncodeRequest(w, c.sv, q); !errors.Is(err, helpers.ErrProtocolTooOld) {
			t.Errorf("%s: err = %v", c.name, err)
		}
		if len(w.Bytes()) != 0 {
			t.Errorf("%s: partial write", c.name)
		}
	}
}

func TestHistoricalDataAcrossVersions(t *testing.T) {
	req := &HistoricalDataRequest{
		TickerID: 3, Contract: aapl(), EndDateTime: "20240105 16:00:00", BarSize: models.BarFiveMinutes,
		Duration: "1 D", UseRTH: true, WhatToShow: models.ShowTrades, FormatDate: 1,
	}
	if err := req.Check(15); !errors.Is(err, helpers.ErrProtocolTooOld) {
		t.Fatalf("Check(15) = %v", err)
	}

	got := roundTripRequest(t, 16, req).(*HistoricalDataRequest)
	if got.EndDateTime != "" || got.FormatDate != 0 || got.Duration != "1 D" || !got.UseRTH {
		t.Errorf("sv=16 got %+v", got)
	}

	full := roundTripRequest(t, MaxServerVersion, req)
	if !reflect.DeepEqual(full, req) {
		t.Errorf("sv=max got %+v", full)
	}
}

func TestScannerAcrossVersions(t *testing.T) {
	s := NewScannerSubscription()
	s.NumberOfRows = 25
	s.Instrument = "STK"
	s.LocationCode = "STK.US.MAJOR"
	s.ScanCode = "TOP_PERC_GAIN"
	s.AbovePrice = 5
	s.AverageOptionVolumeAbove = 1000
	s.ScannerSettingPairs = "a=b"
	s.StockTypeFilter = "CORP"
	req := &ScannerSubscriptionRequest{TickerID: 4, Subscription: s}

	got := roundTripRequest(t, 24, req).(*ScannerSubscriptionRequest)
	if got.Subscription.AverageOptionVolumeAbove != codec.IntMax || got.Subscription.StockTypeFilter != "" {
		t.Errorf("sv=24 leaked newer fields: %+v", got.Subscription)
	}
	if got.Subscription.AbovePrice != 5 || got.Subscription.BelowPrice != codec.DoubleMax {
		t.Errorf("sv=24 price filters: %+v", got.Subscription)
	}
	if full := roundTripRequest(t, 27, req); !reflect.DeepEqual(full, req) {
		t.Errorf("sv=27 got %+v", full)
	}
}

func TestSimpleRequestsRoundTrip(t *testing.T) {
	opt := models.MContract{Symbol: "IBM", SecType: models.SecTypeOption, Expiry: "20240119", Strike: 150,
		Right: models.RightPut, Multiplier: "100", Exchange: "SMART", Currency: "USD", LocalSymbol: "IBM  240119P00150000"}

	reqs := []Request{
		&CancelMktDataRequest{TickerID: 1},
		&CancelOrderRequest{OrderID: 77},
		&OpenOrdersRequest{},
		&AllOpenOrdersRequest{},
		&AutoOpenOrdersRequest{AutoBind: true},
		&IDsRequest{NumIDs: 1},
		&AccountUpdatesRequest{Subscribe: true, Account: "DU1"},
		&ExecutionsRequest{RequestID: 8, Filter: models.MExecutionFilter{ClientID: 1, Symbol: "AAPL", SecType: models.SecTypeStock, Side: "BUY"}},
		&ContractDetailsRequest{RequestID: 9, Contract: models.MContract{Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD", IncludeExpired: true, SecIDType: models.SecIDISIN, SecID: "US0378331005"}},
		&MktDepthRequest{TickerID: 10, Contract: opt, NumRows: 5},
		&CancelMktDepthRequest{TickerID: 10},
		&NewsBulletinsRequest{AllMessages: true},
		&CancelNewsBulletinsRequest{},
		&ServerLogLevelRequest{Level: models.LogDetail},
		&ManagedAccountsRequest{},
		&FARequest{DataType: models.FAProfiles},
		&ReplaceFARequest{DataType: models.FAGroups, XML: "<groups/>"},
		&CancelHistoricalDataRequest{TickerID: 3},
		&ExerciseOptionsRequest{TickerID: 11, Contract: opt, Action: models.ExerciseLapse, Quantity: 2, Account: "DU1", Override: true},
		&CancelScannerRequest{TickerID: 4},
		&ScannerParametersRequest{},
		&CurrentTimeRequest{},
		&RealTimeBarsRequest{TickerID: 12, Contract: aapl(), BarSize: 5, WhatToShow: models.ShowMidpoint, UseRTH: true},
		&CancelRealTimeBarsRequest{TickerID: 12},
		&FundamentalDataRequest{RequestID: 13, Contract: models.MContract{Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", PrimaryExch: "NASDAQ", Currency: "USD"}, ReportType: "ReportsFinSummary"},
		&CancelFundamentalDataRequest{RequestID: 13},
	}
	for _, req := range reqs {
		got := roundTripRequest(t, MaxServerVersion, req)
		if !reflect.DeepEqual(got, req) {
			t.Errorf("%v: got %+v want %+v", req.Tag(), got, req)
		}
	}
}

func TestRequestMinimumVersions(t *testing.T) {
	cases := []struct {
		req Request
		min int
	}{
		{&ContractDetailsRequest{}, MinServerVerContractDetails},
		{&MktDepthRequest{}, MinServerVerMktDepth},
		{&FARequest{}, MinServerVerFAFields},
		{&ExerciseOptionsRequest{}, MinServerVerExerciseOptions},
		{&ScannerParametersRequest{}, MinServerVerScanner},
		{&CurrentTimeRequest{}, MinServerVerCurrentTime},
		{&RealTimeBarsRequest{}, MinServerVerRealTimeBars},
		{&FundamentalDataRequest{}, MinServerVerFundamentalData},
	}
	for _, c := range cases {
		if err := c.req.Check(c.min - 1); !errors.Is(err, helpers.ErrProtocolTooOld) {
			t.Errorf("%v at %d: %v", c.req.Tag(), c.min-1, err)
		}
		if err := c.req.Check(c.min); err != nil {
			t.Errorf("%v at %d: %v", c.req.Tag(), c.min, err)
		}
	}
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

func TestTickPriceVersions(t *testing.T) {
	m := &TickPriceMsg{MTickPrice: models.MTickPrice{RequestID: 1, Field: models.TickBid, Price: 150, Size: 100, CanAutoExecute: true}}

	got := roundTripMessage(t, 38, m).(*TickPriceMsg)
	if got.MTickPrice != m.MTickPrice || got.Version != 6 {
		t.Errorf("got %+v", got)
	}
	size, ok := got.PairedSize()
	if !ok || size.Field != models.TickBidSize || size.Size != 100 {
		t.Errorf("paired size = %+v,%v", size, ok)
	}

	m.Version = 1
	old := roundTripMessage(t, 38, m).(*TickPriceMsg)
	if old.Size != 0 || old.CanAutoExecute {
		t.Errorf("v1 carried size fields: %+v", old)
	}
	if _, ok := old.PairedSize(); ok {
		t.Error("v1 price tick must not imply a size tick")
	}

	m.Version, m.Field = 6, models.TickHigh
	if _, ok := roundTripMessage(t, 38, m).(*TickPriceMsg).PairedSize(); ok {
		t.Error("high has no paired size")
	}
}

func TestOptionComputationClamps(t *testing.T) {
	m := &TickOptionComputationMsg{MTickOptionComputation: models.MTickOptionComputation{
		RequestID: 2, Field: models.TickModelOption, ImpliedVol: -1, Delta: 2, OptPrice: 3.5, PvDividend: 0,
		Gamma: 0.1, Vega: -5, Theta: -0.2, UndPrice: 100,
	}}
	got := roundTripMessage(t, 40, m).(*TickOptionComputationMsg)
	if got.ImpliedVol != codec.DoubleMax || got.Delta != codec.DoubleMax || got.Vega != codec.DoubleMax {
		t.Errorf("out of range values not clamped: %+v", got)
	}
	if got.OptPrice != 3.5 || got.Gamma != 0.1 || got.Theta != -0.2 || got.UndPrice != 100 {
		t.Errorf("valid values altered: %+v", got)
	}
}

func TestErrorMessageVersions(t *testing.T) {
	got := roundTripMessage(t, 40, &ErrorMsg{Version: 1, Message: "old style"}).(*ErrorMsg)
	if got.RequestID != -1 || got.Message != "old style" {
		t.Errorf("v1 = %+v", got)
	}
	got = roundTripMessage(t, 40, &ErrorMsg{RequestID: 4, Code: 200, Message: "no security"}).(*ErrorMsg)
	if got.RequestID != 4 || got.Code != 200 {
		t.Errorf("v2 = %+v", got)
	}
}

func TestOpenOrderRoundTrip(t *testing.T) {
	o := fullOrder()
	o.ClientID = 42
	o.PermID = 9001
	o.Transmit = true
	o.OverridePercentageConstraints = false
	o.BasisPoints = 1.5
	o.BasisPointsType = 2
	c := aapl()
	c.Multiplier, c.PrimaryExch = "", ""
	c.ConID = 265598
	c.ComboLegsDescrip = "desc"
	c.UnderComp = &models.MUnderComp{ConID: 1, Delta: 0.5, Price: 12}

	m := &OpenOrderMsg{MOpenOrder: models.MOpenOrder{
		OrderID: o.OrderID, Contract: c, Order: o,
		State: models.MOrderState{Status: models.StatusSubmitted, InitMargin: "1000", Commission: codec.DoubleMax,
			MinCommission: 1, MaxCommission: 2, CommissionCurrency: "USD"},
	}}
	got := roundTripMessage(t, MaxServerVersion, m).(*OpenOrderMsg)
	if !reflect.DeepEqual(got.MOpenOrder, m.MOpenOrder) {
		t.Errorf("open order mismatch\n got %+v\nwant %+v", got.MOpenOrder, m.MOpenOrder)
	}
}

func TestContractDataVersions(t *testing.T) {
	d := models.MContractDetails{
		Summary:    models.MContract{Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD", ConID: 265598, PrimaryExch: "NASDAQ"},
		MarketName: "NMS", MinTick: 0.01, PriceMagnifier: 1, LongName: "APPLE INC", TimeZoneID: "EST",
	}
	got := roundTripMessage(t, 40, &ContractDataMsg{RequestID: 7, Details: d}).(*ContractDataMsg)
	if got.RequestID != 7 || !reflect.DeepEqual(got.Details, d) {
		t.Errorf("v6 = %+v", got)
	}
	old := roundTripMessage(t, 40, &ContractDataMsg{Version: 2, RequestID: 7, Details: d}).(*ContractDataMsg)
	if old.RequestID != -1 || old.Details.LongName != "" {
		t.Errorf("v2 = %+v", old)
	}
}

func TestHistoricalDataMessage(t *testing.T) {
	bars := []models.MBar{
		{Date: "20240102", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100, WAP: 1.2, HasGaps: true, Count: 10},
		{Date: "20240103", Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200, WAP: 1.8, Count: 20},
	}
	got := roundTripMessage(t, 40, &HistoricalDataMsg{RequestID: 3, Start: "a", End: "b", Bars: bars}).(*HistoricalDataMsg)
	if !reflect.DeepEqual(got.Bars, bars) || got.Start != "a" || got.End != "b" {
		t.Errorf("v3 = %+v", got)
	}
	old := roundTripMessage(t, 40, &HistoricalDataMsg{Version: 1, RequestID: 3, Bars: bars}).(*HistoricalDataMsg)
	if old.Bars[0].Count != -1 || old.Start != "" {
		t.Errorf("v1 = %+v", old)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	listed := models.MContract{ConID: 265598, Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD", LocalSymbol: "AAPL"}
	held := aapl()
	held.Exchange = ""

	msgs := []Message{
		&TickSizeMsg{Version: 6, MTickSize: models.MTickSize{RequestID: 1, Field: models.TickVolume, Size: 1000}},
		&TickGenericMsg{Version: 6, MTickGeneric: models.MTickGeneric{RequestID: 1, Field: models.TickShortable, Value: 3}},
		&TickStringMsg{Version: 6, MTickString: models.MTickString{RequestID: 1, Field: models.TickLastTimestamp, Value: "1700000000"}},
		&TickEFPMsg{Version: 6, MTickEFP: models.MTickEFP{RequestID: 1, Field: models.TickBidEFP, BasisPoints: 1, FormattedBasisPoints: "1.0", HoldDays: 3}},
		&TickSnapshotEndMsg{Version: 1, RequestID: 1},
		&OrderStatusMsg{Version: 6, MOrderStatus: models.MOrderStatus{OrderID: 1, Status: models.StatusFilled, Filled: 100, AvgFillPrice: 10, PermID: 5, ClientID: 42, WhyHeld: "locate"}},
		&OpenOrderEndMsg{Version: 1},
		&NextValidIDMsg{Version: 1, OrderID: 100},
		&AccountValueMsg{Version: 2, MAccountValue: models.MAccountValue{Key: "NetLiquidation", Value: "100000", Currency: "USD", Account: "DU1"}},
		&PortfolioValueMsg{Version: 7, MPortfolioValue: models.MPortfolioValue{Contract: held, Position: 10, MarketPrice: 150, AverageCost: 140, Account: "DU1"}},
		&AccountTimeMsg{Version: 1, Timestamp: "15:30"},
		&AccountDownloadEndMsg{Version: 1, Account: "DU1"},
		&ManagedAccountsMsg{Version: 1, Accounts: "DU1,DU2"},
		&ReceiveFAMsg{Version: 1, DataType: models.FAAliases, XML: "<x/>"},
		&BondContractDataMsg{Version: 4, RequestID: 2, Details: models.MContractDetails{Summary: models.MContract{Symbol: "T", SecType: models.SecTypeBond}, Cusip: "912828", Coupon: 2.5, Callable: true, LongName: "UST"}},
		&ContractDataEndMsg{Version: 1, RequestID: 2},
		&ExecutionDataMsg{Version: 7, MExecutionReport: models.MExecutionReport{RequestID: 8, Contract: listed, Execution: models.MExecution{OrderID: 1, ExecID: "e1", Side: "BOT", Shares: 100, Price: 150, CumQty: 100, AvgPrice: 150}}},
		&ExecutionDataEndMsg{Version: 1, RequestID: 8},
		&MarketDepthMsg{Version: 1, MMarketDepth: models.MMarketDepth{RequestID: 10, Position: 0, Operation: models.DepthInsert, Side: models.DepthBid, Price: 1, Size: 2}},
		&MarketDepthMsg{Version: 1, L2: true, MMarketDepth: models.MMarketDepth{RequestID: 10, Position: 1, MarketMaker: "NSDQ", Operation: models.DepthUpdate, Side: models.DepthAsk, Price: 1, Size: 2}},
		&NewsBulletinMsg{Version: 1, MNewsBulletin: models.MNewsBulletin{MsgID: 1, Type: models.NewsRegular, Message: "halt", OriginExchange: "NYSE"}},
		&ScannerParametersMsg{Version: 1, XML: "<params/>"},
		&ScannerDataMsg{Version: 3, RequestID: 4, Rows: []models.MScannerData{{Rank: 0, Details: models.MContractDetails{Summary: listed, MarketName: "NMS"}, Legs: "l"}}},
		&CurrentTimeMsg{Version: 1, Time: 1700000000},
		&RealTimeBarMsg{Version: 1, RequestID: 12, Bar: models.MRealTimeBar{Time: 1700000000, Open: 1, High: 2, Low: 1, Close: 2, Volume: 1 << 33, WAP: 1.5, Count: 4}},
		&FundamentalDataMsg{Version: 1, RequestID: 13, Data: "<xml/>"},
		&DeltaNeutralValidationMsg{Version: 1, RequestID: 1, UnderComp: models.MUnderComp{ConID: 1, Delta: 0.5, Price: 10}},
	}
	for _, m := range msgs {
		got := roundTripMessage(t, MaxServerVersion, m)
		if !reflect.DeepEqual(got, m) {
			t.Errorf("%v:\n got %+v\nwant %+v", m.Tag(), got, m)
		}
	}
}

func TestManagedAccountsList(t *testing.T) {
	m := &ManagedAccountsMsg{Accounts: "DU1, DU2,,"}
	if got := m.List(); !reflect.DeepEqual(got, []string{"DU1", "DU2"}) {
		t.Errorf("List = %v", got)
	}
}

func TestUnknownTagAndCleanEnd(t *testing.T) {
	_, err := DecodeMessage(reader([]byte("999\x001\x00")), 40)
	if !errors.Is(err, symbols.ErrUnknownSymbol) {
		t.Errorf("unknown tag err = %v", err)
	}

	_, err = DecodeMessage(reader(nil), 40)
	if !errors.Is(err, io.EOF) {
		t.Errorf("empty stream err = %v", err)
	}

	_, err = DecodeMessage(reader([]byte("1\x006\x001\x00")), 40)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated message must not look like a clean end: %v", err)
	}
}

func TestTablesCoverEveryDecoder(t *testing.T) {
	for _, m := range IncomingMessages.Variants() {
		if _, ok := messageDecoders[m]; !ok {
			t.Errorf("no decoder for %v", m)
		}
	}
	for _, m := range OutgoingMessages.Variants() {
		if _, ok := requestDecoders[m]; !ok {
			t.Errorf("no decoder for %v", m)
		}
	}
}
