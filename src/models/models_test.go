package models

import (
	"testing"

	"twsclient/src/codec"
)

type roundTripper interface {
	Name() string
	Len() int
}

func checkTable[T comparable](t *testing.T, tbl interface {
	Name() string
	Encode(T) (string, error)
	Decode(string) (T, error)
	Variants() []T
}) {
	t.Helper()
	for _, v := range tbl.Variants() {
		code, err := tbl.Encode(v)
		if err != nil {
			t.Errorf("%s: encode %v: %v", tbl.Name(), v, err)
			continue
		}
		back, err := tbl.Decode(code)
		if err != nil || back != v {
			t.Errorf("%s: decode(%q) = %v,%v want %v", tbl.Name(), code, back, err, v)
		}
	}
}

func TestTablesRoundTrip(t *testing.T) {
	checkTable[SecurityType](t, SecurityTypes)
	checkTable[Right](t, Rights)
	checkTable[Action](t, Actions)
	checkTable[OrderType](t, OrderTypes)
	checkTable[TimeInForce](t, TimesInForce)
	checkTable[OcaType](t, OcaTypes)
	checkTable[TriggerMethod](t, TriggerMethods)
	checkTable[Rule80A](t, Rule80As)
	checkTable[OpenClose](t, OpenCloses)
	checkTable[OrderOrigin](t, OrderOrigins)
	checkTable[ExerciseAction](t, ExerciseActions)
	checkTable[FADataType](t, FADataTypes)
	checkTable[LogLevel](t, LogLevels)
	checkTable[BarSize](t, BarSizes)
	checkTable[WhatToShow](t, WhatToShows)
	checkTable[DepthOperation](t, DepthOperations)
	checkTable[DepthSide](t, DepthSides)
	checkTable[NewsType](t, NewsTypes)
	checkTable[SecurityIDType](t, SecurityIDTypes)
	checkTable[TickType](t, TickTypes)
}

func TestTablesAreComplete(t *testing.T) {
	cases := []struct {
		tbl  roundTripper
		want int
	}{
		{SecurityTypes, int(SecTypeWarrant) + 1},
		{OrderTypes, int(OrderTypeLimitIfTouched) + 1},
		{TimesInForce, int(TifFillOrKill) + 1},
		{TickTypes, int(TickHalted) + 1},
		{SecurityIDTypes, int(SecIDRIC) + 1},
	}
	for _, c := range cases {
		if c.tbl.Len() != c.want {
			t.Errorf("%s has %d entries, want %d", c.tbl.Name(), c.tbl.Len(), c.want)
		}
	}
}

func TestWireCodes(t *testing.T) {
	if c, _ := SecurityTypes.Encode(SecTypeStock); c != "STK" {
		t.Errorf("stock = %q", c)
	}
	if c, _ := OrderTypes.Encode(OrderTypeStopLimit); c != "STP LMT" {
		t.Errorf("stop limit = %q", c)
	}
	if c, _ := TickTypes.Encode(TickBid); c != "1" {
		t.Errorf("bid tick = %q", c)
	}
	if _, err := TickTypes.Encode(TickSyntheticTrade); err == nil {
		t.Error("synthetic trade must not have a wire code")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	terminal := []OrderStatus{StatusFilled, StatusCancelled, StatusApiCancelled, StatusInactive}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	live := []OrderStatus{StatusSubmitted, StatusPreSubmitted, StatusPendingSubmit, StatusPendingCancel, "Unknown"}
	for _, s := range live {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestNewOrderDefaults(t *testing.T) {
	o := NewOrder()
	if !o.Transmit || o.OpenClose != OpenCloseOpen {
		t.Errorf("unexpected defaults %+v", o)
	}
	if o.MinQty != codec.IntMax || o.Volatility != codec.DoubleMax {
		t.Error("optional numeric fields must default to the sentinel")
	}
	if o.UsesScale() {
		t.Error("fresh order should not use scale fields")
	}
	o.ScalePriceIncrement = 0.05
	if !o.UsesScale() {
		t.Error("scale increment set but UsesScale false")
	}
}

func TestContractEqual(t *testing.T) {
	a := MContract{Symbol: "AAPL", SecType: SecTypeStock, Exchange: "SMART", Currency: "USD"}
	b := a
	if !a.Equal(b) {
		t.Fatal("copies must be equal")
	}
	b.ComboLegs = []MComboLeg{{ConID: 1, Ratio: 1}}
	if a.Equal(b) {
		t.Error("leg count differs")
	}
	a.ComboLegs = []MComboLeg{{ConID: 1, Ratio: 1}}
	if !a.Equal(b) {
		t.Error("equal legs compare unequal")
	}
	a.UnderComp = &MUnderComp{ConID: 5}
	if a.Equal(b) {
		t.Error("under comp differs")
	}
	b.UnderComp = &MUnderComp{ConID: 5}
	if !a.Equal(b) {
		t.Error("equal under comps compare unequal")
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := &MMarketDataSnapshot{
		RequestID: 1,
		Contract:  MContract{ComboLegs: []MComboLeg{{ConID: 1}}, UnderComp: &MUnderComp{ConID: 2}},
	}
	c := s.Clone()
	s.Contract.ComboLegs[0].ConID = 99
	s.Contract.UnderComp.ConID = 99
	if c.Contract.ComboLegs[0].ConID != 1 || c.Contract.UnderComp.ConID != 2 {
		t.Error("clone shares mutable state with the original")
	}
}
