package protocol

import (
	"fmt"

	"twsclient/src/codec"
	"twsclient/src/helpers"
	"twsclient/src/models"
)

// Request is one outbound client message. Check rejects requests that use a
// feature the negotiated server does not have; encode writes the local
// request version followed by the fields valid for serverVersion.
type Request interface {
	Tag() OutgoingMessage
	Check(serverVersion int) error
	encode(w *codec.Writer, serverVersion int)
}

// EncodeRequest validates req and appends it to w. Nothing is written when
// Check fails.
func EncodeRequest(w *codec.Writer, serverVersion int, req Request) error {
	if err := req.Check(serverVersion); err != nil {
		return err
	}
	codec.WriteSymbol(w, OutgoingMessages, req.Tag())
	req.encode(w, serverVersion)
	return w.Err()
}

// DecodeRequest reads one client message. It is the peer side counterpart of
// EncodeRequest.
func DecodeRequest(r *codec.Reader, serverVersion int) (Request, error) {
	req, _, err := DecodeRequestVersion(r, serverVersion)
	return req, err
}

// DecodeRequestVersion is DecodeRequest that also returns the request version
// the client wrote. Fields are gated on the server version, so the request
// version only has to be a valid one.
func DecodeRequestVersion(r *codec.Reader, serverVersion int) (Request, int, error) {
	tag := codec.ReadSymbol(r, OutgoingMessages)
	if err := r.Err(); err != nil {
		return nil, 0, err
	}
	dec, ok := requestDecoders[tag]
	if !ok {
		return nil, 0, fmt.Errorf("no decoder for %v", tag)
	}
	version := r.Int()
	req := dec(r, serverVersion)
	if err := r.Err(); err != nil {
		return nil, 0, fmt.Errorf("decode %v: %w", tag, midMessage(err))
	}
	if version < 1 {
		return nil, 0, fmt.Errorf("decode %v: invalid request version %d", tag, version)
	}
	return req, version, nil
}

var requestDecoders = map[OutgoingMessage]func(*codec.Reader, int) Request{
	ReqMktData:             decodeMktData,
	CancelMktData:          func(r *codec.Reader, _ int) Request { return &CancelMktDataRequest{TickerID: r.Int()} },
	PlaceOrder:             decodePlaceOrder,
	CancelOrder:            func(r *codec.Reader, _ int) Request { return &CancelOrderRequest{OrderID: r.Int()} },
	ReqOpenOrders:          func(*codec.Reader, int) Request { return &OpenOrdersRequest{} },
	ReqAccountData:         decodeAccountUpdates,
	ReqExecutions:          decodeExecutions,
	ReqIDs:                 func(r *codec.Reader, _ int) Request { return &IDsRequest{NumIDs: r.Int()} },
	ReqContractData:        decodeContractDetails,
	ReqMktDepth:            decodeMktDepth,
	CancelMktDepth:         func(r *codec.Reader, _ int) Request { return &CancelMktDepthRequest{TickerID: r.Int()} },
	ReqNewsBulletins:       func(r *codec.Reader, _ int) Request { return &NewsBulletinsRequest{AllMessages: r.Bool()} },
	CancelNewsBulletins:    func(*codec.Reader, int) Request { return &CancelNewsBulletinsRequest{} },
	SetServerLogLevel:      decodeServerLogLevel,
	ReqAutoOpenOrders:      func(r *codec.Reader, _ int) Request { return &AutoOpenOrdersRequest{AutoBind: r.Bool()} },
	ReqAllOpenOrders:       func(*codec.Reader, int) Request { return &AllOpenOrdersRequest{} },
	ReqManagedAccts:        func(*codec.Reader, int) Request { return &ManagedAccountsRequest{} },
	ReqFA:                  decodeFA,
	ReplaceFA:              decodeReplaceFA,
	ReqHistoricalData:      decodeHistoricalData,
	ExerciseOptions:        decodeExerciseOptions,
	ReqScannerSubscription: decodeScannerSubscription,
	CancelScanner:          func(r *codec.Reader, _ int) Request { return &CancelScannerRequest{TickerID: r.Int()} },
	ReqScannerParameters:   func(*codec.Reader, int) Request { return &ScannerParametersRequest{} },
	CancelHistoricalData:   func(r *codec.Reader, _ int) Request { return &CancelHistoricalDataRequest{TickerID: r.Int()} },
	ReqCurrentTime:         func(*codec.Reader, int) Request { return &CurrentTimeRequest{} },
	ReqRealTimeBars:        decodeRealTimeBars,
	CancelRealTimeBars:     func(r *codec.Reader, _ int) Request { return &CancelRealTimeBarsRequest{TickerID: r.Int()} },
	ReqFundamentalData:     decodeFundamentalData,
	CancelFundamentalData:  func(r *codec.Reader, _ int) Request { return &CancelFundamentalDataRequest{RequestID: r.Int()} },
}

// -----------------------------------------------------------------------------

func need(feature string, required, serverVersion int) error {
	if serverVersion < required {
		return helpers.ProtocolTooOld(feature, required, serverVersion)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Contract fields shared by several requests
// -----------------------------------------------------------------------------

func writeContractCore(w *codec.Writer, c *models.MContract) {
	w.String(c.Symbol)
	codec.WriteSymbol(w, models.SecurityTypes, c.SecType)
	w.String(c.Expiry).Float(c.Strike)
	codec.WriteSymbol(w, models.Rights, c.Right)
}

func readContractCore(r *codec.Reader, c *models.MContract) {
	c.Symbol = r.String()
	c.SecType = codec.ReadSymbol(r, models.SecurityTypes)
	c.Expiry = r.String()
	c.Strike = r.Float()
	c.Right = codec.ReadSymbol(r, models.Rights)
}

func writeUnderComp(w *codec.Writer, uc *models.MUnderComp) {
	if uc == nil {
		w.Bool(false)
		return
	}
	w.Bool(true).Int(uc.ConID).Float(uc.Delta).Float(uc.Price)
}

func readUnderComp(r *codec.Reader) *models.MUnderComp {
	if !r.Bool() {
		return nil
	}
	return &models.MUnderComp{ConID: r.Int(), Delta: r.Float(), Price: r.Float()}
}

func writeShortLegs(w *codec.Writer, legs []models.MComboLeg) {
	w.Int(len(legs))
	for _, leg := range legs {
		w.Int(leg.ConID).Int(leg.Ratio)
		codec.WriteSymbol(w, models.Actions, leg.Action)
		w.String(leg.Exchange)
	}
}

func readShortLegs(r *codec.Reader) []models.MComboLeg {
	n := r.Int()
	if n <= 0 || r.Err() != nil {
		return nil
	}
	legs := make([]models.MComboLeg, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		leg := models.MComboLeg{ConID: r.Int(), Ratio: r.Int()}
		leg.Action = codec.ReadSymbol(r, models.Actions)
		leg.Exchange = r.String()
		legs = append(legs, leg)
	}
	return legs
}

// -----------------------------------------------------------------------------
// Market data
// -----------------------------------------------------------------------------

type MktDataRequest struct {
	TickerID     int
	Contract     models.MContract
	GenericTicks string
	Snapshot     bool
}

func (*MktDataRequest) Tag() OutgoingMessage { return ReqMktData }

func (q *MktDataRequest) Check(sv int) error {
	if q.Snapshot {
		if err := need("snapshot market data", MinServerVerSnapshotMktData, sv); err != nil {
			return err
		}
	}
	if q.Contract.UnderComp != nil {
		if err := need("delta-neutral market data", MinServerVerUnderComp, sv); err != nil {
			return err
		}
	}
	if q.Contract.ConID > 0 {
		return need("market data by conId", MinServerVerReqMktDataConID, sv)
	}
	return nil
}

func (q *MktDataRequest) encode(w *codec.Writer, sv int) {
	c := &q.Contract
	w.Int(8).Int(q.TickerID)
	if sv >= MinServerVerReqMktDataConID {
		w.Int(c.ConID)
	}
	writeContractCore(w, c)
	if sv >= MinServerVerMultiplier {
		w.String(c.Multiplier)
	}
	w.String(c.Exchange)
	if sv >= MinServerVerPrimaryExch {
		w.String(c.PrimaryExch)
	}
	w.String(c.Currency)
	if sv >= MinServerVerLocalSymbol {
		w.String(c.LocalSymbol)
	}
	if sv >= MinServerVerComboLegs && c.SecType == models.SecTypeBag {
		writeShortLegs(w, c.ComboLegs)
	}
	if sv >= MinServerVerUnderComp {
		writeUnderComp(w, c.UnderComp)
	}
	if sv >= MinServerVerGenericTicks {
		w.String(q.GenericTicks)
	}
	if sv >= MinServerVerSnapshotMktData {
		w.Bool(q.Snapshot)
	}
}

func decodeMktData(r *codec.Reader, sv int) Request {
	q := &MktDataRequest{TickerID: r.Int()}
	c := &q.Contract
	if sv >= MinServerVerReqMktDataConID {
		c.ConID = r.Int()
	}
	readContractCore(r, c)
	if sv >= MinServerVerMultiplier {
		c.Multiplier = r.String()
	}
	c.Exchange = r.String()
	if sv >= MinServerVerPrimaryExch {
		c.PrimaryExch = r.String()
	}
	c.Currency = r.String()
	if sv >= MinServerVerLocalSymbol {
		c.LocalSymbol = r.String()
	}
	if sv >= MinServerVerComboLegs && c.SecType == models.SecTypeBag {
		c.ComboLegs = readShortLegs(r)
	}
	if sv >= MinServerVerUnderComp {
		c.UnderComp = readUnderComp(r)
	}
	if sv >= MinServerVerGenericTicks {
		q.GenericTicks = r.String()
	}
	if sv >= MinServerVerSnapshotMktData {
		q.Snapshot = r.Bool()
	}
	return q
}

// -----------------------------------------------------------------------------

type CancelMktDataRequest struct {
	TickerID int
}

func (*CancelMktDataRequest) Tag() OutgoingMessage            { return CancelMktData }
func (*CancelMktDataRequest) Check(int) error                 { return nil }
func (q *CancelMktDataRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.TickerID) }

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

type PlaceOrderRequest struct {
	OrderID  int
	Contract models.MContract
	Order    models.MOrder
}

func (*PlaceOrderRequest) Tag() OutgoingMessage { return PlaceOrder }

func (q *PlaceOrderRequest) Check(sv int) error {
	c, o := &q.Contract, &q.Order
	checks := []struct {
		used     bool
		feature  string
		required int
	}{
		{o.UsesScale(), "scale orders", MinServerVerScaleOrders},
		{o.ScaleSubsLevelSize != codec.IntMax, "scale subsequent level size", MinServerVerScaleOrders2},
		{hasShortSaleLegs(c.ComboLegs), "short sale combo legs", MinServerVerSShortComboLegs},
		{o.WhatIf, "what-if orders", MinServerVerWhatIfOrders},
		{c.UnderComp != nil, "delta-neutral orders", MinServerVerUnderComp},
		{o.AlgoStrategy != "", "algo orders", MinServerVerAlgoOrders},
		{o.NotHeld, "not held", MinServerVerNotHeld},
		{o.ClearingAccount != "" || o.ClearingIntent != "", "clearing account/intent", MinServerVerPTAOrders},
		{c.SecIDType != models.SecIDNone || c.SecID != "", "security id type", MinServerVerSecIDType},
		{c.ConID > 0, "place order by conId", MinServerVerPlaceOrderConID},
	}
	for _, ch := range checks {
		if !ch.used {
			continue
		}
		if err := need(ch.feature, ch.required, sv); err != nil {
			return err
		}
	}
	return nil
}

func hasShortSaleLegs(legs []models.MComboLeg) bool {
	for _, leg := range legs {
		if leg.ShortSaleSlot != 0 || leg.DesignatedLocation != "" {
			return true
		}
	}
	return false
}

func (q *PlaceOrderRequest) encode(w *codec.Writer, sv int) {
	c, o := &q.Contract, &q.Order
	version := 27
	if sv >= MinServerVerNotHeld {
		version = 28
	}
	w.Int(version).Int(q.OrderID)

	if sv >= MinServerVerPlaceOrderConID {
		w.Int(c.ConID)
	}
	writeContractCore(w, c)
	if sv >= MinServerVerMultiplier {
		w.String(c.Multiplier)
	}
	w.String(c.Exchange)
	if sv >= MinServerVerPrimaryExch {
		w.String(c.PrimaryExch)
	}
	w.String(c.Currency)
	if sv >= MinServerVerLocalSymbol {
		w.String(c.LocalSymbol)
	}
	if sv >= MinServerVerSecIDType {
		codec.WriteSymbol(w, models.SecurityIDTypes, c.SecIDType)
		w.String(c.SecID)
	}

	codec.WriteSymbol(w, models.Actions, o.Action)
	w.Int(o.TotalQuantity)
	codec.WriteSymbol(w, models.OrderTypes, o.OrderType)
	w.Float(o.LmtPrice).Float(o.AuxPrice)

	codec.WriteSymbol(w, models.TimesInForce, o.Tif)
	w.String(o.OcaGroup).String(o.Account)
	codec.WriteSymbol(w, models.OpenCloses, o.OpenClose)
	codec.WriteSymbol(w, models.OrderOrigins, o.Origin)
	w.String(o.OrderRef).Bool(o.Transmit)
	if sv >= MinServerVerParentID {
		w.Int(o.ParentID)
	}
	if sv >= MinServerVerExtendedOrder {
		w.Bool(o.BlockOrder).Bool(o.SweepToFill).Int(o.DisplaySize)
		codec.WriteSymbol(w, models.TriggerMethods, o.TriggerMethod)
		if sv < MinServerVerOutsideRth {
			w.Bool(false) // ignoreRth
		} else {
			w.Bool(o.OutsideRth)
		}
	}
	if sv >= MinServerVerHidden {
		w.Bool(o.Hidden)
	}

	if sv >= MinServerVerComboLegs && c.SecType == models.SecTypeBag {
		w.Int(len(c.ComboLegs))
		for _, leg := range c.ComboLegs {
			w.Int(leg.ConID).Int(leg.Ratio)
			codec.WriteSymbol(w, models.Actions, leg.Action)
			w.String(leg.Exchange).Int(leg.OpenClose)
			if sv >= MinServerVerSShortComboLegs {
				w.Int(leg.ShortSaleSlot).String(leg.DesignatedLocation)
			}
		}
	}

	if sv >= MinServerVerExecFilter {
		w.String("") // shares allocation, deprecated
	}
	if sv >= MinServerVerDiscretionary {
		w.Float(o.DiscretionaryAmt)
	}
	if sv >= MinServerVerGoodAfterTime {
		w.String(o.GoodAfterTime)
	}
	if sv >= MinServerVerGoodTillDate {
		w.String(o.GoodTillDate)
	}
	if sv >= MinServerVerFAFields {
		w.String(o.FAGroup).String(o.FAMethod).String(o.FAPercentage).String(o.FAProfile)
	}
	if sv >= MinServerVerInstitutional {
		w.Int(o.ShortSaleSlot).String(o.DesignatedLocation)
	}

	isVol := o.OrderType == models.OrderTypeVolatility
	if sv >= MinServerVerOrderCombinations {
		codec.WriteSymbol(w, models.OcaTypes, o.OcaType)
		if sv < MinServerVerOutsideRth {
			w.Bool(false) // rthOnly
		}
		codec.WriteSymbol(w, models.Rule80As, o.Rule80A)
		w.String(o.SettlingFirm).Bool(o.AllOrNone).IntMax(o.MinQty).FloatMax(o.PercentOffset)
		w.Bool(o.ETradeOnly).Bool(o.FirmQuoteOnly).FloatMax(o.NbboPriceCap).IntMax(o.AuctionStrategy)
		w.FloatMax(o.StartingPrice).FloatMax(o.StockRefPrice).FloatMax(o.Delta)
		lower, upper := o.StockRangeLower, o.StockRangeUpper
		if sv == volatilityWatermarkVersion && isVol {
			lower, upper = codec.DoubleMax, codec.DoubleMax
		}
		w.FloatMax(lower).FloatMax(upper)
	}
	if sv >= MinServerVerOverridePct {
		w.Bool(o.OverridePercentageConstraints)
	}
	if sv >= MinServerVerVolatilityOrders {
		w.FloatMax(o.Volatility).IntMax(o.VolatilityType)
		if sv < MinServerVerDeltaNeutralType {
			w.Bool(o.DeltaNeutralOrderType == models.OrderTypeMarket)
		} else {
			codec.WriteSymbol(w, models.OrderTypes, o.DeltaNeutralOrderType)
			w.FloatMax(o.DeltaNeutralAuxPrice)
		}
		w.Bool(o.ContinuousUpdate)
		if sv == volatilityWatermarkVersion {
			lower, upper := codec.DoubleMax, codec.DoubleMax
			if isVol {
				lower, upper = o.StockRangeLower, o.StockRangeUpper
			}
			w.FloatMax(lower).FloatMax(upper)
		}
		w.IntMax(o.ReferencePriceType)
	}
	if sv >= MinServerVerTrailStopPrice {
		w.FloatMax(o.TrailStopPrice)
	}
	if sv >= MinServerVerScaleOrders {
		if sv >= MinServerVerScaleOrders2 {
			w.IntMax(o.ScaleInitLevelSize).IntMax(o.ScaleSubsLevelSize)
		} else {
			w.String("").IntMax(o.ScaleInitLevelSize)
		}
		w.FloatMax(o.ScalePriceIncrement)
	}
	if sv >= MinServerVerPTAOrders {
		w.String(o.ClearingAccount).String(o.ClearingIntent)
	}
	if sv >= MinServerVerNotHeld {
		w.Bool(o.NotHeld)
	}
	if sv >= MinServerVerUnderComp {
		writeUnderComp(w, c.UnderComp)
	}
	if sv >= MinServerVerAlgoOrders {
		w.String(o.AlgoStrategy)
		if o.AlgoStrategy != "" {
			w.Int(len(o.AlgoParams))
			for _, p := range o.AlgoParams {
				w.String(p.Tag).String(p.Value)
			}
		}
	}
	if sv >= MinServerVerWhatIfOrders {
		w.Bool(o.WhatIf)
	}
}

func decodePlaceOrder(r *codec.Reader, sv int) Request {
	q := &PlaceOrderRequest{OrderID: r.Int(), Order: models.NewOrder()}
	c, o := &q.Contract, &q.Order
	o.OrderID = q.OrderID

	if sv >= MinServerVerPlaceOrderConID {
		c.ConID = r.Int()
	}
	readContractCore(r, c)
	if sv >= MinServerVerMultiplier {
		c.Multiplier = r.String()
	}
	c.Exchange = r.String()
	if sv >= MinServerVerPrimaryExch {
		c.PrimaryExch = r.String()
	}
	c.Currency = r.String()
	if sv >= MinServerVerLocalSymbol {
		c.LocalSymbol = r.String()
	}
	if sv >= MinServerVerSecIDType {
		c.SecIDType = codec.ReadSymbol(r, models.SecurityIDTypes)
		c.SecID = r.String()
	}

	o.Action = codec.ReadSymbol(r, models.Actions)
	o.TotalQuantity = r.Int()
	o.OrderType = codec.ReadSymbol(r, models.OrderTypes)
	o.LmtPrice = r.Float()
	o.AuxPrice = r.Float()

	o.Tif = codec.ReadSymbol(r, models.TimesInForce)
	o.OcaGroup = r.String()
	o.Account = r.String()
	o.OpenClose = codec.ReadSymbol(r, models.OpenCloses)
	o.Origin = codec.ReadSymbol(r, models.OrderOrigins)
	o.OrderRef = r.String()
	o.Transmit = r.Bool()
	if sv >= MinServerVerParentID {
		o.ParentID = r.Int()
	}
	if sv >= MinServerVerExtendedOrder {
		o.BlockOrder = r.Bool()
		o.SweepToFill = r.Bool()
		o.DisplaySize = r.Int()
		o.TriggerMethod = codec.ReadSymbol(r, models.TriggerMethods)
		if sv < MinServerVerOutsideRth {
			_ = r.Bool()
		} else {
			o.OutsideRth = r.Bool()
		}
	}
	if sv >= MinServerVerHidden {
		o.Hidden = r.Bool()
	}

	if sv >= MinServerVerComboLegs && c.SecType == models.SecTypeBag {
		n := r.Int()
		for i := 0; i < n && r.Err() == nil; i++ {
			leg := models.MComboLeg{ConID: r.Int(), Ratio: r.Int()}
			leg.Action = codec.ReadSymbol(r, models.Actions)
			leg.Exchange = r.String()
			leg.OpenClose = r.Int()
			if sv >= MinServerVerSShortComboLegs {
				leg.ShortSaleSlot = r.Int()
				leg.DesignatedLocation = r.String()
			}
			c.ComboLegs = append(c.ComboLegs, leg)
		}
	}

	if sv >= MinServerVerExecFilter {
		_ = r.String()
	}
	if sv >= MinServerVerDiscretionary {
		o.DiscretionaryAmt = r.Float()
	}
	if sv >= MinServerVerGoodAfterTime {
		o.GoodAfterTime = r.String()
	}
	if sv >= MinServerVerGoodTillDate {
		o.GoodTillDate = r.String()
	}
	if sv >= MinServerVerFAFields {
		o.FAGroup = r.String()
		o.FAMethod = r.String()
		o.FAPercentage = r.String()
		o.FAProfile = r.String()
	}
	if sv >= MinServerVerInstitutional {
		o.ShortSaleSlot = r.Int()
		o.DesignatedLocation = r.String()
	}
	if sv >= MinServerVerOrderCombinations {
		o.OcaType = codec.ReadSymbol(r, models.OcaTypes)
		if sv < MinServerVerOutsideRth {
			_ = r.Bool()
		}
		o.Rule80A = codec.ReadSymbol(r, models.Rule80As)
		o.SettlingFirm = r.String()
		o.AllOrNone = r.Bool()
		o.MinQty = r.IntMax()
		o.PercentOffset = r.FloatMax()
		o.ETradeOnly = r.Bool()
		o.FirmQuoteOnly = r.Bool()
		o.NbboPriceCap = r.FloatMax()
		o.AuctionStrategy = r.IntMax()
		o.StartingPrice = r.FloatMax()
		o.StockRefPrice = r.FloatMax()
		o.Delta = r.FloatMax()
		o.StockRangeLower = r.FloatMax()
		o.StockRangeUpper = r.FloatMax()
	}
	if sv >= MinServerVerOverridePct {
		o.OverridePercentageConstraints = r.Bool()
	}
	if sv >= MinServerVerVolatilityOrders {
		o.Volatility = r.FloatMax()
		o.VolatilityType = r.IntMax()
		if sv < MinServerVerDeltaNeutralType {
			if r.Bool() {
				o.DeltaNeutralOrderType = models.OrderTypeMarket
			}
		} else {
			o.DeltaNeutralOrderType = codec.ReadSymbol(r, models.OrderTypes)
			o.DeltaNeutralAuxPrice = r.FloatMax()
		}
		o.ContinuousUpdate = r.Bool()
		if sv == volatilityWatermarkVersion {
			lower, upper := r.FloatMax(), r.FloatMax()
			if o.OrderType == models.OrderTypeVolatility {
				o.StockRangeLower, o.StockRangeUpper = lower, upper
			}
		}
		o.ReferencePriceType = r.IntMax()
	}
	if sv >= MinServerVerTrailStopPrice {
		o.TrailStopPrice = r.FloatMax()
	}
	if sv >= MinServerVerScaleOrders {
		if sv >= MinServerVerScaleOrders2 {
			o.ScaleInitLevelSize = r.IntMax()
			o.ScaleSubsLevelSize = r.IntMax()
		} else {
			_ = r.String()
			o.ScaleInitLevelSize = r.IntMax()
		}
		o.ScalePriceIncrement = r.FloatMax()
	}
	if sv >= MinServerVerPTAOrders {
		o.ClearingAccount = r.String()
		o.ClearingIntent = r.String()
	}
	if sv >= MinServerVerNotHeld {
		o.NotHeld = r.Bool()
	}
	if sv >= MinServerVerUnderComp {
		c.UnderComp = readUnderComp(r)
	}
	if sv >= MinServerVerAlgoOrders {
		o.AlgoStrategy = r.String()
		if o.AlgoStrategy != "" {
			n := r.Int()
			for i := 0; i < n && r.Err() == nil; i++ {
				o.AlgoParams = append(o.AlgoParams, models.MTagValue{Tag: r.String(), Value: r.String()})
			}
		}
	}
	if sv >= MinServerVerWhatIfOrders {
		o.WhatIf = r.Bool()
	}
	return q
}

// -----------------------------------------------------------------------------

type CancelOrderRequest struct {
	OrderID int
}

func (*CancelOrderRequest) Tag() OutgoingMessage            { return CancelOrder }
func (*CancelOrderRequest) Check(int) error                 { return nil }
func (q *CancelOrderRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.OrderID) }

type OpenOrdersRequest struct{}

func (*OpenOrdersRequest) Tag() OutgoingMessage          { return ReqOpenOrders }
func (*OpenOrdersRequest) Check(int) error               { return nil }
func (*OpenOrdersRequest) encode(w *codec.Writer, _ int) { w.Int(1) }

type AllOpenOrdersRequest struct{}

func (*AllOpenOrdersRequest) Tag() OutgoingMessage          { return ReqAllOpenOrders }
func (*AllOpenOrdersRequest) Check(int) error               { return nil }
func (*AllOpenOrdersRequest) encode(w *codec.Writer, _ int) { w.Int(1) }

type AutoOpenOrdersRequest struct {
	AutoBind bool
}

func (*AutoOpenOrdersRequest) Tag() OutgoingMessage            { return ReqAutoOpenOrders }
func (*AutoOpenOrdersRequest) Check(int) error                 { return nil }
func (q *AutoOpenOrdersRequest) encode(w *codec.Writer, _ int) { w.Int(1).Bool(q.AutoBind) }

type IDsRequest struct {
	NumIDs int
}

func (*IDsRequest) Tag() OutgoingMessage            { return ReqIDs }
func (*IDsRequest) Check(int) error                 { return nil }
func (q *IDsRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.NumIDs) }

// -----------------------------------------------------------------------------
// Account and executions
// -----------------------------------------------------------------------------

type AccountUpdatesRequest struct {
	Subscribe bool
	Account   string
}

func (*AccountUpdatesRequest) Tag() OutgoingMessage { return ReqAccountData }
func (*AccountUpdatesRequest) Check(int) error      { return nil }

func (q *AccountUpdatesRequest) encode(w *codec.Writer, sv int) {
	w.Int(2).Bool(q.Subscribe)
	if sv >= MinServerVerAccountCode {
		w.String(q.Account)
	}
}

func decodeAccountUpdates(r *codec.Reader, sv int) Request {
	q := &AccountUpdatesRequest{Subscribe: r.Bool()}
	if sv >= MinServerVerAccountCode {
		q.Account = r.String()
	}
	return q
}

// -----------------------------------------------------------------------------

type ExecutionsRequest struct {
	RequestID int
	Filter    models.MExecutionFilter
}

func (*ExecutionsRequest) Tag() OutgoingMessage { return ReqExecutions }
func (*ExecutionsRequest) Check(int) error      { return nil }

func (q *ExecutionsRequest) encode(w *codec.Writer, sv int) {
	f := &q.Filter
	w.Int(3)
	if sv >= MinServerVerExecutionDataChain {
		w.Int(q.RequestID)
	}
	if sv >= MinServerVerExecFilter {
		w.Int(f.ClientID).String(f.AcctCode).String(f.Time).String(f.Symbol)
		codec.WriteSymbol(w, models.SecurityTypes, f.SecType)
		w.String(f.Exchange).String(f.Side)
	}
}

func decodeExecutions(r *codec.Reader, sv int) Request {
	q := &ExecutionsRequest{}
	if sv >= MinServerVerExecutionDataChain {
		q.RequestID = r.Int()
	}
	if sv >= MinServerVerExecFilter {
		f := &q.Filter
		f.ClientID = r.Int()
		f.AcctCode = r.String()
		f.Time = r.String()
		f.Symbol = r.String()
		f.SecType = codec.ReadSymbol(r, models.SecurityTypes)
		f.Exchange = r.String()
		f.Side = r.String()
	}
	return q
}

// -----------------------------------------------------------------------------
// Contract details
// -----------------------------------------------------------------------------

type ContractDetailsRequest struct {
	RequestID int
	Contract  models.MContract
}

func (*ContractDetailsRequest) Tag() OutgoingMessage { return ReqContractData }

func (q *ContractDetailsRequest) Check(sv int) error {
	if err := need("contract details", MinServerVerContractDetails, sv); err != nil {
		return err
	}
	if q.Contract.SecIDType != models.SecIDNone || q.Contract.SecID != "" {
		return need("security id type", MinServerVerSecIDType, sv)
	}
	return nil
}

func (q *ContractDetailsRequest) encode(w *codec.Writer, sv int) {
	c := &q.Contract
	w.Int(5)
	if sv >= MinServerVerContractDataChain {
		w.Int(q.RequestID)
	}
	if sv >= MinServerVerContractConID {
		w.Int(c.ConID)
	}
	writeContractCore(w, c)
	if sv >= MinServerVerMultiplier {
		w.String(c.Multiplier)
	}
	w.String(c.Exchange).String(c.Currency).String(c.LocalSymbol)
	if sv >= MinServerVerIncludeExpired {
		w.Bool(c.IncludeExpired)
	}
	if sv >= MinServerVerSecIDType {
		codec.WriteSymbol(w, models.SecurityIDTypes, c.SecIDType)
		w.String(c.SecID)
	}
}

func decodeContractDetails(r *codec.Reader, sv int) Request {
	q := &ContractDetailsRequest{}
	c := &q.Contract
	if sv >= MinServerVerContractDataChain {
		q.RequestID = r.Int()
	}
	if sv >= MinServerVerContractConID {
		c.ConID = r.Int()
	}
	readContractCore(r, c)
	if sv >= MinServerVerMultiplier {
		c.Multiplier = r.String()
	}
	c.Exchange = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	if sv >= MinServerVerIncludeExpired {
		c.IncludeExpired = r.Bool()
	}
	if sv >= MinServerVerSecIDType {
		c.SecIDType = codec.ReadSymbol(r, models.SecurityIDTypes)
		c.SecID = r.String()
	}
	return q
}

// -----------------------------------------------------------------------------
// Market depth
// -----------------------------------------------------------------------------

type MktDepthRequest struct {
	TickerID int
	Contract models.MContract
	NumRows  int
}

func (*MktDepthRequest) Tag() OutgoingMessage { return ReqMktDepth }

func (*MktDepthRequest) Check(sv int) error {
	return need("market depth", MinServerVerMktDepth, sv)
}

func (q *MktDepthRequest) encode(w *codec.Writer, sv int) {
	c := &q.Contract
	w.Int(3).Int(q.TickerID)
	writeContractCore(w, c)
	if sv >= MinServerVerMultiplier {
		w.String(c.Multiplier)
	}
	w.String(c.Exchange).String(c.Currency).String(c.LocalSymbol)
	if sv >= MinServerVerMktDepthRows {
		w.Int(q.NumRows)
	}
}

func decodeMktDepth(r *codec.Reader, sv int) Request {
	q := &MktDepthRequest{TickerID: r.Int()}
	c := &q.Contract
	readContractCore(r, c)
	if sv >= MinServerVerMultiplier {
		c.Multiplier = r.String()
	}
	c.Exchange = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	if sv >= MinServerVerMktDepthRows {
		q.NumRows = r.Int()
	}
	return q
}

type CancelMktDepthRequest struct {
	TickerID int
}

func (*CancelMktDepthRequest) Tag() OutgoingMessage { return CancelMktDepth }

func (*CancelMktDepthRequest) Check(sv int) error {
	return need("cancel market depth", MinServerVerMktDepth, sv)
}

func (q *CancelMktDepthRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.TickerID) }

// -----------------------------------------------------------------------------
// News, log level, accounts, FA
// -----------------------------------------------------------------------------

type NewsBulletinsRequest struct {
	AllMessages bool
}

func (*NewsBulletinsRequest) Tag() OutgoingMessage            { return ReqNewsBulletins }
func (*NewsBulletinsRequest) Check(int) error                 { return nil }
func (q *NewsBulletinsRequest) encode(w *codec.Writer, _ int) { w.Int(1).Bool(q.AllMessages) }

type CancelNewsBulletinsRequest struct{}

func (*CancelNewsBulletinsRequest) Tag() OutgoingMessage          { return CancelNewsBulletins }
func (*CancelNewsBulletinsRequest) Check(int) error               { return nil }
func (*CancelNewsBulletinsRequest) encode(w *codec.Writer, _ int) { w.Int(1) }

type ServerLogLevelRequest struct {
	Level models.LogLevel
}

func (*ServerLogLevelRequest) Tag() OutgoingMessage { return SetServerLogLevel }
func (*ServerLogLevelRequest) Check(int) error      { return nil }

func (q *ServerLogLevelRequest) encode(w *codec.Writer, _ int) {
	w.Int(1)
	codec.WriteSymbol(w, models.LogLevels, q.Level)
}

func decodeServerLogLevel(r *codec.Reader, _ int) Request {
	return &ServerLogLevelRequest{Level: codec.ReadSymbol(r, models.LogLevels)}
}

type ManagedAccountsRequest struct{}

func (*ManagedAccountsRequest) Tag() OutgoingMessage          { return ReqManagedAccts }
func (*ManagedAccountsRequest) Check(int) error               { return nil }
func (*ManagedAccountsRequest) encode(w *codec.Writer, _ int) { w.Int(1) }

type FARequest struct {
	DataType models.FADataType
}

func (*FARequest) Tag() OutgoingMessage { return ReqFA }

func (*FARequest) Check(sv int) error {
	return need("financial advisor configuration", MinServerVerFAFields, sv)
}

func (q *FARequest) encode(w *codec.Writer, _ int) {
	w.Int(1)
	codec.WriteSymbol(w, models.FADataTypes, q.DataType)
}

func decodeFA(r *codec.Reader, _ int) Request {
	return &FARequest{DataType: codec.ReadSymbol(r, models.FADataTypes)}
}

type ReplaceFARequest struct {
	DataType models.FADataType
	XML      string
}

func (*ReplaceFARequest) Tag() OutgoingMessage { return ReplaceFA }

func (*ReplaceFARequest) Check(sv int) error {
	return need("financial advisor configuration", MinServerVerFAFields, sv)
}

func (q *ReplaceFARequest) encode(w *codec.Writer, _ int) {
	w.Int(1)
	codec.WriteSymbol(w, models.FADataTypes, q.DataType)
	w.String(q.XML)
}

func decodeReplaceFA(r *codec.Reader, _ int) Request {
	q := &ReplaceFARequest{DataType: codec.ReadSymbol(r, models.FADataTypes)}
	q.XML = r.String()
	return q
}

// -----------------------------------------------------------------------------
// Historical data
// -----------------------------------------------------------------------------

type HistoricalDataRequest struct {
	TickerID    int
	Contract    models.MContract
	EndDateTime string
	BarSize     models.BarSize
	Duration    string
	UseRTH      bool
	WhatToShow  models.WhatToShow
	FormatDate  int
}

func (*HistoricalDataRequest) Tag() OutgoingMessage { return ReqHistoricalData }

func (*HistoricalDataRequest) Check(sv int) error {
	return need("historical data", MinServerVerHistoricalData, sv)
}

func (q *HistoricalDataRequest) encode(w *codec.Writer, sv int) {
	c := &q.Contract
	w.Int(4).Int(q.TickerID)
	writeContractCore(w, c)
	w.String(c.Multiplier).String(c.Exchange).String(c.PrimaryExch).String(c.Currency).String(c.LocalSymbol)
	if sv >= MinServerVerIncludeExpired {
		w.Bool(c.IncludeExpired)
	}
	if sv >= MinServerVerHistoricalEndDate {
		w.String(q.EndDateTime)
		codec.WriteSymbol(w, models.BarSizes, q.BarSize)
	}
	w.String(q.Duration).Bool(q.UseRTH)
	codec.WriteSymbol(w, models.WhatToShows, q.WhatToShow)
	if sv > MinServerVerHistoricalData {
		w.Int(q.FormatDate)
	}
	if c.SecType == models.SecTypeBag {
		writeShortLegs(w, c.ComboLegs)
	}
}

func decodeHistoricalData(r *codec.Reader, sv int) Request {
	q := &HistoricalDataRequest{TickerID: r.Int()}
	c := &q.Contract
	readContractCore(r, c)
	c.Multiplier = r.String()
	c.Exchange = r.String()
	c.PrimaryExch = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	if sv >= MinServerVerIncludeExpired {
		c.IncludeExpired = r.Bool()
	}
	if sv >= MinServerVerHistoricalEndDate {
		q.EndDateTime = r.String()
		q.BarSize = codec.ReadSymbol(r, models.BarSizes)
	}
	q.Duration = r.String()
	q.UseRTH = r.Bool()
	q.WhatToShow = codec.ReadSymbol(r, models.WhatToShows)
	if sv > MinServerVerHistoricalData {
		q.FormatDate = r.Int()
	}
	if c.SecType == models.SecTypeBag {
		c.ComboLegs = readShortLegs(r)
	}
	return q
}

type CancelHistoricalDataRequest struct {
	TickerID int
}

func (*CancelHistoricalDataRequest) Tag() OutgoingMessage { return CancelHistoricalData }

func (*CancelHistoricalDataRequest) Check(sv int) error {
	return need("cancel historical data", MinServerVerCancelHistorical, sv)
}

func (q *CancelHistoricalDataRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.TickerID) }

// -----------------------------------------------------------------------------
// Options exercise
// -----------------------------------------------------------------------------

type ExerciseOptionsRequest struct {
	TickerID int
	Contract models.MContract
	Action   models.ExerciseAction
	Quantity int
	Account  string
	Override bool
}

func (*ExerciseOptionsRequest) Tag() OutgoingMessage { return ExerciseOptions }

func (*ExerciseOptionsRequest) Check(sv int) error {
	return need("exercise options", MinServerVerExerciseOptions, sv)
}

func (q *ExerciseOptionsRequest) encode(w *codec.Writer, _ int) {
	c := &q.Contract
	w.Int(1).Int(q.TickerID)
	writeContractCore(w, c)
	w.String(c.Multiplier).String(c.Exchange).String(c.Currency).String(c.LocalSymbol)
	codec.WriteSymbol(w, models.ExerciseActions, q.Action)
	w.Int(q.Quantity).String(q.Account).Bool(q.Override)
}

func decodeExerciseOptions(r *codec.Reader, _ int) Request {
	q := &ExerciseOptionsRequest{TickerID: r.Int()}
	c := &q.Contract
	readContractCore(r, c)
	c.Multiplier = r.String()
	c.Exchange = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	q.Action = codec.ReadSymbol(r, models.ExerciseActions)
	q.Quantity = r.Int()
	q.Account = r.String()
	q.Override = r.Bool()
	return q
}

// -----------------------------------------------------------------------------
// Scanner
// -----------------------------------------------------------------------------

type ScannerSubscriptionRequest struct {
	TickerID     int
	Subscription models.MScannerSubscription
}

func (*ScannerSubscriptionRequest) Tag() OutgoingMessage { return ReqScannerSubscription }

func (*ScannerSubscriptionRequest) Check(sv int) error {
	return need("scanner", MinServerVerScanner, sv)
}

func (q *ScannerSubscriptionRequest) encode(w *codec.Writer, sv int) {
	s := &q.Subscription
	w.Int(3).Int(q.TickerID).IntMax(s.NumberOfRows)
	w.String(s.Instrument).String(s.LocationCode).String(s.ScanCode)
	w.FloatMax(s.AbovePrice).FloatMax(s.BelowPrice).IntMax(s.AboveVolume)
	w.FloatMax(s.MarketCapAbove).FloatMax(s.MarketCapBelow)
	w.String(s.MoodyRatingAbove).String(s.MoodyRatingBelow).String(s.SPRatingAbove).String(s.SPRatingBelow)
	w.String(s.MaturityDateAbove).String(s.MaturityDateBelow)
	w.FloatMax(s.CouponRateAbove).FloatMax(s.CouponRateBelow).String(s.ExcludeConvertible)
	if sv >= MinServerVerScannerVolume {
		w.IntMax(s.AverageOptionVolumeAbove).String(s.ScannerSettingPairs)
	}
	if sv >= MinServerVerScannerStockType {
		w.String(s.StockTypeFilter)
	}
}

func decodeScannerSubscription(r *codec.Reader, sv int) Request {
	q := &ScannerSubscriptionRequest{TickerID: r.Int(), Subscription: NewScannerSubscription()}
	s := &q.Subscription
	s.NumberOfRows = r.IntMax()
	s.Instrument = r.String()
	s.LocationCode = r.String()
	s.ScanCode = r.String()
	s.AbovePrice = r.FloatMax()
	s.BelowPrice = r.FloatMax()
	s.AboveVolume = r.IntMax()
	s.MarketCapAbove = r.FloatMax()
	s.MarketCapBelow = r.FloatMax()
	s.MoodyRatingAbove = r.String()
	s.MoodyRatingBelow = r.String()
	s.SPRatingAbove = r.String()
	s.SPRatingBelow = r.String()
	s.MaturityDateAbove = r.String()
	s.MaturityDateBelow = r.String()
	s.CouponRateAbove = r.FloatMax()
	s.CouponRateBelow = r.FloatMax()
	s.ExcludeConvertible = r.String()
	if sv >= MinServerVerScannerVolume {
		s.AverageOptionVolumeAbove = r.IntMax()
		s.ScannerSettingPairs = r.String()
	}
	if sv >= MinServerVerScannerStockType {
		s.StockTypeFilter = r.String()
	}
	return q
}

// NewScannerSubscription returns a subscription with every numeric filter
// unset.
func NewScannerSubscription() models.MScannerSubscription {
	return models.MScannerSubscription{
		NumberOfRows:             -1,
		AbovePrice:               codec.DoubleMax,
		BelowPrice:               codec.DoubleMax,
		AboveVolume:              codec.IntMax,
		MarketCapAbove:           codec.DoubleMax,
		MarketCapBelow:           codec.DoubleMax,
		CouponRateAbove:          codec.DoubleMax,
		CouponRateBelow:          codec.DoubleMax,
		AverageOptionVolumeAbove: codec.IntMax,
	}
}

type CancelScannerRequest struct {
	TickerID int
}

func (*CancelScannerRequest) Tag() OutgoingMessage { return CancelScanner }

func (*CancelScannerRequest) Check(sv int) error {
	return need("scanner", MinServerVerScanner, sv)
}

func (q *CancelScannerRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.TickerID) }

type ScannerParametersRequest struct{}

func (*ScannerParametersRequest) Tag() OutgoingMessage { return ReqScannerParameters }

func (*ScannerParametersRequest) Check(sv int) error {
	return need("scanner", MinServerVerScanner, sv)
}

func (*ScannerParametersRequest) encode(w *codec.Writer, _ int) { w.Int(1) }

// -----------------------------------------------------------------------------
// Current time, real-time bars, fundamentals
// -----------------------------------------------------------------------------

type CurrentTimeRequest struct{}

func (*CurrentTimeRequest) Tag() OutgoingMessage { return ReqCurrentTime }

func (*CurrentTimeRequest) Check(sv int) error {
	return need("current time", MinServerVerCurrentTime, sv)
}

func (*CurrentTimeRequest) encode(w *codec.Writer, _ int) { w.Int(1) }

type RealTimeBarsRequest struct {
	TickerID   int
	Contract   models.MContract
	BarSize    int
	WhatToShow models.WhatToShow
	UseRTH     bool
}

func (*RealTimeBarsRequest) Tag() OutgoingMessage { return ReqRealTimeBars }

func (*RealTimeBarsRequest) Check(sv int) error {
	return need("real-time bars", MinServerVerRealTimeBars, sv)
}

func (q *RealTimeBarsRequest) encode(w *codec.Writer, _ int) {
	c := &q.Contract
	w.Int(1).Int(q.TickerID)
	writeContractCore(w, c)
	w.String(c.Multiplier).String(c.Exchange).String(c.PrimaryExch).String(c.Currency).String(c.LocalSymbol)
	w.Int(q.BarSize)
	codec.WriteSymbol(w, models.WhatToShows, q.WhatToShow)
	w.Bool(q.UseRTH)
}

func decodeRealTimeBars(r *codec.Reader, _ int) Request {
	q := &RealTimeBarsRequest{TickerID: r.Int()}
	c := &q.Contract
	readContractCore(r, c)
	c.Multiplier = r.String()
	c.Exchange = r.String()
	c.PrimaryExch = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	q.BarSize = r.Int()
	q.WhatToShow = codec.ReadSymbol(r, models.WhatToShows)
	q.UseRTH = r.Bool()
	return q
}

type CancelRealTimeBarsRequest struct {
	TickerID int
}

func (*CancelRealTimeBarsRequest) Tag() OutgoingMessage { return CancelRealTimeBars }

func (*CancelRealTimeBarsRequest) Check(sv int) error {
	return need("real-time bars", MinServerVerRealTimeBars, sv)
}

func (q *CancelRealTimeBarsRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.TickerID) }

type FundamentalDataRequest struct {
	RequestID  int
	Contract   models.MContract
	ReportType string
}

func (*FundamentalDataRequest) Tag() OutgoingMessage { return ReqFundamentalData }

func (*FundamentalDataRequest) Check(sv int) error {
	return need("fundamental data", MinServerVerFundamentalData, sv)
}

func (q *FundamentalDataRequest) encode(w *codec.Writer, _ int) {
	c := &q.Contract
	w.Int(1).Int(q.RequestID).String(c.Symbol)
	codec.WriteSymbol(w, models.SecurityTypes, c.SecType)
	w.String(c.Exchange).String(c.PrimaryExch).String(c.Currency).String(c.LocalSymbol)
	w.String(q.ReportType)
}

func decodeFundamentalData(r *codec.Reader, _ int) Request {
	q := &FundamentalDataRequest{RequestID: r.Int()}
	c := &q.Contract
	c.Symbol = r.String()
	c.SecType = codec.ReadSymbol(r, models.SecurityTypes)
	c.Exchange = r.String()
	c.PrimaryExch = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	q.ReportType = r.String()
	return q
}

type CancelFundamentalDataRequest struct {
	RequestID int
}

func (*CancelFundamentalDataRequest) Tag() OutgoingMessage { return CancelFundamentalData }

func (*CancelFundamentalDataRequest) Check(sv int) error {
	return need("fundamental data", MinServerVerFundamentalData, sv)
}

func (q *CancelFundamentalDataRequest) encode(w *codec.Writer, _ int) { w.Int(1).Int(q.RequestID) }
