package protocol

import (
	"fmt"
	"io"
	"math"
	"strings"

	"twsclient/src/codec"
	"twsclient/src/models"
)

// Message is one inbound peer message. Version is the message version read
// from, or written to, the wire; zero means the newest version known here.
type Message interface {
	Tag() IncomingMessage
	encode(w *codec.Writer, serverVersion int)
}

// EncodeMessage appends m to w. The client never sends these; the loopback
// peer and the tests do.
func EncodeMessage(w *codec.Writer, serverVersion int, m Message) error {
	codec.WriteSymbol(w, IncomingMessages, m.Tag())
	m.encode(w, serverVersion)
	return w.Err()
}

// DecodeMessage reads one peer message. A stream that ends exactly at a
// message boundary yields io.EOF unwrapped; anything else that goes wrong,
// an unknown tag included, is a decode error.
func DecodeMessage(r *codec.Reader, serverVersion int) (Message, error) {
	tag := codec.ReadSymbol(r, IncomingMessages)
	if err := r.Err(); err != nil {
		return nil, err
	}
	dec, ok := messageDecoders[tag]
	if !ok {
		return nil, fmt.Errorf("no decoder for %v", tag)
	}
	version := r.Int()
	m := dec(r, version, serverVersion)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %v: %w", tag, midMessage(err))
	}
	return m, nil
}

type messageDecoder func(r *codec.Reader, version, serverVersion int) Message

var messageDecoders = map[IncomingMessage]messageDecoder{
	TickPrice:              decodeTickPrice,
	TickSize:               decodeTickSize,
	TickOptionComputation:  decodeTickOptionComputation,
	TickGeneric:            decodeTickGeneric,
	TickString:             decodeTickString,
	TickEFP:                decodeTickEFP,
	TickSnapshotEnd:        decodeTickSnapshotEnd,
	OrderStatus:            decodeOrderStatus,
	ErrMsg:                 decodeError,
	OpenOrder:              decodeOpenOrder,
	OpenOrderEnd:           decodeOpenOrderEnd,
	AcctValue:              decodeAccountValue,
	PortfolioValue:         decodePortfolioValue,
	AcctUpdateTime:         decodeAccountTime,
	AcctDownloadEnd:        decodeAccountDownloadEnd,
	NextValidID:            decodeNextValidID,
	ContractData:           decodeContractData,
	BondContractData:       decodeBondContractData,
	ContractDataEnd:        decodeContractDataEnd,
	ExecutionData:          decodeExecutionData,
	ExecutionDataEnd:       decodeExecutionDataEnd,
	MarketDepth:            decodeMarketDepth,
	MarketDepthL2:          decodeMarketDepthL2,
	NewsBulletins:          decodeNewsBulletin,
	ManagedAccts:           decodeManagedAccounts,
	ReceiveFA:              decodeReceiveFA,
	HistoricalData:         decodeHistoricalDataMsg,
	ScannerParameters:      decodeScannerParameters,
	ScannerData:            decodeScannerData,
	CurrentTime:            decodeCurrentTime,
	RealTimeBars:           decodeRealTimeBar,
	FundamentalData:        decodeFundamentalDataMsg,
	DeltaNeutralValidation: decodeDeltaNeutralValidation,
}

// midMessage turns a clean end of stream into ErrUnexpectedEOF once a tag
// has been consumed.
func midMessage(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func versionOr(v, newest int) int {
	if v <= 0 {
		return newest
	}
	return v
}

// -----------------------------------------------------------------------------
// Ticks
// -----------------------------------------------------------------------------

type TickPriceMsg struct {
	Version int
	models.MTickPrice
}

func (*TickPriceMsg) Tag() IncomingMessage { return TickPrice }

func (m *TickPriceMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 6)
	w.Int(v).Int(m.RequestID)
	codec.WriteSymbol(w, models.TickTypes, m.Field)
	w.Float(m.Price)
	if v >= 2 {
		w.Int(m.Size)
	}
	if v >= 3 {
		w.Bool(m.CanAutoExecute)
	}
}

func decodeTickPrice(r *codec.Reader, v, _ int) Message {
	m := &TickPriceMsg{Version: v}
	m.RequestID = r.Int()
	m.Field = codec.ReadSymbol(r, models.TickTypes)
	m.Price = r.Float()
	if v >= 2 {
		m.Size = r.Int()
	}
	if v >= 3 {
		m.CanAutoExecute = r.Bool()
	}
	return m
}

// PairedSize returns the size tick the peer implies alongside a price tick,
// if any. Version 1 price ticks carry no size.
func (m *TickPriceMsg) PairedSize() (models.MTickSize, bool) {
	if m.Version < 2 {
		return models.MTickSize{}, false
	}
	var field models.TickType
	switch m.Field {
	case models.TickBid:
		field = models.TickBidSize
	case models.TickAsk:
		field = models.TickAskSize
	case models.TickLast:
		field = models.TickLastSize
	default:
		return models.MTickSize{}, false
	}
	return models.MTickSize{RequestID: m.RequestID, Field: field, Size: m.Size}, true
}

// -----------------------------------------------------------------------------

type TickSizeMsg struct {
	Version int
	models.MTickSize
}

func (*TickSizeMsg) Tag() IncomingMessage { return TickSize }

func (m *TickSizeMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 6)).Int(m.RequestID)
	codec.WriteSymbol(w, models.TickTypes, m.Field)
	w.Int(m.Size)
}

func decodeTickSize(r *codec.Reader, v, _ int) Message {
	m := &TickSizeMsg{Version: v}
	m.RequestID = r.Int()
	m.Field = codec.ReadSymbol(r, models.TickTypes)
	m.Size = r.Int()
	return m
}

// -----------------------------------------------------------------------------

type TickOptionComputationMsg struct {
	Version int
	models.MTickOptionComputation
}

func (*TickOptionComputationMsg) Tag() IncomingMessage { return TickOptionComputation }

func (m *TickOptionComputationMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 6)
	w.Int(v).Int(m.RequestID)
	codec.WriteSymbol(w, models.TickTypes, m.Field)
	w.FloatMax(m.ImpliedVol).FloatMax(m.Delta)
	if v >= 6 || m.Field == models.TickModelOption {
		w.FloatMax(m.OptPrice).FloatMax(m.PvDividend)
	}
	if v >= 6 {
		w.FloatMax(m.Gamma).FloatMax(m.Vega).FloatMax(m.Theta).FloatMax(m.UndPrice)
	}
}

func decodeTickOptionComputation(r *codec.Reader, v, _ int) Message {
	m := &TickOptionComputationMsg{Version: v}
	m.RequestID = r.Int()
	m.Field = codec.ReadSymbol(r, models.TickTypes)
	m.ImpliedVol = nonNegative(r.FloatMax())
	m.Delta = unitRange(r.FloatMax())
	m.OptPrice, m.PvDividend = codec.DoubleMax, codec.DoubleMax
	m.Gamma, m.Vega, m.Theta, m.UndPrice = codec.DoubleMax, codec.DoubleMax, codec.DoubleMax, codec.DoubleMax
	if v >= 6 || m.Field == models.TickModelOption {
		m.OptPrice = nonNegative(r.FloatMax())
		m.PvDividend = nonNegative(r.FloatMax())
	}
	if v >= 6 {
		m.Gamma = unitRange(r.FloatMax())
		m.Vega = unitRange(r.FloatMax())
		m.Theta = unitRange(r.FloatMax())
		m.UndPrice = nonNegative(r.FloatMax())
	}
	return m
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return codec.DoubleMax
	}
	return x
}

func unitRange(x float64) float64 {
	if x != codec.DoubleMax && math.Abs(x) > 1 {
		return codec.DoubleMax
	}
	return x
}

// -----------------------------------------------------------------------------

type TickGenericMsg struct {
	Version int
	models.MTickGeneric
}

func (*TickGenericMsg) Tag() IncomingMessage { return TickGeneric }

func (m *TickGenericMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 6)).Int(m.RequestID)
	codec.WriteSymbol(w, models.TickTypes, m.Field)
	w.Float(m.Value)
}

func decodeTickGeneric(r *codec.Reader, v, _ int) Message {
	m := &TickGenericMsg{Version: v}
	m.RequestID = r.Int()
	m.Field = codec.ReadSymbol(r, models.TickTypes)
	m.Value = r.Float()
	return m
}

type TickStringMsg struct {
	Version int
	models.MTickString
}

func (*TickStringMsg) Tag() IncomingMessage { return TickString }

func (m *TickStringMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 6)).Int(m.RequestID)
	codec.WriteSymbol(w, models.TickTypes, m.Field)
	w.String(m.Value)
}

func decodeTickString(r *codec.Reader, v, _ int) Message {
	m := &TickStringMsg{Version: v}
	m.RequestID = r.Int()
	m.Field = codec.ReadSymbol(r, models.TickTypes)
	m.Value = r.String()
	return m
}

type TickEFPMsg struct {
	Version int
	models.MTickEFP
}

func (*TickEFPMsg) Tag() IncomingMessage { return TickEFP }

func (m *TickEFPMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 6)).Int(m.RequestID)
	codec.WriteSymbol(w, models.TickTypes, m.Field)
	w.Float(m.BasisPoints).String(m.FormattedBasisPoints).Float(m.ImpliedFuture).Int(m.HoldDays)
	w.String(m.FutureExpiry).Float(m.DividendImpact).Float(m.DividendsToExpiry)
}

func decodeTickEFP(r *codec.Reader, v, _ int) Message {
	m := &TickEFPMsg{Version: v}
	m.RequestID = r.Int()
	m.Field = codec.ReadSymbol(r, models.TickTypes)
	m.BasisPoints = r.Float()
	m.FormattedBasisPoints = r.String()
	m.ImpliedFuture = r.Float()
	m.HoldDays = r.Int()
	m.FutureExpiry = r.String()
	m.DividendImpact = r.Float()
	m.DividendsToExpiry = r.Float()
	return m
}

type TickSnapshotEndMsg struct {
	Version   int
	RequestID int
}

func (*TickSnapshotEndMsg) Tag() IncomingMessage { return TickSnapshotEnd }

func (m *TickSnapshotEndMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID)
}

func decodeTickSnapshotEnd(r *codec.Reader, v, _ int) Message {
	return &TickSnapshotEndMsg{Version: v, RequestID: r.Int()}
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

type OrderStatusMsg struct {
	Version int
	models.MOrderStatus
}

func (*OrderStatusMsg) Tag() IncomingMessage { return OrderStatus }

func (m *OrderStatusMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 6)
	w.Int(v).Int(m.OrderID).String(string(m.Status)).Int(m.Filled).Int(m.Remaining).Float(m.AvgFillPrice)
	if v >= 2 {
		w.Int(m.PermID)
	}
	if v >= 3 {
		w.Int(m.ParentID)
	}
	if v >= 4 {
		w.Float(m.LastFillPrice)
	}
	if v >= 5 {
		w.Int(m.ClientID)
	}
	if v >= 6 {
		w.String(m.WhyHeld)
	}
}

func decodeOrderStatus(r *codec.Reader, v, _ int) Message {
	m := &OrderStatusMsg{Version: v}
	m.OrderID = r.Int()
	m.Status = models.OrderStatus(r.String())
	m.Filled = r.Int()
	m.Remaining = r.Int()
	m.AvgFillPrice = r.Float()
	if v >= 2 {
		m.PermID = r.Int()
	}
	if v >= 3 {
		m.ParentID = r.Int()
	}
	if v >= 4 {
		m.LastFillPrice = r.Float()
	}
	if v >= 5 {
		m.ClientID = r.Int()
	}
	if v >= 6 {
		m.WhyHeld = r.String()
	}
	return m
}

// -----------------------------------------------------------------------------

// ErrorMsg is ERR_MSG. Version 1 only carried free text.
type ErrorMsg struct {
	Version   int
	RequestID int
	Code      int
	Message   string
}

func (*ErrorMsg) Tag() IncomingMessage { return ErrMsg }

func (m *ErrorMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 2)
	w.Int(v)
	if v < 2 {
		w.String(m.Message)
		return
	}
	w.Int(m.RequestID).Int(m.Code).String(m.Message)
}

func decodeError(r *codec.Reader, v, _ int) Message {
	m := &ErrorMsg{Version: v, RequestID: -1}
	if v < 2 {
		m.Message = r.String()
		return m
	}
	m.RequestID = r.Int()
	m.Code = r.Int()
	m.Message = r.String()
	return m
}

// -----------------------------------------------------------------------------

type OpenOrderMsg struct {
	Version int
	models.MOpenOrder
}

func (*OpenOrderMsg) Tag() IncomingMessage { return OpenOrder }

func (m *OpenOrderMsg) encode(w *codec.Writer, sv int) {
	v := versionOr(m.Version, 22)
	c, o, st := &m.Contract, &m.Order, &m.State
	w.Int(v).Int(m.OrderID)

	if v >= 17 {
		w.Int(c.ConID)
	}
	writeContractCore(w, c)
	w.String(c.Exchange).String(c.Currency)
	if v >= 2 {
		w.String(c.LocalSymbol)
	}

	codec.WriteSymbol(w, models.Actions, o.Action)
	w.Int(o.TotalQuantity)
	codec.WriteSymbol(w, models.OrderTypes, o.OrderType)
	w.Float(o.LmtPrice).Float(o.AuxPrice)
	codec.WriteSymbol(w, models.TimesInForce, o.Tif)
	w.String(o.OcaGroup).String(o.Account)
	codec.WriteSymbol(w, models.OpenCloses, o.OpenClose)
	codec.WriteSymbol(w, models.OrderOrigins, o.Origin)
	w.String(o.OrderRef)
	if v >= 3 {
		w.Int(o.ClientID)
	}
	if v >= 4 {
		w.Int(o.PermID)
		if v < 18 {
			w.Bool(false)
		} else {
			w.Bool(o.OutsideRth)
		}
		w.Bool(o.Hidden).Float(o.DiscretionaryAmt)
	}
	if v >= 5 {
		w.String(o.GoodAfterTime)
	}
	if v >= 6 {
		w.String("")
	}
	if v >= 7 {
		w.String(o.FAGroup).String(o.FAMethod).String(o.FAPercentage).String(o.FAProfile)
	}
	if v >= 8 {
		w.String(o.GoodTillDate)
	}
	if v >= 9 {
		codec.WriteSymbol(w, models.Rule80As, o.Rule80A)
		w.FloatMax(o.PercentOffset).String(o.SettlingFirm).Int(o.ShortSaleSlot).String(o.DesignatedLocation)
		w.IntMax(o.AuctionStrategy).FloatMax(o.StartingPrice).FloatMax(o.StockRefPrice).FloatMax(o.Delta)
		w.FloatMax(o.StockRangeLower).FloatMax(o.StockRangeUpper).Int(o.DisplaySize)
		if v < 18 {
			w.Bool(false)
		}
		w.Bool(o.BlockOrder).Bool(o.SweepToFill).Bool(o.AllOrNone).IntMax(o.MinQty)
		codec.WriteSymbol(w, models.OcaTypes, o.OcaType)
		w.Bool(o.ETradeOnly).Bool(o.FirmQuoteOnly).FloatMax(o.NbboPriceCap)
	}
	if v >= 10 {
		w.Int(o.ParentID)
		codec.WriteSymbol(w, models.TriggerMethods, o.TriggerMethod)
	}
	if v >= 11 {
		w.FloatMax(o.Volatility).IntMax(o.VolatilityType)
		if v == 11 {
			w.Bool(o.DeltaNeutralOrderType != models.OrderTypeNone)
		} else {
			codec.WriteSymbol(w, models.OrderTypes, o.DeltaNeutralOrderType)
			w.FloatMax(o.DeltaNeutralAuxPrice)
		}
		w.Bool(o.ContinuousUpdate)
		if sv == volatilityWatermarkVersion {
			w.FloatMax(o.StockRangeLower).FloatMax(o.StockRangeUpper)
		}
		w.IntMax(o.ReferencePriceType)
	}
	if v >= 13 {
		w.FloatMax(o.TrailStopPrice)
	}
	if v >= 14 {
		w.FloatMax(o.BasisPoints).IntMax(o.BasisPointsType).String(c.ComboLegsDescrip)
	}
	if v >= 15 {
		if v >= 20 {
			w.IntMax(o.ScaleInitLevelSize).IntMax(o.ScaleSubsLevelSize)
		} else {
			w.IntMax(codec.IntMax).IntMax(o.ScaleInitLevelSize)
		}
		w.FloatMax(o.ScalePriceIncrement)
	}
	if v >= 19 {
		w.String(o.ClearingAccount).String(o.ClearingIntent)
	}
	if v >= 22 {
		w.Bool(o.NotHeld)
	}
	if v >= 20 {
		writeUnderComp(w, c.UnderComp)
	}
	if v >= 21 {
		w.String(o.AlgoStrategy)
		if o.AlgoStrategy != "" {
			w.Int(len(o.AlgoParams))
			for _, p := range o.AlgoParams {
				w.String(p.Tag).String(p.Value)
			}
		}
	}
	if v >= 16 {
		w.Bool(o.WhatIf).String(string(st.Status)).String(st.InitMargin).String(st.MaintMargin)
		w.String(st.EquityWithLoan).FloatMax(st.Commission).FloatMax(st.MinCommission).FloatMax(st.MaxCommission)
		w.String(st.CommissionCurrency).String(st.WarningText)
	}
}

func decodeOpenOrder(r *codec.Reader, v, sv int) Message {
	m := &OpenOrderMsg{Version: v}
	m.Order = models.NewOrder()
	c, o, st := &m.Contract, &m.Order, &m.State

	m.OrderID = r.Int()
	o.OrderID = m.OrderID
	if v >= 17 {
		c.ConID = r.Int()
	}
	readContractCore(r, c)
	c.Exchange = r.String()
	c.Currency = r.String()
	if v >= 2 {
		c.LocalSymbol = r.String()
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
	if v >= 3 {
		o.ClientID = r.Int()
	}
	if v >= 4 {
		o.PermID = r.Int()
		if v < 18 {
			_ = r.Bool()
		} else {
			o.OutsideRth = r.Bool()
		}
		o.Hidden = r.Bool()
		o.DiscretionaryAmt = r.Float()
	}
	if v >= 5 {
		o.GoodAfterTime = r.String()
	}
	if v >= 6 {
		_ = r.String()
	}
	if v >= 7 {
		o.FAGroup = r.String()
		o.FAMethod = r.String()
		o.FAPercentage = r.String()
		o.FAProfile = r.String()
	}
	if v >= 8 {
		o.GoodTillDate = r.String()
	}
	if v >= 9 {
		o.Rule80A = codec.ReadSymbol(r, models.Rule80As)
		o.PercentOffset = r.FloatMax()
		o.SettlingFirm = r.String()
		o.ShortSaleSlot = r.Int()
		o.DesignatedLocation = r.String()
		o.AuctionStrategy = r.IntMax()
		o.StartingPrice = r.FloatMax()
		o.StockRefPrice = r.FloatMax()
		o.Delta = r.FloatMax()
		o.StockRangeLower = r.FloatMax()
		o.StockRangeUpper = r.FloatMax()
		o.DisplaySize = r.Int()
		if v < 18 {
			_ = r.Bool()
		}
		o.BlockOrder = r.Bool()
		o.SweepToFill = r.Bool()
		o.AllOrNone = r.Bool()
		o.MinQty = r.IntMax()
		o.OcaType = codec.ReadSymbol(r, models.OcaTypes)
		o.ETradeOnly = r.Bool()
		o.FirmQuoteOnly = r.Bool()
		o.NbboPriceCap = r.FloatMax()
	}
	if v >= 10 {
		o.ParentID = r.Int()
		o.TriggerMethod = codec.ReadSymbol(r, models.TriggerMethods)
	}
	if v >= 11 {
		o.Volatility = r.FloatMax()
		o.VolatilityType = r.IntMax()
		if v == 11 {
			if r.Bool() {
				o.DeltaNeutralOrderType = models.OrderTypeMarket
			}
		} else {
			o.DeltaNeutralOrderType = codec.ReadSymbol(r, models.OrderTypes)
			o.DeltaNeutralAuxPrice = r.FloatMax()
		}
		o.ContinuousUpdate = r.Bool()
		if sv == volatilityWatermarkVersion {
			o.StockRangeLower = r.FloatMax()
			o.StockRangeUpper = r.FloatMax()
		}
		o.ReferencePriceType = r.IntMax()
	}
	if v >= 13 {
		o.TrailStopPrice = r.FloatMax()
	}
	if v >= 14 {
		o.BasisPoints = r.FloatMax()
		o.BasisPointsType = r.IntMax()
		c.ComboLegsDescrip = r.String()
	}
	if v >= 15 {
		if v >= 20 {
			o.ScaleInitLevelSize = r.IntMax()
			o.ScaleSubsLevelSize = r.IntMax()
		} else {
			_ = r.IntMax()
			o.ScaleInitLevelSize = r.IntMax()
		}
		o.ScalePriceIncrement = r.FloatMax()
	}
	if v >= 19 {
		o.ClearingAccount = r.String()
		o.ClearingIntent = r.String()
	}
	if v >= 22 {
		o.NotHeld = r.Bool()
	}
	if v >= 20 {
		c.UnderComp = readUnderComp(r)
	}
	if v >= 21 {
		o.AlgoStrategy = r.String()
		if o.AlgoStrategy != "" {
			n := r.Int()
			for i := 0; i < n && r.Err() == nil; i++ {
				o.AlgoParams = append(o.AlgoParams, models.MTagValue{Tag: r.String(), Value: r.String()})
			}
		}
	}
	if v >= 16 {
		o.WhatIf = r.Bool()
		st.Status = models.OrderStatus(r.String())
		st.InitMargin = r.String()
		st.MaintMargin = r.String()
		st.EquityWithLoan = r.String()
		st.Commission = r.FloatMax()
		st.MinCommission = r.FloatMax()
		st.MaxCommission = r.FloatMax()
		st.CommissionCurrency = r.String()
		st.WarningText = r.String()
	}
	return m
}

type OpenOrderEndMsg struct {
	Version int
}

func (*OpenOrderEndMsg) Tag() IncomingMessage { return OpenOrderEnd }

func (m *OpenOrderEndMsg) encode(w *codec.Writer, _ int) { w.Int(versionOr(m.Version, 1)) }

func decodeOpenOrderEnd(_ *codec.Reader, v, _ int) Message { return &OpenOrderEndMsg{Version: v} }

type NextValidIDMsg struct {
	Version int
	OrderID int
}

func (*NextValidIDMsg) Tag() IncomingMessage { return NextValidID }

func (m *NextValidIDMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.OrderID)
}

func decodeNextValidID(r *codec.Reader, v, _ int) Message {
	return &NextValidIDMsg{Version: v, OrderID: r.Int()}
}

// -----------------------------------------------------------------------------
// Account
// -----------------------------------------------------------------------------

type AccountValueMsg struct {
	Version int
	models.MAccountValue
}

func (*AccountValueMsg) Tag() IncomingMessage { return AcctValue }

func (m *AccountValueMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 2)
	w.Int(v).String(m.Key).String(m.Value).String(m.Currency)
	if v >= 2 {
		w.String(m.Account)
	}
}

func decodeAccountValue(r *codec.Reader, v, _ int) Message {
	m := &AccountValueMsg{Version: v}
	m.Key = r.String()
	m.Value = r.String()
	m.Currency = r.String()
	if v >= 2 {
		m.Account = r.String()
	}
	return m
}

type PortfolioValueMsg struct {
	Version int
	models.MPortfolioValue
}

func (*PortfolioValueMsg) Tag() IncomingMessage { return PortfolioValue }

func (m *PortfolioValueMsg) encode(w *codec.Writer, sv int) {
	v := versionOr(m.Version, 7)
	c := &m.Contract
	w.Int(v)
	if v >= 6 {
		w.Int(c.ConID)
	}
	writeContractCore(w, c)
	if v >= 7 {
		w.String(c.Multiplier).String(c.PrimaryExch)
	}
	w.String(c.Currency)
	if v >= 2 {
		w.String(c.LocalSymbol)
	}
	w.Int(m.Position).Float(m.MarketPrice).Float(m.MarketValue)
	if v >= 3 {
		w.Float(m.AverageCost).Float(m.UnrealizedPNL).Float(m.RealizedPNL)
	}
	if v >= 4 {
		w.String(m.Account)
	}
	if v == 6 && sv == 39 {
		w.String(c.PrimaryExch)
	}
}

func decodePortfolioValue(r *codec.Reader, v, sv int) Message {
	m := &PortfolioValueMsg{Version: v}
	c := &m.Contract
	if v >= 6 {
		c.ConID = r.Int()
	}
	readContractCore(r, c)
	if v >= 7 {
		c.Multiplier = r.String()
		c.PrimaryExch = r.String()
	}
	c.Currency = r.String()
	if v >= 2 {
		c.LocalSymbol = r.String()
	}
	m.Position = r.Int()
	m.MarketPrice = r.Float()
	m.MarketValue = r.Float()
	if v >= 3 {
		m.AverageCost = r.Float()
		m.UnrealizedPNL = r.Float()
		m.RealizedPNL = r.Float()
	}
	if v >= 4 {
		m.Account = r.String()
	}
	if v == 6 && sv == 39 {
		c.PrimaryExch = r.String()
	}
	return m
}

type AccountTimeMsg struct {
	Version   int
	Timestamp string
}

func (*AccountTimeMsg) Tag() IncomingMessage { return AcctUpdateTime }

func (m *AccountTimeMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).String(m.Timestamp)
}

func decodeAccountTime(r *codec.Reader, v, _ int) Message {
	return &AccountTimeMsg{Version: v, Timestamp: r.String()}
}

type AccountDownloadEndMsg struct {
	Version int
	Account string
}

func (*AccountDownloadEndMsg) Tag() IncomingMessage { return AcctDownloadEnd }

func (m *AccountDownloadEndMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).String(m.Account)
}

func decodeAccountDownloadEnd(r *codec.Reader, v, _ int) Message {
	return &AccountDownloadEndMsg{Version: v, Account: r.String()}
}

type ManagedAccountsMsg struct {
	Version  int
	Accounts string
}

func (*ManagedAccountsMsg) Tag() IncomingMessage { return ManagedAccts }

func (m *ManagedAccountsMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).String(m.Accounts)
}

func decodeManagedAccounts(r *codec.Reader, v, _ int) Message {
	return &ManagedAccountsMsg{Version: v, Accounts: r.String()}
}

// List splits the comma separated account list.
func (m *ManagedAccountsMsg) List() []string {
	var out []string
	for _, a := range strings.Split(m.Accounts, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

type ReceiveFAMsg struct {
	Version  int
	DataType models.FADataType
	XML      string
}

func (*ReceiveFAMsg) Tag() IncomingMessage { return ReceiveFA }

func (m *ReceiveFAMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1))
	codec.WriteSymbol(w, models.FADataTypes, m.DataType)
	w.String(m.XML)
}

func decodeReceiveFA(r *codec.Reader, v, _ int) Message {
	m := &ReceiveFAMsg{Version: v, DataType: codec.ReadSymbol(r, models.FADataTypes)}
	m.XML = r.String()
	return m
}

// -----------------------------------------------------------------------------
// Contract details
// -----------------------------------------------------------------------------

type ContractDataMsg struct {
	Version   int
	RequestID int
	Details   models.MContractDetails
}

func (*ContractDataMsg) Tag() IncomingMessage { return ContractData }

func (m *ContractDataMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 6)
	d := &m.Details
	c := &d.Summary
	w.Int(v)
	if v >= 3 {
		w.Int(m.RequestID)
	}
	writeContractCore(w, c)
	w.String(c.Exchange).String(c.Currency).String(c.LocalSymbol).String(d.MarketName).String(d.TradingClass)
	w.Int(c.ConID).Float(d.MinTick).String(c.Multiplier).String(d.OrderTypes).String(d.ValidExchanges)
	if v >= 2 {
		w.Int(d.PriceMagnifier)
	}
	if v >= 4 {
		w.Int(d.UnderConID)
	}
	if v >= 5 {
		w.String(d.LongName).String(c.PrimaryExch)
	}
	if v >= 6 {
		w.String(d.ContractMonth).String(d.Industry).String(d.Category).String(d.Subcategory)
		w.String(d.TimeZoneID).String(d.TradingHours).String(d.LiquidHours)
	}
}

func decodeContractData(r *codec.Reader, v, _ int) Message {
	m := &ContractDataMsg{Version: v, RequestID: -1}
	d := &m.Details
	c := &d.Summary
	if v >= 3 {
		m.RequestID = r.Int()
	}
	readContractCore(r, c)
	c.Exchange = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	d.MarketName = r.String()
	d.TradingClass = r.String()
	c.ConID = r.Int()
	d.MinTick = r.Float()
	c.Multiplier = r.String()
	d.OrderTypes = r.String()
	d.ValidExchanges = r.String()
	if v >= 2 {
		d.PriceMagnifier = r.Int()
	}
	if v >= 4 {
		d.UnderConID = r.Int()
	}
	if v >= 5 {
		d.LongName = r.String()
		c.PrimaryExch = r.String()
	}
	if v >= 6 {
		d.ContractMonth = r.String()
		d.Industry = r.String()
		d.Category = r.String()
		d.Subcategory = r.String()
		d.TimeZoneID = r.String()
		d.TradingHours = r.String()
		d.LiquidHours = r.String()
	}
	return m
}

type BondContractDataMsg struct {
	Version   int
	RequestID int
	Details   models.MContractDetails
}

func (*BondContractDataMsg) Tag() IncomingMessage { return BondContractData }

func (m *BondContractDataMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 4)
	d := &m.Details
	c := &d.Summary
	w.Int(v)
	if v >= 3 {
		w.Int(m.RequestID)
	}
	w.String(c.Symbol)
	codec.WriteSymbol(w, models.SecurityTypes, c.SecType)
	w.String(d.Cusip).Float(d.Coupon).String(d.Maturity).String(d.IssueDate).String(d.Ratings)
	w.String(d.BondType).String(d.CouponType).Bool(d.Convertible).Bool(d.Callable).Bool(d.Putable)
	w.String(d.DescAppend).String(c.Exchange).String(c.Currency).String(d.MarketName).String(d.TradingClass)
	w.Int(c.ConID).Float(d.MinTick).String(d.OrderTypes).String(d.ValidExchanges)
	if v >= 2 {
		w.String(d.NextOptionDate).String(d.NextOptionType).Bool(d.NextOptionPartial).String(d.Notes)
	}
	if v >= 4 {
		w.String(d.LongName)
	}
}

func decodeBondContractData(r *codec.Reader, v, _ int) Message {
	m := &BondContractDataMsg{Version: v, RequestID: -1}
	d := &m.Details
	c := &d.Summary
	if v >= 3 {
		m.RequestID = r.Int()
	}
	c.Symbol = r.String()
	c.SecType = codec.ReadSymbol(r, models.SecurityTypes)
	d.Cusip = r.String()
	d.Coupon = r.Float()
	d.Maturity = r.String()
	d.IssueDate = r.String()
	d.Ratings = r.String()
	d.BondType = r.String()
	d.CouponType = r.String()
	d.Convertible = r.Bool()
	d.Callable = r.Bool()
	d.Putable = r.Bool()
	d.DescAppend = r.String()
	c.Exchange = r.String()
	c.Currency = r.String()
	d.MarketName = r.String()
	d.TradingClass = r.String()
	c.ConID = r.Int()
	d.MinTick = r.Float()
	d.OrderTypes = r.String()
	d.ValidExchanges = r.String()
	if v >= 2 {
		d.NextOptionDate = r.String()
		d.NextOptionType = r.String()
		d.NextOptionPartial = r.Bool()
		d.Notes = r.String()
	}
	if v >= 4 {
		d.LongName = r.String()
	}
	return m
}

type ContractDataEndMsg struct {
	Version   int
	RequestID int
}

func (*ContractDataEndMsg) Tag() IncomingMessage { return ContractDataEnd }

func (m *ContractDataEndMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID)
}

func decodeContractDataEnd(r *codec.Reader, v, _ int) Message {
	return &ContractDataEndMsg{Version: v, RequestID: r.Int()}
}

// -----------------------------------------------------------------------------
// Executions
// -----------------------------------------------------------------------------

type ExecutionDataMsg struct {
	Version int
	models.MExecutionReport
}

func (*ExecutionDataMsg) Tag() IncomingMessage { return ExecutionData }

func (m *ExecutionDataMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 7)
	c, e := &m.Contract, &m.Execution
	w.Int(v)
	if v >= 7 {
		w.Int(m.RequestID)
	}
	w.Int(e.OrderID)
	if v >= 5 {
		w.Int(c.ConID)
	}
	writeContractCore(w, c)
	w.String(c.Exchange).String(c.Currency).String(c.LocalSymbol)
	w.String(e.ExecID).String(e.Time).String(e.AcctNumber).String(e.Exchange).String(e.Side)
	w.Int(e.Shares).Float(e.Price)
	if v >= 2 {
		w.Int(e.PermID)
	}
	if v >= 3 {
		w.Int(e.ClientID)
	}
	if v >= 4 {
		w.Int(e.Liquidation)
	}
	if v >= 6 {
		w.Int(e.CumQty).Float(e.AvgPrice)
	}
}

func decodeExecutionData(r *codec.Reader, v, _ int) Message {
	m := &ExecutionDataMsg{Version: v}
	m.RequestID = -1
	c, e := &m.Contract, &m.Execution
	if v >= 7 {
		m.RequestID = r.Int()
	}
	e.OrderID = r.Int()
	if v >= 5 {
		c.ConID = r.Int()
	}
	readContractCore(r, c)
	c.Exchange = r.String()
	c.Currency = r.String()
	c.LocalSymbol = r.String()
	e.ExecID = r.String()
	e.Time = r.String()
	e.AcctNumber = r.String()
	e.Exchange = r.String()
	e.Side = r.String()
	e.Shares = r.Int()
	e.Price = r.Float()
	if v >= 2 {
		e.PermID = r.Int()
	}
	if v >= 3 {
		e.ClientID = r.Int()
	}
	if v >= 4 {
		e.Liquidation = r.Int()
	}
	if v >= 6 {
		e.CumQty = r.Int()
		e.AvgPrice = r.Float()
	}
	return m
}

type ExecutionDataEndMsg struct {
	Version   int
	RequestID int
}

func (*ExecutionDataEndMsg) Tag() IncomingMessage { return ExecutionDataEnd }

func (m *ExecutionDataEndMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID)
}

func decodeExecutionDataEnd(r *codec.Reader, v, _ int) Message {
	return &ExecutionDataEndMsg{Version: v, RequestID: r.Int()}
}

// -----------------------------------------------------------------------------
// Depth and news
// -----------------------------------------------------------------------------

// MarketDepthMsg covers both depth messages; L2 rows carry a market maker.
type MarketDepthMsg struct {
	Version int
	L2      bool
	models.MMarketDepth
}

func (m *MarketDepthMsg) Tag() IncomingMessage {
	if m.L2 || m.MarketMaker != "" {
		return MarketDepthL2
	}
	return MarketDepth
}

func (m *MarketDepthMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID).Int(m.Position)
	if m.Tag() == MarketDepthL2 {
		w.String(m.MarketMaker)
	}
	codec.WriteSymbol(w, models.DepthOperations, m.Operation)
	codec.WriteSymbol(w, models.DepthSides, m.Side)
	w.Float(m.Price).Int(m.Size)
}

func decodeMarketDepth(r *codec.Reader, v, _ int) Message {
	m := &MarketDepthMsg{Version: v}
	m.RequestID = r.Int()
	m.Position = r.Int()
	readDepthTail(r, &m.MMarketDepth)
	return m
}

func decodeMarketDepthL2(r *codec.Reader, v, _ int) Message {
	m := &MarketDepthMsg{Version: v, L2: true}
	m.RequestID = r.Int()
	m.Position = r.Int()
	m.MarketMaker = r.String()
	readDepthTail(r, &m.MMarketDepth)
	return m
}

func readDepthTail(r *codec.Reader, d *models.MMarketDepth) {
	d.Operation = codec.ReadSymbol(r, models.DepthOperations)
	d.Side = codec.ReadSymbol(r, models.DepthSides)
	d.Price = r.Float()
	d.Size = r.Int()
}

type NewsBulletinMsg struct {
	Version int
	models.MNewsBulletin
}

func (*NewsBulletinMsg) Tag() IncomingMessage { return NewsBulletins }

func (m *NewsBulletinMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.MsgID)
	codec.WriteSymbol(w, models.NewsTypes, m.Type)
	w.String(m.Message).String(m.OriginExchange)
}

func decodeNewsBulletin(r *codec.Reader, v, _ int) Message {
	m := &NewsBulletinMsg{Version: v}
	m.MsgID = r.Int()
	m.Type = codec.ReadSymbol(r, models.NewsTypes)
	m.Message = r.String()
	m.OriginExchange = r.String()
	return m
}

// -----------------------------------------------------------------------------
// Historical data, bars, scanner, fundamentals
// -----------------------------------------------------------------------------

type HistoricalDataMsg struct {
	Version   int
	RequestID int
	Start     string
	End       string
	Bars      []models.MBar
}

func (*HistoricalDataMsg) Tag() IncomingMessage { return HistoricalData }

func (m *HistoricalDataMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 3)
	w.Int(v).Int(m.RequestID)
	if v >= 2 {
		w.String(m.Start).String(m.End)
	}
	w.Int(len(m.Bars))
	for _, b := range m.Bars {
		w.String(b.Date).Float(b.Open).Float(b.High).Float(b.Low).Float(b.Close)
		w.Int(b.Volume).Float(b.WAP).String(fmt.Sprint(b.HasGaps))
		if v >= 3 {
			w.Int(b.Count)
		}
	}
}

func decodeHistoricalDataMsg(r *codec.Reader, v, _ int) Message {
	m := &HistoricalDataMsg{Version: v, RequestID: r.Int()}
	if v >= 2 {
		m.Start = r.String()
		m.End = r.String()
	}
	n := r.Int()
	for i := 0; i < n && r.Err() == nil; i++ {
		b := models.MBar{
			Date:  r.String(),
			Open:  r.Float(),
			High:  r.Float(),
			Low:   r.Float(),
			Close: r.Float(),
		}
		b.Volume = r.Int()
		b.WAP = r.Float()
		b.HasGaps = strings.EqualFold(r.String(), "true")
		b.Count = -1
		if v >= 3 {
			b.Count = r.Int()
		}
		m.Bars = append(m.Bars, b)
	}
	return m
}

type RealTimeBarMsg struct {
	Version   int
	RequestID int
	Bar       models.MRealTimeBar
}

func (*RealTimeBarMsg) Tag() IncomingMessage { return RealTimeBars }

func (m *RealTimeBarMsg) encode(w *codec.Writer, _ int) {
	b := &m.Bar
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID).Int64(b.Time)
	w.Float(b.Open).Float(b.High).Float(b.Low).Float(b.Close).Int64(b.Volume).Float(b.WAP).Int(b.Count)
}

func decodeRealTimeBar(r *codec.Reader, v, _ int) Message {
	m := &RealTimeBarMsg{Version: v, RequestID: r.Int()}
	b := &m.Bar
	b.Time = r.Int64()
	b.Open = r.Float()
	b.High = r.Float()
	b.Low = r.Float()
	b.Close = r.Float()
	b.Volume = r.Int64()
	b.WAP = r.Float()
	b.Count = r.Int()
	return m
}

type ScannerParametersMsg struct {
	Version int
	XML     string
}

func (*ScannerParametersMsg) Tag() IncomingMessage { return ScannerParameters }

func (m *ScannerParametersMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).String(m.XML)
}

func decodeScannerParameters(r *codec.Reader, v, _ int) Message {
	return &ScannerParametersMsg{Version: v, XML: r.String()}
}

type ScannerDataMsg struct {
	Version   int
	RequestID int
	Rows      []models.MScannerData
}

func (*ScannerDataMsg) Tag() IncomingMessage { return ScannerData }

func (m *ScannerDataMsg) encode(w *codec.Writer, _ int) {
	v := versionOr(m.Version, 3)
	w.Int(v).Int(m.RequestID).Int(len(m.Rows))
	for _, row := range m.Rows {
		d := &row.Details
		c := &d.Summary
		w.Int(row.Rank)
		if v >= 3 {
			w.Int(c.ConID)
		}
		writeContractCore(w, c)
		w.String(c.Exchange).String(c.Currency).String(c.LocalSymbol).String(d.MarketName).String(d.TradingClass)
		w.String(row.Distance).String(row.Benchmark).String(row.Projection)
		if v >= 2 {
			w.String(row.Legs)
		}
	}
}

func decodeScannerData(r *codec.Reader, v, _ int) Message {
	m := &ScannerDataMsg{Version: v, RequestID: r.Int()}
	n := r.Int()
	for i := 0; i < n && r.Err() == nil; i++ {
		row := models.MScannerData{Rank: r.Int()}
		d := &row.Details
		c := &d.Summary
		if v >= 3 {
			c.ConID = r.Int()
		}
		readContractCore(r, c)
		c.Exchange = r.String()
		c.Currency = r.String()
		c.LocalSymbol = r.String()
		d.MarketName = r.String()
		d.TradingClass = r.String()
		row.Distance = r.String()
		row.Benchmark = r.String()
		row.Projection = r.String()
		if v >= 2 {
			row.Legs = r.String()
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

type CurrentTimeMsg struct {
	Version int
	Time    int64
}

func (*CurrentTimeMsg) Tag() IncomingMessage { return CurrentTime }

func (m *CurrentTimeMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int64(m.Time)
}

func decodeCurrentTime(r *codec.Reader, v, _ int) Message {
	return &CurrentTimeMsg{Version: v, Time: r.Int64()}
}

type FundamentalDataMsg struct {
	Version   int
	RequestID int
	Data      string
}

func (*FundamentalDataMsg) Tag() IncomingMessage { return FundamentalData }

func (m *FundamentalDataMsg) encode(w *codec.Writer, _ int) {
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID).String(m.Data)
}

func decodeFundamentalDataMsg(r *codec.Reader, v, _ int) Message {
	m := &FundamentalDataMsg{Version: v, RequestID: r.Int()}
	m.Data = r.String()
	return m
}

type DeltaNeutralValidationMsg struct {
	Version   int
	RequestID int
	UnderComp models.MUnderComp
}

func (*DeltaNeutralValidationMsg) Tag() IncomingMessage { return DeltaNeutralValidation }

func (m *DeltaNeutralValidationMsg) encode(w *codec.Writer, _ int) {
	uc := &m.UnderComp
	w.Int(versionOr(m.Version, 1)).Int(m.RequestID).Int(uc.ConID).Float(uc.Delta).Float(uc.Price)
}

func decodeDeltaNeutralValidation(r *codec.Reader, v, _ int) Message {
	m := &DeltaNeutralValidationMsg{Version: v, RequestID: r.Int()}
	m.UnderComp = models.MUnderComp{ConID: r.Int(), Delta: r.Float(), Price: r.Float()}
	return m
}
