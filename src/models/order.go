package models

import (
	"time"

	"twsclient/src/codec"
)

// MTagValue is a generic name/value pair (algo parameters).
type MTagValue struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// -----------------------------------------------------------------------------

// MOrder holds every order attribute the encoder knows how to send. Fields
// documented as "max" use the codec sentinels to mean unset.
type MOrder struct {
	OrderID       int         `json:"order_id"`
	ClientID      int         `json:"client_id"`
	PermID        int         `json:"perm_id"`
	Action        Action      `json:"action"`
	TotalQuantity int         `json:"total_quantity"`
	OrderType     OrderType   `json:"order_type"`
	LmtPrice      float64     `json:"lmt_price"`
	AuxPrice      float64     `json:"aux_price"`
	Tif           TimeInForce `json:"tif"`
	OcaGroup      string      `json:"oca_group"`
	Account       string      `json:"account"`
	OpenClose     OpenClose   `json:"open_close"`
	Origin        OrderOrigin `json:"origin"`
	OrderRef      string      `json:"order_ref"`
	Transmit      bool        `json:"transmit"`
	ParentID      int         `json:"parent_id"`

	BlockOrder       bool          `json:"block_order"`
	SweepToFill      bool          `json:"sweep_to_fill"`
	DisplaySize      int           `json:"display_size"`
	TriggerMethod    TriggerMethod `json:"trigger_method"`
	OutsideRth       bool          `json:"outside_rth"`
	Hidden           bool          `json:"hidden"`
	DiscretionaryAmt float64       `json:"discretionary_amt"`
	GoodAfterTime    string        `json:"good_after_time"`
	GoodTillDate     string        `json:"good_till_date"`

	FAGroup      string `json:"fa_group"`
	FAMethod     string `json:"fa_method"`
	FAPercentage string `json:"fa_percentage"`
	FAProfile    string `json:"fa_profile"`

	ShortSaleSlot      int    `json:"short_sale_slot"`
	DesignatedLocation string `json:"designated_location"`

	OcaType         OcaType `json:"oca_type"`
	Rule80A         Rule80A `json:"rule_80a"`
	SettlingFirm    string  `json:"settling_firm"`
	AllOrNone       bool    `json:"all_or_none"`
	MinQty          int     `json:"min_qty"`        // max
	PercentOffset   float64 `json:"percent_offset"` // max
	ETradeOnly      bool    `json:"etrade_only"`
	FirmQuoteOnly   bool    `json:"firm_quote_only"`
	NbboPriceCap    float64 `json:"nbbo_price_cap"`   // max
	AuctionStrategy int     `json:"auction_strategy"` // max
	StartingPrice   float64 `json:"starting_price"`   // max
	StockRefPrice   float64 `json:"stock_ref_price"`  // max
	Delta           float64 `json:"delta"`            // max
	StockRangeLower float64 `json:"stock_range_lower"`
	StockRangeUpper float64 `json:"stock_range_upper"`

	OverridePercentageConstraints bool `json:"override_percentage_constraints"`

	Volatility            float64   `json:"volatility"`      // max
	VolatilityType        int       `json:"volatility_type"` // max
	DeltaNeutralOrderType OrderType `json:"delta_neutral_order_type"`
	DeltaNeutralAuxPrice  float64   `json:"delta_neutral_aux_price"` // max
	ContinuousUpdate      bool      `json:"continuous_update"`
	ReferencePriceType    int       `json:"reference_price_type"` // max

	TrailStopPrice float64 `json:"trail_stop_price"` // max

	ScaleInitLevelSize  int     `json:"scale_init_level_size"` // max
	ScaleSubsLevelSize  int     `json:"scale_subs_level_size"` // max
	ScalePriceIncrement float64 `json:"scale_price_increment"` // max

	ClearingAccount string `json:"clearing_account"`
	ClearingIntent  string `json:"clearing_intent"`
	NotHeld         bool   `json:"not_held"`

	AlgoStrategy string      `json:"algo_strategy"`
	AlgoParams   []MTagValue `json:"algo_params,omitempty"`
	WhatIf       bool        `json:"what_if"`

	BasisPoints     float64 `json:"basis_points"`      // max
	BasisPointsType int     `json:"basis_points_type"` // max
}

// -----------------------------------------------------------------------------

// NewOrder returns an order with every optional field unset.
func NewOrder() MOrder {
	return MOrder{
		OpenClose:            OpenCloseOpen,
		Origin:               OriginCustomer,
		Transmit:             true,
		MinQty:               codec.IntMax,
		PercentOffset:        codec.DoubleMax,
		NbboPriceCap:         codec.DoubleMax,
		AuctionStrategy:      codec.IntMax,
		StartingPrice:        codec.DoubleMax,
		StockRefPrice:        codec.DoubleMax,
		Delta:                codec.DoubleMax,
		StockRangeLower:      codec.DoubleMax,
		StockRangeUpper:      codec.DoubleMax,
		Volatility:           codec.DoubleMax,
		VolatilityType:       codec.IntMax,
		DeltaNeutralAuxPrice: codec.DoubleMax,
		ReferencePriceType:   codec.IntMax,
		TrailStopPrice:       codec.DoubleMax,
		ScaleInitLevelSize:   codec.IntMax,
		ScaleSubsLevelSize:   codec.IntMax,
		ScalePriceIncrement:  codec.DoubleMax,
		BasisPoints:          codec.DoubleMax,
		BasisPointsType:      codec.IntMax,
	}
}

// -----------------------------------------------------------------------------

// UsesScale reports whether any scale attribute is set.
func (o MOrder) UsesScale() bool {
	return o.ScaleInitLevelSize != codec.IntMax || o.ScaleSubsLevelSize != codec.IntMax ||
		o.ScalePriceIncrement != codec.DoubleMax
}

// -----------------------------------------------------------------------------

type OrderStatus string

const (
	StatusPendingSubmit OrderStatus = "PendingSubmit"
	StatusPendingCancel OrderStatus = "PendingCancel"
	StatusPreSubmitted  OrderStatus = "PreSubmitted"
	StatusSubmitted     OrderStatus = "Submitted"
	StatusCancelled     OrderStatus = "Cancelled"
	StatusFilled        OrderStatus = "Filled"
	StatusInactive      OrderStatus = "Inactive"
	StatusApiPending    OrderStatus = "ApiPending"
	StatusApiCancelled  OrderStatus = "ApiCancelled"
)

// IsTerminal reports whether no further status can follow.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusApiCancelled, StatusInactive:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

// MOrderState is the what-if/margin block of OPEN_ORDER.
type MOrderState struct {
	Status             OrderStatus `json:"status"`
	InitMargin         string      `json:"init_margin"`
	MaintMargin        string      `json:"maint_margin"`
	EquityWithLoan     string      `json:"equity_with_loan"`
	Commission         float64     `json:"commission"`
	MinCommission      float64     `json:"min_commission"`
	MaxCommission      float64     `json:"max_commission"`
	CommissionCurrency string      `json:"commission_currency"`
	WarningText        string      `json:"warning_text"`
}

// -----------------------------------------------------------------------------

// MExecution is one fill.
type MExecution struct {
	OrderID     int     `json:"order_id"`
	ClientID    int     `json:"client_id"`
	ExecID      string  `json:"exec_id"`
	Time        string  `json:"time"`
	AcctNumber  string  `json:"acct_number"`
	Exchange    string  `json:"exchange"`
	Side        string  `json:"side"`
	Shares      int     `json:"shares"`
	Price       float64 `json:"price"`
	PermID      int     `json:"perm_id"`
	Liquidation int     `json:"liquidation"`
	CumQty      int     `json:"cum_qty"`
	AvgPrice    float64 `json:"avg_price"`
}

// MExecutionFilter narrows a REQ_EXECUTIONS request.
type MExecutionFilter struct {
	ClientID int          `json:"client_id"`
	AcctCode string       `json:"acct_code"`
	Time     string       `json:"time"`
	Symbol   string       `json:"symbol"`
	SecType  SecurityType `json:"sec_type"`
	Exchange string       `json:"exchange"`
	Side     string       `json:"side"`
}

// -----------------------------------------------------------------------------

// MOrderRecord binds a locally minted order id to what was last submitted
// under it, so later status, execution and error events can carry context.
type MOrderRecord struct {
	OrderID      int         `json:"order_id"`
	Contract     MContract   `json:"contract"`
	Order        MOrder      `json:"order"`
	Status       OrderStatus `json:"status"`
	Filled       int         `json:"filled"`
	Remaining    int         `json:"remaining"`
	AvgFillPrice float64     `json:"avg_fill_price"`
	SubmittedAt  time.Time   `json:"submitted_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
