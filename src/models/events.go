package models

// Payloads handed to event handlers. Fields absent from older message
// versions keep their zero value unless noted otherwise.

type MTickPrice struct {
	RequestID      int      `json:"request_id"`
	Field          TickType `json:"field"`
	Price          float64  `json:"price"`
	Size           int      `json:"size"`
	CanAutoExecute bool     `json:"can_auto_execute"`
}

type MTickSize struct {
	RequestID int      `json:"request_id"`
	Field     TickType `json:"field"`
	Size      int      `json:"size"`
}

// MTickOptionComputation values outside their valid range arrive as
// codec.DoubleMax.
type MTickOptionComputation struct {
	RequestID  int      `json:"request_id"`
	Field      TickType `json:"field"`
	ImpliedVol float64  `json:"implied_vol"`
	Delta      float64  `json:"delta"`
	OptPrice   float64  `json:"opt_price"`
	PvDividend float64  `json:"pv_dividend"`
	Gamma      float64  `json:"gamma"`
	Vega       float64  `json:"vega"`
	Theta      float64  `json:"theta"`
	UndPrice   float64  `json:"und_price"`
}

type MTickGeneric struct {
	RequestID int      `json:"request_id"`
	Field     TickType `json:"field"`
	Value     float64  `json:"value"`
}

type MTickString struct {
	RequestID int      `json:"request_id"`
	Field     TickType `json:"field"`
	Value     string   `json:"value"`
}

type MTickEFP struct {
	RequestID            int      `json:"request_id"`
	Field                TickType `json:"field"`
	BasisPoints          float64  `json:"basis_points"`
	FormattedBasisPoints string   `json:"formatted_basis_points"`
	ImpliedFuture        float64  `json:"implied_future"`
	HoldDays             int      `json:"hold_days"`
	FutureExpiry         string   `json:"future_expiry"`
	DividendImpact       float64  `json:"dividend_impact"`
	DividendsToExpiry    float64  `json:"dividends_to_expiry"`
}

// -----------------------------------------------------------------------------

// MMarketDataEvent is emitted once per accepted snapshot mutation. Size is
// the traded quantity for trade and synthetic trade events.
type MMarketDataEvent struct {
	RequestID int                 `json:"request_id"`
	Tick      TickType            `json:"tick"`
	Size      int                 `json:"size,omitempty"`
	Snapshot  MMarketDataSnapshot `json:"snapshot"`
}

// -----------------------------------------------------------------------------

type MOrderStatus struct {
	OrderID       int         `json:"order_id"`
	Status        OrderStatus `json:"status"`
	Filled        int         `json:"filled"`
	Remaining     int         `json:"remaining"`
	AvgFillPrice  float64     `json:"avg_fill_price"`
	PermID        int         `json:"perm_id"`
	ParentID      int         `json:"parent_id"`
	LastFillPrice float64     `json:"last_fill_price"`
	ClientID      int         `json:"client_id"`
	WhyHeld       string      `json:"why_held"`
}

type MOpenOrder struct {
	OrderID  int         `json:"order_id"`
	Contract MContract   `json:"contract"`
	Order    MOrder      `json:"order"`
	State    MOrderState `json:"state"`
}

// MErrorEvent is a peer reported error. RequestID is -1 when the error is
// not tied to a request.
type MErrorEvent struct {
	RequestID int    `json:"request_id"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Fatal     bool   `json:"fatal"`
}

// -----------------------------------------------------------------------------

type MAccountValue struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Currency string `json:"currency"`
	Account  string `json:"account"`
}

type MPortfolioValue struct {
	Contract      MContract `json:"contract"`
	Position      int       `json:"position"`
	MarketPrice   float64   `json:"market_price"`
	MarketValue   float64   `json:"market_value"`
	AverageCost   float64   `json:"average_cost"`
	UnrealizedPNL float64   `json:"unrealized_pnl"`
	RealizedPNL   float64   `json:"realized_pnl"`
	Account       string    `json:"account"`
}

type MExecutionReport struct {
	RequestID int        `json:"request_id"`
	Contract  MContract  `json:"contract"`
	Execution MExecution `json:"execution"`
}

// -----------------------------------------------------------------------------

type MMarketDepth struct {
	RequestID   int            `json:"request_id"`
	Position    int            `json:"position"`
	MarketMaker string         `json:"market_maker,omitempty"`
	Operation   DepthOperation `json:"operation"`
	Side        DepthSide      `json:"side"`
	Price       float64        `json:"price"`
	Size        int            `json:"size"`
}

type MNewsBulletin struct {
	MsgID          int      `json:"msg_id"`
	Type           NewsType `json:"type"`
	Message        string   `json:"message"`
	OriginExchange string   `json:"origin_exchange"`
}
