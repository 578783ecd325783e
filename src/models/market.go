package models

import (
	"time"
)

// MBar is one HISTORICAL_DATA row.
type MBar struct {
	Date    string  `json:"date"`
	Open    float64 `json:"open"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Close   float64 `json:"close"`
	Volume  int     `json:"volume"`
	WAP     float64 `json:"wap"`
	HasGaps bool    `json:"has_gaps"`
	Count   int     `json:"count"`
}

// MRealTimeBar is one REAL_TIME_BARS row.
type MRealTimeBar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	WAP    float64 `json:"wap"`
	Count  int     `json:"count"`
}

// -----------------------------------------------------------------------------

// MScannerSubscription parameters. Numeric filters use the codec sentinels
// for "unset", see NewScannerSubscription.
type MScannerSubscription struct {
	NumberOfRows             int     `json:"number_of_rows"`
	Instrument               string  `json:"instrument"`
	LocationCode             string  `json:"location_code"`
	ScanCode                 string  `json:"scan_code"`
	AbovePrice               float64 `json:"above_price"`
	BelowPrice               float64 `json:"below_price"`
	AboveVolume              int     `json:"above_volume"`
	MarketCapAbove           float64 `json:"market_cap_above"`
	MarketCapBelow           float64 `json:"market_cap_below"`
	MoodyRatingAbove         string  `json:"moody_rating_above"`
	MoodyRatingBelow         string  `json:"moody_rating_below"`
	SPRatingAbove            string  `json:"sp_rating_above"`
	SPRatingBelow            string  `json:"sp_rating_below"`
	MaturityDateAbove        string  `json:"maturity_date_above"`
	MaturityDateBelow        string  `json:"maturity_date_below"`
	CouponRateAbove          float64 `json:"coupon_rate_above"`
	CouponRateBelow          float64 `json:"coupon_rate_below"`
	ExcludeConvertible       string  `json:"exclude_convertible"`
	AverageOptionVolumeAbove int     `json:"average_option_volume_above"`
	ScannerSettingPairs      string  `json:"scanner_setting_pairs"`
	StockTypeFilter          string  `json:"stock_type_filter"`
}

// MScannerData is one row of a SCANNER_DATA message.
type MScannerData struct {
	Rank       int              `json:"rank"`
	Details    MContractDetails `json:"details"`
	Distance   string           `json:"distance"`
	Benchmark  string           `json:"benchmark"`
	Projection string           `json:"projection"`
	Legs       string           `json:"legs"`
}

// -----------------------------------------------------------------------------

// MSessionPolicy controls how the aggregation engine treats incoming ticks.
type MSessionPolicy struct {
	DuplicateTimeout         time.Duration `json:"duplicate_timeout"`
	GenerateTradesFromLast   bool          `json:"generate_trades_from_last"`
	GenerateTradesFromVolume bool          `json:"generate_trades_from_volume"`
	SuppressSizeWithPrice    bool          `json:"suppress_size_with_price"`
}

// -----------------------------------------------------------------------------

// MMarketDataSnapshot is the folded view of one market data subscription.
// Values handed out of the engine are copies.
type MMarketDataSnapshot struct {
	RequestID int       `json:"request_id"`
	Contract  MContract `json:"contract"`

	Bid   float64 `json:"bid"`
	Ask   float64 `json:"ask"`
	Last  float64 `json:"last"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`

	BidSize  int `json:"bid_size"`
	AskSize  int `json:"ask_size"`
	LastSize int `json:"last_size"`

	Volume          int  `json:"volume"`
	SyntheticVolume int  `json:"synthetic_volume"`
	VolumeSeeded    bool `json:"volume_seeded"`

	BidTime    time.Time `json:"bid_time"`
	AskTime    time.Time `json:"ask_time"`
	LastTime   time.Time `json:"last_time"`
	VolumeTime time.Time `json:"volume_time"`

	BidEvents    int `json:"bid_events"`
	AskEvents    int `json:"ask_events"`
	LastEvents   int `json:"last_events"`
	VolumeEvents int `json:"volume_events"`

	BidDuplicates  int `json:"bid_duplicates"`
	AskDuplicates  int `json:"ask_duplicates"`
	LastDuplicates int `json:"last_duplicates"`

	VolumeMisses      int `json:"volume_misses"`
	VolumeRegressions int `json:"volume_regressions"`
	SyntheticTrades   int `json:"synthetic_trades"`

	Session   string    `json:"session"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares nothing mutable with s.
func (s *MMarketDataSnapshot) Clone() MMarketDataSnapshot {
	c := *s
	if s.Contract.ComboLegs != nil {
		c.Contract.ComboLegs = append([]MComboLeg(nil), s.Contract.ComboLegs...)
	}
	if s.Contract.UnderComp != nil {
		uc := *s.Contract.UnderComp
		c.Contract.UnderComp = &uc
	}
	return c
}
