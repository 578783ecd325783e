package models

// MContract identifies a tradable instrument. It is treated as a value once a
// request has been issued for it.
type MContract struct {
	ConID            int            `json:"con_id,omitempty"`
	Symbol           string         `json:"symbol"`
	SecType          SecurityType   `json:"sec_type"`
	Expiry           string         `json:"expiry,omitempty"`
	Strike           float64        `json:"strike,omitempty"`
	Right            Right          `json:"right,omitempty"`
	Multiplier       string         `json:"multiplier,omitempty"`
	Exchange         string         `json:"exchange"`
	PrimaryExch      string         `json:"primary_exchange,omitempty"`
	Currency         string         `json:"currency"`
	LocalSymbol      string         `json:"local_symbol,omitempty"`
	IncludeExpired   bool           `json:"include_expired,omitempty"`
	SecIDType        SecurityIDType `json:"sec_id_type,omitempty"`
	SecID            string         `json:"sec_id,omitempty"`
	ComboLegsDescrip string         `json:"combo_legs_descrip,omitempty"`
	ComboLegs        []MComboLeg    `json:"combo_legs,omitempty"`
	UnderComp        *MUnderComp    `json:"under_comp,omitempty"`
}

// -----------------------------------------------------------------------------

// Equal compares two contracts field by field, legs included.
func (c MContract) Equal(o MContract) bool {
	if c.ConID != o.ConID || c.Symbol != o.Symbol || c.SecType != o.SecType ||
		c.Expiry != o.Expiry || c.Strike != o.Strike || c.Right != o.Right ||
		c.Multiplier != o.Multiplier || c.Exchange != o.Exchange ||
		c.PrimaryExch != o.PrimaryExch || c.Currency != o.Currency ||
		c.LocalSymbol != o.LocalSymbol || c.IncludeExpired != o.IncludeExpired ||
		c.SecIDType != o.SecIDType || c.SecID != o.SecID {
		return false
	}
	if len(c.ComboLegs) != len(o.ComboLegs) {
		return false
	}
	for i := range c.ComboLegs {
		if c.ComboLegs[i] != o.ComboLegs[i] {
			return false
		}
	}
	switch {
	case c.UnderComp == nil && o.UnderComp == nil:
		return true
	case c.UnderComp == nil || o.UnderComp == nil:
		return false
	}
	return *c.UnderComp == *o.UnderComp
}

// -----------------------------------------------------------------------------

// MComboLeg is one leg of a BAG contract.
type MComboLeg struct {
	ConID              int    `json:"con_id"`
	Ratio              int    `json:"ratio"`
	Action             Action `json:"action"`
	Exchange           string `json:"exchange"`
	OpenClose          int    `json:"open_close"` // 0 same, 1 open, 2 close, 3 unknown
	ShortSaleSlot      int    `json:"short_sale_slot"`
	DesignatedLocation string `json:"designated_location"`
}

// MUnderComp is the delta-neutral underlying component.
type MUnderComp struct {
	ConID int     `json:"con_id"`
	Delta float64 `json:"delta"`
	Price float64 `json:"price"`
}

// -----------------------------------------------------------------------------

// MContractDetails carries CONTRACT_DATA and BOND_CONTRACT_DATA payloads.
type MContractDetails struct {
	Summary        MContract `json:"summary"`
	MarketName     string    `json:"market_name"`
	TradingClass   string    `json:"trading_class"`
	MinTick        float64   `json:"min_tick"`
	PriceMagnifier int       `json:"price_magnifier"`
	OrderTypes     string    `json:"order_types"`
	ValidExchanges string    `json:"valid_exchanges"`
	UnderConID     int       `json:"under_con_id"`
	LongName       string    `json:"long_name"`
	ContractMonth  string    `json:"contract_month"`
	Industry       string    `json:"industry"`
	Category       string    `json:"category"`
	Subcategory    string    `json:"subcategory"`
	TimeZoneID     string    `json:"time_zone_id"`
	TradingHours   string    `json:"trading_hours"`
	LiquidHours    string    `json:"liquid_hours"`

	// bond fields
	Cusip             string  `json:"cusip,omitempty"`
	Ratings           string  `json:"ratings,omitempty"`
	DescAppend        string  `json:"desc_append,omitempty"`
	BondType          string  `json:"bond_type,omitempty"`
	CouponType        string  `json:"coupon_type,omitempty"`
	Callable          bool    `json:"callable,omitempty"`
	Putable           bool    `json:"putable,omitempty"`
	Coupon            float64 `json:"coupon,omitempty"`
	Convertible       bool    `json:"convertible,omitempty"`
	Maturity          string  `json:"maturity,omitempty"`
	IssueDate         string  `json:"issue_date,omitempty"`
	NextOptionDate    string  `json:"next_option_date,omitempty"`
	NextOptionType    string  `json:"next_option_type,omitempty"`
	NextOptionPartial bool    `json:"next_option_partial,omitempty"`
	Notes             string  `json:"notes,omitempty"`
}
