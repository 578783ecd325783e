package models

import (
	"twsclient/src/symbols"
)

// Every enumerated value that crosses the wire has a table below. The code
// functions are plain switches; the tables are validated once at init.

// -----------------------------------------------------------------------------

type SecurityType int

const (
	SecTypeNone SecurityType = iota
	SecTypeStock
	SecTypeOption
	SecTypeFuture
	SecTypeIndex
	SecTypeFutureOption
	SecTypeCash
	SecTypeBag
	SecTypeBond
	SecTypeWarrant
)

func (t SecurityType) code() (string, bool) {
	switch t {
	case SecTypeNone:
		return "", true
	case SecTypeStock:
		return "STK", true
	case SecTypeOption:
		return "OPT", true
	case SecTypeFuture:
		return "FUT", true
	case SecTypeIndex:
		return "IND", true
	case SecTypeFutureOption:
		return "FOP", true
	case SecTypeCash:
		return "CASH", true
	case SecTypeBag:
		return "BAG", true
	case SecTypeBond:
		return "BOND", true
	case SecTypeWarrant:
		return "WAR", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type Right int

const (
	RightNone Right = iota
	RightPut
	RightCall
)

func (r Right) code() (string, bool) {
	switch r {
	case RightNone:
		return "", true
	case RightPut:
		return "P", true
	case RightCall:
		return "C", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type Action int

const (
	ActionBuy Action = iota
	ActionSell
	ActionSellShort
)

func (a Action) code() (string, bool) {
	switch a {
	case ActionBuy:
		return "BUY", true
	case ActionSell:
		return "SELL", true
	case ActionSellShort:
		return "SSHORT", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type OrderType int

const (
	OrderTypeNone OrderType = iota
	OrderTypeMarket
	OrderTypeMarketOnClose
	OrderTypeLimit
	OrderTypeLimitOnClose
	OrderTypePeggedToMarket
	OrderTypeStop
	OrderTypeStopLimit
	OrderTypeTrailingStop
	OrderTypeTrailingStopLimit
	OrderTypeRelative
	OrderTypeVWAP
	OrderTypeVolatility
	OrderTypeMarketIfTouched
	OrderTypeLimitIfTouched
)

func (o OrderType) code() (string, bool) {
	switch o {
	case OrderTypeNone:
		return "", true
	case OrderTypeMarket:
		return "MKT", true
	case OrderTypeMarketOnClose:
		return "MOC", true
	case OrderTypeLimit:
		return "LMT", true
	case OrderTypeLimitOnClose:
		return "LOC", true
	case OrderTypePeggedToMarket:
		return "PEG MKT", true
	case OrderTypeStop:
		return "STP", true
	case OrderTypeStopLimit:
		return "STP LMT", true
	case OrderTypeTrailingStop:
		return "TRAIL", true
	case OrderTypeTrailingStopLimit:
		return "TRAILLIMIT", true
	case OrderTypeRelative:
		return "REL", true
	case OrderTypeVWAP:
		return "VWAP", true
	case OrderTypeVolatility:
		return "VOL", true
	case OrderTypeMarketIfTouched:
		return "MIT", true
	case OrderTypeLimitIfTouched:
		return "LIT", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type TimeInForce int

const (
	TifNone TimeInForce = iota
	TifDay
	TifGoodTillCancel
	TifImmediateOrCancel
	TifGoodTillDate
	TifOpening
	TifFillOrKill
)

func (t TimeInForce) code() (string, bool) {
	switch t {
	case TifNone:
		return "", true
	case TifDay:
		return "DAY", true
	case TifGoodTillCancel:
		return "GTC", true
	case TifImmediateOrCancel:
		return "IOC", true
	case TifGoodTillDate:
		return "GTD", true
	case TifOpening:
		return "OPG", true
	case TifFillOrKill:
		return "FOK", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type OcaType int

const (
	OcaNone OcaType = iota
	OcaCancelWithBlocking
	OcaReduceWithBlocking
	OcaReduceWithoutBlocking
)

func (o OcaType) code() (string, bool) {
	switch o {
	case OcaNone:
		return "0", true
	case OcaCancelWithBlocking:
		return "1", true
	case OcaReduceWithBlocking:
		return "2", true
	case OcaReduceWithoutBlocking:
		return "3", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type TriggerMethod int

const (
	TriggerDefault TriggerMethod = iota
	TriggerDoubleBidAsk
	TriggerLast
	TriggerDoubleLast
	TriggerBidAsk
	TriggerLastOrBidAsk
	TriggerMidpoint
)

func (t TriggerMethod) code() (string, bool) {
	switch t {
	case TriggerDefault:
		return "0", true
	case TriggerDoubleBidAsk:
		return "1", true
	case TriggerLast:
		return "2", true
	case TriggerDoubleLast:
		return "3", true
	case TriggerBidAsk:
		return "4", true
	case TriggerLastOrBidAsk:
		return "7", true
	case TriggerMidpoint:
		return "8", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type Rule80A int

const (
	Rule80ANone Rule80A = iota
	Rule80AIndividual
	Rule80AAgency
	Rule80AAgentOtherMember
	Rule80AIndividualPTIA
	Rule80AAgencyPTIA
	Rule80AAgentOtherMemberPTIA
	Rule80AIndividualPT
	Rule80AAgencyPT
	Rule80AAgentOtherMemberPT
)

func (r Rule80A) code() (string, bool) {
	switch r {
	case Rule80ANone:
		return "", true
	case Rule80AIndividual:
		return "I", true
	case Rule80AAgency:
		return "A", true
	case Rule80AAgentOtherMember:
		return "W", true
	case Rule80AIndividualPTIA:
		return "J", true
	case Rule80AAgencyPTIA:
		return "U", true
	case Rule80AAgentOtherMemberPTIA:
		return "M", true
	case Rule80AIndividualPT:
		return "K", true
	case Rule80AAgencyPT:
		return "Y", true
	case Rule80AAgentOtherMemberPT:
		return "N", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type OpenClose int

const (
	OpenCloseUndefined OpenClose = iota
	OpenCloseOpen
	OpenCloseClose
)

func (o OpenClose) code() (string, bool) {
	switch o {
	case OpenCloseUndefined:
		return "", true
	case OpenCloseOpen:
		return "O", true
	case OpenCloseClose:
		return "C", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type OrderOrigin int

const (
	OriginCustomer OrderOrigin = iota
	OriginFirm
)

func (o OrderOrigin) code() (string, bool) {
	switch o {
	case OriginCustomer:
		return "0", true
	case OriginFirm:
		return "1", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type ExerciseAction int

const (
	ExerciseExercise ExerciseAction = iota
	ExerciseLapse
)

func (e ExerciseAction) code() (string, bool) {
	switch e {
	case ExerciseExercise:
		return "1", true
	case ExerciseLapse:
		return "2", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type FADataType int

const (
	FAGroups FADataType = iota
	FAProfiles
	FAAliases
)

func (f FADataType) code() (string, bool) {
	switch f {
	case FAGroups:
		return "1", true
	case FAProfiles:
		return "2", true
	case FAAliases:
		return "3", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type LogLevel int

const (
	LogSystem LogLevel = iota
	LogError
	LogWarning
	LogInformation
	LogDetail
)

func (l LogLevel) code() (string, bool) {
	switch l {
	case LogSystem:
		return "1", true
	case LogError:
		return "2", true
	case LogWarning:
		return "3", true
	case LogInformation:
		return "4", true
	case LogDetail:
		return "5", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type BarSize int

const (
	BarOneSecond BarSize = iota
	BarFiveSeconds
	BarFifteenSeconds
	BarThirtySeconds
	BarOneMinute
	BarTwoMinutes
	BarThreeMinutes
	BarFiveMinutes
	BarFifteenMinutes
	BarThirtyMinutes
	BarOneHour
	BarOneDay
	BarOneWeek
	BarOneMonth
	BarThreeMonths
	BarOneYear
)

func (b BarSize) code() (string, bool) {
	switch b {
	case BarOneSecond:
		return "1 sec", true
	case BarFiveSeconds:
		return "5 secs", true
	case BarFifteenSeconds:
		return "15 secs", true
	case BarThirtySeconds:
		return "30 secs", true
	case BarOneMinute:
		return "1 min", true
	case BarTwoMinutes:
		return "2 mins", true
	case BarThreeMinutes:
		return "3 mins", true
	case BarFiveMinutes:
		return "5 mins", true
	case BarFifteenMinutes:
		return "15 mins", true
	case BarThirtyMinutes:
		return "30 mins", true
	case BarOneHour:
		return "1 hour", true
	case BarOneDay:
		return "1 day", true
	case BarOneWeek:
		return "1 week", true
	case BarOneMonth:
		return "1 month", true
	case BarThreeMonths:
		return "3 months", true
	case BarOneYear:
		return "1 year", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type WhatToShow int

const (
	ShowTrades WhatToShow = iota
	ShowMidpoint
	ShowBid
	ShowAsk
	ShowBidAsk
	ShowHistoricalVolatility
	ShowOptionImpliedVolatility
)

func (w WhatToShow) code() (string, bool) {
	switch w {
	case ShowTrades:
		return "TRADES", true
	case ShowMidpoint:
		return "MIDPOINT", true
	case ShowBid:
		return "BID", true
	case ShowAsk:
		return "ASK", true
	case ShowBidAsk:
		return "BID_ASK", true
	case ShowHistoricalVolatility:
		return "HISTORICAL_VOLATILITY", true
	case ShowOptionImpliedVolatility:
		return "OPTION_IMPLIED_VOLATILITY", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type DepthOperation int

const (
	DepthInsert DepthOperation = iota
	DepthUpdate
	DepthDelete
)

func (d DepthOperation) code() (string, bool) {
	switch d {
	case DepthInsert:
		return "0", true
	case DepthUpdate:
		return "1", true
	case DepthDelete:
		return "2", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type DepthSide int

const (
	DepthAsk DepthSide = iota
	DepthBid
)

func (d DepthSide) code() (string, bool) {
	switch d {
	case DepthAsk:
		return "0", true
	case DepthBid:
		return "1", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type NewsType int

const (
	NewsUnknown NewsType = iota
	NewsRegular
	NewsExchangeUnavailable
	NewsExchangeAvailable
)

func (n NewsType) code() (string, bool) {
	switch n {
	case NewsUnknown:
		return "0", true
	case NewsRegular:
		return "1", true
	case NewsExchangeUnavailable:
		return "2", true
	case NewsExchangeAvailable:
		return "3", true
	}
	return "", false
}

// -----------------------------------------------------------------------------

type SecurityIDType int

const (
	SecIDNone SecurityIDType = iota
	SecIDCUSIP
	SecIDSEDOL
	SecIDISIN
	SecIDRIC
)

func (s SecurityIDType) code() (string, bool) {
	switch s {
	case SecIDNone:
		return "", true
	case SecIDCUSIP:
		return "CUSIP", true
	case SecIDSEDOL:
		return "SEDOL", true
	case SecIDISIN:
		return "ISIN", true
	case SecIDRIC:
		return "RIC", true
	}
	return "", false
}

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

var (
	SecurityTypes = symbols.MustBuild("SecurityType", []SecurityType{
		SecTypeNone, SecTypeStock, SecTypeOption, SecTypeFuture, SecTypeIndex,
		SecTypeFutureOption, SecTypeCash, SecTypeBag, SecTypeBond, SecTypeWarrant,
	}, SecurityType.code)

	Rights = symbols.MustBuild("Right", []Right{RightNone, RightPut, RightCall}, Right.code)

	Actions = symbols.MustBuild("Action", []Action{ActionBuy, ActionSell, ActionSellShort}, Action.code)

	OrderTypes = symbols.MustBuild("OrderType", []OrderType{
		OrderTypeNone, OrderTypeMarket, OrderTypeMarketOnClose, OrderTypeLimit,
		OrderTypeLimitOnClose, OrderTypePeggedToMarket, OrderTypeStop, OrderTypeStopLimit,
		OrderTypeTrailingStop, OrderTypeTrailingStopLimit, OrderTypeRelative, OrderTypeVWAP,
		OrderTypeVolatility, OrderTypeMarketIfTouched, OrderTypeLimitIfTouched,
	}, OrderType.code)

	TimesInForce = symbols.MustBuild("TimeInForce", []TimeInForce{
		TifNone, TifDay, TifGoodTillCancel, TifImmediateOrCancel, TifGoodTillDate, TifOpening, TifFillOrKill,
	}, TimeInForce.code)

	OcaTypes = symbols.MustBuild("OcaType", []OcaType{
		OcaNone, OcaCancelWithBlocking, OcaReduceWithBlocking, OcaReduceWithoutBlocking,
	}, OcaType.code)

	TriggerMethods = symbols.MustBuild("TriggerMethod", []TriggerMethod{
		TriggerDefault, TriggerDoubleBidAsk, TriggerLast, TriggerDoubleLast,
		TriggerBidAsk, TriggerLastOrBidAsk, TriggerMidpoint,
	}, TriggerMethod.code)

	Rule80As = symbols.MustBuild("Rule80A", []Rule80A{
		Rule80ANone, Rule80AIndividual, Rule80AAgency, Rule80AAgentOtherMember,
		Rule80AIndividualPTIA, Rule80AAgencyPTIA, Rule80AAgentOtherMemberPTIA,
		Rule80AIndividualPT, Rule80AAgencyPT, Rule80AAgentOtherMemberPT,
	}, Rule80A.code)

	OpenCloses = symbols.MustBuild("OpenClose", []OpenClose{
		OpenCloseUndefined, OpenCloseOpen, OpenCloseClose,
	}, OpenClose.code)

	OrderOrigins = symbols.MustBuild("OrderOrigin", []OrderOrigin{OriginCustomer, OriginFirm}, OrderOrigin.code)

	ExerciseActions = symbols.MustBuild("ExerciseAction", []ExerciseAction{ExerciseExercise, ExerciseLapse}, ExerciseAction.code)

	FADataTypes = symbols.MustBuild("FADataType", []FADataType{FAGroups, FAProfiles, FAAliases}, FADataType.code)

	LogLevels = symbols.MustBuild("LogLevel", []LogLevel{
		LogSystem, LogError, LogWarning, LogInformation, LogDetail,
	}, LogLevel.code)

	BarSizes = symbols.MustBuild("BarSize", []BarSize{
		BarOneSecond, BarFiveSeconds, BarFifteenSeconds, BarThirtySeconds,
		BarOneMinute, BarTwoMinutes, BarThreeMinutes, BarFiveMinutes,
		BarFifteenMinutes, BarThirtyMinutes, BarOneHour, BarOneDay,
		BarOneWeek, BarOneMonth, BarThreeMonths, BarOneYear,
	}, BarSize.code)

	WhatToShows = symbols.MustBuild("WhatToShow", []WhatToShow{
		ShowTrades, ShowMidpoint, ShowBid, ShowAsk, ShowBidAsk,
		ShowHistoricalVolatility, ShowOptionImpliedVolatility,
	}, WhatToShow.code)

	DepthOperations = symbols.MustBuild("DepthOperation", []DepthOperation{DepthInsert, DepthUpdate, DepthDelete}, DepthOperation.code)

	DepthSides = symbols.MustBuild("DepthSide", []DepthSide{DepthAsk, DepthBid}, DepthSide.code)

	NewsTypes = symbols.MustBuild("NewsType", []NewsType{
		NewsUnknown, NewsRegular, NewsExchangeUnavailable, NewsExchangeAvailable,
	}, NewsType.code)

	SecurityIDTypes = symbols.MustBuild("SecurityIDType", []SecurityIDType{
		SecIDNone, SecIDCUSIP, SecIDSEDOL, SecIDISIN, SecIDRIC,
	}, SecurityIDType.code)
)

// -----------------------------------------------------------------------------

// ParseSecurityType maps a config string such as "STK" to its variant.
func ParseSecurityType(s string) (SecurityType, error) {
	return SecurityTypes.Decode(s)
}

// ParseRight maps "P"/"C"/"" to a Right.
func ParseRight(s string) (Right, error) {
	return Rights.Decode(s)
}
