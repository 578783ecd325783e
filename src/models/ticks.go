package models

import (
	"strconv"

	"twsclient/src/symbols"
)

// TickType is the field selector carried by every tick message. Its wire code
// is the decimal value.
type TickType int

const (
	TickBidSize TickType = iota
	TickBid
	TickAsk
	TickAskSize
	TickLast
	TickLastSize
	TickHigh
	TickLow
	TickVolume
	TickClose
	TickBidOption
	TickAskOption
	TickLastOption
	TickModelOption
	TickOpen
	TickLow13Week
	TickHigh13Week
	TickLow26Week
	TickHigh26Week
	TickLow52Week
	TickHigh52Week
	TickAvgVolume
	TickOpenInterest
	TickOptionHistoricalVol
	TickOptionImpliedVol
	TickOptionBidExch
	TickOptionAskExch
	TickOptionCallOpenInterest
	TickOptionPutOpenInterest
	TickOptionCallVolume
	TickOptionPutVolume
	TickIndexFuturePremium
	TickBidExch
	TickAskExch
	TickAuctionVolume
	TickAuctionPrice
	TickAuctionImbalance
	TickMarkPrice
	TickBidEFP
	TickAskEFP
	TickLastEFP
	TickOpenEFP
	TickHighEFP
	TickLowEFP
	TickCloseEFP
	TickLastTimestamp
	TickShortable
	TickFundamentalRatios
	TickRTVolume
	TickHalted
)

// TickSyntheticTrade marks an event generated locally to close a gap between
// the reported and the reconstructed volume. It never appears on the wire.
const TickSyntheticTrade TickType = -1

var tickNames = [...]string{
	"bidSize", "bidPrice", "askPrice", "askSize", "lastPrice", "lastSize",
	"high", "low", "volume", "close",
	"bidOptComp", "askOptComp", "lastOptComp", "modelOptComp",
	"open", "13WeekLow", "13WeekHigh", "26WeekLow", "26WeekHigh", "52WeekLow", "52WeekHigh",
	"AvgVolume", "OpenInterest", "OptionHistoricalVolatility", "OptionImpliedVolatility",
	"OptionBidExchStr", "OptionAskExchStr", "OptionCallOpenInterest", "OptionPutOpenInterest",
	"OptionCallVolume", "OptionPutVolume", "IndexFuturePremium", "bidExch", "askExch",
	"auctionVolume", "auctionPrice", "auctionImbalance", "markPrice",
	"bidEFP", "askEFP", "lastEFP", "openEFP", "highEFP", "lowEFP", "closeEFP",
	"lastTimestamp", "shortable", "fundamentals", "RTVolume", "halted",
}

func (t TickType) code() (string, bool) {
	if t < TickBidSize || t > TickHalted {
		return "", false
	}
	return strconv.Itoa(int(t)), true
}

func (t TickType) String() string {
	if t == TickSyntheticTrade {
		return "syntheticTrade"
	}
	if t < TickBidSize || int(t) >= len(tickNames) {
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
	return tickNames[t]
}

var TickTypes = symbols.MustBuild("TickType", tickVariants(), TickType.code)

func tickVariants() []TickType {
	out := make([]TickType, 0, TickHalted+1)
	for t := TickBidSize; t <= TickHalted; t++ {
		out = append(out, t)
	}
	return out
}
