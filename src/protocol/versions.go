package protocol

// ClientVersion is the protocol version announced during the handshake.
const ClientVersion = 46

// MaxServerVersion is the newest server version whose field set is fully
// understood by the encoders and decoders in this package.
const MaxServerVersion = 47

// Server versions that introduced optional fields or whole requests.
const (
	MinServerVerLocalSymbol        = 2
	MinServerVerHandshakeClientID  = 3
	MinServerVerParentID           = 4
	MinServerVerContractDetails    = 4
	MinServerVerExtendedOrder      = 5
	MinServerVerMktDepth           = 6
	MinServerVerHidden             = 7
	MinServerVerComboLegs          = 8
	MinServerVerExecFilter         = 9
	MinServerVerAccountCode        = 9
	MinServerVerDiscretionary      = 10
	MinServerVerGoodAfterTime      = 11
	MinServerVerGoodTillDate       = 12
	MinServerVerFAFields           = 13
	MinServerVerPrimaryExch        = 14
	MinServerVerMultiplier         = 15
	MinServerVerHistoricalData     = 16
	MinServerVerInstitutional      = 18
	MinServerVerMktDepthRows       = 19
	MinServerVerOrderCombinations  = 19
	MinServerVerHandshakeTime      = 20
	MinServerVerHistoricalEndDate  = 20
	MinServerVerExerciseOptions    = 21
	MinServerVerOverridePct        = 22
	MinServerVerScanner            = 24
	MinServerVerCancelHistorical   = 24
	MinServerVerScannerVolume      = 25
	MinServerVerVolatilityOrders   = 26
	MinServerVerScannerStockType   = 27
	MinServerVerDeltaNeutralType   = 28
	MinServerVerTrailStopPrice     = 30
	MinServerVerIncludeExpired     = 31
	MinServerVerGenericTicks       = 31
	MinServerVerCurrentTime        = 33
	MinServerVerRealTimeBars       = 34
	MinServerVerScaleOrders        = 35
	MinServerVerSnapshotMktData    = 35
	MinServerVerSShortComboLegs    = 35
	MinServerVerWhatIfOrders       = 36
	MinServerVerContractConID      = 37
	MinServerVerOutsideRth         = 38
	MinServerVerPTAOrders          = 39
	MinServerVerFundamentalData    = 40
	MinServerVerUnderComp          = 40
	MinServerVerContractDataChain  = 40
	MinServerVerScaleOrders2       = 40
	MinServerVerAlgoOrders         = 41
	MinServerVerExecutionDataChain = 42
	MinServerVerNotHeld            = 44
	MinServerVerSecIDType          = 45
	MinServerVerPlaceOrderConID    = 46
	MinServerVerReqMktDataConID    = 47
)

// volatilityWatermarkVersion is the single server version that carried the
// stock range of volatility orders inside the volatility block.
const volatilityWatermarkVersion = 26
