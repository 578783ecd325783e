package protocol

import (
	"strconv"

	"twsclient/src/symbols"
)

// OutgoingMessage tags every client request.
type OutgoingMessage int

const (
	ReqMktData             OutgoingMessage = 1
	CancelMktData          OutgoingMessage = 2
	PlaceOrder             OutgoingMessage = 3
	CancelOrder            OutgoingMessage = 4
	ReqOpenOrders          OutgoingMessage = 5
	ReqAccountData         OutgoingMessage = 6
	ReqExecutions          OutgoingMessage = 7
	ReqIDs                 OutgoingMessage = 8
	ReqContractData        OutgoingMessage = 9
	ReqMktDepth            OutgoingMessage = 10
	CancelMktDepth         OutgoingMessage = 11
	ReqNewsBulletins       OutgoingMessage = 12
	CancelNewsBulletins    OutgoingMessage = 13
	SetServerLogLevel      OutgoingMessage = 14
	ReqAutoOpenOrders      OutgoingMessage = 15
	ReqAllOpenOrders       OutgoingMessage = 16
	ReqManagedAccts        OutgoingMessage = 17
	ReqFA                  OutgoingMessage = 18
	ReplaceFA              OutgoingMessage = 19
	ReqHistoricalData      OutgoingMessage = 20
	ExerciseOptions        OutgoingMessage = 21
	ReqScannerSubscription OutgoingMessage = 22
	CancelScanner          OutgoingMessage = 23
	ReqScannerParameters   OutgoingMessage = 24
	CancelHistoricalData   OutgoingMessage = 25
	ReqCurrentTime         OutgoingMessage = 49
	ReqRealTimeBars        OutgoingMessage = 50
	CancelRealTimeBars     OutgoingMessage = 51
	ReqFundamentalData     OutgoingMessage = 52
	CancelFundamentalData  OutgoingMessage = 53
)

var outgoingNames = map[OutgoingMessage]string{
	ReqMktData: "REQ_MKT_DATA", CancelMktData: "CANCEL_MKT_DATA", PlaceOrder: "PLACE_ORDER",
	CancelOrder: "CANCEL_ORDER", ReqOpenOrders: "REQ_OPEN_ORDERS", ReqAccountData: "REQ_ACCOUNT_DATA",
	ReqExecutions: "REQ_EXECUTIONS", ReqIDs: "REQ_IDS", ReqContractData: "REQ_CONTRACT_DATA",
	ReqMktDepth: "REQ_MKT_DEPTH", CancelMktDepth: "CANCEL_MKT_DEPTH", ReqNewsBulletins: "REQ_NEWS_BULLETINS",
	CancelNewsBulletins: "CANCEL_NEWS_BULLETINS", SetServerLogLevel: "SET_SERVER_LOGLEVEL",
	ReqAutoOpenOrders: "REQ_AUTO_OPEN_ORDERS", ReqAllOpenOrders: "REQ_ALL_OPEN_ORDERS",
	ReqManagedAccts: "REQ_MANAGED_ACCTS", ReqFA: "REQ_FA", ReplaceFA: "REPLACE_FA",
	ReqHistoricalData: "REQ_HISTORICAL_DATA", ExerciseOptions: "EXERCISE_OPTIONS",
	ReqScannerSubscription: "REQ_SCANNER_SUBSCRIPTION", CancelScanner: "CANCEL_SCANNER_SUBSCRIPTION",
	ReqScannerParameters: "REQ_SCANNER_PARAMETERS", CancelHistoricalData: "CANCEL_HISTORICAL_DATA",
	ReqCurrentTime: "REQ_CURRENT_TIME", ReqRealTimeBars: "REQ_REAL_TIME_BARS",
	CancelRealTimeBars: "CANCEL_REAL_TIME_BARS", ReqFundamentalData: "REQ_FUNDAMENTAL_DATA",
	CancelFundamentalData: "CANCEL_FUNDAMENTAL_DATA",
}

func (m OutgoingMessage) code() (string, bool) {
	if _, ok := outgoingNames[m]; !ok {
		return "", false
	}
	return strconv.Itoa(int(m)), true
}

func (m OutgoingMessage) String() string {
	if n, ok := outgoingNames[m]; ok {
		return n
	}
	return "OUT(" + strconv.Itoa(int(m)) + ")"
}

// -----------------------------------------------------------------------------

// IncomingMessage tags every message sent by the peer.
type IncomingMessage int

const (
	TickPrice              IncomingMessage = 1
	TickSize               IncomingMessage = 2
	OrderStatus            IncomingMessage = 3
	ErrMsg                 IncomingMessage = 4
	OpenOrder              IncomingMessage = 5
	AcctValue              IncomingMessage = 6
	PortfolioValue         IncomingMessage = 7
	AcctUpdateTime         IncomingMessage = 8
	NextValidID            IncomingMessage = 9
	ContractData           IncomingMessage = 10
	ExecutionData          IncomingMessage = 11
	MarketDepth            IncomingMessage = 12
	MarketDepthL2          IncomingMessage = 13
	NewsBulletins          IncomingMessage = 14
	ManagedAccts           IncomingMessage = 15
	ReceiveFA              IncomingMessage = 16
	HistoricalData         IncomingMessage = 17
	BondContractData       IncomingMessage = 18
	ScannerParameters      IncomingMessage = 19
	ScannerData            IncomingMessage = 20
	TickOptionComputation  IncomingMessage = 21
	TickGeneric            IncomingMessage = 45
	TickString             IncomingMessage = 46
	TickEFP                IncomingMessage = 47
	CurrentTime            IncomingMessage = 49
	RealTimeBars           IncomingMessage = 50
	FundamentalData        IncomingMessage = 51
	ContractDataEnd        IncomingMessage = 52
	OpenOrderEnd           IncomingMessage = 53
	AcctDownloadEnd        IncomingMessage = 54
	ExecutionDataEnd       IncomingMessage = 55
	DeltaNeutralValidation IncomingMessage = 56
	TickSnapshotEnd        IncomingMessage = 57
)

var incomingNames = map[IncomingMessage]string{
	TickPrice: "TICK_PRICE", TickSize: "TICK_SIZE", OrderStatus: "ORDER_STATUS", ErrMsg: "ERR_MSG",
	OpenOrder: "OPEN_ORDER", AcctValue: "ACCT_VALUE", PortfolioValue: "PORTFOLIO_VALUE",
	AcctUpdateTime: "ACCT_UPDATE_TIME", NextValidID: "NEXT_VALID_ID", ContractData: "CONTRACT_DATA",
	ExecutionData: "EXECUTION_DATA", MarketDepth: "MARKET_DEPTH", MarketDepthL2: "MARKET_DEPTH_L2",
	NewsBulletins: "NEWS_BULLETINS", ManagedAccts: "MANAGED_ACCTS", ReceiveFA: "RECEIVE_FA",
	HistoricalData: "HISTORICAL_DATA", BondContractData: "BOND_CONTRACT_DATA",
	ScannerParameters: "SCANNER_PARAMETERS", ScannerData: "SCANNER_DATA",
	TickOptionComputation: "TICK_OPTION_COMPUTATION", TickGeneric: "TICK_GENERIC",
	TickString: "TICK_STRING", TickEFP: "TICK_EFP", CurrentTime: "CURRENT_TIME",
	RealTimeBars: "REAL_TIME_BARS", FundamentalData: "FUNDAMENTAL_DATA",
	ContractDataEnd: "CONTRACT_DATA_END", OpenOrderEnd: "OPEN_ORDER_END",
	AcctDownloadEnd: "ACCT_DOWNLOAD_END", ExecutionDataEnd: "EXECUTION_DATA_END",
	DeltaNeutralValidation: "DELTA_NEUTRAL_VALIDATION", TickSnapshotEnd: "TICK_SNAPSHOT_END",
}

func (m IncomingMessage) code() (string, bool) {
	if _, ok := incomingNames[m]; !ok {
		return "", false
	}
	return strconv.Itoa(int(m)), true
}

func (m IncomingMessage) String() string {
	if n, ok := incomingNames[m]; ok {
		return n
	}
	return "IN(" + strconv.Itoa(int(m)) + ")"
}

// -----------------------------------------------------------------------------

var (
	OutgoingMessages = symbols.MustBuild("OutgoingMessage", outgoingVariants(), OutgoingMessage.code)
	IncomingMessages = symbols.MustBuild("IncomingMessage", incomingVariants(), IncomingMessage.code)
)

func outgoingVariants() []OutgoingMessage {
	out := make([]OutgoingMessage, 0, len(outgoingNames))
	for m := range outgoingNames {
		out = append(out, m)
	}
	return out
}

func incomingVariants() []IncomingMessage {
	out := make([]IncomingMessage, 0, len(incomingNames))
	for m := range incomingNames {
		out = append(out, m)
	}
	return out
}
