package interfaces

import "twsclient/src/models"

// -----------------------------------------------------------------------------
// IEventHandler receives everything the dispatcher decodes. All methods run
// on the dispatcher goroutine and must not block.
// -----------------------------------------------------------------------------

type IEventHandler interface {
	// Connection lifecycle
	OnConnected(serverVersion int, serverTime string)
	OnDisconnected(cause error)
	OnInternalFault(err error)

	// Raw ticks, before aggregation
	OnTickPrice(tick models.MTickPrice)
	OnTickSize(tick models.MTickSize)
	OnTickOptionComputation(tick models.MTickOptionComputation)
	OnTickGeneric(tick models.MTickGeneric)
	OnTickString(tick models.MTickString)
	OnTickEFP(tick models.MTickEFP)
	OnTickSnapshotEnd(requestID int)

	// Aggregated market data
	OnMarketData(event models.MMarketDataEvent)

	// Orders
	OnNextValidID(orderID int)
	OnOrderStatus(status models.MOrderStatus, record *models.MOrderRecord)
	OnOpenOrder(order models.MOpenOrder)
	OnOpenOrderEnd()
	OnExecution(report models.MExecutionReport)
	OnExecutionEnd(requestID int)

	// Errors reported by the peer
	OnError(event models.MErrorEvent)

	// Account
	OnAccountValue(value models.MAccountValue)
	OnPortfolioValue(value models.MPortfolioValue)
	OnAccountTime(timestamp string)
	OnAccountDownloadEnd(account string)
	OnManagedAccounts(accounts []string)
	OnReceiveFA(dataType models.FADataType, xml string)

	// Reference and historical data
	OnContractDetails(requestID int, details models.MContractDetails)
	OnBondContractDetails(requestID int, details models.MContractDetails)
	OnContractDetailsEnd(requestID int)
	OnHistoricalData(requestID int, start, end string, bars []models.MBar)
	OnRealTimeBar(requestID int, bar models.MRealTimeBar)
	OnFundamentalData(requestID int, data string)
	OnDeltaNeutralValidation(requestID int, underComp models.MUnderComp)

	// Depth, news, scanner, clock
	OnMarketDepth(depth models.MMarketDepth)
	OnNewsBulletin(bulletin models.MNewsBulletin)
	OnScannerParameters(xml string)
	OnScannerData(requestID int, rows []models.MScannerData)
	OnCurrentTime(unixSeconds int64)
}

// -----------------------------------------------------------------------------
// NoopHandler ignores every event. Embed it and override what you need.
// -----------------------------------------------------------------------------

type NoopHandler struct{}

func (NoopHandler) OnConnected(int, string)                                 {}
func (NoopHandler) OnDisconnected(error)                                    {}
func (NoopHandler) OnInternalFault(error)                                   {}
func (NoopHandler) OnTickPrice(models.MTickPrice)                           {}
func (NoopHandler) OnTickSize(models.MTickSize)                             {}
func (NoopHandler) OnTickOptionComputation(models.MTickOptionComputation)   {}
func (NoopHandler) OnTickGeneric(models.MTickGeneric)                       {}
func (NoopHandler) OnTickString(models.MTickString)                         {}
func (NoopHandler) OnTickEFP(models.MTickEFP)                               {}
func (NoopHandler) OnTickSnapshotEnd(int)                                   {}
func (NoopHandler) OnMarketData(models.MMarketDataEvent)                    {}
func (NoopHandler) OnNextValidID(int)                                       {}
func (NoopHandler) OnOrderStatus(models.MOrderStatus, *models.MOrderRecord) {}
func (NoopHandler) OnOpenOrder(models.MOpenOrder)                           {}
func (NoopHandler) OnOpenOrderEnd()                                         {}
func (NoopHandler) OnExecution(models.MExecutionReport)                     {}
func (NoopHandler) OnExecutionEnd(int)                                      {}
func (NoopHandler) OnError(models.MErrorEvent)                              {}
func (NoopHandler) OnAccountValue(models.MAccountValue)                     {}
func (NoopHandler) OnPortfolioValue(models.MPortfolioValue)                 {}
func (NoopHandler) OnAccountTime(string)                                    {}
func (NoopHandler) OnAccountDownloadEnd(string)                             {}
func (NoopHandler) OnManagedAccounts([]string)                              {}
func (NoopHandler) OnReceiveFA(models.FADataType, string)                   {}
func (NoopHandler) OnContractDetails(int, models.MContractDetails)          {}
func (NoopHandler) OnBondContractDetails(int, models.MContractDetails)      {}
func (NoopHandler) OnContractDetailsEnd(int)                                {}
func (NoopHandler) OnHistoricalData(int, string, string, []models.MBar)     {}
func (NoopHandler) OnRealTimeBar(int, models.MRealTimeBar)                  {}
func (NoopHandler) OnFundamentalData(int, string)                           {}
func (NoopHandler) OnDeltaNeutralValidation(int, models.MUnderComp)         {}
func (NoopHandler) OnMarketDepth(models.MMarketDepth)                       {}
func (NoopHandler) OnNewsBulletin(models.MNewsBulletin)                     {}
func (NoopHandler) OnScannerParameters(string)                              {}
func (NoopHandler) OnScannerData(int, []models.MScannerData)                {}
func (NoopHandler) OnCurrentTime(int64)                                     {}

var _ IEventHandler = NoopHandler{}
