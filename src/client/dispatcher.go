package client

import (
	"errors"

	"twsclient/src/helpers"
	"twsclient/src/models"
	"twsclient/src/protocol"
)

// Deliver processes msg as if it had been read from the connection. Replay
// uses it to drive a client without a peer.
func (c *Client) Deliver(msg protocol.Message) {
	c.metrics.MessageDecoded(msg.Tag().String())
	c.dispatch(nil, msg)
}

// -----------------------------------------------------------------------------

// dispatch runs on the dispatcher goroutine only. sess is nil during replay.
func (c *Client) dispatch(sess *session, msg protocol.Message) {
	h := c.events()

	switch m := msg.(type) {
	// Ticks
	case *protocol.TickPriceMsg:
		h.OnTickPrice(m.MTickPrice)
		// The engine folds the carried size into the price mutation, so the
		// paired size only reaches the raw handler.
		c.publish(c.engine.ApplyPrice(m.MTickPrice))
		if size, ok := m.PairedSize(); ok {
			h.OnTickSize(size)
		}
	case *protocol.TickSizeMsg:
		h.OnTickSize(m.MTickSize)
		c.publish(c.engine.ApplySize(m.MTickSize))
	case *protocol.TickOptionComputationMsg:
		h.OnTickOptionComputation(m.MTickOptionComputation)
	case *protocol.TickGenericMsg:
		h.OnTickGeneric(m.MTickGeneric)
	case *protocol.TickStringMsg:
		h.OnTickString(m.MTickString)
	case *protocol.TickEFPMsg:
		h.OnTickEFP(m.MTickEFP)
	case *protocol.TickSnapshotEndMsg:
		h.OnTickSnapshotEnd(m.RequestID)

	// Orders
	case *protocol.NextValidIDMsg:
		c.observeNextValidID(m.OrderID)
		h.OnNextValidID(m.OrderID)
	case *protocol.OrderStatusMsg:
		rec := c.orders.status(m.MOrderStatus)
		h.OnOrderStatus(m.MOrderStatus, rec)
	case *protocol.OpenOrderMsg:
		h.OnOpenOrder(m.MOpenOrder)
	case *protocol.OpenOrderEndMsg:
		h.OnOpenOrderEnd()
	case *protocol.ExecutionDataMsg:
		c.pending.append(m.RequestID, m.MExecutionReport)
		h.OnExecution(m.MExecutionReport)
	case *protocol.ExecutionDataEndMsg:
		c.pending.complete(m.RequestID)
		h.OnExecutionEnd(m.RequestID)

	case *protocol.ErrorMsg:
		c.peerError(sess, m)

	// Account
	case *protocol.AccountValueMsg:
		h.OnAccountValue(m.MAccountValue)
	case *protocol.PortfolioValueMsg:
		h.OnPortfolioValue(m.MPortfolioValue)
	case *protocol.AccountTimeMsg:
		h.OnAccountTime(m.Timestamp)
	case *protocol.AccountDownloadEndMsg:
		h.OnAccountDownloadEnd(m.Account)
	case *protocol.ManagedAccountsMsg:
		h.OnManagedAccounts(m.List())
	case *protocol.ReceiveFAMsg:
		h.OnReceiveFA(m.DataType, m.XML)

	// Reference data
	case *protocol.ContractDataMsg:
		c.pending.append(m.RequestID, m.Details)
		h.OnContractDetails(m.RequestID, m.Details)
	case *protocol.BondContractDataMsg:
		c.pending.append(m.RequestID, m.Details)
		h.OnBondContractDetails(m.RequestID, m.Details)
	case *protocol.ContractDataEndMsg:
		c.pending.complete(m.RequestID)
		h.OnContractDetailsEnd(m.RequestID)
	case *protocol.HistoricalDataMsg:
		items := make([]any, len(m.Bars))
		for i, b := range m.Bars {
			items[i] = b
		}
		c.pending.append(m.RequestID, items...)
		c.pending.complete(m.RequestID)
		h.OnHistoricalData(m.RequestID, m.Start, m.End, m.Bars)
	case *protocol.RealTimeBarMsg:
		h.OnRealTimeBar(m.RequestID, m.Bar)
	case *protocol.FundamentalDataMsg:
		h.OnFundamentalData(m.RequestID, m.Data)
	case *protocol.DeltaNeutralValidationMsg:
		h.OnDeltaNeutralValidation(m.RequestID, m.UnderComp)

	// Others
	case *protocol.MarketDepthMsg:
		h.OnMarketDepth(m.MMarketDepth)
	case *protocol.NewsBulletinMsg:
		h.OnNewsBulletin(m.MNewsBulletin)
	case *protocol.ScannerParametersMsg:
		h.OnScannerParameters(m.XML)
	case *protocol.ScannerDataMsg:
		h.OnScannerData(m.RequestID, m.Rows)
	case *protocol.CurrentTimeMsg:
		h.OnCurrentTime(m.Time)

	default:
		c.log.Warning("No handler for %v", msg.Tag())
	}
}

// -----------------------------------------------------------------------------

// publish hands engine output to the handler outside the engine lock.
// Unknown subscriptions are counted and logged by the engine already.
func (c *Client) publish(events []models.MMarketDataEvent, err error) {
	if err != nil && !errors.Is(err, helpers.ErrUnknownSubscription) {
		c.log.Error("Market data: %v", err)
	}
	h := c.events()
	for _, ev := range events {
		h.OnMarketData(ev)
	}
}

// peerError reports the error, fails a pending call with the same id and
// drops the connection for the fatal codes.
func (c *Client) peerError(sess *session, m *protocol.ErrorMsg) {
	pe := &helpers.PeerError{RequestID: m.RequestID, Code: m.Code, Message: m.Message}
	fatal := pe.Fatal()
	c.metrics.PeerError(fatal)

	if m.RequestID >= 0 {
		c.pending.fail(m.RequestID, pe)
	}
	c.events().OnError(models.MErrorEvent{RequestID: m.RequestID, Code: m.Code, Message: m.Message, Fatal: fatal})

	if fatal {
		c.log.Error("Peer reported fatal error %d: %s", m.Code, m.Message)
		if sess != nil {
			c.teardown(sess, pe)
		}
		return
	}
	c.log.Warning("Peer error %d (request %d): %s", m.Code, m.RequestID, m.Message)
}
