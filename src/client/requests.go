package client

import (
	"context"

	"twsclient/src/models"
	"twsclient/src/protocol"
)

// Every method below fails with NotConnected when there is no session and
// with ProtocolTooOld, without writing anything, when the negotiated server
// version lacks a feature the request uses.

// -----------------------------------------------------------------------------
// Market data
// -----------------------------------------------------------------------------

// RequestMarketData starts a subscription and returns its request id. The
// snapshot exists before the request is written.
func (c *Client) RequestMarketData(contract models.MContract, genericTicks string, snapshot bool) (int, error) {
	id := c.NextRequestID()
	c.engine.Subscribe(id, contract)
	err := c.send(&protocol.MktDataRequest{TickerID: id, Contract: contract, GenericTicks: genericTicks, Snapshot: snapshot})
	if err != nil {
		c.engine.Unsubscribe(id)
		return 0, err
	}
	return id, nil
}

func (c *Client) CancelMarketData(requestID int) error {
	c.engine.Unsubscribe(requestID)
	return c.send(&protocol.CancelMktDataRequest{TickerID: requestID})
}

func (c *Client) RequestMarketDepth(contract models.MContract, rows int) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.MktDepthRequest{TickerID: id, Contract: contract, NumRows: rows})
}

func (c *Client) CancelMarketDepth(requestID int) error {
	return c.send(&protocol.CancelMktDepthRequest{TickerID: requestID})
}

func (c *Client) RequestRealTimeBars(contract models.MContract, barSize int, what models.WhatToShow, useRTH bool) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.RealTimeBarsRequest{TickerID: id, Contract: contract, BarSize: barSize, WhatToShow: what, UseRTH: useRTH})
}

func (c *Client) CancelRealTimeBars(requestID int) error {
	return c.send(&protocol.CancelRealTimeBarsRequest{TickerID: requestID})
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// PlaceOrder submits order under a freshly minted order id.
func (c *Client) PlaceOrder(contract models.MContract, order models.MOrder) (int, error) {
	id := c.NextOrderID()
	return id, c.ModifyOrder(id, contract, order)
}

// ModifyOrder resubmits under an existing order id.
func (c *Client) ModifyOrder(orderID int, contract models.MContract, order models.MOrder) error {
	_, known := c.orders.get(orderID)
	c.orders.submit(orderID, contract, order)
	err := c.send(&protocol.PlaceOrderRequest{OrderID: orderID, Contract: contract, Order: order})
	if err != nil && !known {
		c.orders.forget(orderID)
	}
	return err
}

func (c *Client) CancelOrder(orderID int) error {
	return c.send(&protocol.CancelOrderRequest{OrderID: orderID})
}

func (c *Client) RequestOpenOrders() error {
	return c.send(&protocol.OpenOrdersRequest{})
}

func (c *Client) RequestAllOpenOrders() error {
	return c.send(&protocol.AllOpenOrdersRequest{})
}

func (c *Client) RequestAutoOpenOrders(autoBind bool) error {
	return c.send(&protocol.AutoOpenOrdersRequest{AutoBind: autoBind})
}

// RequestIDs asks the peer for a fresh next valid order id.
func (c *Client) RequestIDs(n int) error {
	return c.send(&protocol.IDsRequest{NumIDs: n})
}

func (c *Client) ExerciseOptions(contract models.MContract, action models.ExerciseAction, quantity int, account string, override bool) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.ExerciseOptionsRequest{
		TickerID: id,
		Contract: contract,
		Action:   action,
		Quantity: quantity,
		Account:  account,
		Override: override,
	})
}

// -----------------------------------------------------------------------------
// Account
// -----------------------------------------------------------------------------

func (c *Client) RequestAccountUpdates(subscribe bool, account string) error {
	return c.send(&protocol.AccountUpdatesRequest{Subscribe: subscribe, Account: account})
}

func (c *Client) RequestManagedAccounts() error {
	return c.send(&protocol.ManagedAccountsRequest{})
}

func (c *Client) RequestFA(dataType models.FADataType) error {
	return c.send(&protocol.FARequest{DataType: dataType})
}

func (c *Client) ReplaceFA(dataType models.FADataType, xml string) error {
	return c.send(&protocol.ReplaceFARequest{DataType: dataType, XML: xml})
}

// -----------------------------------------------------------------------------
// Reference data
// -----------------------------------------------------------------------------

func (c *Client) RequestContractDetails(contract models.MContract) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.ContractDetailsRequest{RequestID: id, Contract: contract})
}

// ContractDetails waits for every contract matching contract. Bond details
// are included.
func (c *Client) ContractDetails(ctx context.Context, contract models.MContract) ([]models.MContractDetails, error) {
	id := c.NextRequestID()
	items, err := c.call(ctx, id, &protocol.ContractDetailsRequest{RequestID: id, Contract: contract})
	return collect[models.MContractDetails](items), err
}

func (c *Client) RequestExecutions(filter models.MExecutionFilter) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.ExecutionsRequest{RequestID: id, Filter: filter})
}

// Executions waits for the executions matching filter. Servers that do not
// echo the request id leave it to the timeout.
func (c *Client) Executions(ctx context.Context, filter models.MExecutionFilter) ([]models.MExecutionReport, error) {
	id := c.NextRequestID()
	items, err := c.call(ctx, id, &protocol.ExecutionsRequest{RequestID: id, Filter: filter})
	return collect[models.MExecutionReport](items), err
}

// HistoricalQuery describes one bar request.
type HistoricalQuery struct {
	Contract    models.MContract
	EndDateTime string
	Duration    string
	BarSize     models.BarSize
	WhatToShow  models.WhatToShow
	UseRTH      bool
	FormatDate  int
}

func (q HistoricalQuery) request(id int) *protocol.HistoricalDataRequest {
	return &protocol.HistoricalDataRequest{
		TickerID:    id,
		Contract:    q.Contract,
		EndDateTime: q.EndDateTime,
		BarSize:     q.BarSize,
		Duration:    q.Duration,
		UseRTH:      q.UseRTH,
		WhatToShow:  q.WhatToShow,
		FormatDate:  q.FormatDate,
	}
}

func (c *Client) RequestHistoricalData(q HistoricalQuery) (int, error) {
	id := c.NextRequestID()
	return id, c.send(q.request(id))
}

// HistoricalData waits for the bars of q.
func (c *Client) HistoricalData(ctx context.Context, q HistoricalQuery) ([]models.MBar, error) {
	id := c.NextRequestID()
	items, err := c.call(ctx, id, q.request(id))
	return collect[models.MBar](items), err
}

func (c *Client) CancelHistoricalData(requestID int) error {
	return c.send(&protocol.CancelHistoricalDataRequest{TickerID: requestID})
}

func (c *Client) RequestFundamentalData(contract models.MContract, reportType string) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.FundamentalDataRequest{RequestID: id, Contract: contract, ReportType: reportType})
}

func (c *Client) CancelFundamentalData(requestID int) error {
	return c.send(&protocol.CancelFundamentalDataRequest{RequestID: requestID})
}

// -----------------------------------------------------------------------------
// Scanner
// -----------------------------------------------------------------------------

func (c *Client) RequestScannerParameters() error {
	return c.send(&protocol.ScannerParametersRequest{})
}

func (c *Client) RequestScannerSubscription(sub models.MScannerSubscription) (int, error) {
	id := c.NextRequestID()
	return id, c.send(&protocol.ScannerSubscriptionRequest{TickerID: id, Subscription: sub})
}

func (c *Client) CancelScannerSubscription(requestID int) error {
	return c.send(&protocol.CancelScannerRequest{TickerID: requestID})
}

// -----------------------------------------------------------------------------
// Misc
// -----------------------------------------------------------------------------

func (c *Client) RequestNewsBulletins(allMessages bool) error {
	return c.send(&protocol.NewsBulletinsRequest{AllMessages: allMessages})
}

func (c *Client) CancelNewsBulletins() error {
	return c.send(&protocol.CancelNewsBulletinsRequest{})
}

func (c *Client) SetServerLogLevel(level models.LogLevel) error {
	return c.send(&protocol.ServerLogLevelRequest{Level: level})
}

func (c *Client) RequestCurrentTime() error {
	return c.send(&protocol.CurrentTimeRequest{})
}

// -----------------------------------------------------------------------------

// call registers id with the correlator, sends req and waits for the reply
// set.
func (c *Client) call(ctx context.Context, id int, req protocol.Request) ([]any, error) {
	p := c.pending.register(id)
	if err := c.send(req); err != nil {
		c.pending.drop(id)
		return nil, err
	}
	return c.pending.wait(ctx, id, p, c.opts.RequestTimeout)
}
