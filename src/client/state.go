package client

import (
	"twsclient/src/interfaces"
	"twsclient/src/models"
)

var _ interfaces.IClientState = (*Client)(nil)

// Read side of the client state. Everything returned is a copy.

func (c *Client) Policy() models.MSessionPolicy {
	return c.engine.Policy()
}

func (c *Client) SetPolicy(p models.MSessionPolicy) {
	c.engine.SetPolicy(p)
}

func (c *Client) Snapshot(requestID int) (models.MMarketDataSnapshot, bool) {
	return c.engine.Snapshot(requestID)
}

func (c *Client) Snapshots() []models.MMarketDataSnapshot {
	return c.engine.Snapshots()
}

// History returns up to n of the latest market data events of requestID.
func (c *Client) History(requestID, n int) ([]models.MMarketDataEvent, bool) {
	return c.engine.History(requestID, n)
}

// Order returns the record of a live order submitted by this process.
func (c *Client) Order(orderID int) (models.MOrderRecord, bool) {
	return c.orders.get(orderID)
}

// Orders lists the live orders submitted by this process. Orders that
// reached a terminal status are only in the journal.
func (c *Client) Orders() []models.MOrderRecord {
	return c.orders.list()
}

// PendingCalls reports how many one-shot calls await their replies.
func (c *Client) PendingCalls() int {
	return c.pending.size()
}
