package interfaces

import "twsclient/src/models"

// -----------------------------------------------------------------------------
// IClientState is the read and control surface the monitoring servers use.
// The gateway client implements it.
// -----------------------------------------------------------------------------

type IClientState interface {
	IsConnected() bool
	ServerVersion() int
	PendingCalls() int

	Snapshot(requestID int) (models.MMarketDataSnapshot, bool)
	Snapshots() []models.MMarketDataSnapshot
	History(requestID, n int) ([]models.MMarketDataEvent, bool)

	Orders() []models.MOrderRecord

	Policy() models.MSessionPolicy
	SetPolicy(policy models.MSessionPolicy)

	// -----------------------------------------------------------------------------
	// Subscription control

	RequestMarketData(contract models.MContract, genericTicks string, snapshot bool) (int, error)
	CancelMarketData(requestID int) error
}
