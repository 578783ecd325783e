package interfaces

import "twsclient/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger pushes aggregated market data to external listeners.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast queues one event for every connected listener.
	Broadcast(event models.MMarketDataEvent)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
