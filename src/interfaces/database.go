package interfaces

import (
	"time"

	"twsclient/src/models"
)

// -----------------------------------------------------------------------------
// IOrderJournal persists submitted orders and every status they pass through.
// -----------------------------------------------------------------------------

type IOrderJournal interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema. Existing rows are kept.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveOrder inserts or replaces the record for rec.OrderID.
	SaveOrder(rec models.MOrderRecord) error

	// -----------------------------------------------------------------------------

	// AppendStatus records one status transition and refreshes the fill
	// columns of the order row.
	AppendStatus(status models.MOrderStatus, at time.Time) error

	// -----------------------------------------------------------------------------

	// RecentOrders returns up to limit records, newest first.
	RecentOrders(limit int) ([]models.MOrderRecord, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes orders last updated before now-retention.
	CleanupOldData(retention time.Duration) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
