package storage

import (
	"database/sql"
	"fmt"
	"time"

	"twsclient/src/logger"
	"twsclient/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteJournal(cfg *models.MConfig, log *logger.Logger) (*SQLiteJournal, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("sqlite journal: db_path is empty")
	}
	return &SQLiteJournal{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			order_id INTEGER PRIMARY KEY,
			symbol TEXT,
			sec_type TEXT,
			action TEXT,
			quantity INTEGER,
			order_type TEXT,
			status TEXT,
			filled INTEGER,
			remaining INTEGER,
			avg_fill_price REAL,
			contract TEXT,
			order_params TEXT,
			submitted_at INTEGER,
			updated_at INTEGER
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create orders: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS order_status (
			order_id INTEGER,
			status TEXT,
			filled INTEGER,
			remaining INTEGER,
			avg_fill_price REAL,
			last_fill_price REAL,
			perm_id INTEGER,
			why_held TEXT,
			recorded_at INTEGER
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create order_status: %w", err)
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS order_status_order ON order_status (order_id, recorded_at)`); err != nil {
		return fmt.Errorf("failed to index order_status: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) SaveOrder(rec models.MOrderRecord) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		INSERT INTO orders (order_id, symbol, sec_type, action, quantity, order_type, status, filled, remaining, avg_fill_price, contract, order_params, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			symbol = excluded.symbol,
			sec_type = excluded.sec_type,
			action = excluded.action,
			quantity = excluded.quantity,
			order_type = excluded.order_type,
			status = excluded.status,
			filled = excluded.filled,
			remaining = excluded.remaining,
			avg_fill_price = excluded.avg_fill_price,
			contract = excluded.contract,
			order_params = excluded.order_params,
			updated_at = excluded.updated_at
	`, row.args()...)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) AppendStatus(st models.MOrderStatus, at time.Time) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO order_status (order_id, status, filled, remaining, avg_fill_price, last_fill_price, perm_id, why_held, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.OrderID, string(st.Status), st.Filled, st.Remaining, st.AvgFillPrice, st.LastFillPrice, st.PermID, st.WhyHeld, at.UnixNano())
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE orders SET status = ?, filled = ?, remaining = ?, avg_fill_price = ?, updated_at = ?
		WHERE order_id = ?
	`, string(st.Status), st.Filled, st.Remaining, st.AvgFillPrice, at.UnixNano(), st.OrderID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) RecentOrders(limit int) ([]models.MOrderRecord, error) {
	rows, err := d.DB.Query(`SELECT `+orderColumns+` FROM orders ORDER BY updated_at DESC, order_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// StatusHistory returns every recorded transition of orderID, oldest first.
func (d *SQLiteJournal) StatusHistory(orderID int) ([]models.MOrderStatus, error) {
	rows, err := d.DB.Query(`
		SELECT order_id, status, filled, remaining, avg_fill_price, last_fill_price, perm_id, why_held
		FROM order_status WHERE order_id = ? ORDER BY recorded_at, rowid
	`, orderID)
	if err != nil {
		return nil, err
	}
	return scanStatuses(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) CleanupOldData(retention time.Duration) error {
	cutoff := time.Now().Add(-retention).UnixNano()

	d.Logger.Info("Cleaning up orders not updated for %v...", retention)

	if _, err := d.DB.Exec("DELETE FROM order_status WHERE order_id IN (SELECT order_id FROM orders WHERE updated_at < ?)", cutoff); err != nil {
		d.Logger.Error("Cleanup order_status error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM orders WHERE updated_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup orders error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
