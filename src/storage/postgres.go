package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"twsclient/src/logger"
	"twsclient/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresJournal keeps its tables in a schema named after the running
// executable.
func NewPostgresJournal(cfg *models.MConfig, log *logger.Logger) (*PostgresJournal, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresJournal{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresJournal initialized successfully (Schema: %s)", d.Schema)
	return nil
}

func (d *PostgresJournal) table(name string) string {
	return fmt.Sprintf(`"%s"."%s"`, d.Schema, name)
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			order_id BIGINT PRIMARY KEY,
			symbol TEXT,
			sec_type TEXT,
			action TEXT,
			quantity BIGINT,
			order_type TEXT,
			status TEXT,
			filled BIGINT,
			remaining BIGINT,
			avg_fill_price DOUBLE PRECISION,
			contract TEXT,
			order_params TEXT,
			submitted_at BIGINT,
			updated_at BIGINT
		);
	`, d.table("orders"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create orders: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT,
			status TEXT,
			filled BIGINT,
			remaining BIGINT,
			avg_fill_price DOUBLE PRECISION,
			last_fill_price DOUBLE PRECISION,
			perm_id BIGINT,
			why_held TEXT,
			recorded_at BIGINT
		);
	`, d.table("order_status"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create order_status: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol TEXT PRIMARY KEY,
			type TEXT,
			ref_schema TEXT,
			ref_table TEXT,
			ref_field TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, d.table("symbols"))
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create symbols: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) SaveOrder(rec models.MOrderRecord) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (order_id, symbol, sec_type, action, quantity, order_type, status, filled, remaining, avg_fill_price, contract, order_params, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (order_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			sec_type = EXCLUDED.sec_type,
			action = EXCLUDED.action,
			quantity = EXCLUDED.quantity,
			order_type = EXCLUDED.order_type,
			status = EXCLUDED.status,
			filled = EXCLUDED.filled,
			remaining = EXCLUDED.remaining,
			avg_fill_price = EXCLUDED.avg_fill_price,
			contract = EXCLUDED.contract,
			order_params = EXCLUDED.order_params,
			updated_at = EXCLUDED.updated_at
	`, d.table("orders"))
	_, err = d.DB.Exec(query, row.args()...)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) AppendStatus(st models.MOrderStatus, at time.Time) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (order_id, status, filled, remaining, avg_fill_price, last_fill_price, perm_id, why_held, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.table("order_status"))
	if _, err := tx.Exec(query, st.OrderID, string(st.Status), st.Filled, st.Remaining, st.AvgFillPrice, st.LastFillPrice, st.PermID, st.WhyHeld, at.UnixNano()); err != nil {
		return err
	}

	query = fmt.Sprintf(`
		UPDATE %s SET status = $1, filled = $2, remaining = $3, avg_fill_price = $4, updated_at = $5
		WHERE order_id = $6
	`, d.table("orders"))
	if _, err := tx.Exec(query, string(st.Status), st.Filled, st.Remaining, st.AvgFillPrice, at.UnixNano(), st.OrderID); err != nil {
		return err
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) RecentOrders(limit int) ([]models.MOrderRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY updated_at DESC, order_id DESC LIMIT $1`, orderColumns, d.table("orders"))
	rows, err := d.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (d *PostgresJournal) StatusHistory(orderID int) ([]models.MOrderStatus, error) {
	query := fmt.Sprintf(`
		SELECT order_id, status, filled, remaining, avg_fill_price, last_fill_price, perm_id, why_held
		FROM %s WHERE order_id = $1 ORDER BY recorded_at, id
	`, d.table("order_status"))
	rows, err := d.DB.Query(query, orderID)
	if err != nil {
		return nil, err
	}
	return scanStatuses(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) CleanupOldData(retention time.Duration) error {
	cutoff := time.Now().Add(-retention).UnixNano()

	d.Logger.Info("Cleaning up orders not updated for %v...", retention)

	query := fmt.Sprintf(`DELETE FROM %s WHERE order_id IN (SELECT order_id FROM %s WHERE updated_at < $1)`, d.table("order_status"), d.table("orders"))
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup order_status error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE updated_at < $1`, d.table("orders")), cutoff); err != nil {
		d.Logger.Error("Cleanup orders error: %v", err)
		return err
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
