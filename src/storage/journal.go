package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/models"
	"twsclient/src/symbols"
)

// NewJournal picks the backend named by storage.db_type. SQLite is the
// default.
func NewJournal(cfg *models.MConfig, log *logger.Logger) (interfaces.IOrderJournal, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresJournal(cfg, log)
	default:
		return NewSQLiteJournal(cfg, log)
	}
}

// Both journals keep the same two tables: one row per order holding the
// latest state, and one row per status transition.

// orderRow is the column form of an MOrderRecord. Contract and order
// parameters are stored as JSON documents.
type orderRow struct {
	OrderID      int
	Symbol       string
	SecType      string
	Action       string
	Quantity     int
	OrderType    string
	Status       string
	Filled       int
	Remaining    int
	AvgFillPrice float64
	Contract     string
	Order        string
	SubmittedAt  int64
	UpdatedAt    int64
}

func toRow(rec models.MOrderRecord) (orderRow, error) {
	contract, err := json.Marshal(rec.Contract)
	if err != nil {
		return orderRow{}, fmt.Errorf("encode contract of order %d: %w", rec.OrderID, err)
	}
	order, err := json.Marshal(rec.Order)
	if err != nil {
		return orderRow{}, fmt.Errorf("encode order %d: %w", rec.OrderID, err)
	}
	return orderRow{
		OrderID:      rec.OrderID,
		Symbol:       rec.Contract.Symbol,
		SecType:      wireCode(models.SecurityTypes, rec.Contract.SecType),
		Action:       wireCode(models.Actions, rec.Order.Action),
		Quantity:     rec.Order.TotalQuantity,
		OrderType:    wireCode(models.OrderTypes, rec.Order.OrderType),
		Status:       string(rec.Status),
		Filled:       rec.Filled,
		Remaining:    rec.Remaining,
		AvgFillPrice: rec.AvgFillPrice,
		Contract:     string(contract),
		Order:        string(order),
		SubmittedAt:  rec.SubmittedAt.UnixNano(),
		UpdatedAt:    rec.UpdatedAt.UnixNano(),
	}, nil
}

// wireCode gives the protocol code of v for the descriptive columns. An
// unknown variant leaves the column empty.
func wireCode[T comparable](t *symbols.Table[T], v T) string {
	c, _ := t.Encode(v)
	return c
}

func (r orderRow) args() []any {
	return []any{
		r.OrderID, r.Symbol, r.SecType, r.Action, r.Quantity, r.OrderType,
		r.Status, r.Filled, r.Remaining, r.AvgFillPrice, r.Contract, r.Order,
		r.SubmittedAt, r.UpdatedAt,
	}
}

// -----------------------------------------------------------------------------

const orderColumns = `order_id, status, filled, remaining, avg_fill_price, contract, order_params, submitted_at, updated_at`

func scanOrders(rows *sql.Rows) ([]models.MOrderRecord, error) {
	defer rows.Close()

	var out []models.MOrderRecord
	for rows.Next() {
		var (
			rec                models.MOrderRecord
			status             string
			contract, order    string
			submitted, updated int64
		)
		if err := rows.Scan(&rec.OrderID, &status, &rec.Filled, &rec.Remaining, &rec.AvgFillPrice, &contract, &order, &submitted, &updated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contract), &rec.Contract); err != nil {
			return nil, fmt.Errorf("decode contract of order %d: %w", rec.OrderID, err)
		}
		if err := json.Unmarshal([]byte(order), &rec.Order); err != nil {
			return nil, fmt.Errorf("decode order %d: %w", rec.OrderID, err)
		}
		rec.Status = models.OrderStatus(status)
		rec.SubmittedAt = time.Unix(0, submitted)
		rec.UpdatedAt = time.Unix(0, updated)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanStatuses(rows *sql.Rows) ([]models.MOrderStatus, error) {
	defer rows.Close()

	var out []models.MOrderStatus
	for rows.Next() {
		var (
			st     models.MOrderStatus
			status string
		)
		if err := rows.Scan(&st.OrderID, &status, &st.Filled, &st.Remaining, &st.AvgFillPrice, &st.LastFillPrice, &st.PermID, &st.WhyHeld); err != nil {
			return nil, err
		}
		st.Status = models.OrderStatus(status)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
