package storage

import (
	"fmt"
	"regexp"
	"time"

	"twsclient/src/models"
)

// Subscriptions can name a column instead of a ticker: "schema.table.field"
// subscribes every value of that column with the entry's other settings.

type SymbolMetadata struct {
	Symbol    string
	Type      string // "classic" or "postgres_ref"
	RefSchema string
	RefTable  string
	RefField  string
}

var tableRefRegex = regexp.MustCompile(`^(\w+)\.(\w+)\.(\w+)$`)

// splitTableRef recognises a "schema.table.field" reference.
func splitTableRef(symbol string) (SymbolMetadata, bool) {
	m := tableRefRegex.FindStringSubmatch(symbol)
	if len(m) != 4 {
		return SymbolMetadata{}, false
	}
	return SymbolMetadata{Symbol: symbol, Type: "postgres_ref", RefSchema: m[1], RefTable: m[2], RefField: m[3]}, true
}

// -----------------------------------------------------------------------------

// ExpandSubscriptions replaces table references by one entry per loaded
// symbol and registers everything in the symbols table.
func (d *PostgresJournal) ExpandSubscriptions(entries []models.MSubscriptionEntry) ([]models.MSubscriptionEntry, error) {
	var out []models.MSubscriptionEntry
	var meta []SymbolMetadata

	for _, e := range entries {
		ref, ok := splitTableRef(e.Symbol)
		if !ok {
			out = append(out, e)
			meta = append(meta, SymbolMetadata{Symbol: e.Symbol, Type: "classic"})
			continue
		}
		meta = append(meta, ref)

		loaded, err := d.GetSymbolsFromTable(ref.RefSchema, ref.RefTable, ref.RefField)
		if err != nil {
			return out, fmt.Errorf("failed to load symbols from %s: %w", e.Symbol, err)
		}
		d.Logger.Info("Loaded %d symbols from %s", len(loaded), e.Symbol)
		for _, sym := range loaded {
			expanded := e
			expanded.Symbol = sym
			out = append(out, expanded)
			meta = append(meta, SymbolMetadata{Symbol: sym, Type: "classic"})
		}
	}

	if err := d.RegisterSymbols(meta); err != nil {
		return out, fmt.Errorf("failed to register symbols: %w", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresJournal) RegisterSymbols(symbols []SymbolMetadata) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, type, ref_schema, ref_table, ref_field, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			type = EXCLUDED.type,
			ref_schema = EXCLUDED.ref_schema,
			ref_table = EXCLUDED.ref_table,
			ref_field = EXCLUDED.ref_field,
			updated_at = EXCLUDED.updated_at
	`, d.table("symbols"))

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range symbols {
		if _, err := stmt.Exec(s.Symbol, s.Type, s.RefSchema, s.RefTable, s.RefField, time.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// GetSymbolsFromTable reads the non-empty values of one column. The
// identifiers come through tableRefRegex, so quoting them is enough.
func (d *PostgresJournal) GetSymbolsFromTable(schema, table, field string) ([]string, error) {
	query := fmt.Sprintf(`SELECT "%s" FROM "%s"."%s"`, field, schema, table)

	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}
