// Package journal mirrors executed trades into a SQLite database so the
// daily trade count survives restarts.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          TEXT    NOT NULL,
	day         TEXT    NOT NULL,
	symbol      TEXT    NOT NULL,
	side        TEXT    NOT NULL,
	order_block TEXT    NOT NULL,
	lot_size    REAL    NOT NULL,
	stop_loss   REAL    NOT NULL,
	equity      REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_day ON trades(day);
`

// Journal is a TradeRecorder backed by SQLite.
type Journal struct {
	db  *sql.DB
	loc *time.Location
}

var (
	_ interfaces.TradeRecorder = (*Journal)(nil)
	_ interfaces.TradeHistory  = (*Journal)(nil)
)

// Open opens (or creates) the database at path. Day keys are computed in loc.
func Open(path string, loc *time.Location) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Journal{db: db, loc: loc}, nil
}

func (j *Journal) Record(ctx context.Context, rec types.TradeRecord) error {
	t := rec.Time.In(j.loc)
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO trades (ts, day, symbol, side, order_block, lot_size, stop_loss, equity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Format(time.RFC3339), t.Format("2006-01-02"),
		rec.Symbol, rec.Side, rec.OrderBlock, rec.LotSize, rec.StopLoss, rec.Equity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// CountOnDay returns how many trades were recorded on day (YYYY-MM-DD).
func (j *Journal) CountOnDay(ctx context.Context, day string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE day = ?`, day).Scan(&n)
	return n, err
}

// LastTradeTime returns the most recent trade time, zero when empty.
func (j *Journal) LastTradeTime(ctx context.Context) (time.Time, error) {
	var ts sql.NullString
	if err := j.db.QueryRowContext(ctx, `SELECT MAX(ts) FROM trades`).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, ts.String)
}

// TradesOnDay lists the trades recorded on day in insertion order.
func (j *Journal) TradesOnDay(ctx context.Context, day string) ([]types.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT ts, symbol, side, order_block, lot_size, stop_loss, equity
		 FROM trades WHERE day = ? ORDER BY id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.TradeRecord
	for rows.Next() {
		var (
			ts  string
			rec types.TradeRecord
		)
		if err := rows.Scan(&ts, &rec.Symbol, &rec.Side, &rec.OrderBlock, &rec.LotSize, &rec.StopLoss, &rec.Equity); err != nil {
			return nil, err
		}
		if rec.Time, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
