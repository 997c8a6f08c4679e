package sqlite

import (
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// ─── Coin Ledger ────────────────────────────────────────────────────────────

var _ domain.CoinLedger = (*DB)(nil)

// AppendLedgerEntry records one coin movement.
func (d *DB) AppendLedgerEntry(e domain.LedgerEntry) error {
	_, err := d.db.Exec(
		`INSERT INTO coin_ledger (id, timestamp, kind, amount, description, balance)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, unixMillis(e.Timestamp), string(e.Kind), e.Amount, e.Description, e.Balance,
	)
	return err
}

// ListLedgerEntries returns the newest entries first. A limit <= 0 lists
// every entry.
func (d *DB) ListLedgerEntries(limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		`SELECT id, timestamp, kind, amount, description, balance
		 FROM coin_ledger ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var ts int64
		var kind string
		if err := rows.Scan(&e.ID, &ts, &kind, &e.Amount, &e.Description, &e.Balance); err != nil {
			return nil, err
		}
		e.Timestamp = fromUnixMillis(ts)
		e.Kind = domain.LedgerKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteLedger removes every ledger entry.
func (d *DB) DeleteLedger() error {
	_, err := d.db.Exec(`DELETE FROM coin_ledger`)
	return err
}
