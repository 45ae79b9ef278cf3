package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite records events into a local SQLite database. The events table is
// append-only: there is no update or delete path in this package.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(e Event) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(event_id, time, type, account_id, strategy_id, layer, allowed, value, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time, string(e.Type), e.AccountID, e.StrategyID,
		e.Layer, boolInt(e.Allowed), e.Value, e.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
