package journal

import (
	"time"
)

// ListByAccount returns all events for an account with time in [start, end),
// oldest first.
func (j *SQLite) ListByAccount(accountID string, start, end time.Time) ([]Event, error) {
	rows, err := j.db.Query(`
		SELECT event_id, time, type, account_id, strategy_id, layer, allowed, value, reason
		FROM events
		WHERE account_id = ? AND time >= ? AND time < ?
		ORDER BY time ASC`, accountID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var allowed int
		if err := rows.Scan(
			&e.ID,
			&e.Time,
			&e.Type,
			&e.AccountID,
			&e.StrategyID,
			&e.Layer,
			&allowed,
			&e.Value,
			&e.Reason,
		); err != nil {
			return nil, err
		}
		e.Allowed = allowed != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBlocked returns denial events (EventBlocked plus denied gate checks)
// within [start, end), oldest first. Useful for attributing which layer is
// rejecting flow.
func (j *SQLite) ListBlocked(start, end time.Time) ([]Event, error) {
	rows, err := j.db.Query(`
		SELECT event_id, time, type, account_id, strategy_id, layer, allowed, value, reason
		FROM events
		WHERE allowed = 0 AND type IN (?, ?) AND time >= ? AND time < ?
		ORDER BY time ASC`, string(EventBlocked), string(EventGateCheck), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var allowed int
		if err := rows.Scan(
			&e.ID,
			&e.Time,
			&e.Type,
			&e.AccountID,
			&e.StrategyID,
			&e.Layer,
			&allowed,
			&e.Value,
			&e.Reason,
		); err != nil {
			return nil, err
		}
		e.Allowed = allowed != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByType returns event counts per type within [start, end).
func (j *SQLite) CountByType(start, end time.Time) (map[EventType]int, error) {
	rows, err := j.db.Query(`
		SELECT type, COUNT(*)
		FROM events
		WHERE time >= ? AND time < ?
		GROUP BY type`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[EventType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[EventType(typ)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
