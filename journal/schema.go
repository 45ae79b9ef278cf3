// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS events (
	event_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	account_id TEXT NOT NULL,
	strategy_id TEXT NOT NULL,
	layer TEXT NOT NULL,
	allowed INTEGER NOT NULL,
	value REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
CREATE INDEX IF NOT EXISTS idx_events_account ON events(account_id, time);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type, time);
`
