package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *SQLite {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndListByAccount(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	e1 := NewEvent(EventSignal)
	e1.AccountID = "acct-1"
	e1.StrategyID = "momentum"
	e1.Allowed = true
	e1.Value = 500
	require.NoError(t, j.Record(e1))

	e2 := NewEvent(EventGateCheck)
	e2.AccountID = "acct-1"
	e2.StrategyID = "momentum"
	e2.Layer = "CAPITAL"
	e2.Reason = "no capital allocation"
	require.NoError(t, j.Record(e2))

	e3 := NewEvent(EventSignal)
	e3.AccountID = "acct-2"
	require.NoError(t, j.Record(e3))

	start := time.Now().Add(-time.Minute)
	end := time.Now().Add(time.Minute)

	got, err := j.ListByAccount("acct-1", start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, e1.ID, got[0].ID)
	assert.Equal(t, EventSignal, got[0].Type)
	assert.True(t, got[0].Allowed)
	assert.InDelta(t, 500, got[0].Value, 1e-9)
	assert.Equal(t, "CAPITAL", got[1].Layer)
	assert.False(t, got[1].Allowed)
}

func TestListBlockedAndCounts(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	blocked := NewEvent(EventBlocked)
	blocked.AccountID = "acct-1"
	blocked.Layer = "GOVERNOR"
	blocked.Reason = "risk governor state SHUTDOWN"
	require.NoError(t, j.Record(blocked))

	ok := NewEvent(EventExecuted)
	ok.AccountID = "acct-1"
	ok.Allowed = true
	require.NoError(t, j.Record(ok))

	start := time.Now().Add(-time.Minute)
	end := time.Now().Add(time.Minute)

	denials, err := j.ListBlocked(start, end)
	require.NoError(t, err)
	require.Len(t, denials, 1)
	assert.Equal(t, "GOVERNOR", denials[0].Layer)
	assert.NotEmpty(t, denials[0].Reason)

	counts, err := j.CountByType(start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[EventBlocked])
	assert.Equal(t, 1, counts[EventExecuted])
}
