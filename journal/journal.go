// Package journal is the append-only observability log for governance
// decisions. The core writes one event per decision (signal, gate check,
// execution, capital or risk-budget mutation, state transition) and never
// reads events back to make decisions; queries exist for operators only.
package journal

import (
	"time"

	"github.com/rustyeddy/riskgate/pkg/id"
)

// EventType enumerates every event the core emits. The set is stable: new
// types may be appended, existing values never change meaning.
type EventType string

const (
	EventSignal           EventType = "SIGNAL"
	EventGateCheck        EventType = "GATE_CHECK"
	EventExecuted         EventType = "EXECUTED"
	EventBlocked          EventType = "BLOCKED"
	EventCapitalChange    EventType = "CAPITAL_CHANGE"
	EventRiskBudgetChange EventType = "RISK_BUDGET_CHANGE"
	EventStateTransition  EventType = "STATE_TRANSITION"
)

// Event is one governance decision record.
type Event struct {
	ID         string
	Time       time.Time
	Type       EventType
	AccountID  string
	StrategyID string
	Layer      string // blocking/checked layer for gate events, "" otherwise
	Allowed    bool
	Value      float64 // event-specific magnitude: trade value, new allocation, new risk pct
	Reason     string
}

// Recorder is the write side of the journal.
type Recorder interface {
	Record(Event) error
	Close() error
}

// NewEvent stamps an event with a fresh ULID and the current time.
func NewEvent(typ EventType) Event {
	return Event{
		ID:   id.New(),
		Time: time.Now().UTC(),
		Type: typ,
	}
}

// Nop discards every event. Used when journaling is disabled in config.
type Nop struct{}

func (Nop) Record(Event) error { return nil }
func (Nop) Close() error       { return nil }
