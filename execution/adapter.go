// Package execution holds the execution gateway — the only component
// permitted to turn an approved request into a real or simulated fill — and
// the exchange adapters behind it. Exactly one adapter mode is selected at
// construction from configuration; callers never choose per request.
package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/riskgate/gates"
	"github.com/rustyeddy/riskgate/pkg/id"
)

// Mode selects the execution adapter variant.
type Mode string

const (
	ModeReal      Mode = "REAL"
	ModeSimulated Mode = "SIMULATED"
	ModeShadow    Mode = "SHADOW"
	ModeSentinel  Mode = "SENTINEL"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeReal, ModeSimulated, ModeShadow, ModeSentinel:
		return true
	}
	return false
}

// Fill is the outcome of one executed request.
type Fill struct {
	OrderRef      string
	ExecutedValue float64
	PnL           float64
	Time          time.Time
}

// Adapter is the execution collaborator contract: a single execute call,
// nothing else.
type Adapter interface {
	Execute(ctx context.Context, req gates.Request) (Fill, error)
}

// PnLFn supplies the simulated P&L for a filled request. Simulations and
// tests script outcomes through it; the default fills at value with zero P&L.
type PnLFn func(req gates.Request) float64

// Sim fills every request in memory. Grounded in the same idea as a
// simulated exchange engine: fills are immediate and bookkeeping only.
type Sim struct {
	mu    sync.Mutex
	pnl   PnLFn
	fills []Fill
}

func NewSim(pnl PnLFn) *Sim {
	if pnl == nil {
		pnl = func(gates.Request) float64 { return 0 }
	}
	return &Sim{pnl: pnl}
}

func (s *Sim) Execute(ctx context.Context, req gates.Request) (Fill, error) {
	if err := ctx.Err(); err != nil {
		return Fill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fill := Fill{
		OrderRef:      id.New(),
		ExecutedValue: req.EstimatedValue,
		PnL:           s.pnl(req),
		Time:          time.Now().UTC(),
	}
	s.fills = append(s.fills, fill)
	return fill, nil
}

// Fills returns a copy of every fill so far.
func (s *Sim) Fills() []Fill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Fill, len(s.fills))
	copy(out, s.fills)
	return out
}

// Shadow records the fill it would have produced and commits nothing. The
// executed value is reported for parity measurement downstream; P&L is
// always zero.
type Shadow struct {
	mu      sync.Mutex
	intents []Fill
}

func NewShadow() *Shadow { return &Shadow{} }

func (s *Shadow) Execute(ctx context.Context, req gates.Request) (Fill, error) {
	if err := ctx.Err(); err != nil {
		return Fill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fill := Fill{
		OrderRef:      id.New(),
		ExecutedValue: req.EstimatedValue,
		Time:          time.Now().UTC(),
	}
	s.intents = append(s.intents, fill)
	return fill, nil
}

// Intents returns a copy of every recorded shadow fill.
func (s *Shadow) Intents() []Fill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Fill, len(s.intents))
	copy(out, s.intents)
	return out
}

// ErrSentinelCap is returned when a request exceeds the sentinel's hard
// per-trade value cap.
var ErrSentinelCap = fmt.Errorf("sentinel cap exceeded")

// Sentinel wraps another adapter with a hard per-trade value cap. Used for
// canary deployments where real wiring exists but exposure must stay tiny.
type Sentinel struct {
	inner Adapter
	cap   float64
}

func NewSentinel(inner Adapter, capValue float64) (*Sentinel, error) {
	if inner == nil {
		return nil, fmt.Errorf("sentinel: nil inner adapter")
	}
	if capValue <= 0 {
		return nil, fmt.Errorf("sentinel: cap must be positive, got %.2f", capValue)
	}
	return &Sentinel{inner: inner, cap: capValue}, nil
}

func (s *Sentinel) Execute(ctx context.Context, req gates.Request) (Fill, error) {
	if req.EstimatedValue > s.cap {
		return Fill{}, fmt.Errorf("%w: value %.2f > cap %.2f", ErrSentinelCap, req.EstimatedValue, s.cap)
	}
	return s.inner.Execute(ctx, req)
}

// Broker is the minimal surface a real exchange adapter must provide.
// Order placement itself lives outside this core.
type Broker interface {
	PlaceOrder(ctx context.Context, req gates.Request) (Fill, error)
}

// Real delegates to an externally wired broker. Constructing it without one
// fails fast rather than producing an adapter that errors per request.
type Real struct {
	broker Broker
}

func NewReal(b Broker) (*Real, error) {
	if b == nil {
		return nil, fmt.Errorf("real execution requires a broker")
	}
	return &Real{broker: b}, nil
}

func (r *Real) Execute(ctx context.Context, req gates.Request) (Fill, error) {
	return r.broker.PlaceOrder(ctx, req)
}
