package execution

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/riskgate/account"
	"github.com/rustyeddy/riskgate/gates"
	"github.com/rustyeddy/riskgate/journal"
)

// Result is the gateway's answer for one request. A blocked result always
// carries the layer that stopped it and a human-readable reason.
type Result struct {
	Success       bool        `json:"success"`
	RequestID     string      `json:"request_id"`
	OrderRef      string      `json:"order_ref,omitempty"`
	ExecutedValue float64     `json:"executed_value"`
	PnL           float64     `json:"pnl"`
	Layer         gates.Layer `json:"layer,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// Gateway is the single execution authority. Every fill in the system goes
// through Execute; strategies, accounts, and the governance core hold no
// other path to an adapter. The gateway does not trust its callers: it
// re-validates mode, account permission, and the governor before committing.
type Gateway struct {
	mode    Mode
	adapter Adapter
	rec     journal.Recorder
	log     *logrus.Entry

	mu      sync.Mutex
	commits map[string]*sync.Mutex // accountID -> commit lock
}

// NewGateway builds the gateway for one adapter mode. The recorder may be
// journal.Nop{} but not nil.
func NewGateway(mode Mode, adapter Adapter, rec journal.Recorder) (*Gateway, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("execution: unknown mode %q", mode)
	}
	if adapter == nil {
		return nil, fmt.Errorf("execution: nil adapter")
	}
	if rec == nil {
		return nil, fmt.Errorf("execution: nil journal recorder")
	}
	return &Gateway{
		mode:    mode,
		adapter: adapter,
		rec:     rec,
		log:     logrus.WithField("component", "gateway"),
		commits: make(map[string]*sync.Mutex),
	}, nil
}

func (g *Gateway) Mode() Mode { return g.mode }

// commitLock returns the per-account commit mutex, creating it on first use.
// Holding it makes re-validate, reserve, execute, and commit one atomic unit
// per account; concurrent requests for distinct accounts do not contend.
func (g *Gateway) commitLock(accountID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.commits[accountID]
	if !ok {
		l = &sync.Mutex{}
		g.commits[accountID] = l
	}
	return l
}

// Execute carries one already-admitted request through to a fill. sysMode is
// the system operating mode at dispatch time; the gateway re-checks it
// because admission and execution are separate moments.
//
// A denied or failed request yields a Result with Success false, the blocking
// layer, and a reason — it is not an error. The error return is reserved for
// journal failures and other infrastructure faults.
func (g *Gateway) Execute(ctx context.Context, sysMode gates.Mode, acct *account.Account, req gates.Request) (Result, error) {
	lock := g.commitLock(acct.ID())
	lock.Lock()
	defer lock.Unlock()

	res := Result{RequestID: req.ID}

	if sysMode == gates.ModeObserveOnly {
		return g.block(acct, req, res, gates.LayerPermission, "system is observe-only")
	}
	if !acct.CanTrade() {
		return g.block(acct, req, res, gates.LayerPermission,
			fmt.Sprintf("account %s not permitted to trade (state %s)", acct.ID(), acct.State()))
	}
	if appr := acct.Governor().Approve(); !appr.Allowed {
		return g.block(acct, req, res, gates.LayerGovernor, appr.Reason)
	}

	// Shadow mode records the intent and commits nothing: no reservation,
	// no equity change, no trade count.
	if g.mode == ModeShadow {
		fill, err := g.adapter.Execute(ctx, req)
		if err != nil {
			return g.block(acct, req, res, gates.LayerExecution, err.Error())
		}
		res.Success = true
		res.OrderRef = fill.OrderRef
		res.ExecutedValue = fill.ExecutedValue
		return res, g.journal(acct, req, journal.EventExecuted, true, fill.ExecutedValue, "shadow")
	}

	// Reservation is the atomic headroom check: it fails if the strategy's
	// ledger cannot cover the request, and nothing else can consume that
	// headroom until we release it below.
	alloc := acct.Allocator()
	if err := alloc.Reserve(req.StrategyID, req.EstimatedValue); err != nil {
		return g.block(acct, req, res, gates.LayerCapital, err.Error())
	}

	fill, err := g.adapter.Execute(ctx, req)
	if uerr := alloc.Unreserve(req.StrategyID, req.EstimatedValue); uerr != nil {
		g.log.WithError(uerr).WithField("strategy", req.StrategyID).Error("unreserve failed")
	}
	if err != nil {
		return g.block(acct, req, res, gates.LayerExecution, err.Error())
	}

	if oerr := alloc.RecordOutcome(req.StrategyID, fill.PnL); oerr != nil {
		g.log.WithError(oerr).WithField("strategy", req.StrategyID).Error("record outcome failed")
	}
	acct.RecordEquityChange(fill.PnL)
	acct.Governor().RecordTrade()

	res.Success = true
	res.OrderRef = fill.OrderRef
	res.ExecutedValue = fill.ExecutedValue
	res.PnL = fill.PnL

	g.log.WithFields(logrus.Fields{
		"account":  acct.ID(),
		"strategy": req.StrategyID,
		"pair":     req.Pair,
		"value":    fill.ExecutedValue,
		"pnl":      fill.PnL,
	}).Info("executed")

	return res, g.journal(acct, req, journal.EventExecuted, true, fill.ExecutedValue, "")
}

func (g *Gateway) block(acct *account.Account, req gates.Request, res Result, layer gates.Layer, reason string) (Result, error) {
	res.Layer = layer
	res.Reason = reason

	g.log.WithFields(logrus.Fields{
		"account":  acct.ID(),
		"strategy": req.StrategyID,
		"layer":    string(layer),
		"reason":   reason,
	}).Warn("execution blocked")

	ev := journal.NewEvent(journal.EventBlocked)
	ev.AccountID = acct.ID()
	ev.StrategyID = req.StrategyID
	ev.Layer = string(layer)
	ev.Value = req.EstimatedValue
	ev.Reason = reason
	return res, g.rec.Record(ev)
}

func (g *Gateway) journal(acct *account.Account, req gates.Request, typ journal.EventType, allowed bool, value float64, reason string) error {
	ev := journal.NewEvent(typ)
	ev.AccountID = acct.ID()
	ev.StrategyID = req.StrategyID
	ev.Layer = string(gates.LayerExecution)
	ev.Allowed = allowed
	ev.Value = value
	ev.Reason = reason
	return g.rec.Record(ev)
}
