// Package govern wires every collaborator into one governance core: the
// strategy registry, the regime provider, the account manager, the admission
// pipeline, the execution gateway, and the journal. Signals enter here and
// nowhere else; the core fans each signal out to every eligible account,
// runs the gates, and hands admitted requests to the gateway.
package govern

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/riskgate/account"
	"github.com/rustyeddy/riskgate/execution"
	"github.com/rustyeddy/riskgate/gates"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/regime"
	"github.com/rustyeddy/riskgate/registry"
	"github.com/rustyeddy/riskgate/risk"
)

// Options carries every collaborator the core needs. All fields except
// Tracker are required; construction fails fast on any missing one.
type Options struct {
	Mode     gates.Mode
	Registry *registry.Registry
	Regimes  regime.Provider
	Accounts *account.Manager
	Gateway  *execution.Gateway
	Journal  journal.Recorder
	Policy   risk.Policy
	Tracker  *Tracker // optional; defaults to a fresh tracker
}

// Core is the single governance context object.
type Core struct {
	mu   sync.RWMutex
	mode gates.Mode

	registry *registry.Registry
	regimes  regime.Provider
	accounts *account.Manager
	gateway  *execution.Gateway
	rec      journal.Recorder
	pipeline *gates.Pipeline
	alloc    *risk.Allocator
	tracker  *Tracker
	log      *logrus.Entry
}

func New(opts Options) (*Core, error) {
	switch {
	case opts.Mode != gates.ModeLive && opts.Mode != gates.ModeObserveOnly:
		return nil, fmt.Errorf("govern: unknown system mode %q", opts.Mode)
	case opts.Registry == nil:
		return nil, fmt.Errorf("govern: nil registry")
	case opts.Regimes == nil:
		return nil, fmt.Errorf("govern: nil regime provider")
	case opts.Accounts == nil:
		return nil, fmt.Errorf("govern: nil account manager")
	case opts.Gateway == nil:
		return nil, fmt.Errorf("govern: nil execution gateway")
	case opts.Journal == nil:
		return nil, fmt.Errorf("govern: nil journal recorder")
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = NewTracker(0)
	}

	c := &Core{
		mode:     opts.Mode,
		registry: opts.Registry,
		regimes:  opts.Regimes,
		accounts: opts.Accounts,
		gateway:  opts.Gateway,
		rec:      opts.Journal,
		pipeline: gates.NewPipeline(),
		alloc:    risk.NewAllocator(opts.Policy),
		tracker:  tracker,
		log:      logrus.WithField("component", "govern"),
	}

	// Every account journals its capital changes and transitions through the
	// core's recorder.
	for _, a := range opts.Accounts.List() {
		a.SetEmit(c.record)
	}
	return c, nil
}

// Mode returns the current system operating mode.
func (c *Core) Mode() gates.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetMode switches the system between LIVE and OBSERVE_ONLY. The transition
// is journaled; pipelines keep running in either mode.
func (c *Core) SetMode(m gates.Mode, reason string) error {
	if m != gates.ModeLive && m != gates.ModeObserveOnly {
		return fmt.Errorf("govern: unknown system mode %q", m)
	}

	c.mu.Lock()
	prev := c.mode
	c.mode = m
	c.mu.Unlock()

	if prev == m {
		return nil
	}

	c.log.WithFields(logrus.Fields{"from": string(prev), "to": string(m)}).Info("system mode changed")

	ev := journal.NewEvent(journal.EventStateTransition)
	ev.Reason = fmt.Sprintf("system mode %s -> %s: %s", prev, m, reason)
	c.record(ev)
	return nil
}

// Accounts exposes the account manager for read paths (status, CLI).
func (c *Core) Accounts() *account.Manager { return c.accounts }

// Registry exposes the strategy registry.
func (c *Core) Registry() *registry.Registry { return c.registry }

// Tracker exposes the performance tracker.
func (c *Core) Tracker() *Tracker { return c.tracker }

// Regimes exposes the regime provider.
func (c *Core) Regimes() regime.Provider { return c.regimes }

func (c *Core) record(ev journal.Event) {
	if err := c.rec.Record(ev); err != nil {
		c.log.WithError(err).WithField("type", string(ev.Type)).Error("journal write failed")
	}
}

// view assembles the read-only gate inputs for one (account, request) pair.
func (c *Core) view(a *account.Account, req gates.Request) gates.View {
	meta := c.registry.Get(req.StrategyID)
	led, hasLedger := a.Allocator().Ledger(req.StrategyID)

	var headroom float64
	if hasLedger {
		headroom = led.Allocated - led.Deployed
	}

	return gates.View{
		Mode:             c.Mode(),
		Equity:           a.Equity(),
		EffectiveRiskPct: a.Budget().Effective(),
		StrategyRiskPct:  a.RiskAllocation(req.StrategyID),
		HasLedger:        hasLedger,
		CapitalHeadroom:  headroom,
		Strategy:         meta,
		Reading:          c.regimes.Current(req.Pair),
		Governor:         a.Governor(),
	}
}
