package govern

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/riskgate/account"
	"github.com/rustyeddy/riskgate/capital"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/registry"
)

// AllocationCycle recomputes risk and capital splits for every account:
// regime scaling on the account budget, the performance-weighted risk
// distribution across enabled strategies, and a capital allocation per
// strategy ledger. Strategies keep whatever they asked for last time; the
// cycle reshapes allocations to current state and regime, never to whim.
//
// capitalTargets maps strategy id to its requested capital; strategies absent
// from the map are re-evaluated at their current allocation.
func (c *Core) AllocationCycle(instrument string, capitalTargets map[string]float64) error {
	reading := c.regimes.Current(instrument)

	for _, a := range c.accounts.List() {
		a.Budget().ApplyRegimeScaling(reading)

		enabled := a.EnabledStrategies()
		if len(enabled) == 0 {
			continue
		}

		// Risk split across enabled strategies.
		perf := c.tracker.Performance(a.ID(), enabled)
		allocs, err := c.alloc.Distribute(a.Budget().Effective(), perf, func(sid string) registry.State {
			return c.registry.Get(sid).State
		})
		if err != nil {
			return err
		}
		a.SetRiskAllocations(allocs)

		c.journalBudget(a)

		// Capital per strategy ledger.
		sorted := append([]string(nil), enabled...)
		sort.Strings(sorted)
		for _, sid := range sorted {
			meta := c.registry.Get(sid)

			requested, ok := capitalTargets[sid]
			if !ok {
				if led, has := a.Allocator().Ledger(sid); has {
					requested = led.Allocated
				}
			}
			if requested <= 0 {
				continue
			}

			granted, err := a.Allocator().Allocate(capital.Request{
				StrategyID: sid,
				Style:      meta.Style,
				State:      meta.State,
				Requested:  requested,
				Reading:    reading,
			})
			if err != nil {
				c.log.WithError(err).WithFields(logrus.Fields{
					"account":  a.ID(),
					"strategy": sid,
				}).Warn("capital allocation refused")
				continue
			}
			c.log.WithFields(logrus.Fields{
				"account":  a.ID(),
				"strategy": sid,
				"granted":  granted,
			}).Debug("capital allocated")
		}
	}
	return nil
}

// RecoveryCycle applies one day of risk-budget recovery to every account.
// Recovery is blocked inside each account for anything but a clean bill:
// non-ACTIVE accounts and unfavorable regimes recover nothing.
func (c *Core) RecoveryCycle(instrument string, daysSinceDrawdown float64) {
	reading := c.regimes.Current(instrument)
	for _, a := range c.accounts.List() {
		a.ApplyRecovery(daysSinceDrawdown, reading.Regime)
	}
}

func (c *Core) journalBudget(a *account.Account) {
	snap := a.Budget().Snapshot()
	ev := journal.NewEvent(journal.EventRiskBudgetChange)
	ev.AccountID = a.ID()
	ev.Value = snap.EffectiveRiskPct
	ev.Reason = "allocation cycle"
	c.record(ev)
}
