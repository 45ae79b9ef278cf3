package govern

import (
	"context"
	"sort"
	"sync"

	"github.com/rustyeddy/riskgate/execution"
	"github.com/rustyeddy/riskgate/gates"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/pkg/id"
)

// Signal is one strategy intent, before any account is chosen. The core fans
// it out to every account that explicitly enabled the strategy.
type Signal struct {
	StrategyID     string
	Pair           string
	Side           gates.Side
	Size           float64
	EstimatedValue float64
}

// Outcome is the result of one signal evaluated for one account.
type Outcome struct {
	AccountID string
	RequestID string
	Admitted  bool
	Executed  bool
	Verdict   gates.Verdict
	Result    execution.Result
}

// EvaluateSignal runs one signal through every eligible account's admission
// pipeline concurrently, executing admitted requests through the gateway.
// Accounts that never enabled the strategy are skipped entirely, without a
// journal entry. Outcomes are sorted by account id.
func (c *Core) EvaluateSignal(ctx context.Context, sig Signal) []Outcome {
	var eligible []string
	for _, a := range c.accounts.List() {
		if a.IsEnabled(sig.StrategyID) {
			eligible = append(eligible, a.ID())
		}
	}

	outcomes := make([]Outcome, len(eligible))
	var wg sync.WaitGroup
	for i, accountID := range eligible {
		wg.Add(1)
		go func(i int, accountID string) {
			defer wg.Done()
			outcomes[i] = c.evaluateFor(ctx, accountID, sig)
		}(i, accountID)
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].AccountID < outcomes[j].AccountID })
	return outcomes
}

func (c *Core) evaluateFor(ctx context.Context, accountID string, sig Signal) Outcome {
	out := Outcome{AccountID: accountID}

	a, err := c.accounts.Get(accountID)
	if err != nil {
		out.Verdict = gates.Verdict{Layer: gates.LayerPermission, Reason: err.Error()}
		return out
	}

	req := gates.Request{
		ID:             id.NewRequest(),
		StrategyID:     sig.StrategyID,
		Pair:           sig.Pair,
		Side:           sig.Side,
		Size:           sig.Size,
		EstimatedValue: sig.EstimatedValue,
	}
	out.RequestID = req.ID

	ev := journal.NewEvent(journal.EventSignal)
	ev.AccountID = accountID
	ev.StrategyID = sig.StrategyID
	ev.Value = sig.EstimatedValue
	c.record(ev)

	// One GATE_CHECK event per evaluated gate; the first denial stops the
	// chain so later gates leave no record for this request.
	verdict := c.pipeline.Each(req, c.view(a, req), func(v gates.Verdict) {
		gev := journal.NewEvent(journal.EventGateCheck)
		gev.AccountID = accountID
		gev.StrategyID = sig.StrategyID
		gev.Layer = string(v.Layer)
		gev.Allowed = v.Allowed
		gev.Reason = v.Reason
		c.record(gev)
	})
	out.Verdict = verdict
	if !verdict.Allowed {
		bev := journal.NewEvent(journal.EventBlocked)
		bev.AccountID = accountID
		bev.StrategyID = sig.StrategyID
		bev.Layer = string(verdict.Layer)
		bev.Value = sig.EstimatedValue
		bev.Reason = verdict.Reason
		c.record(bev)
		return out
	}
	out.Admitted = true

	res, err := c.gateway.Execute(ctx, c.Mode(), a, req)
	if err != nil {
		c.log.WithError(err).WithField("account", accountID).Error("gateway infrastructure fault")
	}
	out.Result = res
	out.Executed = res.Success

	if res.Success {
		c.tracker.Observe(accountID, sig.StrategyID, res.PnL)
	}
	return out
}
