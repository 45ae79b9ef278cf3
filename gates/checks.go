package gates

import (
	"fmt"

	"github.com/rustyeddy/riskgate/risk"
)

// CheckRiskBudget compares the requested risk percentage against both the
// strategy's allocated slice and the account's effective budget.
func CheckRiskBudget(req Request, v View) Verdict {
	if v.Equity <= 0 {
		return deny(LayerRiskBudget, "account equity is zero or negative")
	}

	requested := req.RequestedRiskPct(v.Equity)
	if requested > v.StrategyRiskPct {
		return deny(LayerRiskBudget, "requested risk %.3f%% exceeds strategy allocation %.3f%%",
			requested, v.StrategyRiskPct)
	}
	if requested > v.EffectiveRiskPct {
		return deny(LayerRiskBudget, "requested risk %.3f%% exceeds account budget %.3f%%",
			requested, v.EffectiveRiskPct)
	}

	// Warn when a single request eats most of the account budget.
	if v.EffectiveRiskPct > 0 && requested > 0.8*v.EffectiveRiskPct {
		return allow(LayerRiskBudget,
			fmt.Sprintf("request consumes %.0f%% of account risk budget", requested/v.EffectiveRiskPct*100))
	}
	return allow(LayerRiskBudget)
}

// CheckCapital requires a capital ledger with positive allocation headroom
// covering the request's estimated value.
func CheckCapital(req Request, v View) Verdict {
	if !v.HasLedger {
		return deny(LayerCapital, "strategy %s has no capital account", req.StrategyID)
	}
	if v.CapitalHeadroom <= 0 {
		return deny(LayerCapital, "strategy %s has no capital allocated", req.StrategyID)
	}
	if req.EstimatedValue > v.CapitalHeadroom {
		return deny(LayerCapital, "estimated value %.2f exceeds capital headroom %.2f",
			req.EstimatedValue, v.CapitalHeadroom)
	}
	return allow(LayerCapital)
}

// CheckRegime requires the strategy's declared allowed-regime set to include
// the current detected regime. An unknown or incompatible regime is a denial,
// not an error.
func CheckRegime(req Request, v View) Verdict {
	if v.Strategy.AllowsRegime(v.Reading.Regime) {
		return allow(LayerRegime)
	}
	return deny(LayerRegime, "regime %s (confidence %.2f) not in strategy's allowed set",
		v.Reading.Regime, v.Reading.Confidence)
}

// CheckPermission combines the system mode with the governor's approval.
// OBSERVE_ONLY always denies.
func CheckPermission(req Request, v View) Verdict {
	if v.Mode == ModeObserveOnly {
		return deny(LayerPermission, "system mode is OBSERVE_ONLY")
	}
	if v.Governor == nil {
		return deny(LayerPermission, "no risk governor bound")
	}
	a := v.Governor.Approve()
	if !a.Allowed {
		return deny(LayerPermission, "governor refused: %s", a.Reason)
	}
	return allow(LayerPermission, a.Warnings...)
}

// CheckGovernor is the final state-machine check: PAUSED and SHUTDOWN deny
// every request unconditionally.
func CheckGovernor(req Request, v View) Verdict {
	if v.Governor == nil {
		return deny(LayerGovernor, "no risk governor bound")
	}
	switch st := v.Governor.State(); st {
	case risk.Shutdown, risk.Paused:
		return deny(LayerGovernor, "risk governor state %s: %s", st, v.Governor.Reason())
	}
	return allow(LayerGovernor)
}
