package gates

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Check is one gate in the pipeline.
type Check func(Request, View) Verdict

// Pipeline runs the five admission checks in their fixed order:
// risk budget, capital, regime, permission, governor. The first denial
// short-circuits; later gates are never evaluated for that request.
type Pipeline struct {
	checks []Check

	// Rate-limited denial logging so a persistently blocked strategy cannot
	// flood the log.
	logMu        sync.Mutex
	lastLogAt    map[string]time.Time
	lastLogMsg   map[string]string
	logMinPeriod time.Duration
	log          *logrus.Entry
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		checks: []Check{
			CheckRiskBudget,
			CheckCapital,
			CheckRegime,
			CheckPermission,
			CheckGovernor,
		},
		lastLogAt:    make(map[string]time.Time),
		lastLogMsg:   make(map[string]string),
		logMinPeriod: 5 * time.Second,
		log:          logrus.WithField("module", "gates.pipeline"),
	}
}

// Check evaluates the request against one account's view. The returned
// verdict carries the blocking layer on denial and any accumulated warnings
// on approval.
func (p *Pipeline) Check(req Request, v View) Verdict {
	var warnings []string
	for _, check := range p.checks {
		verdict := check(req, v)
		if !verdict.Allowed {
			verdict.Warnings = append(warnings, verdict.Warnings...)
			p.maybeLogDenial(req, verdict)
			return verdict
		}
		warnings = append(warnings, verdict.Warnings...)
	}
	return Verdict{Allowed: true, Warnings: warnings}
}

// Each evaluates the request gate by gate, invoking fn after every check and
// stopping at the first denial. The governance core uses this to journal one
// event per gate decision.
func (p *Pipeline) Each(req Request, v View, fn func(Verdict)) Verdict {
	var warnings []string
	for _, check := range p.checks {
		verdict := check(req, v)
		if fn != nil {
			fn(verdict)
		}
		if !verdict.Allowed {
			verdict.Warnings = append(warnings, verdict.Warnings...)
			p.maybeLogDenial(req, verdict)
			return verdict
		}
		warnings = append(warnings, verdict.Warnings...)
	}
	return Verdict{Allowed: true, Warnings: warnings}
}

func (p *Pipeline) maybeLogDenial(req Request, verdict Verdict) {
	p.logMu.Lock()
	defer p.logMu.Unlock()

	key := req.StrategyID + "/" + req.Pair
	now := time.Now()
	if verdict.Reason == p.lastLogMsg[key] && now.Sub(p.lastLogAt[key]) < p.logMinPeriod {
		return
	}
	p.lastLogAt[key] = now
	p.lastLogMsg[key] = verdict.Reason

	p.log.Warnf("gate blocked: strategy=%s pair=%s layer=%s reason=%s",
		req.StrategyID, req.Pair, verdict.Layer, verdict.Reason)
}
