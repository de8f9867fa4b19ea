// Package assessment decides whether a person has cleared the
// general-competency bar.
package assessment

import (
	"fmt"

	"talentgate/internal/person/models"
)

// Verdict is the tri-state outcome of evaluating a person's
// general-competency score against the threshold.
type Verdict string

const (
	VerdictNotYetTaken Verdict = "NOT_YET_TAKEN"
	VerdictPassed      Verdict = "PASSED"
	VerdictFailed      Verdict = "FAILED"
)

func (v Verdict) String() string { return string(v) }

// Gate is the single source of truth for pass/fail logic. Every caller that
// asks "has this person cleared the bar" (submission processing, the
// assessment webhook, reporting) must go through the same Gate so the answer
// cannot diverge.
//
// The threshold is an explicit constructor parameter, never ambient state, so
// tests can vary it freely.
type Gate struct {
	threshold float64
	scale     float64
}

// NewGate builds a gate for a threshold on a 0..scale score range.
func NewGate(threshold, scale float64) (*Gate, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("assessment scale must be positive")
	}
	if threshold < 0 || threshold > scale {
		return nil, fmt.Errorf("assessment threshold %v is outside 0..%v", threshold, scale)
	}
	return &Gate{threshold: threshold, scale: scale}, nil
}

// Evaluate returns the verdict for a person's recorded assessment state.
// The comparison is inclusive: score == threshold passes.
func (g *Gate) Evaluate(p *models.Person) Verdict {
	if !p.Assessment.Completed {
		return VerdictNotYetTaken
	}
	return g.Score(scoreOf(p))
}

// Score evaluates a raw score against the threshold. Used when the score has
// not been recorded on a person yet (webhook ingestion).
func (g *Gate) Score(score float64) Verdict {
	if score >= g.threshold {
		return VerdictPassed
	}
	return VerdictFailed
}

// Threshold exposes the configured cutoff for reporting.
func (g *Gate) Threshold() float64 { return g.threshold }

// Scale exposes the configured score range for reporting.
func (g *Gate) Scale() float64 { return g.scale }

func scoreOf(p *models.Person) float64 {
	if p.Assessment.Score == nil {
		return 0
	}
	return *p.Assessment.Score
}
