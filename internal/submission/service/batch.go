package service

import (
	"context"

	"talentgate/internal/submission/models"
	dErrors "talentgate/pkg/domain-errors"
)

// BatchResult tallies one sweep over pending submissions.
type BatchResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ProcessAllPending processes every PENDING submission sequentially. One
// submission's failure is counted and the sweep continues; only an error
// outside the pipeline (store unreachable, context cancelled) aborts it.
func (s *Service) ProcessAllPending(ctx context.Context) (BatchResult, error) {
	pending, err := s.subs.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return BatchResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending submissions")
	}

	var result BatchResult
	for _, sub := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		processed, err := s.Process(ctx, sub.ID)
		if err != nil {
			// Raced with a concurrent processor that got there first.
			if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
				continue
			}
			return result, err
		}
		switch processed.Status {
		case models.StatusProcessed:
			result.Processed++
		case models.StatusFailed:
			result.Failed++
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "pending sweep finished",
			"processed", result.Processed,
			"failed", result.Failed,
		)
	}
	return result, nil
}
