package payroll

import (
	"context"

	"ems/internal/platform/apperr"
	"ems/internal/platform/requestctx"
)

// Bulk regenerates the latest payslip of every employee. A failing
// employee is recorded and the run moves on.
func (s *Service) Bulk(ctx context.Context, employeeIDs []int64, actorID int64) (BulkResult, error) {
	if len(employeeIDs) == 0 {
		return BulkResult{}, apperr.Invalid("employeeIds", "must contain at least one id")
	}
	if actorID <= 0 {
		return BulkResult{}, apperr.Invalid("createdBy", "must be a positive integer")
	}
	s.metrics.BulkRun()

	result := BulkResult{
		Successes: make(map[int64]StoredDocument),
		Failures:  make(map[int64]string),
	}
	seen := make(map[int64]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			result.Failures[id] = err.Error()
			continue
		}
		doc, err := s.renderLatest(ctx, id, actorID)
		if err != nil {
			requestctx.Logger(ctx).Warn("bulk payslip failed", "employeeId", id, "err", err)
			result.Failures[id] = failureReason(err)
			continue
		}
		result.Successes[id] = doc
	}

	result.Summary = BulkSummary{
		Requested: len(seen),
		Succeeded: len(result.Successes),
		Failed:    len(result.Failures),
	}
	requestctx.Logger(ctx).Info("bulk payslip run finished",
		"requested", result.Summary.Requested, "succeeded", result.Summary.Succeeded, "failed", result.Summary.Failed)
	return result, nil
}

func (s *Service) renderLatest(ctx context.Context, employeeID, actorID int64) (StoredDocument, error) {
	view, err := s.ResolvePayslipView(ctx, employeeID, LatestStored{})
	if err != nil {
		return StoredDocument{}, err
	}
	return s.RenderAndStore(ctx, view, actorID)
}

// failureReason keeps internal error text out of the response.
func failureReason(err error) string {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Public() {
			return appErr.Message
		}
		return string(appErr.Kind)
	}
	return string(apperr.KindInternal)
}
