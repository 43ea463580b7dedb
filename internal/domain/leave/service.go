package leave

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ems/internal/platform/apperr"
)

type Input struct {
	EmployeeID     int64
	Type           string
	StartDate      time.Time
	EndDate        time.Time
	MaxDaysPerYear int
	Reason         string
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in Input, actorID int64) (int64, error) {
	req, err := buildRequest(in)
	if err != nil {
		return 0, err
	}
	return s.store.Create(ctx, req, actorID)
}

func (s *Service) Get(ctx context.Context, id int64) (Leave, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Leave, int, error) {
	return s.store.List(ctx, filter)
}

// Update rewrites a pending request. The employee cannot be changed.
func (s *Service) Update(ctx context.Context, id int64, in Input, actorID int64) (Leave, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	if current.Status != StatusPending {
		return Leave{}, ErrNotEditable
	}
	in.EmployeeID = current.EmployeeID
	req, err := buildRequest(in)
	if err != nil {
		return Leave{}, err
	}
	if err := s.store.Update(ctx, id, req, actorID); err != nil {
		return Leave{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id, actorID int64) (Leave, error) {
	return s.transition(ctx, id, StatusApproved, actorID)
}

func (s *Service) Reject(ctx context.Context, id, actorID int64) (Leave, error) {
	return s.transition(ctx, id, StatusRejected, actorID)
}

func (s *Service) Cancel(ctx context.Context, id, actorID int64) (Leave, error) {
	return s.transition(ctx, id, StatusCancelled, actorID)
}

func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	return s.store.Deactivate(ctx, id, actorID)
}

func (s *Service) transition(ctx context.Context, id int64, to Status, actorID int64) (Leave, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	if !CanTransition(current.Status, to) {
		return Leave{}, ErrInvalidTransition
	}
	if err := s.store.SetStatus(ctx, id, current.Status, to, actorID); err != nil {
		return Leave{}, err
	}
	current.Status = to
	return current, nil
}

func buildRequest(in Input) (Request, error) {
	var issues []apperr.FieldIssue
	if in.EmployeeID <= 0 {
		issues = append(issues, apperr.FieldIssue{Field: "employeeId", Reason: "must be a positive integer"})
	}
	leaveType, err := ParseType(in.Type)
	if err != nil {
		issues = append(issues, apperr.FieldIssue{Field: "leaveType", Reason: "must be one of sick, casual, earned, maternity, paternity, unpaid"})
	}
	if in.StartDate.IsZero() {
		issues = append(issues, apperr.FieldIssue{Field: "startDate", Reason: "is required"})
	}
	if in.EndDate.IsZero() {
		issues = append(issues, apperr.FieldIssue{Field: "endDate", Reason: "is required"})
	}
	if in.MaxDaysPerYear <= 0 {
		issues = append(issues, apperr.FieldIssue{Field: "maxDaysPerYear", Reason: "must be positive"})
	}
	if len(issues) > 0 {
		return Request{}, apperr.Validation(issues...)
	}

	days, err := CalculateDays(in.StartDate, in.EndDate)
	if err != nil {
		return Request{}, apperr.Invalid("endDate", "must not be before startDate")
	}
	if days > in.MaxDaysPerYear {
		return Request{}, apperr.Invalid("endDate", "request spans "+strconv.Itoa(days)+" days, more than maxDaysPerYear")
	}
	return Request{
		EmployeeID:     in.EmployeeID,
		Type:           leaveType,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		MaxDaysPerYear: in.MaxDaysPerYear,
		Reason:         strings.TrimSpace(in.Reason),
	}, nil
}
