package leave

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidType   = errors.New("unknown leave type")
	ErrInvalidStatus = errors.New("unknown leave status")
	ErrDateOrder     = errors.New("end date before start date")
)

func ParseType(raw string) (Type, error) {
	normalized := strings.TrimSpace(raw)
	for _, t := range Types {
		if strings.EqualFold(string(t), normalized) {
			return t, nil
		}
	}
	return "", ErrInvalidType
}

func ParseStatus(raw string) (Status, error) {
	normalized := strings.TrimSpace(raw)
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled} {
		if strings.EqualFold(string(s), normalized) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// CalculateDays returns the inclusive calendar-day count between start and
// end, ignoring time of day.
func CalculateDays(start, end time.Time) (int, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return 0, ErrDateOrder
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// CanTransition reports whether a leave may move from one status to another.
// Approve and reject apply to pending requests; approved leave can still be
// cancelled.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusApproved, StatusRejected:
		return from == StatusPending
	case StatusCancelled:
		return from == StatusPending || from == StatusApproved
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
