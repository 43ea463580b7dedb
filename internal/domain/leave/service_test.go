package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/platform/apperr"
)

type fakeStore struct {
	StoreAPI
	leaves  map[int64]Leave
	created Request
	updated Request
}

func (f *fakeStore) Create(_ context.Context, req Request, _ int64) (int64, error) {
	f.created = req
	return 5, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (Leave, error) {
	l, ok := f.leaves[id]
	if !ok {
		return Leave{}, ErrLeaveNotFound
	}
	return l, nil
}

func (f *fakeStore) Update(_ context.Context, _ int64, req Request, _ int64) error {
	f.updated = req
	return nil
}

func (f *fakeStore) SetStatus(_ context.Context, id int64, from, to Status, _ int64) error {
	l := f.leaves[id]
	if l.Status != from {
		return ErrInvalidTransition
	}
	l.Status = to
	f.leaves[id] = l
	return nil
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateValidates(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"bad type", Input{EmployeeID: 1, Type: "holiday", StartDate: day(1), EndDate: day(2), MaxDaysPerYear: 10}, "leaveType"},
		{"missing employee", Input{Type: "sick", StartDate: day(1), EndDate: day(2), MaxDaysPerYear: 10}, "employeeId"},
		{"end before start", Input{EmployeeID: 1, Type: "sick", StartDate: day(5), EndDate: day(2), MaxDaysPerYear: 10}, "endDate"},
		{"too many days", Input{EmployeeID: 1, Type: "sick", StartDate: day(1), EndDate: day(12), MaxDaysPerYear: 10}, "endDate"},
		{"no allowance", Input{EmployeeID: 1, Type: "sick", StartDate: day(1), EndDate: day(1)}, "maxDaysPerYear"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeStore{})
			_, err := svc.Create(context.Background(), tc.in, 1)
			appErr, ok := apperr.As(err)
			require.True(t, ok, "expected app error, got %v", err)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			require.NotEmpty(t, appErr.Fields)
			assert.Equal(t, tc.field, appErr.Fields[0].Field)
		})
	}
}

func TestCreateNormalizes(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	id, err := svc.Create(context.Background(), Input{
		EmployeeID: 7, Type: "EARNED", StartDate: day(1), EndDate: day(10), MaxDaysPerYear: 10, Reason: "  trip ",
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, TypeEarned, store.created.Type)
	assert.Equal(t, "trip", store.created.Reason)
}

func TestTransitions(t *testing.T) {
	store := &fakeStore{leaves: map[int64]Leave{
		1: {ID: 1, Status: StatusPending},
		2: {ID: 2, Status: StatusRejected},
	}}
	svc := NewService(store)
	ctx := context.Background()

	got, err := svc.Approve(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	_, err = svc.Reject(ctx, 1, 9)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = svc.Cancel(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	_, err = svc.Approve(ctx, 2, 9)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Approve(ctx, 42, 9)
	assert.ErrorIs(t, err, ErrLeaveNotFound)
}

func TestUpdateOnlyPending(t *testing.T) {
	store := &fakeStore{leaves: map[int64]Leave{
		1: {ID: 1, EmployeeID: 3, Status: StatusPending},
		2: {ID: 2, EmployeeID: 3, Status: StatusApproved},
	}}
	svc := NewService(store)
	in := Input{EmployeeID: 99, Type: "casual", StartDate: day(1), EndDate: day(2), MaxDaysPerYear: 5}

	_, err := svc.Update(context.Background(), 1, in, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), store.updated.EmployeeID)

	_, err = svc.Update(context.Background(), 2, in, 3)
	assert.ErrorIs(t, err, ErrNotEditable)
}
