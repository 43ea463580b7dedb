package payroll

import "context"

type StoreAPI interface {
	EmployeeSummary(ctx context.Context, employeeID int64) (EmployeeSummary, error)
	Create(ctx context.Context, employeeID int64, c Components, actorID int64) (Payslip, error)
	Get(ctx context.Context, id int64) (Payslip, error)
	LatestForEmployee(ctx context.Context, employeeID int64) (Payslip, error)
	List(ctx context.Context, filter Filter) ([]Payslip, int, error)
	UpdateComponents(ctx context.Context, id int64, c Components, actorID int64) error
	SetPDFPath(ctx context.Context, id int64, path string, actorID int64) error
	Deactivate(ctx context.Context, id, actorID int64) error
}

var _ StoreAPI = (*Store)(nil)
