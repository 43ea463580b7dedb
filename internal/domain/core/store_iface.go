package core

import "context"

type StoreAPI interface {
	CreateEmployee(ctx context.Context, in NewEmployee, passwordHash string, actorID int64) (int64, error)
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, int, error)
	UpdateProfile(ctx context.Context, id int64, in ProfileUpdate, actorID int64) error
	PasswordHash(ctx context.Context, id int64) (string, error)
	UpdatePassword(ctx context.Context, id int64, hash string, actorID int64) error
	UpdatePhotoPath(ctx context.Context, id int64, path string, actorID int64) error
	DeactivateEmployee(ctx context.Context, id, actorID int64) error

	ListDepartments(ctx context.Context, activeOnly bool, limit, offset int) ([]Department, int, error)
	GetDepartment(ctx context.Context, id int64) (Department, error)
	CreateDepartment(ctx context.Context, name string, actorID int64) (int64, error)
	UpdateDepartment(ctx context.Context, id int64, name string, active bool, actorID int64) error
	DeactivateDepartment(ctx context.Context, id, actorID int64) error

	ListRoles(ctx context.Context, activeOnly bool, limit, offset int) ([]Role, int, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name string, actorID int64) (int64, error)
	UpdateRole(ctx context.Context, id int64, name string, active bool, actorID int64) error
	DeactivateRole(ctx context.Context, id, actorID int64) error

	AssignDepartments(ctx context.Context, employeeID int64, departmentIDs []int64, actorID int64) error
	ListEmployeeDepartments(ctx context.Context, employeeID int64) ([]Assignment, error)
	ListAllAssignments(ctx context.Context, limit, offset int) ([]Assignment, int, error)
	RemoveAssignment(ctx context.Context, employeeID, departmentID, actorID int64) error
}

var _ StoreAPI = (*Store)(nil)
