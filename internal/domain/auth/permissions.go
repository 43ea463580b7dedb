package auth

import (
	"context"
	"slices"
)

const (
	PermEmployeesRead  = "employees.read"
	PermEmployeesWrite = "employees.write"
	PermOrgRead        = "org.read"
	PermOrgWrite       = "org.write"
	PermLeaveRead      = "leave.read"
	PermLeaveWrite     = "leave.write"
	PermLeaveApprove   = "leave.approve"
	PermPayslipRead    = "payslip.read"
	PermPayslipWrite   = "payslip.write"
	PermPayslipRender  = "payslip.render"
	PermAuditRead      = "audit.read"
	PermSystemAdmin    = "admin.system"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermOrgRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermPayslipRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermPayslipRead,
		PermPayslipWrite,
		PermPayslipRender,
		PermAuditRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermPayslipRead,
		PermPayslipWrite,
		PermPayslipRender,
		PermAuditRead,
		PermSystemAdmin,
	},
}

// StaticPermissions resolves permissions from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return slices.Contains(RolePermissions[role], permission), nil
}
