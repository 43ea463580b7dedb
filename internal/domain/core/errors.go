package core

import "ems/internal/platform/apperr"

var (
	ErrEmployeeNotFound   = apperr.NotFound("employee")
	ErrDepartmentNotFound = apperr.NotFound("department")
	ErrRoleNotFound       = apperr.NotFound("role")
	ErrAssignmentNotFound = apperr.NotFound("department assignment")
	ErrEmailTaken         = apperr.Conflict("employee email already exists")
	ErrCodeTaken          = apperr.Conflict("employee code already exists")
	ErrNameTaken          = apperr.Conflict("name already exists")
	ErrWrongPassword      = apperr.Invalid("currentPassword", "does not match")
)
