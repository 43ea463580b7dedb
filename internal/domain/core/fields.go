package core

import "ems/internal/domain/auth"

// RedactEmployee returns a copy of emp with personal contact fields removed
// unless the viewer is privileged or looking at their own record.
func RedactEmployee(emp Employee, viewer auth.UserContext) Employee {
	if viewer.IsPrivileged() || viewer.EmployeeID == emp.ID {
		return emp
	}
	emp.Mobile = ""
	emp.DateOfBirth = nil
	return emp
}

func RedactEmployees(list []Employee, viewer auth.UserContext) []Employee {
	out := make([]Employee, len(list))
	for i, emp := range list {
		out[i] = RedactEmployee(emp, viewer)
	}
	return out
}
