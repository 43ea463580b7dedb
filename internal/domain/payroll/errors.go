package payroll

import "ems/internal/platform/apperr"

var (
	ErrEmployeeNotFound = apperr.NotFound("employee")
	ErrPayslipNotFound  = apperr.NotFound("payslip")
	ErrDocumentNotFound = apperr.NotFound("document")
	ErrPayslipLocked    = apperr.Conflict("salary figures cannot change after a document was generated")
)
