package payroll

import (
	"strings"

	"ems/internal/platform/apperr"
)

// ValidateComponents checks the creation rules: base must be positive,
// allowances and deductions must not be negative.
func ValidateComponents(c Components) error {
	var issues []apperr.FieldIssue
	if !c.Base.IsPositive() {
		issues = append(issues, apperr.FieldIssue{Field: "baseSalary", Reason: "must be greater than 0"})
	}
	if c.Allowances.IsNegative() {
		issues = append(issues, apperr.FieldIssue{Field: "allowances", Reason: "must not be negative"})
	}
	if c.Deductions.IsNegative() {
		issues = append(issues, apperr.FieldIssue{Field: "deductions", Reason: "must not be negative"})
	}
	if len(c.Month) > 50 {
		issues = append(issues, apperr.FieldIssue{Field: "month", Reason: "must be at most 50 characters"})
	}
	if len(issues) > 0 {
		return apperr.Validation(issues...)
	}
	return nil
}

// normalize rounds every figure to cents, matching NUMERIC(12,2).
func normalize(c Components) Components {
	return Components{
		Base:       c.Base.Round(2),
		Allowances: c.Allowances.Round(2),
		Deductions: c.Deductions.Round(2),
		Month:      strings.TrimSpace(c.Month),
	}
}

func buildView(emp EmployeeSummary, payslipID int64, c Components) PayslipView {
	return PayslipView{
		PayslipID:  payslipID,
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Code:       emp.Code,
		Email:      emp.Email,
		Department: emp.Department,
		Month:      c.Month,
		Base:       c.Base,
		Allowances: c.Allowances,
		Deductions: c.Deductions,
		Net:        c.Net(),
	}
}
