package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"ems/internal/domain/core"
)

// Components are the editable salary figures of a payslip.
type Components struct {
	Base       decimal.Decimal
	Allowances decimal.Decimal
	Deductions decimal.Decimal
	Month      string
}

// Net is base plus allowances minus deductions.
func (c Components) Net() decimal.Decimal {
	return c.Base.Add(c.Allowances).Sub(c.Deductions)
}

// SalarySource says where the figures for a payslip view come from.
type SalarySource interface {
	salarySource()
}

// Explicit uses figures supplied by the caller. PayslipID is zero for
// previews that have no stored row.
type Explicit struct {
	Components
	PayslipID int64
}

// LatestStored uses the employee's most recently created payslip.
type LatestStored struct{}

// ByPayslip uses the figures of one stored payslip.
type ByPayslip struct {
	PayslipID int64
}

func (Explicit) salarySource()     {}
func (LatestStored) salarySource() {}
func (ByPayslip) salarySource()    {}

type Payslip struct {
	ID         int64           `json:"id"`
	EmployeeID int64           `json:"employeeId"`
	BaseSalary decimal.Decimal `json:"baseSalary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Salary     decimal.Decimal `json:"salary"`
	NetSalary  decimal.Decimal `json:"netSalary"`
	Month      string          `json:"month"`
	PDFPath    *string         `json:"pdfPath,omitempty"`
	Active     bool            `json:"active"`
	core.Audit
}

func (p Payslip) Components() Components {
	return Components{Base: p.BaseSalary, Allowances: p.Allowances, Deductions: p.Deductions, Month: p.Month}
}

// EmployeeSummary is the part of an employee a payslip prints.
type EmployeeSummary struct {
	ID         int64
	Name       string
	Code       string
	Email      string
	Department string
}

// PayslipView is everything needed to render one document.
type PayslipView struct {
	PayslipID   int64           `json:"payslipId"`
	EmployeeID  int64           `json:"employeeId"`
	Name        string          `json:"name"`
	Code        string          `json:"employeeCode"`
	Email       string          `json:"email"`
	Department  string          `json:"department"`
	Month       string          `json:"month"`
	Base        decimal.Decimal `json:"baseSalary"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	Net         decimal.Decimal `json:"netSalary"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

type StoredDocument struct {
	PayslipID   int64     `json:"payslipId"`
	EmployeeID  int64     `json:"employeeId"`
	FileName    string    `json:"fileName"`
	Path        string    `json:"pdfPath"`
	Size        int       `json:"size"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

type BulkSummary struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type BulkResult struct {
	Successes map[int64]StoredDocument `json:"successes"`
	Failures  map[int64]string         `json:"failures"`
	Summary   BulkSummary              `json:"summary"`
}

type Filter struct {
	EmployeeID int64
	Month      string
	Active     *bool
	Limit      int
	Offset     int
}
