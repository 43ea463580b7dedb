package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"ems/internal/platform/apperr"
)

const registerSheet = "Payslips"

var registerHeaders = []any{"Payslip ID", "Employee ID", "Month", "Base Salary", "Allowances", "Deductions", "Net Salary", "Document", "Created At"}

// ExportRegister writes every payslip matching filter to an XLSX workbook.
func (s *Service) ExportRegister(ctx context.Context, filter Filter) ([]byte, error) {
	filter.Limit, filter.Offset = 0, 0
	items, _, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildRegister(items)
}

func buildRegister(items []Payslip) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, apperr.Render(err)
	}
	if err := f.SetSheetRow(registerSheet, "A1", &registerHeaders); err != nil {
		return nil, apperr.Render(err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, apperr.Render(err)
	}
	if err := f.SetCellStyle(registerSheet, "A1", "I1", style); err != nil {
		return nil, apperr.Render(err)
	}

	for i, p := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperr.Render(err)
		}
		document := ""
		if p.PDFPath != nil {
			document = *p.PDFPath
		}
		row := []any{
			p.ID, p.EmployeeID, p.Month,
			p.BaseSalary.InexactFloat64(), p.Allowances.InexactFloat64(),
			p.Deductions.InexactFloat64(), p.NetSalary.InexactFloat64(),
			document, p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, apperr.Render(err)
		}
	}
	f.SetColWidth(registerSheet, "C", "C", 18)
	f.SetColWidth(registerSheet, "H", "H", 45)
	f.SetColWidth(registerSheet, "I", "I", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperr.Render(fmt.Errorf("write workbook: %w", err))
	}
	return buf.Bytes(), nil
}
