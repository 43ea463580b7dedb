package payroll

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleView() PayslipView {
	return PayslipView{
		PayslipID: 12, EmployeeID: 7, Name: "Asha Rao", Code: "EMP0007", Email: "asha@example.com",
		Department: "Engineering", Month: "January 2025",
		Base: money(50000), Allowances: money(5000), Deductions: money(2000), Net: money(53000),
		GeneratedAt: fixedNow,
	}
}

func usRenderer(t *testing.T) *Renderer {
	t.Helper()
	m, err := NewMoney("en-US")
	require.NoError(t, err)
	return NewRenderer(m)
}

func TestMoneyFormat(t *testing.T) {
	us, err := NewMoney("en-US")
	require.NoError(t, err)
	assert.Equal(t, "$53,000.00", us.Format(money(53000)))
	assert.Equal(t, "-$2,000.00", us.Format(money(-2000)))
	assert.Equal(t, "$0.50", us.Format(decimal.RequireFromString("0.5")))
	assert.Equal(t, "$0.00", us.Format(decimal.RequireFromString("-0.004")))
	assert.Equal(t, "-$0.01", us.Format(decimal.RequireFromString("-0.005")))
	assert.Equal(t, "USD", us.Currency())

	in, err := NewMoney("en-IN")
	require.NoError(t, err)
	assert.Equal(t, "INR", in.Currency())
	assert.True(t, strings.HasPrefix(in.Format(money(53000)), "Rs. "))

	_, err = NewMoney("not a locale!")
	assert.Error(t, err)
}

func TestSalaryLinesDeductionSign(t *testing.T) {
	r := usRenderer(t)
	view := sampleView()

	lines := r.salaryLines(view)
	require.Len(t, lines, 3)
	assert.Equal(t, "-$2,000.00", lines[2].Amount)

	view.Deductions = decimal.Zero
	assert.Equal(t, "$0.00", r.salaryLines(view)[2].Amount)
}

func TestTitle(t *testing.T) {
	view := sampleView()
	assert.Equal(t, "Employee Payslip - January 2025", Title(view))
	view.Month = ""
	assert.Equal(t, "Employee Payslip - N/A", Title(view))
}

func TestRenderIsDeterministic(t *testing.T) {
	r := usRenderer(t)

	first, err := r.Render(sampleView())
	require.NoError(t, err)
	second, err := r.Render(sampleView())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, want := range []string{
		"EMP0007", "Engineering", "Net Salary", "-$2,000.00", "$53,000.00",
		"Generated on January 31, 2025 at 10:15 AM",
		"This is a computer-generated document. No signature required.",
	} {
		assert.True(t, bytes.Contains(first, []byte(want)), want)
	}
}

func TestRenderHTML(t *testing.T) {
	view := sampleView()
	view.Name = "<script>alert(1)</script>"

	out, err := usRenderer(t).RenderHTML(view)
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<title>Employee Payslip - January 2025</title>")
	assert.Contains(t, html, "$53,000.00")
	assert.Contains(t, html, "Net Salary")
	assert.NotContains(t, html, "<script>")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Payslip_7_12_20250131_101500.pdf", FileName(sampleView()))
}

func TestBuildRegister(t *testing.T) {
	path := "Payslips/Payslip_7_12_20250131_101500.pdf"
	data, err := buildRegister([]Payslip{{
		ID: 12, EmployeeID: 7, Month: "January 2025",
		BaseSalary: money(50000), Allowances: money(5000), Deductions: money(2000), NetSalary: money(53000),
		PDFPath: &path,
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(registerSheet, "G1")
	require.NoError(t, err)
	assert.Equal(t, "Net Salary", header)
	net, err := f.GetCellValue(registerSheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, "53000", net)
	doc, err := f.GetCellValue(registerSheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, path, doc)
}
