package payroll

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jung-kurt/gofpdf"

	"ems/internal/platform/apperr"
)

const (
	pageMargin  = 10.0
	labelWidth  = 45.0
	amountWidth = 60.0
	rowHeight   = 8.0

	footerNotice = "This is a computer-generated document. No signature required."
)

// Renderer turns payslip views into documents. Output depends only on the
// view and the locale, so the same view renders to the same bytes.
type Renderer struct {
	money *Money
}

func NewRenderer(money *Money) *Renderer {
	return &Renderer{money: money}
}

func Title(view PayslipView) string {
	month := view.Month
	if month == "" {
		month = "N/A"
	}
	return "Employee Payslip - " + month
}

func generatedLine(view PayslipView) string {
	return fmt.Sprintf("Generated on %s at %s",
		view.GeneratedAt.Format("January 02, 2006"), view.GeneratedAt.Format("03:04 PM"))
}

type salaryLine struct {
	Label  string
	Amount string
}

func (r *Renderer) employeeLines(view PayslipView) []salaryLine {
	return []salaryLine{
		{"Name", view.Name},
		{"Employee Code", view.Code},
		{"Email", view.Email},
		{"Employee ID", fmt.Sprintf("%d", view.EmployeeID)},
		{"Department", view.Department},
	}
}

func (r *Renderer) salaryLines(view PayslipView) []salaryLine {
	return []salaryLine{
		{"Base Salary", r.money.Format(view.Base)},
		{"Allowances", r.money.Format(view.Allowances)},
		{"Deductions", r.money.Format(view.Deductions.Neg())},
	}
}

func (r *Renderer) Render(view PayslipView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(view.GeneratedAt)
	pdf.SetModificationDate(view.GeneratedAt)
	pdf.SetTitle(Title(view), false)
	pdf.SetAuthor("ems", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, tr(Title(view)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, rowHeight, "Employee Details", "B", 1, "L", false, 0, "")
	for _, line := range r.employeeLines(view) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelWidth, rowHeight, tr(line.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, rowHeight, tr(line.Amount), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, rowHeight, "Salary Breakdown", "B", 1, "L", false, 0, "")
	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth+amountWidth, rowHeight, "Component", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range r.salaryLines(view) {
		pdf.CellFormat(labelWidth+amountWidth, rowHeight, line.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, tr(line.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.SetFillColor(210, 230, 250)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelWidth+amountWidth, rowHeight+2, "Net Salary", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, rowHeight+2, tr(r.money.Format(view.Net)), "1", 1, "R", true, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, generatedLine(view), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, footerNotice, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Render(err)
	}
	return buf.Bytes(), nil
}

var previewTemplate = template.Must(template.New("payslip").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 10mm; }
table { border-collapse: collapse; width: 100%; }
td, th { padding: 6px 8px; }
.breakdown td, .breakdown th { border: 1px solid #999; }
.amount { text-align: right; }
.net { background: #d2e6fa; font-weight: bold; }
footer { margin-top: 24px; text-align: center; font-style: italic; font-size: 0.85em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>Employee Details</h2>
<table>
{{range .Employee}}<tr><th align="left">{{.Label}}</th><td>{{.Amount}}</td></tr>
{{end}}</table>
<h2>Salary Breakdown</h2>
<table class="breakdown">
<tr><th align="left">Component</th><th class="amount">Amount</th></tr>
{{range .Salary}}<tr><td>{{.Label}}</td><td class="amount">{{.Amount}}</td></tr>
{{end}}<tr class="net"><td>Net Salary</td><td class="amount">{{.Net}}</td></tr>
</table>
<footer>
<p>{{.Generated}}</p>
<p>{{.Notice}}</p>
</footer>
</body>
</html>
`))

// RenderHTML produces a browser preview carrying the same content as the PDF.
func (r *Renderer) RenderHTML(view PayslipView) ([]byte, error) {
	var buf bytes.Buffer
	err := previewTemplate.Execute(&buf, map[string]any{
		"Title":     Title(view),
		"Employee":  r.employeeLines(view),
		"Salary":    r.salaryLines(view),
		"Net":       r.money.Format(view.Net),
		"Generated": generatedLine(view),
		"Notice":    footerNotice,
	})
	if err != nil {
		return nil, apperr.Render(err)
	}
	return buf.Bytes(), nil
}
