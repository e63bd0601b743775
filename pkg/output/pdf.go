package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/pkg/format"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFont       = "Arial"
	pdfRowHeight  = 7.0
	pdfYearWidth  = 25.0
	pdfValueWidth = 34.0
)

var pdfHeaders = []string{
	"Year", "Revenue", "Gross Profit", "EBITDA", "Net Income", "Net Cash Flow", "Closing Cash", "Closing Debt",
}

// WritePDF writes a landscape summary with the annual totals of every scenario.
func WritePDF(w io.Writer, results []forecast.Projection) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, "Financial projection summary", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(results) == 0 {
		pdf.SetFont(pdfFont, "", 10)
		pdf.CellFormat(0, 8, "No active scenarios.", "", 1, "L", false, 0, "")
	}

	for _, result := range results {
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(0, 8, tr("Scenario: "+result.Name), "", 1, "L", false, 0, "")

		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		for i, header := range pdfHeaders {
			pdf.CellFormat(pdfColumnWidth(i), pdfRowHeight, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont(pdfFont, "", 9)
		pdf.SetTextColor(0, 0, 0)
		for n, year := range AnnualSummary(result.Outputs) {
			if n%2 == 0 {
				pdf.SetFillColor(255, 255, 255)
			} else {
				pdf.SetFillColor(242, 242, 242)
			}
			label := strconv.Itoa(year.Year)
			if year.Months < 12 {
				label = fmt.Sprintf("%d (%dm)", year.Year, year.Months)
			}
			cells := []string{
				label,
				format.NumericCurrency(year.Revenue),
				format.NumericCurrency(year.GrossProfit),
				format.NumericCurrency(year.EBITDA),
				format.NumericCurrency(year.NetIncome),
				format.NumericCurrency(year.NetCashFlow),
				format.NumericCurrency(year.ClosingCash),
				format.NumericCurrency(year.ClosingDebt),
			}
			for i, cell := range cells {
				align := "R"
				if i == 0 {
					align = "L"
				}
				pdf.CellFormat(pdfColumnWidth(i), pdfRowHeight, cell, "1", 0, align, true, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func pdfColumnWidth(i int) float64 {
	if i == 0 {
		return pdfYearWidth
	}
	return pdfValueWidth
}
