package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 15.0
	pdfLineHeight = 7.0
)

// WritePDF renders the report on A4 pages with automatic page breaks and a
// "Page n/N" footer.
func WritePDF(w io.Writer, report Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(report.Title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, report.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date range: "+string(report.DateRange), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+report.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	summary := make([][]string, 0, 4)
	for _, row := range summaryRows(report.Summary) {
		summary = append(summary, []string{row[0], row[1]})
	}
	pdfTable(pdf, "Summary", []string{"Metric", "Value"}, []float64{90, 90}, summary)

	activity := make([][]string, 0, len(report.Activity))
	for _, day := range report.Activity {
		activity = append(activity, []string{
			day.Date,
			strconv.Itoa(day.ActiveUsers),
			strconv.Itoa(day.NewUsers),
			strconv.Itoa(day.Sessions),
		})
	}
	pdfTable(pdf, "User Activity", []string{"Date", "Active Users", "New Users", "Sessions"}, []float64{45, 45, 45, 45}, activity)

	engagement := make([][]string, 0, len(report.Engagement))
	for _, e := range report.Engagement {
		engagement = append(engagement, []string{
			e.Platform,
			strconv.Itoa(e.PageViews),
			fmt.Sprintf("%.1f min", e.AvgSessionDuration),
			fmt.Sprintf("%.1f%%", e.BounceRate),
		})
	}
	pdfTable(pdf, "Engagement", []string{"Platform", "Page Views", "Avg. Duration", "Bounce Rate"}, []float64{45, 45, 45, 45}, engagement)

	products := make([][]string, 0, len(report.Products))
	for _, p := range report.Products {
		products = append(products, []string{p.Product, strconv.Itoa(p.Sales), formatMoney(p.Revenue)})
	}
	pdfTable(pdf, "Top Products", []string{"Product", "Sales", "Revenue"}, []float64{80, 50, 50}, products)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

func pdfTable(pdf *fpdf.Fpdf, title string, header []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], pdfLineHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], pdfLineHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
